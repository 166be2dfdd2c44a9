// Package httpapi exposes the agent system over REST: command dispatch,
// status and health probes, scheduler introspection and metrics.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/HLKC779/financial-agents/internal/app"
	"github.com/HLKC779/financial-agents/internal/dispatch"
	"github.com/HLKC779/financial-agents/internal/metrics"
	"github.com/HLKC779/financial-agents/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Option configures the handler.
type Option func(*handler)

// WithRateLimit overrides the per-client request budget.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(h *handler) {
		h.limiter = newClientLimiter(perSecond, burst)
	}
}

type handler struct {
	app     *app.Application
	log     *logger.Logger
	limiter *clientLimiter
}

// NewHandler returns the REST API router. Every route is rate limited per
// client and instrumented for metrics.
func NewHandler(application *app.Application, log *logger.Logger, opts ...Option) http.Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	h := &handler{
		app:     application,
		log:     log,
		limiter: newClientLimiter(defaultRatePerSecond, defaultBurst),
	}
	for _, opt := range opts {
		opt(h)
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.HandleFunc("/status", h.status).Methods(http.MethodGet)
	r.HandleFunc("/commands", h.catalog).Methods(http.MethodGet)
	r.HandleFunc("/commands/{name}", h.dispatch).Methods(http.MethodPost)
	r.HandleFunc("/scheduler/jobs", h.schedulerJobs).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return metrics.InstrumentHandler(h.limiter.middleware(r))
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Status(r.Context()))
}

func (h *handler) catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"commands": dispatch.Catalog()})
}

func (h *handler) schedulerJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Scheduler.Status())
}

func (h *handler) dispatch(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var params dispatch.Params
	if err := decodeJSON(r.Body, &params); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	env := h.app.Dispatcher.Dispatch(r.Context(), name, params)
	writeJSON(w, envelopeStatus(env), env)
}

// envelopeStatus maps a dispatch outcome onto an HTTP status code.
func envelopeStatus(env dispatch.Envelope) int {
	if env.OK {
		return http.StatusOK
	}
	switch env.ErrorKind {
	case dispatch.KindValidation:
		return http.StatusBadRequest
	case dispatch.KindNotFound, dispatch.KindUnknownCommand:
		return http.StatusNotFound
	case dispatch.KindBusinessRule:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(body io.Reader, dst any) error {
	data, err := io.ReadAll(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return errors.New("invalid JSON payload")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// clientIP strips the port so all connections from one host share a rate
// budget.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
