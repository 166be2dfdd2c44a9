// Package agents manages the lifecycle of the agent system: ordered startup
// and shutdown of long-running components and a status report that never
// fails.
package agents

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/HLKC779/financial-agents/internal/storage"
	"github.com/HLKC779/financial-agents/internal/system"
	"github.com/HLKC779/financial-agents/pkg/logger"
)

// Version reported in status payloads.
const Version = "1.0.0"

// State is the registry lifecycle state.
type State string

const (
	StateNew     State = "new"
	StateRunning State = "running"
	StateStopped State = "stopped"
)

// HostStats is a best-effort snapshot of host resource usage. Fields are
// zero when the probe fails.
type HostStats struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsedMB  uint64  `json:"memory_used_mb"`
}

// Status is the overall system status report.
type Status struct {
	SystemStatus string            `json:"system_status"`
	State        State             `json:"state"`
	Database     string            `json:"database"`
	Services     map[string]string `json:"services"`
	Agents       []string          `json:"agents"`
	Host         HostStats         `json:"host"`
	Uptime       string            `json:"uptime"`
	Version      string            `json:"version"`
	CheckedAt    time.Time         `json:"checked_at"`
}

// Registry owns the long-running services and the fixed agent name list.
type Registry struct {
	services []system.Service
	agents   []string
	pinger   storage.Pinger
	log      *logger.Logger

	mu        sync.Mutex
	state     State
	startedAt time.Time
}

// NewRegistry constructs a registry. Services start in slice order and stop
// in reverse. The pinger is optional; without one the database reports
// "in-memory".
func NewRegistry(services []system.Service, agentNames []string, pinger storage.Pinger, log *logger.Logger) *Registry {
	if log == nil {
		log = logger.NewDefault("registry")
	}
	return &Registry{
		services: services,
		agents:   agentNames,
		pinger:   pinger,
		log:      log,
		state:    StateNew,
	}
}

// Start brings every service up in order. Starting a running registry is a
// no-op. A service failure stops the already-started services in reverse
// order and leaves the registry stopped.
func (r *Registry) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateRunning {
		return nil
	}

	for i, svc := range r.services {
		if err := svc.Start(ctx); err != nil {
			r.log.WithField("service", svc.Name()).WithError(err).Error("service failed to start")
			for k := i - 1; k >= 0; k-- {
				if stopErr := r.services[k].Stop(ctx); stopErr != nil {
					r.log.WithField("service", r.services[k].Name()).WithError(stopErr).Warn("rollback stop failed")
				}
			}
			r.state = StateStopped
			return fmt.Errorf("start %s: %w", svc.Name(), err)
		}
		r.log.WithField("service", svc.Name()).Info("service started")
	}

	r.state = StateRunning
	r.startedAt = time.Now().UTC()
	r.log.WithField("services", len(r.services)).Info("agent system started")
	return nil
}

// Stop brings every service down in reverse order. Stopping a stopped
// registry is a no-op. Stop errors are logged, not returned; shutdown always
// proceeds through the whole list.
func (r *Registry) Stop(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateRunning {
		return
	}

	for i := len(r.services) - 1; i >= 0; i-- {
		svc := r.services[i]
		if err := svc.Stop(ctx); err != nil {
			r.log.WithField("service", svc.Name()).WithError(err).Warn("service stop failed")
			continue
		}
		r.log.WithField("service", svc.Name()).Info("service stopped")
	}

	r.state = StateStopped
	r.log.Info("agent system stopped")
}

// State returns the current lifecycle state.
func (r *Registry) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Status reports system health. It never fails: probe errors degrade the
// report instead of aborting it.
func (r *Registry) Status(ctx context.Context) Status {
	r.mu.Lock()
	state := r.state
	startedAt := r.startedAt
	r.mu.Unlock()

	status := Status{
		SystemStatus: "operational",
		State:        state,
		Services:     make(map[string]string, len(r.services)),
		Agents:       append([]string(nil), r.agents...),
		Version:      Version,
		CheckedAt:    time.Now().UTC(),
	}
	if state != StateRunning {
		status.SystemStatus = "stopped"
	}
	if !startedAt.IsZero() && state == StateRunning {
		status.Uptime = time.Since(startedAt).Round(time.Second).String()
	}

	running := "stopped"
	if state == StateRunning {
		running = "running"
	}
	for _, svc := range r.services {
		status.Services[svc.Name()] = running
	}

	status.Database = "in-memory"
	if r.pinger != nil {
		status.Database = "connected"
		if err := r.pinger.Ping(ctx); err != nil {
			status.Database = "disconnected"
			status.SystemStatus = "degraded"
		}
	}

	status.Host = hostStats()
	return status
}

func hostStats() HostStats {
	var stats HostStats
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemoryPercent = vm.UsedPercent
		stats.MemoryUsedMB = vm.Used / 1024 / 1024
	}
	return stats
}
