// Command finagentd runs the financial agent coordinator: a REST API over
// the command dispatcher plus the periodic job scheduler.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/HLKC779/financial-agents/internal/app"
	"github.com/HLKC779/financial-agents/internal/chain"
	"github.com/HLKC779/financial-agents/internal/config"
	"github.com/HLKC779/financial-agents/internal/httpapi"
	"github.com/HLKC779/financial-agents/internal/marketdata"
	"github.com/HLKC779/financial-agents/internal/storage/postgres"
	"github.com/HLKC779/financial-agents/internal/storage/rediscache"
	"github.com/HLKC779/financial-agents/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the configuration file")
	envFile := flag.String("env", "", "optional .env file to load before reading config")
	flag.Parse()

	log := logger.NewDefault("finagentd")

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			log.WithError(err).Fatal("load env file")
		}
	} else {
		// Best effort: a local .env is a convenience, not a requirement.
		_ = godotenv.Load()
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("load configuration")
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("daemon exited with error")
	}
}

func run(cfg config.Config, log *logger.Logger) error {
	stores := app.Stores{}
	deps := app.Dependencies{}

	if cfg.Database.Driver == config.DriverPostgres {
		store, err := postgres.Open(cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Migrate(); err != nil {
			return err
		}
		stores = app.Stores{
			Ledger:    store,
			Inventory: store,
			Loans:     store,
			Policies:  store,
			Market:    store,
		}
		deps.Pinger = store
		log.Info("connected to postgres")
	}

	if cfg.Redis.Addr != "" {
		cache, err := rediscache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL.Std())
		if err != nil {
			// The cache is an accelerator; run without it rather than fail.
			log.WithError(err).Warn("quote cache unavailable")
		} else {
			defer cache.Close()
			deps.QuoteCache = cache
			log.WithField("addr", cfg.Redis.Addr).Info("quote cache connected")
		}
	}

	if cfg.Chain.RPCURL != "" {
		deps.Chain = chain.NewRPC(cfg.Chain.RPCURL)
	} else {
		log.Info("no chain RPC configured; custody uses simulated data")
	}

	if cfg.Market.RateURL != "" {
		deps.MarketData = append(deps.MarketData, marketdata.WithRateURL(cfg.Market.RateURL))
	}

	application, err := app.New(stores, deps, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Start(ctx); err != nil {
		return err
	}

	handler := httpapi.NewHandler(application, log.Named("httpapi"),
		httpapi.WithRateLimit(cfg.Server.RateLimit.PerSecond, cfg.Server.RateLimit.Burst))
	server := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Server.ListenAddr).Info("http server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			application.Stop(context.Background())
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http server shutdown")
	}
	application.Stop(shutdownCtx)

	log.Info("daemon stopped")
	return nil
}
