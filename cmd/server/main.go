package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"consentd/internal/platform/config"
	"consentd/internal/platform/logger"
)

// main wires dependencies, serves HTTP and shuts down gracefully. Business
// logic lives in the internal packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("error", "json").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log, prometheus.NewRegistry(), nil)
	if err != nil {
		log.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	if a.redis != nil {
		go a.redis.ReportPoolStats(ctx, cfg.RedisStatsEvery, log)
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      a.handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	log.Info("starting http server",
		"addr", cfg.Addr,
		"env", cfg.Env,
		"consent_version", cfg.ConsentVersion,
	)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if err := a.close(); err != nil {
		log.Error("failed to close redis", "error", err)
	}
	log.Info("server stopped")
}
