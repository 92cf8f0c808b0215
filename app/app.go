package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"dropzone/config"
	"dropzone/handler"
	"dropzone/metrics"
	"dropzone/storage"
)

const shutdownTimeout = 15 * time.Second

func Run(envFile string) error {
	ctx, cancel := initContext()
	defer cancel()

	cfg, err := config.Get(envFile)
	if err != nil {
		return err
	}

	setupLogger(cfg.App.LogLevel)

	store, err := storage.Init(cfg.MinIO)
	if err != nil {
		return err
	}

	if err := store.EnsureBucket(ctx); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	server := handler.NewServer(ctx, handler.Deps{
		Store:      store,
		Policy:     cfg.Upload.Policy(),
		Metrics:    metrics.New(registry),
		Gatherer:   registry,
		SessionKey: cfg.App.SessionKey,
	}, fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port))

	go startHTTPServer(server.HTTPServer, cancel)

	return shutdownServer(server, cancel)
}

func initContext() (context.Context, context.CancelFunc) {
	return context.WithCancel(context.Background())
}

func setupLogger(level slog.Level) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func startHTTPServer(server *http.Server, cancel context.CancelFunc) {
	slog.Info("starting HTTP server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("error starting HTTP server", "error", err)
		cancel()
	}
}

func shutdownServer(s *handler.Server, cancel context.CancelFunc) error {
	server := s.HTTPServer
	shutdownSignals := make(chan os.Signal, 1)
	signal.Notify(shutdownSignals, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	defer signal.Stop(shutdownSignals)

	select {
	case sig := <-shutdownSignals:
		slog.Info("received shutdown signal", "signal", sig.String())
	case <-s.Ctx.Done():
		slog.Info("server context cancelled")
	}

	// Closes live sessions, which Shutdown does not track.
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)

		if err := server.Close(); err != nil {
			slog.Error("forced shutdown failed", "error", err)
			return err
		}
	}

	slog.Info("server shutdown complete")
	return nil
}
