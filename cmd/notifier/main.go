package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/storm-bulletin-notifier/internal/adapter/http"
	"github.com/couchcryptid/storm-bulletin-notifier/internal/adapter/ipc"
	"github.com/couchcryptid/storm-bulletin-notifier/internal/adapter/webhook"
	"github.com/couchcryptid/storm-bulletin-notifier/internal/config"
	"github.com/couchcryptid/storm-bulletin-notifier/internal/format"
	"github.com/couchcryptid/storm-bulletin-notifier/internal/notify"
	"github.com/couchcryptid/storm-bulletin-notifier/internal/observability"
	"github.com/couchcryptid/storm-bulletin-notifier/internal/relay"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	if cfg.Mock {
		logger.Info("mock mode enabled, bulletins are logged but not delivered")
	}

	poster := webhook.NewClient(cfg.WebhookTimeout, logger)
	notifier := notify.New(poster, cfg.Users, cfg.Mock, logger, metrics)
	router := relay.NewRouter(cfg, format.Registry(), notifier, logger, metrics)

	dialer := &ipc.Dialer{Addr: cfg.IPCAddr}
	manager := relay.NewManager(
		relay.DialerFunc(func(ctx context.Context) (relay.Conn, error) {
			return dialer.Dial(ctx)
		}),
		router, notifier, cfg.AllWebhooks(), cfg.ReconnectDelay, logger, metrics,
	)

	srv := httpadapter.NewServer(cfg.HTTPAddr, manager, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the watcher relay.
	managerDone := make(chan struct{})
	go func() {
		defer close(managerDone)
		if err := manager.Run(ctx); err != nil {
			logger.Error("relay error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// The relay owes every webhook a farewell before the process exits.
	select {
	case <-managerDone:
	case <-shutdownCtx.Done():
		logger.Error("relay did not stop within shutdown timeout")
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
