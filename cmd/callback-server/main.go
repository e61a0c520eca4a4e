package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/farmstore/api/controllers"
	"github.com/angelmondragon/farmstore/api/routes"
	"github.com/angelmondragon/farmstore/internal/paymentresult"
	"github.com/angelmondragon/farmstore/internal/session"
	"github.com/angelmondragon/farmstore/pkg/backend"
	"github.com/angelmondragon/farmstore/pkg/config"
	"github.com/angelmondragon/farmstore/pkg/instance"
	"github.com/angelmondragon/farmstore/pkg/logger"
	"github.com/angelmondragon/farmstore/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "callback-server"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "callback-server",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	client, err := backend.NewClient(cfg.API,
		backend.WithTokenSource(session.NewStore(cfg.Session.Token, cfg.Session.ExpiryLeeway)),
		backend.WithMetrics(metrics.NewBackendMetrics(registry)),
		backend.WithLogger(logg),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create backend client", err)
		os.Exit(1)
	}

	// The server only reads orders from the backend; it never opens the cart store.
	ready := map[string]controllers.Pinger{"backend": client}

	reconciler := paymentresult.NewReconciler(client, metrics.NewCheckoutMetrics(registry), logg)

	addr := ":" + cfg.App.Port
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:   cfg,
			Logger:   logg,
			Ready:    ready,
			Payments: reconciler,
			Gatherer: registry,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting callback server")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "callback server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "callback server shutdown failed", err)
			exitCode = 1
		}
		cancel()
	}
	stop()

	logg.Info(ctx, "callback server shutting down gracefully")
	os.Exit(exitCode)
}
