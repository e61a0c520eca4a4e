package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/angelmondragon/farmstore/internal/addresses"
	"github.com/angelmondragon/farmstore/internal/cart"
	"github.com/angelmondragon/farmstore/internal/paymentmethods"
	"github.com/angelmondragon/farmstore/internal/paymentresult"
	"github.com/angelmondragon/farmstore/internal/selection"
	"github.com/angelmondragon/farmstore/internal/session"
	"github.com/angelmondragon/farmstore/pkg/backend"
	"github.com/angelmondragon/farmstore/pkg/config"
	"github.com/angelmondragon/farmstore/pkg/db"
	"github.com/angelmondragon/farmstore/pkg/logger"
	"github.com/angelmondragon/farmstore/pkg/metrics"
	"github.com/angelmondragon/farmstore/pkg/redis"
)

// app holds everything a subcommand may need. Fields are wired once per
// process; Close releases the cart store's connections and flushes metrics.
type app struct {
	cfg        *config.Config
	logg       *logger.Logger
	out        io.Writer
	owner      string
	backend    *backend.Client
	cart       *cart.Service
	selections *selection.Loader
	results    *paymentresult.Reconciler

	registry *prometheus.Registry
	metrics  *metrics.CheckoutMetrics
	closers  []func() error
}

func newApp(ctx context.Context, cfg *config.Config, logg *logger.Logger, out io.Writer) (*app, error) {
	registry := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	client, err := backend.NewClient(cfg.API,
		backend.WithTokenSource(session.NewStore(cfg.Session.Token, cfg.Session.ExpiryLeeway)),
		backend.WithMetrics(metrics.NewBackendMetrics(registry)),
		backend.WithLogger(logg),
	)
	if err != nil {
		return nil, fmt.Errorf("backend client: %w", err)
	}

	store, closers, err := openCartStore(ctx, cfg, logg)
	if err != nil {
		return nil, err
	}

	cartSvc, err := cart.NewService(store, cart.WithProducts(client), cart.WithLogger(logg))
	if err != nil {
		_ = closeAll(closers)
		return nil, err
	}

	return &app{
		cfg:        cfg,
		logg:       logg,
		out:        out,
		owner:      cfg.Cart.Owner,
		backend:    client,
		cart:       cartSvc,
		selections: selection.NewLoader(addresses.NewService(client), paymentmethods.NewService(client)),
		results:    paymentresult.NewReconciler(client, checkoutMetrics, logg),
		registry:   registry,
		metrics:    checkoutMetrics,
		closers:    closers,
	}, nil
}

// openCartStore picks the persistence backend named by the config.
func openCartStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (cart.Store, []func() error, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Cart.Store)) {
	case config.CartStoreMemory:
		return cart.NewMemoryStore(), nil, nil
	case config.CartStoreRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		return cart.NewRedisStore(client, cfg.Cart.RedisTTL), []func() error{client.Close}, nil
	case config.CartStoreDB, "":
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, nil, fmt.Errorf("database: %w", err)
		}
		store := cart.NewGormStore(client)
		if err := store.Migrate(ctx); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("migrating cart store: %w", err)
		}
		return store, []func() error{client.Close}, nil
	}
	return nil, nil, fmt.Errorf("unsupported cart store %q", cfg.Cart.Store)
}

func (a *app) Close() error {
	return multierr.Append(closeAll(a.closers), a.writeMetrics())
}

// writeMetrics dumps the registry for a textfile collector to pick up.
func (a *app) writeMetrics() error {
	if a.registry == nil || a.cfg == nil || a.cfg.App.MetricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(a.cfg.App.MetricsFile, a.registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}

func closeAll(closers []func() error) error {
	var err error
	for _, closeFn := range closers {
		err = multierr.Append(err, closeFn())
	}
	return err
}
