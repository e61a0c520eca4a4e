package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/farmstore/api/controllers"
	"github.com/angelmondragon/farmstore/api/middleware"
	"github.com/angelmondragon/farmstore/pkg/config"
	"github.com/angelmondragon/farmstore/pkg/logger"
)

// Params wires the callback server's dependencies.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	Ready    map[string]controllers.Pinger
	Payments controllers.PaymentResolver
	Gatherer prometheus.Gatherer
}

func NewRouter(p Params) http.Handler {
	r := chi.NewRouter()
	logg := p.Logger

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, logg, p.Ready))
	})

	r.Route("/payment", func(r chi.Router) {
		r.Get("/callback", controllers.PaymentCallback(p.Payments, logg))
		r.Get("/result", controllers.PaymentResult(p.Payments, logg))
		r.Get("/orders/{orderID}", controllers.OrderDetail(p.Payments, logg))
	})

	gatherer := p.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}
