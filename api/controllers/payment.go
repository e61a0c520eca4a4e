package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/farmstore/api/responses"
	"github.com/angelmondragon/farmstore/api/validators"
	"github.com/angelmondragon/farmstore/internal/paymentresult"
	"github.com/angelmondragon/farmstore/pkg/backend"
	"github.com/angelmondragon/farmstore/pkg/logger"
)

// PaymentResolver is satisfied by *paymentresult.Reconciler.
type PaymentResolver interface {
	Resolve(ctx context.Context, p paymentresult.Params) (paymentresult.View, error)
	Detail(ctx context.Context, orderID int64) (*backend.OrderDetail, error)
}

// PaymentCallback handles the gateway return deep link. Every query
// parameter is forwarded to reconciliation.
func PaymentCallback(resolver PaymentResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := paymentresult.ParseCallback(r.URL.Query())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeView(r.Context(), logg, w, resolver, params)
	}
}

// PaymentResult handles a manual return that only carries the order id.
// Calling it again is the "try again" action.
func PaymentResult(resolver PaymentResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseQueryID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeView(r.Context(), logg, w, resolver, paymentresult.Params{OrderID: orderID})
	}
}

// OrderDetail serves the full order shown on the success view.
func OrderDetail(resolver PaymentResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathID(chi.URLParam(r, "orderID"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := resolver.Detail(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// A failed status query still produces a retryable view; the error is
// only logged.
func writeView(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, resolver PaymentResolver, params paymentresult.Params) {
	view, err := resolver.Resolve(ctx, params)
	if err != nil && view.Kind == "" {
		responses.WriteError(ctx, logg, w, err)
		return
	}
	if err != nil && logg != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "payment result served from failed query")
	}
	responses.WriteSuccess(w, view)
}
