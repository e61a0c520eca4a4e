package paymentresult

import (
	"context"

	"github.com/angelmondragon/farmstore/pkg/backend"
	"github.com/angelmondragon/farmstore/pkg/enums"
	pkgerrors "github.com/angelmondragon/farmstore/pkg/errors"
	"github.com/angelmondragon/farmstore/pkg/logger"
	"github.com/angelmondragon/farmstore/pkg/metrics"
)

// OrderReader is satisfied by *backend.Client.
type OrderReader interface {
	GetOrder(ctx context.Context, orderID int64) (*backend.Order, error)
	GetOrderFull(ctx context.Context, orderID int64) (*backend.OrderDetail, error)
}

// Reconciler turns result screen params into a view. "Try again" is a
// second Resolve call; nothing polls.
type Reconciler struct {
	orders  OrderReader
	metrics *metrics.CheckoutMetrics
	logg    *logger.Logger
}

func NewReconciler(orders OrderReader, m *metrics.CheckoutMetrics, logg *logger.Logger) *Reconciler {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Reconciler{orders: orders, metrics: m, logg: logg}
}

// Resolve classifies an explicit gateway status directly and otherwise
// asks the backend for the order's payment status. A failed query
// yields a retryable failed view together with the error.
func (r *Reconciler) Resolve(ctx context.Context, p Params) (View, error) {
	if p.OrderID <= 0 {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "orderId is required")
	}
	ctx = r.logg.WithOrderID(ctx, p.OrderID)

	if p.HasStatus() {
		view := Render(p.Status, p.OrderID, p.Amount, nil)
		r.record(ctx, view, "callback")
		return view, nil
	}

	order, err := r.orders.GetOrder(ctx, p.OrderID)
	if err != nil {
		r.logg.Error(ctx, "payment status query failed", err)
		view := Render(enums.PaymentStatusFailed, p.OrderID, p.Amount, nil)
		view.Title = "Could not check payment"
		view.Message = pkgerrors.UserMessage(err)
		r.record(ctx, view, "query")
		return view, err
	}

	status := enums.PaymentStatusUnpaid
	if order.PaymentStatus != "" {
		status = ClassifyStatus(string(order.PaymentStatus))
	}
	view := Render(status, p.OrderID, p.Amount, order)
	r.record(ctx, view, "query")
	return view, nil
}

// Detail loads the full order for the success view.
func (r *Reconciler) Detail(ctx context.Context, orderID int64) (*backend.OrderDetail, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orderId is required")
	}
	return r.orders.GetOrderFull(ctx, orderID)
}

func (r *Reconciler) record(ctx context.Context, view View, source string) {
	r.metrics.IncResultView(view.Kind.String())
	r.logg.Info(r.logg.WithFields(ctx, map[string]any{
		"view":   view.Kind.String(),
		"status": view.Status.String(),
		"source": source,
	}), "payment result resolved")
}
