package paymentresult

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/farmstore/pkg/backend"
	"github.com/angelmondragon/farmstore/pkg/enums"
	pkgerrors "github.com/angelmondragon/farmstore/pkg/errors"
	"github.com/angelmondragon/farmstore/pkg/metrics"
)

type stubOrders struct {
	order     *backend.Order
	detail    *backend.OrderDetail
	err       error
	getCalls  int
	fullCalls int
}

func (s *stubOrders) GetOrder(context.Context, int64) (*backend.Order, error) {
	s.getCalls++
	return s.order, s.err
}

func (s *stubOrders) GetOrderFull(context.Context, int64) (*backend.OrderDetail, error) {
	s.fullCalls++
	return s.detail, s.err
}

func TestRender(t *testing.T) {
	amount := decimal.NewFromInt(100000)
	cases := []struct {
		status   enums.PaymentStatus
		kind     enums.ResultView
		canRetry bool
	}{
		{"", enums.ResultViewLoading, false},
		{enums.PaymentStatusPaid, enums.ResultViewSuccess, false},
		{enums.PaymentStatusPending, enums.ResultViewFailed, true},
		{enums.PaymentStatusUnpaid, enums.ResultViewFailed, true},
		{enums.PaymentStatusCancelled, enums.ResultViewFailed, true},
		{enums.PaymentStatusFailed, enums.ResultViewFailed, true},
	}
	for _, tc := range cases {
		v := Render(tc.status, 101, &amount, nil)
		assert.Equal(t, tc.kind, v.Kind, tc.status)
		assert.Equal(t, tc.canRetry, v.CanRetry, tc.status)
		assert.Equal(t, int64(101), v.OrderID)
		assert.NotEmpty(t, v.Title)
	}

	// Same inputs, same view.
	assert.Equal(t, Render(enums.PaymentStatusPaid, 1, nil, nil), Render(enums.PaymentStatusPaid, 1, nil, nil))
}

func TestRenderTakesAmountFromOrder(t *testing.T) {
	order := &backend.Order{ID: 5, TotalPrice: decimal.NewFromInt(42)}
	v := Render(enums.PaymentStatusPaid, 5, nil, order)
	require.NotNil(t, v.Amount)
	assert.True(t, v.Amount.Equal(decimal.NewFromInt(42)))
	assert.Equal(t, enums.ResultViewLoading, Loading(5).Kind)
}

func TestResolveExplicitStatusSkipsQuery(t *testing.T) {
	orders := &stubOrders{}
	reg := prometheus.NewRegistry()
	m := metrics.NewCheckoutMetrics(reg)
	r := NewReconciler(orders, m, nil)

	v, err := r.Resolve(context.Background(), Params{OrderID: 101, Status: enums.PaymentStatusPaid})
	require.NoError(t, err)
	assert.Equal(t, enums.ResultViewSuccess, v.Kind)
	assert.Equal(t, 0, orders.getCalls)
	count, err := testutil.GatherAndCount(reg, "payment_results_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestResolveQueriesOrderWhenOnlyIDKnown(t *testing.T) {
	orders := &stubOrders{order: &backend.Order{ID: 102, PaymentStatus: enums.PaymentStatusPaid, TotalPrice: decimal.NewFromInt(100000)}}
	r := NewReconciler(orders, nil, nil)

	v, err := r.Resolve(context.Background(), Params{OrderID: 102})
	require.NoError(t, err)
	assert.Equal(t, 1, orders.getCalls)
	assert.Equal(t, enums.ResultViewSuccess, v.Kind)
	require.NotNil(t, v.Order)
	assert.True(t, v.Amount.Equal(decimal.NewFromInt(100000)))
}

func TestResolveQueryNormalisesBackendStatus(t *testing.T) {
	cases := map[string]enums.ResultView{
		"paid":      enums.ResultViewSuccess,
		"SUCCESS":   enums.ResultViewSuccess,
		" Paid ":    enums.ResultViewSuccess,
		"cancelled": enums.ResultViewFailed,
		"pending":   enums.ResultViewFailed,
	}
	for raw, want := range cases {
		orders := &stubOrders{order: &backend.Order{ID: 105, PaymentStatus: enums.PaymentStatus(raw)}}
		r := NewReconciler(orders, nil, nil)

		queried, err := r.Resolve(context.Background(), Params{OrderID: 105})
		require.NoError(t, err, raw)
		assert.Equal(t, want, queried.Kind, raw)

		redirected, err := r.Resolve(context.Background(), Params{OrderID: 105, Status: ClassifyStatus(raw)})
		require.NoError(t, err, raw)
		assert.Equal(t, redirected.Kind, queried.Kind, raw)
		assert.Equal(t, redirected.Status, queried.Status, raw)
	}
}

func TestResolvePendingThenRetry(t *testing.T) {
	orders := &stubOrders{order: &backend.Order{ID: 103, PaymentStatus: enums.PaymentStatusPending}}
	r := NewReconciler(orders, nil, nil)

	v, err := r.Resolve(context.Background(), Params{OrderID: 103})
	require.NoError(t, err)
	assert.Equal(t, enums.ResultViewFailed, v.Kind)
	assert.True(t, v.CanRetry)

	orders.order = &backend.Order{ID: 103, PaymentStatus: enums.PaymentStatusPaid}
	v, err = r.Resolve(context.Background(), Params{OrderID: 103})
	require.NoError(t, err)
	assert.Equal(t, enums.ResultViewSuccess, v.Kind)
	assert.Equal(t, 2, orders.getCalls)
}

func TestResolveQueryFailure(t *testing.T) {
	orders := &stubOrders{err: pkgerrors.New(pkgerrors.CodeTimeout, "GET /orders/104: deadline exceeded")}
	r := NewReconciler(orders, nil, nil)

	v, err := r.Resolve(context.Background(), Params{OrderID: 104})
	assert.Equal(t, pkgerrors.CodeTimeout, pkgerrors.CodeOf(err))
	assert.Equal(t, enums.ResultViewFailed, v.Kind)
	assert.True(t, v.CanRetry)
	assert.Equal(t, "request timed out", v.Message)
}

func TestResolveRequiresOrderID(t *testing.T) {
	r := NewReconciler(&stubOrders{}, nil, nil)
	_, err := r.Resolve(context.Background(), Params{})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestDetail(t *testing.T) {
	orders := &stubOrders{detail: &backend.OrderDetail{Order: backend.Order{ID: 105}}}
	r := NewReconciler(orders, nil, nil)

	detail, err := r.Detail(context.Background(), 105)
	require.NoError(t, err)
	assert.Equal(t, int64(105), detail.ID)

	_, err = r.Detail(context.Background(), 0)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
	assert.Equal(t, 1, orders.fullCalls)
}
