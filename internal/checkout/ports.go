package checkout

import (
	"context"

	"github.com/angelmondragon/farmstore/internal/cart"
	"github.com/angelmondragon/farmstore/internal/selection"
	"github.com/angelmondragon/farmstore/pkg/backend"
)

// OrderGateway is the slice of the backend client checkout drives.
type OrderGateway interface {
	CreateOrder(ctx context.Context, submission backend.OrderSubmission) (*backend.OrderCreationResult, error)
	CreatePaymentURL(ctx context.Context, req backend.PaymentURLRequest) (*backend.PaymentURLResult, error)
	CreateOrderPayment(ctx context.Context, orderID int64) error
}

// CartStore is satisfied by *cart.Service.
type CartStore interface {
	Get(ctx context.Context, owner string) (cart.Cart, error)
	Clear(ctx context.Context, owner string) error
}

// SelectionResolver is satisfied by *selection.Loader.
type SelectionResolver interface {
	Resolve(ctx context.Context, form selection.Form) (selection.Resolved, error)
}

// Opener hands a URL to something outside the process.
type Opener interface {
	Open(ctx context.Context, url string) error
}

// Navigator moves the shell to another screen.
type Navigator interface {
	ToPaymentResult(ctx context.Context, orderID int64)
	ToOrders(ctx context.Context)
}

type Notifier interface {
	Notify(ctx context.Context, notice Notice)
}

type NoticeKind string

const (
	NoticeError   NoticeKind = "error"
	NoticeWarning NoticeKind = "warning"
	NoticeSuccess NoticeKind = "success"
)

// Step names the part of the flow a notice or metric belongs to.
type Step string

const (
	StepValidate          Step = "validate"
	StepResolveSelection  Step = "resolve_selection"
	StepCreateOrder       Step = "create_order"
	StepResolvePaymentURL Step = "resolve_payment_url"
	StepFinalizePayment   Step = "finalize_payment"
	StepClearCart         Step = "clear_cart"
	StepHandoff           Step = "handoff"
)

// Notice is a user-facing message.
type Notice struct {
	Kind    NoticeKind
	Step    Step
	Message string
	OrderID int64
}
