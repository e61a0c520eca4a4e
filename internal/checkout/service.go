package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/farmstore/internal/cart"
	"github.com/angelmondragon/farmstore/internal/selection"
	"github.com/angelmondragon/farmstore/pkg/backend"
	"github.com/angelmondragon/farmstore/pkg/enums"
	pkgerrors "github.com/angelmondragon/farmstore/pkg/errors"
	"github.com/angelmondragon/farmstore/pkg/logger"
	"github.com/angelmondragon/farmstore/pkg/metrics"
	"github.com/angelmondragon/farmstore/pkg/validate"
)

const (
	msgPaymentLinkFailed = "cannot create payment link"
	msgFinalizeFailed    = "cannot finalize payment"
	msgHandoffFailed     = "cannot open payment page"
	msgCartClearFailed   = "order placed but the cart could not be cleared"
	msgOrderCompleted    = "order placed"
)

// Service runs checkout attempts. One attempt is tracked at a time.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (Outcome, error)
	Attempt() *Attempt
	Abandon(ctx context.Context) error
}

// SubmitInput is one press of the submit button.
type SubmitInput struct {
	Owner        string
	Form         selection.Form
	CustomerName string
}

// Outcome describes where an attempt stopped.
type Outcome struct {
	AttemptID  string
	State      enums.CheckoutState
	Branch     enums.PaymentBranch
	OrderID    int64
	TotalPrice decimal.Decimal
	PaymentURL string
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	Orders     OrderGateway
	Cart       CartStore
	Selections SelectionResolver
	Opener     Opener
	Navigator  Navigator
	Notifier   Notifier
	Source     string
	Metrics    *metrics.CheckoutMetrics
	Logger     *logger.Logger
	Clock      func() time.Time
}

type service struct {
	orders     OrderGateway
	cart       CartStore
	selections SelectionResolver
	opener     Opener
	navigator  Navigator
	notifier   Notifier
	source     string
	metrics    *metrics.CheckoutMetrics
	logg       *logger.Logger
	now        func() time.Time

	mu      sync.Mutex
	attempt *Attempt
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("order gateway required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if params.Selections == nil {
		return nil, fmt.Errorf("selection resolver required")
	}
	if params.Opener == nil {
		return nil, fmt.Errorf("opener required")
	}
	if params.Navigator == nil {
		return nil, fmt.Errorf("navigator required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if strings.TrimSpace(params.Source) == "" {
		return nil, fmt.Errorf("payment source required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		orders:     params.Orders,
		cart:       params.Cart,
		selections: params.Selections,
		opener:     params.Opener,
		navigator:  params.Navigator,
		notifier:   params.Notifier,
		source:     params.Source,
		metrics:    params.Metrics,
		logg:       logg,
		now:        clock,
	}, nil
}

// Attempt returns a snapshot of the current attempt, or nil when idle.
func (s *service) Attempt() *Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempt.clone()
}

// Abandon drops the current attempt, as when the user navigates away.
// An attempt with a step in flight cannot be abandoned.
func (s *service) Abandon(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attempt == nil {
		return nil
	}
	if s.attempt.State.IsPending() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout step in progress")
	}
	s.logg.Info(s.logg.WithAttemptID(ctx, s.attempt.ID.String()), "checkout attempt abandoned")
	s.attempt = nil
	return nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (Outcome, error) {
	attempt, current, err := s.begin(ctx, input)
	if err != nil {
		s.notify(ctx, Notice{Kind: NoticeError, Step: StepValidate, Message: pkgerrors.UserMessage(err)})
		return Outcome{}, err
	}
	ctx = s.logg.WithAttemptID(ctx, attempt.ID.String())
	s.logg.Info(s.logg.WithField(ctx, "items", current.ItemCount()), "checkout attempt started")

	resolved, err := s.selections.Resolve(ctx, input.Form)
	if err != nil {
		return Outcome{}, s.abort(ctx, attempt, StepResolveSelection, err)
	}

	submission := buildSubmission(current, resolved.ShippingAddress)
	if err := validate.Struct(submission); err != nil {
		return Outcome{}, s.abort(ctx, attempt, StepValidate, err)
	}
	s.update(attempt, func(a *Attempt) {
		a.Branch = resolved.Branch
		a.PendingOrder = &submission
	})

	started := s.now()
	created, err := s.orders.CreateOrder(ctx, submission)
	s.metrics.ObserveStep(string(StepCreateOrder), err == nil, s.now().Sub(started))
	if err != nil {
		return Outcome{}, s.abort(ctx, attempt, StepCreateOrder, err)
	}

	orderID := created.OrderID
	if err := s.advance(attempt, enums.CheckoutStateSubmitted, func(a *Attempt) {
		a.CreatedOrderID = &orderID
	}); err != nil {
		return Outcome{}, s.fail(ctx, attempt, StepCreateOrder, err)
	}
	ctx = s.logg.WithOrderID(ctx, orderID)
	s.logg.Info(ctx, "order created")

	outcome := Outcome{
		AttemptID:  attempt.ID.String(),
		Branch:     resolved.Branch,
		OrderID:    orderID,
		TotalPrice: created.TotalPrice,
	}
	if outcome.TotalPrice.IsZero() {
		outcome.TotalPrice = current.Subtotal()
	}
	return s.dispatch(ctx, attempt, input, outcome, created.PaymentURL)
}

// begin validates local input and opens a new attempt. It performs no
// network calls.
func (s *service) begin(ctx context.Context, input SubmitInput) (*Attempt, cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attempt != nil && s.attempt.State.IsPending() {
		return nil, cart.Cart{}, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout already in progress").
			WithDetails(map[string]string{"state": s.attempt.State.String()})
	}
	if err := input.Form.Validate(); err != nil {
		return nil, cart.Cart{}, err
	}
	current, err := s.cart.Get(ctx, input.Owner)
	if err != nil {
		return nil, cart.Cart{}, err
	}
	if current.IsEmpty() {
		return nil, cart.Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	s.attempt = newAttempt(s.now().UTC())
	return s.attempt, current, nil
}

func (s *service) dispatch(ctx context.Context, attempt *Attempt, input SubmitInput, outcome Outcome, paymentURL string) (Outcome, error) {
	switch {
	case outcome.Branch == enums.PaymentBranchElectronic && paymentURL != "":
		if err := s.advance(attempt, enums.CheckoutStateRedirecting, nil); err != nil {
			return outcome, s.fail(ctx, attempt, StepHandoff, err)
		}
		return s.redirect(ctx, attempt, input.Owner, outcome, paymentURL)

	case outcome.Branch == enums.PaymentBranchElectronic:
		if err := s.advance(attempt, enums.CheckoutStateResolvingPaymentURL, nil); err != nil {
			return outcome, s.fail(ctx, attempt, StepResolvePaymentURL, err)
		}
		resolvedURL, err := s.resolvePaymentURL(ctx, outcome, input.CustomerName)
		if err != nil {
			outcome.State = enums.CheckoutStateFailed
			return outcome, s.stepFailed(ctx, attempt, StepResolvePaymentURL, msgPaymentLinkFailed, err)
		}
		if err := s.advance(attempt, enums.CheckoutStateRedirecting, nil); err != nil {
			return outcome, s.fail(ctx, attempt, StepResolvePaymentURL, err)
		}
		return s.redirect(ctx, attempt, input.Owner, outcome, resolvedURL)

	case outcome.Branch == enums.PaymentBranchOffline:
		if err := s.advance(attempt, enums.CheckoutStateFinalizingRecord, nil); err != nil {
			return outcome, s.fail(ctx, attempt, StepFinalizePayment, err)
		}
		started := s.now()
		err := s.orders.CreateOrderPayment(ctx, outcome.OrderID)
		s.metrics.ObserveStep(string(StepFinalizePayment), err == nil, s.now().Sub(started))
		if err != nil {
			outcome.State = enums.CheckoutStateFailed
			return outcome, s.stepFailed(ctx, attempt, StepFinalizePayment, msgFinalizeFailed, err)
		}
		return s.complete(ctx, attempt, input.Owner, outcome)
	}

	err := pkgerrors.New(pkgerrors.CodeInternal, "unknown payment branch").
		WithDetails(map[string]string{"branch": outcome.Branch.String()})
	return outcome, s.fail(ctx, attempt, StepValidate, err)
}

func (s *service) resolvePaymentURL(ctx context.Context, outcome Outcome, customerName string) (string, error) {
	req := backend.PaymentURLRequest{
		OrderID:          outcome.OrderID,
		Amount:           outcome.TotalPrice,
		OrderDescription: fmt.Sprintf("Payment for order #%d", outcome.OrderID),
		Name:             strings.TrimSpace(customerName),
		Source:           s.source,
	}
	started := s.now()
	res, err := s.orders.CreatePaymentURL(ctx, req)
	s.metrics.ObserveStep(string(StepResolvePaymentURL), err == nil, s.now().Sub(started))
	if err != nil {
		return "", err
	}
	return res.PaymentURL, nil
}

// redirect runs the REDIRECTING side effects: clear the cart, hand the
// URL off, show the result screen, drop the attempt. A failed handoff
// still ends in REDIRECTING since the order already exists.
func (s *service) redirect(ctx context.Context, attempt *Attempt, owner string, outcome Outcome, paymentURL string) (Outcome, error) {
	s.update(attempt, func(a *Attempt) {
		a.PaymentURL = paymentURL
	})
	outcome.State = enums.CheckoutStateRedirecting
	outcome.PaymentURL = paymentURL
	s.metrics.IncAttempt(outcome.Branch.String(), outcome.State.String())

	s.clearCart(ctx, owner, outcome.OrderID)

	var handoffErr error
	if err := s.opener.Open(ctx, paymentURL); err != nil {
		handoffErr = pkgerrors.Wrap(pkgerrors.CodeDependency, err, msgHandoffFailed)
		s.logg.Error(s.logg.WithStep(ctx, string(StepHandoff)), "payment handoff failed", err)
		s.notify(ctx, Notice{Kind: NoticeError, Step: StepHandoff, Message: msgHandoffFailed, OrderID: outcome.OrderID})
	}
	s.navigator.ToPaymentResult(ctx, outcome.OrderID)
	s.reset(attempt)
	s.logg.Info(ctx, "redirecting to payment gateway")
	return outcome, handoffErr
}

// complete runs the COMPLETED side effects and drops the attempt.
func (s *service) complete(ctx context.Context, attempt *Attempt, owner string, outcome Outcome) (Outcome, error) {
	if err := s.advance(attempt, enums.CheckoutStateCompleted, nil); err != nil {
		return outcome, s.fail(ctx, attempt, StepFinalizePayment, err)
	}
	outcome.State = enums.CheckoutStateCompleted
	s.metrics.IncAttempt(outcome.Branch.String(), outcome.State.String())

	s.clearCart(ctx, owner, outcome.OrderID)
	s.notify(ctx, Notice{Kind: NoticeSuccess, Step: StepFinalizePayment, Message: msgOrderCompleted, OrderID: outcome.OrderID})
	s.navigator.ToOrders(ctx)
	s.reset(attempt)
	s.logg.Info(ctx, "checkout completed")
	return outcome, nil
}

func (s *service) clearCart(ctx context.Context, owner string, orderID int64) {
	if err := s.cart.Clear(ctx, owner); err != nil {
		s.logg.Error(s.logg.WithStep(ctx, string(StepClearCart)), "cart clear failed", err)
		s.notify(ctx, Notice{Kind: NoticeWarning, Step: StepClearCart, Message: msgCartClearFailed, OrderID: orderID})
	}
}

// abort ends an attempt that never produced an order: the attempt is
// dropped and the cart left as it was.
func (s *service) abort(ctx context.Context, attempt *Attempt, step Step, err error) error {
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"step": string(step), "error": err.Error()}), "checkout submission failed")
	s.metrics.IncAttempt("", enums.CheckoutStateIdle.String())
	s.reset(attempt)
	s.notify(ctx, Notice{Kind: NoticeError, Step: step, Message: pkgerrors.UserMessage(err)})
	return err
}

// stepFailed moves an attempt with a created order to FAILED. The
// attempt keeps its order id; nothing is rolled back.
func (s *service) stepFailed(ctx context.Context, attempt *Attempt, step Step, prefix string, err error) error {
	s.mu.Lock()
	if s.attempt == attempt {
		if terr := attempt.transition(enums.CheckoutStateFailed); terr != nil {
			s.logg.Error(ctx, "checkout state machine rejected failure", terr)
		}
	}
	orderID := int64(0)
	if attempt.CreatedOrderID != nil {
		orderID = *attempt.CreatedOrderID
	}
	branch := attempt.Branch
	s.mu.Unlock()

	s.logg.Error(s.logg.WithStep(ctx, string(step)), "checkout step failed", err)
	s.metrics.IncAttempt(branch.String(), enums.CheckoutStateFailed.String())
	s.notify(ctx, Notice{
		Kind:    NoticeError,
		Step:    step,
		Message: prefix + ": " + pkgerrors.UserMessage(err),
		OrderID: orderID,
	})
	return pkgerrors.Wrap(pkgerrors.CodeOf(err), err, prefix)
}

// fail reports an internal state machine error.
func (s *service) fail(ctx context.Context, attempt *Attempt, step Step, err error) error {
	s.logg.Error(s.logg.WithStep(ctx, string(step)), "checkout state error", err)
	s.notify(ctx, Notice{Kind: NoticeError, Step: step, Message: pkgerrors.UserMessage(err)})
	return err
}

func (s *service) advance(attempt *Attempt, to enums.CheckoutState, mutate func(*Attempt)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attempt != attempt {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout attempt replaced")
	}
	if err := attempt.transition(to); err != nil {
		return err
	}
	if mutate != nil {
		mutate(attempt)
	}
	return nil
}

func (s *service) update(attempt *Attempt, mutate func(*Attempt)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutate(attempt)
}

func (s *service) reset(attempt *Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attempt == attempt {
		attempt.PendingOrder = nil
		s.attempt = nil
	}
}

func (s *service) notify(ctx context.Context, notice Notice) {
	s.notifier.Notify(ctx, notice)
}

func buildSubmission(c cart.Cart, shippingAddress string) backend.OrderSubmission {
	items := make([]backend.OrderItem, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, backend.OrderItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return backend.OrderSubmission{
		OrderItems:      items,
		ShippingAddress: shippingAddress,
	}
}
