package checkout

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/farmstore/pkg/backend"
	"github.com/angelmondragon/farmstore/pkg/enums"
	pkgerrors "github.com/angelmondragon/farmstore/pkg/errors"
)

var transitions = map[enums.CheckoutState][]enums.CheckoutState{
	enums.CheckoutStateIdle:       {enums.CheckoutStateSubmitting},
	enums.CheckoutStateSubmitting: {enums.CheckoutStateSubmitted, enums.CheckoutStateIdle},
	enums.CheckoutStateSubmitted: {
		enums.CheckoutStateRedirecting,
		enums.CheckoutStateResolvingPaymentURL,
		enums.CheckoutStateFinalizingRecord,
	},
	enums.CheckoutStateResolvingPaymentURL: {enums.CheckoutStateRedirecting, enums.CheckoutStateFailed},
	enums.CheckoutStateFinalizingRecord:    {enums.CheckoutStateCompleted, enums.CheckoutStateFailed},
}

// CanTransition reports whether from → to is an edge of the state machine.
func CanTransition(from, to enums.CheckoutState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Attempt is the in-memory state of one checkout attempt. It is never
// persisted.
type Attempt struct {
	ID             uuid.UUID
	State          enums.CheckoutState
	Branch         enums.PaymentBranch
	PendingOrder   *backend.OrderSubmission
	CreatedOrderID *int64
	PaymentURL     string
	StartedAt      time.Time
}

func newAttempt(now time.Time) *Attempt {
	return &Attempt{
		ID:        uuid.New(),
		State:     enums.CheckoutStateSubmitting,
		StartedAt: now,
	}
}

func (a *Attempt) transition(to enums.CheckoutState) error {
	if !CanTransition(a.State, to) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "invalid checkout state transition").
			WithDetails(map[string]string{"from": a.State.String(), "to": to.String()})
	}
	a.State = to
	return nil
}

func (a *Attempt) clone() *Attempt {
	if a == nil {
		return nil
	}
	out := *a
	if a.PendingOrder != nil {
		order := *a.PendingOrder
		order.OrderItems = append([]backend.OrderItem(nil), a.PendingOrder.OrderItems...)
		out.PendingOrder = &order
	}
	if a.CreatedOrderID != nil {
		id := *a.CreatedOrderID
		out.CreatedOrderID = &id
	}
	return &out
}
