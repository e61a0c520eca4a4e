package enums

// CheckoutState is a node of the checkout attempt state machine.
type CheckoutState string

const (
	CheckoutStateIdle                CheckoutState = "IDLE"
	CheckoutStateSubmitting          CheckoutState = "SUBMITTING"
	CheckoutStateSubmitted           CheckoutState = "SUBMITTED"
	CheckoutStateResolvingPaymentURL CheckoutState = "RESOLVING_PAYMENT_URL"
	CheckoutStateFinalizingRecord    CheckoutState = "FINALIZING_RECORD"
	CheckoutStateRedirecting         CheckoutState = "REDIRECTING"
	CheckoutStateCompleted           CheckoutState = "COMPLETED"
	CheckoutStateFailed              CheckoutState = "FAILED"
)

// String implements fmt.Stringer.
func (c CheckoutState) String() string {
	return string(c)
}

// IsTerminal reports whether the attempt can no longer advance.
func (c CheckoutState) IsTerminal() bool {
	switch c {
	case CheckoutStateRedirecting, CheckoutStateCompleted, CheckoutStateFailed:
		return true
	}
	return false
}

// IsPending reports whether a network step is in flight.
func (c CheckoutState) IsPending() bool {
	switch c {
	case CheckoutStateSubmitting, CheckoutStateResolvingPaymentURL, CheckoutStateFinalizingRecord:
		return true
	}
	return false
}
