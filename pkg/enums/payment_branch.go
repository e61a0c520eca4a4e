package enums

// PaymentBranch is the checkout behaviour a payment method maps to.
type PaymentBranch string

const (
	// PaymentBranchElectronic needs a gateway redirect URL.
	PaymentBranchElectronic PaymentBranch = "ELECTRONIC"
	// PaymentBranchOffline only needs a backend payment record.
	PaymentBranchOffline PaymentBranch = "OFFLINE"
)

// String implements fmt.Stringer.
func (p PaymentBranch) String() string {
	return string(p)
}
