package enums

import "fmt"

// PaymentMethodType identifies how a payment method settles an order.
type PaymentMethodType string

const (
	PaymentMethodTypeEWallet PaymentMethodType = "E_WALLET"
	PaymentMethodTypeCOD     PaymentMethodType = "COD"
)

var validPaymentMethodTypes = []PaymentMethodType{
	PaymentMethodTypeEWallet,
	PaymentMethodTypeCOD,
}

// String implements fmt.Stringer.
func (p PaymentMethodType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethodType.
func (p PaymentMethodType) IsValid() bool {
	for _, candidate := range validPaymentMethodTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethodType converts raw input into a PaymentMethodType.
func ParsePaymentMethodType(value string) (PaymentMethodType, error) {
	for _, candidate := range validPaymentMethodTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method type %q", value)
}

// Branch classifies the method into the behavioural branch checkout follows.
func (p PaymentMethodType) Branch() (PaymentBranch, error) {
	switch p {
	case PaymentMethodTypeEWallet:
		return PaymentBranchElectronic, nil
	case PaymentMethodTypeCOD:
		return PaymentBranchOffline, nil
	}
	return "", fmt.Errorf("invalid payment method type %q", p)
}
