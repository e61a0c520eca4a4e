package paymentmethods

import (
	"context"

	"github.com/angelmondragon/farmstore/pkg/backend"
	"github.com/angelmondragon/farmstore/pkg/enums"
	pkgerrors "github.com/angelmondragon/farmstore/pkg/errors"
)

// Lister is the backend read the service needs; *backend.Client satisfies it.
type Lister interface {
	ListPaymentMethods(ctx context.Context) ([]backend.PaymentMethod, error)
}

// Service lists selectable payment methods.
type Service interface {
	List(ctx context.Context) ([]backend.PaymentMethod, error)
}

type service struct {
	backend Lister
}

func NewService(client Lister) Service {
	return &service{backend: client}
}

// List returns the active methods only.
func (s *service) List(ctx context.Context) ([]backend.PaymentMethod, error) {
	if s == nil || s.backend == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment method client unavailable")
	}
	methods, err := s.backend.ListPaymentMethods(ctx)
	if err != nil {
		return nil, err
	}
	return Active(methods), nil
}

// Active filters out methods the backend explicitly disabled.
func Active(methods []backend.PaymentMethod) []backend.PaymentMethod {
	out := make([]backend.PaymentMethod, 0, len(methods))
	for _, m := range methods {
		if m.Enabled() {
			out = append(out, m)
		}
	}
	return out
}

func Lookup(methods []backend.PaymentMethod, id string) (backend.PaymentMethod, bool) {
	for _, m := range methods {
		if m.ID == id {
			return m, true
		}
	}
	return backend.PaymentMethod{}, false
}

// Classify maps a method to its checkout branch. Unknown types are a
// validation error so checkout never guesses a branch.
func Classify(method backend.PaymentMethod) (enums.PaymentBranch, error) {
	branch, err := method.Type.Branch()
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unsupported payment method").
			WithDetails(map[string]any{"paymentMethodId": method.ID, "type": method.Type.String()})
	}
	return branch, nil
}
