package selection

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/farmstore/internal/addresses"
	"github.com/angelmondragon/farmstore/internal/paymentmethods"
	"github.com/angelmondragon/farmstore/pkg/backend"
	"github.com/angelmondragon/farmstore/pkg/enums"
	pkgerrors "github.com/angelmondragon/farmstore/pkg/errors"
)

// Form is what the user picked on the checkout screen. The zero value
// has no payment method, so nothing is pre-selected.
type Form struct {
	AddressID       string `json:"addressId"`
	ManualAddress   string `json:"manualAddress"`
	PaymentMethodID string `json:"paymentMethodId"`
}

// Validate gates submission. It never touches the network.
func (f Form) Validate() error {
	details := map[string]string{}
	hasID := strings.TrimSpace(f.AddressID) != ""
	hasManual := strings.TrimSpace(f.ManualAddress) != ""
	switch {
	case !hasID && !hasManual:
		details["shippingAddress"] = "choose a saved address or enter one"
	case hasID && hasManual:
		details["shippingAddress"] = "choose either a saved address or a manual address"
	}
	if strings.TrimSpace(f.PaymentMethodID) == "" {
		details["paymentMethodId"] = "is required"
	}
	if len(details) == 0 {
		return nil
	}
	msg := "please select a payment method"
	if _, ok := details["shippingAddress"]; ok {
		msg = "please select a shipping address"
	}
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(details)
}

// CanSubmit reports whether the submit action should be enabled.
func (f Form) CanSubmit() bool {
	return f.Validate() == nil
}

// Options feed the selection screen.
type Options struct {
	Addresses      []backend.Address
	PaymentMethods []backend.PaymentMethod
}

// Resolved is a validated form turned into what order submission needs.
type Resolved struct {
	ShippingAddress string
	PaymentMethod   backend.PaymentMethod
	Branch          enums.PaymentBranch
}

type Loader struct {
	addresses addresses.Service
	methods   paymentmethods.Service
}

func NewLoader(addr addresses.Service, methods paymentmethods.Service) *Loader {
	return &Loader{addresses: addr, methods: methods}
}

// Load fetches addresses and payment methods concurrently.
func (l *Loader) Load(ctx context.Context) (Options, error) {
	var opts Options
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := l.addresses.List(gctx)
		if err != nil {
			return err
		}
		opts.Addresses = list
		return nil
	})
	g.Go(func() error {
		list, err := l.methods.List(gctx)
		if err != nil {
			return err
		}
		opts.PaymentMethods = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Resolve validates the form and resolves it against fresh options.
// A manual address still needs the payment method list.
func (l *Loader) Resolve(ctx context.Context, form Form) (Resolved, error) {
	if err := form.Validate(); err != nil {
		return Resolved{}, err
	}
	opts, err := l.Load(ctx)
	if err != nil {
		return Resolved{}, err
	}
	return opts.Resolve(form)
}

// Resolve matches the form against already loaded options.
func (o Options) Resolve(form Form) (Resolved, error) {
	if err := form.Validate(); err != nil {
		return Resolved{}, err
	}

	var out Resolved
	if manual := strings.TrimSpace(form.ManualAddress); manual != "" {
		out.ShippingAddress = manual
	} else {
		addr, ok := addresses.Lookup(o.Addresses, strings.TrimSpace(form.AddressID))
		if !ok {
			return Resolved{}, pkgerrors.New(pkgerrors.CodeValidation, "selected address no longer exists")
		}
		out.ShippingAddress = addresses.Format(addr)
	}

	method, ok := paymentmethods.Lookup(o.PaymentMethods, strings.TrimSpace(form.PaymentMethodID))
	if !ok {
		return Resolved{}, pkgerrors.New(pkgerrors.CodeValidation, "selected payment method is unavailable")
	}
	branch, err := paymentmethods.Classify(method)
	if err != nil {
		return Resolved{}, err
	}
	out.PaymentMethod = method
	out.Branch = branch
	return out, nil
}
