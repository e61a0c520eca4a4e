package addresses

import (
	"context"
	"strings"

	"github.com/angelmondragon/farmstore/pkg/backend"
	"github.com/angelmondragon/farmstore/pkg/errors"
)

// Lister is the backend read the service needs; *backend.Client satisfies it.
type Lister interface {
	ListAddresses(ctx context.Context) ([]backend.Address, error)
}

type Service interface {
	List(ctx context.Context) ([]backend.Address, error)
}

type service struct {
	backend Lister
}

func NewService(client Lister) Service {
	return &service{backend: client}
}

func (s *service) List(ctx context.Context) ([]backend.Address, error) {
	if s == nil || s.backend == nil {
		return nil, errors.New(errors.CodeDependency, "address client unavailable")
	}
	return s.backend.ListAddresses(ctx)
}

// Lookup returns the address with id from an already loaded list.
func Lookup(list []backend.Address, id string) (backend.Address, bool) {
	for _, addr := range list {
		if addr.ID == id {
			return addr, true
		}
	}
	return backend.Address{}, false
}

// Default returns the address flagged as default, else the first one.
func Default(list []backend.Address) (backend.Address, bool) {
	for _, addr := range list {
		if addr.IsDefault {
			return addr, true
		}
	}
	if len(list) > 0 {
		return list[0], true
	}
	return backend.Address{}, false
}

// Format renders a stored address as the single shipping string the
// order endpoint expects, skipping blank parts.
func Format(addr backend.Address) string {
	head := joinNonEmpty(" - ", addr.RecipientName, addr.Phone)
	location := joinNonEmpty(", ", addr.Street, addr.Ward, addr.District, addr.City)
	return joinNonEmpty(", ", head, location)
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, sep)
}
