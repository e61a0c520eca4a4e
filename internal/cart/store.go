package cart

import (
	"context"
	"sync"
)

// Store persists carts keyed by owner. Clear must remove the whole cart
// in one operation.
type Store interface {
	Load(ctx context.Context, owner string) (Cart, error)
	Save(ctx context.Context, cart Cart) error
	Clear(ctx context.Context, owner string) error
}

// MemoryStore keeps carts in process memory. It backs tests and
// one-shot CLI runs that should not touch disk.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]Cart)}
}

func (s *MemoryStore) Load(_ context.Context, owner string) (Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.carts[owner]
	if !ok {
		return Cart{Owner: owner}, nil
	}
	return cloneCart(stored), nil
}

func (s *MemoryStore) Save(_ context.Context, cart Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[cart.Owner] = cloneCart(cart)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, owner)
	return nil
}

func cloneCart(c Cart) Cart {
	out := c
	if c.Items != nil {
		out.Items = make([]Item, len(c.Items))
		copy(out.Items, c.Items)
	}
	return out
}
