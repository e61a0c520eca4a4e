package cart

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/farmstore/pkg/backend"
	pkgerrors "github.com/angelmondragon/farmstore/pkg/errors"
	"github.com/angelmondragon/farmstore/pkg/logger"
)

// ProductLoader fetches a fresh catalog snapshot; *backend.Client satisfies it.
type ProductLoader interface {
	GetProduct(ctx context.Context, productID int64) (*backend.Product, error)
}

// Service is the injectable cart state container. Every mutation loads,
// changes and saves the owner's cart under one lock.
type Service struct {
	mu       sync.Mutex
	store    Store
	products ProductLoader
	logg     *logger.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithProducts(products ProductLoader) Option {
	return func(s *Service) {
		s.products = products
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(s *Service) {
		if logg != nil {
			s.logg = logg
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart store required")
	}
	svc := &Service{
		store: store,
		logg:  logger.Nop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func (s *Service) Get(ctx context.Context, owner string) (Cart, error) {
	if err := validateOwner(owner); err != nil {
		return Cart{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, owner)
}

// Add puts a known product snapshot into the cart.
func (s *Service) Add(ctx context.Context, owner string, product Product, quantity int) (Cart, error) {
	return s.mutate(ctx, owner, func(c *Cart) error {
		return c.Add(product, quantity)
	})
}

// AddProduct looks the product up first so price and stock are current.
func (s *Service) AddProduct(ctx context.Context, owner string, productID int64, quantity int) (Cart, error) {
	if s.products == nil {
		return Cart{}, pkgerrors.New(pkgerrors.CodeInternal, "product loader not configured")
	}
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return Cart{}, err
	}
	return s.Add(ctx, owner, productFromBackend(product), quantity)
}

func (s *Service) Increment(ctx context.Context, owner string, itemID uuid.UUID) (Cart, error) {
	return s.mutate(ctx, owner, func(c *Cart) error {
		_, err := c.Increment(itemID)
		return err
	})
}

func (s *Service) Decrement(ctx context.Context, owner string, itemID uuid.UUID) (Cart, error) {
	return s.mutate(ctx, owner, func(c *Cart) error {
		_, err := c.Decrement(itemID)
		return err
	})
}

func (s *Service) SetQuantity(ctx context.Context, owner string, itemID uuid.UUID, quantity int) (Cart, error) {
	return s.mutate(ctx, owner, func(c *Cart) error {
		return c.SetQuantity(itemID, quantity)
	})
}

func (s *Service) Remove(ctx context.Context, owner string, itemID uuid.UUID) (Cart, error) {
	return s.mutate(ctx, owner, func(c *Cart) error {
		return c.Remove(itemID)
	})
}

// Clear empties the owner's cart with a single store call.
func (s *Service) Clear(ctx context.Context, owner string) error {
	if err := validateOwner(owner); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Clear(ctx, owner); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// Reconcile applies known stock levels to the owner's cart.
func (s *Service) Reconcile(ctx context.Context, owner string, stock map[int64]int) (Cart, []Adjustment, error) {
	var adjustments []Adjustment
	cart, err := s.mutate(ctx, owner, func(c *Cart) error {
		adjustments = c.Reconcile(stock)
		return nil
	})
	if err != nil {
		return Cart{}, nil, err
	}
	for _, adj := range adjustments {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"product_id": adj.ProductID,
			"from":       adj.From,
			"to":         adj.To,
			"removed":    adj.Removed,
		})
		s.logg.Info(logCtx, "cart line adjusted to stock")
	}
	return cart, adjustments, nil
}

// RefreshStock queries every product in the cart and reconciles against
// the answers. A product the backend no longer knows counts as sold out.
func (s *Service) RefreshStock(ctx context.Context, owner string) (Cart, []Adjustment, error) {
	if s.products == nil {
		return Cart{}, nil, pkgerrors.New(pkgerrors.CodeInternal, "product loader not configured")
	}
	current, err := s.Get(ctx, owner)
	if err != nil {
		return Cart{}, nil, err
	}

	stock := make(map[int64]int, len(current.Items))
	for _, item := range current.Items {
		if _, seen := stock[item.ProductID]; seen {
			continue
		}
		product, err := s.products.GetProduct(ctx, item.ProductID)
		if err != nil {
			if pkgerrors.CodeOf(err) == pkgerrors.CodeNotFound {
				stock[item.ProductID] = 0
				continue
			}
			return Cart{}, nil, err
		}
		stock[item.ProductID] = product.Stock
	}
	return s.Reconcile(ctx, owner, stock)
}

func (s *Service) mutate(ctx context.Context, owner string, fn func(*Cart) error) (Cart, error) {
	if err := validateOwner(owner); err != nil {
		return Cart{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.load(ctx, owner)
	if err != nil {
		return Cart{}, err
	}
	if err := fn(&cart); err != nil {
		return Cart{}, err
	}
	cart.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, cart); err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return cart, nil
}

func (s *Service) load(ctx context.Context, owner string) (Cart, error) {
	cart, err := s.store.Load(ctx, owner)
	if err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	cart.Owner = owner
	return cart, nil
}

func validateOwner(owner string) error {
	if strings.TrimSpace(owner) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}
	return nil
}

func productFromBackend(p *backend.Product) Product {
	return Product{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Stock:    p.Stock,
		ImageURL: p.ImageURL,
	}
}
