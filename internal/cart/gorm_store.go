package cart

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/farmstore/pkg/db/models"
)

// txRunner is satisfied by *db.Client.
type txRunner interface {
	DB() *gorm.DB
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// GormStore persists carts as cart_items rows, one row per line.
type GormStore struct {
	db txRunner
}

func NewGormStore(db txRunner) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the cart_items table.
func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.DB().WithContext(ctx).AutoMigrate(&models.CartItem{})
}

func (s *GormStore) Load(ctx context.Context, owner string) (Cart, error) {
	var rows []models.CartItem
	if err := s.db.DB().WithContext(ctx).
		Where("owner = ?", owner).
		Order("position ASC").
		Find(&rows).Error; err != nil {
		return Cart{}, err
	}

	cart := Cart{Owner: owner}
	for _, row := range rows {
		cart.Items = append(cart.Items, itemFromModel(row))
		if row.UpdatedAt.After(cart.UpdatedAt) {
			cart.UpdatedAt = row.UpdatedAt
		}
	}
	return cart, nil
}

// Save replaces every stored line of the owner's cart in one transaction.
func (s *GormStore) Save(ctx context.Context, cart Cart) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("owner = ?", cart.Owner).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return nil
		}
		rows := make([]models.CartItem, 0, len(cart.Items))
		for i, item := range cart.Items {
			rows = append(rows, itemToModel(cart.Owner, i, item))
		}
		return tx.Create(&rows).Error
	})
}

func (s *GormStore) Clear(ctx context.Context, owner string) error {
	return s.db.DB().WithContext(ctx).
		Where("owner = ?", owner).
		Delete(&models.CartItem{}).Error
}

func itemToModel(owner string, position int, item Item) models.CartItem {
	return models.CartItem{
		ID:           item.ID,
		Owner:        owner,
		Position:     position,
		ProductID:    item.ProductID,
		ProductName:  item.ProductName,
		UnitPrice:    item.UnitPrice,
		Quantity:     item.Quantity,
		ProductStock: item.ProductStock,
		ImageURL:     item.ImageURL,
	}
}

func itemFromModel(row models.CartItem) Item {
	return Item{
		ID:           row.ID,
		ProductID:    row.ProductID,
		ProductName:  row.ProductName,
		UnitPrice:    row.UnitPrice,
		Quantity:     row.Quantity,
		ProductStock: row.ProductStock,
		ImageURL:     row.ImageURL,
	}
}
