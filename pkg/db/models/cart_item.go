package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem persists one line of a device-local cart.
type CartItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Owner        string          `gorm:"column:owner;type:varchar(128);not null;index:idx_cart_items_owner_position,priority:1"`
	Position     int             `gorm:"column:position;not null;index:idx_cart_items_owner_position,priority:2"`
	ProductID    int64           `gorm:"column:product_id;not null"`
	ProductName  string          `gorm:"column:product_name;not null"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(18,2);not null"`
	Quantity     int             `gorm:"column:quantity;not null"`
	ProductStock int             `gorm:"column:product_stock;not null"`
	ImageURL     string          `gorm:"column:image_url"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
