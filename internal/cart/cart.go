package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/farmstore/pkg/errors"
)

// Item is one product line in the cart. Quantity stays within
// [1, ProductStock] after every mutation.
type Item struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    int64           `json:"productId"`
	ProductName  string          `json:"productName"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Quantity     int             `json:"quantity"`
	ProductStock int             `json:"productStock"`
	ImageURL     string          `json:"imageUrl,omitempty"`
}

// Subtotal is UnitPrice × Quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Product is the catalog snapshot used when adding or refreshing a line.
type Product struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	Stock    int
	ImageURL string
}

// Cart is the local list of selected items for one owner.
type Cart struct {
	Owner     string    `json:"owner"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ItemCount is the sum of quantities.
func (c Cart) ItemCount() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c Cart) indexOf(itemID uuid.UUID) int {
	for i, item := range c.Items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

func (c Cart) indexOfProduct(productID int64) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func itemNotFound(itemID uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found").
		WithDetails(map[string]any{"itemId": itemID.String()})
}

// Add puts quantity units of product into the cart. An existing line for
// the same product is merged and refreshed with the snapshot's price and
// stock. The resulting quantity is clamped to stock.
func (c *Cart) Add(product Product, quantity int) error {
	if product.ID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if product.Stock < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product is out of stock")
	}

	if idx := c.indexOfProduct(product.ID); idx >= 0 {
		item := &c.Items[idx]
		item.ProductName = product.Name
		item.UnitPrice = product.Price
		item.ProductStock = product.Stock
		item.ImageURL = product.ImageURL
		item.Quantity = min(item.Quantity+quantity, product.Stock)
		return nil
	}

	c.Items = append(c.Items, Item{
		ID:           uuid.New(),
		ProductID:    product.ID,
		ProductName:  product.Name,
		UnitPrice:    product.Price,
		Quantity:     min(quantity, product.Stock),
		ProductStock: product.Stock,
		ImageURL:     product.ImageURL,
	})
	return nil
}

// Increment raises the quantity by one. At stock it is a no-op and
// reports false.
func (c *Cart) Increment(itemID uuid.UUID) (bool, error) {
	idx := c.indexOf(itemID)
	if idx < 0 {
		return false, itemNotFound(itemID)
	}
	item := &c.Items[idx]
	if item.Quantity >= item.ProductStock {
		return false, nil
	}
	item.Quantity++
	return true, nil
}

// Decrement lowers the quantity by one. At 1 it is a no-op; removing
// the line takes an explicit Remove.
func (c *Cart) Decrement(itemID uuid.UUID) (bool, error) {
	idx := c.indexOf(itemID)
	if idx < 0 {
		return false, itemNotFound(itemID)
	}
	item := &c.Items[idx]
	if item.Quantity <= 1 {
		return false, nil
	}
	item.Quantity--
	return true, nil
}

// SetQuantity sets an absolute quantity, clamped to stock.
func (c *Cart) SetQuantity(itemID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	idx := c.indexOf(itemID)
	if idx < 0 {
		return itemNotFound(itemID)
	}
	item := &c.Items[idx]
	item.Quantity = min(quantity, item.ProductStock)
	return nil
}

func (c *Cart) Remove(itemID uuid.UUID) error {
	idx := c.indexOf(itemID)
	if idx < 0 {
		return itemNotFound(itemID)
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	return nil
}

// Clear drops every item.
func (c *Cart) Clear() {
	c.Items = nil
}

// Adjustment records a change made while reconciling against fresh stock.
type Adjustment struct {
	ItemID      uuid.UUID `json:"itemId"`
	ProductID   int64     `json:"productId"`
	ProductName string    `json:"productName"`
	From        int       `json:"from"`
	To          int       `json:"to"`
	Removed     bool      `json:"removed"`
}

// Reconcile applies fresh stock levels keyed by product id. Products
// missing from stock are left alone. Lines whose product sold out are
// dropped and the rest are clamped to the new stock.
func (c *Cart) Reconcile(stock map[int64]int) []Adjustment {
	var adjustments []Adjustment
	kept := c.Items[:0]
	for _, item := range c.Items {
		available, ok := stock[item.ProductID]
		if !ok {
			kept = append(kept, item)
			continue
		}
		if available <= 0 {
			adjustments = append(adjustments, Adjustment{
				ItemID:      item.ID,
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				From:        item.Quantity,
				To:          0,
				Removed:     true,
			})
			continue
		}
		item.ProductStock = available
		if item.Quantity > available {
			adjustments = append(adjustments, Adjustment{
				ItemID:      item.ID,
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				From:        item.Quantity,
				To:          available,
			})
			item.Quantity = available
		}
		kept = append(kept, item)
	}
	c.Items = kept
	return adjustments
}
