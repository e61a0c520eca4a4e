package backend

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/farmstore/pkg/enums"
)

// OrderItem is one line of an order submission.
type OrderItem struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gte=1"`
}

// OrderSubmission is the body of POST /orders.
type OrderSubmission struct {
	OrderItems      []OrderItem `json:"orderItems" validate:"required,min=1,dive"`
	ShippingAddress string      `json:"shippingAddress" validate:"required"`
}

// OrderCreationResult is returned by POST /orders. PaymentURL is only set
// when the backend could pre-resolve the gateway redirect.
type OrderCreationResult struct {
	OrderID    int64           `json:"orderId"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	PaymentURL string          `json:"paymentUrl,omitempty"`
}

// PaymentURLRequest is the body of POST /orders/payment-url.
type PaymentURLRequest struct {
	OrderID          int64           `json:"orderId" validate:"required,gt=0"`
	Amount           decimal.Decimal `json:"-"`
	OrderDescription string          `json:"orderDescription" validate:"required"`
	Name             string          `json:"name"`
	Source           string          `json:"source" validate:"required"`
}

// PaymentURLResult is returned by POST /orders/payment-url.
type PaymentURLResult struct {
	PaymentURL string `json:"paymentUrl"`
}

// Order mirrors GET /orders/{id}.
type Order struct {
	ID              int64               `json:"id"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentStatus   enums.PaymentStatus `json:"paymentStatus"`
	TotalPrice      decimal.Decimal     `json:"totalPrice"`
	ShippingAddress string              `json:"shippingAddress"`
	PaymentMethod   string              `json:"paymentMethod,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
}

// OrderLine is one product line of a full order.
type OrderLine struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

// Payment is the backend-owned payment record attached to an order.
type Payment struct {
	ID            int64               `json:"id"`
	Amount        decimal.Decimal     `json:"amount"`
	Status        enums.PaymentStatus `json:"status"`
	TransactionID string              `json:"transactionId,omitempty"`
	PaidAt        *time.Time          `json:"paidAt,omitempty"`
}

// OrderDetail mirrors GET /orders/{id}/full.
type OrderDetail struct {
	Order
	Items   []OrderLine `json:"items"`
	Payment *Payment    `json:"payment,omitempty"`
}

// Address is a stored shipping address.
type Address struct {
	ID            string `json:"id"`
	RecipientName string `json:"recipientName"`
	Phone         string `json:"phone"`
	Street        string `json:"street"`
	Ward          string `json:"ward"`
	District      string `json:"district"`
	City          string `json:"city"`
	IsDefault     bool   `json:"isDefault"`
}

// PaymentMethod is a selectable way to pay.
type PaymentMethod struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Type        enums.PaymentMethodType `json:"type"`
	Description string                  `json:"description,omitempty"`
	Active      *bool                   `json:"active,omitempty"`
}

// Enabled reports whether the method can be offered. A missing active flag
// counts as enabled; only an explicit false hides the method.
func (m PaymentMethod) Enabled() bool {
	return m.Active == nil || *m.Active
}

// Product carries the fields the cart needs to reconcile stock and price.
type Product struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	ImageURL string          `json:"imageUrl,omitempty"`
}
