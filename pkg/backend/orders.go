package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/farmstore/pkg/errors"
)

// CreateOrder submits the cart as a new order. It is not idempotent: every
// call creates a new order on the backend.
func (c *Client) CreateOrder(ctx context.Context, submission OrderSubmission) (*OrderCreationResult, error) {
	if len(submission.OrderItems) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	if strings.TrimSpace(submission.ShippingAddress) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}
	result, err := call[OrderCreationResult](ctx, c, request{
		endpoint: "create_order",
		method:   http.MethodPost,
		path:     "/orders",
		body:     submission,
	})
	if err != nil {
		return nil, err
	}
	if result.OrderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order response missing order id")
	}
	result.PaymentURL = strings.TrimSpace(result.PaymentURL)
	return &result, nil
}

type paymentURLBody struct {
	OrderID          int64       `json:"orderId"`
	Amount           json.Number `json:"amount"`
	OrderDescription string      `json:"orderDescription"`
	Name             string      `json:"name"`
	Source           string      `json:"source"`
}

// CreatePaymentURL asks the backend for a gateway redirect URL for an
// existing order.
func (c *Client) CreatePaymentURL(ctx context.Context, req PaymentURLRequest) (*PaymentURLResult, error) {
	if req.OrderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	result, err := call[PaymentURLResult](ctx, c, request{
		endpoint: "create_payment_url",
		method:   http.MethodPost,
		path:     "/orders/payment-url",
		body: paymentURLBody{
			OrderID:          req.OrderID,
			Amount:           json.Number(req.Amount.String()),
			OrderDescription: req.OrderDescription,
			Name:             req.Name,
			Source:           req.Source,
		},
	})
	if err != nil {
		return nil, err
	}
	result.PaymentURL = strings.TrimSpace(result.PaymentURL)
	if result.PaymentURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeRejected, "payment link was not returned")
	}
	return &result, nil
}

// CreateOrderPayment asks the backend to persist an offline payment record.
func (c *Client) CreateOrderPayment(ctx context.Context, orderID int64) error {
	if orderID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	_, err := call[json.RawMessage](ctx, c, request{
		endpoint: "create_order_payment",
		method:   http.MethodPost,
		path:     fmt.Sprintf("/orders/%d/payment", orderID),
	})
	return err
}

// GetOrder loads an order's current status.
func (c *Client) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := call[Order](ctx, c, request{
		endpoint: "get_order",
		method:   http.MethodGet,
		path:     fmt.Sprintf("/orders/%d", orderID),
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderFull loads an order with its lines and payment record.
func (c *Client) GetOrderFull(ctx context.Context, orderID int64) (*OrderDetail, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	detail, err := call[OrderDetail](ctx, c, request{
		endpoint: "get_order_full",
		method:   http.MethodGet,
		path:     fmt.Sprintf("/orders/%d/full", orderID),
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}
