package backend

import (
	"context"
	"fmt"
	"net/http"

	pkgerrors "github.com/angelmondragon/farmstore/pkg/errors"
)

// ListAddresses returns the signed-in user's stored addresses.
func (c *Client) ListAddresses(ctx context.Context) ([]Address, error) {
	return call[[]Address](ctx, c, request{
		endpoint: "list_addresses",
		method:   http.MethodGet,
		path:     "/addresses",
	})
}

// ListPaymentMethods returns the payment methods the backend accepts.
func (c *Client) ListPaymentMethods(ctx context.Context) ([]PaymentMethod, error) {
	return call[[]PaymentMethod](ctx, c, request{
		endpoint: "list_payment_methods",
		method:   http.MethodGet,
		path:     "/payment-methods",
	})
}

// GetProduct loads the current price and stock for a product.
func (c *Client) GetProduct(ctx context.Context, productID int64) (*Product, error) {
	if productID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := call[Product](ctx, c, request{
		endpoint: "get_product",
		method:   http.MethodGet,
		path:     fmt.Sprintf("/products/%d", productID),
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}
