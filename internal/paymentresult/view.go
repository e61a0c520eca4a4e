package paymentresult

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/farmstore/pkg/backend"
	"github.com/angelmondragon/farmstore/pkg/enums"
)

// View is what the result screen shows.
type View struct {
	Kind     enums.ResultView    `json:"view"`
	OrderID  int64               `json:"orderId"`
	Status   enums.PaymentStatus `json:"paymentStatus,omitempty"`
	Amount   *decimal.Decimal    `json:"amount,omitempty"`
	Order    *backend.Order      `json:"order,omitempty"`
	Title    string              `json:"title"`
	Message  string              `json:"message,omitempty"`
	CanRetry bool                `json:"canRetry"`
}

// Render picks the view for a payment status. An empty status means the
// answer is still outstanding. Only PAID is a success; anything else,
// pending included, is shown as failed with a retry.
func Render(status enums.PaymentStatus, orderID int64, amount *decimal.Decimal, order *backend.Order) View {
	v := View{OrderID: orderID, Status: status, Amount: amount, Order: order}
	if v.Amount == nil && order != nil {
		total := order.TotalPrice
		v.Amount = &total
	}

	switch status {
	case "":
		v.Kind = enums.ResultViewLoading
		v.Title = "Checking payment"
	case enums.PaymentStatusPaid:
		v.Kind = enums.ResultViewSuccess
		v.Title = "Payment successful"
	case enums.PaymentStatusPending, enums.PaymentStatusUnpaid:
		v.Kind = enums.ResultViewFailed
		v.Title = "Payment not confirmed yet"
		v.Message = "the payment has not been confirmed, try again in a moment"
		v.CanRetry = true
	case enums.PaymentStatusCancelled:
		v.Kind = enums.ResultViewFailed
		v.Title = "Payment cancelled"
		v.CanRetry = true
	default:
		v.Kind = enums.ResultViewFailed
		v.Title = "Payment failed"
		v.CanRetry = true
	}
	return v
}

// Loading is the view shown before any status is known.
func Loading(orderID int64) View {
	return Render("", orderID, nil, nil)
}
