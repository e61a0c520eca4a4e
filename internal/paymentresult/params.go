package paymentresult

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/farmstore/pkg/enums"
	pkgerrors "github.com/angelmondragon/farmstore/pkg/errors"
)

// VNPay reports amounts in hundredths of the currency unit.
var vnpAmountScale = decimal.NewFromInt(100)

// Params are the values the result screen is opened with, either from a
// gateway redirect or from a manual return carrying only the order id.
type Params struct {
	OrderID int64
	Status  enums.PaymentStatus
	Amount  *decimal.Decimal
	Code    string
	Raw     url.Values
}

// HasStatus reports whether the gateway already told us the outcome.
func (p Params) HasStatus() bool {
	return p.Status != ""
}

// ParseCallback reads gateway redirect parameters. Generic keys win over
// the VNPay-prefixed ones when both are present.
func ParseCallback(query url.Values) (Params, error) {
	p := Params{Raw: query}

	rawOrderID := first(query, "orderId", "vnp_TxnRef")
	if rawOrderID == "" {
		return Params{}, pkgerrors.New(pkgerrors.CodeValidation, "orderId is required")
	}
	orderID, err := strconv.ParseInt(rawOrderID, 10, 64)
	if err != nil || orderID <= 0 {
		return Params{}, pkgerrors.New(pkgerrors.CodeValidation, "orderId must be a positive integer").
			WithDetails(map[string]string{"orderId": rawOrderID})
	}
	p.OrderID = orderID

	p.Code = first(query, "code", "vnp_ResponseCode")

	if raw := strings.TrimSpace(query.Get("amount")); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return Params{}, pkgerrors.New(pkgerrors.CodeValidation, "amount must be numeric")
		}
		p.Amount = &amount
	} else if raw := strings.TrimSpace(query.Get("vnp_Amount")); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return Params{}, pkgerrors.New(pkgerrors.CodeValidation, "vnp_Amount must be numeric")
		}
		scaled := amount.Div(vnpAmountScale)
		p.Amount = &scaled
	}

	if status := strings.TrimSpace(query.Get("status")); status != "" {
		p.Status = ClassifyStatus(status)
	} else if code := strings.TrimSpace(query.Get("vnp_ResponseCode")); code != "" {
		p.Status = classifyVNPayCode(code)
	}
	return p, nil
}

// ClassifyStatus maps a free-form gateway status onto a payment status.
// Unknown values count as failed.
func ClassifyStatus(raw string) enums.PaymentStatus {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if parsed, err := enums.ParsePaymentStatus(value); err == nil {
		return parsed
	}
	switch value {
	case "SUCCESS", "SUCCEEDED", "OK", "00":
		return enums.PaymentStatusPaid
	case "CANCEL", "CANCELED":
		return enums.PaymentStatusCancelled
	}
	return enums.PaymentStatusFailed
}

func classifyVNPayCode(code string) enums.PaymentStatus {
	switch code {
	case "00":
		return enums.PaymentStatusPaid
	case "24":
		return enums.PaymentStatusCancelled
	}
	return enums.PaymentStatusFailed
}

func first(query url.Values, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(query.Get(key)); v != "" {
			return v
		}
	}
	return ""
}
