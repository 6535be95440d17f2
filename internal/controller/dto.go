package controller

import (
	"strconv"

	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/transaction"
)

// --- Request DTOs ---
// Money arrives as strings so amounts are never rounded through float64.

// TransactionRequest is the body of every create endpoint. Which of the
// optional fields are required depends on the route; see transactionRoutes.
type TransactionRequest struct {
	Amount                string `json:"amount" validate:"required,amount"`
	Currency              string `json:"currency" validate:"required,currency"`
	MerchantTransactionID string `json:"merchant_transaction_id" validate:"required,max=255"`
	CurrencyRate          string `json:"currency_rate,omitempty" validate:"omitempty,positive_decimal"`
	ClientID              string `json:"client_id,omitempty" validate:"omitempty,max=255"`
	BankName              string `json:"bank_name,omitempty" validate:"omitempty,max=255"`
	CardNumber            string `json:"card_number,omitempty" validate:"omitempty,numeric,min=12,max=19"`
	PhoneNumber           string `json:"phone_number,omitempty" validate:"omitempty,max=32"`
	OwnerName             string `json:"owner_name,omitempty" validate:"omitempty,max=255"`
}

// value returns the named optional field, keyed by its JSON name.
func (r *TransactionRequest) value(field string) string {
	switch field {
	case "bank_name":
		return r.BankName
	case "card_number":
		return r.CardNumber
	case "phone_number":
		return r.PhoneNumber
	case "owner_name":
		return r.OwnerName
	default:
		return ""
	}
}

// ToDomain converts a validated request. Amount has already passed the
// amount validator, so the parse cannot fail on well-formed input.
func (r *TransactionRequest) ToDomain() (*transaction.Request, error) {
	amount, err := strconv.ParseInt(r.Amount, 10, 64)
	if err != nil {
		return nil, err
	}
	return &transaction.Request{
		MerchantTransactionID: r.MerchantTransactionID,
		Amount:                amount,
		Currency:              r.Currency,
		CurrencyRate:          r.CurrencyRate,
		ClientID:              r.ClientID,
		BankName:              r.BankName,
		CardNumber:            r.CardNumber,
		PhoneNumber:           r.PhoneNumber,
		OwnerName:             r.OwnerName,
	}, nil
}

// --- Response DTOs ---

// ErrorResponse is the body of every non-2xx answer. Errors is set only when
// more than one request field failed validation.
type ErrorResponse struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// AckResponse acknowledges a processed provider webhook.
type AckResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
