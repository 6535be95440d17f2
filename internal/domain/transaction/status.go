package transaction

import (
	"github.com/shopspring/decimal"
)

// Status is the merchant-facing transaction status vocabulary.
type Status string

const (
	StatusPaid       Status = "paid"
	StatusUnderpaid  Status = "underpaid"
	StatusOverpaid   Status = "overpaid"
	StatusProcess    Status = "process"
	StatusExpired    Status = "expired"
	StatusCancel     Status = "cancel"
	StatusError      Status = "error"
	StatusChargeback Status = "chargeback"
)

var merchantStatuses = map[Status]struct{}{
	StatusPaid: {}, StatusUnderpaid: {}, StatusOverpaid: {}, StatusProcess: {},
	StatusExpired: {}, StatusCancel: {}, StatusError: {}, StatusChargeback: {},
}

func (s Status) Valid() bool {
	_, ok := merchantStatuses[s]
	return ok
}

// WebhookEvent is a provider status callback after provider-specific parsing.
type WebhookEvent struct {
	ProviderTransactionID int64
	MerchantTransactionID string
	Type                  Direction
	Amount                decimal.Decimal
	Rate                  decimal.Decimal
	Currency              string
	Status                string
}

// ReconciledEvent is the merchant-shaped notification built from a WebhookEvent.
type ReconciledEvent struct {
	ID                    int64     `json:"id"`
	MerchantTransactionID string    `json:"merchant_transaction_id"`
	Type                  Direction `json:"type"`
	Amount                string    `json:"amount"`
	PaidAmount            string    `json:"paid_amount"`
	Currency              string    `json:"currency"`
	CurrencyRate          string    `json:"currency_rate"`
	AmountInUSD           string    `json:"amount_in_usd"`
	Status                Status    `json:"status"`
}
