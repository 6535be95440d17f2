package garex

import (
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/transaction"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/providers"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/reconcile"
)

var vocabulary = reconcile.Vocabulary{
	"created":  {Forward: false},
	"pending":  {Forward: false},
	"paid":     {Merchant: transaction.StatusPaid, Forward: true, Settled: true},
	"finished": {Merchant: transaction.StatusPaid, Forward: false, Settled: true},
	"canceled": {Merchant: transaction.StatusCancel, Forward: true},
	"failed":   {Merchant: transaction.StatusError, Forward: true},
	"dispute":  {Merchant: transaction.StatusChargeback, Forward: false},
}

// ParseWebhook reads a Garex status callback. Requisite details in the body
// are not needed for reconciliation and are ignored.
func (p *Provider) ParseWebhook(body []byte) (*transaction.WebhookEvent, error) {
	f, err := providers.ParseFields(body)
	if err != nil {
		return nil, err
	}
	ev := &transaction.WebhookEvent{
		ProviderTransactionID: f.Int64("id"),
		MerchantTransactionID: f.String("orderId"),
		Type:                  transaction.DirectionIn,
		Amount:                f.Decimal("amount"),
		Rate:                  f.Decimal("rate"),
		Currency:              transaction.DefaultCurrency,
		Status:                f.String("state"),
	}
	if err := f.Err(); err != nil {
		return nil, err
	}
	return ev, nil
}

func (p *Provider) Vocabulary() reconcile.Vocabulary { return vocabulary }

// DefaultFailureMessage explains Garex rejections that arrive without a body.
func (p *Provider) DefaultFailureMessage(status int) string {
	switch status {
	case 422:
		return "order with this orderId already exists"
	case 404:
		return "no offer found for the given parameters"
	case 400:
		return "offer found but no free requisite is available"
	case 500:
		return "provider failed to load data for the offer"
	default:
		return "unexpected provider error"
	}
}
