package paygate

import (
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/transaction"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/providers"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/reconcile"
)

var vocabulary = reconcile.MerchantVocabulary()

// ParseWebhook reads a merchant-shaped status callback.
func (p *Provider) ParseWebhook(body []byte) (*transaction.WebhookEvent, error) {
	f, err := providers.ParseFields(body)
	if err != nil {
		return nil, err
	}
	ev := &transaction.WebhookEvent{
		ProviderTransactionID: f.Int64("id"),
		MerchantTransactionID: f.String("merchant_transaction_id"),
		Amount:                f.Decimal("amount"),
		Rate:                  f.Decimal("currency_rate"),
		Status:                f.String("status"),
		Type:                  transaction.Direction(f.OptionalString("type")),
		Currency:              f.OptionalString("currency"),
	}
	if err := f.Err(); err != nil {
		return nil, err
	}
	return ev, nil
}

func (p *Provider) Vocabulary() reconcile.Vocabulary { return vocabulary }
