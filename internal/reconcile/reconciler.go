// Package reconcile maps provider webhook statuses onto merchant statuses and
// decides which callbacks are forwarded to the merchant.
package reconcile

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/transaction"
)

// Rule describes how one provider status is treated.
type Rule struct {
	// Merchant is the merchant-facing status the provider status maps to.
	Merchant transaction.Status
	// Forward is false for internal milestones the merchant never sees.
	Forward bool
	// Settled statuses report the full amount as paid.
	Settled bool
}

// Vocabulary is a provider's status table keyed by lowercase provider status.
type Vocabulary map[string]Rule

// Validate checks that every forwarded rule targets a merchant status.
func (v Vocabulary) Validate() error {
	for status, rule := range v {
		if rule.Forward && !rule.Merchant.Valid() {
			return fmt.Errorf("provider status %q maps to unknown merchant status %q", status, rule.Merchant)
		}
	}
	return nil
}

type Outcome string

const (
	OutcomeForward      Outcome = "forwarded"
	OutcomeInternal     Outcome = "internal"
	OutcomeUnrecognized Outcome = "unrecognized"
)

// Reconciler is stateless: each call sees one event and emits at most one
// merchant event.
type Reconciler struct {
	logger zerolog.Logger
}

func NewReconciler(logger zerolog.Logger) *Reconciler {
	return &Reconciler{logger: logger}
}

// Reconcile returns the merchant event to forward, or nil with the reason it
// was dropped.
func (r *Reconciler) Reconcile(ev *transaction.WebhookEvent, vocab Vocabulary) (*transaction.ReconciledEvent, Outcome) {
	status := strings.ToLower(strings.TrimSpace(ev.Status))
	logger := r.logger.With().
		Int64("provider_id", ev.ProviderTransactionID).
		Str("merchant_transaction_id", ev.MerchantTransactionID).
		Str("status", status).
		Logger()

	rule, ok := vocab[status]
	if !ok {
		logger.Warn().Msg("unrecognized provider status, dropping webhook")
		return nil, OutcomeUnrecognized
	}
	if !rule.Forward {
		logger.Debug().Msg("internal provider status, not forwarded")
		return nil, OutcomeInternal
	}
	if !rule.Merchant.Valid() {
		logger.Error().Str("merchant_status", string(rule.Merchant)).Msg("status maps outside merchant vocabulary, dropping webhook")
		return nil, OutcomeUnrecognized
	}

	paid := "0"
	if rule.Settled {
		paid = ev.Amount.String()
	}
	direction := ev.Type
	if direction == "" {
		direction = transaction.DirectionIn
	}
	currency := ev.Currency
	if currency == "" {
		currency = transaction.DefaultCurrency
	}

	return &transaction.ReconciledEvent{
		ID:                    ev.ProviderTransactionID,
		MerchantTransactionID: ev.MerchantTransactionID,
		Type:                  direction,
		Amount:                ev.Amount.String(),
		PaidAmount:            paid,
		Currency:              currency,
		CurrencyRate:          ev.Rate.String(),
		AmountInUSD:           transaction.AmountInUSD(ev.Amount, ev.Rate),
		Status:                rule.Merchant,
	}, OutcomeForward
}

// MerchantVocabulary is used by providers that already report merchant statuses.
func MerchantVocabulary() Vocabulary {
	return Vocabulary{
		string(transaction.StatusPaid):       {Merchant: transaction.StatusPaid, Forward: true, Settled: true},
		string(transaction.StatusUnderpaid):  {Merchant: transaction.StatusUnderpaid, Forward: true},
		string(transaction.StatusOverpaid):   {Merchant: transaction.StatusOverpaid, Forward: true},
		string(transaction.StatusProcess):    {Merchant: transaction.StatusProcess, Forward: false},
		string(transaction.StatusExpired):    {Merchant: transaction.StatusExpired, Forward: true},
		string(transaction.StatusCancel):     {Merchant: transaction.StatusCancel, Forward: true},
		string(transaction.StatusError):      {Merchant: transaction.StatusError, Forward: true},
		string(transaction.StatusChargeback): {Merchant: transaction.StatusChargeback, Forward: true},
	}
}
