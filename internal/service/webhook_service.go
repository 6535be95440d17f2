package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	domainErrors "github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/errors"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/transaction"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/infrastructure/config"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/infrastructure/observability"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/providers"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/reconcile"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/signature"
)

// Webhook outcomes reported to the caller and used as metric labels.
const (
	WebhookDispatched   = "dispatched"
	WebhookInternal     = "internal"
	WebhookUnrecognized = "unrecognized"
	WebhookDuplicate    = "duplicate"
)

// InboundWebhook is a provider callback as received at the HTTP edge.
type InboundWebhook struct {
	Provider  string
	Path      string
	RawQuery  string
	Body      []byte
	Signature string
}

type WebhookResult struct {
	Outcome string
	Event   *transaction.ReconciledEvent
}

// WebhookService verifies, parses and reconciles provider callbacks and hands
// forwardable events to the Dispatcher.
type WebhookService struct {
	factory    *providers.Factory
	cfg        config.WebhookConfig
	reconciler *reconcile.Reconciler
	dedup      Deduplicator
	dispatcher Dispatcher
	logger     zerolog.Logger
	metrics    *observability.Metrics
}

func NewWebhookService(
	factory *providers.Factory,
	cfg config.WebhookConfig,
	dedup Deduplicator,
	dispatcher Dispatcher,
	logger zerolog.Logger,
	metrics *observability.Metrics,
) *WebhookService {
	if dedup == nil {
		dedup = NopDeduplicator{}
	}
	return &WebhookService{
		factory:    factory,
		cfg:        cfg,
		reconciler: reconcile.NewReconciler(logger),
		dedup:      dedup,
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
	}
}

// Handle processes one callback. A nil error means the provider should get
// an acknowledgement, even when nothing was forwarded.
func (s *WebhookService) Handle(ctx context.Context, in InboundWebhook) (*WebhookResult, error) {
	result, err := s.handle(ctx, in)
	if s.metrics != nil {
		label := "rejected"
		if err == nil {
			label = result.Outcome
		}
		s.metrics.WebhooksTotal.WithLabelValues(in.Provider, label).Inc()
	}
	return result, err
}

func (s *WebhookService) handle(ctx context.Context, in InboundWebhook) (*WebhookResult, error) {
	client, err := s.factory.Get(in.Provider)
	if err != nil {
		return nil, err
	}
	adapter, ok := client.Adapter().(providers.WebhookAdapter)
	if !ok {
		return nil, fmt.Errorf("provider %q does not accept webhooks: %w", in.Provider, domainErrors.ErrProviderNotFound)
	}

	if !s.cfg.Enabled {
		return nil, domainErrors.ErrWebhookDisabled
	}
	if s.cfg.SecretKey == "" {
		s.logger.Error().Str("provider", in.Provider).Msg("webhook secret is not configured")
		return nil, domainErrors.ErrWebhookMisconfigured
	}

	logger := s.logger.With().Str("provider", in.Provider).Logger()

	if !json.Valid(in.Body) {
		return nil, fmt.Errorf("%w: body is not valid JSON", domainErrors.ErrInvalidPayload)
	}
	if !signature.Verify(in.Path, in.RawQuery, in.Body, in.Signature, s.cfg.SecretKey) {
		logger.Warn().Bool("signature_present", in.Signature != "").Msg("webhook signature rejected")
		return nil, domainErrors.ErrInvalidSignature
	}

	ev, err := adapter.ParseWebhook(in.Body)
	if err != nil {
		logger.Warn().Err(err).Interface("body", observability.MaskJSON(in.Body)).Msg("malformed webhook payload")
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrInvalidPayload, err)
	}

	out, outcome := s.reconciler.Reconcile(ev, adapter.Vocabulary())
	switch outcome {
	case reconcile.OutcomeInternal:
		return &WebhookResult{Outcome: WebhookInternal}, nil
	case reconcile.OutcomeUnrecognized:
		return &WebhookResult{Outcome: WebhookUnrecognized}, nil
	}

	key := fmt.Sprintf("webhook:%s:%d:%s", in.Provider, out.ID, out.Status)
	first, err := s.dedup.FirstSeen(ctx, key)
	if err != nil {
		logger.Warn().Err(err).Msg("webhook dedup unavailable, forwarding anyway")
		first = true
	}
	if !first {
		logger.Info().
			Int64("provider_id", out.ID).
			Str("status", string(out.Status)).
			Msg("duplicate webhook delivery suppressed")
		return &WebhookResult{Outcome: WebhookDuplicate}, nil
	}

	s.dispatcher.Dispatch(ctx, in.Provider, out)
	logger.Info().
		Int64("provider_id", out.ID).
		Str("merchant_transaction_id", out.MerchantTransactionID).
		Str("status", string(out.Status)).
		Msg("webhook reconciled, merchant notification scheduled")
	return &WebhookResult{Outcome: WebhookDispatched, Event: out}, nil
}
