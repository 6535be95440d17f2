package providers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	domainErrors "github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/errors"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/transaction"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/infrastructure/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Client binds a provider Adapter to its Transport and drives every call to it.
type Client struct {
	adapter   Adapter
	transport Transport
	logger    zerolog.Logger
	metrics   *observability.Metrics
	tracer    trace.Tracer
}

func NewClient(adapter Adapter, transport Transport, logger zerolog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		adapter:   adapter,
		transport: transport,
		logger:    logger,
		metrics:   metrics,
		tracer:    observability.Tracer("paygate/providers"),
	}
}

func (c *Client) Name() string { return c.adapter.Name() }

func (c *Client) Adapter() Adapter { return c.adapter }

// Create resolves the channel's method candidates and tries them strictly in
// order. Only upstream 404/400 rejections advance to the next candidate; any
// other failure is returned at once. When every candidate is rejected the
// last candidate's error is returned.
func (c *Client) Create(ctx context.Context, dir transaction.Direction, ch transaction.Channel, req *transaction.Request) (transaction.Response, error) {
	logger := observability.ProviderLogger(c.logger, c.Name(), string(ch)).With().
		Str("direction", string(dir)).
		Str("merchant_transaction_id", req.MerchantTransactionID).
		Logger()

	if !ch.Valid() {
		pe := domainErrors.NewUnknownMethodError("400", fmt.Sprintf("unknown channel %q", ch))
		c.recordError(pe)
		return nil, pe
	}

	candidates, err := c.adapter.Resolve(dir, ch, req)
	if err != nil {
		pe := Normalize(err)
		c.recordError(pe)
		logger.Error().
			Str("kind", string(pe.Kind)).
			Str("code", pe.Code).
			Str("bank_name", req.BankName).
			Msg(pe.Message)
		return nil, pe
	}
	if len(candidates) == 0 {
		pe := domainErrors.NewUnknownMethodError("400", fmt.Sprintf("no provider method for channel %s", ch))
		c.recordError(pe)
		return nil, pe
	}

	// An issued attempt runs to completion or its own timeout.
	ctx = context.WithoutCancel(ctx)

	var lastErr *domainErrors.ProviderError
	for i, candidate := range candidates {
		resp, pe := c.attempt(ctx, logger, dir, ch, req, candidate)
		if pe == nil {
			return resp, nil
		}
		lastErr = pe

		if !domainErrors.IsRetryableCandidateFailure(pe) || i == len(candidates)-1 {
			break
		}
		if c.metrics != nil {
			c.metrics.FallbackAdvances.WithLabelValues(c.Name(), string(ch)).Inc()
		}
		logger.Warn().
			Str("method", candidate.Method).
			Str("code", pe.Code).
			Str("next_method", candidates[i+1].Method).
			Msg("provider rejected method, trying next candidate")
	}
	return nil, lastErr
}

func (c *Client) attempt(
	ctx context.Context,
	logger zerolog.Logger,
	dir transaction.Direction,
	ch transaction.Channel,
	req *transaction.Request,
	candidate transaction.MethodCandidate,
) (transaction.Response, *domainErrors.ProviderError) {
	ctx, span := c.tracer.Start(ctx, "provider.attempt", trace.WithAttributes(
		attribute.String("provider", c.Name()),
		attribute.String("channel", string(ch)),
		attribute.String("method", candidate.Method),
		attribute.Int("attempt", candidate.Position),
	))
	defer span.End()

	logger = logger.With().Str("method", candidate.Method).Int("attempt", candidate.Position).Logger()

	call, err := c.adapter.Encode(dir, ch, req, candidate)
	if err != nil {
		return nil, c.fail(span, logger, err)
	}
	if e := logger.Debug(); e.Enabled() {
		e.Str("path", call.Path).Interface("payload", observability.MaskPayload(call.Payload)).Msg("sending provider request")
	}
	reply, err := c.transport.Send(ctx, call)
	if err != nil {
		return nil, c.fail(span, logger, err)
	}
	resp, err := c.adapter.Decode(dir, ch, reply.Body)
	if err != nil {
		return nil, c.fail(span, logger, err)
	}

	span.SetStatus(codes.Ok, "")
	logger.Info().Int64("provider_id", resp.Base().ID).Msg("provider accepted transaction")
	return resp, nil
}

// Cancel asks the provider to cancel transaction id.
func (c *Client) Cancel(ctx context.Context, id string) error {
	canceller, ok := c.adapter.(Canceller)
	if !ok {
		return fmt.Errorf("%s cancel: %w", c.Name(), domainErrors.ErrUnsupportedOperation)
	}

	ctx, span := c.tracer.Start(context.WithoutCancel(ctx), "provider.cancel", trace.WithAttributes(
		attribute.String("provider", c.Name()),
		attribute.String("transaction_id", id),
	))
	defer span.End()
	logger := c.logger.With().Str("provider", c.Name()).Str("transaction_id", id).Logger()

	if err := canceller.Cancel(ctx, c.transport, id); err != nil {
		return c.fail(span, logger, err)
	}
	logger.Info().Msg("transaction cancelled")
	return nil
}

// Info fetches the provider's view of transaction id.
func (c *Client) Info(ctx context.Context, id string) (*transaction.Info, error) {
	inspector, ok := c.adapter.(Inspector)
	if !ok {
		return nil, fmt.Errorf("%s info: %w", c.Name(), domainErrors.ErrUnsupportedOperation)
	}

	ctx, span := c.tracer.Start(context.WithoutCancel(ctx), "provider.info", trace.WithAttributes(
		attribute.String("provider", c.Name()),
		attribute.String("transaction_id", id),
	))
	defer span.End()
	logger := c.logger.With().Str("provider", c.Name()).Str("transaction_id", id).Logger()

	info, err := inspector.Info(ctx, c.transport, id)
	if err != nil {
		return nil, c.fail(span, logger, err)
	}
	return info, nil
}

func (c *Client) fail(span trace.Span, logger zerolog.Logger, err error) *domainErrors.ProviderError {
	pe := c.normalize(err)
	c.recordError(pe)
	span.RecordError(pe)
	span.SetStatus(codes.Error, string(pe.Kind))

	event := logger.Warn()
	switch pe.Kind {
	case domainErrors.KindMalformedResponse, domainErrors.KindUnknownProviderMethod, domainErrors.KindUnknown:
		event = logger.Error()
	}
	event.Str("kind", string(pe.Kind)).
		Str("code", pe.Code).
		Str("field", pe.Field).
		Msg(pe.Message)
	return pe
}

func (c *Client) normalize(err error) *domainErrors.ProviderError {
	pe := Normalize(err)
	if pe.Kind != domainErrors.KindUpstreamHTTP || pe.Message != "" {
		return pe
	}
	if fm, ok := c.adapter.(FailureMessages); ok {
		status, _ := strconv.Atoi(pe.Code)
		pe.Message = fm.DefaultFailureMessage(status)
	}
	return pe
}

func (c *Client) recordError(pe *domainErrors.ProviderError) {
	if c.metrics != nil {
		c.metrics.ProviderErrors.WithLabelValues(c.Name(), string(pe.Kind), pe.Code).Inc()
	}
}
