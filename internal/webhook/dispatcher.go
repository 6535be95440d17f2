// Package webhook delivers reconciled status events to the merchant.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/transaction"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/infrastructure/config"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/infrastructure/observability"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const EventIDHeader = "X-Event-ID"

// Dispatcher posts events to the merchant URL in the background. Each
// delivery is attempted once; failures are logged and counted, never
// reported to the caller.
type Dispatcher struct {
	client  *http.Client
	url     string
	timeout time.Duration
	logger  zerolog.Logger
	metrics *observability.Metrics

	wg sync.WaitGroup
}

type Option func(*Dispatcher)

func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) { d.client = c }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

func NewDispatcher(cfg config.WebhookConfig, logger zerolog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		url:     cfg.MerchantURL,
		timeout: cfg.DispatchTimeout,
		logger:  logger.With().Str("component", "webhook_dispatcher").Logger(),
	}
	if d.timeout <= 0 {
		d.timeout = 10 * time.Second
	}
	for _, o := range opts {
		o(d)
	}
	if d.client == nil {
		d.client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return d
}

// Dispatch schedules delivery of ev and returns immediately. The delivery
// outlives ctx's cancellation but keeps its values for tracing.
func (d *Dispatcher) Dispatch(ctx context.Context, provider string, ev *transaction.ReconciledEvent) {
	eventID := uuid.New().String()
	ctx = context.WithoutCancel(ctx)

	d.wg.Add(1)
	if d.metrics != nil {
		d.metrics.DispatchesInFlight.Inc()
	}
	go func() {
		defer d.wg.Done()
		if d.metrics != nil {
			defer d.metrics.DispatchesInFlight.Dec()
		}
		d.deliver(ctx, provider, eventID, ev)
	}()
}

func (d *Dispatcher) deliver(ctx context.Context, provider, eventID string, ev *transaction.ReconciledEvent) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	logger := d.logger.With().
		Str("provider", provider).
		Str("event_id", eventID).
		Str("merchant_transaction_id", ev.MerchantTransactionID).
		Str("status", string(ev.Status)).
		Logger()

	start := time.Now()
	status, err := d.send(ctx, eventID, ev)
	result := "delivered"
	if err != nil {
		result = "failed"
	}
	if d.metrics != nil {
		d.metrics.DispatchTotal.WithLabelValues(result).Inc()
		d.metrics.DispatchDuration.Observe(time.Since(start).Seconds())
	}

	if err != nil {
		logger.Error().Err(err).Int("status_code", status).Msg("merchant webhook delivery failed")
		return
	}
	logger.Info().Int("status_code", status).Dur("duration", time.Since(start)).Msg("merchant webhook delivered")
}

func (d *Dispatcher) send(ctx context.Context, eventID string, ev *transaction.ReconciledEvent) (int, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return 0, fmt.Errorf("encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(EventIDHeader, eventID)

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("merchant responded with status %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}

// Shutdown waits for in-flight deliveries or until ctx is done.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
