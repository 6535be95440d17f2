package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/infrastructure/config"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/infrastructure/observability"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxReplyBytes = 1 << 20

// HTTPStatusError is returned by a Transport when the provider answers non-2xx.
type HTTPStatusError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("provider responded with status %d", e.StatusCode)
}

type HTTPTransport struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*Reply]
	metrics *observability.Metrics
}

type TransportOption func(*HTTPTransport)

func WithHTTPClient(c *http.Client) TransportOption {
	return func(t *HTTPTransport) { t.client = c }
}

func WithMetrics(m *observability.Metrics) TransportOption {
	return func(t *HTTPTransport) { t.metrics = m }
}

// NewHTTPClient builds the pooled client for one provider: a short connect
// timeout, a longer overall timeout and bounded connection counts.
func NewHTTPClient(cfg config.ProviderConfig) *http.Client {
	dialer := &net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}
	base := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		MaxConnsPerHost:     cfg.MaxConnections,
		MaxIdleConns:        cfg.MaxIdleConnections,
		MaxIdleConnsPerHost: cfg.MaxIdleConnections,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: cfg.ConnectTimeout,
	}
	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(base),
	}
}

func NewHTTPTransport(name string, cfg config.ProviderConfig, opts ...TransportOption) *HTTPTransport {
	t := &HTTPTransport{
		name:    name,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}
	for _, o := range opts {
		o(t)
	}
	if t.client == nil {
		t.client = NewHTTPClient(cfg)
	}

	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 10
	}
	openTimeout := cfg.BreakerTimeout
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}

	t.breaker = gobreaker.NewCircuitBreaker[*Reply](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// Business rejections (4xx) say nothing about provider health.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var statusErr *HTTPStatusError
			return errors.As(err, &statusErr) && statusErr.StatusCode < http.StatusInternalServerError
		},
		OnStateChange: func(name string, _, to gobreaker.State) {
			if t.metrics != nil {
				t.metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			}
		},
	})

	return t
}

func (t *HTTPTransport) Name() string { return t.name }

func (t *HTTPTransport) Send(ctx context.Context, call *Call) (*Reply, error) {
	start := time.Now()
	reply, err := t.breaker.Execute(func() (*Reply, error) {
		return t.do(ctx, call)
	})

	if t.metrics != nil {
		t.metrics.ProviderRequestsTotal.WithLabelValues(t.name, outcomeOf(err)).Inc()
		t.metrics.ProviderRequestDuration.WithLabelValues(t.name).Observe(time.Since(start).Seconds())
	}
	return reply, err
}

func (t *HTTPTransport) do(ctx context.Context, call *Call) (*Reply, error) {
	var body io.Reader
	if call.Payload != nil {
		data, err := json.Marshal(call.Payload)
		if err != nil {
			return nil, fmt.Errorf("encode provider payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, t.baseURL+call.Path, body)
	if err != nil {
		return nil, fmt.Errorf("build provider request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Body: data}
	}
	return &Reply{StatusCode: resp.StatusCode, Body: data}, nil
}

func outcomeOf(err error) string {
	var statusErr *HTTPStatusError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &statusErr):
		return "http_error"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "circuit_open"
	default:
		return "transport_error"
	}
}
