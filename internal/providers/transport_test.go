package providers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/errors"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/infrastructure/config"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/infrastructure/observability"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/providers"
)

func transportConfig(url string) config.ProviderConfig {
	return config.ProviderConfig{
		BaseURL:            url + "/",
		APIKey:             "secret-key",
		Timeout:            2 * time.Second,
		ConnectTimeout:     time.Second,
		MaxConnections:     4,
		MaxIdleConnections: 2,
		BreakerMaxFailures: 2,
		BreakerTimeout:     time.Minute,
	}
}

func TestHTTPTransport_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/merchant/payments/payin", r.URL.Path)
		assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "order-1", body["orderId"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	metrics := observability.NewMetrics("test", prometheus.NewRegistry())
	tr := providers.NewHTTPTransport("garex", transportConfig(srv.URL), providers.WithMetrics(metrics))

	reply, err := tr.Send(context.Background(), &providers.Call{
		Method:  http.MethodPost,
		Path:    "/api/merchant/payments/payin",
		Payload: map[string]string{"orderId": "order-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, reply.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(reply.Body))
	assert.Equal(t, float64(1), promtest.ToFloat64(metrics.ProviderRequestsTotal.WithLabelValues("garex", "ok")))
}

func TestHTTPTransport_NonSuccessIsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"offer not found"}`))
	}))
	defer srv.Close()

	tr := providers.NewHTTPTransport("garex", transportConfig(srv.URL))
	_, err := tr.Send(context.Background(), &providers.Call{Method: http.MethodGet, Path: "/x"})

	var statusErr *providers.HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.JSONEq(t, `{"message":"offer not found"}`, string(statusErr.Body))
}

func TestHTTPTransport_BreakerOpensOnServerErrorsOnly(t *testing.T) {
	var status, hits atomic.Int32
	status.Store(http.StatusBadRequest)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	metrics := observability.NewMetrics("test", prometheus.NewRegistry())
	tr := providers.NewHTTPTransport("garex", transportConfig(srv.URL), providers.WithMetrics(metrics))
	call := &providers.Call{Method: http.MethodPost, Path: "/x"}

	// Business rejections never trip the breaker.
	for i := 0; i < 5; i++ {
		_, err := tr.Send(context.Background(), call)
		require.Error(t, err)
	}
	assert.Equal(t, int32(5), hits.Load())

	status.Store(http.StatusBadGateway)
	for i := 0; i < 2; i++ {
		_, _ = tr.Send(context.Background(), call)
	}
	assert.Equal(t, int32(7), hits.Load())

	_, err := tr.Send(context.Background(), call)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(7), hits.Load(), "open breaker must not reach the provider")

	pe := providers.Normalize(err)
	assert.Equal(t, domainErrors.KindConnection, pe.Kind)
	assert.Equal(t, float64(gobreaker.StateOpen), promtest.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("garex")))
	assert.Equal(t, float64(1), promtest.ToFloat64(metrics.ProviderRequestsTotal.WithLabelValues("garex", "circuit_open")))
}

func TestHTTPTransport_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	cfg := transportConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond
	tr := providers.NewHTTPTransport("garex", cfg)

	_, err := tr.Send(context.Background(), &providers.Call{Method: http.MethodGet, Path: "/slow"})
	require.Error(t, err)

	pe := providers.Normalize(err)
	assert.Equal(t, domainErrors.KindTimeout, pe.Kind)
	assert.Equal(t, "503", pe.Code)
}
