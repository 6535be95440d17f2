package providers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/errors"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/transaction"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/infrastructure/config"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/infrastructure/observability"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/providers"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/providers/garex"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/testutil"
)

func newGarexClient(transport providers.Transport) (*providers.Client, *observability.Metrics) {
	metrics := observability.NewMetrics("test", prometheus.NewRegistry())
	adapter := garex.New(config.ProviderConfig{MerchantID: "m-1"})
	return providers.NewClient(adapter, transport, zerolog.Nop(), metrics), metrics
}

func sentMethods(t *testing.T, calls []*providers.Call) []string {
	t.Helper()
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		data, err := json.Marshal(c.Payload)
		require.NoError(t, err)
		var body struct {
			Method string `json:"method"`
		}
		require.NoError(t, json.Unmarshal(data, &body))
		out = append(out, body.Method)
	}
	return out
}

func TestCreate_FallsBackOnNotFound(t *testing.T) {
	transport := testutil.NewScriptedTransport(
		testutil.WithStatusError(http.StatusNotFound, `{"message":"offer not found"}`),
		testutil.WithReply(http.StatusOK, testutil.GarexCreateResponse),
	)
	client, metrics := newGarexClient(transport)

	resp, err := client.Create(context.Background(), transaction.DirectionIn, transaction.ChannelCardTransgran, testutil.NewTestRequest("order-1"))
	require.NoError(t, err)
	assert.Equal(t, int64(777), resp.Base().ID)

	assert.Equal(t, []string{"m2tjs_c2c", "m2abh_c2c"}, sentMethods(t, transport.Calls()))
	assert.Equal(t, float64(1), promtest.ToFloat64(metrics.FallbackAdvances.WithLabelValues("garex", "card-transgran")))
}

func TestCreate_FallsBackOnNoFreeRequisite(t *testing.T) {
	transport := testutil.NewScriptedTransport(
		testutil.WithStatusError(http.StatusBadRequest, ""),
		testutil.WithReply(http.StatusOK, testutil.GarexCreateResponse),
	)
	client, _ := newGarexClient(transport)

	_, err := client.Create(context.Background(), transaction.DirectionIn, transaction.ChannelSBPTransgran, testutil.NewTestRequest("order-1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"m2tjs_sbp", "m2abh_sbp"}, sentMethods(t, transport.Calls()))
}

func TestCreate_DoesNotFallBackOnOtherFailures(t *testing.T) {
	tests := []struct {
		name string
		opt  testutil.ScriptOption
		kind domainErrors.Kind
		code string
	}{
		{"duplicate order", testutil.WithStatusError(http.StatusUnprocessableEntity, ""), domainErrors.KindUpstreamHTTP, "422"},
		{"provider failure", testutil.WithStatusError(http.StatusInternalServerError, ""), domainErrors.KindUpstreamHTTP, "500"},
		{"malformed", testutil.WithReply(http.StatusOK, `{"result":{}}`), domainErrors.KindMalformedResponse, "502"},
		{"transport", testutil.WithError(context.DeadlineExceeded), domainErrors.KindTimeout, "503"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := testutil.NewScriptedTransport(tt.opt, testutil.WithReply(http.StatusOK, testutil.GarexCreateResponse))
			client, metrics := newGarexClient(transport)

			_, err := client.Create(context.Background(), transaction.DirectionIn, transaction.ChannelCardTransgran, testutil.NewTestRequest("order-1"))

			pe, ok := domainErrors.AsProviderError(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, pe.Kind)
			assert.Equal(t, tt.code, pe.Code)
			assert.Len(t, transport.Calls(), 1)
			assert.Equal(t, float64(0), promtest.ToFloat64(metrics.FallbackAdvances.WithLabelValues("garex", "card-transgran")))
		})
	}
}

func TestCreate_ReturnsLastCandidateError(t *testing.T) {
	transport := testutil.NewScriptedTransport(
		testutil.WithStatusError(http.StatusNotFound, ""),
		testutil.WithStatusError(http.StatusBadRequest, ""),
	)
	client, _ := newGarexClient(transport)

	_, err := client.Create(context.Background(), transaction.DirectionIn, transaction.ChannelCardTransgran, testutil.NewTestRequest("order-1"))

	pe, ok := domainErrors.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, "400", pe.Code)
	assert.Equal(t, "offer found but no free requisite is available", pe.Message)
	assert.Len(t, transport.Calls(), 2)
}

func TestCreate_SingleCandidateNotFound(t *testing.T) {
	transport := testutil.NewScriptedTransport(testutil.WithStatusError(http.StatusNotFound, ""))
	client, _ := newGarexClient(transport)

	_, err := client.Create(context.Background(), transaction.DirectionIn, transaction.ChannelCard, testutil.NewTestRequest("order-1"))

	pe, ok := domainErrors.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, "404", pe.Code)
	assert.Equal(t, "no offer found for the given parameters", pe.Message)
	assert.Len(t, transport.Calls(), 1)
}

func TestCreate_ResolveFailureMakesNoCalls(t *testing.T) {
	transport := testutil.NewScriptedTransport()
	client, metrics := newGarexClient(transport)

	req := testutil.NewTestRequest("order-1")
	req.BankName = "Unknown Bank"
	_, err := client.Create(context.Background(), transaction.DirectionIn, transaction.ChannelCardIntrabank, req)

	pe, ok := domainErrors.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, domainErrors.KindUnknownProviderMethod, pe.Kind)
	assert.Equal(t, "404", pe.Code)
	assert.Empty(t, transport.Calls())
	assert.Equal(t, float64(1), promtest.ToFloat64(
		metrics.ProviderErrors.WithLabelValues("garex", string(domainErrors.KindUnknownProviderMethod), "404")))
}

func TestCreate_UnknownChannelMakesNoCalls(t *testing.T) {
	transport := testutil.NewScriptedTransport()
	client, _ := newGarexClient(transport)

	_, err := client.Create(context.Background(), transaction.DirectionIn, transaction.Channel("crypto"), testutil.NewTestRequest("order-1"))

	pe, ok := domainErrors.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, domainErrors.KindUnknownProviderMethod, pe.Kind)
	assert.Equal(t, "400", pe.Code)
	assert.Empty(t, transport.Calls())
}

func TestCreate_CallerCancellationDoesNotAbortAttempt(t *testing.T) {
	transport := testutil.NewScriptedTransport()
	transport.SendFunc = func(ctx context.Context, call *providers.Call) (*providers.Reply, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return &providers.Reply{StatusCode: http.StatusOK, Body: []byte(testutil.GarexCreateResponse)}, nil
	}
	client, _ := newGarexClient(transport)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Create(ctx, transaction.DirectionIn, transaction.ChannelCard, testutil.NewTestRequest("order-1"))
	assert.NoError(t, err)
}

func TestCancelAndInfo_Unsupported(t *testing.T) {
	transport := testutil.NewScriptedTransport()
	client, _ := newGarexClient(transport)

	assert.ErrorIs(t, client.Cancel(context.Background(), "1"), domainErrors.ErrUnsupportedOperation)
	_, err := client.Info(context.Background(), "1")
	assert.ErrorIs(t, err, domainErrors.ErrUnsupportedOperation)
	assert.Empty(t, transport.Calls())
}
