package providers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/transaction"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/providers"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/providers/garex"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/providers/paygate"
)

// echoServer answers every call with build(sent), where sent is the decoded
// request body.
func echoServer(t *testing.T, build func(sent map[string]any) map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sent map[string]any
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&sent)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		assert.NoError(t, json.NewEncoder(w).Encode(build(sent)))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func paygateEcho(sent map[string]any) map[string]any {
	return map[string]any{
		"id":                      101,
		"merchant_transaction_id": sent["merchant_transaction_id"],
		"amount":                  sent["amount"],
		"currency":                sent["currency"],
		"expires_at":              "2026-03-01T12:20:00Z",
		"currency_rate":           "95.5",
		"amount_in_usd":           "10.47",
		"rate":                    "95.5",
		"commission":              "25",
		"card_number":             "2200123412341234",
		"owner_name":              "Ivan I.",
		"bank_name":               "Сбер",
		"country_name":            "РФ",
		"payment_currency":        "RUB",
		"payment_link":            "https://pay.paygate.example/101",
	}
}

func garexEcho(sent map[string]any) map[string]any {
	return map[string]any{
		"result": map[string]any{
			"id":        202,
			"orderId":   sent["orderId"],
			"amount":    sent["amount"],
			"rate":      95.5,
			"fee":       0.025,
			"address":   "2200123412341234",
			"recipient": "Ivan I.",
			"bankName":  "Сбер",
			"bank":      "Сбер",
		},
		"url": "https://pay.garex.example/202",
	}
}

func TestCreate_RoundTripPreservesIdentity(t *testing.T) {
	tests := []struct {
		name    string
		adapter providers.Adapter
		echo    func(map[string]any) map[string]any
		dir     transaction.Direction
		channel transaction.Channel
		id      int64
	}{
		{"paygate card", paygate.New(transportConfig("")), paygateEcho, transaction.DirectionIn, transaction.ChannelCard, 101},
		{"paygate payout", paygate.New(transportConfig("")), paygateEcho, transaction.DirectionOut, transaction.ChannelCard, 101},
		{"garex card", garex.New(transportConfig("")), garexEcho, transaction.DirectionIn, transaction.ChannelCard, 202},
		{"garex cross-border", garex.New(transportConfig("")), garexEcho, transaction.DirectionIn, transaction.ChannelCardTransgran, 202},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := echoServer(t, tt.echo)
			transport := providers.NewHTTPTransport(tt.adapter.Name(), transportConfig(srv.URL))
			client := providers.NewClient(tt.adapter, transport, zerolog.Nop(), nil)

			req := &transaction.Request{
				MerchantTransactionID: "order-42",
				Amount:                1500,
				Currency:              "RUB",
				CardNumber:            "2200123412341234",
				OwnerName:             "Ivan I.",
			}
			resp, err := client.Create(context.Background(), tt.dir, tt.channel, req)
			require.NoError(t, err)

			got := resp.Base()
			assert.Equal(t, tt.id, got.ID)
			assert.Equal(t, "order-42", got.MerchantTransactionID)
			assert.Equal(t, "1500", got.Amount)
			assert.Equal(t, "RUB", got.Currency)
		})
	}
}

func TestCreate_GarexReportsRubles(t *testing.T) {
	var sentCurrency any
	srv := echoServer(t, func(sent map[string]any) map[string]any {
		sentCurrency = sent["currency"]
		return garexEcho(sent)
	})
	adapter := garex.New(transportConfig(srv.URL))
	client := providers.NewClient(adapter, providers.NewHTTPTransport(adapter.Name(), transportConfig(srv.URL)), zerolog.Nop(), nil)

	req := &transaction.Request{MerchantTransactionID: "order-43", Amount: 700, Currency: "USD"}
	resp, err := client.Create(context.Background(), transaction.DirectionIn, transaction.ChannelSBP, req)
	require.NoError(t, err)

	assert.Equal(t, "USD", sentCurrency)
	assert.Equal(t, "order-43", resp.Base().MerchantTransactionID)
	assert.Equal(t, "700", resp.Base().Amount)
	assert.Equal(t, "RUB", resp.Base().Currency)
}

func TestCreate_BareEchoIsMalformed(t *testing.T) {
	srv := echoServer(t, func(sent map[string]any) map[string]any { return sent })
	adapter := paygate.New(transportConfig(srv.URL))
	client := providers.NewClient(adapter, providers.NewHTTPTransport(adapter.Name(), transportConfig(srv.URL)), zerolog.Nop(), nil)

	_, err := client.Create(context.Background(), transaction.DirectionIn, transaction.ChannelCard,
		&transaction.Request{MerchantTransactionID: "order-44", Amount: 100, Currency: "RUB"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"id"`)
}
