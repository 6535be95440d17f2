package testutil

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/transaction"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/signature"
)

const WebhookSecret = "test-webhook-secret"

// GarexCreateResponse is a complete successful Garex payin reply.
const GarexCreateResponse = `{
	"result": {
		"id": 777,
		"orderId": "order-1",
		"amount": 1000,
		"rate": 100,
		"fee": 0.02,
		"address": "2200123412341234",
		"recipient": "Ivan I.",
		"bankName": "Сбер",
		"bank": "Сбер"
	},
	"url": "https://pay.garex.example/777"
}`

func NewTestRequest(merchantTxID string) *transaction.Request {
	return &transaction.Request{
		MerchantTransactionID: merchantTxID,
		Amount:                1000,
		Currency:              "RUB",
	}
}

// GarexWebhookBody builds a Garex callback for orderId "order-1".
func GarexWebhookBody(id int64, state string) []byte {
	return []byte(`{"id":` + strconv.FormatInt(id, 10) + `,"state":"` + state + `","amount":1000,"rate":100,` +
		`"orderId":"order-1","address":"2200","recipient":"Ivan","bank":"sber","bankName":"Сбер","sign":"x","fee":0.02}`)
}

// SignWebhook signs body for path with WebhookSecret.
func SignWebhook(t *testing.T, path, query string, body []byte) string {
	t.Helper()
	sig, err := signature.Sign(WebhookSecret, path, query, body)
	require.NoError(t, err)
	return sig
}
