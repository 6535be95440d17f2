// Package paygate adapts an upstream that already speaks the merchant API
// shape: field names pass through unchanged and every channel is its own
// resource.
package paygate

import (
	"fmt"
	"net/http"
	"strconv"

	domainErrors "github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/errors"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/transaction"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/infrastructure/config"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/providers"
)

const Name = config.ProviderPaygate

const transactionsPath = "/api/v1/transactions"

var payinResources = map[transaction.Channel]string{
	transaction.ChannelCard:          "card",
	transaction.ChannelCardIntrabank: "internal-card",
	transaction.ChannelCardTransgran: "transgran-card",
	transaction.ChannelSBP:           "sbp",
	transaction.ChannelSBPIntrabank:  "internal-sbp",
	transaction.ChannelSBPTransgran:  "transgran-sbp",
	transaction.ChannelQR:            "qr",
	transaction.ChannelSIM:           "sim",
}

var payoutResources = map[transaction.Channel]string{
	transaction.ChannelCard: "payout-card",
	transaction.ChannelSBP:  "payout-sbp",
}

type Provider struct{}

func New(_ config.ProviderConfig) *Provider {
	return &Provider{}
}

func (p *Provider) Name() string { return Name }

// Resolve returns the channel's resource name as the only candidate.
func (p *Provider) Resolve(dir transaction.Direction, ch transaction.Channel, _ *transaction.Request) ([]transaction.MethodCandidate, error) {
	resources := payinResources
	if dir == transaction.DirectionOut {
		resources = payoutResources
	}
	resource, ok := resources[ch]
	if !ok {
		return nil, domainErrors.NewUnknownMethodError("400",
			fmt.Sprintf("provider paygate does not support %s %s", dir, ch))
	}
	return []transaction.MethodCandidate{{Method: resource}}, nil
}

type payload struct {
	Amount                string `json:"amount"`
	Currency              string `json:"currency"`
	MerchantTransactionID string `json:"merchant_transaction_id"`
	CurrencyRate          string `json:"currency_rate,omitempty"`
	ClientID              string `json:"client_id,omitempty"`
	BankName              string `json:"bank_name,omitempty"`
	CardNumber            string `json:"card_number,omitempty"`
	PhoneNumber           string `json:"phone_number,omitempty"`
	OwnerName             string `json:"owner_name,omitempty"`
}

func (p *Provider) Encode(_ transaction.Direction, _ transaction.Channel, req *transaction.Request, c transaction.MethodCandidate) (*providers.Call, error) {
	return &providers.Call{
		Method: http.MethodPost,
		Path:   transactionsPath + "/" + c.Method,
		Payload: payload{
			Amount:                strconv.FormatInt(req.Amount, 10),
			Currency:              req.Currency,
			MerchantTransactionID: req.MerchantTransactionID,
			CurrencyRate:          req.CurrencyRate,
			ClientID:              req.ClientID,
			BankName:              req.BankName,
			CardNumber:            req.CardNumber,
			PhoneNumber:           req.PhoneNumber,
			OwnerName:             req.OwnerName,
		},
	}, nil
}

// Decode reads a merchant-shaped response. Every field of the variant is required.
func (p *Provider) Decode(dir transaction.Direction, ch transaction.Channel, body []byte) (transaction.Response, error) {
	f, err := providers.ParseFields(body)
	if err != nil {
		return nil, err
	}

	summary := transaction.Summary{
		ID:                    f.Int64("id"),
		MerchantTransactionID: f.String("merchant_transaction_id"),
		ExpiresAt:             f.Time("expires_at"),
		Amount:                f.String("amount"),
		CurrencyRate:          f.String("currency_rate"),
		AmountInUSD:           f.String("amount_in_usd"),
		Rate:                  f.String("rate"),
		Commission:            f.String("commission"),
	}
	// internal-card responses carry no currency.
	if ch == transaction.ChannelCardIntrabank && dir == transaction.DirectionIn {
		summary.Currency = transaction.DefaultCurrency
	} else {
		summary.Currency = f.String("currency")
	}

	var resp transaction.Response
	switch {
	case dir == transaction.DirectionOut:
		resp = transaction.PayoutResponse{Summary: summary}
	case ch == transaction.ChannelCard:
		resp = transaction.CardResponse{
			Summary:         summary,
			CardNumber:      f.String("card_number"),
			OwnerName:       f.String("owner_name"),
			BankName:        f.String("bank_name"),
			CountryName:     f.String("country_name"),
			PaymentCurrency: f.String("payment_currency"),
			PaymentLink:     f.String("payment_link"),
		}
	case ch == transaction.ChannelCardIntrabank, ch == transaction.ChannelCardTransgran,
		ch == transaction.ChannelSBPIntrabank, ch == transaction.ChannelSBPTransgran:
		resp = bankResponse(f, summary, false)
	case ch == transaction.ChannelSBP:
		resp = bankResponse(f, summary, true)
	case ch == transaction.ChannelQR:
		resp = transaction.QRResponse{Summary: summary, PaymentURL: f.String("payment_url")}
	case ch == transaction.ChannelSIM:
		resp = transaction.SIMResponse{
			Summary:     summary,
			PhoneNumber: f.String("phone_number"),
			OwnerName:   f.String("owner_name"),
			Operator:    f.String("operator"),
		}
	default:
		return nil, domainErrors.NewUnknownMethodError("400", fmt.Sprintf("provider paygate does not support %s", ch))
	}

	if err := f.Err(); err != nil {
		return nil, err
	}
	return resp, nil
}

func bankResponse(f *providers.Fields, summary transaction.Summary, withLink bool) transaction.BankResponse {
	resp := transaction.BankResponse{
		Summary:         summary,
		PhoneNumber:     f.String("phone_number"),
		OwnerName:       f.String("owner_name"),
		BankName:        f.String("bank_name"),
		CountryName:     f.String("country_name"),
		PaymentCurrency: f.String("payment_currency"),
	}
	if withLink {
		resp.PaymentLink = f.String("payment_link")
	}
	return resp
}
