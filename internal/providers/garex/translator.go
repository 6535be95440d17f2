package garex

import (
	"fmt"
	"net/http"

	domainErrors "github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/errors"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/transaction"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/providers"
)

const (
	payinPath  = "/api/merchant/payments/payin"
	payoutPath = "/api/merchant/payments/payout"
)

type payload struct {
	OrderID            string `json:"orderId"`
	MerchantID         string `json:"merchantId"`
	Method             string `json:"method"`
	AssetOrBank        string `json:"assetOrBank,omitempty"`
	RequisiteNumber    string `json:"requisiteNumber,omitempty"`
	RequisiteRecipient string `json:"requisiteRecipient,omitempty"`
	Amount             int64  `json:"amount"`
	Currency           string `json:"currency"`
	UserID             string `json:"user_id,omitempty"`
	CallbackURI        string `json:"callbackUri"`
}

// Encode builds the payin or payout call for one method candidate.
func (p *Provider) Encode(dir transaction.Direction, ch transaction.Channel, req *transaction.Request, c transaction.MethodCandidate) (*providers.Call, error) {
	body := payload{
		OrderID:     req.MerchantTransactionID,
		MerchantID:  p.merchantID,
		Method:      c.Method,
		AssetOrBank: c.Asset,
		Amount:      req.Amount,
		Currency:    req.Currency,
		UserID:      req.ClientID,
		CallbackURI: p.callbackURL,
	}

	if dir != transaction.DirectionOut {
		return &providers.Call{Method: http.MethodPost, Path: payinPath, Payload: body}, nil
	}

	switch ch {
	case transaction.ChannelCard:
		body.RequisiteNumber = req.CardNumber
	case transaction.ChannelSBP:
		body.RequisiteNumber = req.PhoneNumber
	default:
		return nil, domainErrors.NewUnknownMethodError("400", fmt.Sprintf("provider garex does not support %s payouts", ch))
	}
	body.RequisiteRecipient = req.OwnerName
	return &providers.Call{Method: http.MethodPost, Path: payoutPath, Payload: body}, nil
}

// Decode reads {"result": {...}, "url": ...} into the channel's response.
// Any missing required field rejects the whole response.
func (p *Provider) Decode(dir transaction.Direction, ch transaction.Channel, body []byte) (transaction.Response, error) {
	root, err := providers.ParseFields(body)
	if err != nil {
		return nil, err
	}
	result := root.Object("result")

	amount := result.Decimal("amount")
	rate := result.Decimal("rate")
	summary := transaction.Summary{
		ID:                    result.Int64("id"),
		MerchantTransactionID: result.String("orderId"),
		ExpiresAt:             p.now().UTC().Add(requisiteTTL),
		Amount:                amount.String(),
		Currency:              transaction.DefaultCurrency,
		CurrencyRate:          rate.String(),
		AmountInUSD:           transaction.AmountInUSD(amount, rate),
		Commission:            transaction.Commission(result.Decimal("fee"), amount),
	}
	if err := root.Err(); err != nil {
		return nil, err
	}

	if dir == transaction.DirectionOut {
		return transaction.PayoutResponse{Summary: summary}, nil
	}

	var resp transaction.Response
	switch ch {
	case transaction.ChannelCard, transaction.ChannelCardTransgran:
		card := transaction.CardResponse{
			Summary:         summary,
			CardNumber:      result.String("address"),
			OwnerName:       result.String("recipient"),
			BankName:        result.String("bankName"),
			CountryName:     CountryName(result.String("bank")),
			PaymentCurrency: transaction.DefaultCurrency,
		}
		if ch == transaction.ChannelCard {
			card.PaymentLink = root.String("url")
		}
		resp = card
	case transaction.ChannelCardIntrabank, transaction.ChannelSBP,
		transaction.ChannelSBPIntrabank, transaction.ChannelSBPTransgran:
		bank := transaction.BankResponse{
			Summary:         summary,
			PhoneNumber:     result.String("address"),
			OwnerName:       result.String("recipient"),
			BankName:        result.String("bankName"),
			CountryName:     CountryName(result.String("bank")),
			PaymentCurrency: transaction.DefaultCurrency,
		}
		if ch == transaction.ChannelCardIntrabank || ch == transaction.ChannelSBP {
			bank.PaymentLink = root.String("url")
		}
		resp = bank
	case transaction.ChannelSIM:
		resp = transaction.SIMResponse{
			Summary:     summary,
			PhoneNumber: result.String("address"),
			OwnerName:   result.String("recipient"),
			Operator:    OperatorName(result.String("bankName")),
		}
	default:
		return nil, domainErrors.NewUnknownMethodError("400", fmt.Sprintf("provider garex does not support %s", ch))
	}

	if err := root.Err(); err != nil {
		return nil, err
	}
	return resp, nil
}
