package transaction

import (
	"time"
)

// Channel is the payment rail a merchant request is routed through.
type Channel string

const (
	ChannelCard          Channel = "card"
	ChannelCardIntrabank Channel = "card-intrabank"
	ChannelCardTransgran Channel = "card-transgran"
	ChannelSBP           Channel = "sbp"
	ChannelSBPIntrabank  Channel = "sbp-intrabank"
	ChannelSBPTransgran  Channel = "sbp-transgran"
	ChannelQR            Channel = "qr"
	ChannelSIM           Channel = "sim"
)

var channels = []Channel{
	ChannelCard, ChannelCardIntrabank, ChannelCardTransgran,
	ChannelSBP, ChannelSBPIntrabank, ChannelSBPTransgran,
	ChannelQR, ChannelSIM,
}

func (c Channel) Valid() bool {
	for _, ch := range channels {
		if ch == c {
			return true
		}
	}
	return false
}

// Intrabank reports whether the channel needs the payer's bank to resolve a method.
func (c Channel) Intrabank() bool {
	return c == ChannelCardIntrabank || c == ChannelSBPIntrabank
}

// Transgran reports whether the channel is a cross-border variant.
func (c Channel) Transgran() bool {
	return c == ChannelCardTransgran || c == ChannelSBPTransgran
}

// Direction is the money flow of a transaction relative to the merchant.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// MethodCandidate is one provider method code to try for a channel.
// Position is the zero-based order within the fallback list.
type MethodCandidate struct {
	Method   string
	Asset    string
	Position int
}

// Request is a merchant transaction request. Fields beyond the first three
// are channel dependent and left empty when unused.
type Request struct {
	MerchantTransactionID string
	Amount                int64
	Currency              string
	CurrencyRate          string
	ClientID              string
	BankName              string
	CardNumber            string
	PhoneNumber           string
	OwnerName             string
}

// Summary holds the fields shared by every transaction response variant.
type Summary struct {
	ID                    int64     `json:"id"`
	MerchantTransactionID string    `json:"merchant_transaction_id"`
	ExpiresAt             time.Time `json:"expires_at"`
	Amount                string    `json:"amount"`
	Currency              string    `json:"currency"`
	CurrencyRate          string    `json:"currency_rate"`
	AmountInUSD           string    `json:"amount_in_usd"`
	Rate                  string    `json:"rate"`
	Commission            string    `json:"commission"`
}

func (s Summary) Base() Summary { return s }

// Response is implemented by every transaction response variant.
type Response interface {
	Base() Summary
}

type CardResponse struct {
	Summary
	CardNumber      string `json:"card_number"`
	OwnerName       string `json:"owner_name"`
	BankName        string `json:"bank_name"`
	CountryName     string `json:"country_name"`
	PaymentCurrency string `json:"payment_currency"`
	PaymentLink     string `json:"payment_link,omitempty"`
}

// BankResponse is returned for SBP and intra-bank payments where the requisite is a phone.
type BankResponse struct {
	Summary
	PhoneNumber     string `json:"phone_number"`
	OwnerName       string `json:"owner_name"`
	BankName        string `json:"bank_name"`
	CountryName     string `json:"country_name"`
	PaymentCurrency string `json:"payment_currency"`
	PaymentLink     string `json:"payment_link,omitempty"`
}

type QRResponse struct {
	Summary
	PaymentURL string `json:"payment_url"`
}

type SIMResponse struct {
	Summary
	PhoneNumber string `json:"phone_number"`
	OwnerName   string `json:"owner_name"`
	Operator    string `json:"operator"`
}

type PayoutResponse struct {
	Summary
}

// Info is the provider's view of an existing transaction.
type Info struct {
	ID                    int64      `json:"id"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	ExpiresAt             time.Time  `json:"expires_at"`
	MerchantTransactionID string     `json:"merchant_transaction_id"`
	Type                  Direction  `json:"type"`
	PaymentMethod         string     `json:"payment_method"`
	Amount                string     `json:"amount"`
	PaidAmount            string     `json:"paid_amount"`
	Currency              string     `json:"currency"`
	CurrencyRate          string     `json:"currency_rate"`
	AmountInUSD           string     `json:"amount_in_usd"`
	Rate                  string     `json:"rate"`
	Commission            string     `json:"commission"`
	Status                Status     `json:"status"`
	PaidAt                *time.Time `json:"paid_at,omitempty"`
	CardNumber            string     `json:"card_number,omitempty"`
	PhoneNumber           string     `json:"phone_number,omitempty"`
	OwnerName             string     `json:"owner_name,omitempty"`
	BankName              string     `json:"bank_name"`
}
