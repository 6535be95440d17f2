package garex

import (
	"fmt"

	domainErrors "github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/errors"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/transaction"
)

const (
	methodCard = "c2c"
	methodSBP  = "sbp"
	methodSIM  = "sim"
)

// Intra-bank method codes keyed by provider bank code.
var intrabankMethods = map[string]string{
	"sber":      "sber2sber",
	"alfa-bank": "alfa2alfa",
	"vtb":       "vtb2vtb",
	"t-bank":    "tbank2tbank",
	"ozonbank":  "ozon2ozon",
}

// Cross-border methods in the order they are tried.
var transgranMethods = map[transaction.Channel][]string{
	transaction.ChannelCardTransgran: {"m2tjs_c2c", "m2abh_c2c"},
	transaction.ChannelSBPTransgran:  {"m2tjs_sbp", "m2abh_sbp"},
}

// Resolve maps a channel, and the payer's bank where needed, to ordered method candidates.
func (p *Provider) Resolve(dir transaction.Direction, ch transaction.Channel, req *transaction.Request) ([]transaction.MethodCandidate, error) {
	if dir == transaction.DirectionOut {
		return resolvePayout(ch, req)
	}
	if ch.Transgran() {
		return ordered(transgranMethods[ch]), nil
	}
	if ch.Intrabank() {
		return resolveIntrabank(ch, req.BankName)
	}

	switch ch {
	case transaction.ChannelCard:
		return single(methodCard, ""), nil
	case transaction.ChannelSBP:
		return single(methodSBP, ""), nil
	case transaction.ChannelSIM:
		return single(methodSIM, ""), nil
	case transaction.ChannelQR:
		return nil, domainErrors.NewUnknownMethodError("400", "provider garex does not support qr")
	default:
		return nil, domainErrors.NewUnknownMethodError("400", fmt.Sprintf("unknown channel %q", ch))
	}
}

func resolveIntrabank(ch transaction.Channel, bankName string) ([]transaction.MethodCandidate, error) {
	code, err := lookupBank(bankName)
	if err != nil {
		return nil, err
	}
	if ch == transaction.ChannelSBPIntrabank {
		return single(methodSBP, code), nil
	}
	method, ok := intrabankMethods[code]
	if !ok {
		return nil, domainErrors.NewUnknownMethodError("400",
			fmt.Sprintf("provider does not support intra-bank payments for %s", bankName))
	}
	return single(method, code), nil
}

func resolvePayout(ch transaction.Channel, req *transaction.Request) ([]transaction.MethodCandidate, error) {
	switch ch {
	case transaction.ChannelCard:
		return single(methodCard, ""), nil
	case transaction.ChannelSBP:
		code, err := lookupBank(req.BankName)
		if err != nil {
			return nil, err
		}
		return single(methodSBP, code), nil
	default:
		return nil, domainErrors.NewUnknownMethodError("400", fmt.Sprintf("provider garex does not support %s payouts", ch))
	}
}

func lookupBank(name string) (string, error) {
	code, ok := BankCode(name)
	if !ok {
		return "", domainErrors.NewUnknownMethodError("404", fmt.Sprintf("bank %s is not known to provider", name))
	}
	return code, nil
}

func single(method, asset string) []transaction.MethodCandidate {
	return []transaction.MethodCandidate{{Method: method, Asset: asset, Position: 0}}
}

func ordered(methods []string) []transaction.MethodCandidate {
	out := make([]transaction.MethodCandidate, len(methods))
	for i, m := range methods {
		out[i] = transaction.MethodCandidate{Method: m, Position: i}
	}
	return out
}
