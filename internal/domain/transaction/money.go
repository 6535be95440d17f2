package transaction

import (
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the only settlement currency providers currently quote in.
const DefaultCurrency = "RUB"

const usdPlaces = 2

// AmountInUSD converts amount at rate units per dollar. A zero rate yields "0".
func AmountInUSD(amount, rate decimal.Decimal) string {
	if rate.IsZero() {
		return "0"
	}
	return amount.DivRound(rate, usdPlaces).String()
}

// Commission returns fee applied to amount.
func Commission(fee, amount decimal.Decimal) string {
	return fee.Mul(amount).String()
}
