package calculator

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrZeroDenominator is returned when a ratio is requested against a zero total.
var ErrZeroDenominator = errors.New("total amount is zero")

// FundingRatio returns funded / total as a decimal, 0.0 ~ 1.0 for sane listings.
func FundingRatio(funded, total decimal.Decimal) (decimal.Decimal, error) {
	if total.IsZero() {
		return decimal.Zero, ErrZeroDenominator
	}
	return funded.Div(total), nil
}

// AvailableCash is what would be left after keeping the reserve and placing
// one more order of investAmount. A negative result means the order does not fit.
func AvailableCash(cash, reserve, investAmount decimal.Decimal) decimal.Decimal {
	return cash.Sub(reserve).Sub(investAmount)
}
