package model

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// USD renders an amount as dollars, rounded half up to the cent.
func USD(d decimal.Decimal) string {
	cents := d.Shift(2).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}
