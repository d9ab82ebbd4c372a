package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Order is a single note purchase request.
type Order struct {
	AccountID       int64
	LoanID          int64
	RequestedAmount decimal.Decimal
	PortfolioID     int64
}

// OrderConfirmation is the marketplace's answer to one submitted Order.
type OrderConfirmation struct {
	OrderID         int64
	LoanID          int64
	RequestedAmount decimal.Decimal
	InvestedAmount  decimal.Decimal
	ExecutionStatus []string
}

// PartialFill reports whether less than the requested amount was invested.
func (c *OrderConfirmation) PartialFill() bool {
	return !c.InvestedAmount.Equal(c.RequestedAmount)
}

// OrderError is an in-band business rule rejection reported by the marketplace.
type OrderError struct {
	Field   string
	Code    string
	Message string
}

func (e OrderError) String() string {
	if e.Field == "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Field, e.Message, e.Code)
}
