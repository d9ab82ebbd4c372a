package gateway

import (
	"context"

	"github.com/shopspring/decimal"

	"LCInvestor/internal/model"
)

// Gateway defines the marketplace operations the investment session needs.
type Gateway interface {
	AvailableCash(ctx context.Context) (decimal.Decimal, error)
	ListLoans(ctx context.Context, showAll bool) ([]model.Loan, error)
	ListPortfolios(ctx context.Context) ([]model.Portfolio, error)
	SubmitOrder(ctx context.Context, order model.Order) (*model.OrderConfirmation, error)
	Name() string
}
