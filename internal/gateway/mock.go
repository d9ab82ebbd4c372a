package gateway

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"LCInvestor/internal/model"
)

// MockGateway returns controllable fixed data for development and testing.
// Zero fields give an empty account: no cash, no loans, no portfolios.
type MockGateway struct {
	Cash       decimal.Decimal
	Loans      []model.Loan
	Portfolios []model.Portfolio

	// Fill decides the invested amount of each order; nil fills it completely.
	Fill func(order model.Order) (decimal.Decimal, error)

	CashErr      error
	LoansErr     error
	PortfolioErr error

	Orders []model.Order
	Calls  map[string]int
}

func (m *MockGateway) Name() string { return "mock" }

func (m *MockGateway) count(op string) {
	if m.Calls == nil {
		m.Calls = make(map[string]int)
	}
	m.Calls[op]++
}

func (m *MockGateway) AvailableCash(_ context.Context) (decimal.Decimal, error) {
	m.count("AvailableCash")
	return m.Cash, m.CashErr
}

func (m *MockGateway) ListLoans(_ context.Context, _ bool) ([]model.Loan, error) {
	m.count("ListLoans")
	if m.LoansErr != nil {
		return nil, m.LoansErr
	}
	return m.Loans, nil
}

func (m *MockGateway) ListPortfolios(_ context.Context) ([]model.Portfolio, error) {
	m.count("ListPortfolios")
	if m.PortfolioErr != nil {
		return nil, m.PortfolioErr
	}
	return m.Portfolios, nil
}

func (m *MockGateway) SubmitOrder(_ context.Context, order model.Order) (*model.OrderConfirmation, error) {
	m.count("SubmitOrder")
	m.Orders = append(m.Orders, order)

	invested := order.RequestedAmount
	if m.Fill != nil {
		var err error
		if invested, err = m.Fill(order); err != nil {
			return nil, err
		}
	}
	if invested.IsNegative() {
		return nil, errors.New("mock: negative fill")
	}
	return &model.OrderConfirmation{
		OrderID:         int64(len(m.Orders)),
		LoanID:          order.LoanID,
		RequestedAmount: order.RequestedAmount,
		InvestedAmount:  invested,
		ExecutionStatus: []string{"ORDER_FULFILLED"},
	}, nil
}
