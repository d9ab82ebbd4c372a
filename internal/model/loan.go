package model

import "github.com/shopspring/decimal"

// Well-known listing fields used outside of criteria matching.
const (
	FieldID           = "id"
	FieldFundedAmount = "fundedAmount"
	FieldLoanAmount   = "loanAmount"
)

// Loan is one raw record from the marketplace listing, keyed by field name.
type Loan map[string]Value

// Field returns the named field and whether the listing carried it.
func (l Loan) Field(name string) (Value, bool) {
	v, ok := l[name]
	return v, ok
}

// ID returns the loan identifier if present and integral.
func (l Loan) ID() (int64, bool) {
	v, ok := l[FieldID]
	if !ok {
		return 0, false
	}
	return v.Int()
}

// Candidate is a loan that passed every criterion, with its funding ratio.
type Candidate struct {
	LoanID       int64
	FundingRatio decimal.Decimal // fundedAmount / loanAmount, 0.0 ~ 1.0
}

// Portfolio is a named container for notes held by the investor.
type Portfolio struct {
	ID   int64
	Name string
}
