package session

import (
	"time"

	"github.com/shopspring/decimal"

	"LCInvestor/internal/model"
)

// Summary describes a finished (or failed) session.
type Summary struct {
	StartedAt      time.Time
	FinishedAt     time.Time
	State          State
	StartingCash   decimal.Decimal
	FinalCash      decimal.Decimal
	Matched        int
	CandidatesLeft int
	Confirmations  []model.OrderConfirmation
	Err            error
}

// Invested is the sum of confirmed amounts.
func (s *Summary) Invested() decimal.Decimal {
	total := decimal.Zero
	for _, c := range s.Confirmations {
		total = total.Add(c.InvestedAmount)
	}
	return total
}
