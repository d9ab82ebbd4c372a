package matcher

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"LCInvestor/internal/calculator"
	"LCInvestor/internal/config"
	"LCInvestor/internal/model"
)

var (
	// ErrZeroLoanAmount marks a matching loan whose total amount is zero.
	ErrZeroLoanAmount = errors.New("loan amount is zero")
	// ErrMalformedLoan marks a loan without a usable id or amounts, or one
	// that lacks a field named by a criterion.
	ErrMalformedLoan = errors.New("malformed loan record")
)

// Matcher selects loans that satisfy every configured criterion and ranks
// them by how close they are to being fully funded.
type Matcher struct {
	criteria config.Criteria
	log      logrus.FieldLogger
}

// NewMatcher creates a Matcher for the given criteria.
func NewMatcher(criteria config.Criteria, log logrus.FieldLogger) *Matcher {
	return &Matcher{criteria: criteria, log: log}
}

// Matches reports whether loan equals every criterion. Criteria are checked in
// configuration order and the first mismatch stops the scan. A field that is
// present but null never matches. A field the record does not carry at all is
// an ErrMalformedLoan.
func (m *Matcher) Matches(loan model.Loan) (bool, error) {
	for _, c := range m.criteria {
		v, ok := loan.Field(c.Name)
		if !ok {
			if id, hasID := loan.ID(); hasID {
				return false, fmt.Errorf("%w: loan %d: no field %q", ErrMalformedLoan, id, c.Name)
			}
			return false, fmt.Errorf("%w: no field %q", ErrMalformedLoan, c.Name)
		}
		if !v.Equal(c.Value) {
			return false, nil
		}
	}
	return true, nil
}

// Rank filters loans and returns candidates ordered by funding ratio,
// highest first. Ties keep listing order. A loan id seen twice keeps its
// first position and its last ratio.
func (m *Matcher) Rank(loans []model.Loan) ([]model.Candidate, error) {
	var candidates []model.Candidate
	index := make(map[int64]int)

	for _, loan := range loans {
		ok, err := m.Matches(loan)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		id, ratio, err := fundingRatio(loan)
		if err != nil {
			return nil, err
		}
		m.log.WithFields(logrus.Fields{
			"loan_id":      id,
			"funded_ratio": ratio.StringFixed(4),
		}).Info("loan matched criteria")

		if i, seen := index[id]; seen {
			candidates[i].FundingRatio = ratio
			continue
		}
		index[id] = len(candidates)
		candidates = append(candidates, model.Candidate{LoanID: id, FundingRatio: ratio})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].FundingRatio.GreaterThan(candidates[j].FundingRatio)
	})
	return candidates, nil
}

func fundingRatio(loan model.Loan) (int64, decimal.Decimal, error) {
	id, ok := loan.ID()
	if !ok {
		return 0, decimal.Zero, fmt.Errorf("%w: missing integer %q", ErrMalformedLoan, model.FieldID)
	}
	funded, ok := number(loan, model.FieldFundedAmount)
	if !ok {
		return 0, decimal.Zero, fmt.Errorf("%w: loan %d: missing numeric %q", ErrMalformedLoan, id, model.FieldFundedAmount)
	}
	total, ok := number(loan, model.FieldLoanAmount)
	if !ok {
		return 0, decimal.Zero, fmt.Errorf("%w: loan %d: missing numeric %q", ErrMalformedLoan, id, model.FieldLoanAmount)
	}
	ratio, err := calculator.FundingRatio(funded, total)
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("%w: loan %d", ErrZeroLoanAmount, id)
	}
	return id, ratio, nil
}

func number(loan model.Loan, field string) (decimal.Decimal, bool) {
	v, ok := loan.Field(field)
	if !ok {
		return decimal.Zero, false
	}
	return v.Number()
}
