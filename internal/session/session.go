package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"LCInvestor/internal/calculator"
	"LCInvestor/internal/config"
	"LCInvestor/internal/gateway"
	"LCInvestor/internal/matcher"
	"LCInvestor/internal/model"
)

var (
	// ErrPortfolioNotFound means no marketplace portfolio carries the configured name.
	ErrPortfolioNotFound = errors.New("portfolio not found")
	// ErrNoCandidates means Buy was called with nothing left to buy.
	ErrNoCandidates = errors.New("no candidate loans left")
)

// Session drives one run of the purchase loop. Cash, candidates and the
// portfolio id are each fetched at most once; afterwards cash is only
// decremented locally by confirmed amounts. A Session is not safe for
// concurrent use and is not reused across runs.
type Session struct {
	account config.Account
	gw      gateway.Gateway
	matcher *matcher.Matcher
	log     logrus.FieldLogger

	state State

	cash         decimal.Decimal
	startingCash decimal.Decimal
	cashLoaded   bool

	queue   *candidateQueue
	matched int

	portfolioID       int64
	portfolioResolved bool

	confirmations []model.OrderConfirmation
	startedAt     time.Time
}

// New creates a session in the INIT state.
func New(cfg *config.Config, gw gateway.Gateway, log logrus.FieldLogger) *Session {
	return &Session{
		account: cfg.Account,
		gw:      gw,
		matcher: matcher.NewMatcher(cfg.Criteria, log),
		log:     log,
		state:   StateInit,
	}
}

// State returns the current loop state.
func (s *Session) State() State { return s.state }

// Cash returns the local running balance.
func (s *Session) Cash() decimal.Decimal { return s.cash }

// HasCash reports whether one more order fits after keeping the reserve.
// The balance is fetched from the marketplace on the first call only.
func (s *Session) HasCash(ctx context.Context) (bool, error) {
	if !s.cashLoaded {
		cash, err := s.gw.AvailableCash(ctx)
		if err != nil {
			return false, s.fail(fmt.Errorf("fetch cash: %w", err))
		}
		s.cash, s.startingCash, s.cashLoaded = cash, cash, true
		s.markReady()
	}

	s.log.WithField("cash", model.USD(s.cash)).Info("cash at marketplace")
	available := calculator.AvailableCash(s.cash, s.account.ReserveCash, s.account.InvestAmount)
	if available.IsNegative() {
		s.log.Info("insufficient cash available to invest")
		return false, nil
	}
	s.log.Info("sufficient cash available to invest")
	return true, nil
}

// HasLoans reports whether any matching loan is left. The listing is fetched
// and ranked on the first call only.
func (s *Session) HasLoans(ctx context.Context) (bool, error) {
	if s.queue == nil {
		loans, err := s.gw.ListLoans(ctx, true)
		if err != nil {
			return false, s.fail(fmt.Errorf("fetch loans: %w", err))
		}
		ranked, err := s.matcher.Rank(loans)
		if err != nil {
			return false, s.fail(fmt.Errorf("rank loans: %w", err))
		}
		s.queue = newCandidateQueue(ranked)
		s.matched = len(ranked)
		s.log.WithFields(logrus.Fields{
			"listed":  len(loans),
			"matched": s.matched,
		}).Debug("loan listing ranked")
		s.markReady()
	}

	s.log.WithField("count", s.queue.Len()).Info("matching loans available")
	return s.queue.Len() > 0, nil
}

// Buy invests InvestAmount in the best remaining candidate. The caller
// checks HasCash and HasLoans first. The candidate is consumed before the
// order is sent, so a failed order is not retried in this session.
func (s *Session) Buy(ctx context.Context) (*model.OrderConfirmation, error) {
	if s.queue == nil || s.queue.Len() == 0 {
		return nil, ErrNoCandidates
	}
	s.state = StatePurchasing

	if !s.portfolioResolved {
		id, err := s.resolvePortfolio(ctx)
		if err != nil {
			return nil, s.fail(err)
		}
		s.portfolioID, s.portfolioResolved = id, true
	}

	candidate, _ := s.queue.Pop()
	conf, err := s.gw.SubmitOrder(ctx, model.Order{
		AccountID:       s.account.InvestorID,
		LoanID:          candidate.LoanID,
		RequestedAmount: s.account.InvestAmount,
		PortfolioID:     s.portfolioID,
	})
	if err != nil {
		return nil, s.fail(fmt.Errorf("buy loan %d: %w", candidate.LoanID, err))
	}

	s.cash = s.cash.Sub(conf.InvestedAmount)
	s.confirmations = append(s.confirmations, *conf)

	entry := s.log.WithFields(logrus.Fields{
		"order_id": conf.OrderID,
		"loan_id":  candidate.LoanID,
		"invested": model.USD(conf.InvestedAmount),
	})
	if conf.PartialFill() {
		entry.WithField("requested", model.USD(s.account.InvestAmount)).Warn("order partially filled")
	} else {
		entry.Info("order placed")
	}

	s.state = StateReady
	return conf, nil
}

func (s *Session) resolvePortfolio(ctx context.Context) (int64, error) {
	portfolios, err := s.gw.ListPortfolios(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch portfolios: %w", err)
	}
	for _, p := range portfolios {
		if p.Name == s.account.PortfolioName {
			s.log.WithFields(logrus.Fields{"portfolio": p.Name, "portfolio_id": p.ID}).Debug("portfolio resolved")
			return p.ID, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrPortfolioNotFound, s.account.PortfolioName)
}

// Run buys until cash or candidates run out. Any error ends the run at once.
func (s *Session) Run(ctx context.Context) (*Summary, error) {
	s.startedAt = time.Now()
	s.log.WithField("gateway", s.gw.Name()).Info("investment session started")

	var err error
	for {
		var ok bool
		if ok, err = s.HasCash(ctx); err != nil || !ok {
			break
		}
		if ok, err = s.HasLoans(ctx); err != nil || !ok {
			break
		}
		if _, err = s.Buy(ctx); err != nil {
			break
		}
	}
	if err == nil {
		s.state = StateDone
	}

	summary := s.Summary()
	summary.Err = err
	s.log.WithFields(logrus.Fields{
		"state":    summary.State,
		"orders":   len(summary.Confirmations),
		"invested": model.USD(summary.Invested()),
		"cash":     model.USD(summary.FinalCash),
	}).Info("investment session finished")
	return summary, err
}

// Summary returns a snapshot of what the session has done so far.
func (s *Session) Summary() *Summary {
	left := 0
	if s.queue != nil {
		left = s.queue.Len()
	}
	confs := make([]model.OrderConfirmation, len(s.confirmations))
	copy(confs, s.confirmations)
	return &Summary{
		StartedAt:      s.startedAt,
		FinishedAt:     time.Now(),
		State:          s.state,
		StartingCash:   s.startingCash,
		FinalCash:      s.cash,
		Matched:        s.matched,
		CandidatesLeft: left,
		Confirmations:  confs,
	}
}

func (s *Session) markReady() {
	if s.state == StateInit && s.cashLoaded && s.queue != nil {
		s.state = StateReady
	}
}

func (s *Session) fail(err error) error {
	s.state = StateFailed
	return err
}
