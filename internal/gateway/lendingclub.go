package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/buger/jsonparser"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"LCInvestor/internal/config"
	"LCInvestor/internal/model"
)

// LendingClub implements Gateway using the Lending Club investor REST API.
type LendingClub struct {
	BaseURL   string
	AuthKey   string
	AccountID int64
	Client    *http.Client
	Limiter   *rate.Limiter
	log       logrus.FieldLogger
}

// NewLendingClub creates a client with optional proxy support and a request
// rate limit taken from cfg.
func NewLendingClub(cfg *config.Config, log logrus.FieldLogger) *LendingClub {
	transport := &http.Transport{}
	if cfg.Gateway.Proxy != "" {
		if u, err := url.Parse(cfg.Gateway.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	limit := rate.Inf
	if cfg.Gateway.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.Gateway.RequestsPerSecond)
	}
	return &LendingClub{
		BaseURL:   cfg.Gateway.BaseURL,
		AuthKey:   cfg.Account.AuthKey,
		AccountID: cfg.Account.InvestorID,
		Client: &http.Client{
			Timeout:   cfg.Gateway.Timeout,
			Transport: transport,
		},
		Limiter: rate.NewLimiter(limit, 1),
		log:     log,
	}
}

func (c *LendingClub) Name() string { return "lendingclub" }

func (c *LendingClub) accountPath(resource string) string {
	return "/accounts/" + strconv.FormatInt(c.AccountID, 10) + "/" + resource
}

// do sends one request and returns the status code and the full body.
// The status is not checked here; each operation decides what success means.
func (c *LendingClub) do(ctx context.Context, method, path string, query url.Values, payload []byte) (int, []byte, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", c.AuthKey)
	req.Header.Set("Content-Type", "application/json")

	c.log.WithFields(logrus.Fields{"method": method, "path": path}).Debug("marketplace request")
	resp, err := c.Client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, data, nil
}

// get performs a GET and turns any non-2xx answer into a StatusError.
func (c *LendingClub) get(ctx context.Context, op, path string, query url.Values) ([]byte, error) {
	status, body, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !success(status) {
		return nil, &StatusError{Op: op, StatusCode: status, Body: string(body)}
	}
	return body, nil
}

func success(status int) bool {
	return status >= 200 && status < 300
}

func (c *LendingClub) AvailableCash(ctx context.Context) (decimal.Decimal, error) {
	body, err := c.get(ctx, "account summary", c.accountPath("summary"), nil)
	if err != nil {
		return decimal.Zero, err
	}
	var result struct {
		AvailableCash *decimal.Decimal `json:"availableCash"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return decimal.Zero, fmt.Errorf("decode account summary: %w", err)
	}
	if result.AvailableCash == nil {
		return decimal.Zero, errors.New("decode account summary: availableCash missing")
	}
	return *result.AvailableCash, nil
}

// ListLoans fetches the listing. Records are walked field by field so that
// numbers keep their literal text and are typed the same way as criteria.
// Every field of a record is kept, so a criterion naming a field the listing
// never carries can be told apart from one whose value is null.
func (c *LendingClub) ListLoans(ctx context.Context, showAll bool) ([]model.Loan, error) {
	query := url.Values{"showAll": {strconv.FormatBool(showAll)}}
	body, err := c.get(ctx, "loan listing", "/loans/listing", query)
	if err != nil {
		return nil, err
	}

	_, dataType, _, err := jsonparser.Get(body, "loans")
	switch {
	case errors.Is(err, jsonparser.KeyPathNotFoundError), err == nil && dataType == jsonparser.Null:
		// An empty market answers without a loans array, or with a null one.
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("decode loan listing: %w", err)
	case dataType != jsonparser.Array:
		return nil, fmt.Errorf("decode loan listing: loans is %s, want array", dataType)
	}

	var (
		loans     []model.Loan
		decodeErr error
	)
	_, err = jsonparser.ArrayEach(body, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if decodeErr != nil || dataType != jsonparser.Object {
			return
		}
		loan, err := parseLoan(value)
		if err != nil {
			decodeErr = err
			return
		}
		loans = append(loans, loan)
	}, "loans")
	switch {
	case err != nil:
		return nil, fmt.Errorf("decode loan listing: %w", err)
	case decodeErr != nil:
		return nil, fmt.Errorf("decode loan listing: %w", decodeErr)
	}
	return loans, nil
}

func parseLoan(raw []byte) (model.Loan, error) {
	loan := model.Loan{}
	err := jsonparser.ObjectEach(raw, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		name := string(key)
		switch dataType {
		case jsonparser.Number:
			loan[name] = model.CastNum(string(value))
		case jsonparser.String:
			s, err := jsonparser.ParseString(value)
			if err != nil {
				return fmt.Errorf("field %s: %w", name, err)
			}
			loan[name] = model.StringValue(s)
		case jsonparser.Boolean:
			loan[name] = model.StringValue(string(value))
		default:
			// null, objects and arrays are kept as present but never equal.
			loan[name] = model.Value{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

func (c *LendingClub) ListPortfolios(ctx context.Context) ([]model.Portfolio, error) {
	body, err := c.get(ctx, "portfolios", c.accountPath("portfolios"), nil)
	if err != nil {
		return nil, err
	}
	var result struct {
		MyPortfolios []struct {
			PortfolioID   int64  `json:"portfolioId"`
			PortfolioName string `json:"portfolioName"`
		} `json:"myPortfolios"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode portfolios: %w", err)
	}
	portfolios := make([]model.Portfolio, len(result.MyPortfolios))
	for i, p := range result.MyPortfolios {
		portfolios[i] = model.Portfolio{ID: p.PortfolioID, Name: p.PortfolioName}
	}
	return portfolios, nil
}

type orderItem struct {
	LoanID          int64       `json:"loanId"`
	RequestedAmount json.Number `json:"requestedAmount"`
	PortfolioID     int64       `json:"portfolioId"`
}

type orderRequest struct {
	AID    int64       `json:"aid"`
	Orders []orderItem `json:"orders"`
}

type orderResponse struct {
	OrderInstructID    int64 `json:"orderInstructId"`
	OrderConfirmations []struct {
		LoanID          int64           `json:"loanId"`
		RequestedAmount decimal.Decimal `json:"requestedAmount"`
		InvestedAmount  decimal.Decimal `json:"investedAmount"`
		ExecutionStatus []string        `json:"executionStatus"`
	} `json:"orderConfirmations"`
	Errors []struct {
		Field   string `json:"field"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// SubmitOrder places a single-loan order. In-band errors are logged one by
// one and returned as a RejectionError even when the transport succeeded.
func (c *LendingClub) SubmitOrder(ctx context.Context, order model.Order) (*model.OrderConfirmation, error) {
	payload, err := json.Marshal(orderRequest{
		AID: order.AccountID,
		Orders: []orderItem{{
			LoanID:          order.LoanID,
			RequestedAmount: json.Number(order.RequestedAmount.String()),
			PortfolioID:     order.PortfolioID,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	status, body, err := c.do(ctx, http.MethodPost, c.accountPath("orders"), nil, payload)
	if err != nil {
		return nil, fmt.Errorf("submit order: %w", err)
	}

	var result orderResponse
	if err := json.Unmarshal(body, &result); err != nil {
		if !success(status) {
			return nil, &StatusError{Op: "submit order", StatusCode: status, Body: string(body)}
		}
		return nil, fmt.Errorf("decode order response: %w", err)
	}

	if len(result.Errors) > 0 {
		rej := &RejectionError{StatusCode: status}
		for _, e := range result.Errors {
			oe := model.OrderError{Field: e.Field, Code: e.Code, Message: e.Message}
			c.log.WithFields(logrus.Fields{
				"loan_id": order.LoanID,
				"field":   oe.Field,
				"code":    oe.Code,
			}).Error("Order error: " + oe.Message)
			rej.Errors = append(rej.Errors, oe)
		}
		return nil, rej
	}
	if !success(status) {
		return nil, &StatusError{Op: "submit order", StatusCode: status, Body: string(body)}
	}
	if len(result.OrderConfirmations) == 0 {
		return nil, errors.New("decode order response: no order confirmation")
	}

	// One order per call, so only the first confirmation matters.
	oc := result.OrderConfirmations[0]
	if oc.RequestedAmount.IsZero() {
		oc.RequestedAmount = order.RequestedAmount
	}
	return &model.OrderConfirmation{
		OrderID:         result.OrderInstructID,
		LoanID:          oc.LoanID,
		RequestedAmount: oc.RequestedAmount,
		InvestedAmount:  oc.InvestedAmount,
		ExecutionStatus: oc.ExecutionStatus,
	}, nil
}
