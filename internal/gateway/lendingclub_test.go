package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LCInvestor/internal/config"
	"LCInvestor/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*LendingClub, *test.Hook) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.Account.InvestorID = 42
	cfg.Account.AuthKey = "auth-key"
	cfg.Gateway.BaseURL = srv.URL
	cfg.Gateway.Timeout = 5 * time.Second

	log, hook := test.NewNullLogger()
	return NewLendingClub(cfg, log), hook
}

func TestAvailableCash(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/accounts/42/summary", r.URL.Path)
		assert.Equal(t, "auth-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		io.WriteString(w, `{"investorId":42,"availableCash":1234.56,"accountTotal":9000}`)
	})
	cash, err := c.AvailableCash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1234.56", cash.String())
}

func TestAvailableCash_StatusError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"errors":[{"message":"Unauthorized"}]}`)
	})
	_, err := c.AvailableCash(context.Background())
	var se *StatusError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Equal(t, "account summary", se.Op)
}

func TestAvailableCash_Missing(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"investorId":42}`)
	})
	_, err := c.AvailableCash(context.Background())
	assert.Error(t, err)
}

func TestListLoans_KeepsLiteralTypes(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/loans/listing", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("showAll"))
		io.WriteString(w, `{"asOfDate":"2015-11-21","loans":[
			{"id":101,"loanAmount":10000.0,"fundedAmount":7500,"term":36,"intRate":0.1025,"grade":"B","isIncV":true,"desc":null,"extra":{"a":1}},
			{"id":102,"loanAmount":1200,"fundedAmount":25,"term":60,"grade":"Cé"}
		]}`)
	})
	loans, err := c.ListLoans(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, loans, 2)

	first := loans[0]
	id, ok := first.ID()
	require.True(t, ok)
	assert.Equal(t, int64(101), id)
	assert.Equal(t, model.KindDecimal, first["loanAmount"].Kind())
	assert.Equal(t, model.KindInt, first["fundedAmount"].Kind())
	assert.True(t, first["term"].Equal(model.CastNum("36")))
	assert.True(t, first["intRate"].Equal(model.CastNum("0.1025")))
	assert.True(t, first["grade"].Equal(model.StringValue("B")))
	assert.True(t, first["isIncV"].Equal(model.StringValue("true")))
	desc, hasDesc := first.Field("desc")
	assert.True(t, hasDesc)
	assert.False(t, desc.IsValid())
	assert.False(t, desc.Equal(model.StringValue("")))
	extra, hasExtra := first.Field("extra")
	assert.True(t, hasExtra)
	assert.False(t, extra.IsValid())
	_, hasPurpose := first.Field("purpose")
	assert.False(t, hasPurpose)

	assert.True(t, loans[1]["grade"].Equal(model.StringValue("Cé")))
}

func TestListLoans_EmptyMarket(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"asOfDate":"2015-11-21"}`)
	})
	loans, err := c.ListLoans(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, loans)
}

func TestListLoans_NullLoans(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"asOfDate":"2015-11-21","loans":null}`)
	})
	loans, err := c.ListLoans(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, loans)
}

func TestListLoans_LoansNotArray(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"loans":{"id":1}}`)
	})
	_, err := c.ListLoans(context.Background(), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loans is object, want array")
}

func TestListLoans_StatusError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	_, err := c.ListLoans(context.Background(), true)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
}

func TestListPortfolios(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/42/portfolios", r.URL.Path)
		io.WriteString(w, `{"myPortfolios":[
			{"portfolioId":7,"portfolioName":"Manual","portfolioDescription":""},
			{"portfolioId":9,"portfolioName":"Auto"}
		]}`)
	})
	ps, err := c.ListPortfolios(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Portfolio{{ID: 7, Name: "Manual"}, {ID: 9, Name: "Auto"}}, ps)
}

func testOrder() model.Order {
	return model.Order{
		AccountID:       42,
		LoanID:          101,
		RequestedAmount: decimal.NewFromInt(25),
		PortfolioID:     9,
	}
}

func TestSubmitOrder(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/accounts/42/orders", r.URL.Path)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 42.0, body["aid"])
		orders := body["orders"].([]any)
		if !assert.Len(t, orders, 1) {
			return
		}
		o := orders[0].(map[string]any)
		assert.Equal(t, 101.0, o["loanId"])
		assert.Equal(t, 25.0, o["requestedAmount"])
		assert.Equal(t, 9.0, o["portfolioId"])

		io.WriteString(w, `{"orderInstructId":5555,"orderConfirmations":[
			{"loanId":101,"requestedAmount":25.0,"investedAmount":10.0,"executionStatus":["ORDER_FULFILLED"]}
		]}`)
	})
	conf, err := c.SubmitOrder(context.Background(), testOrder())
	require.NoError(t, err)
	assert.Equal(t, int64(5555), conf.OrderID)
	assert.Equal(t, int64(101), conf.LoanID)
	assert.Equal(t, "10", conf.InvestedAmount.String())
	assert.True(t, conf.PartialFill())
	assert.Equal(t, []string{"ORDER_FULFILLED"}, conf.ExecutionStatus)
}

func TestSubmitOrder_RejectionLogged(t *testing.T) {
	c, hook := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"errors":[
			{"field":"loanId","code":"invalid","message":"Loan is no longer available"},
			{"field":"requestedAmount","code":"invalid","message":"Insufficient cash"}
		]}`)
	})
	_, err := c.SubmitOrder(context.Background(), testOrder())
	var rej *RejectionError
	require.True(t, errors.As(err, &rej), "got %v", err)
	assert.Equal(t, http.StatusBadRequest, rej.StatusCode)
	require.Len(t, rej.Errors, 2)

	var logged []string
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			logged = append(logged, e.Message)
		}
	}
	assert.Equal(t, []string{
		"Order error: Loan is no longer available",
		"Order error: Insufficient cash",
	}, logged)
}

func TestSubmitOrder_RejectionWithSuccessStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"errors":[{"message":"Not allowed"}],"orderConfirmations":[]}`)
	})
	_, err := c.SubmitOrder(context.Background(), testOrder())
	var rej *RejectionError
	assert.True(t, errors.As(err, &rej))
}

func TestSubmitOrder_StatusErrorWithoutJSON(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "<html>bad gateway</html>")
	})
	_, err := c.SubmitOrder(context.Background(), testOrder())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
}

func TestSubmitOrder_NoConfirmation(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"orderInstructId":1,"orderConfirmations":[]}`)
	})
	_, err := c.SubmitOrder(context.Background(), testOrder())
	assert.Error(t, err)
}

func TestRateLimiterHonoursContext(t *testing.T) {
	calls := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		io.WriteString(w, `{"availableCash":1}`)
	})
	c.Limiter.SetLimit(0.001)

	_, err := c.AvailableCash(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.AvailableCash(ctx)
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
