package gateway

import (
	"fmt"
	"strings"

	"LCInvestor/internal/model"
)

// StatusError is a non-success HTTP response from the marketplace.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d, body: %s", e.Op, e.StatusCode, e.Body)
}

// RejectionError is an order the marketplace refused for business reasons,
// reported in the response's errors array.
type RejectionError struct {
	StatusCode int
	Errors     []model.OrderError
}

func (e *RejectionError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, oe := range e.Errors {
		msgs[i] = oe.String()
	}
	return fmt.Sprintf("order rejected (status %d): %s", e.StatusCode, strings.Join(msgs, "; "))
}
