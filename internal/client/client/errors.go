package client

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNoSession    = errors.New("not logged in")
)

// APIError is a request the server understood and refused, or failed.
type APIError struct {
	Code    int
	Status  string
	Message string
	Errors  []string
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d)", e.Status, e.Code)
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Errors) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(e.Errors, "; "))
		b.WriteString("]")
	}
	return b.String()
}

// HasStatus reports whether err is an APIError with the given status kind.
func HasStatus(err error, status string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
