package client

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/evorun/internal/netx"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found remotely")
)

// ServerError is an answer the client did not expect.
type ServerError struct {
	StatusCode int
	Detail     string
}

func (e *ServerError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("server error: status %d: %s", e.StatusCode, e.Detail)
}

// Outcome is the classification of a remote call.
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeUnreachable Outcome = "unreachable"
	OutcomeRejected    Outcome = "rejected"
	OutcomeNotFound    Outcome = "not_found"
	OutcomeServerError Outcome = "server_error"
)

// Classify maps the error of a remote call to its Outcome. Raw transport
// errors count as unreachable; anything unknown is a server error.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrUnavailable), netx.IsUnreachable(err):
		return OutcomeUnreachable
	case errors.Is(err, ErrUnauthorized):
		return OutcomeRejected
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	default:
		return OutcomeServerError
	}
}
