// ABOUTME: Typed failures returned by the Socrata client
// ABOUTME: Lets the dispatcher tell HTTP, transport, and timeout errors apart
package socrata

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"
)

// maxErrorBody caps how much of an error response body ends up in messages.
const maxErrorBody = 512

// RequestError is a non-2xx response from the API.
type RequestError struct {
	Op         string
	URL        string
	StatusCode int
	Status     string
	Body       string
}

func (e *RequestError) Error() string {
	body := e.Body
	if len(body) > maxErrorBody {
		cut := maxErrorBody
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut] + "..."
	}
	if body == "" {
		return fmt.Sprintf("failed to %s: HTTP %s", e.Op, e.Status)
	}
	return fmt.Sprintf("failed to %s: HTTP %s: %s", e.Op, e.Status, body)
}

// TransportError is a failure to complete the exchange: DNS, connect, read,
// or decoding the response body.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// TimeoutError means the caller's deadline expired before a response arrived.
type TimeoutError struct {
	Op  string
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("failed to %s: timed out: %v", e.Op, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// IsTimeout reports whether err is, or wraps, a *TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// classify turns an error from the HTTP exchange into a typed error.
func classify(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Op: op, Err: err}
	}
	return &TransportError{Op: op, Err: err}
}
