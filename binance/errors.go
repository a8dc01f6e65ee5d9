package binance

import (
	"errors"
	"fmt"
	"time"
)

var errMissing = errors.New("missing required field")

// AuthenticationError reports a missing or rejected credential. It is
// detected locally where possible and is never retried; its message never
// contains credential material.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return "authentication failed: " + e.Reason
}

// ValidationError reports bad caller input, detected before any network
// call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RateLimitError reports an exhausted weight budget, either from the local
// limiter in fail mode or from the exchange after retries.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
}

// TransportError wraps a network-level failure. Transport errors are
// retried internally up to the configured cap before being surfaced.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "transport failure: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedResponseError reports an unexpected payload shape, naming the
// offending field. It signals an exchange contract change and is not
// retryable.
type MalformedResponseError struct {
	Field string
	Err   error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response (field %q): %v", e.Field, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// APIError is an error payload returned by the exchange itself.
type APIError struct {
	StatusCode int
	Code       int64
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("exchange api error (status %d, code %d): %s", e.StatusCode, e.Code, e.Message)
}

// PartialFetchError reports a multi-page query that failed after some
// pages had already succeeded. Partial holds the merged records fetched so
// far (a slice of the operation's result type) so callers can choose
// between using the partial data and retrying the whole call.
type PartialFetchError struct {
	Completed int // pages fetched successfully
	Partial   any
	Cause     error
}

func (e *PartialFetchError) Error() string {
	return fmt.Sprintf("fetch incomplete after %d page(s): %v", e.Completed, e.Cause)
}

func (e *PartialFetchError) Unwrap() error {
	return e.Cause
}
