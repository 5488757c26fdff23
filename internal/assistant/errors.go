package assistant

import (
	"errors"
	"fmt"
)

// Failure kinds surfaced to callers. Every operation either returns a
// value or exactly one of these; recovery and retry decisions belong to
// the caller.
var (
	// ErrInvalidRequest indicates caller-supplied input failed validation.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrRateLimited indicates the gateway's per-IP request budget is
	// exhausted for the current window.
	ErrRateLimited = errors.New("rate limited")

	// ErrUpstream indicates the gateway or provider returned a
	// non-success status.
	ErrUpstream = errors.New("upstream error")

	// ErrTransport indicates a network failure or timeout talking to the
	// gateway or provider.
	ErrTransport = errors.New("transport failure")

	// ErrMissingCredential indicates direct mode was invoked with no
	// stored provider credential. Raised before any network call.
	ErrMissingCredential = errors.New("no provider credential stored")

	// ErrMalformedResponse indicates no parseable JSON could be located
	// in the model's reply for a structured task.
	ErrMalformedResponse = errors.New("malformed structured response")
)

// UpstreamError carries the status code returned by the gateway or
// provider. errors.Is(err, ErrUpstream) matches it.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream error: status %d", e.Status)
	}
	return fmt.Sprintf("upstream error: status %d: %s", e.Status, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstream
}
