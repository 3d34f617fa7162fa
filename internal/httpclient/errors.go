package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
)

// PolicyError is returned when a request violates the configured
// URLRestrictions. It is terminal: the retry controller never re-attempts a
// request that failed with a PolicyError.
type PolicyError struct {
	Violation string
	URL       string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("url policy violation for %s: %s", e.URL, e.Violation)
}

// IsTransient reports whether err looks like a transient network failure:
// a connect failure, timeout, reset, truncated response, or proxy error that
// retrying plausibly resolves. Policy violations, context cancellation, and
// anything unrecognized are terminal.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var policyErr *PolicyError
	if errors.As(err, &policyErr) {
		return false
	}

	// A caller-initiated cancellation must not be retried; a deadline blown
	// mid-request is an ordinary timeout.
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		// Server hung up mid-response; the connection is gone but a fresh
		// attempt gets a fresh connection.
		return true
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, syscall.ETIMEDOUT):
		return true
	}

	return false
}
