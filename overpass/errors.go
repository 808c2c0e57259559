package overpass

import (
	"context"
	"errors"
	"net"
)

var (
	// ErrRateLimited is returned on HTTP 429 (too many requests).
	ErrRateLimited = errors.New("overpass rate limited")

	// ErrServerError is returned on HTTP 5xx, including 504 gateway
	// timeouts from overloaded instances.
	ErrServerError = errors.New("overpass server error")

	// ErrBadStatus is returned on any other non-200 status, typically a
	// rejected query. Retrying the same query will not help.
	ErrBadStatus = errors.New("overpass request rejected")

	// ErrMalformedResponse is returned when a 200 body is not a valid
	// Overpass JSON document. Busy instances sometimes truncate bodies.
	ErrMalformedResponse = errors.New("malformed overpass response")
)

// IsRetryable reports whether a request that failed with err is worth
// retrying. Throttling, server errors, truncated bodies, and transport
// errors are transient; rejected queries and cancelled contexts are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServerError) || errors.Is(err, ErrMalformedResponse) {
		return true
	}
	if errors.Is(err, ErrBadStatus) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return false
}
