package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies a fetch failure.
type ErrorKind string

// Fetch failure kinds.
const (
	// KindNavigation means the browser could not load the page
	// (DNS failure, TLS error, aborted navigation).
	KindNavigation ErrorKind = "navigation"

	// KindTimeout means the page did not load within the page timeout.
	KindTimeout ErrorKind = "timeout"

	// KindNetwork means the request failed below HTTP.
	KindNetwork ErrorKind = "network"

	// KindStatus means the server answered with a non-2xx status.
	KindStatus ErrorKind = "status"

	// KindCancelled means the run was interrupted.
	KindCancelled ErrorKind = "cancelled"
)

// ErrBrowserUnavailable is returned when Chrome cannot be started.
var ErrBrowserUnavailable = errors.New("headless browser unavailable")

// ErrInvalidProxyAddress is returned for a proxy address that is not host:port.
var ErrInvalidProxyAddress = errors.New("invalid proxy address: must be host:port")

// FetchError describes why a page could not be fetched.
// The pipeline records it as a failed attempt and moves on.
type FetchError struct {
	Kind    ErrorKind
	URL     string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Message == "" && e.Cause != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Cause)
	}
	return fmt.Sprintf("fetch %s: %s: %s", e.URL, e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// IsKind reports whether err is a FetchError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}

// classify wraps err into a FetchError, deciding the kind from the
// context state and the error chain.
func classify(ctx context.Context, rawURL string, err error, fallback ErrorKind) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}

	kind := fallback
	var netErr net.Error
	switch {
	case errors.Is(ctx.Err(), context.Canceled), errors.Is(err, context.Canceled):
		kind = KindCancelled
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = KindTimeout
	}

	return &FetchError{
		Kind:    kind,
		URL:     rawURL,
		Message: err.Error(),
		Cause:   err,
	}
}
