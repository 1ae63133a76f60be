package remote

import (
	"errors"
	"fmt"
)

// NetworkError indicates the request never produced a well-formed
// response: DNS failure, refused connection, timeout, connection dropped
// mid-flight. Only this class of failure may trigger an offline fallback
// in the reconciliation layer.
type NetworkError struct {
	Op  string // endpoint operation, e.g. "login"
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network unavailable during %s (%s): %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError indicates the remote service received the request and
// rejected it: bad credentials, validation failure, limits. It is never
// a reason to fall back to local state.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s rejected (status %d): %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s rejected (status %d)", e.Op, e.StatusCode)
}

// IsNetworkError reports whether err (or anything it wraps) is a
// transport-level failure.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsAPIError reports whether err is a rejection from the remote service.
func IsAPIError(err error) bool {
	var ae *APIError
	return errors.As(err, &ae)
}
