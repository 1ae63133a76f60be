package syncer

import (
	"errors"
	"fmt"
)

// Code categorizes reconciliation failures.
type Code string

const (
	// CodeNetworkUnavailable is a transport-level failure. The syncer is
	// the only layer allowed to catch it and substitute a fallback.
	CodeNetworkUnavailable Code = "NETWORK_UNAVAILABLE"

	// CodeRejected means the remote service returned a well-formed error.
	// Surfaced verbatim; never triggers a fallback.
	CodeRejected Code = "REJECTED"

	// CodeLocalStore is a constraint violation or I/O failure in the
	// embedded database. Always fatal to the current operation.
	CodeLocalStore Code = "LOCAL_STORE"

	// CodeEmptyCart means checkout was attempted on an empty cart.
	CodeEmptyCart Code = "EMPTY_CART"

	// CodeInvalidCredentials means neither the remote service nor the
	// local mirror accepted the credentials.
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"

	// CodeLimitExceeded means a domain cap was hit (e.g. cards per user).
	CodeLimitExceeded Code = "LIMIT_EXCEEDED"

	// CodeConnectivityRequired marks remote-only operations attempted
	// while offline. No stale or empty data is substituted.
	CodeConnectivityRequired Code = "CONNECTIVITY_REQUIRED"
)

// OpError is an error from a reconciliation operation, carrying the
// failure category and the operation that produced it.
type OpError struct {
	Code    Code
	Op      string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Op)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// UserMessage returns the text safe to show an end user. Domain errors
// get their specific message; transport and local-store failures get a
// generic retry prompt so raw transport/SQL text never leaks to the UI.
func (e *OpError) UserMessage() string {
	switch e.Code {
	case CodeNetworkUnavailable, CodeLocalStore:
		return "Something went wrong. Please try again."
	case CodeConnectivityRequired:
		return "This action requires an internet connection."
	case CodeEmptyCart:
		return "Your cart is empty."
	case CodeInvalidCredentials:
		return "Email or password is incorrect."
	case CodeLimitExceeded:
		if e.Message != "" {
			return e.Message
		}
		return "Limit reached."
	default:
		if e.Message != "" {
			return e.Message
		}
		return "Request failed."
	}
}

func is(err error, code Code) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Code == code
	}
	return false
}

// IsNetworkUnavailable reports whether err is a transport-level failure.
func IsNetworkUnavailable(err error) bool { return is(err, CodeNetworkUnavailable) }

// IsRejected reports whether err is a remote rejection.
func IsRejected(err error) bool { return is(err, CodeRejected) }

// IsInvalidCredentials reports whether err is a failed authentication.
func IsInvalidCredentials(err error) bool { return is(err, CodeInvalidCredentials) }

// IsEmptyCart reports whether err is an empty-cart checkout.
func IsEmptyCart(err error) bool { return is(err, CodeEmptyCart) }

// IsConnectivityRequired reports whether err is a remote-only operation
// attempted offline.
func IsConnectivityRequired(err error) bool { return is(err, CodeConnectivityRequired) }

// IsLimitExceeded reports whether err hit a domain cap.
func IsLimitExceeded(err error) bool { return is(err, CodeLimitExceeded) }

func opErr(code Code, op string, err error) *OpError {
	return &OpError{Code: code, Op: op, Err: err}
}

func opErrMsg(code Code, op, msg string) *OpError {
	return &OpError{Code: code, Op: op, Message: msg}
}
