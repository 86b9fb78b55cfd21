// Package errors provides error types and utilities for EmailScope.
// Sentinels describe transport-level failure classes; domain-level failures
// live in internal/core/domain.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Sentinel errors for common failure scenarios
var (
	// ErrTimeout indicates an operation exceeded its time limit
	ErrTimeout = errors.New("operation timed out")

	// ErrRateLimit indicates the remote side asked us to slow down
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid input was provided
	ErrInvalidInput = errors.New("invalid input")

	// ErrConnectionFailed indicates a connection could not be established
	ErrConnectionFailed = errors.New("connection failed")

	// ErrConnectionRefused indicates the peer actively refused the connection
	ErrConnectionRefused = errors.New("connection refused")

	// ErrUnauthorized indicates the resource requires authentication
	ErrUnauthorized = errors.New("unauthorized")

	// ErrServiceUnavailable indicates a service is temporarily unavailable
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrInvalidResponse indicates a response could not be parsed or was malformed
	ErrInvalidResponse = errors.New("invalid response")

	// ErrUnsupportedContent indicates a response body of an unexpected media type
	ErrUnsupportedContent = errors.New("unsupported content type")

	// ErrRedirect indicates a redirect that was returned to the caller instead of followed
	ErrRedirect = errors.New("redirect not followed")
)

// wrappedError wraps an error with additional context
type wrappedError struct {
	msg   string
	cause error
}

func (e *wrappedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

func (e *wrappedError) Unwrap() error {
	return e.cause
}

// Wrap wraps an error with additional context message.
// If err is nil, Wrap returns nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{msg: msg, cause: err}
}

// Wrapf wraps an error with a formatted context message.
// If err is nil, Wrapf returns nil.
//
// Example:
//
//	if err != nil {
//	    return errors.Wrapf(err, "fetch robots for %s", domain)
//	}
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &wrappedError{msg: fmt.Sprintf(format, args...), cause: err}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// New creates a new error with the given message.
func New(msg string) error {
	return errors.New(msg)
}

// Errorf formats according to a format specifier and returns the string as a value that satisfies error.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// Join returns an error that wraps the given errors.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Classify maps low-level network errors onto the package sentinels while
// keeping the original error in the chain. Unknown errors are returned as is.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case Is(err, ErrTimeout), Is(err, ErrConnectionRefused), Is(err, ErrConnectionFailed):
		return err
	case Is(err, context.DeadlineExceeded):
		return Join(ErrTimeout, err)
	case Is(err, syscall.ECONNREFUSED):
		return Join(ErrConnectionRefused, err)
	}

	var netErr net.Error
	if As(err, &netErr) && netErr.Timeout() {
		return Join(ErrTimeout, err)
	}

	var opErr *net.OpError
	if As(err, &opErr) && opErr.Op == "dial" {
		return Join(ErrConnectionFailed, err)
	}

	var dnsErr *net.DNSError
	if As(err, &dnsErr) {
		if dnsErr.IsNotFound {
			return Join(ErrNotFound, err)
		}
		if dnsErr.IsTimeout {
			return Join(ErrTimeout, err)
		}
	}
	return err
}

// IsTimeout reports whether the error is a timeout error
func IsTimeout(err error) bool {
	return Is(err, ErrTimeout)
}

// IsRateLimit reports whether the error is a rate limit error
func IsRateLimit(err error) bool {
	return Is(err, ErrRateLimit)
}

// IsNotFound reports whether the error is a not found error
func IsNotFound(err error) bool {
	return Is(err, ErrNotFound)
}

// IsInvalidInput reports whether the error is an invalid input error
func IsInvalidInput(err error) bool {
	return Is(err, ErrInvalidInput)
}

// IsConnectionFailed reports whether the error is a connection failure of any kind
func IsConnectionFailed(err error) bool {
	return Is(err, ErrConnectionFailed) || Is(err, ErrConnectionRefused)
}

// IsConnectionRefused reports whether the peer refused the connection
func IsConnectionRefused(err error) bool {
	return Is(err, ErrConnectionRefused)
}

// IsServiceUnavailable reports whether the error is a service unavailable error
func IsServiceUnavailable(err error) bool {
	return Is(err, ErrServiceUnavailable)
}

// IsInvalidResponse reports whether the error is an invalid response error
func IsInvalidResponse(err error) bool {
	return Is(err, ErrInvalidResponse)
}
