package llm

import (
	"errors"
)

// Failures from model endpoints are split into two classes so the client
// knows whether retrying the same endpoint can help or the fallback chain
// should advance.

// TransientError is a failure that may clear on retry: rate limits,
// timeouts, upstream outages.
type TransientError struct {
	err error
}

func (e *TransientError) Error() string {
	return e.err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.err
}

// NewTransientError wraps an error as transient (retryable).
func NewTransientError(err error) error {
	return &TransientError{err: err}
}

// FatalError is a failure no retry will cure, such as a malformed request
// or bad credentials.
type FatalError struct {
	err error
}

func (e *FatalError) Error() string {
	return e.err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.err
}

// NewFatalError wraps an error as fatal (non-retryable).
func NewFatalError(err error) error {
	return &FatalError{err: err}
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

// IsFatal reports whether err should abort the current endpoint immediately.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}
