package provider

import (
	"context"
	"errors"
	"fmt"
)

// ErrProviderUnavailable indicates the provider is down or unreachable
// (network failure or 5xx response).
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("test provider unavailable: %v", e.Err)
	}
	return "test provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrSessionExpired indicates the test's time window has passed,
// reported either by the provider or derived from expires_at.
type ErrSessionExpired struct {
	TestID string
}

func (e *ErrSessionExpired) Error() string {
	return fmt.Sprintf("test %s has expired", e.TestID)
}

// ErrSessionNotResumable indicates the provider reports the test as
// completed, abandoned, or unknown.
type ErrSessionNotResumable struct {
	TestID string
	Status string
}

func (e *ErrSessionNotResumable) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("test %s is not resumable (status %q)", e.TestID, e.Status)
	}
	return fmt.Sprintf("test %s is not resumable", e.TestID)
}

// ErrSubmissionRejected indicates the provider refused an answer
// submission on validation grounds.
type ErrSubmissionRejected struct {
	TestID string
	Err    error
}

func (e *ErrSubmissionRejected) Error() string {
	return fmt.Sprintf("submission for test %s rejected: %v", e.TestID, e.Err)
}

func (e *ErrSubmissionRejected) Unwrap() error { return e.Err }

// ErrTimedOut indicates a provider request exceeded the client's own
// request deadline. Distinct from ErrSessionExpired, which is about the
// assessment countdown.
type ErrTimedOut struct {
	Err error
}

func (e *ErrTimedOut) Error() string {
	return fmt.Sprintf("test provider request timed out: %v", e.Err)
}

func (e *ErrTimedOut) Unwrap() error { return e.Err }

// ErrInvalidPayload indicates the provider returned a body that does
// not conform to the declared schema.
type ErrInvalidPayload struct {
	Err error
}

func (e *ErrInvalidPayload) Error() string {
	return fmt.Sprintf("invalid provider payload: %v", e.Err)
}

func (e *ErrInvalidPayload) Unwrap() error { return e.Err }

// IsRetryable reports whether a submission failed transiently and may
// be retried. Rejections and state-based refusals are permanent;
// context cancellation is never retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var unavail *ErrProviderUnavailable
	if errors.As(err, &unavail) {
		return true
	}
	var timedOut *ErrTimedOut
	if errors.As(err, &timedOut) {
		return true
	}
	return false
}
