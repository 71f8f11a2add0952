package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable means the provider is not configured (usually a missing API key).
	ErrUnavailable = errors.New("ai provider unavailable")
	ErrQuota       = errors.New("ai provider quota exceeded")
	ErrMalformed   = errors.New("ai provider returned a malformed response")
)

type FailureReason string

const (
	FailureNone        FailureReason = ""
	FailureTimeout     FailureReason = "timeout"
	FailureUnavailable FailureReason = "unavailable"
	FailureQuota       FailureReason = "quota"
	FailureMalformed   FailureReason = "malformed"
	FailureUpstream    FailureReason = "upstream"
	FailureCanceled    FailureReason = "canceled"
)

// Classify maps a provider error onto a failure reason.
func Classify(err error) FailureReason {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	case errors.Is(err, context.Canceled):
		return FailureCanceled
	case errors.Is(err, ErrUnavailable):
		return FailureUnavailable
	case errors.Is(err, ErrQuota):
		return FailureQuota
	case errors.Is(err, ErrMalformed):
		return FailureMalformed
	default:
		return FailureUpstream
	}
}

func statusError(provider string, status int, body string) error {
	if status == http.StatusTooManyRequests {
		return fmt.Errorf("%s request failed: %d: %s: %w", provider, status, body, ErrQuota)
	}
	return fmt.Errorf("%s request failed: %d: %s", provider, status, body)
}
