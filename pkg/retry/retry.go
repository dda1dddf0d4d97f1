package retry

import (
	"context"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	apperrors "github.com/johnquangdev/meeting-taskflow/errors"
)

// Policy bounds retries of transient failures with exponential backoff
type Policy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxElapsed      time.Duration
}

// DefaultPolicy matches the storage retry budget: 3 attempts, short intervals
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: 200 * time.Millisecond,
		MaxElapsed:      5 * time.Second,
	}
}

// Do runs fn, retrying transient errors per the policy. Permission,
// validation and not-found errors are never retried and surface immediately.
func Do(ctx context.Context, p Policy, fn func() error) error {
	if p.MaxAttempts <= 0 {
		p = DefaultPolicy()
	}

	wrapped := func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialInterval
	bo.MaxElapsedTime = p.MaxElapsed

	limited := backoff.WithMaxRetries(backoff.WithContext(bo, ctx), uint64(p.MaxAttempts-1))
	return backoff.Retry(wrapped, limited)
}

// IsRetryable checks if an error should trigger a retry.
// Retryable errors include: network errors, timeouts, deadlocks, rate limits.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.Code == apperrors.ErrorCode_TRANSIENT_STORAGE
	}

	errStr := strings.ToLower(err.Error())

	// Context errors (timeout, cancelled)
	if strings.Contains(errStr, "context deadline exceeded") ||
		strings.Contains(errStr, "context canceled") {
		return true
	}

	// Network errors
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "network unreachable") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "i/o timeout") {
		return true
	}

	// Database deadlock/lock errors (Postgres)
	if strings.Contains(errStr, "deadlock") ||
		strings.Contains(errStr, "40001") || // serialization_failure
		strings.Contains(errStr, "40p01") { // deadlock_detected
		return true
	}

	// Temporary failures
	if strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "try again") ||
		strings.Contains(errStr, "too many requests") {
		return true
	}

	return false
}
