package httputil

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"
)

const (
	defaultAttempts = 3
	defaultDelay    = time.Second

	// maxRetryAfter caps server-provided delays.
	maxRetryAfter = 30 * time.Second
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (network timeouts, 5xx responses) with this type
// so that [Retry] knows to attempt the operation again.
type RetryableError struct {
	Err   error
	After time.Duration // server-requested delay; zero means use backoff
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry executes fn up to attempts times with exponential backoff.
// It only retries errors wrapped with [RetryableError]; other errors are
// returned immediately. The delay doubles after each failed attempt.
// Returns the last error if all attempts fail, or ctx.Err() if cancelled.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		var re *RetryableError
		if !errors.As(err, &re) {
			return err
		}

		if i < attempts-1 {
			wait := delay
			if re.After > 0 {
				wait = min(re.After, maxRetryAfter)
			}
			if err := sleep(ctx, wait); err != nil {
				return err
			}
			delay *= 2
		}
	}
	return lastErr
}

// RetryWithBackoff is a convenience wrapper around [Retry] using the
// defaults from [ConfigFromEnv].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	attempts, delay := ConfigFromEnv()
	return Retry(ctx, attempts, delay, fn)
}

// ConfigFromEnv returns the retry attempt count and base delay, honoring
// SPOTIFY_MAX_RETRIES and SPOTIFY_RETRY_BACKOFF_MS when they hold positive
// integers.
func ConfigFromEnv() (int, time.Duration) {
	attempts := defaultAttempts
	if raw := os.Getenv("SPOTIFY_MAX_RETRIES"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			attempts = n
		}
	}

	delay := defaultDelay
	if raw := os.Getenv("SPOTIFY_RETRY_BACKOFF_MS"); raw != "" {
		if ms, err := strconv.Atoi(raw); err == nil && ms > 0 {
			delay = time.Duration(ms) * time.Millisecond
		}
	}
	return attempts, delay
}

// ParseRetryAfter interprets a Retry-After header value, which is either a
// number of seconds or an HTTP date. Unparseable or past values yield zero.
func ParseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(value); err == nil {
		if until := time.Until(when); until > 0 {
			return until
		}
	}
	return 0
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
