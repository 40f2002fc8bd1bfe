// Package httputil provides retry helpers shared by the upstream API clients.
//
// # Retry
//
// [Retry] re-runs an operation when it fails with a [RetryableError]:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Delays double after each attempt. A RetryableError may carry an explicit
// After duration (taken from a Retry-After header via [ParseRetryAfter]),
// which replaces the computed backoff for that attempt.
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return fetchTopTracks(ctx)
//	})
//
// # Configuration
//
// Default settings are 3 attempts with a 1 second base delay. [ConfigFromEnv]
// reads SPOTIFY_MAX_RETRIES and SPOTIFY_RETRY_BACKOFF_MS to override them.
package httputil
