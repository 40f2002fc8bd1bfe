package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/museum/pkg/cache"
	"github.com/matzehuels/museum/pkg/errors"
	"github.com/matzehuels/museum/pkg/httputil"
	"github.com/matzehuels/museum/pkg/observability"
)

// maxBodySize bounds responses read into memory (artwork included).
const maxBodySize = 16 << 20

// Client provides shared HTTP functionality for upstream API clients.
// It handles caching, retry logic, status mapping and common request headers.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
	headers   map[string]string
}

// NewClient creates a Client with the given cache and default headers.
// Cached entries are stored under namespace with the given TTL.
// Pass a nil cache to disable caching and nil headers if no default headers
// are needed.
func NewClient(c cache.Cache, namespace string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:      NewHTTPClient(httpTimeout),
		cache:     c,
		keyer:     cache.NewDefaultKeyer(),
		namespace: namespace,
		ttl:       ttl,
		headers:   headers,
	}
}

// SetKeyer replaces the key layout, typically with a [cache.ScopedKeyer]
// so responses fetched for one listener are never served to another.
func (c *Client) SetKeyer(k cache.Keyer) {
	if k != nil {
		c.keyer = k
	}
}

// SetTimeout changes the per-request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.http.Timeout = d
	}
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; on success, v is stored in the cache.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	ck := c.keyer.HTTPKey(c.namespace, key)
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, ck); ok && json.Unmarshal(data, v) == nil {
			return nil
		}
	}
	if err := httputil.RetryWithBackoff(ctx, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		_ = c.cache.Set(ctx, ck, data, c.ttl)
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
// Non-2xx responses and transport failures are returned as
// [errors.FetchFailedError].
func (c *Client) Get(ctx context.Context, rawURL string, v any) error {
	body, _, err := c.doRequest(ctx, rawURL)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(io.LimitReader(body, maxBodySize)).Decode(v); err != nil {
		return errors.FetchFailed(endpointOf(rawURL), http.StatusOK, fmt.Errorf("decode: %w", err))
	}
	return nil
}

// GetBytes performs an HTTP GET and returns the raw body with its content type.
func (c *Client) GetBytes(ctx context.Context, rawURL string) ([]byte, string, error) {
	body, contentType, err := c.doRequest(ctx, rawURL)
	if err != nil {
		return nil, "", err
	}
	defer body.Close()
	data, err := io.ReadAll(io.LimitReader(body, maxBodySize))
	if err != nil {
		return nil, "", errors.FetchFailed(endpointOf(rawURL), 0, fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	return data, contentType, nil
}

func (c *Client) doRequest(ctx context.Context, rawURL string) (io.ReadCloser, string, error) {
	endpoint := endpointOf(rawURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", errors.FetchFailed(endpoint, 0, err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, "", &httputil.RetryableError{Err: errors.FetchFailed(endpoint, 0, fmt.Errorf("%w: %v", ErrNetwork, err))}
	}
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(endpoint, resp); err != nil {
		resp.Body.Close()
		return nil, "", err
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

// checkStatus maps a response status to a FetchFailed error wrapping the
// matching sentinel. Rate limits and server errors are retryable.
func checkStatus(endpoint string, resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return errors.FetchFailed(endpoint, code, ErrUnauthorized)
	case code == http.StatusNotFound:
		return errors.FetchFailed(endpoint, code, ErrNotFound)
	case code == http.StatusTooManyRequests:
		after := httputil.ParseRetryAfter(resp.Header.Get("Retry-After"))
		return &httputil.RetryableError{
			Err:   errors.FetchFailed(endpoint, code, &errors.RateLimitedError{RetryAfter: int(after.Seconds()), Err: ErrRateLimited}),
			After: after,
		}
	case code >= 500:
		return &httputil.RetryableError{Err: errors.FetchFailed(endpoint, code, ErrNetwork)}
	default:
		return errors.FetchFailed(endpoint, code, nil)
	}
}

// endpointOf returns the path of rawURL, used to label fetch failures.
func endpointOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return rawURL
	}
	return u.Path
}
