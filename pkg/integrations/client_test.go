package integrations

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/museum/pkg/cache"
	"github.com/matzehuels/museum/pkg/errors"
	"github.com/matzehuels/museum/pkg/httputil"
)

func TestNewClient(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	headers := map[string]string{"Authorization": "Bearer token"}
	client := NewClient(c, "test:", time.Hour, headers)

	if client.http == nil {
		t.Fatal("NewClient() http client is nil")
	}
	if client.http.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", client.http.Timeout, DefaultTimeout)
	}
	if client.cache != c {
		t.Error("NewClient() cache not set correctly")
	}
	if client.headers["Authorization"] != "Bearer token" {
		t.Error("NewClient() headers not set correctly")
	}
}

func TestNewClientNilCache(t *testing.T) {
	client := NewClient(nil, "test:", time.Hour, nil)
	if client.cache == nil {
		t.Fatal("nil cache should be replaced by a null cache")
	}
	if client.headers != nil {
		t.Error("NewClient() should allow nil headers")
	}
}

func TestClientGet(t *testing.T) {
	type response struct {
		Message string `json:"message"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer abc" {
			t.Errorf("Authorization = %q", got)
		}
		json.NewEncoder(w).Encode(response{Message: "hello"})
	}))
	defer server.Close()

	client := NewClient(nil, "test:", time.Hour, map[string]string{"Authorization": "Bearer abc"})
	client.http = server.Client()

	var resp response
	if err := client.Get(context.Background(), server.URL+"/v1/me", &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("Get() message = %q, want %q", resp.Message, "hello")
	}
}

func TestClientGetBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("not really a jpeg"))
	}))
	defer server.Close()

	client := NewClient(nil, "img:", time.Hour, nil)
	client.http = server.Client()

	data, ct, err := client.GetBytes(context.Background(), server.URL+"/cover.jpg")
	if err != nil {
		t.Fatalf("GetBytes() error: %v", err)
	}
	if string(data) != "not really a jpeg" || ct != "image/jpeg" {
		t.Errorf("GetBytes() = %q, %q", data, ct)
	}
}

func TestClientGetStatusMapping(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		sentinel  error
		retryable bool
	}{
		{"Unauthorized", http.StatusUnauthorized, ErrUnauthorized, false},
		{"Forbidden", http.StatusForbidden, ErrUnauthorized, false},
		{"NotFound", http.StatusNotFound, ErrNotFound, false},
		{"RateLimited", http.StatusTooManyRequests, ErrRateLimited, true},
		{"ServerError", http.StatusInternalServerError, ErrNetwork, true},
		{"BadGateway", http.StatusBadGateway, ErrNetwork, true},
		{"BadRequest", http.StatusBadRequest, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "2")
				w.WriteHeader(tt.code)
			}))
			defer server.Close()

			client := NewClient(nil, "test:", time.Hour, nil)
			client.http = server.Client()

			var resp map[string]string
			err := client.Get(context.Background(), server.URL+"/v1/me/top/artists", &resp)

			var ff *errors.FetchFailedError
			if !stderrors.As(err, &ff) {
				t.Fatalf("error = %v (%T), want FetchFailedError", err, err)
			}
			if ff.StatusCode != tt.code {
				t.Errorf("StatusCode = %d, want %d", ff.StatusCode, tt.code)
			}
			if ff.Endpoint != "/v1/me/top/artists" {
				t.Errorf("Endpoint = %q", ff.Endpoint)
			}
			if tt.sentinel != nil && !stderrors.Is(err, tt.sentinel) {
				t.Errorf("error = %v, want wrapping %v", err, tt.sentinel)
			}
			if !errors.Is(err, errors.ErrCodeFetchFailed) {
				t.Errorf("code = %q, want FETCH_FAILED", errors.GetCode(err))
			}

			var re *httputil.RetryableError
			if got := stderrors.As(err, &re); got != tt.retryable {
				t.Errorf("retryable = %v, want %v", got, tt.retryable)
			}
			if tt.code == http.StatusTooManyRequests {
				if re.After != 2*time.Second {
					t.Errorf("After = %v, want 2s", re.After)
				}
				var rl *errors.RateLimitedError
				if !stderrors.As(err, &rl) || rl.RetryAfter != 2 {
					t.Errorf("error = %v, want RateLimitedError with RetryAfter 2", err)
				}
				if got := errors.HTTPStatus(err); got != http.StatusTooManyRequests {
					t.Errorf("HTTPStatus = %d, want 429", got)
				}
			}
		})
	}
}

func TestClientGetNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(nil, "test:", time.Hour, nil)

	var resp map[string]string
	err := client.Get(context.Background(), url+"/v1/me", &resp)

	var ff *errors.FetchFailedError
	if !stderrors.As(err, &ff) {
		t.Fatalf("error = %v, want FetchFailedError", err)
	}
	if ff.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for transport failures", ff.StatusCode)
	}
	if !stderrors.Is(err, ErrNetwork) {
		t.Errorf("error = %v, want wrapping ErrNetwork", err)
	}
}

func TestClientGetDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer server.Close()

	client := NewClient(nil, "test:", time.Hour, nil)
	client.http = server.Client()

	var resp map[string]string
	err := client.Get(context.Background(), server.URL, &resp)
	if !errors.Is(err, errors.ErrCodeFetchFailed) {
		t.Errorf("error = %v, want FETCH_FAILED", err)
	}
}

func TestClientCached(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	client := NewClient(c, "test:", time.Hour, nil)

	type testData struct {
		Value string `json:"value"`
	}

	fetchCount := 0
	fetch := func(v *testData) func() error {
		return func() error {
			fetchCount++
			*v = testData{Value: "fetched"}
			return nil
		}
	}

	var first testData
	if err := client.Cached(context.Background(), "key", false, &first, fetch(&first)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}

	var second testData
	if err := client.Cached(context.Background(), "key", false, &second, fetch(&second)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	if fetchCount != 1 {
		t.Errorf("fetch count = %d, want 1", fetchCount)
	}
	if second.Value != "fetched" {
		t.Errorf("cached value = %q", second.Value)
	}

	t.Run("Refresh", func(t *testing.T) {
		var v testData
		if err := client.Cached(context.Background(), "key", true, &v, fetch(&v)); err != nil {
			t.Fatal(err)
		}
		if fetchCount != 2 {
			t.Errorf("fetch count = %d, want 2", fetchCount)
		}
	})

	t.Run("ScopedKeysAreIsolated", func(t *testing.T) {
		other := NewClient(c, "test:", time.Hour, nil)
		other.SetKeyer(cache.NewScopedKeyer(nil, cache.CredentialScope("someone-else")))
		var v testData
		if err := other.Cached(context.Background(), "key", false, &v, fetch(&v)); err != nil {
			t.Fatal(err)
		}
		if fetchCount != 3 {
			t.Errorf("fetch count = %d, want 3", fetchCount)
		}
	})
}

func TestClientCachedFetchError(t *testing.T) {
	client := NewClient(nil, "test:", time.Hour, nil)

	fetchCount := 0
	fetch := func() error {
		fetchCount++
		return errors.FetchFailed("/v1/me", http.StatusNotFound, ErrNotFound)
	}

	var value string
	err := client.Cached(context.Background(), "missing", false, &value, fetch)
	if !stderrors.Is(err, ErrNotFound) {
		t.Errorf("Cached() error = %v, want ErrNotFound", err)
	}
	if fetchCount != 1 {
		t.Errorf("non-retryable error fetched %d times, want 1", fetchCount)
	}
}

func TestEndpointOf(t *testing.T) {
	tests := map[string]string{
		"https://api.spotify.com/v1/me/top/tracks?limit=50": "/v1/me/top/tracks",
		"https://example.com":                               "https://example.com",
		"::bad":                                             "::bad",
	}
	for in, want := range tests {
		if got := endpointOf(in); got != want {
			t.Errorf("endpointOf(%q) = %q, want %q", in, got, want)
		}
	}
}
