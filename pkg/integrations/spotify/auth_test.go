package spotify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestAuthURL(t *testing.T) {
	a := NewAuthenticator("client-123", "")
	u, err := url.Parse(a.AuthURL())
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()

	checks := map[string]string{
		"client_id":             "client-123",
		"redirect_uri":          DefaultRedirectURL,
		"response_type":         "code",
		"state":                 a.State(),
		"code_challenge_method": "S256",
	}
	for k, want := range checks {
		if got := q.Get(k); got != want {
			t.Errorf("%s = %q, want %q", k, got, want)
		}
	}
	if q.Get("code_challenge") == "" {
		t.Error("missing code_challenge")
	}
	if !strings.Contains(q.Get("scope"), "user-top-read") {
		t.Errorf("scope = %q, want user-top-read", q.Get("scope"))
	}
}

func TestAuthenticatorsAreIndependent(t *testing.T) {
	a, b := NewAuthenticator("id", ""), NewAuthenticator("id", "")
	if a.State() == b.State() {
		t.Error("two logins share a state")
	}
}

func TestTokenRejectsDeniedConsent(t *testing.T) {
	a := NewAuthenticator("id", "")
	r := httptest.NewRequest("GET", "/callback?error=access_denied&state="+a.State(), nil)
	if _, err := a.Token(context.Background(), r); err == nil || !strings.Contains(err.Error(), "access_denied") {
		t.Errorf("Token() error = %v, want access_denied", err)
	}
}

func TestTokenRejectsStateMismatch(t *testing.T) {
	a := NewAuthenticator("id", "")
	r := httptest.NewRequest("GET", "/callback?code=abc&state=forged", nil)
	if _, err := a.Token(context.Background(), r); err == nil {
		t.Error("Token() should reject a forged state")
	}
}

func TestAuthenticatorRefresh(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		if r.PostForm.Get("refresh_token") == "revoked" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"fresh","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	a := NewAuthenticator("client-123", "")
	a.cfg.Endpoint.TokenURL = srv.URL

	t.Run("Rotates", func(t *testing.T) {
		stale := &oauth2.Token{AccessToken: "stale", RefreshToken: "r1", Expiry: time.Now().Add(time.Hour)}
		tok, err := a.Refresh(context.Background(), stale)
		if err != nil {
			t.Fatalf("Refresh() error: %v", err)
		}
		if tok.AccessToken != "fresh" {
			t.Errorf("AccessToken = %q, want fresh", tok.AccessToken)
		}
		if tok.RefreshToken != "r1" {
			t.Errorf("RefreshToken = %q, want r1 kept", tok.RefreshToken)
		}
		if got := form.Get("grant_type"); got != "refresh_token" {
			t.Errorf("grant_type = %q", got)
		}
		if got := form.Get("client_id"); got != "client-123" {
			t.Errorf("client_id = %q, want client-123", got)
		}
	})

	t.Run("Rejected", func(t *testing.T) {
		if _, err := a.Refresh(context.Background(), &oauth2.Token{RefreshToken: "revoked"}); err == nil {
			t.Error("Refresh() should fail for a revoked token")
		}
	})

	t.Run("NoRefreshToken", func(t *testing.T) {
		if _, err := a.Refresh(context.Background(), &oauth2.Token{AccessToken: "a"}); err == nil {
			t.Error("Refresh() should fail without a refresh token")
		}
	})
}
