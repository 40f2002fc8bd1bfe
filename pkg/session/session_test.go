package session

import (
	"context"
	stderrors "errors"
	"os"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/matzehuels/museum/pkg/museum"
)

func newCLIStore(t *testing.T) *CLIStore {
	t.Helper()
	store, err := NewCLIStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestNew(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	sess, err := New(&oauth2.Token{AccessToken: "a", TokenType: "Bearer", Expiry: expiry}, &museum.Profile{ID: "u1"})
	if err != nil {
		t.Fatal(err)
	}
	if sess.ID == "" || sess.AccessToken != "a" {
		t.Errorf("session = %+v", sess)
	}
	if !sess.ExpiresAt.Equal(expiry) {
		t.Errorf("ExpiresAt = %v, want token expiry without refresh token", sess.ExpiresAt)
	}
	if sess.UserID() != "spotify:u1" {
		t.Errorf("UserID() = %q", sess.UserID())
	}

	withRefresh, _ := New(&oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: expiry}, nil)
	if withRefresh.ExpiresAt.Before(time.Now().Add(DefaultTTL - time.Minute)) {
		t.Errorf("refreshable session should last DefaultTTL, expires %v", withRefresh.ExpiresAt)
	}
	if withRefresh.UserID() != "" {
		t.Error("UserID() without profile should be empty")
	}
}

func TestSetTokenKeepsRefreshToken(t *testing.T) {
	sess := &Session{RefreshToken: "r1"}
	sess.SetToken(&oauth2.Token{AccessToken: "a2"})
	if sess.AccessToken != "a2" || sess.RefreshToken != "r1" {
		t.Errorf("session = %+v", sess)
	}
}

func TestNeedsRefresh(t *testing.T) {
	tests := []struct {
		name string
		sess Session
		want bool
	}{
		{"no refresh token", Session{TokenExpiry: time.Now().Add(-time.Hour)}, false},
		{"no expiry", Session{RefreshToken: "r"}, false},
		{"fresh", Session{RefreshToken: "r", TokenExpiry: time.Now().Add(time.Hour)}, false},
		{"about to expire", Session{RefreshToken: "r", TokenExpiry: time.Now().Add(10 * time.Second)}, true},
		{"expired", Session{RefreshToken: "r", TokenExpiry: time.Now().Add(-time.Hour)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sess.NeedsRefresh(); got != tt.want {
				t.Errorf("NeedsRefresh() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	sess, _ := New(&oauth2.Token{AccessToken: "a", RefreshToken: "r"}, &museum.Profile{ID: "u1", DisplayName: "Ada"})
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	got, err := store.Get(ctx, sess.ID)
	if err != nil || got == nil {
		t.Fatalf("Get() = %v, %v", got, err)
	}
	if got.Profile.Name() != "Ada" || got.RefreshToken != "r" {
		t.Errorf("got %+v", got)
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if got, _ := store.Get(ctx, sess.ID); got != nil {
		t.Error("session still present after Delete")
	}
	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Errorf("Delete() of missing session error: %v", err)
	}
}

func TestFileStoreExpired(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	old := &Session{ID: "old", AccessToken: "a", ExpiresAt: time.Now().Add(-time.Minute)}
	live := &Session{ID: "live", AccessToken: "b", ExpiresAt: time.Now().Add(time.Hour)}
	for _, s := range []*Session{old, live} {
		if err := store.Set(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	if err := store.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup() error: %v", err)
	}
	if _, err := os.Stat(store.sessionPath("old")); !os.IsNotExist(err) {
		t.Error("expired session file not removed")
	}
	if got, _ := store.Get(ctx, "live"); got == nil {
		t.Error("live session removed")
	}
}

func TestCLIStoreActive(t *testing.T) {
	ctx := context.Background()
	store := newCLIStore(t)

	if _, err := store.Active(ctx, nil); !stderrors.Is(err, ErrNotFound) {
		t.Fatalf("Active() with no session error = %v, want ErrNotFound", err)
	}

	sess, _ := New(&oauth2.Token{AccessToken: "old", RefreshToken: "r", Expiry: time.Now().Add(-time.Minute)}, nil)
	if err := store.SaveSession(ctx, sess); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Active(ctx, nil); !stderrors.Is(err, ErrExpired) {
		t.Errorf("Active() without refresher error = %v, want ErrExpired", err)
	}

	var calls int
	refresh := func(_ context.Context, tok *oauth2.Token) (*oauth2.Token, error) {
		calls++
		if tok.RefreshToken != "r" {
			t.Errorf("refresh token = %q", tok.RefreshToken)
		}
		return &oauth2.Token{AccessToken: "new", Expiry: time.Now().Add(time.Hour)}, nil
	}
	got, err := store.Active(ctx, refresh)
	if err != nil {
		t.Fatalf("Active() error: %v", err)
	}
	if got.AccessToken != "new" || got.RefreshToken != "r" {
		t.Errorf("refreshed session = %+v", got)
	}

	// The refreshed token was persisted.
	if _, err := store.Active(ctx, refresh); err != nil || calls != 1 {
		t.Errorf("second Active() err=%v calls=%d, want no extra refresh", err, calls)
	}
}

func TestCLIStoreActiveRefreshFails(t *testing.T) {
	ctx := context.Background()
	store := newCLIStore(t)
	sess, _ := New(&oauth2.Token{AccessToken: "old", RefreshToken: "r", Expiry: time.Now().Add(-time.Minute)}, nil)
	_ = store.SaveSession(ctx, sess)

	_, err := store.Active(ctx, func(context.Context, *oauth2.Token) (*oauth2.Token, error) {
		return nil, stderrors.New("invalid_grant")
	})
	if !stderrors.Is(err, ErrExpired) {
		t.Errorf("error = %v, want ErrExpired", err)
	}
}
