// Package session stores authenticated listener sessions.
//
// A [Session] holds the OAuth token obtained by `museum login` together
// with the profile it belongs to. The CLI keeps one session on disk
// ([CLIStore], backed by [FileStore]) so that later commands can build a
// museum without asking for a token again.
//
// # Usage
//
//	sess, err := session.New(token, profile)
//	if err != nil {
//	    return err
//	}
//	store.Set(ctx, sess)
//
//	sess, err := store.Get(ctx, sessionID)
//	if err != nil {
//	    return err
//	}
//	if sess == nil {
//	    // Session not found
//	}
//	if sess.NeedsRefresh() {
//	    // Exchange sess.RefreshToken for a new access token
//	}
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"golang.org/x/oauth2"

	"github.com/matzehuels/museum/pkg/museum"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a session has exceeded its TTL and cannot
	// be refreshed.
	ErrExpired = errors.New("expired")
)

// Default durations.
const (
	// DefaultTTL is how long a session with a refresh token is kept.
	DefaultTTL = 30 * 24 * time.Hour

	// refreshSkew renews access tokens slightly before they expire.
	refreshSkew = time.Minute
)

// Session stores an authenticated listener.
type Session struct {
	ID           string          `json:"id"`
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	TokenType    string          `json:"token_type,omitempty"`
	TokenExpiry  time.Time       `json:"token_expiry,omitempty"`
	Profile      *museum.Profile `json:"profile,omitempty"`
	ExpiresAt    time.Time       `json:"expires_at"`
	CreatedAt    time.Time       `json:"created_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// NeedsRefresh reports whether the access token has expired (or is about
// to) and a refresh token is available.
func (s *Session) NeedsRefresh() bool {
	if s.RefreshToken == "" || s.TokenExpiry.IsZero() {
		return false
	}
	return time.Now().Add(refreshSkew).After(s.TokenExpiry)
}

// UserID returns a storage-compatible user identifier.
// Format: "spotify:{id}" to namespace by provider.
func (s *Session) UserID() string {
	if s == nil || s.Profile == nil {
		return ""
	}
	return "spotify:" + s.Profile.ID
}

// OAuthToken returns the stored token.
func (s *Session) OAuthToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		Expiry:       s.TokenExpiry,
	}
}

// SetToken replaces the stored token, keeping the previous refresh token
// when the new one has none.
func (s *Session) SetToken(tok *oauth2.Token) {
	s.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		s.RefreshToken = tok.RefreshToken
	}
	s.TokenType = tok.TokenType
	s.TokenExpiry = tok.Expiry
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error
}

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// New creates a session for tok. Sessions without a refresh token expire
// with their access token (a pasted token, typically); others last
// [DefaultTTL].
func New(tok *oauth2.Token, profile *museum.Profile) (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &Session{
		ID:        id,
		Profile:   profile,
		ExpiresAt: now.Add(DefaultTTL),
		CreatedAt: now,
	}
	sess.SetToken(tok)
	if tok.RefreshToken == "" && !tok.Expiry.IsZero() {
		sess.ExpiresAt = tok.Expiry
	}
	return sess, nil
}
