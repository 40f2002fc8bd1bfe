package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// FileStore keeps one JSON file per session in a directory readable only
// by the current user. Writes go through a temp file and a rename so a
// crash never leaves a truncated token behind.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates the store, making dir if needed. An empty dir
// selects the user config directory (~/.config/museum/sessions).
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("locate config dir: %w", err)
		}
		dir = filepath.Join(base, "museum", "sessions")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) sessionPath(id string) string {
	return filepath.Join(s.dir, filepath.Base(id)+".json")
}

// load decodes the session at path. A missing file yields nil.
func load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", filepath.Base(path), err)
	}
	return &sess, nil
}

// Get returns the session, or nil if it is missing or past its TTL.
// Expired files are removed on the way.
func (s *FileStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.sessionPath(id)
	sess, err := load(path)
	if err != nil || sess == nil {
		return nil, err
	}
	if sess.IsExpired() {
		_ = os.Remove(path)
		return nil, nil
	}
	return sess, nil
}

// Set writes sess under its ID, replacing any previous file.
func (s *FileStore) Set(_ context.Context, sess *Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, ".session-*")
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.sessionPath(sess.ID)); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.sessionPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// Cleanup removes every session past its TTL. Unreadable files are left
// alone.
func (s *FileStore) Cleanup(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	now := time.Now()
	for _, path := range paths {
		if sess, err := load(path); err == nil && sess != nil && now.After(sess.ExpiresAt) {
			_ = os.Remove(path)
		}
	}
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }

// Path returns the session directory.
func (s *FileStore) Path() string { return s.dir }

var _ Store = (*FileStore)(nil)

// =============================================================================
// CLIStore - the one login of the command line
// =============================================================================

// cliSessionID names the session file written by `museum login`.
const cliSessionID = "spotify"

// CLIStore holds the single session of the command-line login.
type CLIStore struct {
	files *FileStore
}

// NewCLIStore opens the login store in dir (empty selects the default
// directory).
func NewCLIStore(dir string) (*CLIStore, error) {
	files, err := NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	return &CLIStore{files: files}, nil
}

// GetSession returns the stored login, or nil when logged out.
func (c *CLIStore) GetSession(ctx context.Context) (*Session, error) {
	return c.files.Get(ctx, cliSessionID)
}

// SaveSession replaces the stored login.
func (c *CLIStore) SaveSession(ctx context.Context, sess *Session) error {
	sess.ID = cliSessionID
	return c.files.Set(ctx, sess)
}

// DeleteSession logs out.
func (c *CLIStore) DeleteSession(ctx context.Context) error {
	return c.files.Delete(ctx, cliSessionID)
}

// Path returns the login file.
func (c *CLIStore) Path() string { return c.files.sessionPath(cliSessionID) }

// Refresher exchanges a token's refresh token for a new access token.
type Refresher func(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error)

// Active returns the stored session with a usable access token. An expired
// access token is renewed with refresh and the session saved again.
// Returns ErrNotFound when nobody is logged in and ErrExpired when the
// token cannot be renewed.
func (c *CLIStore) Active(ctx context.Context, refresh Refresher) (*Session, error) {
	sess, err := c.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNotFound
	}
	if !sess.NeedsRefresh() {
		if !sess.TokenExpiry.IsZero() && time.Now().After(sess.TokenExpiry) {
			return nil, ErrExpired
		}
		return sess, nil
	}
	if refresh == nil {
		return nil, ErrExpired
	}

	tok, err := refresh(ctx, sess.OAuthToken())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExpired, err)
	}
	sess.SetToken(tok)
	if err := c.SaveSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}
