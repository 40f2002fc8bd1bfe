// Package spotifytest provides an in-memory Spotify Web API for tests.
package spotifytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	zspotify "github.com/zmb3/spotify/v2"
)

// Token is the credential the fake server accepts by default.
const Token = "test-token"

// Server is a fake API rooted at URL (use it with Client.SetBaseURL).
type Server struct {
	*httptest.Server

	// Status forces a status code per endpoint path ("/me/top/artists").
	Status map[string]int

	mu       sync.Mutex
	user     zspotify.PrivateUser
	artists  []zspotify.FullArtist
	tracks   []zspotify.FullTrack
	requests map[string]int
	queries  []string
}

// NewServer starts a server holding the given profile and top items.
// Callers must Close it.
func NewServer(user zspotify.PrivateUser, artists []zspotify.FullArtist, tracks []zspotify.FullTrack) *Server {
	s := &Server{
		Status:   map[string]int{},
		user:     user,
		artists:  artists,
		tracks:   tracks,
		requests: map[string]int{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// Requests returns how many times path was requested.
func (s *Server) Requests(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[path]
}

// Queries returns the raw query strings received, in order.
func (s *Server) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1")

	s.mu.Lock()
	s.requests[path]++
	s.queries = append(s.queries, r.URL.RawQuery)
	status := s.Status[path]
	s.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer "+Token {
		writeError(w, http.StatusUnauthorized, "Invalid access token")
		return
	}
	if status != 0 && status != http.StatusOK {
		writeError(w, status, http.StatusText(status))
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20
	}

	switch path {
	case "/me":
		writeJSON(w, s.user)
	case "/me/top/artists":
		writeJSON(w, zspotify.FullArtistPage{Artists: s.artists[:min(limit, len(s.artists))]})
	case "/me/top/tracks":
		writeJSON(w, zspotify.FullTrackPage{Tracks: s.tracks[:min(limit, len(s.tracks))]})
	default:
		writeError(w, http.StatusNotFound, "Service not found")
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"status": status, "message": msg},
	})
}
