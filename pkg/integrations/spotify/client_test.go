package spotify

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	zspotify "github.com/zmb3/spotify/v2"

	"github.com/matzehuels/museum/pkg/cache"
	"github.com/matzehuels/museum/pkg/errors"
	"github.com/matzehuels/museum/pkg/integrations"
	"github.com/matzehuels/museum/pkg/integrations/spotify/spotifytest"
)

func newTestClient(t *testing.T, srv *spotifytest.Server, c cache.Cache) *Client {
	t.Helper()
	client, err := NewClient(spotifytest.Token, c)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	client.SetBaseURL(srv.URL + "/v1")
	return client
}

func TestNewClientRejectsBadCredential(t *testing.T) {
	for _, tok := range []string{"", "has space", "line\nbreak"} {
		if _, err := NewClient(tok, nil); !errors.Is(err, errors.ErrCodeUnauthorized) {
			t.Errorf("NewClient(%q) error = %v, want UNAUTHORIZED", tok, err)
		}
	}
}

func TestTopArtists(t *testing.T) {
	srv := spotifytest.NewServer(spotifytest.User("u1", "Ada"), spotifytest.Artists(40), nil)
	defer srv.Close()

	client := newTestClient(t, srv, nil)
	artists, err := client.TopArtists(context.Background(), 30, ShortTerm, false)
	if err != nil {
		t.Fatalf("TopArtists() error: %v", err)
	}
	if len(artists) != 30 {
		t.Fatalf("len = %d, want 30", len(artists))
	}
	if artists[0].Name != "Artist 1" || FirstImage(artists[0].Images) == "" {
		t.Errorf("first artist = %+v", artists[0])
	}

	q, _ := url.ParseQuery(srv.Queries()[0])
	if q.Get("limit") != "30" || q.Get("time_range") != "short_term" {
		t.Errorf("query = %v", q)
	}
}

func TestTopTracksClampsLimit(t *testing.T) {
	srv := spotifytest.NewServer(spotifytest.User("u1", "Ada"), nil, spotifytest.Tracks(60))
	defer srv.Close()

	client := newTestClient(t, srv, nil)
	tracks, err := client.TopTracks(context.Background(), 500, "", false)
	if err != nil {
		t.Fatalf("TopTracks() error: %v", err)
	}
	if len(tracks) != MaxLimit {
		t.Errorf("len = %d, want %d", len(tracks), MaxLimit)
	}
	if tracks[0].Album.ID != "al1" || tracks[0].Album.Name != "Album 1" {
		t.Errorf("album = %+v", tracks[0].Album)
	}

	q, _ := url.ParseQuery(srv.Queries()[0])
	if q.Get("limit") != "50" || q.Get("time_range") != "medium_term" {
		t.Errorf("query = %v", q)
	}
}

func TestCurrentUser(t *testing.T) {
	srv := spotifytest.NewServer(spotifytest.User("u1", "Ada"), nil, nil)
	defer srv.Close()

	user, err := newTestClient(t, srv, nil).CurrentUser(context.Background(), false)
	if err != nil {
		t.Fatalf("CurrentUser() error: %v", err)
	}
	if user.ID != "u1" || user.DisplayName != "Ada" {
		t.Errorf("user = %+v", user.User)
	}
}

func TestFetchFailed(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		sentinel error
	}{
		{"Unauthorized", http.StatusUnauthorized, integrations.ErrUnauthorized},
		{"NotFound", http.StatusNotFound, integrations.ErrNotFound},
		{"BadRequest", http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := spotifytest.NewServer(spotifytest.User("u1", "Ada"), spotifytest.Artists(3), nil)
			defer srv.Close()
			srv.Status["/me/top/artists"] = tt.status

			_, err := newTestClient(t, srv, nil).TopArtists(context.Background(), 10, MediumTerm, false)

			var ff *errors.FetchFailedError
			if !stderrors.As(err, &ff) {
				t.Fatalf("error = %v, want FetchFailedError", err)
			}
			if ff.StatusCode != tt.status || ff.Endpoint != "/v1/me/top/artists" {
				t.Errorf("FetchFailed = %+v", ff)
			}
			if tt.sentinel != nil && !stderrors.Is(err, tt.sentinel) {
				t.Errorf("error = %v, want wrapping %v", err, tt.sentinel)
			}
			if srv.Requests("/me/top/artists") != 1 {
				t.Errorf("non-retryable status requested %d times", srv.Requests("/me/top/artists"))
			}
		})
	}
}

func TestResponsesAreCached(t *testing.T) {
	srv := spotifytest.NewServer(spotifytest.User("u1", "Ada"), spotifytest.Artists(5), nil)
	defer srv.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	client := newTestClient(t, srv, fc)

	for range 3 {
		if _, err := client.TopArtists(context.Background(), 5, MediumTerm, false); err != nil {
			t.Fatal(err)
		}
	}
	if n := srv.Requests("/me/top/artists"); n != 1 {
		t.Errorf("requests = %d, want 1", n)
	}

	if _, err := client.TopArtists(context.Background(), 5, MediumTerm, true); err != nil {
		t.Fatal(err)
	}
	if n := srv.Requests("/me/top/artists"); n != 2 {
		t.Errorf("refresh should bypass the cache, requests = %d", n)
	}
}

func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeRange
		wantErr bool
	}{
		{"", MediumTerm, false},
		{"short", ShortTerm, false},
		{"medium_term", MediumTerm, false},
		{"LONG_TERM", LongTerm, false},
		{" long ", LongTerm, false},
		{"forever", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeRange(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, errors.ErrCodeInvalidTimeRange) {
				t.Errorf("code = %q", errors.GetCode(err))
			}
			if got != tt.want {
				t.Errorf("ParseTimeRange(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHelpers(t *testing.T) {
	if got := FirstImage(nil); got != "" {
		t.Errorf("FirstImage(nil) = %q", got)
	}
	imgs := []zspotify.Image{{URL: ""}, {URL: "b"}}
	if got := FirstImage(imgs); got != "b" {
		t.Errorf("FirstImage() = %q, want b", got)
	}
	names := ArtistNames([]zspotify.SimpleArtist{{Name: "A"}, {Name: "B"}})
	if strings.Join(names, ",") != "A,B" {
		t.Errorf("ArtistNames() = %v", names)
	}
	for in, want := range map[int]int{-3: 1, 0: 1, 20: 20, 50: 50, 51: 50} {
		if got := ClampLimit(in); got != want {
			t.Errorf("ClampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}
