package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/femnad/mare"
	zspotify "github.com/zmb3/spotify/v2"

	"github.com/matzehuels/museum/pkg/buildinfo"
	"github.com/matzehuels/museum/pkg/cache"
	"github.com/matzehuels/museum/pkg/errors"
	"github.com/matzehuels/museum/pkg/integrations"
)

// DefaultBaseURL is the Spotify Web API root.
const DefaultBaseURL = "https://api.spotify.com/v1"

// MaxLimit is the largest page the top-items endpoints return.
const MaxLimit = 50

// TimeRange selects the affinity window of the top-items endpoints.
type TimeRange string

// Time ranges accepted by the API.
const (
	ShortTerm  TimeRange = "short_term"
	MediumTerm TimeRange = "medium_term"
	LongTerm   TimeRange = "long_term"
)

// ParseTimeRange accepts the API names plus the short aliases
// "short", "medium" and "long". An empty string selects [MediumTerm].
func ParseTimeRange(s string) (TimeRange, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "medium", string(MediumTerm):
		return MediumTerm, nil
	case "short", string(ShortTerm):
		return ShortTerm, nil
	case "long", string(LongTerm):
		return LongTerm, nil
	}
	return "", errors.New(errors.ErrCodeInvalidTimeRange, "unknown time range %q (want short_term, medium_term or long_term)", s)
}

// Client provides access to the Spotify Web API for one listener.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a client authenticated with the given bearer
// credential. Cached responses are scoped to the credential. Pass a nil
// cache to disable caching.
func NewClient(token string, c cache.Cache) (*Client, error) {
	if err := errors.ValidateCredential(token); err != nil {
		return nil, err
	}
	headers := map[string]string{
		"Authorization": "Bearer " + token,
		"Accept":        "application/json",
		"User-Agent":    buildinfo.UserAgent(),
	}
	ic := integrations.NewClient(c, "spotify", cache.TTLHTTP, headers)
	ic.SetKeyer(cache.NewScopedKeyer(nil, cache.CredentialScope(token)))
	return &Client{Client: ic, baseURL: DefaultBaseURL}, nil
}

// SetBaseURL points the client at another API root, such as a test server.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimSuffix(u, "/")
}

// SetTimeout changes the per-request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.Client.SetTimeout(d)
}

// TopArtists returns the listener's top artists for the time range.
// Limit is clamped to [1, MaxLimit].
func (c *Client) TopArtists(ctx context.Context, limit int, tr TimeRange, refresh bool) ([]zspotify.FullArtist, error) {
	u := c.topURL("artists", limit, tr)
	var page zspotify.FullArtistPage
	err := c.Cached(ctx, u, refresh, &page, func() error {
		return c.Get(ctx, u, &page)
	})
	if err != nil {
		return nil, err
	}
	return page.Artists, nil
}

// TopTracks returns the listener's top tracks for the time range.
// Limit is clamped to [1, MaxLimit].
func (c *Client) TopTracks(ctx context.Context, limit int, tr TimeRange, refresh bool) ([]zspotify.FullTrack, error) {
	u := c.topURL("tracks", limit, tr)
	var page zspotify.FullTrackPage
	err := c.Cached(ctx, u, refresh, &page, func() error {
		return c.Get(ctx, u, &page)
	})
	if err != nil {
		return nil, err
	}
	return page.Tracks, nil
}

// CurrentUser returns the profile of the credential's owner.
func (c *Client) CurrentUser(ctx context.Context, refresh bool) (*zspotify.PrivateUser, error) {
	u := c.baseURL + "/me"
	var user zspotify.PrivateUser
	err := c.Cached(ctx, u, refresh, &user, func() error {
		return c.Get(ctx, u, &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) topURL(kind string, limit int, tr TimeRange) string {
	if tr == "" {
		tr = MediumTerm
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(ClampLimit(limit)))
	q.Set("time_range", string(tr))
	return fmt.Sprintf("%s/me/top/%s?%s", c.baseURL, kind, q.Encode())
}

// ClampLimit bounds a page size to what the API accepts.
func ClampLimit(limit int) int {
	return max(1, min(limit, MaxLimit))
}

// FirstImage returns the URL of the first image, which the API orders
// largest first, or "" when there is none.
func FirstImage(images []zspotify.Image) string {
	for _, img := range images {
		if img.URL != "" {
			return img.URL
		}
	}
	return ""
}

// ArtistNames returns the names of the given artists.
func ArtistNames(artists []zspotify.SimpleArtist) []string {
	return mare.Map[zspotify.SimpleArtist, string](artists, func(a zspotify.SimpleArtist) string {
		return a.Name
	})
}
