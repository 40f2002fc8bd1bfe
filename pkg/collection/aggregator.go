package collection

import (
	"context"
	stderrors "errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/femnad/mare"
	"github.com/samber/lo"
	zspotify "github.com/zmb3/spotify/v2"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/museum/pkg/errors"
	"github.com/matzehuels/museum/pkg/integrations/spotify"
	"github.com/matzehuels/museum/pkg/museum"
	"github.com/matzehuels/museum/pkg/observability"
)

// Upstream endpoints, as reported in failures.
const (
	EndpointTopArtists = "/me/top/artists"
	EndpointTopTracks  = "/me/top/tracks"
	EndpointProfile    = "/me"
)

// Source is the upstream the aggregator reads from. *spotify.Client
// implements it.
type Source interface {
	TopArtists(ctx context.Context, limit int, tr spotify.TimeRange, refresh bool) ([]zspotify.FullArtist, error)
	TopTracks(ctx context.Context, limit int, tr spotify.TimeRange, refresh bool) ([]zspotify.FullTrack, error)
	CurrentUser(ctx context.Context, refresh bool) (*zspotify.PrivateUser, error)
}

var _ Source = (*spotify.Client)(nil)

// Failure records one fetch that contributed no items.
type Failure struct {
	Endpoint string          `json:"endpoint"`
	Category museum.Category `json:"category"`
	Err      error           `json:"-"`
}

// StatusCode returns the upstream status, or 0 for transport failures.
func (f Failure) StatusCode() int {
	var ff *errors.FetchFailedError
	if stderrors.As(f.Err, &ff) {
		return ff.StatusCode
	}
	return 0
}

// Collection is the output of one aggregation run.
type Collection struct {
	Items    []museum.DisplayItem `json:"items"`
	Failures []Failure            `json:"-"`
}

// Partial reports whether at least one fetch failed.
func (c *Collection) Partial() bool { return len(c.Failures) > 0 }

// ByCategory groups the items by category, preserving order.
func (c *Collection) ByCategory() map[museum.Category][]museum.DisplayItem {
	return lo.GroupBy(c.Items, func(d museum.DisplayItem) museum.Category {
		return d.Category
	})
}

// Aggregator collects display items from a [Source].
type Aggregator struct {
	src    Source
	opts   Options
	logger *log.Logger
}

// New creates an aggregator. A nil logger discards output.
func New(src Source, opts Options, logger *log.Logger) *Aggregator {
	opts.SetDefaults()
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Aggregator{src: src, opts: opts, logger: logger}
}

// Options returns the effective options.
func (a *Aggregator) Options() Options { return a.opts }

// Aggregate returns the combined item list. See [Aggregator.AggregateWithReport].
func (a *Aggregator) Aggregate(ctx context.Context) ([]museum.DisplayItem, error) {
	c, err := a.AggregateWithReport(ctx)
	if err != nil {
		return nil, err
	}
	return c.Items, nil
}

// AggregateWithReport runs the artist, track and album fetches
// concurrently and concatenates their results in that order. Each fetch
// isolates its own failure; the returned error is non-nil only when ctx
// itself is done.
func (a *Aggregator) AggregateWithReport(ctx context.Context) (*Collection, error) {
	if err := a.opts.Validate(); err != nil {
		return nil, err
	}

	type task struct {
		endpoint string
		category museum.Category
		fetch    func(context.Context) ([]museum.DisplayItem, error)
	}
	tasks := []task{
		{EndpointTopArtists, museum.CategoryArtist, func(ctx context.Context) ([]museum.DisplayItem, error) {
			return a.FetchTopArtists(ctx, a.opts.ArtistLimit)
		}},
		{EndpointTopTracks, museum.CategoryTrack, func(ctx context.Context) ([]museum.DisplayItem, error) {
			return a.FetchTopTracks(ctx, a.opts.TrackLimit)
		}},
		{EndpointTopTracks, museum.CategoryAlbum, func(ctx context.Context) ([]museum.DisplayItem, error) {
			return a.FetchTopAlbums(ctx, a.opts.AlbumLimit)
		}},
	}

	results := make([][]museum.DisplayItem, len(tasks))
	failures := make([]*Failure, len(tasks))

	var g errgroup.Group
	for i, t := range tasks {
		g.Go(func() error {
			items, err := t.fetch(ctx)
			if err != nil {
				failures[i] = &Failure{Endpoint: t.endpoint, Category: t.category, Err: err}
				a.logger.Warn("fetch failed", "endpoint", t.endpoint, "category", t.category,
					"status", failures[i].StatusCode(), "err", err)
				return nil
			}
			results[i] = items
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &Collection{Items: []museum.DisplayItem{}}
	for i := range tasks {
		out.Items = append(out.Items, results[i]...)
		if failures[i] != nil {
			out.Failures = append(out.Failures, *failures[i])
		}
	}
	a.logger.Debug("aggregated collection", "items", len(out.Items), "failures", len(out.Failures))
	return out, nil
}

// FetchTopArtists returns up to limit top artists that have an image.
func (a *Aggregator) FetchTopArtists(ctx context.Context, limit int) ([]museum.DisplayItem, error) {
	return observe(ctx, a, EndpointTopArtists, func(ctx context.Context) ([]museum.DisplayItem, error) {
		artists, err := a.src.TopArtists(ctx, limit, a.opts.TimeRange, a.opts.Refresh)
		if err != nil {
			return nil, err
		}
		return withImages(mare.Map[zspotify.FullArtist, museum.DisplayItem](artists, artistItem)), nil
	})
}

// FetchTopTracks returns up to limit top tracks, each shown with its
// album's artwork.
func (a *Aggregator) FetchTopTracks(ctx context.Context, limit int) ([]museum.DisplayItem, error) {
	return observe(ctx, a, EndpointTopTracks, func(ctx context.Context) ([]museum.DisplayItem, error) {
		tracks, err := a.src.TopTracks(ctx, limit, a.opts.TimeRange, a.opts.Refresh)
		if err != nil {
			return nil, err
		}
		return withImages(mare.Map[zspotify.FullTrack, museum.DisplayItem](tracks, trackItem)), nil
	})
}

// FetchTopAlbums scans a page of top tracks and returns up to limit
// distinct albums in first-seen order.
func (a *Aggregator) FetchTopAlbums(ctx context.Context, limit int) ([]museum.DisplayItem, error) {
	return observe(ctx, a, EndpointTopTracks, func(ctx context.Context) ([]museum.DisplayItem, error) {
		scan := spotify.ClampLimit(max(a.opts.AlbumScanLimit, limit))
		tracks, err := a.src.TopTracks(ctx, scan, a.opts.TimeRange, a.opts.Refresh)
		if err != nil {
			return nil, err
		}
		albums := DedupeAlbums(tracks, limit)
		return withImages(mare.Map[zspotify.SimpleAlbum, museum.DisplayItem](albums, albumItem)), nil
	})
}

// FetchProfile returns the listener's profile.
func (a *Aggregator) FetchProfile(ctx context.Context) (*museum.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	user, err := a.src.CurrentUser(ctx, a.opts.Refresh)
	if err != nil {
		return nil, asFetchFailed(EndpointProfile, err)
	}
	return &museum.Profile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		ImageURL:    spotify.FirstImage(user.Images),
		Country:     user.Country,
		Product:     user.Product,
	}, nil
}

// DedupeAlbums returns the albums of tracks in order of first appearance,
// keeping one entry per album ID, capped at limit. Albums without an ID
// are skipped. A non-positive limit means no cap.
func DedupeAlbums(tracks []zspotify.FullTrack, limit int) []zspotify.SimpleAlbum {
	seen := mapset.NewThreadUnsafeSet[zspotify.ID]()
	albums := make([]zspotify.SimpleAlbum, 0, min(len(tracks), max(limit, 0)))
	for _, t := range tracks {
		if limit > 0 && len(albums) == limit {
			break
		}
		id := t.Album.ID
		if id == "" || seen.Contains(id) {
			continue
		}
		seen.Add(id)
		albums = append(albums, t.Album)
	}
	return albums
}

func observe(ctx context.Context, a *Aggregator, endpoint string, fn func(context.Context) ([]museum.DisplayItem, error)) ([]museum.DisplayItem, error) {
	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, endpoint)
	start := time.Now()

	items, err := fn(ctx)
	if err != nil {
		err = asFetchFailed(endpoint, err)
	}
	hooks.OnFetchComplete(ctx, endpoint, len(items), time.Since(start), err)
	return items, err
}

// asFetchFailed makes sure every upstream failure carries the endpoint.
func asFetchFailed(endpoint string, err error) error {
	var ff *errors.FetchFailedError
	if stderrors.As(err, &ff) {
		return err
	}
	return errors.FetchFailed(endpoint, 0, err)
}

func withImages(items []museum.DisplayItem) []museum.DisplayItem {
	return lo.Filter(items, func(d museum.DisplayItem, _ int) bool {
		return d.ImageURL != ""
	})
}

func artistItem(ar zspotify.FullArtist) museum.DisplayItem {
	return museum.DisplayItem{
		ID:       string(ar.ID),
		Name:     ar.Name,
		ImageURL: spotify.FirstImage(ar.Images),
		Category: museum.CategoryArtist,
	}
}

func trackItem(t zspotify.FullTrack) museum.DisplayItem {
	return museum.DisplayItem{
		ID:       string(t.ID),
		Name:     t.Name,
		ImageURL: spotify.FirstImage(t.Album.Images),
		Category: museum.CategoryTrack,
		Artists:  spotify.ArtistNames(t.Artists),
	}
}

func albumItem(al zspotify.SimpleAlbum) museum.DisplayItem {
	return museum.DisplayItem{
		ID:       string(al.ID),
		Name:     al.Name,
		ImageURL: spotify.FirstImage(al.Images),
		Category: museum.CategoryAlbum,
		Artists:  spotify.ArtistNames(al.Artists),
	}
}
