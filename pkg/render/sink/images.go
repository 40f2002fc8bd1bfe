package sink

import (
	"context"
	"encoding/base64"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/museum/pkg/buildinfo"
	"github.com/matzehuels/museum/pkg/cache"
	"github.com/matzehuels/museum/pkg/integrations"
	"github.com/matzehuels/museum/pkg/museum"
)

// DefaultConcurrency bounds parallel artwork downloads.
const DefaultConcurrency = 8

// Image is downloaded artwork.
type Image struct {
	Data        []byte `json:"data"`
	ContentType string `json:"content_type"`
}

// DataURI returns the image as an RFC 2397 data URI.
func (i Image) DataURI() string {
	ct := i.ContentType
	if ct == "" {
		ct = "image/jpeg"
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Images maps artwork URLs to downloaded bytes.
type Images map[string]Image

// Fetcher downloads artwork for a museum.
type Fetcher struct {
	client      *integrations.Client
	concurrency int
	logger      *log.Logger
}

// NewFetcher creates a fetcher. Downloads are cached in c for the artifact
// TTL; pass nil to disable caching.
func NewFetcher(c cache.Cache, logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	headers := map[string]string{"User-Agent": buildinfo.UserAgent()}
	return &Fetcher{
		client:      integrations.NewClient(c, "artwork", cache.TTLArtifact, headers),
		concurrency: DefaultConcurrency,
		logger:      logger,
	}
}

// SetConcurrency changes the number of parallel downloads.
func (f *Fetcher) SetConcurrency(n int) {
	if n > 0 {
		f.concurrency = n
	}
}

// Fetch downloads the distinct artwork of m's placements. A failed download
// is logged and left out of the result; only cancellation of ctx is
// returned as an error.
func (f *Fetcher) Fetch(ctx context.Context, m *museum.Museum) (Images, error) {
	urls := make([]string, 0, len(m.Placements))
	seen := make(map[string]bool, len(m.Placements))
	for _, p := range m.Placements {
		if u := p.Item.ImageURL; u != "" && !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}

	var (
		mu  sync.Mutex
		out = make(Images, len(urls))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for _, u := range urls {
		g.Go(func() error {
			var img Image
			err := f.client.Cached(gctx, u, false, &img, func() error {
				data, ct, err := f.client.GetBytes(gctx, u)
				if err != nil {
					return err
				}
				img = Image{Data: data, ContentType: ct}
				return nil
			})
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				f.logger.Warn("artwork download failed", "url", u, "err", err)
				return nil
			}
			mu.Lock()
			out[u] = img
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	f.logger.Debug("fetched artwork", "requested", len(urls), "fetched", len(out))
	return out, nil
}
