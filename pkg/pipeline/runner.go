package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/museum/pkg/cache"
	"github.com/matzehuels/museum/pkg/collection"
	"github.com/matzehuels/museum/pkg/errors"
	"github.com/matzehuels/museum/pkg/integrations/spotify"
	"github.com/matzehuels/museum/pkg/layout"
	"github.com/matzehuels/museum/pkg/museum"
	"github.com/matzehuels/museum/pkg/observability"
)

// SourceFactory creates the upstream client for a credential.
type SourceFactory func(credential string, c cache.Cache) (collection.Source, error)

// SpotifySource returns a factory for Web API clients. A non-empty baseURL
// replaces the production API root.
func SpotifySource(baseURL string) SourceFactory {
	return func(credential string, c cache.Cache) (collection.Source, error) {
		client, err := spotify.NewClient(credential, c)
		if err != nil {
			return nil, err
		}
		if baseURL != "" {
			client.SetBaseURL(baseURL)
		}
		return client, nil
	}
}

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options and credentials.
type Runner struct {
	Cache     cache.Cache
	Keyer     cache.Keyer
	Logger    *log.Logger
	NewSource SourceFactory
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:     c,
		Keyer:     keyer,
		Logger:    logger,
		NewSource: SpotifySource(""),
	}
}

// Execute runs the complete collect → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, credential string, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	result, err := r.Build(ctx, credential, opts)
	if err != nil {
		return nil, err
	}

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result.Museum, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Build runs the collect and layout stages. The returned result has no
// artifacts.
//
// Fetch failures are isolated: a museum is built from whatever endpoints
// succeeded and the failures are reported in [Result.Failures]. Only when
// every fetch failed is the first failure returned as the error.
func (r *Runner) Build(ctx context.Context, credential string, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Collect
	collectStart := time.Now()
	coll, collectHit, err := r.CollectWithCacheInfo(ctx, credential, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	result.Failures = coll.Failures
	result.Stats.CollectTime = time.Since(collectStart)
	result.Stats.ItemCount = len(coll.Items)
	result.CacheInfo.CollectHit = collectHit

	if len(coll.Items) == 0 && len(coll.Failures) == len(museum.Categories) {
		return nil, fmt.Errorf("fetch: %w", coll.Failures[0].Err)
	}

	r.Logger.Info("collected items",
		"items", len(coll.Items),
		"failed", len(coll.Failures),
		"cached", collectHit,
		"duration", result.Stats.CollectTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	res, err := r.Arrange(ctx, coll.Items, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.PlacementCount = len(res.Placements)
	result.Stats.Fallbacks = res.Fallbacks

	m := museum.New(opts.Width, opts.Height, res.Seed, res.Placements)
	m.Items = coll.Items
	if opts.WithProfile {
		if p, err := r.Profile(ctx, credential); err != nil {
			r.Logger.Warn("profile unavailable", "err", err)
		} else {
			m.Owner = p.Name()
		}
	}
	result.Museum = m

	r.Logger.Info("computed layout",
		"placements", len(res.Placements),
		"grid", fmt.Sprintf("%dx%d", res.Rows, res.Cols),
		"seed", res.Seed,
		"fallbacks", res.Fallbacks,
		"duration", result.Stats.LayoutTime)

	return result, nil
}

// CollectWithCacheInfo aggregates the listener's items with caching and
// returns cache hit info. Collections with failed fetches are never cached.
func (r *Runner) CollectWithCacheInfo(ctx context.Context, credential string, opts Options) (*collection.Collection, bool, error) {
	if err := errors.ValidateCredential(credential); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)
	if err := opts.ValidateForCollect(); err != nil {
		return nil, false, err
	}

	cacheKey := r.scopedKeyer(credential).CollectionKey(opts.CollectionKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var c collection.Collection
			if err := json.Unmarshal(data, &c); err == nil {
				return &c, true, nil // Cache hit
			}
		}
	}

	src, err := r.NewSource(credential, r.Cache)
	if err != nil {
		return nil, false, err
	}
	agg := collection.New(src, opts.CollectionOptions(), opts.Logger)
	c, err := agg.AggregateWithReport(ctx)
	if err != nil {
		return nil, false, err
	}

	if !c.Partial() {
		if data, err := json.Marshal(c); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLCollection)
		}
	}

	return c, false, nil // Cache miss
}

// Collect is a convenience wrapper that calls CollectWithCacheInfo and discards the cache hit info.
func (r *Runner) Collect(ctx context.Context, credential string, opts Options) (*collection.Collection, error) {
	c, _, err := r.CollectWithCacheInfo(ctx, credential, opts)
	return c, err
}

// Arrange lays out items on the options' canvas.
func (r *Runner) Arrange(ctx context.Context, items []museum.DisplayItem, opts Options) (layout.Result, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Result{}, err
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(items))
	start := time.Now()

	res, err := layout.Compute(items, opts.Width, opts.Height, opts.LayoutOptions())
	hooks.OnLayoutComplete(ctx, len(res.Placements), time.Since(start), err)
	return res, err
}

// Profile fetches the listener's profile.
func (r *Runner) Profile(ctx context.Context, credential string) (*museum.Profile, error) {
	src, err := r.NewSource(credential, r.Cache)
	if err != nil {
		return nil, err
	}
	return collection.New(src, collection.Options{}, r.Logger).FetchProfile(ctx)
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, m *museum.Museum, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	// Compute cache key from the museum document
	data, err := museum.MarshalMuseum(m)
	if err != nil {
		return nil, false, fmt.Errorf("serialize museum for cache key: %w", err)
	}
	museumHash := cache.Hash(data)

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(museumHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		if err != nil || !hit {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil // All artifacts from cache
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	rendered, err := r.renderFormats(ctx, m, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(museumHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, m *museum.Museum, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, m, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) scopedKeyer(credential string) cache.Keyer {
	return cache.NewScopedKeyer(r.Keyer, cache.CredentialScope(credential))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
