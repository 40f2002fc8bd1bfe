// Package pipeline builds museums: aggregate, lay out, render.
//
// This package implements the complete collect → layout → render pipeline
// shared by the CLI and the HTTP API, so both apply the same defaults,
// caching and failure policy.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Collect: fetch top artists, tracks and albums concurrently; a failed
//     fetch is isolated and reported in [Result.Failures]
//  2. Layout: place the items on the canvas with the seeded layout engine
//  3. Render: produce the requested formats (SVG, JSON, PNG, PDF, share
//     card, constellation)
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, token, pipeline.Options{
//	    Width:   1200,
//	    Height:  800,
//	    Formats: []string{"svg", "png"},
//	})
//	svg := result.Artifacts["svg"]
//
// For just the placements, use [BuildMuseum].
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/museum/pkg/cache"
	"github.com/matzehuels/museum/pkg/collection"
	"github.com/matzehuels/museum/pkg/errors"
	"github.com/matzehuels/museum/pkg/integrations/spotify"
	"github.com/matzehuels/museum/pkg/layout"
	"github.com/matzehuels/museum/pkg/museum"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = 600.0

	// DefaultScale is the default PNG scale factor.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG           = "svg"
	FormatJSON          = "json"
	FormatPNG           = "png"
	FormatPDF           = "pdf"
	FormatShare         = "share"
	FormatDOT           = "dot"
	FormatConstellation = "constellation"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:           true,
	FormatJSON:          true,
	FormatPNG:           true,
	FormatPDF:           true,
	FormatShare:         true,
	FormatDOT:           true,
	FormatConstellation: true,
}

// FormatNames lists the formats in help-text order.
var FormatNames = []string{FormatSVG, FormatJSON, FormatPNG, FormatPDF, FormatShare, FormatDOT, FormatConstellation}

// Extension returns the file extension for a format.
func Extension(format string) string {
	switch format {
	case FormatShare, FormatConstellation:
		return "svg"
	default:
		return format
	}
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the museum pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Collect options
	TimeRange   string `json:"time_range,omitempty"`
	ArtistLimit int    `json:"artist_limit,omitempty"`
	TrackLimit  int    `json:"track_limit,omitempty"`
	AlbumLimit  int    `json:"album_limit,omitempty"`
	WithProfile bool   `json:"with_profile,omitempty"` // Fetch the profile to sign the museum
	Refresh     bool   `json:"refresh,omitempty"`

	// Layout options
	Width         float64   `json:"width,omitempty"`
	Height        float64   `json:"height,omitempty"`
	Seed          uint64    `json:"seed,omitempty"`
	Sizes         []float64 `json:"sizes,omitempty"`
	MaxRotation   float64   `json:"max_rotation,omitempty"`
	MinSeparation float64   `json:"min_separation,omitempty"`
	FillerDensity float64   `json:"filler_density,omitempty"`
	MaxItems      int       `json:"max_items,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Background string   `json:"background,omitempty"`
	Embed      bool     `json:"embed,omitempty"` // Embed artwork in SVG output
	Scale      float64  `json:"scale,omitempty"` // PNG scale factor
	Title      string   `json:"title,omitempty"` // Share card title

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Museum is the laid-out collection.
	Museum *museum.Museum

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Failures lists the fetches that contributed no items.
	Failures []collection.Failure

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Partial reports whether any fetch failed.
func (r *Result) Partial() bool { return len(r.Failures) > 0 }

// Stats contains pipeline execution statistics.
type Stats struct {
	ItemCount      int
	PlacementCount int
	Fallbacks      int
	CollectTime    time.Duration
	LayoutTime     time.Duration
	RenderTime     time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	CollectHit bool // Whether the collection came from cache
	RenderHit  bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)",
			format, strings.Join(FormatNames, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults for the full pipeline and
// validates every stage's options. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForCollect(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForCollect validates the aggregation options.
func (o *Options) ValidateForCollect() error {
	o.setLogger()
	opts := o.CollectionOptions()
	return opts.Validate()
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	o.setLogger()
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := errors.ValidateCanvasSize(o.Width, o.Height); err != nil {
		return err
	}
	opts := o.LayoutOptions()
	opts.SetDefaults()
	return opts.Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive (got %v)", o.Scale)
	}
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// CollectionOptions returns the aggregator options with defaults applied.
// Short time range names ("short", "long") are accepted.
func (o *Options) CollectionOptions() collection.Options {
	opts := collection.Options{
		ArtistLimit: o.ArtistLimit,
		TrackLimit:  o.TrackLimit,
		AlbumLimit:  o.AlbumLimit,
		TimeRange:   collection.TimeRange(o.TimeRange),
		Refresh:     o.Refresh,
	}
	if tr, err := spotify.ParseTimeRange(o.TimeRange); err == nil {
		opts.TimeRange = tr
	}
	opts.SetDefaults()
	return opts
}

// LayoutOptions returns the layout engine options.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		Sizes:         o.Sizes,
		MaxRotation:   o.MaxRotation,
		MinSeparation: o.MinSeparation,
		FillerDensity: o.FillerDensity,
		MaxItems:      o.MaxItems,
		Seed:          o.Seed,
	}
}

// NeedsArtwork reports whether rendering must download the artwork.
func (o *Options) NeedsArtwork() bool {
	if o.Embed {
		return true
	}
	for _, f := range o.Formats {
		if f == FormatPNG || f == FormatPDF {
			return true
		}
	}
	return false
}

// CollectionKeyOpts returns cache key options for aggregation.
func (o *Options) CollectionKeyOpts() cache.CollectionKeyOpts {
	opts := o.CollectionOptions()
	return cache.CollectionKeyOpts{
		TimeRange:   string(opts.TimeRange),
		ArtistLimit: opts.ArtistLimit,
		TrackLimit:  opts.TrackLimit,
		AlbumLimit:  opts.AlbumLimit,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format, Background: o.Background}
	switch format {
	case FormatSVG, FormatShare:
		opts.Embed = o.Embed
	case FormatPNG:
		opts.Scale = o.Scale
	}
	if format == FormatShare {
		opts.Title = o.Title
	}
	return opts
}
