package collection

import (
	"time"

	"github.com/matzehuels/museum/pkg/errors"
	"github.com/matzehuels/museum/pkg/integrations"
	"github.com/matzehuels/museum/pkg/integrations/spotify"
)

// TimeRange is the affinity window of the top items.
type TimeRange = spotify.TimeRange

// Time ranges.
const (
	ShortTerm  = spotify.ShortTerm
	MediumTerm = spotify.MediumTerm
	LongTerm   = spotify.LongTerm
)

// Aggregation defaults.
const (
	DefaultArtistLimit    = 30
	DefaultTrackLimit     = 30
	DefaultAlbumLimit     = 20
	DefaultAlbumScanLimit = spotify.MaxLimit
	DefaultTimeout        = integrations.DefaultTimeout
)

// Options configures an [Aggregator]. Zero values select the defaults.
type Options struct {
	ArtistLimit int       `json:"artist_limit"`
	TrackLimit  int       `json:"track_limit"`
	AlbumLimit  int       `json:"album_limit"`
	TimeRange   TimeRange `json:"time_range"`

	// AlbumScanLimit is the number of top tracks scanned for albums.
	AlbumScanLimit int `json:"album_scan_limit"`

	// Timeout bounds each fetch independently.
	Timeout time.Duration `json:"-"`

	// Refresh bypasses cached upstream responses.
	Refresh bool `json:"-"`
}

// SetDefaults fills zero-valued fields and clamps limits to the page
// size the API accepts.
func (o *Options) SetDefaults() {
	if o.ArtistLimit == 0 {
		o.ArtistLimit = DefaultArtistLimit
	}
	if o.TrackLimit == 0 {
		o.TrackLimit = DefaultTrackLimit
	}
	if o.AlbumLimit == 0 {
		o.AlbumLimit = DefaultAlbumLimit
	}
	if o.AlbumScanLimit == 0 {
		o.AlbumScanLimit = DefaultAlbumScanLimit
	}
	if o.TimeRange == "" {
		o.TimeRange = MediumTerm
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	o.ArtistLimit = spotify.ClampLimit(o.ArtistLimit)
	o.TrackLimit = spotify.ClampLimit(o.TrackLimit)
	o.AlbumLimit = spotify.ClampLimit(o.AlbumLimit)
	o.AlbumScanLimit = spotify.ClampLimit(max(o.AlbumScanLimit, o.AlbumLimit))
}

// Validate checks the time range. Call after SetDefaults.
func (o Options) Validate() error {
	switch o.TimeRange {
	case ShortTerm, MediumTerm, LongTerm:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidTimeRange, "unknown time range %q", o.TimeRange)
}
