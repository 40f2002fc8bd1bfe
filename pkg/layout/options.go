package layout

import (
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/museum/pkg/errors"
)

// Layout defaults.
const (
	DefaultMaxRotation = 15.0
	DefaultJitterMin   = 0.3
	DefaultJitterMax   = 0.6
	DefaultMaxAttempts = 30

	// MaxRotationLimit bounds the configurable rotation in degrees.
	MaxRotationLimit = 20.0

	// NoRotation as MaxRotation lays every tile out upright. Zero selects
	// DefaultMaxRotation.
	NoRotation = -1.0
)

// DefaultSizes is the set of tile edge lengths, in canvas units.
var DefaultSizes = []float64{80, 100, 120, 150}

// ErrInvalidCanvasSize is returned for canvases with a zero, negative or
// non-finite dimension. Errors returned by [Compute] match it with
// errors.Is.
var ErrInvalidCanvasSize = errors.New(errors.ErrCodeInvalidCanvasSize, "invalid canvas size")

// Options tunes the layout. Zero values select the defaults.
type Options struct {
	Sizes       []float64 `json:"sizes,omitempty"`
	MaxRotation float64   `json:"max_rotation,omitempty"`
	JitterMin   float64   `json:"jitter_min,omitempty"`
	JitterMax   float64   `json:"jitter_max,omitempty"`

	// MinSeparation is the minimum centre distance between tiles. Zero
	// derives it from the grid as half the smaller cell side.
	MinSeparation float64 `json:"min_separation,omitempty"`
	MaxAttempts   int     `json:"max_attempts,omitempty"`

	// FillerDensity adds round(n*FillerDensity) duplicate tiles drawn from
	// the input to saturate the canvas.
	FillerDensity float64 `json:"filler_density,omitempty"`

	// MaxItems caps the number of placed items after shuffling.
	MaxItems int `json:"max_items,omitempty"`

	Seed uint64 `json:"seed,omitempty"`
}

// SetDefaults fills zero-valued fields.
func (o *Options) SetDefaults() {
	if len(o.Sizes) == 0 {
		o.Sizes = slices.Clone(DefaultSizes)
	}
	if o.MaxRotation == 0 {
		o.MaxRotation = DefaultMaxRotation
	}
	if o.JitterMin == 0 && o.JitterMax == 0 {
		o.JitterMin, o.JitterMax = DefaultJitterMin, DefaultJitterMax
	}
	if o.MaxAttempts == 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
}

// Rotation returns the rotation bound in degrees with NoRotation resolved.
func (o Options) Rotation() float64 {
	return max(o.MaxRotation, 0)
}

// Validate checks option ranges. Call after SetDefaults.
func (o Options) Validate() error {
	for _, s := range o.Sizes {
		if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return errors.New(errors.ErrCodeInvalidLayout, "tile size must be positive (got %v)", s)
		}
	}
	if (o.MaxRotation < 0 && o.MaxRotation != NoRotation) || o.MaxRotation > MaxRotationLimit || math.IsNaN(o.MaxRotation) {
		return errors.New(errors.ErrCodeInvalidLayout, "max rotation must be within [0, %v] degrees or %v for none (got %v)", MaxRotationLimit, NoRotation, o.MaxRotation)
	}
	if o.JitterMin < 0 || o.JitterMax > 1 || o.JitterMin > o.JitterMax {
		return errors.New(errors.ErrCodeInvalidLayout, "jitter range must satisfy 0 <= min <= max <= 1 (got %v..%v)", o.JitterMin, o.JitterMax)
	}
	if o.MinSeparation < 0 {
		return errors.New(errors.ErrCodeInvalidLayout, "min separation cannot be negative")
	}
	if o.MaxAttempts < 0 {
		return errors.New(errors.ErrCodeInvalidLayout, "max attempts cannot be negative")
	}
	if o.FillerDensity < 0 || o.FillerDensity > 4 {
		return errors.New(errors.ErrCodeInvalidLayout, "filler density must be within [0, 4] (got %v)", o.FillerDensity)
	}
	if o.MaxItems < 0 {
		return errors.New(errors.ErrCodeInvalidLayout, "max items cannot be negative")
	}
	return nil
}

// String summarizes the options for logs.
func (o Options) String() string {
	return fmt.Sprintf("sizes=%v rotation=±%v jitter=%v..%v attempts=%d filler=%v seed=%d",
		o.Sizes, o.Rotation(), o.JitterMin, o.JitterMax, o.MaxAttempts, o.FillerDensity, o.Seed)
}
