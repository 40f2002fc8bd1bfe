package layout

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/museum/pkg/errors"
	"github.com/matzehuels/museum/pkg/museum"
)

// Result is the output of [Compute].
type Result struct {
	Placements []museum.Placement
	Seed       uint64
	Rows, Cols int

	// Fallbacks counts tiles that found no separated slot and were placed
	// at a random position instead.
	Fallbacks int
}

// Arrange lays out items with default options and a random seed.
func Arrange(items []museum.DisplayItem, width, height float64) ([]museum.Placement, error) {
	res, err := Compute(items, width, height, Options{})
	if err != nil {
		return nil, err
	}
	return res.Placements, nil
}

// Compute lays out items on a width x height canvas. Without filler or
// MaxItems the result holds exactly one placement per item.
func Compute(items []museum.DisplayItem, width, height float64, opts Options) (Result, error) {
	if err := errors.ValidateCanvasSize(width, height); err != nil {
		return Result{}, err
	}
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}

	seed := opts.Seed
	for seed == 0 {
		seed = rand.Uint64()
	}
	res := Result{Seed: seed, Placements: []museum.Placement{}}
	if len(items) == 0 {
		return res, nil
	}

	rng := newRand(seed)
	pool := withFiller(rng, items, opts.FillerDensity)
	shuffle(rng, pool)
	if opts.MaxItems > 0 && len(pool) > opts.MaxItems {
		pool = pool[:opts.MaxItems]
	}

	res.Rows, res.Cols = Grid(len(pool), width, height)
	slots := Slots(rng, res.Rows, res.Cols, width, height, opts.JitterMin, opts.JitterMax)
	shuffle(rng, slots)

	minSep := opts.MinSeparation
	if minSep == 0 {
		minSep = math.Min(width/float64(res.Cols), height/float64(res.Rows)) / 2
	}

	sizes := slices.Clone(opts.Sizes)
	slices.Sort(sizes)
	maxSize := math.Min(width, height)

	centers := make([][2]float64, 0, len(pool))
	res.Placements = make([]museum.Placement, 0, len(pool))
	for _, item := range pool {
		cx, cy, ok := claim(slots, centers, minSep, opts.MaxAttempts)
		if !ok {
			cx, cy = rng.Float64()*width, rng.Float64()*height
			res.Fallbacks++
		}
		centers = append(centers, [2]float64{cx, cy})

		rank := rng.IntN(len(sizes))
		size := math.Min(sizes[rank], maxSize)
		res.Placements = append(res.Placements, museum.Placement{
			Item:     item,
			X:        clamp(cx-size/2, 0, width-size),
			Y:        clamp(cy-size/2, 0, height-size),
			Size:     size,
			Rotation: (rng.Float64()*2 - 1) * opts.Rotation(),
			ZIndex:   rank*10 + rng.IntN(10),
		})
	}
	return res, nil
}

// Grid returns the rows x cols grid for n tiles on a width x height
// canvas. The grid has at least n cells and degenerates to 1x1 for a
// single tile.
func Grid(n int, width, height float64) (rows, cols int) {
	if n <= 0 {
		return 0, 0
	}
	aspect := width / height
	cols = int(math.Ceil(math.Sqrt(float64(n) * aspect)))
	cols = max(1, min(cols, n))
	rows = (n + cols - 1) / cols
	return rows, cols
}

// Slots returns one candidate slot per grid cell in row-major order. Each
// slot is the cell centre offset by up to half of a jitter fraction,
// sampled from [jitterMin, jitterMax], of the cell size on each axis, and
// clamped to the canvas.
func Slots(rng *rand.Rand, rows, cols int, width, height, jitterMin, jitterMax float64) []museum.Slot {
	if rows <= 0 || cols <= 0 {
		return nil
	}
	cellW := width / float64(cols)
	cellH := height / float64(rows)
	slots := make([]museum.Slot, 0, rows*cols)
	for r := range rows {
		for c := range cols {
			fx := jitterMin + rng.Float64()*(jitterMax-jitterMin)
			fy := jitterMin + rng.Float64()*(jitterMax-jitterMin)
			x := (float64(c)+0.5)*cellW + (rng.Float64()-0.5)*fx*cellW
			y := (float64(r)+0.5)*cellH + (rng.Float64()-0.5)*fy*cellH
			slots = append(slots, museum.Slot{
				X: clamp(x, 0, width),
				Y: clamp(y, 0, height),
			})
		}
	}
	return slots
}

// claim marks and returns the first unused slot whose distance to every
// placed centre is at least minSep, probing at most attempts slots.
func claim(slots []museum.Slot, placed [][2]float64, minSep float64, attempts int) (float64, float64, bool) {
	tried := 0
	for i := range slots {
		if slots[i].Used {
			continue
		}
		if tried == attempts {
			break
		}
		tried++
		if separated(slots[i].X, slots[i].Y, placed, minSep) {
			slots[i].Used = true
			return slots[i].X, slots[i].Y, true
		}
	}
	return 0, 0, false
}

func separated(x, y float64, placed [][2]float64, minSep float64) bool {
	for _, p := range placed {
		if math.Hypot(x-p[0], y-p[1]) < minSep {
			return false
		}
	}
	return true
}

func withFiller(rng *rand.Rand, items []museum.DisplayItem, density float64) []museum.DisplayItem {
	extra := int(math.Round(float64(len(items)) * density))
	pool := make([]museum.DisplayItem, len(items), len(items)+extra)
	copy(pool, items)
	for range extra {
		pool = append(pool, items[rng.IntN(len(items))])
	}
	return pool
}

// shuffle is an in-place Fisher-Yates shuffle.
func shuffle[T any](rng *rand.Rand, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	return math.Max(lo, math.Min(v, hi))
}
