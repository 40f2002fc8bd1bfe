package museum

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Category identifies the kind of listening statistic a tile shows.
type Category string

// Tile categories.
const (
	CategoryArtist Category = "artist"
	CategoryTrack  Category = "track"
	CategoryAlbum  Category = "album"
)

// Categories lists every category in aggregation order.
var Categories = []Category{CategoryArtist, CategoryTrack, CategoryAlbum}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryArtist, CategoryTrack, CategoryAlbum:
		return true
	}
	return false
}

// Label returns the title-cased category name used in captions.
func (c Category) Label() string {
	switch c {
	case CategoryArtist:
		return "Artist"
	case CategoryTrack:
		return "Track"
	case CategoryAlbum:
		return "Album"
	default:
		return string(c)
	}
}

// =============================================================================
// DisplayItem - one visual tile
// =============================================================================

// DisplayItem is one normalized artist, track or album.
//
// ImageURL is never empty for items produced by the aggregator; items
// without artwork are dropped before they reach the layout engine.
type DisplayItem struct {
	ID       string   `json:"id,omitempty" bson:"id,omitempty"`
	Name     string   `json:"name" bson:"name"`
	ImageURL string   `json:"image_url" bson:"image_url"`
	Category Category `json:"category" bson:"category"`

	// Artists holds the credited artist names of a track or album.
	Artists []string `json:"artists,omitempty" bson:"artists,omitempty"`
}

// Caption returns the hover text shown for the tile.
func (d DisplayItem) Caption() string {
	if len(d.Artists) == 0 {
		return fmt.Sprintf("%s: %s", d.Category.Label(), d.Name)
	}
	return fmt.Sprintf("%s: %s by %s", d.Category.Label(), d.Name, joinArtists(d.Artists))
}

func joinArtists(names []string) string {
	switch len(names) {
	case 1:
		return names[0]
	case 2:
		return names[0] + " & " + names[1]
	}
	out := names[0]
	for _, n := range names[1 : len(names)-1] {
		out += ", " + n
	}
	return out + " & " + names[len(names)-1]
}

// =============================================================================
// Slot and Placement - layout geometry
// =============================================================================

// Slot is a candidate tile centre derived from the layout grid.
type Slot struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Used bool    `json:"used,omitempty"`
}

// Placement is the resolved geometry of one tile. X and Y are the
// top-left corner of the (unrotated) square tile.
type Placement struct {
	Item     DisplayItem `json:"item" bson:"item"`
	X        float64     `json:"x" bson:"x"`
	Y        float64     `json:"y" bson:"y"`
	Size     float64     `json:"size" bson:"size"`
	Rotation float64     `json:"rotation" bson:"rotation"`
	ZIndex   int         `json:"z_index" bson:"z_index"`
}

// Center returns the centre point of the tile.
func (p Placement) Center() (float64, float64) {
	return p.X + p.Size/2, p.Y + p.Size/2
}

// Contained reports whether the tile's bounding box lies within a
// width x height canvas.
func (p Placement) Contained(width, height float64) bool {
	return p.X >= 0 && p.Y >= 0 && p.X+p.Size <= width+epsilon && p.Y+p.Size <= height+epsilon
}

const epsilon = 1e-9

// Profile identifies the listener a museum was built for.
type Profile struct {
	ID          string `json:"id" bson:"id"`
	DisplayName string `json:"display_name,omitempty" bson:"display_name,omitempty"`
	ImageURL    string `json:"image_url,omitempty" bson:"image_url,omitempty"`
	Country     string `json:"country,omitempty" bson:"country,omitempty"`
	Product     string `json:"product,omitempty" bson:"product,omitempty"`
}

// Name returns the display name, falling back to the ID.
func (p Profile) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.ID
}

// =============================================================================
// Museum - serializable document
// =============================================================================

// Museum is a laid-out collection ready for rendering.
type Museum struct {
	ID        string    `json:"id" bson:"_id"`
	Owner     string    `json:"owner,omitempty" bson:"owner,omitempty"`
	Width     float64   `json:"width" bson:"width"`
	Height    float64   `json:"height" bson:"height"`
	Seed      uint64    `json:"seed" bson:"seed"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	Items      []DisplayItem `json:"items,omitempty" bson:"items,omitempty"`
	Placements []Placement   `json:"placements" bson:"placements"`
}

// New returns a museum with a fresh ID and creation time.
func New(width, height float64, seed uint64, placements []Placement) *Museum {
	if placements == nil {
		placements = []Placement{}
	}
	return &Museum{
		ID:         uuid.NewString(),
		Width:      width,
		Height:     height,
		Seed:       seed,
		CreatedAt:  time.Now().UTC(),
		Placements: placements,
	}
}

// CountByCategory returns the number of placements per category.
func (m *Museum) CountByCategory() map[Category]int {
	out := make(map[Category]int, len(Categories))
	for _, p := range m.Placements {
		out[p.Item.Category]++
	}
	return out
}

// Validate checks the document's invariants: a positive canvas, known
// categories, non-empty images and full containment of every tile.
func (m *Museum) Validate() error {
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("invalid canvas %vx%v", m.Width, m.Height)
	}
	for i, p := range m.Placements {
		if !p.Item.Category.Valid() {
			return fmt.Errorf("placement %d: unknown category %q", i, p.Item.Category)
		}
		if p.Item.ImageURL == "" {
			return fmt.Errorf("placement %d (%s): missing image", i, p.Item.Name)
		}
		if p.Size <= 0 {
			return fmt.Errorf("placement %d (%s): non-positive size %v", i, p.Item.Name, p.Size)
		}
		if !p.Contained(m.Width, m.Height) {
			return fmt.Errorf("placement %d (%s): tile at (%v,%v) size %v exceeds %vx%v canvas",
				i, p.Item.Name, p.X, p.Y, p.Size, m.Width, m.Height)
		}
	}
	return nil
}

// MarshalMuseum serializes a Museum to pretty-printed JSON bytes.
func MarshalMuseum(m *Museum) ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// UnmarshalMuseum deserializes JSON bytes into a Museum and validates it.
func UnmarshalMuseum(data []byte) (*Museum, error) {
	var m Museum
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal museum: %w", err)
	}
	if m.Placements == nil {
		m.Placements = []Placement{}
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid museum: %w", err)
	}
	return &m, nil
}
