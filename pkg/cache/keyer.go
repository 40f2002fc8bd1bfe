package cache

import "strings"

// Keyer generates cache keys for each kind of cached entry.
type Keyer interface {
	// HTTPKey generates a key for a raw upstream response.
	HTTPKey(namespace, key string) string

	// CollectionKey generates a key for an aggregated item collection.
	CollectionKey(opts CollectionKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact of a museum.
	ArtifactKey(museumHash string, opts ArtifactKeyOpts) string
}

// CollectionKeyOpts are the aggregation inputs that change the result.
type CollectionKeyOpts struct {
	TimeRange   string `json:"time_range"`
	ArtistLimit int    `json:"artist_limit"`
	TrackLimit  int    `json:"track_limit"`
	AlbumLimit  int    `json:"album_limit"`
}

// ArtifactKeyOpts are the render inputs that change an artifact.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Background string  `json:"background,omitempty"`
	Embed      bool    `json:"embed,omitempty"`
	Title      string  `json:"title,omitempty"`
	Scale      float64 `json:"scale,omitempty"`
}

// DefaultKeyer is the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + strings.TrimSuffix(namespace, ":") + ":" + key
}

// CollectionKey hashes the collection options.
func (DefaultKeyer) CollectionKey(opts CollectionKeyOpts) string {
	return hashKey("collection", opts)
}

// ArtifactKey hashes the museum hash with the render options.
func (DefaultKeyer) ArtifactKey(museumHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", museumHash, opts)
}

// KeyType returns the entry kind of a key ("http", "collection", ...),
// ignoring any scope prefix.
func KeyType(key string) string {
	for _, kind := range []string{"http:", "collection:", "artifact:"} {
		if strings.Contains(key, kind) {
			return strings.TrimSuffix(kind, ":")
		}
	}
	return "other"
}
