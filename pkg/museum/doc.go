// Package museum defines the shared data model of a music museum.
//
// A museum is a set of [DisplayItem] tiles (artists, tracks and albums
// taken from a listener's statistics) together with the [Placement] the
// layout engine resolved for each of them on a canvas.
//
// # Core Types
//
//   - [DisplayItem]: one normalized artist, track or album with an image
//   - [Slot]: a candidate position considered while laying out tiles
//   - [Placement]: the resolved position, size, rotation and depth of a tile
//   - [Museum]: the serializable document written by "museum build" and
//     returned by the HTTP API
//
// # Serialization
//
// Museums use a plain JSON document:
//
//	{
//	  "id": "0b5e...",
//	  "width": 800,
//	  "height": 600,
//	  "seed": 42,
//	  "placements": [
//	    {"item": {"name": "Nina Simone", "image_url": "https://...", "category": "artist"},
//	     "x": 120, "y": 80, "size": 100, "rotation": -7.5, "z_index": 14}
//	  ]
//	}
//
// Common operations:
//
//	data, _ := museum.MarshalMuseum(m)
//	m, _ := museum.UnmarshalMuseum(data)
//	err := m.Validate()
package museum
