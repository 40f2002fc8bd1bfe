package sink

import "github.com/matzehuels/museum/pkg/museum"

// RenderJSON renders the museum document. The output can be read back with
// [museum.UnmarshalMuseum] and re-rendered in any other format.
func RenderJSON(m *museum.Museum) ([]byte, error) {
	return museum.MarshalMuseum(m)
}
