package pipeline

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/museum/pkg/errors"
	"github.com/matzehuels/museum/pkg/museum"
)

// BuildMuseum fetches the listener's top artists, tracks and albums with
// credential and lays them out on a width x height canvas.
//
// A non-positive canvas fails with an INVALID_CANVAS_SIZE error before
// anything is fetched. Failed fetches are isolated; see [Runner.Build].
func BuildMuseum(ctx context.Context, credential string, width, height float64) ([]museum.Placement, error) {
	if err := errors.ValidateCanvasSize(width, height); err != nil {
		return nil, err
	}
	res, err := NewRunner(nil, nil, log.New(io.Discard)).Build(ctx, credential, Options{Width: width, Height: height})
	if err != nil {
		return nil, err
	}
	return res.Museum.Placements, nil
}
