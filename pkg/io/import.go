package io

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/matzehuels/museum/pkg/errors"
	"github.com/matzehuels/museum/pkg/museum"
)

// maxDocumentSize bounds documents read into memory.
const maxDocumentSize = 32 << 20

// ReadMuseum decodes and validates a museum document from r.
//
// ReadMuseum returns an error if the JSON is malformed, the canvas is not
// positive, or a placement has an unknown category, no image, or a tile
// outside the canvas. ReadMuseum does not close r.
func ReadMuseum(r io.Reader) (*museum.Museum, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	m, err := museum.UnmarshalMuseum(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode museum")
	}
	return m, nil
}

// ImportFile reads the museum document at path. A path of "-" reads
// standard input. A missing file yields a FILE_NOT_FOUND error.
func ImportFile(path string) (*museum.Museum, error) {
	if path == "-" {
		return ReadMuseum(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "museum file %s not found", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	m, err := ReadMuseum(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
