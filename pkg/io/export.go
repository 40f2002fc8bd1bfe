package io

import (
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/museum/pkg/errors"
	"github.com/matzehuels/museum/pkg/museum"
)

// WriteMuseum encodes m as indented JSON and writes it to w.
// The output can be re-imported with [ReadMuseum].
func WriteMuseum(m *museum.Museum, w io.Writer) error {
	data, err := museum.MarshalMuseum(m)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// ExportFile writes m to a JSON file at path.
// This is a convenience wrapper around [WriteMuseum] for file-based output.
func ExportFile(m *museum.Museum, path string) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteMuseum(m, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
