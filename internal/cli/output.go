package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/museum/pkg/errors"
	pkgio "github.com/matzehuels/museum/pkg/io"
	"github.com/matzehuels/museum/pkg/museum"
	"github.com/matzehuels/museum/pkg/pipeline"
)

const defaultBaseName = "museum"

// stdoutPath selects standard output for a single format.
const stdoutPath = "-"

// outputPaths maps each format to its output file. A single format is
// written to output as given; several formats use output as a base name
// with a per-format suffix and extension.
func outputPaths(output string, formats []string) (map[string]string, error) {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths, nil
	}
	if output == stdoutPath {
		return nil, errors.New(errors.ErrCodeInvalidPath, "cannot write %d formats to stdout", len(formats))
	}

	base := output
	if base == "" {
		base = defaultBaseName
	}
	if ext := strings.TrimPrefix(filepath.Ext(base), "."); slices.Contains(pipeline.FormatNames, ext) {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	for _, f := range formats {
		suffix := ""
		if f == pipeline.FormatShare || f == pipeline.FormatConstellation {
			suffix = "_" + f
		}
		paths[f] = base + suffix + "." + pipeline.Extension(f)
	}
	return paths, nil
}

// writeArtifacts writes every rendered format and prints the paths in
// format order.
func writeArtifacts(m *museum.Museum, artifacts map[string][]byte, formats []string, paths map[string]string) error {
	for _, f := range formats {
		path := paths[f]
		if path == stdoutPath {
			if _, err := os.Stdout.Write(artifacts[f]); err != nil {
				return fmt.Errorf("write stdout: %w", err)
			}
			continue
		}
		if err := writeArtifact(m, f, artifacts[f], path); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}

func writeArtifact(m *museum.Museum, format string, data []byte, path string) error {
	if format == pipeline.FormatJSON {
		return pkgio.ExportFile(m, path)
	}
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
