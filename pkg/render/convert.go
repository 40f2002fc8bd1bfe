package render

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/matzehuels/museum/pkg/errors"
)

// converter is the librsvg command line tool used for PDF output.
const converter = "rsvg-convert"

// ErrConverterMissing is returned when rsvg-convert is not on PATH.
var ErrConverterMissing = stderrors.New(converter + " not found")

// ConverterAvailable reports whether PDF conversion can run on this host.
func ConverterAvailable() bool {
	_, err := exec.LookPath(converter)
	return err == nil
}

// ToPDF converts SVG bytes to PDF. A missing converter is reported as
// UNSUPPORTED with install hints.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	if !ConverterAvailable() {
		return nil, errors.Wrap(errors.ErrCodeUnsupported, ErrConverterMissing,
			"pdf export needs librsvg (brew install librsvg, apt install librsvg2-bin)")
	}

	cmd := exec.CommandContext(ctx, converter, "-f", "pdf")
	cmd.Stdin = bytes.NewReader(svg)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", converter, err, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}
