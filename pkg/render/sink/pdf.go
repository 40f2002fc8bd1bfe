package sink

import (
	"context"

	"github.com/matzehuels/museum/pkg/museum"
	"github.com/matzehuels/museum/pkg/render"
)

// PDFOption configures PDF rendering.
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	svgOpts []SVGOption
	share   bool
}

// WithPDFSVGOptions passes options through to the underlying SVG renderer.
// Pass [WithImages] so the converter does not need network access.
func WithPDFSVGOptions(opts ...SVGOption) PDFOption {
	return func(r *pdfRenderer) { r.svgOpts = opts }
}

// WithPDFShareCard converts the framed share card instead of the bare museum.
func WithPDFShareCard() PDFOption {
	return func(r *pdfRenderer) { r.share = true }
}

// RenderPDF renders the museum as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, m *museum.Museum, opts ...PDFOption) ([]byte, error) {
	r := pdfRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	var svg []byte
	if r.share {
		svg = RenderShareCard(m, WithShareSVGOptions(r.svgOpts...))
	} else {
		svg = RenderSVG(m, r.svgOpts...)
	}
	return render.ToPDF(ctx, svg)
}
