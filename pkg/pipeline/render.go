package pipeline

import (
	"context"
	"fmt"
	"slices"

	"github.com/matzehuels/museum/pkg/museum"
	"github.com/matzehuels/museum/pkg/render/constellation"
	"github.com/matzehuels/museum/pkg/render/sink"
)

// renderFormats downloads artwork when a format needs it, then renders
// every requested format.
func (r *Runner) renderFormats(ctx context.Context, m *museum.Museum, opts Options) (map[string][]byte, error) {
	var images sink.Images
	if opts.NeedsArtwork() {
		fetched, err := sink.NewFetcher(r.Cache, opts.Logger).Fetch(ctx, m)
		if err != nil {
			return nil, fmt.Errorf("fetch artwork: %w", err)
		}
		images = fetched
	}
	return Render(ctx, m, images, opts)
}

// Render generates output artifacts in the requested formats. images holds
// downloaded artwork; formats that need it fall back to placeholders for
// anything missing.
func Render(ctx context.Context, m *museum.Museum, images sink.Images, opts Options) (map[string][]byte, error) {
	svgOpts := buildSVGOptions(images, opts)
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(m, svgOpts...)
		case FormatJSON:
			data, err = sink.RenderJSON(m)
		case FormatShare:
			data = sink.RenderShareCard(m, buildShareOptions(svgOpts, opts)...)
		case FormatPNG:
			data, err = sink.RenderPNG(m, buildPNGOptions(images, opts)...)
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, m, sink.WithPDFSVGOptions(append(slices.Clip(svgOpts), sink.WithImages(images))...))
		case FormatDOT:
			data = []byte(constellation.ToDOT(m, constellation.Options{}))
		case FormatConstellation:
			data, err = constellation.RenderSVG(ctx, constellation.ToDOT(m, constellation.Options{}))
		default:
			return nil, ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// buildSVGOptions builds SVG rendering options.
func buildSVGOptions(images sink.Images, opts Options) []sink.SVGOption {
	var svgOpts []sink.SVGOption
	if opts.Background != "" {
		svgOpts = append(svgOpts, sink.WithBackground(opts.Background))
	}
	if opts.Embed && images != nil {
		svgOpts = append(svgOpts, sink.WithImages(images))
	}
	return svgOpts
}

func buildShareOptions(svgOpts []sink.SVGOption, opts Options) []sink.ShareOption {
	shareOpts := []sink.ShareOption{sink.WithShareSVGOptions(svgOpts...)}
	if opts.Title != "" {
		shareOpts = append(shareOpts, sink.WithTitle(opts.Title))
	}
	return shareOpts
}

func buildPNGOptions(images sink.Images, opts Options) []sink.PNGOption {
	pngOpts := []sink.PNGOption{sink.WithPNGImages(images)}
	if opts.Scale > 0 {
		pngOpts = append(pngOpts, sink.WithScale(opts.Scale))
	}
	if opts.Background != "" {
		pngOpts = append(pngOpts, sink.WithPNGBackground(opts.Background))
	}
	return pngOpts
}
