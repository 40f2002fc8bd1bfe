// Package render turns laid-out museums into files.
//
// # Overview
//
// Rendering is split by output family:
//
//   - [sink]: the museum itself as SVG, JSON, a framed share card, a raster
//     PNG collage, and PDF
//   - [constellation]: a Graphviz graph linking tracks and albums to the
//     artists in the collection
//
// # Format Conversion
//
// [ToPDF] converts any SVG using the external rsvg-convert tool (from
// librsvg). Only the PDF sink depends on it; the PNG collage is drawn in
// process.
//
//	svg := sink.RenderSVG(m, sink.WithImages(images))
//	pdf, err := render.ToPDF(ctx, svg)
//
// [sink]: github.com/matzehuels/museum/pkg/render/sink
// [constellation]: github.com/matzehuels/museum/pkg/render/constellation
package render
