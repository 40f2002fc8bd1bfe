// Package sink renders a [museum.Museum] to output formats.
//
// # Formats
//
//   - [RenderSVG]: vector museum, tiles painted in ascending z-index and
//     rotated about their centre, each with a hover caption
//   - [RenderShareCard]: the museum inside a titled wooden frame, ready to
//     post
//   - [RenderPNG]: a raster collage composited in-process from the artwork
//   - [RenderPDF]: the SVG converted with rsvg-convert
//   - [RenderJSON]: the museum document
//
// # Artwork
//
// SVG output references artwork by URL unless [WithImages] supplies fetched
// bytes, in which case images are embedded as data URIs so the file renders
// offline. The PNG collage always needs fetched artwork; use a [Fetcher] to
// download it concurrently. Tiles whose artwork is missing are drawn as
// grey placeholders.
//
// [museum.Museum]: github.com/matzehuels/museum/pkg/museum.Museum
package sink
