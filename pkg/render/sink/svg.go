package sink

import (
	"bytes"
	"cmp"
	"fmt"
	"html"
	"slices"

	"github.com/matzehuels/museum/pkg/museum"
)

// DefaultBackground is the canvas colour behind the tiles.
const DefaultBackground = "#121212"

const tileCSS = `
    .tile { transition: transform 0.2s ease; transform-box: fill-box; transform-origin: center; }
    .tile:hover { transform: scale(1.08); }
    .tile rect { fill: #3a3a3a; }`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background string
	images     Images
	captions   bool
}

// WithBackground sets the canvas fill. An empty colour leaves the canvas
// transparent.
func WithBackground(color string) SVGOption {
	return func(r *svgRenderer) { r.background = color }
}

// WithImages embeds fetched artwork as data URIs instead of linking it.
func WithImages(images Images) SVGOption {
	return func(r *svgRenderer) { r.images = images }
}

// WithoutCaptions omits the hover captions.
func WithoutCaptions() SVGOption {
	return func(r *svgRenderer) { r.captions = false }
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{background: DefaultBackground, captions: true}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG renders the museum as a standalone SVG document.
func RenderSVG(m *museum.Museum, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		m.Width, m.Height, m.Width, m.Height)
	r.renderBody(&buf, m)
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// renderBody writes the style, background and tiles without the enclosing
// <svg> element, so the share card can nest them.
func (r *svgRenderer) renderBody(buf *bytes.Buffer, m *museum.Museum) {
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", tileCSS)
	if r.background != "" {
		fmt.Fprintf(buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", html.EscapeString(r.background))
	}
	for i, p := range ordered(m.Placements) {
		r.renderTile(buf, i, p)
	}
}

func (r *svgRenderer) renderTile(buf *bytes.Buffer, i int, p museum.Placement) {
	cx, cy := p.Center()
	fmt.Fprintf(buf, `  <g class="tile tile-%s" id="tile-%d" transform="rotate(%.2f %.2f %.2f)">`+"\n",
		p.Item.Category, i, p.Rotation, cx, cy)
	if r.captions {
		fmt.Fprintf(buf, "    <title>%s</title>\n", html.EscapeString(p.Item.Caption()))
	}
	fmt.Fprintf(buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f"/>`+"\n", p.X, p.Y, p.Size, p.Size)
	if href := r.href(p.Item.ImageURL); href != "" {
		fmt.Fprintf(buf, `    <image href="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" preserveAspectRatio="xMidYMid slice"/>`+"\n",
			html.EscapeString(href), p.X, p.Y, p.Size, p.Size)
	}
	buf.WriteString("  </g>\n")
}

func (r *svgRenderer) href(url string) string {
	if r.images != nil {
		if img, ok := r.images[url]; ok {
			return img.DataURI()
		}
	}
	return url
}

// ordered returns the placements in paint order: ascending z-index, ties
// kept in layout order.
func ordered(placements []museum.Placement) []museum.Placement {
	out := slices.Clone(placements)
	slices.SortStableFunc(out, func(a, b museum.Placement) int {
		return cmp.Compare(a.ZIndex, b.ZIndex)
	})
	return out
}
