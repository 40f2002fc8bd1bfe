package sink

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/museum/pkg/museum"
)

// Share card geometry and palette.
const (
	shareTitle      = "My Music Museum"
	shareBackground = "#282828"
	shareAccent     = "#1DB954"
	shareFrame      = "#8B4513"
	shareInner      = "#333333"
	shareFrameWidth = 8.0
	sharePadding    = 32.0
	shareHeader     = 72.0
	shareFooter     = 48.0
)

// ShareOption configures share card rendering.
type ShareOption func(*shareRenderer)

type shareRenderer struct {
	title   string
	footer  string
	svgOpts []SVGOption
}

// WithTitle replaces the card title.
func WithTitle(title string) ShareOption {
	return func(r *shareRenderer) { r.title = title }
}

// WithFooter replaces the footer line.
func WithFooter(footer string) ShareOption {
	return func(r *shareRenderer) { r.footer = footer }
}

// WithShareSVGOptions passes options through to the nested museum.
func WithShareSVGOptions(opts ...SVGOption) ShareOption {
	return func(r *shareRenderer) { r.svgOpts = opts }
}

// RenderShareCard renders the museum inside a titled, framed card.
func RenderShareCard(m *museum.Museum, opts ...ShareOption) []byte {
	r := shareRenderer{title: shareTitle}
	for _, opt := range opts {
		opt(&r)
	}
	if r.footer == "" {
		r.footer = defaultFooter(m)
	}

	frameX, frameY := sharePadding, shareHeader
	frameW := m.Width + 2*shareFrameWidth
	frameH := m.Height + 2*shareFrameWidth
	width := frameW + 2*sharePadding
	height := shareHeader + frameH + shareFooter

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", shareBackground)
	fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="28" font-weight="bold" fill="%s">%s</text>`+"\n",
		width/2, shareHeader/2+10, shareAccent, html.EscapeString(r.title))
	fmt.Fprintf(&buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" stroke="%s" stroke-width="%.0f"/>`+"\n",
		frameX+shareFrameWidth/2, frameY+shareFrameWidth/2, frameW-shareFrameWidth, frameH-shareFrameWidth,
		shareInner, shareFrame, shareFrameWidth)

	inner := newSVGRenderer(append([]SVGOption{WithBackground(shareInner)}, r.svgOpts...)...)
	fmt.Fprintf(&buf, `  <svg x="%.1f" y="%.1f" width="%.1f" height="%.1f" viewBox="0 0 %.1f %.1f">`+"\n",
		frameX+shareFrameWidth, frameY+shareFrameWidth, m.Width, m.Height, m.Width, m.Height)
	inner.renderBody(&buf, m)
	buf.WriteString("  </svg>\n")

	fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="14" fill="#b3b3b3">%s</text>`+"\n",
		width/2, height-shareFooter/2+5, html.EscapeString(r.footer))
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func defaultFooter(m *museum.Museum) string {
	counts := m.CountByCategory()
	footer := fmt.Sprintf("%d artists · %d tracks · %d albums",
		counts[museum.CategoryArtist], counts[museum.CategoryTrack], counts[museum.CategoryAlbum])
	if m.Owner != "" {
		footer = m.Owner + " · " + footer
	}
	return footer
}
