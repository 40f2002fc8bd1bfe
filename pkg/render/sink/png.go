package sink

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/museum/pkg/museum"
)

// placeholder is drawn for tiles whose artwork is missing or undecodable.
var placeholder = color.RGBA{0x3a, 0x3a, 0x3a, 0xff}

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	images     Images
	scale      float64
	background string
}

// WithPNGImages supplies the downloaded artwork.
func WithPNGImages(images Images) PNGOption {
	return func(r *pngRenderer) { r.images = images }
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithPNGBackground sets the canvas colour as #rgb or #rrggbb.
func WithPNGBackground(hex string) PNGOption {
	return func(r *pngRenderer) { r.background = hex }
}

// RenderPNG composites the museum into a raster collage. Artwork is cropped
// to a centred square, scaled with Catmull-Rom and rotated about the tile
// centre; tiles are painted in ascending z-index.
func RenderPNG(m *museum.Museum, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0, background: DefaultBackground}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		return nil, fmt.Errorf("png scale must be positive (got %v)", r.scale)
	}
	bg, err := parseHexColor(r.background)
	if err != nil {
		return nil, err
	}

	w := int(math.Round(m.Width * r.scale))
	h := int(math.Round(m.Height * r.scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("png canvas %dx%d is empty", w, h)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	decoded := make(map[string]image.Image, len(r.images))
	for _, p := range ordered(m.Placements) {
		url := p.Item.ImageURL
		src, ok := decoded[url]
		if !ok {
			src = r.decode(url)
			decoded[url] = src
		}
		drawTile(dst, src, p, r.scale)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *pngRenderer) decode(url string) image.Image {
	img, ok := r.images[url]
	if !ok {
		return nil
	}
	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil
	}
	return src
}

// drawTile paints src into the tile of p. A nil src paints the placeholder.
func drawTile(dst *image.RGBA, src image.Image, p museum.Placement, scale float64) {
	var sr image.Rectangle
	if src == nil {
		src = image.NewUniform(placeholder)
		sr = image.Rect(0, 0, 100, 100)
	} else {
		sr = centerSquare(src.Bounds())
	}
	if sr.Empty() {
		return
	}

	size := p.Size * scale
	cx, cy := p.Center()
	cx, cy = cx*scale, cy*scale
	half := size / 2
	s := size / float64(sr.Dx())
	theta := p.Rotation * math.Pi / 180
	sin, cos := math.Sincos(theta)

	a, b := s*cos, -s*sin
	d, e := s*sin, s*cos
	c := cx - half*cos + half*sin
	f := cy - half*sin - half*cos
	ox, oy := float64(sr.Min.X), float64(sr.Min.Y)
	c -= a*ox + b*oy
	f -= d*ox + e*oy

	draw.CatmullRom.Transform(dst, f64.Aff3{a, b, c, d, e, f}, src, sr, draw.Over, nil)
}

// centerSquare returns the largest centred square inside r.
func centerSquare(r image.Rectangle) image.Rectangle {
	side := min(r.Dx(), r.Dy())
	x := r.Min.X + (r.Dx()-side)/2
	y := r.Min.Y + (r.Dy()-side)/2
	return image.Rect(x, y, x+side, y+side)
}

// parseHexColor parses #rgb and #rrggbb colours.
func parseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q (want #rgb or #rrggbb)", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
