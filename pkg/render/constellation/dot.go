package constellation

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/museum/pkg/museum"
)

// Options configures constellation rendering.
type Options struct {
	// Detailed prefixes node labels with the item category.
	Detailed bool

	// Orphans keeps tracks and albums whose artists are not in the museum.
	Orphans bool
}

// Node fill colours per category.
var palette = map[museum.Category]string{
	museum.CategoryArtist: "#1DB954",
	museum.CategoryTrack:  "#509BF5",
	museum.CategoryAlbum:  "#F59B23",
}

type edge struct{ from, to string }

// ToDOT converts the museum's placements to Graphviz DOT. Items repeated by
// filler tiles collapse into a single node.
func ToDOT(m *museum.Museum, opts Options) string {
	var (
		nodes   []museum.DisplayItem
		seen    = make(map[string]bool)
		artists = make(map[string]string)
	)
	for _, p := range m.Placements {
		id := nodeID(p.Item)
		if seen[id] {
			continue
		}
		seen[id] = true
		nodes = append(nodes, p.Item)
		if p.Item.Category == museum.CategoryArtist {
			artists[strings.ToLower(p.Item.Name)] = id
		}
	}

	var (
		edges  []edge
		linked = make(map[string]bool)
	)
	for _, n := range nodes {
		if n.Category == museum.CategoryArtist {
			continue
		}
		for _, name := range n.Artists {
			to, ok := artists[strings.ToLower(name)]
			if !ok {
				continue
			}
			edges = append(edges, edge{from: nodeID(n), to: to})
			linked[nodeID(n)] = true
		}
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  bgcolor=\"#121212\";\n")
	buf.WriteString("  node [shape=ellipse, style=filled, fontname=\"Helvetica\", fontcolor=\"#121212\", fontsize=12];\n")
	buf.WriteString("  edge [color=\"#535353\"];\n")
	buf.WriteString("\n")

	for _, n := range nodes {
		id := nodeID(n)
		if n.Category != museum.CategoryArtist && !opts.Orphans && !linked[id] {
			continue
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(fmtAttrs(n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %q -- %q;\n", e.from, e.to)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(d museum.DisplayItem) string {
	key := d.ID
	if key == "" {
		key = strings.ToLower(d.Name)
	}
	return string(d.Category) + ":" + key
}

func fmtAttrs(d museum.DisplayItem, detailed bool) []string {
	label := d.Name
	if detailed {
		label = d.Category.Label() + "\n" + d.Name
	}
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("fillcolor=%q", palette[d.Category]),
		fmt.Sprintf("tooltip=%q", d.Caption()),
	}
	if d.Category == museum.CategoryArtist {
		attrs = append(attrs, "shape=doublecircle", "fontsize=14")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based <svg> header with a
// pixel-sized one rooted at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
