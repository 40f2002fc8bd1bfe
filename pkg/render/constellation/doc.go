// Package constellation renders a museum as a graph of who-made-what.
//
// # Overview
//
// Every item on the wall becomes a node coloured by category. Tracks and
// albums are linked to the artists they credit, when those artists are part
// of the same museum, so a listener's favourite artists appear as hubs with
// their tracks and albums orbiting them.
//
// # Usage
//
//	dot := constellation.ToDOT(m, constellation.Options{})
//	svg, err := constellation.RenderSVG(ctx, dot)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is needed.
package constellation
