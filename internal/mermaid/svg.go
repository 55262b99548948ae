package mermaid

import (
	"bytes"
	"fmt"
	"html"
	"sort"
)

// svgRenderer generates vector markup from a computed layout.
type svgRenderer struct {
	buf   *bytes.Buffer
	theme Theme
}

func newSVGRenderer(theme Theme) *svgRenderer {
	return &svgRenderer{buf: &bytes.Buffer{}, theme: theme}
}

const diagramPadding = 40.0

func (r *svgRenderer) render(layout *Layout) string {
	width := layout.Width + 2*diagramPadding
	height := layout.Height + 2*diagramPadding

	r.writeHeader(width, height)

	// Edges first so nodes paint over the connector endpoints.
	for _, el := range layout.Edges {
		r.renderEdge(el)
	}
	for _, id := range orderedLayoutIDs(layout) {
		r.renderNode(layout.Nodes[id])
	}

	r.buf.WriteString("</svg>")
	return r.buf.String()
}

// orderedLayoutIDs yields node ids sorted by layer then position, so
// the markup is byte-stable for identical input.
func orderedLayoutIDs(layout *Layout) []string {
	ids := make([]string, 0, len(layout.Nodes))
	for id := range layout.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := layout.Nodes[ids[i]], layout.Nodes[ids[j]]
		if a.Layer != b.Layer {
			return a.Layer < b.Layer
		}
		if a.Position.X != b.Position.X {
			return a.Position.X < b.Position.X
		}
		return a.Position.Y < b.Position.Y
	})
	return ids
}

func (r *svgRenderer) writeHeader(width, height float64) {
	fmt.Fprintf(r.buf, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<defs>
  <marker id="arrowhead" markerWidth="10" markerHeight="10" refX="9" refY="3" orient="auto">
    <polygon points="0 0, 10 3, 0 6" fill="%s" />
  </marker>
</defs>
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, r.theme.EdgeColor, r.theme.Background)
}

func (r *svgRenderer) renderNode(nl *NodeLayout) {
	x := nl.Position.X + diagramPadding
	y := nl.Position.Y + diagramPadding
	fill := r.theme.fillFor(nl.Node.Shape)

	switch nl.Node.Shape {
	case ShapeDiamond:
		fmt.Fprintf(r.buf, `<polygon points="%.1f,%.1f %.1f,%.1f %.1f,%.1f %.1f,%.1f" fill="%s" stroke="%s" stroke-width="1.5"/>
`,
			x+nl.Width/2, y,
			x+nl.Width, y+nl.Height/2,
			x+nl.Width/2, y+nl.Height,
			x, y+nl.Height/2,
			fill, r.theme.NodeStroke)
	case ShapeCylinder:
		ry := nl.Height / 6
		fmt.Fprintf(r.buf, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" stroke="%s" stroke-width="1.5"/>
`, x, y+ry, nl.Width, nl.Height-2*ry, fill, r.theme.NodeStroke)
		fmt.Fprintf(r.buf, `<ellipse cx="%.1f" cy="%.1f" rx="%.1f" ry="%.1f" fill="%s" stroke="%s" stroke-width="1.5"/>
`, x+nl.Width/2, y+nl.Height-ry, nl.Width/2, ry, fill, r.theme.NodeStroke)
		fmt.Fprintf(r.buf, `<ellipse cx="%.1f" cy="%.1f" rx="%.1f" ry="%.1f" fill="%s" stroke="%s" stroke-width="1.5"/>
`, x+nl.Width/2, y+ry, nl.Width/2, ry, fill, r.theme.NodeStroke)
	case ShapeSubroutine:
		fmt.Fprintf(r.buf, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" stroke="%s" stroke-width="1.5"/>
`, x, y, nl.Width, nl.Height, fill, r.theme.NodeStroke)
		fmt.Fprintf(r.buf, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1.5"/>
`, x+6, y, x+6, y+nl.Height, r.theme.NodeStroke)
		fmt.Fprintf(r.buf, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1.5"/>
`, x+nl.Width-6, y, x+nl.Width-6, y+nl.Height, r.theme.NodeStroke)
	default:
		rx := 4.0
		if nl.Node.Shape == ShapeRound {
			rx = 12.0
		} else if nl.Node.Shape == ShapeStadium {
			rx = nl.Height / 2
		}
		fmt.Fprintf(r.buf, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" fill="%s" stroke="%s" stroke-width="1.5"/>
`, x, y, nl.Width, nl.Height, rx, fill, r.theme.NodeStroke)
	}

	fmt.Fprintf(r.buf, `<text x="%.1f" y="%.1f" font-family="%s" font-size="13" fill="%s" text-anchor="middle" dominant-baseline="middle">%s</text>
`, x+nl.Width/2, y+nl.Height/2, r.theme.FontFamily, r.theme.TextColor, html.EscapeString(truncateLabel(nl.Node.Label, 28)))
}

func (r *svgRenderer) renderEdge(el *EdgeLayout) {
	if len(el.Points) < 2 {
		return
	}

	path := fmt.Sprintf("M %.1f,%.1f", el.Points[0].X+diagramPadding, el.Points[0].Y+diagramPadding)
	for _, p := range el.Points[1:] {
		path += fmt.Sprintf(" L %.1f,%.1f", p.X+diagramPadding, p.Y+diagramPadding)
	}

	dash := ""
	if el.Edge.Style == EdgeDotted {
		dash = ` stroke-dasharray="4 4"`
	}
	width := 1.5
	if el.Edge.Style == EdgeThick {
		width = 3
	}
	marker := ` marker-end="url(#arrowhead)"`
	if el.Edge.Style == EdgeOpen {
		marker = ""
	}

	fmt.Fprintf(r.buf, `<path d="%s" stroke="%s" stroke-width="%.1f" fill="none"%s%s/>
`, path, r.theme.EdgeColor, width, dash, marker)

	if el.Edge.Label != "" {
		mid := el.Points[len(el.Points)/2]
		fmt.Fprintf(r.buf, `<text x="%.1f" y="%.1f" font-family="%s" font-size="11" fill="%s" text-anchor="middle">%s</text>
`, mid.X+diagramPadding, mid.Y+diagramPadding-4, r.theme.FontFamily, r.theme.TextColor, html.EscapeString(el.Edge.Label))
	}
}

func truncateLabel(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
