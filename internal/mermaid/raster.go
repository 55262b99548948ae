package mermaid

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// rasterizer draws a layout into a PNG. It is the offline counterpart
// to the remote conversion service: every shape degrades to a rounded
// box, which is acceptable for a downloadable snapshot.
type rasterizer struct {
	img   *image.RGBA
	theme Theme
}

func rasterize(layout *Layout, theme Theme) ([]byte, error) {
	r := &rasterizer{theme: theme}

	width := int(layout.Width + 2*diagramPadding)
	height := int(layout.Height + 2*diagramPadding)
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("degenerate canvas %dx%d", width, height)
	}

	r.img = image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(r.img, r.img.Bounds(), &image.Uniform{parseHexColor(theme.Background)}, image.Point{}, draw.Src)

	for _, el := range layout.Edges {
		r.drawEdge(el)
	}
	for _, nl := range layout.Nodes {
		r.drawNode(nl)
	}

	buf := &bytes.Buffer{}
	if err := png.Encode(buf, r.img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *rasterizer) drawNode(nl *NodeLayout) {
	x := int(nl.Position.X + diagramPadding)
	y := int(nl.Position.Y + diagramPadding)
	w := int(nl.Width)
	h := int(nl.Height)

	fill := parseHexColor(r.theme.fillFor(nl.Node.Shape))
	stroke := parseHexColor(r.theme.NodeStroke)
	r.drawRoundedRect(x, y, w, h, 8, fill, stroke)

	label := truncateLabel(nl.Node.Label, 24)
	r.drawText(label, x+w/2, y+h/2+4, parseHexColor(r.theme.TextColor))
}

func (r *rasterizer) drawEdge(el *EdgeLayout) {
	if len(el.Points) < 2 {
		return
	}
	col := parseHexColor(r.theme.EdgeColor)

	for i := 0; i < len(el.Points)-1; i++ {
		r.drawLine(
			int(el.Points[i].X+diagramPadding), int(el.Points[i].Y+diagramPadding),
			int(el.Points[i+1].X+diagramPadding), int(el.Points[i+1].Y+diagramPadding),
			col, 2)
	}

	if el.Edge.Style != EdgeOpen {
		last := len(el.Points) - 1
		r.drawArrowhead(
			int(el.Points[last-1].X+diagramPadding), int(el.Points[last-1].Y+diagramPadding),
			int(el.Points[last].X+diagramPadding), int(el.Points[last].Y+diagramPadding),
			col)
	}

	if el.Edge.Label != "" {
		mid := el.Points[len(el.Points)/2]
		r.drawText(el.Edge.Label, int(mid.X+diagramPadding), int(mid.Y+diagramPadding)-5, col)
	}
}

func (r *rasterizer) drawRoundedRect(x, y, w, h, radius int, fillColor, strokeColor color.Color) {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			if inRoundedCorner(dx, dy, w, h, radius) {
				continue
			}
			r.setPixel(x+dx, y+dy, fillColor)
		}
	}

	for i := 0; i < 2; i++ {
		for dx := radius; dx < w-radius; dx++ {
			r.setPixel(x+dx, y+i, strokeColor)
			r.setPixel(x+dx, y+h-1-i, strokeColor)
		}
		for dy := radius; dy < h-radius; dy++ {
			r.setPixel(x+i, y+dy, strokeColor)
			r.setPixel(x+w-1-i, y+dy, strokeColor)
		}
	}
}

func inRoundedCorner(dx, dy, w, h, radius int) bool {
	var cx, cy int
	switch {
	case dx < radius && dy < radius:
		cx, cy = radius, radius
	case dx >= w-radius && dy < radius:
		cx, cy = w-radius, radius
	case dx < radius && dy >= h-radius:
		cx, cy = radius, h-radius
	case dx >= w-radius && dy >= h-radius:
		cx, cy = w-radius, h-radius
	default:
		return false
	}
	return (dx-cx)*(dx-cx)+(dy-cy)*(dy-cy) > radius*radius
}

// drawLine uses Bresenham's algorithm with a crude thickness pass.
func (r *rasterizer) drawLine(x1, y1, x2, y2 int, col color.Color, thickness int) {
	dx := intAbs(x2 - x1)
	dy := intAbs(y2 - y1)
	sx := -1
	if x1 < x2 {
		sx = 1
	}
	sy := -1
	if y1 < y2 {
		sy = 1
	}
	err := dx - dy

	for {
		for dt := -thickness / 2; dt <= thickness/2; dt++ {
			r.setPixel(x1+dt, y1, col)
			r.setPixel(x1, y1+dt, col)
		}
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func (r *rasterizer) drawArrowhead(x1, y1, x2, y2 int, col color.Color) {
	angle := math.Atan2(float64(y2-y1), float64(x2-x1))
	size := 9.0

	for _, a := range []float64{angle + math.Pi*0.8, angle - math.Pi*0.8} {
		px := x2 - int(size*math.Cos(a))
		py := y2 - int(size*math.Sin(a))
		r.drawLine(x2, y2, px, py, col, 2)
	}
}

func (r *rasterizer) drawText(text string, x, y int, col color.Color) {
	d := &font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.Dot.X -= d.MeasureString(text) / 2
	d.DrawString(text)
}

func (r *rasterizer) setPixel(x, y int, col color.Color) {
	if x >= 0 && x < r.img.Bounds().Dx() && y >= 0 && y < r.img.Bounds().Dy() {
		r.img.Set(x, y, col)
	}
}

func parseHexColor(hexColor string) color.Color {
	hexColor = strings.TrimPrefix(hexColor, "#")
	var r, g, b uint8
	if len(hexColor) == 6 {
		fmt.Sscanf(hexColor, "%02x%02x%02x", &r, &g, &b)
	}
	return color.RGBA{r, g, b, 255}
}

func intAbs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
