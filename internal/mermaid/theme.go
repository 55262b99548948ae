package mermaid

import (
	"fmt"
	"strconv"
)

// Theme holds the rendering palette. Themes are fixed at engine
// initialization; per-diagram styling statements are ignored.
type Theme struct {
	Name       string
	Background string
	NodeFill   string
	NodeStroke string
	TextColor  string
	EdgeColor  string
	FontFamily string
}

var themes = map[string]Theme{
	"default": {
		Name:       "default",
		Background: "#FFFFFF",
		NodeFill:   "#ECECFF",
		NodeStroke: "#9370DB",
		TextColor:  "#333333",
		EdgeColor:  "#555555",
		FontFamily: "Arial, sans-serif",
	},
	"neutral": {
		Name:       "neutral",
		Background: "#FFFFFF",
		NodeFill:   "#EEEEEE",
		NodeStroke: "#666666",
		TextColor:  "#222222",
		EdgeColor:  "#444444",
		FontFamily: "Arial, sans-serif",
	},
	"dark": {
		Name:       "dark",
		Background: "#1F2020",
		NodeFill:   "#3B3B4F",
		NodeStroke: "#8A90DD",
		TextColor:  "#EDEDED",
		EdgeColor:  "#AAAAAA",
		FontFamily: "Arial, sans-serif",
	},
}

// themeByName resolves a configured theme name.
func themeByName(name string) (Theme, error) {
	if name == "" {
		return themes["default"], nil
	}
	t, ok := themes[name]
	if !ok {
		return Theme{}, fmt.Errorf("unknown theme %q", name)
	}
	return t, nil
}

// fillFor differentiates shapes slightly so decision and storage nodes
// stand out the way the stock mermaid themes do.
func (t Theme) fillFor(shape Shape) string {
	switch shape {
	case ShapeDiamond:
		return lighten(t.NodeFill, 10)
	case ShapeCylinder:
		return darken(t.NodeFill, 8)
	default:
		return t.NodeFill
	}
}

// lighten moves a hex color toward white by a percentage.
func lighten(hexColor string, percent int) string {
	r, g, b := splitHex(hexColor)
	factor := float64(percent) / 100.0
	r = clamp8(int64(float64(r) + (255-float64(r))*factor))
	g = clamp8(int64(float64(g) + (255-float64(g))*factor))
	b = clamp8(int64(float64(b) + (255-float64(b))*factor))
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// darken moves a hex color toward black by a percentage.
func darken(hexColor string, percent int) string {
	r, g, b := splitHex(hexColor)
	factor := 1.0 - float64(percent)/100.0
	r = clamp8(int64(float64(r) * factor))
	g = clamp8(int64(float64(g) * factor))
	b = clamp8(int64(float64(b) * factor))
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

func splitHex(hexColor string) (int64, int64, int64) {
	if len(hexColor) > 0 && hexColor[0] == '#' {
		hexColor = hexColor[1:]
	}
	if len(hexColor) != 6 {
		return 0, 0, 0
	}
	r, _ := strconv.ParseInt(hexColor[0:2], 16, 64)
	g, _ := strconv.ParseInt(hexColor[2:4], 16, 64)
	b, _ := strconv.ParseInt(hexColor[4:6], 16, 64)
	return r, g, b
}

func clamp8(v int64) int64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
