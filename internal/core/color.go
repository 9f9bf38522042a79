package core

import (
	"strconv"
	"strings"
)

// Color represents a foreground color for a screen cell.
// Uses ANSI 256-color codes for terminal compatibility.
type Color uint8

// Predefined colors for tiles.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
	colorCount
)

type rgb struct{ r, g, b int }

var palette = [colorCount]struct {
	name string
	rgb  rgb
}{
	ColorDefault:       {"default", rgb{192, 192, 192}},
	ColorRed:           {"red", rgb{128, 0, 0}},
	ColorGreen:         {"green", rgb{0, 128, 0}},
	ColorYellow:        {"yellow", rgb{128, 128, 0}},
	ColorBlue:          {"blue", rgb{0, 0, 128}},
	ColorMagenta:       {"magenta", rgb{128, 0, 128}},
	ColorCyan:          {"cyan", rgb{0, 128, 128}},
	ColorWhite:         {"white", rgb{224, 224, 224}},
	ColorBrightRed:     {"bright_red", rgb{255, 0, 0}},
	ColorBrightGreen:   {"bright_green", rgb{0, 255, 0}},
	ColorBrightYellow:  {"bright_yellow", rgb{255, 255, 0}},
	ColorBrightBlue:    {"bright_blue", rgb{0, 0, 255}},
	ColorBrightMagenta: {"bright_magenta", rgb{255, 0, 255}},
	ColorBrightCyan:    {"bright_cyan", rgb{0, 255, 255}},
	ColorBrightWhite:   {"bright_white", rgb{255, 255, 255}},
	ColorOrange:        {"orange", rgb{255, 135, 0}},
	ColorGray:          {"gray", rgb{138, 138, 138}},
}

// String returns the palette name of the color.
func (c Color) String() string {
	if c >= colorCount {
		return "unknown"
	}
	return palette[c].name
}

// ParseColor converts a palette name or a #rrggbb hex string to a Color.
// Hex values snap to the nearest palette entry.
// Returns ColorDefault and false if the string is not recognized.
func ParseColor(s string) (Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ColorDefault, false
	}
	if strings.HasPrefix(s, "#") {
		return parseHexColor(s[1:])
	}
	if s == "grey" {
		return ColorGray, true
	}
	for i, p := range palette {
		if p.name == s {
			return Color(i), true
		}
	}
	return ColorDefault, false
}

func parseHexColor(hex string) (Color, bool) {
	if len(hex) != 6 {
		return ColorDefault, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return ColorDefault, false
	}
	target := rgb{int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)}

	best, bestDist := ColorDefault, -1
	for i, p := range palette {
		dr, dg, db := p.rgb.r-target.r, p.rgb.g-target.g, p.rgb.b-target.b
		dist := dr*dr + dg*dg + db*db
		if bestDist < 0 || dist < bestDist {
			best, bestDist = Color(i), dist
		}
	}
	return best, true
}
