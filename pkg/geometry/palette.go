package geometry

import (
	"fmt"
	"image/color"
)

// palette is the fixed sector colour table.
var palette = [...]string{
	"#FF6B6B",
	"#4ECDC4",
	"#45B7D1",
	"#96CEB4",
	"#FFEAA7",
	"#DDA0DD",
	"#FFB347",
}

// PaletteSize is the number of distinct sector colours.
const PaletteSize = len(palette)

// ColorIndex returns the palette slot for the sector at index i.
func ColorIndex(i int) int {
	i %= PaletteSize
	if i < 0 {
		i += PaletteSize
	}
	return i
}

// Color returns the hex colour for a colour index.
func Color(colorIndex int) string {
	return palette[ColorIndex(colorIndex)]
}

// Palette returns a copy of the colour table.
func Palette() []string {
	out := make([]string, PaletteSize)
	copy(out, palette[:])
	return out
}

// RGBA returns the opaque colour for a colour index.
func RGBA(colorIndex int) color.RGBA {
	return ParseHex(Color(colorIndex))
}

// ParseHex parses "#RRGGBB" into an opaque colour. Malformed input yields
// black.
func ParseHex(hex string) color.RGBA {
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{A: 0xff}
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
