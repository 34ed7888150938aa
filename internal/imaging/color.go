package imaging

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseHexColor parses a marker colour such as "#FF0000" or "#FF000080".
//
// The leading '#' is optional. Six digits give an opaque colour; eight digits
// carry an explicit alpha byte. The result is non-premultiplied.
func ParseHexColor(hex string) (color.NRGBA, error) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) == 0 {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}

	val, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}

	switch len(hex) {
	case 6:
		return color.NRGBA{R: uint8(val >> 16), G: uint8(val >> 8), B: uint8(val), A: 255}, nil
	case 8:
		return color.NRGBA{R: uint8(val >> 24), G: uint8(val >> 16), B: uint8(val >> 8), A: uint8(val)}, nil
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color length: %q", hex)
	}
}

// HexColor formats c as "#RRGGBB", or "#RRGGBBAA" when it is not opaque.
func HexColor(c color.NRGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
