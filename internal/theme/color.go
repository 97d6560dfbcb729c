package theme

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an RGB value with an opacity in [0, 1].
type Color struct {
	R, G, B uint8
	Alpha   float64
}

// ParseColor accepts "#rrggbb" or "rgba(r, g, b, a)" notation.
func ParseColor(value string) (Color, error) {
	value = strings.TrimSpace(value)
	switch {
	case strings.HasPrefix(value, "#"):
		return parseHex(value)
	case strings.HasPrefix(strings.ToLower(value), "rgba("):
		return parseRGBA(value)
	default:
		return Color{}, fmt.Errorf("unsupported color notation %q", value)
	}
}

func parseHex(value string) (Color, error) {
	hex := strings.TrimPrefix(value, "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("hex color %q must have six digits", value)
	}
	parsed, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("parse hex color %q: %w", value, err)
	}
	return Color{
		R:     uint8(parsed >> 16),
		G:     uint8(parsed >> 8),
		B:     uint8(parsed),
		Alpha: 1,
	}, nil
}

func parseRGBA(value string) (Color, error) {
	inner := strings.TrimSuffix(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(value)), "rgba("), ")")
	parts := strings.Split(inner, ",")
	if len(parts) != 4 {
		return Color{}, fmt.Errorf("rgba color %q must have four components", value)
	}
	channels := make([]uint8, 3)
	for i := 0; i < 3; i++ {
		component, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || component < 0 || component > 255 {
			return Color{}, fmt.Errorf("rgba color %q has invalid channel %q", value, parts[i])
		}
		channels[i] = uint8(component)
	}
	alpha, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
	if err != nil || alpha < 0 || alpha > 1 {
		return Color{}, fmt.Errorf("rgba color %q has invalid alpha %q", value, parts[3])
	}
	return Color{R: channels[0], G: channels[1], B: channels[2], Alpha: alpha}, nil
}

// Hex returns the ffmpeg 0xRRGGBB form of the color.
func (c Color) Hex() string {
	return fmt.Sprintf("0x%02X%02X%02X", c.R, c.G, c.B)
}

// FFmpeg returns the color in ffmpeg's color@alpha syntax.
func (c Color) FFmpeg() string {
	if c.Alpha >= 1 {
		return c.Hex()
	}
	return fmt.Sprintf("%s@%.3g", c.Hex(), c.Alpha)
}
