// Package colour extracts a representative colour from poster images and
// maps it to a perceptual sort key.
package colour

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a representative RGB colour in [0,1]^3, or the Absent sentinel.
// The zero value is Absent.
type Color struct {
	rgb     colorful.Color
	present bool
}

// Absent is the colour of a row with no usable image.
var Absent = Color{}

// NewColor creates a present colour, clamping each channel to [0,1].
func NewColor(r, g, b float64) Color {
	return FromColorful(colorful.Color{R: r, G: g, B: b})
}

// FromColorful wraps a go-colorful colour. NaN channels yield Absent.
func FromColorful(c colorful.Color) Color {
	if math.IsNaN(c.R) || math.IsNaN(c.G) || math.IsNaN(c.B) {
		return Absent
	}
	return Color{rgb: c.Clamped(), present: true}
}

// IsAbsent reports whether the colour carries no data.
func (c Color) IsAbsent() bool {
	return !c.present
}

// RGB returns the channels in [0,1]. Absent returns zeros.
func (c Color) RGB() (r, g, b float64) {
	return c.rgb.R, c.rgb.G, c.rgb.B
}

// HSV returns hue in degrees [0,360), saturation and value in [0,1].
func (c Color) HSV() (h, s, v float64) {
	h, s, v = c.rgb.Hsv()
	if h >= 360 {
		h -= 360
	}
	return h, s, v
}

// RGB8 returns the colour quantised to 8 bits per channel.
func (c Color) RGB8() RGB {
	r, g, b := c.rgb.RGB255()
	return RGB{R: r, G: g, B: b}
}

// Hex returns the colour as "#rrggbb", or an empty string when absent.
func (c Color) Hex() string {
	if !c.present {
		return ""
	}
	return c.RGB8().Hex()
}

// String returns a human-readable representation.
func (c Color) String() string {
	if !c.present {
		return "absent"
	}
	return c.RGB8().String()
}

// RGB represents a color in 8-bit RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB color as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB color as a hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}
