package material

import (
	"fmt"
	"image/color"
	"math"
)

// RGB is an 8-bit display colour.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// WavelengthToRGB approximates the display colour of monochromatic light.
// Wavelengths outside 380–780 nm are black.
func WavelengthToRGB(wavelengthNm float64) RGB {
	w := wavelengthNm
	var r, g, b float64
	switch {
	case w >= 380 && w < 440:
		r, g, b = -(w-440)/(440-380), 0, 1
	case w >= 440 && w < 490:
		r, g, b = 0, (w-440)/(490-440), 1
	case w >= 490 && w < 510:
		r, g, b = 0, 1, -(w-510)/(510-490)
	case w >= 510 && w < 580:
		r, g, b = (w-510)/(580-510), 1, 0
	case w >= 580 && w < 645:
		r, g, b = 1, -(w-645)/(645-580), 0
	case w >= 645 && w <= 780:
		r, g, b = 1, 0, 0
	}

	// Intensity falls off towards the edges of the visible range.
	var factor float64
	switch {
	case w >= 380 && w < 420:
		factor = 0.3 + 0.7*(w-380)/(420-380)
	case w >= 420 && w < 701:
		factor = 1
	case w >= 701 && w <= 780:
		factor = 0.3 + 0.7*(780-w)/(780-700)
	}

	return RGB{
		R: channel(r * factor),
		G: channel(g * factor),
		B: channel(b * factor),
	}
}

func channel(v float64) uint8 {
	return uint8(math.Round(v * 255))
}

// RGBA returns the colour with the given opacity in [0,1], non-premultiplied.
func (c RGB) RGBA(opacity float64) color.NRGBA {
	a := math.Max(0, math.Min(1, opacity))
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(a * 255))}
}

// CSS formats the colour as a canvas rgba() string.
func (c RGB) CSS(opacity float64) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%g)", c.R, c.G, c.B, opacity)
}

// ParseCSS reads a colour written by CSS, "rgba(r,g,b,a)".
func ParseCSS(s string) (color.NRGBA, error) {
	var r, g, b int
	var a float64
	if _, err := fmt.Sscanf(s, "rgba(%d,%d,%d,%g)", &r, &g, &b, &a); err != nil {
		return color.NRGBA{}, fmt.Errorf("parse colour %q: %w", s, err)
	}
	return RGB{R: clampByte(r), G: clampByte(g), B: clampByte(b)}.RGBA(a), nil
}

func clampByte(v int) uint8 {
	return uint8(max(0, min(255, v)))
}
