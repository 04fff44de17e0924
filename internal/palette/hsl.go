// Package palette provides the color policies used to stroke a trace.
// It implements HSL hue cycling, static colors and a per-run coin flip
// between black and a cycling hue.
package palette

import (
	"image/color"
	"math"
)

// HSLToRGB converts hue (degrees), saturation and lightness (percent) to an
// opaque RGBA using the six-sector formula. Channels are truncated, not rounded.
func HSLToRGB(h, s, l float64) color.RGBA {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	s = clamp(s/100, 0, 1)
	l = clamp(l/100, 0, 1)

	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return color.RGBA{
		R: channel(r + m),
		G: channel(g + m),
		B: channel(b + m),
		A: 255,
	}
}

func channel(v float64) uint8 {
	return uint8(clamp(v*255, 0, 255))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
