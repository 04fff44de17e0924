// Package raster holds the RGB canvases a spirograph is drawn on and the
// compositing modes that turn them into output frames.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/san-kum/spirograph/internal/linkage"
)

// ErrCanvasSize indicates a canvas with a non-positive dimension.
var ErrCanvasSize = errors.New("raster: canvas dimensions must be positive")

var White = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Canvas is an opaque RGB raster initialised to white. Pixel coordinates
// address pixel centers, matching the integer points produced by linkage.
type Canvas struct {
	img *image.RGBA
	dc  *gg.Context
}

func NewCanvas(w, h int) (*Canvas, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrCanvasSize, w, h)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	c := &Canvas{img: img, dc: gg.NewContextForRGBA(img)}
	c.dc.SetLineCap(gg.LineCapRound)
	c.Clear()
	return c, nil
}

func (c *Canvas) Width() int  { return c.img.Rect.Dx() }
func (c *Canvas) Height() int { return c.img.Rect.Dy() }

// Image exposes the backing buffer. Callers must not retain it across frames.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Clear resets every pixel to opaque white.
func (c *Canvas) Clear() {
	for i := range c.img.Pix {
		c.img.Pix[i] = 0xff
	}
}

func (c *Canvas) At(x, y int) color.RGBA {
	return c.img.RGBAAt(x, y)
}

// Set paints one pixel, ignoring coordinates outside the canvas.
func (c *Canvas) Set(x, y int, col color.RGBA) {
	if x < 0 || y < 0 || x >= c.Width() || y >= c.Height() {
		return
	}
	c.img.SetRGBA(x, y, col)
}

// Line strokes a segment. Anti-aliased strokes have round caps; hard strokes
// sweep a square brush of the given width along a Bresenham walk.
func (c *Canvas) Line(a, b linkage.Point, col color.RGBA, width float64, aa bool) {
	if width <= 0 {
		width = 1
	}
	if !aa {
		c.hardLine(a, b, col, int(width+0.5))
		return
	}
	if a == b {
		c.Disc(a, width/2, col, true)
		return
	}
	c.dc.SetRGBA255(int(col.R), int(col.G), int(col.B), 255)
	c.dc.SetLineWidth(width)
	c.dc.DrawLine(float64(a.X)+0.5, float64(a.Y)+0.5, float64(b.X)+0.5, float64(b.Y)+0.5)
	c.dc.Stroke()
}

// Disc fills a circle around center.
func (c *Canvas) Disc(center linkage.Point, radius float64, col color.RGBA, aa bool) {
	if radius <= 0 {
		c.Set(center.X, center.Y, col)
		return
	}
	if aa {
		c.dc.SetRGBA255(int(col.R), int(col.G), int(col.B), 255)
		c.dc.DrawCircle(float64(center.X)+0.5, float64(center.Y)+0.5, radius)
		c.dc.Fill()
		return
	}
	r := int(radius)
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				c.Set(center.X+dx, center.Y+dy, col)
			}
		}
	}
}

// hardLine draws a line using Bresenham's algorithm with a w×w brush.
func (c *Canvas) hardLine(a, b linkage.Point, col color.RGBA, w int) {
	x0, y0, x1, y1 := a.X, a.Y, b.X, b.Y
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	lo := -(w - 1) / 2
	hi := lo + w - 1

	for {
		for by := lo; by <= hi; by++ {
			for bx := lo; bx <= hi; bx++ {
				c.Set(x0+bx, y0+by, col)
			}
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Histogram counts channel values over the whole canvas, indexed R, G, B.
func (c *Canvas) Histogram() [3][256]int {
	var h [3][256]int
	pix := c.img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		h[0][pix[i]]++
		h[1][pix[i+1]]++
		h[2][pix[i+2]]++
	}
	return h
}

// CopyFrom overwrites c with src; both must share dimensions.
func (c *Canvas) CopyFrom(src *Canvas) {
	copy(c.img.Pix, src.img.Pix)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
