package viz

import (
	"image"
	"strings"

	"golang.org/x/image/draw"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the dot at sub-pixel (x, y). The canvas is (Width*2) x (Height*4)
// dots.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// Plot draws img scaled into the dot grid. A dot is lit where the scaled
// pixel's luminance is below threshold, so dark strokes on white show up.
func (c *Canvas) Plot(img image.Image, threshold uint8) {
	dots := image.NewGray(image.Rect(0, 0, c.Width*2, c.Height*4))
	draw.ApproxBiLinear.Scale(dots, dots.Bounds(), img, img.Bounds(), draw.Src, nil)

	c.Clear()
	for y := 0; y < dots.Rect.Dy(); y++ {
		for x := 0; x < dots.Rect.Dx(); x++ {
			if dots.GrayAt(x, y).Y < threshold {
				c.Set(x, y)
			}
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}
