package sink

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"
)

// GIF quantizes frames to the Plan 9 palette and encodes them on Close.
// Every keeps one frame in Every to bound memory on long runs.
type GIF struct {
	opts   Options
	Every  int
	anim   gif.GIF
	seen   int
	closed bool
}

func NewGIF(opts Options, every int) (*GIF, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if every < 1 {
		every = 1
	}
	return &GIF{opts: opts, Every: every}, nil
}

func (g *GIF) WriteFrame(img *image.RGBA) error {
	if g.closed {
		return ErrClosed
	}
	if err := checkSize(img, g.opts); err != nil {
		return err
	}
	g.seen++
	if (g.seen-1)%g.Every != 0 {
		return nil
	}

	pal := image.NewPaletted(img.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(pal, img.Bounds(), img, image.Point{})
	g.anim.Image = append(g.anim.Image, pal)
	g.anim.Delay = append(g.anim.Delay, g.delay())
	return nil
}

// delay is in hundredths of a second per kept frame.
func (g *GIF) delay() int {
	d := 100 * g.Every / g.opts.FPS
	if d < 2 {
		d = 2
	}
	return d
}

func (g *GIF) Close() error {
	if g.closed {
		return ErrClosed
	}
	g.closed = true
	if len(g.anim.Image) == 0 {
		return nil
	}

	f, err := os.Create(g.opts.Path)
	if err != nil {
		return fmt.Errorf("create gif: %w", err)
	}
	if err := gif.EncodeAll(f, &g.anim); err != nil {
		f.Close()
		return fmt.Errorf("encode gif: %w", err)
	}
	return f.Close()
}

func (g *GIF) Frames() int { return len(g.anim.Image) }
