package sink

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// PNGSequence writes frame_000000.png, frame_000001.png, ... into a directory.
type PNGSequence struct {
	opts   Options
	enc    png.Encoder
	frames int
	closed bool
}

func NewPNGSequence(opts Options) (*PNGSequence, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.Path, 0755); err != nil {
		return nil, fmt.Errorf("create frame dir: %w", err)
	}
	return &PNGSequence{
		opts: opts,
		enc:  png.Encoder{CompressionLevel: png.BestSpeed},
	}, nil
}

func (p *PNGSequence) WriteFrame(img *image.RGBA) error {
	if p.closed {
		return ErrClosed
	}
	if err := checkSize(img, p.opts); err != nil {
		return err
	}

	f, err := os.Create(p.FramePath(p.frames))
	if err != nil {
		return err
	}
	if err := p.enc.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	p.frames++
	return nil
}

func (p *PNGSequence) FramePath(i int) string {
	return filepath.Join(p.opts.Path, fmt.Sprintf("frame_%06d.png", i))
}

func (p *PNGSequence) Close() error {
	if p.closed {
		return ErrClosed
	}
	p.closed = true
	return nil
}

func (p *PNGSequence) Frames() int { return p.frames }
