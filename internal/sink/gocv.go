//go:build gocv

package sink

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// VideoWriter encodes mp4v through OpenCV.
type VideoWriter struct {
	opts   Options
	vw     *gocv.VideoWriter
	frames int
	closed bool
}

func NewVideoWriter(opts Options) (*VideoWriter, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	vw, err := gocv.VideoWriterFile(opts.Path, "mp4v", float64(opts.FPS), opts.Width, opts.Height, true)
	if err != nil {
		return nil, fmt.Errorf("open video writer: %w", err)
	}
	return &VideoWriter{opts: opts, vw: vw}, nil
}

func (v *VideoWriter) WriteFrame(img *image.RGBA) error {
	if v.closed {
		return ErrClosed
	}
	if err := checkSize(img, v.opts); err != nil {
		return err
	}
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return err
	}
	defer mat.Close()
	if err := v.vw.Write(mat); err != nil {
		return err
	}
	v.frames++
	return nil
}

func (v *VideoWriter) Close() error {
	if v.closed {
		return ErrClosed
	}
	v.closed = true
	return v.vw.Close()
}

func (v *VideoWriter) Frames() int { return v.frames }

// Window previews frames in an OpenCV window; pressing q requests a stop.
type Window struct {
	win       *gocv.Window
	cancelled bool
}

func NewWindow(title string, width, height int) *Window {
	w := gocv.NewWindow(title)
	w.ResizeWindow(width, height)
	return &Window{win: w}
}

func (w *Window) Show(frame int, img *image.RGBA) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return
	}
	defer mat.Close()
	w.win.IMShow(mat)
	if w.win.WaitKey(1)&0xff == 'q' {
		w.cancelled = true
	}
}

func (w *Window) Cancelled() bool { return w.cancelled }

func (w *Window) Close() error { return w.win.Close() }
