package sink

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
)

// FFmpeg pipes raw rgb24 frames into an ffmpeg process encoding H.264.
type FFmpeg struct {
	opts   Options
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	w      *bufio.Writer
	row    []byte
	frames int
	closed bool
}

// NewFFmpeg starts ffmpeg. The process is not bound to any run context:
// it ends only when Close closes its stdin, so a cancelled run still gets a
// finalized file.
func NewFFmpeg(opts Options) (*FFmpeg, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	bin, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoEncoder, err)
	}

	cmd := exec.Command(bin,
		"-y",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgb24",
		"-video_size", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-framerate", strconv.Itoa(opts.FPS),
		"-i", "pipe:0",
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "20",
		"-pix_fmt", "yuv420p",
		opts.Path,
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	return &FFmpeg{
		opts:  opts,
		cmd:   cmd,
		stdin: stdin,
		w:     bufio.NewWriterSize(stdin, opts.Width*3*16),
		row:   make([]byte, opts.Width*3),
	}, nil
}

func (f *FFmpeg) WriteFrame(img *image.RGBA) error {
	if f.closed {
		return ErrClosed
	}
	if err := checkSize(img, f.opts); err != nil {
		return err
	}
	if err := writeRGB24(f.w, img, f.row); err != nil {
		return err
	}
	f.frames++
	return nil
}

// Close flushes pending frames and waits for ffmpeg to finalize the file.
func (f *FFmpeg) Close() error {
	if f.closed {
		return ErrClosed
	}
	f.closed = true

	flushErr := f.w.Flush()
	closeErr := f.stdin.Close()
	waitErr := f.cmd.Wait()
	switch {
	case flushErr != nil:
		return fmt.Errorf("flush frames: %w", flushErr)
	case closeErr != nil:
		return fmt.Errorf("close ffmpeg stdin: %w", closeErr)
	case waitErr != nil:
		return fmt.Errorf("ffmpeg: %w", waitErr)
	}
	return nil
}

func (f *FFmpeg) Frames() int { return f.frames }

func writeRGB24(w io.Writer, img *image.RGBA, row []byte) error {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		src := img.Pix[img.PixOffset(b.Min.X, y):]
		for x, i := 0, 0; x < b.Dx(); x, i = x+1, i+4 {
			row[x*3] = src[i]
			row[x*3+1] = src[i+1]
			row[x*3+2] = src[i+2]
		}
		if _, err := w.Write(row[:b.Dx()*3]); err != nil {
			return err
		}
	}
	return nil
}

func checkSize(img *image.RGBA, opts Options) error {
	b := img.Bounds()
	if b.Dx() != opts.Width || b.Dy() != opts.Height {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrFrameSize, b.Dx(), b.Dy(), opts.Width, opts.Height)
	}
	return nil
}
