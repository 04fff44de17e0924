// Package sink persists animator frames as video artifacts.
package sink

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var (
	ErrClosed     = errors.New("sink: already closed")
	ErrFrameSize  = errors.New("sink: frame size does not match the declared resolution")
	ErrNoEncoder  = errors.New("sink: encoder not available")
	ErrBadOptions = errors.New("sink: invalid options")
)

// Options declares the stream every sink receives.
type Options struct {
	Path   string
	Width  int
	Height int
	FPS    int
}

func (o Options) validate() error {
	if o.Width <= 0 || o.Height <= 0 || o.FPS <= 0 {
		return fmt.Errorf("%w: %dx%d@%d", ErrBadOptions, o.Width, o.Height, o.FPS)
	}
	return nil
}

// OutputPath builds <dir>/<prefix>_<epoch>.<ext> and creates dir if needed.
// Without ext the name has no extension.
func OutputPath(dir, prefix, ext string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	name := fmt.Sprintf("%s_%d", prefix, now.Unix())
	if ext != "" {
		name += "." + ext
	}
	return filepath.Join(dir, name), nil
}
