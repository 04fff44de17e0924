package sink

import "image"

// Null discards frames. Useful for dry runs and benchmarks.
type Null struct {
	frames int
	closed bool
}

func (n *Null) WriteFrame(*image.RGBA) error {
	if n.closed {
		return ErrClosed
	}
	n.frames++
	return nil
}

func (n *Null) Close() error {
	if n.closed {
		return ErrClosed
	}
	n.closed = true
	return nil
}

func (n *Null) Frames() int { return n.frames }
