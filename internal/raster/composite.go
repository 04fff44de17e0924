package raster

import "fmt"

type Mode int

const (
	// Direct emits the trace canvas unchanged.
	Direct Mode = iota
	// Multiply emits the per-channel product of the arms and trace canvases.
	Multiply
	// Weighted emits 0.6·arms + 0.4·trace every BlendEvery frames and the arms
	// canvas alone otherwise.
	Weighted
)

var modeNames = []string{"direct", "multiply", "weighted"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if name == s {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown composite mode: %s", s)
}

// Layered reports whether the mode needs a separate arms canvas.
func (m Mode) Layered() bool {
	return m != Direct
}

const (
	ArmsWeight  = 0.6
	TraceWeight = 0.4
)

// MultiplyInto writes round(a·b/255) per channel into dst. White in either
// input leaves the other input unchanged.
func MultiplyInto(dst, a, b *Canvas) {
	d, pa, pb := dst.img.Pix, a.img.Pix, b.img.Pix
	for i := 0; i+3 < len(d); i += 4 {
		d[i] = mul8(pa[i], pb[i])
		d[i+1] = mul8(pa[i+1], pb[i+1])
		d[i+2] = mul8(pa[i+2], pb[i+2])
		d[i+3] = 0xff
	}
}

// WeightedInto writes round(wa·a + wb·b) per channel into dst.
func WeightedInto(dst, a *Canvas, wa float64, b *Canvas, wb float64) {
	d, pa, pb := dst.img.Pix, a.img.Pix, b.img.Pix
	for i := 0; i+3 < len(d); i += 4 {
		for k := 0; k < 3; k++ {
			v := wa*float64(pa[i+k]) + wb*float64(pb[i+k])
			if v > 254.5 {
				v = 254.5
			}
			d[i+k] = uint8(v + 0.5)
		}
		d[i+3] = 0xff
	}
}

func mul8(a, b uint8) uint8 {
	return uint8((uint32(a)*uint32(b) + 127) / 255)
}

// Compositor produces output frames from the trace and optional arms canvas.
type Compositor struct {
	Mode       Mode
	BlendEvery int
	out        *Canvas
}

func NewCompositor(mode Mode, blendEvery, w, h int) (*Compositor, error) {
	c := &Compositor{Mode: mode, BlendEvery: blendEvery}
	if mode == Direct {
		return c, nil
	}
	out, err := NewCanvas(w, h)
	if err != nil {
		return nil, err
	}
	c.out = out
	if c.BlendEvery <= 0 {
		c.BlendEvery = 1
	}
	return c, nil
}

// Compose returns the frame for the given frame index. The result aliases an
// internal buffer that is overwritten by the next call.
func (c *Compositor) Compose(frame int, trace, arms *Canvas) *Canvas {
	switch c.Mode {
	case Multiply:
		MultiplyInto(c.out, trace, arms)
		return c.out
	case Weighted:
		if frame%c.BlendEvery == 0 {
			WeightedInto(c.out, arms, ArmsWeight, trace, TraceWeight)
		} else {
			c.out.CopyFrom(arms)
		}
		return c.out
	default:
		return trace
	}
}
