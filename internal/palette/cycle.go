package palette

import "math"

// HueCycle advances a hue by a fixed step per frame, wrapping at 360.
// The hue is derived from a step counter instead of being accumulated so it
// lands exactly back on Base once the cycle completes.
type HueCycle struct {
	Base   float64
	Step   float64
	n      int
	period int
}

func NewHueCycle(base, step float64) *HueCycle {
	h := &HueCycle{Base: wrap(base), Step: step}
	if step != 0 {
		if p := 360 / math.Abs(step); p == math.Trunc(p) && p < math.MaxInt32 {
			h.period = int(p)
		}
	}
	return h
}

func (h *HueCycle) Hue() float64 {
	return wrap(h.Base + float64(h.n)*h.Step)
}

func (h *HueCycle) Advance() {
	h.n++
	if h.period > 0 {
		h.n %= h.period
	}
}

// Period is the number of frames in one full cycle, or 0 when the step does
// not divide 360.
func (h *HueCycle) Period() int {
	return h.period
}

func (h *HueCycle) Rewind(base float64) {
	h.Base = wrap(base)
	h.n = 0
}

func wrap(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}
