package metrics

import "github.com/san-kum/spirograph/internal/sim"

// AnchorDistance tracks how close the tip came to its anchor once the closure
// guard had passed. Value is -1 until a guarded frame was observed.
type AnchorDistance struct {
	name      string
	minFrames int
	best      float64
	samples   int
}

func NewAnchorDistance(minFrames int) *AnchorDistance {
	return &AnchorDistance{name: "anchor_distance", minFrames: minFrames}
}

func (a *AnchorDistance) Name() string { return a.name }

func (a *AnchorDistance) Observe(f sim.FrameInfo) {
	if !f.HasAnchor || f.SubIndex < a.minFrames {
		return
	}
	d := f.Point.Dist(f.Anchor)
	if a.samples == 0 || d < a.best {
		a.best = d
	}
	a.samples++
}

func (a *AnchorDistance) Value() float64 {
	if a.samples == 0 {
		return -1
	}
	return a.best
}

func (a *AnchorDistance) Reset() {
	a.best = 0
	a.samples = 0
}

// Closures counts frames on which a pattern closed.
type Closures struct {
	name  string
	count int
}

func NewClosures() *Closures {
	return &Closures{name: "closures"}
}

func (c *Closures) Name() string { return c.name }

func (c *Closures) Observe(f sim.FrameInfo) {
	if f.Closed {
		c.count++
	}
}

func (c *Closures) Value() float64 { return float64(c.count) }

func (c *Closures) Reset() { c.count = 0 }
