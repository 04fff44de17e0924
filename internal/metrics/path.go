package metrics

import (
	"github.com/san-kum/spirograph/internal/linkage"
	"github.com/san-kum/spirograph/internal/sim"
)

// PathLength sums the lengths of all drawn trace segments.
type PathLength struct {
	name  string
	total float64
}

func NewPathLength() *PathLength {
	return &PathLength{name: "path_length"}
}

func (p *PathLength) Name() string { return p.name }

func (p *PathLength) Observe(f sim.FrameInfo) {
	if !f.Drawn {
		return
	}
	p.total += f.Point.Dist(f.Prev)
}

func (p *PathLength) Value() float64 { return p.total }

func (p *PathLength) Reset() { p.total = 0 }

// Extent is the diagonal of the bounding box of every traced point.
type Extent struct {
	name                   string
	minX, minY, maxX, maxY int
	samples                int
}

func NewExtent() *Extent {
	return &Extent{name: "extent"}
}

func (e *Extent) Name() string { return e.name }

func (e *Extent) Observe(f sim.FrameInfo) {
	p := f.Point
	if e.samples == 0 {
		e.minX, e.maxX, e.minY, e.maxY = p.X, p.X, p.Y, p.Y
	}
	e.minX = min(e.minX, p.X)
	e.maxX = max(e.maxX, p.X)
	e.minY = min(e.minY, p.Y)
	e.maxY = max(e.maxY, p.Y)
	e.samples++
}

func (e *Extent) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	lo := linkage.Point{X: e.minX, Y: e.minY}
	return lo.Dist(linkage.Point{X: e.maxX, Y: e.maxY})
}

func (e *Extent) Reset() { *e = Extent{name: e.name} }
