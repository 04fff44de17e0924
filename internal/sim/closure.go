package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/spirograph/internal/linkage"
)

type ClosureMetric int

const (
	// Euclidean closes when the tip is within Threshold of the anchor.
	Euclidean ClosureMetric = iota
	// Axis closes when |dx| < ThresholdX and |dy| < ThresholdY.
	Axis
)

func ParseClosureMetric(s string) (ClosureMetric, error) {
	switch s {
	case "", "euclidean":
		return Euclidean, nil
	case "axis":
		return Axis, nil
	}
	return 0, fmt.Errorf("unknown closure metric: %s", s)
}

type ClosureAction int

const (
	// Stop ends the run.
	Stop ClosureAction = iota
	// Restart clears the canvases and starts a new pattern in the same output.
	Restart
)

func ParseClosureAction(s string) (ClosureAction, error) {
	switch s {
	case "", "stop":
		return Stop, nil
	case "reset", "restart":
		return Restart, nil
	}
	return 0, fmt.Errorf("unknown closure action: %s", s)
}

// Closure decides when a traced curve has returned to its first point.
// MinFrames counts frames since the current pattern started.
type Closure struct {
	Enabled    bool
	Metric     ClosureMetric
	Threshold  float64
	ThresholdX float64
	ThresholdY float64
	MinFrames  int
	Action     ClosureAction
}

func DefaultClosure() Closure {
	return Closure{
		Enabled:    true,
		Metric:     Euclidean,
		Threshold:  2,
		ThresholdX: 2,
		ThresholdY: 2,
		MinFrames:  1000,
		Action:     Stop,
	}
}

// Near applies the geometric test only, without the frame guard.
func (c Closure) Near(p, anchor linkage.Point) bool {
	if c.Metric == Axis {
		dx := math.Abs(float64(p.X - anchor.X))
		dy := math.Abs(float64(p.Y - anchor.Y))
		return dx < c.ThresholdX && dy < c.ThresholdY
	}
	return p.Dist(anchor) <= c.Threshold
}

// Fires reports whether the frame closes the current pattern.
func (c Closure) Fires(f FrameInfo) bool {
	if !c.Enabled || !f.HasAnchor || f.SubIndex < c.MinFrames {
		return false
	}
	return c.Near(f.Point, f.Anchor)
}
