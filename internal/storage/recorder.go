package storage

import "github.com/san-kum/spirograph/internal/sim"

// Recorder is an observer that keeps the endpoint of every emitted frame.
type Recorder struct {
	Points []TracePoint
}

func (r *Recorder) OnFrame(f sim.FrameInfo) {
	r.Points = append(r.Points, TracePoint{
		Frame:   f.Index,
		Pattern: f.Pattern,
		X:       f.Point.X,
		Y:       f.Point.Y,
		Drawn:   f.Drawn,
	})
}

// Xs returns the x coordinate series of the trace.
func Xs(trace []TracePoint) []float64 {
	out := make([]float64, len(trace))
	for i, p := range trace {
		out[i] = float64(p.X)
	}
	return out
}

func Ys(trace []TracePoint) []float64 {
	out := make([]float64, len(trace))
	for i, p := range trace {
		out[i] = float64(p.Y)
	}
	return out
}

// Pattern filters the trace to one sub-pattern.
func Pattern(trace []TracePoint, pattern int) []TracePoint {
	var out []TracePoint
	for _, p := range trace {
		if p.Pattern == pattern {
			out = append(out, p)
		}
	}
	return out
}
