package sim

import (
	"fmt"
	"image"
	"image/color"
	"math/rand"

	"github.com/san-kum/spirograph/internal/linkage"
	"github.com/san-kum/spirograph/internal/raster"
)

// FrameSink persists successive frames. Close finalizes the artifact and is
// called exactly once by the animator.
type FrameSink interface {
	WriteFrame(img *image.RGBA) error
	Close() error
}

// Display optionally previews frames and reports a user cancel request.
type Display interface {
	Show(frame int, img *image.RGBA)
	Cancelled() bool
}

type Observer interface {
	OnFrame(f FrameInfo)
}

type Metric interface {
	Name() string
	Observe(f FrameInfo)
	Value() float64
	Reset()
}

// ChainSource supplies the arm chain for each new pattern.
type ChainSource interface {
	Sample(rng *rand.Rand) linkage.Chain
}

// FixedChain replays the same chain for every pattern.
type FixedChain linkage.Chain

func (f FixedChain) Sample(*rand.Rand) linkage.Chain {
	return linkage.Chain(f).Clone()
}

type Phase int

const (
	Warmup Phase = iota
	Running
	Done
)

func (p Phase) String() string {
	switch p {
	case Warmup:
		return "warmup"
	case Running:
		return "running"
	case Done:
		return "done"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

type Reason int

const (
	ReasonFrameBudget Reason = iota
	ReasonClosure
	ReasonCancelled
)

func (r Reason) String() string {
	switch r {
	case ReasonFrameBudget:
		return "frame_budget"
	case ReasonClosure:
		return "closure"
	case ReasonCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// FrameInfo describes one emitted frame to observers and metrics.
type FrameInfo struct {
	Index     int
	SubIndex  int
	Pattern   int
	Point     linkage.Point
	Prev      linkage.Point
	Drawn     bool
	Anchor    linkage.Point
	HasAnchor bool
	Closed    bool
}

type TraceStyle int

const (
	// StyleSegment joins consecutive tips with a stroke.
	StyleSegment TraceStyle = iota
	// StyleDot stamps a disc at every tip.
	StyleDot
)

func ParseTraceStyle(s string) (TraceStyle, error) {
	switch s {
	case "", "segment":
		return StyleSegment, nil
	case "dot":
		return StyleDot, nil
	}
	return 0, fmt.Errorf("unknown trace style: %s", s)
}

type Config struct {
	Width     int
	Height    int
	Origin    linkage.Point
	MaxFrames int
	Rounding  linkage.Rounding

	Composite   raster.Mode
	BlendEvery  int
	ArmWidth    float64
	JointRadius float64
	ArmColor    color.RGBA

	TraceStyle   TraceStyle
	AntiAlias    bool
	LineWidthMin int
	LineWidthMax int

	Closure      Closure
	PreviewEvery int
}

// DefaultConfig mirrors the 1080p layered preset.
func DefaultConfig() Config {
	return Config{
		Width:        1920,
		Height:       1080,
		Origin:       linkage.Point{X: 960, Y: 540},
		MaxFrames:    3600,
		Rounding:     linkage.RoundTruncate,
		Composite:    raster.Direct,
		BlendEvery:   1,
		ArmWidth:     5,
		JointRadius:  10,
		ArmColor:     color.RGBA{A: 255},
		AntiAlias:    true,
		LineWidthMin: 5,
		LineWidthMax: 5,
		Closure:      DefaultClosure(),
		PreviewEvery: 5,
	}
}

type Result struct {
	Frames   int
	Resets   int
	Reason   Reason
	Patterns []linkage.Chain
	Metrics  map[string]float64
}
