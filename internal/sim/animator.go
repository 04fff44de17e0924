package sim

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/san-kum/spirograph/internal/linkage"
	"github.com/san-kum/spirograph/internal/palette"
	"github.com/san-kum/spirograph/internal/raster"
)

// RunState is the mutable world of one animation, owned by the loop.
type RunState struct {
	Chain     linkage.Chain
	Phase     Phase
	Prev      linkage.Point
	Anchor    linkage.Point
	HasAnchor bool
	SubFrame  int
	Pattern   int
	LineWidth float64
}

type Animator struct {
	cfg       Config
	rng       *rand.Rand
	chains    ChainSource
	palette   palette.Policy
	display   Display
	observers []Observer
	metrics   []Metric

	trace *raster.Canvas
	arms  *raster.Canvas
	comp  *raster.Compositor
	state RunState
}

// New allocates the canvases for cfg. Allocation or validation failures are
// returned before any frame is produced.
func New(cfg Config, chains ChainSource, pal palette.Policy, rng *rand.Rand) (*Animator, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if chains == nil || pal == nil || rng == nil {
		return nil, fmt.Errorf("%w: chain source, palette and rng are required", ErrInvalidConfig)
	}

	trace, err := raster.NewCanvas(cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}
	a := &Animator{
		cfg:     cfg,
		rng:     rng,
		chains:  chains,
		palette: pal,
		trace:   trace,
	}
	if cfg.Composite.Layered() {
		if a.arms, err = raster.NewCanvas(cfg.Width, cfg.Height); err != nil {
			return nil, err
		}
	}
	if a.comp, err = raster.NewCompositor(cfg.Composite, cfg.BlendEvery, cfg.Width, cfg.Height); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Animator) SetDisplay(d Display)   { a.display = d }
func (a *Animator) AddObserver(o Observer) { a.observers = append(a.observers, o) }
func (a *Animator) AddMetric(m Metric)     { a.metrics = append(a.metrics, m) }

// State returns a copy of the current run state.
func (a *Animator) State() RunState {
	s := a.state
	s.Chain = s.Chain.Clone()
	return s
}

// Trace exposes the persistent trace canvas.
func (a *Animator) Trace() *raster.Canvas { return a.trace }

// Run drives the animation until the frame budget, closure or cancellation.
// The sink is closed exactly once on every return path; a write failure is
// returned as a *FrameError after that close.
func (a *Animator) Run(ctx context.Context, sink FrameSink) (res *Result, err error) {
	if sink == nil {
		return nil, ErrNoSink
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close sink: %w", cerr)
		}
	}()

	for _, m := range a.metrics {
		m.Reset()
	}

	res = &Result{
		Reason:  ReasonFrameBudget,
		Metrics: make(map[string]float64),
	}
	a.state = RunState{}
	if err := a.startPattern(res); err != nil {
		return res, err
	}

	for frame := 0; frame < a.cfg.MaxFrames; frame++ {
		select {
		case <-ctx.Done():
			res.Reason = ReasonCancelled
			a.finish(res)
			return res, nil
		default:
		}

		info := a.step(frame)
		out := a.comp.Compose(frame, a.trace, a.arms)

		if err := sink.WriteFrame(out.Image()); err != nil {
			a.finish(res)
			return res, &FrameError{Frame: frame, Wrapped: err}
		}
		res.Frames++
		a.palette.Advance()

		info.Closed = a.cfg.Closure.Fires(info)
		for _, m := range a.metrics {
			m.Observe(info)
		}
		for _, obs := range a.observers {
			obs.OnFrame(info)
		}
		if a.display != nil && a.cfg.PreviewEvery > 0 && frame%a.cfg.PreviewEvery == 0 {
			a.display.Show(frame, out.Image())
		}

		if info.Closed {
			if a.cfg.Closure.Action == Stop {
				res.Reason = ReasonClosure
				break
			}
			res.Resets++
			a.state.Pattern++
			if err := a.startPattern(res); err != nil {
				a.finish(res)
				return res, err
			}
		} else {
			a.state.SubFrame++
		}

		if a.display != nil && a.display.Cancelled() {
			res.Reason = ReasonCancelled
			break
		}
	}

	a.finish(res)
	return res, nil
}

// step evaluates the chain once and updates the canvases for frame.
func (a *Animator) step(frame int) FrameInfo {
	s := &a.state
	if a.arms != nil {
		a.arms.Clear()
	}

	tip, pivots := s.Chain.Evaluate(a.cfg.Origin, a.cfg.Rounding)
	if a.arms != nil {
		a.drawArms(pivots)
	}

	info := FrameInfo{
		Index:    frame,
		SubIndex: s.SubFrame,
		Pattern:  s.Pattern,
		Point:    tip,
	}

	switch s.Phase {
	case Warmup:
		s.Phase = Running
		if a.cfg.TraceStyle == StyleDot {
			a.trace.Disc(tip, s.LineWidth/2, a.palette.Color(), a.cfg.AntiAlias)
		}
	case Running:
		if !s.HasAnchor {
			s.Anchor, s.HasAnchor = s.Prev, true
		}
		a.drawTrace(s.Prev, tip)
		info.Prev = s.Prev
		info.Drawn = true
	}

	s.Prev = tip
	info.Anchor, info.HasAnchor = s.Anchor, s.HasAnchor
	return info
}

func (a *Animator) drawTrace(from, to linkage.Point) {
	c := a.palette.Color()
	if a.cfg.TraceStyle == StyleDot {
		a.trace.Disc(to, a.state.LineWidth/2, c, a.cfg.AntiAlias)
		return
	}
	a.trace.Line(from, to, c, a.state.LineWidth, a.cfg.AntiAlias)
}

func (a *Animator) drawArms(pivots []linkage.Point) {
	for i := 0; i+1 < len(pivots); i++ {
		a.arms.Line(pivots[i], pivots[i+1], a.cfg.ArmColor, a.cfg.ArmWidth, a.cfg.AntiAlias)
	}
	if a.cfg.JointRadius <= 0 {
		return
	}
	for _, p := range pivots {
		a.arms.Disc(p, a.cfg.JointRadius, a.cfg.ArmColor, a.cfg.AntiAlias)
	}
}

// startPattern replaces the chain, clears both canvases and redraws the
// per-pattern line width and color choice.
func (a *Animator) startPattern(res *Result) error {
	chain := a.chains.Sample(a.rng)
	if err := chain.Validate(); err != nil {
		return err
	}

	s := &a.state
	s.Chain = chain
	s.Phase = Warmup
	s.Prev = linkage.Point{}
	s.Anchor, s.HasAnchor = linkage.Point{}, false
	s.SubFrame = 0
	s.LineWidth = float64(a.lineWidth())

	a.trace.Clear()
	if a.arms != nil {
		a.arms.Clear()
	}
	a.palette.Reset(a.rng)

	res.Patterns = append(res.Patterns, chain.Clone())
	return nil
}

func (a *Animator) lineWidth() int {
	lo, hi := a.cfg.LineWidthMin, a.cfg.LineWidthMax
	if hi <= lo {
		return lo
	}
	return lo + a.rng.Intn(hi-lo+1)
}

func (a *Animator) finish(res *Result) {
	a.state.Phase = Done
	for _, m := range a.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
}

func validateConfig(cfg Config) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: resolution %dx%d", ErrInvalidConfig, cfg.Width, cfg.Height)
	}
	if cfg.MaxFrames <= 0 {
		return fmt.Errorf("%w: max frames must be positive, got %d", ErrInvalidConfig, cfg.MaxFrames)
	}
	if cfg.LineWidthMin <= 0 || cfg.LineWidthMax < 0 {
		return fmt.Errorf("%w: line width range [%d, %d]", ErrInvalidConfig, cfg.LineWidthMin, cfg.LineWidthMax)
	}
	if cfg.Closure.Enabled {
		if cfg.Closure.MinFrames < 0 {
			return fmt.Errorf("%w: closure min frames must be non-negative", ErrInvalidConfig)
		}
		if cfg.Closure.Metric == Euclidean && cfg.Closure.Threshold < 0 {
			return fmt.Errorf("%w: closure threshold must be non-negative", ErrInvalidConfig)
		}
	}
	return nil
}
