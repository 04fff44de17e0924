package experiment

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/san-kum/spirograph/internal/config"
	"github.com/san-kum/spirograph/internal/metrics"
	"github.com/san-kum/spirograph/internal/sim"
	"github.com/san-kum/spirograph/internal/sink"
	"github.com/san-kum/spirograph/internal/storage"
)

const progressEvery = 1000

// Outcome is what one finished run produced.
type Outcome struct {
	Result *sim.Result
	Meta   *storage.RunMetadata
	Trace  []storage.TracePoint
}

type Experiment struct {
	cfg        *config.Config
	registry   *Registry
	randSource *rand.Rand
	seed       int64
	logger     zerolog.Logger
	display    sim.Display
	observers  []sim.Observer
	now        func() time.Time
	noSidecar  bool
}

type Option func(*Experiment)

func WithLogger(l zerolog.Logger) Option { return func(e *Experiment) { e.logger = l } }

// WithDisplay attaches a preview. A display must not be shared between
// concurrent experiments.
func WithDisplay(d sim.Display) Option { return func(e *Experiment) { e.display = d } }

func WithObserver(o sim.Observer) Option {
	return func(e *Experiment) { e.observers = append(e.observers, o) }
}

func WithClock(now func() time.Time) Option { return func(e *Experiment) { e.now = now } }

// WithoutSidecar skips writing run metadata next to the output.
func WithoutSidecar() Option { return func(e *Experiment) { e.noSidecar = true } }

// New validates cfg and seeds the run. A zero seed is replaced by a
// time-derived one, which is recorded in the metadata.
func New(cfg *config.Config, reg *Registry, opts ...Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := reg.GetSink(cfg.Output.Format); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &Experiment{
		cfg:        cfg,
		registry:   reg,
		randSource: rand.New(rand.NewSource(seed)),
		seed:       seed,
		logger:     log.Logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Experiment) Seed() int64 { return e.seed }

// Run renders the animation into a new output file and saves its sidecars.
// The sink is finalized on every path, including cancellation.
func (e *Experiment) Run(ctx context.Context) (*Outcome, error) {
	simCfg, err := e.cfg.ToSim()
	if err != nil {
		return nil, err
	}
	sampler, err := e.cfg.Sampler()
	if err != nil {
		return nil, err
	}
	pal, err := e.cfg.Palette()
	if err != nil {
		return nil, err
	}

	anim, err := sim.New(simCfg, sampler, pal, e.randSource)
	if err != nil {
		return nil, err
	}
	for _, m := range []sim.Metric{
		metrics.NewPathLength(),
		metrics.NewExtent(),
		metrics.NewAnchorDistance(simCfg.Closure.MinFrames),
		metrics.NewClosures(),
	} {
		anim.AddMetric(m)
	}

	rec := &storage.Recorder{}
	anim.AddObserver(rec)
	anim.AddObserver(sim.NewProgressLogger(e.logger, simCfg.MaxFrames, progressEvery))
	for _, o := range e.observers {
		anim.AddObserver(o)
	}
	if e.display != nil {
		anim.SetDisplay(e.display)
	}

	factory, err := e.registry.GetSink(e.cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	started := e.now()
	path, err := sink.OutputPath(e.cfg.Output.Dir, e.cfg.Output.Prefix, factory.Ext, started)
	if err != nil {
		return nil, err
	}
	out, err := factory.New(ctx, sink.Options{
		Path:   path,
		Width:  e.cfg.Width,
		Height: e.cfg.Height,
		FPS:    e.cfg.FPS,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s output: %w", e.cfg.Output.Format, err)
	}

	e.logger.Info().
		Str("output", path).
		Str("preset", e.cfg.Preset).
		Int64("seed", e.seed).
		Int("max_frames", simCfg.MaxFrames).
		Msg("rendering spirograph")

	res, runErr := anim.Run(ctx, out)
	if res == nil {
		return nil, runErr
	}

	meta := &storage.RunMetadata{
		Video:     path,
		Preset:    e.cfg.Preset,
		Seed:      e.seed,
		Width:     e.cfg.Width,
		Height:    e.cfg.Height,
		FPS:       e.cfg.FPS,
		Origin:    simCfg.Origin,
		Rounding:  simCfg.Rounding.String(),
		MaxFrames: simCfg.MaxFrames,
		Frames:    res.Frames,
		Resets:    res.Resets,
		Reason:    res.Reason.String(),
		Patterns:  res.Patterns,
		Metrics:   res.Metrics,
		Timestamp: started,
		Elapsed:   e.now().Sub(started),
	}
	outcome := &Outcome{Result: res, Meta: meta, Trace: rec.Points}

	if runErr != nil {
		e.logger.Error().Err(runErr).Str("output", path).Int("frames", res.Frames).Msg("render failed")
		return outcome, runErr
	}

	if !e.noSidecar {
		store := storage.New(e.cfg.Output.Dir)
		if _, err := store.Save(meta, rec.Points); err != nil {
			return outcome, fmt.Errorf("save run metadata: %w", err)
		}
	}

	e.logger.Info().
		Str("output", path).
		Str("reason", meta.Reason).
		Int("frames", res.Frames).
		Int("resets", res.Resets).
		Dur("elapsed", meta.Elapsed).
		Msg("video saved")
	return outcome, nil
}
