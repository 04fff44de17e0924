package sim

import (
	"time"

	"github.com/rs/zerolog"
)

// ProgressLogger logs throughput and an ETA every Every frames.
type ProgressLogger struct {
	Logger    zerolog.Logger
	MaxFrames int
	Every     int
	start     time.Time
	now       func() time.Time
}

func NewProgressLogger(logger zerolog.Logger, maxFrames, every int) *ProgressLogger {
	return &ProgressLogger{
		Logger:    logger,
		MaxFrames: maxFrames,
		Every:     every,
		now:       time.Now,
	}
}

func (p *ProgressLogger) OnFrame(f FrameInfo) {
	if p.start.IsZero() {
		p.start = p.now()
	}
	if f.Closed {
		p.Logger.Info().
			Int("frame", f.Index).
			Int("pattern", f.Pattern).
			Stringer("point", f.Point).
			Msg("trace closed near its first point")
	}

	done := f.Index + 1
	if p.Every <= 0 || done%p.Every != 0 {
		return
	}

	elapsed := p.now().Sub(p.start)
	ev := p.Logger.Info().
		Int("frame", done).
		Int("max_frames", p.MaxFrames).
		Dur("elapsed", elapsed)
	if p.MaxFrames > 0 {
		progress := float64(done) / float64(p.MaxFrames)
		total := time.Duration(float64(elapsed) / progress)
		ev = ev.Float64("progress_pct", progress*100).Dur("remaining", total-elapsed)
	}
	ev.Msg("rendering")
}
