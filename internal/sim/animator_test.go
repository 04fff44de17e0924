package sim_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/spirograph/internal/linkage"
	"github.com/san-kum/spirograph/internal/palette"
	"github.com/san-kum/spirograph/internal/raster"
	"github.com/san-kum/spirograph/internal/sim"
)

type recordingSink struct {
	frames   int
	closed   int
	failAt   int
	failErr  error
	closeErr error
	last     *image.RGBA
}

func (s *recordingSink) WriteFrame(img *image.RGBA) error {
	if s.failErr != nil && s.frames == s.failAt {
		return s.failErr
	}
	s.frames++
	if s.last == nil {
		s.last = image.NewRGBA(img.Rect)
	}
	copy(s.last.Pix, img.Pix)
	return nil
}

func (s *recordingSink) Close() error {
	s.closed++
	return s.closeErr
}

type cancelDisplay struct {
	shown       int
	cancelAfter int
}

func (d *cancelDisplay) Show(frame int, img *image.RGBA) { d.shown++ }
func (d *cancelDisplay) Cancelled() bool                 { return d.shown >= d.cancelAfter }

type frameLog struct {
	frames []sim.FrameInfo
	hook   func(sim.FrameInfo)
}

func (l *frameLog) OnFrame(f sim.FrameInfo) {
	l.frames = append(l.frames, f)
	if l.hook != nil {
		l.hook(f)
	}
}

type countMetric struct{ n int }

func (m *countMetric) Name() string { return "drawn" }

func (m *countMetric) Observe(f sim.FrameInfo) {
	if f.Drawn {
		m.n++
	}
}

func (m *countMetric) Value() float64 { return float64(m.n) }
func (m *countMetric) Reset()         { m.n = 0 }

func smallConfig() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Width, cfg.Height = 200, 200
	cfg.Origin = linkage.Point{X: 100, Y: 100}
	cfg.LineWidthMin, cfg.LineWidthMax = 2, 2
	cfg.PreviewEvery = 1
	return cfg
}

func stillChain() sim.FixedChain {
	return sim.FixedChain{{Angle: 0.4, Radius: 40}, {Angle: 1.3, Radius: 20}}
}

func newAnimator(cfg sim.Config, chains sim.ChainSource) *sim.Animator {
	a, err := sim.New(cfg, chains, palette.NewStatic(palette.Black), rand.New(rand.NewSource(1)))
	Expect(err).NotTo(HaveOccurred())
	return a
}

var _ = Describe("Animator", func() {
	var sink *recordingSink

	BeforeEach(func() {
		sink = &recordingSink{}
	})

	Describe("closure guard", func() {
		It("does not close before the minimum frame count", func() {
			cfg := smallConfig()
			cfg.MaxFrames = 5000
			cfg.Closure.MinFrames = 1000

			log := &frameLog{}
			a := newAnimator(cfg, stillChain())
			a.AddObserver(log)

			res, err := a.Run(context.Background(), sink)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Reason).To(Equal(sim.ReasonClosure))
			Expect(res.Frames).To(Equal(1001))
			Expect(sink.frames).To(Equal(1001))
			for _, f := range log.frames[:1000] {
				Expect(f.Closed).To(BeFalse(), "frame %d closed early", f.Index)
			}
		})

		It("closes on the frame after the anchor without a guard", func() {
			cfg := smallConfig()
			cfg.MaxFrames = 50
			cfg.Closure.MinFrames = 0

			res, err := newAnimator(cfg, stillChain()).Run(context.Background(), sink)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Frames).To(Equal(2))
		})

		It("uses per-axis thresholds in axis mode", func() {
			c := sim.Closure{Enabled: true, Metric: sim.Axis, ThresholdX: 2, ThresholdY: 5}
			anchor := linkage.Point{X: 10, Y: 10}
			Expect(c.Near(linkage.Point{X: 11, Y: 14}, anchor)).To(BeTrue())
			Expect(c.Near(linkage.Point{X: 12, Y: 10}, anchor)).To(BeFalse())
			Expect(c.Near(linkage.Point{X: 10, Y: 15}, anchor)).To(BeFalse())
		})
	})

	Describe("reset on closure", func() {
		It("starts a fresh pattern on a white canvas", func() {
			cfg := smallConfig()
			cfg.MaxFrames = 100
			cfg.Closure.MinFrames = 10
			cfg.Closure.Action = sim.Restart

			fresh, err := raster.NewCanvas(cfg.Width, cfg.Height)
			Expect(err).NotTo(HaveOccurred())
			white := fresh.Histogram()

			a := newAnimator(cfg, stillChain())
			var checked int
			closedLast := false
			log := &frameLog{}
			log.hook = func(f sim.FrameInfo) {
				if closedLast {
					Expect(f.SubIndex).To(Equal(0))
					Expect(f.Drawn).To(BeFalse())
					Expect(a.Trace().Histogram()).To(Equal(white))
					checked++
				}
				closedLast = f.Closed
			}
			a.AddObserver(log)

			res, err := a.Run(context.Background(), sink)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Reason).To(Equal(sim.ReasonFrameBudget))
			Expect(res.Frames).To(Equal(100))
			Expect(res.Resets).To(Equal(9))
			Expect(res.Patterns).To(HaveLen(10))
			Expect(checked).To(Equal(9))
		})

		It("draws a new line width for each pattern", func() {
			cfg := smallConfig()
			cfg.MaxFrames = 400
			cfg.Closure.MinFrames = 5
			cfg.Closure.Action = sim.Restart
			cfg.LineWidthMin, cfg.LineWidthMax = 5, 125

			a := newAnimator(cfg, stillChain())
			widths := map[float64]bool{}
			log := &frameLog{hook: func(sim.FrameInfo) { widths[a.State().LineWidth] = true }}
			a.AddObserver(log)

			_, err := a.Run(context.Background(), sink)
			Expect(err).NotTo(HaveOccurred())
			Expect(len(widths)).To(BeNumerically(">", 1))
			for w := range widths {
				Expect(w).To(BeNumerically(">=", 5))
				Expect(w).To(BeNumerically("<=", 125))
			}
		})
	})

	Describe("frame accounting", func() {
		It("emits exactly the frame budget when closure never fires", func() {
			cfg := smallConfig()
			cfg.MaxFrames = 250
			cfg.Closure.Enabled = false

			chain := sim.FixedChain{{Radius: 50, Speed: 0.031}, {Radius: 30, Speed: -0.047}}
			log := &frameLog{}
			a := newAnimator(cfg, chain)
			a.AddObserver(log)

			res, err := a.Run(context.Background(), sink)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Frames).To(Equal(250))
			Expect(sink.frames).To(Equal(250))
			Expect(sink.closed).To(Equal(1))
			for i, f := range log.frames {
				Expect(f.Index).To(Equal(i))
			}
		})

		It("never draws a segment on the first frame", func() {
			cfg := smallConfig()
			cfg.MaxFrames = 3
			log := &frameLog{}
			a := newAnimator(cfg, stillChain())
			a.AddObserver(log)

			_, err := a.Run(context.Background(), sink)
			Expect(err).NotTo(HaveOccurred())
			Expect(log.frames[0].Drawn).To(BeFalse())
			Expect(log.frames[0].HasAnchor).To(BeFalse())
			Expect(log.frames[1].Drawn).To(BeTrue())
			Expect(log.frames[1].Anchor).To(Equal(log.frames[0].Point))
		})

		It("reports metrics in the result", func() {
			cfg := smallConfig()
			cfg.MaxFrames = 10
			cfg.Closure.Enabled = false
			a := newAnimator(cfg, stillChain())
			a.AddMetric(&countMetric{})

			res, err := a.Run(context.Background(), sink)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Metrics).To(HaveKeyWithValue("drawn", 9.0))
		})
	})

	Describe("failure and cancellation", func() {
		It("closes the sink and reports the failing frame", func() {
			boom := errors.New("disk full")
			sink.failAt, sink.failErr = 7, boom
			cfg := smallConfig()
			cfg.MaxFrames = 100

			res, err := newAnimator(cfg, stillChain()).Run(context.Background(), sink)
			Expect(err).To(MatchError(boom))
			var fe *sim.FrameError
			Expect(errors.As(err, &fe)).To(BeTrue())
			Expect(fe.Frame).To(Equal(7))
			Expect(res.Frames).To(Equal(7))
			Expect(sink.closed).To(Equal(1))
		})

		It("surfaces a close failure", func() {
			sink.closeErr = errors.New("finalize failed")
			cfg := smallConfig()
			cfg.MaxFrames = 5

			_, err := newAnimator(cfg, stillChain()).Run(context.Background(), sink)
			Expect(err).To(MatchError(sink.closeErr))
			Expect(sink.closed).To(Equal(1))
		})

		It("stops when the display requests cancellation", func() {
			cfg := smallConfig()
			cfg.MaxFrames = 100
			a := newAnimator(cfg, stillChain())
			a.SetDisplay(&cancelDisplay{cancelAfter: 3})

			res, err := a.Run(context.Background(), sink)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Reason).To(Equal(sim.ReasonCancelled))
			Expect(res.Frames).To(Equal(3))
			Expect(sink.closed).To(Equal(1))
		})

		It("finalizes the sink when the context is already done", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			res, err := newAnimator(smallConfig(), stillChain()).Run(ctx, sink)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Reason).To(Equal(sim.ReasonCancelled))
			Expect(res.Frames).To(BeZero())
			Expect(sink.closed).To(Equal(1))
		})

		It("rejects a missing sink", func() {
			_, err := newAnimator(smallConfig(), stillChain()).Run(context.Background(), nil)
			Expect(err).To(MatchError(sim.ErrNoSink))
		})

		It("rejects invalid configs before allocating", func() {
			cfg := smallConfig()
			cfg.Width = 0
			_, err := sim.New(cfg, stillChain(), palette.NewStatic(palette.Black), rand.New(rand.NewSource(1)))
			Expect(err).To(MatchError(sim.ErrInvalidConfig))

			cfg = smallConfig()
			cfg.MaxFrames = 0
			_, err = sim.New(cfg, stillChain(), palette.NewStatic(palette.Black), rand.New(rand.NewSource(1)))
			Expect(err).To(MatchError(sim.ErrInvalidConfig))
		})

		It("rejects an empty chain", func() {
			_, err := newAnimator(smallConfig(), sim.FixedChain{}).Run(context.Background(), sink)
			Expect(err).To(MatchError(linkage.ErrEmptyChain))
			Expect(sink.closed).To(Equal(1))
		})
	})

	Describe("two-arm scenario", func() {
		It("follows the kinematic update exactly", func() {
			s1, s2 := math.Pi/50, math.Pi/30
			cfg := sim.DefaultConfig()
			cfg.Width, cfg.Height = 1280, 720
			cfg.Origin = linkage.Point{X: 640, Y: 360}
			cfg.MaxFrames = 2
			cfg.Closure.Enabled = false

			var states []sim.RunState
			a := newAnimator(cfg, sim.FixedChain{{Radius: 100, Speed: s1}, {Radius: 50, Speed: s2}})
			log := &frameLog{hook: func(sim.FrameInfo) { states = append(states, a.State()) }}
			a.AddObserver(log)

			_, err := a.Run(context.Background(), sink)
			Expect(err).NotTo(HaveOccurred())

			Expect(log.frames[0].Point).To(Equal(linkage.Point{X: 790, Y: 360}))
			Expect(states[0].Prev).To(Equal(linkage.Point{X: 790, Y: 360}))
			Expect(states[0].Chain[0].Angle).To(Equal(s1))
			Expect(states[0].Chain[1].Angle).To(Equal(s2))

			x1 := 640 + int(math.Cos(s1)*100)
			y1 := 360 + int(math.Sin(s1)*100)
			want := linkage.Point{X: x1 + int(math.Cos(s2)*50), Y: y1 + int(math.Sin(s2)*50)}
			Expect(log.frames[1].Point).To(Equal(want))
			Expect(log.frames[1].Prev).To(Equal(linkage.Point{X: 790, Y: 360}))
		})
	})

	Describe("layered compositing", func() {
		It("overlays the arms on the trace by multiplication", func() {
			cfg := smallConfig()
			cfg.MaxFrames = 20
			cfg.Composite = raster.Multiply
			cfg.Closure.Enabled = false

			a := newAnimator(cfg, sim.FixedChain{{Radius: 60, Speed: 0.05}})
			_, err := a.Run(context.Background(), sink)
			Expect(err).NotTo(HaveOccurred())

			black := color.RGBA{A: 255}
			Expect(sink.last.RGBAAt(100, 100)).To(Equal(black), "joint at the origin")
			Expect(a.Trace().At(100, 100)).To(Equal(raster.White), "trace never passes the origin")
		})

		DescribeTable("arm strokes follow the anti-alias setting",
			func(aa bool, wantGrey bool) {
				cfg := smallConfig()
				cfg.MaxFrames = 1
				cfg.Composite = raster.Multiply
				cfg.AntiAlias = aa
				cfg.ArmColor = color.RGBA{A: 255}
				cfg.ArmWidth = 3
				cfg.JointRadius = 4

				a := newAnimator(cfg, sim.FixedChain{{Angle: 0.7, Radius: 60}})
				_, err := a.Run(context.Background(), sink)
				Expect(err).NotTo(HaveOccurred())

				grey, black := 0, 0
				pix := sink.last.Pix
				for i := 0; i < len(pix); i += 4 {
					switch pix[i] {
					case 0:
						black++
					case 255:
					default:
						grey++
					}
				}
				Expect(black).To(BeNumerically(">", 60), "the arm is drawn")
				if wantGrey {
					Expect(grey).To(BeNumerically(">", 0))
				} else {
					Expect(grey).To(BeZero(), "hard edges only")
				}
			},
			Entry("hard", false, false),
			Entry("smooth", true, true),
		)
	})
})
