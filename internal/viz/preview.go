package viz

import (
	"context"
	"fmt"
	"image"
	"io"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"

	"github.com/san-kum/spirograph/internal/sim"
)

const DefaultThreshold = 200

type frameMsg struct {
	frame   int
	pattern int
	art     string
}

type doneMsg struct{ err error }

// Model is the Bubble Tea model of the preview.
type Model struct {
	title     string
	maxFrames int
	theme     Theme
	styles    styles
	frame     int
	pattern   int
	art       string
	finished  bool
	stopped   bool
	err       error
	onStop    func()
}

func NewModel(title string, maxFrames int, theme Theme, onStop func()) Model {
	return Model{
		title:     title,
		maxFrames: maxFrames,
		theme:     theme,
		styles:    newStyles(theme),
		onStop:    onStop,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.stopped = true
			if m.onStop != nil {
				m.onStop()
			}
			return m, tea.Quit
		case "t":
			m.theme = nextTheme(m.theme)
			m.styles = newStyles(m.theme)
		}
	case frameMsg:
		m.frame = msg.frame
		m.pattern = msg.pattern
		m.art = msg.art
	case doneMsg:
		m.finished = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	s := m.styles
	var b strings.Builder

	b.WriteString(s.title.Render(m.title))
	b.WriteString("  ")
	switch {
	case m.err != nil:
		b.WriteString(s.stopped.Render("failed: " + m.err.Error()))
	case m.finished:
		b.WriteString(s.done.Render("done"))
	case m.stopped:
		b.WriteString(s.stopped.Render("stopping"))
	default:
		b.WriteString(Spinner(m.frame))
	}
	b.WriteString("\n")

	art := m.art
	if art == "" {
		art = "waiting for first frame"
	}
	b.WriteString(s.panel.Render(s.art.Render(strings.TrimRight(art, "\n"))))
	b.WriteString("\n")

	b.WriteString(s.label.Render("frame "))
	b.WriteString(s.value.Render(fmt.Sprintf("%d/%d", m.frame+1, m.maxFrames)))
	b.WriteString(" ")
	if m.maxFrames > 0 {
		b.WriteString(s.progressBar(float64(m.frame+1)/float64(m.maxFrames), 30))
	}
	b.WriteString("  ")
	b.WriteString(s.label.Render("pattern "))
	b.WriteString(s.value.Render(fmt.Sprintf("%d", m.pattern+1)))
	b.WriteString("\n")
	b.WriteString(s.keyHint.Render("q stop  t theme"))
	b.WriteString("\n")
	return b.String()
}

// PreviewOptions sizes the preview in terminal cells.
type PreviewOptions struct {
	Title     string
	Cols      int
	Rows      int
	MaxFrames int
	Theme     string
	// FPS caps how often frames are rasterized into the terminal.
	FPS       float64
	Threshold uint8
	Output    io.Writer
	Input     io.Reader
}

// Preview shows frames in the terminal and reports a stop request. Show,
// OnFrame and Cancelled are safe to call from the animation goroutine.
type Preview struct {
	opts      PreviewOptions
	canvas    *Canvas
	limiter   *rate.Limiter
	prog      *tea.Program
	cancelled atomic.Bool
	pattern   atomic.Int64
}

func NewPreview(opts PreviewOptions) *Preview {
	if opts.Cols <= 0 {
		opts.Cols = 80
	}
	if opts.Rows <= 0 {
		opts.Rows = 24
	}
	if opts.FPS <= 0 {
		opts.FPS = 15
	}
	if opts.Threshold == 0 {
		opts.Threshold = DefaultThreshold
	}

	p := &Preview{
		opts:    opts,
		canvas:  NewCanvas(opts.Cols, opts.Rows),
		limiter: rate.NewLimiter(rate.Limit(opts.FPS), 1),
	}

	var progOpts []tea.ProgramOption
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	model := NewModel(opts.Title, opts.MaxFrames, GetTheme(opts.Theme), p.Stop)
	p.prog = tea.NewProgram(model, progOpts...)
	return p
}

// Show rasterizes img unless the refresh budget is spent.
func (p *Preview) Show(frame int, img *image.RGBA) {
	if !p.limiter.Allow() {
		return
	}
	p.canvas.Plot(img, p.opts.Threshold)
	p.prog.Send(frameMsg{frame: frame, pattern: int(p.pattern.Load()), art: p.canvas.String()})
}

// OnFrame tracks which sub-pattern is being drawn.
func (p *Preview) OnFrame(f sim.FrameInfo) { p.pattern.Store(int64(f.Pattern)) }

func (p *Preview) Cancelled() bool { return p.cancelled.Load() }

// Stop requests the animation to end at its next cancel poll.
func (p *Preview) Stop() { p.cancelled.Store(true) }

// Run drives the terminal UI while work renders. It returns work's error once
// both have finished.
func (p *Preview) Run(ctx context.Context, work func(ctx context.Context) error) error {
	errc := make(chan error, 1)
	go func() {
		err := work(ctx)
		p.prog.Send(doneMsg{err: err})
		errc <- err
	}()

	if _, err := p.prog.Run(); err != nil {
		p.Stop()
		werr := <-errc
		if werr != nil {
			return werr
		}
		return fmt.Errorf("preview: %w", err)
	}
	return <-errc
}
