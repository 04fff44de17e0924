package viz

import (
	"errors"
	"image"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/spirograph/internal/sim"
)

func TestModelQuitStops(t *testing.T) {
	stopped := false
	m := NewModel("kaleidoscope", 100, ThemeNeon, func() { stopped = true })

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if !stopped {
		t.Error("q should request a stop")
	}
	if cmd == nil {
		t.Error("q should quit the program")
	}
	if !strings.Contains(next.View(), "stopping") {
		t.Error("view should show the stop state")
	}
}

func TestModelFrames(t *testing.T) {
	m := NewModel("rainbow", 10, ThemeNeon, nil)
	next, _ := m.Update(frameMsg{frame: 4, pattern: 2, art: "⣿⣿\n"})
	view := next.View()

	if !strings.Contains(view, "5/10") {
		t.Errorf("expected frame counter in view:\n%s", view)
	}
	if !strings.Contains(view, "pattern 3") {
		t.Errorf("expected pattern counter in view:\n%s", view)
	}
	if !strings.Contains(view, "⣿⣿") {
		t.Error("expected art in view")
	}

	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	if next.(Model).theme.Name == ThemeNeon.Name {
		t.Error("t should switch theme")
	}

	next, cmd := next.Update(doneMsg{err: errors.New("disk full")})
	if cmd == nil {
		t.Error("done should quit")
	}
	if !strings.Contains(next.View(), "disk full") {
		t.Error("view should report the failure")
	}
}

func TestPreviewThrottle(t *testing.T) {
	p := NewPreview(PreviewOptions{Cols: 4, Rows: 2, FPS: 0.001})
	if p.Cancelled() {
		t.Fatal("fresh preview must not be cancelled")
	}

	// first call consumes the burst, second is dropped before touching the program
	if !p.limiter.Allow() {
		t.Fatal("expected an initial token")
	}
	p.Show(1, image.NewRGBA(image.Rect(0, 0, 8, 8)))

	p.Stop()
	if !p.Cancelled() {
		t.Error("Stop should set the cancel flag")
	}
}

func TestPreviewTracksPattern(t *testing.T) {
	p := NewPreview(PreviewOptions{Cols: 4, Rows: 2})
	var _ sim.Observer = p

	p.OnFrame(sim.FrameInfo{Index: 40, Pattern: 3})
	if got := p.pattern.Load(); got != 3 {
		t.Errorf("expected pattern 3, got %d", got)
	}
	p.OnFrame(sim.FrameInfo{Index: 41, Pattern: 0})
	if got := p.pattern.Load(); got != 0 {
		t.Errorf("expected pattern reset to 0, got %d", got)
	}
}
