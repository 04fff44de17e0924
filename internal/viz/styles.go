package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	panel   lipgloss.Style
	title   lipgloss.Style
	art     lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	keyHint lipgloss.Style
	done    lipgloss.Style
	stopped lipgloss.Style
	barHigh lipgloss.Style
	barMid  lipgloss.Style
	barLow  lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Title),
		art: lipgloss.NewStyle().
			Foreground(t.Trace),
		label: lipgloss.NewStyle().
			Foreground(t.Border),
		value: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Value),
		keyHint: lipgloss.NewStyle().
			Foreground(t.Border).
			Italic(true),
		done: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Done),
		stopped: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Busy),
		barHigh: lipgloss.NewStyle().Foreground(t.Done),
		barMid:  lipgloss.NewStyle().Foreground(t.Busy),
		barLow:  lipgloss.NewStyle().Foreground(t.Fail),
	}
}

// Spinner returns the braille spinner glyph for frame.
func Spinner(frame int) string {
	spinners := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return spinners[frame%len(spinners)]
}

// progressBar renders percent in [0, 1] as a bar of width cells.
func (s styles) progressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch {
	case percent > 0.8:
		return s.barHigh.Render(bar)
	case percent > 0.4:
		return s.barMid.Render(bar)
	}
	return s.barLow.Render(bar)
}
