package viz

import "github.com/charmbracelet/lipgloss"

// Theme colors the preview. Trace is the color of the braille drawing.
type Theme struct {
	Name   string
	Trace  lipgloss.Color
	Title  lipgloss.Color
	Value  lipgloss.Color
	Border lipgloss.Color
	Done   lipgloss.Color
	Busy   lipgloss.Color
	Fail   lipgloss.Color
}

var (
	ThemeNeon = Theme{
		Name:   "neon",
		Trace:  lipgloss.Color("#ff4fd8"),
		Title:  lipgloss.Color("#3ee6ff"),
		Value:  lipgloss.Color("#f4ff5a"),
		Border: lipgloss.Color("#5c5c70"),
		Done:   lipgloss.Color("#4dff88"),
		Busy:   lipgloss.Color("#ffa53d"),
		Fail:   lipgloss.Color("#ff4040"),
	}

	// ThemePaper suits light terminals.
	ThemePaper = Theme{
		Name:   "paper",
		Trace:  lipgloss.Color("#1d1d1d"),
		Title:  lipgloss.Color("#8a3b12"),
		Value:  lipgloss.Color("#1f5fbf"),
		Border: lipgloss.Color("#9a9486"),
		Done:   lipgloss.Color("#2b7a4b"),
		Busy:   lipgloss.Color("#b86e00"),
		Fail:   lipgloss.Color("#a61b1b"),
	}

	ThemeOcean = Theme{
		Name:   "ocean",
		Trace:  lipgloss.Color("#7fd4ff"),
		Title:  lipgloss.Color("#2a9df4"),
		Value:  lipgloss.Color("#ffd166"),
		Border: lipgloss.Color("#2f5d7c"),
		Done:   lipgloss.Color("#06d6a0"),
		Busy:   lipgloss.Color("#f7b267"),
		Fail:   lipgloss.Color("#ef476f"),
	}

	Themes = []Theme{ThemeNeon, ThemePaper, ThemeOcean}
)

// GetTheme falls back to neon for unknown names.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeNeon
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

func nextTheme(cur Theme) Theme {
	for i, t := range Themes {
		if t.Name == cur.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}
