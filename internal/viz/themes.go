package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/aquarium/internal/todo"
)

// Theme defines the viewer palette.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Low       lipgloss.Color
	Medium    lipgloss.Color
	High      lipgloss.Color
	Done      lipgloss.Color
}

var (
	ThemeOcean = Theme{
		Name:      "ocean",
		Primary:   lipgloss.Color("#00a8cc"),
		Secondary: lipgloss.Color("#0077be"),
		Accent:    lipgloss.Color("#ffd700"),
		Text:      lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#4488aa"),
		Low:       lipgloss.Color("#4fc3f7"),
		Medium:    lipgloss.Color("#ffb74d"),
		High:      lipgloss.Color("#ef5350"),
		Done:      lipgloss.Color("#607d8b"),
	}

	ThemeReef = Theme{
		Name:      "reef",
		Primary:   lipgloss.Color("#ff6b6b"),
		Secondary: lipgloss.Color("#feca57"),
		Accent:    lipgloss.Color("#ff9ff3"),
		Text:      lipgloss.Color("#fff5f5"),
		Muted:     lipgloss.Color("#8b6b8c"),
		Low:       lipgloss.Color("#5fd068"),
		Medium:    lipgloss.Color("#feca57"),
		High:      lipgloss.Color("#ff4757"),
		Done:      lipgloss.Color("#8b6b8c"),
	}

	ThemeMinimal = Theme{
		Name:      "minimal",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#cccccc"),
		Accent:    lipgloss.Color("#0088ff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#888888"),
		Low:       lipgloss.Color("#aaaaaa"),
		Medium:    lipgloss.Color("#dddddd"),
		High:      lipgloss.Color("#ffffff"),
		Done:      lipgloss.Color("#555555"),
	}

	CurrentTheme = ThemeOcean

	Themes = []Theme{
		ThemeOcean,
		ThemeReef,
		ThemeMinimal,
	}
)

func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeOcean
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return
		}
	}
	CurrentTheme = Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// ItemColor picks the colour of an item's row in the side panel.
func (t Theme) ItemColor(it todo.Item) lipgloss.Color {
	if it.Completed {
		return t.Done
	}
	switch it.Priority {
	case todo.Low:
		return t.Low
	case todo.High:
		return t.High
	}
	return t.Medium
}
