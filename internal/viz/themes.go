package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the monitor. The palettes follow common field colour maps
// so the terminal view reads like a post-processor plot.
type Theme struct {
	Name string
	// Primary frames panels and headers.
	Primary lipgloss.Color
	// Accent marks the nuTilda profile and progress.
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

// Themes in the order the T key cycles through them.
var Themes = []Theme{
	{
		Name:    "coolwarm",
		Primary: "#3b4cc0",
		Accent:  "#b40426",
		Text:    "#dddddd",
		Muted:   "#7b9ff9",
		Success: "#8db0fe",
		Warning: "#f49a7b",
		Error:   "#b40426",
	},
	{
		Name:    "viridis",
		Primary: "#31688e",
		Accent:  "#fde725",
		Text:    "#e5e5e5",
		Muted:   "#440154",
		Success: "#35b779",
		Warning: "#fde725",
		Error:   "#d1495b",
	},
	{
		Name:    "mono",
		Primary: "#d0d0d0",
		Accent:  "#ffffff",
		Text:    "#c0c0c0",
		Muted:   "#6c6c6c",
		Success: "#ffffff",
		Warning: "#a8a8a8",
		Error:   "#ffffff",
	},
}

// CurrentTheme is the palette the styles read.
var CurrentTheme = Themes[0]

// GetTheme returns the named theme, or the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
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
