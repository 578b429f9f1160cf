package ui

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Name      string
	Accent    lipgloss.Style
	Dim       lipgloss.Style
	Text      lipgloss.Style
	Title     lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Border    lipgloss.Style
	Highlight lipgloss.Style
}

// themeRegistry maps theme names to constructors.
var themeRegistry = map[string]func(bool) Theme{
	"midnight": Midnight,
	"mono":     Monochrome,
	"neon":     Neon,
	"nocolor":  NoColor,
}

// ThemeNames returns the list of available theme names.
func ThemeNames() []string {
	return []string{"midnight", "mono", "neon", "nocolor"}
}

// GetTheme returns a theme by name. Returns Midnight if name not found.
func GetTheme(name string, noColor bool) Theme {
	// NO_COLOR environment variable overrides theme selection
	if noColor {
		return NoColor(noColor)
	}
	if fn, ok := themeRegistry[name]; ok {
		return fn(noColor)
	}
	return Midnight(noColor)
}

// ValidTheme returns true if the theme name is valid.
func ValidTheme(name string) bool {
	_, ok := themeRegistry[name]
	return ok
}

// Midnight is the default theme, deep blues with a violet accent.
func Midnight(noColor bool) Theme {
	if noColor {
		return NoColor(noColor)
	}
	return Theme{
		Name:      "midnight",
		Accent:    lipgloss.NewStyle().Foreground(lipgloss.Color("#AD61FF")),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("#4E5166")),
		Text:      lipgloss.NewStyle().Foreground(lipgloss.Color("#D6D9F2")),
		Title:     lipgloss.NewStyle().Foreground(lipgloss.Color("#7AA8FF")).Bold(true),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F56")).Bold(true),
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("#57E38A")).Bold(true),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD166")).Bold(true),
		Border:    lipgloss.NewStyle().Foreground(lipgloss.Color("#5C63B0")),
		Highlight: lipgloss.NewStyle().Foreground(lipgloss.Color("#C792EA")).Bold(true),
	}
}

// Monochrome is a grayscale theme using white, gray, and dark gray.
func Monochrome(noColor bool) Theme {
	if noColor {
		return NoColor(noColor)
	}
	return Theme{
		Name:      "mono",
		Accent:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
		Text:      lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC")),
		Title:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true).Underline(true),
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC")).Bold(true),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).Bold(true),
		Border:    lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		Highlight: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true).Underline(true),
	}
}

// Neon is a loud magenta/cyan theme.
func Neon(noColor bool) Theme {
	if noColor {
		return NoColor(noColor)
	}
	magenta := lipgloss.Color("#FF2EC8")
	cyan := lipgloss.Color("#2EF4FF")
	dimPurple := lipgloss.Color("#6B2E82")

	return Theme{
		Name:      "neon",
		Accent:    lipgloss.NewStyle().Foreground(magenta).Bold(true),
		Dim:       lipgloss.NewStyle().Foreground(dimPurple),
		Text:      lipgloss.NewStyle().Foreground(lipgloss.Color("#E8E8FF")),
		Title:     lipgloss.NewStyle().Foreground(cyan).Bold(true),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4040")).Bold(true),
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("#40FFA0")).Bold(true),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE640")).Bold(true),
		Border:    lipgloss.NewStyle().Foreground(magenta),
		Highlight: lipgloss.NewStyle().Foreground(cyan).Bold(true).Underline(true),
	}
}

// NoColor is a high-contrast theme for NO_COLOR environments.
// Uses only bold, underline, and reverse instead of colors.
func NoColor(_ bool) Theme {
	reset := lipgloss.NewStyle()
	return Theme{
		Name:      "nocolor",
		Accent:    reset.Bold(true),
		Dim:       reset,
		Text:      reset,
		Title:     reset.Bold(true),
		Error:     reset.Bold(true),
		Success:   reset.Bold(true),
		Warning:   reset.Bold(true),
		Border:    reset,
		Highlight: reset.Reverse(true),
	}
}
