package tui

import "github.com/charmbracelet/lipgloss"

// Color palette matching the fatih/color output of the non-interactive
// commands.
var (
	ColorCyan   = lipgloss.AdaptiveColor{Light: "#00AFAF", Dark: "#00D7D7"}
	ColorWhite  = lipgloss.AdaptiveColor{Light: "#262626", Dark: "#FFFFFF"}
	ColorGray   = lipgloss.AdaptiveColor{Light: "#767676", Dark: "#808080"}
	ColorYellow = lipgloss.AdaptiveColor{Light: "#D7AF00", Dark: "#FFD700"}
)

var (
	// StyleHeader is for section headers.
	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Bold(true)

	// StyleHelp is for help text and hints.
	StyleHelp = lipgloss.NewStyle().Foreground(ColorGray)

	// StyleShelf marks shelf rows in the browser.
	StyleShelf = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	// StyleTag is for shelf tags on book rows.
	StyleTag = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleNew marks books acquired during this session.
	StyleNew = lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)

	// StyleBorder frames the browser.
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray)
)
