package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Base colors
	colorFg        = lipgloss.Color("#a9b1d6")
	colorBorder    = lipgloss.Color("#3b4261")
	colorAccent    = lipgloss.Color("#7aa2f7")
	colorGreen     = lipgloss.Color("#9ece6a")
	colorYellow    = lipgloss.Color("#e0af68")
	colorRed       = lipgloss.Color("#f7768e")
	colorDim       = lipgloss.Color("#565f89")
	colorTitle     = lipgloss.Color("#c0caf5")
	colorStatusBar = lipgloss.Color("#24283b")

	// Panel styles
	panelBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	activePanelBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorAccent)

	// Splitter being dragged
	draggingPanelBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorYellow)

	// Text styles
	titleStyle = lipgloss.NewStyle().
			Foreground(colorTitle).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	accentStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	// Status colors
	statusOK       = lipgloss.NewStyle().Foreground(colorGreen)
	statusThinking = lipgloss.NewStyle().Foreground(colorYellow)
	statusFailed   = lipgloss.NewStyle().Foreground(colorRed)

	// Status bar
	statusBarStyle = lipgloss.NewStyle().
			Background(colorStatusBar).
			Foreground(colorFg).
			Padding(0, 1)

	// Selected item
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#3b82f6")).
			Bold(true)

	// Tab styles
	activeTabStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true).
			Underline(true).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorDim).
				Padding(0, 1)

	// Login card
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(1, 3)
)

// entryStyle colors a transcript label by its kind.
func entryStyle(kind string) lipgloss.Style {
	switch kind {
	case "You":
		return accentStyle
	case "Assistant":
		return statusOK.Bold(true)
	case "Error":
		return statusFailed.Bold(true)
	default:
		return dimStyle
	}
}

// loadingIndicator is filled while a request is pending.
func loadingIndicator(loading bool) string {
	if loading {
		return statusThinking.Render("●")
	}
	return dimStyle.Render("○")
}
