package styles

import "github.com/charmbracelet/lipgloss"

// Colors adapt to light and dark terminals so long chapters stay readable on
// either.
var (
	Primary   = lipgloss.AdaptiveColor{Light: "#8E3B46", Dark: "#E8A87C"}
	Secondary = lipgloss.AdaptiveColor{Light: "#4A5A8C", Dark: "#A3B4E6"}
	Success   = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#A5D6A7"}
	Warning   = lipgloss.AdaptiveColor{Light: "#B26A00", Dark: "#FFD180"}
	Error     = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#EF9A9A"}
	Info      = lipgloss.AdaptiveColor{Light: "#1565C0", Dark: "#90CAF9"}
	Muted     = lipgloss.AdaptiveColor{Light: "#7A7A7A", Dark: "#7D8590"}
	Paper     = lipgloss.AdaptiveColor{Light: "#FBF7EF", Dark: "#1E1E24"}
	Ink       = lipgloss.AdaptiveColor{Light: "#2B2B2B", Dark: "#E6E1D6"}
	TabShade  = lipgloss.AdaptiveColor{Light: "#EDE4D3", Dark: "#2F3340"}
)

var (
	TitleStyle    = lipgloss.NewStyle().Foreground(Primary).Bold(true).MarginBottom(1)
	SubtitleStyle = lipgloss.NewStyle().Foreground(Secondary).Italic(true)
	TextStyle     = lipgloss.NewStyle().Foreground(Ink)
	MutedStyle    = lipgloss.NewStyle().Foreground(Muted)
	CursorStyle   = lipgloss.NewStyle().Foreground(Primary).Bold(true)

	// Novel cards in the library list
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Secondary).
			Padding(0, 2)
	ActiveCardStyle = CardStyle.
			Border(lipgloss.ThickBorder()).
			BorderForeground(Primary)

	StatusActive    = lipgloss.NewStyle().Foreground(Info).Bold(true)
	StatusPaused    = lipgloss.NewStyle().Foreground(Warning).Bold(true)
	StatusCompleted = lipgloss.NewStyle().Foreground(Success).Bold(true)
	StatusError     = lipgloss.NewStyle().Foreground(Error).Bold(true)

	ProgressBarStyle   = lipgloss.NewStyle().Foreground(Primary)
	ProgressEmptyStyle = lipgloss.NewStyle().Foreground(Muted)

	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Background(TabShade).
			Padding(0, 2).
			Bold(true)
	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(Muted).
				Padding(0, 2)

	HelpStyle = lipgloss.NewStyle().Foreground(Muted).Italic(true).MarginTop(1)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Muted).
			Padding(0, 1)
	FocusedInputStyle = InputStyle.BorderForeground(Primary)

	ToastStyle        = lipgloss.NewStyle().Foreground(Paper).Background(Info).Padding(0, 1)
	ToastErrorStyle   = ToastStyle.Background(Error)
	ToastSuccessStyle = ToastStyle.Background(Success)

	OfflineBadge = lipgloss.NewStyle().
			Foreground(Paper).
			Background(Warning).
			Padding(0, 1).
			Bold(true)

	// Chapter text; the width is set per render.
	ReaderStyle = lipgloss.NewStyle().Foreground(Ink).Padding(0, 2)
)

// StatusStyle colours job and novel statuses.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case "active", "ongoing":
		return StatusActive
	case "paused":
		return StatusPaused
	case "completed":
		return StatusCompleted
	case "failed", "cancelled", "stopped":
		return StatusError
	default:
		return MutedStyle
	}
}

func RoleStyle(role string) lipgloss.Style {
	switch role {
	case "admin":
		return StatusError
	case "contributor":
		return StatusPaused
	default:
		return MutedStyle
	}
}
