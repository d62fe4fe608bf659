package output

import "github.com/charmbracelet/lipgloss"

var (
	// PrimaryColor is the heading color.
	PrimaryColor = lipgloss.Color("#4A90D9")
	// SuccessColor marks solvent outcomes.
	SuccessColor = lipgloss.Color("#4ECDC4")
	// WarningColor marks insolvency.
	WarningColor = lipgloss.Color("#FFE66D")
	// SubtleColor is used for secondary text.
	SubtleColor = lipgloss.Color("#666666")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(0, 1)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(lipgloss.Color("#333"))
)

const (
	successIcon = "✓"
	warningIcon = "⚠"
)

func formatSuccess(message string) string {
	return SuccessStyle.Render(successIcon + " " + message)
}

func formatWarning(message string) string {
	return WarningStyle.Render(warningIcon + " " + message)
}
