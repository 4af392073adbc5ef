package viewer

import "github.com/charmbracelet/lipgloss"

// Theme groups the lipgloss styles used by the viewer.
type Theme struct {
	border      lipgloss.Style
	title       lipgloss.Style
	label       lipgloss.Style
	row         lipgloss.Style
	rowHovered  lipgloss.Style
	rowSelected lipgloss.Style
	errText     lipgloss.Style
	loading     lipgloss.Style
	footer      lipgloss.Style
}

// Tier colors, shared between the list badges and the canvas boxes.
const (
	colorHigh   = lipgloss.Color("#48F90A")
	colorMedium = lipgloss.Color("#FFB21D")
	colorLow    = lipgloss.Color("#FF3838")
)

func defaultTheme() Theme {
	b := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	return Theme{
		border:      b.BorderForeground(lipgloss.Color("63")),
		title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81")),
		label:       lipgloss.NewStyle().Faint(true),
		row:         lipgloss.NewStyle(),
		rowHovered:  lipgloss.NewStyle().Bold(true),
		rowSelected: lipgloss.NewStyle().Bold(true).Reverse(true),
		errText:     lipgloss.NewStyle().Foreground(colorLow).Bold(true),
		loading:     lipgloss.NewStyle().Foreground(lipgloss.Color("219")),
		footer:      lipgloss.NewStyle().Faint(true),
	}
}
