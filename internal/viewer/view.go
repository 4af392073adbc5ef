package viewer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aacsoares/product-damage-detection-ui/internal/session"
	"github.com/aacsoares/product-damage-detection-ui/internal/vision"
)

const panelWidth = 34

// View implements tea.Model. All geometry derives from the current
// terminal size, so every resize (and every image decode) recomputes
// the overlay mapping on the next frame.
func (m Model) View() string {
	width, height := m.width, m.height
	if width == 0 {
		width = 100
	}
	if height == 0 {
		height = 30
	}

	canvasW := width - panelWidth - 8
	if canvasW < 20 {
		canvasW = 20
	}
	canvasH := height - 7
	if canvasH < 5 {
		canvasH = 5
	}

	name := m.state.Image.Name
	if name == "" {
		name = "(no photo)"
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		m.theme.title.Render("product damage viewer"),
		"  ",
		m.theme.label.Render(name),
	)

	canvas := m.theme.border.Render(renderCanvas(m.img, m.state, canvasW, canvasH))
	panel := m.theme.border.Width(panelWidth).Render(m.renderPanel(canvasH))
	mid := lipgloss.JoinHorizontal(lipgloss.Top, canvas, panel)

	var status string
	switch {
	case m.prompting:
		status = "open: " + m.pathInput.View()
	case m.state.Loading:
		status = m.theme.loading.Render("analyzing photo...")
	case m.state.Err != "":
		status = m.theme.errText.Render(m.state.Err)
	case m.note != "":
		status = m.theme.label.Render(m.note)
	default:
		status = " "
	}

	help := m.theme.footer.Render(
		"j/k hover • enter select • c/n sort • v view • o open • s snapshot • q quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, mid, status, help)
}

// renderPanel renders the detection list in the current sort order and
// view mode. Rows carry the three-tier emphasis: selected beats
// hovered beats default.
func (m Model) renderPanel(maxRows int) string {
	var sb strings.Builder

	sortLabel := "confidence"
	if m.state.Sort == session.SortByName {
		sortLabel = "name"
	}
	viewLabel := "list"
	if m.state.View == session.ViewGrid {
		viewLabel = "grid"
	}
	sb.WriteString(m.theme.title.Render(
		fmt.Sprintf("detections (%d)", len(m.state.Predictions))))
	sb.WriteString("\n")
	sb.WriteString(m.theme.label.Render("sort: " + sortLabel + " • view: " + viewLabel))
	sb.WriteString("\n\n")

	order := m.state.SortedIndices()
	if len(order) == 0 {
		sb.WriteString(m.theme.label.Render("(no detections)"))
		return sb.String()
	}

	if m.state.View == session.ViewGrid {
		sb.WriteString(m.renderGrid(order))
	} else {
		sb.WriteString(m.renderList(order, maxRows))
	}
	return sb.String()
}

func (m Model) renderList(order []int, maxRows int) string {
	var sb strings.Builder
	for row, idx := range order {
		if row >= maxRows-4 && maxRows > 4 {
			sb.WriteString(m.theme.label.Render(
				fmt.Sprintf("… %d more", len(order)-row)))
			break
		}

		p := m.state.Predictions[idx]
		badge := lipgloss.NewStyle().
			Foreground(tierColor(vision.TierFor(p.Probability))).
			Render("●")
		line := fmt.Sprintf(" %-14s %4.0f%% %s",
			p.TagName, p.Probability*100, vision.TierFor(p.Probability))

		sb.WriteString(badge)
		sb.WriteString(m.rowStyle(idx).Render(line))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) renderGrid(order []int) string {
	chips := make([]string, 0, len(order))
	for _, idx := range order {
		p := m.state.Predictions[idx]
		badge := lipgloss.NewStyle().
			Foreground(tierColor(vision.TierFor(p.Probability))).
			Render("●")
		chip := badge + m.rowStyle(idx).Render(
			fmt.Sprintf(" %s %.0f%%", p.TagName, p.Probability*100))
		chips = append(chips, chip)
	}

	var sb strings.Builder
	for i := 0; i < len(chips); i += 2 {
		sb.WriteString(chips[i])
		if i+1 < len(chips) {
			sb.WriteString("  ")
			sb.WriteString(chips[i+1])
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) rowStyle(idx int) lipgloss.Style {
	switch m.state.EmphasisFor(idx) {
	case session.EmphasisSelected:
		return m.theme.rowSelected
	case session.EmphasisHovered:
		return m.theme.rowHovered
	}
	return m.theme.row
}
