package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/verte-zerg/omrsheet/internal/model"
	"github.com/verte-zerg/omrsheet/internal/preview"
)

const (
	maxContentWidth = 72
	minContentWidth = 20
)

var (
	titleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	labelStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	focusLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	valueStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	warningStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0A030"))
	footerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	readyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	spinnerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cardStyle       = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	alertStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true)
)

var severityColors = map[model.Severity]lipgloss.Color{
	model.SeveritySuccess: lipgloss.Color("#52C41A"),
	model.SeverityInfo:    lipgloss.Color("#40A9FF"),
	model.SeverityWarning: lipgloss.Color("#E0A030"),
	model.SeverityDanger:  lipgloss.Color("#FF4D4F"),
	model.SeverityError:   lipgloss.Color("#FF4D4F"),
}

var severityIcons = map[model.Severity]string{
	model.SeveritySuccess: "✔",
	model.SeverityError:   "▲",
	model.SeverityWarning: "!",
	model.SeverityInfo:    "i",
	model.SeverityDanger:  "✖",
}

// View implements tea.Model.
func (m *Model) View() string {
	width := m.contentWidth()
	sections := []string{titleStyle.Render("OMR Sheet Generator")}
	if alert, ok := m.engine.Alert(); ok {
		sections = append(sections, m.renderAlert(alert, width))
	}
	sections = append(sections, m.renderForm(), m.renderPresets())
	if card := renderPreview(m.engine.Preview(), width); card != "" {
		sections = append(sections, card)
	}
	sections = append(sections, m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) contentWidth() int {
	width := m.width - 4
	if m.width == 0 || width > maxContentWidth {
		width = maxContentWidth
	}
	if width < minContentWidth {
		width = minContentWidth
	}
	return width
}

func (m *Model) renderAlert(alert model.Alert, width int) string {
	color, ok := severityColors[alert.Severity]
	if !ok {
		color = severityColors[model.SeverityInfo]
	}
	icon, ok := severityIcons[alert.Severity]
	if !ok {
		icon = severityIcons[model.SeverityInfo]
	}
	text := wrapText(preview.Text(alert.Text), width-8)
	body := fmt.Sprintf("%s %s", icon, text)
	if alert.Remaining > 0 {
		body += footerStyle.Render(fmt.Sprintf("  %ds", alert.Remaining))
	}
	style := alertStyle.BorderForeground(color).Foreground(color).Width(width)
	if alert.Opacity < 1 {
		style = style.Faint(true)
	}
	shift := alertShift(alert.Offset, m.cellWidth, width)
	if shift > 0 {
		style = style.MarginLeft(shift)
	}
	rendered := style.Render(body)
	if shift < 0 {
		rendered = slideLeft(rendered, -shift)
	}
	return rendered
}

// alertShift converts a swipe offset in pixels to whole columns, keeping at
// least one column of the alert on screen.
func alertShift(offset, cellWidth, width int) int {
	cols := offset / cellWidth
	if limit := width - 1; cols > limit {
		cols = limit
	} else if cols < -limit {
		cols = -limit
	}
	return cols
}

// slideLeft drops the first n columns of every line, moving the block past
// the left edge.
func slideLeft(block string, n int) string {
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		lines[i] = ansi.TruncateLeft(line, n, "")
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderForm() string {
	rows := make([]string, 0, len(formFields)*2)
	for i, f := range formFields {
		style := labelStyle
		if i == m.focus {
			style = focusLabelStyle
		}
		rows = append(rows, style.Render(f.label), m.inputs[i].View())
	}
	return strings.Join(rows, "\n")
}

func (m *Model) renderPresets() string {
	presets := m.engine.Presets()
	parts := make([]string, 0, len(presets))
	for i, p := range presets {
		if i >= 9 {
			break
		}
		parts = append(parts, fmt.Sprintf("alt+%d %s", i+1, p.ID))
	}
	return footerStyle.Render("Templates: " + strings.Join(parts, " · "))
}

func renderPreview(p *model.Preview, width int) string {
	if p == nil {
		return ""
	}
	lines := preview.Lines(p)
	rows := make([]string, 0, len(lines)+2)
	for _, line := range lines {
		rows = append(rows, labelStyle.Render(line.Label+": ")+valueStyle.Render(line.Value))
		if line.Warning != "" {
			rows = append(rows, warningStyle.Render("⚠ "+line.Warning))
		}
	}
	rows = append(rows, renderProgress(p.Progress))
	return cardStyle.Width(width).Render(titleStyle.Render("Preview") + "\n" + strings.Join(rows, "\n"))
}

func renderProgress(p model.Progress) string {
	text := fmt.Sprintf("Progress %d/%d (%d%%)", p.Completed, p.Total, p.Percent)
	if p.Ready {
		return readyStyle.Render(text + " · ready")
	}
	return footerStyle.Render(text)
}

func (m *Model) renderFooter() string {
	if m.engine.Submitting() {
		return m.spinner.View() + " " + footerStyle.Render("Generating PDF...")
	}
	segments := []string{"enter generate", "tab next", "esc dismiss", "ctrl+c quit"}
	if m.touch {
		segments = append(segments, "drag alert to dismiss")
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
