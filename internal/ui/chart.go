package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/BaptisteVlt/astrology-generator/internal/state"
	"github.com/BaptisteVlt/astrology-generator/internal/zodiac"
)

// Styles for the chart view
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	unavailableStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("244"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// elementColors tints signs by element: fire, earth, air, water.
var elementColors = [...]lipgloss.Color{"203", "107", "222", "74"}

// ChartModel shows the signs, lunar phase and aspects of one day.
type ChartModel struct {
	width    int
	height   int
	cursor   int
	snapshot state.Snapshot
}

// NewChartModel creates a new chart model.
func NewChartModel() ChartModel {
	return ChartModel{}
}

// SetSize updates the viewport size.
func (m ChartModel) SetSize(width, height int) ChartModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with new data.
func (m ChartModel) UpdateData(snapshot state.Snapshot) ChartModel {
	m.snapshot = snapshot
	if n := m.aspectCount(); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	return m
}

func (m ChartModel) aspectCount() int {
	if m.snapshot.Record == nil {
		return 0
	}
	return len(m.snapshot.Record.Aspects)
}

// Update handles messages.
func (m ChartModel) Update(msg tea.Msg) (ChartModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		n := m.aspectCount()
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < n-1 {
				m.cursor++
			}
		case "home":
			m.cursor = 0
		case "end":
			if n > 0 {
				m.cursor = n - 1
			}
		}
	}
	return m, nil
}

// View renders the chart.
func (m ChartModel) View() string {
	var b strings.Builder

	rec := m.snapshot.Record
	if rec == nil {
		if m.snapshot.LastError != nil {
			b.WriteString(errorStyle.Render("Error: " + m.snapshot.LastError.Error()))
			b.WriteString("\n")
			return b.String()
		}
		b.WriteString("Waiting for positions...\n")
		return b.String()
	}

	b.WriteString(m.renderSigns(*rec))
	b.WriteString("\n")
	b.WriteString(renderPhase(rec.Phase))
	b.WriteString("\n\n")
	b.WriteString(m.renderAspects(*rec))

	return b.String()
}

func (m ChartModel) renderSigns(rec zodiac.FeatureRecord) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Signs"))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-8s %-14s %-18s", "Body", "Sign", "Status")))
	b.WriteString("\n")

	for _, body := range zodiac.Bodies {
		sign := rec.Sign(body)
		if reason, bad := rec.Unavailable[body]; bad {
			row := fmt.Sprintf("  %-8s %-14s %-18s", body, "-", reason)
			b.WriteString(unavailableStyle.Render(row))
			b.WriteString("\n")
			continue
		}
		label := fmt.Sprintf("%s %-12s", signGlyph(sign), sign)
		b.WriteString(rowStyle.Render(fmt.Sprintf("  %-8s ", body)))
		b.WriteString(signStyle(sign).Render(label))
		b.WriteString(rowStyle.Render(fmt.Sprintf(" %-18s", "ok")))
		b.WriteString("\n")
	}
	return b.String()
}

func renderPhase(p zodiac.Phase) string {
	return titleStyle.Render("Lunar Phase") + "  " + phaseGlyph(p) + " " + rowStyle.Render(p.String())
}

func (m ChartModel) renderAspects(rec zodiac.FeatureRecord) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Aspects (%d)", len(rec.Aspects))))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-8s %-12s %-8s %8s", "Body", "Aspect", "Body", "Sep")))
	b.WriteString("\n")

	if len(rec.Aspects) == 0 {
		b.WriteString("  No aspects within orb\n")
		return b.String()
	}

	// Leave room for the signs table and phase line
	maxRows := m.height - len(zodiac.Bodies) - 8
	if maxRows < 3 {
		maxRows = 3
	}

	startIdx := 0
	if m.cursor >= maxRows {
		startIdx = m.cursor - maxRows + 1
	}
	endIdx := min(startIdx+maxRows, len(rec.Aspects))

	for i := startIdx; i < endIdx; i++ {
		e := rec.Aspects[i]
		row := fmt.Sprintf("%-8s %-12s %-8s %7.2f°", e.First, e.Aspect, e.Second, e.Separation)
		if i == m.cursor {
			b.WriteString(selectedRowStyle.Render(row))
		} else {
			b.WriteString(rowStyle.Render(row))
		}
		b.WriteString("\n")
	}

	if len(rec.Aspects) > maxRows {
		b.WriteString(fmt.Sprintf("\n  Showing %d-%d of %d aspects", startIdx+1, endIdx, len(rec.Aspects)))
	}
	return b.String()
}

// SelectedAspect returns the aspect under the cursor, if any.
func (m ChartModel) SelectedAspect() *zodiac.AspectEvent {
	if m.snapshot.Record == nil || m.cursor < 0 || m.cursor >= len(m.snapshot.Record.Aspects) {
		return nil
	}
	e := m.snapshot.Record.Aspects[m.cursor]
	return &e
}

func signStyle(s zodiac.Sign) lipgloss.Style {
	if s == zodiac.SignUnknown {
		return unavailableStyle
	}
	return lipgloss.NewStyle().Foreground(elementColors[(int(s)-1)%len(elementColors)])
}

func signGlyph(s zodiac.Sign) string {
	glyphs := []string{"?", "♈", "♉", "♊", "♋", "♌", "♍", "♎", "♏", "♐", "♑", "♒", "♓"}
	if int(s) < 0 || int(s) >= len(glyphs) {
		return "?"
	}
	return glyphs[s]
}

func phaseGlyph(p zodiac.Phase) string {
	glyphs := []string{"?", "●", "☽", "◐", "◑", "○", "◒", "◓", "☾"}
	if int(p) < 0 || int(p) >= len(glyphs) {
		return "?"
	}
	return glyphs[p]
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
