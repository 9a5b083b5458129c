package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/BaptisteVlt/astrology-generator/internal/state"
)

var eventStyles = map[state.EventType]lipgloss.Style{
	state.EventSignChange:      lipgloss.NewStyle().Foreground(lipgloss.Color("222")),
	state.EventPhaseChange:     lipgloss.NewStyle().Foreground(lipgloss.Color("189")),
	state.EventAspectFormed:    lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
	state.EventAspectSeparated: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
}

// EventsModel lists the changes seen while stepping through days, newest
// first.
type EventsModel struct {
	width    int
	height   int
	offset   int
	snapshot state.Snapshot
}

// NewEventsModel creates a new events model.
func NewEventsModel() EventsModel {
	return EventsModel{}
}

// SetSize updates the viewport size.
func (m EventsModel) SetSize(width, height int) EventsModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with new data.
func (m EventsModel) UpdateData(snapshot state.Snapshot) EventsModel {
	m.snapshot = snapshot
	if m.offset >= len(snapshot.Events) {
		m.offset = max(len(snapshot.Events)-1, 0)
	}
	return m
}

// Update handles messages.
func (m EventsModel) Update(msg tea.Msg) (EventsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			if m.offset > 0 {
				m.offset--
			}
		case "down", "j":
			if m.offset < len(m.snapshot.Events)-1 {
				m.offset++
			}
		}
	}
	return m, nil
}

// View renders the event log.
func (m EventsModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Events (%d)", len(m.snapshot.Events))))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-10s %-16s %-40s", "Date", "Type", "Detail")))
	b.WriteString("\n")

	events := m.snapshot.Events
	if len(events) == 0 {
		b.WriteString("  No changes yet. Step through days with ←/→.\n")
		return b.String()
	}

	maxRows := m.height - 4
	if maxRows < 5 {
		maxRows = 5
	}

	shown := 0
	for i := len(events) - 1 - m.offset; i >= 0 && shown < maxRows; i-- {
		e := events[i]
		style, ok := eventStyles[e.Type]
		if !ok {
			style = rowStyle
		}
		row := fmt.Sprintf("%-10s %-16s %-40s", e.Date.Format("2006-01-02"), e.Type, truncate(e.Detail, 40))
		b.WriteString("  " + style.Render(row))
		b.WriteString("\n")
		shown++
	}
	return b.String()
}
