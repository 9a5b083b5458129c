// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/BaptisteVlt/astrology-generator/internal/state"
	"github.com/BaptisteVlt/astrology-generator/internal/version"
	"github.com/BaptisteVlt/astrology-generator/internal/zodiac"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewChart ViewMode = iota
	ViewWheel
	ViewEvents
)

const viewCount = 3

// SnapshotFunc reads the body positions for a day.
type SnapshotFunc func(ctx context.Context, date time.Time) (zodiac.Snapshot, error)

// Msg types for Bubble Tea
type (
	// AnimTickMsg triggers spinner updates.
	AnimTickMsg time.Time

	// RecordMsg carries the outcome of computing one day.
	RecordMsg struct {
		Date       time.Time
		Record     *zodiac.FeatureRecord
		Longitudes map[zodiac.Body]zodiac.Longitude
		Duration   time.Duration
		Err        error
	}
)

// Model is the root Bubble Tea model.
type Model struct {
	ctx      context.Context
	state    *state.Manager
	snapshot SnapshotFunc
	orb      float64
	now      func() time.Time

	viewMode  ViewMode
	width     int
	height    int
	ready     bool
	computing bool
	animTick  int

	chart  ChartModel
	wheel  WheelModel
	events EventsModel

	view state.Snapshot
}

// New creates a new root UI model. snap runs inside Bubble Tea commands,
// off the update loop.
func New(ctx context.Context, stateMgr *state.Manager, snap SnapshotFunc, orb float64) Model {
	return Model{
		ctx:      ctx,
		state:    stateMgr,
		snapshot: snap,
		orb:      orb,
		now:      time.Now,
		viewMode: ViewChart,
		chart:    NewChartModel(),
		wheel:    NewWheelModel(),
		events:   NewEventsModel(),
		view:     stateMgr.Snapshot(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		animTickCmd(),
		m.computeCmd(m.state.Date()),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "left", "h":
			return m.jump(m.state.Step(-1))
		case "right", "l":
			return m.jump(m.state.Step(1))
		case "t":
			m.state.SetDate(m.now())
			return m.jump(m.state.Date())
		case "r":
			return m.jump(m.state.Date())

		case "1", "c":
			m.viewMode = ViewChart
		case "2", "w":
			m.viewMode = ViewWheel
		case "3", "e":
			m.viewMode = ViewEvents
		case "tab":
			m.viewMode = (m.viewMode + 1) % viewCount

		default:
			return m, m.updateActiveView(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Header takes ~4 lines, footer ~2
		contentHeight := msg.Height - 6
		m.chart = m.chart.SetSize(msg.Width, contentHeight)
		m.wheel = m.wheel.SetSize(msg.Width, contentHeight)
		m.events = m.events.SetSize(msg.Width, contentHeight)

	case AnimTickMsg:
		m.animTick++
		return m, animTickCmd()

	case RecordMsg:
		m.state.Update(msg.Record, msg.Duration, msg.Err)
		if msg.Date.Equal(m.state.Date()) {
			m.computing = false
			if msg.Err == nil {
				m.wheel = m.wheel.SetLongitudes(msg.Date, msg.Longitudes)
			}
		}
		m.refresh()

	default:
		return m, m.updateActiveView(msg)
	}

	return m, nil
}

// jump records that date is being computed and returns the command that
// computes it.
func (m Model) jump(date time.Time) (Model, tea.Cmd) {
	m.computing = true
	m.refresh()
	return m, m.computeCmd(date)
}

func (m *Model) refresh() {
	m.view = m.state.Snapshot()
	m.chart = m.chart.UpdateData(m.view)
	m.wheel = m.wheel.UpdateData(m.view)
	m.events = m.events.UpdateData(m.view)
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewChart:
		m.chart, cmd = m.chart.Update(msg)
	case ViewWheel:
		m.wheel, cmd = m.wheel.Update(msg)
	case ViewEvents:
		m.events, cmd = m.events.Update(msg)
	}
	return cmd
}

func (m Model) computeCmd(date time.Time) tea.Cmd {
	ctx, take, orb := m.ctx, m.snapshot, m.orb
	return func() tea.Msg {
		start := time.Now()
		snap, err := take(ctx, date)
		msg := RecordMsg{Date: date, Duration: time.Since(start), Err: err}
		if err == nil {
			rec := zodiac.Compute(snap, orb)
			msg.Record = &rec
			msg.Longitudes = snap.Longitudes()
		}
		return msg
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewChart:
		content = m.chart.View()
	case ViewWheel:
		content = m.wheel.View()
	case ViewEvents:
		content = m.events.View()
	}

	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(renderGradient("✦ ASTROGEN ✦"))
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render(fmt.Sprintf("  v%s · %s", version.Version, m.view.Date.Format("Mon 02 Jan 2006"))))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	return b.String()
}

// renderGradient colors each rune along a horizontal blue-to-pink gradient.
func renderGradient(text string) string {
	runes := []rune(text)
	var b strings.Builder
	for i, r := range runes {
		style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(gradientColor(i, len(runes))))
		b.WriteString(style.Render(string(r)))
	}
	return b.String()
}

// gradientColor returns a hex color for position col of width.
// Blue (#3B82F6) -> Purple (#8B5CF6) -> Magenta (#D946EF) -> Pink (#EC4899)
func gradientColor(col, width int) string {
	if width <= 0 {
		width = 1
	}
	x := float64(col) / float64(width)

	var r, g, b float64
	switch {
	case x < 0.33:
		t := x / 0.33
		r = 59 + t*(139-59)
		g = 130 + t*(92-130)
		b = 246
	case x < 0.66:
		t := (x - 0.33) / 0.33
		r = 139 + t*(217-139)
		g = 92 + t*(70-92)
		b = 246 + t*(239-246)
	default:
		t := (x - 0.66) / 0.34
		r = 217 + t*(236-217)
		g = 70 + t*(72-70)
		b = 239 + t*(153-239)
	}

	return fmt.Sprintf("#%02X%02X%02X", clamp8(r), clamp8(g), clamp8(b))
}

func clamp8(v float64) int {
	i := int(v)
	if i > 255 {
		return 255
	}
	if i < 0 {
		return 0
	}
	return i
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Chart", "[2] Wheel", "[3] Events"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	var status string
	switch {
	case m.computing:
		status = accentStyle.Render(spinner) + " " + m.renderShimmerText("Computing...")
	case m.view.LastError != nil:
		status = errStyle.Render("ERROR: " + m.view.LastError.Error())
	case m.view.Record != nil:
		status = dimStyle.Render("computed in " + m.view.FetchDuration.Round(time.Millisecond).String())
		if n := len(m.view.Record.Unavailable); n > 0 {
			status += errStyle.Render(fmt.Sprintf(" · %d unavailable", n))
		}
	default:
		status = accentStyle.Render(spinner) + " " + m.renderShimmerText("Waiting for data...")
	}

	var help string
	switch m.viewMode {
	case ViewWheel:
		help = dimStyle.Render("←/→: day | j/k: focus | n: names | tab: switch view")
	case ViewEvents:
		help = dimStyle.Render("←/→: day | t: today | ↑↓: scroll | tab: switch view")
	default:
		help = dimStyle.Render("←/→: day | t: today | r: recompute | ↑↓: aspects | tab: switch view")
	}

	return "  " + status + "  " + dimStyle.Render("|") + "  " + help
}

// renderShimmerText renders text with a subtle moving shine effect.
func (m Model) renderShimmerText(text string) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}

	pos := m.animTick % (len(runes) + 8)

	var result strings.Builder
	for i, r := range runes {
		dist := i - pos + 4
		if dist < 0 {
			dist = -dist
		}

		var r8, g8, b8 int
		switch {
		case dist <= 1:
			r8, g8, b8 = 180, 160, 220
		case dist <= 3:
			r8, g8, b8 = 140, 120, 180
		case dist <= 5:
			r8, g8, b8 = 110, 90, 150
		default:
			r8, g8, b8 = 80, 70, 120
		}

		style := lipgloss.NewStyle().Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r8, g8, b8)))
		result.WriteString(style.Render(string(r)))
	}
	return result.String()
}

func animTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}
