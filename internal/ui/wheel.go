package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/BaptisteVlt/astrology-generator/internal/state"
	"github.com/BaptisteVlt/astrology-generator/internal/zodiac"
)

// WheelModel draws the bodies around the zodiac circle, Aries on the left,
// longitude increasing counter-clockwise.
type WheelModel struct {
	width    int
	height   int
	focusIdx int
	names    bool

	date       time.Time
	longitudes map[zodiac.Body]zodiac.Longitude
	snapshot   state.Snapshot
}

// NewWheelModel creates a new wheel model.
func NewWheelModel() WheelModel {
	return WheelModel{names: true}
}

// SetSize updates the viewport size.
func (m WheelModel) SetSize(width, height int) WheelModel {
	m.width = width
	m.height = height
	return m
}

// SetLongitudes stores the positions read for date.
func (m WheelModel) SetLongitudes(date time.Time, lons map[zodiac.Body]zodiac.Longitude) WheelModel {
	m.date = date
	m.longitudes = lons
	return m
}

// UpdateData updates the model with new data.
func (m WheelModel) UpdateData(snapshot state.Snapshot) WheelModel {
	m.snapshot = snapshot
	return m
}

// Update handles messages.
func (m WheelModel) Update(msg tea.Msg) (WheelModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "down", "j":
			m.focusIdx = (m.focusIdx + 1) % len(zodiac.Bodies)
		case "up", "k":
			m.focusIdx = (m.focusIdx + len(zodiac.Bodies) - 1) % len(zodiac.Bodies)
		case "n":
			m.names = !m.names
		}
	}
	return m, nil
}

// Focused returns the focused body.
func (m WheelModel) Focused() zodiac.Body {
	return zodiac.Bodies[m.focusIdx]
}

// current reports whether the stored positions belong to the viewed date.
func (m WheelModel) current() bool {
	return m.longitudes != nil && m.date.Equal(m.snapshot.Date)
}

// View renders the wheel.
func (m WheelModel) View() string {
	if m.width < 40 || m.height < 10 {
		return "Terminal too small for wheel view"
	}
	if !m.current() {
		return "Waiting for positions...\n"
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.buildCanvas(), m.renderHUD())
}

// wheelPos tracks a body's screen position for label rendering.
type wheelPos struct {
	x, y      int
	name      string
	isFocused bool
}

func (m WheelModel) buildCanvas() string {
	// Reserve space for the HUD
	canvasH := m.height - 3
	if canvasH < 7 {
		canvasH = 7
	}
	canvasW := m.width

	grid := make([][]rune, canvasH)
	for y := range grid {
		grid[y] = make([]rune, canvasW)
		for x := range grid[y] {
			grid[y][x] = ' '
		}
	}

	cx, cy := canvasW/2, canvasH/2
	// Terminal cells are about twice as tall as wide.
	outer := math.Min(float64(cx)-2, float64(cy)*2-1) * 0.95
	inner := outer * 0.7

	drawCircle(grid, cx, cy, outer)

	// Sign boundaries and glyphs
	for _, s := range zodiac.Signs {
		start := s.StartDegrees()
		for r := inner + 1; r < outer; r++ {
			plot(grid, cx, cy, r, start, '·')
		}
		x, y := project(cx, cy, outer+1.5, start+zodiac.SignWidth/2)
		if inGrid(grid, x, y) {
			grid[y][x] = []rune(signGlyph(s))[0]
		}
	}

	var positions []wheelPos
	for i, b := range zodiac.Bodies {
		lon, ok := m.longitudes[b]
		if !ok {
			continue
		}
		x, y := project(cx, cy, inner, lon.Degrees())
		if !inGrid(grid, x, y) {
			continue
		}
		grid[y][x] = bodyGlyph(b)
		positions = append(positions, wheelPos{x: x, y: y, name: b.String(), isFocused: i == m.focusIdx})
	}

	grid[cy][cx] = '+'
	m.renderLabels(grid, positions)

	return renderWheelGrid(grid, m.Focused())
}

// project maps a longitude on a circle of radius r to grid coordinates.
func project(cx, cy int, r, lon float64) (int, int) {
	theta := (180 + lon) * math.Pi / 180
	x := cx + int(math.Round(r*math.Cos(theta)))
	y := cy - int(math.Round(r*math.Sin(theta)*0.5))
	return x, y
}

func plot(grid [][]rune, cx, cy int, r, lon float64, ch rune) {
	x, y := project(cx, cy, r, lon)
	if inGrid(grid, x, y) && grid[y][x] == ' ' {
		grid[y][x] = ch
	}
}

func inGrid(grid [][]rune, x, y int) bool {
	return y >= 0 && y < len(grid) && x >= 0 && x < len(grid[y])
}

func drawCircle(grid [][]rune, cx, cy int, r float64) {
	if r < 1 {
		return
	}

	steps := int(2 * math.Pi * r)
	if steps < 8 {
		steps = 8
	}
	if steps > 360 {
		steps = 360
	}

	for i := 0; i < steps; i++ {
		plot(grid, cx, cy, r, 360*float64(i)/float64(steps), '·')
	}
}

func (m WheelModel) renderLabels(grid [][]rune, positions []wheelPos) {
	for _, pos := range positions {
		if !m.names && !pos.isFocused {
			continue
		}
		label := pos.name
		if pos.isFocused {
			label = "◄ " + pos.name
		}
		lx := pos.x + 2
		if pos.y < 0 || pos.y >= len(grid) {
			continue
		}
		for i, r := range label {
			x := lx + i
			if x >= len(grid[pos.y]) {
				break
			}
			if grid[pos.y][x] == ' ' || grid[pos.y][x] == '·' {
				grid[pos.y][x] = r
			}
		}
	}
}

func bodyGlyph(b zodiac.Body) rune {
	glyphs := []rune{'☉', '☽', '☿', '♀', '♂', '♃', '♄', '♅', '♆', '♇'}
	if int(b) < 0 || int(b) >= len(glyphs) {
		return '•'
	}
	return glyphs[b]
}

func renderWheelGrid(grid [][]rune, focused zodiac.Body) string {
	var b strings.Builder

	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	bodyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	focusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("249"))
	focusGlyph := bodyGlyph(focused)

	for _, row := range grid {
		for _, ch := range row {
			var style lipgloss.Style
			switch {
			case ch == ' ':
				b.WriteRune(ch)
				continue
			case ch == '·' || ch == '+':
				style = dimStyle
			case ch == focusGlyph || ch == '◄':
				style = focusStyle
			case ch >= '♈' && ch <= '♓':
				s := zodiac.Sign(ch-'♈') + zodiac.Aries
				style = signStyle(s)
			case strings.ContainsRune("☉☽☿♀♂♃♄♅♆♇", ch):
				style = bodyStyle
			default:
				style = labelStyle
			}
			b.WriteString(style.Render(string(ch)))
		}
		b.WriteRune('\n')
	}
	return b.String()
}

func (m WheelModel) renderHUD() string {
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Width(12)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	hdrStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)

	b := m.Focused()
	lon, ok := m.longitudes[b]
	if !ok {
		reason := zodiac.ReasonMissingBody
		if m.snapshot.Record != nil {
			if r, bad := m.snapshot.Record.Unavailable[b]; bad {
				reason = r
			}
		}
		return hdrStyle.Render(b.String()) + "  " + labelStyle.Render("unavailable") + valueStyle.Render(reason.String())
	}

	sign := zodiac.ResolveSign(lon)
	within := lon.Degrees() - sign.StartDegrees()
	return hdrStyle.Render(b.String()) + "  " +
		labelStyle.Render("Longitude") + valueStyle.Render(fmt.Sprintf("%7.2f°", lon.Degrees())) + "  " +
		labelStyle.Render("Sign") + valueStyle.Render(fmt.Sprintf("%s %s %5.2f°", signGlyph(sign), sign, within))
}
