package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/BaptisteVlt/astrology-generator/internal/state"
	"github.com/BaptisteVlt/astrology-generator/internal/zodiac"
)

var testDay = time.Date(2023, 10, 25, 0, 0, 0, 0, time.UTC)

// fakeSky puts the Sun at 190° and the Moon at 10° on every date.
func fakeSky(_ context.Context, date time.Time) (zodiac.Snapshot, error) {
	return zodiac.NewSnapshot(date, map[zodiac.Body]float64{
		zodiac.Sun:  190,
		zodiac.Moon: 10,
	}), nil
}

func newTestModel(snap SnapshotFunc) (Model, *state.Manager) {
	mgr := state.NewManager(state.DefaultConfig(), testDay)
	m := New(context.Background(), mgr, snap, zodiac.DefaultOrb)
	m.now = func() time.Time { return testDay.Add(5 * time.Hour) }
	return m, mgr
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	um, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return um, cmd
}

func TestModel_StepComputesNewDay(t *testing.T) {
	m, mgr := newTestModel(fakeSky)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if cmd == nil {
		t.Fatal("stepping should return a compute command")
	}
	if !m.computing {
		t.Error("model should be computing after a step")
	}
	want := testDay.AddDate(0, 0, 1)
	if !mgr.Date().Equal(want) {
		t.Fatalf("date = %v, want %v", mgr.Date(), want)
	}

	msg, ok := cmd().(RecordMsg)
	if !ok {
		t.Fatalf("command produced %T, want RecordMsg", cmd())
	}
	if msg.Record == nil || msg.Record.Phase != zodiac.FullMoon {
		t.Fatalf("record = %+v, want Full Moon", msg.Record)
	}

	m, _ = update(t, m, msg)
	if m.computing {
		t.Error("computing should clear once the viewed date arrives")
	}
	if !mgr.HasData() {
		t.Error("state should hold the new record")
	}
	if m.view.Record == nil || m.view.Record.Sign(zodiac.Sun) != zodiac.Libra {
		t.Errorf("view record = %+v", m.view.Record)
	}
}

func TestModel_StaleRecordKeepsComputing(t *testing.T) {
	m, _ := newTestModel(fakeSky)

	staleCmd := m.computeCmd(testDay)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})

	m, _ = update(t, m, staleCmd())
	if !m.computing {
		t.Error("a record for a previous date must not clear computing")
	}
	if m.view.Record != nil {
		t.Error("stale record must not be shown")
	}
}

func TestModel_Today(t *testing.T) {
	m, mgr := newTestModel(fakeSky)
	mgr.Step(10)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	if cmd == nil {
		t.Fatal("t should trigger a compute")
	}
	if !mgr.Date().Equal(testDay) {
		t.Errorf("date = %v, want %v", mgr.Date(), testDay)
	}
}

func TestModel_ComputeError(t *testing.T) {
	boom := errors.New("provider offline")
	m, _ := newTestModel(func(context.Context, time.Time) (zodiac.Snapshot, error) {
		return zodiac.Snapshot{}, boom
	})

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m, _ = update(t, m, cmd())

	if m.view.LastError != boom {
		t.Errorf("LastError = %v, want %v", m.view.LastError, boom)
	}
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	if !strings.Contains(m.View(), "provider offline") {
		t.Error("view should surface the error")
	}
}

func TestModel_ViewSwitching(t *testing.T) {
	m, _ := newTestModel(fakeSky)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.viewMode != ViewWheel {
		t.Errorf("after tab viewMode = %v, want ViewWheel", m.viewMode)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.viewMode != ViewChart {
		t.Errorf("tab should wrap to ViewChart, got %v", m.viewMode)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	if m.viewMode != ViewEvents {
		t.Errorf("3 should select events, got %v", m.viewMode)
	}
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(fakeSky)
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModel_View(t *testing.T) {
	m, _ := newTestModel(fakeSky)
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View before size = %q", got)
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = update(t, m, m.computeCmd(testDay)())

	out := m.View()
	for _, want := range []string{"Chart", "Signs", "Libra", "Full Moon", "Sun", "Opposition"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'w'}})
	if out := m.View(); !strings.Contains(out, "Longitude") {
		t.Errorf("wheel HUD missing longitude:\n%s", out)
	}
}

func TestGradientColor(t *testing.T) {
	if got := gradientColor(0, 10); got != "#3B82F6" {
		t.Errorf("gradient start = %s, want #3B82F6", got)
	}
	if got := gradientColor(0, 0); got == "" {
		t.Error("zero width should not panic or return empty")
	}
}
