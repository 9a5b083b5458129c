// Package state provides thread-safe state management for the application.
package state

import (
	"sync"
	"time"

	"github.com/BaptisteVlt/astrology-generator/internal/astro"
	"github.com/BaptisteVlt/astrology-generator/internal/zodiac"
)

// EventType represents the type of change between two consecutive records.
type EventType string

const (
	EventSignChange      EventType = "SIGN_CHANGE"
	EventPhaseChange     EventType = "PHASE_CHANGE"
	EventAspectFormed    EventType = "ASPECT_FORMED"
	EventAspectSeparated EventType = "ASPECT_SEPARATED"
)

// Event represents a change observed when a new record replaces the current one.
type Event struct {
	Type   EventType   `json:"type"`
	Date   time.Time   `json:"date"`
	Body   zodiac.Body `json:"body"`
	Detail string      `json:"detail"`
}

// HistoryEntry represents a single computed record.
type HistoryEntry struct {
	Computed time.Time
	Record   zodiac.FeatureRecord
}

// Manager handles the viewed date and its feature record.
type Manager struct {
	mu sync.RWMutex

	date          time.Time
	current       *zodiac.FeatureRecord
	lastUpdate    time.Time
	lastError     error
	fetchDuration time.Duration

	history       []HistoryEntry
	maxHistoryLen int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	now func() time.Time
}

// Config holds configuration for the state manager.
type Config struct {
	MaxHistoryLen int
	MaxEvents     int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaxHistoryLen: 30,
		MaxEvents:     50,
	}
}

// NewManager creates a state manager viewing the day that contains date.
func NewManager(cfg Config, date time.Time) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	maxHist := cfg.MaxHistoryLen
	if maxHist <= 0 {
		maxHist = 30
	}
	return &Manager{
		date:          astro.StartOfDay(date),
		maxHistoryLen: maxHist,
		maxEvents:     maxEvents,
		events:        make([]Event, 0, maxEvents),
		now:           time.Now,
	}
}

// Date returns the viewed date.
func (m *Manager) Date() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.date
}

// Step moves the viewed date by days and returns the new date.
func (m *Manager) Step(days int) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.date = m.date.AddDate(0, 0, days)
	return m.date
}

// SetDate jumps to the day that contains t.
func (m *Manager) SetDate(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.date = astro.StartOfDay(t)
}

// Update stores the outcome of computing a record. A nil rec keeps the
// previous record and only records err. Records for a date other than the
// viewed one are ignored, since the user may have stepped away meanwhile.
func (m *Manager) Update(rec *zodiac.FeatureRecord, fetchDuration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastUpdate = m.now()
	m.lastError = err
	m.fetchDuration = fetchDuration

	if rec == nil || !astro.StartOfDay(rec.Instant).Equal(m.date) {
		return
	}

	if m.current != nil {
		m.detectEvents(*m.current, *rec)
	}
	m.current = rec

	m.history = append(m.history, HistoryEntry{Computed: m.lastUpdate, Record: *rec})
	if len(m.history) > m.maxHistoryLen {
		m.history = m.history[1:]
	}
}

// detectEvents compares the previous record with the new one.
func (m *Manager) detectEvents(prev, next zodiac.FeatureRecord) {
	date := astro.StartOfDay(next.Instant)

	for _, b := range zodiac.Bodies {
		was, is := prev.Sign(b), next.Sign(b)
		if was == is || was == zodiac.SignUnknown || is == zodiac.SignUnknown {
			continue
		}
		m.addEvent(Event{
			Type:   EventSignChange,
			Date:   date,
			Body:   b,
			Detail: b.String() + " " + was.String() + " -> " + is.String(),
		})
	}

	if prev.Phase != next.Phase && prev.Phase != zodiac.PhaseUnknown && next.Phase != zodiac.PhaseUnknown {
		m.addEvent(Event{
			Type:   EventPhaseChange,
			Date:   date,
			Body:   zodiac.Moon,
			Detail: prev.Phase.String() + " -> " + next.Phase.String(),
		})
	}

	before := aspectSet(prev)
	after := aspectSet(next)
	for _, e := range next.Aspects {
		if !before[e.String()] {
			m.addEvent(Event{Type: EventAspectFormed, Date: date, Body: e.First, Detail: e.String()})
		}
	}
	for _, e := range prev.Aspects {
		if !after[e.String()] {
			m.addEvent(Event{Type: EventAspectSeparated, Date: date, Body: e.First, Detail: e.String()})
		}
	}
}

func aspectSet(rec zodiac.FeatureRecord) map[string]bool {
	set := make(map[string]bool, len(rec.Aspects))
	for _, e := range rec.Aspects {
		set[e.String()] = true
	}
	return set
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Date          time.Time
	Record        *zodiac.FeatureRecord
	LastUpdate    time.Time
	LastError     error
	FetchDuration time.Duration
	History       []HistoryEntry
	Events        []Event
}

// Snapshot returns a consistent snapshot of current state. Record is nil
// until a record for the viewed date has been stored.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rec *zodiac.FeatureRecord
	if m.current != nil && astro.StartOfDay(m.current.Instant).Equal(m.date) {
		r := *m.current
		rec = &r
	}

	hist := make([]HistoryEntry, len(m.history))
	copy(hist, m.history)

	return Snapshot{
		Date:          m.date,
		Record:        rec,
		LastUpdate:    m.lastUpdate,
		LastError:     m.lastError,
		FetchDuration: m.fetchDuration,
		History:       hist,
		Events:        m.getEventsOrdered(),
	}
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// HasData returns true if a record has been stored for the viewed date.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil && astro.StartOfDay(m.current.Instant).Equal(m.date)
}
