package zodiac

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/BaptisteVlt/astrology-generator/internal/astro"
)

// DefaultOrb is the tolerance used by every caller unless configured otherwise.
const DefaultOrb = 5.0

// Aspect is a named angular relationship between two bodies.
type Aspect int

const (
	Conjunction Aspect = iota
	Sextile
	Square
	Trine
	Opposition
)

// Aspects lists the aspects in definition order. Detection output follows it.
var Aspects = []Aspect{Conjunction, Sextile, Square, Trine, Opposition}

var aspectDefs = [...]struct {
	name  string
	angle float64
}{
	Conjunction: {"Conjunction", 0},
	Sextile:     {"Sextile", 60},
	Square:      {"Square", 90},
	Trine:       {"Trine", 120},
	Opposition:  {"Opposition", 180},
}

func (a Aspect) valid() bool {
	return a >= 0 && int(a) < len(aspectDefs)
}

// String returns the aspect name.
func (a Aspect) String() string {
	if !a.valid() {
		return fmt.Sprintf("Aspect(%d)", int(a))
	}
	return aspectDefs[a].name
}

// Angle returns the canonical separation for the aspect, in degrees.
func (a Aspect) Angle() float64 {
	if !a.valid() {
		return math.NaN()
	}
	return aspectDefs[a].angle
}

// MarshalText implements encoding.TextMarshaler.
func (a Aspect) MarshalText() ([]byte, error) {
	if !a.valid() {
		return nil, fmt.Errorf("invalid aspect %d", int(a))
	}
	return []byte(aspectDefs[a].name), nil
}

// AspectEvent records that two bodies are within orb of an aspect angle.
// First always precedes Second in Bodies order.
type AspectEvent struct {
	First      Body
	Aspect     Aspect
	Second     Body
	Separation float64 // observed circular separation, degrees in [0, 180]
}

// String renders the event as "First Aspect Second".
func (e AspectEvent) String() string {
	return e.First.String() + " " + e.Aspect.String() + " " + e.Second.String()
}

// MarshalJSON encodes the event with text labels.
func (e AspectEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		First      string  `json:"first"`
		Aspect     string  `json:"aspect"`
		Second     string  `json:"second"`
		Separation float64 `json:"separation"`
	}{e.First.String(), e.Aspect.String(), e.Second.String(), e.Separation})
}

// Involves reports whether b is one side of the event.
func (e AspectEvent) Involves(b Body) bool {
	return e.First == b || e.Second == b
}

// DetectAspects finds every aspect between every unordered pair of bodies
// present in longitudes. Pairs are visited in Bodies order and aspects in
// Aspects order. A pair matching several aspects (possible once orb exceeds
// half the gap between neighbouring angles) yields one event per match.
func DetectAspects(longitudes map[Body]Longitude, orb float64) []AspectEvent {
	var events []AspectEvent
	for i, a := range Bodies {
		lonA, ok := longitudes[a]
		if !ok {
			continue
		}
		for _, b := range Bodies[i+1:] {
			lonB, ok := longitudes[b]
			if !ok {
				continue
			}
			sep := astro.CircularSeparation(lonA.Degrees(), lonB.Degrees())
			for _, asp := range Aspects {
				if math.Abs(sep-asp.Angle()) <= orb {
					events = append(events, AspectEvent{
						First:      a,
						Aspect:     asp,
						Second:     b,
						Separation: sep,
					})
				}
			}
		}
	}
	return events
}
