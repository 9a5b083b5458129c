// Package zodiac turns ecliptic longitudes into symbolic features: the zodiac
// sign of each body, the lunar phase, and the aspects between body pairs.
//
// Everything in this package is a pure function of its inputs. There is no
// shared state, so all functions are safe for concurrent use.
package zodiac

import (
	"fmt"
	"strings"
)

// Body identifies one of the ten bodies tracked by the interpretation layer.
type Body int

const (
	Sun Body = iota
	Moon
	Mercury
	Venus
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
	Pluto

	bodyCount
)

// Bodies lists every body in canonical order. Pair enumeration and output
// ordering follow this order.
var Bodies = []Body{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto}

var bodyNames = [bodyCount]string{
	"Sun", "Moon", "Mercury", "Venus", "Mars",
	"Jupiter", "Saturn", "Uranus", "Neptune", "Pluto",
}

// Valid reports whether b is one of the enumerated bodies.
func (b Body) Valid() bool {
	return b >= 0 && b < bodyCount
}

// String returns the body name.
func (b Body) String() string {
	if !b.Valid() {
		return fmt.Sprintf("Body(%d)", int(b))
	}
	return bodyNames[b]
}

// MarshalText implements encoding.TextMarshaler so bodies can key JSON maps.
func (b Body) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("invalid body %d", int(b))
	}
	return []byte(bodyNames[b]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Body) UnmarshalText(text []byte) error {
	parsed, ok := ParseBody(string(text))
	if !ok {
		return fmt.Errorf("unknown body %q", string(text))
	}
	*b = parsed
	return nil
}

// ParseBody looks a body up by name, ignoring case and surrounding spaces.
func ParseBody(s string) (Body, bool) {
	s = strings.TrimSpace(s)
	for i, name := range bodyNames {
		if strings.EqualFold(name, s) {
			return Body(i), true
		}
	}
	return 0, false
}
