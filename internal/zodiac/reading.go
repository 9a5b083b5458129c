package zodiac

import (
	"time"

	"github.com/BaptisteVlt/astrology-generator/internal/astro"
)

// Reason explains why a body's longitude is unavailable.
type Reason int

const (
	ReasonNone Reason = iota
	// ReasonMissingBody: the provider had no data for the body at the instant.
	ReasonMissingBody
	// ReasonInvalidLongitude: the provider returned a non-finite or
	// out-of-range value.
	ReasonInvalidLongitude
)

// String returns a short label for the reason.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "ok"
	case ReasonMissingBody:
		return "missing body"
	case ReasonInvalidLongitude:
		return "invalid longitude"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Reading is the per-body result handed over by a longitude provider:
// either a valid longitude or an explicit unavailable marker.
type Reading struct {
	Longitude Longitude
	Reason    Reason
	Detail    string
}

// Available wraps a longitude that has already been validated.
func Available(lon Longitude) Reading {
	return Reading{Longitude: lon}
}

// Unavailable builds a marker for a body with no usable longitude.
func Unavailable(reason Reason, detail string) Reading {
	if reason == ReasonNone {
		reason = ReasonMissingBody
	}
	return Reading{Reason: reason, Detail: detail}
}

// ReadingFromDegrees validates a raw provider value. Values outside [0, 360)
// are rejected rather than wrapped, since they signal a provider fault.
func ReadingFromDegrees(deg float64) Reading {
	if !astro.InRange(deg) {
		return Unavailable(ReasonInvalidLongitude, "longitude out of range")
	}
	return Available(Longitude(deg))
}

// OK reports whether the reading carries a usable longitude.
func (r Reading) OK() bool {
	return r.Reason == ReasonNone
}

// Snapshot holds one reading per body at a single instant.
type Snapshot struct {
	Instant  time.Time
	Readings map[Body]Reading
}

// NewSnapshot builds a snapshot from already-valid longitudes. Convenient for
// callers that compute longitudes themselves.
func NewSnapshot(instant time.Time, longitudes map[Body]float64) Snapshot {
	s := Snapshot{Instant: instant, Readings: make(map[Body]Reading, len(longitudes))}
	for b, deg := range longitudes {
		s.Readings[b] = ReadingFromDegrees(deg)
	}
	return s
}

// Reading returns the reading for b; an absent entry reads as missing.
func (s Snapshot) Reading(b Body) Reading {
	r, ok := s.Readings[b]
	if !ok {
		return Unavailable(ReasonMissingBody, "no reading")
	}
	return r
}

// Longitudes returns the longitudes of bodies whose reading is usable.
func (s Snapshot) Longitudes() map[Body]Longitude {
	out := make(map[Body]Longitude, len(s.Readings))
	for b, r := range s.Readings {
		if b.Valid() && r.OK() {
			out[b] = r.Longitude
		}
	}
	return out
}
