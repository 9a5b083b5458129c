package zodiac

import (
	"encoding/json"
	"time"
)

// FeatureRecord is the symbolic summary of a snapshot. It is built once by
// Compute and never mutated afterwards.
type FeatureRecord struct {
	Instant     time.Time
	Signs       map[Body]Sign
	Phase       Phase
	Aspects     []AspectEvent
	Unavailable map[Body]Reason
}

// Compute derives signs, lunar phase, and aspects from a snapshot.
//
// A body without a usable reading gets SignUnknown and is left out of aspect
// detection; the phase is PhaseUnknown unless both Sun and Moon are usable.
// Nothing here fails: bad data for one body never affects the others.
func Compute(snap Snapshot, orb float64) FeatureRecord {
	rec := FeatureRecord{
		Instant:     snap.Instant,
		Signs:       make(map[Body]Sign, len(Bodies)),
		Unavailable: make(map[Body]Reason),
	}

	for _, b := range Bodies {
		r := snap.Reading(b)
		if !r.OK() {
			rec.Signs[b] = SignUnknown
			rec.Unavailable[b] = r.Reason
			continue
		}
		rec.Signs[b] = ResolveSign(r.Longitude)
	}

	sun, moon := snap.Reading(Sun), snap.Reading(Moon)
	if sun.OK() && moon.OK() {
		rec.Phase = ClassifyPhase(sun.Longitude, moon.Longitude)
	}

	rec.Aspects = DetectAspects(snap.Longitudes(), orb)
	return rec
}

// Sign returns the sign recorded for b.
func (r FeatureRecord) Sign(b Body) Sign {
	return r.Signs[b]
}

// AspectStrings renders every aspect event as "First Aspect Second".
func (r FeatureRecord) AspectStrings() []string {
	out := make([]string, 0, len(r.Aspects))
	for _, e := range r.Aspects {
		out = append(out, e.String())
	}
	return out
}

// Complete reports whether every body had a usable reading.
func (r FeatureRecord) Complete() bool {
	return len(r.Unavailable) == 0
}

// MarshalJSON encodes the record with text labels.
func (r FeatureRecord) MarshalJSON() ([]byte, error) {
	aspects := r.Aspects
	if aspects == nil {
		aspects = []AspectEvent{}
	}
	return json.Marshal(struct {
		Date        string          `json:"date"`
		Instant     time.Time       `json:"instant"`
		Signs       map[Body]Sign   `json:"signs"`
		Phase       Phase           `json:"lunar_phase"`
		Aspects     []AspectEvent   `json:"aspects"`
		Unavailable map[Body]Reason `json:"unavailable,omitempty"`
	}{
		Date:        r.Instant.UTC().Format("2006-01-02"),
		Instant:     r.Instant,
		Signs:       r.Signs,
		Phase:       r.Phase,
		Aspects:     aspects,
		Unavailable: r.Unavailable,
	})
}
