package zodiac

import "github.com/BaptisteVlt/astrology-generator/internal/astro"

// Phase is a discrete lunar phase label. The zero value is PhaseUnknown,
// used when either the Sun or the Moon longitude was unavailable.
type Phase int

const (
	PhaseUnknown Phase = iota
	NewMoon
	WaxingCrescent
	FirstQuarter
	WaxingGibbous
	FullMoon
	WaningGibbous
	LastQuarter
	WaningCrescent
)

// phaseHalfWidth is added to each threshold to get the bucket's upper bound.
const phaseHalfWidth = 22.5

var phaseNames = [...]string{
	"Unknown",
	"New Moon", "Waxing Crescent", "First Quarter", "Waxing Gibbous",
	"Full Moon", "Waning Gibbous", "Last Quarter", "Waning Crescent",
}

// phaseTable is scanned in order; the first bucket whose threshold plus
// phaseHalfWidth exceeds the phase angle wins.
var phaseTable = []struct {
	phase     Phase
	threshold float64
}{
	{NewMoon, 0},
	{WaxingCrescent, 45},
	{FirstQuarter, 90},
	{WaxingGibbous, 135},
	{FullMoon, 180},
	{WaningGibbous, 225},
	{LastQuarter, 270},
	{WaningCrescent, 315},
}

// String returns the phase label.
func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return phaseNames[PhaseUnknown]
	}
	return phaseNames[p]
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// PhaseAngle returns (moon - sun) wrapped into [0, 360).
func PhaseAngle(sun, moon Longitude) float64 {
	return astro.Difference(sun.Degrees(), moon.Degrees())
}

// ClassifyPhase labels the Sun/Moon configuration.
//
// The last bucket ends at 337.5, so angles in [337.5, 360) fall through to
// New Moon. New Moon therefore covers [0, 22.5) and [337.5, 360). Existing
// datasets were produced with this split; keep it.
func ClassifyPhase(sun, moon Longitude) Phase {
	angle := PhaseAngle(sun, moon)
	for _, b := range phaseTable {
		if angle < b.threshold+phaseHalfWidth {
			return b.phase
		}
	}
	return NewMoon
}
