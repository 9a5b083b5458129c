package zodiac

import (
	"math"

	"github.com/BaptisteVlt/astrology-generator/internal/astro"
)

// Longitude is an ecliptic longitude in degrees, normalized into [0, 360).
// Compare longitudes with astro.CircularSeparation, never by subtraction.
type Longitude float64

// NewLongitude normalizes deg into [0, 360).
func NewLongitude(deg float64) Longitude {
	return Longitude(astro.NormalizeDegrees(deg))
}

// Degrees returns the longitude as a plain float.
func (l Longitude) Degrees() float64 {
	return float64(l)
}

// Sign is a 30-degree arc of the ecliptic. The zero value is SignUnknown,
// used for bodies whose longitude was unavailable.
type Sign int

const (
	SignUnknown Sign = iota
	Aries
	Taurus
	Gemini
	Cancer
	Leo
	Virgo
	Libra
	Scorpio
	Sagittarius
	Capricorn
	Aquarius
	Pisces
)

// SignWidth is the arc covered by each sign, in degrees.
const SignWidth = 30.0

// Signs lists the twelve signs in ecliptic order starting at 0 degrees.
var Signs = []Sign{Aries, Taurus, Gemini, Cancer, Leo, Virgo, Libra, Scorpio, Sagittarius, Capricorn, Aquarius, Pisces}

var signNames = [...]string{
	"Unknown",
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

// String returns the sign label.
func (s Sign) String() string {
	if s < 0 || int(s) >= len(signNames) {
		return signNames[SignUnknown]
	}
	return signNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s Sign) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StartDegrees returns the lower (inclusive) edge of the sign's arc.
func (s Sign) StartDegrees() float64 {
	if s == SignUnknown {
		return math.NaN()
	}
	return float64(s-Aries) * SignWidth
}

// ResolveSign maps a normalized longitude to its sign. The index is clamped
// so floating-point values that round up to 360 still land in Pisces.
func ResolveSign(lon Longitude) Sign {
	idx := int(math.Floor(lon.Degrees() / SignWidth))
	if idx < 0 {
		idx = 0
	} else if idx > len(Signs)-1 {
		idx = len(Signs) - 1
	}
	return Signs[idx]
}
