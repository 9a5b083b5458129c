package ephem

import "github.com/BaptisteVlt/astrology-generator/internal/zodiac"

// TargetID is a NAIF SPICE ID for a body.
type TargetID int

// NAIF IDs used when querying Horizons. Planets use their body-center codes
// (x99), not barycenters.
// Sourced from https://naif.jpl.nasa.gov/pub/naif/toolkit_docs/C/req/naif_ids.html
const (
	NAIFSun     TargetID = 10
	NAIFMoon    TargetID = 301
	NAIFMercury TargetID = 199
	NAIFVenus   TargetID = 299
	NAIFMars    TargetID = 499
	NAIFJupiter TargetID = 599
	NAIFSaturn  TargetID = 699
	NAIFUranus  TargetID = 799
	NAIFNeptune TargetID = 899
	NAIFPluto   TargetID = 999
)

// TargetInfo maps a tracked body to its Horizons identity.
type TargetInfo struct {
	Body   zodiac.Body
	NAIFID TargetID
	Code   string // short code used in cache keys and logs
}

// Targets is the canonical list of bodies with their NAIF mappings, in
// zodiac.Bodies order.
var Targets = []TargetInfo{
	{Body: zodiac.Sun, NAIFID: NAIFSun, Code: "SUN"},
	{Body: zodiac.Moon, NAIFID: NAIFMoon, Code: "MOON"},
	{Body: zodiac.Mercury, NAIFID: NAIFMercury, Code: "MERC"},
	{Body: zodiac.Venus, NAIFID: NAIFVenus, Code: "VEN"},
	{Body: zodiac.Mars, NAIFID: NAIFMars, Code: "MARS"},
	{Body: zodiac.Jupiter, NAIFID: NAIFJupiter, Code: "JUP"},
	{Body: zodiac.Saturn, NAIFID: NAIFSaturn, Code: "SAT"},
	{Body: zodiac.Uranus, NAIFID: NAIFUranus, Code: "URA"},
	{Body: zodiac.Neptune, NAIFID: NAIFNeptune, Code: "NEP"},
	{Body: zodiac.Pluto, NAIFID: NAIFPluto, Code: "PLU"},
}

// TargetsByBody maps bodies to target info for quick lookup.
var TargetsByBody = func() map[zodiac.Body]TargetInfo {
	m := make(map[zodiac.Body]TargetInfo, len(Targets))
	for _, t := range Targets {
		m[t.Body] = t
	}
	return m
}()

// TargetsByNAIF maps NAIF IDs to target info.
var TargetsByNAIF = func() map[TargetID]TargetInfo {
	m := make(map[TargetID]TargetInfo, len(Targets))
	for _, t := range Targets {
		m[t.NAIFID] = t
	}
	return m
}()

// GetTarget returns target info for a body.
func GetTarget(b zodiac.Body) (TargetInfo, bool) {
	t, ok := TargetsByBody[b]
	return t, ok
}

// GetTargetByNAIF returns target info for a NAIF ID.
func GetTargetByNAIF(id TargetID) (TargetInfo, bool) {
	t, ok := TargetsByNAIF[id]
	return t, ok
}
