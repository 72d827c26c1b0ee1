// Package models defines the shared data vocabulary for Polaris Chronos:
// geographic points, resolved locations, prayer events, and the composed
// day schedule. Every other internal package imports this one; it
// imports nothing of its own but the standard library.
package models

import "time"

// GeoPoint is a WGS-84 decimal-degree coordinate pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the point lies within legal coordinate bounds.
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// LocationSource identifies which stage of the resolver fallback chain
// produced a ResolvedLocation.
type LocationSource string

const (
	SourceCache       LocationSource = "Cache"
	SourceBuiltIn     LocationSource = "BuiltIn"
	SourceGeocoder    LocationSource = "Geocoder"
	SourceIP          LocationSource = "IP"
	SourceManualCoord LocationSource = "ManualCoords"
)

// ResolvedLocation is the normalized output of the Resolver's fallback
// chain. Confidence decreases monotonically along Cache >= BuiltIn >=
// Geocoder >= IP (see DecayOK).
type ResolvedLocation struct {
	Name          string         `json:"name"`
	Country       string         `json:"country,omitempty"`
	CountryCode   string         `json:"country_code,omitempty"`
	Point         GeoPoint       `json:"point"`
	TZ            string         `json:"tz"`
	Source        LocationSource `json:"source"`
	Confidence    float64        `json:"confidence"`
	DisplayCoords string         `json:"display_coords"`
}

// decayCeiling bounds the plausible confidence for each source, used by
// DecayOK as a sanity check, not a hot-path gate.
var decayCeiling = map[LocationSource]float64{
	SourceCache:       1.0,
	SourceManualCoord: 1.0,
	SourceBuiltIn:     0.95,
	SourceGeocoder:    0.8,
	SourceIP:          0.5,
}

// DecayOK reports whether this location's confidence respects the
// Cache >= BuiltIn >= Geocoder >= IP ordering invariant for its source.
func (r ResolvedLocation) DecayOK() bool {
	ceiling, ok := decayCeiling[r.Source]
	if !ok {
		return true
	}
	return r.Confidence <= ceiling
}

// PrayerKind enumerates the six canonical prayer events.
type PrayerKind string

const (
	Fajr    PrayerKind = "fajr"
	Sunrise PrayerKind = "sunrise"
	Dhuhr   PrayerKind = "dhuhr"
	Asr     PrayerKind = "asr"
	Maghrib PrayerKind = "maghrib"
	Isha    PrayerKind = "isha"
)

// AllPrayerKinds lists all six kinds in canonical daily order.
func AllPrayerKinds() []PrayerKind {
	return []PrayerKind{Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha}
}

// EventMethod describes how a PrayerEvent's time was derived.
type EventMethod string

const (
	MethodStandard  EventMethod = "Standard"
	MethodVirtual   EventMethod = "Virtual"
	MethodProjected EventMethod = "Projected"
	MethodNone      EventMethod = "None"
)

// ConfidenceCeiling returns the canonical confidence value for a method:
// Standard=1.0, Virtual=0.7, Projected=0.5, None=0.0.
func (m EventMethod) ConfidenceCeiling() float64 {
	switch m {
	case MethodStandard:
		return 1.0
	case MethodVirtual:
		return 0.7
	case MethodProjected:
		return 0.5
	default:
		return 0.0
	}
}

// LocalTime is a time-of-day truncated to the minute for display, with
// the untruncated instant retained in Raw for next-day flagging and
// determinism checks.
type LocalTime struct {
	Hour   int
	Minute int
	Second int
	Raw    time.Time
}

// NewLocalTime truncates (never rounds) t to the minute, keeping the
// full instant in Raw.
func NewLocalTime(t time.Time) LocalTime {
	return LocalTime{Hour: t.Hour(), Minute: t.Minute(), Second: 0, Raw: t}
}

// String renders "HH:MM:SS".
func (l LocalTime) String() string {
	return time.Date(0, 1, 1, l.Hour, l.Minute, l.Second, 0, time.UTC).Format("15:04:05")
}

// MarshalJSON renders the LocalTime as a quoted "HH:MM:SS" string.
func (l LocalTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + l.String() + `"`), nil
}

// PrayerEvent is one computed prayer time with full provenance.
type PrayerEvent struct {
	Kind       PrayerKind  `json:"kind"`
	Time       *LocalTime  `json:"time"`
	NextDay    bool        `json:"next_day"`
	Method     EventMethod `json:"method"`
	Confidence float64     `json:"confidence"`
	Note       string      `json:"note"`
}

// DayState classifies a civil day's solar regime from the altitude
// curve's extremes.
type DayState string

const (
	StateNormal     DayState = "Normal"
	StateWhiteNight DayState = "WhiteNight"
	StatePolarDay   DayState = "PolarDay"
	StatePolarNight DayState = "PolarNight"
)

// SolarSummary carries a civil day's peak/nadir altitude and their UTC
// instants.
type SolarSummary struct {
	MaxAltitude float64
	MinAltitude float64
	PeakUTC     time.Time
	NadirUTC    time.Time
}

// GapStrategyName identifies which Gap Strategy produced a schedule.
type GapStrategyName string

const (
	StrategyStrict      GapStrategyName = "strict"
	StrategyProjected45 GapStrategyName = "projected45"
)

// DaySchedule is the top-level product of the Daily Solver: a complete,
// labeled prayer schedule for one civil day at one location. Events
// always contains all six PrayerKinds; unresolved ones carry
// method=None rather than being omitted.
type DaySchedule struct {
	Date               string                     `json:"date"`
	Location           ResolvedLocation           `json:"location"`
	State              DayState                   `json:"state"`
	Events             map[PrayerKind]PrayerEvent `json:"events"`
	Solar              SolarSummary               `json:"solar"`
	GapStrategy        GapStrategyName            `json:"gap_strategy"`
	LocationConfidence float64                    `json:"location_confidence"`
}
