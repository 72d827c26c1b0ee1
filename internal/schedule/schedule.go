// Package schedule maps the six canonical prayer events onto an
// AltitudeCurve produced by solarkernel: threshold-crossing detection
// for Fajr/Sunrise/Maghrib/Isha, quadratic-refined maximum for Dhuhr,
// and a closed-form shadow-ratio altitude for Asr. It also classifies a
// civil day's solar regime (Normal/WhiteNight/PolarDay/PolarNight) from
// the curve's extremes alone, independent of whether any individual
// event resolved.
//
// The scheduler never fails: an event whose threshold is never crossed
// within the curve is reported as Unresolved, left for the caller's Gap
// Strategy to fill. On a PolarNight day Fajr and Isha are reported as
// Unresolved as well, even where the -18 degree threshold is crossed.
package schedule

import (
	"math"
	"time"

	"github.com/jcom-dev/chronos/internal/models"
	"github.com/jcom-dev/chronos/internal/solarkernel"
)

// Defining altitudes, in degrees, per §4.2's table.
const (
	FajrAngle    = -18.0
	IshaAngle    = -18.0
	HorizonAngle = -0.833 // refraction-corrected geometric horizon
)

// CrossingTolerance is the epsilon applied around a threshold before a
// sample is treated as "on" the threshold rather than strictly above or
// below it (§9 open question, pinned here per SPEC_FULL's decision).
const CrossingTolerance = 1e-3

// AsrSchool selects the gnomon shadow-ratio convention for Asr. Standard
// (Shafi'i) is the spec's required default; Hanafi is an additive
// option (SPEC_FULL §D) that never changes default behavior.
type AsrSchool int

const (
	AsrStandard AsrSchool = iota // shadow = 1x gnomon + noon shadow
	AsrHanafi                    // shadow = 2x gnomon + noon shadow
)

func (s AsrSchool) shadowFactor() float64 {
	if s == AsrHanafi {
		return 2
	}
	return 1
}

// Direction is the crossing direction a threshold scan looks for.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Resolution is one event's outcome from the scheduler: either a
// concrete crossing instant, or Unresolved when the curve never crosses
// the required altitude in the required direction.
type Resolution struct {
	Resolved bool
	Instant  time.Time // valid only if Resolved
	NextDay  bool       // true if Instant falls on the civil day after the curve's nominal date
}

// Day classifies a civil day's solar regime from the curve's peak/nadir
// extremes, per §4.2's table. This is independent of whether any
// individual prayer event resolves.
//
// The four conditions in §4.2 are not mutually exclusive as written in
// isolation (WhiteNight's "nadir > -18" also holds whenever PolarDay's
// "nadir > -0.833" does), so they are evaluated most-restrictive-first:
// PolarNight and PolarDay are checked before WhiteNight/Normal, and
// WhiteNight (twilight never reaches -18) is checked before Normal
// (a real astronomical night occurs).
func Day(curve solarkernel.AltitudeCurve) models.DayState {
	switch {
	case curve.Peak.Altitude < HorizonAngle:
		return models.StatePolarNight
	case curve.Nadir.Altitude > HorizonAngle:
		return models.StatePolarDay
	case curve.Nadir.Altitude > FajrAngle:
		return models.StateWhiteNight
	default:
		return models.StateNormal
	}
}

// crossing scans samples in civil-day order for the first adjacent pair
// bracketing threshold in the given direction, starting the scan at
// fromIdx, and linearly interpolates the crossing instant.
func crossing(samples []solarkernel.Sample, fromIdx int, threshold float64, dir Direction) Resolution {
	for i := fromIdx; i < len(samples)-1; i++ {
		a, b := samples[i], samples[i+1]

		var crosses bool
		switch dir {
		case Ascending:
			crosses = a.Altitude < threshold-CrossingTolerance && b.Altitude >= threshold-CrossingTolerance
		case Descending:
			crosses = a.Altitude > threshold+CrossingTolerance && b.Altitude <= threshold+CrossingTolerance
		}
		if !crosses {
			continue
		}

		span := b.Altitude - a.Altitude
		var frac float64
		if span != 0 {
			frac = (threshold - a.Altitude) / span
		}
		frac = math.Max(0, math.Min(1, frac))

		dur := b.UTC.Sub(a.UTC)
		instant := a.UTC.Add(time.Duration(float64(dur) * frac))
		return Resolution{Resolved: true, Instant: instant}
	}
	return Resolution{Resolved: false}
}

// dhuhrIndex returns the index of the highest sample. dhuhrInstant then
// refines the instant quadratically using the three samples bracketing
// it (Meeus-style vertex interpolation of a parabola through three
// equally spaced points).
func dhuhrIndex(samples []solarkernel.Sample) int {
	best := 0
	for i, s := range samples {
		if s.Altitude > samples[best].Altitude {
			best = i
		}
	}
	return best
}

func dhuhrInstant(samples []solarkernel.Sample) time.Time {
	idx := dhuhrIndex(samples)
	if idx <= 0 || idx >= len(samples)-1 {
		return samples[idx].UTC
	}
	y0, y1, y2 := samples[idx-1].Altitude, samples[idx].Altitude, samples[idx+1].Altitude
	denom := y0 - 2*y1 + y2
	if denom == 0 {
		return samples[idx].UTC
	}
	// Vertex offset in units of the (1-minute) sample spacing.
	offset := 0.5 * (y0 - y2) / denom
	offset = math.Max(-1, math.Min(1, offset))
	return samples[idx].UTC.Add(time.Duration(offset * float64(time.Minute)))
}

// Dhuhr returns the instant of the curve's daily maximum altitude
// (solar noon), quadratic-refined. Always resolves: a maximum always
// exists, even in PolarNight, where it is simply the least-negative
// point of the wave.
func Dhuhr(curve solarkernel.AltitudeCurve) Resolution {
	dayOnly := curve.Samples[:minInt(len(curve.Samples), 1441)]
	return Resolution{Resolved: true, Instant: dhuhrInstant(dayOnly)}
}

// Fajr scans ascending across the -18 degree threshold, up to and
// including the Dhuhr sample, preferring the crossing closest in
// direction-of-day to the reference event (before solar noon). It is
// Unresolved on a PolarNight day.
func Fajr(curve solarkernel.AltitudeCurve, dhuhr time.Time) Resolution {
	if Day(curve) == models.StatePolarNight {
		return Resolution{Resolved: false}
	}
	return beforeNoon(curve, FajrAngle, Ascending, dhuhr)
}

// Sunrise scans ascending across the refraction-corrected horizon.
func Sunrise(curve solarkernel.AltitudeCurve, dhuhr time.Time) Resolution {
	return beforeNoon(curve, HorizonAngle, Ascending, dhuhr)
}

// Maghrib scans descending across the refraction-corrected horizon,
// starting the search at solar noon.
func Maghrib(curve solarkernel.AltitudeCurve, dhuhr time.Time) Resolution {
	return afterNoon(curve, HorizonAngle, Descending, dhuhr)
}

// Isha scans descending across the -18 degree threshold after sunset.
// It is Unresolved on a PolarNight day.
func Isha(curve solarkernel.AltitudeCurve, dhuhr time.Time) Resolution {
	if Day(curve) == models.StatePolarNight {
		return Resolution{Resolved: false}
	}
	res := afterNoon(curve, IshaAngle, Descending, dhuhr)
	if !res.Resolved {
		return res
	}
	startOfDay := curve.Samples[0].UTC
	res.NextDay = res.Instant.Sub(startOfDay) >= 24*time.Hour
	return res
}

func beforeNoon(curve solarkernel.AltitudeCurve, threshold float64, dir Direction, dhuhr time.Time) Resolution {
	idx := indexAtOrBefore(curve.Samples, dhuhr)
	// Search the window ending at noon for the crossing closest to noon,
	// i.e. scan backward from noon toward the start of the curve.
	sub := curve.Samples[:idx+1]
	reversed := make([]solarkernel.Sample, len(sub))
	for i, s := range sub {
		reversed[len(sub)-1-i] = s
	}
	res := crossing(reversed, 0, threshold, oppositeDirection(dir))
	if !res.Resolved {
		return Resolution{Resolved: false}
	}
	return res
}

func afterNoon(curve solarkernel.AltitudeCurve, threshold float64, dir Direction, dhuhr time.Time) Resolution {
	idx := indexAtOrBefore(curve.Samples, dhuhr)
	return crossing(curve.Samples, idx, threshold, dir)
}

func oppositeDirection(d Direction) Direction {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

func indexAtOrBefore(samples []solarkernel.Sample, instant time.Time) int {
	for i, s := range samples {
		if s.UTC.After(instant) {
			if i == 0 {
				return 0
			}
			return i - 1
		}
	}
	return len(samples) - 1
}

// Asr computes the shadow-ratio altitude from the noon declination and
// observer latitude, then runs a descending scan from Dhuhr forward.
// cot(altitude) = shadowFactor + tan(|lat - declination|).
func Asr(curve solarkernel.AltitudeCurve, point models.GeoPoint, dhuhr time.Time, school AsrSchool) Resolution {
	decl := solarkernel.Declination(dhuhr)
	shadowRatio := school.shadowFactor() + math.Tan(toRad(math.Abs(point.Lat-decl)))
	altitude := toDeg(math.Atan(1 / shadowRatio))

	idx := indexAtOrBefore(curve.Samples, dhuhr)
	return crossing(curve.Samples, idx, altitude, Descending)
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
func toDeg(rad float64) float64 { return rad * 180 / math.Pi }

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
