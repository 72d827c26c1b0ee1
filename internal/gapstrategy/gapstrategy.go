// Package gapstrategy turns the Event Scheduler's raw, possibly
// unresolved crossing results into a complete set of models.PrayerEvent
// values — either by reporting the honest gap (Strict) or by filling it
// with a progressively less confident synthetic estimate (Projected45).
package gapstrategy

import (
	"fmt"
	"math"
	"time"

	"github.com/jcom-dev/chronos/internal/models"
	"github.com/jcom-dev/chronos/internal/schedule"
	"github.com/jcom-dev/chronos/internal/solarkernel"
)

// referenceLatMin/Max bound the adaptive reference latitude search: start
// at 45 degrees and widen toward 55 in whole-degree steps until the
// event resolves there. Decided per the open question on adaptive
// widening granularity; 1-degree steps keep the search cheap (at most 10
// extra AltitudeCurve samplings) while remaining fine enough that no
// populated latitude band is skipped over.
const (
	referenceLatMin  = 45.0
	referenceLatMax  = 55.0
	referenceLatStep = 1.0
)

// Input is everything a Strategy needs to fill one civil day's events:
// the raw scheduler output plus enough of the request to recompute a
// curve at a synthetic reference latitude.
type Input struct {
	Date   time.Time
	Point  models.GeoPoint
	TZ     *time.Location
	School schedule.AsrSchool
	Curve  solarkernel.AltitudeCurve
	Dhuhr  schedule.Resolution
	Raw    map[models.PrayerKind]schedule.Resolution
}

// Strategy fills unresolved events for one civil day.
type Strategy interface {
	Name() models.GapStrategyName
	Fill(in Input) map[models.PrayerKind]models.PrayerEvent
}

func toEvent(kind models.PrayerKind, res schedule.Resolution, method models.EventMethod, note string, tz *time.Location) models.PrayerEvent {
	if !res.Resolved {
		return models.PrayerEvent{Kind: kind, Time: nil, Method: models.MethodNone, Confidence: 0, Note: note}
	}
	lt := models.NewLocalTime(res.Instant.In(tz))
	return models.PrayerEvent{
		Kind:       kind,
		Time:       &lt,
		NextDay:    res.NextDay,
		Method:     method,
		Confidence: method.ConfidenceCeiling(),
		Note:       note,
	}
}

// Strict reports unresolved events honestly: method=None, no time.
type Strict struct{}

func (Strict) Name() models.GapStrategyName { return models.StrategyStrict }

func (Strict) Fill(in Input) map[models.PrayerKind]models.PrayerEvent {
	out := make(map[models.PrayerKind]models.PrayerEvent, len(models.AllPrayerKinds()))
	for _, kind := range models.AllPrayerKinds() {
		res := in.Raw[kind]
		if res.Resolved {
			out[kind] = toEvent(kind, res, models.MethodStandard, "", in.TZ)
			continue
		}
		out[kind] = toEvent(kind, res, models.MethodNone, dayStateNote(in.Curve), in.TZ)
	}
	return out
}

func dayStateNote(curve solarkernel.AltitudeCurve) string {
	return fmt.Sprintf("threshold never crossed; day state %s", schedule.Day(curve))
}

// kindResolver evaluates one prayer kind's crossing against an
// AltitudeCurve/Dhuhr pair, used identically against the observer's real
// curve and against a synthetic reference-latitude curve.
func kindResolver(kind models.PrayerKind, point models.GeoPoint, school schedule.AsrSchool) func(curve solarkernel.AltitudeCurve, dhuhr time.Time) schedule.Resolution {
	switch kind {
	case models.Fajr:
		return schedule.Fajr
	case models.Sunrise:
		return schedule.Sunrise
	case models.Maghrib:
		return schedule.Maghrib
	case models.Isha:
		return schedule.Isha
	case models.Asr:
		return func(curve solarkernel.AltitudeCurve, dhuhr time.Time) schedule.Resolution {
			return schedule.Asr(curve, point, dhuhr, school)
		}
	default:
		return func(curve solarkernel.AltitudeCurve, dhuhr time.Time) schedule.Resolution {
			return schedule.Dhuhr(curve)
		}
	}
}

// referenceSearch widens the synthetic reference latitude from 45 toward
// 55 degrees (mirrored into the observer's hemisphere) until kind
// resolves there, re-sampling a fresh AltitudeCurve at each step. Returns
// ok=false if it never resolves within the band — this only happens for
// Asr under pathological declination/latitude combinations, and the
// caller treats that as "no synthetic estimate available".
func referenceSearch(kind models.PrayerKind, date time.Time, lon float64, hemisphereSign float64, school schedule.AsrSchool) (refLat float64, curve solarkernel.AltitudeCurve, dhuhr schedule.Resolution, res schedule.Resolution, ok bool) {
	for lat := referenceLatMin; lat <= referenceLatMax+1e-9; lat += referenceLatStep {
		refPoint := models.GeoPoint{Lat: hemisphereSign * lat, Lon: lon}
		refResolve := kindResolver(kind, refPoint, school)
		refCurve := solarkernel.SampleDay(date, refPoint, time.UTC)
		refDhuhr := schedule.Dhuhr(refCurve)
		refRes := refResolve(refCurve, refDhuhr.Instant)
		if refRes.Resolved {
			return lat, refCurve, refDhuhr, refRes, true
		}
	}
	return 0, solarkernel.AltitudeCurve{}, schedule.Resolution{}, schedule.Resolution{}, false
}

// virtualCapable lists the kinds §4.3 allows a Virtual fallback for:
// Fajr/Isha, whose -18 degree threshold can fail to be crossed while the
// horizon (Sunrise/Maghrib) still resolves normally (WhiteNight).
func virtualCapable(kind models.PrayerKind) bool {
	return kind == models.Fajr || kind == models.Isha
}

// Projected45 is the default strategy: Virtual fallback for Fajr/Isha,
// then Projected as the universal backstop for any still-unresolved
// event (including Sunrise/Maghrib, and Asr in pathological cases).
type Projected45 struct{}

func (Projected45) Name() models.GapStrategyName { return models.StrategyProjected45 }

func (p Projected45) Fill(in Input) map[models.PrayerKind]models.PrayerEvent {
	out := make(map[models.PrayerKind]models.PrayerEvent, len(models.AllPrayerKinds()))
	state := schedule.Day(in.Curve)
	hemisphere := 1.0
	if in.Point.Lat < 0 {
		hemisphere = -1.0
	}

	for _, kind := range models.AllPrayerKinds() {
		res := in.Raw[kind]
		if res.Resolved {
			out[kind] = toEvent(kind, res, models.MethodStandard, "", in.TZ)
			continue
		}

		if virtualCapable(kind) && state != models.StatePolarNight {
			if event, ok := p.virtual(kind, in); ok {
				out[kind] = event
				continue
			}
		}

		if event, ok := p.projected(kind, in, hemisphere); ok {
			out[kind] = event
			continue
		}

		out[kind] = toEvent(kind, res, models.MethodNone, dayStateNote(in.Curve), in.TZ)
	}
	return out
}

// virtual reflects the wave's nadir around solar noon and offsets by the
// twilight-equivalent duration measured at the reference latitude: for
// Fajr (morning side, same side as nadir) the duration runs forward from
// the real nadir; for Isha (evening side) it runs forward from the
// nadir's mirror image across Dhuhr, i.e. 2*Dhuhr - Nadir.
func (Projected45) virtual(kind models.PrayerKind, in Input) (models.PrayerEvent, bool) {
	hemisphere := 1.0
	if in.Point.Lat < 0 {
		hemisphere = -1.0
	}
	refLat, refCurve, _, refRes, ok := referenceSearch(kind, in.Date, in.Point.Lon, hemisphere, in.School)
	if !ok {
		return models.PrayerEvent{}, false
	}
	duration := refRes.Instant.Sub(refCurve.Nadir.UTC)

	var anchor time.Time
	switch kind {
	case models.Fajr:
		anchor = in.Curve.Nadir.UTC
	case models.Isha:
		anchor = in.Dhuhr.Instant.Add(in.Dhuhr.Instant.Sub(in.Curve.Nadir.UTC))
	default:
		return models.PrayerEvent{}, false
	}

	instant := anchor.Add(duration)
	note := fmt.Sprintf("virtual: reference latitude %.0f", math.Abs(refLat))
	lt := models.NewLocalTime(instant.In(in.TZ))
	return models.PrayerEvent{
		Kind:       kind,
		Time:       &lt,
		NextDay:    instant.Sub(in.Curve.Samples[0].UTC) >= 24*time.Hour,
		Method:     models.MethodVirtual,
		Confidence: models.MethodVirtual.ConfidenceCeiling(),
		Note:       note,
	}, true
}

// projected transplants the event's duration-from-solar-noon measured at
// an adaptive reference latitude back onto the observer's own solar
// noon, which always exists.
func (Projected45) projected(kind models.PrayerKind, in Input, hemisphere float64) (models.PrayerEvent, bool) {
	refLat, _, refDhuhr, refRes, ok := referenceSearch(kind, in.Date, in.Point.Lon, hemisphere, in.School)
	if !ok {
		return models.PrayerEvent{}, false
	}
	duration := refRes.Instant.Sub(refDhuhr.Instant)
	instant := in.Dhuhr.Instant.Add(duration)

	note := fmt.Sprintf("projected: reference latitude %.0f", math.Abs(refLat))
	lt := models.NewLocalTime(instant.In(in.TZ))
	return models.PrayerEvent{
		Kind:       kind,
		Time:       &lt,
		NextDay:    instant.Sub(in.Curve.Samples[0].UTC) >= 24*time.Hour,
		Method:     models.MethodProjected,
		Confidence: models.MethodProjected.ConfidenceCeiling(),
		Note:       note,
	}, true
}

// Resolve returns the Strategy for a given name, defaulting to
// Projected45 for any unrecognized value.
func Resolve(name models.GapStrategyName) Strategy {
	if name == models.StrategyStrict {
		return Strict{}
	}
	return Projected45{}
}
