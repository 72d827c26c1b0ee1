package gapstrategy

import (
	"testing"
	"time"

	"github.com/jcom-dev/chronos/internal/models"
	"github.com/jcom-dev/chronos/internal/schedule"
	"github.com/jcom-dev/chronos/internal/solarkernel"
)

func buildInput(t *testing.T, lat, lon float64, date time.Time) Input {
	t.Helper()
	point := models.GeoPoint{Lat: lat, Lon: lon}
	curve := solarkernel.SampleDay(date, point, time.UTC)
	dhuhr := schedule.Dhuhr(curve)

	raw := map[models.PrayerKind]schedule.Resolution{
		models.Fajr:    schedule.Fajr(curve, dhuhr.Instant),
		models.Sunrise: schedule.Sunrise(curve, dhuhr.Instant),
		models.Dhuhr:   dhuhr,
		models.Asr:     schedule.Asr(curve, point, dhuhr.Instant, schedule.AsrStandard),
		models.Maghrib: schedule.Maghrib(curve, dhuhr.Instant),
		models.Isha:    schedule.Isha(curve, dhuhr.Instant),
	}

	return Input{
		Date:   date,
		Point:  point,
		TZ:     time.UTC,
		School: schedule.AsrStandard,
		Curve:  curve,
		Dhuhr:  dhuhr,
		Raw:    raw,
	}
}

func TestStrict_UnresolvedEventsReportNone(t *testing.T) {
	date := time.Date(2026, 6, 21, 0, 0, 0, 0, time.UTC)
	in := buildInput(t, 69.6, 18.9, date) // Tromso midsummer: PolarDay

	events := Strict{}.Fill(in)

	for _, kind := range []models.PrayerKind{models.Sunrise, models.Maghrib} {
		ev := events[kind]
		if ev.Method != models.MethodNone {
			t.Errorf("%s: expected method None under Strict, got %v", kind, ev.Method)
		}
		if ev.Time != nil {
			t.Errorf("%s: expected nil time under Strict, got %v", kind, ev.Time)
		}
		if ev.Confidence != 0 {
			t.Errorf("%s: expected confidence 0, got %v", kind, ev.Confidence)
		}
	}

	if events[models.Dhuhr].Method != models.MethodStandard {
		t.Error("expected dhuhr to always resolve as Standard")
	}
}

func TestProjected45_FillsEveryEventWithDecreasingConfidence(t *testing.T) {
	date := time.Date(2026, 6, 21, 0, 0, 0, 0, time.UTC)
	in := buildInput(t, 69.6, 18.9, date) // Tromso midsummer: PolarDay

	events := Projected45{}.Fill(in)

	for _, kind := range models.AllPrayerKinds() {
		ev := events[kind]
		if ev.Method == models.MethodNone {
			t.Errorf("%s: Projected45 should never leave an event as None (Tromso PolarDay is within the reference band)", kind)
		}
		if ev.Time == nil {
			t.Errorf("%s: expected a concrete time, got nil", kind)
		}
		if ev.Confidence > models.MethodStandard.ConfidenceCeiling() {
			t.Errorf("%s: confidence %v exceeds Standard ceiling", kind, ev.Confidence)
		}
	}

	sunrise := events[models.Sunrise]
	if sunrise.Method != models.MethodProjected {
		t.Errorf("expected sunrise to resolve via Projected in PolarDay, got %v", sunrise.Method)
	}
}

func TestProjected45_NormalDayNeedsNoFallback(t *testing.T) {
	date := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	in := buildInput(t, 21.4225, 39.8262, date) // Mecca equinox: Normal

	events := Projected45{}.Fill(in)
	for _, kind := range models.AllPrayerKinds() {
		if events[kind].Method != models.MethodStandard {
			t.Errorf("%s: expected Standard on a Normal day, got %v", kind, events[kind].Method)
		}
	}
}

func TestResolve_DefaultsToProjected45(t *testing.T) {
	if _, ok := Resolve("unknown").(Projected45); !ok {
		t.Error("expected unknown strategy name to default to Projected45")
	}
	if _, ok := Resolve(models.StrategyStrict).(Strict); !ok {
		t.Error("expected StrategyStrict to resolve to Strict")
	}
}
