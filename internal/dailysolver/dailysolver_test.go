package dailysolver

import (
	"context"
	"testing"
	"time"

	"github.com/jcom-dev/chronos/internal/models"
	"github.com/jcom-dev/chronos/internal/schedule"
)

func meccaParams(date time.Time) Params {
	return Params{
		Location: models.ResolvedLocation{
			Name: "Mecca", Point: models.GeoPoint{Lat: 21.4225, Lon: 39.8262},
			TZ: "Asia/Riyadh", Source: models.SourceBuiltIn, Confidence: 0.95,
		},
		Date:     date,
		Strategy: models.StrategyProjected45,
		School:   schedule.AsrStandard,
	}
}

func TestComputeDay_MeccaNormalDayAllStandard(t *testing.T) {
	solver := New()
	sched := solver.ComputeDay(meccaParams(time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)))

	if sched.State != models.StateNormal {
		t.Fatalf("expected Normal state, got %v", sched.State)
	}
	if len(sched.Events) != 6 {
		t.Fatalf("expected 6 events, got %d", len(sched.Events))
	}
	for _, kind := range models.AllPrayerKinds() {
		ev, ok := sched.Events[kind]
		if !ok {
			t.Fatalf("missing event for %s", kind)
		}
		if ev.Method != models.MethodStandard {
			t.Errorf("%s: expected Standard method on a Normal day, got %v", kind, ev.Method)
		}
	}
	if sched.GapStrategy != models.StrategyProjected45 {
		t.Errorf("expected recorded strategy Projected45, got %v", sched.GapStrategy)
	}
}

func TestComputeDay_StrictStrategyReportsNoneInPolarDay(t *testing.T) {
	solver := New()
	params := Params{
		Location: models.ResolvedLocation{
			Name: "Tromso", Point: models.GeoPoint{Lat: 69.6492, Lon: 18.9553},
			TZ: "Europe/Oslo", Source: models.SourceBuiltIn, Confidence: 0.95,
		},
		Date:     time.Date(2026, 6, 21, 0, 0, 0, 0, time.UTC),
		Strategy: models.StrategyStrict,
		School:   schedule.AsrStandard,
	}
	sched := solver.ComputeDay(params)

	if sched.State != models.StatePolarDay {
		t.Fatalf("expected PolarDay, got %v", sched.State)
	}
	if sched.Events[models.Sunrise].Method != models.MethodNone {
		t.Errorf("expected Strict to report sunrise as None, got %v", sched.Events[models.Sunrise].Method)
	}
}

func TestComputeMonth_PreservesOrderAndCoversEveryDay(t *testing.T) {
	solver := New()
	scheds, err := solver.ComputeMonth(context.Background(), meccaParams(time.Time{}), 2026, time.March, 31)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scheds) != 31 {
		t.Fatalf("expected 31 days, got %d", len(scheds))
	}
	for i, sched := range scheds {
		wantDate := time.Date(2026, time.March, i+1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		if sched.Date[:10] != wantDate[:10] {
			t.Errorf("index %d: expected date %s, got %s", i, wantDate, sched.Date)
		}
	}
}

func TestComputeMonth_RejectsInvalidDayCount(t *testing.T) {
	solver := New()
	_, err := solver.ComputeMonth(context.Background(), meccaParams(time.Time{}), 2026, time.March, 0)
	if err == nil {
		t.Fatal("expected an error for a zero day count")
	}
}
