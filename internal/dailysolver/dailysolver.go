// Package dailysolver is the single entry point that composes every
// lower layer — solarkernel, schedule, gapstrategy — into a complete
// DaySchedule for one resolved location, plus a bounded-parallel
// month-level batch operation over the same pure pipeline.
//
// # Usage
//
// Build a Solver once at startup:
//
//	solver := dailysolver.New()
//
// Compute a single day:
//
//	sched := solver.ComputeDay(dailysolver.Params{
//	    Location: resolvedLocation,
//	    Date:     time.Now(),
//	    Strategy: models.StrategyProjected45,
//	    School:   schedule.AsrStandard,
//	})
//
// Compute a month's 31 days, fanned out across goroutines bounded by the
// Solver's concurrency (set with WithConcurrency):
//
//	scheds, err := solver.ComputeMonth(ctx, params, 2026, time.March, 31)
package dailysolver

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jcom-dev/chronos/internal/gapstrategy"
	"github.com/jcom-dev/chronos/internal/models"
	"github.com/jcom-dev/chronos/internal/schedule"
	"github.com/jcom-dev/chronos/internal/solarkernel"
)

// defaultMonthConcurrency bounds ComputeMonth's fan-out. Each day's
// computation is pure and independent (§5: "no shared state across day
// computations"), so this is purely a resource cap, not a correctness
// requirement.
const defaultMonthConcurrency = 8

// Params carries everything one day's computation needs.
type Params struct {
	Location models.ResolvedLocation
	Date     time.Time
	Strategy models.GapStrategyName
	School   schedule.AsrSchool
}

// Solver computes DaySchedules from resolved locations. It holds no
// state of its own; every method is a pure function of its arguments.
type Solver struct {
	concurrency int
}

// New builds a Solver with the default month-level fan-out bound.
func New() *Solver {
	return &Solver{concurrency: defaultMonthConcurrency}
}

// WithConcurrency overrides ComputeMonth's fan-out bound.
func (s *Solver) WithConcurrency(n int) *Solver {
	if n < 1 {
		n = 1
	}
	return &Solver{concurrency: n}
}

// ComputeDay runs the full solar kernel -> event scheduler -> gap
// strategy pipeline for one civil day at one resolved location.
func (s *Solver) ComputeDay(p Params) models.DaySchedule {
	tz, err := time.LoadLocation(p.Location.TZ)
	if err != nil {
		tz = time.UTC
	}

	curve := solarkernel.SampleDay(p.Date, p.Location.Point, tz)
	dhuhr := schedule.Dhuhr(curve)
	day := schedule.Day(curve)

	raw := map[models.PrayerKind]schedule.Resolution{
		models.Fajr:    schedule.Fajr(curve, dhuhr.Instant),
		models.Sunrise: schedule.Sunrise(curve, dhuhr.Instant),
		models.Dhuhr:   dhuhr,
		models.Asr:     schedule.Asr(curve, p.Location.Point, dhuhr.Instant, p.School),
		models.Maghrib: schedule.Maghrib(curve, dhuhr.Instant),
		models.Isha:    schedule.Isha(curve, dhuhr.Instant),
	}

	strategy := gapstrategy.Resolve(p.Strategy)
	events := strategy.Fill(gapstrategy.Input{
		Date:   p.Date,
		Point:  p.Location.Point,
		TZ:     tz,
		School: p.School,
		Curve:  curve,
		Dhuhr:  dhuhr,
		Raw:    raw,
	})

	return models.DaySchedule{
		Date:     p.Date.In(tz).Format("2006-01-02"),
		Location: p.Location,
		State:    day,
		Events:   events,
		Solar: models.SolarSummary{
			MaxAltitude: curve.Peak.Altitude,
			MinAltitude: curve.Nadir.Altitude,
			PeakUTC:     curve.Peak.UTC,
			NadirUTC:    curve.Nadir.UTC,
		},
		GapStrategy:        strategy.Name(),
		LocationConfidence: p.Location.Confidence,
	}
}

// ComputeMonth computes every civil day in the given month, fanning out
// across a bounded worker pool via errgroup.SetLimit (§5: "implementations
// targeting a month-level batch API should exploit this" no-shared-state
// guarantee). Results preserve day-of-month order regardless of
// completion order.
func (s *Solver) ComputeMonth(ctx context.Context, p Params, year int, month time.Month, days int) ([]models.DaySchedule, error) {
	if days < 1 {
		return nil, fmt.Errorf("invalid day count %d for %s %d", days, month, year)
	}

	tz, err := time.LoadLocation(p.Location.TZ)
	if err != nil {
		tz = time.UTC
	}

	results := make([]models.DaySchedule, days)
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)

	for i := 0; i < days; i++ {
		i := i
		group.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			dayParams := p
			dayParams.Date = time.Date(year, month, i+1, 0, 0, 0, 0, tz)
			results[i] = s.ComputeDay(dayParams)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("compute_month failed over %d days starting %s: %w", days, time.Date(year, month, 1, 0, 0, 0, 0, tz).Format("2006-01-02"), err)
	}
	return results, nil
}
