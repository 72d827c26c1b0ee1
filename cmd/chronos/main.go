// Command chronos is a thin CLI over the resolve/compute_day/compute_month/
// list_dataset operations exposed by the core (§6 "Exposed by the core").
// It is a demonstration harness, not a collaborator the core depends on.
//
// Usage:
//
//	chronos resolve "Tromso" --country NO
//	chronos day "Mecca" 2026-03-20 --strategy projected45 --school standard
//	chronos month "Mecca" 2026 3 --days 31
//	chronos dataset
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jcom-dev/chronos/internal/cache"
	"github.com/jcom-dev/chronos/internal/dailysolver"
	"github.com/jcom-dev/chronos/internal/geo"
	"github.com/jcom-dev/chronos/internal/geocoder"
	"github.com/jcom-dev/chronos/internal/ipgeo"
	"github.com/jcom-dev/chronos/internal/locerr"
	"github.com/jcom-dev/chronos/internal/models"
	"github.com/jcom-dev/chronos/internal/resolver"
	"github.com/jcom-dev/chronos/internal/schedule"
)

var (
	verbose     bool
	countryHint string
	strategyStr string
	schoolStr   string
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err)
	}

	rootCmd := &cobra.Command{
		Use:   "chronos",
		Short: "Universal Islamic prayer-time engine",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&countryHint, "country", "", "ISO alpha-2 country hint for ambiguous queries")

	resolveCmd := &cobra.Command{
		Use:   "resolve <query>",
		Short: "Resolve a location query to a ResolvedLocation",
		Args:  cobra.ExactArgs(1),
		RunE:  runResolve,
	}

	dayCmd := &cobra.Command{
		Use:   "day <query> <date YYYY-MM-DD>",
		Short: "Compute one day's prayer schedule",
		Args:  cobra.ExactArgs(2),
		RunE:  runDay,
	}
	dayCmd.Flags().StringVar(&strategyStr, "strategy", "projected45", "gap strategy: strict|projected45")
	dayCmd.Flags().StringVar(&schoolStr, "school", "standard", "asr school: standard|hanafi")

	monthCmd := &cobra.Command{
		Use:   "month <query> <year> <month>",
		Short: "Compute a month's prayer schedules",
		Args:  cobra.ExactArgs(3),
		RunE:  runMonth,
	}
	monthCmd.Flags().StringVar(&strategyStr, "strategy", "projected45", "gap strategy: strict|projected45")
	monthCmd.Flags().StringVar(&schoolStr, "school", "standard", "asr school: standard|hanafi")
	monthCmd.Flags().Int("days", 0, "days to compute (default: the calendar month's length)")

	datasetCmd := &cobra.Command{
		Use:   "dataset",
		Short: "List the embedded location dataset",
		Args:  cobra.NoArgs,
		RunE:  runDataset,
	}

	rootCmd.AddCommand(resolveCmd, dayCmd, monthCmd, datasetCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// buildResolver wires the Cache/Geocoder/IP collaborators the Resolver
// needs. The cache is a required collaborator here (§4.6); a CLI
// invocation with no reachable Redis fails fast with a clear cause
// rather than silently degrading resolution quality.
func buildResolver() (*resolver.Resolver, func(), error) {
	c, err := cache.New()
	if err != nil {
		return nil, nil, fmt.Errorf("location cache unavailable (set REDIS_URL): %w", err)
	}
	r, err := resolver.New(c, geocoder.New(), ipgeo.New())
	if err != nil {
		c.Close()
		return nil, nil, err
	}
	return r, func() { c.Close() }, nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	r, cleanup, err := buildResolver()
	if err != nil {
		return err
	}
	defer cleanup()

	loc, err := r.Resolve(context.Background(), args[0], countryHint)
	if err != nil {
		return describeResolveError(err)
	}
	return printJSON(loc)
}

// describeResolveError renders an Ambiguous resolution as a readable
// candidate list instead of a bare error string, since §9 treats
// ambiguity as data the caller must act on, not a failure to hide.
func describeResolveError(err error) error {
	kind, ok := locerr.KindOf(err)
	if !ok || kind != locerr.KindAmbiguous {
		return err
	}
	var le *locerr.Error
	if !errors.As(err, &le) {
		return err
	}
	fmt.Fprintf(os.Stderr, "ambiguous query, %s candidates:\n", humanize.Comma(int64(len(le.Options))))
	for _, c := range le.Options {
		fmt.Printf("  - %-30s %-4s %-20s (%.4f, %.4f) %s\n", c.Name, c.CountryCode, c.Country, c.Lat, c.Lon, c.TZ)
	}
	return nil
}

func parseStrategy(s string) (models.GapStrategyName, error) {
	switch strings.ToLower(s) {
	case "strict":
		return models.StrategyStrict, nil
	case "projected45", "":
		return models.StrategyProjected45, nil
	default:
		return "", fmt.Errorf("unknown gap strategy %q", s)
	}
}

func parseSchool(s string) (schedule.AsrSchool, error) {
	switch strings.ToLower(s) {
	case "standard", "":
		return schedule.AsrStandard, nil
	case "hanafi":
		return schedule.AsrHanafi, nil
	default:
		return 0, fmt.Errorf("unknown asr school %q", s)
	}
}

func runDay(cmd *cobra.Command, args []string) error {
	date, err := time.Parse("2006-01-02", args[1])
	if err != nil {
		return fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", args[1], err)
	}
	strategy, err := parseStrategy(strategyStr)
	if err != nil {
		return err
	}
	school, err := parseSchool(schoolStr)
	if err != nil {
		return err
	}

	r, cleanup, err := buildResolver()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	loc, err := r.Resolve(ctx, args[0], countryHint)
	if err != nil {
		return describeResolveError(err)
	}

	sched := dailysolver.New().ComputeDay(dailysolver.Params{
		Location: loc,
		Date:     date,
		Strategy: strategy,
		School:   school,
	})
	return printJSON(sched)
}

func runMonth(cmd *cobra.Command, args []string) error {
	year, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid year %q: %w", args[1], err)
	}
	monthNum, err := strconv.Atoi(args[2])
	if err != nil || monthNum < 1 || monthNum > 12 {
		return fmt.Errorf("invalid month %q, want 1-12", args[2])
	}
	month := time.Month(monthNum)

	days, _ := cmd.Flags().GetInt("days")
	if days <= 0 {
		days = time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	}

	strategy, err := parseStrategy(strategyStr)
	if err != nil {
		return err
	}
	school, err := parseSchool(schoolStr)
	if err != nil {
		return err
	}

	r, cleanup, err := buildResolver()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	loc, err := r.Resolve(ctx, args[0], countryHint)
	if err != nil {
		return describeResolveError(err)
	}

	start := time.Now()
	scheds, err := dailysolver.New().ComputeMonth(ctx, dailysolver.Params{
		Location: loc,
		Strategy: strategy,
		School:   school,
	}, year, month, days)
	if err != nil {
		return err
	}
	slog.Info("computed month", "days", humanize.Comma(int64(len(scheds))), "elapsed", time.Since(start).Round(time.Millisecond))

	return printJSON(scheds)
}

func runDataset(cmd *cobra.Command, args []string) error {
	type entry struct {
		Name        string `json:"name"`
		CountryCode string `json:"country_code"`
		Country     string `json:"country"`
	}
	records := geo.List()
	out := make([]entry, 0, len(records))
	for _, rec := range records {
		out = append(out, entry{Name: rec.CanonicalName, CountryCode: rec.CountryCode, Country: rec.CountryName})
	}
	return printJSON(out)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
