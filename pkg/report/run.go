package report

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"monitor-reliability/pkg/calculator"
	"monitor-reliability/pkg/chart"
	"monitor-reliability/pkg/metrics"
	"monitor-reliability/pkg/models"

	"github.com/schollz/progressbar/v3"
)

// HitSource yields the days on which the monitored alert was received.
type HitSource interface {
	HitDates(ctx context.Context, r models.DateRange) ([]time.Time, error)
}

// StaticSource serves a fixed list of dates, as written in the config.
type StaticSource []time.Time

func (s StaticSource) HitDates(_ context.Context, _ models.DateRange) ([]time.Time, error) {
	return s, nil
}

// Summary is what one run produced.
type Summary struct {
	Output     string
	MetricsOut string
	Report     models.ReliabilityReport
}

func (s Summary) String() string {
	return fmt.Sprintf("Chart saved to: %s\nStats: %.1f%% success rate, %d missed alerts out of %d days",
		s.Output, s.Report.ReliabilityPct, s.Report.MissedDays, s.Report.TotalDays)
}

// Run loads the hit dates, computes the report, renders the chart and, when
// cfg.MetricsOut is set, writes the Prometheus textfile.
func Run(ctx context.Context, cfg *models.Config, src HitSource, r chart.Renderer) (Summary, error) {
	dr, err := calculator.NewDateRange(cfg.Start, cfg.End)
	if err != nil {
		return Summary{}, err
	}

	steps := 3
	if cfg.MetricsOut != "" {
		steps++
	}
	bar := newBar(steps, cfg.Verbose)

	// 1) Jours avec alerte
	hits, err := src.HitDates(ctx, dr)
	if err != nil {
		return Summary{}, fmt.Errorf("load hit dates: %w", err)
	}
	_ = bar.Add(1)

	// 2) Statistiques
	rep, err := calculator.Compute(dr.Start, dr.End, hits)
	if err != nil {
		return Summary{}, fmt.Errorf("compute: %w", err)
	}
	_ = bar.Add(1)
	if cfg.Verbose {
		log.Printf("[INFO] %s -> reliability=%.2f%% | total=%d hit=%d missed=%d out_of_range=%d longest_gap=%d",
			cfg.Monitor, rep.ReliabilityPct, rep.TotalDays, rep.ActualDays, rep.MissedDays, rep.OutOfRange, rep.LongestGap.Days)
	}
	if rep.OutOfRange > 0 {
		log.Printf("[WARN] %d hit day(s) outside %s..%s were ignored",
			rep.OutOfRange, dr.Start.Format("2006-01-02"), dr.End.Format("2006-01-02"))
	}
	if cfg.Verbose && cfg.Gap != nil && cfg.Gap.Days() != rep.LongestGap.Days {
		log.Printf("[DEBUG] annotated gap is %d days, longest derived gap is %d days (%s..%s)",
			cfg.Gap.Days(), rep.LongestGap.Days,
			rep.LongestGap.Start.Format("2006-01-02"), rep.LongestGap.End.Format("2006-01-02"))
	}

	// 3) Graphique
	in := chart.Input{
		Title:          cfg.Title,
		Range:          dr,
		Hits:           inWindow(dr, hits),
		Report:         rep,
		LongestGapDays: cfg.LongestGapDays,
		Gap:            cfg.Gap,
	}
	if err := r.Render(in, cfg.Output); err != nil {
		return Summary{}, fmt.Errorf("render chart: %w", err)
	}
	_ = bar.Add(1)

	// 4) Export Prometheus (optionnel)
	if cfg.MetricsOut != "" {
		gap := cfg.LongestGapDays
		if gap == 0 {
			gap = rep.LongestGap.Days
		}
		if err := metrics.WriteFile(cfg.MetricsOut, cfg.Monitor, rep, gap); err != nil {
			return Summary{}, err
		}
		_ = bar.Add(1)
	}

	return Summary{Output: cfg.Output, MetricsOut: cfg.MetricsOut, Report: rep}, nil
}

// inWindow keeps only the hit days the chart can place on the timeline.
func inWindow(dr models.DateRange, hits []time.Time) models.HitSet {
	kept := make([]time.Time, 0, len(hits))
	for _, d := range hits {
		if dr.Contains(d) {
			kept = append(kept, d)
		}
	}
	return models.NewHitSet(kept)
}

func newBar(steps int, verbose bool) *progressbar.ProgressBar {
	var w io.Writer = io.Discard
	if verbose {
		w = os.Stderr
	}
	return progressbar.NewOptions(steps,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("reliability"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
