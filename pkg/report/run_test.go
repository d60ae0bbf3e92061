package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monitor-reliability/pkg/calculator"
	"monitor-reliability/pkg/chart"
	"monitor-reliability/pkg/config"
	"monitor-reliability/pkg/models"
)

type recordingRenderer struct {
	calls []chart.Input
	paths []string
	err   error
}

func (r *recordingRenderer) Render(in chart.Input, path string) error {
	r.calls = append(r.calls, in)
	r.paths = append(r.paths, path)
	return r.err
}

type failingSource struct{}

func (failingSource) HitDates(context.Context, models.DateRange) ([]time.Time, error) {
	return nil, errors.New("connection refused")
}

func utc(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRun_DefaultConfig(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Output = filepath.Join(t.TempDir(), "out.png")

	r := &recordingRenderer{}
	sum, err := Run(context.Background(), cfg, StaticSource(cfg.HitDates), r)
	require.NoError(t, err)

	assert.Equal(t, 142, sum.Report.TotalDays)
	assert.Equal(t, 41, sum.Report.ActualDays)
	assert.Equal(t, 101, sum.Report.MissedDays)
	assert.Equal(t,
		"Chart saved to: "+cfg.Output+"\nStats: 28.9% success rate, 101 missed alerts out of 142 days",
		sum.String())

	require.Len(t, r.calls, 1)
	in := r.calls[0]
	assert.Equal(t, cfg.Output, r.paths[0])
	assert.Equal(t, 41, in.Hits.Len())
	assert.Equal(t, 34, in.LongestGapDays)
	assert.Equal(t, utc(2025, 8, 19), in.Range.Start)
	assert.Equal(t, utc(2026, 1, 7), in.Range.End)
	require.NotNil(t, in.Gap)
	assert.Equal(t, "Silent Failure\n(34 Days)", in.Gap.Label)
}

func TestRun_OutOfRangeNotDrawn(t *testing.T) {
	cfg := &models.Config{
		Title:   "t",
		Monitor: "m",
		Start:   utc(2025, 10, 1),
		End:     utc(2025, 10, 10),
		Output:  "unused.png",
	}
	hits := StaticSource{utc(2025, 9, 30), utc(2025, 10, 2), utc(2025, 10, 2), utc(2025, 10, 11)}

	r := &recordingRenderer{}
	sum, err := Run(context.Background(), cfg, hits, r)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Report.ActualDays)
	assert.Equal(t, 2, sum.Report.OutOfRange)
	assert.Equal(t, 1, r.calls[0].Hits.Len())
}

func TestRun_InvalidRange(t *testing.T) {
	cfg := &models.Config{Start: utc(2025, 10, 10), End: utc(2025, 10, 1), Output: "x.png"}
	r := &recordingRenderer{}

	_, err := Run(context.Background(), cfg, StaticSource(nil), r)
	var ire *calculator.InvalidRangeError
	require.True(t, errors.As(err, &ire))
	assert.Empty(t, r.calls)
}

func TestRun_SourceError(t *testing.T) {
	cfg := &models.Config{Start: utc(2025, 10, 1), End: utc(2025, 10, 10), Output: "x.png"}
	r := &recordingRenderer{}

	_, err := Run(context.Background(), cfg, failingSource{}, r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load hit dates")
	assert.Empty(t, r.calls)
}

func TestRun_RenderError(t *testing.T) {
	cfg := &models.Config{Start: utc(2025, 10, 1), End: utc(2025, 10, 10), Output: "x.png"}
	r := &recordingRenderer{err: errors.New("disk full")}

	_, err := Run(context.Background(), cfg, StaticSource(nil), r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRun_WritesMetrics(t *testing.T) {
	dir := t.TempDir()
	cfg := &models.Config{
		Monitor:    "nightly",
		Start:      utc(2025, 10, 1),
		End:        utc(2025, 10, 10),
		Output:     filepath.Join(dir, "x.png"),
		MetricsOut: filepath.Join(dir, "nightly.prom"),
	}

	_, err := Run(context.Background(), cfg, StaticSource{utc(2025, 10, 5)}, &recordingRenderer{})
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.MetricsOut)
	require.NoError(t, err)
	assert.Contains(t, string(data), `monitor_days_hit{monitor="nightly"} 1`)
	// no literal configured: the derived gap (Oct 6..10) is exported
	assert.Contains(t, string(data), `monitor_longest_gap_days{monitor="nightly"} 5`)
}

func TestRun_WithGoChart(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Output = filepath.Join(t.TempDir(), "142_days_monitor_reliability.png")

	_, err = Run(context.Background(), cfg, StaticSource(cfg.HitDates), chart.GoChart{})
	require.NoError(t, err)

	st, err := os.Stat(cfg.Output)
	require.NoError(t, err)
	assert.Greater(t, st.Size(), int64(0))
}
