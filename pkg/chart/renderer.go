package chart

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"monitor-reliability/pkg/models"
)

// Input is everything a Renderer needs to draw one reliability chart.
type Input struct {
	Title          string
	Range          models.DateRange
	Hits           models.HitSet
	Report         models.ReliabilityReport
	LongestGapDays int                   // Displayed value; 0 falls back to Report.LongestGap.Days.
	Gap            *models.GapAnnotation // Optional highlighted period.
}

// Renderer draws a reliability chart and writes it to path.
type Renderer interface {
	Render(in Input, path string) error
}

var (
	colorBackground = drawing.ColorFromHex("f8f9fa")
	colorTimeline   = drawing.ColorFromHex("e9ecef")
	colorHit        = drawing.ColorFromHex("742774")
	colorGap        = drawing.ColorFromHex("dc3545")
	colorTitle      = drawing.ColorFromHex("212529")
	colorMuted      = drawing.ColorFromHex("6c757d")
	colorStat       = drawing.ColorFromHex("343a40")
	colorAxis       = drawing.ColorFromHex("adb5bd")
	colorTick       = drawing.ColorFromHex("495057")
)

const (
	yMin, yMax = -1.0, 2.0
	xPadDays   = 5
	headerPx   = 330
)

// GoChart renders with go-chart. Zero values give a 16:9 image at 150 DPI.
type GoChart struct {
	Width  int
	Height int
	DPI    float64
}

// Render draws the chart. The extension of path picks the format: ".svg" is
// written as vector, any raster extension imaging knows is re-encoded from PNG.
func (g GoChart) Render(in Input, path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".svg" {
		if _, err := imaging.FormatFromFilename(path); err != nil {
			return fmt.Errorf("output %s: %w", path, err)
		}
	}

	ch, err := g.build(in)
	if err != nil {
		return err
	}

	if ext == ".svg" {
		var buf bytes.Buffer
		if err := ch.Render(gochart.SVG, &buf); err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		return nil
	}

	var buf bytes.Buffer
	if err := ch.Render(gochart.PNG, &buf); err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	img, err := imaging.Decode(&buf)
	if err != nil {
		return fmt.Errorf("decode rendered png: %w", err)
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (g GoChart) size() (int, int, float64) {
	w, h, dpi := g.Width, g.Height, g.DPI
	if w == 0 {
		w = 1800
	}
	if h == 0 {
		h = w * 9 / 16
	}
	if dpi == 0 {
		dpi = 150
	}
	return w, h, dpi
}

func (g GoChart) build(in Input) (gochart.Chart, error) {
	font, err := gochart.GetDefaultFont()
	if err != nil {
		return gochart.Chart{}, fmt.Errorf("load font: %w", err)
	}
	w, h, dpi := g.size()

	xMin := gochart.TimeToFloat64(in.Range.Start.AddDate(0, 0, -xPadDays))
	xMax := gochart.TimeToFloat64(in.Range.End.AddDate(0, 0, xPadDays))

	l := layout{font: font, xMin: xMin, xMax: xMax}
	series := []gochart.Series{
		gapBand{l: l, gap: in.Gap},
		gochart.TimeSeries{
			Name:    "Timeline",
			XValues: []time.Time{in.Range.Start, in.Range.End},
			YValues: []float64{0, 0},
			Style:   gochart.Style{StrokeColor: colorTimeline, StrokeWidth: 50},
		},
	}
	for _, d := range in.Hits.Days() {
		series = append(series, gochart.TimeSeries{
			Name:    "Alert Received",
			XValues: []time.Time{d, d},
			YValues: []float64{-0.45, 0.45},
			Style:   gochart.Style{StrokeColor: colorHit, StrokeWidth: 4},
		})
	}

	return gochart.Chart{
		Width:  w,
		Height: h,
		DPI:    dpi,
		Font:   font,
		Background: gochart.Style{
			FillColor: colorBackground,
			Padding:   gochart.Box{Top: headerPx, Left: 60, Right: 60, Bottom: 30},
		},
		Canvas: gochart.Style{FillColor: colorBackground},
		XAxis: gochart.XAxis{
			Style: gochart.Style{
				StrokeColor: colorAxis,
				StrokeWidth: 1,
				FontColor:   colorTick,
				FontSize:    10,
			},
			Range: &gochart.ContinuousRange{Min: xMin, Max: xMax},
			Ticks: monthTicks(in.Range.Start.AddDate(0, 0, -xPadDays), in.Range.End.AddDate(0, 0, xPadDays)),
		},
		YAxis: gochart.YAxis{
			Style: gochart.Hidden(),
			Range: &gochart.ContinuousRange{Min: yMin, Max: yMax},
		},
		Series: series,
		Elements: []gochart.Renderable{
			l.gapLabel(in.Gap),
			l.header(in),
		},
	}, nil
}

// monthTicks places one tick on the first day of every month in [from, to].
func monthTicks(from, to time.Time) []gochart.Tick {
	var ticks []gochart.Tick
	m := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	if m.Before(from) {
		m = m.AddDate(0, 1, 0)
	}
	for ; !m.After(to); m = m.AddDate(0, 1, 0) {
		ticks = append(ticks, gochart.Tick{Value: gochart.TimeToFloat64(m), Label: m.Format("Jan 2006")})
	}
	return ticks
}

// Subtitle describes the observation window, e.g.
// "Daily Alert Check: Aug 19, 2025 - Jan 07, 2026 (142 days)".
func Subtitle(r models.DateRange, totalDays int) string {
	return fmt.Sprintf("Daily Alert Check: %s - %s (%d days)",
		r.Start.Format("Jan 02, 2006"), r.End.Format("Jan 02, 2006"), totalDays)
}

func longestGapDays(in Input) int {
	if in.LongestGapDays > 0 {
		return in.LongestGapDays
	}
	return in.Report.LongestGap.Days
}
