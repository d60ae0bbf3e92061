package chart

import (
	"fmt"
	"strings"

	"github.com/golang/freetype/truetype"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"monitor-reliability/pkg/models"
)

// layout maps data coordinates onto the canvas box for the overlays that
// go-chart has no series type for.
type layout struct {
	font       *truetype.Font
	xMin, xMax float64
}

func (l layout) x(cb gochart.Box, v float64) int {
	return cb.Left + int((v-l.xMin)/(l.xMax-l.xMin)*float64(cb.Width()))
}

func (l layout) y(cb gochart.Box, v float64) int {
	return cb.Bottom - int((v-yMin)/(yMax-yMin)*float64(cb.Height()))
}

// gapBand is a series so go-chart paints it before the timeline and ticks.
type gapBand struct {
	l   layout
	gap *models.GapAnnotation
}

func (b gapBand) GetName() string             { return "Gap" }
func (b gapBand) GetStyle() gochart.Style     { return gochart.Style{FillColor: colorGap.WithAlpha(26)} }
func (b gapBand) GetYAxis() gochart.YAxisType { return gochart.YAxisPrimary }
func (b gapBand) Validate() error             { return nil }

// Render shades the annotated period between y=-0.6 and y=0.6.
func (b gapBand) Render(r gochart.Renderer, cb gochart.Box, _, _ gochart.Range, _ gochart.Style) {
	if b.gap == nil {
		return
	}
	left := b.l.x(cb, gochart.TimeToFloat64(b.gap.Start))
	right := b.l.x(cb, gochart.TimeToFloat64(b.gap.End))
	top, bottom := b.l.y(cb, 0.6), b.l.y(cb, -0.6)

	r.SetFillColor(b.GetStyle().FillColor)
	r.SetStrokeWidth(0)
	r.MoveTo(left, top)
	r.LineTo(right, top)
	r.LineTo(right, bottom)
	r.LineTo(left, bottom)
	r.Close()
	r.Fill()
	r.ResetStyle()
}

// gapLabel writes the annotation label centered above the timeline.
func (l layout) gapLabel(gap *models.GapAnnotation) gochart.Renderable {
	return func(r gochart.Renderer, cb gochart.Box, _ gochart.Style) {
		if gap == nil {
			return
		}
		cx := l.x(cb, gochart.TimeToFloat64(gap.Mid()))
		lines := strings.Split(gap.Label, "\n")
		// bottom line sits at y=0.7, earlier lines stack upward
		baseline := l.y(cb, 0.7)
		lineHeight := l.lineHeight(r, 9)
		for i := len(lines) - 1; i >= 0; i-- {
			l.centered(r, lines[i], cx, baseline, 9, colorGap)
			baseline -= lineHeight
		}
	}
}

// header draws the title, subtitle and the three stat blocks above the canvas.
func (l layout) header(in Input) gochart.Renderable {
	return func(r gochart.Renderer, cb gochart.Box, _ gochart.Style) {
		top := cb.Top - headerPx
		l.text(r, in.Title, cb.Left, top+70, 22, colorTitle)
		l.text(r, Subtitle(in.Range, in.Report.TotalDays), cb.Left, top+115, 12, colorMuted)

		stats := []struct {
			value, label string
			color        drawing.Color
		}{
			{fmt.Sprintf("%.1f%%", in.Report.ReliabilityPct), "Success Rate", colorHit},
			{fmt.Sprintf("%d", in.Report.MissedDays), "Missed Alerts", colorGap},
			{fmt.Sprintf("%d Days", longestGapDays(in)), "Longest Gap", colorStat},
		}
		for i, s := range stats {
			x := cb.Left + i*cb.Width()/4
			l.text(r, s.value, x, top+215, 26, s.color)
			l.text(r, s.label, x, top+255, 10, colorMuted)
		}
	}
}

func (l layout) text(r gochart.Renderer, s string, x, y int, size float64, c drawing.Color) {
	r.SetFont(l.font)
	r.SetFontSize(size)
	r.SetFontColor(c)
	r.Text(s, x, y)
	r.ResetStyle()
}

func (l layout) centered(r gochart.Renderer, s string, cx, y int, size float64, c drawing.Color) {
	r.SetFont(l.font)
	r.SetFontSize(size)
	w := r.MeasureText(s).Width()
	l.text(r, s, cx-w/2, y, size, c)
}

func (l layout) lineHeight(r gochart.Renderer, size float64) int {
	r.SetFont(l.font)
	r.SetFontSize(size)
	h := r.MeasureText("Hg").Height()
	r.ResetStyle()
	return h + h/3
}
