package calculator

import (
	"fmt"
	"time"

	"monitor-reliability/pkg/models"
)

const dateLayout = "2006-01-02"

// InvalidRangeError is returned when the end of a range precedes its start.
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: end %s is before start %s",
		e.End.Format(dateLayout), e.Start.Format(dateLayout))
}

// ParseDate("YYYY-MM-DD") -> jour calendaire UTC
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("format attendu YYYY-MM-DD (ex: 2025-08-19): %w", err)
	}
	return t, nil
}

// NewDateRange normalizes both bounds to calendar days and checks start <= end.
func NewDateRange(start, end time.Time) (models.DateRange, error) {
	s, e := models.Day(start), models.Day(end)
	if e.Before(s) {
		return models.DateRange{}, &InvalidRangeError{Start: s, End: e}
	}
	return models.DateRange{Start: s, End: e}, nil
}

// Compute derives the reliability statistics of hitDates over [start, end].
// Duplicate days count once; days outside the range are excluded from
// ActualDays and tallied in OutOfRange.
func Compute(start, end time.Time, hitDates []time.Time) (models.ReliabilityReport, error) {
	r, err := NewDateRange(start, end)
	if err != nil {
		return models.ReliabilityReport{}, err
	}

	all := models.NewHitSet(hitDates)
	hits := inRange(r, all)

	total := daysBetween(r.Start, r.End) + 1
	actual := hits.Len()
	return models.ReliabilityReport{
		TotalDays:      total,
		ActualDays:     actual,
		MissedDays:     total - actual,
		ReliabilityPct: 100.0 * float64(actual) / float64(total),
		OutOfRange:     all.Len() - actual,
		LongestGap:     LongestGap(r, hits),
	}, nil
}

// Gaps returns every maximal run of days in r without a hit, in order.
// Leading and trailing runs are included.
func Gaps(r models.DateRange, hits models.HitSet) []models.Gap {
	var out []models.Gap
	cursor, last := models.Day(r.Start), models.Day(r.End)
	for _, d := range hits.Days() {
		if !r.Contains(d) {
			continue
		}
		if d.After(cursor) {
			out = append(out, newGap(cursor, d.AddDate(0, 0, -1)))
		}
		cursor = d.AddDate(0, 0, 1)
	}
	if !cursor.After(last) {
		out = append(out, newGap(cursor, last))
	}
	return out
}

// LongestGap returns the longest run of missed days; the earliest wins a tie.
// The zero Gap means every day had a hit.
func LongestGap(r models.DateRange, hits models.HitSet) models.Gap {
	var best models.Gap
	for _, g := range Gaps(r, hits) {
		if g.Days > best.Days {
			best = g
		}
	}
	return best
}

func inRange(r models.DateRange, hits models.HitSet) models.HitSet {
	var kept []time.Time
	for _, d := range hits.Days() {
		if r.Contains(d) {
			kept = append(kept, d)
		}
	}
	return models.NewHitSet(kept)
}

func newGap(start, end time.Time) models.Gap {
	return models.Gap{Start: start, End: end, Days: daysBetween(start, end) + 1}
}

// daysBetween counts whole days between two UTC midnights.
func daysBetween(a, b time.Time) int {
	return int((b.Unix() - a.Unix()) / (24 * 60 * 60))
}
