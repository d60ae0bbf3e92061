package models

import (
	"sort"
	"time"
)

/*
INPUT → fenêtre d'observation et jours où l'alerte a été reçue.
*/

// DateRange is an inclusive run of consecutive calendar days. Bounds are read
// as calendar days whatever their clock time; build it with
// calculator.NewDateRange so that Start <= End holds.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of calendar days in the range, both ends included.
func (r DateRange) Days() int {
	return int((Day(r.End).Unix()-Day(r.Start).Unix())/secondsPerDay) + 1
}

// Contains reports whether the calendar day d falls inside the range.
func (r DateRange) Contains(d time.Time) bool {
	d = Day(d)
	return !d.Before(Day(r.Start)) && !d.After(Day(r.End))
}

// HitSet is a deduplicated set of calendar days on which the expected event
// was observed. Days are kept sorted ascending.
type HitSet struct {
	days []time.Time
}

// NewHitSet normalizes every date to its UTC calendar day and drops duplicates.
func NewHitSet(dates []time.Time) HitSet {
	seen := make(map[time.Time]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		d = Day(d)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return HitSet{days: days}
}

// Len returns the number of distinct days.
func (h HitSet) Len() int { return len(h.days) }

// Days returns a copy of the days, ascending.
func (h HitSet) Days() []time.Time {
	out := make([]time.Time, len(h.days))
	copy(out, h.days)
	return out
}

// Contains reports whether d (as a calendar day) is in the set.
func (h HitSet) Contains(d time.Time) bool {
	d = Day(d)
	i := sort.Search(len(h.days), func(i int) bool { return !h.days[i].Before(d) })
	return i < len(h.days) && h.days[i].Equal(d)
}

/*
COMPUTE → résultat dérivé, immuable une fois construit.
*/

// Gap is a contiguous span of days with no hit.
type Gap struct {
	Start time.Time
	End   time.Time
	Days  int
}

// ReliabilityReport holds the coverage statistics for one DateRange.
type ReliabilityReport struct {
	TotalDays      int     // Length of the range.
	ActualDays     int     // Distinct hit days inside the range.
	MissedDays     int     // TotalDays - ActualDays.
	ReliabilityPct float64 // 100 * ActualDays / TotalDays.
	OutOfRange     int     // Distinct hit days outside the range, not counted.
	LongestGap     Gap     // Longest derived run of missed days.
}

// GapAnnotation is a manually supplied period to highlight on the chart.
// It is not derived from, nor checked against, the hit data.
type GapAnnotation struct {
	Start time.Time
	End   time.Time
	Label string // may contain "\n" for multi-line labels
}

// Days returns the inclusive length of the annotated period.
func (g GapAnnotation) Days() int {
	return DateRange{Start: Day(g.Start), End: Day(g.End)}.Days()
}

// Mid returns the calendar day at the middle of the annotated period.
func (g GapAnnotation) Mid() time.Time {
	return Day(g.Start).AddDate(0, 0, (g.Days()-1)/2)
}

/*
CONFIG → paramètres globaux
*/

// Source selects where hit dates come from. An empty DSN means the literal
// HitDates of the Config are used.
type Source struct {
	DSN     string
	Table   string
	Monitor string
}

// Config holds the resolved parameters of one run.
type Config struct {
	Title          string
	Monitor        string
	Start          time.Time
	End            time.Time
	HitDates       []time.Time
	Gap            *GapAnnotation
	LongestGapDays int    // Displayed longest gap; 0 means use the derived one.
	Output         string // Image path; the extension picks the format.
	MetricsOut     string // Optional Prometheus textfile path.
	Source         Source
	Verbose        bool
}

const secondsPerDay = 24 * 60 * 60

// Day truncates t to its calendar day, expressed as UTC midnight.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
