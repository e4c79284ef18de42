// ABOUTME: Pure progress series operations: chronological ordering and trend.
// ABOUTME: Ordering compares zero-padded date strings, stable for same-day entries.
package progress

import (
	"sort"

	"github.com/harperreed/fitlog/internal/models"
)

// Point is one weigh-in on the chart.
type Point struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

// OrderedSeries sorts entries ascending by date. Entries sharing a date
// keep their input order.
func OrderedSeries(entries []models.ProgressEntry) []Point {
	points := make([]Point, len(entries))
	for i, e := range entries {
		points[i] = Point{Date: e.Date, Weight: e.Weight}
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
	return points
}

// CanSummarize reports whether a series has enough points for a summary.
func CanSummarize(series []Point) bool {
	return len(series) >= 2
}

// Direction of a weight trend.
type Direction string

const (
	Gaining     Direction = "gaining"
	Losing      Direction = "losing"
	Maintaining Direction = "maintaining"
)

// MaintainBand is the absolute change, in kg, still considered maintaining.
const MaintainBand = 0.5

// Trend summarizes a series from its first to its last point.
type Trend struct {
	Direction Direction `json:"direction"`
	Start     Point     `json:"start"`
	End       Point     `json:"end"`
	Change    float64   `json:"change"`
	Points    int       `json:"points"`
	Min       float64   `json:"min"`
	Max       float64   `json:"max"`
}

// TrendSummary computes the trend of an ordered series. It returns false
// when there are fewer than two points.
func TrendSummary(series []Point) (Trend, bool) {
	if !CanSummarize(series) {
		return Trend{}, false
	}
	first, last := series[0], series[len(series)-1]
	t := Trend{
		Start:  first,
		End:    last,
		Change: last.Weight - first.Weight,
		Points: len(series),
		Min:    first.Weight,
		Max:    first.Weight,
	}
	for _, p := range series[1:] {
		if p.Weight < t.Min {
			t.Min = p.Weight
		}
		if p.Weight > t.Max {
			t.Max = p.Weight
		}
	}
	switch {
	case t.Change > MaintainBand:
		t.Direction = Gaining
	case t.Change < -MaintainBand:
		t.Direction = Losing
	default:
		t.Direction = Maintaining
	}
	return t, true
}
