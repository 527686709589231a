package store

import (
	"time"

	"github.com/rcliao/studylog/internal/model"
)

// DefaultWindowDays is the length of the activity chart.
const DefaultWindowDays = 14

// MaxWindowDays bounds the chart window. Callers taking a window from user
// input reject larger values; Aggregate clamps to it.
const MaxWindowDays = 366

const (
	dayLayout   = "2006-01-02"
	chartLayout = "01-02"
)

// Aggregate counts entries per calendar day over the windowDays days ending
// at ref, oldest first. Days are taken in ref's location for both the window
// and the entries. Empty days are reported with a zero count.
func Aggregate(entries []model.StudyEntry, windowDays int, ref time.Time) []model.ChartDataPoint {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	windowDays = min(windowDays, MaxWindowDays)
	loc := ref.Location()
	y, m, d := ref.Date()
	last := time.Date(y, m, d, 0, 0, 0, 0, loc)

	points := make([]model.ChartDataPoint, windowDays)
	index := make(map[string]int, windowDays)
	for i := range points {
		day := last.AddDate(0, 0, i-(windowDays-1))
		index[day.Format(dayLayout)] = i
		points[i].Date = day.Format(chartLayout)
	}

	for _, e := range entries {
		if e.Date.IsZero() {
			continue
		}
		if i, ok := index[dayKey(e.Date, loc)]; ok {
			points[i].Count++
		}
	}
	return points
}

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayLayout)
}
