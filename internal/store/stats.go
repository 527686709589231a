package store

import (
	"math"
	"time"

	"github.com/rcliao/studylog/internal/model"
)

// statsAvgDays is the divisor used for the "per day" average.
const statsAvgDays = 30

// ComputeStats returns the total count, the count logged on ref's calendar
// day and the total averaged over 30 days, rounded to one decimal.
func ComputeStats(entries []model.StudyEntry, ref time.Time) model.Stats {
	loc := ref.Location()
	today := dayKey(ref, loc)

	st := model.Stats{Total: len(entries)}
	for _, e := range entries {
		if !e.Date.IsZero() && dayKey(e.Date, loc) == today {
			st.Today++
		}
	}
	if st.Total > 0 {
		st.Avg = math.Round(float64(st.Total)/statsAvgDays*10) / 10
	}
	return st
}
