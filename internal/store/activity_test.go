package store

import (
	"testing"
	"time"

	"github.com/rcliao/studylog/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dated(id string, t time.Time) model.StudyEntry {
	return model.StudyEntry{ID: id, Text: id, Translation: id, Type: model.TypeWord, Date: t}
}

func TestAggregateOnePerDay(t *testing.T) {
	var entries []model.StudyEntry
	for d := 1; d <= 14; d++ {
		entries = append(entries, dated("e", time.Date(2024, 1, d, 9, 30, 0, 0, time.UTC)))
	}

	points := Aggregate(entries, 14, time.Date(2024, 1, 14, 18, 0, 0, 0, time.UTC))

	require.Len(t, points, 14)
	for i, p := range points {
		assert.Equal(t, 1, p.Count, "point %d", i)
	}
	assert.Equal(t, "01-01", points[0].Date)
	assert.Equal(t, "01-14", points[13].Date)
}

func TestAggregateZeroFillAndWindow(t *testing.T) {
	ref := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	entries := []model.StudyEntry{
		dated("today1", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)),
		dated("today2", time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC)),
		dated("first", time.Date(2024, 2, 26, 8, 0, 0, 0, time.UTC)),
		dated("too-old", time.Date(2024, 2, 25, 23, 59, 59, 0, time.UTC)),
		dated("future", time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)),
		{ID: "malformed"},
	}

	points := Aggregate(entries, 14, ref)

	require.Len(t, points, 14)
	assert.Equal(t, model.ChartDataPoint{Date: "02-26", Count: 1}, points[0])
	assert.Equal(t, model.ChartDataPoint{Date: "03-10", Count: 2}, points[13])

	sum := 0
	for _, p := range points[1:13] {
		assert.Zero(t, p.Count, "day %s", p.Date)
		sum += p.Count
	}
	assert.Zero(t, sum)
}

func TestAggregateSumMatchesInWindow(t *testing.T) {
	ref := time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC)
	var entries []model.StudyEntry
	inWindow := 0
	for i := 0; i < 40; i++ {
		d := ref.Add(-time.Duration(i) * 11 * time.Hour)
		entries = append(entries, dated("e", d))
		if !d.Before(time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC)) {
			inWindow++
		}
	}

	points := Aggregate(entries, 14, ref)

	sum := 0
	for _, p := range points {
		sum += p.Count
	}
	assert.Equal(t, inWindow, sum)
}

func TestAggregateUsesReferenceLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	ref := time.Date(2024, 1, 14, 12, 0, 0, 0, loc)
	// 22:30 UTC on the 13th is 01:30 on the 14th in UTC+3.
	e := dated("late", time.Date(2024, 1, 13, 22, 30, 0, 0, time.UTC))

	points := Aggregate([]model.StudyEntry{e}, 14, ref)

	assert.Equal(t, 1, points[13].Count)
	assert.Equal(t, 0, points[12].Count)
}

func TestAggregateDefaultsWindow(t *testing.T) {
	points := Aggregate(nil, 0, time.Now())
	assert.Len(t, points, DefaultWindowDays)

	points = Aggregate(nil, 3, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, []model.ChartDataPoint{
		{Date: "02-28", Count: 0},
		{Date: "02-29", Count: 0},
		{Date: "03-01", Count: 0},
	}, points)
}

func TestAggregateClampsWindow(t *testing.T) {
	ref := time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC)
	points := Aggregate(nil, 3_000_000, ref)
	require.Len(t, points, MaxWindowDays)
	assert.Equal(t, "12-31", points[len(points)-1].Date)
	assert.Equal(t, "01-01", points[0].Date)
}

func TestComputeStats(t *testing.T) {
	ref := time.Date(2024, 1, 14, 18, 0, 0, 0, time.UTC)
	entries := []model.StudyEntry{
		dated("a", time.Date(2024, 1, 14, 1, 0, 0, 0, time.UTC)),
		dated("b", time.Date(2024, 1, 14, 17, 0, 0, 0, time.UTC)),
		dated("c", time.Date(2024, 1, 13, 17, 0, 0, 0, time.UTC)),
		{ID: "no-date"},
	}

	st := ComputeStats(entries, ref)

	assert.Equal(t, 4, st.Total)
	assert.Equal(t, 2, st.Today)
	assert.Equal(t, 0.1, st.Avg)

	assert.Equal(t, model.Stats{}, ComputeStats(nil, ref))
}
