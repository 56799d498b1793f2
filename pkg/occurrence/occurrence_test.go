package occurrence

import (
	"testing"
	"time"

	"github.com/matt20966/owner-schedule/pkg/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var windowStart = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
var windowEnd = windowStart.AddDate(0, 0, 7)

func seriesRow(series *schedule.Series, day int) schedule.Event {
	start := windowStart.AddDate(0, 0, day).Add(9 * time.Hour)
	return schedule.Event{
		ID:              series.ID + "-" + start.Format(time.RFC3339),
		Title:           series.Title,
		Start:           start,
		DurationMinutes: 30,
		Series:          series,
	}
}

func TestMaterialize(t *testing.T) {
	series := &schedule.Series{ID: "s1", Title: "Standup", Frequency: schedule.FrequencyDaily, FrequencyTotal: 5, Start: windowStart}

	rows := []schedule.Event{
		seriesRow(series, 0),
		seriesRow(series, 1),
		seriesRow(series, 2),
		seriesRow(series, 3),
		seriesRow(series, 4),
	}

	t.Run("collapsed display emits one occurrence per series", func(t *testing.T) {
		occs := Materialize(rows, windowStart, windowEnd, false)
		require.Len(t, occs, 1)
		assert.Equal(t, rows[0].ID, occs[0].Event.ID)
	})

	t.Run("expanded display emits every row", func(t *testing.T) {
		occs := Materialize(rows, windowStart, windowEnd, true)
		assert.Len(t, occs, 5)
	})

	t.Run("exceptions always emit alongside the series", func(t *testing.T) {
		exception := seriesRow(series, 2)
		exception.IsException = true
		exception.Title = "Standup (moved)"
		withException := append([]schedule.Event{exception}, rows[:2]...)

		occs := Materialize(withException, windowStart, windowEnd, false)
		require.Len(t, occs, 2)
		assert.Equal(t, rows[0].ID, occs[0].Event.ID)
		assert.Equal(t, "Standup (moved)", occs[1].Event.Title)
	})

	t.Run("tombstones never emit", func(t *testing.T) {
		tombstone := seriesRow(series, 1)
		tombstone.IsException = true
		tombstone.Title = schedule.DeletedTitlePrefix + "Standup"

		occs := Materialize([]schedule.Event{tombstone, rows[0]}, windowStart, windowEnd, true)
		require.Len(t, occs, 1)
		assert.Equal(t, rows[0].ID, occs[0].Event.ID)
	})

	t.Run("rows outside the half-open window are dropped", func(t *testing.T) {
		before := schedule.Event{ID: "a", Title: "Old", Start: windowStart.Add(-time.Hour), DurationMinutes: 30}
		atEnd := schedule.Event{ID: "b", Title: "Boundary", Start: windowEnd, DurationMinutes: 30}
		inside := schedule.Event{ID: "c", Title: "Kept", Start: windowStart, DurationMinutes: 30}

		occs := Materialize([]schedule.Event{before, atEnd, inside}, windowStart, windowEnd, false)
		require.Len(t, occs, 1)
		assert.Equal(t, "c", occs[0].Event.ID)
	})

	t.Run("output is sorted by start and deterministic", func(t *testing.T) {
		shuffled := []schedule.Event{rows[3], rows[0], rows[4], rows[1], rows[2]}
		first := Materialize(shuffled, windowStart, windowEnd, true)
		second := Materialize(shuffled, windowStart, windowEnd, true)
		assert.Equal(t, first, second)
		for i := 1; i < len(first); i++ {
			assert.False(t, first[i].End.Before(first[i-1].End))
		}
	})

	t.Run("end is derived from start plus duration", func(t *testing.T) {
		occs := Materialize(rows[:1], windowStart, windowEnd, true)
		require.Len(t, occs, 1)
		assert.Equal(t, occs[0].Event.Start.Add(30*time.Minute), occs[0].End)
	})
}
