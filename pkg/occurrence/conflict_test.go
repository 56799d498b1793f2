package occurrence

import (
	"testing"
	"time"

	"github.com/matt20966/owner-schedule/pkg/schedule"
	"github.com/stretchr/testify/assert"
)

func occ(id string, startMinute, durationMinutes int) Occurrence {
	start := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC).Add(time.Duration(startMinute) * time.Minute)
	e := schedule.Event{ID: id, Title: id, Start: start, DurationMinutes: durationMinutes}
	return Occurrence{Event: e, End: e.End()}
}

func TestMarkConflicts(t *testing.T) {
	t.Run("non-overlapping set has no conflicts", func(t *testing.T) {
		occs := []Occurrence{occ("a", 0, 30), occ("b", 45, 30), occ("c", 90, 15)}
		MarkConflicts(occs)
		for _, o := range occs {
			assert.False(t, o.HasConflict, o.Event.ID)
		}
	})

	t.Run("overlap flags both sides", func(t *testing.T) {
		occs := []Occurrence{occ("a", 0, 60), occ("b", 30, 60)}
		MarkConflicts(occs)
		assert.True(t, occs[0].HasConflict)
		assert.True(t, occs[1].HasConflict)
	})

	t.Run("touching endpoints never conflict", func(t *testing.T) {
		occs := []Occurrence{occ("a", 0, 30), occ("b", 30, 30)}
		MarkConflicts(occs)
		assert.False(t, occs[0].HasConflict)
		assert.False(t, occs[1].HasConflict)
	})

	t.Run("containment is a conflict", func(t *testing.T) {
		occs := []Occurrence{occ("a", 0, 120), occ("b", 30, 15)}
		MarkConflicts(occs)
		assert.True(t, occs[0].HasConflict)
		assert.True(t, occs[1].HasConflict)
	})

	t.Run("only the overlapping pair is flagged", func(t *testing.T) {
		occs := []Occurrence{occ("a", 0, 45), occ("b", 30, 30), occ("c", 120, 30)}
		MarkConflicts(occs)
		assert.True(t, occs[0].HasConflict)
		assert.True(t, occs[1].HasConflict)
		assert.False(t, occs[2].HasConflict)
	})

	t.Run("flags are recomputed from scratch", func(t *testing.T) {
		occs := []Occurrence{occ("a", 0, 30), occ("b", 60, 30)}
		occs[0].HasConflict = true
		MarkConflicts(occs)
		assert.False(t, occs[0].HasConflict)
	})
}
