package scope

import (
	"testing"
	"time"

	"github.com/matt20966/owner-schedule/pkg/schedule"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	start := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	series := &schedule.Series{ID: "s1", Frequency: schedule.FrequencyWeekly, FrequencyTotal: 5, Start: start}
	standalone := schedule.Event{ID: "7", Title: "Dentist", Start: start, DurationMinutes: 60}
	recurring := schedule.Event{ID: "8", Title: "Standup", Start: start, DurationMinutes: 30, Series: series}

	t.Run("standalone target is implicitly single", func(t *testing.T) {
		s, err := Resolve(standalone, schedule.ScopeUnset)
		assert.NoError(t, err)
		assert.Equal(t, schedule.ScopeSingle, s)
	})

	t.Run("explicit choice on a standalone target is still single", func(t *testing.T) {
		s, err := Resolve(standalone, schedule.ScopeAll)
		assert.NoError(t, err)
		assert.Equal(t, schedule.ScopeSingle, s)
	})

	t.Run("recurring target keeps the chosen scope", func(t *testing.T) {
		for _, want := range []schedule.Scope{schedule.ScopeSingle, schedule.ScopeFuture, schedule.ScopeAll} {
			s, err := Resolve(recurring, want)
			assert.NoError(t, err)
			assert.Equal(t, want, s)
		}
	})

	t.Run("recurring target without a decision fails", func(t *testing.T) {
		_, err := Resolve(recurring, schedule.ScopeUnset)
		var scopeErr *ScopeRequiredError
		assert.ErrorAs(t, err, &scopeErr)
		assert.Equal(t, "8", scopeErr.EventID)
	})

	t.Run("target without an id fails", func(t *testing.T) {
		_, err := Resolve(schedule.Event{Title: "ghost"}, schedule.ScopeSingle)
		var scopeErr *ScopeRequiredError
		assert.ErrorAs(t, err, &scopeErr)
	})

	t.Run("unknown scope value is a validation error", func(t *testing.T) {
		_, err := Resolve(recurring, schedule.Scope("everything"))
		var vErr *schedule.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})
}
