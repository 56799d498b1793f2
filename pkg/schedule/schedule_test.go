package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventEnd(t *testing.T) {
	start := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	e := Event{Start: start, DurationMinutes: 90}
	assert.Equal(t, start.Add(90*time.Minute), e.End())
}

func TestTombstone(t *testing.T) {
	assert.True(t, Event{Title: "DELETED_abc", IsException: true}.Tombstone())
	assert.False(t, Event{Title: "DELETED_abc"}.Tombstone(), "prefix without exception flag is a plain title")
	assert.False(t, Event{Title: "Standup", IsException: true}.Tombstone())
}

func TestPayloadValidate(t *testing.T) {
	start := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	valid := EventPayload{Title: "Standup", Start: start, DurationMinutes: 30, Frequency: FrequencyNever}

	t.Run("accepts a complete payload", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		cases := map[string]EventPayload{
			"title":    {Start: start, DurationMinutes: 30},
			"datetime": {Title: "Standup", DurationMinutes: 30},
			"duration": {Title: "Standup", Start: start},
		}
		for field, payload := range cases {
			err := payload.Validate()
			var vErr *ValidationError
			assert.ErrorAs(t, err, &vErr, "expected ValidationError for %s", field)
			assert.Equal(t, field, vErr.Field)
		}
	})

	t.Run("recurring payload needs a positive total", func(t *testing.T) {
		p := valid
		p.Frequency = FrequencyWeekly
		var vErr *ValidationError
		assert.ErrorAs(t, p.Validate(), &vErr)
		assert.Equal(t, "frequency_total", vErr.Field)

		p.FrequencyTotal = 5
		assert.NoError(t, p.Validate())
	})

	t.Run("rejects unknown frequency", func(t *testing.T) {
		p := valid
		p.Frequency = "monthly"
		assert.Error(t, p.Validate())
	})
}

func TestPayloadOf(t *testing.T) {
	start := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	series := &Series{ID: "s1", Frequency: FrequencyWeekly, FrequencyTotal: 5, Start: start}
	e := Event{ID: "7", Title: "Standup", Start: start, DurationMinutes: 30, Notes: "daily sync", Series: series}

	p := PayloadOf(e)
	assert.Equal(t, "Standup", p.Title)
	assert.Equal(t, FrequencyWeekly, p.Frequency)
	assert.Equal(t, 5, p.FrequencyTotal)

	standalone := PayloadOf(Event{Title: "Dentist", Start: start, DurationMinutes: 60})
	assert.Equal(t, FrequencyNever, standalone.Frequency)
}
