package remote

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/matt20966/owner-schedule/pkg/schedule"
)

// flexID tolerates the store serializing row ids either as JSON numbers
// (stored rows) or strings (composite virtual occurrence ids).
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type seriesDTO struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Frequency      string  `json:"frequency"`
	FrequencyTotal *int    `json:"frequency_total"`
	Notes          *string `json:"notes"`
	StartDatetime  *string `json:"start_datetime"`
}

type eventDTO struct {
	ID          flexID     `json:"id"`
	Title       *string    `json:"title"`
	Datetime    string     `json:"datetime"`
	Duration    *string    `json:"duration"`
	Link        *string    `json:"link"`
	Notes       *string    `json:"notes"`
	Series      *seriesDTO `json:"series"`
	IsException bool       `json:"is_exception"`
}

// payloadDTO is the outbound body for create and update calls. edit_type is
// only present on updates.
type payloadDTO struct {
	Title          string `json:"title"`
	Datetime       string `json:"datetime"`
	Duration       string `json:"duration"`
	Link           string `json:"link,omitempty"`
	Notes          string `json:"notes,omitempty"`
	Frequency      string `json:"frequency,omitempty"`
	FrequencyTotal int    `json:"frequency_total,omitempty"`
	EditType       string `json:"edit_type,omitempty"`
}

func payloadToDTO(p schedule.EventPayload, scope schedule.Scope) payloadDTO {
	dto := payloadDTO{
		Title:    p.Title,
		Datetime: p.Start.Format(time.RFC3339),
		Duration: schedule.FormatDuration(p.DurationMinutes),
		Link:     p.Link,
		Notes:    p.Notes,
		EditType: string(scope),
	}
	if p.Frequency.Recurring() {
		dto.Frequency = string(p.Frequency)
		dto.FrequencyTotal = p.FrequencyTotal
	}
	return dto
}

func (d eventDTO) toEvent() (schedule.Event, error) {
	start, err := time.Parse(time.RFC3339, d.Datetime)
	if err != nil {
		return schedule.Event{}, fmt.Errorf("row %s: bad datetime %q: %w", d.ID, d.Datetime, err)
	}

	event := schedule.Event{
		ID:          string(d.ID),
		Start:       start,
		IsException: d.IsException,
	}
	if d.Title != nil {
		event.Title = *d.Title
	}
	if d.Link != nil {
		event.Link = *d.Link
	}
	if d.Notes != nil {
		event.Notes = *d.Notes
	}
	if d.Duration != nil {
		minutes, err := schedule.ParseDuration(*d.Duration)
		if err != nil {
			return schedule.Event{}, fmt.Errorf("row %s: %w", d.ID, err)
		}
		event.DurationMinutes = minutes
	}
	if d.Series != nil {
		series, err := d.Series.toSeries()
		if err != nil {
			return schedule.Event{}, fmt.Errorf("row %s: %w", d.ID, err)
		}
		event.Series = series
	}
	return event, nil
}

func (d seriesDTO) toSeries() (*schedule.Series, error) {
	series := &schedule.Series{
		ID:        d.ID,
		Title:     d.Title,
		Frequency: schedule.Frequency(d.Frequency),
	}
	if !series.Frequency.Valid() {
		return nil, fmt.Errorf("series %s: unknown frequency %q", d.ID, d.Frequency)
	}
	if d.FrequencyTotal != nil {
		series.FrequencyTotal = *d.FrequencyTotal
	}
	if d.Notes != nil {
		series.Notes = *d.Notes
	}
	if d.StartDatetime != nil && *d.StartDatetime != "" {
		start, err := time.Parse(time.RFC3339, *d.StartDatetime)
		if err != nil {
			return nil, fmt.Errorf("series %s: bad start_datetime: %w", d.ID, err)
		}
		series.Start = start
	}
	return series, nil
}

func eventToDTO(e schedule.Event) eventDTO {
	duration := schedule.FormatDuration(e.DurationMinutes)
	dto := eventDTO{
		ID:          flexID(e.ID),
		Title:       &e.Title,
		Datetime:    e.Start.Format(time.RFC3339),
		Duration:    &duration,
		IsException: e.IsException,
	}
	if e.Link != "" {
		dto.Link = &e.Link
	}
	if e.Notes != "" {
		dto.Notes = &e.Notes
	}
	if e.Series != nil {
		start := e.Series.Start.Format(time.RFC3339)
		dto.Series = &seriesDTO{
			ID:             e.Series.ID,
			Title:          e.Series.Title,
			Frequency:      string(e.Series.Frequency),
			FrequencyTotal: &e.Series.FrequencyTotal,
			Notes:          &e.Series.Notes,
			StartDatetime:  &start,
		}
	}
	return dto
}

// composite ids for virtual series occurrences are "<36-char uuid>-<RFC3339>".
func splitCompositeID(id string) (seriesID string, at time.Time, ok bool) {
	if len(id) < 38 || id[36] != '-' {
		return "", time.Time{}, false
	}
	at, err := time.Parse(time.RFC3339, id[37:])
	if err != nil {
		return "", time.Time{}, false
	}
	return id[:36], at, true
}

// numericID reports whether the id belongs to a stored row.
func numericID(id string) bool {
	_, err := strconv.Atoi(id)
	return err == nil
}
