package remote

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matt20966/owner-schedule/pkg/schedule"
)

// StubClient is an in-memory stand-in for the remote schedule store. It
// mirrors the store's observable contract: id assignment, one row per
// materialized series occurrence on fetch, tombstone exceptions for
// single-deleted occurrences, series shortening on future-scope mutations.
type StubClient struct {
	mu     sync.Mutex
	nextID int
	events []schedule.Event
	series map[string]*schedule.Series

	// Fail, when set, makes every call return it. Used to exercise the
	// failed-inversion paths.
	Fail error
}

func NewStubClient() *StubClient {
	return &StubClient{series: map[string]*schedule.Series{}}
}

func (c *StubClient) Fetch(ctx context.Context, from time.Time, to time.Time) ([]schedule.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail != nil {
		return nil, c.Fail
	}

	out := make([]schedule.Event, 0, len(c.events))
	for _, row := range c.events {
		if row.Tombstone() {
			continue
		}
		if row.Start.Before(from) || !row.Start.Before(to) {
			continue
		}
		out = append(out, row)
	}

	for _, s := range c.series {
		base := c.baseRow(s.ID)
		if base == nil {
			continue
		}
		occs, err := schedule.Occurrences(*s, from, to)
		if err != nil {
			return nil, err
		}
		for _, at := range occs {
			if c.storedAt(s.ID, at) != nil {
				continue
			}
			out = append(out, schedule.Event{
				ID:              s.ID + "-" + at.Format(time.RFC3339),
				Title:           s.Title,
				Start:           at,
				DurationMinutes: base.DurationMinutes,
				Link:            base.Link,
				Notes:           s.Notes,
				Series:          s,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

func (c *StubClient) Create(ctx context.Context, payload schedule.EventPayload) (schedule.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail != nil {
		return schedule.Event{}, c.Fail
	}

	row := schedule.Event{
		ID:              c.assignID(),
		Title:           payload.Title,
		Start:           payload.Start,
		DurationMinutes: payload.DurationMinutes,
		Link:            payload.Link,
		Notes:           payload.Notes,
	}
	if payload.Frequency.Recurring() {
		s := &schedule.Series{
			ID:             uuid.NewString(),
			Title:          payload.Title,
			Frequency:      payload.Frequency,
			FrequencyTotal: payload.FrequencyTotal,
			Notes:          payload.Notes,
			Start:          payload.Start,
		}
		c.series[s.ID] = s
		row.Series = s
	}
	c.events = append(c.events, row)
	return row, nil
}

func (c *StubClient) Update(ctx context.Context, id string, scope schedule.Scope, payload schedule.EventPayload) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail != nil {
		return c.Fail
	}

	idx, s, at, err := c.target(id)
	if err != nil {
		return err
	}

	switch scope {
	case schedule.ScopeSingle:
		if idx >= 0 {
			row := &c.events[idx]
			if row.Series != nil && !row.Start.Equal(payload.Start) {
				c.addTombstone(row.Series, row.Start)
			}
			if row.Series != nil {
				row.IsException = true
			}
			applyPayload(row, payload)
			return nil
		}
		// Virtual occurrence: store an exception overriding the slot.
		if !at.Equal(payload.Start) {
			c.addTombstone(s, at)
		}
		exception := schedule.Event{
			ID:          c.assignID(),
			Series:      s,
			IsException: true,
		}
		applyPayload(&exception, payload)
		c.events = append(c.events, exception)
		return nil

	case schedule.ScopeFuture:
		if s == nil {
			return &RemoteError{Op: "update", StatusCode: 400}
		}
		before, err := schedule.OccurrencesBefore(*s, at)
		if err != nil {
			return err
		}
		remaining := s.FrequencyTotal - before
		if remaining <= 0 {
			return nil
		}
		s.FrequencyTotal = before
		split := &schedule.Series{
			ID:             uuid.NewString(),
			Title:          payload.Title,
			Frequency:      s.Frequency,
			FrequencyTotal: remaining,
			Notes:          payload.Notes,
			Start:          payload.Start,
		}
		c.series[split.ID] = split
		base := schedule.Event{ID: c.assignID(), Series: split}
		applyPayload(&base, payload)
		c.events = append(c.events, base)
		return nil

	case schedule.ScopeAll:
		if s == nil {
			return &RemoteError{Op: "update", StatusCode: 400}
		}
		s.Title = payload.Title
		s.Notes = payload.Notes
		for i := range c.events {
			row := &c.events[i]
			if row.Series == nil || row.Series.ID != s.ID || row.Tombstone() {
				continue
			}
			row.Title = payload.Title
			row.Notes = payload.Notes
			row.DurationMinutes = payload.DurationMinutes
			row.Link = payload.Link
			row.IsException = false
		}
		return nil
	}
	return &RemoteError{Op: "update", StatusCode: 400}
}

func (c *StubClient) Delete(ctx context.Context, id string, scope schedule.Scope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail != nil {
		return c.Fail
	}

	idx, s, at, err := c.target(id)
	if err != nil {
		return err
	}

	switch scope {
	case schedule.ScopeSingle:
		if idx >= 0 {
			row := &c.events[idx]
			if row.Series == nil {
				c.events = append(c.events[:idx], c.events[idx+1:]...)
				return nil
			}
			// A stored series member turns into a tombstone (keeping its
			// id) so the slot stays suppressed.
			row.Title = schedule.DeletedTitlePrefix + uuid.NewString()
			row.IsException = true
			row.DurationMinutes = 0
			row.Link = ""
			row.Notes = "Deleted occurrence"
			return nil
		}
		c.addTombstone(s, at)
		return nil

	case schedule.ScopeFuture:
		if s == nil {
			return &RemoteError{Op: "delete", StatusCode: 400}
		}
		before, err := schedule.OccurrencesBefore(*s, at)
		if err != nil {
			return err
		}
		s.FrequencyTotal = before
		c.removeSeriesRows(s.ID, func(row schedule.Event) bool {
			return !row.IsException && !row.Start.Before(at)
		})
		return nil

	case schedule.ScopeAll:
		if s == nil {
			return &RemoteError{Op: "delete", StatusCode: 400}
		}
		c.removeSeriesRows(s.ID, func(row schedule.Event) bool {
			return !row.IsException
		})
		delete(c.series, s.ID)
		return nil
	}
	return &RemoteError{Op: "delete", StatusCode: 400}
}

func (c *StubClient) assignID() string {
	c.nextID++
	return strconv.Itoa(c.nextID)
}

// target resolves an id to either a stored row index, or a series slot for
// composite virtual ids. idx is -1 when the id names a virtual occurrence.
func (c *StubClient) target(id string) (idx int, s *schedule.Series, at time.Time, err error) {
	if numericID(id) {
		for i, row := range c.events {
			if row.ID == id {
				return i, row.Series, row.Start, nil
			}
		}
		return -1, nil, time.Time{}, &RemoteError{Op: "lookup", StatusCode: 404, Err: fmt.Errorf("no stored row %s", id)}
	}
	seriesID, at, ok := splitCompositeID(id)
	if !ok {
		return -1, nil, time.Time{}, &RemoteError{Op: "lookup", StatusCode: 404, Err: fmt.Errorf("malformed id %s", id)}
	}
	s, found := c.series[seriesID]
	if !found {
		return -1, nil, time.Time{}, &RemoteError{Op: "lookup", StatusCode: 404, Err: fmt.Errorf("no series %s", seriesID)}
	}
	if row := c.storedAt(seriesID, at); row != nil {
		for i := range c.events {
			if c.events[i].ID == row.ID {
				return i, s, at, nil
			}
		}
	}
	return -1, s, at, nil
}

// baseRow finds the row whose duration and link template the series'
// generated occurrences. When the base itself was turned into an exception,
// any non-tombstone member still serves as template.
func (c *StubClient) baseRow(seriesID string) *schedule.Event {
	var fallback *schedule.Event
	for i := range c.events {
		row := &c.events[i]
		if row.Series == nil || row.Series.ID != seriesID || row.Tombstone() {
			continue
		}
		if !row.IsException {
			return row
		}
		if fallback == nil {
			fallback = row
		}
	}
	return fallback
}

func (c *StubClient) storedAt(seriesID string, at time.Time) *schedule.Event {
	for i := range c.events {
		row := &c.events[i]
		if row.Series != nil && row.Series.ID == seriesID && row.Start.Equal(at) {
			return row
		}
	}
	return nil
}

func (c *StubClient) addTombstone(s *schedule.Series, at time.Time) {
	if c.storedAt(s.ID, at) != nil {
		return
	}
	c.events = append(c.events, schedule.Event{
		ID:          c.assignID(),
		Title:       schedule.DeletedTitlePrefix + uuid.NewString(),
		Start:       at,
		Series:      s,
		IsException: true,
		Notes:       "Deleted occurrence",
	})
}

func (c *StubClient) removeSeriesRows(seriesID string, match func(schedule.Event) bool) {
	kept := c.events[:0]
	for _, row := range c.events {
		if row.Series != nil && row.Series.ID == seriesID && match(row) {
			continue
		}
		kept = append(kept, row)
	}
	c.events = kept
}

// applyPayload copies the mutable fields of a payload onto a stored row.
func applyPayload(row *schedule.Event, p schedule.EventPayload) {
	row.Title = p.Title
	row.Start = p.Start
	row.DurationMinutes = p.DurationMinutes
	row.Link = p.Link
	row.Notes = p.Notes
}
