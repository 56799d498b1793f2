package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Frequency is the recurrence cadence of a series, using the store's wire
// vocabulary.
type Frequency string

const (
	FrequencyNever        Frequency = "never"
	FrequencyDaily        Frequency = "daily"
	FrequencyEveryWorkDay Frequency = "every_work_day"
	FrequencyWeekly       Frequency = "weekly"
	FrequencyFortnightly  Frequency = "fortnightly"
)

// Recurring reports whether the frequency generates more than one occurrence.
func (f Frequency) Recurring() bool {
	return f != FrequencyNever && f != ""
}

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyNever, FrequencyDaily, FrequencyEveryWorkDay, FrequencyWeekly, FrequencyFortnightly:
		return true
	}
	return false
}

// Scope is the breadth of a mutation touching a series member.
type Scope string

const (
	// ScopeUnset means the scope decision has not been made yet.
	ScopeUnset  Scope = ""
	ScopeSingle Scope = "single"
	ScopeFuture Scope = "future"
	ScopeAll    Scope = "all"
)

func (s Scope) Valid() bool {
	return s == ScopeSingle || s == ScopeFuture || s == ScopeAll
}

// Series is a recurring definition generating occurrences until exceptioned
// or terminated.
type Series struct {
	ID             string
	Title          string
	Frequency      Frequency
	FrequencyTotal int
	Notes          string
	Start          time.Time
}

// Event is one row held by the remote store: a standalone event, a stored
// series member, an exception overriding a series slot, or a virtual series
// occurrence the store generated for a fetch window (those carry composite
// "<seriesId>-<datetime>" ids, opaque to the client).
type Event struct {
	ID              string
	Title           string
	Start           time.Time
	DurationMinutes int
	Link            string
	Notes           string
	Series          *Series
	IsException     bool
}

// End is always derived from Start and the duration, never stored.
func (e Event) End() time.Time {
	return e.Start.Add(time.Duration(e.DurationMinutes) * time.Minute)
}

// Recurring reports whether the event belongs to a series.
func (e Event) Recurring() bool {
	return e.Series != nil
}

// DeletedTitlePrefix marks a tombstone exception the store keeps in place of
// a single-deleted series occurrence.
const DeletedTitlePrefix = "DELETED_"

// Tombstone reports whether the event is a deleted-occurrence placeholder.
// Such rows suppress a series slot and are never displayed.
func (e Event) Tombstone() bool {
	return e.IsException && strings.HasPrefix(e.Title, DeletedTitlePrefix)
}

// EventPayload is the outbound field set for create and update calls, and the
// unit the command log records for inversion.
type EventPayload struct {
	Title           string
	Start           time.Time
	DurationMinutes int
	Link            string
	Notes           string
	Frequency       Frequency
	FrequencyTotal  int
}

// PayloadOf captures an event's current fields so an edit or delete can later
// be inverted.
func PayloadOf(e Event) EventPayload {
	p := EventPayload{
		Title:           e.Title,
		Start:           e.Start,
		DurationMinutes: e.DurationMinutes,
		Link:            e.Link,
		Notes:           e.Notes,
		Frequency:       FrequencyNever,
	}
	if e.Series != nil {
		p.Frequency = e.Series.Frequency
		p.FrequencyTotal = e.Series.FrequencyTotal
	}
	return p
}

// ValidationError reports a bad or missing required field, caught before any
// remote call is dispatched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks the payload before dispatch. The remote store validates
// again, but local failures must not reach the wire.
func (p EventPayload) Validate() error {
	if p.Title == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if p.Start.IsZero() {
		return &ValidationError{Field: "datetime", Reason: "must be set"}
	}
	if p.DurationMinutes <= 0 {
		return &ValidationError{Field: "duration", Reason: "must be greater than zero"}
	}
	if p.Frequency != "" && !p.Frequency.Valid() {
		return &ValidationError{Field: "frequency", Reason: fmt.Sprintf("unknown value %q", p.Frequency)}
	}
	if p.Frequency.Recurring() && p.FrequencyTotal <= 0 {
		return &ValidationError{Field: "frequency_total", Reason: "must be greater than zero for a recurring series"}
	}
	return nil
}
