package history

import "github.com/matt20966/owner-schedule/pkg/schedule"

// Action is one committed, invertible mutation. The three variants form a
// closed set; both the commit and the inversion paths handle them
// exhaustively and reject anything else.
type Action interface {
	// Kind names the variant for logging and the history status endpoint.
	Kind() string
}

// AddAction records a committed create. Its inverse is a single-scope delete
// of the created event.
type AddAction struct {
	EventID string
	Payload schedule.EventPayload
}

func (AddAction) Kind() string { return "add" }

// EditAction records a committed update. Its inverse restores the original
// payload with scope narrowed to single: a wide-scope edit is deliberately
// not reversible across every affected instance.
type EditAction struct {
	EventID  string
	Scope    schedule.Scope
	Original schedule.EventPayload
	Updated  schedule.EventPayload
}

func (EditAction) Kind() string { return "edit" }

// DeleteAction records a committed delete. Its inverse re-creates the event
// from the recorded payload; the store assigns a fresh id which replaces the
// stale one before the action moves to the redo stack.
type DeleteAction struct {
	EventID string
	Scope   schedule.Scope
	Payload schedule.EventPayload
}

func (DeleteAction) Kind() string { return "delete" }
