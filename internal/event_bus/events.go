package event_bus

// EventScheduleChanged is published after every committed mutation, undo,
// redo, or display-setting change. The view cache subscribes to it and
// recomputes the visible occurrence set.
const EventScheduleChanged EventType = "schedule.changed"

// ScheduleChanged is the payload of EventScheduleChanged.
type ScheduleChanged struct {
	// Reason is "mutation", "undo", "redo" or "settings".
	Reason string
}
