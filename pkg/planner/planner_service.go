package planner

import (
	"context"
	"sync"
	"time"

	"github.com/matt20966/owner-schedule/internal/event_bus"
	"github.com/matt20966/owner-schedule/internal/utils"
	"github.com/matt20966/owner-schedule/pkg/history"
	"github.com/matt20966/owner-schedule/pkg/occurrence"
	"github.com/matt20966/owner-schedule/pkg/remote"
	"github.com/matt20966/owner-schedule/pkg/schedule"
	"github.com/matt20966/owner-schedule/pkg/scope"
	"github.com/matt20966/owner-schedule/pkg/settings"
	log "github.com/sirupsen/logrus"
)

// HistoryStatus describes the undo and redo stacks for the UI.
type HistoryStatus struct {
	CanUndo   bool
	CanRedo   bool
	UndoDepth int
	RedoDepth int
}

type Service interface {
	Window(ctx context.Context, from, to time.Time) ([]occurrence.Occurrence, error)
	AddEvent(ctx context.Context, payload schedule.EventPayload) (schedule.Event, error)
	EditEvent(ctx context.Context, id string, requested schedule.Scope, edits schedule.EventPayload) error
	DeleteEvent(ctx context.Context, id string, requested schedule.Scope) error
	MoveEvent(ctx context.Context, id string, newStart time.Time, newDurationMinutes int) (pendingToken string, err error)
	ConfirmPending(ctx context.Context, token string, requested schedule.Scope) error
	CancelPending(token string) error
	Undo(ctx context.Context) error
	Redo(ctx context.Context) error
	History() HistoryStatus
}

// PlannerServiceImpl owns the mutation flow: validate, call the store, commit
// to history, announce the change. A mutex serializes mutating operations;
// the HTTP server is concurrent but the planning core is not.
type PlannerServiceImpl struct {
	mu       sync.Mutex
	gateway  remote.Client
	history  *history.CommandLog
	view     *View
	bus      *event_bus.EventBus
	settings settings.Service
	pending  *pendingRegistry
	clock    utils.Clock
}

func NewPlannerService(
	gateway remote.Client,
	commandLog *history.CommandLog,
	view *View,
	bus *event_bus.EventBus,
	settingsService settings.Service,
	clock utils.Clock,
) *PlannerServiceImpl {
	return &PlannerServiceImpl{
		gateway:  gateway,
		history:  commandLog,
		view:     view,
		bus:      bus,
		settings: settingsService,
		pending:  newPendingRegistry(),
		clock:    clock,
	}
}

// Window serves the materialized occurrences for [from, to). Zero bounds
// default to one week starting today in the configured timezone.
func (s *PlannerServiceImpl) Window(ctx context.Context, from, to time.Time) ([]occurrence.Occurrence, error) {
	if from.IsZero() || to.IsZero() {
		defaultFrom, defaultTo, err := s.defaultWindow(ctx)
		if err != nil {
			return nil, err
		}
		if from.IsZero() {
			from = defaultFrom
		}
		if to.IsZero() {
			to = defaultTo
		}
	}
	return s.view.Window(ctx, from, to)
}

func (s *PlannerServiceImpl) AddEvent(ctx context.Context, payload schedule.EventPayload) (schedule.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if payload.Frequency.Recurring() && payload.FrequencyTotal == 0 {
		payload.FrequencyTotal = schedule.UnboundedTotal(payload.Frequency)
	}
	if err := payload.Validate(); err != nil {
		return schedule.Event{}, err
	}

	created, err := s.gateway.Create(ctx, payload)
	if err != nil {
		return schedule.Event{}, err
	}
	s.history.Commit(history.AddAction{EventID: created.ID, Payload: payload})
	s.announce(ctx, "mutation")
	return created, nil
}

func (s *PlannerServiceImpl) EditEvent(ctx context.Context, id string, requested schedule.Scope, edits schedule.EventPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, err := s.findTarget(ctx, id)
	if err != nil {
		return err
	}
	resolved, err := scope.Resolve(target, requested)
	if err != nil {
		return err
	}
	if err := edits.Validate(); err != nil {
		return err
	}

	original := schedule.PayloadOf(target)
	if err := s.gateway.Update(ctx, id, resolved, edits); err != nil {
		return err
	}
	s.history.Commit(history.EditAction{EventID: id, Scope: resolved, Original: original, Updated: edits})
	s.announce(ctx, "mutation")
	return nil
}

func (s *PlannerServiceImpl) DeleteEvent(ctx context.Context, id string, requested schedule.Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, err := s.findTarget(ctx, id)
	if err != nil {
		return err
	}
	resolved, err := scope.Resolve(target, requested)
	if err != nil {
		return err
	}

	payload := schedule.PayloadOf(target)
	if err := s.gateway.Delete(ctx, id, resolved); err != nil {
		return err
	}
	s.history.Commit(history.DeleteAction{EventID: id, Scope: resolved, Payload: payload})
	s.announce(ctx, "mutation")
	return nil
}

// MoveEvent applies a drag or resize gesture. A non-recurring target commits
// immediately and returns an empty token. A recurring target commits nothing:
// the gesture is parked under a fresh token until ConfirmPending supplies a
// scope, so the UI shows the event snapped back meanwhile.
func (s *PlannerServiceImpl) MoveEvent(ctx context.Context, id string, newStart time.Time, newDurationMinutes int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, err := s.findTarget(ctx, id)
	if err != nil {
		return "", err
	}

	original := schedule.PayloadOf(target)
	updated := original
	updated.Start = newStart
	updated.DurationMinutes = newDurationMinutes
	if err := updated.Validate(); err != nil {
		return "", err
	}

	if !target.Recurring() {
		if err := s.gateway.Update(ctx, id, schedule.ScopeSingle, updated); err != nil {
			return "", err
		}
		s.history.Commit(history.EditAction{EventID: id, Scope: schedule.ScopeSingle, Original: original, Updated: updated})
		s.announce(ctx, "mutation")
		return "", nil
	}

	token := s.pending.register(pendingMove{
		Target:    target,
		Original:  original,
		Updated:   updated,
		CreatedAt: s.clock.Now(),
	})
	log.Debugf("Move of recurring event %s parked as pending change %s", id, token)
	return token, nil
}

// ConfirmPending commits a parked gesture with the chosen scope. The token
// survives a failed attempt so the user can retry; success consumes it.
func (s *PlannerServiceImpl) ConfirmPending(ctx context.Context, token string, requested schedule.Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	move, ok := s.pending.get(token)
	if !ok {
		return ErrPendingNotFound
	}
	resolved, err := scope.Resolve(move.Target, requested)
	if err != nil {
		return err
	}
	if err := s.gateway.Update(ctx, move.Target.ID, resolved, move.Updated); err != nil {
		return err
	}
	s.pending.remove(token)
	s.history.Commit(history.EditAction{EventID: move.Target.ID, Scope: resolved, Original: move.Original, Updated: move.Updated})
	s.announce(ctx, "mutation")
	return nil
}

// CancelPending abandons a parked gesture. Nothing was sent to the store, so
// there is nothing to roll back and nothing enters history.
func (s *PlannerServiceImpl) CancelPending(token string) error {
	if !s.pending.remove(token) {
		return ErrPendingNotFound
	}
	return nil
}

func (s *PlannerServiceImpl) Undo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.history.Undo(ctx); err != nil {
		return err
	}
	s.announce(ctx, "undo")
	return nil
}

func (s *PlannerServiceImpl) Redo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.history.Redo(ctx); err != nil {
		return err
	}
	s.announce(ctx, "redo")
	return nil
}

func (s *PlannerServiceImpl) History() HistoryStatus {
	undoDepth, redoDepth := s.history.Depths()
	return HistoryStatus{
		CanUndo:   s.history.CanUndo(),
		CanRedo:   s.history.CanRedo(),
		UndoDepth: undoDepth,
		RedoDepth: redoDepth,
	}
}

// announce publishes the change so the view recomputes. The mutation is
// already committed; a failed refresh only leaves the cache stale until the
// next read.
func (s *PlannerServiceImpl) announce(ctx context.Context, reason string) {
	event := event_bus.NewEvent(ctx, event_bus.EventScheduleChanged, event_bus.ScheduleChanged{Reason: reason})
	if err := s.bus.Publish(event); err != nil {
		log.Warnf("View refresh after %s failed: %v", reason, err)
	}
}

// findTarget locates the mutation target in the view, serving the default
// window first when nothing has been displayed yet.
func (s *PlannerServiceImpl) findTarget(ctx context.Context, id string) (schedule.Event, error) {
	if !s.view.HasWindow() {
		from, to, err := s.defaultWindow(ctx)
		if err != nil {
			return schedule.Event{}, err
		}
		if _, err := s.view.Window(ctx, from, to); err != nil {
			return schedule.Event{}, err
		}
	}
	return s.view.Find(ctx, id)
}

func (s *PlannerServiceImpl) defaultWindow(ctx context.Context) (time.Time, time.Time, error) {
	current, err := s.settings.GetSettings(ctx)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	now := s.clock.Now().In(current.Location())
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return from, from.AddDate(0, 0, 7), nil
}
