package planner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/matt20966/owner-schedule/internal/event_bus"
	"github.com/matt20966/owner-schedule/pkg/occurrence"
	"github.com/matt20966/owner-schedule/pkg/remote"
	"github.com/matt20966/owner-schedule/pkg/schedule"
	"github.com/matt20966/owner-schedule/pkg/settings"
	log "github.com/sirupsen/logrus"
)

// ErrEventNotFound means the id does not name any occurrence in the current
// window. Mutations always target something the user can see.
var ErrEventNotFound = errors.New("event not found in current window")

// View is the materialized occurrence cache for the current window. Every
// read goes through it; it re-fetches from the store whenever a
// schedule.changed event invalidates it or the window moves.
type View struct {
	mu       sync.Mutex
	gateway  remote.Client
	settings settings.Service

	from, to time.Time
	occs     []occurrence.Occurrence
	stale    bool
}

func NewView(gateway remote.Client, settingsService settings.Service, bus *event_bus.EventBus) *View {
	v := &View{
		gateway:  gateway,
		settings: settingsService,
		stale:    true,
	}
	event_bus.SubscribeTyped(bus, event_bus.EventScheduleChanged, func(e event_bus.EventT[event_bus.ScheduleChanged]) error {
		log.Debugf("Schedule changed (%s), recomputing view", e.Data.Reason)
		return v.Invalidate(e.Context())
	})
	return v
}

// Window serves the occurrences for the half-open window [from, to),
// re-fetching when the window moved or the cache is stale.
func (v *View) Window(ctx context.Context, from, to time.Time) ([]occurrence.Occurrence, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !from.Equal(v.from) || !to.Equal(v.to) {
		v.from, v.to = from, to
		v.stale = true
	}
	if err := v.refreshLocked(ctx); err != nil {
		return nil, err
	}

	out := make([]occurrence.Occurrence, len(v.occs))
	copy(out, v.occs)
	return out, nil
}

// HasWindow reports whether any window has been served yet.
func (v *View) HasWindow() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.from.IsZero() || !v.to.IsZero()
}

// Find resolves an id to the event backing a visible occurrence.
func (v *View) Find(ctx context.Context, id string) (schedule.Event, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.refreshLocked(ctx); err != nil {
		return schedule.Event{}, err
	}
	for _, occ := range v.occs {
		if occ.Event.ID == id {
			return occ.Event, nil
		}
	}
	return schedule.Event{}, ErrEventNotFound
}

// Invalidate recomputes the cache after a store mutation or settings change.
// When the refresh fails the cache stays stale and the next read retries.
func (v *View) Invalidate(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.stale = true
	if v.from.IsZero() && v.to.IsZero() {
		return nil
	}
	return v.refreshLocked(ctx)
}

func (v *View) refreshLocked(ctx context.Context) error {
	if !v.stale {
		return nil
	}
	rows, err := v.gateway.Fetch(ctx, v.from, v.to)
	if err != nil {
		return err
	}
	current, err := v.settings.GetSettings(ctx)
	if err != nil {
		return err
	}
	occs := occurrence.Materialize(rows, v.from, v.to, current.ExpandedOccurrences)
	occurrence.MarkConflicts(occs)
	v.occs = occs
	v.stale = false
	return nil
}
