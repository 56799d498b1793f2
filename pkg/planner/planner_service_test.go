package planner

import (
	"context"
	"testing"
	"time"

	"github.com/matt20966/owner-schedule/internal/event_bus"
	"github.com/matt20966/owner-schedule/internal/utils"
	"github.com/matt20966/owner-schedule/pkg/history"
	"github.com/matt20966/owner-schedule/pkg/occurrence"
	"github.com/matt20966/owner-schedule/pkg/remote"
	"github.com/matt20966/owner-schedule/pkg/schedule"
	"github.com/matt20966/owner-schedule/pkg/scope"
	"github.com/matt20966/owner-schedule/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var plannerStart = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

var standupPayload = schedule.EventPayload{
	Title:           "Standup",
	Start:           plannerStart,
	DurationMinutes: 30,
}

type plannerFixture struct {
	service  *PlannerServiceImpl
	store    *remote.StubClient
	settings settings.Service
}

func newPlannerFixture(t *testing.T) *plannerFixture {
	t.Helper()
	bus := event_bus.NewEventBus()
	store := remote.NewStubClient()
	settingsService := settings.NewSettingsService(settings.NewStubSettingsRepo(), bus)
	view := NewView(store, settingsService, bus)
	commandLog := history.NewCommandLog(store)
	clock := &utils.MockClock{FixedNow: plannerStart}
	service := NewPlannerService(store, commandLog, view, bus, settingsService, clock)
	return &plannerFixture{service: service, store: store, settings: settingsService}
}

func (f *plannerFixture) window(t *testing.T) []occurrence.Occurrence {
	t.Helper()
	occs, err := f.service.Window(context.Background(), plannerStart.AddDate(0, 0, -1), plannerStart.AddDate(0, 0, 35))
	require.NoError(t, err)
	return occs
}

func TestAddEventAppearsInWindow(t *testing.T) {
	f := newPlannerFixture(t)

	created, err := f.service.AddEvent(context.Background(), standupPayload)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	occs := f.window(t)
	require.Len(t, occs, 1)
	assert.Equal(t, "Standup", occs[0].Event.Title)
	assert.True(t, f.service.History().CanUndo)
}

func TestAddEventRejectsInvalidPayload(t *testing.T) {
	f := newPlannerFixture(t)

	_, err := f.service.AddEvent(context.Background(), schedule.EventPayload{Title: "", Start: plannerStart, DurationMinutes: 30})
	var validationErr *schedule.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "title", validationErr.Field)
	assert.False(t, f.service.History().CanUndo, "rejected mutation never enters history")
}

func TestAddRecurringDefaultsToUnboundedTotal(t *testing.T) {
	f := newPlannerFixture(t)

	payload := standupPayload
	payload.Frequency = schedule.FrequencyWeekly
	created, err := f.service.AddEvent(context.Background(), payload)
	require.NoError(t, err)
	require.NotNil(t, created.Series)
	assert.Equal(t, 6993, created.Series.FrequencyTotal)
}

func TestUndoRedoRoundTrip(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()

	_, err := f.service.AddEvent(ctx, standupPayload)
	require.NoError(t, err)

	require.NoError(t, f.service.Undo(ctx))
	assert.Empty(t, f.window(t), "undone add disappears from the window")
	assert.True(t, f.service.History().CanRedo)

	require.NoError(t, f.service.Redo(ctx))
	occs := f.window(t)
	require.Len(t, occs, 1)
	assert.Equal(t, "Standup", occs[0].Event.Title)
	assert.True(t, occs[0].Event.Start.Equal(plannerStart))
	assert.Equal(t, 30, occs[0].Event.DurationMinutes)
}

func TestUndoWithEmptyHistory(t *testing.T) {
	f := newPlannerFixture(t)
	assert.ErrorIs(t, f.service.Undo(context.Background()), history.ErrNothingToUndo)
	assert.ErrorIs(t, f.service.Redo(context.Background()), history.ErrNothingToRedo)
}

func TestWindowFlagsConflicts(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()

	_, err := f.service.AddEvent(ctx, standupPayload)
	require.NoError(t, err)
	_, err = f.service.AddEvent(ctx, schedule.EventPayload{
		Title:           "Interview",
		Start:           plannerStart.Add(15 * time.Minute),
		DurationMinutes: 60,
	})
	require.NoError(t, err)
	_, err = f.service.AddEvent(ctx, schedule.EventPayload{
		Title:           "Lunch",
		Start:           plannerStart.Add(4 * time.Hour),
		DurationMinutes: 45,
	})
	require.NoError(t, err)

	occs := f.window(t)
	require.Len(t, occs, 3)
	assert.True(t, occs[0].HasConflict)
	assert.True(t, occs[1].HasConflict)
	assert.False(t, occs[2].HasConflict)
}

func TestExpandedSettingRecomputesView(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()

	payload := standupPayload
	payload.Frequency = schedule.FrequencyWeekly
	payload.FrequencyTotal = 5
	_, err := f.service.AddEvent(ctx, payload)
	require.NoError(t, err)

	assert.Len(t, f.window(t), 1, "collapsed mode shows one occurrence per series")

	_, err = f.settings.UpdateSettings(ctx, settings.Settings{Timezone: "UTC", ExpandedOccurrences: true})
	require.NoError(t, err)
	assert.Len(t, f.window(t), 5, "expanded mode shows every in-window occurrence")
}

func TestEditRecurringWithoutScopeIsRejected(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()

	payload := standupPayload
	payload.Frequency = schedule.FrequencyWeekly
	payload.FrequencyTotal = 5
	created, err := f.service.AddEvent(ctx, payload)
	require.NoError(t, err)
	depthBefore := f.service.History().UndoDepth

	edits := payload
	edits.Title = "Sync"
	err = f.service.EditEvent(ctx, created.ID, schedule.ScopeUnset, edits)
	var scopeErr *scope.ScopeRequiredError
	require.ErrorAs(t, err, &scopeErr)
	assert.Equal(t, depthBefore, f.service.History().UndoDepth)

	occs := f.window(t)
	require.NotEmpty(t, occs)
	assert.Equal(t, "Standup", occs[0].Event.Title, "rejected edit reaches neither store nor view")
}

func TestDeleteSingleOccurrenceKeepsSeries(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()

	payload := standupPayload
	payload.Frequency = schedule.FrequencyWeekly
	payload.FrequencyTotal = 5
	_, err := f.service.AddEvent(ctx, payload)
	require.NoError(t, err)
	_, err = f.settings.UpdateSettings(ctx, settings.Settings{Timezone: "UTC", ExpandedOccurrences: true})
	require.NoError(t, err)

	occs := f.window(t)
	require.Len(t, occs, 5)

	require.NoError(t, f.service.DeleteEvent(ctx, occs[2].Event.ID, schedule.ScopeSingle))
	remaining := f.window(t)
	require.Len(t, remaining, 4)
	for _, occ := range remaining {
		assert.False(t, occ.Event.Start.Equal(occs[2].Event.Start))
	}
}

func TestMoveNonRecurringCommitsDirectly(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()

	created, err := f.service.AddEvent(ctx, standupPayload)
	require.NoError(t, err)

	token, err := f.service.MoveEvent(ctx, created.ID, plannerStart.Add(2*time.Hour), 45)
	require.NoError(t, err)
	assert.Empty(t, token, "non-recurring moves need no scope decision")

	occs := f.window(t)
	require.Len(t, occs, 1)
	assert.True(t, occs[0].Event.Start.Equal(plannerStart.Add(2*time.Hour)))
	assert.Equal(t, 45, occs[0].Event.DurationMinutes)

	require.NoError(t, f.service.Undo(ctx))
	occs = f.window(t)
	require.Len(t, occs, 1)
	assert.True(t, occs[0].Event.Start.Equal(plannerStart), "undo restores the original position")
	assert.Equal(t, 30, occs[0].Event.DurationMinutes)
}

func TestMoveRecurringParksPendingChange(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()

	payload := standupPayload
	payload.Frequency = schedule.FrequencyWeekly
	payload.FrequencyTotal = 5
	_, err := f.service.AddEvent(ctx, payload)
	require.NoError(t, err)
	_, err = f.settings.UpdateSettings(ctx, settings.Settings{Timezone: "UTC", ExpandedOccurrences: true})
	require.NoError(t, err)

	occs := f.window(t)
	require.Len(t, occs, 5)
	target := occs[1].Event
	depthBefore := f.service.History().UndoDepth

	token, err := f.service.MoveEvent(ctx, target.ID, target.Start.Add(time.Hour), target.DurationMinutes)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	occs = f.window(t)
	require.Len(t, occs, 5)
	assert.True(t, occs[1].Event.Start.Equal(target.Start), "nothing committed while the scope decision is open")
	assert.Equal(t, depthBefore, f.service.History().UndoDepth)

	err = f.service.ConfirmPending(ctx, token, schedule.ScopeUnset)
	var scopeErr *scope.ScopeRequiredError
	require.ErrorAs(t, err, &scopeErr)

	require.NoError(t, f.service.ConfirmPending(ctx, token, schedule.ScopeSingle),
		"the token survives a failed confirmation attempt")
	occs = f.window(t)
	require.Len(t, occs, 5)
	moved := false
	for _, occ := range occs {
		if occ.Event.Start.Equal(target.Start.Add(time.Hour)) {
			moved = true
			assert.True(t, occ.Event.IsException)
		}
		assert.False(t, occ.Event.Start.Equal(target.Start), "the old slot is vacated")
	}
	assert.True(t, moved)
	assert.Equal(t, depthBefore+1, f.service.History().UndoDepth)

	assert.ErrorIs(t, f.service.ConfirmPending(ctx, token, schedule.ScopeSingle), ErrPendingNotFound,
		"a committed token is consumed")
}

func TestCancelPendingDiscardsGesture(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()

	payload := standupPayload
	payload.Frequency = schedule.FrequencyWeekly
	payload.FrequencyTotal = 5
	created, err := f.service.AddEvent(ctx, payload)
	require.NoError(t, err)

	token, err := f.service.MoveEvent(ctx, created.ID, plannerStart.Add(time.Hour), 30)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, f.service.CancelPending(token))
	assert.ErrorIs(t, f.service.ConfirmPending(ctx, token, schedule.ScopeSingle), ErrPendingNotFound)
	assert.ErrorIs(t, f.service.CancelPending(token), ErrPendingNotFound)

	occs := f.window(t)
	require.NotEmpty(t, occs)
	assert.True(t, occs[0].Event.Start.Equal(plannerStart), "a cancelled gesture leaves the store untouched")
}
