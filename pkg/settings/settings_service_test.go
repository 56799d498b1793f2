package settings

import (
	"context"
	"testing"

	"github.com/matt20966/owner-schedule/internal/event_bus"
	"github.com/matt20966/owner-schedule/pkg/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSettingsReturnsDefaultsWhenUnset(t *testing.T) {
	service := NewSettingsService(NewStubSettingsRepo(), event_bus.NewEventBus())

	settings, err := service.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "UTC", settings.Timezone)
	assert.False(t, settings.ExpandedOccurrences)
}

func TestUpdateSettingsStoresAndPublishes(t *testing.T) {
	bus := event_bus.NewEventBus()
	service := NewSettingsService(NewStubSettingsRepo(), bus)

	var reasons []string
	event_bus.SubscribeTyped(bus, event_bus.EventScheduleChanged, func(e event_bus.EventT[event_bus.ScheduleChanged]) error {
		reasons = append(reasons, e.Data.Reason)
		return nil
	})

	updated, err := service.UpdateSettings(context.Background(), Settings{
		Timezone:            "Europe/Warsaw",
		ExpandedOccurrences: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Europe/Warsaw", updated.Timezone)
	assert.True(t, updated.ExpandedOccurrences)
	assert.Equal(t, []string{"settings"}, reasons)

	stored, err := service.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, updated, stored)
}

func TestUpdateSettingsRejectsUnknownTimezone(t *testing.T) {
	service := NewSettingsService(NewStubSettingsRepo(), event_bus.NewEventBus())

	_, err := service.UpdateSettings(context.Background(), Settings{Timezone: "Mars/Olympus_Mons"})
	var validationErr *schedule.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "timezone", validationErr.Field)

	stored, err := service.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "UTC", stored.Timezone, "rejected update leaves stored settings untouched")
}

func TestLocationFallsBackToUTC(t *testing.T) {
	assert.Equal(t, "UTC", Settings{Timezone: "not-a-zone"}.Location().String())
}
