package settings

import (
	"context"

	"github.com/matt20966/owner-schedule/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	GetSettings(ctx context.Context) (Settings, error)
	UpdateSettings(ctx context.Context, settings Settings) (Settings, error)
}

type SettingsServiceImpl struct {
	repo Repo
	bus  *event_bus.EventBus
}

func NewSettingsService(repo Repo, bus *event_bus.EventBus) *SettingsServiceImpl {
	return &SettingsServiceImpl{repo: repo, bus: bus}
}

func (s *SettingsServiceImpl) GetSettings(ctx context.Context) (Settings, error) {
	return s.repo.GetSettings(ctx)
}

// UpdateSettings persists the new preferences and announces the change so the
// occurrence view recomputes with the new display mode.
func (s *SettingsServiceImpl) UpdateSettings(ctx context.Context, settings Settings) (Settings, error) {
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	if err := s.repo.StoreSettings(ctx, settings); err != nil {
		return Settings{}, err
	}
	event := event_bus.NewEvent(ctx, event_bus.EventScheduleChanged, event_bus.ScheduleChanged{Reason: "settings"})
	if err := s.bus.Publish(event); err != nil {
		log.Warnf("Settings changed but view refresh failed: %v", err)
	}
	return settings, nil
}
