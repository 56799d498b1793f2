package app

import (
	"database/sql"
	"time"

	"github.com/matt20966/owner-schedule/internal/config"
	"github.com/matt20966/owner-schedule/internal/event_bus"
	"github.com/matt20966/owner-schedule/internal/utils"
	"github.com/matt20966/owner-schedule/pkg/history"
	"github.com/matt20966/owner-schedule/pkg/planner"
	"github.com/matt20966/owner-schedule/pkg/remote"
	"github.com/matt20966/owner-schedule/pkg/settings"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus

	SettingsRepo    settings.Repo
	SettingsService settings.Service
	SettingsHandler *settings.Handler

	RemoteClient remote.Client
	CommandLog   *history.CommandLog
	View         *planner.View

	PlannerService planner.Service
	PlannerHandler *planner.Handler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}

	deps.SettingsRepo = settings.NewSettingsRepo(db)
	deps.SettingsService = settings.NewSettingsService(deps.SettingsRepo, deps.EventBus)
	deps.SettingsHandler = settings.NewHandler(deps.SettingsService)

	deps.RemoteClient = remote.NewClient(cfg.Remote.Url, time.Duration(cfg.Remote.TimeoutSeconds)*time.Second)
	deps.CommandLog = history.NewCommandLog(deps.RemoteClient)
	deps.View = planner.NewView(deps.RemoteClient, deps.SettingsService, deps.EventBus)

	deps.PlannerService = planner.NewPlannerService(
		deps.RemoteClient,
		deps.CommandLog,
		deps.View,
		deps.EventBus,
		deps.SettingsService,
		deps.Clock,
	)
	deps.PlannerHandler = planner.NewHandler(deps.PlannerService, deps.SettingsService)

	return deps
}
