package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Schedule window
	r.HandleFunc("/api/schedule", deps.PlannerHandler.GetSchedule).Methods("GET")

	// Event mutations
	r.HandleFunc("/api/schedule/event", deps.PlannerHandler.AddEvent).Methods("POST")
	r.HandleFunc("/api/schedule/event/{eventId}", deps.PlannerHandler.EditEvent).Methods("PATCH")
	r.HandleFunc("/api/schedule/event/{eventId}", deps.PlannerHandler.DeleteEvent).Methods("DELETE")
	r.HandleFunc("/api/schedule/event/{eventId}/move", deps.PlannerHandler.MoveEvent).Methods("POST")

	// Pending move gestures
	r.HandleFunc("/api/schedule/pending/{token}", deps.PlannerHandler.ConfirmPending).Methods("POST")
	r.HandleFunc("/api/schedule/pending/{token}", deps.PlannerHandler.CancelPending).Methods("DELETE")

	// History
	r.HandleFunc("/api/history", deps.PlannerHandler.GetHistory).Methods("GET")
	r.HandleFunc("/api/history/undo", deps.PlannerHandler.Undo).Methods("POST")
	r.HandleFunc("/api/history/redo", deps.PlannerHandler.Redo).Methods("POST")

	// Settings
	r.HandleFunc("/api/settings", deps.SettingsHandler.GetSettings).Methods("GET")
	r.HandleFunc("/api/settings", deps.SettingsHandler.UpdateSettings).Methods("PUT")
}
