package planner

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/matt20966/owner-schedule/internal/rest"
	"github.com/matt20966/owner-schedule/pkg/history"
	"github.com/matt20966/owner-schedule/pkg/occurrence"
	"github.com/matt20966/owner-schedule/pkg/remote"
	"github.com/matt20966/owner-schedule/pkg/schedule"
	"github.com/matt20966/owner-schedule/pkg/scope"
	"github.com/matt20966/owner-schedule/pkg/settings"
	log "github.com/sirupsen/logrus"
)

type OccurrenceDTO struct {
	Id             string `json:"id"`
	Title          string `json:"title"`
	Datetime       string `json:"datetime"`
	End            string `json:"end"`
	Duration       string `json:"duration"`
	Link           string `json:"link,omitempty"`
	Notes          string `json:"notes,omitempty"`
	IsRecurring    bool   `json:"isRecurring"`
	Frequency      string `json:"frequency,omitempty"`
	FrequencyTotal int    `json:"frequencyTotal,omitempty"`
	IsException    bool   `json:"isException"`
	HasConflict    bool   `json:"hasConflict"`
}

type EventRequestDTO struct {
	Title          string `json:"title"`
	Datetime       string `json:"datetime"`
	Duration       string `json:"duration"`
	Link           string `json:"link"`
	Notes          string `json:"notes"`
	Frequency      string `json:"frequency"`
	FrequencyTotal int    `json:"frequencyTotal"`
	Scope          string `json:"scope"`
}

type MoveRequestDTO struct {
	Datetime string `json:"datetime"`
	Duration string `json:"duration"`
}

type ConfirmRequestDTO struct {
	Scope string `json:"scope"`
}

type HistoryStatusDTO struct {
	CanUndo   bool `json:"canUndo"`
	CanRedo   bool `json:"canRedo"`
	UndoDepth int  `json:"undoDepth"`
	RedoDepth int  `json:"redoDepth"`
}

type Handler struct {
	plannerService  Service
	settingsService settings.Service
}

func NewHandler(plannerService Service, settingsService settings.Service) *Handler {
	return &Handler{
		plannerService:  plannerService,
		settingsService: settingsService,
	}
}

// GetSchedule godoc
// @Summary Get the schedule window
// @Description Retrieve materialized occurrences for a window, with conflict flags
// @Tags Schedule
// @Produce json
// @Param from query string false "Window start (RFC3339), defaults to today"
// @Param to query string false "Window end (RFC3339), defaults to a week ahead"
// @Success 200 {array} OccurrenceDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/schedule [get]
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Trace("Getting schedule window")

	var from, to time.Time
	var err error
	if raw := r.URL.Query().Get("from"); raw != "" {
		if from, err = time.Parse(time.RFC3339, raw); err != nil {
			writeBadRequest(w, "Invalid from date format")
			return
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if to, err = time.Parse(time.RFC3339, raw); err != nil {
			writeBadRequest(w, "Invalid to date format")
			return
		}
	}

	occs, err := h.plannerService.Window(r.Context(), from, to)
	if err != nil {
		h.writeError(w, err)
		return
	}

	current, err := h.settingsService.GetSettings(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	location := current.Location()

	dtos := make([]OccurrenceDTO, 0, len(occs))
	for _, occ := range occs {
		dtos = append(dtos, occurrenceToDTO(occ, location))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// AddEvent godoc
// @Summary Add an event
// @Description Create a standalone event or a recurring series
// @Tags Schedule
// @Accept json
// @Produce json
// @Param event body EventRequestDTO true "Event"
// @Success 201 {object} object{id=string}
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 502 {object} rest.ErrorResponse "Store unavailable"
// @Router /api/schedule/event [post]
func (h *Handler) AddEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Adding event")

	payload, _, ok := decodeEventRequest(w, r)
	if !ok {
		return
	}

	created, err := h.plannerService.AddEvent(r.Context(), payload)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(map[string]string{"id": created.ID}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// EditEvent godoc
// @Summary Edit an event
// @Description Update an event; recurring targets require a scope
// @Tags Schedule
// @Accept json
// @Param eventId path string true "Event id"
// @Param event body EventRequestDTO true "Event with optional scope"
// @Success 204 "No Content"
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 409 {object} rest.ErrorResponse "Scope decision required"
// @Router /api/schedule/event/{eventId} [patch]
func (h *Handler) EditEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	eventId := mux.Vars(r)["eventId"]
	log.Debugf("Editing event %s", eventId)

	payload, requestedScope, ok := decodeEventRequest(w, r)
	if !ok {
		return
	}

	if err := h.plannerService.EditEvent(r.Context(), eventId, requestedScope, payload); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Delete an event; recurring targets require a scope query param
// @Tags Schedule
// @Param eventId path string true "Event id"
// @Param scope query string false "single, future or all"
// @Success 204 "No Content"
// @Failure 409 {object} rest.ErrorResponse "Scope decision required"
// @Router /api/schedule/event/{eventId} [delete]
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	eventId := mux.Vars(r)["eventId"]
	log.Debugf("Deleting event %s", eventId)

	requestedScope := schedule.Scope(r.URL.Query().Get("scope"))
	if err := h.plannerService.DeleteEvent(r.Context(), eventId, requestedScope); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveEvent godoc
// @Summary Move or resize an event
// @Description Apply a drag/resize gesture. Recurring targets return a pending token to confirm with a scope.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param eventId path string true "Event id"
// @Param move body MoveRequestDTO true "New position"
// @Success 200 {object} object{status=string}
// @Success 202 {object} object{pendingToken=string}
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/schedule/event/{eventId}/move [post]
func (h *Handler) MoveEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	eventId := mux.Vars(r)["eventId"]
	log.Debugf("Moving event %s", eventId)

	var dto MoveRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeBadRequest(w, "Invalid request body format")
		return
	}
	newStart, err := time.Parse(time.RFC3339, dto.Datetime)
	if err != nil {
		writeBadRequest(w, "Invalid datetime format")
		return
	}
	durationMinutes, err := schedule.ParseDuration(dto.Duration)
	if err != nil {
		writeBadRequest(w, "Invalid duration format")
		return
	}

	token, err := h.plannerService.MoveEvent(r.Context(), eventId, newStart, durationMinutes)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if token == "" {
		w.WriteHeader(http.StatusOK)
		err = json.NewEncoder(w).Encode(map[string]string{"status": "committed"})
	} else {
		w.WriteHeader(http.StatusAccepted)
		err = json.NewEncoder(w).Encode(map[string]string{"pendingToken": token})
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ConfirmPending godoc
// @Summary Confirm a pending move
// @Description Commit a parked gesture with the chosen scope
// @Tags Schedule
// @Accept json
// @Param token path string true "Pending token"
// @Param scope body ConfirmRequestDTO true "Scope decision"
// @Success 204 "No Content"
// @Failure 404 {object} rest.ErrorResponse "Unknown token"
// @Failure 409 {object} rest.ErrorResponse "Scope decision required"
// @Router /api/schedule/pending/{token} [post]
func (h *Handler) ConfirmPending(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	token := mux.Vars(r)["token"]
	log.Debugf("Confirming pending change %s", token)

	var dto ConfirmRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeBadRequest(w, "Invalid request body format")
		return
	}

	if err := h.plannerService.ConfirmPending(r.Context(), token, schedule.Scope(dto.Scope)); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CancelPending godoc
// @Summary Cancel a pending move
// @Description Abandon a parked gesture; nothing was sent to the store
// @Tags Schedule
// @Param token path string true "Pending token"
// @Success 204 "No Content"
// @Failure 404 {object} rest.ErrorResponse "Unknown token"
// @Router /api/schedule/pending/{token} [delete]
func (h *Handler) CancelPending(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	token := mux.Vars(r)["token"]
	log.Debugf("Cancelling pending change %s", token)

	if err := h.plannerService.CancelPending(token); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Undo godoc
// @Summary Undo the last mutation
// @Tags History
// @Produce json
// @Success 200 {object} HistoryStatusDTO
// @Failure 409 {object} rest.ErrorResponse "Nothing to undo"
// @Failure 502 {object} rest.ErrorResponse "Undo failed, history preserved"
// @Router /api/history/undo [post]
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Undoing last action")

	if err := h.plannerService.Undo(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeHistoryStatus(w)
}

// Redo godoc
// @Summary Redo the last undone mutation
// @Tags History
// @Produce json
// @Success 200 {object} HistoryStatusDTO
// @Failure 409 {object} rest.ErrorResponse "Nothing to redo"
// @Failure 502 {object} rest.ErrorResponse "Redo failed, history preserved"
// @Router /api/history/redo [post]
func (h *Handler) Redo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Redoing last undone action")

	if err := h.plannerService.Redo(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeHistoryStatus(w)
}

// GetHistory godoc
// @Summary Get undo/redo availability
// @Tags History
// @Produce json
// @Success 200 {object} HistoryStatusDTO
// @Router /api/history [get]
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	h.writeHistoryStatus(w)
}

func (h *Handler) writeHistoryStatus(w http.ResponseWriter) {
	status := h.plannerService.History()
	w.WriteHeader(http.StatusOK)
	err := json.NewEncoder(w).Encode(HistoryStatusDTO{
		CanUndo:   status.CanUndo,
		CanRedo:   status.CanRedo,
		UndoDepth: status.UndoDepth,
		RedoDepth: status.RedoDepth,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeError maps the error taxonomy onto HTTP statuses. Store and inversion
// failures surface as 502 so the UI can show its notification banner.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var validationErr *schedule.ValidationError
	var scopeErr *scope.ScopeRequiredError
	var remoteErr *remote.RemoteError
	var inversionErr *history.InversionError

	switch {
	case errors.As(err, &validationErr):
		writeErrorResponse(w, http.StatusBadRequest, "Invalid event data", validationErr.Error())
	case errors.As(err, &scopeErr):
		writeErrorResponse(w, http.StatusConflict, "Scope decision required", scopeErr.Error())
	case errors.Is(err, history.ErrNothingToUndo) || errors.Is(err, history.ErrNothingToRedo):
		writeErrorResponse(w, http.StatusConflict, err.Error(), "")
	case errors.Is(err, ErrEventNotFound) || errors.Is(err, ErrPendingNotFound):
		writeErrorResponse(w, http.StatusNotFound, err.Error(), "")
	case errors.As(err, &inversionErr):
		writeErrorResponse(w, http.StatusBadGateway, "History operation failed", "Nothing was lost; try again once the schedule store is reachable.")
	case errors.As(err, &remoteErr):
		writeErrorResponse(w, http.StatusBadGateway, "Schedule store unavailable", remoteErr.Error())
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeErrorResponse(w, http.StatusBadRequest, message, "")
}

func writeErrorResponse(w http.ResponseWriter, status int, message, details string) {
	w.WriteHeader(status)
	encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
		Error:   message,
		Details: details,
	})
	if encodeErr != nil {
		http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
	}
}

// decodeEventRequest parses the shared add/edit body. Reports false after
// writing the error response itself.
func decodeEventRequest(w http.ResponseWriter, r *http.Request) (schedule.EventPayload, schedule.Scope, bool) {
	var dto EventRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeBadRequest(w, "Invalid request body format")
		return schedule.EventPayload{}, schedule.ScopeUnset, false
	}

	start, err := time.Parse(time.RFC3339, dto.Datetime)
	if err != nil {
		writeBadRequest(w, "Invalid datetime format")
		return schedule.EventPayload{}, schedule.ScopeUnset, false
	}
	durationMinutes, err := schedule.ParseDuration(dto.Duration)
	if err != nil {
		writeBadRequest(w, "Invalid duration format")
		return schedule.EventPayload{}, schedule.ScopeUnset, false
	}

	payload := schedule.EventPayload{
		Title:           dto.Title,
		Start:           start,
		DurationMinutes: durationMinutes,
		Link:            dto.Link,
		Notes:           dto.Notes,
		Frequency:       schedule.Frequency(dto.Frequency),
		FrequencyTotal:  dto.FrequencyTotal,
	}
	return payload, schedule.Scope(dto.Scope), true
}

func occurrenceToDTO(occ occurrence.Occurrence, location *time.Location) OccurrenceDTO {
	event := occ.Event
	dto := OccurrenceDTO{
		Id:          event.ID,
		Title:       event.Title,
		Datetime:    event.Start.In(location).Format(time.RFC3339),
		End:         occ.End.In(location).Format(time.RFC3339),
		Duration:    schedule.FormatDuration(event.DurationMinutes),
		Link:        event.Link,
		Notes:       event.Notes,
		IsRecurring: event.Recurring(),
		IsException: event.IsException,
		HasConflict: occ.HasConflict,
	}
	if event.Series != nil {
		dto.Frequency = string(event.Series.Frequency)
		dto.FrequencyTotal = event.Series.FrequencyTotal
	}
	return dto
}
