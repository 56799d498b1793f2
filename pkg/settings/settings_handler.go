package settings

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/matt20966/owner-schedule/internal/rest"
	"github.com/matt20966/owner-schedule/pkg/schedule"
	log "github.com/sirupsen/logrus"
)

type SettingsDTO struct {
	Timezone            string `json:"timezone"`
	ExpandedOccurrences bool   `json:"expandedOccurrences"`
}

type Handler struct {
	settingsService Service
}

func NewHandler(settingsService Service) *Handler {
	return &Handler{settingsService: settingsService}
}

// GetSettings godoc
// @Summary Get display settings
// @Description Retrieve the local display preferences
// @Tags Settings
// @Produce json
// @Success 200 {object} SettingsDTO
// @Router /api/settings [get]
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Trace("Getting settings")

	settings, err := h.settingsService.GetSettings(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(settingsToDTO(settings)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// UpdateSettings godoc
// @Summary Update display settings
// @Description Replace the local display preferences
// @Tags Settings
// @Accept json
// @Produce json
// @Param settings body SettingsDTO true "Settings"
// @Success 200 {object} SettingsDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/settings [put]
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Trace("Updating settings")

	var dto SettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "Invalid request body format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}

	updated, err := h.settingsService.UpdateSettings(r.Context(), dtoToSettings(dto))
	if err != nil {
		var validationErr *schedule.ValidationError
		if errors.As(err, &validationErr) {
			w.WriteHeader(http.StatusBadRequest)
			encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error:   "Invalid settings",
				Details: validationErr.Error(),
			})
			if encodeErr != nil {
				http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			}
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(settingsToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func settingsToDTO(settings Settings) SettingsDTO {
	return SettingsDTO{
		Timezone:            settings.Timezone,
		ExpandedOccurrences: settings.ExpandedOccurrences,
	}
}

func dtoToSettings(dto SettingsDTO) Settings {
	return Settings{
		Timezone:            dto.Timezone,
		ExpandedOccurrences: dto.ExpandedOccurrences,
	}
}
