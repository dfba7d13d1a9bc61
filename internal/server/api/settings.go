package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/goalkeeper/internal/game"
)

// SettingsService reads and updates the live game settings.
type SettingsService interface {
	Settings() game.Settings
	// UpdateSettings applies fn to the current settings and stores the
	// result atomically with respect to other updates.
	UpdateSettings(fn func(*game.Settings)) (game.Settings, error)
}

// SettingsHandler serves GET and PUT /api/settings.
type SettingsHandler struct {
	service SettingsService
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(s SettingsService) *SettingsHandler {
	return &SettingsHandler{service: s}
}

// settingsRequest uses pointers so omitted fields keep their current value.
type settingsRequest struct {
	BallSpeed *float64 `json:"ball_speed"`
	HandSize  *float64 `json:"hand_size"`
}

func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.service.Settings())
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	s, err := h.service.UpdateSettings(func(cur *game.Settings) {
		if req.BallSpeed != nil {
			cur.BallSpeed = *req.BallSpeed
		}
		if req.HandSize != nil {
			cur.HandSize = *req.HandSize
		}
	})
	if err != nil {
		if errors.Is(err, game.ErrInvalidSettings) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}

	writeJSON(w, http.StatusOK, s)
}
