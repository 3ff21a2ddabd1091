package handlers

import (
	"fmt"
	"net/http"

	"github.com/amaumene/tempus/internal/controllers"
	"github.com/sirupsen/logrus"
)

// SettingsHandler serves user preferences
type SettingsHandler struct {
	settingsCtrl *controllers.SettingsController
	logger       *logrus.Logger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsCtrl *controllers.SettingsController, logger *logrus.Logger) *SettingsHandler {
	return &SettingsHandler{
		settingsCtrl: settingsCtrl,
		logger:       logger,
	}
}

// Get handles GET /api/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsCtrl.Get()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// Update handles PUT /api/settings. Omitted fields keep their value.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch controllers.SettingsPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if patch.Empty() {
		writeError(w, h.logger, fmt.Errorf("%w: no settings given", controllers.ErrInvalidInput))
		return
	}

	settings, err := h.settingsCtrl.Update(patch)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
