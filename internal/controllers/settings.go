package controllers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/amaumene/tempus/internal/models"
	"github.com/sirupsen/logrus"
)

// SettingsPatch holds the settings to change; nil fields are left alone
type SettingsPatch struct {
	Notifications *bool `json:"notifications,omitempty"`
	DarkMode      *bool `json:"darkMode,omitempty"`
	AutoPlay      *bool `json:"autoPlay,omitempty"`
	ShowSpoilers  *bool `json:"showSpoilers,omitempty"`
}

// Empty reports whether the patch changes nothing
func (p SettingsPatch) Empty() bool {
	return p.Notifications == nil && p.DarkMode == nil && p.AutoPlay == nil && p.ShowSpoilers == nil
}

// ParseSettingsPatch parses key=value assignments such as "show-spoilers=true".
// Keys ignore case and the separators '-' and '_'.
func ParseSettingsPatch(assignments []string) (SettingsPatch, error) {
	var patch SettingsPatch
	for _, a := range assignments {
		key, raw, ok := strings.Cut(a, "=")
		if !ok {
			return SettingsPatch{}, fmt.Errorf("%w: expected key=value, got %q", ErrInvalidInput, a)
		}
		value, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return SettingsPatch{}, fmt.Errorf("%w: %q is not a boolean", ErrInvalidInput, raw)
		}

		normalized := strings.NewReplacer("-", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(key)))
		switch normalized {
		case "notifications":
			patch.Notifications = &value
		case "darkmode":
			patch.DarkMode = &value
		case "autoplay":
			patch.AutoPlay = &value
		case "showspoilers", "spoilers":
			patch.ShowSpoilers = &value
		default:
			return SettingsPatch{}, fmt.Errorf("%w: unknown setting %q", ErrInvalidInput, key)
		}
	}
	return patch, nil
}

// SettingsController reads and updates user preferences
type SettingsController struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewSettingsController creates a new settings controller
func NewSettingsController(db *models.Database, logger *logrus.Logger) *SettingsController {
	return &SettingsController{
		db:     db,
		logger: logger,
	}
}

// Get returns the stored settings, or the defaults when none were saved
func (c *SettingsController) Get() (*models.Settings, error) {
	return c.db.GetSettings()
}

// Update applies patch and persists the result
func (c *SettingsController) Update(patch SettingsPatch) (*models.Settings, error) {
	settings, err := c.db.GetSettings()
	if err != nil {
		return nil, err
	}

	if patch.Notifications != nil {
		settings.Notifications = *patch.Notifications
	}
	if patch.DarkMode != nil {
		settings.DarkMode = *patch.DarkMode
	}
	if patch.AutoPlay != nil {
		settings.AutoPlay = *patch.AutoPlay
	}
	if patch.ShowSpoilers != nil {
		settings.ShowSpoilers = *patch.ShowSpoilers
	}

	if err := c.db.SaveSettings(settings); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"notifications": settings.Notifications,
		"dark_mode":     settings.DarkMode,
		"auto_play":     settings.AutoPlay,
		"show_spoilers": settings.ShowSpoilers,
	}).Info("Settings updated")
	return settings, nil
}
