package driving

import "github.com/UceeCode/waec-ai/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, defaults applied.
	Get() (*domain.AppSettings, error)

	// Set stores a single dotted configuration key (e.g. "embedding.provider").
	Set(key, value string) error

	// Validate checks the effective settings for inconsistencies.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
