package driving

import "github.com/custodia-labs/mediasync/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.Settings, error)

	// Save validates and persists application settings.
	Save(settings *domain.Settings) error

	// Set updates a single setting by key from its string form.
	Set(key, value string) error

	// Keys lists the supported setting keys.
	Keys() []string
}
