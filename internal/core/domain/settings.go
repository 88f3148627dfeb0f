package domain

import "time"

// Default settings values.
const (
	DefaultSyncInterval   = time.Hour
	DefaultUploadDelay    = 2 * time.Second
	DefaultWatchDebounce  = 5 * time.Second
	DefaultLogFormat      = "console"
	DefaultStorageBackend = "sqlite"
)

// NetworkPolicy restricts when uploads may run.
// Enforcement is delegated to an externally supplied constraint.
type NetworkPolicy string

// Network policies.
const (
	NetworkAny      NetworkPolicy = "wifi_and_mobile"
	NetworkWiFiOnly NetworkPolicy = "wifi_only"
)

// IsValid returns true if the policy is recognised.
func (p NetworkPolicy) IsValid() bool {
	return p == NetworkAny || p == NetworkWiFiOnly
}

// SyncSettings configures sync cycles and triggers.
type SyncSettings struct {
	Interval    time.Duration
	MediaType   MediaType
	UploadDelay time.Duration
	Network     NetworkPolicy
	Watch       bool

	// MaxRunDuration stops long cycles. Zero disables the watchdog.
	MaxRunDuration time.Duration
}

// ServerSettings configures the optional HTTP trigger API.
type ServerSettings struct {
	// Addr is the listen address. Empty disables the server.
	Addr string
}

// LogSettings configures logging output.
type LogSettings struct {
	Format  string
	Verbose bool
}

// StorageSettings selects the persistence backend.
type StorageSettings struct {
	// Backend is "sqlite" or "memory".
	Backend string
}

// Settings is the complete application configuration.
type Settings struct {
	Sync    SyncSettings
	Server  ServerSettings
	Log     LogSettings
	Storage StorageSettings
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Sync: SyncSettings{
			Interval:    DefaultSyncInterval,
			MediaType:   MediaAll,
			UploadDelay: DefaultUploadDelay,
			Network:     NetworkAny,
			Watch:       true,
		},
		Log: LogSettings{
			Format: DefaultLogFormat,
		},
		Storage: StorageSettings{
			Backend: DefaultStorageBackend,
		},
	}
}

// Validate checks settings values.
func (s *Settings) Validate() error {
	if s.Sync.Interval < time.Minute {
		return ErrInvalidInput
	}
	if s.Sync.UploadDelay < 0 || s.Sync.MaxRunDuration < 0 {
		return ErrInvalidInput
	}
	if !s.Sync.MediaType.IsValid() || !s.Sync.Network.IsValid() {
		return ErrInvalidInput
	}
	if s.Log.Format != "console" && s.Log.Format != "json" {
		return ErrInvalidInput
	}
	if s.Storage.Backend != "sqlite" && s.Storage.Backend != "memory" {
		return ErrInvalidInput
	}
	return nil
}

// TaskConfig derives the periodic task configuration.
func (s *Settings) TaskConfig() TaskConfig {
	return TaskConfig{
		Enabled:        true,
		Interval:       s.Sync.Interval,
		MaxRunDuration: s.Sync.MaxRunDuration,
	}
}
