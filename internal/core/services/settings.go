package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/mediasync/internal/core/domain"
	"github.com/custodia-labs/mediasync/internal/core/ports/driven"
	"github.com/custodia-labs/mediasync/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keySyncInterval    = "sync.interval_minutes"
	keySyncMediaType   = "sync.media_type"
	keySyncUploadDelay = "sync.upload_delay_ms"
	keySyncNetwork     = "sync.network"
	keySyncWatch       = "sync.watch"
	keySyncMaxRun      = "sync.max_run_minutes"
	keyServerAddr      = "server.addr"
	keyLogFormat       = "log.format"
	keyLogVerbose      = "log.verbose"
	keyStorageBackend  = "storage.backend"
)

// settingKind describes how a key's string form is parsed.
type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindBool
)

var settingKinds = map[string]settingKind{
	keySyncInterval:    kindInt,
	keySyncMediaType:   kindString,
	keySyncUploadDelay: kindInt,
	keySyncNetwork:     kindString,
	keySyncWatch:       kindBool,
	keySyncMaxRun:      kindInt,
	keyServerAddr:      kindString,
	keyLogFormat:       kindString,
	keyLogVerbose:      kindBool,
	keyStorageBackend:  kindString,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
// Missing or invalid values fall back to defaults.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		Sync: domain.SyncSettings{
			Interval:       s.getMinutes(keySyncInterval, defaults.Sync.Interval),
			MediaType:      s.getMediaType(defaults.Sync.MediaType),
			UploadDelay:    time.Duration(s.getInt(keySyncUploadDelay, int(defaults.Sync.UploadDelay/time.Millisecond))) * time.Millisecond,
			Network:        s.getNetwork(defaults.Sync.Network),
			Watch:          s.getBool(keySyncWatch, defaults.Sync.Watch),
			MaxRunDuration: s.getMinutes(keySyncMaxRun, defaults.Sync.MaxRunDuration),
		},
		Server: domain.ServerSettings{
			Addr: s.configStore.GetString(keyServerAddr), // No default - empty disables the server
		},
		Log: domain.LogSettings{
			Format:  s.getString(keyLogFormat, defaults.Log.Format),
			Verbose: s.getBool(keyLogVerbose, defaults.Log.Verbose),
		},
		Storage: domain.StorageSettings{
			Backend: s.getString(keyStorageBackend, defaults.Storage.Backend),
		},
	}

	if settings.Sync.Interval < time.Minute {
		settings.Sync.Interval = defaults.Sync.Interval
	}
	if settings.Sync.UploadDelay < 0 {
		settings.Sync.UploadDelay = defaults.Sync.UploadDelay
	}
	if settings.Sync.MaxRunDuration < 0 {
		settings.Sync.MaxRunDuration = 0
	}
	if settings.Log.Format != "console" && settings.Log.Format != "json" {
		settings.Log.Format = defaults.Log.Format
	}
	if settings.Storage.Backend != "sqlite" && settings.Storage.Backend != "memory" {
		settings.Storage.Backend = defaults.Storage.Backend
	}

	return settings, nil
}

// Save validates and persists application settings.
func (s *SettingsService) Save(settings *domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keySyncInterval, int(settings.Sync.Interval / time.Minute)},
		{keySyncMediaType, settings.Sync.MediaType.String()},
		{keySyncUploadDelay, int(settings.Sync.UploadDelay / time.Millisecond)},
		{keySyncNetwork, string(settings.Sync.Network)},
		{keySyncWatch, settings.Sync.Watch},
		{keySyncMaxRun, int(settings.Sync.MaxRunDuration / time.Minute)},
		{keyServerAddr, settings.Server.Addr},
		{keyLogFormat, settings.Log.Format},
		{keyLogVerbose, settings.Log.Verbose},
		{keyStorageBackend, settings.Storage.Backend},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set updates a single setting from its string form.
// The resulting settings must still validate.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindBool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		parsed = b
	default:
		parsed = strings.TrimSpace(value)
	}

	if key == keySyncMediaType {
		mt, err := domain.ParseMediaType(value)
		if err != nil {
			return err
		}
		parsed = mt.String()
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := applySetting(settings, key, parsed); err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("%w: %s=%s", err, key, value)
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys lists the supported setting keys in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// applySetting writes a parsed value into settings.
func applySetting(settings *domain.Settings, key string, value any) error {
	switch key {
	case keySyncInterval:
		settings.Sync.Interval = time.Duration(value.(int)) * time.Minute
	case keySyncMediaType:
		settings.Sync.MediaType = domain.MediaType(value.(string))
	case keySyncUploadDelay:
		settings.Sync.UploadDelay = time.Duration(value.(int)) * time.Millisecond
	case keySyncNetwork:
		settings.Sync.Network = domain.NetworkPolicy(value.(string))
	case keySyncWatch:
		settings.Sync.Watch = value.(bool)
	case keySyncMaxRun:
		settings.Sync.MaxRunDuration = time.Duration(value.(int)) * time.Minute
	case keyServerAddr:
		settings.Server.Addr = value.(string)
	case keyLogFormat:
		settings.Log.Format = value.(string)
	case keyLogVerbose:
		settings.Log.Verbose = value.(bool)
	case keyStorageBackend:
		settings.Storage.Backend = value.(string)
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getMinutes(key string, defaultVal time.Duration) time.Duration {
	return time.Duration(s.getInt(key, int(defaultVal/time.Minute))) * time.Minute
}

func (s *SettingsService) getMediaType(defaultVal domain.MediaType) domain.MediaType {
	val := s.configStore.GetString(keySyncMediaType)
	if val == "" {
		return defaultVal
	}
	mt, err := domain.ParseMediaType(val)
	if err != nil {
		return defaultVal
	}
	return mt
}

func (s *SettingsService) getNetwork(defaultVal domain.NetworkPolicy) domain.NetworkPolicy {
	val := domain.NetworkPolicy(s.configStore.GetString(keySyncNetwork))
	if !val.IsValid() {
		return defaultVal
	}
	return val
}
