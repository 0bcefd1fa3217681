package config

import (
	"errors"
	"fmt"

	"github.com/hammamikhairi/ottoweb/internal/logger"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr must be set")
	}
	if c.Server.ReadTimeoutSeconds <= 0 || c.Server.WriteTimeoutSeconds <= 0 {
		return errors.New("server timeouts must be positive")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return errors.New("fetch.timeout_seconds must be positive")
	}
	if c.Fetch.MaxBytes <= 0 {
		return errors.New("fetch.max_bytes must be positive")
	}
	if c.Fetch.CacheSize < 0 {
		return errors.New("fetch.cache_size must not be negative")
	}
	if c.Session.TickMillis <= 0 {
		return errors.New("session.tick_millis must be positive")
	}
	if c.Speech.Enabled && (c.Speech.AzureKey == "" || c.Speech.AzureRegion == "") {
		return fmt.Errorf("speech.enabled requires azure_key and azure_region (or %s and %s)",
			EnvAzureSpeechKey, EnvAzureSpeechRegion)
	}
	if c.Speech.TimeoutSeconds <= 0 {
		return errors.New("speech.timeout_seconds must be positive")
	}
	if c.Voice.Enabled && c.Voice.ModelPath == "" {
		return errors.New("voice.enabled requires voice.model_path")
	}
	if c.Voice.ClipSeconds <= 0 {
		return errors.New("voice.clip_seconds must be positive")
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}
