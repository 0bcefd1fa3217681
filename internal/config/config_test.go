package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/ottoweb/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(config.EnvAzureSpeechKey, "")
	t.Setenv(config.EnvAzureSpeechRegion, "")
	t.Setenv(config.EnvAddr, "")
	path := filepath.Join(t.TempDir(), "absent.toml")

	cfg, resolved, exists, err := config.Load(path)
	require.NoError(t, err)
	require.False(t, exists)
	require.Equal(t, path, resolved)
	require.Equal(t, "127.0.0.1:3000", cfg.Server.Addr)
	require.Equal(t, 15*time.Second, cfg.FetchTimeout())
	require.Equal(t, time.Second, cfg.TickInterval())
	require.Equal(t, 3*time.Second, cfg.ClipDuration())
	require.Equal(t, 30*time.Second, cfg.SpeechTimeout())
	require.False(t, cfg.Speech.Enabled)
	require.False(t, cfg.Voice.Enabled)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	t.Setenv(config.EnvAddr, "")
	path := writeConfig(t, `
[server]
addr = "0.0.0.0:8080"

[fetch]
timeout_seconds = 5
user_agent = "custom/2"

[session]
tick_millis = 250

[log]
level = "VERBOSE"
`)

	cfg, _, exists, err := config.Load(path)
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	require.Equal(t, 5*time.Second, cfg.FetchTimeout())
	require.Equal(t, "custom/2", cfg.Fetch.UserAgent)
	require.Equal(t, 250*time.Millisecond, cfg.TickInterval())
	require.Equal(t, "verbose", cfg.Log.Level)
	// Untouched sections keep their defaults.
	require.Equal(t, config.Default().Fetch.MaxBytes, cfg.Fetch.MaxBytes)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(config.EnvAzureSpeechKey, "env-key")
	t.Setenv(config.EnvAzureSpeechRegion, "westeurope")
	t.Setenv(config.EnvAddr, ":9999")
	path := writeConfig(t, `
[server]
addr = "127.0.0.1:1"

[speech]
enabled = true
`)

	cfg, _, _, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9999", cfg.Server.Addr)
	require.Equal(t, "env-key", cfg.Speech.AzureKey)
	require.Equal(t, "westeurope", cfg.Speech.AzureRegion)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv(config.EnvAzureSpeechKey, "")
	t.Setenv(config.EnvAzureSpeechRegion, "")
	t.Setenv(config.EnvAddr, "")

	tests := []struct {
		name string
		body string
		want string
	}{
		{"speech without credentials", "[speech]\nenabled = true\n", "speech.enabled requires"},
		{"voice without model", "[voice]\nenabled = true\n", "voice.model_path"},
		{"zero tick", "[session]\ntick_millis = 0\n", "session.tick_millis"},
		{"zero speech timeout", "[speech]\ntimeout_seconds = 0\n", "speech.timeout_seconds"},
		{"bad level", "[log]\nlevel = \"loud\"\n", "log.level"},
		{"unknown key", "[server]\nport = 3000\n", "parse config"},
		{"malformed", "[server\n", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := config.Load(writeConfig(t, tt.body))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := config.Default()
	body, err := cfg.Encode()
	require.NoError(t, err)

	var decoded config.Config
	require.NoError(t, toml.Unmarshal([]byte(body), &decoded))
	require.Equal(t, cfg, decoded)
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, config.WriteDefault(path))

	_, _, exists, err := config.Load(path)
	require.NoError(t, err)
	require.True(t, exists)

	require.Error(t, config.WriteDefault(path), "must not overwrite")
}

func TestValidateDefault(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
}
