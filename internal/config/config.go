// Package config loads ottoweb settings from a TOML file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Env var names read by Load.
const (
	EnvAzureSpeechKey    = "AZURE_SPEECH_KEY"
	EnvAzureSpeechRegion = "AZURE_SPEECH_REGION"
	EnvAddr              = "OTTOWEB_ADDR"
)

// Server configures the HTTP API.
type Server struct {
	Addr                string `toml:"addr"`
	StaticDir           string `toml:"static_dir"`
	ReadTimeoutSeconds  int    `toml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `toml:"write_timeout_seconds"`
}

// Fetch configures recipe page retrieval.
type Fetch struct {
	TimeoutSeconds int    `toml:"timeout_seconds"`
	UserAgent      string `toml:"user_agent"`
	MaxBytes       int64  `toml:"max_bytes"`
	CacheSize      int    `toml:"cache_size"`
}

// Session configures cook sessions.
type Session struct {
	TickMillis int `toml:"tick_millis"`
}

// Speech configures narration through Azure TTS.
type Speech struct {
	Enabled     bool   `toml:"enabled"`
	AzureKey    string `toml:"azure_key"`
	AzureRegion string `toml:"azure_region"`
	Voice       string `toml:"voice"`
	CacheDir    string `toml:"cache_dir"`
	ChunkSize   int    `toml:"chunk_size"`
	// TimeoutSeconds bounds each synthesis request.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Voice configures whisper.cpp voice input.
type Voice struct {
	Enabled     bool   `toml:"enabled"`
	WhisperBin  string `toml:"whisper_bin"`
	ModelPath   string `toml:"model_path"`
	ClipSeconds int    `toml:"clip_seconds"`
	TempDir     string `toml:"temp_dir"`
}

// Log configures log output.
type Log struct {
	Level string `toml:"level"`
}

// Config holds every setting, one section per subsystem.
type Config struct {
	Server  Server  `toml:"server"`
	Fetch   Fetch   `toml:"fetch"`
	Session Session `toml:"session"`
	Speech  Speech  `toml:"speech"`
	Voice   Voice   `toml:"voice"`
	Log     Log     `toml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Addr:                "127.0.0.1:3000",
			ReadTimeoutSeconds:  10,
			WriteTimeoutSeconds: 30,
		},
		Fetch: Fetch{
			TimeoutSeconds: 15,
			UserAgent:      "ottoweb/1.0 (+recipe reader)",
			MaxBytes:       5 << 20,
			CacheSize:      128,
		},
		Session: Session{TickMillis: 1000},
		Speech: Speech{
			Voice:     "en-US-AvaNeural",
			CacheDir:       "~/.cache/ottoweb/tts",
			ChunkSize:      200,
			TimeoutSeconds: 30,
		},
		Voice: Voice{
			WhisperBin:  "whisper-cli",
			ClipSeconds: 3,
			TempDir:     "~/.cache/ottoweb/stt",
		},
		Log: Log{Level: "normal"},
	}
}

// DefaultConfigPath returns the per-user config file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/ottoweb/config.toml")
}

// Load reads the config file at path (or the default locations when path
// is empty), applies environment overrides and validates the result. It
// also reports the resolved path and whether that file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		f, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()

		dec := toml.NewDecoder(f)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() (string, error) {
	out, err := toml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(out), nil
}

// WriteDefault writes the default configuration to path, refusing to
// overwrite an existing file.
func WriteDefault(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config already exists at %s", expanded)
	}
	cfg := Default()
	body, err := cfg.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(expanded, []byte(body), 0o644)
}

// SpeechTimeout returns the per-request TTS timeout.
func (c *Config) SpeechTimeout() time.Duration {
	return time.Duration(c.Speech.TimeoutSeconds) * time.Second
}

// FetchTimeout returns the page fetch timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// TickInterval returns the session tick period.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Session.TickMillis) * time.Millisecond
}

// ClipDuration returns the length of each voice recording.
func (c *Config) ClipDuration() time.Duration {
	return time.Duration(c.Voice.ClipSeconds) * time.Second
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAzureSpeechKey); v != "" {
		c.Speech.AzureKey = v
	}
	if v := os.Getenv(EnvAzureSpeechRegion); v != "" {
		c.Speech.AzureRegion = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
}

func (c *Config) normalize() error {
	var err error
	for _, p := range []*string{&c.Server.StaticDir, &c.Speech.CacheDir, &c.Voice.TempDir, &c.Voice.ModelPath} {
		if *p == "" {
			continue
		}
		if *p, err = expandPath(*p); err != nil {
			return err
		}
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("ottoweb.toml")
	if err != nil {
		return "", false, err
	}

	for _, p := range []string{projectPath, defaultPath} {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true, nil
		}
	}
	return defaultPath, false, nil
}

func expandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Clean(path), nil
}
