package main

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"

	"github.com/hammamikhairi/ottoweb/internal/config"
	"github.com/hammamikhairi/ottoweb/internal/extract"
	"github.com/hammamikhairi/ottoweb/internal/logger"
	"github.com/hammamikhairi/ottoweb/internal/recipe"
	"github.com/hammamikhairi/ottoweb/internal/storage"
)

// skipConfig is the annotation key for commands that must run without a
// valid config (config init).
const skipConfig = "skip-config"

// commandContext carries global flags and lazily loaded state shared by
// every subcommand.
type commandContext struct {
	configPath string
	verbose    bool
	quiet      bool
	logFile    string

	cfg       *config.Config
	cfgPath   string
	cfgExists bool
	logCloser io.Closer
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, path, exists, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg, c.cfgPath, c.cfgExists = cfg, path, exists
	return cfg, nil
}

// newLogger builds the root logger. Output goes to --log-file, else to
// fallback; an empty fallback means stderr. Go's standard log package is
// pointed at the same place so third-party chatter stays off the terminal.
func (c *commandContext) newLogger(fallback string) (*logger.Logger, error) {
	level := logger.LevelNormal
	if c.cfg != nil {
		lvl, err := logger.ParseLevel(c.cfg.Log.Level)
		if err != nil {
			return nil, err
		}
		level = lvl
	}
	if c.verbose {
		level = logger.LevelVerbose
	}
	if c.quiet {
		level = logger.LevelOff
	}

	dest := c.logFile
	if dest == "" {
		dest = fallback
	}

	var out io.Writer = os.Stderr
	if dest != "" && dest != "stderr" {
		if dir := filepath.Dir(dest); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create log dir: %w", err)
			}
		}
		f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		c.logCloser = f
		out = f
	}

	stdlog.SetOutput(out)
	stdlog.SetFlags(stdlog.Ltime)
	return logger.New(level, out), nil
}

func (c *commandContext) close() {
	if c.logCloser != nil {
		_ = c.logCloser.Close()
		c.logCloser = nil
	}
}

// newSource wires the recipe cache and web loader from config.
func newSource(cfg *config.Config, log *logger.Logger) (*recipe.WebSource, *storage.MemoryStore) {
	store := storage.NewMemoryStore(log.With("store"), storage.WithCapacity(cfg.Fetch.CacheSize))
	src := recipe.NewWebSource(
		extract.New(log.With("extract")),
		log.With("fetch"),
		recipe.WithTimeout(cfg.FetchTimeout()),
		recipe.WithUserAgent(cfg.Fetch.UserAgent),
		recipe.WithMaxBytes(cfg.Fetch.MaxBytes),
		recipe.WithStore(store),
	)
	return src, store
}
