package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
// Bool fields are pointers so an absent key is distinguishable from false.
type FileConfig struct {
	DataDir             string  `toml:"data_dir"`
	InstanceID          string  `toml:"instance_id"`
	LogLevel            string  `toml:"log_level"`
	NoSplash            *bool   `toml:"no_splash"`
	NonInteractive      *bool   `toml:"non_interactive"`
	GracefulDegradation *bool   `toml:"graceful_degradation"`
	DialogTimeout       string  `toml:"dialog_timeout"`
	MaxRetries          int     `toml:"max_retries"`
	RetryDelay          string  `toml:"retry_delay"`
	BackoffMultiplier   float64 `toml:"backoff_multiplier"`
	MaxRetryDelay       string  `toml:"max_retry_delay"`
	WatchConfig         *bool   `toml:"watch_config"`
	JournalPrune        *bool   `toml:"journal_prune"`
	VetoFirstQuit       *bool   `toml:"veto_first_quit"`
	FailHook            string  `toml:"fail_hook"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.liftoff/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".liftoff", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("data-dir", fc.DataDir, &cfg.DataDir)
	s.setString("instance-id", fc.InstanceID, &cfg.InstanceID)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("fail-hook", fc.FailHook, &cfg.FailHook)

	if err := s.setDuration("dialog-timeout", fc.DialogTimeout, &cfg.DialogTimeout); err != nil {
		return err
	}
	if err := s.setDuration("retry-delay", fc.RetryDelay, &cfg.RetryDelay); err != nil {
		return err
	}
	if err := s.setDuration("max-retry-delay", fc.MaxRetryDelay, &cfg.MaxRetryDelay); err != nil {
		return err
	}

	s.setFloat("backoff-multiplier", fc.BackoffMultiplier, &cfg.BackoffMultiplier)
	s.setInt("max-retries", fc.MaxRetries, &cfg.MaxRetries)

	s.setBool("no-splash", fc.NoSplash, &cfg.NoSplash)
	s.setBool("non-interactive", fc.NonInteractive, &cfg.NonInteractive)
	s.setBool("graceful-degradation", fc.GracefulDegradation, &cfg.GracefulDegradation)
	s.setBool("watch-config", fc.WatchConfig, &cfg.WatchConfig)
	s.setBool("journal-prune", fc.JournalPrune, &cfg.JournalPrune)
	s.setBool("veto-first-quit", fc.VetoFirstQuit, &cfg.VetoFirstQuit)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
