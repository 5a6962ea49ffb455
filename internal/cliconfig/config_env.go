package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (LIFTOFF_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("data-dir", os.Getenv("LIFTOFF_DATA_DIR"), &cfg.DataDir)
	s.setString("instance-id", os.Getenv("LIFTOFF_INSTANCE_ID"), &cfg.InstanceID)
	s.setString("log-level", os.Getenv("LIFTOFF_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("fail-hook", os.Getenv("LIFTOFF_FAIL_HOOK"), &cfg.FailHook)

	if err := s.setDuration("dialog-timeout", os.Getenv("LIFTOFF_DIALOG_TIMEOUT"), &cfg.DialogTimeout); err != nil {
		return err
	}
	if err := s.setDuration("retry-delay", os.Getenv("LIFTOFF_RETRY_DELAY"), &cfg.RetryDelay); err != nil {
		return err
	}
	if err := s.setDuration("max-retry-delay", os.Getenv("LIFTOFF_MAX_RETRY_DELAY"), &cfg.MaxRetryDelay); err != nil {
		return err
	}

	if err := s.setFloatFromString("backoff-multiplier", os.Getenv("LIFTOFF_BACKOFF_MULTIPLIER"), &cfg.BackoffMultiplier); err != nil {
		return err
	}
	if err := s.setIntFromString("max-retries", os.Getenv("LIFTOFF_MAX_RETRIES"), &cfg.MaxRetries); err != nil {
		return err
	}

	s.setBoolFromString("no-splash", os.Getenv("LIFTOFF_NO_SPLASH"), &cfg.NoSplash)
	s.setBoolFromString("non-interactive", os.Getenv("LIFTOFF_NON_INTERACTIVE"), &cfg.NonInteractive)
	s.setBoolFromString("graceful-degradation", os.Getenv("LIFTOFF_GRACEFUL_DEGRADATION"), &cfg.GracefulDegradation)
	s.setBoolFromString("watch-config", os.Getenv("LIFTOFF_WATCH_CONFIG"), &cfg.WatchConfig)
	s.setBoolFromString("journal-prune", os.Getenv("LIFTOFF_JOURNAL_PRUNE"), &cfg.JournalPrune)
	s.setBoolFromString("veto-first-quit", os.Getenv("LIFTOFF_VETO_FIRST_QUIT"), &cfg.VetoFirstQuit)

	return nil
}
