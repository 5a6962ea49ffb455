package cliconfig

import (
	"os"
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"LIFTOFF_DATA_DIR":       "/env/data",
				"LIFTOFF_LOG_LEVEL":      "debug",
				"LIFTOFF_DIALOG_TIMEOUT": "10m",
				"LIFTOFF_MAX_RETRIES":    "8",
				"LIFTOFF_NO_SPLASH":      "true",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				DataDir:       "/env/data",
				LogLevel:      "debug",
				DialogTimeout: 10 * time.Minute,
				MaxRetries:    8,
				NoSplash:      true,
			},
			wantErr: false,
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"LIFTOFF_DATA_DIR":  "/env/data",
				"LIFTOFF_LOG_LEVEL": "error",
			},
			changed: map[string]bool{"data-dir": true},
			initial: Config{
				DataDir: "/flag/data",
			},
			expected: Config{
				DataDir:  "/flag/data", // unchanged because flag was set
				LogLevel: "error",
			},
			wantErr: false,
		},
		{
			name: "invalid duration",
			envVars: map[string]string{
				"LIFTOFF_RETRY_DELAY": "whenever",
			},
			changed: map[string]bool{},
			initial: Config{},
			wantErr: true,
		},
		{
			name: "invalid int",
			envVars: map[string]string{
				"LIFTOFF_MAX_RETRIES": "many",
			},
			changed: map[string]bool{},
			initial: Config{},
			wantErr: true,
		},
		{
			name: "invalid float",
			envVars: map[string]string{
				"LIFTOFF_BACKOFF_MULTIPLIER": "steep",
			},
			changed: map[string]bool{},
			initial: Config{},
			wantErr: true,
		},
		{
			name: "bool accepts 1",
			envVars: map[string]string{
				"LIFTOFF_VETO_FIRST_QUIT": "1",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				VetoFirstQuit: true,
			},
			wantErr: false,
		},
		{
			name: "applies every supported variable",
			envVars: map[string]string{
				"LIFTOFF_DATA_DIR":             "/srv/app",
				"LIFTOFF_INSTANCE_ID":          "env-id",
				"LIFTOFF_LOG_LEVEL":            "warn",
				"LIFTOFF_FAIL_HOOK":            "telemetry",
				"LIFTOFF_DIALOG_TIMEOUT":       "90s",
				"LIFTOFF_RETRY_DELAY":          "2s",
				"LIFTOFF_MAX_RETRY_DELAY":      "20s",
				"LIFTOFF_BACKOFF_MULTIPLIER":   "1.5",
				"LIFTOFF_MAX_RETRIES":          "4",
				"LIFTOFF_NO_SPLASH":            "true",
				"LIFTOFF_NON_INTERACTIVE":      "false",
				"LIFTOFF_GRACEFUL_DEGRADATION": "true",
				"LIFTOFF_WATCH_CONFIG":         "1",
				"LIFTOFF_JOURNAL_PRUNE":        "true",
				"LIFTOFF_VETO_FIRST_QUIT":      "true",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				DataDir:             "/srv/app",
				InstanceID:          "env-id",
				LogLevel:            "warn",
				FailHook:            "telemetry",
				DialogTimeout:       90 * time.Second,
				RetryDelay:          2 * time.Second,
				MaxRetryDelay:       20 * time.Second,
				BackoffMultiplier:   1.5,
				MaxRetries:          4,
				NoSplash:            true,
				NonInteractive:      false,
				GracefulDegradation: true,
				WatchConfig:         true,
				JournalPrune:        true,
				VetoFirstQuit:       true,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Set environment variables
			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}
			// Clean up after test
			defer func() {
				for k := range tt.envVars {
					os.Unsetenv(k)
				}
			}()

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)

			if tt.wantErr && err == nil {
				t.Error("ApplyEnvConfig() expected error but got nil")
				return
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ApplyEnvConfig() unexpected error: %v", err)
				return
			}

			if !tt.wantErr && cfg != tt.expected {
				t.Errorf("ApplyEnvConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

// Integration test: precedence order (CLI > Env > File)
func TestConfigPrecedence(t *testing.T) {
	trueVal := true

	// Setup file config
	fileConf := FileConfig{
		DataDir:  "/file/data",
		LogLevel: "error",
		NoSplash: &trueVal,
	}

	// Setup env vars
	os.Setenv("LIFTOFF_DATA_DIR", "/env/data")
	os.Setenv("LIFTOFF_LOG_LEVEL", "debug")
	os.Setenv("LIFTOFF_FAIL_HOOK", "telemetry")
	defer func() {
		os.Unsetenv("LIFTOFF_DATA_DIR")
		os.Unsetenv("LIFTOFF_LOG_LEVEL")
		os.Unsetenv("LIFTOFF_FAIL_HOOK")
	}()

	// Simulate CLI flags
	changed := map[string]bool{
		"data-dir": true, // CLI flag was set for data-dir
	}

	cfg := Config{
		DataDir: "/cli/data", // This should remain (CLI wins)
	}

	// Apply file config
	if err := ApplyFileConfig(&cfg, fileConf, changed); err != nil {
		t.Fatalf("ApplyFileConfig failed: %v", err)
	}

	// Apply env config
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig failed: %v", err)
	}

	// Verify precedence: CLI > Env > File
	if cfg.DataDir != "/cli/data" {
		t.Errorf("DataDir = %v, want /cli/data (CLI should win)", cfg.DataDir)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %v, want debug (env should override file)", cfg.LogLevel)
	}
	if cfg.FailHook != "telemetry" {
		t.Errorf("FailHook = %v, want telemetry (env should set)", cfg.FailHook)
	}
	if cfg.NoSplash != true {
		t.Errorf("NoSplash = %v, want true (file should set)", cfg.NoSplash)
	}
}
