package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/liftlab/liftoff"
	"github.com/liftlab/liftoff/internal/cliconfig"
	"github.com/liftlab/liftoff/pkg/log"
	"github.com/liftlab/liftoff/plugins/journalkeeper"
	"github.com/liftlab/liftoff/plugins/retrywatcher"
)

const helpBanner = `
 █████        █████  ██████████  ███████████     ███████       ██████████  ██████████
░░███        ░░███  ░░███░░░░░█ ░█░░░███░░░█    ███░░░░░███   ░░███░░░░░█ ░░███░░░░░█
 ░███         ░███   ░███  █ ░  ░   ░███  ░    ███     ░░███   ░███  █ ░   ░███  █ ░
 ░███         ░███   ░██████        ░███      ░███      ░███   ░██████     ░██████
 ░███         ░███   ░███░░█        ░███      ░███      ░███   ░███░░█     ░███░░█
 ░███      █  ░███   ░███ ░         ░███      ░░███     ███    ░███ ░      ░███ ░
 ███████████  █████  █████          █████      ░░░███████░     █████       █████
░░░░░░░░░░░  ░░░░░  ░░░░░          ░░░░░         ░░░░░░░      ░░░░░       ░░░░░
`

const helpDescription = `
Run your application's startup and shutdown as supervised lifecycle phases.

Highlights:
  - Four startup and two shutdown phases with priority-ordered hooks.
  - Automatic retries with capped exponential backoff; critical failures
    escalate to a console dialog instead of killing the process.
  - Shutdown interception: hooks can veto a quit request while work is unsaved.
  - Configure via file, env, or flags; reload the retry policy live with --watch-config.
`

var longHelp = strings.TrimSpace(helpBanner) + "\n\n" + strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  liftoff --data-dir ~/.myapp
  liftoff --config $HOME/.liftoff/config.toml --watch-config
  liftoff --fail-hook telemetry --log-level debug
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().Timestamp().Logger()
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string
	var showStats bool

	root := &cobra.Command{
		Use:     "liftoff",
		Short:   "Run your application's startup and shutdown as supervised lifecycle phases",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.liftoff/config.toml), then apply flag overrides
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Apply environment variables (LIFTOFF_*)
			// These override file config but are overridden by flags (checked via changed map)
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}
			cfg.ConfigPath = cfgFile

			// Validate and set derived defaults
			if err := cfg.Validate(); err != nil {
				return err
			}

			// Load or mint the instance identity under the data dir
			if err := cliconfig.LoadInstanceInfo(&cfg); err != nil {
				return err
			}

			zl := newLogger(cfg.LogLevel)
			zl.Debug().Interface("config", cfg).Msg("configuration")

			return run(zl, cfg, showStats)
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.liftoff/config.toml)")
	root.Flags().StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for journal and instance state")
	root.Flags().StringVar(&cfg.InstanceID, "instance-id", cfg.InstanceID, "stable instance identity (default: minted under data-dir)")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	root.Flags().BoolVar(&cfg.NoSplash, "no-splash", cfg.NoSplash, "disable the console progress bar")
	root.Flags().BoolVar(&cfg.NonInteractive, "non-interactive", cfg.NonInteractive, "never prompt; critical failures abort startup")
	root.Flags().BoolVar(&cfg.GracefulDegradation, "graceful-degradation", cfg.GracefulDegradation, "allow continuing past critical hook failures")
	root.Flags().DurationVar(&cfg.DialogTimeout, "dialog-timeout", cfg.DialogTimeout, "how long a recovery prompt waits before aborting")

	root.Flags().IntVar(&cfg.MaxRetries, "max-retries", cfg.MaxRetries, "automatic retry attempts per failing hook")
	root.Flags().DurationVar(&cfg.RetryDelay, "retry-delay", cfg.RetryDelay, "delay before the first retry")
	root.Flags().Float64Var(&cfg.BackoffMultiplier, "backoff-multiplier", cfg.BackoffMultiplier, "backoff growth factor between retries")
	root.Flags().DurationVar(&cfg.MaxRetryDelay, "max-retry-delay", cfg.MaxRetryDelay, "upper bound on the retry delay")

	root.Flags().BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "reload retry policy when the config file changes")
	root.Flags().BoolVar(&cfg.JournalPrune, "journal-prune", cfg.JournalPrune, "prune old session journals in the data directory")
	root.Flags().BoolVar(&showStats, "stats", false, "print a lifecycle summary on exit")

	root.Flags().BoolVar(&cfg.VetoFirstQuit, "veto-first-quit", cfg.VetoFirstQuit, "veto the first quit request (demo)")
	root.Flags().StringVar(&cfg.FailHook, "fail-hook", cfg.FailHook, "force the named hook to fail (demo)")

	if err := root.Execute(); err != nil {
		zl := newLogger("info")
		zl.Error().Err(err).Msg("liftoff")
		os.Exit(1)
	}
}

func run(zl zerolog.Logger, cfg cliconfig.Config, showStats bool) error {
	logger := log.NewZerologAdapterWithLogger(zl)

	// The manager owns signal handling; exit codes come back through here.
	exitCh := make(chan int, 2)

	opts := []liftoff.Option{
		liftoff.WithLogger(logger),
		liftoff.WithRetryConfig(cfg.Retry()),
		liftoff.WithGracefulDegradation(cfg.GracefulDegradation),
		liftoff.WithDialogTimeout(cfg.DialogTimeout),
		liftoff.WithOSSignals(),
		liftoff.WithExitFunc(func(code int) { exitCh <- code }),
	}
	if !cfg.NoSplash {
		opts = append(opts, liftoff.WithConsoleProgress(os.Stdout))
	}
	if !cfg.NonInteractive {
		opts = append(opts, liftoff.WithConsoleDialog(os.Stdin, os.Stdout))
	}
	if cfg.WatchConfig && cfg.ConfigPath != "" {
		opts = append(opts, retrywatcher.WithRetryWatcherPath(cfg.ConfigPath))
	}
	if cfg.JournalPrune {
		opts = append(opts, journalkeeper.WithJournalKeeperDir(cfg.DataDir))
	}

	m, err := liftoff.New(opts...)
	if err != nil {
		return fmt.Errorf("create lifecycle manager: %w", err)
	}
	defer m.Close()

	mon := liftoff.NewMonitor(m, logger)
	if showStats {
		mon.Start()
	}

	app := newDemoApp(zl, cfg)
	if err := app.register(m); err != nil {
		return fmt.Errorf("register hooks: %w", err)
	}

	if err := m.Start(context.Background()); err != nil {
		if errors.Is(err, liftoff.ErrStartupAborted) {
			return fmt.Errorf("startup aborted: %w", err)
		}
		return fmt.Errorf("start: %w", err)
	}

	zl.Info().
		Str("instance_id", cfg.InstanceID).
		Msg("application running, press Ctrl-C to exit")

	code := <-exitCh
	if showStats {
		fmt.Fprintln(os.Stderr, mon.Dump())
	}
	m.Close()
	os.Exit(code)
	return nil
}
