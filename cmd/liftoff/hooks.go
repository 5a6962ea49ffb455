package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/liftlab/liftoff"
	"github.com/liftlab/liftoff/internal/cliconfig"
)

// demoApp is the small host application the CLI drives through the
// lifecycle. It keeps a session journal under the data dir and registers a
// hook in every phase so each band of the startup and shutdown sequence
// is visible on the splash and in the logs.
type demoApp struct {
	zl  zerolog.Logger
	cfg cliconfig.Config

	journal *os.File
	vetoed  bool
}

func newDemoApp(zl zerolog.Logger, cfg cliconfig.Config) *demoApp {
	return &demoApp{zl: zl, cfg: cfg}
}

// journalPath names one journal per session; the journalkeeper plugin
// prunes the old ones.
func (a *demoApp) journalPath() string {
	stamp := time.Now().UTC().Format("20060102-150405")
	return filepath.Join(a.cfg.DataDir, "journal-"+stamp+".log")
}

// maybeFail injects a failure into the named hook so the retry and dialog
// machinery can be exercised from the command line.
func (a *demoApp) maybeFail(name string) error {
	if a.cfg.FailHook == name {
		return fmt.Errorf("injected failure in %q", name)
	}
	return nil
}

func (a *demoApp) appendLine(text string) error {
	if a.journal == nil {
		return nil
	}
	_, err := fmt.Fprintf(a.journal, "%s %s\n", time.Now().UTC().Format(time.RFC3339), text)
	return err
}

func (a *demoApp) register(m *liftoff.Manager) error {
	hooks := []liftoff.Hook{
		{
			Name:     "init-data-dir",
			Phase:    liftoff.PhaseInit,
			Priority: 0,
			Critical: true,
			Run: func(ctx context.Context, hc *liftoff.HookContext) error {
				if err := a.maybeFail("init-data-dir"); err != nil {
					return err
				}
				return os.MkdirAll(a.cfg.DataDir, 0o700)
			},
		},
		{
			Name:     "load-config",
			Phase:    liftoff.PhaseInit,
			Priority: 10,
			Critical: true,
			Timeout:  10 * time.Second,
			Run: func(ctx context.Context, hc *liftoff.HookContext) error {
				if err := a.maybeFail("load-config"); err != nil {
					return err
				}
				if a.cfg.ConfigPath != "" && !cliconfig.FileExists(a.cfg.ConfigPath) {
					// Absent is fine on first run; the path must only be readable
					// when the retry watcher is following it.
					if a.cfg.WatchConfig {
						return fmt.Errorf("watched config file missing: %s", a.cfg.ConfigPath)
					}
				}
				return nil
			},
		},
		{
			Name:     "open-journal",
			Phase:    liftoff.PhaseBeforeStart,
			Critical: true,
			Run: func(ctx context.Context, hc *liftoff.HookContext) error {
				if err := a.maybeFail("open-journal"); err != nil {
					return err
				}
				f, err := os.OpenFile(a.journalPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
				if err != nil {
					return err
				}
				a.journal = f
				return a.appendLine("session started")
			},
		},
		{
			Name:     "telemetry",
			Phase:    liftoff.PhaseBeforeStart,
			Priority: 20,
			Timeout:  2 * time.Second,
			Run: func(ctx context.Context, hc *liftoff.HookContext) error {
				if err := a.maybeFail("telemetry"); err != nil {
					return err
				}
				return a.appendLine("telemetry armed")
			},
		},
		{
			Name:  "warm-cache",
			Phase: liftoff.PhaseReady,
			Run: func(ctx context.Context, hc *liftoff.HookContext) error {
				if err := a.maybeFail("warm-cache"); err != nil {
					return err
				}
				return a.appendLine("cache warmed")
			},
		},
		{
			Name:  "announce",
			Phase: liftoff.PhaseAfterStart,
			Run: func(ctx context.Context, hc *liftoff.HookContext) error {
				a.zl.Info().Str("instance_id", a.cfg.InstanceID).Msg("application ready")
				return a.appendLine("announced ready")
			},
		},
		{
			Name:     "flush-journal",
			Phase:    liftoff.PhaseBeforeQuit,
			Priority: 10,
			Run: func(ctx context.Context, hc *liftoff.HookContext) error {
				if err := a.appendLine("shutting down"); err != nil {
					return err
				}
				if a.journal != nil {
					return a.journal.Sync()
				}
				return nil
			},
		},
		{
			Name:  "close-journal",
			Phase: liftoff.PhaseWillQuit,
			Run: func(ctx context.Context, hc *liftoff.HookContext) error {
				if a.journal == nil {
					return nil
				}
				if err := a.appendLine("session closed"); err != nil {
					return err
				}
				err := a.journal.Close()
				a.journal = nil
				return err
			},
		},
	}

	if a.cfg.VetoFirstQuit {
		hooks = append(hooks, liftoff.Hook{
			Name:     "confirm-quit",
			Phase:    liftoff.PhaseBeforeQuit,
			Priority: 0,
			Intercept: func(ctx context.Context, hc *liftoff.HookContext) (liftoff.Decision, error) {
				if !a.vetoed {
					a.vetoed = true
					a.zl.Warn().Msg("quit vetoed once; press Ctrl-C again to exit")
					return liftoff.Veto("unsaved work (demo)"), nil
				}
				return liftoff.Proceed(), nil
			},
		})
	}

	for _, h := range hooks {
		if _, err := m.RegisterHook(h); err != nil {
			return err
		}
	}
	return nil
}
