// Package liftoff orchestrates application startup and shutdown through
// prioritized lifecycle hooks.
//
// An application moves through four startup phases (init, before-start,
// ready, after-start) and two shutdown phases (before-quit, will-quit).
// Work is registered as named hooks against a phase; within a phase,
// lower priority runs earlier and ties keep registration order. Failing
// hooks are retried with capped exponential backoff, and critical
// failures can escalate to a recovery dialog asking the user to retry,
// continue degraded, or abort.
//
// # Basic Usage
//
//	m, err := liftoff.New(
//	    liftoff.WithOSSignals(),
//	    liftoff.WithConsoleProgress(os.Stderr),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer m.Close()
//
//	m.RegisterHook(liftoff.Hook{
//	    Name:     "load-config",
//	    Phase:    liftoff.PhaseInit,
//	    Critical: true,
//	    Timeout:  5 * time.Second,
//	    Run: func(ctx context.Context, hc *liftoff.HookContext) error {
//	        return loadConfig(ctx)
//	    },
//	})
//
//	if err := m.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
//	// ... application runs until a shutdown request ...
//
// # Shutdown Interception
//
// Hooks in PhaseBeforeQuit may intercept a shutdown request and veto it,
// for example to keep unsaved work alive:
//
//	m.RegisterHook(liftoff.Hook{
//	    Name:  "confirm-quit",
//	    Phase: liftoff.PhaseBeforeQuit,
//	    Intercept: func(ctx context.Context, hc *liftoff.HookContext) (liftoff.Decision, error) {
//	        if editor.Dirty() {
//	            return liftoff.Veto("unsaved changes"), nil
//	        }
//	        return liftoff.Proceed(), nil
//	    },
//	})
//
// A vetoed request resolves false and leaves the application running; the
// next request consults every interceptor again. ForceShutdown bypasses
// interception entirely.
//
// # Events
//
// Every lifecycle step is published on the manager's event bus. Subscribe
// for diagnostics, or attach a UI sink via [WithUISink] to receive the
// same stream with error details redacted.
package liftoff
