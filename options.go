package liftoff

import (
	"io"
	"os"
	"time"

	"github.com/zoobzio/clockz"

	"github.com/liftlab/liftoff/internal/adapters/signals"
	"github.com/liftlab/liftoff/internal/adapters/term"
	"github.com/liftlab/liftoff/internal/ports"
	"github.com/liftlab/liftoff/pkg/log"
)

// Option configures optional behavior of a Manager.
type Option func(*options)

// options holds the optional configuration for a Manager.
type options struct {
	logger        log.Logger
	clock         clockz.Clock
	retry         RetryConfig
	degradation   bool
	surface       ports.ProgressSurface
	dialog        ports.RecoveryDialog
	dialogTimeout time.Duration
	sink          Sink
	exitSignal    ports.ExitSignal
	exitFn        func(code int)
	plugins       []Plugin
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() options {
	return options{
		exitFn: os.Exit,
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, nothing is logged.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock sets the clock driving timeouts and backoff delays.
// If not provided, the real clock is used.
func WithClock(clock clockz.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithRetryConfig sets the initial retry policy for failing hooks.
// If not provided, DefaultRetryConfig applies. The policy can be changed
// at runtime with Manager.UpdateRetryConfig.
func WithRetryConfig(cfg RetryConfig) Option {
	return func(o *options) {
		o.retry = cfg
	}
}

// WithGracefulDegradation controls how exhausted critical failures resolve
// when no user answer says otherwise: enabled, the hook is skipped and
// startup continues; disabled (the default), startup aborts.
func WithGracefulDegradation(enabled bool) Option {
	return func(o *options) {
		o.degradation = enabled
	}
}

// WithProgressSurface sets the surface lifecycle progress is rendered on.
// If not provided, progress is published on the event bus only.
func WithProgressSurface(surface ProgressSurface) Option {
	return func(o *options) {
		o.surface = surface
	}
}

// WithRecoveryDialog sets the dialog used to ask the user about critical
// startup failures. If not provided, such failures abort (or degrade, with
// WithGracefulDegradation).
func WithRecoveryDialog(dialog RecoveryDialog) Option {
	return func(o *options) {
		o.dialog = dialog
	}
}

// WithDialogTimeout bounds how long the manager waits for a recovery
// dialog answer before treating it as abort. Default is one minute.
func WithDialogTimeout(d time.Duration) Option {
	return func(o *options) {
		o.dialogTimeout = d
	}
}

// WithUISink attaches a user-facing event consumer. The sink receives the
// full event stream with error details redacted: no stack traces, no
// wrapped error chains.
func WithUISink(sink Sink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithExitSignal sets the source of host exit requests. The manager
// subscribes once at construction: each request runs the shutdown
// sequence, and the process exits only when the request is granted.
func WithExitSignal(sig ExitSignal) Option {
	return func(o *options) {
		o.exitSignal = sig
	}
}

// WithOSSignals routes SIGINT and SIGTERM through the shutdown sequence.
// A second signal while a shutdown attempt is in flight forces immediate
// termination.
func WithOSSignals() Option {
	return func(o *options) {
		o.exitSignal = signals.New()
	}
}

// WithConsoleProgress renders startup progress as a terminal bar on w.
func WithConsoleProgress(w io.Writer) Option {
	return func(o *options) {
		o.surface = term.NewSplash(w)
	}
}

// WithConsoleDialog asks recovery questions on a terminal, reading answers
// from r and writing prompts to w.
func WithConsoleDialog(r io.Reader, w io.Writer) Option {
	return func(o *options) {
		o.dialog = term.NewDialog(r, w)
	}
}

// WithExitFunc replaces the function called to terminate the process after
// a granted exit request. Defaults to os.Exit. Embedding hosts and tests
// use this to intercept termination.
func WithExitFunc(fn func(code int)) Option {
	return func(o *options) {
		o.exitFn = fn
	}
}

// WithPlugin registers a plugin. Plugins are initialized in registration
// order and shut down in reverse order.
func WithPlugin(p Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, p)
	}
}
