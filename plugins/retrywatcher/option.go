package retrywatcher

import "github.com/liftlab/liftoff"

// WithRetryWatcher returns a liftoff Option that enables live retry policy
// reloads. The plugin watches the given TOML file and applies changed retry
// keys to the running manager.
//
// Usage:
//
//	m, err := liftoff.New(
//	    retrywatcher.WithRetryWatcher(retrywatcher.Config{
//	        Path:          "/etc/app/config.toml",
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithRetryWatcher(cfg Config) liftoff.Option {
	plugin := New(cfg)
	return liftoff.WithPlugin(plugin)
}

// WithRetryWatcherPath returns a liftoff Option that watches the given file
// with default settings (debounce 100ms).
//
// Usage:
//
//	m, err := liftoff.New(retrywatcher.WithRetryWatcherPath(path))
func WithRetryWatcherPath(path string) liftoff.Option {
	cfg := DefaultConfig()
	cfg.Path = path
	return WithRetryWatcher(cfg)
}
