// Package retrywatcher provides live retry policy reloads for liftoff.
// When enabled, it watches a TOML config file for changes and applies the
// retry keys to the running lifecycle manager, so operators can loosen or
// tighten recovery behavior without a restart.
package retrywatcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/liftlab/liftoff"
	"github.com/liftlab/liftoff/pkg/log"
)

// Plugin implements retry policy watching.
// It monitors the config file and pushes changed retry keys into the
// lifecycle manager as overrides.
type Plugin struct {
	mu sync.Mutex

	// Configuration
	path          string
	debounceDelay time.Duration

	// Runtime state
	manager  *liftoff.Manager
	logger   liftoff.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
}

// Config holds configuration options for the retry watcher plugin.
type Config struct {
	// Path is the TOML file to watch. The watcher is disabled when empty.
	Path string

	// DebounceDelay is the delay to wait after a file change before applying.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new retry watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}

	return &Plugin{
		path:          cfg.Path,
		debounceDelay: cfg.DebounceDelay,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "retrywatcher"
}

// Initialize sets up the plugin and starts the file watcher.
func (p *Plugin) Initialize(ctx context.Context, env liftoff.PluginEnv) error {
	p.mu.Lock()
	p.manager = env.Manager
	p.logger = env.Logger
	p.mu.Unlock()

	if p.path == "" {
		p.logger.Warn("Retry watcher disabled: no config path configured")
		return nil
	}

	// The watcher outlives the startup context; only Shutdown stops it.
	watchCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	p.logger.Info("Retry watcher plugin initialized")

	// Start watcher loop
	p.wg.Add(1)
	go p.watchLoop(watchCtx)

	return nil
}

// Shutdown stops the file watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

// watchLoop watches for config file changes.
func (p *Plugin) watchLoop(ctx context.Context) {
	defer p.wg.Done()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		p.logger.Error("Retry watcher: failed to create watcher")
		return
	}
	defer watcher.Close()

	// Watch the directory; editors replace files rather than write in place,
	// so watching the file itself loses the subscription on the first save.
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		p.logger.Error("Retry watcher: failed to watch directory")
		return
	}

	// Apply the current file once so a policy edited while the process was
	// down still lands.
	p.apply()

	target := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.debounceApply()

		case _, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("Retry watcher: watcher error")
		}
	}
}

func (p *Plugin) debounceApply() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}

	p.debounce = time.AfterFunc(p.debounceDelay, p.apply)
}

// retryFile carries the watched retry keys. Pointer fields distinguish an
// absent key from a zero value, so a partial file overrides only what it
// names.
type retryFile struct {
	MaxRetries        *int     `toml:"max_retries"`
	RetryDelay        *string  `toml:"retry_delay"`
	BackoffMultiplier *float64 `toml:"backoff_multiplier"`
	MaxRetryDelay     *string  `toml:"max_retry_delay"`
}

// apply reads the file and pushes its retry keys into the manager.
func (p *Plugin) apply() {
	overrides, ok := p.loadOverrides()
	if !ok {
		return
	}

	updated, err := p.manager.UpdateRetryConfig(overrides)
	if err != nil {
		p.logger.Warn("Retry watcher: rejected invalid retry policy", log.Err(err))
		return
	}
	p.logger.Info("Retry watcher: applied retry policy",
		log.Int("max_retries", updated.MaxRetries),
		log.Duration("retry_delay", updated.RetryDelay),
	)
}

func (p *Plugin) loadOverrides() (liftoff.RetryOverrides, bool) {
	var overrides liftoff.RetryOverrides

	b, err := os.ReadFile(p.path)
	if err != nil {
		p.logger.Warn("Retry watcher: cannot read config file")
		return overrides, false
	}
	var rf retryFile
	if err := toml.Unmarshal(b, &rf); err != nil {
		p.logger.Warn("Retry watcher: cannot parse config file")
		return overrides, false
	}

	overrides.MaxRetries = rf.MaxRetries
	overrides.BackoffMultiplier = rf.BackoffMultiplier
	if rf.RetryDelay != nil {
		d, err := time.ParseDuration(*rf.RetryDelay)
		if err != nil {
			p.logger.Warn("Retry watcher: invalid retry_delay")
			return overrides, false
		}
		overrides.RetryDelay = &d
	}
	if rf.MaxRetryDelay != nil {
		d, err := time.ParseDuration(*rf.MaxRetryDelay)
		if err != nil {
			p.logger.Warn("Retry watcher: invalid max_retry_delay")
			return overrides, false
		}
		overrides.MaxRetryDelay = &d
	}

	return overrides, true
}

// Ensure Plugin implements liftoff.Plugin.
var _ liftoff.Plugin = (*Plugin)(nil)
