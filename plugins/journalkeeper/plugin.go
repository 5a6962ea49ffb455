// Package journalkeeper provides session journal retention for liftoff.
// When enabled, it periodically sums the journal files in a directory and
// removes the oldest sessions once the total crosses a high watermark, so a
// long-lived data directory does not grow without bound.
package journalkeeper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/liftlab/liftoff"
	"github.com/liftlab/liftoff/pkg/log"
)

// Plugin implements journal retention.
// It periodically checks the journal directory size and removes the oldest
// session journals when it exceeds the high watermark.
type Plugin struct {
	mu sync.RWMutex

	// Configuration
	dir           string
	checkInterval time.Duration
	highWatermark int64
	lowWatermark  int64

	// Runtime state
	logger liftoff.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Config holds configuration options for the journal keeper plugin.
type Config struct {
	// Dir is the directory holding session journals. The keeper is disabled
	// when empty.
	Dir string

	// CheckInterval is how often to check the journal directory size.
	// Default: 1 hour
	CheckInterval time.Duration

	// HighWatermark is the size in bytes above which pruning begins.
	// Default: 64 MiB
	HighWatermark int64

	// LowWatermark is the target size in bytes after pruning.
	// Default: 48 MiB
	LowWatermark int64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		CheckInterval: time.Hour,
		HighWatermark: 64 << 20, // 64 MiB
		LowWatermark:  48 << 20, // 48 MiB
	}
}

// New creates a new journal keeper plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = time.Hour
	}
	if cfg.HighWatermark <= 0 {
		cfg.HighWatermark = 64 << 20
	}
	if cfg.LowWatermark <= 0 {
		cfg.LowWatermark = 48 << 20
	}

	return &Plugin{
		dir:           cfg.Dir,
		checkInterval: cfg.CheckInterval,
		highWatermark: cfg.HighWatermark,
		lowWatermark:  cfg.LowWatermark,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "journalkeeper"
}

// Initialize sets up the plugin and starts the prune loop.
func (p *Plugin) Initialize(ctx context.Context, env liftoff.PluginEnv) error {
	p.mu.Lock()
	p.logger = env.Logger
	p.mu.Unlock()

	if p.dir == "" {
		p.logger.Warn("Journal keeper disabled: no journal directory configured")
		return nil
	}

	// The prune loop outlives the startup context; only Shutdown stops it.
	pruneCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	p.logger.Info("Journal keeper plugin initialized")

	// Start prune loop
	p.wg.Add(1)
	go p.pruneLoop(pruneCtx)

	return nil
}

// Shutdown stops the prune loop.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	return nil
}

// pruneLoop runs periodic retention checks.
func (p *Plugin) pruneLoop(ctx context.Context) {
	defer p.wg.Done()

	// Run immediately on startup
	p.pruneOnce(ctx)

	ticker := time.NewTicker(p.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pruneOnce(ctx)
		}
	}
}

// pruneOnce performs a single retention check.
func (p *Plugin) pruneOnce(ctx context.Context) {
	p.mu.RLock()
	dir := p.dir
	p.mu.RUnlock()

	journals, total, err := listJournals(dir)
	if err != nil {
		p.logger.Error("Journal keeper: size check failed", log.Err(err))
		return
	}

	if total <= p.highWatermark {
		return
	}
	if len(journals) < 2 {
		return
	}

	// The newest journal belongs to the running session and is never removed.
	candidates := journals[:len(journals)-1]

	removed := int64(0)
	files := 0
	for _, j := range candidates {
		if ctx.Err() != nil {
			return
		}
		if total <= p.lowWatermark {
			break
		}

		if err := os.Remove(j.path); err != nil {
			p.logger.Error("Journal keeper: remove failed", log.Err(err))
			continue
		}
		total -= j.size
		removed += j.size
		files++
	}

	if removed > 0 {
		p.logger.Info("Journal keeper: pruned old sessions",
			log.Int("files", files),
			log.String("freed", formatBytes(removed)),
		)
	}
}

// journal represents one session journal file.
type journal struct {
	path string
	size int64
}

// listJournals returns the session journals under dir ordered oldest first,
// along with their total size. The timestamped names sort chronologically.
func listJournals(dir string) ([]journal, int64, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, err
	}

	var journals []journal
	var total int64
	for _, e := range ents {
		if e.IsDir() || !isJournalName(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, 0, err
		}
		journals = append(journals, journal{
			path: filepath.Join(dir, e.Name()),
			size: info.Size(),
		})
		total += info.Size()
	}

	sort.Slice(journals, func(i, k int) bool {
		return journals[i].path < journals[k].path
	})
	return journals, total, nil
}

func isJournalName(name string) bool {
	if !strings.HasPrefix(name, "journal-") || !strings.HasSuffix(name, ".log") {
		return false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, "journal-"), ".log")
	return len(stamp) == len("20060102-150405")
}

func formatBytes(b int64) string {
	const (
		_          = iota
		KB float64 = 1 << (10 * iota)
		MB
		GB
	)

	fb := float64(b)
	switch {
	case fb >= GB:
		return fmt.Sprintf("%.2fGiB", fb/GB)
	case fb >= MB:
		return fmt.Sprintf("%.2fMiB", fb/MB)
	case fb >= KB:
		return fmt.Sprintf("%.2fKiB", fb/KB)
	default:
		return fmt.Sprintf("%dB", b)
	}
}

// Ensure Plugin implements liftoff.Plugin.
var _ liftoff.Plugin = (*Plugin)(nil)
