package journalkeeper

import "github.com/liftlab/liftoff"

// WithJournalKeeper returns a liftoff Option that enables session journal
// retention. The plugin prunes the oldest journals in the configured
// directory once their total size crosses the high watermark.
//
// Usage:
//
//	m, err := liftoff.New(
//	    journalkeeper.WithJournalKeeper(journalkeeper.Config{
//	        Dir:           "/var/lib/app",
//	        HighWatermark: 64 << 20,
//	        LowWatermark:  48 << 20,
//	    }),
//	)
func WithJournalKeeper(cfg Config) liftoff.Option {
	plugin := New(cfg)
	return liftoff.WithPlugin(plugin)
}

// WithJournalKeeperDir returns a liftoff Option that prunes journals under
// dir with default retention settings (hourly checks, 64 MiB high watermark).
//
// Usage:
//
//	m, err := liftoff.New(journalkeeper.WithJournalKeeperDir(dataDir))
func WithJournalKeeperDir(dir string) liftoff.Option {
	cfg := DefaultConfig()
	cfg.Dir = dir
	return WithJournalKeeper(cfg)
}
