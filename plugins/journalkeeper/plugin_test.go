package journalkeeper

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/liftlab/liftoff"
	"github.com/liftlab/liftoff/pkg/log"
)

func testEnv() liftoff.PluginEnv {
	return liftoff.PluginEnv{Logger: log.NewNoopLogger()}
}

func writeJournal(t *testing.T, dir, stamp string, size int) string {
	t.Helper()
	path := filepath.Join(dir, "journal-"+stamp+".log")
	if err := os.WriteFile(path, bytes.Repeat([]byte("x"), size), 0644); err != nil {
		t.Fatalf("Failed to write journal %s: %v", path, err)
	}
	return path
}

func waitForGone(t *testing.T, path string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s to be pruned", path)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestPlugin_PrunesOldestWhenOverWatermark(t *testing.T) {
	tmpDir := t.TempDir()
	first := writeJournal(t, tmpDir, "20240101-090000", 1000)
	second := writeJournal(t, tmpDir, "20240102-090000", 1000)
	third := writeJournal(t, tmpDir, "20240103-090000", 1000)
	fourth := writeJournal(t, tmpDir, "20240104-090000", 1000)

	plugin := New(Config{
		Dir:           tmpDir,
		CheckInterval: time.Hour,
		HighWatermark: 3500,
		LowWatermark:  2900,
	})
	if err := plugin.Initialize(context.Background(), testEnv()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer plugin.Shutdown(context.Background())

	// 4000 bytes is over the high watermark; dropping the two oldest
	// sessions brings the total under the low watermark.
	waitForGone(t, first)
	waitForGone(t, second)

	if !exists(third) || !exists(fourth) {
		t.Errorf("newer journals pruned: third=%v fourth=%v", exists(third), exists(fourth))
	}
}

func TestPlugin_ProtectsActiveJournal(t *testing.T) {
	tmpDir := t.TempDir()
	old := writeJournal(t, tmpDir, "20240101-090000", 1000)
	active := writeJournal(t, tmpDir, "20240102-090000", 1000)

	plugin := New(Config{
		Dir:           tmpDir,
		CheckInterval: time.Hour,
		HighWatermark: 500,
		LowWatermark:  100,
	})
	if err := plugin.Initialize(context.Background(), testEnv()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer plugin.Shutdown(context.Background())

	waitForGone(t, old)

	// Still over the low watermark, but the newest journal belongs to the
	// running session and must survive.
	if !exists(active) {
		t.Error("active journal pruned")
	}
}

func TestPlugin_LeavesForeignFilesAlone(t *testing.T) {
	tmpDir := t.TempDir()
	old := writeJournal(t, tmpDir, "20240101-090000", 1000)
	writeJournal(t, tmpDir, "20240102-090000", 1000)

	config := filepath.Join(tmpDir, "config.toml")
	if err := os.WriteFile(config, []byte("max_retries = 3\n"), 0644); err != nil {
		t.Fatalf("Failed to write decoy: %v", err)
	}
	// An unstamped name is not a session journal.
	plain := filepath.Join(tmpDir, "journal.log")
	if err := os.WriteFile(plain, bytes.Repeat([]byte("x"), 5000), 0644); err != nil {
		t.Fatalf("Failed to write decoy: %v", err)
	}

	plugin := New(Config{
		Dir:           tmpDir,
		CheckInterval: time.Hour,
		HighWatermark: 500,
		LowWatermark:  100,
	})
	if err := plugin.Initialize(context.Background(), testEnv()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer plugin.Shutdown(context.Background())

	waitForGone(t, old)

	if !exists(config) || !exists(plain) {
		t.Errorf("foreign files pruned: config=%v plain=%v", exists(config), exists(plain))
	}
}

func TestPlugin_UnderWatermarkUntouched(t *testing.T) {
	tmpDir := t.TempDir()
	first := writeJournal(t, tmpDir, "20240101-090000", 100)
	second := writeJournal(t, tmpDir, "20240102-090000", 100)

	plugin := New(Config{
		Dir:           tmpDir,
		CheckInterval: time.Hour,
		HighWatermark: 10000,
		LowWatermark:  5000,
	})
	if err := plugin.Initialize(context.Background(), testEnv()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer plugin.Shutdown(context.Background())

	time.Sleep(300 * time.Millisecond)

	if !exists(first) || !exists(second) {
		t.Errorf("journals pruned under the watermark: first=%v second=%v", exists(first), exists(second))
	}
}

func TestPlugin_DisabledWhenDirEmpty(t *testing.T) {
	plugin := New(DefaultConfig())

	if err := plugin.Initialize(context.Background(), testEnv()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := plugin.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

func TestPlugin_Name(t *testing.T) {
	plugin := New(DefaultConfig())
	if plugin.Name() != "journalkeeper" {
		t.Errorf("Name() = %v, want journalkeeper", plugin.Name())
	}
}
