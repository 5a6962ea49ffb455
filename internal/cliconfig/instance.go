package cliconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// DefaultInstanceFileName is the identity file kept under DataDir.
const DefaultInstanceFileName = "instance.json"

// instanceRecord is the on-disk identity document.
type instanceRecord struct {
	InstanceID string    `json:"instance_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// LoadInstanceInfo fills cfg.InstanceID if it is not already set. The identity
// is read from instance.json under DataDir; a fresh one is generated and
// persisted when the file does not exist, so an installation keeps the same
// ID across runs.
func LoadInstanceInfo(cfg *Config) error {
	if cfg.InstanceID != "" {
		return nil
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("instance-id is required (or data-dir)")
	}

	path := rootify(DefaultInstanceFileName, cfg.DataDir)
	id, err := readInstanceID(path)
	if err == nil {
		cfg.InstanceID = id
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("read instance id: %w", err)
	}

	id = uuid.NewString()
	if err := writeInstanceID(path, id); err != nil {
		return fmt.Errorf("persist instance id: %w", err)
	}
	cfg.InstanceID = id
	return nil
}

func readInstanceID(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var rec instanceRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return "", err
	}
	if rec.InstanceID == "" {
		return "", fmt.Errorf("no instance_id in %s", path)
	}
	return rec.InstanceID, nil
}

func writeInstanceID(path, id string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	rec := instanceRecord{InstanceID: id, CreatedAt: time.Now().UTC()}
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// rootify returns the absolute path if path is absolute,
// otherwise it joins dataDir and path.
func rootify(path, dataDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dataDir, path)
}
