// Package kvstore implements the atomic JSON-file persistence primitive
// shared by the schedule and instance stores: a value in, a value out,
// with "absent file = no value" semantics and atomic (temp file +
// rename) writes.
package kvstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Load reads path and unmarshals it into v. A missing or malformed file
// is not an error: it reports (false, nil) and leaves v untouched, so
// callers treat "absent" and "default" the same way.
func Load(path string, v any) (found bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, nil
	}

	return true, nil
}

// Save serializes v to path atomically: it writes to a sibling temp file
// in the same directory and renames it into place, so a concurrent
// reader never observes a partial write. Callers that need durability
// across a crash, not just torn-write safety, should fsync themselves;
// this implementation does not.
func Save(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s into place: %w", path, err)
	}

	return nil
}

// SaveBackup saves v to path atomically, first copying any existing file
// at path to path+".bak". The config-save endpoint does not use it:
// config.Watcher.Save writes its own timestamped YAML backup.
func SaveBackup(path string, v any) error {
	if data, err := os.ReadFile(path); err == nil {
		if err := os.WriteFile(path+".bak", data, 0o644); err != nil {
			return fmt.Errorf("write backup %s.bak: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read %s for backup: %w", path, err)
	}

	return Save(path, v)
}
