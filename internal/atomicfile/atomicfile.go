// Package atomicfile provides temp-write-then-rename primitives for the
// JSON and text files that make up the cross-process coordination state.
// Rename on a single POSIX filesystem is atomic, so readers never observe
// partial writes; readers that hit a missing or malformed file treat it as
// absent rather than fatal.
package atomicfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// WriteJSON marshals value as indented JSON and writes it to path using the
// temp-write-then-rename pattern. It creates parent directories as needed.
func WriteJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	return WriteFile(path, data)
}

// WriteFile writes data to path atomically, creating parent directories.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp := fmt.Sprintf("%s.tmp-%d-%d", path, os.Getpid(), time.Now().UnixNano())

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			time.Sleep(10 * time.Millisecond)
		}
		if err := os.WriteFile(tmp, data, 0o600); err != nil {
			lastErr = fmt.Errorf("write temp file %s: %w", tmp, err)
			continue
		}
		if err := os.Rename(tmp, path); err != nil {
			_ = os.Remove(tmp)
			lastErr = fmt.Errorf("rename %s to %s: %w", tmp, path, err)
			continue
		}
		return nil
	}
	return lastErr
}

// ReadJSON reads and decodes the JSON file at path into value.
// A missing file or one that fails to parse (e.g. truncated by a
// concurrent writer on a non-POSIX filesystem) is reported via ok=false,
// not an error — callers must treat "not present" as the normal case.
func ReadJSON(path string, value any) (ok bool, err error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304 - path constructed from internal state directories
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, value); err != nil {
		return false, nil
	}
	return true, nil
}

// Remove deletes path, ignoring a not-exist error. Dead-state cleanup is
// always best-effort: a failure to unlink here is harmless because the
// next scanner observes the same condition and retries.
func Remove(path string) {
	_ = os.Remove(path)
}
