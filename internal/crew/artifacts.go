package crew

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pi-agent/pi-messenger/internal/layout"
)

// CleanupArtifacts removes per-task artifact directories (prompt, output,
// progress files written by Executor.Run) older than maxAge, the same
// age-based sweep shape used for backup archive retention: list, compute
// age from mtime, remove past the cutoff.
func CleanupArtifacts(roots layout.Roots, maxAge time.Duration) (int, error) {
	dir := roots.ArtifactsDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read artifacts dir: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return removed, fmt.Errorf("remove artifact dir %q: %w", e.Name(), err)
		}
		removed++
	}
	return removed, nil
}
