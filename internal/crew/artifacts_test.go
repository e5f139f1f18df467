package crew

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCleanupArtifactsRemovesOnlyStaleDirs(t *testing.T) {
	s := testCrewStore(t)
	roots := s.roots

	stale := filepath.Join(roots.ArtifactsDir(), "task-stale")
	fresh := filepath.Join(roots.ArtifactsDir(), "task-fresh")
	if err := os.MkdirAll(stale, 0o750); err != nil {
		t.Fatalf("MkdirAll stale: %v", err)
	}
	if err := os.MkdirAll(fresh, 0o750); err != nil {
		t.Fatalf("MkdirAll fresh: %v", err)
	}

	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	removed, err := CleanupArtifacts(roots, 24*time.Hour)
	if err != nil {
		t.Fatalf("CleanupArtifacts: %v", err)
	}
	if removed != 1 {
		t.Fatalf("got removed=%d, want 1", removed)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("expected stale dir removed, stat err=%v", err)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("expected fresh dir kept, stat err=%v", err)
	}
}

func TestCleanupArtifactsNoDirIsNotAnError(t *testing.T) {
	s := testCrewStore(t)
	removed, err := CleanupArtifacts(s.roots, time.Hour)
	if err != nil {
		t.Fatalf("CleanupArtifacts: %v", err)
	}
	if removed != 0 {
		t.Fatalf("got removed=%d, want 0", removed)
	}
}
