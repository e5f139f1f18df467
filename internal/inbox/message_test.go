package inbox

import (
	"strings"
	"testing"
	"time"
)

func TestFileNameSortsByTimestamp(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Second)

	n1, err := fileName(t1)
	if err != nil {
		t.Fatalf("fileName: %v", err)
	}
	n2, err := fileName(t2)
	if err != nil {
		t.Fatalf("fileName: %v", err)
	}
	if n1 >= n2 {
		t.Fatalf("expected %q < %q", n1, n2)
	}
	if !strings.HasSuffix(n1, ".json") {
		t.Fatalf("expected .json suffix, got %q", n1)
	}
}
