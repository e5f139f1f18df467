package inbox

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestWatcherDeliversOnFileCreate(t *testing.T) {
	store := NewStore(testRoots(t))
	dir := store.roots.InboxDir("bob")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	var mu sync.Mutex
	delivered := 0
	d := NewDrainer(store, "bob", func(Delivery) {
		mu.Lock()
		delivered++
		mu.Unlock()
	}, nil)

	w := NewWatcher(dir, d)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(50 * time.Millisecond) // let the watch attach

	if _, err := store.Deliver("alice", "bob", "hello", nil); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := delivered
		mu.Unlock()
		if n >= 1 {
			return
		}
		select {
		case <-deadline:
			t.Fatal("watcher never drained the new message")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestWatcherBackoffSchedule(t *testing.T) {
	w := &Watcher{dir: filepath.Join(t.TempDir(), "missing")}
	retries := 0
	ctx := context.Background()
	start := time.Now()
	ok := w.backoff(ctx, &retries)
	if !ok {
		t.Fatal("expected first backoff to allow a retry")
	}
	if elapsed := time.Since(start); elapsed < watchBaseDelay {
		t.Fatalf("expected to wait at least the base delay, waited %v", elapsed)
	}
	if retries != 1 {
		t.Fatalf("got retries=%d", retries)
	}
}

func TestWatcherBackoffGivesUpAfterMaxRetries(t *testing.T) {
	w := &Watcher{dir: "irrelevant"}
	retries := watchMaxRetry
	if w.backoff(context.Background(), &retries) {
		t.Fatal("expected backoff to give up past watchMaxRetry")
	}
}
