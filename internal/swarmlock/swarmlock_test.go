package swarmlock

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAcquireReleaseRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swarm.lock")

	lock, err := Acquire(context.Background(), path)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected lock file to exist: %v", err)
	}

	lock.Release()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected lock file removed after Release, stat err=%v", err)
	}
}

func TestWithLockMutualExclusion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swarm.lock")

	var counter int64
	var wg sync.WaitGroup
	const n = 20
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = WithLock(context.Background(), path, func() error {
				cur := atomic.AddInt64(&counter, 1)
				if cur != 1 {
					t.Errorf("expected exclusive access, got concurrent count %d", cur)
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt64(&counter, -1)
				return nil
			})
		}()
	}
	wg.Wait()
}

func TestAcquireRecoversStaleDeadPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swarm.lock")

	// A PID that is very unlikely to be alive.
	if err := os.WriteFile(path, []byte("999999"), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	orig := IsProcessAlive
	IsProcessAlive = func(pid int) bool { return pid != 999999 }
	defer func() { IsProcessAlive = orig }()

	lock, err := Acquire(context.Background(), path)
	if err != nil {
		t.Fatalf("Acquire: expected recovery from stale lock, got %v", err)
	}
	lock.Release()
}

func TestAcquireCancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swarm.lock")

	holder, err := Acquire(context.Background(), path)
	if err != nil {
		t.Fatalf("Acquire holder: %v", err)
	}
	defer holder.Release()

	orig := IsProcessAlive
	IsProcessAlive = func(pid int) bool { return true } // holder looks alive, so waiter must wait
	defer func() { IsProcessAlive = orig }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Acquire(ctx, path); err != ErrCancelled {
		t.Fatalf("Acquire with cancelled context: got %v, want %v", err, ErrCancelled)
	}
}
