// Package swarmlock implements the machine-scope filesystem mutex that
// serializes mutation of the cross-agent claims/completions tables and
// epic/task id allocation. Unlike an OS advisory lock (flock), the holder
// is identified by a PID stamped into the lock file's body, and staleness
// is judged by liveness probe plus file age — so the lock recovers cleanly
// when its holder is killed, including on filesystems where flock does not
// survive a crash identically.
package swarmlock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const (
	retryInterval  = 100 * time.Millisecond
	maxRetries     = 50 // ~5s total
	staleThreshold = 10 * time.Second
)

// ErrTimeout is returned when the lock could not be acquired within the
// retry budget.
var ErrTimeout = errors.New("lock_timeout")

// ErrCancelled is returned when ctx is cancelled while waiting.
var ErrCancelled = errors.New("cancelled")

// Lock represents a held swarm lock. It is not reentrant: a holder must
// not call Acquire again from within its own critical section.
type Lock struct {
	path string
}

// IsProcessAlive reports whether pid refers to a live process, using the
// signal-0 probe (os.FindProcess + Signal(syscall.Signal(0))).
var IsProcessAlive = defaultIsProcessAlive

// Acquire attempts to create path exclusively, retrying on collision per
// the staleness protocol, and returns a Lock the caller must Release.
func Acquire(ctx context.Context, path string) (*Lock, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, ErrCancelled
		}

		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			_, writeErr := f.WriteString(strconv.Itoa(os.Getpid()))
			closeErr := f.Close()
			if writeErr != nil || closeErr != nil {
				_ = os.Remove(path)
				continue
			}
			return &Lock{path: path}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create lock file %s: %w", path, err)
		}

		if recoverStale(path) {
			// Stale holder cleared; retry immediately without sleeping.
			continue
		}

		select {
		case <-ctx.Done():
			return nil, ErrCancelled
		case <-time.After(retryInterval):
		}
	}
	return nil, ErrTimeout
}

// recoverStale inspects the existing lock file and, if its holder is dead
// or the file is older than staleThreshold, unlinks it. A file younger than
// staleThreshold whose PID cannot be read yet is left in place. Returns true
// if it removed a stale lock.
func recoverStale(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		// Already gone — treat as recovered so the caller retries promptly.
		return os.IsNotExist(err)
	}

	holderPID, ok := readHolderPID(path)
	age := time.Since(info.ModTime())

	// A young file with no readable PID belongs to a holder that has
	// created it but not yet written its PID; it is not stale.
	if age < staleThreshold && (!ok || IsProcessAlive(holderPID)) {
		return false
	}

	// Holder is dead, or the file is old enough that we no longer trust a
	// live-looking PID (reused PID on a long-stuck lock). Best-effort unlink;
	// if another waiter races us to it, both attempts are harmless.
	_ = os.Remove(path)
	return true
}

func readHolderPID(path string) (int, bool) {
	data, err := os.ReadFile(path) //nolint:gosec // G304 - internal lock file path
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, false
	}
	return pid, true
}

// Release unlinks the lock file. Best effort; safe to call once per
// successful Acquire.
func (l *Lock) Release() {
	if l == nil {
		return
	}
	_ = os.Remove(l.path)
}

// WithLock acquires path, runs fn, and guarantees the lock is released
// even if fn panics or returns an error.
func WithLock(ctx context.Context, path string, fn func() error) error {
	lock, err := Acquire(ctx, path)
	if err != nil {
		return err
	}
	defer lock.Release()
	return fn()
}

func defaultIsProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil
}
