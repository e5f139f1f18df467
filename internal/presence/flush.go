package presence

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	flushCoalesceInterval = 10 * time.Second
	flushHeartbeat        = 15 * time.Second
	flushPollInterval     = 1 * time.Second
)

// Flusher debounces rewrites of one agent's presence record: MarkDirty
// requests are coalesced into at most one write per flushCoalesceInterval,
// and a write is forced every flushHeartbeat regardless of dirtiness.
// Modeled on the ticker-plus-manual-trigger loop in internal/sync/loop.go,
// generalized to two periods instead of one.
type Flusher struct {
	registry *Registry
	name     string

	mu        sync.Mutex
	dirty     bool
	lastFlush time.Time

	nudge chan struct{}
	done  chan struct{}
}

// NewFlusher returns a Flusher for the named agent's presence record.
func NewFlusher(registry *Registry, name string) *Flusher {
	return &Flusher{
		registry: registry,
		name:     name,
		nudge:    make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// MarkDirty records that the in-memory record has changed since the last
// flush, nudging the loop without blocking the caller.
func (f *Flusher) MarkDirty() {
	f.mu.Lock()
	f.dirty = true
	f.mu.Unlock()
	select {
	case f.nudge <- struct{}{}:
	default:
	}
}

// Run blocks, flushing the record returned by get at the coalesce/heartbeat cadence, until
// ctx is cancelled or Stop is called. get returns the current in-memory
// record to persist; callers typically close over a mutex-guarded Record.
func (f *Flusher) Run(ctx context.Context, get func() Record) {
	ticker := time.NewTicker(flushPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-f.done:
			return
		case <-f.nudge:
			f.maybeFlush(get)
		case <-ticker.C:
			f.maybeFlush(get)
		}
	}
}

// Stop ends a running Flusher's loop.
func (f *Flusher) Stop() {
	close(f.done)
}

func (f *Flusher) maybeFlush(get func() Record) {
	f.mu.Lock()
	sinceLast := time.Since(f.lastFlush)
	shouldFlush := (f.dirty && sinceLast >= flushCoalesceInterval) || sinceLast >= flushHeartbeat
	f.mu.Unlock()
	if !shouldFlush {
		return
	}

	rec := get()
	if err := f.registry.Save(rec); err != nil {
		log.Printf("presence: activity flush for %q failed: %v", f.name, err)
		return
	}
	f.mu.Lock()
	f.dirty = false
	f.lastFlush = time.Now()
	f.mu.Unlock()
}
