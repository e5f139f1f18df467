package inbox

import (
	"context"
	"log"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	watchDebounce  = 50 * time.Millisecond
	watchMaxRetry  = 5
	watchBaseDelay = 1000 * time.Millisecond
	watchMaxDelay  = 30000 * time.Millisecond
)

// Watcher attaches an fsnotify watch to one recipient's inbox directory and
// invokes drainer.Drain on each debounced fire, reattaching with
// exponential backoff if the watch closes unexpectedly. Modeled on
// internal/websocket/connection.go's read-pump-plus-reconnect shape.
type Watcher struct {
	dir     string
	drainer *Drainer
}

// NewWatcher returns a Watcher for dir, delivering to drainer.
func NewWatcher(dir string, drainer *Drainer) *Watcher {
	return &Watcher{dir: dir, drainer: drainer}
}

// Run blocks until ctx is cancelled, watching dir and re-attaching on
// failure with a backoff schedule. It logs and gives up (stays dormant)
// after watchMaxRetry consecutive attach failures.
func (w *Watcher) Run(ctx context.Context) {
	retries := 0
	for {
		if ctx.Err() != nil {
			return
		}
		fsw, err := fsnotify.NewWatcher()
		if err != nil {
			if !w.backoff(ctx, &retries) {
				return
			}
			continue
		}
		if err := fsw.Add(w.dir); err != nil {
			fsw.Close()
			log.Printf("inbox: watch %q failed: %v", w.dir, err)
			if !w.backoff(ctx, &retries) {
				return
			}
			continue
		}

		retries = 0
		closedUnexpectedly := w.watchLoop(ctx, fsw)
		fsw.Close()
		if !closedUnexpectedly {
			return // ctx cancelled
		}
		if !w.backoff(ctx, &retries) {
			return
		}
	}
}

// watchLoop drains on debounced fsnotify events until ctx is cancelled or
// the watcher's channels close unexpectedly. Returns true in the latter case.
func (w *Watcher) watchLoop(ctx context.Context, fsw *fsnotify.Watcher) bool {
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	var debounceC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return false
		case _, ok := <-fsw.Events:
			if !ok {
				return true
			}
			if debounce == nil {
				debounce = time.NewTimer(watchDebounce)
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(watchDebounce)
			}
			debounceC = debounce.C
		case <-debounceC:
			w.drainer.Drain()
			debounceC = nil
		case err, ok := <-fsw.Errors:
			if !ok {
				return true
			}
			log.Printf("inbox: watcher error on %q: %v", w.dir, err)
		}
	}
}

// backoff sleeps the exponential delay for the current retry count,
// incrementing it, and reports whether another attempt should be made.
func (w *Watcher) backoff(ctx context.Context, retries *int) bool {
	*retries++
	if *retries > watchMaxRetry {
		log.Printf("inbox: giving up on watch %q after %d retries", w.dir, watchMaxRetry)
		return false
	}
	delay := watchBaseDelay * time.Duration(1<<uint(*retries-1))
	if delay > watchMaxDelay {
		delay = watchMaxDelay
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(delay):
		return true
	}
}
