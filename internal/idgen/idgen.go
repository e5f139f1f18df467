// Package idgen generates sortable, collision-resistant identifiers for
// messages and checkpoints, grounded on internal/identity's
// mutex-guarded monotonic-entropy ULID source.
package idgen

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns a new ULID string, monotonic within a single process even
// when two calls land in the same millisecond.
func New() string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
