package presence

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/pi-agent/pi-messenger/internal/atomicfile"
)

const discoveryTTL = 1 * time.Second

// discoveryCache holds a 1-second TTL cache of active-agent scans, keyed
// on the registry directory. An expirable.LRU with a single entry gives us
// the TTL eviction for free instead of hand-rolling a timestamp check.
type discoveryCache struct {
	lru *lru.LRU[string, []Record]
}

func newDiscoveryCache() *discoveryCache {
	return &discoveryCache{lru: lru.NewLRU[string, []Record](1, nil, discoveryTTL)}
}

func (c *discoveryCache) get(key string) ([]Record, bool) {
	return c.lru.Get(key)
}

func (c *discoveryCache) put(key string, records []Record) {
	c.lru.Add(key, records)
}

func (c *discoveryCache) invalidate() {
	c.lru.Purge()
}

// DiscoverOptions controls the active-agent scan.
type DiscoverOptions struct {
	ScopeToFolder bool   // restrict to agents whose Cwd matches CurrentCwd
	CurrentCwd    string
}

// GetActiveAgents scans the registry, dropping records with a dead PID
// (pruning them from disk as a side effect, best-effort), and returns the
// surviving records. The scan result is cached for discoveryTTL, keyed on
// the registry directory path.
func (r *Registry) GetActiveAgents(opts DiscoverOptions) []Record {
	dir := r.roots.RegistryDir()
	if cached, ok := r.cache.get(dir); ok {
		return filterScope(cached, opts)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		r.cache.put(dir, nil)
		return nil
	}

	var active []Record
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		rec, ok := r.Get(name)
		if !ok {
			continue
		}
		if !IsProcessAlive(rec.PID) {
			// Best-effort prune: next scanner observes the same absence if
			// this unlink fails for any reason.
			atomicfile.Remove(r.roots.PresenceFile(name))
			continue
		}
		active = append(active, rec)
	}

	r.cache.put(dir, active)
	return filterScope(active, opts)
}

func filterScope(records []Record, opts DiscoverOptions) []Record {
	if !opts.ScopeToFolder || opts.CurrentCwd == "" {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if filepath.Clean(rec.Cwd) == filepath.Clean(opts.CurrentCwd) {
			out = append(out, rec)
		}
	}
	return out
}
