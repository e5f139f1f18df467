package swarmstore

import (
	"fmt"

	"github.com/pi-agent/pi-messenger/internal/atomicfile"
	"github.com/pi-agent/pi-messenger/internal/layout"
	"github.com/pi-agent/pi-messenger/internal/presence"
)

// Store persists claims.json/completions.json under roots.Base.
type Store struct {
	roots layout.Roots
}

// NewStore returns a Store rooted at roots.
func NewStore(roots layout.Roots) *Store {
	return &Store{roots: roots}
}

func (s *Store) loadClaims() (ClaimsTable, error) {
	var table ClaimsTable
	ok, err := atomicfile.ReadJSON(s.roots.ClaimsFile(), &table)
	if err != nil {
		return nil, fmt.Errorf("read claims table: %w", err)
	}
	if !ok || table == nil {
		table = ClaimsTable{}
	}
	return table, nil
}

func (s *Store) saveClaims(table ClaimsTable) error {
	if err := atomicfile.WriteJSON(s.roots.ClaimsFile(), table); err != nil {
		return fmt.Errorf("save claims table: %w", err)
	}
	return nil
}

func (s *Store) loadCompletions() (CompletionsTable, error) {
	var table CompletionsTable
	ok, err := atomicfile.ReadJSON(s.roots.CompletionsFile(), &table)
	if err != nil {
		return nil, fmt.Errorf("read completions table: %w", err)
	}
	if !ok || table == nil {
		table = CompletionsTable{}
	}
	return table, nil
}

func (s *Store) saveCompletions(table CompletionsTable) error {
	if err := atomicfile.WriteJSON(s.roots.CompletionsFile(), table); err != nil {
		return fmt.Errorf("save completions table: %w", err)
	}
	return nil
}

// pruneStale drops claim entries whose PID is no longer alive: every read
// drops dead-PID entries. It reports whether any entry was removed, so
// callers under the lock know whether to write the pruned table back.
func pruneStale(table ClaimsTable) bool {
	changed := false
	for specPath, tasks := range table {
		for taskID, claim := range tasks {
			if !presence.IsProcessAlive(claim.PID) {
				delete(tasks, taskID)
				changed = true
			}
		}
		if len(tasks) == 0 {
			delete(table, specPath)
		}
	}
	return changed
}

// LoadClaimsPruned reads claims.json and drops dead-PID entries in memory,
// without persisting the prune (used for read-only listing outside the lock).
func (s *Store) LoadClaimsPruned() (ClaimsTable, error) {
	table, err := s.loadClaims()
	if err != nil {
		return nil, err
	}
	pruneStale(table)
	return table, nil
}
