// Package reservation implements the path-reservation scheme and its
// enforcement hook: a presence record's Reservations list acts as an
// advisory lock on file paths, checked before write-like tool calls.
package reservation

import (
	"fmt"
	"strings"

	"github.com/pi-agent/pi-messenger/internal/presence"
)

// Matches reports whether pattern matches path: a trailing-slash pattern
// is a directory prefix, anything else requires exact equality. No glob
// expansion or path normalization is performed; callers own canonicalizing
// paths before comparison.
func Matches(pattern, path string) bool {
	if strings.HasSuffix(pattern, "/") {
		return path == pattern || strings.HasPrefix(path, pattern)
	}
	return path == pattern
}

// Conflict is one other agent whose reservation matches a candidate path.
type Conflict struct {
	Agent        string
	Pattern      string
	Reason       string
	Registration presence.Record
}

// ConflictsWithOtherAgents returns every live agent (excluding self) whose
// reservation matches path. A non-empty result is a hard block on the
// caller's write-like tool call.
func ConflictsWithOtherAgents(agents []presence.Record, self, path string) []Conflict {
	var conflicts []Conflict
	for _, agent := range agents {
		if agent.Name == self {
			continue
		}
		for _, res := range agent.Reservations {
			if Matches(res.Pattern, path) {
				conflicts = append(conflicts, Conflict{
					Agent:        agent.Name,
					Pattern:      res.Pattern,
					Reason:       res.Reason,
					Registration: agent,
				})
				break
			}
		}
	}
	return conflicts
}

// Message renders a human-readable block message naming the reserver(s).
func Message(path string, conflicts []Conflict) string {
	if len(conflicts) == 0 {
		return ""
	}
	names := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		if c.Reason != "" {
			names = append(names, fmt.Sprintf("%s (%s)", c.Agent, c.Reason))
		} else {
			names = append(names, c.Agent)
		}
	}
	return fmt.Sprintf("%s is reserved by %s", path, strings.Join(names, ", "))
}
