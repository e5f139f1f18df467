// Package swarmstore implements the cross-agent claim/completion tables:
// atomic claim/unclaim/complete under the swarm lock, one-in-flight-claim-
// per-agent enforcement, and stale-claim pruning by dead PID. Grounded on
// internal/daemon/peer_registry.go's mutex-guarded-map-over-JSON-file shape,
// generalized from one flat peer map to two task-keyed tables.
package swarmstore

import "time"

// Claim is one entry of claims.json, keyed by (specPath, taskID).
type Claim struct {
	Agent     string    `json:"agent"`
	SessionID string    `json:"sessionId"`
	PID       int       `json:"pid"`
	ClaimedAt time.Time `json:"claimedAt"`
	Reason    string    `json:"reason,omitempty"`
}

// ClaimsTable maps spec_path -> task_id -> Claim.
type ClaimsTable map[string]map[string]Claim

// Completion is one entry of completions.json.
type Completion struct {
	CompletedBy string    `json:"completedBy"`
	CompletedAt time.Time `json:"completedAt"`
	Notes       string    `json:"notes,omitempty"`
}

// CompletionsTable maps spec_path -> task_id -> Completion.
type CompletionsTable map[string]map[string]Completion
