package swarmstore

import (
	"context"
	"fmt"
	"time"

	"github.com/pi-agent/pi-messenger/internal/errs"
	"github.com/pi-agent/pi-messenger/internal/swarmlock"
)

// ClaimRequest carries the caller-supplied fields for Claim.
type ClaimRequest struct {
	SpecPath  string
	TaskID    string
	Agent     string
	SessionID string
	PID       int
	Reason    string
}

// Claim inserts a claim entry under the swarm lock, enforcing the
// one-in-flight-claim-per-agent rule and rejecting a task already claimed.
func (s *Store) Claim(ctx context.Context, req ClaimRequest) (Claim, error) {
	var result Claim
	err := swarmlock.WithLock(ctx, s.roots.SwarmLockFile(), func() error {
		table, err := s.loadClaims()
		if err != nil {
			return err
		}
		if pruneStale(table) {
			if err := s.saveClaims(table); err != nil {
				return err
			}
		}

		if tasks, ok := table[req.SpecPath]; ok {
			if existing, ok := tasks[req.TaskID]; ok {
				return errs.NewWithData(errs.AlreadyClaimed, fmt.Sprintf("task %q is already claimed", req.TaskID),
					map[string]any{"conflict": map[string]any{"agent": existing.Agent, "taskId": req.TaskID}})
			}
		}
		for specPath, tasks := range table {
			for taskID, c := range tasks {
				if c.Agent == req.Agent {
					return errs.NewWithData(errs.AlreadyHaveClaim, fmt.Sprintf("agent %q already holds a claim", req.Agent),
						map[string]any{"existing": map[string]any{"taskId": taskID, "spec": specPath}})
				}
			}
		}

		claim := Claim{Agent: req.Agent, SessionID: req.SessionID, PID: req.PID, ClaimedAt: time.Now(), Reason: req.Reason}
		if table[req.SpecPath] == nil {
			table[req.SpecPath] = map[string]Claim{}
		}
		table[req.SpecPath][req.TaskID] = claim
		if err := s.saveClaims(table); err != nil {
			return err
		}
		result = claim
		return nil
	})
	if err != nil {
		return Claim{}, err
	}
	return result, nil
}

// Unclaim deletes the claiming agent's own claim entry, rejecting if no
// claim exists or the claim is owned by another agent.
func (s *Store) Unclaim(ctx context.Context, specPath, taskID, agent string) error {
	return swarmlock.WithLock(ctx, s.roots.SwarmLockFile(), func() error {
		table, err := s.loadClaims()
		if err != nil {
			return err
		}
		if pruneStale(table) {
			if err := s.saveClaims(table); err != nil {
				return err
			}
		}

		tasks, ok := table[specPath]
		if !ok {
			return errs.New(errs.NotClaimed, fmt.Sprintf("task %q is not claimed", taskID))
		}
		claim, ok := tasks[taskID]
		if !ok {
			return errs.New(errs.NotClaimed, fmt.Sprintf("task %q is not claimed", taskID))
		}
		if claim.Agent != agent {
			return errs.New(errs.NotYourClaim, fmt.Sprintf("task %q is claimed by %q, not %q", taskID, claim.Agent, agent))
		}

		delete(tasks, taskID)
		if len(tasks) == 0 {
			delete(table, specPath)
		}
		return s.saveClaims(table)
	})
}

// CompleteRequest carries the caller-supplied fields for Complete.
type CompleteRequest struct {
	SpecPath string
	TaskID   string
	Agent    string
	Notes    string
}

// Complete deletes the caller's claim and records a completion, enforcing
// first-completer-wins and claim-ownership checks.
func (s *Store) Complete(ctx context.Context, req CompleteRequest) (Completion, error) {
	var result Completion
	err := swarmlock.WithLock(ctx, s.roots.SwarmLockFile(), func() error {
		completions, err := s.loadCompletions()
		if err != nil {
			return err
		}
		if tasks, ok := completions[req.SpecPath]; ok {
			if _, ok := tasks[req.TaskID]; ok {
				return errs.New(errs.AlreadyCompleted, fmt.Sprintf("task %q is already completed", req.TaskID))
			}
		}

		claims, err := s.loadClaims()
		if err != nil {
			return err
		}
		if pruneStale(claims) {
			if err := s.saveClaims(claims); err != nil {
				return err
			}
		}

		tasks, ok := claims[req.SpecPath]
		if !ok {
			return errs.New(errs.NotClaimed, fmt.Sprintf("task %q is not claimed", req.TaskID))
		}
		claim, ok := tasks[req.TaskID]
		if !ok {
			return errs.New(errs.NotClaimed, fmt.Sprintf("task %q is not claimed", req.TaskID))
		}
		if claim.Agent != req.Agent {
			return errs.New(errs.NotYourClaim, fmt.Sprintf("task %q is claimed by %q, not %q", req.TaskID, claim.Agent, req.Agent))
		}

		delete(tasks, req.TaskID)
		if len(tasks) == 0 {
			delete(claims, req.SpecPath)
		}
		if err := s.saveClaims(claims); err != nil {
			return err
		}

		completion := Completion{CompletedBy: req.Agent, CompletedAt: time.Now(), Notes: req.Notes}
		if completions[req.SpecPath] == nil {
			completions[req.SpecPath] = map[string]Completion{}
		}
		completions[req.SpecPath][req.TaskID] = completion
		if err := s.saveCompletions(completions); err != nil {
			return err
		}
		result = completion
		return nil
	})
	if err != nil {
		return Completion{}, err
	}
	return result, nil
}
