package crew

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/pi-agent/pi-messenger/internal/errs"
	"github.com/pi-agent/pi-messenger/internal/swarmlock"
)

// CreateTask allocates an id under the swarm lock for an existing epic,
// writes the task and its spec stub, and increments the epic's task_count.
func (s *Store) CreateTask(ctx context.Context, epicID, title, description string, dependsOn []string) (Task, error) {
	if title == "" {
		return Task{}, errs.New(errs.MissingTitle, "title is required")
	}

	var task Task
	err := swarmlock.WithLock(ctx, s.roots.SwarmLockFile(), func() error {
		epic, ok, err := s.readEpic(epicID)
		if err != nil {
			return err
		}
		if !ok {
			return errs.New(errs.NotFound, fmt.Sprintf("epic %q not found", epicID))
		}

		existing, err := s.listTasksForEpic(epicID)
		if err != nil {
			return err
		}
		known := make(map[string]bool, len(existing))
		for _, t := range existing {
			known[t.ID] = true
		}
		for _, dep := range dependsOn {
			if !known[dep] {
				return errs.New(errs.OrphanDependency, fmt.Sprintf("depends_on references nonexistent task %q", dep))
			}
		}

		id, err := nextTaskID(s.roots.TasksDir(), epicID)
		if err != nil {
			return err
		}
		ts := now()
		task = Task{ID: id, EpicID: epicID, Title: title, Status: TaskTodo, DependsOn: dependsOn, CreatedAt: ts, UpdatedAt: ts}
		if err := s.writeTask(task); err != nil {
			return err
		}
		if description == "" {
			description = title
		}
		if err := s.writeTaskSpecStub(id, description); err != nil {
			return err
		}

		epic.TaskCount++
		epic.UpdatedAt = ts
		return s.writeEpic(epic)
	})
	if err != nil {
		return Task{}, err
	}
	return task, nil
}

// GetTask reads a single task record.
func (s *Store) GetTask(id string) (Task, bool, error) {
	return s.readTask(id)
}

// ListTasks returns every task belonging to epicID.
func (s *Store) ListTasks(epicID string) ([]Task, error) {
	return s.listTasksForEpic(epicID)
}

// StartTask transitions a todo task to in_progress, recording assignment,
// attempt count, and (best effort) the current git HEAD.
func (s *Store) StartTask(id, agent string) (Task, error) {
	task, ok, err := s.readTask(id)
	if err != nil {
		return Task{}, err
	}
	if !ok {
		return Task{}, errs.New(errs.NotFound, fmt.Sprintf("task %q not found", id))
	}
	if task.Status != TaskTodo {
		return Task{}, errs.New(errs.NotFound, fmt.Sprintf("task %q is not in todo status", id))
	}

	ts := now()
	task.StartedAt = &ts
	task.BaseCommit = currentGitHead()
	task.AssignedTo = agent
	task.AttemptCount++
	task.Status = TaskInProgress
	task.UpdatedAt = ts
	if err := s.writeTask(task); err != nil {
		return Task{}, err
	}
	return task, nil
}

// CompleteTask transitions an in_progress task to done, updating the
// parent epic's denormalized completed_count and status. Runs under the
// swarm lock: concurrent completions across an orchestration wave would
// otherwise race on the epic file's read-modify-write.
func (s *Store) CompleteTask(ctx context.Context, id, summary string, evidence *Evidence) (Task, error) {
	var task Task
	err := swarmlock.WithLock(ctx, s.roots.SwarmLockFile(), func() error {
		var ok bool
		var err error
		task, ok, err = s.readTask(id)
		if err != nil {
			return err
		}
		if !ok {
			return errs.New(errs.NotFound, fmt.Sprintf("task %q not found", id))
		}
		if task.Status != TaskInProgress {
			return errs.New(errs.NotFound, fmt.Sprintf("task %q is not in_progress", id))
		}

		ts := now()
		task.CompletedAt = &ts
		task.AssignedTo = ""
		task.Summary = summary
		task.Evidence = evidence
		task.Status = TaskDone
		task.UpdatedAt = ts
		if err := s.writeTask(task); err != nil {
			return err
		}
		return s.recomputeEpicCounts(task.EpicID)
	})
	if err != nil {
		return Task{}, err
	}
	return task, nil
}

// BlockTask writes a block-context file and transitions the task to blocked.
func (s *Store) BlockTask(id, reason string) (Task, error) {
	task, ok, err := s.readTask(id)
	if err != nil {
		return Task{}, err
	}
	if !ok {
		return Task{}, errs.New(errs.NotFound, fmt.Sprintf("task %q not found", id))
	}

	if err := s.writeBlockFile(id, reason); err != nil {
		return Task{}, err
	}
	task.BlockedReason = reason
	task.Status = TaskBlocked
	task.UpdatedAt = now()
	if err := s.writeTask(task); err != nil {
		return Task{}, err
	}
	return task, nil
}

// UnblockTask removes the block file and returns a blocked task to todo.
func (s *Store) UnblockTask(id string) (Task, error) {
	task, ok, err := s.readTask(id)
	if err != nil {
		return Task{}, err
	}
	if !ok {
		return Task{}, errs.New(errs.NotFound, fmt.Sprintf("task %q not found", id))
	}
	if task.Status != TaskBlocked {
		return Task{}, errs.New(errs.NotFound, fmt.Sprintf("task %q is not blocked", id))
	}

	s.removeBlockFile(id)
	task.BlockedReason = ""
	task.Status = TaskTodo
	task.UpdatedAt = now()
	if err := s.writeTask(task); err != nil {
		return Task{}, err
	}
	return task, nil
}

// ResetTask clears a task's progress fields back to todo. If cascade is
// set, every task that depends on id and is not already todo is reset
// recursively. Runs under the swarm lock for the same reason CompleteTask
// does: the epic's denormalized counts get a read-modify-write.
func (s *Store) ResetTask(ctx context.Context, id string, cascade bool) (Task, error) {
	var task Task
	err := swarmlock.WithLock(ctx, s.roots.SwarmLockFile(), func() error {
		var err error
		task, err = s.resetTaskLocked(id, cascade)
		return err
	})
	if err != nil {
		return Task{}, err
	}
	return task, nil
}

// resetTaskLocked does the work of ResetTask; callers must already hold
// the swarm lock. Recursive cascade calls go through this, not ResetTask,
// since the lock is not reentrant.
func (s *Store) resetTaskLocked(id string, cascade bool) (Task, error) {
	task, ok, err := s.readTask(id)
	if err != nil {
		return Task{}, err
	}
	if !ok {
		return Task{}, errs.New(errs.NotFound, fmt.Sprintf("task %q not found", id))
	}

	if task.Status == TaskBlocked {
		s.removeBlockFile(id)
	}
	task.StartedAt = nil
	task.CompletedAt = nil
	task.BaseCommit = ""
	task.AssignedTo = ""
	task.Summary = ""
	task.Evidence = nil
	task.BlockedReason = ""
	task.Status = TaskTodo
	task.UpdatedAt = now()
	if err := s.writeTask(task); err != nil {
		return Task{}, err
	}

	if cascade {
		dependents, err := s.listTasksForEpic(task.EpicID)
		if err != nil {
			return Task{}, err
		}
		for _, dep := range dependents {
			if dep.Status == TaskTodo {
				continue
			}
			for _, d := range dep.DependsOn {
				if d == id {
					if _, err := s.resetTaskLocked(dep.ID, true); err != nil {
						return Task{}, err
					}
					break
				}
			}
		}
	}

	if err := s.recomputeEpicCounts(task.EpicID); err != nil {
		return Task{}, err
	}
	return task, nil
}

// recomputeEpicCounts recalculates completed_count from the task set and
// sets status to completed iff every task is done, else active.
func (s *Store) recomputeEpicCounts(epicID string) error {
	epic, ok, err := s.readEpic(epicID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	tasks, err := s.listTasksForEpic(epicID)
	if err != nil {
		return err
	}

	completed := 0
	for _, t := range tasks {
		if t.Status == TaskDone {
			completed++
		}
	}
	epic.TaskCount = len(tasks)
	epic.CompletedCount = completed
	if completed == len(tasks) && len(tasks) > 0 {
		epic.Status = EpicCompleted
	} else {
		epic.Status = EpicActive
	}
	epic.UpdatedAt = now()
	return s.writeEpic(epic)
}

// currentGitHead reads the repository HEAD commit, best effort. An empty
// string means the lookup failed (not a git repo, git missing, etc.) and
// is not treated as an error.
func currentGitHead() string {
	cmd := exec.Command("git", "rev-parse", "HEAD")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return ""
	}
	out := stdout.String()
	for len(out) > 0 && (out[len(out)-1] == '\n' || out[len(out)-1] == '\r') {
		out = out[:len(out)-1]
	}
	return out
}
