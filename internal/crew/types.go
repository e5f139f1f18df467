// Package crew implements the epic/task orchestration layer: CRUD and
// lifecycle transitions over the dependency-graph task model, checkpoint
// save/restore, and the worker-spawning executor with bounded concurrency
// and graceful shutdown. Grounded on pkg/dispatcher's process-manager and
// worker-pool shapes from the mraakashshah-oro example, generalized from a
// flat job queue to an epic-scoped dependency graph.
package crew

import "time"

// EpicStatus is one of the fixed epic lifecycle states.
type EpicStatus string

const (
	EpicPlanning  EpicStatus = "planning"
	EpicActive    EpicStatus = "active"
	EpicBlocked   EpicStatus = "blocked"
	EpicCompleted EpicStatus = "completed"
	EpicArchived  EpicStatus = "archived"
)

// Epic is one P/.pi/messenger/crew/epics/<id>.json record.
type Epic struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Status         EpicStatus `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
	TaskCount      int        `json:"task_count"`
	CompletedCount int        `json:"completed_count"`
}

// TaskStatus is one of the fixed task lifecycle states.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
	TaskBlocked    TaskStatus = "blocked"
)

// Evidence records the artifacts a completed task points back to.
type Evidence struct {
	Commits []string `json:"commits,omitempty"`
	Tests   []string `json:"tests,omitempty"`
	PRs     []string `json:"prs,omitempty"`
}

// Task is one P/.pi/messenger/crew/tasks/<id>.json record.
type Task struct {
	ID            string     `json:"id"`
	EpicID        string     `json:"epic_id"`
	Title         string     `json:"title"`
	Status        TaskStatus `json:"status"`
	DependsOn     []string   `json:"depends_on,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	BaseCommit    string     `json:"base_commit,omitempty"`
	AssignedTo    string     `json:"assigned_to,omitempty"`
	Summary       string     `json:"summary,omitempty"`
	Evidence      *Evidence  `json:"evidence,omitempty"`
	BlockedReason string     `json:"blocked_reason,omitempty"`
	AttemptCount  int        `json:"attempt_count"`
}

// Checkpoint is a single-file snapshot of one epic's full state.
type Checkpoint struct {
	ID         string            `json:"id"`
	CreatedAt  time.Time         `json:"created_at"`
	Epic       Epic              `json:"epic"`
	Tasks      []Task            `json:"tasks"`
	EpicSpec   string            `json:"epic_spec"`
	TaskSpecs  map[string]string `json:"task_specs"`
}
