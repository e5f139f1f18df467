package crew

import (
	"context"
	"fmt"
	"sync"
)

// Verdict is the review outcome for one completed work attempt.
type Verdict string

const (
	VerdictShip         Verdict = "SHIP"
	VerdictNeedsWork    Verdict = "NEEDS_WORK"
	VerdictMajorRethink Verdict = "MAJOR_RETHINK"
)

const (
	DefaultMaxAttemptsPerTask = 5
	DefaultMaxWaves           = 50
)

// ReviewFunc judges a finished work attempt and returns the verdict plus
// any notes to attach (used as the task's completion summary on SHIP, or
// the block reason on MAJOR_RETHINK).
type ReviewFunc func(ctx context.Context, task Task, result ExecResult) (Verdict, string, error)

// PromptFunc builds the prompt text handed to a worker for one task.
type PromptFunc func(epic Epic, task Task) string

// OrchestrateConfig bounds one autonomous run.
type OrchestrateConfig struct {
	MaxAttemptsPerTask int
	MaxWaves           int
}

func (c OrchestrateConfig) withDefaults() OrchestrateConfig {
	if c.MaxAttemptsPerTask <= 0 {
		c.MaxAttemptsPerTask = DefaultMaxAttemptsPerTask
	}
	if c.MaxWaves <= 0 {
		c.MaxWaves = DefaultMaxWaves
	}
	return c
}

// Orchestrator drives an epic's task graph to completion wave by wave:
// each wave dispatches every currently-ready task (bounded by the
// executor's own concurrency) to a worker, reviews the result, and
// applies the verdict before the next wave computes readiness again.
type Orchestrator struct {
	store    *Store
	executor *Executor
	review   ReviewFunc
	prompt   PromptFunc
	cfg      OrchestrateConfig
}

// NewOrchestrator wires a Store, Executor, review judge, and prompt
// builder together. cfg's zero fields take the package defaults.
func NewOrchestrator(store *Store, executor *Executor, review ReviewFunc, prompt PromptFunc, cfg OrchestrateConfig) *Orchestrator {
	return &Orchestrator{store: store, executor: executor, review: review, prompt: prompt, cfg: cfg.withDefaults()}
}

// Summary reports how an orchestration run ended.
type Summary struct {
	Waves     int
	Completed []string
	Blocked   []string
	Stopped   string // "all_done", "all_blocked", "max_waves"
}

// Run dispatches waves of ready tasks for epicID until every task is done
// or blocked, or MaxWaves is reached.
func (o *Orchestrator) Run(ctx context.Context, epicID string) (Summary, error) {
	var summary Summary
	for wave := 1; wave <= o.cfg.MaxWaves; wave++ {
		summary.Waves = wave

		ready, err := o.store.ReadyTasks(epicID)
		if err != nil {
			return summary, err
		}
		if len(ready) == 0 {
			stopped, err := o.describeStall(epicID)
			if err != nil {
				return summary, err
			}
			summary.Stopped = stopped
			break
		}

		var wg sync.WaitGroup
		var mu sync.Mutex
		for _, task := range ready {
			wg.Add(1)
			go func(task Task) {
				defer wg.Done()
				completedID, blockedID, err := o.runOne(ctx, epicID, task)
				if err != nil {
					return
				}
				mu.Lock()
				if completedID != "" {
					summary.Completed = append(summary.Completed, completedID)
				}
				if blockedID != "" {
					summary.Blocked = append(summary.Blocked, blockedID)
				}
				mu.Unlock()
			}(task)
		}
		wg.Wait()

		if wave == o.cfg.MaxWaves {
			summary.Stopped = "max_waves"
		}
	}
	return summary, nil
}

// runOne starts, executes, and reviews a single task, applying the
// resulting verdict. It returns the task id under whichever of
// completedID/blockedID applies, or neither if the task was reset for
// retry.
func (o *Orchestrator) runOne(ctx context.Context, epicID string, task Task) (completedID, blockedID string, err error) {
	epic, ok, err := o.store.GetEpic(epicID)
	if err != nil {
		return "", "", err
	}
	if !ok {
		return "", "", fmt.Errorf("epic %q not found", epicID)
	}

	started, err := o.store.StartTask(task.ID, "crew-worker")
	if err != nil {
		return "", "", err
	}

	prompt := ""
	if o.prompt != nil {
		prompt = o.prompt(epic, started)
	}
	result, err := o.executor.Run(ctx, WorkRequest{TaskID: started.ID, Agent: "crew-worker", Prompt: prompt})
	if err != nil {
		if _, blockErr := o.store.BlockTask(started.ID, fmt.Sprintf("worker failed to run: %v", err)); blockErr != nil {
			return "", "", blockErr
		}
		return "", started.ID, nil
	}

	verdict, notes, err := o.review(ctx, started, result)
	if err != nil {
		return "", "", err
	}

	switch verdict {
	case VerdictShip:
		done, err := o.store.CompleteTask(ctx, started.ID, notes, nil)
		if err != nil {
			return "", "", err
		}
		return done.ID, "", nil

	case VerdictNeedsWork:
		if started.AttemptCount >= o.cfg.MaxAttemptsPerTask {
			blocked, err := o.store.BlockTask(started.ID, fmt.Sprintf("exceeded max attempts (%d): %s", o.cfg.MaxAttemptsPerTask, notes))
			if err != nil {
				return "", "", err
			}
			return "", blocked.ID, nil
		}
		if _, err := o.store.ResetTask(ctx, started.ID, false); err != nil {
			return "", "", err
		}
		return "", "", nil

	case VerdictMajorRethink:
		blocked, err := o.store.BlockTask(started.ID, notes)
		if err != nil {
			return "", "", err
		}
		return "", blocked.ID, nil

	default:
		return "", "", fmt.Errorf("unrecognized verdict %q for task %q", verdict, started.ID)
	}
}

// describeStall classifies why no tasks are ready: every task is done,
// every remaining task is blocked, or a dependency stalemate exists
// (reported as "all_blocked" too, since the dispatcher can't make
// progress either way).
func (o *Orchestrator) describeStall(epicID string) (string, error) {
	tasks, err := o.store.ListTasks(epicID)
	if err != nil {
		return "", err
	}
	allDone := true
	for _, t := range tasks {
		if t.Status != TaskDone {
			allDone = false
			break
		}
	}
	if allDone {
		return "all_done", nil
	}
	return "all_blocked", nil
}
