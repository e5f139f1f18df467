package mesh

import (
	"context"
	"fmt"
	"strings"

	"github.com/pi-agent/pi-messenger/internal/crew"
	"github.com/pi-agent/pi-messenger/internal/errs"
	"github.com/pi-agent/pi-messenger/internal/feed"
)

// reviewFromOutput extracts the authoritative verdict tag from a worker's
// accumulated output, per the ignore-free-text-unless-structured rule:
// the tag is the last occurrence of SHIP/NEEDS_WORK/MAJOR_RETHINK found on
// its own line.
func reviewFromOutput(output string) (crew.Verdict, string) {
	verdict := crew.VerdictNeedsWork
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		switch trimmed {
		case string(crew.VerdictShip):
			verdict = crew.VerdictShip
		case string(crew.VerdictNeedsWork):
			verdict = crew.VerdictNeedsWork
		case string(crew.VerdictMajorRethink):
			verdict = crew.VerdictMajorRethink
		}
	}
	return verdict, output
}

func scoutPrompt(target, idea string) string {
	if idea != "" {
		return fmt.Sprintf("Scout the codebase for context relevant to this idea, report findings as short bullet notes: %s\n\n%s", target, idea)
	}
	return "Scout the codebase for context relevant to: " + target
}

// doPlan creates a new epic, runs one scout against target (on an executor
// sized by crew.concurrency.scouts), and turns the scout's output into
// tasks (one task per non-empty report line), the simplest interpretation
// of "the analyst produces task blocks" that still exercises the executor
// and the epic/task CRUD underneath it.
func (m *Mesh) doPlan(ctx context.Context, params map[string]any) Result {
	mode := "plan"
	target := paramString(params, "target")
	if target == "" {
		return errResult(mode, errs.New(errs.MissingTitle, "target is required"))
	}

	epic, err := m.crew.CreateEpic(ctx, target)
	if err != nil {
		return errResult(mode, err)
	}
	_ = m.feedStore.Record(m.Self(), feed.TypePlanStart, epic.ID, target)

	scouts := m.cfg.Crew.Concurrency.Scouts
	if scouts <= 0 {
		scouts = 1
	}
	executor := crew.NewExecutor(m.roots, scouts, crew.DefaultCmdFactory(), nil)

	idea := paramString(params, "idea")
	result, err := executor.Run(ctx, crew.WorkRequest{TaskID: epic.ID + "-scout", Agent: "scout", Prompt: scoutPrompt(target, idea)})
	if err != nil {
		_ = m.feedStore.Record(m.Self(), feed.TypePlanFailed, epic.ID, err.Error())
		return errResult(mode, errs.New(errs.NoScouts, err.Error()))
	}

	created := 0
	for _, line := range strings.Split(result.Output, "\n") {
		title := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		if title == "" {
			continue
		}
		if _, err := m.crew.CreateTask(ctx, epic.ID, title, "", nil); err != nil {
			continue
		}
		created++
	}

	_ = m.feedStore.Record(m.Self(), feed.TypePlanDone, epic.ID, fmt.Sprintf("%d task(s)", created))

	r := newResult(mode)
	r.Text = fmt.Sprintf("Created epic %s with %d task(s).", epic.ID, created)
	r.Details["epic"] = epic
	r.Details["tasksCreated"] = created
	return r
}

// doWork reports an epic's ready tasks; with autonomous=true it instead
// drives the ready-set to completion wave by wave via crew.Orchestrator,
// reviewing each attempt with reviewFromOutput.
func (m *Mesh) doWork(ctx context.Context, params map[string]any) Result {
	mode := "work"
	epicID := paramString(params, "target")
	if epicID == "" {
		return errResult(mode, errs.New(errs.MissingID, "target is required"))
	}

	concurrency := paramInt(params, "concurrency")
	if concurrency <= 0 {
		concurrency = m.cfg.Crew.Concurrency.Workers
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	executor := crew.NewExecutor(m.roots, concurrency, crew.DefaultCmdFactory(), nil)
	review := func(ctx context.Context, task crew.Task, result crew.ExecResult) (crew.Verdict, string, error) {
		verdict, notes := reviewFromOutput(result.Output)
		return verdict, notes, nil
	}
	prompt := func(epic crew.Epic, task crew.Task) string {
		return fmt.Sprintf("Work epic %q, task %q: %s", epic.Title, task.ID, task.Title)
	}

	orch := crew.NewOrchestrator(m.crew, executor, review, prompt, crew.OrchestrateConfig{
		MaxAttemptsPerTask: m.cfg.Crew.Work.MaxAttemptsPerTask,
		MaxWaves:           m.cfg.Crew.Work.MaxWaves,
	})

	if !paramBool(params, "autonomous") {
		ready, err := m.crew.ReadyTasks(epicID)
		if err != nil {
			return errResult(mode, err)
		}
		r := newResult(mode)
		r.Text = fmt.Sprintf("%d task(s) ready; pass autonomous=true to run them.", len(ready))
		r.Details["ready"] = ready
		return r
	}

	summary, err := orch.Run(ctx, epicID)
	if err != nil {
		return errResult(mode, err)
	}
	for _, id := range summary.Completed {
		_ = m.feedStore.Record(m.Self(), feed.TypeTaskDone, id, "")
	}
	for _, id := range summary.Blocked {
		_ = m.feedStore.Record(m.Self(), feed.TypeTaskBlock, id, "")
	}

	r := newResult(mode)
	r.Text = fmt.Sprintf("Ran %d wave(s): %d completed, %d blocked (%s).", summary.Waves, len(summary.Completed), len(summary.Blocked), summary.Stopped)
	r.Details["summary"] = summary
	return r
}

// doReview runs a single out-of-band review pass against a task's most
// recent work, without driving the orchestration loop.
func (m *Mesh) doReview(ctx context.Context, params map[string]any) Result {
	mode := "review"
	taskID := paramString(params, "target")
	if taskID == "" {
		return errResult(mode, errs.New(errs.MissingID, "target is required"))
	}
	task, ok, err := m.crew.GetTask(taskID)
	if err != nil {
		return errResult(mode, err)
	}
	if !ok {
		return errResult(mode, errs.New(errs.NotFound, fmt.Sprintf("task %q not found", taskID)))
	}

	kind := paramString(params, "type")
	if kind == "" {
		kind = "impl"
	}

	executor := crew.NewExecutor(m.roots, 1, crew.DefaultCmdFactory(), nil)
	result, err := executor.Run(ctx, crew.WorkRequest{
		TaskID: taskID + "-review",
		Agent:  "reviewer",
		Prompt: fmt.Sprintf("Review the %s for task %q (%s) and answer with exactly one of SHIP, NEEDS_WORK, MAJOR_RETHINK.", kind, taskID, task.Title),
	})
	if err != nil {
		return errResult(mode, errs.New(errs.AnalystFailed, err.Error()))
	}

	verdict, notes := reviewFromOutput(result.Output)
	r := newResult(mode)
	r.Text = fmt.Sprintf("Review verdict for %s: %s.", taskID, verdict)
	r.Details["verdict"] = string(verdict)
	r.Details["notes"] = notes
	return r
}
