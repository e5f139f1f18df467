package mesh

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pi-agent/pi-messenger/internal/crew"
	"github.com/pi-agent/pi-messenger/internal/errs"
)

// dispatchCrew handles the epic.*/task.*/plan/work/review/checkpoint.*/
// crew.* action family, returning ok=false for anything outside that
// family so Dispatch's default branch can report unknown_action.
func (m *Mesh) dispatchCrew(ctx context.Context, action string, params map[string]any) (Result, bool) {
	switch {
	case strings.HasPrefix(action, "epic."):
		return m.dispatchEpic(ctx, strings.TrimPrefix(action, "epic."), params), true
	case strings.HasPrefix(action, "task."):
		return m.dispatchTask(ctx, strings.TrimPrefix(action, "task."), params), true
	case strings.HasPrefix(action, "checkpoint."):
		return m.dispatchCheckpoint(ctx, strings.TrimPrefix(action, "checkpoint."), params), true
	case strings.HasPrefix(action, "crew."):
		return m.dispatchCrewHousekeeping(ctx, strings.TrimPrefix(action, "crew."), params), true
	case action == "plan":
		return m.doPlan(ctx, params), true
	case action == "work":
		return m.doWork(ctx, params), true
	case action == "review":
		return m.doReview(ctx, params), true
	default:
		return Result{}, false
	}
}

func (m *Mesh) dispatchEpic(ctx context.Context, op string, params map[string]any) Result {
	mode := "epic." + op
	switch op {
	case "create":
		title := paramString(params, "title")
		if title == "" {
			return errResult(mode, errs.New(errs.MissingTitle, "title is required"))
		}
		epic, err := m.crew.CreateEpic(ctx, title)
		if err != nil {
			return errResult(mode, err)
		}
		r := newResult(mode)
		r.Text = fmt.Sprintf("Created epic %s.", epic.ID)
		r.Details["epic"] = epic
		return r

	case "show":
		id := paramString(params, "id")
		if id == "" {
			return errResult(mode, errs.New(errs.MissingID, "id is required"))
		}
		epic, ok, err := m.crew.GetEpic(id)
		if err != nil {
			return errResult(mode, err)
		}
		if !ok {
			return errResult(mode, errs.New(errs.NotFound, fmt.Sprintf("epic %q not found", id)))
		}
		r := newResult(mode)
		r.Text = fmt.Sprintf("Epic %s: %s (%s).", epic.ID, epic.Title, epic.Status)
		r.Details["epic"] = epic
		return r

	case "list":
		epics, err := m.crew.ListEpics()
		if err != nil {
			return errResult(mode, err)
		}
		r := newResult(mode)
		r.Text = fmt.Sprintf("%d epic(s).", len(epics))
		r.Details["epics"] = epics
		return r

	case "close":
		id := paramString(params, "id")
		if id == "" {
			return errResult(mode, errs.New(errs.MissingID, "id is required"))
		}
		epic, err := m.crew.CloseEpic(id)
		if err != nil {
			return errResult(mode, err)
		}
		r := newResult(mode)
		r.Text = fmt.Sprintf("Closed epic %s.", epic.ID)
		r.Details["epic"] = epic
		return r

	case "set_spec":
		id := paramString(params, "id")
		content := paramString(params, "content")
		if id == "" {
			return errResult(mode, errs.New(errs.MissingID, "id is required"))
		}
		if content == "" {
			return errResult(mode, errs.New(errs.MissingContent, "content is required"))
		}
		if err := m.crew.SetEpicSpec(id, content); err != nil {
			return errResult(mode, err)
		}
		r := newResult(mode)
		r.Text = fmt.Sprintf("Updated spec for epic %s.", id)
		return r

	default:
		return errResult(mode, errs.New(errs.UnknownOperation, fmt.Sprintf("unknown epic operation %q", op)))
	}
}

func (m *Mesh) dispatchTask(ctx context.Context, op string, params map[string]any) Result {
	mode := "task." + op
	switch op {
	case "create":
		epicID := paramString(params, "epic")
		title := paramString(params, "title")
		if epicID == "" {
			return errResult(mode, errs.New(errs.MissingID, "epic is required"))
		}
		if title == "" {
			return errResult(mode, errs.New(errs.MissingTitle, "title is required"))
		}
		task, err := m.crew.CreateTask(ctx, epicID, title, paramString(params, "description"), paramStrings(params, "dependsOn"))
		if err != nil {
			return errResult(mode, err)
		}
		r := newResult(mode)
		r.Text = fmt.Sprintf("Created task %s.", task.ID)
		r.Details["task"] = task
		return r

	case "show":
		id := paramString(params, "id")
		if id == "" {
			return errResult(mode, errs.New(errs.MissingID, "id is required"))
		}
		task, ok, err := m.crew.GetTask(id)
		if err != nil {
			return errResult(mode, err)
		}
		if !ok {
			return errResult(mode, errs.New(errs.NotFound, fmt.Sprintf("task %q not found", id)))
		}
		r := newResult(mode)
		r.Text = fmt.Sprintf("Task %s: %s (%s).", task.ID, task.Title, task.Status)
		r.Details["task"] = task
		return r

	case "list":
		epicID := paramString(params, "epic")
		tasks, err := m.crew.ListTasks(epicID)
		if err != nil {
			return errResult(mode, err)
		}
		r := newResult(mode)
		r.Text = fmt.Sprintf("%d task(s).", len(tasks))
		r.Details["tasks"] = tasks
		return r

	case "start":
		id := paramString(params, "id")
		if id == "" {
			return errResult(mode, errs.New(errs.MissingID, "id is required"))
		}
		self, err := m.requireSelf()
		if err != nil {
			return errResult(mode, err)
		}
		task, err := m.crew.StartTask(id, self)
		if err != nil {
			return errResult(mode, err)
		}
		r := newResult(mode)
		r.Text = fmt.Sprintf("Started task %s.", task.ID)
		r.Details["task"] = task
		return r

	case "done":
		id := paramString(params, "id")
		if id == "" {
			return errResult(mode, errs.New(errs.MissingID, "id is required"))
		}
		task, err := m.crew.CompleteTask(ctx, id, paramString(params, "summary"), nil)
		if err != nil {
			return errResult(mode, err)
		}
		r := newResult(mode)
		r.Text = fmt.Sprintf("Completed task %s.", task.ID)
		r.Details["task"] = task
		return r

	case "block":
		id := paramString(params, "id")
		if id == "" {
			return errResult(mode, errs.New(errs.MissingID, "id is required"))
		}
		task, err := m.crew.BlockTask(id, paramString(params, "reason"))
		if err != nil {
			return errResult(mode, err)
		}
		r := newResult(mode)
		r.Text = fmt.Sprintf("Blocked task %s.", task.ID)
		r.Details["task"] = task
		return r

	case "unblock":
		id := paramString(params, "id")
		if id == "" {
			return errResult(mode, errs.New(errs.MissingID, "id is required"))
		}
		task, err := m.crew.UnblockTask(id)
		if err != nil {
			return errResult(mode, err)
		}
		r := newResult(mode)
		r.Text = fmt.Sprintf("Unblocked task %s.", task.ID)
		r.Details["task"] = task
		return r

	case "ready":
		epicID := paramString(params, "epic")
		if epicID == "" {
			return errResult(mode, errs.New(errs.MissingID, "epic is required"))
		}
		tasks, err := m.crew.ReadyTasks(epicID)
		if err != nil {
			return errResult(mode, err)
		}
		r := newResult(mode)
		r.Text = fmt.Sprintf("%d ready task(s).", len(tasks))
		r.Details["tasks"] = tasks
		return r

	case "reset":
		id := paramString(params, "id")
		if id == "" {
			return errResult(mode, errs.New(errs.MissingID, "id is required"))
		}
		task, err := m.crew.ResetTask(ctx, id, paramBool(params, "cascade"))
		if err != nil {
			return errResult(mode, err)
		}
		r := newResult(mode)
		r.Text = fmt.Sprintf("Reset task %s.", task.ID)
		r.Details["task"] = task
		return r

	default:
		return errResult(mode, errs.New(errs.UnknownOperation, fmt.Sprintf("unknown task operation %q", op)))
	}
}

func (m *Mesh) dispatchCheckpoint(ctx context.Context, op string, params map[string]any) Result {
	mode := "checkpoint." + op
	switch op {
	case "save":
		id := paramString(params, "id")
		if id == "" {
			id = paramString(params, "epic")
		}
		if id == "" {
			return errResult(mode, errs.New(errs.MissingID, "id is required"))
		}
		cp, err := m.crew.SaveCheckpoint(id)
		if err != nil {
			return errResult(mode, err)
		}
		r := newResult(mode)
		r.Text = fmt.Sprintf("Saved checkpoint for epic %s.", id)
		r.Details["checkpoint"] = cp
		return r

	case "restore":
		id := paramString(params, "id")
		if id == "" {
			return errResult(mode, errs.New(errs.MissingID, "id is required"))
		}
		cp, err := m.crew.RestoreCheckpoint(ctx, id)
		if err != nil {
			return errResult(mode, err)
		}
		r := newResult(mode)
		r.Text = fmt.Sprintf("Restored epic %s from checkpoint; current state replaced.", id)
		r.Details["checkpoint"] = cp
		return r

	case "delete":
		id := paramString(params, "id")
		if id == "" {
			return errResult(mode, errs.New(errs.MissingID, "id is required"))
		}
		if err := m.crew.DeleteCheckpoint(id); err != nil {
			return errResult(mode, err)
		}
		r := newResult(mode)
		r.Text = fmt.Sprintf("Deleted checkpoint for epic %s.", id)
		return r

	case "list":
		cps, err := m.crew.ListCheckpoints()
		if err != nil {
			return errResult(mode, err)
		}
		if epicID := paramString(params, "epic"); epicID != "" {
			kept := cps[:0]
			for _, cp := range cps {
				if cp.Epic.ID == epicID {
					kept = append(kept, cp)
				}
			}
			cps = kept
		}
		r := newResult(mode)
		r.Text = fmt.Sprintf("%d checkpoint(s).", len(cps))
		r.Details["checkpoints"] = cps
		return r

	default:
		return errResult(mode, errs.New(errs.UnknownOperation, fmt.Sprintf("unknown checkpoint operation %q", op)))
	}
}

// installedMarker is a zero-byte file whose presence records that this
// project has opted into crew housekeeping (crew.install/uninstall),
// since the dispatcher has no other per-project on/off state to persist.
func (m *Mesh) installedMarker() string {
	return filepath.Join(m.roots.CrewDir(), ".installed")
}

func (m *Mesh) dispatchCrewHousekeeping(ctx context.Context, op string, params map[string]any) Result {
	mode := "crew." + op
	switch op {
	case "status":
		epics, err := m.crew.ListEpics()
		if err != nil {
			return errResult(mode, err)
		}
		active := 0
		for _, e := range epics {
			if e.Status == crew.EpicActive || e.Status == crew.EpicPlanning {
				active++
			}
		}
		r := newResult(mode)
		r.Text = fmt.Sprintf("%d epic(s), %d active.", len(epics), active)
		r.Details["epics"] = epics
		return r

	case "validate":
		id := paramString(params, "id")
		if id == "" {
			return errResult(mode, errs.New(errs.MissingID, "id is required"))
		}
		issues, err := m.crew.ValidateEpic(id)
		if err != nil {
			return errResult(mode, err)
		}
		r := newResult(mode)
		r.Text = fmt.Sprintf("%d validation issue(s).", len(issues))
		r.Details["issues"] = issues
		return r

	case "agents":
		epics, err := m.crew.ListEpics()
		if err != nil {
			return errResult(mode, err)
		}
		seen := map[string]bool{}
		var agents []string
		for _, e := range epics {
			tasks, err := m.crew.ListTasks(e.ID)
			if err != nil {
				continue
			}
			for _, t := range tasks {
				if t.AssignedTo != "" && !seen[t.AssignedTo] {
					seen[t.AssignedTo] = true
					agents = append(agents, t.AssignedTo)
				}
			}
		}
		r := newResult(mode)
		r.Text = fmt.Sprintf("%d agent(s) have worked crew tasks.", len(agents))
		r.Details["agents"] = agents
		return r

	case "install":
		if err := os.MkdirAll(m.roots.CrewDir(), 0o750); err != nil {
			return errResult(mode, err)
		}
		if err := os.WriteFile(m.installedMarker(), nil, 0o600); err != nil {
			return errResult(mode, err)
		}
		r := newResult(mode)
		r.Text = "Crew installed for this project."
		return r

	case "uninstall":
		_ = os.Remove(m.installedMarker())
		r := newResult(mode)
		r.Text = "Crew uninstalled for this project."
		return r

	case "cleanup":
		days := m.cfg.Crew.Artifacts.CleanupDays
		if days <= 0 {
			days = 14
		}
		removed, err := crew.CleanupArtifacts(m.roots, time.Duration(days)*24*time.Hour)
		if err != nil {
			return errResult(mode, err)
		}
		r := newResult(mode)
		r.Text = fmt.Sprintf("Removed %d stale artifact dir(s).", removed)
		r.Details["removed"] = removed
		return r

	default:
		return errResult(mode, errs.New(errs.UnknownOperation, fmt.Sprintf("unknown crew operation %q", op)))
	}
}
