package crew

import (
	"context"
	"testing"

	"github.com/pi-agent/pi-messenger/internal/errs"
)

func TestCreateTaskIncrementsEpicTaskCount(t *testing.T) {
	s := testCrewStore(t)
	epic, err := s.CreateEpic(context.Background(), "epic")
	if err != nil {
		t.Fatalf("CreateEpic: %v", err)
	}
	task, err := s.CreateTask(context.Background(), epic.ID, "do a thing", "longer description", nil)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Status != TaskTodo || task.EpicID != epic.ID {
		t.Fatalf("got %+v", task)
	}

	got, ok, err := s.GetEpic(epic.ID)
	if err != nil || !ok {
		t.Fatalf("GetEpic: ok=%v err=%v", ok, err)
	}
	if got.TaskCount != 1 {
		t.Fatalf("got task_count=%d", got.TaskCount)
	}
}

func TestCreateTaskRejectsUnknownEpic(t *testing.T) {
	s := testCrewStore(t)
	_, err := s.CreateTask(context.Background(), "c-999-zzz", "title", "", nil)
	if kind, ok := errs.As(err); !ok || kind != errs.NotFound {
		t.Fatalf("got %v", err)
	}
}

func TestCreateTaskRejectsOrphanDependency(t *testing.T) {
	s := testCrewStore(t)
	epic, err := s.CreateEpic(context.Background(), "epic")
	if err != nil {
		t.Fatalf("CreateEpic: %v", err)
	}
	_, err = s.CreateTask(context.Background(), epic.ID, "title", "", []string{"ghost.1"})
	if kind, ok := errs.As(err); !ok || kind != errs.OrphanDependency {
		t.Fatalf("got %v", err)
	}
}

func TestCreateTaskAllocatesSequentialIDsPerEpic(t *testing.T) {
	s := testCrewStore(t)
	epic, err := s.CreateEpic(context.Background(), "epic")
	if err != nil {
		t.Fatalf("CreateEpic: %v", err)
	}
	first, err := s.CreateTask(context.Background(), epic.ID, "first", "", nil)
	if err != nil {
		t.Fatalf("CreateTask first: %v", err)
	}
	second, err := s.CreateTask(context.Background(), epic.ID, "second", "", nil)
	if err != nil {
		t.Fatalf("CreateTask second: %v", err)
	}
	if first.ID != epic.ID+".1" || second.ID != epic.ID+".2" {
		t.Fatalf("got %q, %q", first.ID, second.ID)
	}
}

func TestStartTaskTransitionsToInProgress(t *testing.T) {
	s := testCrewStore(t)
	epic, err := s.CreateEpic(context.Background(), "epic")
	if err != nil {
		t.Fatalf("CreateEpic: %v", err)
	}
	task, err := s.CreateTask(context.Background(), epic.ID, "title", "", nil)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	started, err := s.StartTask(task.ID, "alice")
	if err != nil {
		t.Fatalf("StartTask: %v", err)
	}
	if started.Status != TaskInProgress || started.AssignedTo != "alice" || started.StartedAt == nil {
		t.Fatalf("got %+v", started)
	}
	if started.AttemptCount != 1 {
		t.Fatalf("got attempt_count=%d", started.AttemptCount)
	}
}

func TestStartTaskRejectsNonTodo(t *testing.T) {
	s := testCrewStore(t)
	epic, err := s.CreateEpic(context.Background(), "epic")
	if err != nil {
		t.Fatalf("CreateEpic: %v", err)
	}
	task, err := s.CreateTask(context.Background(), epic.ID, "title", "", nil)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := s.StartTask(task.ID, "alice"); err != nil {
		t.Fatalf("StartTask: %v", err)
	}
	if _, err := s.StartTask(task.ID, "bob"); err == nil {
		t.Fatal("expected error restarting an in_progress task")
	}
}

func TestCompleteTaskUpdatesEpicCompletedCount(t *testing.T) {
	s := testCrewStore(t)
	epic, err := s.CreateEpic(context.Background(), "epic")
	if err != nil {
		t.Fatalf("CreateEpic: %v", err)
	}
	task, err := s.CreateTask(context.Background(), epic.ID, "title", "", nil)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := s.StartTask(task.ID, "alice"); err != nil {
		t.Fatalf("StartTask: %v", err)
	}
	done, err := s.CompleteTask(context.Background(), task.ID, "shipped it", &Evidence{Commits: []string{"abc123"}})
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if done.Status != TaskDone || done.CompletedAt == nil || done.AssignedTo != "" {
		t.Fatalf("got %+v", done)
	}

	got, ok, err := s.GetEpic(epic.ID)
	if err != nil || !ok {
		t.Fatalf("GetEpic: ok=%v err=%v", ok, err)
	}
	if got.CompletedCount != 1 || got.Status != EpicCompleted {
		t.Fatalf("got %+v", got)
	}
}

func TestCompleteTaskRejectsNotInProgress(t *testing.T) {
	s := testCrewStore(t)
	epic, err := s.CreateEpic(context.Background(), "epic")
	if err != nil {
		t.Fatalf("CreateEpic: %v", err)
	}
	task, err := s.CreateTask(context.Background(), epic.ID, "title", "", nil)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := s.CompleteTask(context.Background(), task.ID, "done", nil); err == nil {
		t.Fatal("expected error completing a todo task")
	}
}

func TestBlockThenUnblockTask(t *testing.T) {
	s := testCrewStore(t)
	epic, err := s.CreateEpic(context.Background(), "epic")
	if err != nil {
		t.Fatalf("CreateEpic: %v", err)
	}
	task, err := s.CreateTask(context.Background(), epic.ID, "title", "", nil)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	blocked, err := s.BlockTask(task.ID, "waiting on upstream API")
	if err != nil {
		t.Fatalf("BlockTask: %v", err)
	}
	if blocked.Status != TaskBlocked || blocked.BlockedReason == "" {
		t.Fatalf("got %+v", blocked)
	}

	unblocked, err := s.UnblockTask(task.ID)
	if err != nil {
		t.Fatalf("UnblockTask: %v", err)
	}
	if unblocked.Status != TaskTodo || unblocked.BlockedReason != "" {
		t.Fatalf("got %+v", unblocked)
	}
}

func TestUnblockTaskRejectsNonBlocked(t *testing.T) {
	s := testCrewStore(t)
	epic, err := s.CreateEpic(context.Background(), "epic")
	if err != nil {
		t.Fatalf("CreateEpic: %v", err)
	}
	task, err := s.CreateTask(context.Background(), epic.ID, "title", "", nil)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := s.UnblockTask(task.ID); err == nil {
		t.Fatal("expected error unblocking a todo task")
	}
}

func TestResetTaskClearsProgressFields(t *testing.T) {
	s := testCrewStore(t)
	epic, err := s.CreateEpic(context.Background(), "epic")
	if err != nil {
		t.Fatalf("CreateEpic: %v", err)
	}
	task, err := s.CreateTask(context.Background(), epic.ID, "title", "", nil)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := s.StartTask(task.ID, "alice"); err != nil {
		t.Fatalf("StartTask: %v", err)
	}
	if _, err := s.CompleteTask(context.Background(), task.ID, "done", nil); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}

	reset, err := s.ResetTask(context.Background(), task.ID, false)
	if err != nil {
		t.Fatalf("ResetTask: %v", err)
	}
	if reset.Status != TaskTodo || reset.StartedAt != nil || reset.CompletedAt != nil || reset.Summary != "" {
		t.Fatalf("got %+v", reset)
	}

	got, ok, err := s.GetEpic(epic.ID)
	if err != nil || !ok {
		t.Fatalf("GetEpic: ok=%v err=%v", ok, err)
	}
	if got.CompletedCount != 0 {
		t.Fatalf("got completed_count=%d after reset", got.CompletedCount)
	}
}

func TestResetTaskCascadesToDependents(t *testing.T) {
	s := testCrewStore(t)
	epic, err := s.CreateEpic(context.Background(), "epic")
	if err != nil {
		t.Fatalf("CreateEpic: %v", err)
	}
	base, err := s.CreateTask(context.Background(), epic.ID, "base", "", nil)
	if err != nil {
		t.Fatalf("CreateTask base: %v", err)
	}
	dependent, err := s.CreateTask(context.Background(), epic.ID, "dependent", "", []string{base.ID})
	if err != nil {
		t.Fatalf("CreateTask dependent: %v", err)
	}

	if _, err := s.StartTask(base.ID, "alice"); err != nil {
		t.Fatalf("StartTask base: %v", err)
	}
	if _, err := s.CompleteTask(context.Background(), base.ID, "done", nil); err != nil {
		t.Fatalf("CompleteTask base: %v", err)
	}
	if _, err := s.StartTask(dependent.ID, "bob"); err != nil {
		t.Fatalf("StartTask dependent: %v", err)
	}

	if _, err := s.ResetTask(context.Background(), base.ID, true); err != nil {
		t.Fatalf("ResetTask: %v", err)
	}

	reloadedDependent, ok, err := s.GetTask(dependent.ID)
	if err != nil || !ok {
		t.Fatalf("GetTask dependent: ok=%v err=%v", ok, err)
	}
	if reloadedDependent.Status != TaskTodo || reloadedDependent.StartedAt != nil {
		t.Fatalf("expected dependent task reset by cascade, got %+v", reloadedDependent)
	}
}

func TestReadyTasksRespectsDependencies(t *testing.T) {
	s := testCrewStore(t)
	epic, err := s.CreateEpic(context.Background(), "epic")
	if err != nil {
		t.Fatalf("CreateEpic: %v", err)
	}
	base, err := s.CreateTask(context.Background(), epic.ID, "base", "", nil)
	if err != nil {
		t.Fatalf("CreateTask base: %v", err)
	}
	dependent, err := s.CreateTask(context.Background(), epic.ID, "dependent", "", []string{base.ID})
	if err != nil {
		t.Fatalf("CreateTask dependent: %v", err)
	}

	ready, err := s.ReadyTasks(epic.ID)
	if err != nil {
		t.Fatalf("ReadyTasks: %v", err)
	}
	if len(ready) != 1 || ready[0].ID != base.ID {
		t.Fatalf("got %+v", ready)
	}

	if _, err := s.StartTask(base.ID, "alice"); err != nil {
		t.Fatalf("StartTask: %v", err)
	}
	if _, err := s.CompleteTask(context.Background(), base.ID, "done", nil); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}

	ready, err = s.ReadyTasks(epic.ID)
	if err != nil {
		t.Fatalf("ReadyTasks: %v", err)
	}
	if len(ready) != 1 || ready[0].ID != dependent.ID {
		t.Fatalf("got %+v", ready)
	}
}

func TestValidateEpicDetectsCycle(t *testing.T) {
	s := testCrewStore(t)
	epic, err := s.CreateEpic(context.Background(), "epic")
	if err != nil {
		t.Fatalf("CreateEpic: %v", err)
	}
	a, err := s.CreateTask(context.Background(), epic.ID, "a", "", nil)
	if err != nil {
		t.Fatalf("CreateTask a: %v", err)
	}
	b, err := s.CreateTask(context.Background(), epic.ID, "b", "", []string{a.ID})
	if err != nil {
		t.Fatalf("CreateTask b: %v", err)
	}

	// Introduce a cycle by editing a's dependencies directly through the store.
	taskA, ok, err := s.GetTask(a.ID)
	if err != nil || !ok {
		t.Fatalf("GetTask a: ok=%v err=%v", ok, err)
	}
	taskA.DependsOn = []string{b.ID}
	if err := s.writeTask(taskA); err != nil {
		t.Fatalf("writeTask: %v", err)
	}

	issues, err := s.ValidateEpic(epic.ID)
	if err != nil {
		t.Fatalf("ValidateEpic: %v", err)
	}
	foundCycle := false
	for _, issue := range issues {
		if !issue.Warning {
			foundCycle = true
		}
	}
	if !foundCycle {
		t.Fatalf("expected a cycle issue, got %+v", issues)
	}
}
