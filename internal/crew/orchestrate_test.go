package crew

import (
	"context"
	"os/exec"
	"sync"
	"testing"
)

func testOrchestratorExecutor(t *testing.T) *Executor {
	t.Helper()
	roots := testExecutorRoots(t)
	return NewExecutor(roots, 2, func(req WorkRequest) *exec.Cmd {
		return exec.Command("head", "-n", "1")
	}, nil)
}

func TestOrchestratorShipsASingleTask(t *testing.T) {
	s := testCrewStore(t)
	epic, err := s.CreateEpic(context.Background(), "epic")
	if err != nil {
		t.Fatalf("CreateEpic: %v", err)
	}
	if _, err := s.CreateTask(context.Background(), epic.ID, "task one", "", nil); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	review := func(ctx context.Context, task Task, result ExecResult) (Verdict, string, error) {
		return VerdictShip, "looks good", nil
	}
	orch := NewOrchestrator(s, testOrchestratorExecutor(t), review, nil, OrchestrateConfig{})

	summary, err := orch.Run(context.Background(), epic.ID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Stopped != "all_done" {
		t.Fatalf("got stopped=%q", summary.Stopped)
	}
	if len(summary.Completed) != 1 {
		t.Fatalf("got completed=%v", summary.Completed)
	}
}

func TestOrchestratorBlocksAfterMaxAttempts(t *testing.T) {
	s := testCrewStore(t)
	epic, err := s.CreateEpic(context.Background(), "epic")
	if err != nil {
		t.Fatalf("CreateEpic: %v", err)
	}
	if _, err := s.CreateTask(context.Background(), epic.ID, "stubborn task", "", nil); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	review := func(ctx context.Context, task Task, result ExecResult) (Verdict, string, error) {
		return VerdictNeedsWork, "not quite there", nil
	}
	orch := NewOrchestrator(s, testOrchestratorExecutor(t), review, nil, OrchestrateConfig{MaxAttemptsPerTask: 2, MaxWaves: 10})

	summary, err := orch.Run(context.Background(), epic.ID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Stopped != "all_blocked" {
		t.Fatalf("got stopped=%q", summary.Stopped)
	}
	if len(summary.Blocked) != 1 {
		t.Fatalf("got blocked=%v", summary.Blocked)
	}
}

func TestOrchestratorBlocksOnMajorRethink(t *testing.T) {
	s := testCrewStore(t)
	epic, err := s.CreateEpic(context.Background(), "epic")
	if err != nil {
		t.Fatalf("CreateEpic: %v", err)
	}
	if _, err := s.CreateTask(context.Background(), epic.ID, "task", "", nil); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	review := func(ctx context.Context, task Task, result ExecResult) (Verdict, string, error) {
		return VerdictMajorRethink, "wrong approach entirely", nil
	}
	orch := NewOrchestrator(s, testOrchestratorExecutor(t), review, nil, OrchestrateConfig{})

	summary, err := orch.Run(context.Background(), epic.ID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Blocked) != 1 {
		t.Fatalf("got blocked=%v", summary.Blocked)
	}
}

func TestOrchestratorRetriesOnNeedsWorkBeforeBlocking(t *testing.T) {
	s := testCrewStore(t)
	epic, err := s.CreateEpic(context.Background(), "epic")
	if err != nil {
		t.Fatalf("CreateEpic: %v", err)
	}
	task, err := s.CreateTask(context.Background(), epic.ID, "task", "", nil)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	var mu sync.Mutex
	attempts := 0
	review := func(ctx context.Context, t Task, result ExecResult) (Verdict, string, error) {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n >= 2 {
			return VerdictShip, "finally done", nil
		}
		return VerdictNeedsWork, "try again", nil
	}
	orch := NewOrchestrator(s, testOrchestratorExecutor(t), review, nil, OrchestrateConfig{MaxAttemptsPerTask: 5, MaxWaves: 10})

	summary, err := orch.Run(context.Background(), epic.ID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Completed) != 1 || summary.Completed[0] != task.ID {
		t.Fatalf("got completed=%v", summary.Completed)
	}
}

func TestOrchestratorRespectsDependencyOrder(t *testing.T) {
	s := testCrewStore(t)
	epic, err := s.CreateEpic(context.Background(), "epic")
	if err != nil {
		t.Fatalf("CreateEpic: %v", err)
	}
	base, err := s.CreateTask(context.Background(), epic.ID, "base", "", nil)
	if err != nil {
		t.Fatalf("CreateTask base: %v", err)
	}
	if _, err := s.CreateTask(context.Background(), epic.ID, "dependent", "", []string{base.ID}); err != nil {
		t.Fatalf("CreateTask dependent: %v", err)
	}

	review := func(ctx context.Context, task Task, result ExecResult) (Verdict, string, error) {
		return VerdictShip, "done", nil
	}
	orch := NewOrchestrator(s, testOrchestratorExecutor(t), review, nil, OrchestrateConfig{})

	summary, err := orch.Run(context.Background(), epic.ID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Stopped != "all_done" || len(summary.Completed) != 2 {
		t.Fatalf("got %+v", summary)
	}
}
