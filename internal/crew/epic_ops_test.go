package crew

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pi-agent/pi-messenger/internal/errs"
	"github.com/pi-agent/pi-messenger/internal/layout"
)

func testCrewStore(t *testing.T) *Store {
	t.Helper()
	base := t.TempDir()
	roots := layout.Roots{Base: base, Project: filepath.Join(base, "project")}
	return NewStore(roots)
}

func TestCreateEpicAllocatesIDAndStubSpec(t *testing.T) {
	s := testCrewStore(t)
	epic, err := s.CreateEpic(context.Background(), "Ship the thing")
	if err != nil {
		t.Fatalf("CreateEpic: %v", err)
	}
	if epic.Status != EpicPlanning {
		t.Fatalf("got status %q, want planning", epic.Status)
	}
	if epic.Title != "Ship the thing" {
		t.Fatalf("got title %q", epic.Title)
	}

	got, ok, err := s.GetEpic(epic.ID)
	if err != nil || !ok {
		t.Fatalf("GetEpic: ok=%v err=%v", ok, err)
	}
	if got.ID != epic.ID {
		t.Fatalf("got %+v", got)
	}
}

func TestCreateEpicRejectsEmptyTitle(t *testing.T) {
	s := testCrewStore(t)
	_, err := s.CreateEpic(context.Background(), "")
	if kind, ok := errs.As(err); !ok || kind != errs.MissingTitle {
		t.Fatalf("got %v", err)
	}
}

func TestCreateEpicAllocatesIncreasingN(t *testing.T) {
	s := testCrewStore(t)
	first, err := s.CreateEpic(context.Background(), "first")
	if err != nil {
		t.Fatalf("CreateEpic first: %v", err)
	}
	second, err := s.CreateEpic(context.Background(), "second")
	if err != nil {
		t.Fatalf("CreateEpic second: %v", err)
	}
	firstN, ok := parseEpicN(first.ID)
	if !ok {
		t.Fatalf("could not parse %q", first.ID)
	}
	secondN, ok := parseEpicN(second.ID)
	if !ok {
		t.Fatalf("could not parse %q", second.ID)
	}
	if secondN != firstN+1 {
		t.Fatalf("got ids %q, %q — expected consecutive N", first.ID, second.ID)
	}
}

func TestUpdateEpicPatchesFields(t *testing.T) {
	s := testCrewStore(t)
	epic, err := s.CreateEpic(context.Background(), "original")
	if err != nil {
		t.Fatalf("CreateEpic: %v", err)
	}
	newTitle := "renamed"
	blocked := EpicBlocked
	updated, err := s.UpdateEpic(epic.ID, EpicPatch{Title: &newTitle, Status: &blocked})
	if err != nil {
		t.Fatalf("UpdateEpic: %v", err)
	}
	if updated.Title != "renamed" || updated.Status != EpicBlocked {
		t.Fatalf("got %+v", updated)
	}
}

func TestUpdateEpicRejectsUnknownID(t *testing.T) {
	s := testCrewStore(t)
	_, err := s.UpdateEpic("c-999-zzz", EpicPatch{})
	if kind, ok := errs.As(err); !ok || kind != errs.NotFound {
		t.Fatalf("got %v", err)
	}
}

func TestCloseEpicRequiresAllTasksDone(t *testing.T) {
	s := testCrewStore(t)
	epic, err := s.CreateEpic(context.Background(), "epic")
	if err != nil {
		t.Fatalf("CreateEpic: %v", err)
	}
	task, err := s.CreateTask(context.Background(), epic.ID, "task one", "", nil)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	_, err = s.CloseEpic(epic.ID)
	if kind, ok := errs.As(err); !ok || kind != errs.IncompleteTasks {
		t.Fatalf("got %v", err)
	}

	if _, err := s.StartTask(task.ID, "alice"); err != nil {
		t.Fatalf("StartTask: %v", err)
	}
	if _, err := s.CompleteTask(context.Background(), task.ID, "done", nil); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}

	closed, err := s.CloseEpic(epic.ID)
	if err != nil {
		t.Fatalf("CloseEpic: %v", err)
	}
	if closed.Status != EpicCompleted || closed.ClosedAt == nil {
		t.Fatalf("got %+v", closed)
	}
}

func TestSetEpicSpecOverwritesContent(t *testing.T) {
	s := testCrewStore(t)
	epic, err := s.CreateEpic(context.Background(), "epic")
	if err != nil {
		t.Fatalf("CreateEpic: %v", err)
	}
	if err := s.SetEpicSpec(epic.ID, "# Custom\n\nfull spec text\n"); err != nil {
		t.Fatalf("SetEpicSpec: %v", err)
	}
	if got := s.readEpicSpec(epic.ID); got != "# Custom\n\nfull spec text\n" {
		t.Fatalf("got %q", got)
	}
}

func TestSetEpicSpecRejectsUnknownID(t *testing.T) {
	s := testCrewStore(t)
	err := s.SetEpicSpec("c-999-zzz", "content")
	if kind, ok := errs.As(err); !ok || kind != errs.NotFound {
		t.Fatalf("got %v", err)
	}
}

func TestListEpicsReturnsAllCreated(t *testing.T) {
	s := testCrewStore(t)
	if _, err := s.CreateEpic(context.Background(), "a"); err != nil {
		t.Fatalf("CreateEpic a: %v", err)
	}
	if _, err := s.CreateEpic(context.Background(), "b"); err != nil {
		t.Fatalf("CreateEpic b: %v", err)
	}
	epics, err := s.ListEpics()
	if err != nil {
		t.Fatalf("ListEpics: %v", err)
	}
	if len(epics) != 2 {
		t.Fatalf("got %d epics", len(epics))
	}
}
