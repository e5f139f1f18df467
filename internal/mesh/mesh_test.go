package mesh_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pi-agent/pi-messenger/internal/crew"
	"github.com/pi-agent/pi-messenger/internal/mesh"
	"github.com/pi-agent/pi-messenger/internal/presence"
)

func newTestMesh(t *testing.T) *mesh.Mesh {
	home := t.TempDir()
	base := t.TempDir()
	project := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PI_MESSENGER_DIR", base)
	if err := os.MkdirAll(filepath.Join(home, ".pi", "agent"), 0o750); err != nil {
		t.Fatal(err)
	}

	m, err := mesh.New(project)
	if err != nil {
		t.Fatalf("mesh.New() failed: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func mustJoin(t *testing.T, m *mesh.Mesh, name string) string {
	t.Helper()
	t.Setenv("PI_AGENT_NAME", name)
	r := m.Dispatch(context.Background(), "join", nil)
	if r.Details["error"] != nil {
		t.Fatalf("join failed: %v", r.Text)
	}
	return r.Details["name"].(string)
}

func TestJoinThenStatusReportsSelf(t *testing.T) {
	m := newTestMesh(t)
	name := mustJoin(t, m, "alice")
	if m.Self() != name {
		t.Fatalf("Self() = %q, want %q", m.Self(), name)
	}

	r := m.Dispatch(context.Background(), "status", nil)
	if r.Details["error"] != nil {
		t.Fatalf("status failed: %v", r.Text)
	}
	if r.Details["name"] != name {
		t.Errorf("status name = %v, want %q", r.Details["name"], name)
	}
}

func TestUnknownActionReturnsUnknownAction(t *testing.T) {
	m := newTestMesh(t)
	r := m.Dispatch(context.Background(), "not_a_real_action", nil)
	if r.Details["error"] != "unknown_action" {
		t.Errorf("expected unknown_action, got %v", r.Details["error"])
	}
}

func TestActionBeforeJoinReturnsNotRegistered(t *testing.T) {
	m := newTestMesh(t)
	r := m.Dispatch(context.Background(), "set_status", map[string]any{"message": "hi"})
	if r.Details["error"] != "not_registered" {
		t.Errorf("expected not_registered, got %v", r.Details["error"])
	}
}

func TestReserveThenReleaseRoundTrips(t *testing.T) {
	m := newTestMesh(t)
	mustJoin(t, m, "bob")

	r := m.Dispatch(context.Background(), "reserve", map[string]any{"paths": []any{"src/auth/"}, "reason": "working on login"})
	if r.Details["error"] != nil {
		t.Fatalf("reserve failed: %v", r.Text)
	}

	r = m.Dispatch(context.Background(), "release", map[string]any{"paths": []any{"src/auth/"}})
	if r.Details["error"] != nil {
		t.Fatalf("release failed: %v", r.Text)
	}
	if reservations, ok := r.Details["reservations"].([]presence.Reservation); ok && len(reservations) != 0 {
		t.Errorf("expected no reservations remaining, got %v", reservations)
	}
}

func TestClaimThenUnclaimRoundTrips(t *testing.T) {
	m := newTestMesh(t)
	mustJoin(t, m, "carol")

	r := m.Dispatch(context.Background(), "claim", map[string]any{"spec": "spec.md", "taskId": "T1"})
	if r.Details["error"] != nil {
		t.Fatalf("claim failed: %v", r.Text)
	}

	r = m.Dispatch(context.Background(), "claim", map[string]any{"spec": "spec.md", "taskId": "T2"})
	if r.Details["error"] != "already_have_claim" {
		t.Errorf("expected already_have_claim, got %v", r.Details["error"])
	}
	existing, ok := r.Details["existing"].(map[string]any)
	if !ok || existing["taskId"] != "T1" {
		t.Errorf("expected existing.taskId=T1, got %v", r.Details["existing"])
	}

	r = m.Dispatch(context.Background(), "unclaim", map[string]any{"spec": "spec.md", "taskId": "T1"})
	if r.Details["error"] != nil {
		t.Fatalf("unclaim failed: %v", r.Text)
	}
}

func TestClaimConflictReportsWinningAgent(t *testing.T) {
	home := t.TempDir()
	base := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PI_MESSENGER_DIR", base)
	if err := os.MkdirAll(filepath.Join(home, ".pi", "agent"), 0o750); err != nil {
		t.Fatal(err)
	}

	// Two independent Mesh instances sharing the same PI_MESSENGER_DIR base
	// (where claims.json lives), modeling two separate agent processes.
	m1, err := mesh.New(t.TempDir())
	if err != nil {
		t.Fatalf("mesh.New() failed: %v", err)
	}
	t.Cleanup(func() { _ = m1.Close() })
	m2, err := mesh.New(t.TempDir())
	if err != nil {
		t.Fatalf("mesh.New() failed: %v", err)
	}
	t.Cleanup(func() { _ = m2.Close() })

	mustJoin(t, m1, "dana")
	mustJoin(t, m2, "erin")

	r := m1.Dispatch(context.Background(), "claim", map[string]any{"spec": "spec.md", "taskId": "T1"})
	if r.Details["error"] != nil {
		t.Fatalf("claim failed: %v", r.Text)
	}

	r = m2.Dispatch(context.Background(), "claim", map[string]any{"spec": "spec.md", "taskId": "T1"})
	if r.Details["error"] != "already_claimed" {
		t.Fatalf("expected already_claimed, got %v (%v)", r.Details["error"], r.Text)
	}
	conflict, ok := r.Details["conflict"].(map[string]any)
	if !ok || conflict["agent"] != "dana" {
		t.Errorf("expected conflict.agent=dana, got %v", r.Details["conflict"])
	}
}

func TestSendRequiresRegisteredRecipient(t *testing.T) {
	m := newTestMesh(t)
	mustJoin(t, m, "dave")

	r := m.Dispatch(context.Background(), "send", map[string]any{"to": "ghost", "message": "hello"})
	if r.Details["error"] != "recipient_not_found" {
		t.Errorf("expected recipient_not_found, got %v", r.Details["error"])
	}
}

func TestEpicAndTaskLifecycle(t *testing.T) {
	m := newTestMesh(t)
	mustJoin(t, m, "erin")

	r := m.Dispatch(context.Background(), "epic.create", map[string]any{"title": "Add OAuth"})
	if r.Details["error"] != nil {
		t.Fatalf("epic.create failed: %v", r.Text)
	}
	epicID := r.Details["epic"].(crew.Epic).ID

	r = m.Dispatch(context.Background(), "task.create", map[string]any{"epic": epicID, "title": "Wire up provider"})
	if r.Details["error"] != nil {
		t.Fatalf("task.create failed: %v", r.Text)
	}
	taskID := r.Details["task"].(crew.Task).ID

	r = m.Dispatch(context.Background(), "task.start", map[string]any{"id": taskID})
	if r.Details["error"] != nil {
		t.Fatalf("task.start failed: %v", r.Text)
	}

	r = m.Dispatch(context.Background(), "task.done", map[string]any{"id": taskID, "summary": "done"})
	if r.Details["error"] != nil {
		t.Fatalf("task.done failed: %v", r.Text)
	}

	r = m.Dispatch(context.Background(), "epic.close", map[string]any{"id": epicID})
	if r.Details["error"] != nil {
		t.Fatalf("epic.close failed: %v", r.Text)
	}
}

func TestCrewValidateReportsNoIssuesForCleanEpic(t *testing.T) {
	m := newTestMesh(t)
	mustJoin(t, m, "frank")

	r := m.Dispatch(context.Background(), "epic.create", map[string]any{"title": "Clean epic"})
	epicID := r.Details["epic"].(crew.Epic).ID

	r = m.Dispatch(context.Background(), "crew.validate", map[string]any{"id": epicID})
	if r.Details["error"] != nil {
		t.Fatalf("crew.validate failed: %v", r.Text)
	}
}
