package presence

import (
	"context"
	"testing"

	"github.com/pi-agent/pi-messenger/internal/errs"
)

func TestJoinWithPreferredName(t *testing.T) {
	reg := testRegistry(t)
	rec, err := reg.Join(JoinRequest{PreferredName: "orbit-otter", SessionID: "s1", Cwd: "/tmp/proj"})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if rec.Name != "orbit-otter" {
		t.Fatalf("got name %q", rec.Name)
	}
	if rec.PID == 0 {
		t.Fatal("expected PID to be set")
	}
	got, ok := reg.Get("orbit-otter")
	if !ok || got.SessionID != "s1" {
		t.Fatalf("round trip failed: %+v, %v", got, ok)
	}
}

func TestJoinPreferredNameCollisionFails(t *testing.T) {
	reg := testRegistry(t)
	if _, err := reg.Join(JoinRequest{PreferredName: "taken", SessionID: "s1"}); err != nil {
		t.Fatalf("first join: %v", err)
	}
	_, err := reg.Join(JoinRequest{PreferredName: "taken", SessionID: "s2"})
	if kind, ok := errs.As(err); !ok || kind != errs.NameTaken {
		t.Fatalf("expected NameTaken, got %v", err)
	}
}

func TestJoinGeneratesNameWhenNoneRequested(t *testing.T) {
	reg := testRegistry(t)
	rec, err := reg.Join(JoinRequest{SessionID: "s1"})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if rec.Name == "" {
		t.Fatal("expected a generated name")
	}
}

func TestUnregisterRemovesRecord(t *testing.T) {
	reg := testRegistry(t)
	rec, err := reg.Join(JoinRequest{PreferredName: "leaving", SessionID: "s1"})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := reg.Unregister(rec.Name); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if _, ok := reg.Get(rec.Name); ok {
		t.Fatal("expected record to be gone")
	}
}

func TestRenameMovesRecordAndInbox(t *testing.T) {
	reg := testRegistry(t)
	rec, err := reg.Join(JoinRequest{PreferredName: "old-name", SessionID: "s1"})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	renamed, err := reg.Rename(context.Background(), rec.Name, "new-name")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.Name != "new-name" {
		t.Fatalf("got %q", renamed.Name)
	}
	if _, ok := reg.Get("old-name"); ok {
		t.Fatal("old record should be gone")
	}
	if _, ok := reg.Get("new-name"); !ok {
		t.Fatal("new record should exist")
	}
}

func TestRenameToSameNameFails(t *testing.T) {
	reg := testRegistry(t)
	rec, err := reg.Join(JoinRequest{PreferredName: "solo", SessionID: "s1"})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	_, err = reg.Rename(context.Background(), rec.Name, rec.Name)
	if kind, ok := errs.As(err); !ok || kind != errs.SameName {
		t.Fatalf("expected SameName, got %v", err)
	}
}

func TestRenameToLiveNameFails(t *testing.T) {
	reg := testRegistry(t)
	if _, err := reg.Join(JoinRequest{PreferredName: "a", SessionID: "s1"}); err != nil {
		t.Fatalf("join a: %v", err)
	}
	if _, err := reg.Join(JoinRequest{PreferredName: "b", SessionID: "s2"}); err != nil {
		t.Fatalf("join b: %v", err)
	}
	_, err := reg.Rename(context.Background(), "a", "b")
	if kind, ok := errs.As(err); !ok || kind != errs.NameTaken {
		t.Fatalf("expected NameTaken, got %v", err)
	}
}

func TestRenamePrunesStaleTarget(t *testing.T) {
	reg := testRegistry(t)
	if _, err := reg.Join(JoinRequest{PreferredName: "a", SessionID: "s1"}); err != nil {
		t.Fatalf("join a: %v", err)
	}
	stale, ok := reg.Get("a")
	if !ok {
		t.Fatal("expected record a")
	}
	stale.PID = 999999
	stale.Name = "stale-target"
	if err := reg.Save(stale); err != nil {
		t.Fatalf("save stale: %v", err)
	}

	origAlive := IsProcessAlive
	IsProcessAlive = func(pid int) bool { return pid != 999999 }
	defer func() { IsProcessAlive = origAlive }()

	renamed, err := reg.Rename(context.Background(), "a", "stale-target")
	if err != nil {
		t.Fatalf("rename over stale target: %v", err)
	}
	if renamed.Name != "stale-target" {
		t.Fatalf("got %q", renamed.Name)
	}
}
