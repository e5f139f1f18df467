package reservation

import (
	"testing"

	"github.com/pi-agent/pi-messenger/internal/presence"
)

func TestMatchesExactEquality(t *testing.T) {
	if !Matches("src/auth/login.ts", "src/auth/login.ts") {
		t.Fatal("expected exact match")
	}
	if Matches("src/auth/login.ts", "src/auth/logout.ts") {
		t.Fatal("expected no match")
	}
}

func TestMatchesDirectoryPrefix(t *testing.T) {
	if !Matches("src/auth/", "src/auth/login.ts") {
		t.Fatal("expected prefix match")
	}
	if !Matches("src/auth/", "src/auth/") {
		t.Fatal("expected pattern to match itself")
	}
	if Matches("src/auth/", "src/authorization/login.ts") {
		t.Fatal("expected no match across sibling directory sharing a prefix")
	}
}

func TestConflictsWithOtherAgentsExcludesSelf(t *testing.T) {
	agents := []presence.Record{
		{Name: "alice", Reservations: []presence.Reservation{{Pattern: "src/auth/"}}},
	}
	if got := ConflictsWithOtherAgents(agents, "alice", "src/auth/login.ts"); len(got) != 0 {
		t.Fatalf("expected self-reservations to be excluded, got %+v", got)
	}
}

func TestConflictsWithOtherAgentsFindsMatch(t *testing.T) {
	agents := []presence.Record{
		{Name: "alice", Reservations: []presence.Reservation{{Pattern: "src/auth/", Reason: "refactor"}}},
		{Name: "bob", Reservations: []presence.Reservation{{Pattern: "src/other/"}}},
	}
	got := ConflictsWithOtherAgents(agents, "carol", "src/auth/login.ts")
	if len(got) != 1 || got[0].Agent != "alice" || got[0].Pattern != "src/auth/" {
		t.Fatalf("got %+v", got)
	}
}

func TestMessageNamesReserverAndReason(t *testing.T) {
	conflicts := []Conflict{{Agent: "alice", Pattern: "src/auth/", Reason: "refactor"}}
	msg := Message("src/auth/login.ts", conflicts)
	if msg == "" {
		t.Fatal("expected a non-empty message")
	}
}
