// Package layout resolves the two filesystem roots the coordination
// substrate lives under and the well-known subpaths within them, the way
// internal/paths resolves a daemon's state directory.
package layout

import (
	"os"
	"path/filepath"
)

// Roots is the pair of directories all coordination state lives under:
// B, the base directory shared by every agent on the workstation, and P,
// the project directory scoped to one working tree.
type Roots struct {
	Base    string // B: default ~/.pi/agent/messenger, overridable via PI_MESSENGER_DIR
	Project string // P/.pi/messenger under the current working directory
}

// Resolve computes Roots for the given working directory. cwd may be
// empty, in which case os.Getwd() is used.
func Resolve(cwd string) (Roots, error) {
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Roots{}, err
		}
		cwd = wd
	}

	base := os.Getenv("PI_MESSENGER_DIR")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Roots{}, err
		}
		base = filepath.Join(home, ".pi", "agent", "messenger")
	}

	return Roots{
		Base:    base,
		Project: filepath.Join(cwd, ".pi", "messenger"),
	}, nil
}

// RegistryDir returns B/registry, one presence file per agent.
func (r Roots) RegistryDir() string { return filepath.Join(r.Base, "registry") }

// InboxDir returns B/inbox/<name>, the per-recipient message directory.
func (r Roots) InboxDir(name string) string { return filepath.Join(r.Base, "inbox", name) }

// InboxRoot returns B/inbox.
func (r Roots) InboxRoot() string { return filepath.Join(r.Base, "inbox") }

// ClaimsFile returns B/claims.json.
func (r Roots) ClaimsFile() string { return filepath.Join(r.Base, "claims.json") }

// CompletionsFile returns B/completions.json.
func (r Roots) CompletionsFile() string { return filepath.Join(r.Base, "completions.json") }

// SwarmLockFile returns B/swarm.lock.
func (r Roots) SwarmLockFile() string { return filepath.Join(r.Base, "swarm.lock") }

// FeedFile returns P/.pi/messenger/feed.jsonl.
func (r Roots) FeedFile() string { return filepath.Join(r.Project, "feed.jsonl") }

// CrewDir returns P/.pi/messenger/crew.
func (r Roots) CrewDir() string { return filepath.Join(r.Project, "crew") }

// EpicsDir returns P/.pi/messenger/crew/epics.
func (r Roots) EpicsDir() string { return filepath.Join(r.CrewDir(), "epics") }

// SpecsDir returns P/.pi/messenger/crew/specs.
func (r Roots) SpecsDir() string { return filepath.Join(r.CrewDir(), "specs") }

// TasksDir returns P/.pi/messenger/crew/tasks.
func (r Roots) TasksDir() string { return filepath.Join(r.CrewDir(), "tasks") }

// BlocksDir returns P/.pi/messenger/crew/blocks.
func (r Roots) BlocksDir() string { return filepath.Join(r.CrewDir(), "blocks") }

// CheckpointsDir returns P/.pi/messenger/crew/checkpoints.
func (r Roots) CheckpointsDir() string { return filepath.Join(r.CrewDir(), "checkpoints") }

// ArtifactsDir returns P/.pi/messenger/crew/artifacts.
func (r Roots) ArtifactsDir() string { return filepath.Join(r.CrewDir(), "artifacts") }

// PresenceFile returns B/registry/<name>.json.
func (r Roots) PresenceFile(name string) string {
	return filepath.Join(r.RegistryDir(), name+".json")
}

// EpicFile returns P/.pi/messenger/crew/epics/<id>.json.
func (r Roots) EpicFile(id string) string { return filepath.Join(r.EpicsDir(), id+".json") }

// EpicSpecFile returns P/.pi/messenger/crew/specs/<id>.md.
func (r Roots) EpicSpecFile(id string) string { return filepath.Join(r.SpecsDir(), id+".md") }

// TaskFile returns P/.pi/messenger/crew/tasks/<id>.json.
func (r Roots) TaskFile(id string) string { return filepath.Join(r.TasksDir(), id+".json") }

// TaskSpecFile returns P/.pi/messenger/crew/tasks/<id>.md.
func (r Roots) TaskSpecFile(id string) string { return filepath.Join(r.TasksDir(), id+".md") }

// BlockFile returns P/.pi/messenger/crew/blocks/<id>.md.
func (r Roots) BlockFile(id string) string { return filepath.Join(r.BlocksDir(), id+".md") }

// CheckpointFile returns P/.pi/messenger/crew/checkpoints/<epicID>.json.
func (r Roots) CheckpointFile(epicID string) string {
	return filepath.Join(r.CheckpointsDir(), epicID+".json")
}
