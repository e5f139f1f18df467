package presence

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/pi-agent/pi-messenger/internal/atomicfile"
	"github.com/pi-agent/pi-messenger/internal/errs"
	"github.com/pi-agent/pi-messenger/internal/layout"
	"github.com/pi-agent/pi-messenger/internal/names"
	"github.com/pi-agent/pi-messenger/internal/swarmlock"
)

const maxJoinAttempts = 20

// Registry owns the on-disk presence records under roots.RegistryDir()
// plus the discovery cache (see cache.go). It is safe for concurrent use
// from one process; cross-process coordination goes through file
// operations and, for rename, the swarm lock.
type Registry struct {
	roots     layout.Roots
	generator *names.Generator
	cache     *discoveryCache
}

// New constructs a Registry rooted at roots, using generator to propose
// names when the caller does not request one explicitly.
func New(roots layout.Roots, generator *names.Generator) *Registry {
	if generator == nil {
		generator = names.NewGenerator(nil, nil)
	}
	return &Registry{
		roots:     roots,
		generator: generator,
		cache:     newDiscoveryCache(),
	}
}

// JoinRequest carries the caller-supplied fields for Join; PID and
// StartedAt are always set by Join itself.
type JoinRequest struct {
	PreferredName string // from PI_AGENT_NAME or an explicit request; empty means "generate one"
	Cwd           string
	Model         string
	GitBranch     string
	Spec          string
	IsHuman       bool
	SessionID     string // caller-generated, stable for this process's lifetime
}

// Join registers a new presence record, retrying name allocation on
// collision unless PreferredName was supplied explicitly, in which case a
// collision is reported as name_taken immediately.
func (r *Registry) Join(req JoinRequest) (Record, error) {
	explicit := req.PreferredName != ""

	for attempt := 0; attempt < maxJoinAttempts; attempt++ {
		name := req.PreferredName
		if name == "" {
			name = r.generator.Propose(attempt)
		}
		if err := ValidateName(name); err != nil {
			if explicit {
				return Record{}, err
			}
			continue
		}
		if existing, ok := r.Get(name); ok && IsProcessAlive(existing.PID) {
			if explicit {
				return Record{}, errs.New(errs.NameTaken, fmt.Sprintf("name %q is already registered", name))
			}
			continue
		}

		rec := Record{
			Name:      name,
			PID:       os.Getpid(),
			SessionID: req.SessionID,
			Cwd:       req.Cwd,
			Model:     req.Model,
			GitBranch: req.GitBranch,
			Spec:      req.Spec,
			IsHuman:   req.IsHuman,
			StartedAt: nowFunc(),
		}
		rec.Activity.LastActivityAt = rec.StartedAt

		path := r.roots.PresenceFile(name)
		if err := atomicfile.WriteJSON(path, rec); err != nil {
			return Record{}, fmt.Errorf("write presence record: %w", err)
		}

		// Read back: if another agent raced us and won, our write may have
		// been immediately overwritten. The first writer wins; detect the
		// race by checking whether the file still carries our sessionId.
		var onDisk Record
		ok, err := atomicfile.ReadJSON(path, &onDisk)
		if err != nil {
			return Record{}, fmt.Errorf("verify presence record: %w", err)
		}
		if !ok || onDisk.SessionID != rec.SessionID {
			if explicit {
				return Record{}, errs.New(errs.NameTaken, fmt.Sprintf("name %q is already registered", name))
			}
			continue // race_lost: try another generated name
		}

		if err := os.MkdirAll(r.roots.InboxDir(name), 0o700); err != nil {
			return Record{}, fmt.Errorf("create inbox directory: %w", err)
		}
		r.cache.invalidate()
		return rec, nil
	}

	if explicit {
		return Record{}, errs.New(errs.NameTaken, fmt.Sprintf("name %q is already registered", req.PreferredName))
	}
	return Record{}, errs.New(errs.NameTaken, "could not allocate a unique name after retries")
}

// Unregister deletes name's presence file, drains its inbox directory,
// and removes any claims it owns (claims cleanup is performed by the
// caller via the swarmstore, since this package does not depend on it).
func (r *Registry) Unregister(name string) error {
	atomicfile.Remove(r.roots.PresenceFile(name))
	entries, err := os.ReadDir(r.roots.InboxDir(name))
	if err == nil {
		for _, e := range entries {
			atomicfile.Remove(r.roots.InboxDir(name) + "/" + e.Name())
		}
	}
	r.cache.invalidate()
	return nil
}

// Get reads a single presence record by name. ok is false if the record
// is absent or malformed.
func (r *Registry) Get(name string) (Record, bool) {
	var rec Record
	ok, err := atomicfile.ReadJSON(r.roots.PresenceFile(name), &rec)
	if err != nil || !ok {
		return Record{}, false
	}
	return rec, true
}

// Save rewrites name's presence record, used on activity flush, rename,
// and reservation changes.
func (r *Registry) Save(rec Record) error {
	if err := atomicfile.WriteJSON(r.roots.PresenceFile(rec.Name), rec); err != nil {
		return fmt.Errorf("save presence record: %w", err)
	}
	r.cache.invalidate()
	return nil
}

// Rename moves current's presence record and inbox directory to newName
// under the swarm lock, after validating newName is free.
func (r *Registry) Rename(ctx context.Context, current string, newName string) (Record, error) {
	if current == newName {
		return Record{}, errs.New(errs.SameName, "new name is the same as the current name")
	}
	if err := ValidateName(newName); err != nil {
		return Record{}, err
	}

	var result Record
	err := swarmlock.WithLock(ctx, r.roots.SwarmLockFile(), func() error {
		if existing, ok := r.Get(newName); ok {
			if IsProcessAlive(existing.PID) {
				return errs.New(errs.NameTaken, fmt.Sprintf("name %q is already registered", newName))
			}
			log.Printf("presence: pruning stale record for %q before rename", newName)
			atomicfile.Remove(r.roots.PresenceFile(newName))
		}

		rec, ok := r.Get(current)
		if !ok {
			return errs.New(errs.NotRegistered, fmt.Sprintf("agent %q is not registered", current))
		}
		rec.Name = newName
		if err := atomicfile.WriteJSON(r.roots.PresenceFile(newName), rec); err != nil {
			return fmt.Errorf("write renamed presence record: %w", err)
		}
		atomicfile.Remove(r.roots.PresenceFile(current))

		if err := os.MkdirAll(r.roots.InboxDir(newName), 0o700); err != nil {
			return fmt.Errorf("create inbox directory for renamed agent: %w", err)
		}
		if err := moveInboxMessages(r.roots.InboxDir(current), r.roots.InboxDir(newName)); err != nil {
			return fmt.Errorf("move inbox messages: %w", err)
		}

		result = rec
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	r.cache.invalidate()
	return result, nil
}

func moveInboxMessages(from, to string) error {
	entries, err := os.ReadDir(from)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Rename(from+"/"+e.Name(), to+"/"+e.Name()); err != nil {
			return err
		}
	}
	return nil
}
