package crew

import (
	"context"
	"fmt"

	"github.com/pi-agent/pi-messenger/internal/atomicfile"
	"github.com/pi-agent/pi-messenger/internal/errs"
	"github.com/pi-agent/pi-messenger/internal/swarmlock"
)

// CreateEpic allocates an id under the swarm lock and writes a new epic
// record in status "planning" plus a stub spec file.
func (s *Store) CreateEpic(ctx context.Context, title string) (Epic, error) {
	if title == "" {
		return Epic{}, errs.New(errs.MissingTitle, "title is required")
	}

	var epic Epic
	err := swarmlock.WithLock(ctx, s.roots.SwarmLockFile(), func() error {
		id, err := nextEpicID(s.roots.EpicsDir())
		if err != nil {
			return err
		}
		ts := now()
		epic = Epic{ID: id, Title: title, Status: EpicPlanning, CreatedAt: ts, UpdatedAt: ts}
		if err := s.writeEpic(epic); err != nil {
			return err
		}
		return s.writeEpicSpecStub(id, title)
	})
	if err != nil {
		return Epic{}, err
	}
	return epic, nil
}

// EpicPatch carries the optional fields UpdateEpic may change.
type EpicPatch struct {
	Title  *string
	Status *EpicStatus
}

// UpdateEpic applies patch via read-modify-write, touching UpdatedAt.
func (s *Store) UpdateEpic(id string, patch EpicPatch) (Epic, error) {
	epic, ok, err := s.readEpic(id)
	if err != nil {
		return Epic{}, err
	}
	if !ok {
		return Epic{}, errs.New(errs.NotFound, fmt.Sprintf("epic %q not found", id))
	}
	if patch.Title != nil {
		epic.Title = *patch.Title
	}
	if patch.Status != nil {
		epic.Status = *patch.Status
	}
	epic.UpdatedAt = now()
	if err := s.writeEpic(epic); err != nil {
		return Epic{}, err
	}
	return epic, nil
}

// CloseEpic requires every task of the epic to be done, then sets status
// "completed" and stamps ClosedAt.
func (s *Store) CloseEpic(id string) (Epic, error) {
	epic, ok, err := s.readEpic(id)
	if err != nil {
		return Epic{}, err
	}
	if !ok {
		return Epic{}, errs.New(errs.NotFound, fmt.Sprintf("epic %q not found", id))
	}
	tasks, err := s.listTasksForEpic(id)
	if err != nil {
		return Epic{}, err
	}
	for _, t := range tasks {
		if t.Status != TaskDone {
			return Epic{}, errs.New(errs.IncompleteTasks, fmt.Sprintf("task %q is not done", t.ID))
		}
	}

	ts := now()
	epic.Status = EpicCompleted
	epic.ClosedAt = &ts
	epic.UpdatedAt = ts
	if err := s.writeEpic(epic); err != nil {
		return Epic{}, err
	}
	return epic, nil
}

// SetEpicSpec overwrites an epic's free-text spec file.
func (s *Store) SetEpicSpec(id, content string) error {
	if _, ok, err := s.readEpic(id); err != nil {
		return err
	} else if !ok {
		return errs.New(errs.NotFound, fmt.Sprintf("epic %q not found", id))
	}
	return atomicfile.WriteFile(s.roots.EpicSpecFile(id), []byte(content))
}

// GetEpic reads a single epic record.
func (s *Store) GetEpic(id string) (Epic, bool, error) {
	return s.readEpic(id)
}

// ListEpics returns every epic on disk.
func (s *Store) ListEpics() ([]Epic, error) {
	return s.listEpics()
}
