package crew

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pi-agent/pi-messenger/internal/atomicfile"
	"github.com/pi-agent/pi-messenger/internal/errs"
	"github.com/pi-agent/pi-messenger/internal/idgen"
	"github.com/pi-agent/pi-messenger/internal/swarmlock"
)

// SaveCheckpoint snapshots epicID's epic record, every task, the epic
// spec, and every task spec into a single file, overwriting any prior
// checkpoint for this epic.
func (s *Store) SaveCheckpoint(epicID string) (Checkpoint, error) {
	epic, ok, err := s.readEpic(epicID)
	if err != nil {
		return Checkpoint{}, err
	}
	if !ok {
		return Checkpoint{}, errs.New(errs.NotFound, fmt.Sprintf("epic %q not found", epicID))
	}
	tasks, err := s.listTasksForEpic(epicID)
	if err != nil {
		return Checkpoint{}, err
	}

	taskSpecs := make(map[string]string, len(tasks))
	for _, t := range tasks {
		taskSpecs[t.ID] = s.readTaskSpec(t.ID)
	}

	checkpoint := Checkpoint{
		ID:        idgen.New(),
		CreatedAt: now(),
		Epic:      epic,
		Tasks:     tasks,
		EpicSpec:  s.readEpicSpec(epicID),
		TaskSpecs: taskSpecs,
	}
	if err := atomicfile.WriteJSON(s.roots.CheckpointFile(epicID), checkpoint); err != nil {
		return Checkpoint{}, fmt.Errorf("write checkpoint for epic %q: %w", epicID, err)
	}
	return checkpoint, nil
}

// RestoreCheckpoint rewrites the epic, its tasks, and their spec files back
// to the state captured by the most recent checkpoint for epicID. Runs
// under the swarm lock since it touches many files and must not interleave
// with concurrent task-lifecycle mutation.
func (s *Store) RestoreCheckpoint(ctx context.Context, epicID string) (Checkpoint, error) {
	checkpoint, ok, err := s.readCheckpoint(epicID)
	if err != nil {
		return Checkpoint{}, err
	}
	if !ok {
		return Checkpoint{}, errs.New(errs.NotFound, fmt.Sprintf("no checkpoint for epic %q", epicID))
	}

	err = swarmlock.WithLock(ctx, s.roots.SwarmLockFile(), func() error {
		if err := s.writeEpic(checkpoint.Epic); err != nil {
			return err
		}
		if err := atomicfile.WriteFile(s.roots.EpicSpecFile(epicID), []byte(checkpoint.EpicSpec)); err != nil {
			return fmt.Errorf("restore epic spec: %w", err)
		}
		for _, task := range checkpoint.Tasks {
			if err := s.writeTask(task); err != nil {
				return err
			}
			if spec, ok := checkpoint.TaskSpecs[task.ID]; ok {
				if err := atomicfile.WriteFile(s.roots.TaskSpecFile(task.ID), []byte(spec)); err != nil {
					return fmt.Errorf("restore task spec %q: %w", task.ID, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return Checkpoint{}, err
	}
	return checkpoint, nil
}

// DeleteCheckpoint removes the saved checkpoint for epicID, if any.
func (s *Store) DeleteCheckpoint(epicID string) error {
	if _, ok, err := s.readCheckpoint(epicID); err != nil {
		return err
	} else if !ok {
		return errs.New(errs.NotFound, fmt.Sprintf("no checkpoint for epic %q", epicID))
	}
	atomicfile.Remove(s.roots.CheckpointFile(epicID))
	return nil
}

// ListCheckpoints returns every saved checkpoint across all epics.
func (s *Store) ListCheckpoints() ([]Checkpoint, error) {
	entries, err := os.ReadDir(s.roots.CheckpointsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	var checkpoints []Checkpoint
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		epicID := strings.TrimSuffix(e.Name(), ".json")
		checkpoint, ok, err := s.readCheckpoint(epicID)
		if err != nil || !ok {
			continue
		}
		checkpoints = append(checkpoints, checkpoint)
	}
	return checkpoints, nil
}

func (s *Store) readCheckpoint(epicID string) (Checkpoint, bool, error) {
	var checkpoint Checkpoint
	ok, err := atomicfile.ReadJSON(s.roots.CheckpointFile(epicID), &checkpoint)
	if err != nil {
		return Checkpoint{}, false, fmt.Errorf("read checkpoint for epic %q: %w", epicID, err)
	}
	return checkpoint, ok, nil
}
