package crew

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pi-agent/pi-messenger/internal/atomicfile"
	"github.com/pi-agent/pi-messenger/internal/layout"
)

// Store reads and writes epic/task/spec/block/checkpoint files under
// roots.CrewDir(). Multi-file or id-allocating operations are wrapped in
// the swarm lock by epic_ops.go and task_ops.go; Store itself is just the
// per-file primitive.
type Store struct {
	roots layout.Roots
}

// NewStore returns a Store rooted at roots.
func NewStore(roots layout.Roots) *Store {
	return &Store{roots: roots}
}

func (s *Store) readEpic(id string) (Epic, bool, error) {
	var epic Epic
	ok, err := atomicfile.ReadJSON(s.roots.EpicFile(id), &epic)
	if err != nil {
		return Epic{}, false, fmt.Errorf("read epic %q: %w", id, err)
	}
	return epic, ok, nil
}

func (s *Store) writeEpic(epic Epic) error {
	if err := atomicfile.WriteJSON(s.roots.EpicFile(epic.ID), epic); err != nil {
		return fmt.Errorf("write epic %q: %w", epic.ID, err)
	}
	return nil
}

func (s *Store) readTask(id string) (Task, bool, error) {
	var task Task
	ok, err := atomicfile.ReadJSON(s.roots.TaskFile(id), &task)
	if err != nil {
		return Task{}, false, fmt.Errorf("read task %q: %w", id, err)
	}
	return task, ok, nil
}

func (s *Store) writeTask(task Task) error {
	if err := atomicfile.WriteJSON(s.roots.TaskFile(task.ID), task); err != nil {
		return fmt.Errorf("write task %q: %w", task.ID, err)
	}
	return nil
}

// listEpics returns every epic under the epics directory.
func (s *Store) listEpics() ([]Epic, error) {
	entries, err := os.ReadDir(s.roots.EpicsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list epics: %w", err)
	}
	var epics []Epic
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		epic, ok, err := s.readEpic(id)
		if err != nil || !ok {
			continue
		}
		epics = append(epics, epic)
	}
	return epics, nil
}

// listTasksForEpic returns every task belonging to epicID.
func (s *Store) listTasksForEpic(epicID string) ([]Task, error) {
	entries, err := os.ReadDir(s.roots.TasksDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	prefix := epicID + "."
	var tasks []Task
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		task, ok, err := s.readTask(id)
		if err != nil || !ok {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (s *Store) writeEpicSpecStub(id, title string) error {
	content := fmt.Sprintf("# %s\n\n%s\n", id, title)
	return atomicfile.WriteFile(s.roots.EpicSpecFile(id), []byte(content))
}

func (s *Store) writeTaskSpecStub(id, title string) error {
	content := fmt.Sprintf("# %s\n\n%s\n", id, title)
	return atomicfile.WriteFile(s.roots.TaskSpecFile(id), []byte(content))
}

func (s *Store) readEpicSpec(id string) string {
	data, err := os.ReadFile(s.roots.EpicSpecFile(id))
	if err != nil {
		return ""
	}
	return string(data)
}

func (s *Store) readTaskSpec(id string) string {
	data, err := os.ReadFile(s.roots.TaskSpecFile(id))
	if err != nil {
		return ""
	}
	return string(data)
}

func (s *Store) writeBlockFile(id, reason string) error {
	content := fmt.Sprintf("# Blocked: %s\n\n%s\n", id, reason)
	return atomicfile.WriteFile(s.roots.BlockFile(id), []byte(content))
}

func (s *Store) removeBlockFile(id string) {
	atomicfile.Remove(s.roots.BlockFile(id))
}

func now() time.Time { return time.Now().UTC() }
