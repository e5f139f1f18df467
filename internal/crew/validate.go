package crew

import (
	"fmt"
	"strings"
)

// ValidationIssue is one finding from ValidateEpic, either a hard error
// or a warning (the UI decides whether warnings block anything).
type ValidationIssue struct {
	Warning bool
	Message string
}

// ValidateEpic checks epicID's task graph for orphan dependencies and
// cycles (errors), plus stub specs and stale denormalized counts
// (warnings).
func (s *Store) ValidateEpic(epicID string) ([]ValidationIssue, error) {
	epic, ok, err := s.readEpic(epicID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("epic %q not found", epicID)
	}
	tasks, err := s.listTasksForEpic(epicID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	var issues []ValidationIssue
	for _, t := range tasks {
		for _, dep := range t.DependsOn {
			if _, ok := byID[dep]; !ok {
				issues = append(issues, ValidationIssue{Message: fmt.Sprintf("task %q depends on nonexistent task %q", t.ID, dep)})
			}
		}
	}

	if cyclePath := findCycle(byID); cyclePath != "" {
		issues = append(issues, ValidationIssue{Message: fmt.Sprintf("dependency cycle detected: %s", cyclePath)})
	}

	for _, t := range tasks {
		// The stub written by CreateTask is the "# <id>" heading plus one line.
		spec := s.readTaskSpec(t.ID)
		body := strings.TrimPrefix(spec, fmt.Sprintf("# %s\n\n", t.ID))
		if spec == "" || (body != spec && !strings.Contains(strings.TrimSuffix(body, "\n"), "\n")) {
			issues = append(issues, ValidationIssue{Warning: true, Message: fmt.Sprintf("task %q has a stub spec", t.ID)})
		}
	}

	completed := 0
	for _, t := range tasks {
		if t.Status == TaskDone {
			completed++
		}
	}
	if epic.TaskCount != len(tasks) || epic.CompletedCount != completed {
		issues = append(issues, ValidationIssue{Warning: true, Message: fmt.Sprintf(
			"epic counts out of sync: stored task_count=%d completed_count=%d, actual %d/%d",
			epic.TaskCount, epic.CompletedCount, completed, len(tasks))})
	}

	return issues, nil
}

// findCycle runs DFS with visited + recursion-stack sets over the
// dependency graph and returns a human-readable description of the first
// cycle found, or "" if the graph is acyclic.
func findCycle(byID map[string]Task) string {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[string]int, len(byID))
	var path []string

	var visit func(id string) string
	visit = func(id string) string {
		state[id] = inStack
		path = append(path, id)
		for _, dep := range byID[id].DependsOn {
			if _, ok := byID[dep]; !ok {
				continue // orphan dependency, reported separately
			}
			switch state[dep] {
			case inStack:
				return describeCycle(append(path, dep))
			case unvisited:
				if desc := visit(dep); desc != "" {
					return desc
				}
			}
		}
		path = path[:len(path)-1]
		state[id] = done
		return ""
	}

	for id := range byID {
		if state[id] == unvisited {
			if desc := visit(id); desc != "" {
				return desc
			}
		}
	}
	return ""
}

func describeCycle(path []string) string {
	out := ""
	for i, id := range path {
		if i > 0 {
			out += " -> "
		}
		out += id
	}
	return out
}

// ReadyTasks returns tasks whose status is todo and whose every dependency
// is done.
func (s *Store) ReadyTasks(epicID string) ([]Task, error) {
	tasks, err := s.listTasksForEpic(epicID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	var ready []Task
	for _, t := range tasks {
		if t.Status != TaskTodo {
			continue
		}
		allDone := true
		for _, dep := range t.DependsOn {
			if depTask, ok := byID[dep]; !ok || depTask.Status != TaskDone {
				allDone = false
				break
			}
		}
		if allDone {
			ready = append(ready, t)
		}
	}
	return ready, nil
}
