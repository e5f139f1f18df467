package feed

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/pi-agent/pi-messenger/internal/atomicfile"
	"github.com/pi-agent/pi-messenger/internal/jsonl"
)

// DefaultRetention bounds the feed length when config leaves it unset.
const DefaultRetention = 5000

// Store appends events to one feed.jsonl file and enforces a retention cap.
type Store struct {
	path      string
	retention int

	mu sync.Mutex
	// appends keep their own count so Retain isn't forced to re-scan the
	// file (an O(1) append) is amortized into an occasional O(n) trim.
	sinceTrim int
}

// NewStore returns a Store appending to path, trimming to retention lines.
// retention <= 0 uses DefaultRetention.
func NewStore(path string, retention int) *Store {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Store{path: path, retention: retention}
}

// Append writes ev to the feed, trimming to the retention cap every
// retention/10 appends so a long-running process doesn't grow unbounded
// between trims while still avoiding a rewrite on every single append.
func (s *Store) Append(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := jsonl.NewWriter(s.path)
	if err != nil {
		return fmt.Errorf("open feed: %w", err)
	}
	if err := w.Append(ev); err != nil {
		return fmt.Errorf("append feed event: %w", err)
	}

	s.sinceTrim++
	trimEvery := s.retention / 10
	if trimEvery < 1 {
		trimEvery = 1
	}
	if s.sinceTrim >= trimEvery {
		s.sinceTrim = 0
		if err := s.trimLocked(); err != nil {
			return err
		}
	}
	return nil
}

// Record is a convenience wrapper around Append that stamps the current time.
func (s *Store) Record(agent string, typ Type, target, preview string) error {
	return s.Append(Event{Timestamp: time.Now().UTC(), Agent: agent, Type: typ, Target: target, Preview: preview})
}

// All returns every event currently on disk, oldest first. Malformed lines
// are skipped rather than aborting the read, matching the "never fatal on
// parse failure" rule the rest of the substrate follows.
func (s *Store) All() ([]Event, error) {
	r, err := jsonl.NewReader(s.path)
	if err != nil {
		return nil, nil // feed not created yet
	}
	raw, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	events := make([]Event, 0, len(raw))
	for _, line := range raw {
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// trimLocked rewrites the feed file to its last s.retention lines. Caller
// must hold s.mu.
func (s *Store) trimLocked() error {
	r, err := jsonl.NewReader(s.path)
	if err != nil {
		return nil
	}
	raw, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("read feed for trim: %w", err)
	}
	if len(raw) <= s.retention {
		return nil
	}
	kept := raw[len(raw)-s.retention:]

	var buf []byte
	for _, line := range kept {
		buf = append(buf, line...)
		buf = append(buf, '\n')
	}
	if err := atomicfile.WriteFile(s.path, buf); err != nil {
		return fmt.Errorf("trim feed: %w", err)
	}
	return nil
}
