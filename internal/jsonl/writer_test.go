package jsonl_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pi-agent/pi-messenger/internal/jsonl"
)

type testEvent struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

func TestWriterAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jsonl")

	w, err := jsonl.NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter() failed: %v", err)
	}

	if err := w.Append(testEvent{Type: "test", Data: "hello"}); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304 - test fixture path
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	if want := `{"type":"test","data":"hello"}` + "\n"; string(data) != want {
		t.Errorf("file content = %q, want %q", string(data), want)
	}
}

func TestWriterAppendMultiple(t *testing.T) {
	path := filepath.Join(t.TempDir(), "multi.jsonl")

	w, err := jsonl.NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter() failed: %v", err)
	}

	events := []testEvent{
		{Type: "event1", Data: "first"},
		{Type: "event2", Data: "second"},
		{Type: "event3", Data: "third"},
	}
	for _, event := range events {
		if err := w.Append(event); err != nil {
			t.Fatalf("Append() failed: %v", err)
		}
	}

	r, err := jsonl.NewReader(path)
	if err != nil {
		t.Fatalf("NewReader() failed: %v", err)
	}
	messages, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() failed: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(messages))
	}
	for i, msg := range messages {
		var got testEvent
		if err := json.Unmarshal(msg, &got); err != nil {
			t.Fatalf("unmarshal message %d: %v", i, err)
		}
		if got != events[i] {
			t.Errorf("message %d = %+v, want %+v", i, got, events[i])
		}
	}
}

func TestWriterCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "file.jsonl")

	if _, err := jsonl.NewWriter(path); err != nil {
		t.Fatalf("NewWriter() should create directories: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("directory should exist: %v", err)
	}
}

func TestReaderReadAllEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.jsonl")
	if err := os.WriteFile(path, []byte{}, 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	r, err := jsonl.NewReader(path)
	if err != nil {
		t.Fatalf("NewReader() failed: %v", err)
	}
	messages, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() failed: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("got %d messages from empty file, want 0", len(messages))
	}
}

func TestReaderNonExistentFile(t *testing.T) {
	if _, err := jsonl.NewReader("/nonexistent/path.jsonl"); err == nil {
		t.Error("NewReader() should error on a non-existent file")
	}
}

func TestWriterAppendConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concurrent.jsonl")

	w, err := jsonl.NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter() failed: %v", err)
	}

	const numGoroutines = 5
	const numEventsPerGoroutine = 20

	done := make(chan error, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			for j := 0; j < numEventsPerGoroutine; j++ {
				if err := w.Append(testEvent{Type: "concurrent", Data: "test"}); err != nil {
					done <- err
					return
				}
			}
			done <- nil
		}()
	}
	for i := 0; i < numGoroutines; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent write failed: %v", err)
		}
	}

	r, err := jsonl.NewReader(path)
	if err != nil {
		t.Fatalf("NewReader() failed: %v", err)
	}
	messages, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() failed: %v", err)
	}
	if want := numGoroutines * numEventsPerGoroutine; len(messages) != want {
		t.Errorf("got %d messages after concurrent writes, want %d", len(messages), want)
	}
	for i, msg := range messages {
		var event testEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			t.Errorf("message %d is invalid JSON: %v", i, err)
		}
	}
}
