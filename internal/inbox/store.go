package inbox

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pi-agent/pi-messenger/internal/atomicfile"
	"github.com/pi-agent/pi-messenger/internal/idgen"
	"github.com/pi-agent/pi-messenger/internal/layout"
)

// Store persists and lists pending messages under one B/inbox/<recipient> tree.
type Store struct {
	roots layout.Roots
}

// NewStore returns a Store rooted at roots.
func NewStore(roots layout.Roots) *Store {
	return &Store{roots: roots}
}

// Deliver writes a new message file into recipient's inbox directory and
// returns the record written, including its freshly-allocated id and
// timestamp.
func (s *Store) Deliver(from, to, text string, replyTo *string) (Message, error) {
	now := time.Now()
	name, err := fileName(now)
	if err != nil {
		return Message{}, err
	}
	msg := Message{
		ID:        idgen.New(),
		From:      from,
		To:        to,
		Text:      text,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		ReplyTo:   replyTo,
	}
	path := filepath.Join(s.roots.InboxDir(to), name)
	if err := atomicfile.WriteJSON(path, msg); err != nil {
		return Message{}, fmt.Errorf("deliver message to %q: %w", to, err)
	}
	return msg, nil
}

// pendingFile pairs a message's on-disk path with its parsed contents,
// ordered the way List returns them: ascending by filename (timestamp order).
type pendingFile struct {
	path string
	msg  Message
	ok   bool // false if the file was unparseable
}

// List returns the recipient's pending inbox files in delivery order.
// Unparseable entries are still returned (with ok=false) so the drain
// procedure can unlink them without re-reading the directory.
func (s *Store) List(recipient string) ([]pendingFile, error) {
	dir := s.roots.InboxDir(recipient)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list inbox for %q: %w", recipient, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	pending := make([]pendingFile, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		var msg Message
		ok, err := atomicfile.ReadJSON(path, &msg)
		pending = append(pending, pendingFile{path: path, msg: msg, ok: ok && err == nil})
	}
	return pending, nil
}

// Remove unlinks a message file, best-effort.
func (s *Store) Remove(path string) {
	atomicfile.Remove(path)
}
