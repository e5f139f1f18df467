// Package inbox implements per-recipient message directories with
// filesystem-watch delivery: send/broadcast, a debounced fsnotify watcher
// with exponential-backoff reattach, and the drain procedure that delivers
// and unlinks pending messages in timestamp order. Modeled on
// internal/websocket/connection.go's read-pump lifecycle, generalized from
// a socket loop to a directory watch.
package inbox

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Message is one pending inbox entry, B/inbox/<recipient>/<sortable>-<rand>.json.
type Message struct {
	ID        string  `json:"id"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Text      string  `json:"text"`
	Timestamp string  `json:"timestamp"`
	ReplyTo   *string `json:"replyTo"`
}

// filenameTimeLayout sorts alphabetically in timestamp order.
const filenameTimeLayout = "20060102T150405.000000000Z"

// fileName returns the B/inbox/<recipient> basename for a message sent at at.
func fileName(at time.Time) (string, error) {
	suffix, err := randomSuffix()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s.json", at.UTC().Format(filenameTimeLayout), suffix), nil
}

func randomSuffix() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate random suffix: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
