package inbox

import (
	"log"
	"sync"
	"time"
)

const (
	maxHistoryPerSender = 50
	echoWindow          = 60 * time.Second
	echoThreshold       = 3
)

// Delivery is handed to the host's delivery callback for one drained message.
type Delivery struct {
	Message        Message
	SuppressWakeup bool
	Note           string // appended note, e.g. an echo-loop suppression notice
	SenderCwd      string // set on first contact with a new session identity
	SenderModel    string
	FirstContact   bool
}

// Callback is the host-supplied delivery function: it receives the message
// for display and a wake-up/steering-input signal via Delivery.SuppressWakeup.
type Callback func(Delivery)

// Enricher looks up presence details for a sender, used to fill in
// SenderCwd/SenderModel on first contact. It returns ok=false if the sender
// is not currently known.
type Enricher func(sender string) (cwd, model string, ok bool)

// Drainer implements the per-recipient drain procedure: list, deliver,
// unlink, with a busy/pending-reentry guard so a watcher firing mid-drain
// does not run two drains concurrently.
type Drainer struct {
	store    *Store
	self     string
	callback Callback
	enrich   Enricher

	mu      sync.Mutex
	busy    bool
	pending bool

	history     map[string][]Message
	unread      map[string]int
	knownSender map[string]bool
	recvTimes   map[string][]time.Time
}

// NewDrainer returns a Drainer for self's inbox, invoking callback for each
// delivered message. enrich may be nil, in which case first-contact
// enrichment is skipped.
func NewDrainer(store *Store, self string, callback Callback, enrich Enricher) *Drainer {
	return &Drainer{
		store:       store,
		self:        self,
		callback:    callback,
		enrich:      enrich,
		history:     make(map[string][]Message),
		unread:      make(map[string]int),
		knownSender: make(map[string]bool),
		recvTimes:   make(map[string][]time.Time),
	}
}

// Drain runs processAllPendingMessages, respecting the busy/pending guard:
// if a drain is already in flight, this call just marks pending and
// returns; the in-flight drain restarts once it finishes if pending was set.
func (d *Drainer) Drain() {
	d.mu.Lock()
	if d.busy {
		d.pending = true
		d.mu.Unlock()
		return
	}
	d.busy = true
	d.mu.Unlock()

	for {
		d.drainOnce()

		d.mu.Lock()
		if !d.pending {
			d.busy = false
			d.mu.Unlock()
			return
		}
		d.pending = false
		d.mu.Unlock()
	}
}

func (d *Drainer) drainOnce() {
	pending, err := d.store.List(d.self)
	if err != nil {
		log.Printf("inbox: list failed for %q: %v", d.self, err)
		return
	}
	for _, pf := range pending {
		if !pf.ok {
			d.store.Remove(pf.path)
			continue
		}
		d.deliver(pf.msg)
		d.store.Remove(pf.path)
	}
}

func (d *Drainer) deliver(msg Message) {
	d.mu.Lock()
	hist := append(d.history[msg.From], msg)
	if len(hist) > maxHistoryPerSender {
		hist = hist[len(hist)-maxHistoryPerSender:]
	}
	d.history[msg.From] = hist
	d.unread[msg.From]++

	firstContact := !d.knownSender[msg.From]
	d.knownSender[msg.From] = true

	suppress, note := d.checkEchoLoop(msg.From)
	d.mu.Unlock()

	del := Delivery{Message: msg, SuppressWakeup: suppress, Note: note, FirstContact: firstContact}
	if firstContact && d.enrich != nil {
		if cwd, model, ok := d.enrich(msg.From); ok {
			del.SenderCwd = cwd
			del.SenderModel = model
		}
	}

	if d.callback != nil {
		d.callback(del)
	}
}

// checkEchoLoop must be called with d.mu held. It prunes entries older than
// echoWindow from sender's rolling receive-time window, decides suppression
// from the window's size *before* this delivery joins it, then appends now.
// That ordering is what makes the first echoThreshold deliveries wake and
// only the next one suppress: with echoThreshold == 3, message 1 sees a
// window of 0, message 2 sees 1, message 3 sees 2 (all below threshold, all
// wake), and message 4 sees 3 (at threshold, suppressed).
func (d *Drainer) checkEchoLoop(sender string) (suppress bool, note string) {
	now := time.Now()
	cutoff := now.Add(-echoWindow)

	times := d.recvTimes[sender]
	i := 0
	for i < len(times) && times[i].Before(cutoff) {
		i++
	}
	times = times[i:]

	if len(times) >= echoThreshold {
		suppress = true
		note = "loop suppressed — too many rapid exchanges with " + sender + ", no reply needed"
	}

	d.recvTimes[sender] = append(times, now)
	return suppress, note
}

// UnreadCount returns the current unread counter for sender.
func (d *Drainer) UnreadCount(sender string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.unread[sender]
}

// MarkRead resets sender's unread counter to zero.
func (d *Drainer) MarkRead(sender string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.unread[sender] = 0
}

// History returns a copy of the bounded message history for sender.
func (d *Drainer) History(sender string) []Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Message(nil), d.history[sender]...)
}
