package inbox

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/pi-agent/pi-messenger/internal/errs"
	"github.com/pi-agent/pi-messenger/internal/feed"
	"github.com/pi-agent/pi-messenger/internal/presence"
)

// ActiveChecker reports whether recipient is a currently-registered, live
// agent, backed by presence.Registry's cached discovery scan.
type ActiveChecker interface {
	Get(name string) (presence.Record, bool)
}

// Sender validates recipients against the presence registry, writes
// messages via Store, and records feed events for the senders it serves.
type Sender struct {
	store     *Store
	presence  ActiveChecker
	feed      *feed.Store
	broadcast *rate.Limiter
}

// NewSender returns a Sender. broadcastRate/broadcastBurst configure the
// token bucket guarding Broadcast fan-out; zero values fall back to an
// unlimited limiter (rate.Inf).
func NewSender(store *Store, presenceReg ActiveChecker, feedStore *feed.Store, broadcastRate float64, broadcastBurst int) *Sender {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if broadcastRate > 0 {
		if broadcastBurst < 1 {
			broadcastBurst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(broadcastRate), broadcastBurst)
	}
	return &Sender{store: store, presence: presenceReg, feed: feedStore, broadcast: limiter}
}

// Send delivers text from "from" to "to", validating that "to" is a
// currently active peer.
func (s *Sender) Send(ctx context.Context, from, to, text string, replyTo *string) (Message, error) {
	if to == "" {
		return Message{}, errs.New(errs.MissingRecipient, "recipient is required")
	}
	if text == "" {
		return Message{}, errs.New(errs.MissingMessage, "message text is required")
	}
	if from == to {
		return Message{}, errs.New(errs.CannotSendToSelf, "cannot send a message to yourself")
	}
	rec, ok := s.presence.Get(to)
	if !ok {
		return Message{}, errs.New(errs.RecipientNotFound, fmt.Sprintf("recipient %q is not registered", to))
	}
	if !presence.IsProcessAlive(rec.PID) {
		return Message{}, errs.New(errs.RecipientNotActive, fmt.Sprintf("recipient %q is not active", to))
	}

	msg, err := s.store.Deliver(from, to, text, replyTo)
	if err != nil {
		return Message{}, err
	}
	if s.feed != nil {
		_ = s.feed.Record(from, feed.TypeMessage, to, preview(text))
	}
	return msg, nil
}

// BroadcastResult carries one recipient's outcome from Broadcast.
type BroadcastResult struct {
	Recipient string
	Err       error
}

// Broadcast sends text from "from" to every active peer except itself.
// Per-recipient failures are accumulated rather than aborting the fan-out.
// Each send waits on the shared broadcast rate limiter (configured from
// broadcastRatePerSecond/broadcastBurst, 5 per second with a burst of 10
// by default) so a burst of broadcasts cannot flood every inbox at once.
func (s *Sender) Broadcast(ctx context.Context, from string, peers []presence.Record, text string) []BroadcastResult {
	results := make([]BroadcastResult, 0, len(peers))
	for _, peer := range peers {
		if peer.Name == from {
			continue
		}
		if err := s.broadcast.Wait(ctx); err != nil {
			results = append(results, BroadcastResult{Recipient: peer.Name, Err: err})
			continue
		}
		_, err := s.Send(ctx, from, peer.Name, text, nil)
		results = append(results, BroadcastResult{Recipient: peer.Name, Err: err})
	}
	return results
}

func preview(text string) string {
	const maxPreview = 120
	if len(text) <= maxPreview {
		return text
	}
	return text[:maxPreview] + "…"
}
