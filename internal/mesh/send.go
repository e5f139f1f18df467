package mesh

import (
	"context"
	"fmt"

	"github.com/pi-agent/pi-messenger/internal/errs"
	"github.com/pi-agent/pi-messenger/internal/presence"
)

func (m *Mesh) doSend(ctx context.Context, params map[string]any) Result {
	r := newResult("send")
	self, err := m.requireSelf()
	if err != nil {
		return errResult("send", err)
	}
	to := paramString(params, "to")
	text := paramString(params, "message")
	replyTo := paramStringPtr(params, "replyTo")

	msg, err := m.sender.Send(ctx, self, to, text, replyTo)
	if err != nil {
		return errResult("send", err)
	}
	r.Text = fmt.Sprintf("Message sent to %s.", to)
	r.Details["message"] = msg
	return r
}

func (m *Mesh) doBroadcast(ctx context.Context, params map[string]any) Result {
	r := newResult("broadcast")
	self, err := m.requireSelf()
	if err != nil {
		return errResult("broadcast", err)
	}
	text := paramString(params, "message")
	if text == "" {
		return errResult("broadcast", errs.New(errs.MissingMessage, "message text is required"))
	}

	peers := m.presence.GetActiveAgents(presence.DiscoverOptions{})
	results := m.sender.Broadcast(ctx, self, peers, text)

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	r.Text = fmt.Sprintf("Broadcast to %d peer(s), %d failed.", len(results), failed)
	r.Details["results"] = results
	return r
}
