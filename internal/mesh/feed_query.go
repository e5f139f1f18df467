package mesh

import (
	"context"
	"fmt"
	"time"

	"github.com/pi-agent/pi-messenger/internal/feed"
)

// doFeed answers the feed action, filtering the activity feed by type,
// agent, and/or time range rather than just returning the last N lines.
func (m *Mesh) doFeed(ctx context.Context, params map[string]any) Result {
	r := newResult("feed")

	events, err := m.feedStore.All()
	if err != nil {
		return errResult("feed", err)
	}

	q := feed.Query{
		Agent: paramString(params, "agent"),
		Limit: paramInt(params, "limit"),
	}
	for _, t := range paramStrings(params, "types") {
		q.Types = append(q.Types, feed.Type(t))
	}
	if since := paramString(params, "since"); since != "" {
		if t, err := time.Parse(time.RFC3339, since); err == nil {
			q.Since = t
		}
	}
	if until := paramString(params, "until"); until != "" {
		if t, err := time.Parse(time.RFC3339, until); err == nil {
			q.Until = t
		}
	}
	if q.Limit == 0 {
		q.Limit = 50
	}

	matched := q.Run(events)
	r.Text = fmt.Sprintf("%d feed event(s).", len(matched))
	r.Details["events"] = matched
	return r
}
