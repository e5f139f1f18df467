package mesh

import (
	"context"
	"fmt"
	"strings"

	"github.com/pi-agent/pi-messenger/internal/errs"
	"github.com/pi-agent/pi-messenger/internal/feed"
	"github.com/pi-agent/pi-messenger/internal/presence"
	"github.com/pi-agent/pi-messenger/internal/reservation"
)

func (m *Mesh) doReserve(ctx context.Context, params map[string]any) Result {
	r := newResult("reserve")
	self, err := m.requireSelf()
	if err != nil {
		return errResult("reserve", err)
	}
	paths := paramStrings(params, "paths")
	if len(paths) == 0 {
		return errResult("reserve", errs.New(errs.EmptyPatterns, "at least one path is required"))
	}

	peers := m.presence.GetActiveAgents(presence.DiscoverOptions{})
	var warnings []string
	for _, p := range paths {
		if conflicts := reservation.ConflictsWithOtherAgents(peers, self, p); len(conflicts) > 0 {
			warnings = append(warnings, reservation.Message(p, conflicts))
		}
	}

	rec, err := reservation.Reserve(m.presence, self, paths, paramString(params, "reason"))
	if err != nil {
		return errResult("reserve", err)
	}
	for _, p := range paths {
		_ = m.feedStore.Record(self, feed.TypeReserve, p, "")
	}

	r.Text = fmt.Sprintf("Reserved %d path(s).", len(paths))
	if len(warnings) > 0 {
		r.Text += " " + strings.Join(warnings, "; ")
	}
	r.Details["reservations"] = rec.Reservations
	r.Details["warnings"] = warnings
	return r
}

func (m *Mesh) doRelease(ctx context.Context, params map[string]any) Result {
	r := newResult("release")
	self, err := m.requireSelf()
	if err != nil {
		return errResult("release", err)
	}
	paths := paramStrings(params, "paths")

	rec, err := reservation.Release(m.presence, self, paths)
	if err != nil {
		return errResult("release", err)
	}
	for _, p := range paths {
		_ = m.feedStore.Record(self, feed.TypeRelease, p, "")
	}
	if len(paths) == 0 {
		r.Text = "Released all reservations."
	} else {
		r.Text = fmt.Sprintf("Released %d path(s).", len(paths))
	}
	r.Details["reservations"] = rec.Reservations
	return r
}
