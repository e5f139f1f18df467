package reservation

import (
	"time"

	"github.com/pi-agent/pi-messenger/internal/errs"
	"github.com/pi-agent/pi-messenger/internal/presence"
)

// Registry is the subset of presence.Registry reservation management needs.
type Registry interface {
	Get(name string) (presence.Record, bool)
	Save(rec presence.Record) error
}

// Reserve adds one reservation per path to name's presence record, all
// sharing reason and the same Since timestamp.
func Reserve(reg Registry, name string, paths []string, reason string) (presence.Record, error) {
	if len(paths) == 0 {
		return presence.Record{}, errs.New(errs.EmptyPatterns, "at least one path is required")
	}
	rec, ok := reg.Get(name)
	if !ok {
		return presence.Record{}, errs.New(errs.NotRegistered, "agent is not registered")
	}

	now := time.Now()
	for _, p := range paths {
		rec.Reservations = append(rec.Reservations, presence.Reservation{Pattern: p, Reason: reason, Since: now})
	}
	if err := reg.Save(rec); err != nil {
		return presence.Record{}, err
	}
	return rec, nil
}

// Release removes reservations matching paths from name's presence record.
// An empty paths list releases every reservation the agent holds.
func Release(reg Registry, name string, paths []string) (presence.Record, error) {
	rec, ok := reg.Get(name)
	if !ok {
		return presence.Record{}, errs.New(errs.NotRegistered, "agent is not registered")
	}

	if len(paths) == 0 {
		rec.Reservations = nil
	} else {
		remove := make(map[string]bool, len(paths))
		for _, p := range paths {
			remove[p] = true
		}
		kept := rec.Reservations[:0]
		for _, res := range rec.Reservations {
			if !remove[res.Pattern] {
				kept = append(kept, res)
			}
		}
		rec.Reservations = kept
	}

	if err := reg.Save(rec); err != nil {
		return presence.Record{}, err
	}
	return rec, nil
}
