// Package mesh implements the single action dispatcher that every
// external tool-call surface (MCP server, CLI) drives: one function
// routing a tagged action to the presence/inbox/reservation/swarmstore/
// crew operations underneath. Grounded on cmd/thrum/mcp.go's tool-to-
// daemon-RPC routing, generalized from one RPC call per tool to one
// dispatcher function keyed on an action field, the way the original
// spec's dynamic record shapes map onto a tagged variant.
package mesh

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/pi-agent/pi-messenger/internal/config"
	"github.com/pi-agent/pi-messenger/internal/crew"
	"github.com/pi-agent/pi-messenger/internal/errs"
	"github.com/pi-agent/pi-messenger/internal/feed"
	"github.com/pi-agent/pi-messenger/internal/inbox"
	"github.com/pi-agent/pi-messenger/internal/layout"
	"github.com/pi-agent/pi-messenger/internal/names"
	"github.com/pi-agent/pi-messenger/internal/presence"
	"github.com/pi-agent/pi-messenger/internal/swarmstore"
)

// Result is the shape every dispatcher action returns: a human-readable
// line and a structured details record for programmatic consumers.
// details.mode echoes the action name; details.error carries a short
// error-kind string when the action failed.
type Result struct {
	Text    string         `json:"text"`
	Details map[string]any `json:"details"`
}

func newResult(mode string) Result {
	return Result{Details: map[string]any{"mode": mode}}
}

func errResult(mode string, err error) Result {
	r := newResult(mode)
	r.Text = "Error: " + err.Error()
	if kind, ok := errs.As(err); ok {
		r.Details["error"] = string(kind)
	} else {
		r.Details["error"] = "internal_error"
	}
	if data, ok := errs.DataOf(err); ok {
		for k, v := range data {
			r.Details[k] = v
		}
	}
	return r
}

// Mesh holds every piece of per-process state one agent's dispatcher
// needs: the shared on-disk stores, plus the in-memory session state
// (self name, activity tracker, drainer, flusher, watcher) a single
// joined session owns. Unexported fields are only ever touched from the
// goroutines this Mesh itself starts (flusher, watcher) — callers only
// interact through Dispatch.
type Mesh struct {
	roots layout.Roots
	cfg   config.Config
	cwd   string

	presence   *presence.Registry
	inboxStore *inbox.Store
	sender     *inbox.Sender
	feedStore  *feed.Store
	swarm      *swarmstore.Store
	crew       *crew.Store

	mu          sync.Mutex
	self        string
	sessID      string
	tracker     *presence.ActivityTracker
	flusher     *presence.Flusher
	drainer     *inbox.Drainer
	watcher     *inbox.Watcher
	watchCancel context.CancelFunc
}

// New constructs a Mesh rooted at cwd (empty means os.Getwd()), loading
// config via config.Load and resolving layout.Roots the same way.
func New(cwd string) (*Mesh, error) {
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		cwd = wd
	}
	roots, err := layout.Resolve(cwd)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return nil, err
	}

	var adjectives, nouns []string
	// NameWords is a flat list in config for simplicity of the JSON
	// shape; the registry generator wants adjectives/nouns split, so the
	// first half becomes adjectives and the rest nouns (an odd word goes to
	// nouns). Lists shorter than two words leave the built-in defaults.
	if len(cfg.NameWords) > 1 {
		half := len(cfg.NameWords) / 2
		adjectives = cfg.NameWords[:half]
		nouns = cfg.NameWords[half:]
	}
	generator := names.NewGenerator(adjectives, nouns)
	presenceReg := presence.New(roots, generator)

	feedStore := feed.NewStore(roots.FeedFile(), cfg.FeedRetentionDays)
	inboxStore := inbox.NewStore(roots)
	sender := inbox.NewSender(inboxStore, presenceReg, feedStore, cfg.BroadcastRatePerSecond, cfg.BroadcastBurst)
	swarmStore := swarmstore.NewStore(roots)
	crewStore := crew.NewStore(roots)

	return &Mesh{
		roots:      roots,
		cfg:        cfg,
		cwd:        cwd,
		presence:   presenceReg,
		inboxStore: inboxStore,
		sender:     sender,
		feedStore:  feedStore,
		swarm:      swarmStore,
		crew:       crewStore,
		tracker:    presence.NewActivityTracker(),
	}, nil
}

// Roots exposes the resolved filesystem roots, mainly for callers (CLI,
// MCP server) that need to print diagnostics.
func (m *Mesh) Roots() layout.Roots { return m.roots }

// Config exposes the merged configuration.
func (m *Mesh) Config() config.Config { return m.cfg }

// Self returns the joined agent's name, or "" if not yet joined.
func (m *Mesh) Self() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.self
}

// requireSelf returns the joined name or a not_registered error.
func (m *Mesh) requireSelf() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.self == "" {
		return "", errs.New(errs.NotRegistered, "call join before invoking this action")
	}
	return m.self, nil
}

// Dispatch routes one action invocation to its handler. Params carries
// the action-specific fields as a loosely-typed map, mirroring the
// dynamic record shapes the original host passes tool calls through;
// field extraction happens per-handler via the small helpers in params.go.
func (m *Mesh) Dispatch(ctx context.Context, action string, params map[string]any) Result {
	switch action {
	case "", "status":
		return m.doStatus(ctx, params)
	case "join":
		return m.doJoin(ctx, params)
	case "list":
		return m.doList(ctx, params)
	case "feed":
		return m.doFeed(ctx, params)
	case "whois":
		return m.doWhois(ctx, params)
	case "set_status":
		return m.doSetStatus(ctx, params)
	case "spec":
		return m.doSpec(ctx, params)
	case "send":
		return m.doSend(ctx, params)
	case "broadcast":
		return m.doBroadcast(ctx, params)
	case "reserve":
		return m.doReserve(ctx, params)
	case "release":
		return m.doRelease(ctx, params)
	case "rename":
		return m.doRename(ctx, params)
	case "swarm":
		return m.doSwarm(ctx, params)
	case "claim":
		return m.doClaim(ctx, params)
	case "unclaim":
		return m.doUnclaim(ctx, params)
	case "complete":
		return m.doComplete(ctx, params)
	case "autoRegisterPath":
		return m.doAutoRegisterPath(ctx, params)
	default:
		if r, ok := m.dispatchCrew(ctx, action, params); ok {
			return r
		}
		r := newResult(action)
		r.Text = fmt.Sprintf("Error: unknown action %q", action)
		r.Details["error"] = string(errs.UnknownAction)
		return r
	}
}

// Close stops the flusher and inbox watcher and unregisters the joined
// presence record, if any. Safe to call on an unjoined Mesh.
func (m *Mesh) Close() error {
	m.mu.Lock()
	self := m.self
	flusher := m.flusher
	cancel := m.watchCancel
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if flusher != nil {
		flusher.Stop()
	}
	if self == "" {
		return nil
	}
	return m.presence.Unregister(self)
}

func nowUTC() time.Time { return time.Now().UTC() }
