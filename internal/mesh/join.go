package mesh

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/pi-agent/pi-messenger/internal/errs"
	"github.com/pi-agent/pi-messenger/internal/feed"
	"github.com/pi-agent/pi-messenger/internal/inbox"
	"github.com/pi-agent/pi-messenger/internal/presence"
)

// doJoin registers the process in the presence registry, starts the
// activity flusher and inbox watcher, and remembers the assigned name for
// every subsequent action on this Mesh.
func (m *Mesh) doJoin(ctx context.Context, params map[string]any) Result {
	r := newResult("join")

	m.mu.Lock()
	if m.self != "" {
		m.mu.Unlock()
		r.Text = fmt.Sprintf("Already joined as %s.", m.self)
		r.Details["name"] = m.self
		return r
	}
	m.mu.Unlock()

	preferred := os.Getenv("PI_AGENT_NAME")
	if preferred == "" {
		preferred = paramString(params, "name")
	}

	rec, err := m.presence.Join(presence.JoinRequest{
		PreferredName: preferred,
		Cwd:           m.cwd,
		Model:         paramString(params, "model"),
		GitBranch:     currentBranch(m.cwd),
		Spec:          paramString(params, "spec"),
		IsHuman:       isHumanSession(),
		SessionID:     uuid.NewString(),
	})
	if err != nil {
		return errResult("join", err)
	}

	m.mu.Lock()
	m.self = rec.Name
	m.sessID = rec.SessionID
	m.mu.Unlock()

	m.flusher = presence.NewFlusher(m.presence, rec.Name)
	go m.flusher.Run(ctx, m.currentRecord)

	registrationContext, _, senderDetails := m.cfg.ContextFlags()
	enrich := m.enrichSender
	if !senderDetails {
		enrich = nil
	}
	m.drainer = inbox.NewDrainer(m.inboxStore, rec.Name, m.deliverToHost, enrich)
	watchCtx, cancel := context.WithCancel(context.Background())
	m.watchCancel = cancel
	m.watcher = inbox.NewWatcher(m.roots.InboxDir(rec.Name), m.drainer)
	go m.watcher.Run(watchCtx)

	_ = m.feedStore.Record(rec.Name, feed.TypeJoin, "", "")
	log.Printf("mesh: %s joined (pid %d)", rec.Name, rec.PID)

	r.Text = fmt.Sprintf("Joined as %s.", rec.Name)
	r.Details["name"] = rec.Name
	r.Details["cwd"] = rec.Cwd
	if registrationContext {
		peers := m.presence.GetActiveAgents(presence.DiscoverOptions{ScopeToFolder: boolOr(m.cfg.ScopeToFolder, false), CurrentCwd: m.cwd})
		r.Details["peers"] = peers
		r.Details["config"] = m.cfg
	}
	return r
}

// deliverToHost logs a delivered message and records it to the feed; the
// CLI/MCP surfaces read the feed and drainer history for display rather
// than this callback doing any presentation work itself. When replyHint is
// enabled, unsuppressed deliveries get a logged hint on how to reply.
func (m *Mesh) deliverToHost(d inbox.Delivery) {
	m.mu.Lock()
	self := m.self
	m.mu.Unlock()
	_ = m.feedStore.Record(self, feed.TypeMessage, d.Message.From, previewOf(d.Message.Text))
	if d.Note != "" {
		log.Printf("mesh: %s", d.Note)
	}
	if _, replyHint, _ := m.cfg.ContextFlags(); replyHint && !d.SuppressWakeup {
		log.Printf("mesh: reply with send --to %s", d.Message.From)
	}
}

// enrichSender looks up a sender's cwd/model for first-contact delivery
// notices.
func (m *Mesh) enrichSender(sender string) (cwd, model string, ok bool) {
	rec, found := m.presence.Get(sender)
	if !found {
		return "", "", false
	}
	return rec.Cwd, rec.Model, true
}

func previewOf(text string) string {
	const max = 80
	if len(text) <= max {
		return text
	}
	return text[:max] + "…"
}

// currentRecord rebuilds the live presence record from current tracker
// state, called by the flusher on each debounced/heartbeat write.
func (m *Mesh) currentRecord() presence.Record {
	m.mu.Lock()
	self := m.self
	m.mu.Unlock()
	rec, ok := m.presence.Get(self)
	if !ok {
		return presence.Record{Name: self}
	}
	rec.Activity.CurrentActivity = m.tracker.AutoStatus(nowUTC(), rec.StartedAt, rec.Activity.CurrentActivity)
	return rec
}

func (m *Mesh) doStatus(ctx context.Context, params map[string]any) Result {
	r := newResult("status")
	m.mu.Lock()
	self := m.self
	m.mu.Unlock()
	if self == "" {
		r.Text = "Not joined."
		return r
	}
	rec, ok := m.presence.Get(self)
	if !ok {
		return errResult("status", errs.New(errs.NotRegistered, "presence record missing"))
	}
	peers := m.presence.GetActiveAgents(presence.DiscoverOptions{ScopeToFolder: boolOr(m.cfg.ScopeToFolder, false), CurrentCwd: m.cwd})
	tier := presence.ComputeTier(nowUTC(), rec.Activity.LastActivityAt, len(rec.Reservations) > 0, m.cfg.StuckThreshold(presence.DefaultStuckThreshold))

	r.Text = fmt.Sprintf("%s — %d peer(s) active, status: %s", self, len(peers)-1, tier)
	r.Details["name"] = self
	r.Details["peers"] = len(peers) - 1
	r.Details["tier"] = string(tier)
	return r
}

func (m *Mesh) doList(ctx context.Context, params map[string]any) Result {
	r := newResult("list")
	peers := m.presence.GetActiveAgents(presence.DiscoverOptions{ScopeToFolder: boolOr(m.cfg.ScopeToFolder, false), CurrentCwd: m.cwd})

	byCwd := map[string][]string{}
	for _, p := range peers {
		byCwd[p.Cwd] = append(byCwd[p.Cwd], p.Name)
	}
	r.Text = fmt.Sprintf("%d active agent(s).", len(peers))
	r.Details["agents"] = peers
	r.Details["byCwd"] = byCwd
	return r
}

func (m *Mesh) doWhois(ctx context.Context, params map[string]any) Result {
	r := newResult("whois")
	name := paramString(params, "name")
	if name == "" {
		return errResult("whois", errs.New(errs.MissingID, "name is required"))
	}
	rec, ok := m.presence.Get(name)
	if !ok || !presence.IsProcessAlive(rec.PID) {
		return errResult("whois", errs.New(errs.RecipientNotFound, fmt.Sprintf("agent %q not found", name)))
	}
	r.Text = fmt.Sprintf("%s: %s, cwd %s", rec.Name, rec.Model, rec.Cwd)
	r.Details["agent"] = rec
	return r
}

func (m *Mesh) doSetStatus(ctx context.Context, params map[string]any) Result {
	r := newResult("set_status")
	self, err := m.requireSelf()
	if err != nil {
		return errResult("set_status", err)
	}
	rec, ok := m.presence.Get(self)
	if !ok {
		return errResult("set_status", errs.New(errs.NotRegistered, "presence record missing"))
	}
	rec.CustomStatus = paramString(params, "message")
	if err := m.presence.Save(rec); err != nil {
		return errResult("set_status", err)
	}
	if rec.CustomStatus == "" {
		r.Text = "Status cleared."
	} else {
		r.Text = fmt.Sprintf("Status set to %q.", rec.CustomStatus)
	}
	return r
}

func (m *Mesh) doSpec(ctx context.Context, params map[string]any) Result {
	r := newResult("spec")
	self, err := m.requireSelf()
	if err != nil {
		return errResult("spec", err)
	}
	spec := paramString(params, "spec")
	if spec == "" {
		return errResult("spec", errs.New(errs.NoSpec, "spec is required"))
	}
	rec, ok := m.presence.Get(self)
	if !ok {
		return errResult("spec", errs.New(errs.NotRegistered, "presence record missing"))
	}
	rec.Spec = spec
	if err := m.presence.Save(rec); err != nil {
		return errResult("spec", err)
	}
	r.Text = fmt.Sprintf("Working spec set to %s.", spec)
	return r
}

func (m *Mesh) doRename(ctx context.Context, params map[string]any) Result {
	r := newResult("rename")
	self, err := m.requireSelf()
	if err != nil {
		return errResult("rename", err)
	}
	newName := paramString(params, "name")
	if newName == "" {
		return errResult("rename", errs.New(errs.MissingID, "name is required"))
	}
	rec, err := m.presence.Rename(ctx, self, newName)
	if err != nil {
		return errResult("rename", err)
	}
	m.mu.Lock()
	m.self = rec.Name
	m.mu.Unlock()
	r.Text = fmt.Sprintf("Renamed to %s.", rec.Name)
	r.Details["name"] = rec.Name
	return r
}

// doAutoRegisterPath manages the auto-join path list; it is a read/modify
// surface over this Mesh's in-memory AutoRegisterPaths, not a presence
// operation. Changes are not written to any config file.
func (m *Mesh) doAutoRegisterPath(ctx context.Context, params map[string]any) Result {
	r := newResult("autoRegisterPath")
	op := paramString(params, "autoRegisterPath")
	switch op {
	case "list":
		r.Details["paths"] = m.cfg.AutoRegisterPaths
		r.Text = fmt.Sprintf("%d auto-register path(s).", len(m.cfg.AutoRegisterPaths))
	case "add":
		p := paramString(params, "path")
		if p == "" {
			return errResult("autoRegisterPath", errs.New(errs.MissingPaths, "path is required"))
		}
		m.cfg.AutoRegisterPaths = append(m.cfg.AutoRegisterPaths, p)
		r.Text = fmt.Sprintf("Added %s to auto-register paths.", p)
	case "remove":
		p := paramString(params, "path")
		kept := m.cfg.AutoRegisterPaths[:0]
		for _, existing := range m.cfg.AutoRegisterPaths {
			if existing != p {
				kept = append(kept, existing)
			}
		}
		m.cfg.AutoRegisterPaths = kept
		r.Text = fmt.Sprintf("Removed %s from auto-register paths.", p)
	default:
		return errResult("autoRegisterPath", errs.New(errs.UnknownOperation, fmt.Sprintf("unknown autoRegisterPath op %q", op)))
	}
	return r
}

// currentBranch shells out for the checked-out branch name, best effort.
func currentBranch(dir string) string {
	cmd := exec.Command("git", "-C", dir, "rev-parse", "--abbrev-ref", "HEAD")
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// isHumanSession defaults isHuman true when stdin is an interactive
// terminal, the same signal CLIs use to choose interactive-vs-piped
// behavior.
func isHumanSession() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
