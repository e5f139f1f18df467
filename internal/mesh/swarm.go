package mesh

import (
	"context"
	"fmt"

	"github.com/pi-agent/pi-messenger/internal/errs"
	"github.com/pi-agent/pi-messenger/internal/feed"
	"github.com/pi-agent/pi-messenger/internal/swarmstore"
)

// doSwarm reports the current claims for a spec: who holds what. Completed
// tasks are not included in the result.
func (m *Mesh) doSwarm(ctx context.Context, params map[string]any) Result {
	r := newResult("swarm")
	specPath := paramString(params, "spec")
	if specPath == "" {
		return errResult("swarm", errs.New(errs.NoSpec, "spec is required"))
	}
	claims, err := m.swarm.LoadClaimsPruned()
	if err != nil {
		return errResult("swarm", err)
	}
	tasks := claims[specPath]
	r.Details["spec"] = specPath
	r.Details["claims"] = tasks
	r.Text = fmt.Sprintf("%d task(s) claimed under %s.", len(tasks), specPath)
	return r
}

func (m *Mesh) doClaim(ctx context.Context, params map[string]any) Result {
	r := newResult("claim")
	self, err := m.requireSelf()
	if err != nil {
		return errResult("claim", err)
	}
	specPath := paramString(params, "spec")
	taskID := paramString(params, "taskId")
	if specPath == "" {
		return errResult("claim", errs.New(errs.NoSpec, "spec is required"))
	}
	if taskID == "" {
		return errResult("claim", errs.New(errs.MissingID, "taskId is required"))
	}

	rec, ok := m.presence.Get(self)
	if !ok {
		return errResult("claim", errs.New(errs.NotRegistered, "presence record missing"))
	}

	claim, err := m.swarm.Claim(ctx, swarmstore.ClaimRequest{
		SpecPath:  specPath,
		TaskID:    taskID,
		Agent:     self,
		SessionID: rec.SessionID,
		PID:       rec.PID,
		Reason:    paramString(params, "reason"),
	})
	if err != nil {
		return errResult("claim", err)
	}
	_ = m.feedStore.Record(self, feed.TypeTaskStart, taskID, "")

	r.Text = fmt.Sprintf("Claimed %s/%s.", specPath, taskID)
	r.Details["claim"] = claim
	return r
}

func (m *Mesh) doUnclaim(ctx context.Context, params map[string]any) Result {
	r := newResult("unclaim")
	self, err := m.requireSelf()
	if err != nil {
		return errResult("unclaim", err)
	}
	specPath := paramString(params, "spec")
	taskID := paramString(params, "taskId")
	if specPath == "" {
		return errResult("unclaim", errs.New(errs.NoSpec, "spec is required"))
	}
	if taskID == "" {
		return errResult("unclaim", errs.New(errs.MissingID, "taskId is required"))
	}
	if err := m.swarm.Unclaim(ctx, specPath, taskID, self); err != nil {
		return errResult("unclaim", err)
	}
	_ = m.feedStore.Record(self, feed.TypeTaskReset, taskID, "")
	r.Text = fmt.Sprintf("Released claim on %s/%s.", specPath, taskID)
	return r
}

func (m *Mesh) doComplete(ctx context.Context, params map[string]any) Result {
	r := newResult("complete")
	self, err := m.requireSelf()
	if err != nil {
		return errResult("complete", err)
	}
	specPath := paramString(params, "spec")
	taskID := paramString(params, "taskId")
	if specPath == "" {
		return errResult("complete", errs.New(errs.NoSpec, "spec is required"))
	}
	if taskID == "" {
		return errResult("complete", errs.New(errs.MissingID, "taskId is required"))
	}
	completion, err := m.swarm.Complete(ctx, swarmstore.CompleteRequest{
		SpecPath: specPath,
		TaskID:   taskID,
		Agent:    self,
		Notes:    paramString(params, "notes"),
	})
	if err != nil {
		return errResult("complete", err)
	}
	_ = m.feedStore.Record(self, feed.TypeTaskDone, taskID, completion.Notes)

	r.Text = fmt.Sprintf("Completed %s/%s.", specPath, taskID)
	r.Details["completion"] = completion
	return r
}
