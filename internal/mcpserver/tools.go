package mcpserver

import (
	"context"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_join",
		Description: "Register this process in the mesh, starting presence heartbeats and inbox delivery",
	}, s.handleJoin)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_status",
		Description: "Show this agent's own presence record",
	}, s.handleStatus)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_list",
		Description: "List every active agent in the mesh",
	}, s.handleList)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_whois",
		Description: "Show one agent's presence record by name",
	}, s.handleWhois)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_send",
		Description: "Send a direct message to another agent's inbox",
	}, s.handleSend)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_broadcast",
		Description: "Send a rate-limited message to every active agent",
	}, s.handleBroadcast)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_reserve",
		Description: "Reserve file paths against concurrent edits by other agents",
	}, s.handleReserve)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_release",
		Description: "Release file reservations held by this agent",
	}, s.handleRelease)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_rename",
		Description: "Change this agent's display name",
	}, s.handleRename)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_set_status",
		Description: "Set a free-text custom status line",
	}, s.handleSetStatus)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_spec",
		Description: "Record the spec file this agent is currently working from",
	}, s.handleSpec)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_feed",
		Description: "Query the activity feed by agent, type, and time range",
	}, s.handleFeed)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_swarm",
		Description: "List outstanding task claims against a spec",
	}, s.handleSwarm)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_claim",
		Description: "Claim a task within a spec for this agent",
	}, s.handleClaim)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_unclaim",
		Description: "Give up a claimed task without completing it",
	}, s.handleUnclaim)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_complete",
		Description: "Mark a claimed task complete",
	}, s.handleComplete)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_epic_create",
		Description: "Create a new epic",
	}, s.handleEpicCreate)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_epic_show",
		Description: "Show one epic by ID",
	}, s.handleEpicShow)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_epic_list",
		Description: "List every epic",
	}, s.handleEpicList)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_epic_close",
		Description: "Close an epic once every task is done",
	}, s.handleEpicClose)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_epic_set_spec",
		Description: "Attach spec content to an epic",
	}, s.handleEpicSetSpec)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_task_create",
		Description: "Create a task within an epic, optionally with dependencies",
	}, s.handleTaskCreate)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_task_show",
		Description: "Show one task by ID",
	}, s.handleTaskShow)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_task_list",
		Description: "List every task within an epic",
	}, s.handleTaskList)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_task_start",
		Description: "Start a task as this agent",
	}, s.handleTaskStart)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_task_done",
		Description: "Mark a task complete with an optional summary",
	}, s.handleTaskDone)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_task_block",
		Description: "Block a task with a reason",
	}, s.handleTaskBlock)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_task_unblock",
		Description: "Unblock a previously blocked task",
	}, s.handleTaskUnblock)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_task_ready",
		Description: "List tasks within an epic whose dependencies are satisfied",
	}, s.handleTaskReady)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_task_reset",
		Description: "Reset a task back to pending, optionally cascading to dependents",
	}, s.handleTaskReset)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_checkpoint_save",
		Description: "Save a checkpoint snapshot of an epic and its tasks",
	}, s.handleCheckpointSave)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_checkpoint_restore",
		Description: "Restore an epic and its tasks from a checkpoint, replacing current state",
	}, s.handleCheckpointRestore)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_checkpoint_delete",
		Description: "Delete a checkpoint",
	}, s.handleCheckpointDelete)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_checkpoint_list",
		Description: "List every saved checkpoint",
	}, s.handleCheckpointList)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_crew_status",
		Description: "Summarize crew-wide epic activity",
	}, s.handleCrewStatus)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_crew_validate",
		Description: "Validate an epic's task graph for cycles and dangling dependencies",
	}, s.handleCrewValidate)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_crew_agents",
		Description: "List agents that have worked on crew tasks",
	}, s.handleCrewAgents)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_crew_install",
		Description: "Mark crew housekeeping installed for this project",
	}, s.handleCrewInstall)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_crew_uninstall",
		Description: "Mark crew housekeeping uninstalled for this project",
	}, s.handleCrewUninstall)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_crew_cleanup",
		Description: "Remove stale worker artifact directories older than the configured retention",
	}, s.handleCrewCleanup)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_plan",
		Description: "Scout a target and turn the findings into an epic and tasks",
	}, s.handlePlan)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_work",
		Description: "Report or drive an epic's ready-set of tasks through the orchestration loop",
	}, s.handleWork)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "pi_review",
		Description: "Run a one-off review pass against a task and report the verdict",
	}, s.handleReview)
}

func (s *Server) handleJoin(ctx context.Context, req *gomcp.CallToolRequest, in JoinInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "join", map[string]any{"name": in.Name, "model": in.Model, "spec": in.Spec})
	return nil, result(r), nil
}

func (s *Server) handleStatus(ctx context.Context, req *gomcp.CallToolRequest, in EmptyInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "status", nil)
	return nil, result(r), nil
}

func (s *Server) handleList(ctx context.Context, req *gomcp.CallToolRequest, in EmptyInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "list", nil)
	return nil, result(r), nil
}

func (s *Server) handleWhois(ctx context.Context, req *gomcp.CallToolRequest, in NameInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "whois", map[string]any{"name": in.Name})
	return nil, result(r), nil
}

func (s *Server) handleSend(ctx context.Context, req *gomcp.CallToolRequest, in SendInput) (*gomcp.CallToolResult, ActionOutput, error) {
	params := map[string]any{"to": in.To, "message": in.Message}
	if in.ReplyTo != "" {
		params["replyTo"] = in.ReplyTo
	}
	r := s.mesh.Dispatch(ctx, "send", params)
	return nil, result(r), nil
}

func (s *Server) handleBroadcast(ctx context.Context, req *gomcp.CallToolRequest, in BroadcastInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "broadcast", map[string]any{"message": in.Message})
	return nil, result(r), nil
}

func (s *Server) handleReserve(ctx context.Context, req *gomcp.CallToolRequest, in ReserveInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "reserve", map[string]any{"paths": in.Paths, "reason": in.Reason})
	return nil, result(r), nil
}

func (s *Server) handleRelease(ctx context.Context, req *gomcp.CallToolRequest, in ReleaseInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "release", map[string]any{"paths": in.Paths})
	return nil, result(r), nil
}

func (s *Server) handleRename(ctx context.Context, req *gomcp.CallToolRequest, in NameInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "rename", map[string]any{"name": in.Name})
	return nil, result(r), nil
}

func (s *Server) handleSetStatus(ctx context.Context, req *gomcp.CallToolRequest, in SetStatusInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "set_status", map[string]any{"message": in.Message})
	return nil, result(r), nil
}

func (s *Server) handleSpec(ctx context.Context, req *gomcp.CallToolRequest, in SpecInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "spec", map[string]any{"spec": in.Spec})
	return nil, result(r), nil
}

func (s *Server) handleFeed(ctx context.Context, req *gomcp.CallToolRequest, in FeedInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "feed", map[string]any{
		"agent": in.Agent, "types": in.Types, "since": in.Since, "until": in.Until, "limit": in.Limit,
	})
	return nil, result(r), nil
}

func (s *Server) handleSwarm(ctx context.Context, req *gomcp.CallToolRequest, in SwarmInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "swarm", map[string]any{"spec": in.Spec})
	return nil, result(r), nil
}

func (s *Server) handleClaim(ctx context.Context, req *gomcp.CallToolRequest, in ClaimInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "claim", map[string]any{"spec": in.Spec, "taskId": in.TaskID, "reason": in.Reason})
	return nil, result(r), nil
}

func (s *Server) handleUnclaim(ctx context.Context, req *gomcp.CallToolRequest, in UnclaimInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "unclaim", map[string]any{"spec": in.Spec, "taskId": in.TaskID})
	return nil, result(r), nil
}

func (s *Server) handleComplete(ctx context.Context, req *gomcp.CallToolRequest, in CompleteInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "complete", map[string]any{"spec": in.Spec, "taskId": in.TaskID, "notes": in.Notes})
	return nil, result(r), nil
}

func (s *Server) handleEpicCreate(ctx context.Context, req *gomcp.CallToolRequest, in EpicCreateInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "epic.create", map[string]any{"title": in.Title})
	return nil, result(r), nil
}

func (s *Server) handleEpicShow(ctx context.Context, req *gomcp.CallToolRequest, in IDInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "epic.show", map[string]any{"id": in.ID})
	return nil, result(r), nil
}

func (s *Server) handleEpicList(ctx context.Context, req *gomcp.CallToolRequest, in EmptyInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "epic.list", nil)
	return nil, result(r), nil
}

func (s *Server) handleEpicClose(ctx context.Context, req *gomcp.CallToolRequest, in IDInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "epic.close", map[string]any{"id": in.ID})
	return nil, result(r), nil
}

func (s *Server) handleEpicSetSpec(ctx context.Context, req *gomcp.CallToolRequest, in EpicSetSpecInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "epic.set_spec", map[string]any{"id": in.ID, "content": in.Content})
	return nil, result(r), nil
}

func (s *Server) handleTaskCreate(ctx context.Context, req *gomcp.CallToolRequest, in TaskCreateInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "task.create", map[string]any{
		"epic": in.Epic, "title": in.Title, "description": in.Description, "dependsOn": in.DependsOn,
	})
	return nil, result(r), nil
}

func (s *Server) handleTaskShow(ctx context.Context, req *gomcp.CallToolRequest, in IDInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "task.show", map[string]any{"id": in.ID})
	return nil, result(r), nil
}

func (s *Server) handleTaskList(ctx context.Context, req *gomcp.CallToolRequest, in EpicInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "task.list", map[string]any{"epic": in.Epic})
	return nil, result(r), nil
}

func (s *Server) handleTaskStart(ctx context.Context, req *gomcp.CallToolRequest, in IDInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "task.start", map[string]any{"id": in.ID})
	return nil, result(r), nil
}

func (s *Server) handleTaskDone(ctx context.Context, req *gomcp.CallToolRequest, in TaskDoneInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "task.done", map[string]any{"id": in.ID, "summary": in.Summary})
	return nil, result(r), nil
}

func (s *Server) handleTaskBlock(ctx context.Context, req *gomcp.CallToolRequest, in TaskBlockInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "task.block", map[string]any{"id": in.ID, "reason": in.Reason})
	return nil, result(r), nil
}

func (s *Server) handleTaskUnblock(ctx context.Context, req *gomcp.CallToolRequest, in IDInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "task.unblock", map[string]any{"id": in.ID})
	return nil, result(r), nil
}

func (s *Server) handleTaskReady(ctx context.Context, req *gomcp.CallToolRequest, in EpicInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "task.ready", map[string]any{"epic": in.Epic})
	return nil, result(r), nil
}

func (s *Server) handleTaskReset(ctx context.Context, req *gomcp.CallToolRequest, in TaskResetInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "task.reset", map[string]any{"id": in.ID, "cascade": in.Cascade})
	return nil, result(r), nil
}

func (s *Server) handleCheckpointSave(ctx context.Context, req *gomcp.CallToolRequest, in EpicInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "checkpoint.save", map[string]any{"epic": in.Epic})
	return nil, result(r), nil
}

func (s *Server) handleCheckpointRestore(ctx context.Context, req *gomcp.CallToolRequest, in IDInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "checkpoint.restore", map[string]any{"id": in.ID})
	return nil, result(r), nil
}

func (s *Server) handleCheckpointDelete(ctx context.Context, req *gomcp.CallToolRequest, in IDInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "checkpoint.delete", map[string]any{"id": in.ID})
	return nil, result(r), nil
}

func (s *Server) handleCheckpointList(ctx context.Context, req *gomcp.CallToolRequest, in EmptyInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "checkpoint.list", nil)
	return nil, result(r), nil
}

func (s *Server) handleCrewStatus(ctx context.Context, req *gomcp.CallToolRequest, in EmptyInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "crew.status", nil)
	return nil, result(r), nil
}

func (s *Server) handleCrewValidate(ctx context.Context, req *gomcp.CallToolRequest, in IDInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "crew.validate", map[string]any{"id": in.ID})
	return nil, result(r), nil
}

func (s *Server) handleCrewAgents(ctx context.Context, req *gomcp.CallToolRequest, in EmptyInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "crew.agents", nil)
	return nil, result(r), nil
}

func (s *Server) handleCrewInstall(ctx context.Context, req *gomcp.CallToolRequest, in EmptyInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "crew.install", nil)
	return nil, result(r), nil
}

func (s *Server) handleCrewUninstall(ctx context.Context, req *gomcp.CallToolRequest, in EmptyInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "crew.uninstall", nil)
	return nil, result(r), nil
}

func (s *Server) handleCrewCleanup(ctx context.Context, req *gomcp.CallToolRequest, in EmptyInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "crew.cleanup", nil)
	return nil, result(r), nil
}

func (s *Server) handlePlan(ctx context.Context, req *gomcp.CallToolRequest, in PlanInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "plan", map[string]any{"target": in.Target, "idea": in.Idea})
	return nil, result(r), nil
}

func (s *Server) handleWork(ctx context.Context, req *gomcp.CallToolRequest, in WorkInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "work", map[string]any{
		"target": in.Target, "autonomous": in.Autonomous, "concurrency": in.Concurrency,
	})
	return nil, result(r), nil
}

func (s *Server) handleReview(ctx context.Context, req *gomcp.CallToolRequest, in ReviewInput) (*gomcp.CallToolResult, ActionOutput, error) {
	r := s.mesh.Dispatch(ctx, "review", map[string]any{"target": in.Target, "type": in.Type})
	return nil, result(r), nil
}
