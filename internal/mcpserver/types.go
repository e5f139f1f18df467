package mcpserver

// ActionOutput wraps a mesh.Result for every tool below: text is the
// human-readable line, details carries the same structured payload the
// CLI and the dispatcher's callers already get.
type ActionOutput struct {
	Text    string         `json:"text"`
	Details map[string]any `json:"details,omitempty"`
}

// JoinInput is the input for the pi_join tool.
type JoinInput struct {
	Name  string `json:"name,omitempty" jsonschema:"Preferred agent name"`
	Model string `json:"model,omitempty" jsonschema:"Model identifier"`
	Spec  string `json:"spec,omitempty" jsonschema:"Spec file this agent is working from"`
}

// EmptyInput is used by tools that take no parameters.
type EmptyInput struct{}

// NameInput carries a single agent name.
type NameInput struct {
	Name string `json:"name" jsonschema:"Agent name"`
}

// SendInput is the input for the pi_send tool.
type SendInput struct {
	To      string `json:"to" jsonschema:"Recipient agent name"`
	Message string `json:"message" jsonschema:"Message text"`
	ReplyTo string `json:"reply_to,omitempty" jsonschema:"ID of the message being replied to"`
}

// BroadcastInput is the input for the pi_broadcast tool.
type BroadcastInput struct {
	Message string `json:"message" jsonschema:"Message text to send to every active agent"`
}

// ReserveInput is the input for the pi_reserve tool.
type ReserveInput struct {
	Paths  []string `json:"paths" jsonschema:"File or directory paths to reserve"`
	Reason string   `json:"reason,omitempty" jsonschema:"Why these paths are reserved"`
}

// ReleaseInput is the input for the pi_release tool.
type ReleaseInput struct {
	Paths []string `json:"paths,omitempty" jsonschema:"Paths to release; omit to release everything"`
}

// SetStatusInput is the input for the pi_set_status tool.
type SetStatusInput struct {
	Message string `json:"message" jsonschema:"Free-text custom status line"`
}

// SpecInput is the input for the pi_spec tool.
type SpecInput struct {
	Spec string `json:"spec" jsonschema:"Path of the spec file this agent is working from"`
}

// FeedInput is the input for the pi_feed tool.
type FeedInput struct {
	Agent string   `json:"agent,omitempty" jsonschema:"Filter to one agent"`
	Types []string `json:"types,omitempty" jsonschema:"Filter to one or more event types"`
	Since string   `json:"since,omitempty" jsonschema:"RFC3339 lower time bound"`
	Until string   `json:"until,omitempty" jsonschema:"RFC3339 upper time bound"`
	Limit int      `json:"limit,omitempty" jsonschema:"Max events to return. Default 50"`
}

// SwarmInput is the input for the pi_swarm tool.
type SwarmInput struct {
	Spec string `json:"spec" jsonschema:"Spec path claims are tracked against"`
}

// ClaimInput is the input for the pi_claim tool.
type ClaimInput struct {
	Spec   string `json:"spec" jsonschema:"Spec path the task belongs to"`
	TaskID string `json:"task_id" jsonschema:"Task identifier within the spec"`
	Reason string `json:"reason,omitempty" jsonschema:"Why this task is being claimed"`
}

// UnclaimInput is the input for the pi_unclaim tool.
type UnclaimInput struct {
	Spec   string `json:"spec" jsonschema:"Spec path the task belongs to"`
	TaskID string `json:"task_id" jsonschema:"Task identifier within the spec"`
}

// CompleteInput is the input for the pi_complete tool.
type CompleteInput struct {
	Spec   string `json:"spec" jsonschema:"Spec path the task belongs to"`
	TaskID string `json:"task_id" jsonschema:"Task identifier within the spec"`
	Notes  string `json:"notes,omitempty" jsonschema:"Completion notes"`
}

// IDInput carries a single record ID, reused by every by-id crew tool
// (epic show/close, task show/start/unblock, checkpoint restore/delete,
// crew validate).
type IDInput struct {
	ID string `json:"id" jsonschema:"Record ID"`
}

// EpicSetSpecInput is the input for the pi_epic_set_spec tool.
type EpicSetSpecInput struct {
	ID      string `json:"id" jsonschema:"Epic ID"`
	Content string `json:"content" jsonschema:"Spec content to attach to the epic"`
}

// EpicCreateInput is the input for the pi_epic_create tool.
type EpicCreateInput struct {
	Title string `json:"title" jsonschema:"Epic title"`
}

// EpicInput scopes a crew tool to a single epic (task list/ready,
// checkpoint save).
type EpicInput struct {
	Epic string `json:"epic" jsonschema:"Epic ID"`
}

// TaskCreateInput is the input for the pi_task_create tool.
type TaskCreateInput struct {
	Epic        string   `json:"epic" jsonschema:"Epic ID the task belongs to"`
	Title       string   `json:"title" jsonschema:"Task title"`
	Description string   `json:"description,omitempty" jsonschema:"Task description"`
	DependsOn   []string `json:"depends_on,omitempty" jsonschema:"Task IDs this task depends on"`
}

// TaskDoneInput is the input for the pi_task_done tool.
type TaskDoneInput struct {
	ID      string `json:"id" jsonschema:"Task ID"`
	Summary string `json:"summary,omitempty" jsonschema:"What was done"`
}

// TaskBlockInput is the input for the pi_task_block tool.
type TaskBlockInput struct {
	ID     string `json:"id" jsonschema:"Task ID"`
	Reason string `json:"reason,omitempty" jsonschema:"Why the task is blocked"`
}

// TaskResetInput is the input for the pi_task_reset tool.
type TaskResetInput struct {
	ID      string `json:"id" jsonschema:"Task ID"`
	Cascade bool   `json:"cascade,omitempty" jsonschema:"Also reset tasks depending on this one"`
}

// PlanInput is the input for the pi_plan tool.
type PlanInput struct {
	Target string `json:"target" jsonschema:"What to scout and plan"`
	Idea   string `json:"idea,omitempty" jsonschema:"Extra context for the scout"`
}

// WorkInput is the input for the pi_work tool.
type WorkInput struct {
	Target      string `json:"target" jsonschema:"Epic ID to work"`
	Autonomous  bool   `json:"autonomous,omitempty" jsonschema:"Actually run the orchestration loop instead of reporting the ready-set"`
	Concurrency int    `json:"concurrency,omitempty" jsonschema:"Worker concurrency override"`
}

// ReviewInput is the input for the pi_review tool.
type ReviewInput struct {
	Target string `json:"target" jsonschema:"Task ID to review"`
	Type   string `json:"type,omitempty" jsonschema:"Review kind: plan or impl. Default impl"`
}
