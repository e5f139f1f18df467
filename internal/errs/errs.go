// Package errs defines the closed set of error-kind tags the action
// dispatcher surfaces in details.error. These are string
// tags carried as error values, not exceptions: internal components
// return an *Error wrapping the tag plus a human message, and the
// dispatcher copies the tag into the result's structured details while
// using the message for the "Error: ..." text line.
package errs

// Kind is one of the recognized dispatcher error tags.
type Kind string

// The closed set of dispatcher error kinds, grouped by the layer that raises them.
const (
	NotRegistered Kind = "not_registered"
	InvalidName   Kind = "invalid_name"
	NameTaken     Kind = "name_taken"
	RaceLost      Kind = "race_lost"
	SameName      Kind = "same_name"

	NoRecipients       Kind = "no_recipients"
	EmptyRecipients    Kind = "empty_recipients"
	MissingMessage     Kind = "missing_message"
	MissingRecipient   Kind = "missing_recipient"
	CannotSendToSelf   Kind = "cannot_send_to_self"
	RecipientNotFound  Kind = "recipient_not_found"
	RecipientNotActive Kind = "recipient_not_active"

	EmptyPatterns Kind = "empty_patterns"
	MissingPaths  Kind = "missing_paths"

	NoSpec      Kind = "no_spec"
	SpecMissing Kind = "spec_missing" // warning only, not a failure

	AlreadyHaveClaim Kind = "already_have_claim"
	AlreadyClaimed   Kind = "already_claimed"
	NotClaimed       Kind = "not_claimed"
	NotYourClaim     Kind = "not_your_claim"
	AlreadyCompleted Kind = "already_completed"

	MissingID      Kind = "missing_id"
	MissingTitle   Kind = "missing_title"
	MissingContent Kind = "missing_content"
	NotFound       Kind = "not_found"

	IncompleteTasks     Kind = "incomplete_tasks"
	CircularDependency  Kind = "circular_dependency"
	OrphanDependency    Kind = "orphan_dependency"

	LockTimeout     Kind = "lock_timeout"
	Cancelled       Kind = "cancelled"
	NoScouts        Kind = "no_scouts"
	NoAnalyst       Kind = "no_analyst"
	GeneratorFailed Kind = "generator_failed"
	AnalystFailed   Kind = "analyst_failed"

	UnknownAction    Kind = "unknown_action"
	UnknownOperation Kind = "unknown_operation"
)

// Error wraps a Kind with a human-readable message, satisfying the error
// interface so it can be returned and wrapped like any other Go error.
// Data optionally carries a structured payload (e.g. conflict.agent on
// already_claimed, existing.taskId on already_have_claim) that the
// dispatcher merges into Result.Details alongside the error kind.
type Error struct {
	Kind    Kind
	Message string
	Data    map[string]any
}

func (e *Error) Error() string { return e.Message }

// New constructs an *Error for the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// NewWithData constructs an *Error carrying a structured data payload
// alongside the kind and message.
func NewWithData(kind Kind, message string, data map[string]any) *Error {
	return &Error{Kind: kind, Message: message, Data: data}
}

// As extracts the Kind from err if err is an *Error. Returns ("", false)
// otherwise.
func As(err error) (Kind, bool) {
	if err == nil {
		return "", false
	}
	if ke, ok := err.(*Error); ok {
		return ke.Kind, true
	}
	return "", false
}

// DataOf extracts the structured data payload from err if err is an
// *Error carrying one. Returns (nil, false) otherwise.
func DataOf(err error) (map[string]any, bool) {
	if err == nil {
		return nil, false
	}
	if ke, ok := err.(*Error); ok && ke.Data != nil {
		return ke.Data, true
	}
	return nil, false
}
