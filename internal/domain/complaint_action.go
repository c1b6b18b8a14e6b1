package domain

import "time"

// ActionType captures what kind of event was recorded against a complaint.
type ActionType string

const (
	ActionTypeComment      ActionType = "comment"
	ActionTypeForward      ActionType = "forward"
	ActionTypeStatusChange ActionType = "status_change"
	ActionTypeResolve      ActionType = "resolve"
)

// ComplaintAction is one immutable entry in a complaint's history log.
// The log is append-only; entries are rendered ascending by timestamp.
type ComplaintAction struct {
	ID          string
	ComplaintID string
	ActorName   string
	ActorRole   string
	ActionType  ActionType
	Comment     string
	Timestamp   time.Time
	Attachments []ComplaintAttachment
}
