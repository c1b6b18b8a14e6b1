package events

import (
	"time"

	"github.com/spec-kit/hostel-complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintCreated   EventType = "complaint_created"
	EventActionAppended     EventType = "complaint_action_appended"
	EventComplaintForwarded EventType = "complaint_forwarded"
	EventComplaintResolved  EventType = "complaint_resolved"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type      domain.SubjectType `json:"type"`
	StudentID *string            `json:"student_id,omitempty"`
	AdminID   *string            `json:"admin_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ComplaintID string      `json:"complaint_id"`
	Actor       Actor       `json:"actor"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// ComplaintCreatedPayload payload.
type ComplaintCreatedPayload struct {
	Category    domain.ComplaintCategory `json:"category"`
	Priority    domain.ComplaintPriority `json:"priority"`
	Title       string                   `json:"title"`
	IsAnonymous bool                     `json:"is_anonymous"`
}

// ActionAppendedPayload payload.
type ActionAppendedPayload struct {
	ActionID       string            `json:"action_id"`
	ActionType     domain.ActionType `json:"action_type"`
	ActorName      string            `json:"actor_name"`
	ActorRole      string            `json:"actor_role"`
	CommentPreview string            `json:"comment_preview"`
	ActionCount    int               `json:"action_count"`
}

// ComplaintForwardedPayload payload.
type ComplaintForwardedPayload struct {
	Recipients []string `json:"recipients"`
}

// ComplaintResolvedPayload payload.
type ComplaintResolvedPayload struct {
	ResolvedAt time.Time `json:"resolved_at"`
}
