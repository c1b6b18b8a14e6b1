package dto

import (
	"time"

	"github.com/spec-kit/hostel-complaint-service/internal/domain"
)

// WizardFormRequest carries partial form updates for a wizard session.
type WizardFormRequest struct {
	Category    *domain.ComplaintCategory `json:"category"`
	Priority    *domain.ComplaintPriority `json:"priority"`
	Title       *string                   `json:"title"`
	Description *string                   `json:"description"`
	Name        *string                   `json:"name"`
	Email       *string                   `json:"email"`
	Phone       *string                   `json:"phone"`
	RollNumber  *string                   `json:"roll_number"`
	Branch      *string                   `json:"branch"`
	Semester    *int                      `json:"semester"`
	IsAnonymous *bool                     `json:"is_anonymous"`
}

// AttachmentRequest declares one file reference for a wizard session or action.
type AttachmentRequest struct {
	FileName  string  `json:"file_name"`
	MimeType  string  `json:"mime_type"`
	SizeBytes int64   `json:"size_bytes"`
	URL       *string `json:"url"`
}

// AttachFilesRequest carries attachment metadata for the details step.
type AttachFilesRequest struct {
	Files []AttachmentRequest `json:"files"`
}

// CreateActionRequest records an event against a complaint.
type CreateActionRequest struct {
	ActionType  domain.ActionType       `json:"action_type"`
	Comment     string                  `json:"comment"`
	Recipients  []string                `json:"recipients"`
	NewStatus   *domain.ComplaintStatus `json:"new_status"`
	Attachments []AttachmentRequest     `json:"attachments"`
}

// WizardSessionResponse reflects wizard state back to the client.
type WizardSessionResponse struct {
	SessionID   string               `json:"session_id"`
	Step        int                  `json:"step"`
	Form        WizardFormResponse   `json:"form"`
	Attachments []AttachmentResponse `json:"attachments"`
	ExpiresAt   time.Time            `json:"expires_at"`
}

// WizardFormResponse mirrors accumulated form state.
type WizardFormResponse struct {
	Category    domain.ComplaintCategory `json:"category"`
	Priority    domain.ComplaintPriority `json:"priority"`
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Name        string                   `json:"name"`
	Email       string                   `json:"email"`
	Phone       string                   `json:"phone"`
	RollNumber  string                   `json:"roll_number"`
	Branch      string                   `json:"branch"`
	Semester    int                      `json:"semester"`
	IsAnonymous bool                     `json:"is_anonymous"`
}

// ComplaintSummary response for list views.
type ComplaintSummary struct {
	ID            string                   `json:"id"`
	Title         string                   `json:"title"`
	Category      domain.ComplaintCategory `json:"category"`
	Priority      domain.ComplaintPriority `json:"priority"`
	Status        domain.ComplaintStatus   `json:"status"`
	DisplayStatus DisplayStatusResponse    `json:"display_status"`
	StudentName   string                   `json:"student_name,omitempty"`
	ActionCount   int                      `json:"action_count"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
	SLADeadline   time.Time                `json:"sla_deadline"`
}

// DisplayStatusResponse is the derived badge for a complaint.
type DisplayStatusResponse struct {
	Label    string `json:"label"`
	Category string `json:"category"`
}

// ComplaintDetailResponse provides full complaint info.
type ComplaintDetailResponse struct {
	ID            string                   `json:"id"`
	Title         string                   `json:"title"`
	Description   string                   `json:"description"`
	Category      domain.ComplaintCategory `json:"category"`
	Priority      domain.ComplaintPriority `json:"priority"`
	Status        domain.ComplaintStatus   `json:"status"`
	DisplayStatus DisplayStatusResponse    `json:"display_status"`
	StudentName   string                   `json:"student_name,omitempty"`
	StudentEmail  string                   `json:"student_email,omitempty"`
	StudentPhone  *string                  `json:"student_phone,omitempty"`
	RollNumber    string                   `json:"roll_number,omitempty"`
	Branch        string                   `json:"branch,omitempty"`
	Semester      int                      `json:"semester,omitempty"`
	IsAnonymous   bool                     `json:"is_anonymous"`
	ActionCount   int                      `json:"action_count"`
	ForwardedTo   []string                 `json:"forwarded_to,omitempty"`
	Attachments   []AttachmentResponse     `json:"attachments"`
	Actions       []ActionResponse         `json:"actions"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
	SLADeadline   time.Time                `json:"sla_deadline"`
	ResolvedAt    *time.Time               `json:"resolved_at,omitempty"`
}

// ActionResponse is one rendered history entry. Position is 1-based;
// HasNext signals whether a connecting marker follows the entry.
type ActionResponse struct {
	ID          string               `json:"id"`
	ActorName   string               `json:"actor_name"`
	ActorRole   string               `json:"actor_role"`
	ActionType  domain.ActionType    `json:"action_type"`
	Comment     string               `json:"comment"`
	Timestamp   time.Time            `json:"timestamp"`
	Position    int                  `json:"position"`
	HasNext     bool                 `json:"has_next"`
	Attachments []AttachmentResponse `json:"attachments,omitempty"`
}

// AttachmentResponse mirrors stored attachment metadata.
type AttachmentResponse struct {
	ID        string  `json:"id"`
	FileName  string  `json:"file_name"`
	MimeType  string  `json:"mime_type"`
	SizeBytes int64   `json:"size_bytes"`
	URL       *string `json:"url,omitempty"`
}
