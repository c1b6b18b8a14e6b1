package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hostel-complaint-service/internal/domain"
	"github.com/spec-kit/hostel-complaint-service/internal/events"
	"github.com/spec-kit/hostel-complaint-service/internal/repository"
	apperrors "github.com/spec-kit/hostel-complaint-service/pkg/util"
)

// ComplaintService coordinates the complaint lifecycle: creation, the
// append-only action log, and list/detail views for both roles.
type ComplaintService struct {
	complaints  repository.ComplaintRepository
	actions     repository.ActionRepository
	attachments repository.AttachmentRepository
	dispatcher  events.Dispatcher
	idSource    func() int
	idRetries   int
}

// ComplaintDependencies bundles repositories for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo  repository.ComplaintRepository
	ActionRepo     repository.ActionRepository
	AttachmentRepo repository.AttachmentRepository
	Dispatcher     events.Dispatcher
	// IDSource supplies candidate complaint numbers; defaults to a
	// uniform draw over [0, 100000).
	IDSource  func() int
	IDRetries int
}

// ComplaintCreateInput describes the accumulated wizard state handed over
// on submit.
type ComplaintCreateInput struct {
	Title        string
	Description  string
	Category     domain.ComplaintCategory
	Priority     domain.ComplaintPriority
	StudentID    string
	StudentName  string
	StudentEmail string
	StudentPhone *string
	RollNumber   string
	Branch       string
	Semester     int
	IsAnonymous  bool
	Attachments  []AttachmentInput
}

// ActionInput describes one event to record against a complaint.
type ActionInput struct {
	ActorName   string
	ActorRole   string
	ActionType  domain.ActionType
	Comment     string
	Recipients  []string
	NewStatus   *domain.ComplaintStatus
	Attachments []AttachmentInput
}

// AttachmentInput defines attachment metadata.
type AttachmentInput struct {
	FileName  string
	MimeType  string
	SizeBytes int64
	URL       *string
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	idSource := deps.IDSource
	if idSource == nil {
		idSource = func() int { return rand.Intn(100000) }
	}
	retries := deps.IDRetries
	if retries <= 0 {
		retries = 10
	}
	return &ComplaintService{
		complaints:  deps.ComplaintRepo,
		actions:     deps.ActionRepo,
		attachments: deps.AttachmentRepo,
		dispatcher:  deps.Dispatcher,
		idSource:    idSource,
		idRetries:   retries,
	}
}

// CreateComplaint persists a new complaint in state pending with an empty
// action log. The identifier keeps the external COMP-NNNNN contract; a
// collision against the active collection is retried internally and never
// surfaced to the caller.
func (s *ComplaintService) CreateComplaint(ctx context.Context, input ComplaintCreateInput) (*domain.Complaint, error) {
	id, err := s.mintComplaintID(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	complaint := &domain.Complaint{
		ID:           id,
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Category:     input.Category,
		Priority:     input.Priority,
		StudentID:    input.StudentID,
		StudentName:  input.StudentName,
		StudentEmail: input.StudentEmail,
		StudentPhone: input.StudentPhone,
		RollNumber:   input.RollNumber,
		Branch:       input.Branch,
		Semester:     input.Semester,
		Status:       domain.ComplaintStatusPending,
		IsAnonymous:  input.IsAnonymous,
		ActionCount:  0,
		ForwardedTo:  []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
		SLADeadline:  now.Add(domain.SLAWindow),
	}

	if complaint.Priority == "" {
		complaint.Priority = domain.ComplaintPriorityMedium
	}

	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range input.Attachments {
		record := &domain.ComplaintAttachment{
			FileName:  input.Attachments[i].FileName,
			MimeType:  input.Attachments[i].MimeType,
			SizeBytes: input.Attachments[i].SizeBytes,
			URL:       input.Attachments[i].URL,
		}
		if err := s.attachments.CreateForComplaint(ctx, complaint.ID, record); err != nil {
			return nil, apperrors.MapError(err)
		}
		complaint.Attachments = append(complaint.Attachments, *record)
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintCreated,
		ComplaintID: complaint.ID,
		Actor:       StudentActor(complaint.StudentID),
		Payload: events.ComplaintCreatedPayload{
			Category:    complaint.Category,
			Priority:    complaint.Priority,
			Title:       complaint.Title,
			IsAnonymous: complaint.IsAnonymous,
		},
	})
	return complaint, nil
}

// AppendAction records one event against a complaint. The action count is
// recomputed from the log rather than incremented in place, so the
// materialized field can never drift from its source of truth. A resolve
// action moves the complaint to resolved and stamps resolvedAt exactly
// once; re-resolving still appends but leaves the stamp untouched.
func (s *ComplaintService) AppendAction(ctx context.Context, actor events.Actor, complaintID string, input ActionInput) (*domain.ComplaintAction, error) {
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaintID})
		}
		return nil, apperrors.MapError(err)
	}

	now := time.Now()
	action := &domain.ComplaintAction{
		ComplaintID: complaint.ID,
		ActorName:   input.ActorName,
		ActorRole:   input.ActorRole,
		ActionType:  input.ActionType,
		Comment:     strings.TrimSpace(input.Comment),
		Timestamp:   now,
	}
	if err := s.actions.Create(ctx, action); err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range input.Attachments {
		record := &domain.ComplaintAttachment{
			FileName:  input.Attachments[i].FileName,
			MimeType:  input.Attachments[i].MimeType,
			SizeBytes: input.Attachments[i].SizeBytes,
			URL:       input.Attachments[i].URL,
		}
		if err := s.attachments.CreateForAction(ctx, action.ID, record); err != nil {
			return nil, apperrors.MapError(err)
		}
		action.Attachments = append(action.Attachments, *record)
	}

	count, err := s.actions.CountByComplaint(ctx, complaint.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	complaint.ActionCount = count
	complaint.UpdatedAt = now

	switch input.ActionType {
	case domain.ActionTypeResolve:
		complaint.Status = domain.ComplaintStatusResolved
		if complaint.ResolvedAt == nil {
			complaint.ResolvedAt = &now
		}
	case domain.ActionTypeForward:
		complaint.ForwardedTo = append(complaint.ForwardedTo, input.Recipients...)
	case domain.ActionTypeStatusChange:
		if input.NewStatus != nil {
			complaint.Status = *input.NewStatus
			if complaint.Status == domain.ComplaintStatusResolved && complaint.ResolvedAt == nil {
				complaint.ResolvedAt = &now
			}
		}
	}

	if err := s.complaints.Update(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventActionAppended,
		ComplaintID: complaint.ID,
		Actor:       actor,
		Payload: events.ActionAppendedPayload{
			ActionID:       action.ID,
			ActionType:     action.ActionType,
			ActorName:      action.ActorName,
			ActorRole:      action.ActorRole,
			CommentPreview: stringPreview(action.Comment, 120),
			ActionCount:    complaint.ActionCount,
		},
	})
	if input.ActionType == domain.ActionTypeForward && len(input.Recipients) > 0 {
		s.publishEvent(ctx, events.Event{
			Type:        events.EventComplaintForwarded,
			ComplaintID: complaint.ID,
			Actor:       actor,
			Payload:     events.ComplaintForwardedPayload{Recipients: input.Recipients},
		})
	}
	if complaint.Status == domain.ComplaintStatusResolved && complaint.ResolvedAt != nil {
		if input.ActionType == domain.ActionTypeResolve {
			s.publishEvent(ctx, events.Event{
				Type:        events.EventComplaintResolved,
				ComplaintID: complaint.ID,
				Actor:       actor,
				Payload:     events.ComplaintResolvedPayload{ResolvedAt: *complaint.ResolvedAt},
			})
		}
	}
	return action, nil
}

// ListActions returns the complaint's history ordered ascending by
// timestamp. An empty log yields an empty slice, not an error.
func (s *ComplaintService) ListActions(ctx context.Context, complaintID string) ([]domain.ComplaintAction, error) {
	actions, err := s.actions.ListByComplaint(ctx, complaintID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range actions {
		attachments, err := s.attachments.ListByAction(ctx, actions[i].ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		actions[i].Attachments = attachments
	}
	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].Timestamp.Before(actions[j].Timestamp)
	})
	if actions == nil {
		actions = []domain.ComplaintAction{}
	}
	return actions, nil
}

// GetComplaintForStudent fetches a complaint ensuring ownership.
func (s *ComplaintService) GetComplaintForStudent(ctx context.Context, studentID, complaintID string) (*domain.Complaint, []domain.ComplaintAction, error) {
	complaint, err := s.getComplaint(ctx, complaintID)
	if err != nil {
		return nil, nil, err
	}
	if complaint.StudentID != studentID {
		return nil, nil, apperrors.NewForbidden("access denied")
	}
	actions, err := s.ListActions(ctx, complaint.ID)
	if err != nil {
		return nil, nil, err
	}
	return complaint, actions, nil
}

// GetComplaintForAdmin fetches a complaint for triage. Reporter identity
// is suppressed when the student filed anonymously.
func (s *ComplaintService) GetComplaintForAdmin(ctx context.Context, complaintID string) (*domain.Complaint, []domain.ComplaintAction, error) {
	complaint, err := s.getComplaint(ctx, complaintID)
	if err != nil {
		return nil, nil, err
	}
	actions, err := s.ListActions(ctx, complaint.ID)
	if err != nil {
		return nil, nil, err
	}
	redacted := complaint.Redacted()
	return &redacted, actions, nil
}

// ListStudentComplaints returns the student's own complaints.
func (s *ComplaintService) ListStudentComplaints(ctx context.Context, studentID string, limit, offset int) ([]domain.Complaint, error) {
	complaints, err := s.complaints.ListByStudent(ctx, studentID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return complaints, nil
}

// ListAdminComplaints returns complaints for the admin dashboard, with
// anonymous reports redacted.
func (s *ComplaintService) ListAdminComplaints(ctx context.Context, query repository.ComplaintQuery) ([]domain.Complaint, error) {
	complaints, err := s.complaints.ListWithQuery(ctx, query)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range complaints {
		complaints[i] = complaints[i].Redacted()
	}
	return complaints, nil
}

func (s *ComplaintService) getComplaint(ctx context.Context, complaintID string) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaintID})
		}
		return nil, apperrors.MapError(err)
	}
	attachments, err := s.attachments.ListByComplaint(ctx, complaint.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	complaint.Attachments = attachments
	return complaint, nil
}

func (s *ComplaintService) mintComplaintID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < s.idRetries; attempt++ {
		candidate := fmt.Sprintf("COMP-%05d", s.idSource())
		exists, err := s.complaints.ExistsID(ctx, candidate)
		if err != nil {
			return "", apperrors.MapError(err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", apperrors.NewInternalError(errors.New("exhausted complaint id candidates"))
}

func (s *ComplaintService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// StudentActor builds event actor metadata for a student.
func StudentActor(studentID string) events.Actor {
	return events.Actor{
		Type:      domain.SubjectTypeStudent,
		StudentID: &studentID,
	}
}

// AdminActor builds event actor metadata for an admin member.
func AdminActor(adminID string) events.Actor {
	return events.Actor{
		Type:    domain.SubjectTypeAdmin,
		AdminID: &adminID,
	}
}

// stringPreview truncates to at most max runes, never splitting a
// multi-byte character.
func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
