package service

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/hostel-complaint-service/internal/config"
	"github.com/spec-kit/hostel-complaint-service/internal/domain"
	apperrors "github.com/spec-kit/hostel-complaint-service/pkg/util"
)

// WizardStep identifies a step of the submission flow.
type WizardStep int

const (
	StepCategory     WizardStep = 1
	StepPersonalInfo WizardStep = 2
	StepDetails      WizardStep = 3
	StepReview       WizardStep = 4
)

// WizardForm accumulates the complaint fields entered across steps.
// Personal fields are collected even for anonymous submissions; display
// surfaces suppress them instead.
type WizardForm struct {
	Category    domain.ComplaintCategory
	Priority    domain.ComplaintPriority
	Title       string
	Description string
	Name        string
	Email       string
	Phone       string
	RollNumber  string
	Branch      string
	Semester    int
	IsAnonymous bool
}

// WizardFormPatch carries partial form updates; nil fields are untouched.
type WizardFormPatch struct {
	Category    *domain.ComplaintCategory
	Priority    *domain.ComplaintPriority
	Title       *string
	Description *string
	Name        *string
	Email       *string
	Phone       *string
	RollNumber  *string
	Branch      *string
	Semester    *int
	IsAnonymous *bool
}

// WizardSession is one in-progress submission. Steps advance linearly,
// one at a time, with per-step validation gates; back never validates.
type WizardSession struct {
	ID          string
	StudentID   string
	Step        WizardStep
	Form        WizardForm
	Attachments []AttachmentInput
	Submitted   bool
	ComplaintID string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// WizardService owns active submission sessions. Access is serialized by
// a single mutex: the flow assumes at most one in-flight mutation per
// session.
type WizardService struct {
	mu         sync.Mutex
	sessions   map[string]*WizardSession
	complaints *ComplaintService
	cfg        config.WizardConfig
}

// NewWizardService constructs the service.
func NewWizardService(cfg config.WizardConfig, complaints *ComplaintService) *WizardService {
	return &WizardService{
		sessions:   make(map[string]*WizardSession),
		complaints: complaints,
		cfg:        cfg,
	}
}

// Start opens a fresh session at the category step. Priority defaults to
// Medium, matching the form's initial state.
func (w *WizardService) Start(studentID string) *WizardSession {
	now := time.Now()
	session := &WizardSession{
		ID:        uuid.NewString(),
		StudentID: studentID,
		Step:      StepCategory,
		Form: WizardForm{
			Priority: domain.ComplaintPriorityMedium,
		},
		CreatedAt: now,
		ExpiresAt: now.Add(w.cfg.SessionTTL()),
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.evictExpiredLocked(now)
	w.sessions[session.ID] = session
	return session
}

// Get fetches a session ensuring ownership.
func (w *WizardService) Get(sessionID, studentID string) (*WizardSession, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.getLocked(sessionID, studentID)
}

// UpdateForm applies a partial form update. Field edits are permitted on
// any step; only Next enforces validation.
func (w *WizardService) UpdateForm(sessionID, studentID string, patch WizardFormPatch) (*WizardSession, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	session, err := w.getLocked(sessionID, studentID)
	if err != nil {
		return nil, err
	}

	if patch.Category != nil {
		if !patch.Category.IsValid() {
			return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": string(*patch.Category)})
		}
		session.Form.Category = *patch.Category
	}
	if patch.Priority != nil {
		session.Form.Priority = *patch.Priority
	}
	if patch.Title != nil {
		session.Form.Title = *patch.Title
	}
	if patch.Description != nil {
		session.Form.Description = *patch.Description
	}
	if patch.Name != nil {
		session.Form.Name = *patch.Name
	}
	if patch.Email != nil {
		session.Form.Email = *patch.Email
	}
	if patch.Phone != nil {
		session.Form.Phone = *patch.Phone
	}
	if patch.RollNumber != nil {
		session.Form.RollNumber = *patch.RollNumber
	}
	if patch.Branch != nil {
		session.Form.Branch = *patch.Branch
	}
	if patch.Semester != nil {
		if *patch.Semester < 1 || *patch.Semester > 8 {
			return nil, apperrors.NewValidationError("semester must be between 1 and 8", nil)
		}
		session.Form.Semester = *patch.Semester
	}
	if patch.IsAnonymous != nil {
		session.Form.IsAnonymous = *patch.IsAnonymous
	}
	return session, nil
}

// AttachFiles records attachment metadata against the session. At most
// five files are retained; extras are silently dropped rather than
// rejected. Files are screened by declared extension only; content
// inspection belongs to the storage collaborator.
func (w *WizardService) AttachFiles(sessionID, studentID string, files []AttachmentInput) (*WizardSession, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	session, err := w.getLocked(sessionID, studentID)
	if err != nil {
		return nil, err
	}

	room := w.maxAttachments() - len(session.Attachments)
	if room < 0 {
		room = 0
	}
	accepted := files
	if len(accepted) > room {
		accepted = accepted[:room]
	}
	// the whole retained batch is screened before the session mutates
	for _, file := range accepted {
		if !w.extensionAllowed(file.FileName) {
			return nil, apperrors.NewValidationError("file type not allowed", map[string]any{"file_name": file.FileName})
		}
	}
	session.Attachments = append(session.Attachments, accepted...)
	return session, nil
}

// RemoveAttachment drops the attachment at the given position.
func (w *WizardService) RemoveAttachment(sessionID, studentID string, index int) (*WizardSession, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	session, err := w.getLocked(sessionID, studentID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(session.Attachments) {
		return nil, apperrors.NewValidationError("attachment index out of range", nil)
	}
	session.Attachments = append(session.Attachments[:index], session.Attachments[index+1:]...)
	return session, nil
}

// Next advances the session exactly one step after the current step's
// required fields pass. A failed gate leaves the step unchanged. The
// review step has no forward transition.
func (w *WizardService) Next(sessionID, studentID string) (*WizardSession, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	session, err := w.getLocked(sessionID, studentID)
	if err != nil {
		return nil, err
	}
	if err := validateStep(session.Step, session.Form); err != nil {
		return nil, err
	}
	if session.Step < StepReview {
		session.Step++
	}
	return session, nil
}

// Back moves one step backward without validation; a no-op on step 1.
func (w *WizardService) Back(sessionID, studentID string) (*WizardSession, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	session, err := w.getLocked(sessionID, studentID)
	if err != nil {
		return nil, err
	}
	if session.Step > StepCategory {
		session.Step--
	}
	return session, nil
}

// Submit finalizes the session from the review step: every earlier gate
// is re-checked, the complaint is created through the complaint service,
// and the session transitions to its terminal submitted state.
func (w *WizardService) Submit(ctx context.Context, sessionID, studentID string) (*domain.Complaint, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	session, err := w.getLocked(sessionID, studentID)
	if err != nil {
		return nil, err
	}
	if session.Step != StepReview {
		return nil, apperrors.NewValidationError("submit only allowed from the review step", map[string]any{"step": int(session.Step)})
	}
	for step := StepCategory; step < StepReview; step++ {
		if err := validateStep(step, session.Form); err != nil {
			return nil, err
		}
	}

	var phone *string
	if trimmed := strings.TrimSpace(session.Form.Phone); trimmed != "" {
		phone = &trimmed
	}
	complaint, err := w.complaints.CreateComplaint(ctx, ComplaintCreateInput{
		Title:        session.Form.Title,
		Description:  session.Form.Description,
		Category:     session.Form.Category,
		Priority:     session.Form.Priority,
		StudentID:    session.StudentID,
		StudentName:  session.Form.Name,
		StudentEmail: session.Form.Email,
		StudentPhone: phone,
		RollNumber:   session.Form.RollNumber,
		Branch:       session.Form.Branch,
		Semester:     session.Form.Semester,
		IsAnonymous:  session.Form.IsAnonymous,
		Attachments:  session.Attachments,
	})
	if err != nil {
		// uncommitted form state survives so the student can re-attempt
		return nil, err
	}

	session.Submitted = true
	session.ComplaintID = complaint.ID
	delete(w.sessions, session.ID)
	return complaint, nil
}

// Discard drops an in-progress session and its uncommitted form state.
func (w *WizardService) Discard(sessionID, studentID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.getLocked(sessionID, studentID); err != nil {
		return err
	}
	delete(w.sessions, sessionID)
	return nil
}

func validateStep(step WizardStep, form WizardForm) error {
	switch step {
	case StepCategory:
		if strings.TrimSpace(string(form.Category)) == "" {
			return apperrors.NewValidationError("please select a category", nil)
		}
	case StepPersonalInfo:
		missing := []string{}
		if strings.TrimSpace(form.Name) == "" {
			missing = append(missing, "name")
		}
		if strings.TrimSpace(form.Email) == "" {
			missing = append(missing, "email")
		}
		if strings.TrimSpace(form.RollNumber) == "" {
			missing = append(missing, "roll_number")
		}
		if len(missing) > 0 {
			return apperrors.NewValidationError("please fill in all required fields", map[string]any{"missing": missing})
		}
	case StepDetails:
		if strings.TrimSpace(form.Title) == "" || strings.TrimSpace(form.Description) == "" {
			return apperrors.NewValidationError("please provide title and description", nil)
		}
	case StepReview:
		return apperrors.NewValidationError("review is the final step", nil)
	}
	return nil
}

func (w *WizardService) getLocked(sessionID, studentID string) (*WizardSession, error) {
	session, ok := w.sessions[sessionID]
	if !ok {
		return nil, apperrors.NewNotFound("wizard session", map[string]any{"session_id": sessionID})
	}
	if session.StudentID != studentID {
		return nil, apperrors.NewForbidden("access denied")
	}
	if time.Now().After(session.ExpiresAt) {
		delete(w.sessions, sessionID)
		return nil, apperrors.NewNotFound("wizard session", map[string]any{"session_id": sessionID})
	}
	return session, nil
}

func (w *WizardService) evictExpiredLocked(now time.Time) {
	for id, session := range w.sessions {
		if now.After(session.ExpiresAt) {
			delete(w.sessions, id)
		}
	}
}

func (w *WizardService) maxAttachments() int {
	if w.cfg.MaxAttachments <= 0 {
		return 5
	}
	return w.cfg.MaxAttachments
}

func (w *WizardService) extensionAllowed(fileName string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	allowed := w.cfg.AllowedExtensions
	if len(allowed) == 0 {
		allowed = []string{"jpg", "jpeg", "png", "pdf", "docx"}
	}
	for _, candidate := range allowed {
		if ext == candidate {
			return true
		}
	}
	return false
}
