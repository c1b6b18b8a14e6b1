package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hostel-complaint-service/internal/config"
	"github.com/spec-kit/hostel-complaint-service/internal/domain"
	apperrors "github.com/spec-kit/hostel-complaint-service/pkg/util"
)

func newWizardFixture() (*WizardService, *serviceFixture) {
	f := newServiceFixture()
	cfg := config.WizardConfig{
		SessionTTLMinutes: 60,
		MaxAttachments:    5,
		AllowedExtensions: []string{"jpg", "jpeg", "png", "pdf", "docx"},
	}
	return NewWizardService(cfg, f.svc), f
}

func strPtr(s string) *string { return &s }

func catPtr(c domain.ComplaintCategory) *domain.ComplaintCategory { return &c }

func fillStep(t *testing.T, w *WizardService, sessionID, studentID string, step WizardStep) {
	t.Helper()
	var patch WizardFormPatch
	switch step {
	case StepCategory:
		patch = WizardFormPatch{Category: catPtr(domain.CategoryElectricity)}
	case StepPersonalInfo:
		patch = WizardFormPatch{
			Name:       strPtr("Asha Verma"),
			Email:      strPtr("asha@hostel.test"),
			RollNumber: strPtr("CS-2021-042"),
		}
	case StepDetails:
		patch = WizardFormPatch{
			Title:       strPtr("Broken fan in room 204"),
			Description: strPtr("The ceiling fan sparks when switched on."),
		}
	}
	_, err := w.UpdateForm(sessionID, studentID, patch)
	require.NoError(t, err)
}

func advanceToReview(t *testing.T, w *WizardService, sessionID, studentID string) {
	t.Helper()
	for _, step := range []WizardStep{StepCategory, StepPersonalInfo, StepDetails} {
		fillStep(t, w, sessionID, studentID, step)
		session, err := w.Next(sessionID, studentID)
		require.NoError(t, err)
		require.Equal(t, step+1, session.Step)
	}
}

func TestWizardStartsAtCategoryStep(t *testing.T) {
	w, _ := newWizardFixture()
	session := w.Start("student-1")

	assert.Equal(t, StepCategory, session.Step)
	assert.Equal(t, domain.ComplaintPriorityMedium, session.Form.Priority)
	assert.False(t, session.Submitted)
	assert.True(t, session.ExpiresAt.After(session.CreatedAt))
}

func TestWizardNextRequiresStepFields(t *testing.T) {
	w, _ := newWizardFixture()
	session := w.Start("student-1")

	_, err := w.Next(session.ID, "student-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	got, err := w.Get(session.ID, "student-1")
	require.NoError(t, err)
	assert.Equal(t, StepCategory, got.Step)

	fillStep(t, w, session.ID, "student-1", StepCategory)
	got, err = w.Next(session.ID, "student-1")
	require.NoError(t, err)
	assert.Equal(t, StepPersonalInfo, got.Step)
}

func TestWizardPersonalInfoReportsMissingFields(t *testing.T) {
	w, _ := newWizardFixture()
	session := w.Start("student-1")
	fillStep(t, w, session.ID, "student-1", StepCategory)
	_, err := w.Next(session.ID, "student-1")
	require.NoError(t, err)

	_, err = w.UpdateForm(session.ID, "student-1", WizardFormPatch{Name: strPtr("Asha Verma")})
	require.NoError(t, err)

	_, err = w.Next(session.ID, "student-1")
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.ElementsMatch(t, []string{"email", "roll_number"}, domainErr.Details["missing"])
}

func TestWizardBackNeverValidates(t *testing.T) {
	w, _ := newWizardFixture()
	session := w.Start("student-1")
	advanceToReview(t, w, session.ID, "student-1")

	// blank out a required field, then walk back freely
	_, err := w.UpdateForm(session.ID, "student-1", WizardFormPatch{Title: strPtr("")})
	require.NoError(t, err)

	got, err := w.Back(session.ID, "student-1")
	require.NoError(t, err)
	assert.Equal(t, StepDetails, got.Step)

	got, err = w.Back(session.ID, "student-1")
	require.NoError(t, err)
	assert.Equal(t, StepPersonalInfo, got.Step)

	got, err = w.Back(session.ID, "student-1")
	require.NoError(t, err)
	assert.Equal(t, StepCategory, got.Step)

	// back on the first step is a no-op
	got, err = w.Back(session.ID, "student-1")
	require.NoError(t, err)
	assert.Equal(t, StepCategory, got.Step)
}

func TestWizardRejectsUnknownCategory(t *testing.T) {
	w, _ := newWizardFixture()
	session := w.Start("student-1")

	_, err := w.UpdateForm(session.ID, "student-1", WizardFormPatch{Category: catPtr("Plumbing")})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestWizardAttachmentsCapSilently(t *testing.T) {
	w, _ := newWizardFixture()
	session := w.Start("student-1")

	files := make([]AttachmentInput, 0, 7)
	for i := 0; i < 7; i++ {
		files = append(files, AttachmentInput{FileName: "photo.jpg", MimeType: "image/jpeg", SizeBytes: 1024})
	}
	got, err := w.AttachFiles(session.ID, "student-1", files)
	require.NoError(t, err)
	assert.Len(t, got.Attachments, 5)

	// a later add against a full session is also silently dropped
	got, err = w.AttachFiles(session.ID, "student-1", []AttachmentInput{{FileName: "more.png"}})
	require.NoError(t, err)
	assert.Len(t, got.Attachments, 5)
}

func TestWizardAttachmentsScreenExtension(t *testing.T) {
	w, _ := newWizardFixture()
	session := w.Start("student-1")

	_, err := w.AttachFiles(session.ID, "student-1", []AttachmentInput{{FileName: "malware.exe"}})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	got, err := w.AttachFiles(session.ID, "student-1", []AttachmentInput{
		{FileName: "receipt.PDF"},
		{FileName: "photo.jpeg"},
	})
	require.NoError(t, err)
	assert.Len(t, got.Attachments, 2)

	got, err = w.RemoveAttachment(session.ID, "student-1", 0)
	require.NoError(t, err)
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, "photo.jpeg", got.Attachments[0].FileName)
}

func TestWizardAttachmentsRejectedBatchLeavesSessionUntouched(t *testing.T) {
	w, _ := newWizardFixture()
	session := w.Start("student-1")

	_, err := w.AttachFiles(session.ID, "student-1", []AttachmentInput{
		{FileName: "photo.jpg"},
		{FileName: "notes.pdf"},
		{FileName: "malware.exe"},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	got, err := w.Get(session.ID, "student-1")
	require.NoError(t, err)
	assert.Empty(t, got.Attachments)

	// resending the batch without the bad file attaches everything once
	got, err = w.AttachFiles(session.ID, "student-1", []AttachmentInput{
		{FileName: "photo.jpg"},
		{FileName: "notes.pdf"},
	})
	require.NoError(t, err)
	assert.Len(t, got.Attachments, 2)
}

func TestWizardSubmitOnlyFromReview(t *testing.T) {
	w, _ := newWizardFixture()
	session := w.Start("student-1")

	_, err := w.Submit(context.Background(), session.ID, "student-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestWizardSubmitCreatesComplaint(t *testing.T) {
	w, f := newWizardFixture()
	session := w.Start("student-1")
	advanceToReview(t, w, session.ID, "student-1")

	_, err := w.AttachFiles(session.ID, "student-1", []AttachmentInput{{FileName: "photo.jpg", MimeType: "image/jpeg", SizeBytes: 2048}})
	require.NoError(t, err)
	_, err = w.UpdateForm(session.ID, "student-1", WizardFormPatch{Phone: strPtr("  9876543210  ")})
	require.NoError(t, err)

	complaint, err := w.Submit(context.Background(), session.ID, "student-1")
	require.NoError(t, err)

	assert.Regexp(t, complaintIDPattern, complaint.ID)
	assert.Equal(t, domain.ComplaintStatusPending, complaint.Status)
	assert.Equal(t, "student-1", complaint.StudentID)
	assert.Equal(t, domain.CategoryElectricity, complaint.Category)
	assert.Equal(t, complaint.CreatedAt.Add(48*time.Hour), complaint.SLADeadline)
	require.NotNil(t, complaint.StudentPhone)
	assert.Equal(t, "9876543210", *complaint.StudentPhone)
	require.Len(t, complaint.Attachments, 1)

	stored, err := f.complaints.GetByID(context.Background(), complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, complaint.ID, stored.ID)

	// the session is gone after a successful submit
	_, err = w.Get(session.ID, "student-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestWizardSubmitRevalidatesEarlierSteps(t *testing.T) {
	w, f := newWizardFixture()
	session := w.Start("student-1")
	advanceToReview(t, w, session.ID, "student-1")

	_, err := w.UpdateForm(session.ID, "student-1", WizardFormPatch{Email: strPtr("")})
	require.NoError(t, err)

	_, err = w.Submit(context.Background(), session.ID, "student-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	assert.Empty(t, f.complaints.order)

	// form state survives the failed submit
	got, err := w.Get(session.ID, "student-1")
	require.NoError(t, err)
	assert.Equal(t, StepReview, got.Step)
	assert.Equal(t, "Broken fan in room 204", got.Form.Title)
}

func TestWizardEnforcesOwnership(t *testing.T) {
	w, _ := newWizardFixture()
	session := w.Start("student-1")

	_, err := w.Get(session.ID, "student-2")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, err = w.Get("no-such-session", "student-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestWizardDiscardDropsSession(t *testing.T) {
	w, _ := newWizardFixture()
	session := w.Start("student-1")

	require.NoError(t, w.Discard(session.ID, "student-1"))

	_, err := w.Get(session.ID, "student-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}
