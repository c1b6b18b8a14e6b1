package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hostel-complaint-service/internal/api/dto"
	"github.com/spec-kit/hostel-complaint-service/internal/auth"
	"github.com/spec-kit/hostel-complaint-service/internal/domain"
	"github.com/spec-kit/hostel-complaint-service/internal/service"
)

// ComplaintsHandler serves the student-facing complaint surface: the
// submission wizard plus the student's own complaint list and detail.
type ComplaintsHandler struct {
	complaints *service.ComplaintService
	wizard     *service.WizardService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaints *service.ComplaintService, wizard *service.WizardService) *ComplaintsHandler {
	return &ComplaintsHandler{complaints: complaints, wizard: wizard}
}

func requireStudent(c *fiber.Ctx) (*domain.Student, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Student == nil {
		return nil, fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	return principal.Student, nil
}

// StartWizard handles POST /complaints/wizard.
func (h *ComplaintsHandler) StartWizard(c *fiber.Ctx) error {
	student, err := requireStudent(c)
	if err != nil {
		return err
	}
	session := h.wizard.Start(student.ID)
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": wizardSessionResponse(session)})
}

// GetWizard handles GET /complaints/wizard/:sessionId.
func (h *ComplaintsHandler) GetWizard(c *fiber.Ctx) error {
	student, err := requireStudent(c)
	if err != nil {
		return err
	}
	session, err := h.wizard.Get(c.Params("sessionId"), student.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": wizardSessionResponse(session)})
}

// UpdateWizardForm handles PATCH /complaints/wizard/:sessionId/form.
func (h *ComplaintsHandler) UpdateWizardForm(c *fiber.Ctx) error {
	student, err := requireStudent(c)
	if err != nil {
		return err
	}
	var req dto.WizardFormRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	patch := service.WizardFormPatch{
		Category:    req.Category,
		Priority:    req.Priority,
		Title:       req.Title,
		Description: req.Description,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		RollNumber:  req.RollNumber,
		Branch:      req.Branch,
		Semester:    req.Semester,
		IsAnonymous: req.IsAnonymous,
	}
	session, err := h.wizard.UpdateForm(c.Params("sessionId"), student.ID, patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": wizardSessionResponse(session)})
}

// AttachFiles handles POST /complaints/wizard/:sessionId/attachments.
func (h *ComplaintsHandler) AttachFiles(c *fiber.Ctx) error {
	student, err := requireStudent(c)
	if err != nil {
		return err
	}
	var req dto.AttachFilesRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	session, err := h.wizard.AttachFiles(c.Params("sessionId"), student.ID, attachmentInputs(req.Files))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": wizardSessionResponse(session)})
}

// RemoveAttachment handles DELETE /complaints/wizard/:sessionId/attachments/:index.
func (h *ComplaintsHandler) RemoveAttachment(c *fiber.Ctx) error {
	student, err := requireStudent(c)
	if err != nil {
		return err
	}
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid attachment index")
	}
	session, err := h.wizard.RemoveAttachment(c.Params("sessionId"), student.ID, index)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": wizardSessionResponse(session)})
}

// NextStep handles POST /complaints/wizard/:sessionId/next.
func (h *ComplaintsHandler) NextStep(c *fiber.Ctx) error {
	student, err := requireStudent(c)
	if err != nil {
		return err
	}
	session, err := h.wizard.Next(c.Params("sessionId"), student.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": wizardSessionResponse(session)})
}

// PrevStep handles POST /complaints/wizard/:sessionId/back.
func (h *ComplaintsHandler) PrevStep(c *fiber.Ctx) error {
	student, err := requireStudent(c)
	if err != nil {
		return err
	}
	session, err := h.wizard.Back(c.Params("sessionId"), student.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": wizardSessionResponse(session)})
}

// SubmitWizard handles POST /complaints/wizard/:sessionId/submit.
func (h *ComplaintsHandler) SubmitWizard(c *fiber.Ctx) error {
	student, err := requireStudent(c)
	if err != nil {
		return err
	}
	complaint, err := h.wizard.Submit(c.Context(), c.Params("sessionId"), student.ID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"complaint_id": complaint.ID,
		"complaint":    complaintSummary(complaint),
	}})
}

// DiscardWizard handles DELETE /complaints/wizard/:sessionId.
func (h *ComplaintsHandler) DiscardWizard(c *fiber.Ctx) error {
	student, err := requireStudent(c)
	if err != nil {
		return err
	}
	if err := h.wizard.Discard(c.Params("sessionId"), student.ID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListComplaints handles GET /complaints. Query parameters q, status and
// category narrow the student's own complaints without changing order.
func (h *ComplaintsHandler) ListComplaints(c *fiber.Ctx) error {
	student, err := requireStudent(c)
	if err != nil {
		return err
	}

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	complaints, err := h.complaints.ListStudentComplaints(c.Context(), student.ID, limit, offset)
	if err != nil {
		return err
	}

	filtered := domain.FilterComplaints(complaints, domain.ComplaintFilter{
		Query:    c.Query("q"),
		Status:   c.Query("status", domain.FilterAll),
		Category: c.Query("category", domain.FilterAll),
		Scope:    domain.SubjectTypeStudent,
	})

	summaries := make([]dto.ComplaintSummary, 0, len(filtered))
	for i := range filtered {
		summaries = append(summaries, complaintSummary(&filtered[i]))
	}
	return c.JSON(fiber.Map{"data": summaries, "meta": fiber.Map{
		"limit":  limit,
		"offset": offset,
		"count":  len(summaries),
	}})
}

// GetComplaint handles GET /complaints/:id for the owning student.
func (h *ComplaintsHandler) GetComplaint(c *fiber.Ctx) error {
	student, err := requireStudent(c)
	if err != nil {
		return err
	}
	complaint, actions, err := h.complaints.GetComplaintForStudent(c.Context(), student.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintDetail(complaint, actions)})
}

// AddComment handles POST /complaints/:id/comments. Students may only
// append comments; triage actions belong to the admin surface.
func (h *ComplaintsHandler) AddComment(c *fiber.Ctx) error {
	student, err := requireStudent(c)
	if err != nil {
		return err
	}
	var req dto.CreateActionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Comment == "" {
		return fiber.NewError(http.StatusBadRequest, "comment required")
	}

	// ownership check before writing
	complaint, _, err := h.complaints.GetComplaintForStudent(c.Context(), student.ID, c.Params("id"))
	if err != nil {
		return err
	}
	actorName := student.Name
	if complaint.IsAnonymous {
		actorName = "Anonymous"
	}

	action, err := h.complaints.AppendAction(c.Context(), service.StudentActor(student.ID), c.Params("id"), service.ActionInput{
		ActorName:   actorName,
		ActorRole:   "student",
		ActionType:  domain.ActionTypeComment,
		Comment:     req.Comment,
		Attachments: attachmentInputs(req.Attachments),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": actionResponse(*action, 0, false)})
}

func attachmentInputs(files []dto.AttachmentRequest) []service.AttachmentInput {
	inputs := make([]service.AttachmentInput, 0, len(files))
	for _, f := range files {
		inputs = append(inputs, service.AttachmentInput{
			FileName:  f.FileName,
			MimeType:  f.MimeType,
			SizeBytes: f.SizeBytes,
			URL:       f.URL,
		})
	}
	return inputs
}

func wizardSessionResponse(session *service.WizardSession) dto.WizardSessionResponse {
	attachments := make([]dto.AttachmentResponse, 0, len(session.Attachments))
	for _, a := range session.Attachments {
		attachments = append(attachments, dto.AttachmentResponse{
			FileName:  a.FileName,
			MimeType:  a.MimeType,
			SizeBytes: a.SizeBytes,
			URL:       a.URL,
		})
	}
	return dto.WizardSessionResponse{
		SessionID: session.ID,
		Step:      int(session.Step),
		Form: dto.WizardFormResponse{
			Category:    session.Form.Category,
			Priority:    session.Form.Priority,
			Title:       session.Form.Title,
			Description: session.Form.Description,
			Name:        session.Form.Name,
			Email:       session.Form.Email,
			Phone:       session.Form.Phone,
			RollNumber:  session.Form.RollNumber,
			Branch:      session.Form.Branch,
			Semester:    session.Form.Semester,
			IsAnonymous: session.Form.IsAnonymous,
		},
		Attachments: attachments,
		ExpiresAt:   session.ExpiresAt,
	}
}

func complaintSummary(complaint *domain.Complaint) dto.ComplaintSummary {
	display := domain.DeriveDisplayStatus(complaint.Status, complaint.ActionCount)
	return dto.ComplaintSummary{
		ID:       complaint.ID,
		Title:    complaint.Title,
		Category: complaint.Category,
		Priority: complaint.Priority,
		Status:   complaint.Status,
		DisplayStatus: dto.DisplayStatusResponse{
			Label:    display.Label,
			Category: string(display.Category),
		},
		StudentName: complaint.StudentName,
		ActionCount: complaint.ActionCount,
		CreatedAt:   complaint.CreatedAt,
		UpdatedAt:   complaint.UpdatedAt,
		SLADeadline: complaint.SLADeadline,
	}
}

func complaintDetail(complaint *domain.Complaint, actions []domain.ComplaintAction) dto.ComplaintDetailResponse {
	display := domain.DeriveDisplayStatus(complaint.Status, complaint.ActionCount)

	attachments := make([]dto.AttachmentResponse, 0, len(complaint.Attachments))
	for _, a := range complaint.Attachments {
		attachments = append(attachments, attachmentResponse(a))
	}

	responses := make([]dto.ActionResponse, 0, len(actions))
	for i, action := range actions {
		responses = append(responses, actionResponse(action, i+1, i+1 < len(actions)))
	}

	return dto.ComplaintDetailResponse{
		ID:          complaint.ID,
		Title:       complaint.Title,
		Description: complaint.Description,
		Category:    complaint.Category,
		Priority:    complaint.Priority,
		Status:      complaint.Status,
		DisplayStatus: dto.DisplayStatusResponse{
			Label:    display.Label,
			Category: string(display.Category),
		},
		StudentName:  complaint.StudentName,
		StudentEmail: complaint.StudentEmail,
		StudentPhone: complaint.StudentPhone,
		RollNumber:   complaint.RollNumber,
		Branch:       complaint.Branch,
		Semester:     complaint.Semester,
		IsAnonymous:  complaint.IsAnonymous,
		ActionCount:  complaint.ActionCount,
		ForwardedTo:  complaint.ForwardedTo,
		Attachments:  attachments,
		Actions:      responses,
		CreatedAt:    complaint.CreatedAt,
		UpdatedAt:    complaint.UpdatedAt,
		SLADeadline:  complaint.SLADeadline,
		ResolvedAt:   complaint.ResolvedAt,
	}
}

func actionResponse(action domain.ComplaintAction, position int, hasNext bool) dto.ActionResponse {
	attachments := make([]dto.AttachmentResponse, 0, len(action.Attachments))
	for _, a := range action.Attachments {
		attachments = append(attachments, attachmentResponse(a))
	}
	return dto.ActionResponse{
		ID:          action.ID,
		ActorName:   action.ActorName,
		ActorRole:   action.ActorRole,
		ActionType:  action.ActionType,
		Comment:     action.Comment,
		Timestamp:   action.Timestamp,
		Position:    position,
		HasNext:     hasNext,
		Attachments: attachments,
	}
}

func attachmentResponse(a domain.ComplaintAttachment) dto.AttachmentResponse {
	return dto.AttachmentResponse{
		ID:        a.ID,
		FileName:  a.FileName,
		MimeType:  a.MimeType,
		SizeBytes: a.SizeBytes,
		URL:       a.URL,
	}
}
