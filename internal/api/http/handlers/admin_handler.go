package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hostel-complaint-service/internal/api/dto"
	"github.com/spec-kit/hostel-complaint-service/internal/auth"
	"github.com/spec-kit/hostel-complaint-service/internal/domain"
	"github.com/spec-kit/hostel-complaint-service/internal/repository"
	"github.com/spec-kit/hostel-complaint-service/internal/service"
)

// AdminHandler serves the triage surface: admin login, the redacted
// complaint queue, action recording and the dashboard counters.
type AdminHandler struct {
	auth       *service.AuthService
	complaints *service.ComplaintService
	stats      *service.StatsService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(authService *service.AuthService, complaints *service.ComplaintService, stats *service.StatsService) *AdminHandler {
	return &AdminHandler{auth: authService, complaints: complaints, stats: stats}
}

func requireAdmin(c *fiber.Ctx) (*domain.AdminMember, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Admin == nil {
		return nil, fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	return principal.Admin, nil
}

// Login handles POST /auth/admin/login.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	admin, token, exp, err := h.auth.LoginAdmin(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"admin": fiber.Map{
				"id":    admin.ID,
				"name":  admin.Name,
				"email": admin.Email,
				"role":  admin.Role,
			},
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// ListComplaints handles GET /admin/complaints. Repository-level filters
// (status, category, priority, from, to) narrow the fetch; the q filter is
// applied in-memory over the page so search semantics match the student
// list, with student_name as the admin search field.
func (h *AdminHandler) ListComplaints(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}

	query := repository.ComplaintQuery{
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	if status := c.Query("status"); status != "" && status != domain.FilterAll {
		query.Statuses = []domain.ComplaintStatus{domain.ComplaintStatus(status)}
	}
	if category := c.Query("category"); category != "" && category != domain.FilterAll {
		query.Categories = []domain.ComplaintCategory{domain.ComplaintCategory(category)}
	}
	if priority := c.Query("priority"); priority != "" {
		query.Priorities = []domain.ComplaintPriority{domain.ComplaintPriority(priority)}
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid from timestamp")
		}
		query.CreatedFrom = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid to timestamp")
		}
		query.CreatedTo = &t
	}

	complaints, err := h.complaints.ListAdminComplaints(c.Context(), query)
	if err != nil {
		return err
	}

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		complaints = domain.FilterComplaints(complaints, domain.ComplaintFilter{
			Query: q,
			Scope: domain.SubjectTypeAdmin,
		})
	}

	summaries := make([]dto.ComplaintSummary, 0, len(complaints))
	for i := range complaints {
		summaries = append(summaries, complaintSummary(&complaints[i]))
	}
	return c.JSON(fiber.Map{"data": summaries, "meta": fiber.Map{
		"limit":  query.Limit,
		"offset": query.Offset,
		"count":  len(summaries),
	}})
}

// GetComplaint handles GET /admin/complaints/:id.
func (h *AdminHandler) GetComplaint(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}
	complaint, actions, err := h.complaints.GetComplaintForAdmin(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintDetail(complaint, actions)})
}

// AddAction handles POST /admin/complaints/:id/actions. This is the write
// path for comments, forwards, status changes and resolution.
func (h *AdminHandler) AddAction(c *fiber.Ctx) error {
	admin, err := requireAdmin(c)
	if err != nil {
		return err
	}
	var req dto.CreateActionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	switch req.ActionType {
	case domain.ActionTypeComment:
		if req.Comment == "" {
			return fiber.NewError(http.StatusBadRequest, "comment required")
		}
	case domain.ActionTypeForward:
		if len(req.Recipients) == 0 {
			return fiber.NewError(http.StatusBadRequest, "recipients required for forward")
		}
	case domain.ActionTypeStatusChange:
		if req.NewStatus == nil {
			return fiber.NewError(http.StatusBadRequest, "new_status required for status change")
		}
	case domain.ActionTypeResolve:
	default:
		return fiber.NewError(http.StatusBadRequest, "unknown action type")
	}

	action, err := h.complaints.AppendAction(c.Context(), service.AdminActor(admin.ID), c.Params("id"), service.ActionInput{
		ActorName:   admin.Name,
		ActorRole:   strings.ToLower(string(admin.Role)),
		ActionType:  req.ActionType,
		Comment:     req.Comment,
		Recipients:  req.Recipients,
		NewStatus:   req.NewStatus,
		Attachments: attachmentInputs(req.Attachments),
	})
	if err != nil {
		return err
	}

	h.stats.Invalidate(c.Context())
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": actionResponse(*action, 0, false)})
}

// DashboardStats handles GET /admin/stats.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}
	stats, err := h.stats.DashboardStats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}
