package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hostel-complaint-service/internal/api/dto"
	"github.com/spec-kit/hostel-complaint-service/internal/auth"
	"github.com/spec-kit/hostel-complaint-service/internal/domain"
	"github.com/spec-kit/hostel-complaint-service/internal/service"
)

// StudentsHandler exposes auth endpoints for students.
type StudentsHandler struct {
	auth *service.AuthService
}

// NewStudentsHandler constructs handler.
func NewStudentsHandler(authService *service.AuthService) *StudentsHandler {
	return &StudentsHandler{auth: authService}
}

// Register handles POST /auth/students/register.
func (h *StudentsHandler) Register(c *fiber.Ctx) error {
	var req dto.StudentRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" || req.Name == "" || req.RollNumber == "" {
		return fiber.NewError(http.StatusBadRequest, "name, email, roll_number, password required")
	}

	profile := service.StudentProfile{
		Name:       req.Name,
		Email:      req.Email,
		RollNumber: req.RollNumber,
		Branch:     req.Branch,
		Semester:   req.Semester,
	}
	student, token, exp, err := h.auth.RegisterStudent(c.Context(), profile, req.Password)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"student": fiber.Map{
				"id":          student.ID,
				"name":        student.Name,
				"email":       student.Email,
				"roll_number": student.RollNumber,
			},
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Login handles POST /auth/students/login.
func (h *StudentsHandler) Login(c *fiber.Ctx) error {
	var req dto.StudentLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	student, token, exp, err := h.auth.LoginStudent(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"student": fiber.Map{
				"id":          student.ID,
				"name":        student.Name,
				"email":       student.Email,
				"roll_number": student.RollNumber,
			},
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Logout handles POST /auth/logout. Tokens are stateless, so this only
// acknowledges; clients drop the token.
func (h *StudentsHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.Context(), c.Get("Authorization")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"logged_out": true}})
}

// ChangePassword handles POST /auth/password/change for any principal.
func (h *StudentsHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	var req dto.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return fiber.NewError(http.StatusBadRequest, "current_password and new_password required")
	}

	subject := service.AuthSubject{Type: principal.SubjectType}
	switch principal.SubjectType {
	case domain.SubjectTypeStudent:
		subject.ID = principal.Student.ID
	case domain.SubjectTypeAdmin:
		subject.ID = principal.Admin.ID
	}
	if err := h.auth.ChangePassword(c.Context(), subject, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"changed": true}})
}

// RequestPasswordReset handles POST /auth/password/reset/request.
func (h *StudentsHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" {
		return fiber.NewError(http.StatusBadRequest, "email required")
	}
	token, err := h.auth.RequestPasswordReset(c.Context(), req.Email)
	if err != nil {
		return err
	}
	// token delivery is the notification collaborator's job; echoing the
	// expiry keeps the client informed without leaking the token
	return c.JSON(fiber.Map{"data": fiber.Map{"expires_at": token.ExpiresAt}})
}

// ConfirmPasswordReset handles POST /auth/password/reset/confirm.
func (h *StudentsHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Token == "" || req.NewPassword == "" {
		return fiber.NewError(http.StatusBadRequest, "token and new_password required")
	}
	if err := h.auth.ConfirmPasswordReset(c.Context(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"reset": true}})
}
