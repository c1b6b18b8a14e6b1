package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hostel-complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/hostel-complaint-service/internal/auth"
	"github.com/spec-kit/hostel-complaint-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Students       *handlers.StudentsHandler
	Complaints     *handlers.ComplaintsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/students/register", cfg.Students.Register)
	authGroup.Post("/students/login", cfg.Students.Login)
	authGroup.Post("/admin/login", cfg.Admin.Login)

	authGroup.Post("/password/reset/request", cfg.Students.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Students.ConfirmPasswordReset)

	protectedAuth := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	protectedAuth.Post("/password/change", cfg.Students.ChangePassword)
	protectedAuth.Post("/logout", cfg.Students.Logout)

	student := app.Group("/complaints", cfg.AuthMiddleware.Handle, auth.RequireStudent())
	student.Post("/wizard", cfg.Complaints.StartWizard)
	student.Get("/wizard/:sessionId", cfg.Complaints.GetWizard)
	student.Patch("/wizard/:sessionId/form", cfg.Complaints.UpdateWizardForm)
	student.Post("/wizard/:sessionId/attachments", cfg.Complaints.AttachFiles)
	student.Delete("/wizard/:sessionId/attachments/:index", cfg.Complaints.RemoveAttachment)
	student.Post("/wizard/:sessionId/next", cfg.Complaints.NextStep)
	student.Post("/wizard/:sessionId/back", cfg.Complaints.PrevStep)
	student.Post("/wizard/:sessionId/submit", cfg.Complaints.SubmitWizard)
	student.Delete("/wizard/:sessionId", cfg.Complaints.DiscardWizard)
	student.Get("/", cfg.Complaints.ListComplaints)
	student.Get("/:id", cfg.Complaints.GetComplaint)
	student.Post("/:id/comments", cfg.Complaints.AddComment)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle,
		auth.RequireAdminRole(domain.AdminRoleStaff, domain.AdminRoleWarden, domain.AdminRoleAdmin))
	admin.Get("/complaints", cfg.Admin.ListComplaints)
	admin.Get("/complaints/:id", cfg.Admin.GetComplaint)
	admin.Post("/complaints/:id/actions", cfg.Admin.AddAction)
	admin.Get("/stats", cfg.Admin.DashboardStats)
}
