package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hostel-complaint-service/internal/domain"
)

// RequireStudent ensures a STUDENT is authenticated.
func RequireStudent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.SubjectType != domain.SubjectTypeStudent {
			return fiber.NewError(http.StatusForbidden, "student required")
		}
		return c.Next()
	}
}

// RequireAdminRole ensures the admin principal has one of the allowed roles.
// A failed role check is terminal for the request; the client signs the
// session out rather than retrying.
func RequireAdminRole(allowed ...domain.AdminRole) fiber.Handler {
	allowedSet := make(map[domain.AdminRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.SubjectType != domain.SubjectTypeAdmin || principal.Admin == nil {
			return fiber.NewError(http.StatusForbidden, "admin role required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Admin.Role]; !exists {
			return fiber.NewError(http.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}

// RequireAnyRole ensures caller is authenticated (student or admin).
func RequireAnyRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}
