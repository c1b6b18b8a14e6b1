package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hostel-complaint-service/internal/domain"
	"github.com/spec-kit/hostel-complaint-service/internal/repository"
	apperrors "github.com/spec-kit/hostel-complaint-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller. It is resolved once per
// request at login-token validation and passed down explicitly; no
// ambient session state exists outside the request.
type Principal struct {
	SubjectType domain.SubjectType
	Student     *domain.Student
	Admin       *domain.AdminMember
	Role        *domain.AdminRole
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens   *TokenManager
	students repository.StudentRepository
	admins   repository.AdminRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, students repository.StudentRepository, admins repository.AdminRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, students: students, admins: admins}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	principal := &Principal{SubjectType: claims.Subject, Role: claims.Role}

	switch claims.Subject {
	case domain.SubjectTypeStudent:
		student, err := m.students.GetByID(c.Context(), claims.SubjectID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewUnauthorized("student not found")
			}
			return apperrors.MapError(err)
		}
		principal.Student = student
	case domain.SubjectTypeAdmin:
		admin, err := m.admins.GetByID(c.Context(), claims.SubjectID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewUnauthorized("admin not found")
			}
			return apperrors.MapError(err)
		}
		if !admin.Active {
			return apperrors.NewUnauthorized("admin inactive")
		}
		principal.Admin = admin
	default:
		return apperrors.NewUnauthorized("unknown subject")
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
