package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hostel-complaint-service/internal/auth"
	"github.com/spec-kit/hostel-complaint-service/internal/config"
	"github.com/spec-kit/hostel-complaint-service/internal/domain"
	"github.com/spec-kit/hostel-complaint-service/internal/repository"
	apperrors "github.com/spec-kit/hostel-complaint-service/pkg/util"
)

// AuthSubject identifies the caller when changing password.
type AuthSubject struct {
	Type domain.SubjectType
	ID   string
}

// AuthService coordinates registration and login flows. Collaborator
// failures map to unauthenticated uniformly; nothing here retries.
type AuthService struct {
	students   repository.StudentRepository
	admins     repository.AdminRepository
	resets     repository.PasswordResetRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	resetTTL   time.Duration
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	StudentRepo       repository.StudentRepository
	AdminRepo         repository.AdminRepository
	PasswordResetRepo repository.PasswordResetRepository
}

// StudentProfile carries the profile fields captured at sign-up.
type StudentProfile struct {
	Name       string
	Email      string
	RollNumber string
	Branch     string
	Semester   int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		students:   deps.StudentRepo,
		admins:     deps.AdminRepo,
		resets:     deps.PasswordResetRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
		resetTTL:   time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute,
	}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// RegisterStudent creates a new student account.
func (s *AuthService) RegisterStudent(ctx context.Context, profile StudentProfile, password string) (*domain.Student, string, time.Time, error) {
	if _, err := s.students.GetByEmail(ctx, profile.Email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, apperrors.NewCollaboratorError("identity", err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	student := &domain.Student{
		Name:         profile.Name,
		Email:        profile.Email,
		RollNumber:   profile.RollNumber,
		Branch:       profile.Branch,
		Semester:     profile.Semester,
		PasswordHash: hash,
		Status:       domain.StudentStatusActive,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, "", time.Time{}, apperrors.NewCollaboratorError("identity", err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(student.ID, domain.SubjectTypeStudent, nil)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return student, token, exp, nil
}

// LoginStudent authenticates a student.
func (s *AuthService) LoginStudent(ctx context.Context, email, password string) (*domain.Student, string, time.Time, error) {
	student, err := s.students.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(student.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(student.ID, domain.SubjectTypeStudent, nil)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return student, token, exp, nil
}

// LoginAdmin authenticates an admin member and returns role-bearing token.
func (s *AuthService) LoginAdmin(ctx context.Context, email, password string) (*domain.AdminMember, string, time.Time, error) {
	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if !admin.Active {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("admin inactive")
	}
	if err := auth.ComparePassword(admin.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(admin.ID, domain.SubjectTypeAdmin, &admin.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return admin, token, exp, nil
}

// Logout currently no-ops for stateless JWT approach.
func (s *AuthService) Logout(_ context.Context, _ string) error {
	return nil
}

// RequestPasswordReset persists a reset token for either student or admin email.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*repository.PasswordResetToken, error) {
	subjectType := domain.SubjectTypeStudent
	subjectID := ""

	if student, err := s.students.GetByEmail(ctx, email); err == nil {
		subjectID = student.ID
	} else if errors.Is(err, pgx.ErrNoRows) {
		admin, adminErr := s.admins.GetByEmail(ctx, email)
		if adminErr != nil {
			return nil, adminErr
		}
		subjectType = domain.SubjectTypeAdmin
		subjectID = admin.ID
	} else {
		return nil, err
	}

	token := &repository.PasswordResetToken{
		SubjectType: string(subjectType),
		SubjectID:   subjectID,
		Token:       uuid.NewString(),
		ExpiresAt:   time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// ConfirmPasswordReset validates the reset token and updates password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		return err
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return apperrors.NewValidationError("token expired or used", nil)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}

	switch domain.SubjectType(token.SubjectType) {
	case domain.SubjectTypeStudent:
		student, err := s.students.GetByID(ctx, token.SubjectID)
		if err != nil {
			return err
		}
		student.PasswordHash = hash
		if err := s.students.Update(ctx, student); err != nil {
			return err
		}
	case domain.SubjectTypeAdmin:
		admin, err := s.admins.GetByID(ctx, token.SubjectID)
		if err != nil {
			return err
		}
		admin.PasswordHash = hash
		if err := s.admins.Update(ctx, admin); err != nil {
			return err
		}
	default:
		return apperrors.NewValidationError("unknown subject type", nil)
	}

	return s.resets.MarkUsed(ctx, token.ID)
}

// ChangePassword verifies current password before updating to new hash.
func (s *AuthService) ChangePassword(ctx context.Context, subject AuthSubject, currentPassword, newPassword string) error {
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}

	switch subject.Type {
	case domain.SubjectTypeStudent:
		student, err := s.students.GetByID(ctx, subject.ID)
		if err != nil {
			return err
		}
		if err := auth.ComparePassword(student.PasswordHash, currentPassword); err != nil {
			return apperrors.NewUnauthorized("invalid credentials")
		}
		student.PasswordHash = hash
		return s.students.Update(ctx, student)
	case domain.SubjectTypeAdmin:
		admin, err := s.admins.GetByID(ctx, subject.ID)
		if err != nil {
			return err
		}
		if err := auth.ComparePassword(admin.PasswordHash, currentPassword); err != nil {
			return apperrors.NewUnauthorized("invalid credentials")
		}
		admin.PasswordHash = hash
		return s.admins.Update(ctx, admin)
	default:
		return apperrors.NewValidationError("unknown subject type", nil)
	}
}
