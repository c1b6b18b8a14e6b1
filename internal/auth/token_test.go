package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hostel-complaint-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	role := domain.AdminRoleWarden
	token, expiresAt, err := tm.GenerateToken("admin-1", domain.SubjectTypeAdmin, &role)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.SubjectID)
	assert.Equal(t, domain.SubjectTypeAdmin, claims.Subject)
	require.NotNil(t, claims.Role)
	assert.Equal(t, domain.AdminRoleWarden, *claims.Role)
}

func TestTokenStudentHasNoRole(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	token, _, err := tm.GenerateToken("student-1", domain.SubjectTypeStudent, nil)
	require.NoError(t, err)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.SubjectTypeStudent, claims.Subject)
	assert.Nil(t, claims.Role)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	other := NewTokenManager("different-secret", 60)

	token, _, err := tm.GenerateToken("student-1", domain.SubjectTypeStudent, nil)
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.Error(t, err)
}
