package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/health-records-service/internal/config"
	"github.com/spec-kit/health-records-service/internal/domain"
	"github.com/spec-kit/health-records-service/internal/repository/memory"
	apperrors "github.com/spec-kit/health-records-service/pkg/util"
)

func newAuthFixture(t *testing.T) (*fixture, *AuthService) {
	t.Helper()
	f := newFixture(t)
	cfg := config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4}
	return f, NewAuthService(cfg, memory.NewCredentialRepository(), f.authority)
}

func TestRegisterCredentialAdminOnly(t *testing.T) {
	f, authSvc := newAuthFixture(t)
	f.grant(t, patientID, domain.RolePatient)

	err := authSvc.RegisterCredential(f.ctx, patientID, patientID, "hunter2")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))
}

func TestRegisterCredentialRequiresKnownPrincipal(t *testing.T) {
	f, authSvc := newAuthFixture(t)

	err := authSvc.RegisterCredential(f.ctx, adminID, "ghost", "hunter2")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnknownPrincipal, apperrors.CodeOf(err))
}

func TestLoginRoundTrip(t *testing.T) {
	f, authSvc := newAuthFixture(t)
	f.grant(t, patientID, domain.RolePatient)
	require.NoError(t, authSvc.RegisterCredential(f.ctx, adminID, patientID, "hunter2"))

	token, _, err := authSvc.Login(f.ctx, patientID, "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := authSvc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, patientID, parsed)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f, authSvc := newAuthFixture(t)
	f.grant(t, patientID, domain.RolePatient)
	require.NoError(t, authSvc.RegisterCredential(f.ctx, adminID, patientID, "hunter2"))

	_, _, err := authSvc.Login(f.ctx, patientID, "wrong")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))

	_, _, err = authSvc.Login(f.ctx, "ghost", "hunter2")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))
}
