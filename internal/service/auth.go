package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spec-kit/health-records-service/internal/auth"
	"github.com/spec-kit/health-records-service/internal/config"
	"github.com/spec-kit/health-records-service/internal/repository"
	apperrors "github.com/spec-kit/health-records-service/pkg/util"
)

// AuthService issues bearer tokens for principals. Credentials are
// registered by an administrator, never self-service: identities come from
// the operating environment, this service only lets them authenticate.
type AuthService struct {
	credentials repository.CredentialRepository
	authority   *AuthorityService
	tokens      *auth.TokenManager
	bcryptCost  int
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.AuthConfig, credentials repository.CredentialRepository, authority *AuthorityService) *AuthService {
	return &AuthService{
		credentials: credentials,
		authority:   authority,
		tokens:      auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost:  cfg.BcryptCost,
	}
}

// TokenManager exposes the manager for the auth middleware.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// RegisterCredential sets the login credential for a principal.
// Administrator only; the principal must already be known to the role
// authority.
func (s *AuthService) RegisterCredential(ctx context.Context, actorID, principalID, password string) error {
	if principalID == "" || password == "" {
		return apperrors.NewValidationError("principal id and password required", nil)
	}
	if err := s.authority.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	if _, err := s.authority.roles.GetPrincipal(ctx, principalID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewUnknownPrincipal(principalID)
		}
		return err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.credentials.Upsert(ctx, principalID, hash)
}

// Login verifies the credential and returns a signed token.
func (s *AuthService) Login(ctx context.Context, principalID, password string) (string, time.Time, error) {
	hash, err := s.credentials.GetHash(ctx, principalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", time.Time{}, apperrors.NewDomainError(apperrors.CodeUnauthorized, "invalid credentials", http.StatusUnauthorized, nil)
		}
		return "", time.Time{}, err
	}
	if err := auth.ComparePassword(hash, password); err != nil {
		return "", time.Time{}, apperrors.NewDomainError(apperrors.CodeUnauthorized, "invalid credentials", http.StatusUnauthorized, nil)
	}
	return s.tokens.GenerateToken(principalID)
}
