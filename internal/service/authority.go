package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/spec-kit/health-records-service/internal/clock"
	"github.com/spec-kit/health-records-service/internal/domain"
	"github.com/spec-kit/health-records-service/internal/events"
	"github.com/spec-kit/health-records-service/internal/repository"
	apperrors "github.com/spec-kit/health-records-service/pkg/util"
)

// AuthorityService is the single source of truth for role grants and the
// per-principal activity flag. Every other component's authorization
// decision reduces to CheckRole; nothing else grants or checks roles.
type AuthorityService struct {
	mu         sync.Mutex
	roles      repository.RoleRepository
	dispatcher events.Dispatcher
	clock      clock.Clock
}

// NewAuthorityService constructs the service.
func NewAuthorityService(roles repository.RoleRepository, dispatcher events.Dispatcher, clk clock.Clock) *AuthorityService {
	return &AuthorityService{roles: roles, dispatcher: dispatcher, clock: clk}
}

// CheckRole reports whether the principal currently holds the role: a grant
// must exist AND the principal's activity flag must be set. Pure query, no
// side effects, and no calls out of this component.
func (s *AuthorityService) CheckRole(ctx context.Context, principalID string, role domain.Role) (bool, error) {
	has, err := s.roles.HasGrant(ctx, principalID, role)
	if err != nil {
		return false, err
	}
	if !has {
		return false, nil
	}
	principal, err := s.roles.GetPrincipal(ctx, principalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return principal.Active, nil
}

// Grant gives principal the role. Administrator only. Re-granting a role the
// principal already holds fails; granting any role refreshes the activity
// flag to true.
func (s *AuthorityService) Grant(ctx context.Context, actorID, principalID string, role domain.Role) error {
	if principalID == "" {
		return apperrors.NewValidationError("principal id required", nil)
	}
	if !role.Valid() {
		return apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	has, err := s.roles.HasGrant(ctx, principalID, role)
	if err != nil {
		return err
	}
	if has {
		return apperrors.NewDuplicateRole(principalID, string(role))
	}

	now := s.clock.Now()
	principal, err := s.roles.GetPrincipal(ctx, principalID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		principal = &domain.Principal{ID: principalID, Active: true, CreatedAt: now}
	case err != nil:
		return err
	default:
		principal.Active = true
	}
	if err := s.roles.UpsertPrincipal(ctx, principal); err != nil {
		return err
	}
	if err := s.roles.CreateGrant(ctx, &domain.RoleBinding{PrincipalID: principalID, Role: role, CreatedAt: now}); err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventRoleGranted,
		EntityID: principalID,
		ActorID:  actorID,
		Payload:  events.RoleGrantedPayload{PrincipalID: principalID, Role: role},
	})
	return nil
}

// Revoke removes exactly that role grant. Administrator only. The activity
// flag and any other grants are untouched; the principal row persists.
func (s *AuthorityService) Revoke(ctx context.Context, actorID, principalID string, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	has, err := s.roles.HasGrant(ctx, principalID, role)
	if err != nil {
		return err
	}
	if !has {
		return apperrors.NewRoleNotHeld(principalID, string(role))
	}
	if err := s.roles.DeleteGrant(ctx, principalID, role); err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventRoleRevoked,
		EntityID: principalID,
		ActorID:  actorID,
		Payload:  events.RoleRevokedPayload{PrincipalID: principalID, Role: role},
	})
	return nil
}

// SetActive flips the single activity flag shared by all of the principal's
// roles. Administrator only. Fails for principals never granted any role.
func (s *AuthorityService) SetActive(ctx context.Context, actorID, principalID string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	if _, err := s.roles.GetPrincipal(ctx, principalID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewUnknownPrincipal(principalID)
		}
		return err
	}
	if err := s.roles.SetActive(ctx, principalID, active); err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventPrincipalStatusChanged,
		EntityID: principalID,
		ActorID:  actorID,
		Payload:  events.PrincipalStatusChangedPayload{PrincipalID: principalID, Active: active},
	})
	return nil
}

// PrincipalView bundles a principal with its current role grants.
type PrincipalView struct {
	Principal domain.Principal
	Roles     []domain.Role
}

// ListPrincipals enumerates every principal ever granted a role, with their
// current grants. Administrator only.
func (s *AuthorityService) ListPrincipals(ctx context.Context, actorID string) ([]PrincipalView, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	principals, err := s.roles.ListPrincipals(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]PrincipalView, 0, len(principals))
	for _, principal := range principals {
		grants, err := s.roles.ListGrants(ctx, principal.ID)
		if err != nil {
			return nil, err
		}
		view := PrincipalView{Principal: principal}
		for _, grant := range grants {
			view.Roles = append(view.Roles, grant.Role)
		}
		views = append(views, view)
	}
	return views, nil
}

// Bootstrap grants the administrator role to the given principal when no
// administrator exists yet. The deployment operator runs this once before
// any gateway becomes functional; afterwards it is a no-op for the same
// principal and an error for any other.
func (s *AuthorityService) Bootstrap(ctx context.Context, principalID string) error {
	if principalID == "" {
		return apperrors.NewValidationError("principal id required", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	principals, err := s.roles.ListPrincipals(ctx)
	if err != nil {
		return err
	}
	for _, principal := range principals {
		has, err := s.roles.HasGrant(ctx, principal.ID, domain.RoleAdmin)
		if err != nil {
			return err
		}
		if has {
			if principal.ID == principalID {
				return nil
			}
			return apperrors.NewUnauthorized("an administrator already exists")
		}
	}

	now := s.clock.Now()
	if err := s.roles.UpsertPrincipal(ctx, &domain.Principal{ID: principalID, Active: true, CreatedAt: now}); err != nil {
		return err
	}
	if err := s.roles.CreateGrant(ctx, &domain.RoleBinding{PrincipalID: principalID, Role: domain.RoleAdmin, CreatedAt: now}); err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventRoleGranted,
		EntityID: principalID,
		ActorID:  principalID,
		Payload:  events.RoleGrantedPayload{PrincipalID: principalID, Role: domain.RoleAdmin},
	})
	return nil
}

func (s *AuthorityService) requireAdmin(ctx context.Context, actorID string) error {
	ok, err := s.CheckRole(ctx, actorID, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewUnauthorized("administrator role required")
	}
	return nil
}

func (s *AuthorityService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
