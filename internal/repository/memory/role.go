// Package memory provides in-memory repository adapters. They back the
// service tests and mirror the postgres adapters' contracts exactly,
// including ErrNotFound translation and id allocation.
package memory

import (
	"context"
	"sync"

	"github.com/spec-kit/health-records-service/internal/domain"
	"github.com/spec-kit/health-records-service/internal/repository"
)

type grantKey struct {
	principalID string
	role        domain.Role
}

// RoleRepository is the in-memory adapter for principals and role grants.
type RoleRepository struct {
	mu         sync.RWMutex
	principals map[string]domain.Principal
	order      []string
	grants     map[grantKey]domain.RoleBinding
}

// NewRoleRepository creates an empty adapter.
func NewRoleRepository() *RoleRepository {
	return &RoleRepository{
		principals: make(map[string]domain.Principal),
		grants:     make(map[grantKey]domain.RoleBinding),
	}
}

func (r *RoleRepository) GetPrincipal(_ context.Context, id string) (*domain.Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.principals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *RoleRepository) UpsertPrincipal(_ context.Context, principal *domain.Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.principals[principal.ID]; !exists {
		r.order = append(r.order, principal.ID)
	}
	r.principals[principal.ID] = *principal
	return nil
}

func (r *RoleRepository) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.principals[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Active = active
	r.principals[id] = p
	return nil
}

func (r *RoleRepository) ListPrincipals(_ context.Context) ([]domain.Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.Principal, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.principals[id])
	}
	return result, nil
}

func (r *RoleRepository) HasGrant(_ context.Context, principalID string, role domain.Role) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.grants[grantKey{principalID, role}]
	return ok, nil
}

func (r *RoleRepository) CreateGrant(_ context.Context, binding *domain.RoleBinding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grants[grantKey{binding.PrincipalID, binding.Role}] = *binding
	return nil
}

func (r *RoleRepository) DeleteGrant(_ context.Context, principalID string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := grantKey{principalID, role}
	if _, ok := r.grants[key]; !ok {
		return repository.ErrNotFound
	}
	delete(r.grants, key)
	return nil
}

func (r *RoleRepository) ListGrants(_ context.Context, principalID string) ([]domain.RoleBinding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.RoleBinding
	for key, binding := range r.grants {
		if key.principalID == principalID {
			result = append(result, binding)
		}
	}
	return result, nil
}
