package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/spec-kit/health-records-service/internal/domain"
	"github.com/spec-kit/health-records-service/internal/repository"
)

type consentKey struct {
	subjectID  string
	delegateID string
}

// ConsentRepository is the in-memory adapter for consent grants.
type ConsentRepository struct {
	mu     sync.RWMutex
	grants map[consentKey]domain.ConsentGrant
}

// NewConsentRepository creates an empty adapter.
func NewConsentRepository() *ConsentRepository {
	return &ConsentRepository{grants: make(map[consentKey]domain.ConsentGrant)}
}

func (r *ConsentRepository) Get(_ context.Context, subjectID, delegateID string) (*domain.ConsentGrant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	grant, ok := r.grants[consentKey{subjectID, delegateID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &grant, nil
}

func (r *ConsentRepository) Upsert(_ context.Context, grant *domain.ConsentGrant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grants[consentKey{grant.SubjectID, grant.DelegateID}] = *grant
	return nil
}

func (r *ConsentRepository) ListBySubject(_ context.Context, subjectID string) ([]domain.ConsentGrant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.ConsentGrant
	for key, grant := range r.grants {
		if key.subjectID == subjectID {
			result = append(result, grant)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].GrantedAt.Before(result[j].GrantedAt)
	})
	return result, nil
}
