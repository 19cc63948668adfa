package memory

import (
	"context"
	"sync"

	"github.com/spec-kit/health-records-service/internal/repository"
)

// CredentialRepository is the in-memory adapter for login credentials.
type CredentialRepository struct {
	mu     sync.RWMutex
	hashes map[string]string
}

// NewCredentialRepository creates an empty adapter.
func NewCredentialRepository() *CredentialRepository {
	return &CredentialRepository{hashes: make(map[string]string)}
}

func (r *CredentialRepository) Upsert(_ context.Context, principalID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hashes[principalID] = passwordHash
	return nil
}

func (r *CredentialRepository) GetHash(_ context.Context, principalID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	hash, ok := r.hashes[principalID]
	if !ok {
		return "", repository.ErrNotFound
	}
	return hash, nil
}
