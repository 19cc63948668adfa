package memory

import (
	"context"
	"sync"

	"github.com/spec-kit/health-records-service/internal/domain"
)

// AuditRepository is the in-memory adapter for the append-only audit log.
type AuditRepository struct {
	mu      sync.RWMutex
	entries []domain.AuditEntry
}

// NewAuditRepository creates an empty adapter.
func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

func (r *AuditRepository) Append(_ context.Context, entry *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *AuditRepository) List(_ context.Context, limit, offset int) ([]domain.AuditEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	// newest first, matching the postgres adapter
	reversed := make([]domain.AuditEntry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		reversed = append(reversed, r.entries[i])
	}
	if offset >= len(reversed) {
		return []domain.AuditEntry{}, nil
	}
	end := offset + limit
	if end > len(reversed) {
		end = len(reversed)
	}
	return reversed[offset:end], nil
}

// All returns every entry in append order. Test helper.
func (r *AuditRepository) All() []domain.AuditEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.AuditEntry{}, r.entries...)
}
