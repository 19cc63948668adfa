package memory

import (
	"context"
	"sync"

	"github.com/spec-kit/health-records-service/internal/domain"
	"github.com/spec-kit/health-records-service/internal/repository"
)

// RecordRepository is the in-memory adapter for vault records. Ids are dense
// and strictly increasing from 1.
type RecordRepository struct {
	mu        sync.RWMutex
	records   map[uint64]domain.Record
	bySubject map[string][]uint64
	nextID    uint64
	writerID  string
}

// NewRecordRepository creates an empty adapter.
func NewRecordRepository() *RecordRepository {
	return &RecordRepository{
		records:   make(map[uint64]domain.Record),
		bySubject: make(map[string][]uint64),
		nextID:    1,
	}
}

func (r *RecordRepository) Create(_ context.Context, record *domain.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record.ID = r.nextID
	r.nextID++
	r.records[record.ID] = *record
	r.bySubject[record.SubjectID] = append(r.bySubject[record.SubjectID], record.ID)
	return nil
}

func (r *RecordRepository) Update(_ context.Context, record *domain.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.records[record.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Diagnosis = record.Diagnosis
	stored.Treatment = record.Treatment
	stored.Active = record.Active
	r.records[record.ID] = stored
	return nil
}

func (r *RecordRepository) GetByID(_ context.Context, id uint64) (*domain.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &record, nil
}

func (r *RecordRepository) ListBySubject(_ context.Context, subjectID string) ([]domain.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.bySubject[subjectID]
	result := make([]domain.Record, 0, len(ids))
	for _, id := range ids {
		result = append(result, r.records[id])
	}
	return result, nil
}

func (r *RecordRepository) GetAuthorizedWriter(_ context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.writerID, nil
}

func (r *RecordRepository) SetAuthorizedWriter(_ context.Context, principalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writerID = principalID
	return nil
}
