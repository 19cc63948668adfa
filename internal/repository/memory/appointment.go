package memory

import (
	"context"
	"sync"

	"github.com/spec-kit/health-records-service/internal/domain"
	"github.com/spec-kit/health-records-service/internal/repository"
)

// AppointmentRepository is the in-memory adapter for appointments.
type AppointmentRepository struct {
	mu           sync.RWMutex
	appointments map[uint64]domain.Appointment
	byParty      map[string][]uint64
	nextID       uint64
}

// NewAppointmentRepository creates an empty adapter.
func NewAppointmentRepository() *AppointmentRepository {
	return &AppointmentRepository{
		appointments: make(map[uint64]domain.Appointment),
		byParty:      make(map[string][]uint64),
		nextID:       1,
	}
}

func (r *AppointmentRepository) Create(_ context.Context, appointment *domain.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	appointment.ID = r.nextID
	r.nextID++
	r.appointments[appointment.ID] = *appointment
	r.byParty[appointment.SubjectID] = append(r.byParty[appointment.SubjectID], appointment.ID)
	if appointment.CounterpartID != appointment.SubjectID {
		r.byParty[appointment.CounterpartID] = append(r.byParty[appointment.CounterpartID], appointment.ID)
	}
	return nil
}

func (r *AppointmentRepository) GetByID(_ context.Context, id uint64) (*domain.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	appointment, ok := r.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &appointment, nil
}

func (r *AppointmentRepository) UpdateStatus(_ context.Context, id uint64, status domain.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	appointment, ok := r.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	appointment.Status = status
	r.appointments[id] = appointment
	return nil
}

func (r *AppointmentRepository) ListByParty(_ context.Context, partyID string) ([]domain.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.byParty[partyID]
	result := make([]domain.Appointment, 0, len(ids))
	for _, id := range ids {
		result = append(result, r.appointments[id])
	}
	return result, nil
}
