package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/health-records-service/internal/clock"
	"github.com/spec-kit/health-records-service/internal/domain"
	"github.com/spec-kit/health-records-service/internal/events"
	"github.com/spec-kit/health-records-service/internal/repository"
	apperrors "github.com/spec-kit/health-records-service/pkg/util"
)

// allowedTransitions fixes the appointment state machine: Canceled is
// terminal and Confirmed can never be re-entered.
var allowedTransitions = map[domain.AppointmentStatus][]domain.AppointmentStatus{
	domain.AppointmentStatusScheduled: {domain.AppointmentStatusConfirmed, domain.AppointmentStatusCanceled},
	domain.AppointmentStatusConfirmed: {domain.AppointmentStatusCanceled},
	domain.AppointmentStatusCanceled:  {},
}

func isValidTransition(current, next domain.AppointmentStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// SchedulerService owns the appointment lifecycle. Scheduling requires the
// receptionist role; confirmation requires being the named counterpart AND
// holding a live doctor role; cancellation stays reachable by any affected
// party. Appointment metadata is itself sensitive, so reads are restricted
// to the two parties plus receptionists, unlike the vault's open reads.
type SchedulerService struct {
	mu           sync.Mutex
	appointments repository.AppointmentRepository
	authority    *AuthorityService
	dispatcher   events.Dispatcher
	clock        clock.Clock
}

// NewSchedulerService constructs the service.
func NewSchedulerService(appointments repository.AppointmentRepository, authority *AuthorityService, dispatcher events.Dispatcher, clk clock.Clock) *SchedulerService {
	return &SchedulerService{appointments: appointments, authority: authority, dispatcher: dispatcher, clock: clk}
}

// Schedule books subject with counterpart at the given time. The actor must
// hold an active receptionist role; the time must be strictly in the future;
// both parties must pass their live role checks.
func (s *SchedulerService) Schedule(ctx context.Context, actorID, subjectID, counterpartID string, at time.Time) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.authority.CheckRole(ctx, actorID, domain.RoleReceptionist)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewUnauthorized("receptionist role required")
	}

	now := s.clock.Now()
	if !at.After(now) {
		return nil, apperrors.NewTimeInPast()
	}
	ok, err = s.authority.CheckRole(ctx, subjectID, domain.RolePatient)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewInvalidSubject(subjectID)
	}
	ok, err = s.authority.CheckRole(ctx, counterpartID, domain.RoleDoctor)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewInvalidCounterpart(counterpartID)
	}

	appointment := &domain.Appointment{
		SubjectID:     subjectID,
		CounterpartID: counterpartID,
		ScheduledAt:   at,
		Status:        domain.AppointmentStatusScheduled,
		CreatedAt:     now,
	}
	if err := s.appointments.Create(ctx, appointment); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventAppointmentScheduled,
		EntityID: recordEntityID(appointment.ID),
		ActorID:  actorID,
		Payload: events.AppointmentScheduledPayload{
			SubjectID:     subjectID,
			CounterpartID: counterpartID,
			ScheduledAt:   at,
		},
	})
	return appointment, nil
}

// Confirm moves a scheduled appointment to confirmed. The actor must be the
// stored counterpart AND still hold a live doctor role; being named is
// necessary but not sufficient, so a suspended counterpart cannot confirm.
func (s *SchedulerService) Confirm(ctx context.Context, actorID string, id uint64) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appointment, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorID != appointment.CounterpartID {
		return nil, apperrors.NewNotYourAppointment(id)
	}
	ok, err := s.authority.CheckRole(ctx, actorID, domain.RoleDoctor)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewUnauthorized("active doctor role required to confirm")
	}
	if !isValidTransition(appointment.Status, domain.AppointmentStatusConfirmed) {
		return nil, apperrors.NewWrongState(id, string(appointment.Status))
	}

	oldStatus := appointment.Status
	appointment.Status = domain.AppointmentStatusConfirmed
	if err := s.appointments.UpdateStatus(ctx, id, appointment.Status); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventAppointmentConfirmed,
		EntityID: recordEntityID(id),
		ActorID:  actorID,
		Payload:  events.AppointmentStatusPayload{OldStatus: oldStatus, NewStatus: appointment.Status},
	})
	return appointment, nil
}

// Cancel ends an appointment from either live state. The actor may be the
// subject, the counterpart, or any active receptionist: cancellation must
// stay reachable for every affected party even when the others are
// unresponsive or suspended.
func (s *SchedulerService) Cancel(ctx context.Context, actorID string, id uint64) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appointment, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	allowed := actorID == appointment.SubjectID || actorID == appointment.CounterpartID
	if !allowed {
		ok, err := s.authority.CheckRole(ctx, actorID, domain.RoleReceptionist)
		if err != nil {
			return nil, err
		}
		allowed = ok
	}
	if !allowed {
		return nil, apperrors.NewUnauthorized("only the parties or a receptionist may cancel")
	}
	if appointment.Status == domain.AppointmentStatusCanceled {
		return nil, apperrors.NewAlreadyCanceled(id)
	}

	oldStatus := appointment.Status
	appointment.Status = domain.AppointmentStatusCanceled
	if err := s.appointments.UpdateStatus(ctx, id, appointment.Status); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventAppointmentCanceled,
		EntityID: recordEntityID(id),
		ActorID:  actorID,
		Payload:  events.AppointmentStatusPayload{OldStatus: oldStatus, NewStatus: appointment.Status},
	})
	return appointment, nil
}

// GetDetails fetches one appointment for a party or a receptionist.
func (s *SchedulerService) GetDetails(ctx context.Context, actorID string, id uint64) (*domain.Appointment, error) {
	appointment, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireReadAccess(ctx, actorID, appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

// ListFor returns a party's appointments in id order. The actor must be that
// party or hold an active receptionist role.
func (s *SchedulerService) ListFor(ctx context.Context, actorID, partyID string) ([]domain.Appointment, error) {
	if actorID != partyID {
		ok, err := s.authority.CheckRole(ctx, actorID, domain.RoleReceptionist)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperrors.NewUnauthorized("appointments are visible to their parties and receptionists only")
		}
	}
	return s.appointments.ListByParty(ctx, partyID)
}

func (s *SchedulerService) getByID(ctx context.Context, id uint64) (*domain.Appointment, error) {
	appointment, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("appointment", map[string]any{"appointment_id": id})
		}
		return nil, err
	}
	return appointment, nil
}

func (s *SchedulerService) requireReadAccess(ctx context.Context, actorID string, appointment *domain.Appointment) error {
	if actorID == appointment.SubjectID || actorID == appointment.CounterpartID {
		return nil
	}
	ok, err := s.authority.CheckRole(ctx, actorID, domain.RoleReceptionist)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewUnauthorized("appointments are visible to their parties and receptionists only")
	}
	return nil
}

func (s *SchedulerService) publish(ctx context.Context, event events.Event) {
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
