package service

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/spec-kit/health-records-service/internal/clock"
	"github.com/spec-kit/health-records-service/internal/domain"
	"github.com/spec-kit/health-records-service/internal/events"
	"github.com/spec-kit/health-records-service/internal/repository"
	apperrors "github.com/spec-kit/health-records-service/pkg/util"
)

// VaultService is the gated record store. Writes are accepted from exactly
// one whitelisted writer principal plus active administrators; reads are
// open, because read policy belongs to whatever consent check sits in front
// of the vault. Until a writer is configured the vault fails closed.
type VaultService struct {
	mu         sync.Mutex
	records    repository.RecordRepository
	authority  *AuthorityService
	dispatcher events.Dispatcher
	clock      clock.Clock
}

// NewVaultService constructs the service.
func NewVaultService(records repository.RecordRepository, authority *AuthorityService, dispatcher events.Dispatcher, clk clock.Clock) *VaultService {
	return &VaultService{records: records, authority: authority, dispatcher: dispatcher, clock: clk}
}

// SetAuthorizedWriter replaces the single whitelisted writer. Administrator
// only. This is a one-slot capability, not an access-control list.
func (s *VaultService) SetAuthorizedWriter(ctx context.Context, actorID, principalID string) error {
	if principalID == "" {
		return apperrors.NewValidationError("writer principal id required", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.authority.CheckRole(ctx, actorID, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewUnauthorized("administrator role required")
	}

	oldWriter, err := s.records.GetAuthorizedWriter(ctx)
	if err != nil {
		return err
	}
	if err := s.records.SetAuthorizedWriter(ctx, principalID); err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventWriterChanged,
		EntityID: principalID,
		ActorID:  actorID,
		Payload:  events.WriterChangedPayload{OldWriterID: oldWriter, NewWriterID: principalID},
	})
	return nil
}

// AuthorizedWriter returns the currently whitelisted writer, empty if unset.
func (s *VaultService) AuthorizedWriter(ctx context.Context) (string, error) {
	return s.records.GetAuthorizedWriter(ctx)
}

// AddRecord opens a record about a subject. Writer or administrator only;
// the subject must hold an active patient role. Ids start at 1, increase
// strictly, and are never reused.
func (s *VaultService) AddRecord(ctx context.Context, actorID, authorID, subjectID, diagnosis, treatment string) (*domain.Record, error) {
	if authorID == "" || subjectID == "" {
		return nil, apperrors.NewValidationError("author and subject required", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireWriter(ctx, actorID); err != nil {
		return nil, err
	}
	ok, err := s.authority.CheckRole(ctx, subjectID, domain.RolePatient)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewInvalidSubject(subjectID)
	}

	record := &domain.Record{
		AuthorID:  authorID,
		SubjectID: subjectID,
		Diagnosis: diagnosis,
		Treatment: treatment,
		CreatedAt: s.clock.Now(),
		Active:    true,
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventRecordAdded,
		EntityID: recordEntityID(record.ID),
		ActorID:  actorID,
		Payload:  events.RecordAddedPayload{AuthorID: authorID, SubjectID: subjectID},
	})
	return record, nil
}

// UpdateRecord replaces the content fields of an active record. Writer or
// administrator only. Identity fields never change.
func (s *VaultService) UpdateRecord(ctx context.Context, actorID string, id uint64, diagnosis, treatment string) (*domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireWriter(ctx, actorID); err != nil {
		return nil, err
	}
	record, err := s.records.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("record", map[string]any{"record_id": id})
		}
		return nil, err
	}
	if !record.Active {
		return nil, apperrors.NewArchived(id)
	}

	record.Diagnosis = diagnosis
	record.Treatment = treatment
	if err := s.records.Update(ctx, record); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventRecordUpdated,
		EntityID: recordEntityID(id),
		ActorID:  actorID,
		Payload:  events.RecordUpdatedPayload{SubjectID: record.SubjectID},
	})
	return record, nil
}

// Archive retires a record. Writer or administrator only. One-way: an
// archived record can never be reactivated.
func (s *VaultService) Archive(ctx context.Context, actorID string, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireWriter(ctx, actorID); err != nil {
		return err
	}
	record, err := s.records.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("record", map[string]any{"record_id": id})
		}
		return err
	}
	if !record.Active {
		return apperrors.NewAlreadyArchived(id)
	}

	record.Active = false
	if err := s.records.Update(ctx, record); err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventRecordArchived,
		EntityID: recordEntityID(id),
		ActorID:  actorID,
		Payload:  events.RecordArchivedPayload{SubjectID: record.SubjectID},
	})
	return nil
}

// GetByID fetches one record. Open read; id 0 never resolves.
func (s *VaultService) GetByID(ctx context.Context, id uint64) (*domain.Record, error) {
	record, err := s.records.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("record", map[string]any{"record_id": id})
		}
		return nil, err
	}
	return record, nil
}

// ListBySubject returns the subject's records in id order. Open read.
func (s *VaultService) ListBySubject(ctx context.Context, subjectID string) ([]domain.Record, error) {
	return s.records.ListBySubject(ctx, subjectID)
}

func (s *VaultService) requireWriter(ctx context.Context, actorID string) error {
	writer, err := s.records.GetAuthorizedWriter(ctx)
	if err != nil {
		return err
	}
	if writer != "" && actorID == writer {
		return nil
	}
	ok, err := s.authority.CheckRole(ctx, actorID, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewUnauthorized("caller is not the authorized writer")
	}
	return nil
}

func (s *VaultService) publish(ctx context.Context, event events.Event) {
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

func recordEntityID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
