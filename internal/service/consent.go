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

// ConsentService is the consent ledger: subject-granted, time-bounded
// delegation of access to one named delegate. Consent is subject-to-delegate
// only; no role check happens here, the gateways in front are responsible
// for their own gates.
type ConsentService struct {
	mu         sync.Mutex
	consents   repository.ConsentRepository
	dispatcher events.Dispatcher
	clock      clock.Clock
}

// NewConsentService constructs the service.
func NewConsentService(consents repository.ConsentRepository, dispatcher events.Dispatcher, clk clock.Clock) *ConsentService {
	return &ConsentService{consents: consents, dispatcher: dispatcher, clock: clk}
}

// GiveConsent grants the delegate access for durationDays from now. A prior
// grant for the same pair is replaced outright, never merged: a shorter
// second grant shrinks the effective window, so the subject always sees one
// source of truth for how long the delegate has access.
func (s *ConsentService) GiveConsent(ctx context.Context, subjectID, delegateID string, durationDays int) (*domain.ConsentGrant, error) {
	if delegateID == "" || delegateID == subjectID {
		return nil, apperrors.NewInvalidDelegate("delegate must be a principal other than the subject")
	}
	if durationDays <= 0 {
		return nil, apperrors.NewInvalidDuration()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	grant := &domain.ConsentGrant{
		SubjectID:  subjectID,
		DelegateID: delegateID,
		ExpiresAt:  now.Add(time.Duration(durationDays) * 24 * time.Hour),
		Active:     true,
		GrantedAt:  now,
	}
	if err := s.consents.Upsert(ctx, grant); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventConsentGiven,
		EntityID: subjectID,
		ActorID:  subjectID,
		Payload:  events.ConsentGivenPayload{DelegateID: delegateID, ExpiresAt: grant.ExpiresAt},
	})
	return grant, nil
}

// RevokeConsent deactivates the grant for the delegate. The expiry is
// retained for audit. Revoking works on any grant whose active flag is still
// set, including one that has already lapsed.
func (s *ConsentService) RevokeConsent(ctx context.Context, subjectID, delegateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	grant, err := s.consents.Get(ctx, subjectID, delegateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNoActiveConsent(subjectID, delegateID)
		}
		return err
	}
	if !grant.Active {
		return apperrors.NewNoActiveConsent(subjectID, delegateID)
	}

	grant.Active = false
	if err := s.consents.Upsert(ctx, grant); err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventConsentRevoked,
		EntityID: subjectID,
		ActorID:  subjectID,
		Payload:  events.ConsentRevokedPayload{DelegateID: delegateID},
	})
	return nil
}

// CheckConsent reports whether the delegate currently has the subject's
// consent: the grant must be active AND unexpired against the service clock.
// Expiry is lazy; a lapsed grant reads as false with no revoke required.
func (s *ConsentService) CheckConsent(ctx context.Context, subjectID, delegateID string) (bool, error) {
	grant, err := s.consents.Get(ctx, subjectID, delegateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return grant.Authorizes(s.clock.Now()), nil
}

// ListForSubject returns the subject's own grants, oldest first.
func (s *ConsentService) ListForSubject(ctx context.Context, subjectID string) ([]domain.ConsentGrant, error) {
	return s.consents.ListBySubject(ctx, subjectID)
}

func (s *ConsentService) publish(ctx context.Context, event events.Event) {
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
