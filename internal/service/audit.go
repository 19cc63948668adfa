package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/spec-kit/health-records-service/internal/domain"
	"github.com/spec-kit/health-records-service/internal/events"
	"github.com/spec-kit/health-records-service/internal/repository"
)

// auditedEvents lists every event the core emits. The audit trail is the
// system of record for history; there is no separate log store.
var auditedEvents = []events.EventType{
	events.EventRoleGranted,
	events.EventRoleRevoked,
	events.EventPrincipalStatusChanged,
	events.EventWriterChanged,
	events.EventRecordAdded,
	events.EventRecordUpdated,
	events.EventRecordArchived,
	events.EventConsentGiven,
	events.EventConsentRevoked,
	events.EventAppointmentScheduled,
	events.EventAppointmentConfirmed,
	events.EventAppointmentCanceled,
}

// AuditService appends every published event to the append-only audit log
// and mirrors it to the structured log.
type AuditService struct {
	dispatcher events.Dispatcher
	entries    repository.AuditRepository
	authority  *AuthorityService
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, entries repository.AuditRepository, authority *AuthorityService, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, entries: entries, authority: authority, logger: logger}
}

// RegisterHandlers subscribes the audit handler to every event type.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range auditedEvents {
		a.dispatcher.Subscribe(eventType, a.handleEvent)
	}
}

// ListEntries returns the newest audit entries. Administrator only.
func (a *AuditService) ListEntries(ctx context.Context, actorID string, limit, offset int) ([]domain.AuditEntry, error) {
	if err := a.authority.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	return a.entries.List(ctx, limit, offset)
}

func (a *AuditService) handleEvent(ctx context.Context, event events.Event) error {
	entry := &domain.AuditEntry{
		ID:         event.ID,
		EventType:  string(event.Type),
		EntityID:   event.EntityID,
		ActorID:    event.ActorID,
		OccurredAt: event.Timestamp,
		Details:    payloadDetails(event.Payload),
	}
	if err := a.entries.Append(ctx, entry); err != nil {
		a.logger.Error("audit append failed",
			zap.String("event_type", string(event.Type)),
			zap.String("entity_id", event.EntityID),
			zap.Error(err))
		return err
	}
	a.logger.Info("audit",
		zap.String("event_type", string(event.Type)),
		zap.String("entity_id", event.EntityID),
		zap.String("actor_id", event.ActorID),
		zap.Time("occurred_at", event.Timestamp))
	return nil
}

func payloadDetails(payload any) map[string]any {
	if payload == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	var details map[string]any
	if err := json.Unmarshal(raw, &details); err != nil {
		return nil
	}
	return details
}
