package events

import (
	"time"

	"github.com/spec-kit/health-records-service/internal/domain"
)

// EventType enumerates supported audit event identifiers.
type EventType string

const (
	EventRoleGranted            EventType = "role_granted"
	EventRoleRevoked            EventType = "role_revoked"
	EventPrincipalStatusChanged EventType = "principal_status_changed"
	EventWriterChanged          EventType = "authorized_writer_changed"
	EventRecordAdded            EventType = "record_added"
	EventRecordUpdated          EventType = "record_updated"
	EventRecordArchived         EventType = "record_archived"
	EventConsentGiven           EventType = "consent_given"
	EventConsentRevoked         EventType = "consent_revoked"
	EventAppointmentScheduled   EventType = "appointment_scheduled"
	EventAppointmentConfirmed   EventType = "appointment_confirmed"
	EventAppointmentCanceled    EventType = "appointment_canceled"
)

// Event is one immutable audit record emitted by a mutating entry point.
// EntityID names the entity touched, ActorID the acting principal, and
// Timestamp comes from the service clock, never from the caller.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EntityID  string      `json:"entity_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RoleGrantedPayload payload.
type RoleGrantedPayload struct {
	PrincipalID string      `json:"principal_id"`
	Role        domain.Role `json:"role"`
}

// RoleRevokedPayload payload.
type RoleRevokedPayload struct {
	PrincipalID string      `json:"principal_id"`
	Role        domain.Role `json:"role"`
}

// PrincipalStatusChangedPayload payload.
type PrincipalStatusChangedPayload struct {
	PrincipalID string `json:"principal_id"`
	Active      bool   `json:"active"`
}

// WriterChangedPayload payload.
type WriterChangedPayload struct {
	OldWriterID string `json:"old_writer_id,omitempty"`
	NewWriterID string `json:"new_writer_id"`
}

// RecordAddedPayload payload.
type RecordAddedPayload struct {
	AuthorID  string `json:"author_id"`
	SubjectID string `json:"subject_id"`
}

// RecordUpdatedPayload payload.
type RecordUpdatedPayload struct {
	SubjectID string `json:"subject_id"`
}

// RecordArchivedPayload payload.
type RecordArchivedPayload struct {
	SubjectID string `json:"subject_id"`
}

// ConsentGivenPayload payload.
type ConsentGivenPayload struct {
	DelegateID string    `json:"delegate_id"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ConsentRevokedPayload payload.
type ConsentRevokedPayload struct {
	DelegateID string `json:"delegate_id"`
}

// AppointmentScheduledPayload payload.
type AppointmentScheduledPayload struct {
	SubjectID     string    `json:"subject_id"`
	CounterpartID string    `json:"counterpart_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
}

// AppointmentStatusPayload payload for confirm/cancel.
type AppointmentStatusPayload struct {
	OldStatus domain.AppointmentStatus `json:"old_status"`
	NewStatus domain.AppointmentStatus `json:"new_status"`
}
