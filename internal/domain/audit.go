package domain

import "time"

// AuditEntry is one immutable row of the append-only audit log. Entries carry
// enough to reconstruct full history without reading current state: the
// event kind, the entity it touched, the acting principal and the timestamp.
type AuditEntry struct {
	ID         string
	EventType  string
	EntityID   string
	ActorID    string
	OccurredAt time.Time
	Details    map[string]any
}
