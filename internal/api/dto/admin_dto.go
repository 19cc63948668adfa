package dto

import "time"

// RoleChangeRequest grants or revokes one role.
type RoleChangeRequest struct {
	PrincipalID string `json:"principal_id"`
	Role        string `json:"role"`
}

// SetActiveRequest flips a principal's activity flag.
type SetActiveRequest struct {
	Active bool `json:"active"`
}

// SetWriterRequest replaces the vault's authorized writer.
type SetWriterRequest struct {
	PrincipalID string `json:"principal_id"`
}

// RegisterCredentialRequest sets a principal's login credential.
type RegisterCredentialRequest struct {
	PrincipalID string `json:"principal_id"`
	Password    string `json:"password"`
}

// PrincipalResponse describes one principal and its grants.
type PrincipalResponse struct {
	ID        string    `json:"id"`
	Active    bool      `json:"active"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditEntryResponse is one audit log row.
type AuditEntryResponse struct {
	ID         string         `json:"id"`
	EventType  string         `json:"event_type"`
	EntityID   string         `json:"entity_id"`
	ActorID    string         `json:"actor_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Details    map[string]any `json:"details,omitempty"`
}
