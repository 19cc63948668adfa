package dto

import "time"

// GiveConsentRequest delegates access to one principal for a bounded window.
type GiveConsentRequest struct {
	DelegateID   string `json:"delegate_id"`
	DurationDays int    `json:"duration_days"`
}

// ConsentResponse describes one consent grant.
type ConsentResponse struct {
	SubjectID  string    `json:"subject_id"`
	DelegateID string    `json:"delegate_id"`
	ExpiresAt  time.Time `json:"expires_at"`
	Active     bool      `json:"active"`
	GrantedAt  time.Time `json:"granted_at"`
}

// ConsentCheckResponse is the verdict of a consent check.
type ConsentCheckResponse struct {
	SubjectID  string `json:"subject_id"`
	DelegateID string `json:"delegate_id"`
	Permitted  bool   `json:"permitted"`
}
