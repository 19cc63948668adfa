package dto

import "time"

// LoginRequest authenticates a principal.
type LoginRequest struct {
	PrincipalID string `json:"principal_id"`
	Password    string `json:"password"`
}

// LoginResponse returns the issued token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
