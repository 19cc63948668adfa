package domain

import "time"

// Role enumerates the closed set of capability classes a principal may hold.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleDoctor       Role = "DOCTOR"
	RolePatient      Role = "PATIENT"
	RolePharmacist   Role = "PHARMACIST"
	RoleReceptionist Role = "RECEPTIONIST"
)

// Valid reports whether the role is one of the known kinds.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient, RolePharmacist, RoleReceptionist:
		return true
	}
	return false
}

// Principal is an identity the system authorizes against. The id itself is
// opaque; identities are referenced, never created or destroyed here.
//
// Active is a single flag shared by every role the principal holds:
// suspending a principal suspends all of their roles at once.
type Principal struct {
	ID        string
	Active    bool
	CreatedAt time.Time
}

// RoleBinding records that a principal has been granted a role.
type RoleBinding struct {
	PrincipalID string
	Role        Role
	CreatedAt   time.Time
}
