package domain

import "time"

// ConsentGrant is a subject's time-bounded delegation of access to one named
// delegate. At most one grant exists per (subject, delegate) pair; a new
// grant overwrites the previous one rather than accumulating.
//
// A grant authorizes access iff Active and the expiry lies in the future.
// Expiry is evaluated lazily at read time; an expired grant with Active still
// set reads as invalid without requiring an explicit revoke.
type ConsentGrant struct {
	SubjectID  string
	DelegateID string
	ExpiresAt  time.Time
	Active     bool
	GrantedAt  time.Time
}

// Authorizes reports whether the grant permits access at the given instant.
func (g ConsentGrant) Authorizes(now time.Time) bool {
	return g.Active && g.ExpiresAt.After(now)
}
