package domain

import "time"

// Record is a single medical record held by the vault. Identity fields
// (ID, AuthorID, SubjectID, CreatedAt) are immutable once stored; only the
// content fields may change while the record is active.
//
// Ids are dense and strictly increasing starting at 1; id 0 is the sentinel
// for "no such record" and is never allocated.
type Record struct {
	ID        uint64
	AuthorID  string
	SubjectID string
	Diagnosis string
	Treatment string
	CreatedAt time.Time
	Active    bool
}
