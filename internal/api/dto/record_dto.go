package dto

import "time"

// CreateRecordRequest opens a record about a subject.
type CreateRecordRequest struct {
	AuthorID  string `json:"author_id"`
	SubjectID string `json:"subject_id"`
	Diagnosis string `json:"diagnosis"`
	Treatment string `json:"treatment"`
}

// UpdateRecordRequest replaces a record's content fields.
type UpdateRecordRequest struct {
	Diagnosis string `json:"diagnosis"`
	Treatment string `json:"treatment"`
}

// RecordResponse describes one vault record.
type RecordResponse struct {
	ID        uint64    `json:"id"`
	AuthorID  string    `json:"author_id"`
	SubjectID string    `json:"subject_id"`
	Diagnosis string    `json:"diagnosis"`
	Treatment string    `json:"treatment"`
	CreatedAt time.Time `json:"created_at"`
	Active    bool      `json:"active"`
}
