package dto

import "time"

// ScheduleAppointmentRequest books a subject with a counterpart.
type ScheduleAppointmentRequest struct {
	SubjectID     string    `json:"subject_id"`
	CounterpartID string    `json:"counterpart_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
}

// AppointmentResponse describes one appointment.
type AppointmentResponse struct {
	ID            uint64    `json:"id"`
	SubjectID     string    `json:"subject_id"`
	CounterpartID string    `json:"counterpart_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
