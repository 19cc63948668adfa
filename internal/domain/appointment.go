package domain

import "time"

// AppointmentStatus enumerates lifecycle states for appointments.
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "SCHEDULED"
	AppointmentStatusConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentStatusCanceled  AppointmentStatus = "CANCELED"
)

// Appointment pairs a subject (patient) with a counterpart (doctor) at a
// scheduled time. Status moves only forward: Scheduled may become Confirmed
// or Canceled, Confirmed may become Canceled, Canceled is terminal.
type Appointment struct {
	ID            uint64
	SubjectID     string
	CounterpartID string
	ScheduledAt   time.Time
	Status        AppointmentStatus
	CreatedAt     time.Time
}
