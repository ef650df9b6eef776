// Package appointment manages the booking calendar.
package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Status is the booking state.
type Status string

const (
	StatusBooked    Status = "booked"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Appointment maps to the appointment table. A slot is [ScheduledAt,
// ScheduledAt + Duration).
type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	AppointmentID   string    `db:"appointment_id" json:"appointment_id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID `db:"doctor_id" json:"doctor_id"`
	ScheduledAt     time.Time `db:"scheduled_at" json:"scheduled_at"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Status          Status    `db:"status" json:"status"`
	Reason          *string   `db:"reason" json:"reason,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// End returns the exclusive end of the slot.
func (a *Appointment) End() time.Time {
	return a.ScheduledAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// Overlaps reports whether two slots for the same doctor collide.
func (a *Appointment) Overlaps(other *Appointment) bool {
	if a.DoctorID != other.DoctorID {
		return false
	}
	return a.ScheduledAt.Before(other.End()) && other.ScheduledAt.Before(a.End())
}
