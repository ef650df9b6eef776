// Package consultation tracks doctor visits from check-in to completion.
// Completed consultations are what billing invoices against.
package consultation

import (
	"time"

	"github.com/google/uuid"
)

// Status is the consultation lifecycle state.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// validTransitions is the forward-only lifecycle. A completed consultation is
// frozen; its clinical notes feed the invoice.
var validTransitions = map[Status]Status{
	StatusScheduled:  StatusInProgress,
	StatusInProgress: StatusCompleted,
}

// CanTransition reports whether from -> to is a legal step.
func CanTransition(from, to Status) bool {
	return validTransitions[from] == to
}

// Consultation maps to the consultation table.
type Consultation struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	ConsultationID string     `db:"consultation_id" json:"consultation_id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID       uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	Status         Status     `db:"status" json:"status"`
	Symptoms       *string    `db:"symptoms" json:"symptoms,omitempty"`
	Diagnosis      *string    `db:"diagnosis" json:"diagnosis,omitempty"`
	Prescription   *string    `db:"prescription" json:"prescription,omitempty"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
	StartedAt      *time.Time `db:"started_at" json:"started_at,omitempty"`
	CompletedAt    *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}
