package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// UpdateStatus moves the booking only when it is still in the expected
	// state; a lost race returns Conflict.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
	// HasOverlap reports whether the doctor already has a booked slot
	// intersecting [start, end).
	HasOverlap(ctx context.Context, doctorID uuid.UUID, start, end time.Time) (bool, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, day time.Time, limit, offset int) ([]*Appointment, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
}
