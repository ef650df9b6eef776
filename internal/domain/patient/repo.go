package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByPatientID(ctx context.Context, patientID string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Search matches term case-insensitively as a substring of name, phone,
	// or patient_id. An empty term returns the whole directory. Results are
	// ordered newest first with id as tiebreaker so pages are stable.
	Search(ctx context.Context, term string, limit, offset int) ([]*Patient, int, error)
}
