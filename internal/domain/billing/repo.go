package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists the invoice and its line items atomically.
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	GetByInvoiceNumber(ctx context.Context, number string) (*Invoice, error)
	// GetActiveByConsultation returns the non-void invoice for a
	// consultation, or NotFound when none exists.
	GetActiveByConsultation(ctx context.Context, consultationID uuid.UUID) (*Invoice, error)
	// UpdateDraft replaces figures and line items while the invoice is
	// still a draft. Returns Conflict when the invoice has been issued.
	UpdateDraft(ctx context.Context, inv *Invoice) error
	// Issue is the compare-and-set draft -> pending step: it stamps
	// issued_at and the payment method only when the row is still a draft.
	// Exactly one concurrent caller wins; the rest get Conflict.
	Issue(ctx context.Context, id uuid.UUID, method PaymentMethod, at time.Time) error
	// UpdateStatus moves pending -> paid or pending -> void with the same
	// compare-and-set discipline.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, at time.Time) error
	List(ctx context.Context, status Status, limit, offset int) ([]*Invoice, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Invoice, int, error)
}
