package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinicdesk/internal/domain/consultation"
	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
	"github.com/clinicdesk/clinicdesk/internal/domain/staff"
	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/internal/platform/document"
	"github.com/clinicdesk/clinicdesk/pkg/clinicerr"
	"github.com/clinicdesk/clinicdesk/pkg/displayid"
)

// PatientDirectory is the slice of the patient service billing needs.
type PatientDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// ConsultationLog is the slice of the consultation service billing needs.
type ConsultationLog interface {
	Get(ctx context.Context, id uuid.UUID) (*consultation.Consultation, error)
}

// StaffDirectory resolves the consulting doctor for the printed invoice.
type StaffDirectory interface {
	GetStaff(ctx context.Context, id uuid.UUID) (*staff.Staff, error)
}

// Notifier sends patient messages without blocking the billing flow.
type Notifier interface {
	SendTemplateAsync(templateID string, data map[string]string, recipient string)
}

// Config carries the clinic-level billing settings.
type Config struct {
	GSTRate       float64
	BaseFee       float64
	ClinicName    string
	ClinicAddress string
	Currency      string
}

type Service struct {
	repo          Repository
	patients      PatientDirectory
	consultations ConsultationLog
	doctors       StaffDirectory
	notifier      Notifier
	renderer      *document.InvoiceRenderer
	cfg           Config
	logger        zerolog.Logger
	now           func() time.Time
}

func NewService(repo Repository, patients PatientDirectory, consultations ConsultationLog,
	doctors StaffDirectory, notifier Notifier, renderer *document.InvoiceRenderer,
	cfg Config, logger zerolog.Logger) *Service {
	return &Service{
		repo:          repo,
		patients:      patients,
		consultations: consultations,
		doctors:       doctors,
		notifier:      notifier,
		renderer:      renderer,
		cfg:           cfg,
		logger:        logger,
		now:           time.Now,
	}
}

// CreateInput opens a draft invoice against a completed consultation.
type CreateInput struct {
	ConsultationID uuid.UUID  `json:"consultation_id"`
	BaseFee        *float64   `json:"base_fee,omitempty"`
	Items          []LineItem `json:"items"`
	Discount       float64    `json:"discount"`
}

// UpdateInput edits a draft. A nil BaseFee leaves the fee untouched.
type UpdateInput struct {
	BaseFee  *float64   `json:"base_fee,omitempty"`
	Items    []LineItem `json:"items"`
	Discount float64    `json:"discount"`
}

// IssueInput issues a draft to the patient. MarkPaid settles it in the same
// step for patients paying on the spot.
type IssueInput struct {
	PaymentMethod PaymentMethod `json:"payment_method"`
	MarkPaid      bool          `json:"mark_paid"`
}

// CreateDraft prices and stores a draft invoice. Only completed
// consultations are billable, and each consultation carries at most one
// active invoice.
func (s *Service) CreateDraft(ctx context.Context, in CreateInput) (*Invoice, error) {
	cons, err := s.consultations.Get(ctx, in.ConsultationID)
	if err != nil {
		return nil, err
	}
	if cons.Status != consultation.StatusCompleted {
		return nil, clinicerr.Conflictf("consultation is %s, only completed visits are billable", cons.Status)
	}

	if _, err := s.repo.GetActiveByConsultation(ctx, in.ConsultationID); err == nil {
		return nil, clinicerr.Conflict("consultation already has an active invoice")
	} else if !clinicerr.IsKind(err, clinicerr.KindNotFound) {
		return nil, err
	}

	baseFee := s.cfg.BaseFee
	if in.BaseFee != nil {
		if auth.RoleFromContext(ctx) != auth.RoleAdmin && auth.RoleFromContext(ctx) != auth.RoleSuperadmin {
			return nil, clinicerr.Permission("only an admin can override the consultation fee")
		}
		baseFee = *in.BaseFee
	}

	breakdown, err := ComputeBreakdown(baseFee, in.Items, in.Discount, s.cfg.GSTRate)
	if err != nil {
		return nil, err
	}

	inv := &Invoice{
		InvoiceNumber:  displayid.New(displayid.PrefixInvoice),
		ConsultationID: in.ConsultationID,
		PatientID:      cons.PatientID,
		Status:         StatusDraft,
		BaseFee:        baseFee,
		Items:          in.Items,
		Subtotal:       breakdown.Subtotal,
		Tax:            breakdown.Tax,
		Discount:       breakdown.Discount,
		Total:          breakdown.Total,
	}
	if staffID, err := uuid.Parse(auth.StaffIDFromContext(ctx)); err == nil {
		inv.CreatedBy = &staffID
	}

	if err := s.repo.Create(ctx, inv); err != nil {
		if clinicerr.IsKind(err, clinicerr.KindConflict) {
			inv.InvoiceNumber = displayid.New(displayid.PrefixInvoice)
			err = s.repo.Create(ctx, inv)
		}
		if err != nil {
			return nil, err
		}
	}

	s.logger.Info().
		Str("invoice_number", inv.InvoiceNumber).
		Float64("total", inv.Total).
		Msg("draft invoice created")
	return inv, nil
}

// UpdateDraft reprices a draft. Changing the consultation fee is an admin
// action; line items and discount are open to any billing role.
func (s *Service) UpdateDraft(ctx context.Context, id uuid.UUID, in UpdateInput) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inv.Editable() {
		return nil, clinicerr.Conflictf("invoice is %s and can no longer be edited", inv.Status)
	}

	baseFee := inv.BaseFee
	if in.BaseFee != nil && *in.BaseFee != inv.BaseFee {
		role := auth.RoleFromContext(ctx)
		if role != auth.RoleAdmin && role != auth.RoleSuperadmin {
			return nil, clinicerr.Permission("only an admin can change the consultation fee")
		}
		baseFee = *in.BaseFee
	}

	breakdown, err := ComputeBreakdown(baseFee, in.Items, in.Discount, s.cfg.GSTRate)
	if err != nil {
		return nil, err
	}

	inv.BaseFee = baseFee
	inv.Items = in.Items
	inv.Subtotal = breakdown.Subtotal
	inv.Tax = breakdown.Tax
	inv.Discount = breakdown.Discount
	inv.Total = breakdown.Total

	if err := s.repo.UpdateDraft(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// Issue freezes the invoice and hands it to the patient. Exactly one of any
// set of concurrent issuers wins; the rest see a conflict.
func (s *Service) Issue(ctx context.Context, id uuid.UUID, in IssueInput) (*Invoice, error) {
	if !ValidPaymentMethod(in.PaymentMethod) {
		return nil, clinicerr.Validation("payment_method", "payment method must be cash, upi, or card")
	}

	if err := s.repo.Issue(ctx, id, in.PaymentMethod, s.now().UTC()); err != nil {
		return nil, err
	}

	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notifyAsync(ctx, inv, "invoice-issued")
	s.logger.Info().Str("invoice_number", inv.InvoiceNumber).Msg("invoice issued")

	if in.MarkPaid {
		return s.Pay(ctx, id)
	}
	return inv, nil
}

// Pay settles a pending invoice.
func (s *Service) Pay(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	if err := s.repo.UpdateStatus(ctx, id, StatusPending, StatusPaid, s.now().UTC()); err != nil {
		return nil, err
	}
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notifyAsync(ctx, inv, "payment-received")
	s.logger.Info().Str("invoice_number", inv.InvoiceNumber).Msg("invoice paid")
	return inv, nil
}

// Void cancels a pending invoice. Admin-only: route guards enforce it, and
// the service checks again so no future caller can skip the gate.
func (s *Service) Void(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	role := auth.RoleFromContext(ctx)
	if role != auth.RoleAdmin && role != auth.RoleSuperadmin {
		return nil, clinicerr.Permission("only an admin can void an invoice")
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusPending, StatusVoid, s.now().UTC()); err != nil {
		return nil, err
	}
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("invoice_number", inv.InvoiceNumber).Msg("invoice voided")
	return inv, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, status Status, limit, offset int) ([]*Invoice, int, error) {
	return s.repo.List(ctx, status, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Invoice, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// RenderPDF produces the printable invoice.
func (s *Service) RenderPDF(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	p, err := s.patients.Get(ctx, inv.PatientID)
	if err != nil {
		return nil, "", err
	}

	data := document.InvoiceData{
		ClinicName:    s.cfg.ClinicName,
		ClinicAddress: s.cfg.ClinicAddress,
		InvoiceNumber: inv.InvoiceNumber,
		Status:        string(inv.Status),
		PatientName:   p.Name,
		PatientID:     p.PatientID,
		PatientAge:    fmt.Sprintf("%d", p.Age),
		Subtotal:      s.money(inv.Subtotal),
		Tax:           s.money(inv.Tax),
		Total:         s.money(inv.Total),
	}
	if inv.Discount > 0 {
		data.Discount = s.money(inv.Discount)
	}
	if inv.PaymentMethod != nil {
		data.PaymentMethod = string(*inv.PaymentMethod)
	}
	if inv.IssuedAt != nil {
		data.IssueDate = inv.IssuedAt.Format("2006-01-02")
	}
	if cons, err := s.consultations.Get(ctx, inv.ConsultationID); err == nil {
		if doc, err := s.doctors.GetStaff(ctx, cons.DoctorID); err == nil {
			data.DoctorName = doc.Name
		}
	}

	data.Items = append(data.Items, document.InvoiceItem{
		Description: "Consultation fee",
		Amount:      s.money(inv.BaseFee),
	})
	for _, item := range inv.Items {
		data.Items = append(data.Items, document.InvoiceItem{
			Description: item.Description,
			Amount:      s.money(item.Amount),
		})
	}

	pdf, err := s.renderer.Render(data)
	if err != nil {
		return nil, "", clinicerr.Storage(err)
	}
	return pdf, inv.InvoiceNumber + ".pdf", nil
}

// notifyAsync looks the patient up and fires the template in the background.
// A messaging failure never fails the billing operation.
func (s *Service) notifyAsync(ctx context.Context, inv *Invoice, templateID string) {
	p, err := s.patients.Get(ctx, inv.PatientID)
	if err != nil {
		s.logger.Error().Err(err).
			Str("invoice_number", inv.InvoiceNumber).
			Msg("patient lookup failed, skipping notification")
		return
	}

	data := map[string]string{
		"patient_name":   p.Name,
		"invoice_number": inv.InvoiceNumber,
		"clinic_name":    s.cfg.ClinicName,
		"total":          s.money(inv.Total),
	}
	if inv.PaymentMethod != nil {
		data["payment_method"] = string(*inv.PaymentMethod)
	}
	s.notifier.SendTemplateAsync(templateID, data, p.Phone)
}

func (s *Service) money(v float64) string {
	return fmt.Sprintf("%s %.2f", s.cfg.Currency, v)
}
