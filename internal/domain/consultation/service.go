package consultation

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/pkg/clinicerr"
	"github.com/clinicdesk/clinicdesk/pkg/displayid"
)

// CreateInput schedules a consultation for a patient with a doctor.
type CreateInput struct {
	PatientID uuid.UUID `json:"patient_id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	Symptoms  *string   `json:"symptoms,omitempty"`
}

// NotesInput carries the clinical record a doctor writes during the visit.
type NotesInput struct {
	Symptoms     *string `json:"symptoms,omitempty"`
	Diagnosis    *string `json:"diagnosis,omitempty"`
	Prescription *string `json:"prescription,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Consultation, error) {
	if in.PatientID == uuid.Nil {
		return nil, clinicerr.Validation("patient_id", "patient is required")
	}
	if in.DoctorID == uuid.Nil {
		return nil, clinicerr.Validation("doctor_id", "doctor is required")
	}

	c := &Consultation{
		ConsultationID: displayid.New(displayid.PrefixConsultation),
		PatientID:      in.PatientID,
		DoctorID:       in.DoctorID,
		Status:         StatusScheduled,
		Symptoms:       in.Symptoms,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("consultation_id", c.ConsultationID).
		Str("doctor_id", in.DoctorID.String()).
		Msg("consultation scheduled")
	return c, nil
}

// Start moves a scheduled consultation to in-progress. Only the assigned
// doctor (or an admin) starts a visit.
func (s *Service) Start(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	return s.advance(ctx, id, StatusScheduled, StatusInProgress)
}

// Complete freezes the consultation; after this the clinical record is
// read-only and the visit becomes billable.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	return s.advance(ctx, id, StatusInProgress, StatusCompleted)
}

func (s *Service) advance(ctx context.Context, id uuid.UUID, from, to Status) (*Consultation, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeDoctor(ctx, c); err != nil {
		return nil, err
	}
	if !CanTransition(c.Status, to) {
		return nil, clinicerr.Conflictf("cannot move consultation from %s to %s", c.Status, to)
	}
	if err := s.repo.UpdateStatus(ctx, id, from, to); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// UpdateNotes edits the clinical record. Allowed only while the visit is
// in progress.
func (s *Service) UpdateNotes(ctx context.Context, id uuid.UUID, in NotesInput) (*Consultation, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeDoctor(ctx, c); err != nil {
		return nil, err
	}
	if c.Status != StatusInProgress {
		return nil, clinicerr.Conflictf("clinical notes are editable only while in progress, consultation is %s", c.Status)
	}

	if in.Symptoms != nil {
		c.Symptoms = in.Symptoms
	}
	if in.Diagnosis != nil {
		c.Diagnosis = in.Diagnosis
	}
	if in.Prescription != nil {
		c.Prescription = in.Prescription
	}
	if in.Notes != nil {
		c.Notes = in.Notes
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// authorizeDoctor restricts clinical writes to the assigned doctor. Other
// roles with clinical write access (admin, superadmin) pass.
func (s *Service) authorizeDoctor(ctx context.Context, c *Consultation) error {
	role := auth.RoleFromContext(ctx)
	if role != auth.RoleDoctor {
		return nil
	}
	if auth.StaffIDFromContext(ctx) != c.DoctorID.String() {
		return clinicerr.Permission("only the assigned doctor can modify this consultation")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, status Status, limit, offset int) ([]*Consultation, int, error) {
	return s.repo.ListByDoctor(ctx, doctorID, status, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Consultation, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}
