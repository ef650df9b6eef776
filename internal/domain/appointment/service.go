package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinicdesk/pkg/clinicerr"
	"github.com/clinicdesk/clinicdesk/pkg/displayid"
)

// DefaultDurationMinutes is the standard consultation slot.
const DefaultDurationMinutes = 15

// BookInput reserves a slot with a doctor.
type BookInput struct {
	PatientID       uuid.UUID `json:"patient_id"`
	DoctorID        uuid.UUID `json:"doctor_id"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Reason          *string   `json:"reason,omitempty"`
}

type Service struct {
	repo   Repository
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Book reserves a slot. The doctor's calendar is checked for overlap; a taken
// slot is a conflict, not a validation problem.
func (s *Service) Book(ctx context.Context, in BookInput) (*Appointment, error) {
	if in.PatientID == uuid.Nil {
		return nil, clinicerr.Validation("patient_id", "patient is required")
	}
	if in.DoctorID == uuid.Nil {
		return nil, clinicerr.Validation("doctor_id", "doctor is required")
	}
	if in.ScheduledAt.IsZero() {
		return nil, clinicerr.Validation("scheduled_at", "slot time is required")
	}
	if in.ScheduledAt.Before(s.now()) {
		return nil, clinicerr.Validation("scheduled_at", "slot must be in the future")
	}
	if in.DurationMinutes == 0 {
		in.DurationMinutes = DefaultDurationMinutes
	}
	if in.DurationMinutes < 5 || in.DurationMinutes > 180 {
		return nil, clinicerr.Validation("duration_minutes", "duration must be between 5 and 180 minutes")
	}

	a := &Appointment{
		AppointmentID:   displayid.New(displayid.PrefixAppointment),
		PatientID:       in.PatientID,
		DoctorID:        in.DoctorID,
		ScheduledAt:     in.ScheduledAt.UTC(),
		DurationMinutes: in.DurationMinutes,
		Status:          StatusBooked,
		Reason:          in.Reason,
	}

	taken, err := s.repo.HasOverlap(ctx, a.DoctorID, a.ScheduledAt, a.End())
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, clinicerr.Conflict("doctor already has an appointment in this slot")
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("appointment_id", a.AppointmentID).
		Time("scheduled_at", a.ScheduledAt).
		Msg("appointment booked")
	return a, nil
}

// Cancel frees the slot. Only booked appointments can be cancelled.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.advance(ctx, id, StatusBooked, StatusCancelled)
}

// Complete marks the visit as done once the patient has been seen.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.advance(ctx, id, StatusBooked, StatusCompleted)
}

func (s *Service) advance(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	if err := s.repo.UpdateStatus(ctx, id, from, to); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, day time.Time, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByDoctor(ctx, doctorID, day, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}
