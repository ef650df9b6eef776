package patient

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinicdesk/pkg/clinicerr"
	"github.com/clinicdesk/clinicdesk/pkg/displayid"
)

// RegisterInput is the payload for creating a patient record.
type RegisterInput struct {
	Name             string  `json:"name"`
	Age              int     `json:"age"`
	Gender           string  `json:"gender"`
	Phone            string  `json:"phone"`
	Email            *string `json:"email,omitempty"`
	Address          *string `json:"address,omitempty"`
	EmergencyContact *string `json:"emergency_contact,omitempty"`
	GuardianName     *string `json:"guardian_name,omitempty"`
	GuardianPhone    *string `json:"guardian_phone,omitempty"`
}

// UpdateInput mirrors RegisterInput for record edits.
type UpdateInput = RegisterInput

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func validGender(g string) bool {
	switch g {
	case "male", "female", "other":
		return true
	}
	return false
}

func (s *Service) validate(in RegisterInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return clinicerr.Validation("name", "name is required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return clinicerr.Validation("phone", "phone is required")
	}
	if in.Age < 0 || in.Age > 150 {
		return clinicerr.Validation("age", "age must be between 0 and 150")
	}
	if !validGender(in.Gender) {
		return clinicerr.Validation("gender", "gender must be male, female, or other")
	}

	needsGuardian := in.Age > 0 && in.Age < guardianAgeLimit
	if needsGuardian {
		if in.GuardianName == nil || strings.TrimSpace(*in.GuardianName) == "" {
			return clinicerr.Validationf("guardian_name", "guardian name is required for patients under %d", guardianAgeLimit)
		}
		if in.GuardianPhone == nil || strings.TrimSpace(*in.GuardianPhone) == "" {
			return clinicerr.Validationf("guardian_phone", "guardian phone is required for patients under %d", guardianAgeLimit)
		}
	}
	return nil
}

// Register creates a patient record with a fresh PAT display id. On a display
// id collision it retries once with a new id before giving up.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Patient, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	p := &Patient{
		PatientID:        displayid.New(displayid.PrefixPatient),
		Name:             strings.TrimSpace(in.Name),
		Age:              in.Age,
		Gender:           in.Gender,
		Phone:            strings.TrimSpace(in.Phone),
		Email:            in.Email,
		Address:          in.Address,
		EmergencyContact: in.EmergencyContact,
		GuardianName:     in.GuardianName,
		GuardianPhone:    in.GuardianPhone,
	}

	err := s.repo.Create(ctx, p)
	if clinicerr.IsKind(err, clinicerr.KindConflict) {
		p.PatientID = displayid.New(displayid.PrefixPatient)
		err = s.repo.Create(ctx, p)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("patient_id", p.PatientID).Msg("patient registered")
	return p, nil
}

// Update edits a patient record. The display id never changes.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Patient, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Age = in.Age
	p.Gender = in.Gender
	p.Phone = strings.TrimSpace(in.Phone)
	p.Email = in.Email
	p.Address = in.Address
	p.EmergencyContact = in.EmergencyContact
	p.GuardianName = in.GuardianName
	p.GuardianPhone = in.GuardianPhone

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByPatientID(ctx context.Context, patientID string) (*Patient, error) {
	return s.repo.GetByPatientID(ctx, patientID)
}

// Search finds patients whose name, phone, or display id contains term,
// ignoring case. An empty term lists the whole directory.
func (s *Service) Search(ctx context.Context, term string, limit, offset int) ([]*Patient, int, error) {
	return s.repo.Search(ctx, strings.TrimSpace(term), limit, offset)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
