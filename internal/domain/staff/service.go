package staff

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/pkg/clinicerr"
	"github.com/clinicdesk/clinicdesk/pkg/displayid"
)

const minPasswordLen = 8

// CreateStaffInput provisions a staff account.
type CreateStaffInput struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Phone    *string    `json:"phone,omitempty"`
	Role     string     `json:"role"`
	BranchID *uuid.UUID `json:"branch_id,omitempty"`
	Password string     `json:"password"`
}

// CreateBranchInput opens a new clinic branch.
type CreateBranchInput struct {
	Name    string  `json:"name"`
	Address *string `json:"address,omitempty"`
	Phone   *string `json:"phone,omitempty"`
}

// LoginInput is the credential pair presented at /auth/login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult carries the signed token and the account it represents.
type LoginResult struct {
	Token string `json:"token"`
	Staff *Staff `json:"staff"`
}

type Service struct {
	staff    StaffRepository
	branches BranchRepository
	jwt      auth.JWTConfig
	logger   zerolog.Logger
}

func NewService(staffRepo StaffRepository, branchRepo BranchRepository, jwt auth.JWTConfig, logger zerolog.Logger) *Service {
	return &Service{staff: staffRepo, branches: branchRepo, jwt: jwt, logger: logger}
}

// CreateStaff provisions an account. Only admins reach this; creating another
// superadmin is reserved for superadmins.
func (s *Service) CreateStaff(ctx context.Context, in CreateStaffInput) (*Staff, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, clinicerr.Validation("name", "name is required")
	}
	if !strings.Contains(in.Email, "@") {
		return nil, clinicerr.Validation("email", "a valid email is required")
	}
	if len(in.Password) < minPasswordLen {
		return nil, clinicerr.Validationf("password", "password must be at least %d characters", minPasswordLen)
	}
	role, err := auth.ParseRole(in.Role)
	if err != nil {
		return nil, clinicerr.Validation("role", err.Error())
	}
	if role == auth.RoleSuperadmin && auth.RoleFromContext(ctx) != auth.RoleSuperadmin {
		return nil, clinicerr.Permission("only a superadmin can create superadmin accounts")
	}
	if in.BranchID != nil {
		if _, err := s.branches.GetByID(ctx, *in.BranchID); err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, clinicerr.Storage(err)
	}

	st := &Staff{
		StaffID:      displayid.New(displayid.PrefixStaff),
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:        in.Phone,
		Role:         role,
		BranchID:     in.BranchID,
		PasswordHash: string(hash),
		Active:       true,
	}
	if err := s.staff.Create(ctx, st); err != nil {
		return nil, err
	}

	s.logger.Info().Str("staff_id", st.StaffID).Str("role", string(role)).Msg("staff account created")
	return st, nil
}

// Login verifies credentials and issues a signed token. Invalid email and
// wrong password return the same error so the endpoint does not leak which
// accounts exist.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	st, err := s.staff.GetByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		if clinicerr.IsKind(err, clinicerr.KindNotFound) {
			return nil, clinicerr.Permission("invalid credentials")
		}
		return nil, err
	}
	if !st.Active {
		return nil, clinicerr.Permission("account is disabled")
	}
	if bcrypt.CompareHashAndPassword([]byte(st.PasswordHash), []byte(in.Password)) != nil {
		return nil, clinicerr.Permission("invalid credentials")
	}

	branchID := ""
	if st.BranchID != nil {
		branchID = st.BranchID.String()
	}
	token, err := auth.IssueToken(s.jwt, st.ID.String(), st.Role, branchID, st.Name)
	if err != nil {
		return nil, clinicerr.Storage(err)
	}

	s.logger.Info().Str("staff_id", st.StaffID).Msg("staff logged in")
	return &LoginResult{Token: token, Staff: st}, nil
}

// ChangePassword lets a staff member rotate their own password.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	st, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(st.PasswordHash), []byte(current)) != nil {
		return clinicerr.Permission("current password is incorrect")
	}
	if len(next) < minPasswordLen {
		return clinicerr.Validationf("password", "password must be at least %d characters", minPasswordLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return clinicerr.Storage(err)
	}
	st.PasswordHash = string(hash)
	return s.staff.Update(ctx, st)
}

func (s *Service) GetStaff(ctx context.Context, id uuid.UUID) (*Staff, error) {
	return s.staff.GetByID(ctx, id)
}

func (s *Service) ListStaff(ctx context.Context, limit, offset int) ([]*Staff, int, error) {
	return s.staff.List(ctx, limit, offset)
}

// Deactivate disables login without deleting the account or its history.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.staff.SetActive(ctx, id, false)
}

func (s *Service) Reactivate(ctx context.Context, id uuid.UUID) error {
	return s.staff.SetActive(ctx, id, true)
}

// CreateBranch opens a branch. Superadmin-only at the route level.
func (s *Service) CreateBranch(ctx context.Context, in CreateBranchInput) (*Branch, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, clinicerr.Validation("name", "branch name is required")
	}
	b := &Branch{
		BranchID: displayid.New(displayid.PrefixBranch),
		Name:     strings.TrimSpace(in.Name),
		Address:  in.Address,
		Phone:    in.Phone,
		Active:   true,
	}
	if err := s.branches.Create(ctx, b); err != nil {
		return nil, err
	}
	s.logger.Info().Str("branch_id", b.BranchID).Msg("branch created")
	return b, nil
}

func (s *Service) ListBranches(ctx context.Context) ([]*Branch, error) {
	return s.branches.List(ctx)
}
