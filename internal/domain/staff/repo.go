package staff

import (
	"context"

	"github.com/google/uuid"
)

type BranchRepository interface {
	Create(ctx context.Context, b *Branch) error
	GetByID(ctx context.Context, id uuid.UUID) (*Branch, error)
	List(ctx context.Context) ([]*Branch, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type StaffRepository interface {
	Create(ctx context.Context, s *Staff) error
	GetByID(ctx context.Context, id uuid.UUID) (*Staff, error)
	GetByEmail(ctx context.Context, email string) (*Staff, error)
	Update(ctx context.Context, s *Staff) error
	List(ctx context.Context, limit, offset int) ([]*Staff, int, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}
