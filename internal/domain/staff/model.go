// Package staff manages branches, staff accounts, and login.
package staff

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

// Branch maps to the branch table. Small chains run a handful of these.
type Branch struct {
	ID        uuid.UUID `db:"id" json:"id"`
	BranchID  string    `db:"branch_id" json:"branch_id"`
	Name      string    `db:"name" json:"name"`
	Address   *string   `db:"address" json:"address,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Staff maps to the staff table. PasswordHash never leaves the server.
type Staff struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	StaffID      string     `db:"staff_id" json:"staff_id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	Phone        *string    `db:"phone" json:"phone,omitempty"`
	Role         auth.Role  `db:"role" json:"role"`
	BranchID     *uuid.UUID `db:"branch_uuid" json:"branch_id,omitempty"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Active       bool       `db:"active" json:"active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
