package staff

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinicdesk/internal/platform/db"
	"github.com/clinicdesk/clinicdesk/pkg/clinicerr"
)

type branchRepoPG struct {
	pool *pgxpool.Pool
}

func NewBranchRepo(pool *pgxpool.Pool) BranchRepository {
	return &branchRepoPG{pool: pool}
}

func (r *branchRepoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const branchCols = `id, branch_id, name, address, phone, active, created_at`

func (r *branchRepoPG) Create(ctx context.Context, b *Branch) error {
	b.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO branch (id, branch_id, name, address, phone, active)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		b.ID, b.BranchID, b.Name, b.Address, b.Phone, b.Active,
	)
	if isUniqueViolation(err) {
		return clinicerr.Conflict("branch id already in use")
	}
	if err != nil {
		return clinicerr.Storage(err)
	}
	return nil
}

func (r *branchRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Branch, error) {
	var b Branch
	err := r.conn(ctx).QueryRow(ctx, `SELECT `+branchCols+` FROM branch WHERE id = $1`, id).
		Scan(&b.ID, &b.BranchID, &b.Name, &b.Address, &b.Phone, &b.Active, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, clinicerr.NotFound("branch")
	}
	if err != nil {
		return nil, clinicerr.Storage(err)
	}
	return &b, nil
}

func (r *branchRepoPG) List(ctx context.Context) ([]*Branch, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+branchCols+` FROM branch ORDER BY created_at, id`)
	if err != nil {
		return nil, clinicerr.Storage(err)
	}
	defer rows.Close()

	var out []*Branch
	for rows.Next() {
		var b Branch
		if err := rows.Scan(&b.ID, &b.BranchID, &b.Name, &b.Address, &b.Phone, &b.Active, &b.CreatedAt); err != nil {
			return nil, clinicerr.Storage(err)
		}
		out = append(out, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, clinicerr.Storage(err)
	}
	return out, nil
}

func (r *branchRepoPG) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE branch SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return clinicerr.Storage(err)
	}
	if tag.RowsAffected() == 0 {
		return clinicerr.NotFound("branch")
	}
	return nil
}

type staffRepoPG struct {
	pool *pgxpool.Pool
}

func NewStaffRepo(pool *pgxpool.Pool) StaffRepository {
	return &staffRepoPG{pool: pool}
}

func (r *staffRepoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const staffCols = `id, staff_id, name, email, phone, role, branch_uuid, password_hash, active, created_at, updated_at`

func (r *staffRepoPG) Create(ctx context.Context, s *Staff) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO staff (id, staff_id, name, email, phone, role, branch_uuid, password_hash, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		s.ID, s.StaffID, s.Name, s.Email, s.Phone, s.Role, s.BranchID, s.PasswordHash, s.Active,
	)
	if isUniqueViolation(err) {
		return clinicerr.Conflict("staff email or id already in use")
	}
	if err != nil {
		return clinicerr.Storage(err)
	}
	return nil
}

func (r *staffRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Staff, error) {
	return scanStaff(r.conn(ctx).QueryRow(ctx, `SELECT `+staffCols+` FROM staff WHERE id = $1`, id))
}

func (r *staffRepoPG) GetByEmail(ctx context.Context, email string) (*Staff, error) {
	return scanStaff(r.conn(ctx).QueryRow(ctx, `SELECT `+staffCols+` FROM staff WHERE lower(email) = lower($1)`, email))
}

func (r *staffRepoPG) Update(ctx context.Context, s *Staff) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE staff SET
			name = $2, email = $3, phone = $4, role = $5, branch_uuid = $6,
			password_hash = $7, updated_at = now()
		WHERE id = $1`,
		s.ID, s.Name, s.Email, s.Phone, s.Role, s.BranchID, s.PasswordHash,
	)
	if isUniqueViolation(err) {
		return clinicerr.Conflict("staff email already in use")
	}
	if err != nil {
		return clinicerr.Storage(err)
	}
	if tag.RowsAffected() == 0 {
		return clinicerr.NotFound("staff")
	}
	return nil
}

func (r *staffRepoPG) List(ctx context.Context, limit, offset int) ([]*Staff, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM staff`).Scan(&total); err != nil {
		return nil, 0, clinicerr.Storage(err)
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+staffCols+` FROM staff ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, clinicerr.Storage(err)
	}
	defer rows.Close()

	var out []*Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, clinicerr.Storage(err)
	}
	return out, total, nil
}

func (r *staffRepoPG) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE staff SET active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return clinicerr.Storage(err)
	}
	if tag.RowsAffected() == 0 {
		return clinicerr.NotFound("staff")
	}
	return nil
}

func scanStaff(row pgx.Row) (*Staff, error) {
	var s Staff
	err := row.Scan(
		&s.ID, &s.StaffID, &s.Name, &s.Email, &s.Phone, &s.Role, &s.BranchID,
		&s.PasswordHash, &s.Active, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, clinicerr.NotFound("staff")
	}
	if err != nil {
		return nil, clinicerr.Storage(err)
	}
	return &s, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
