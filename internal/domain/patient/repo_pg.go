package patient

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinicdesk/internal/platform/db"
	"github.com/clinicdesk/clinicdesk/pkg/clinicerr"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const cols = `id, patient_id, name, age, gender, phone, email, address,
	emergency_contact, guardian_name, guardian_phone, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()

	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (
			id, patient_id, name, age, gender, phone, email, address,
			emergency_contact, guardian_name, guardian_phone
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		p.ID, p.PatientID, p.Name, p.Age, p.Gender, p.Phone, p.Email, p.Address,
		p.EmergencyContact, p.GuardianName, p.GuardianPhone,
	)
	if isUniqueViolation(err) {
		return clinicerr.Conflict("patient id already in use")
	}
	if err != nil {
		return clinicerr.Storage(err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanOne(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM patient WHERE id = $1`, id))
}

func (r *repoPG) GetByPatientID(ctx context.Context, patientID string) (*Patient, error) {
	return scanOne(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM patient WHERE patient_id = $1`, patientID))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET
			name = $2, age = $3, gender = $4, phone = $5, email = $6, address = $7,
			emergency_contact = $8, guardian_name = $9, guardian_phone = $10,
			updated_at = now()
		WHERE id = $1`,
		p.ID, p.Name, p.Age, p.Gender, p.Phone, p.Email, p.Address,
		p.EmergencyContact, p.GuardianName, p.GuardianPhone,
	)
	if err != nil {
		return clinicerr.Storage(err)
	}
	if tag.RowsAffected() == 0 {
		return clinicerr.NotFound("patient")
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	if err != nil {
		return clinicerr.Storage(err)
	}
	if tag.RowsAffected() == 0 {
		return clinicerr.NotFound("patient")
	}
	return nil
}

func (r *repoPG) Search(ctx context.Context, term string, limit, offset int) ([]*Patient, int, error) {
	where := ``
	args := []any{}
	if term != "" {
		where = `WHERE name ILIKE $1 OR phone ILIKE $1 OR patient_id ILIKE $1`
		args = append(args, "%"+escapeLike(term)+"%")
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient `+where, args...).Scan(&total); err != nil {
		return nil, 0, clinicerr.Storage(err)
	}

	query := `SELECT ` + cols + ` FROM patient ` + where +
		` ORDER BY created_at DESC, id LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, clinicerr.Storage(err)
	}
	defer rows.Close()

	var out []*Patient
	for rows.Next() {
		p, err := scanOne(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, clinicerr.Storage(err)
	}
	return out, total, nil
}

func scanOne(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.PatientID, &p.Name, &p.Age, &p.Gender, &p.Phone, &p.Email, &p.Address,
		&p.EmergencyContact, &p.GuardianName, &p.GuardianPhone, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, clinicerr.NotFound("patient")
	}
	if err != nil {
		return nil, clinicerr.Storage(err)
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
