package consultation

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

const cols = `id, consultation_id, patient_id, doctor_id, status, symptoms, diagnosis,
	prescription, notes, started_at, completed_at, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, c *Consultation) error {
	c.ID = uuid.New()

	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO consultation (
			id, consultation_id, patient_id, doctor_id, status, symptoms
		) VALUES ($1,$2,$3,$4,$5,$6)`,
		c.ID, c.ConsultationID, c.PatientID, c.DoctorID, c.Status, c.Symptoms,
	)
	if err != nil {
		return clinicerr.Storage(err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	return scanOne(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM consultation WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, c *Consultation) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE consultation SET
			symptoms = $2, diagnosis = $3, prescription = $4, notes = $5,
			updated_at = now()
		WHERE id = $1`,
		c.ID, c.Symptoms, c.Diagnosis, c.Prescription, c.Notes,
	)
	if err != nil {
		return clinicerr.Storage(err)
	}
	if tag.RowsAffected() == 0 {
		return clinicerr.NotFound("consultation")
	}
	return nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	timestampCol := ""
	switch to {
	case StatusInProgress:
		timestampCol = `, started_at = now()`
	case StatusCompleted:
		timestampCol = `, completed_at = now()`
	}

	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE consultation SET status = $3, updated_at = now()`+timestampCol+`
		WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		return clinicerr.Storage(err)
	}
	if tag.RowsAffected() == 0 {
		// Either the row is gone or someone moved it first.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return clinicerr.Conflictf("consultation is no longer %s", from)
	}
	return nil
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, status Status, limit, offset int) ([]*Consultation, int, error) {
	where := `WHERE doctor_id = $1`
	args := []any{doctorID}
	if status != "" {
		where += ` AND status = $2`
		args = append(args, status)
	}
	return r.list(ctx, where, args, limit, offset)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Consultation, int, error) {
	return r.list(ctx, `WHERE patient_id = $1`, []any{patientID}, limit, offset)
}

func (r *repoPG) list(ctx context.Context, where string, args []any, limit, offset int) ([]*Consultation, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM consultation `+where, args...).Scan(&total); err != nil {
		return nil, 0, clinicerr.Storage(err)
	}

	query := `SELECT ` + cols + ` FROM consultation ` + where +
		` ORDER BY created_at DESC, id LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, clinicerr.Storage(err)
	}
	defer rows.Close()

	var out []*Consultation
	for rows.Next() {
		c, err := scanOne(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, clinicerr.Storage(err)
	}
	return out, total, nil
}

func scanOne(row pgx.Row) (*Consultation, error) {
	var c Consultation
	err := row.Scan(
		&c.ID, &c.ConsultationID, &c.PatientID, &c.DoctorID, &c.Status, &c.Symptoms,
		&c.Diagnosis, &c.Prescription, &c.Notes, &c.StartedAt, &c.CompletedAt,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, clinicerr.NotFound("consultation")
	}
	if err != nil {
		return nil, clinicerr.Storage(err)
	}
	return &c, nil
}
