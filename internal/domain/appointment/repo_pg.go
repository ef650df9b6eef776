package appointment

import (
	"context"
	"errors"
	"strconv"
	"time"

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

const cols = `id, appointment_id, patient_id, doctor_id, scheduled_at,
	duration_minutes, status, reason, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()

	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (
			id, appointment_id, patient_id, doctor_id, scheduled_at,
			duration_minutes, status, reason
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.AppointmentID, a.PatientID, a.DoctorID, a.ScheduledAt,
		a.DurationMinutes, a.Status, a.Reason,
	)
	if err != nil {
		return clinicerr.Storage(err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanOne(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		return clinicerr.Storage(err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return clinicerr.Conflictf("appointment is no longer %s", from)
	}
	return nil
}

func (r *repoPG) HasOverlap(ctx context.Context, doctorID uuid.UUID, start, end time.Time) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointment
			WHERE doctor_id = $1 AND status = 'booked'
			  AND scheduled_at < $3
			  AND scheduled_at + make_interval(mins => duration_minutes) > $2
		)`,
		doctorID, start, end,
	).Scan(&exists)
	if err != nil {
		return false, clinicerr.Storage(err)
	}
	return exists, nil
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, day time.Time, limit, offset int) ([]*Appointment, int, error) {
	where := `WHERE doctor_id = $1`
	args := []any{doctorID}
	if !day.IsZero() {
		where += ` AND scheduled_at::date = $2::date`
		args = append(args, day)
	}
	return r.list(ctx, where, args, limit, offset)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, `WHERE patient_id = $1`, []any{patientID}, limit, offset)
}

func (r *repoPG) list(ctx context.Context, where string, args []any, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointment `+where, args...).Scan(&total); err != nil {
		return nil, 0, clinicerr.Storage(err)
	}

	query := `SELECT ` + cols + ` FROM appointment ` + where +
		` ORDER BY scheduled_at, id LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, clinicerr.Storage(err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		a, err := scanOne(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, clinicerr.Storage(err)
	}
	return out, total, nil
}

func scanOne(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID, &a.AppointmentID, &a.PatientID, &a.DoctorID, &a.ScheduledAt,
		&a.DurationMinutes, &a.Status, &a.Reason, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, clinicerr.NotFound("appointment")
	}
	if err != nil {
		return nil, clinicerr.Storage(err)
	}
	return &a, nil
}
