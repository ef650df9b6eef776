package billing

import (
	"context"
	"errors"
	"strconv"
	"time"

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

const cols = `id, invoice_number, consultation_id, patient_id, status, base_fee,
	subtotal, tax, discount, total, payment_method, created_by,
	issued_at, paid_at, voided_at, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, inv *Invoice) error {
	inv.ID = uuid.New()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return clinicerr.Storage(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx, `
		INSERT INTO invoice (
			id, invoice_number, consultation_id, patient_id, status, base_fee,
			subtotal, tax, discount, total, created_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		inv.ID, inv.InvoiceNumber, inv.ConsultationID, inv.PatientID, inv.Status, inv.BaseFee,
		inv.Subtotal, inv.Tax, inv.Discount, inv.Total, inv.CreatedBy,
	)
	if isUniqueViolation(err) {
		return clinicerr.Conflict("invoice number already in use")
	}
	if err != nil {
		return clinicerr.Storage(err)
	}

	if err := insertItems(ctx, tx, inv.ID, inv.Items); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return clinicerr.Storage(err)
	}
	return nil
}

func insertItems(ctx context.Context, q db.Querier, invoiceID uuid.UUID, items []LineItem) error {
	for i, item := range items {
		_, err := q.Exec(ctx, `
			INSERT INTO invoice_line_item (id, invoice_id, sequence, description, amount)
			VALUES ($1,$2,$3,$4,$5)`,
			uuid.New(), invoiceID, i+1, item.Description, item.Amount,
		)
		if err != nil {
			return clinicerr.Storage(err)
		}
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	inv, err := scanOne(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM invoice WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *repoPG) GetByInvoiceNumber(ctx context.Context, number string) (*Invoice, error) {
	inv, err := scanOne(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM invoice WHERE invoice_number = $1`, number))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *repoPG) GetActiveByConsultation(ctx context.Context, consultationID uuid.UUID) (*Invoice, error) {
	inv, err := scanOne(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM invoice WHERE consultation_id = $1 AND status != 'void'`, consultationID))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *repoPG) loadItems(ctx context.Context, inv *Invoice) error {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT description, amount FROM invoice_line_item
		WHERE invoice_id = $1 ORDER BY sequence`, inv.ID)
	if err != nil {
		return clinicerr.Storage(err)
	}
	defer rows.Close()

	inv.Items = []LineItem{}
	for rows.Next() {
		var item LineItem
		if err := rows.Scan(&item.Description, &item.Amount); err != nil {
			return clinicerr.Storage(err)
		}
		inv.Items = append(inv.Items, item)
	}
	return rows.Err()
}

func (r *repoPG) UpdateDraft(ctx context.Context, inv *Invoice) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return clinicerr.Storage(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx, `
		UPDATE invoice SET
			base_fee = $2, subtotal = $3, tax = $4, discount = $5, total = $6,
			updated_at = now()
		WHERE id = $1 AND status = 'draft'`,
		inv.ID, inv.BaseFee, inv.Subtotal, inv.Tax, inv.Discount, inv.Total,
	)
	if err != nil {
		return clinicerr.Storage(err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetByID(ctx, inv.ID); getErr != nil {
			return getErr
		}
		return clinicerr.Conflict("invoice has been issued and is no longer editable")
	}

	if _, err := tx.Exec(ctx, `DELETE FROM invoice_line_item WHERE invoice_id = $1`, inv.ID); err != nil {
		return clinicerr.Storage(err)
	}
	if err := insertItems(ctx, tx, inv.ID, inv.Items); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return clinicerr.Storage(err)
	}
	return nil
}

func (r *repoPG) Issue(ctx context.Context, id uuid.UUID, method PaymentMethod, at time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE invoice SET status = 'pending', payment_method = $2, issued_at = $3, updated_at = now()
		WHERE id = $1 AND status = 'draft'`,
		id, method, at,
	)
	if err != nil {
		return clinicerr.Storage(err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return clinicerr.Conflict("invoice has already been issued")
	}
	return nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, at time.Time) error {
	timestampCol := ""
	switch to {
	case StatusPaid:
		timestampCol = `, paid_at = $4`
	case StatusVoid:
		timestampCol = `, voided_at = $4`
	}

	args := []any{id, from, to}
	if timestampCol != "" {
		args = append(args, at)
	}

	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE invoice SET status = $3, updated_at = now()`+timestampCol+`
		WHERE id = $1 AND status = $2`, args...)
	if err != nil {
		return clinicerr.Storage(err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return clinicerr.Conflictf("invoice is no longer %s", from)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, status Status, limit, offset int) ([]*Invoice, int, error) {
	where := ``
	args := []any{}
	if status != "" {
		where = `WHERE status = $1`
		args = append(args, status)
	}
	return r.list(ctx, where, args, limit, offset)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Invoice, int, error) {
	return r.list(ctx, `WHERE patient_id = $1`, []any{patientID}, limit, offset)
}

func (r *repoPG) list(ctx context.Context, where string, args []any, limit, offset int) ([]*Invoice, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM invoice `+where, args...).Scan(&total); err != nil {
		return nil, 0, clinicerr.Storage(err)
	}

	query := `SELECT ` + cols + ` FROM invoice ` + where +
		` ORDER BY created_at DESC, id LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, clinicerr.Storage(err)
	}
	defer rows.Close()

	var out []*Invoice
	for rows.Next() {
		inv, err := scanOne(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, clinicerr.Storage(err)
	}

	for _, inv := range out {
		if err := r.loadItems(ctx, inv); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

func scanOne(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.ConsultationID, &inv.PatientID, &inv.Status, &inv.BaseFee,
		&inv.Subtotal, &inv.Tax, &inv.Discount, &inv.Total, &inv.PaymentMethod, &inv.CreatedBy,
		&inv.IssuedAt, &inv.PaidAt, &inv.VoidedAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, clinicerr.NotFound("invoice")
	}
	if err != nil {
		return nil, clinicerr.Storage(err)
	}
	return &inv, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
