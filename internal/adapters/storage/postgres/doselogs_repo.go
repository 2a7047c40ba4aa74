package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"medtracker/internal/domain/doselogs"
)

type DoseLogsRepo struct {
	db *sql.DB
}

func NewDoseLogsRepo(db *sql.DB) *DoseLogsRepo {
	return &DoseLogsRepo{db: db}
}

func (r *DoseLogsRepo) Create(ctx context.Context, l doselogs.DoseLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dose_logs (id, medication_id, taken_at, was_taken)
		VALUES ($1,$2,$3,$4)
	`, l.ID, l.MedicationID, l.TakenAt, l.WasTaken)
	if isFKViolation(err) {
		return doselogs.ErrMedicationNotFound
	}
	return err
}

func (r *DoseLogsRepo) Update(ctx context.Context, l doselogs.DoseLog) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE dose_logs
		SET
			medication_id = $2,
			taken_at = $3,
			was_taken = $4
		WHERE id = $1
	`, l.ID, l.MedicationID, l.TakenAt, l.WasTaken)
	if isFKViolation(err) {
		return doselogs.ErrMedicationNotFound
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return doselogs.ErrNotFound
	}
	return nil
}

func (r *DoseLogsRepo) GetByID(ctx context.Context, id string) (doselogs.DoseLog, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return doselogs.DoseLog{}, doselogs.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, medication_id, taken_at, was_taken
		FROM dose_logs
		WHERE id = $1
	`, id)

	var l doselogs.DoseLog
	if err := row.Scan(&l.ID, &l.MedicationID, &l.TakenAt, &l.WasTaken); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return doselogs.DoseLog{}, doselogs.ErrNotFound
		}
		return doselogs.DoseLog{}, err
	}
	return l, nil
}

func (r *DoseLogsRepo) List(ctx context.Context, f doselogs.ListFilter) ([]doselogs.DoseLog, error) {
	var (
		where []string
		args  []any
	)
	if f.MedicationID != "" {
		args = append(args, f.MedicationID)
		where = append(where, fmt.Sprintf("medication_id = $%d", len(args)))
	}
	if f.From != nil {
		args = append(args, *f.From)
		where = append(where, fmt.Sprintf("taken_at >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where = append(where, fmt.Sprintf("taken_at < $%d", len(args)))
	}

	q := `SELECT id, medication_id, taken_at, was_taken FROM dose_logs`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	if f.Ascending {
		q += " ORDER BY taken_at ASC, id ASC"
	} else {
		q += " ORDER BY taken_at DESC, id ASC"
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]doselogs.DoseLog, 0)
	for rows.Next() {
		var l doselogs.DoseLog
		if err := rows.Scan(&l.ID, &l.MedicationID, &l.TakenAt, &l.WasTaken); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *DoseLogsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dose_logs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return doselogs.ErrNotFound
	}
	return nil
}
