package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"medtracker/internal/domain/notes"
)

type NotesRepo struct {
	db *sql.DB
}

func NewNotesRepo(db *sql.DB) *NotesRepo {
	return &NotesRepo{db: db}
}

func (r *NotesRepo) Create(ctx context.Context, n notes.Note) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notes (id, medication_id, text, created_at)
		VALUES ($1,$2,$3,$4)
	`, n.ID, n.MedicationID, n.Text, n.CreatedAt)
	if isFKViolation(err) {
		return notes.ErrMedicationNotFound
	}
	return err
}

func (r *NotesRepo) GetByID(ctx context.Context, id string) (notes.Note, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return notes.Note{}, notes.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, medication_id, text, created_at
		FROM notes
		WHERE id = $1
	`, id)

	var n notes.Note
	if err := row.Scan(&n.ID, &n.MedicationID, &n.Text, &n.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notes.Note{}, notes.ErrNotFound
		}
		return notes.Note{}, err
	}
	return n, nil
}

// List ordena por created_at desc y desempata con seq (orden de inserción).
func (r *NotesRepo) List(ctx context.Context, medicationID string) ([]notes.Note, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, medication_id, text, created_at
		FROM notes
		WHERE ($1 = '' OR medication_id = $1)
		ORDER BY created_at DESC, seq DESC
	`, medicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]notes.Note, 0)
	for rows.Next() {
		var n notes.Note
		if err := rows.Scan(&n.ID, &n.MedicationID, &n.Text, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notes.ErrNotFound
	}
	return nil
}
