package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"medtracker/internal/domain/doselogs"
	"medtracker/internal/domain/medications"
	"medtracker/internal/domain/notes"
)

// Store guarda medicamentos, logs y notas bajo un único lock, así el borrado
// en cascada y los chequeos de integridad referencial son atómicos.
type Store struct {
	mu sync.RWMutex

	meds  map[string]medications.Medication
	logs  map[string]doselogs.DoseLog
	notes map[string]noteRow

	seq uint64 // orden de inserción de notas
}

type noteRow struct {
	note notes.Note
	seq  uint64
}

func NewStore() *Store {
	return &Store{
		meds:  make(map[string]medications.Medication),
		logs:  make(map[string]doselogs.DoseLog),
		notes: make(map[string]noteRow),
	}
}

func (s *Store) Medications() *MedicationsRepo { return &MedicationsRepo{s: s} }
func (s *Store) DoseLogs() *DoseLogsRepo       { return &DoseLogsRepo{s: s} }
func (s *Store) Notes() *NotesRepo             { return &NotesRepo{s: s} }

// Ping existe para que /ready trate igual a ambos backends.
func (s *Store) Ping(ctx context.Context) error { return nil }

// -------------------------
// Medications
// -------------------------

type MedicationsRepo struct{ s *Store }

var _ medications.Repository = (*MedicationsRepo)(nil)

func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(m.ID) == "" {
		return errors.New("medication id required")
	}
	if _, exists := r.s.meds[m.ID]; exists {
		return errors.New("medication already exists")
	}
	r.s.meds[m.ID] = m
	return nil
}

func (r *MedicationsRepo) Update(ctx context.Context, m medications.Medication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.meds[m.ID]; !exists {
		return medications.ErrNotFound
	}
	r.s.meds[m.ID] = m
	return nil
}

func (r *MedicationsRepo) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.meds[id]
	if !ok {
		return medications.Medication{}, medications.ErrNotFound
	}
	return m, nil
}

func (r *MedicationsRepo) List(ctx context.Context) ([]medications.Medication, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]medications.Medication, 0, len(r.s.meds))
	for _, m := range r.s.meds {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Delete borra el medicamento y en cascada sus logs y notas.
func (r *MedicationsRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.meds[id]; !exists {
		return medications.ErrNotFound
	}
	delete(r.s.meds, id)

	for lid, l := range r.s.logs {
		if l.MedicationID == id {
			delete(r.s.logs, lid)
		}
	}
	for nid, n := range r.s.notes {
		if n.note.MedicationID == id {
			delete(r.s.notes, nid)
		}
	}
	return nil
}

// -------------------------
// Dose logs
// -------------------------

type DoseLogsRepo struct{ s *Store }

var _ doselogs.Repository = (*DoseLogsRepo)(nil)

func (r *DoseLogsRepo) Create(ctx context.Context, l doselogs.DoseLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(l.ID) == "" {
		return errors.New("dose log id required")
	}
	if _, exists := r.s.logs[l.ID]; exists {
		return errors.New("dose log already exists")
	}
	if _, ok := r.s.meds[l.MedicationID]; !ok {
		return doselogs.ErrMedicationNotFound
	}
	r.s.logs[l.ID] = l
	return nil
}

func (r *DoseLogsRepo) Update(ctx context.Context, l doselogs.DoseLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.logs[l.ID]; !exists {
		return doselogs.ErrNotFound
	}
	if _, ok := r.s.meds[l.MedicationID]; !ok {
		return doselogs.ErrMedicationNotFound
	}
	r.s.logs[l.ID] = l
	return nil
}

func (r *DoseLogsRepo) GetByID(ctx context.Context, id string) (doselogs.DoseLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	l, ok := r.s.logs[id]
	if !ok {
		return doselogs.DoseLog{}, doselogs.ErrNotFound
	}
	return l, nil
}

func (r *DoseLogsRepo) List(ctx context.Context, f doselogs.ListFilter) ([]doselogs.DoseLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]doselogs.DoseLog, 0)
	for _, l := range r.s.logs {
		if f.MedicationID != "" && l.MedicationID != f.MedicationID {
			continue
		}
		if f.From != nil && l.TakenAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !l.TakenAt.Before(*f.To) {
			continue
		}
		out = append(out, l)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TakenAt.Equal(b.TakenAt) {
			return a.ID < b.ID
		}
		if f.Ascending {
			return a.TakenAt.Before(b.TakenAt)
		}
		return a.TakenAt.After(b.TakenAt)
	})
	return out, nil
}

func (r *DoseLogsRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.logs[id]; !exists {
		return doselogs.ErrNotFound
	}
	delete(r.s.logs, id)
	return nil
}

// -------------------------
// Notes
// -------------------------

type NotesRepo struct{ s *Store }

var _ notes.Repository = (*NotesRepo)(nil)

func (r *NotesRepo) Create(ctx context.Context, n notes.Note) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(n.ID) == "" {
		return errors.New("note id required")
	}
	if _, exists := r.s.notes[n.ID]; exists {
		return errors.New("note already exists")
	}
	if _, ok := r.s.meds[n.MedicationID]; !ok {
		return notes.ErrMedicationNotFound
	}
	r.s.seq++
	r.s.notes[n.ID] = noteRow{note: n, seq: r.s.seq}
	return nil
}

func (r *NotesRepo) GetByID(ctx context.Context, id string) (notes.Note, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.notes[id]
	if !ok {
		return notes.Note{}, notes.ErrNotFound
	}
	return row.note, nil
}

func (r *NotesRepo) List(ctx context.Context, medicationID string) ([]notes.Note, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]noteRow, 0)
	for _, row := range r.s.notes {
		if medicationID != "" && row.note.MedicationID != medicationID {
			continue
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.note.CreatedAt.Equal(b.note.CreatedAt) {
			return a.seq > b.seq
		}
		return a.note.CreatedAt.After(b.note.CreatedAt)
	})

	out := make([]notes.Note, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.note)
	}
	return out, nil
}

func (r *NotesRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.notes[id]; !exists {
		return notes.ErrNotFound
	}
	delete(r.s.notes, id)
	return nil
}
