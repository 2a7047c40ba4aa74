package notes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	items []Note // orden de inserción
}

func (r *testRepo) Create(ctx context.Context, n Note) error {
	r.items = append(r.items, n)
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Note, error) {
	for _, n := range r.items {
		if n.ID == id {
			return n, nil
		}
	}
	return Note{}, ErrNotFound
}

func (r *testRepo) List(ctx context.Context, medicationID string) ([]Note, error) {
	out := make([]Note, 0)
	for i := len(r.items) - 1; i >= 0; i-- {
		n := r.items[i]
		if medicationID == "" || n.MedicationID == medicationID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	for i, n := range r.items {
		if n.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

type testMeds map[string]bool

func (m testMeds) Exists(ctx context.Context, id string) (bool, error) {
	return m[id], nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Create(t *testing.T) {
	req := require.New(t)

	svc := NewService(&testRepo{}, testMeds{"med-1": true})
	now := time.Date(2025, 11, 3, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	n, err := svc.Create(context.Background(), CreateInput{MedicationID: "med-1", Text: "Take with food"})
	req.NoError(err)
	req.NotEmpty(n.ID)
	req.Equal("med-1", n.MedicationID)
	req.Equal("Take with food", n.Text)
	req.Equal(now, n.CreatedAt)
}

func TestService_Create_Validation(t *testing.T) {
	req := require.New(t)
	svc := NewService(&testRepo{}, testMeds{"med-1": true})
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{MedicationID: "med-1"})
	req.ErrorIs(err, ErrInvalidInput)

	_, err = svc.Create(ctx, CreateInput{MedicationID: "med-1", Text: "   "})
	req.ErrorIs(err, ErrInvalidInput)

	_, err = svc.Create(ctx, CreateInput{Text: "orphan"})
	req.ErrorIs(err, ErrInvalidInput)

	_, err = svc.Create(ctx, CreateInput{MedicationID: "999", Text: "Invalid medication"})
	req.ErrorIs(err, ErrMedicationNotFound)
}

func TestService_List_MostRecentFirst(t *testing.T) {
	req := require.New(t)
	svc := NewService(&testRepo{}, testMeds{"med-1": true, "med-2": true})
	ctx := context.Background()

	// Mismo timestamp: gana la última insertada.
	fixed := time.Date(2025, 11, 3, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	first, err := svc.Create(ctx, CreateInput{MedicationID: "med-1", Text: "First note"})
	req.NoError(err)
	second, err := svc.Create(ctx, CreateInput{MedicationID: "med-1", Text: "Second note"})
	req.NoError(err)
	_, err = svc.Create(ctx, CreateInput{MedicationID: "med-2", Text: "Other"})
	req.NoError(err)

	got, err := svc.List(ctx, "med-1")
	req.NoError(err)
	req.Len(got, 2)
	req.Equal(second.ID, got[0].ID)
	req.Equal(first.ID, got[1].ID)

	all, err := svc.List(ctx, "")
	req.NoError(err)
	req.Len(all, 3)
}

func TestService_Delete(t *testing.T) {
	req := require.New(t)
	svc := NewService(&testRepo{}, testMeds{"med-1": true})
	ctx := context.Background()

	n, err := svc.Create(ctx, CreateInput{MedicationID: "med-1", Text: "To be deleted"})
	req.NoError(err)

	req.NoError(svc.Delete(ctx, n.ID))
	_, err = svc.GetByID(ctx, n.ID)
	req.ErrorIs(err, ErrNotFound)
	req.ErrorIs(svc.Delete(ctx, ""), ErrNotFound)
}
