package doselogs

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID map[string]DoseLog
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]DoseLog{}}
}

func (r *testRepo) Create(ctx context.Context, l DoseLog) error {
	if _, ok := r.byID[l.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[l.ID] = l
	return nil
}

func (r *testRepo) Update(ctx context.Context, l DoseLog) error {
	if _, ok := r.byID[l.ID]; !ok {
		return ErrNotFound
	}
	r.byID[l.ID] = l
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (DoseLog, error) {
	l, ok := r.byID[id]
	if !ok {
		return DoseLog{}, ErrNotFound
	}
	return l, nil
}

func (r *testRepo) List(ctx context.Context, f ListFilter) ([]DoseLog, error) {
	out := make([]DoseLog, 0)
	for _, l := range r.byID {
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
		if f.Ascending {
			return out[i].TakenAt.Before(out[j].TakenAt)
		}
		return out[i].TakenAt.After(out[j].TakenAt)
	})
	return out, nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// looseRepo ignora los límites de fecha y devuelve todo en orden desc.
type looseRepo struct{ *testRepo }

func (r looseRepo) List(ctx context.Context, f ListFilter) ([]DoseLog, error) {
	return r.testRepo.List(ctx, ListFilter{MedicationID: f.MedicationID})
}

type testMeds map[string]bool

func (m testMeds) Exists(ctx context.Context, id string) (bool, error) {
	return m[id], nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_DefaultsWasTakenToTrue(t *testing.T) {
	req := require.New(t)
	svc := NewService(newTestRepo(), testMeds{"med-1": true}, nil)

	at := time.Date(2025, 11, 1, 8, 0, 0, 0, time.UTC)
	l, err := svc.Create(context.Background(), CreateInput{MedicationID: "med-1", TakenAt: at})
	req.NoError(err)
	req.NotEmpty(l.ID)
	req.True(l.WasTaken)
	req.Equal(at, l.TakenAt)

	missed := false
	l, err = svc.Create(context.Background(), CreateInput{MedicationID: "med-1", TakenAt: at, WasTaken: &missed})
	req.NoError(err)
	req.False(l.WasTaken)
	req.Equal("Missed", l.Status())
}

func TestService_Create_UnknownMedication(t *testing.T) {
	svc := NewService(newTestRepo(), testMeds{}, nil)

	_, err := svc.Create(context.Background(), CreateInput{MedicationID: "nope", TakenAt: time.Now()})
	require.ErrorIs(t, err, ErrMedicationNotFound)
}

func TestService_Create_RequiresFields(t *testing.T) {
	req := require.New(t)
	svc := NewService(newTestRepo(), testMeds{"med-1": true}, nil)

	_, err := svc.Create(context.Background(), CreateInput{TakenAt: time.Now()})
	req.ErrorIs(err, ErrInvalidInput)

	_, err = svc.Create(context.Background(), CreateInput{MedicationID: "med-1"})
	req.ErrorIs(err, ErrInvalidInput)
}

func TestService_Update_ReplacesFields(t *testing.T) {
	req := require.New(t)
	svc := NewService(newTestRepo(), testMeds{"med-1": true, "med-2": true}, nil)
	ctx := context.Background()

	l, err := svc.Create(ctx, CreateInput{MedicationID: "med-1", TakenAt: time.Date(2025, 11, 1, 8, 0, 0, 0, time.UTC)})
	req.NoError(err)

	missed := false
	at := time.Date(2025, 11, 2, 9, 30, 0, 0, time.UTC)
	got, err := svc.Update(ctx, l.ID, CreateInput{MedicationID: "med-2", TakenAt: at, WasTaken: &missed})
	req.NoError(err)
	req.Equal(l.ID, got.ID)
	req.Equal("med-2", got.MedicationID)
	req.Equal(at, got.TakenAt)
	req.False(got.WasTaken)

	_, err = svc.Update(ctx, "missing", CreateInput{MedicationID: "med-1", TakenAt: at})
	req.ErrorIs(err, ErrNotFound)
}

func TestService_List_NewestFirstAndByMedication(t *testing.T) {
	req := require.New(t)
	svc := NewService(newTestRepo(), testMeds{"med-1": true, "med-2": true}, nil)
	ctx := context.Background()

	base := time.Date(2025, 11, 1, 8, 0, 0, 0, time.UTC)
	for i, med := range []string{"med-1", "med-2", "med-1"} {
		_, err := svc.Create(ctx, CreateInput{MedicationID: med, TakenAt: base.Add(time.Duration(i) * time.Hour)})
		req.NoError(err)
	}

	all, err := svc.List(ctx, "")
	req.NoError(err)
	req.Len(all, 3)
	req.True(all[0].TakenAt.After(all[1].TakenAt))
	req.True(all[1].TakenAt.After(all[2].TakenAt))

	only, err := svc.List(ctx, "med-1")
	req.NoError(err)
	req.Len(only, 2)
	for _, l := range only {
		req.Equal("med-1", l.MedicationID)
	}
}

func TestService_FilterByDate(t *testing.T) {
	req := require.New(t)
	svc := NewService(newTestRepo(), testMeds{"med-1": true}, time.UTC)
	ctx := context.Background()

	for _, at := range []time.Time{
		time.Date(2025, 10, 31, 23, 0, 0, 0, time.UTC),
		time.Date(2025, 11, 3, 7, 0, 0, 0, time.UTC),
		time.Date(2025, 11, 1, 7, 0, 0, 0, time.UTC),
		time.Date(2025, 11, 4, 0, 0, 0, 0, time.UTC),
	} {
		_, err := svc.Create(ctx, CreateInput{MedicationID: "med-1", TakenAt: at})
		req.NoError(err)
	}

	got, err := svc.FilterByDate(ctx, "2025-11-01", "2025-11-03")
	req.NoError(err)
	req.Len(got, 2)
	req.Equal(1, got[0].TakenAt.Day())
	req.Equal(3, got[1].TakenAt.Day())

	got, err = svc.FilterByDate(ctx, "2025-11-03", "2025-11-01")
	req.NoError(err)
	req.Empty(got)

	_, err = svc.FilterByDate(ctx, "", "2025-11-03")
	req.ErrorIs(err, ErrInvalidDateRange)

	_, err = svc.FilterByDate(ctx, "2025-11-01", "not-a-date")
	req.ErrorIs(err, ErrInvalidDateRange)
}

func TestService_FilterByDate_SelectsInclusiveRangeOverStoreResult(t *testing.T) {
	req := require.New(t)
	loc, err := time.LoadLocation("America/Chicago")
	req.NoError(err)

	svc := NewService(looseRepo{newTestRepo()}, testMeds{"med-1": true}, loc)
	ctx := context.Background()

	for _, at := range []time.Time{
		time.Date(2025, 11, 2, 3, 0, 0, 0, time.UTC),  // 1 nov en Chicago
		time.Date(2025, 11, 5, 12, 0, 0, 0, time.UTC), // fuera
		time.Date(2025, 11, 1, 3, 0, 0, 0, time.UTC),  // 31 oct en Chicago
		time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC),
	} {
		_, err := svc.Create(ctx, CreateInput{MedicationID: "med-1", TakenAt: at})
		req.NoError(err)
	}

	got, err := svc.FilterByDate(ctx, "2025-11-01", "2025-11-03")
	req.NoError(err)
	req.Len(got, 2)
	req.Equal(time.Date(2025, 11, 2, 3, 0, 0, 0, time.UTC), got[0].TakenAt)
	req.Equal(time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC), got[1].TakenAt)
}

func TestService_Delete(t *testing.T) {
	req := require.New(t)
	svc := NewService(newTestRepo(), testMeds{"med-1": true}, nil)
	ctx := context.Background()

	l, err := svc.Create(ctx, CreateInput{MedicationID: "med-1", TakenAt: time.Now()})
	req.NoError(err)

	req.NoError(svc.Delete(ctx, l.ID))
	_, err = svc.GetByID(ctx, l.ID)
	req.ErrorIs(err, ErrNotFound)
	req.ErrorIs(svc.Delete(ctx, l.ID), ErrNotFound)
}
