package memory

import (
	"context"
	"testing"
	"time"

	"medtracker/internal/domain/doselogs"
	"medtracker/internal/domain/medications"
	"medtracker/internal/domain/notes"

	"github.com/stretchr/testify/require"
)

func seedMedication(t *testing.T, s *Store, id string) {
	t.Helper()
	require.NoError(t, s.Medications().Create(context.Background(), medications.Medication{
		ID: id, Name: "Aspirin", DosageMg: 100, PrescribedPerDay: 2, CreatedAt: time.Now(),
	}))
}

func TestStore_DeleteMedicationCascades(t *testing.T) {
	req := require.New(t)
	s := NewStore()
	ctx := context.Background()

	seedMedication(t, s, "med-1")
	seedMedication(t, s, "med-2")

	req.NoError(s.DoseLogs().Create(ctx, doselogs.DoseLog{ID: "l1", MedicationID: "med-1", TakenAt: time.Now(), WasTaken: true}))
	req.NoError(s.DoseLogs().Create(ctx, doselogs.DoseLog{ID: "l2", MedicationID: "med-2", TakenAt: time.Now(), WasTaken: true}))
	req.NoError(s.Notes().Create(ctx, notes.Note{ID: "n1", MedicationID: "med-1", Text: "x", CreatedAt: time.Now()}))
	req.NoError(s.Notes().Create(ctx, notes.Note{ID: "n2", MedicationID: "med-2", Text: "y", CreatedAt: time.Now()}))

	req.NoError(s.Medications().Delete(ctx, "med-1"))

	_, err := s.DoseLogs().GetByID(ctx, "l1")
	req.ErrorIs(err, doselogs.ErrNotFound)
	_, err = s.Notes().GetByID(ctx, "n1")
	req.ErrorIs(err, notes.ErrNotFound)

	_, err = s.DoseLogs().GetByID(ctx, "l2")
	req.NoError(err)
	_, err = s.Notes().GetByID(ctx, "n2")
	req.NoError(err)

	req.ErrorIs(s.Medications().Delete(ctx, "med-1"), medications.ErrNotFound)
}

func TestStore_ReferentialIntegrityOnWrite(t *testing.T) {
	req := require.New(t)
	s := NewStore()
	ctx := context.Background()

	err := s.DoseLogs().Create(ctx, doselogs.DoseLog{ID: "l1", MedicationID: "ghost", TakenAt: time.Now()})
	req.ErrorIs(err, doselogs.ErrMedicationNotFound)

	err = s.Notes().Create(ctx, notes.Note{ID: "n1", MedicationID: "ghost", Text: "x"})
	req.ErrorIs(err, notes.ErrMedicationNotFound)

	seedMedication(t, s, "med-1")
	req.NoError(s.DoseLogs().Create(ctx, doselogs.DoseLog{ID: "l1", MedicationID: "med-1", TakenAt: time.Now()}))

	err = s.DoseLogs().Update(ctx, doselogs.DoseLog{ID: "l1", MedicationID: "ghost", TakenAt: time.Now()})
	req.ErrorIs(err, doselogs.ErrMedicationNotFound)
}

func TestDoseLogsRepo_ListOrderingAndBounds(t *testing.T) {
	req := require.New(t)
	s := NewStore()
	ctx := context.Background()
	seedMedication(t, s, "med-1")

	base := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d"} {
		req.NoError(s.DoseLogs().Create(ctx, doselogs.DoseLog{
			ID: id, MedicationID: "med-1", TakenAt: base.Add(time.Duration(i) * 24 * time.Hour),
		}))
	}

	all, err := s.DoseLogs().List(ctx, doselogs.ListFilter{})
	req.NoError(err)
	req.Equal([]string{"d", "c", "b", "a"}, ids(all))

	from := base.Add(24 * time.Hour)
	to := base.Add(3 * 24 * time.Hour)
	got, err := s.DoseLogs().List(ctx, doselogs.ListFilter{From: &from, To: &to, Ascending: true})
	req.NoError(err)
	req.Equal([]string{"b", "c"}, ids(got))
}

func TestNotesRepo_ListNewestFirstWithInsertionTieBreak(t *testing.T) {
	req := require.New(t)
	s := NewStore()
	ctx := context.Background()
	seedMedication(t, s, "med-1")

	at := time.Date(2025, 11, 1, 8, 0, 0, 0, time.UTC)
	req.NoError(s.Notes().Create(ctx, notes.Note{ID: "first", MedicationID: "med-1", Text: "1", CreatedAt: at}))
	req.NoError(s.Notes().Create(ctx, notes.Note{ID: "second", MedicationID: "med-1", Text: "2", CreatedAt: at}))
	req.NoError(s.Notes().Create(ctx, notes.Note{ID: "older", MedicationID: "med-1", Text: "0", CreatedAt: at.Add(-time.Hour)}))

	got, err := s.Notes().List(ctx, "")
	req.NoError(err)
	req.Len(got, 3)
	req.Equal("second", got[0].ID)
	req.Equal("first", got[1].ID)
	req.Equal("older", got[2].ID)
}

func ids(logs []doselogs.DoseLog) []string {
	out := make([]string, 0, len(logs))
	for _, l := range logs {
		out = append(out, l.ID)
	}
	return out
}
