package adherence

import (
	"math"
	"testing"
	"time"

	"medtracker/internal/domain/doselogs"

	"github.com/stretchr/testify/require"
)

func logAt(t time.Time, taken bool) doselogs.DoseLog {
	return doselogs.DoseLog{ID: t.String(), MedicationID: "med-1", TakenAt: t, WasTaken: taken}
}

func TestRate_NoLogsIsZero(t *testing.T) {
	require.Equal(t, 0.0, Rate(nil))
	require.Equal(t, 0.0, Rate([]doselogs.DoseLog{}))
}

func TestRate_AllTaken(t *testing.T) {
	now := time.Now()
	logs := []doselogs.DoseLog{
		logAt(now.Add(-30*time.Hour), true),
		logAt(now.Add(-1*time.Hour), true),
	}
	require.Equal(t, 100.0, Rate(logs))
}

func TestRate_HalfTaken(t *testing.T) {
	now := time.Now()
	logs := []doselogs.DoseLog{
		logAt(now.Add(-2*time.Hour), true),
		logAt(now.Add(-1*time.Hour), false),
	}
	require.Equal(t, 50.0, Rate(logs))
}

func TestRate_RoundsToTwoDecimalsWithinBounds(t *testing.T) {
	req := require.New(t)
	base := time.Date(2025, 11, 1, 8, 0, 0, 0, time.UTC)

	cases := []struct {
		taken, total int
		want         float64
	}{
		{0, 3, 0},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{3, 3, 100},
		{1, 7, 14.29},
		{5, 8, 62.5},
	}

	for _, tc := range cases {
		logs := make([]doselogs.DoseLog, 0, tc.total)
		for i := 0; i < tc.total; i++ {
			logs = append(logs, logAt(base.Add(time.Duration(i)*time.Hour), i < tc.taken))
		}
		got := Rate(logs)
		req.Equal(tc.want, got, "taken=%d total=%d", tc.taken, tc.total)
		req.GreaterOrEqual(got, 0.0)
		req.LessOrEqual(got, 100.0)
	}
}

func TestExpectedDoses(t *testing.T) {
	req := require.New(t)

	n, err := ExpectedDoses(5, 2)
	req.NoError(err)
	req.Equal(10, n)

	n, err = ExpectedDoses(0, 3)
	req.NoError(err)
	req.Equal(0, n)

	_, err = ExpectedDoses(-1, 2)
	req.ErrorIs(err, ErrInvalidArgument)

	_, err = ExpectedDoses(3, 0)
	req.ErrorIs(err, ErrInvalidArgument)
}

func TestExpectedDoses_OverflowIsInvalid(t *testing.T) {
	req := require.New(t)

	// Límite exacto: el producto más grande representable.
	n, err := ExpectedDoses(math.MaxInt/2, 2)
	req.NoError(err)
	req.Equal(math.MaxInt/2*2, n)

	_, err = ExpectedDoses(math.MaxInt/2+1, 2)
	req.ErrorIs(err, ErrInvalidArgument)
	req.EqualError(err, "Days and schedule are too large.")

	_, err = ExpectedDoses(math.MaxInt, 2)
	req.ErrorIs(err, ErrInvalidArgument)

	n, err = ExpectedDoses(math.MaxInt, 1)
	req.NoError(err)
	req.Equal(math.MaxInt, n)
}

func TestRateOverPeriod_InvertedRangeFails(t *testing.T) {
	r := doselogs.NewDateRange(
		time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
	)
	_, err := RateOverPeriod(nil, r, 1, time.UTC)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRateOverPeriod_ThreeDaysOnePerDay(t *testing.T) {
	req := require.New(t)

	start := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	logs := []doselogs.DoseLog{
		logAt(time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC), true),
		logAt(time.Date(2025, 11, 2, 9, 0, 0, 0, time.UTC), false),
		// fuera del rango: no cuenta
		logAt(time.Date(2025, 11, 4, 9, 0, 0, 0, time.UTC), true),
	}

	got, err := RateOverPeriod(logs, doselogs.NewDateRange(start, end), 1, time.UTC)
	req.NoError(err)
	req.Equal(33.33, got)
}

func TestRateOverPeriod_InclusiveEndDate(t *testing.T) {
	day := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	logs := []doselogs.DoseLog{
		logAt(time.Date(2025, 11, 1, 23, 59, 59, 0, time.UTC), true),
	}

	got, err := RateOverPeriod(logs, doselogs.NewDateRange(day, day), 1, time.UTC)
	require.NoError(t, err)
	require.Equal(t, 100.0, got)
}

func TestRateOverPeriod_NotClampedAbove100(t *testing.T) {
	day := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	logs := []doselogs.DoseLog{
		logAt(day.Add(8*time.Hour), true),
		logAt(day.Add(12*time.Hour), true),
		logAt(day.Add(20*time.Hour), true),
	}

	got, err := RateOverPeriod(logs, doselogs.NewDateRange(day, day), 2, time.UTC)
	require.NoError(t, err)
	require.Equal(t, 150.0, got)
}

func TestRateOverPeriod_ZeroScheduleIsInvalid(t *testing.T) {
	day := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	_, err := RateOverPeriod(nil, doselogs.NewDateRange(day, day), 0, time.UTC)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRateOverPeriod_UsesLocationForCalendarDate(t *testing.T) {
	req := require.New(t)

	chicago, err := time.LoadLocation("America/Chicago")
	req.NoError(err)

	// 2025-11-02 03:00 UTC es todavía 2025-11-01 en Chicago.
	logs := []doselogs.DoseLog{logAt(time.Date(2025, 11, 2, 3, 0, 0, 0, time.UTC), true)}
	nov1 := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)

	got, err := RateOverPeriod(logs, doselogs.NewDateRange(nov1, nov1), 1, chicago)
	req.NoError(err)
	req.Equal(100.0, got)

	got, err = RateOverPeriod(logs, doselogs.NewDateRange(nov1, nov1), 1, time.UTC)
	req.NoError(err)
	req.Equal(0.0, got)
}
