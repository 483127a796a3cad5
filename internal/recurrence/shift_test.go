package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestNextZeroIntervalIsIdentity(t *testing.T) {
	instants := []time.Time{
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC),
	}
	for _, at := range instants {
		assert.Equal(t, at, Next(at, ParseFrequency(OneShot)))
	}
}

func TestNextDurationComponents(t *testing.T) {
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, at.Add(30*time.Minute), Next(at, Interval{Minutes: 30}))
	assert.Equal(t, at.Add(2*time.Hour), Next(at, Interval{Hours: 2}))
	assert.Equal(t, at.Add(24*time.Hour), Next(at, Interval{Days: 1}))
	assert.Equal(t,
		time.Date(2025, 3, 11, 11, 30, 0, 0, time.UTC),
		Next(at, Interval{Days: 1, Hours: 2, Minutes: 30}))
}

func TestNextMonthClamping(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		iv   Interval
		want time.Time
	}{
		{
			name: "jan 31 plus one month clamps to feb 28",
			at:   time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC),
			iv:   Interval{Months: 1},
			want: time.Date(2025, 2, 28, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "jan 31 plus one month in a leap year",
			at:   time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC),
			iv:   Interval{Months: 1},
			want: time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "month addition across year boundary",
			at:   time.Date(2025, 11, 15, 9, 0, 0, 0, time.UTC),
			iv:   Interval{Months: 3},
			want: time.Date(2026, 2, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "feb 29 plus one year clamps to feb 28",
			at:   time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC),
			iv:   Interval{Years: 1},
			want: time.Date(2025, 2, 28, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "days then months",
			at:   time.Date(2025, 1, 30, 9, 0, 0, 0, time.UTC),
			iv:   Interval{Days: 1, Months: 1},
			want: time.Date(2025, 2, 28, 9, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Next(tt.at, tt.iv))
		})
	}
}

func TestShiftDates(t *testing.T) {
	loc := mustLoc(t, "Europe/Moscow")

	t.Run("time-only interval is identity", func(t *testing.T) {
		in := []string{"01.03.2025", "01.04.2025"}
		out, err := ShiftDates(in, Interval{Minutes: 30, Hours: 2}, loc)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("daily shift preserves order", func(t *testing.T) {
		out, err := ShiftDates([]string{"01.03.2025", "15.03.2025"}, Interval{Days: 1}, loc)
		require.NoError(t, err)
		assert.Equal(t, []string{"02.03.2025", "16.03.2025"}, out)
	})

	t.Run("monthly shift clamps each date independently", func(t *testing.T) {
		out, err := ShiftDates([]string{"31.01.2025", "15.02.2025"}, Interval{Months: 1}, loc)
		require.NoError(t, err)
		assert.Equal(t, []string{"28.02.2025", "15.03.2025"}, out)
	})

	t.Run("yearly shift crosses year boundary", func(t *testing.T) {
		out, err := ShiftDates([]string{"31.12.2025"}, Interval{Days: 1}, loc)
		require.NoError(t, err)
		assert.Equal(t, []string{"01.01.2026"}, out)
	})

	t.Run("malformed stored date is an error", func(t *testing.T) {
		_, err := ShiftDates([]string{"31.13.2025"}, Interval{Days: 1}, loc)
		assert.Error(t, err)
	})
}

func TestShiftTimes(t *testing.T) {
	loc := mustLoc(t, "Europe/Moscow")

	t.Run("date-only interval is identity", func(t *testing.T) {
		in := []string{"09:00", "21:30"}
		out, err := ShiftTimes(in, Interval{Days: 1, Months: 2, Years: 3}, loc)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("hour and minute shift", func(t *testing.T) {
		out, err := ShiftTimes([]string{"09:00", "21:30"}, Interval{Hours: 2, Minutes: 15}, loc)
		require.NoError(t, err)
		assert.Equal(t, []string{"11:15", "23:45"}, out)
	})

	t.Run("shift wraps past midnight", func(t *testing.T) {
		out, err := ShiftTimes([]string{"23:50"}, Interval{Minutes: 20}, loc)
		require.NoError(t, err)
		assert.Equal(t, []string{"00:10"}, out)
	})
}
