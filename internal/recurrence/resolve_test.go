package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDate(t *testing.T) {
	tests := []struct {
		token    string
		want     string
		wantFull bool
		wantErr  bool
	}{
		{token: "15.10.2025", want: "15.10.2025", wantFull: true},
		{token: "15.10", want: "15.10"},
		{token: "5.3", want: "05.03"}, // canonicalized with leading zeros
		{token: "29.02", want: "29.02"},
		{token: "31.04", wantErr: true}, // April has 30 days
		{token: "32.01", wantErr: true},
		{token: "15.13", wantErr: true},
		{token: "tomorrow", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, full, err := ResolveDate(tt.token)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantFull, full)
		})
	}
}

func TestValidTime(t *testing.T) {
	assert.NoError(t, ValidTime("09:00"))
	assert.NoError(t, ValidTime("23:59"))
	assert.ErrorIs(t, ValidTime("24:00"), ErrBadTime)
	assert.ErrorIs(t, ValidTime("9am"), ErrBadTime)
	assert.ErrorIs(t, ValidTime("09:60"), ErrBadTime)
}

func TestFinalizeDate(t *testing.T) {
	loc := mustLoc(t, "Europe/Moscow")

	t.Run("full date passes through", func(t *testing.T) {
		now := time.Date(2025, 10, 20, 12, 0, 0, 0, time.UTC)
		got, err := FinalizeDate("15.10.2024", "09:00", now, loc)
		require.NoError(t, err)
		assert.Equal(t, "15.10.2024", got)
	})

	t.Run("future day-month stays in current year", func(t *testing.T) {
		now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
		got, err := FinalizeDate("15.10", "09:00", now, loc)
		require.NoError(t, err)
		assert.Equal(t, "15.10.2025", got)
	})

	t.Run("past day-month rolls to next year", func(t *testing.T) {
		now := time.Date(2025, 10, 20, 12, 0, 0, 0, time.UTC)
		got, err := FinalizeDate("15.10", "09:00", now, loc)
		require.NoError(t, err)
		assert.Equal(t, "15.10.2026", got)
	})

	t.Run("earlier month later day rolls over", func(t *testing.T) {
		now := time.Date(2025, 10, 5, 12, 0, 0, 0, time.UTC)
		got, err := FinalizeDate("30.09", "09:00", now, loc)
		require.NoError(t, err)
		assert.Equal(t, "30.09.2026", got)
	})

	t.Run("same day-month keeps the current year", func(t *testing.T) {
		// Deliberate policy for the today-equality edge: the intake
		// dialog rejects times that already elapsed, so today stays today.
		now := time.Date(2025, 10, 15, 6, 0, 0, 0, time.UTC)
		got, err := FinalizeDate("15.10", "23:00", now, loc)
		require.NoError(t, err)
		assert.Equal(t, "15.10.2025", got)
	})

	t.Run("comparison happens in the owner timezone", func(t *testing.T) {
		// 23:30 UTC on 14.10 is already 15.10 in Kamchatka (UTC+12):
		// a 14.10 token is in the past there and must roll over.
		kamchatka := mustLoc(t, "Asia/Kamchatka")
		now := time.Date(2025, 10, 14, 23, 30, 0, 0, time.UTC)
		got, err := FinalizeDate("14.10", "09:00", now, kamchatka)
		require.NoError(t, err)
		assert.Equal(t, "14.10.2026", got)
	})

	t.Run("invalid partial token", func(t *testing.T) {
		now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
		_, err := FinalizeDate("31.04", "09:00", now, loc)
		assert.ErrorIs(t, err, ErrBadDate)
	})
}
