package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"napominator/internal/recurrence"
)

func TestNewScheduled(t *testing.T) {
	r := NewScheduled(42, "pills", "1d", []string{"01.03.2025"}, []string{"09:00"})

	assert.True(t, r.Active)
	assert.Equal(t, StateScheduled, r.State)
	assert.False(t, r.IsEcho())
	assert.False(t, r.IsOneShot())
	assert.Empty(t, r.ChainID)
	assert.True(t, r.ExpiresAt.IsZero())
	assert.Equal(t, recurrence.Interval{Days: 1}, r.Interval())
}

func TestNewEcho(t *testing.T) {
	src := NewScheduled(42, "pills", "1d", []string{"01.03.2025"}, []string{"09:00"})
	expires := time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC)

	echo := NewEcho(src, Occurrence{Date: "01.03.2025", Time: "09:15"}, expires)

	assert.True(t, echo.IsEcho())
	assert.True(t, echo.IsOneShot(), "echoes never repeat on their own")
	assert.Equal(t, []string{"01.03.2025"}, echo.Dates)
	assert.Equal(t, []string{"09:15"}, echo.Times)
	assert.Equal(t, expires, echo.ExpiresAt)
	assert.NotEmpty(t, echo.ChainID, "first echo mints the chain id")

	// A follow-up echo stays on the same chain.
	next := NewEcho(echo, Occurrence{Date: "01.03.2025", Time: "09:30"}, expires)
	assert.Equal(t, echo.ChainID, next.ChainID)
}

func TestMatchesIsCartesian(t *testing.T) {
	r := NewScheduled(1, "x", recurrence.OneShot,
		[]string{"01.03.2025", "01.04.2025"},
		[]string{"09:00", "21:00"})

	// Every date pairs with every time.
	for _, d := range r.Dates {
		for _, tm := range r.Times {
			assert.True(t, r.Matches(Occurrence{Date: d, Time: tm}))
		}
	}
	assert.False(t, r.Matches(Occurrence{Date: "02.03.2025", Time: "09:00"}))
	assert.False(t, r.Matches(Occurrence{Date: "01.03.2025", Time: "09:01"}))
}

func TestIsLastSlot(t *testing.T) {
	r := NewScheduled(1, "x", recurrence.OneShot,
		[]string{"01.03.2025", "01.04.2025"},
		[]string{"09:00", "21:00"})

	assert.False(t, r.IsLastSlot(Occurrence{Date: "01.03.2025", Time: "21:00"}))
	assert.False(t, r.IsLastSlot(Occurrence{Date: "01.04.2025", Time: "09:00"}))
	assert.True(t, r.IsLastSlot(Occurrence{Date: "01.04.2025", Time: "21:00"}))
}
