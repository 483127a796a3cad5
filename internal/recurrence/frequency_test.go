package recurrence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidFrequency(t *testing.T) {
	tests := []struct {
		spec string
		want bool
	}{
		{"0", true},
		{"1d", true},
		{"1d 2h 30min", true},
		{"30MIN 2H", true},
		{"1y 1m 1d 1h 1min", true},
		{"", true}, // empty subset is a zero interval
		{"daily", false},
		{"1w", false},
		{"d1", false},
		{"1.5h", false},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidFrequency(tt.spec))
		})
	}
}

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		spec string
		want Interval
	}{
		{"0", Interval{}},
		{"", Interval{}},
		{"1d", Interval{Days: 1}},
		{"1d 2h 30min", Interval{Days: 1, Hours: 2, Minutes: 30}},
		{"30min 2h 1d", Interval{Days: 1, Hours: 2, Minutes: 30}}, // any order
		{"2Y 3M", Interval{Years: 2, Months: 3}},
		{"15min", Interval{Minutes: 15}},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFrequency(tt.spec))
		})
	}
}

func TestIntervalComponents(t *testing.T) {
	assert.True(t, Interval{}.IsZero())
	assert.False(t, Interval{Minutes: 1}.IsZero())

	assert.True(t, Interval{Days: 1}.ShiftsDates())
	assert.True(t, Interval{Months: 1}.ShiftsDates())
	assert.True(t, Interval{Years: 1}.ShiftsDates())
	assert.False(t, Interval{Minutes: 30, Hours: 2}.ShiftsDates())

	assert.True(t, Interval{Minutes: 30}.ShiftsTimes())
	assert.True(t, Interval{Hours: 1}.ShiftsTimes())
	assert.False(t, Interval{Days: 1, Months: 1}.ShiftsTimes())
}
