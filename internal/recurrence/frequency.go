// Package recurrence implements the calendar arithmetic behind repeating
// reminders: compact frequency specs, next-occurrence computation and
// resolution of partial date tokens.
package recurrence

import (
	"regexp"
	"strconv"
	"strings"
)

// OneShot is the frequency sentinel that disables repetition.
const OneShot = "0"

var (
	freqToken = regexp.MustCompile(`(\d+)(min|h|d|m|y)`)
	freqSpec  = regexp.MustCompile(`^(\d+(min|h|d|m|y)\s*)*$`)
)

// Interval is the parsed form of a frequency spec such as "1d 2h 30min".
// Absent units stay zero.
type Interval struct {
	Minutes int
	Hours   int
	Days    int
	Months  int
	Years   int
}

// IsZero reports whether the interval carries no shift at all.
func (iv Interval) IsZero() bool {
	return iv == Interval{}
}

// ShiftsDates reports whether applying the interval moves calendar dates.
func (iv Interval) ShiftsDates() bool {
	return iv.Days != 0 || iv.Months != 0 || iv.Years != 0
}

// ShiftsTimes reports whether applying the interval moves times of day.
func (iv Interval) ShiftsTimes() bool {
	return iv.Minutes != 0 || iv.Hours != 0
}

// ValidFrequency reports whether s is the one-shot sentinel or a
// whitespace-separated sequence of <int><unit> tokens. Callers must check
// this before handing user input to ParseFrequency.
func ValidFrequency(s string) bool {
	s = strings.TrimSpace(s)
	if s == OneShot {
		return true
	}
	return freqSpec.MatchString(strings.ToLower(s))
}

// ParseFrequency extracts the interval from a well-formed frequency spec.
// Tokens may appear in any order and any case; text that is not a token is
// skipped, so ParseFrequency never fails. A later duplicate unit wins.
func ParseFrequency(s string) Interval {
	var iv Interval
	if strings.TrimSpace(s) == OneShot {
		return iv
	}
	for _, m := range freqToken.FindAllStringSubmatch(strings.ToLower(s), -1) {
		n, _ := strconv.Atoi(m[1])
		switch m[2] {
		case "min":
			iv.Minutes = n
		case "h":
			iv.Hours = n
		case "d":
			iv.Days = n
		case "m":
			iv.Months = n
		case "y":
			iv.Years = n
		}
	}
	return iv
}
