package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrBadDate marks a date token the user has to re-enter.
	ErrBadDate = errors.New("invalid date")
	// ErrBadTime marks a time token the user has to re-enter.
	ErrBadTime = errors.New("invalid time")
)

// placeholderYear validates partial day.month tokens before the real year
// is known. It is a leap year on purpose: 29.02 must be accepted.
const placeholderYear = 2000

// ResolveDate validates a date token and returns it in canonical form.
// A token with two separators is a full DD.MM.YYYY date; one separator
// means a partial DD.MM date whose year is chosen later by FinalizeDate.
// The second return value reports which of the two it was.
func ResolveDate(token string) (string, bool, error) {
	token = strings.TrimSpace(token)
	if t, err := time.Parse(FullDateFormat, token); err == nil {
		return t.Format(FullDateFormat), true, nil
	}
	t, err := time.Parse(FullDateFormat, fmt.Sprintf("%s.%d", token, placeholderYear))
	if err != nil {
		return "", false, fmt.Errorf("%w: %q", ErrBadDate, token)
	}
	return t.Format(DateFormat), false, nil
}

// ValidTime reports whether the token is a valid HH:MM time of day.
func ValidTime(token string) error {
	if _, err := time.Parse(TimeFormat, strings.TrimSpace(token)); err != nil {
		return fmt.Errorf("%w: %q", ErrBadTime, token)
	}
	return nil
}

// FinalizeDate assigns a year to a date token. Full dates pass through
// unchanged. A partial day.month is placed in the current year of the
// owner's timezone unless that position in the calendar already lies
// behind today's, in which case it rolls to the next year. A day/month
// equal to today stays in the current year; the dialog rejects
// already-elapsed times separately.
func FinalizeDate(dateToken, timeToken string, nowUTC time.Time, loc *time.Location) (string, error) {
	dateToken = strings.TrimSpace(dateToken)
	if strings.Count(dateToken, ".") == 2 {
		return dateToken, nil
	}

	t, err := time.ParseInLocation(
		FullDateFormat+" "+TimeFormat,
		fmt.Sprintf("%s.%d %s", dateToken, placeholderYear, timeToken),
		loc,
	)
	if err != nil {
		return "", fmt.Errorf("%w: %q %q", ErrBadDate, dateToken, timeToken)
	}

	nowLocal := nowUTC.In(loc)
	year := nowLocal.Year()
	if t.Month() < nowLocal.Month() ||
		(t.Month() == nowLocal.Month() && t.Day() < nowLocal.Day()) {
		year++
	}
	return fmt.Sprintf("%02d.%02d.%04d", t.Day(), int(t.Month()), year), nil
}
