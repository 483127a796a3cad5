package recurrence

import (
	"fmt"
	"time"
)

// Wire formats shared by storage, matching and the user-facing dialog.
const (
	DateFormat     = "02.01"
	FullDateFormat = "02.01.2006"
	TimeFormat     = "15:04"
	StampFormat    = "2006-01-02 15:04" // expiration timestamps, always UTC
)

// Next returns the occurrence that follows t by the interval. Minutes,
// hours and days are exact durations; months and years are calendar
// additions with the day of month clamped to the target month's length
// (Jan 31 + 1m lands on Feb 28/29, never Mar 2).
func Next(t time.Time, iv Interval) time.Time {
	if iv.IsZero() {
		return t
	}
	t = t.Add(time.Duration(iv.Days)*24*time.Hour +
		time.Duration(iv.Hours)*time.Hour +
		time.Duration(iv.Minutes)*time.Minute)
	return addMonths(t, iv.Years*12+iv.Months)
}

// ShiftDates applies the date components of the interval to every date in
// the list, in the owner's timezone, preserving order. Intervals without a
// date component return the input slice unchanged: minute/hour frequencies
// must not perturb dates.
func ShiftDates(dates []string, iv Interval, loc *time.Location) ([]string, error) {
	if !iv.ShiftsDates() {
		return dates, nil
	}
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		t, err := time.ParseInLocation(FullDateFormat, d, loc)
		if err != nil {
			return nil, fmt.Errorf("shift date %q: %w", d, err)
		}
		t = t.AddDate(0, 0, iv.Days)
		t = addMonths(t, iv.Years*12+iv.Months)
		out = append(out, t.Format(FullDateFormat))
	}
	return out, nil
}

// ShiftTimes is the symmetric operation on times of day, using only the
// minute and hour components. Shifts wrap around midnight; the date part is
// carried by ShiftDates.
func ShiftTimes(times []string, iv Interval, loc *time.Location) ([]string, error) {
	if !iv.ShiftsTimes() {
		return times, nil
	}
	shift := time.Duration(iv.Hours)*time.Hour + time.Duration(iv.Minutes)*time.Minute
	out := make([]string, 0, len(times))
	for _, s := range times {
		t, err := time.ParseInLocation(TimeFormat, s, loc)
		if err != nil {
			return nil, fmt.Errorf("shift time %q: %w", s, err)
		}
		out = append(out, t.Add(shift).Format(TimeFormat))
	}
	return out, nil
}

// addMonths adds calendar months with day-of-month clamping. time.AddDate
// normalizes overflow into the next month, which is not what a monthly
// reminder on the 31st should do.
func addMonths(t time.Time, months int) time.Time {
	if months == 0 {
		return t
	}
	month := int(t.Month()) - 1 + months
	year := t.Year() + month/12
	month %= 12
	if month < 0 {
		month += 12
		year--
	}
	m := time.Month(month + 1)
	day := t.Day()
	if last := daysIn(year, m); day > last {
		day = last
	}
	return time.Date(year, m, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	// Day 0 of the following month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
