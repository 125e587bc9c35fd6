// Package schedule holds the clinic's booking-grid rules: which days and hours can be booked,
// how slots are bucketed, and how a day's load is classified.
package schedule

import (
	"errors"
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	TimeLayout  = "15:04"
	MonthLayout = "2006-01"
)

var (
	ErrInvalidDate     = errors.New("invalid date format, use YYYY-MM-DD")
	ErrInvalidSlotTime = errors.New("invalid time, use a full hour in HH:00 format")
)

// TimeOfDay is a coarse bucket used for client-side slot filtering.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
)

// ParseTimeOfDay accepts "", "all" (no filter) or one of the buckets.
func ParseTimeOfDay(s string) (TimeOfDay, bool, error) {
	switch s {
	case "", "all":
		return "", false, nil
	case string(Morning), string(Afternoon), string(Evening):
		return TimeOfDay(s), true, nil
	}
	return "", false, fmt.Errorf("unknown time of day %q", s)
}

// TimeOfDayFor buckets an hour: [6,12) morning, [12,18) afternoon, anything else evening.
func TimeOfDayFor(hour int) TimeOfDay {
	switch {
	case hour >= 6 && hour < 12:
		return Morning
	case hour >= 12 && hour < 18:
		return Afternoon
	default:
		return Evening
	}
}

// IsWorkingDay reports whether the clinic sees patients on that date (Monday to Friday).
func IsWorkingDay(date time.Time) bool {
	wd := date.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// ParseDate parses YYYY-MM-DD as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// ParseSlotTime parses HH:00 and returns the hour. Off-grid minutes are rejected.
func ParseSlotTime(s string) (int, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil || len(s) != len(TimeLayout) || t.Minute() != 0 {
		return 0, ErrInvalidSlotTime
	}
	return t.Hour(), nil
}

// FormatHour renders an hour as a slot time, e.g. 9 -> "09:00".
func FormatHour(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsPastDay reports whether date is strictly before the day containing now.
func IsPastDay(date, now time.Time) bool {
	return StartOfDay(date).Before(StartOfDay(now.In(date.Location())))
}

// SlotStart combines a date and an hour into an instant in the date's location.
func SlotStart(date time.Time, hour int) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, hour, 0, 0, 0, date.Location())
}

// IsPastSlot reports whether the slot has already started at now.
func IsPastSlot(date time.Time, hour int, now time.Time) bool {
	return !SlotStart(date, hour).After(now)
}

// DaysInMonth lists every date of the given month (1-based) at midnight in loc.
func DaysInMonth(year, month int, loc *time.Location) []time.Time {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	days := make([]time.Time, 0, 31)
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
