package model

import "time"

// ISODate is the canonical date layout used across the store and API.
const ISODate = "2006-01-02"

// Date builds a calendar date normalized to UTC midnight.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DayOf truncates a timestamp to its calendar date at UTC midnight.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string. Timestamps with a time component
// are accepted by taking the leading date part, matching how posted_at is
// stored as ISO text.
func ParseDate(s string) (time.Time, error) {
	if len(s) > len(ISODate) {
		s = s[:len(ISODate)]
	}
	return time.Parse(ISODate, s)
}

// MondayIndex maps a date's weekday onto the Monday=0..Sunday=6 convention
// used by the weekday multipliers.
func MondayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
