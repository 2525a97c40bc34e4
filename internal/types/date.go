package types

import (
	"time"
)

// DateLayout is the wire format for date-only values
const DateLayout = "2006-01-02"

// NewDate builds a date-only value at UTC midnight.
// Out of range days and months are normalised by time.Date.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOnly truncates t to midnight of its calendar day, keeping the calendar day of t's location
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string into a UTC date
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// SameMonth reports whether t falls in the given year and month
func SameMonth(t time.Time, year int, month time.Month) bool {
	return t.Year() == year && t.Month() == month
}
