package model

import (
	"strings"
	"time"
)

// DateLayout is the ISO-8601 calendar date format used on every interface.
const DateLayout = "2006-01-02"

// DateTimeLayout formats creation timestamps in booking projections.
const DateTimeLayout = "2006-01-02 15:04:05"

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// DateOf truncates an instant to its calendar date in loc, expressed as UTC
// midnight so that it compares directly with parsed dates.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const secondsPerDay = 24 * 60 * 60

// DaysBetween counts calendar days from a to b, both calendar dates as
// returned by ParseDate or DateOf.  It works on Unix day numbers, so stays
// longer than a time.Duration can hold are still counted exactly.
func DaysBetween(a, b time.Time) int {
	return int(dayNumber(b) - dayNumber(a))
}

// dayNumber is the floor of t's Unix time in days.
func dayNumber(t time.Time) int64 {
	s := t.Unix()
	d := s / secondsPerDay
	if s%secondsPerDay < 0 {
		d--
	}
	return d
}

// Stay is a requested or booked date interval [CheckIn, CheckOut).
type Stay struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// Nights is the length of the stay in nights.
func (s Stay) Nights() int { return DaysBetween(s.CheckIn, s.CheckOut) }

// Contains reports whether date falls on a night of the stay, i.e.
// CheckIn <= date < CheckOut.
func (s Stay) Contains(date time.Time) bool {
	return !date.Before(s.CheckIn) && date.Before(s.CheckOut)
}
