package model

import "time"

// DayStartUTC truncates a range bound to 00:00:00.000 UTC of its calendar day.
func DayStartUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DayEndUTC extends a range bound to 23:59:59.999 UTC of its calendar day.
func DayEndUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, 999*int(time.Millisecond), time.UTC)
}

// InRange reports whether t falls inside the inclusive [start, end] range,
// with nil bounds unbounded. Supplied bounds are normalized to whole calendar
// days in UTC before comparison.
func InRange(t time.Time, start, end *time.Time) bool {
	if start != nil && t.Before(DayStartUTC(*start)) {
		return false
	}
	if end != nil && t.After(DayEndUTC(*end)) {
		return false
	}
	return true
}
