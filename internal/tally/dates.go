package tally

import (
	"strings"
	"time"
)

const (
	// DateKeyLayout is the calendar-day key used for bucketing.
	DateKeyLayout = "2006-01-02"
	// ISOLayout matches the millisecond UTC form events are written in.
	ISOLayout = "2006-01-02T15:04:05.000Z07:00"
)

// FormatISO renders t the way new events store it.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// ParseInstant accepts RFC 3339 timestamps with or without fractional
// seconds, and bare dates (taken as UTC midnight).
func ParseInstant(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(DateKeyLayout, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// DateKey returns the calendar day of t in t's own location.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// DayKeyIn returns the calendar day of t as seen from loc.
func DayKeyIn(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateKeyLayout)
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// LocalNoon returns 12:00 on the given calendar day in loc. Noon keeps a
// backdated event on its day across DST shifts.
func LocalNoon(dateKey string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(DateKeyLayout, strings.TrimSpace(dateKey), loc)
	if err != nil {
		return time.Time{}, false
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, 12, 0, 0, 0, loc), true
}

// ValidDateKey reports whether s is a YYYY-MM-DD calendar date.
func ValidDateKey(s string) bool {
	_, err := time.Parse(DateKeyLayout, strings.TrimSpace(s))
	return err == nil
}
