package utils

import (
	"fmt"
	"time"
)

func BeginningOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func BeginningOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// ParseClock parses an "HH:MM" string into minutes after midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil || len(s) != 5 {
		return 0, NewValidation("invalid time %q, expected HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// IsOpenAt reports whether now falls within [opening, closing). Windows past midnight wrap.
func IsOpenAt(opening, closing string, now time.Time) (bool, error) {
	open, err := ParseClock(opening)
	if err != nil {
		return false, err
	}
	closeAt, err := ParseClock(closing)
	if err != nil {
		return false, err
	}
	cur := now.Hour()*60 + now.Minute()
	if open <= closeAt {
		return cur >= open && cur < closeAt, nil
	}
	return cur >= open || cur < closeAt, nil
}

// MinutesSince returns whole minutes elapsed since t.
func MinutesSince(t, now time.Time) int {
	return int(now.Sub(t) / time.Minute)
}

func FormatClock(t time.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}
