package utils

import (
	"strings"
	"time"
)

// ParseFlexibleDate accepts RFC3339 datetimes (2026-02-18T00:00:00Z)
// or plain dates (2026-02-18). Empty input returns the zero time with
// ok=false.
func ParseFlexibleDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
