package parse

import (
	"fmt"
	"strings"
	"time"

	"huts4u-backend/internal/availability"
)

// ParseDate parses a calendar day sent as "2006-01-02" or as an RFC3339
// timestamp and returns midnight of that day in loc. RFC3339 values are
// converted to loc before the day is taken, so "2025-03-13T20:00:00Z" is
// 14 March in Asia/Kolkata.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if t, err := time.ParseInLocation(availability.DateLayout, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date %q: want YYYY-MM-DD or RFC3339", raw)
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
}

// NormalizeDate rewrites raw into the "2006-01-02" key used by inventory
// records.
func NormalizeDate(raw string, loc *time.Location) (string, error) {
	t, err := ParseDate(raw, loc)
	if err != nil {
		return "", err
	}
	return t.Format(availability.DateLayout), nil
}

// ParseStay parses a check-in/check-out pair. A missing check-out means a
// single night.
func ParseStay(checkIn, checkOut string, loc *time.Location) (time.Time, time.Time, error) {
	in, err := ParseDate(checkIn, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("checkIn: %w", err)
	}
	if strings.TrimSpace(checkOut) == "" {
		return in, in.AddDate(0, 0, 1), nil
	}
	out, err := ParseDate(checkOut, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("checkOut: %w", err)
	}
	return in, out, nil
}
