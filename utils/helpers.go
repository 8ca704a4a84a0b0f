package utils

import (
	"fmt"
	"time"
)

// ParseDateRange parses the optional from/to filter values of the log
// explorer. Dates come either as RFC3339 timestamps or bare dates; a
// bare "to" date is extended to the end of that day. Missing values
// yield zero times, which match everything.
func ParseDateRange(fromStr, toStr string) (from, to time.Time, err error) {
	if fromStr != "" {
		from, err = parseDateOrTime(fromStr, false)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid 'from' value: %w", err)
		}
	}
	if toStr != "" {
		to, err = parseDateOrTime(toStr, true)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid 'to' value: %w", err)
		}
	}
	return from, to, nil
}

func parseDateOrTime(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, nil
}
