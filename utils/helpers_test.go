package utils

import (
	"testing"
	"time"
)

func TestParseDateRange(t *testing.T) {
	from, to, err := ParseDateRange("2026-03-01", "2026-03-02")
	if err != nil {
		t.Fatal(err)
	}
	if !from.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("from = %v", from)
	}
	// Bare "to" dates cover the whole day.
	if !to.Equal(time.Date(2026, 3, 2, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("to = %v", to)
	}
}

func TestParseDateRangeRFC3339(t *testing.T) {
	_, to, err := ParseDateRange("", "2026-03-02T10:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	if !to.Equal(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("explicit timestamps should not be extended: %v", to)
	}
}

func TestParseDateRangeEmpty(t *testing.T) {
	from, to, err := ParseDateRange("", "")
	if err != nil {
		t.Fatal(err)
	}
	if !from.IsZero() || !to.IsZero() {
		t.Error("missing values should yield zero times")
	}
}

func TestParseDateRangeInvalid(t *testing.T) {
	if _, _, err := ParseDateRange("yesterday", ""); err == nil {
		t.Error("expected an error for an unparseable date")
	}
}
