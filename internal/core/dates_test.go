package core

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-01-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	for _, in := range []string{"", "  ", "15-01-2024", "2024-13-01", "not a date"} {
		if _, err := ParseDate(in); err == nil {
			t.Fatalf("%q expected error", in)
		}
	}
}

func TestFormatDateRoundTrip(t *testing.T) {
	d, _ := ParseDate("2024-02-29")
	if got := FormatDate(d); got != "2024-02-29" {
		t.Fatalf("expected 2024-02-29, got %s", got)
	}
}

func TestEndOfDay(t *testing.T) {
	in := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
	got := EndOfDay(in)
	want := time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestAddMonths(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"2024-01-15", 1, "2024-02-15"},
		{"2024-01-15", 2, "2024-03-15"},
		{"2024-11-30", 2, "2025-01-30"},
		// Day overflow normalizes forward instead of clamping.
		{"2024-01-31", 1, "2024-03-02"},
		{"2023-01-31", 1, "2023-03-03"},
	}
	for _, tc := range cases {
		d, _ := ParseDate(tc.in)
		if got := FormatDate(AddMonths(d, tc.n)); got != tc.want {
			t.Fatalf("%s +%dm expected %s, got %s", tc.in, tc.n, tc.want, got)
		}
	}
}

func TestMonthInterval(t *testing.T) {
	now := time.Date(2024, 2, 10, 14, 0, 0, 0, time.UTC)
	start, next := MonthInterval(now)

	if got := FormatDate(start); got != "2024-02-01" {
		t.Fatalf("start expected 2024-02-01, got %s", got)
	}
	if got := FormatDate(next); got != "2024-03-01" {
		t.Fatalf("next expected 2024-03-01, got %s", got)
	}

	// The interval is half-open: the last day of the month is in, the
	// first day of the next month is out.
	lastDay, _ := ParseDate("2024-02-29")
	if !InInterval(lastDay, start, next) {
		t.Fatal("2024-02-29 should be inside the February interval")
	}
	if !InInterval(start, start, next) {
		t.Fatal("the start bound is inclusive")
	}
	if InInterval(next, start, next) {
		t.Fatal("the next-month bound is exclusive")
	}
}
