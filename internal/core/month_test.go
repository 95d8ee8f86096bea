package core

import (
	"errors"
	"testing"
	"time"
)

func TestMonthKeyFor(t *testing.T) {
	got := MonthKeyFor(time.Date(2024, time.March, 17, 10, 0, 0, 0, time.UTC))
	if got != "March-2024" {
		t.Fatalf("MonthKeyFor = %q", got)
	}
}

func TestParseMonthKey(t *testing.T) {
	cases := []struct {
		in   string
		want MonthKey
		ok   bool
	}{
		{"March-2024", "March-2024", true},
		{" December-1999 ", "December-1999", true},
		{"march-2024", "March-2024", true},
		{"2024-03", "", false},
		{"../etc/passwd", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseMonthKey(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidMonthKey) {
			t.Fatalf("%q expected ErrInvalidMonthKey, got %v", tc.in, err)
		}
	}
}

func TestMonthKeyValidate(t *testing.T) {
	if err := MonthKey("June-2025").Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := MonthKey(" June-2025").Validate(); err == nil {
		t.Fatalf("expected error for non canonical key")
	}
}

func TestSortMonthKeys(t *testing.T) {
	keys := []MonthKey{"March-2024", "zzz", "January-2025", "December-2023", "aaa", "April-2024"}
	SortMonthKeys(keys)
	want := []MonthKey{"December-2023", "March-2024", "April-2024", "January-2025", "aaa", "zzz"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("sorted = %v, want %v", keys, want)
		}
	}
}
