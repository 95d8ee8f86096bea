package core

import "testing"

func TestNewCountsHasEveryLabel(t *testing.T) {
	c := NewCounts()
	for _, l := range Labels() {
		v, ok := c[l]
		if !ok || v != 0 {
			t.Fatalf("label %s: present=%v value=%d", l, ok, v)
		}
	}
	c[Positive] = 2
	c[Neutral] = 1
	if c.Total() != 3 {
		t.Fatalf("Total = %d", c.Total())
	}
}

func TestSummarySeries(t *testing.T) {
	s := Summary{ByMonth: true, Groups: []SummaryGroup{
		{Month: "May-2024", Counts: Counts{Positive: 1, Neutral: 0, Negative: 2}},
		{Month: "June-2024", Counts: Counts{Positive: 4, Neutral: 3, Negative: 0}},
	}}
	neg := s.Series(Negative)
	if len(neg) != 2 || neg[0] != 2 || neg[1] != 0 {
		t.Fatalf("Series(Negative) = %v", neg)
	}
	if m := s.Months(); m[1] != "June-2024" {
		t.Fatalf("Months = %v", m)
	}
	if _, ok := s.Group("July-2024"); ok {
		t.Fatalf("unexpected group")
	}
}

func TestFormatScore(t *testing.T) {
	cases := map[float64]string{0.8: "0.8", -1: "-1", 0: "0", 0.123456789: "0.123456789"}
	for in, want := range cases {
		if got := FormatScore(in); got != want {
			t.Fatalf("FormatScore(%v) = %q, want %q", in, got, want)
		}
	}
}
