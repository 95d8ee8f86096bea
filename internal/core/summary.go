package core

import (
	"math"
	"strconv"
)

// Counts maps every label to a count. Labels with no records are present
// with zero so charts keep a stable axis.
type Counts map[Label]int

// NewCounts returns counts with every label set to zero.
func NewCounts() Counts {
	c := make(Counts, 3)
	for _, l := range Labels() {
		c[l] = 0
	}
	return c
}

// Total sums all label counts.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// SummaryGroup is the label breakdown for one origin month. Month is empty
// when the summary is not partitioned.
type SummaryGroup struct {
	Month  MonthKey
	Counts Counts
}

// Summary is a sentiment count breakdown, optionally per origin month.
type Summary struct {
	ByMonth bool
	Groups  []SummaryGroup
}

// Months returns the group keys in order.
func (s Summary) Months() []MonthKey {
	out := make([]MonthKey, 0, len(s.Groups))
	for _, g := range s.Groups {
		out = append(out, g.Month)
	}
	return out
}

// Series returns the count of label for each group in order.
func (s Summary) Series(label Label) []int {
	out := make([]int, len(s.Groups))
	for i, g := range s.Groups {
		out[i] = g.Counts[label]
	}
	return out
}

// Group returns the breakdown for month.
func (s Summary) Group(month MonthKey) (SummaryGroup, bool) {
	for _, g := range s.Groups {
		if g.Month == month {
			return g, true
		}
	}
	return SummaryGroup{}, false
}

// FormatScore renders a score with the shortest representation that
// parses back to the same float.
func FormatScore(score float64) string {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return "0"
	}
	return strconv.FormatFloat(score, 'f', -1, 64)
}
