package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestLabelForBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  Label
	}{
		{1, Positive},
		{0.5, Positive},
		{0.4999, Neutral},
		{0, Neutral},
		{-0.4999, Neutral},
		{-0.5, Negative},
		{-1, Negative},
	}
	for _, tc := range cases {
		if got := LabelFor(tc.score); got != tc.want {
			t.Fatalf("LabelFor(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestParseLabel(t *testing.T) {
	for _, in := range []string{"Positive", "positive", " NEUTRAL ", "Negative"} {
		if _, err := ParseLabel(in); err != nil {
			t.Fatalf("%q expected ok, got %v", in, err)
		}
	}
	if _, err := ParseLabel("meh"); !errors.Is(err, ErrInvalidLabel) {
		t.Fatalf("expected ErrInvalidLabel, got %v", err)
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(fmt.Errorf("upload: %w", ErrMissingColumn)) {
		t.Fatalf("missing column should be a validation error")
	}
	if !IsValidation(fmt.Errorf("filter: %w", ErrInvalidLabel)) {
		t.Fatal("invalid label should be a validation error")
	}
	if !IsValidation(ErrInvalidMonthKey) {
		t.Fatalf("bad month key should be a validation error")
	}
	if IsValidation(ErrNotFound) {
		t.Fatalf("not found is not a validation error")
	}
}

func TestRecordSetValidate(t *testing.T) {
	good := RecordSet{
		TextColumn: "Feedback",
		Columns:    []string{"Feedback", ScoreColumn, AnalysisColumn},
		Records:    []Record{NewRecord("great", 0.8, nil)},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	missing := good
	missing.Columns = []string{"Feedback", ScoreColumn}
	if err := missing.Validate(); err == nil {
		t.Fatalf("expected error for missing analysis column")
	}

	mislabeled := good.Clone()
	mislabeled.Records[0].Label = Negative
	if err := mislabeled.Validate(); err == nil {
		t.Fatalf("expected error for label not matching score")
	}
}

func TestRecordSetCloneIsDeep(t *testing.T) {
	rs := RecordSet{
		TextColumn: "Feedback",
		Columns:    []string{"Feedback", "Store", ScoreColumn, AnalysisColumn},
		Records:    []Record{NewRecord("ok", 0, map[string]string{"Store": "Milan"})},
	}
	cp := rs.Clone()
	cp.Records[0].Fields["Store"] = "Rome"
	cp.Columns[1] = "Shop"
	if rs.Records[0].Fields["Store"] != "Milan" || rs.Columns[1] != "Store" {
		t.Fatalf("clone shares state with original: %+v", rs)
	}
}

func TestRecordField(t *testing.T) {
	r := NewRecord("slow delivery", -0.3, map[string]string{"Store": "Turin"})
	r.Month = "May-2024"
	cases := map[string]string{
		"Feedback":     "slow delivery",
		ScoreColumn:    "-0.3",
		AnalysisColumn: "Neutral",
		MonthColumn:    "May-2024",
		"Store":        "Turin",
		"Missing":      "",
	}
	for col, want := range cases {
		if got := r.Field("Feedback", col); got != want {
			t.Fatalf("Field(%q) = %q, want %q", col, got, want)
		}
	}
}

func TestHead(t *testing.T) {
	rs := RecordSet{Records: make([]Record, 12)}
	if n := len(rs.Head(10)); n != 10 {
		t.Fatalf("Head(10) returned %d records", n)
	}
	if n := len(rs.Head(50)); n != 12 {
		t.Fatalf("Head(50) returned %d records", n)
	}
}

func TestNewRecordNormalizesLineBreaks(t *testing.T) {
	fields := map[string]string{"Store": "north\r\nwing", "City": "Turin"}
	r := NewRecord("line one\r\nline two", 0.1, fields)

	if r.Text != "line one\nline two" {
		t.Errorf("text = %q", r.Text)
	}
	if r.Fields["Store"] != "north\nwing" || r.Fields["City"] != "Turin" {
		t.Errorf("fields = %v", r.Fields)
	}
	if fields["Store"] != "north\r\nwing" {
		t.Errorf("caller's map was modified: %v", fields)
	}
}

func TestRecordSetFilter(t *testing.T) {
	rs := RecordSet{
		TextColumn: "Feedback",
		Columns:    []string{"Feedback", "Store"},
		Records: []Record{
			NewRecord("great", 0.8, nil),
			NewRecord("awful", -0.7, nil),
			NewRecord("fine", 0, nil),
			NewRecord("superb", 0.9, nil),
		},
	}

	cases := []struct {
		label Label
		want  int
	}{
		{Positive, 2},
		{Negative, 1},
		{Neutral, 1},
	}
	for _, tc := range cases {
		got := rs.Filter(tc.label)
		if got.Len() != tc.want {
			t.Errorf("Filter(%s) len = %d, want %d", tc.label, got.Len(), tc.want)
		}
		if got.TextColumn != "Feedback" || len(got.Columns) != 2 {
			t.Errorf("Filter(%s) lost layout: %+v", tc.label, got)
		}
		for _, r := range got.Records {
			if r.Label != tc.label {
				t.Errorf("Filter(%s) kept %q labeled %s", tc.label, r.Text, r.Label)
			}
		}
	}
	if rs.Len() != 4 {
		t.Fatalf("source set modified: len %d", rs.Len())
	}
}
