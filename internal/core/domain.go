package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Positive Label = "Positive"
	Neutral  Label = "Neutral"
	Negative Label = "Negative"
)

// Column names written alongside the feedback text.
const (
	DefaultTextColumn = "Feedback"
	ScoreColumn       = "score"
	AnalysisColumn    = "analysis"
	MonthColumn       = "Month"
)

// Label thresholds. A score sitting exactly on a threshold is polarized.
const (
	PositiveThreshold = 0.5
	NegativeThreshold = -0.5
)

type (
	Label string

	Record struct {
		Text   string
		Score  float64
		Label  Label
		Fields map[string]string // Extra upload columns by header name
		Month  MonthKey          // Origin month, set only on combined sets
	}

	// RecordSet is a scored upload. Columns keeps the header order of the
	// original upload with the score and analysis columns appended.
	RecordSet struct {
		TextColumn string
		Columns    []string
		Records    []Record
	}
)

var (
	ErrNotFound        = errors.New("month not found")
	ErrValidation      = errors.New("validation failed")
	ErrMissingColumn   = errors.New("missing required column")
	ErrInvalidMonthKey = errors.New("invalid month key")
	ErrInvalidLabel    = errors.New("invalid label")
	ErrCorruptMonth    = errors.New("corrupt month data")
)

// Labels lists every label in display order.
func Labels() []Label {
	return []Label{Positive, Neutral, Negative}
}

// LabelFor maps a polarity score to its label.
func LabelFor(score float64) Label {
	switch {
	case score >= PositiveThreshold:
		return Positive
	case score <= NegativeThreshold:
		return Negative
	default:
		return Neutral
	}
}

// ParseLabel accepts a label name in any case.
func ParseLabel(s string) (Label, error) {
	s = strings.TrimSpace(s)
	for _, l := range Labels() {
		if strings.EqualFold(s, string(l)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLabel, s)
}

func (l Label) String() string {
	return string(l)
}

// IsValidation reports whether err should be shown to the user as a
// rejected input rather than a failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrMissingColumn) ||
		errors.Is(err, ErrInvalidMonthKey) ||
		errors.Is(err, ErrInvalidLabel)
}

// NewRecord builds a record whose label is derived from score. CRLF line
// breaks in text and fields become LF, as CSV storage would turn them, so
// every backend hands back the same record.
func NewRecord(text string, score float64, fields map[string]string) Record {
	return Record{
		Text:   normalizeLineBreaks(text),
		Score:  score,
		Label:  LabelFor(score),
		Fields: normalizeFields(fields),
	}
}

func normalizeLineBreaks(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

func normalizeFields(fields map[string]string) map[string]string {
	for _, v := range fields {
		if strings.Contains(v, "\r\n") {
			out := make(map[string]string, len(fields))
			for k, v := range fields {
				out[k] = normalizeLineBreaks(v)
			}
			return out
		}
	}
	return fields
}

// Field returns the value of column name for the record.
func (r Record) Field(textColumn, name string) string {
	switch name {
	case textColumn:
		return r.Text
	case ScoreColumn:
		return FormatScore(r.Score)
	case AnalysisColumn:
		return string(r.Label)
	case MonthColumn:
		if r.Month != "" {
			return string(r.Month)
		}
	}
	return r.Fields[name]
}

// Len returns the number of records in the set.
func (rs RecordSet) Len() int {
	return len(rs.Records)
}

// Head returns at most n records from the start of the set.
func (rs RecordSet) Head(n int) []Record {
	if n < 0 || n >= len(rs.Records) {
		return rs.Records
	}
	return rs.Records[:n]
}

// Filter returns the records labeled l, keeping the column layout.
func (rs RecordSet) Filter(l Label) RecordSet {
	out := RecordSet{TextColumn: rs.TextColumn, Columns: rs.Columns}
	for _, r := range rs.Records {
		if r.Label == l {
			out.Records = append(out.Records, r)
		}
	}
	return out
}

// Clone returns a deep copy so stores never share record maps with callers.
func (rs RecordSet) Clone() RecordSet {
	out := RecordSet{
		TextColumn: rs.TextColumn,
		Columns:    append([]string(nil), rs.Columns...),
		Records:    make([]Record, len(rs.Records)),
	}
	for i, r := range rs.Records {
		if r.Fields != nil {
			fields := make(map[string]string, len(r.Fields))
			for k, v := range r.Fields {
				fields[k] = v
			}
			r.Fields = fields
		}
		out.Records[i] = r
	}
	return out
}

// Validate checks the structural invariants a stored set must satisfy.
func (rs RecordSet) Validate() error {
	if strings.TrimSpace(rs.TextColumn) == "" {
		return fmt.Errorf("%w: empty text column", ErrValidation)
	}
	var hasText, hasScore, hasAnalysis bool
	for _, c := range rs.Columns {
		switch c {
		case rs.TextColumn:
			hasText = true
		case ScoreColumn:
			hasScore = true
		case AnalysisColumn:
			hasAnalysis = true
		}
	}
	if !hasText || !hasScore || !hasAnalysis {
		return fmt.Errorf("%w: columns %q, %q and %q are required", ErrValidation, rs.TextColumn, ScoreColumn, AnalysisColumn)
	}
	for i, r := range rs.Records {
		if r.Label != LabelFor(r.Score) {
			return fmt.Errorf("%w: record %d label %q does not match score %v", ErrValidation, i, r.Label, r.Score)
		}
	}
	return nil
}
