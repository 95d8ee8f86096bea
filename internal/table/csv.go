// Package table reads and writes the CSV tables feedback travels in.
//
// Uploads are loose: short rows are padded, trailing blank cells dropped, a UTF-8 BOM is dropped and the
// index column left behind by dataframe exports is stripped. Stored month
// files are strict: they must carry the text, score and analysis columns.
package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"feedtrend/internal/core"
)

// indexArtifact is the header a dataframe gives an unnamed index column
// when the CSV is read back.
const indexArtifact = "Unnamed: 0"

// Table is a header plus string rows, every row as wide as the header.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadCSV parses an uploaded CSV. An empty input is a validation error, as
// is a row with non-blank cells past the last header column.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse csv: %v", core.ErrValidation, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: csv has no header row", core.ErrValidation)
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t := &Table{Header: header, Rows: make([][]string, 0, len(records)-1)}
	for i, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		if len(rec) > len(header) && !isBlank(rec[len(header):]) {
			return nil, fmt.Errorf("%w: row %d has %d fields, header has %d",
				core.ErrValidation, i+1, len(rec), len(header))
		}
		row := make([]string, len(header))
		copy(row, rec)
		t.Rows = append(t.Rows, row)
	}
	t.stripIndexArtifact()
	return t, nil
}

// ColumnIndex returns the position of name, or -1. Matching ignores case so
// "feedback" satisfies a "Feedback" requirement.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	for i, h := range t.Header {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

// RequireColumn returns the index and exact header of name or a
// missing-column error.
func (t *Table) RequireColumn(name string) (int, string, error) {
	i := t.ColumnIndex(name)
	if i < 0 {
		return -1, "", fmt.Errorf("%w: the CSV must contain a %q column", core.ErrMissingColumn, name)
	}
	return i, t.Header[i], nil
}

// WriteCSV writes the header and rows.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

// Bytes renders the table as CSV.
func (t *Table) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.WriteCSV(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// stripIndexArtifact drops a leading unnamed index column.
func (t *Table) stripIndexArtifact() {
	drop := -1
	for i, h := range t.Header {
		if h == indexArtifact || (i == 0 && h == "") {
			drop = i
			break
		}
	}
	if drop < 0 {
		return
	}
	t.Header = append(t.Header[:drop:drop], t.Header[drop+1:]...)
	for i, row := range t.Rows {
		t.Rows[i] = append(row[:drop:drop], row[drop+1:]...)
	}
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// FromRecordSet lays a record set out with its own column order.
func FromRecordSet(rs core.RecordSet) *Table {
	t := &Table{
		Header: append([]string(nil), rs.Columns...),
		Rows:   make([][]string, len(rs.Records)),
	}
	for i, r := range rs.Records {
		row := make([]string, len(rs.Columns))
		for j, col := range rs.Columns {
			row[j] = r.Field(rs.TextColumn, col)
		}
		t.Rows[i] = row
	}
	return t
}

// ToRecordSet decodes a stored month table. Labels are re-derived from the
// score column, so a hand-edited analysis cell cannot break the invariant.
func ToRecordSet(t *Table, textColumn string) (core.RecordSet, error) {
	ti, textHeader, err := t.RequireColumn(textColumn)
	if err != nil {
		return core.RecordSet{}, fmt.Errorf("%w: %v", core.ErrCorruptMonth, err)
	}
	si := exactIndex(t.Header, core.ScoreColumn)
	ai := exactIndex(t.Header, core.AnalysisColumn)
	if si < 0 || ai < 0 {
		return core.RecordSet{}, fmt.Errorf("%w: %q and %q columns are required", core.ErrCorruptMonth, core.ScoreColumn, core.AnalysisColumn)
	}

	rs := core.RecordSet{
		TextColumn: textHeader,
		Columns:    append([]string(nil), t.Header...),
		Records:    make([]core.Record, 0, len(t.Rows)),
	}
	for n, row := range t.Rows {
		score, err := strconv.ParseFloat(strings.TrimSpace(row[si]), 64)
		if err != nil {
			return core.RecordSet{}, fmt.Errorf("%w: row %d: parse score: %v", core.ErrCorruptMonth, n+1, err)
		}
		rs.Records = append(rs.Records, core.NewRecord(row[ti], score, ExtraFields(t.Header, row, ti, si, ai)))
	}
	return rs, nil
}

// ExtraFields maps every column of row except the skipped positions by
// header name. It returns nil when nothing is left.
func ExtraFields(header, row []string, skip ...int) map[string]string {
	var fields map[string]string
	for j, col := range header {
		if slices.Contains(skip, j) {
			continue
		}
		if fields == nil {
			fields = make(map[string]string, len(header))
		}
		fields[col] = row[j]
	}
	return fields
}

func exactIndex(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}
