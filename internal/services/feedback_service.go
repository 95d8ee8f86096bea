package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"feedtrend/internal/aggregate"
	"feedtrend/internal/core"
	"feedtrend/internal/months"
	"feedtrend/internal/months/csvdir"
	"feedtrend/internal/scorer"
	"feedtrend/internal/table"
)

const defaultPreviewRows = 10

// EventPublisher announces month changes. A nil publisher disables events.
type EventPublisher interface {
	PublishMonthSaved(ctx context.Context, month core.MonthKey, records int) error
	PublishMonthDeleted(ctx context.Context, month core.MonthKey) error
}

// IngestResult describes a saved upload.
type IngestResult struct {
	Month      core.MonthKey
	Rows       int
	TextColumn string
	Columns    []string
	Preview    []core.Record
	Summary    core.Summary
}

// DeleteOutcome is the notice shown after a delete request.
type DeleteOutcome struct {
	Month   core.MonthKey
	Deleted bool
}

func (o DeleteOutcome) Message() string {
	if o.Deleted {
		return fmt.Sprintf("Deleted data for %s.", o.Month)
	}
	return fmt.Sprintf("No data found for %s.", o.Month)
}

// Option configures a FeedbackService.
type Option func(*FeedbackService)

// WithTextColumn sets the column uploads must carry.
func WithTextColumn(name string) Option {
	return func(s *FeedbackService) {
		if name != "" {
			s.textColumn = name
		}
	}
}

// WithPreviewRows sets how many rows a preview holds.
func WithPreviewRows(n int) Option {
	return func(s *FeedbackService) {
		if n > 0 {
			s.previewRows = n
		}
	}
}

// WithClock overrides the clock that picks the month of an upload.
func WithClock(now func() time.Time) Option {
	return func(s *FeedbackService) {
		s.now = now
	}
}

// FeedbackService runs uploads through the scorer into the month store and
// answers the read side used by the web and API handlers.
type FeedbackService struct {
	store       months.Store
	scorer      *scorer.Scorer
	publisher   EventPublisher
	textColumn  string
	previewRows int
	now         func() time.Time
}

// NewFeedbackService wires the service. A nil scorer uses VADER and a nil
// publisher disables month events.
func NewFeedbackService(store months.Store, sc *scorer.Scorer, publisher EventPublisher, opts ...Option) *FeedbackService {
	if sc == nil {
		sc = scorer.New(nil, nil)
	}
	s := &FeedbackService{
		store:       store,
		scorer:      sc,
		publisher:   publisher,
		textColumn:  core.DefaultTextColumn,
		previewRows: defaultPreviewRows,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TextColumn returns the column uploads must carry.
func (s *FeedbackService) TextColumn() string {
	return s.textColumn
}

// PreviewRows returns the preview length.
func (s *FeedbackService) PreviewRows() int {
	return s.previewRows
}

// IngestCSV parses r and ingests it. See Ingest.
func (s *FeedbackService) IngestCSV(ctx context.Context, r io.Reader, month string) (IngestResult, error) {
	t, err := table.ReadCSV(r)
	if err != nil {
		return IngestResult{}, err
	}
	return s.Ingest(ctx, t, month)
}

// Ingest scores every row of t and saves the result under month, or the
// current month when month is empty. A table without the text column is
// rejected before anything is written. Existing score and analysis columns
// are replaced.
func (s *FeedbackService) Ingest(ctx context.Context, t *table.Table, month string) (IngestResult, error) {
	ti, textHeader, err := t.RequireColumn(s.textColumn)
	if err != nil {
		return IngestResult{}, err
	}

	key := core.MonthKeyFor(s.now())
	if strings.TrimSpace(month) != "" {
		if key, err = core.ParseMonthKey(month); err != nil {
			return IngestResult{}, err
		}
	}

	skip := []int{ti}
	columns := make([]string, 0, len(t.Header)+2)
	for i, h := range t.Header {
		if i != ti && (strings.EqualFold(h, core.ScoreColumn) || strings.EqualFold(h, core.AnalysisColumn)) {
			skip = append(skip, i)
			continue
		}
		columns = append(columns, h)
	}
	columns = append(columns, core.ScoreColumn, core.AnalysisColumn)

	set := core.RecordSet{
		TextColumn: textHeader,
		Columns:    columns,
		Records:    make([]core.Record, 0, len(t.Rows)),
	}
	for _, row := range t.Rows {
		set.Records = append(set.Records, s.scorer.Record(ctx, row[ti], table.ExtraFields(t.Header, row, skip...)))
	}

	if err := s.store.Save(ctx, key, set); err != nil {
		return IngestResult{}, fmt.Errorf("save upload: %w", err)
	}

	slog.InfoContext(ctx, "Upload ingested",
		"month", key,
		"rows", set.Len(),
		"text_column", textHeader)

	if s.publisher != nil {
		if err := s.publisher.PublishMonthSaved(ctx, key, set.Len()); err != nil {
			slog.ErrorContext(ctx, "Failed to publish month saved event", "month", key, "error", err)
		}
	}

	return IngestResult{
		Month:      key,
		Rows:       set.Len(),
		TextColumn: set.TextColumn,
		Columns:    set.Columns,
		Preview:    set.Head(s.previewRows),
		Summary:    aggregate.Summarize(set.Records, false),
	}, nil
}

// Months lists stored months, oldest first.
func (s *FeedbackService) Months(ctx context.Context) ([]core.MonthKey, error) {
	return s.store.ListKeys(ctx)
}

// MonthInfo is a stored month with its last save time. SavedAt is zero when
// the store does not record it.
type MonthInfo struct {
	Month   core.MonthKey
	SavedAt time.Time
}

// MonthInfos lists stored months, oldest first, with their save times.
func (s *FeedbackService) MonthInfos(ctx context.Context) ([]MonthInfo, error) {
	keys, err := s.store.ListKeys(ctx)
	if err != nil {
		return nil, err
	}
	stamper, _ := s.store.(months.Stamper)
	infos := make([]MonthInfo, 0, len(keys))
	for _, k := range keys {
		info := MonthInfo{Month: k}
		if stamper != nil {
			if at, err := stamper.SavedAt(ctx, k); err == nil {
				info.SavedAt = at
			} else if !errors.Is(err, errors.ErrUnsupported) {
				slog.DebugContext(ctx, "No save time for month", "month", k, "error", err)
			}
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Month loads one stored month.
func (s *FeedbackService) Month(ctx context.Context, month string) (core.MonthKey, core.RecordSet, error) {
	key, err := core.ParseMonthKey(month)
	if err != nil {
		return "", core.RecordSet{}, err
	}
	set, err := s.store.Load(ctx, key)
	if err != nil {
		return key, core.RecordSet{}, err
	}
	return key, set, nil
}

// Download renders a stored month as CSV along with its file name.
func (s *FeedbackService) Download(ctx context.Context, month string) (string, []byte, error) {
	key, set, err := s.Month(ctx, month)
	if err != nil {
		return "", nil, err
	}
	raw, err := table.FromRecordSet(set).Bytes()
	if err != nil {
		return "", nil, fmt.Errorf("encode %s: %w", key, err)
	}
	return csvdir.FileName(key), raw, nil
}

// DeleteMonth removes a stored month. A month that is not stored yields an
// outcome with Deleted false and an error wrapping core.ErrNotFound.
func (s *FeedbackService) DeleteMonth(ctx context.Context, month string) (DeleteOutcome, error) {
	key, err := core.ParseMonthKey(month)
	if err != nil {
		return DeleteOutcome{}, err
	}
	out := DeleteOutcome{Month: key}

	if err := s.store.Delete(ctx, key); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			slog.InfoContext(ctx, "Delete of absent month", "month", key)
		}
		return out, err
	}
	out.Deleted = true
	slog.InfoContext(ctx, "Month deleted", "month", key)

	if s.publisher != nil {
		if err := s.publisher.PublishMonthDeleted(ctx, key); err != nil {
			slog.ErrorContext(ctx, "Failed to publish month deleted event", "month", key, "error", err)
		}
	}
	return out, nil
}

// Compare combines the given months in order. Unknown months are skipped.
func (s *FeedbackService) Compare(ctx context.Context, raw []string) (aggregate.Combined, core.Summary, error) {
	keys, err := parseKeys(raw)
	if err != nil {
		return aggregate.Combined{}, core.Summary{}, err
	}
	c, err := aggregate.Combine(ctx, s.store, keys)
	if err != nil {
		return aggregate.Combined{}, core.Summary{}, err
	}
	return c, c.Summary(), nil
}

// Trends combines every stored month.
func (s *FeedbackService) Trends(ctx context.Context) (aggregate.Combined, core.Summary, error) {
	return aggregate.Trends(ctx, s.store)
}

// Summary counts the given months, or every stored month when none are
// given, optionally split by month.
func (s *FeedbackService) Summary(ctx context.Context, raw []string, byMonth bool) (core.Summary, error) {
	var (
		c   aggregate.Combined
		err error
	)
	if len(raw) == 0 {
		c, _, err = s.Trends(ctx)
	} else {
		c, _, err = s.Compare(ctx, raw)
	}
	if err != nil {
		return core.Summary{}, err
	}
	if byMonth {
		return c.Summary(), nil
	}
	return aggregate.Summarize(c.Records, false), nil
}

// Close releases the store and publisher when they hold resources.
func (s *FeedbackService) Close() error {
	var errs []error
	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close feedback service: %w", errors.Join(errs...))
	}
	return nil
}

func parseKeys(raw []string) ([]core.MonthKey, error) {
	keys := make([]core.MonthKey, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r) == "" {
			continue
		}
		k, err := core.ParseMonthKey(r)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}
