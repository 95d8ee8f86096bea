package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"feedtrend/internal/core"
	ports "feedtrend/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

var summaryHeader = []any{"Month", "Positive", "Neutral", "Negative", "Total", "Updated"}

// Client keeps one row per month in a spreadsheet tab.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	now           func() time.Time
}

var _ ports.SummaryStore = (*Client)(nil)

// NewFromEnv creates a Sheets client from the environment.
// Required: GOOGLE_SPREADSHEET_ID.
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional: GOOGLE_SHEET_NAME (default "Sentiment").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	return New(ctx, spreadsheetID, os.Getenv("GOOGLE_SHEET_NAME"))
}

// New builds a client for the sheetName tab, "Sentiment" when blank, using
// service account credentials from the environment.
func New(ctx context.Context, spreadsheetID, sheetName string) (*Client, error) {
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = "Sentiment"
	}
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName, now: time.Now}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		raw, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = raw
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// monthColumn reads column A of the summary tab.
func (c *Client) monthColumn(ctx context.Context) ([][]any, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

// WriteMonthSummary updates the month's row in place, or writes it to the
// first free row.
func (c *Client) WriteMonthSummary(ctx context.Context, month core.MonthKey, counts core.Counts) error {
	values, err := c.monthColumn(ctx)
	if err != nil {
		return err
	}

	if len(values) == 0 {
		rng := fmt.Sprintf("%s!A1:F1", c.sheetName)
		vr := &gsheet.ValueRange{Values: [][]any{summaryHeader}}
		if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
			ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return fmt.Errorf("write header in sheet %s: %w", c.sheetName, err)
		}
		values = [][]any{{summaryHeader[0]}}
	}

	row := findRow(values, month)
	if row == 0 {
		row = firstFreeRow(values)
	}

	rng := fmt.Sprintf("%s!A%d:F%d", c.sheetName, row, row)
	vr := &gsheet.ValueRange{Values: [][]any{summaryRow(month, counts, c.now())}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}

	slog.InfoContext(ctx, "Exported month summary", "month", month, "range", rng)
	return nil
}

// RemoveMonthSummary clears the month's row. Removing a month that is not
// exported is not an error.
func (c *Client) RemoveMonthSummary(ctx context.Context, month core.MonthKey) error {
	values, err := c.monthColumn(ctx)
	if err != nil {
		return err
	}
	row := findRow(values, month)
	if row == 0 {
		return nil
	}
	rng := fmt.Sprintf("%s!A%d:F%d", c.sheetName, row, row)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	slog.InfoContext(ctx, "Removed month summary", "month", month, "range", rng)
	return nil
}

// ExportedMonths reads the month column of the summary tab.
func (c *Client) ExportedMonths(ctx context.Context) ([]core.MonthKey, error) {
	values, err := c.monthColumn(ctx)
	if err != nil {
		return nil, err
	}
	return exportedMonths(values), nil
}

// findRow returns the 1-based row holding month, or 0.
func findRow(values [][]any, month core.MonthKey) int {
	for i, row := range values {
		if len(row) > 0 && strings.TrimSpace(fmt.Sprint(row[0])) == string(month) {
			return i + 1
		}
	}
	return 0
}

// firstFreeRow returns the first empty row after the header.
func firstFreeRow(values [][]any) int {
	for i := 1; i < len(values); i++ {
		if len(values[i]) == 0 || strings.TrimSpace(fmt.Sprint(values[i][0])) == "" {
			return i + 1
		}
	}
	return len(values) + 1
}

// summaryRow is the row layout: month, positive, neutral, negative, total
// and export time.
func summaryRow(month core.MonthKey, counts core.Counts, now time.Time) []any {
	return []any{
		string(month),
		counts[core.Positive],
		counts[core.Neutral],
		counts[core.Negative],
		counts.Total(),
		now.UTC().Format(time.RFC3339),
	}
}

func exportedMonths(values [][]any) []core.MonthKey {
	var out []core.MonthKey
	for _, row := range values {
		if len(row) == 0 {
			continue
		}
		k := core.MonthKey(strings.TrimSpace(fmt.Sprint(row[0])))
		if k.Validate() != nil {
			continue
		}
		out = append(out, k)
	}
	core.SortMonthKeys(out)
	return out
}
