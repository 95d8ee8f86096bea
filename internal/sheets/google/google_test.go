package google

import (
	"context"
	"reflect"
	"testing"
	"time"

	"feedtrend/internal/core"
)

func TestNewFromEnv_MissingSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	_, err := NewFromEnv(context.Background())
	if err == nil {
		t.Fatal("expected error for missing GOOGLE_SPREADSHEET_ID")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewFromEnv_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "test-id")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	if _, err := NewFromEnv(context.Background()); err == nil {
		t.Fatal("expected error without credentials")
	}
}

func TestClient_UninitializedService(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetName: "Sentiment", now: time.Now}
	if err := c.WriteMonthSummary(context.Background(), "March-2024", core.NewCounts()); err == nil {
		t.Fatal("expected error with nil service")
	}
}

func TestFindRow(t *testing.T) {
	values := [][]any{
		{"Month"},
		{"January-2024"},
		{},
		{" March-2024 "},
	}

	tests := []struct {
		month core.MonthKey
		want  int
	}{
		{"January-2024", 2},
		{"March-2024", 4},
		{"April-2024", 0},
	}
	for _, tt := range tests {
		if got := findRow(values, tt.month); got != tt.want {
			t.Errorf("findRow(%s) = %d, want %d", tt.month, got, tt.want)
		}
	}
}

func TestFirstFreeRow(t *testing.T) {
	tests := []struct {
		name   string
		values [][]any
		want   int
	}{
		{"header only", [][]any{{"Month"}}, 2},
		{"reuses cleared row", [][]any{{"Month"}, {"January-2024"}, {}, {"March-2024"}}, 3},
		{"blank cell", [][]any{{"Month"}, {""}}, 2},
		{"appends", [][]any{{"Month"}, {"January-2024"}}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstFreeRow(tt.values); got != tt.want {
				t.Errorf("firstFreeRow = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSummaryRow(t *testing.T) {
	counts := core.Counts{core.Positive: 2, core.Neutral: 1, core.Negative: 0}
	now := time.Date(2024, 3, 31, 18, 0, 0, 0, time.UTC)

	got := summaryRow("March-2024", counts, now)
	want := []any{"March-2024", 2, 1, 0, 3, "2024-03-31T18:00:00Z"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("summaryRow = %v, want %v", got, want)
	}
}

func TestExportedMonths(t *testing.T) {
	values := [][]any{
		{"Month"},
		{"March-2024"},
		{},
		{"December-2023"},
		{"notes"},
	}
	got := exportedMonths(values)
	want := []core.MonthKey{"December-2023", "March-2024"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("exportedMonths = %v, want %v", got, want)
	}
}
