package memory

import (
	"context"
	"reflect"
	"testing"

	"feedtrend/internal/core"
)

func TestStore_WriteAndRemove(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.WriteMonthSummary(ctx, "March-2024", core.Counts{core.Positive: 2}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.WriteMonthSummary(ctx, "January-2024", core.NewCounts()); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, ok := s.Summary("March-2024")
	want := core.Counts{core.Positive: 2, core.Neutral: 0, core.Negative: 0}
	if !ok || !reflect.DeepEqual(got, want) {
		t.Fatalf("summary = %v, %v", got, ok)
	}

	months, _ := s.ExportedMonths(ctx)
	if !reflect.DeepEqual(months, []core.MonthKey{"January-2024", "March-2024"}) {
		t.Fatalf("months = %v", months)
	}

	if err := s.RemoveMonthSummary(ctx, "March-2024"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.RemoveMonthSummary(ctx, "March-2024"); err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if _, ok := s.Summary("March-2024"); ok {
		t.Fatal("summary still present after remove")
	}
}
