package http

import (
	"net/url"
	"reflect"
	"testing"

	"feedtrend/internal/chart"
)

func TestParseViewParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
		def   chart.Kind
		want  ViewParams
	}{
		{
			name:  "defaults",
			query: "",
			def:   chart.Line,
			want:  ViewParams{Kind: chart.Line, ByMonth: true},
		},
		{
			name:  "repeated months keep order",
			query: "month=April-2024&month=March-2024&chart=bar",
			def:   chart.Line,
			want:  ViewParams{Months: []string{"April-2024", "March-2024"}, Kind: chart.Bar, ByMonth: true},
		},
		{
			name:  "comma list with blanks and duplicates",
			query: "month=March-2024,,April-2024&month=+March-2024+",
			def:   chart.Bar,
			want:  ViewParams{Months: []string{"March-2024", "April-2024"}, Kind: chart.Bar, ByMonth: true},
		},
		{
			name:  "by_month false",
			query: "by_month=false&chart=pie",
			def:   chart.Bar,
			want:  ViewParams{Kind: chart.Bar, ByMonth: false},
		},
		{
			name:  "unparseable by_month keeps default",
			query: "by_month=maybe",
			def:   chart.Bar,
			want:  ViewParams{Kind: chart.Bar, ByMonth: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatal(err)
			}
			if got := ParseViewParams(q, tt.def); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseViewParams() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestViewParamsQuery(t *testing.T) {
	p := ViewParams{Months: []string{"March-2024", "April-2024"}, Kind: chart.Bar}
	if got := p.Query(chart.Line); got != "chart=line&month=March-2024&month=April-2024" {
		t.Errorf("Query() = %q", got)
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  March-2024\x00\x07 "); got != "March-2024" {
		t.Errorf("sanitizeInput() = %q", got)
	}
}
