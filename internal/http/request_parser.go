package http

import (
	"net/url"
	"strconv"
	"strings"

	"feedtrend/internal/chart"
)

// ViewParams holds the month selection and chart options of a trends,
// compare or summary request.
type ViewParams struct {
	Months  []string
	Kind    chart.Kind
	ByMonth bool
}

// ParseViewParams reads repeated month parameters (also accepting a comma
// separated list), chart and by_month from query. Blank and duplicate
// months are dropped; order is kept.
func ParseViewParams(query url.Values, defaultKind chart.Kind) ViewParams {
	p := ViewParams{
		Kind:    chart.ParseKind(query.Get("chart"), defaultKind),
		ByMonth: true,
	}

	seen := make(map[string]bool)
	for _, v := range query["month"] {
		for _, m := range strings.Split(v, ",") {
			m = sanitizeInput(m)
			if m == "" || seen[m] {
				continue
			}
			seen[m] = true
			p.Months = append(p.Months, m)
		}
	}

	if v := strings.TrimSpace(query.Get("by_month")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			p.ByMonth = b
		}
	}
	return p
}

// Query renders p back into query parameters, with kind overriding p.Kind.
func (p ViewParams) Query(kind chart.Kind) string {
	q := url.Values{}
	for _, m := range p.Months {
		q.Add("month", m)
	}
	q.Set("chart", string(kind))
	return q.Encode()
}
