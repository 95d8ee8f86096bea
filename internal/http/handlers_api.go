package http

import (
	"net/http"
	"time"

	"feedtrend/internal/chart"
	"feedtrend/internal/core"
	applog "feedtrend/internal/log"
)

type apiRecord struct {
	Text   string            `json:"text"`
	Score  float64           `json:"score"`
	Label  core.Label        `json:"label"`
	Fields map[string]string `json:"fields,omitempty"`
}

type apiMonth struct {
	Month      core.MonthKey `json:"month"`
	TextColumn string        `json:"text_column"`
	Columns    []string      `json:"columns"`
	Count      int           `json:"count"`
	Records    []apiRecord   `json:"records"`
}

type apiMonths struct {
	Months  []core.MonthKey             `json:"months"`
	SavedAt map[core.MonthKey]time.Time `json:"saved_at,omitempty"`
}

type apiGroup struct {
	Month  core.MonthKey `json:"month,omitempty"`
	Counts core.Counts   `json:"counts"`
	Total  int           `json:"total"`
}

type apiSummary struct {
	ByMonth bool       `json:"by_month"`
	Groups  []apiGroup `json:"groups"`
}

// handleAPIMonths lists stored months oldest first, with save times when
// the store records them.
func (s *Server) handleAPIMonths(w http.ResponseWriter, r *http.Request) {
	infos, err := s.svc.MonthInfos(r.Context())
	if err != nil {
		logFailure(r, "List months failed", err, applog.ComponentStore, applog.OpList)
		JSONError(statusFor(err), userMessage(err)).Write(w)
		return
	}
	out := apiMonths{Months: make([]core.MonthKey, 0, len(infos))}
	for _, info := range infos {
		out.Months = append(out.Months, info.Month)
		if !info.SavedAt.IsZero() {
			if out.SavedAt == nil {
				out.SavedAt = make(map[core.MonthKey]time.Time, len(infos))
			}
			out.SavedAt[info.Month] = info.SavedAt
		}
	}
	NewResponse().JSON(out).Write(w)
}

// handleAPIMonth returns a stored month's records. ?label= keeps only the
// records with that label.
func (s *Server) handleAPIMonth(w http.ResponseWriter, r *http.Request) {
	var only core.Label
	if raw := r.URL.Query().Get("label"); raw != "" {
		l, err := core.ParseLabel(sanitizeInput(raw))
		if err != nil {
			JSONError(statusFor(err), userMessage(err)).Write(w)
			return
		}
		only = l
	}

	key, set, err := s.svc.Month(r.Context(), r.PathValue("month"))
	if err != nil {
		logFailure(r, "Load month failed", err, applog.ComponentStore, applog.OpLoad)
		JSONError(statusFor(err), userMessage(err)).Write(w)
		return
	}
	if only != "" {
		set = set.Filter(only)
	}

	out := apiMonth{
		Month:      key,
		TextColumn: set.TextColumn,
		Columns:    set.Columns,
		Count:      set.Len(),
		Records:    make([]apiRecord, 0, set.Len()),
	}
	for _, rec := range set.Records {
		out.Records = append(out.Records, apiRecord{Text: rec.Text, Score: rec.Score, Label: rec.Label, Fields: rec.Fields})
	}
	NewResponse().JSON(out).Write(w)
}

// handleAPISummary counts the requested months, or all months when none
// are given. by_month=false collapses the counts into one group.
func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	p := ParseViewParams(r.URL.Query(), chart.Bar)
	summary, err := s.svc.Summary(r.Context(), p.Months, p.ByMonth)
	if err != nil {
		logFailure(r, "Summary failed", err, applog.ComponentStore, applog.OpCompare)
		JSONError(statusFor(err), userMessage(err)).Write(w)
		return
	}

	out := apiSummary{ByMonth: summary.ByMonth, Groups: make([]apiGroup, 0, len(summary.Groups))}
	for _, g := range summary.Groups {
		out.Groups = append(out.Groups, apiGroup{Month: g.Month, Counts: g.Counts, Total: g.Counts.Total()})
	}
	NewResponse().JSON(out).Write(w)
}
