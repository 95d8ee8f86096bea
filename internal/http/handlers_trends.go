package http

import (
	"fmt"
	"net/http"

	"feedtrend/internal/aggregate"
	"feedtrend/internal/chart"
	"feedtrend/internal/core"
	applog "feedtrend/internal/log"
)

type chartView struct {
	Kind     chart.Kind
	BarURL   string
	LineURL  string
	ChartURL string
}

type trendsPage struct {
	Title   string
	Empty   string
	Months  []core.MonthKey
	Missing []core.MonthKey
	Rows    int
	Summary core.Summary
	Preview previewData
	Chart   chartView
}

func newChartView(page, chartPath string, p ViewParams) chartView {
	return chartView{
		Kind:     p.Kind,
		BarURL:   page + "?" + p.Query(chart.Bar),
		LineURL:  page + "?" + p.Query(chart.Line),
		ChartURL: chartPath + "?" + p.Query(p.Kind),
	}
}

func (s *Server) newTrendsPage(title, empty string, c aggregate.Combined, summary core.Summary, cv chartView) trendsPage {
	set := c.RecordSet()
	return trendsPage{
		Title:   title,
		Empty:   empty,
		Months:  c.Months,
		Missing: c.Missing,
		Rows:    c.Len(),
		Summary: summary,
		Preview: previewData{TextColumn: c.TextColumn, Columns: c.Columns, Records: set.Head(s.svc.PreviewRows())},
		Chart:   cv,
	}
}

// handleTrends shows every stored month combined, charted per month.
func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	p := ParseViewParams(r.URL.Query(), chart.Line)
	p.Months = nil

	c, summary, err := s.svc.Trends(r.Context())
	if err != nil {
		logFailure(r, "Trends failed", err, applog.ComponentStore, applog.OpTrends)
		ErrorResponse(statusFor(err), userMessage(err)).Write(w)
		return
	}

	page := s.newTrendsPage("Sentiment trends", "No months stored yet. Upload feedback to see trends.",
		c, summary, newChartView("/trends", "/charts/trends", p))
	s.render(w, r, http.StatusOK, "trends.html", page)
}

// handleCompare combines the selected months in the order given.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	p := ParseViewParams(r.URL.Query(), chart.Bar)

	var (
		c       aggregate.Combined
		summary core.Summary
	)
	if len(p.Months) > 0 {
		var err error
		c, summary, err = s.svc.Compare(r.Context(), p.Months)
		if err != nil {
			logFailure(r, "Compare failed", err, applog.ComponentStore, applog.OpCompare)
			ErrorResponse(statusFor(err), userMessage(err)).Write(w)
			return
		}
	}

	empty := "Select at least one month to compare."
	if len(c.Missing) > 0 {
		empty = "None of the selected months have data."
	}
	page := s.newTrendsPage("Compare months", empty, c, summary, newChartView("/compare", "/charts/compare", p))
	s.render(w, r, http.StatusOK, "trends.html", page)
}

func (s *Server) handleTrendsChart(w http.ResponseWriter, r *http.Request) {
	p := ParseViewParams(r.URL.Query(), chart.Line)
	c, summary, err := s.svc.Trends(r.Context())
	if err != nil {
		logFailure(r, "Trends chart failed", err, applog.ComponentChart, applog.OpTrends)
		ErrorResponse(statusFor(err), userMessage(err)).Write(w)
		return
	}
	s.writeChart(w, r, summary, chart.Options{
		Title:    "Sentiment trends",
		Subtitle: fmt.Sprintf("%d rows across %d months", c.Len(), len(c.Months)),
		Kind:     p.Kind,
	})
}

func (s *Server) handleCompareChart(w http.ResponseWriter, r *http.Request) {
	p := ParseViewParams(r.URL.Query(), chart.Bar)
	c, summary, err := s.svc.Compare(r.Context(), p.Months)
	if err != nil {
		logFailure(r, "Compare chart failed", err, applog.ComponentChart, applog.OpCompare)
		ErrorResponse(statusFor(err), userMessage(err)).Write(w)
		return
	}
	s.writeChart(w, r, summary, chart.Options{
		Title:    "Compare months",
		Subtitle: fmt.Sprintf("%d rows across %d months", c.Len(), len(c.Months)),
		Kind:     p.Kind,
	})
}

func (s *Server) writeChart(w http.ResponseWriter, r *http.Request, summary core.Summary, o chart.Options) {
	raw, err := chart.RenderBytes(summary, o)
	if err != nil {
		logFailure(r, "Chart render failed", err, applog.ComponentChart, applog.OpRender)
		InternalServerError(userMessage(err)).Write(w)
		return
	}
	s.feedback.ChartRenders.WithLabelValues(string(o.Kind)).Inc()
	NewResponse().
		Header("Content-Type", "text/html; charset=utf-8").
		Header("Cache-Control", "no-store").
		Body(raw).
		Write(w)
}
