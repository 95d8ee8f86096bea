package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"feedtrend/internal/core"
	applog "feedtrend/internal/log"
	"feedtrend/internal/services"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	}).Write(w)
}

// handleReady checks templates and that the month store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if months, err := s.svc.Months(ctx); err != nil {
		checks["store"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = map[string]any{"status": "ok", "months": len(months)}
	}

	if s.monthCache != nil {
		checks["cache"] = map[string]any{"status": "ok", "entries": s.monthCache.Size()}
	}

	NewResponse().Status(httpStatus).JSON(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

type indexPage struct {
	TextColumn   string
	CurrentMonth core.MonthKey
	Months       []core.MonthKey
	Notice       string
	Error        string
}

// handleIndex renders the upload form and the stored months. Delete
// outcomes arrive as ?deleted= or ?error= from the delete redirect.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w, r, http.StatusOK, "")
}

func (s *Server) renderIndex(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	ctx := r.Context()
	months, err := s.svc.Months(ctx)
	if err != nil {
		logFailure(r, "List months failed", err, applog.ComponentStore, applog.OpList)
		InternalServerError(userMessage(err)).Write(w)
		return
	}

	page := indexPage{
		TextColumn:   s.svc.TextColumn(),
		CurrentMonth: core.MonthKeyFor(time.Now()),
		Months:       months,
		Error:        errMsg,
	}
	q := r.URL.Query()
	if v := q.Get("deleted"); v != "" {
		if key, err := core.ParseMonthKey(v); err == nil {
			page.Notice = services.DeleteOutcome{Month: key, Deleted: true}.Message()
		}
	}
	if page.Error == "" {
		page.Error = sanitizeInput(q.Get("error"))
	}

	s.render(w, r, status, "index.html", page)
}
