package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"feedtrend/internal/aggregate"
	"feedtrend/internal/core"
	applog "feedtrend/internal/log"
	"feedtrend/internal/services"
)

type previewData struct {
	TextColumn string
	Columns    []string
	Records    []core.Record
}

type uploadPage struct {
	Result  services.IngestResult
	Preview previewData
}

type monthPage struct {
	Month   core.MonthKey
	Rows    int
	Summary core.Summary
	Preview previewData
}

// handleUpload scores an uploaded CSV and stores it under the current
// month, or the month given in the form.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		applog.FromContext(ctx).InfoContext(ctx, "Unreadable upload", applog.FieldError, err.Error())
		s.renderIndex(w, r, http.StatusBadRequest, "Could not read the upload. Send a CSV file of at most 32 MB.")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.renderIndex(w, r, http.StatusBadRequest, "Choose a CSV file to upload.")
		return
	}
	defer file.Close()

	res, err := s.svc.IngestCSV(ctx, file, sanitizeInput(r.FormValue("month")))
	if err != nil {
		logFailure(r, "Upload rejected", err, applog.ComponentIngest, applog.OpIngest)
		s.feedback.UploadFailures.WithLabelValues(errorType(err)).Inc()
		s.renderIndex(w, r, statusFor(err), userMessage(err))
		return
	}

	s.feedback.ObserveUpload(res.Rows)
	applog.NewStructuredLogger(applog.FromContext(ctx)).LogIngest(ctx, string(res.Month), res.Rows)
	applog.FromContext(ctx).DebugContext(ctx, "Upload file", "filename", header.Filename, "size", header.Size)

	s.render(w, r, http.StatusOK, "upload.html", uploadPage{
		Result:  res,
		Preview: previewData{TextColumn: res.TextColumn, Columns: res.Columns, Records: res.Preview},
	})
}

// handleMonth previews one stored month.
func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	key, set, err := s.svc.Month(r.Context(), r.PathValue("month"))
	if err != nil {
		logFailure(r, "Load month failed", err, applog.ComponentStore, applog.OpLoad)
		ErrorResponse(statusFor(err), userMessage(err)).Write(w)
		return
	}

	summary := aggregate.Summarize(set.Records, false)
	summary.Groups[0].Month = key

	s.render(w, r, http.StatusOK, "month.html", monthPage{
		Month:   key,
		Rows:    set.Len(),
		Summary: summary,
		Preview: previewData{TextColumn: set.TextColumn, Columns: set.Columns, Records: set.Head(s.svc.PreviewRows())},
	})
}

// handleDownload serves a stored month as feedback_<Month>.csv.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name, raw, err := s.svc.Download(r.Context(), r.PathValue("month"))
	if err != nil {
		logFailure(r, "Download failed", err, applog.ComponentStore, applog.OpDownload)
		ErrorResponse(statusFor(err), userMessage(err)).Write(w)
		return
	}

	NewResponse().
		Header("Content-Type", "text/csv; charset=utf-8").
		Header("Content-Disposition", `attachment; filename="`+name+`"`).
		Header("Content-Length", strconv.Itoa(len(raw))).
		Body(raw).
		Write(w)
}

// handleDelete removes a month and redirects to the index with the outcome
// in the query string.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.DeleteMonth(r.Context(), r.PathValue("month"))

	q := url.Values{}
	switch {
	case err == nil:
		s.feedback.DeletesTotal.Inc()
		q.Set("deleted", string(out.Month))
	case errors.Is(err, core.ErrNotFound):
		q.Set("error", out.Message())
	default:
		logFailure(r, "Delete failed", err, applog.ComponentStore, applog.OpDelete)
		q.Set("error", userMessage(err))
	}
	http.Redirect(w, r, "/?"+q.Encode(), http.StatusSeeOther)
}
