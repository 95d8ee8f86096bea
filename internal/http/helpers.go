package http

import (
	"errors"
	"net/http"
	"strings"

	"feedtrend/internal/core"
	applog "feedtrend/internal/log"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case core.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// errorType classifies err for logging.
func errorType(err error) string {
	switch statusFor(err) {
	case http.StatusBadRequest:
		return applog.ErrorTypeValidation
	case http.StatusNotFound:
		return applog.ErrorTypeNotFound
	default:
		return applog.ErrorTypeInternal
	}
}

// userMessage is the text shown for err. Internal failures are not echoed.
func userMessage(err error) string {
	switch statusFor(err) {
	case http.StatusBadRequest:
		return err.Error()
	case http.StatusNotFound:
		return "No data found for that month."
	default:
		return "Something went wrong. Please try again."
	}
}

// logFailure logs err at a level that matches its status.
func logFailure(r *http.Request, msg string, err error, component, operation string) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)
	if statusFor(err) == http.StatusInternalServerError {
		applog.NewStructuredLogger(logger).LogError(ctx, msg, err, errorType(err), component, operation)
		return
	}
	logger.WithComponent(component).InfoContext(ctx, msg,
		applog.FieldError, err.Error(),
		applog.FieldErrorType, errorType(err),
		applog.FieldOperation, operation)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
