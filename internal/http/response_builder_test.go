package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"feedtrend/internal/core"
)

func TestResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().
		Status(http.StatusCreated).
		Header("X-Test", "1").
		Body([]byte("test")).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if w.Body.String() != "test" {
		t.Errorf("Body = %q, want %q", w.Body.String(), "test")
	}
	if w.Header().Get("X-Test") != "1" {
		t.Error("custom header not set")
	}
}

func TestResponseBuilder_JSON(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().JSON(map[string]int{"rows": 3}).Write(w)

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Body.String() != "{\"rows\":3}\n" {
		t.Errorf("Body = %q", w.Body.String())
	}

	w = httptest.NewRecorder()
	NewResponse().JSON(func() {}).Write(w)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("unencodable value status = %d", w.Code)
	}
}

func TestErrorResponse_Escapes(t *testing.T) {
	w := httptest.NewRecorder()
	BadRequestError(`<script>alert("x")</script>`).Write(w)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Status code = %d", w.Code)
	}
	want := `<div class="notice error">&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;</div>`
	if w.Body.String() != want {
		t.Errorf("Body = %q, want %q", w.Body.String(), want)
	}
}

func TestJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	JSONError(http.StatusNotFound, "No data found for that month.").Write(w)
	if w.Code != http.StatusNotFound || w.Body.String() != "{\"error\":\"No data found for that month.\"}\n" {
		t.Errorf("got %d %q", w.Code, w.Body.String())
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{fmt.Errorf("wrap: %w", core.ErrMissingColumn), http.StatusBadRequest},
		{core.ErrInvalidMonthKey, http.StatusBadRequest},
		{fmt.Errorf("load: %w", core.ErrNotFound), http.StatusNotFound},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
	if msg := userMessage(errors.New("disk full")); msg == "disk full" {
		t.Error("internal errors must not be echoed")
	}
}
