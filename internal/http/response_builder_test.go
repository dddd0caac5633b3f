package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fintrack/internal/core"
)

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Data(map[string]int{"n": 1}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"n":1}` {
		t.Errorf("Body = %q", got)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestJSONResponseBuilder_Message(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Message("expense deleted").Write(w)

	if got := strings.TrimSpace(w.Body.String()); got != `{"message":"expense deleted"}` {
		t.Errorf("Body = %q", got)
	}
}

func TestMethodNotAllowedError(t *testing.T) {
	w := httptest.NewRecorder()
	MethodNotAllowedError("DELETE").Write(w)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Status code = %d", w.Code)
	}
	if w.Header().Get("Allow") != "DELETE" {
		t.Errorf("Allow = %q", w.Header().Get("Allow"))
	}
}

func TestErrorFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{fmt.Errorf("delete expense: %w", core.ErrNotFound), http.StatusNotFound, "record not found"},
		{fmt.Errorf("%w: %q", core.ErrInvalidID, "x"), http.StatusBadRequest, "invalid id"},
		{fmt.Errorf("%w: amount is required", core.ErrValidation), http.StatusBadRequest, "validation failed"},
		{core.ErrDuplicate, http.StatusBadRequest, "record already exists"},
		{fmt.Errorf("%w: eof", errMalformedBody), http.StatusBadRequest, "invalid request body"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			resp, _ := errorFor(tt.err)
			w := httptest.NewRecorder()
			resp.Write(w)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if !strings.Contains(w.Body.String(), tt.msg) {
				t.Errorf("body = %q, want message %q", w.Body.String(), tt.msg)
			}
			if strings.Contains(w.Body.String(), "disk on fire") {
				t.Error("internal error details leaked")
			}
		})
	}
}
