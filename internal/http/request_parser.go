package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fintrack/internal/core"
)

// maxBodyBytes caps request bodies; records are a handful of short fields.
const maxBodyBytes = 64 << 10

const monthLayout = "2006-01"

// decodeBody reads a JSON object into dst. An empty body decodes as {} so the
// missing fields surface as a validation failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", errMalformedBody)
	}
	return nil
}

func decodeTransactionFields(w http.ResponseWriter, r *http.Request) (core.TransactionFields, error) {
	var f core.TransactionFields
	if err := decodeBody(w, r, &f); err != nil {
		return f, err
	}
	sanitize(f.Description, f.Date, f.Category)
	return f, nil
}

func decodeBudgetFields(w http.ResponseWriter, r *http.Request) (core.BudgetFields, error) {
	var f core.BudgetFields
	if err := decodeBody(w, r, &f); err != nil {
		return f, err
	}
	sanitize(f.Category)
	return f, nil
}

func decodeSavingsFields(w http.ResponseWriter, r *http.Request) (core.SavingsFields, error) {
	var f core.SavingsFields
	if err := decodeBody(w, r, &f); err != nil {
		return f, err
	}
	sanitize(f.Date, f.Description)
	return f, nil
}

func sanitize(fields ...*string) {
	for _, f := range fields {
		if f != nil {
			*f = sanitizeInput(*f)
		}
	}
}

// pathID validates the {id} path segment.
func pathID(r *http.Request) (string, error) {
	return core.ParseID(r.PathValue("id"))
}

// ParseMonthParam reads ?month=YYYY-MM. Absent or malformed values fall back
// to the month of now; ok reports whether the given value was used.
func ParseMonthParam(query url.Values, now time.Time) (month string, ok bool) {
	fallback := now.Format(monthLayout)
	v := strings.TrimSpace(query.Get("month"))
	if v == "" {
		return fallback, true
	}
	if _, err := time.Parse(monthLayout, v); err != nil {
		return fallback, false
	}
	return v, true
}

// sanitizeInput removes control characters except tab, newline and carriage
// return. Whitespace is kept: categories differing only by spacing are distinct.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
