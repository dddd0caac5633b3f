// Package http serves the finance JSON API, the ops endpoints and the
// server-rendered dashboard.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// JSONResponseBuilder provides a fluent API for JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	payload    any
	headers    map[string]string
}

func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Data sets the value encoded as the response body.
func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.payload = v
	return b
}

// Message sets a {"message": ...} body.
func (b *JSONResponseBuilder) Message(msg string) *JSONResponseBuilder {
	return b.Data(messageBody{Message: msg})
}

func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if b.payload != nil {
		_ = json.NewEncoder(w).Encode(b.payload)
	}
}

type messageBody struct {
	Message string `json:"message"`
}

// ErrorResponse creates a {"message"} response with the given status.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Message(message)
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "internal server error")
}

func MethodNotAllowedError(allowedMethods string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").
		Header("Allow", allowedMethods)
}

// errMalformedBody marks request bodies that are not valid JSON.
var errMalformedBody = errors.New("malformed request body")

// errorFor maps a service error to its response and the log error type.
// Validation failures share one generic message; the detail is only logged.
func errorFor(err error) (*JSONResponseBuilder, string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return NotFoundError("record not found"), applog.ErrorTypeNotFound
	case errors.Is(err, core.ErrInvalidID):
		return BadRequestError("invalid id"), applog.ErrorTypeBadRequest
	case errors.Is(err, core.ErrValidation):
		return BadRequestError("validation failed"), applog.ErrorTypeValidation
	case errors.Is(err, core.ErrDuplicate):
		return BadRequestError("record already exists"), applog.ErrorTypeConflict
	case errors.Is(err, errMalformedBody), errors.Is(err, core.ErrInvalidAmount):
		return BadRequestError("invalid request body"), applog.ErrorTypeBadRequest
	default:
		return InternalServerError(), applog.ErrorTypeInternal
	}
}
