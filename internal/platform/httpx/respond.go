// Package httpx provides the JSON response envelope shared by every API endpoint.
package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/odyssey-erp/odyssey-hrms/internal/shared"
)

// Code identifies an error kind on the wire.
type Code string

// Error codes understood by API clients.
const (
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeBadRequest   Code = "BAD_REQUEST"
	CodeConflict     Code = "CONFLICT"
	CodeServerError  Code = "SERVER_ERROR"

	CodeMethodNotAllowed Code = "METHOD_NOT_ALLOWED"
	CodeTooManyRequests  Code = "TOO_MANY_REQUESTS"
)

// StatusFor returns the HTTP status paired with an error code.
func StatusFor(code Code) int {
	switch code {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusUnprocessableEntity
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// SuccessEnvelope is the body of a successful response.
type SuccessEnvelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

// PaginatedEnvelope is the body of a successful listing.
type PaginatedEnvelope struct {
	Success    bool              `json:"success"`
	Data       any               `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
}

// ErrorBody describes a failure.
type ErrorBody struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope is the body of a failed response.
type ErrorEnvelope struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// Response is a status code, envelope and extra headers waiting to be written.
type Response struct {
	Status int
	Body   any
	header http.Header
}

// Header returns the extra headers attached to the response.
func (r *Response) Header() http.Header {
	if r.header == nil {
		r.header = make(http.Header)
	}
	return r.header
}

// WithHeader sets a header and returns the response for chaining.
func (r *Response) WithHeader(name, value string) *Response {
	r.Header().Set(name, value)
	return r
}

// WithCookie appends a Set-Cookie header.
func (r *Response) WithCookie(cookie *http.Cookie) *Response {
	if cookie != nil {
		if v := cookie.String(); v != "" {
			r.Header().Add("Set-Cookie", v)
		}
	}
	return r
}

// Success builds a 200 response. An empty message is omitted from the body.
func Success(data any, message string) *Response {
	return &Response{Status: http.StatusOK, Body: SuccessEnvelope{Success: true, Data: data, Message: message}}
}

// OK builds a 200 response without a message.
func OK(data any) *Response {
	return Success(data, "")
}

// Created builds a 201 response.
func Created(data any, message string) *Response {
	if message == "" {
		message = "Resource created successfully"
	}
	resp := Success(data, message)
	resp.Status = http.StatusCreated
	return resp
}

// NoContent builds a 204 response with no body.
func NoContent() *Response {
	return &Response{Status: http.StatusNoContent}
}

// Paginated builds a 200 listing response. A nil slice is sent as an empty array.
func Paginated[T any](items []T, page shared.Pagination) *Response {
	if items == nil {
		items = []T{}
	}
	return &Response{Status: http.StatusOK, Body: PaginatedEnvelope{Success: true, Data: items, Pagination: page}}
}

// Error builds an error response with the status paired to code.
func Error(code Code, message string, details any) *Response {
	return &Response{
		Status: StatusFor(code),
		Body:   ErrorEnvelope{Error: ErrorBody{Code: code, Message: message, Details: details}},
	}
}

// Unauthorized builds a 401 response.
func Unauthorized(message string) *Response {
	if message == "" {
		message = "Authentication required"
	}
	return Error(CodeUnauthorized, message, nil)
}

// Forbidden builds a 403 response.
func Forbidden(message string) *Response {
	if message == "" {
		message = "Access denied"
	}
	return Error(CodeForbidden, message, nil)
}

// NotFound builds a 404 response.
func NotFound(message string) *Response {
	if message == "" {
		message = "Resource not found"
	}
	return Error(CodeNotFound, message, nil)
}

// BadRequest builds a 400 response.
func BadRequest(message string, details any) *Response {
	return Error(CodeBadRequest, message, details)
}

// Conflict builds a 409 response.
func Conflict(message string) *Response {
	return Error(CodeConflict, message, nil)
}

// ValidationFailed builds a 422 response carrying per-field messages.
func ValidationFailed(fields map[string]string) *Response {
	return Error(CodeValidation, "Validation failed", fields)
}

// ServerError builds a 500 response.
func ServerError(message string) *Response {
	if message == "" {
		message = "An internal server error occurred"
	}
	return Error(CodeServerError, message, nil)
}

var fallbackBody = []byte(`{"success":false,"error":{"code":"SERVER_ERROR","message":"An internal server error occurred"}}` + "\n")

// Write sends the response. Content-Type is always application/json.
func (r *Response) Write(w http.ResponseWriter) error {
	h := w.Header()
	for name, values := range r.header {
		for _, v := range values {
			h.Add(name, v)
		}
	}
	h.Set("Content-Type", "application/json")

	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	if status == http.StatusNoContent || r.Body == nil {
		w.WriteHeader(status)
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r.Body); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write(fallbackBody)
		return err
	}
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// JSON sends an arbitrary JSON document with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
