// Package apierr provides the standardized error shape returned by the
// HTTP API: a machine-readable code, a human message, and the HTTP
// status it maps to.
package apierr

import (
	"fmt"
	"net/http"
)

// AppError is a structured error with an HTTP status mapping.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	StatusCode int    `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes, matching spec.md §7's error taxonomy.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeRejected         = "REJECTED"
	CodeIOStore          = "IO_STORE"
	CodePluginCallback   = "PLUGIN_CALLBACK"
	CodePluginGenerate   = "PLUGIN_GENERATE"
	CodeDisplayDriver    = "DISPLAY_DRIVER"
	CodeWorkerStuck      = "WORKER_STUCK"
	CodeConditionParse   = "CONDITION_PARSE"
	CodeInternal         = "INTERNAL"
)

func statusFor(code string) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRejected, CodeConditionParse:
		return http.StatusBadRequest
	case CodeIOStore, CodePluginCallback, CodePluginGenerate, CodeDisplayDriver, CodeWorkerStuck, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// New builds an AppError with the status code derived from code.
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: statusFor(code)}
}

// Wrap builds an AppError carrying the underlying error's text as
// Details.
func Wrap(code, message string, err error) *AppError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &AppError{Code: code, Message: message, Details: details, StatusCode: statusFor(code)}
}

// NotFound is a convenience constructor for a missing resource.
func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// Rejected is a convenience constructor for a validation failure
// (malformed input, an invalid settings bag, an out-of-range slot).
func Rejected(message string) *AppError {
	return New(CodeRejected, message)
}

// Response is the envelope the HTTP API wraps every response in
// (spec.md §6.2): a success carries Data or Message, a failure carries
// Error.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   *AppError `json:"error,omitempty"`
}

// Ok wraps data in a successful envelope.
func Ok(data any) Response {
	return Response{Success: true, Data: data}
}

// OkMessage wraps a human message with no data payload.
func OkMessage(message string) Response {
	return Response{Success: true, Message: message}
}

// Fail wraps err in a failed envelope. If err is not an *AppError, it
// is reported as an opaque internal error.
func Fail(err error) Response {
	appErr, ok := err.(*AppError)
	if !ok {
		appErr = Wrap(CodeInternal, "internal error", err)
	}
	return Response{Success: false, Error: appErr}
}
