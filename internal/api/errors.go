/*-------------------------------------------------------------------------
 *
 * errors.go
 *    API error types for Verdict
 *
 * Defines the APIError envelope, common sentinel errors, and the mapping
 * from filter compilation errors to HTTP statuses and stable error type
 * names.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <admin@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/api/errors.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"errors"
	"net/http"

	"github.com/verdictml/verdict/internal/filter"
)

/* APIError carries an HTTP status with request context for the response */
type APIError struct {
	Code      int
	Message   string
	Err       error
	RequestID string
	Endpoint  string
	Method    string
	Resource  string
	Context   map[string]interface{}
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

/* ErrorResponse is the JSON error envelope */
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	ErrorType string `json:"error_type,omitempty"`
	Code      int    `json:"code"`
}

var (
	ErrNotFound = &APIError{Code: http.StatusNotFound, Message: "resource not found"}
	ErrConflict = &APIError{Code: http.StatusConflict, Message: "resource state conflict"}
)

/* NewError creates an APIError with a status and wrapped cause */
func NewError(code int, message string, err error) *APIError {
	return &APIError{Code: code, Message: message, Err: err}
}

/* NewErrorWithContext creates an APIError carrying request context */
func NewErrorWithContext(code int, message string, err error, requestID, endpoint, method, resource string, context map[string]interface{}) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Err:       err,
		RequestID: requestID,
		Endpoint:  endpoint,
		Method:    method,
		Resource:  resource,
		Context:   context,
	}
}

/* WrapError attaches a request ID to a sentinel APIError */
func WrapError(base *APIError, requestID string) *APIError {
	copied := *base
	copied.RequestID = requestID
	return &copied
}

/* FilterErrorType names a filter compilation error for clients. The
 * names are part of the API contract; infrastructure errors return an
 * empty string, which callers must not treat as a filter error. */
func FilterErrorType(err error) string {
	var symbolErr *filter.SymbolError
	var typeErr *filter.TypeMismatchError
	var opErr *filter.UnsupportedOperatorError
	var structErr *filter.StructuralError
	var keyErr *filter.KeyAccessError

	switch {
	case errors.As(err, &symbolErr):
		return "symbol_error"
	case errors.As(err, &typeErr):
		return "type_mismatch"
	case errors.As(err, &opErr):
		return "unsupported_operator"
	case errors.As(err, &keyErr):
		return "key_access_error"
	case errors.As(err, &structErr):
		return "structural_error"
	}
	return ""
}

/* NewFilterError maps a filter compilation error to an APIError. Every
 * taxonomy error is a client error; anything else is internal. */
func NewFilterError(err error, requestID, endpoint, method string) *APIError {
	errorType := FilterErrorType(err)
	if errorType == "" {
		return NewErrorWithContext(http.StatusInternalServerError, "filter processing failed", err,
			requestID, endpoint, method, "filter", nil)
	}
	return NewErrorWithContext(http.StatusBadRequest, "invalid filter expression", err,
		requestID, endpoint, method, "filter", map[string]interface{}{
			"error_type": errorType,
		})
}
