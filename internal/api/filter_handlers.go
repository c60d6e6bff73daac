/*-------------------------------------------------------------------------
 *
 * filter_handlers.go
 *    Filter validation API handlers for Verdict
 *
 * Provides an endpoint that type-checks a filter expression without
 * running it, returning the structured error taxonomy on rejection.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/api/filter_handlers.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/verdictml/verdict/internal/filter"
	"github.com/verdictml/verdict/internal/validation"
)

/* ValidateFilter parses and type-checks a filter expression. Invalid
 * expressions produce a 200 response with valid=false so clients can
 * distinguish a rejected filter from a malformed request. */
func (h *Handlers) ValidateFilter(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())
	endpoint := r.URL.Path
	method := r.Method

	bodyBytes, err := validation.ReadAndValidateBody(r, maxBodySize)
	if err != nil {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "request body validation failed", err, requestID, endpoint, method, "filter", nil))
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	var req ValidateFilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "filter validation failed: request body parsing error", err, requestID, endpoint, method, "filter", nil))
		return
	}

	if len(req.Expression) == 0 {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "expression is required", nil, requestID, endpoint, method, "filter", nil))
		return
	}

	expr, err := filter.Parse(req.Expression)
	if err != nil {
		respondJSON(w, http.StatusOK, ValidateFilterResponse{
			Valid:     false,
			ErrorType: FilterErrorType(err),
			Error:     err.Error(),
		})
		return
	}

	/* Linearization compiles every leaf, so it surfaces symbol, type,
	 * and operator errors in one pass. */
	_, sets, err := filter.Linearize(expr)
	if err != nil {
		respondJSON(w, http.StatusOK, ValidateFilterResponse{
			Valid:     false,
			ErrorType: FilterErrorType(err),
			Error:     err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, ValidateFilterResponse{
		Valid:          true,
		PredicateCount: len(sets),
	})
}
