/*-------------------------------------------------------------------------
 *
 * evaluation_handlers.go
 *    Evaluation API handlers for Verdict
 *
 * Provides HTTP handlers for creating evaluation jobs, polling their
 * status, and listing past evaluations.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/api/evaluation_handlers.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/verdictml/verdict/internal/db"
	"github.com/verdictml/verdict/internal/evaluation"
	"github.com/verdictml/verdict/internal/filter"
	"github.com/verdictml/verdict/internal/validation"
)

/* CreateEvaluation registers an evaluation job. A request whose
 * fingerprint matches an existing evaluation returns that evaluation
 * with status 200 instead of creating a duplicate. */
func (h *Handlers) CreateEvaluation(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())
	endpoint := r.URL.Path
	method := r.Method

	bodyBytes, err := validation.ReadAndValidateBody(r, maxBodySize)
	if err != nil {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "request body validation failed", err, requestID, endpoint, method, "evaluation", nil))
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	var req CreateEvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "evaluation creation failed: request body parsing error", err, requestID, endpoint, method, "evaluation", map[string]interface{}{
			"body_size": len(bodyBytes),
		}))
		return
	}

	if !ValidateAndRespond(w, func() error { return ValidateCreateEvaluationRequest(&req) }) {
		return
	}

	evalReq := &evaluation.Request{
		DatasetName: req.DatasetName,
		ModelNames:  req.ModelNames,
		TaskType:    req.TaskType,
		Parameters:  req.Parameters,
		Metadata:    req.Metadata,
	}

	if len(req.Filter) > 0 {
		expr, err := filter.Parse(req.Filter)
		if err != nil {
			respondError(w, NewFilterError(err, requestID, endpoint, method))
			return
		}
		evalReq.Filter = expr
	}

	if err := evaluation.ValidateRequest(evalReq); err != nil {
		if errType := FilterErrorType(err); errType != "" {
			respondError(w, NewFilterError(err, requestID, endpoint, method))
			return
		}
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "evaluation request rejected", err, requestID, endpoint, method, "evaluation", nil))
		return
	}

	eval, created, err := h.manager.CreateOrGet(r.Context(), evalReq)
	if err != nil {
		respondError(w, NewErrorWithContext(http.StatusInternalServerError, "evaluation creation failed", err, requestID, endpoint, method, "evaluation", map[string]interface{}{
			"dataset_name": req.DatasetName,
			"task_type":    req.TaskType,
		}))
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondJSON(w, status, toEvaluationResponse(eval))
}

func (h *Handlers) GetEvaluation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := GetRequestID(r.Context())

	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "invalid evaluation ID format", err, requestID, r.URL.Path, r.Method, "evaluation", nil))
		return
	}

	eval, err := h.manager.Get(r.Context(), id)
	if err != nil {
		respondError(w, WrapError(ErrNotFound, requestID))
		return
	}

	respondJSON(w, http.StatusOK, toEvaluationResponse(eval))
}

func (h *Handlers) ListEvaluations(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	limit, offset, ok := paginationParams(w, r, requestID)
	if !ok {
		return
	}

	var datasetName, modelName, status *string
	if v := r.URL.Query().Get("dataset"); v != "" {
		datasetName = &v
	}
	if v := r.URL.Query().Get("model"); v != "" {
		modelName = &v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		if v != db.EvaluationPending && v != db.EvaluationRunning && v != db.EvaluationDone && v != db.EvaluationFailed {
			respondError(w, NewErrorWithContext(http.StatusBadRequest, "invalid status filter", nil, requestID, r.URL.Path, r.Method, "evaluation", map[string]interface{}{
				"status": v,
			}))
			return
		}
		status = &v
	}

	evals, err := h.manager.List(r.Context(), datasetName, modelName, status, limit, offset)
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "failed to list evaluations", err), requestID))
		return
	}

	responses := make([]EvaluationResponse, len(evals))
	for i := range evals {
		responses[i] = toEvaluationResponse(&evals[i])
	}

	respondJSON(w, http.StatusOK, responses)
}
