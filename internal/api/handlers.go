/*-------------------------------------------------------------------------
 *
 * handlers.go
 *    API handlers for Verdict
 *
 * Provides HTTP handlers for datasets, models, datums, annotations,
 * and labels.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/api/handlers.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/verdictml/verdict/internal/db"
	"github.com/verdictml/verdict/internal/evaluation"
	"github.com/verdictml/verdict/internal/metrics"
	"github.com/verdictml/verdict/internal/validation"
)

const maxBodySize = 10 * 1024 * 1024

type Handlers struct {
	queries *db.Queries
	manager *evaluation.Manager
	health  func() error
}

func NewHandlers(queries *db.Queries, manager *evaluation.Manager, health func() error) *Handlers {
	return &Handlers{
		queries: queries,
		manager: manager,
		health:  health,
	}
}

/* Datasets */

func (h *Handlers) CreateDataset(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())
	endpoint := r.URL.Path
	method := r.Method

	bodyBytes, err := validation.ReadAndValidateBody(r, maxBodySize)
	if err != nil {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "request body validation failed", err, requestID, endpoint, method, "dataset", nil))
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	var req CreateDatasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "dataset creation failed: request body parsing error", err, requestID, endpoint, method, "dataset", map[string]interface{}{
			"body_size": len(bodyBytes),
		}))
		return
	}

	if !ValidateAndRespond(w, func() error { return validation.ValidateResourceName(req.Name, "name") }) {
		return
	}

	dataset := &db.Dataset{
		Name:     req.Name,
		Metadata: req.Metadata,
	}

	if err := h.queries.CreateDataset(r.Context(), dataset); err != nil {
		respondError(w, NewErrorWithContext(http.StatusInternalServerError, "dataset creation failed", err, requestID, endpoint, method, "dataset", map[string]interface{}{
			"dataset_name": req.Name,
		}))
		return
	}

	respondJSON(w, http.StatusCreated, toDatasetResponse(dataset))
}

func (h *Handlers) GetDataset(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := GetRequestID(r.Context())

	dataset, err := h.queries.GetDatasetByName(r.Context(), vars["name"])
	if err != nil {
		respondError(w, WrapError(ErrNotFound, requestID))
		return
	}

	respondJSON(w, http.StatusOK, toDatasetResponse(dataset))
}

func (h *Handlers) ListDatasets(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	datasets, err := h.queries.ListDatasets(r.Context())
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "failed to list datasets", err), requestID))
		return
	}

	responses := make([]DatasetResponse, len(datasets))
	for i := range datasets {
		responses[i] = toDatasetResponse(&datasets[i])
	}

	respondJSON(w, http.StatusOK, responses)
}

func (h *Handlers) DeleteDataset(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := GetRequestID(r.Context())

	if err := h.queries.DeleteDataset(r.Context(), vars["name"]); err != nil {
		respondError(w, WrapError(ErrNotFound, requestID))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

/* Models */

func (h *Handlers) CreateModel(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())
	endpoint := r.URL.Path
	method := r.Method

	bodyBytes, err := validation.ReadAndValidateBody(r, maxBodySize)
	if err != nil {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "request body validation failed", err, requestID, endpoint, method, "model", nil))
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	var req CreateModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "model creation failed: request body parsing error", err, requestID, endpoint, method, "model", map[string]interface{}{
			"body_size": len(bodyBytes),
		}))
		return
	}

	if !ValidateAndRespond(w, func() error { return validation.ValidateResourceName(req.Name, "name") }) {
		return
	}

	model := &db.Model{
		Name:     req.Name,
		Metadata: req.Metadata,
	}

	if err := h.queries.CreateModel(r.Context(), model); err != nil {
		respondError(w, NewErrorWithContext(http.StatusInternalServerError, "model creation failed", err, requestID, endpoint, method, "model", map[string]interface{}{
			"model_name": req.Name,
		}))
		return
	}

	respondJSON(w, http.StatusCreated, toModelResponse(model))
}

func (h *Handlers) GetModel(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := GetRequestID(r.Context())

	model, err := h.queries.GetModelByName(r.Context(), vars["name"])
	if err != nil {
		respondError(w, WrapError(ErrNotFound, requestID))
		return
	}

	respondJSON(w, http.StatusOK, toModelResponse(model))
}

func (h *Handlers) ListModels(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	models, err := h.queries.ListModels(r.Context())
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "failed to list models", err), requestID))
		return
	}

	responses := make([]ModelResponse, len(models))
	for i := range models {
		responses[i] = toModelResponse(&models[i])
	}

	respondJSON(w, http.StatusOK, responses)
}

func (h *Handlers) DeleteModel(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := GetRequestID(r.Context())

	if err := h.queries.DeleteModel(r.Context(), vars["name"]); err != nil {
		respondError(w, WrapError(ErrNotFound, requestID))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

/* Datums */

func (h *Handlers) CreateDatum(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := GetRequestID(r.Context())
	endpoint := r.URL.Path
	method := r.Method

	dataset, err := h.queries.GetDatasetByName(r.Context(), vars["name"])
	if err != nil {
		respondError(w, WrapError(ErrNotFound, requestID))
		return
	}

	bodyBytes, err := validation.ReadAndValidateBody(r, maxBodySize)
	if err != nil {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "request body validation failed", err, requestID, endpoint, method, "datum", nil))
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	var req CreateDatumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "datum creation failed: request body parsing error", err, requestID, endpoint, method, "datum", map[string]interface{}{
			"body_size": len(bodyBytes),
		}))
		return
	}

	if !ValidateAndRespond(w, func() error { return validation.ValidateRequired(req.UID, "uid") }) {
		return
	}

	datum := &db.Datum{
		DatasetID: dataset.ID,
		UID:       req.UID,
		Metadata:  req.Metadata,
	}

	if err := h.queries.CreateDatum(r.Context(), datum); err != nil {
		respondError(w, NewErrorWithContext(http.StatusInternalServerError, "datum creation failed", err, requestID, endpoint, method, "datum", map[string]interface{}{
			"dataset_name": dataset.Name,
			"datum_uid":    req.UID,
		}))
		return
	}

	respondJSON(w, http.StatusCreated, toDatumResponse(datum))
}

func (h *Handlers) GetDatum(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := GetRequestID(r.Context())

	dataset, err := h.queries.GetDatasetByName(r.Context(), vars["name"])
	if err != nil {
		respondError(w, WrapError(ErrNotFound, requestID))
		return
	}

	datum, err := h.queries.GetDatum(r.Context(), dataset.ID, vars["uid"])
	if err != nil {
		respondError(w, WrapError(ErrNotFound, requestID))
		return
	}

	respondJSON(w, http.StatusOK, toDatumResponse(datum))
}

func (h *Handlers) ListDatums(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := GetRequestID(r.Context())

	dataset, err := h.queries.GetDatasetByName(r.Context(), vars["name"])
	if err != nil {
		respondError(w, WrapError(ErrNotFound, requestID))
		return
	}

	limit, offset, ok := paginationParams(w, r, requestID)
	if !ok {
		return
	}

	datums, err := h.queries.ListDatums(r.Context(), dataset.ID, limit, offset)
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "failed to list datums", err), requestID))
		return
	}

	responses := make([]DatumResponse, len(datums))
	for i := range datums {
		responses[i] = toDatumResponse(&datums[i])
	}

	respondJSON(w, http.StatusOK, responses)
}

/* Annotations */

func (h *Handlers) CreateAnnotation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := GetRequestID(r.Context())
	endpoint := r.URL.Path
	method := r.Method

	dataset, err := h.queries.GetDatasetByName(r.Context(), vars["name"])
	if err != nil {
		respondError(w, WrapError(ErrNotFound, requestID))
		return
	}

	datum, err := h.queries.GetDatum(r.Context(), dataset.ID, vars["uid"])
	if err != nil {
		respondError(w, WrapError(ErrNotFound, requestID))
		return
	}

	bodyBytes, err := validation.ReadAndValidateBody(r, maxBodySize)
	if err != nil {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "request body validation failed", err, requestID, endpoint, method, "annotation", nil))
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	var req CreateAnnotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "annotation creation failed: request body parsing error", err, requestID, endpoint, method, "annotation", map[string]interface{}{
			"body_size": len(bodyBytes),
		}))
		return
	}

	if !ValidateAndRespond(w, func() error { return ValidateCreateAnnotationRequest(&req) }) {
		return
	}

	annotation := &db.Annotation{
		DatumID:  datum.ID,
		TaskType: req.TaskType,
		Metadata: req.Metadata,
		Raster:   req.Raster,
	}
	if req.Box != nil {
		box := string(req.Box)
		annotation.Box = &box
	}
	if req.Polygon != nil {
		polygon := string(req.Polygon)
		annotation.Polygon = &polygon
	}

	/* A model name marks the annotation as a prediction. Absent, the
	 * annotation and its labels are ground truth. */
	if req.ModelName != nil {
		model, err := h.queries.GetModelByName(r.Context(), *req.ModelName)
		if err != nil {
			respondError(w, NewErrorWithContext(http.StatusNotFound, "model not found", err, requestID, endpoint, method, "annotation", map[string]interface{}{
				"model_name": *req.ModelName,
			}))
			return
		}
		annotation.ModelID = &model.ID
	}

	if err := h.queries.CreateAnnotation(r.Context(), annotation); err != nil {
		respondError(w, NewErrorWithContext(http.StatusInternalServerError, "annotation creation failed", err, requestID, endpoint, method, "annotation", map[string]interface{}{
			"dataset_name": dataset.Name,
			"datum_uid":    datum.UID,
			"task_type":    req.TaskType,
		}))
		return
	}

	for _, al := range req.Labels {
		label := &db.Label{Key: al.Key, Value: al.Value}
		if err := h.queries.GetOrCreateLabel(r.Context(), label); err != nil {
			respondError(w, WrapError(NewError(http.StatusInternalServerError, "label resolution failed", err), requestID))
			return
		}

		if annotation.ModelID != nil {
			prediction := &db.Prediction{
				AnnotationID: annotation.ID,
				LabelID:      label.ID,
				Score:        al.Score,
			}
			if err := h.queries.CreatePrediction(r.Context(), prediction); err != nil {
				respondError(w, WrapError(NewError(http.StatusInternalServerError, "prediction creation failed", err), requestID))
				return
			}
		} else {
			gt := &db.GroundTruth{
				AnnotationID: annotation.ID,
				LabelID:      label.ID,
			}
			if err := h.queries.CreateGroundTruth(r.Context(), gt); err != nil {
				respondError(w, WrapError(NewError(http.StatusInternalServerError, "ground truth creation failed", err), requestID))
				return
			}
		}
	}

	if len(req.Embedding) > 0 {
		embedding := &db.Embedding{
			AnnotationID: annotation.ID,
			Value:        req.Embedding,
		}
		if err := h.queries.CreateEmbedding(r.Context(), embedding); err != nil {
			respondError(w, WrapError(NewError(http.StatusInternalServerError, "embedding creation failed", err), requestID))
			return
		}
	}

	respondJSON(w, http.StatusCreated, toAnnotationResponse(annotation))
}

func (h *Handlers) ListAnnotations(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := GetRequestID(r.Context())

	dataset, err := h.queries.GetDatasetByName(r.Context(), vars["name"])
	if err != nil {
		respondError(w, WrapError(ErrNotFound, requestID))
		return
	}

	datum, err := h.queries.GetDatum(r.Context(), dataset.ID, vars["uid"])
	if err != nil {
		respondError(w, WrapError(ErrNotFound, requestID))
		return
	}

	annotations, err := h.queries.ListAnnotationsByDatum(r.Context(), datum.ID)
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "failed to list annotations", err), requestID))
		return
	}

	responses := make([]AnnotationResponse, len(annotations))
	for i := range annotations {
		responses[i] = toAnnotationResponse(&annotations[i])
	}

	respondJSON(w, http.StatusOK, responses)
}

/* Labels */

func (h *Handlers) ListLabels(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	labels, err := h.queries.ListLabels(r.Context())
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "failed to list labels", err), requestID))
		return
	}

	responses := make([]LabelResponse, len(labels))
	for i := range labels {
		responses[i] = toLabelResponse(&labels[i])
	}

	respondJSON(w, http.StatusOK, responses)
}

/* Health */

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Database: "ok"}
	status := http.StatusOK
	if h.health != nil {
		if err := h.health(); err != nil {
			resp.Status = "degraded"
			resp.Database = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	respondJSON(w, status, resp)
}

/* Stats returns runtime evaluation statistics */
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, metrics.DefaultRuntimeStats.Snapshot())
}

/* Helper functions */

func paginationParams(w http.ResponseWriter, r *http.Request, requestID string) (int, int, bool) {
	limit := 100
	offset := 0

	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, NewErrorWithContext(http.StatusBadRequest, "invalid limit parameter", err, requestID, r.URL.Path, r.Method, "", nil))
			return 0, 0, false
		}
		if err := validation.ValidateLimit(parsed); err != nil {
			respondError(w, NewErrorWithContext(http.StatusBadRequest, "invalid limit value", err, requestID, r.URL.Path, r.Method, "", nil))
			return 0, 0, false
		}
		limit = parsed
	}

	if v := r.URL.Query().Get("offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, NewErrorWithContext(http.StatusBadRequest, "invalid offset parameter", err, requestID, r.URL.Path, r.Method, "", nil))
			return 0, 0, false
		}
		if err := validation.ValidateOffset(parsed); err != nil {
			respondError(w, NewErrorWithContext(http.StatusBadRequest, "invalid offset value", err, requestID, r.URL.Path, r.Method, "", nil))
			return 0, 0, false
		}
		offset = parsed
	}

	return limit, offset, true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, err *APIError) {
	response := ErrorResponse{
		Error: err.Message,
		Code:  err.Code,
	}
	if err.Err != nil {
		response.Message = err.Err.Error()
	}
	if errType := FilterErrorType(err.Err); errType != "" {
		response.ErrorType = errType
	}
	if err.RequestID != "" {
		w.Header().Set("X-Request-ID", err.RequestID)
	}
	respondJSON(w, err.Code, response)
}
