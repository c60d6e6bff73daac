/*-------------------------------------------------------------------------
 *
 * types.go
 *    API request and response types for Verdict
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/api/types.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/verdictml/verdict/internal/db"
)

type CreateDatasetRequest struct {
	Name     string                 `json:"name"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type DatasetResponse struct {
	ID        uuid.UUID              `json:"id"`
	Name      string                 `json:"name"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

type CreateModelRequest struct {
	Name     string                 `json:"name"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type ModelResponse struct {
	ID        uuid.UUID              `json:"id"`
	Name      string                 `json:"name"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

type CreateDatumRequest struct {
	UID      string                 `json:"uid"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type DatumResponse struct {
	ID        uuid.UUID              `json:"id"`
	DatasetID uuid.UUID              `json:"dataset_id"`
	UID       string                 `json:"uid"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

/* AnnotationLabel is a label attachment on an annotation submission.
 * Score is ignored for ground-truth annotations. */
type AnnotationLabel struct {
	Key   string  `json:"key"`
	Value string  `json:"value"`
	Score float64 `json:"score,omitempty"`
}

type CreateAnnotationRequest struct {
	ModelName *string                `json:"model_name,omitempty"`
	TaskType  string                 `json:"task_type"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Box       json.RawMessage        `json:"box,omitempty"`
	Polygon   json.RawMessage        `json:"polygon,omitempty"`
	Raster    []byte                 `json:"raster,omitempty"`
	Embedding []float32              `json:"embedding,omitempty"`
	Labels    []AnnotationLabel      `json:"labels"`
}

type AnnotationResponse struct {
	ID        uuid.UUID              `json:"id"`
	DatumID   uuid.UUID              `json:"datum_id"`
	ModelID   *uuid.UUID             `json:"model_id,omitempty"`
	TaskType  string                 `json:"task_type"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

type LabelResponse struct {
	ID    uuid.UUID `json:"id"`
	Key   string    `json:"key"`
	Value string    `json:"value"`
}

type CreateEvaluationRequest struct {
	DatasetName string                 `json:"dataset_name"`
	ModelNames  []string               `json:"model_names"`
	TaskType    string                 `json:"task_type"`
	Filter      json.RawMessage        `json:"filter,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type EvaluationResponse struct {
	ID           uuid.UUID              `json:"id"`
	Fingerprint  string                 `json:"fingerprint"`
	DatasetName  string                 `json:"dataset_name"`
	ModelNames   []string               `json:"model_names"`
	TaskType     string                 `json:"task_type"`
	Filters      map[string]interface{} `json:"filters,omitempty"`
	Parameters   map[string]interface{} `json:"parameters,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	Status       string                 `json:"status"`
	Metrics      map[string]interface{} `json:"metrics,omitempty"`
	ErrorMessage *string                `json:"error_message,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	StartedAt    *time.Time             `json:"started_at,omitempty"`
	CompletedAt  *time.Time             `json:"completed_at,omitempty"`
}

type ValidateFilterRequest struct {
	Expression json.RawMessage `json:"expression"`
}

type ValidateFilterResponse struct {
	Valid          bool   `json:"valid"`
	ErrorType      string `json:"error_type,omitempty"`
	Error          string `json:"error,omitempty"`
	PredicateCount int    `json:"predicate_count,omitempty"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func toDatasetResponse(d *db.Dataset) DatasetResponse {
	return DatasetResponse{
		ID:        d.ID,
		Name:      d.Name,
		Metadata:  d.Metadata,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func toModelResponse(m *db.Model) ModelResponse {
	return ModelResponse{
		ID:        m.ID,
		Name:      m.Name,
		Metadata:  m.Metadata,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toDatumResponse(d *db.Datum) DatumResponse {
	return DatumResponse{
		ID:        d.ID,
		DatasetID: d.DatasetID,
		UID:       d.UID,
		Metadata:  d.Metadata,
		CreatedAt: d.CreatedAt,
	}
}

func toAnnotationResponse(a *db.Annotation) AnnotationResponse {
	return AnnotationResponse{
		ID:        a.ID,
		DatumID:   a.DatumID,
		ModelID:   a.ModelID,
		TaskType:  a.TaskType,
		Metadata:  a.Metadata,
		CreatedAt: a.CreatedAt,
	}
}

func toLabelResponse(l *db.Label) LabelResponse {
	return LabelResponse{ID: l.ID, Key: l.Key, Value: l.Value}
}

func toEvaluationResponse(e *db.Evaluation) EvaluationResponse {
	return EvaluationResponse{
		ID:           e.ID,
		Fingerprint:  e.Fingerprint,
		DatasetName:  e.DatasetName,
		ModelNames:   e.ModelNames,
		TaskType:     e.TaskType,
		Filters:      e.Filters,
		Parameters:   e.Parameters,
		Metadata:     e.Metadata,
		Status:       e.Status,
		Metrics:      e.Metrics,
		ErrorMessage: e.ErrorMessage,
		CreatedAt:    e.CreatedAt,
		StartedAt:    e.StartedAt,
		CompletedAt:  e.CompletedAt,
	}
}
