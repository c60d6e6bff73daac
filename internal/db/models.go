/*-------------------------------------------------------------------------
 *
 * models.go
 *    Database models for Verdict
 *
 * Defines data structures for datasets, models, datums, annotations,
 * labels, ground truths, predictions, embeddings, and evaluations.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/db/models.go
 *
 *-------------------------------------------------------------------------
 */

package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Dataset struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Metadata  JSONBMap  `db:"metadata"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type Model struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Metadata  JSONBMap  `db:"metadata"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type Datum struct {
	ID        uuid.UUID `db:"id"`
	DatasetID uuid.UUID `db:"dataset_id"`
	UID       string    `db:"uid"`
	Metadata  JSONBMap  `db:"metadata"`
	CreatedAt time.Time `db:"created_at"`
}

/* Annotation attaches geometry and metadata to a datum. ModelID is NULL
 * for ground-truth annotations and set for model predictions. Geometry
 * columns hold serialized GeoJSON on the way in; PostGIS stores them as
 * geometry/raster. */
type Annotation struct {
	ID        uuid.UUID  `db:"id"`
	DatumID   uuid.UUID  `db:"datum_id"`
	ModelID   *uuid.UUID `db:"model_id"`
	TaskType  string     `db:"task_type"`
	Metadata  JSONBMap   `db:"metadata"`
	Box       *string    `db:"box"`
	Polygon   *string    `db:"polygon"`
	Raster    []byte     `db:"raster"`
	CreatedAt time.Time  `db:"created_at"`
}

type Label struct {
	ID        uuid.UUID `db:"id"`
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	CreatedAt time.Time `db:"created_at"`
}

type GroundTruth struct {
	ID           uuid.UUID `db:"id"`
	AnnotationID uuid.UUID `db:"annotation_id"`
	LabelID      uuid.UUID `db:"label_id"`
	CreatedAt    time.Time `db:"created_at"`
}

type Prediction struct {
	ID           uuid.UUID `db:"id"`
	AnnotationID uuid.UUID `db:"annotation_id"`
	LabelID      uuid.UUID `db:"label_id"`
	Score        float64   `db:"score"`
	CreatedAt    time.Time `db:"created_at"`
}

type Embedding struct {
	ID           uuid.UUID `db:"id"`
	AnnotationID uuid.UUID `db:"annotation_id"`
	Value        []float32 `db:"value"`
	CreatedAt    time.Time `db:"created_at"`
}

/* Evaluation tracks one evaluation job through its lifecycle. Fingerprint
 * is a content hash over the request's canonical form and is unique, so
 * identical requests collapse onto one row. */
type Evaluation struct {
	ID           uuid.UUID      `db:"id"`
	Fingerprint  string         `db:"fingerprint"`
	DatasetName  string         `db:"dataset_name"`
	ModelNames   pq.StringArray `db:"model_names"`
	TaskType     string         `db:"task_type"`
	Filters      JSONBMap       `db:"filters"`
	Parameters   JSONBMap       `db:"parameters"`
	Metadata     JSONBMap       `db:"metadata"`
	Status       string         `db:"status"`
	Metrics      JSONBMap       `db:"metrics"`
	ErrorMessage *string        `db:"error_message"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	StartedAt    *time.Time     `db:"started_at"`
	CompletedAt  *time.Time     `db:"completed_at"`
}

/* LabelCount is a label paired with its row count in a filtered set */
type LabelCount struct {
	Key   string `db:"key"`
	Value string `db:"value"`
	Count int64  `db:"count"`
}
