/*-------------------------------------------------------------------------
 *
 * queries.go
 *    Database queries for Verdict
 *
 * Provides database query functions for datasets, models, datums,
 * annotations, labels, ground truths, predictions, and embeddings.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <admin@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/db/queries.go
 *
 *-------------------------------------------------------------------------
 */

package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/verdictml/verdict/internal/utils"
)

/* Dataset queries */
const (
	createDatasetQuery = `
		INSERT INTO verdict.datasets (name, metadata)
		VALUES ($1, $2::jsonb)
		RETURNING id, created_at, updated_at`

	getDatasetByNameQuery = `SELECT * FROM verdict.datasets WHERE name = $1`

	listDatasetsQuery = `SELECT * FROM verdict.datasets ORDER BY created_at DESC`

	deleteDatasetQuery = `DELETE FROM verdict.datasets WHERE name = $1`
)

/* Model queries */
const (
	createModelQuery = `
		INSERT INTO verdict.models (name, metadata)
		VALUES ($1, $2::jsonb)
		RETURNING id, created_at, updated_at`

	getModelByNameQuery = `SELECT * FROM verdict.models WHERE name = $1`

	listModelsQuery = `SELECT * FROM verdict.models ORDER BY created_at DESC`

	deleteModelQuery = `DELETE FROM verdict.models WHERE name = $1`
)

/* Datum queries */
const (
	createDatumQuery = `
		INSERT INTO verdict.datums (dataset_id, uid, metadata)
		VALUES ($1, $2, $3::jsonb)
		RETURNING id, created_at`

	getDatumQuery = `
		SELECT * FROM verdict.datums
		WHERE dataset_id = $1 AND uid = $2`

	listDatumsQuery = `
		SELECT * FROM verdict.datums
		WHERE dataset_id = $1
		ORDER BY uid
		LIMIT $2 OFFSET $3`
)

/* Annotation queries */
const (
	createAnnotationQuery = `
		INSERT INTO verdict.annotations
		(datum_id, model_id, task_type, metadata, box, polygon, raster)
		VALUES ($1, $2, $3, $4::jsonb,
		        ST_GeomFromGeoJSON($5), ST_GeomFromGeoJSON($6), $7)
		RETURNING id, created_at`

	getAnnotationQuery = `
		SELECT id, datum_id, model_id, task_type, metadata,
		       ST_AsGeoJSON(box) AS box, ST_AsGeoJSON(polygon) AS polygon,
		       created_at
		FROM verdict.annotations WHERE id = $1`

	listAnnotationsByDatumQuery = `
		SELECT id, datum_id, model_id, task_type, metadata,
		       ST_AsGeoJSON(box) AS box, ST_AsGeoJSON(polygon) AS polygon,
		       created_at
		FROM verdict.annotations
		WHERE datum_id = $1
		ORDER BY created_at`
)

/* Label queries */
const (
	getOrCreateLabelQuery = `
		INSERT INTO verdict.labels (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key, value) DO UPDATE SET key = EXCLUDED.key
		RETURNING id, key, value, created_at`

	getLabelQuery = `SELECT * FROM verdict.labels WHERE key = $1 AND value = $2`

	listLabelsQuery = `SELECT * FROM verdict.labels ORDER BY key, value`
)

/* Ground truth and prediction queries */
const (
	createGroundTruthQuery = `
		INSERT INTO verdict.groundtruths (annotation_id, label_id)
		VALUES ($1, $2)
		RETURNING id, created_at`

	createPredictionQuery = `
		INSERT INTO verdict.predictions (annotation_id, label_id, score)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
)

/* Embedding queries */
const (
	createEmbeddingQuery = `
		INSERT INTO verdict.embeddings (annotation_id, value)
		VALUES ($1, $2::vector)
		RETURNING id, created_at`

	getEmbeddingByAnnotationQuery = `
		SELECT id, annotation_id, created_at
		FROM verdict.embeddings WHERE annotation_id = $1`
)

type Queries struct {
	DB       *sqlx.DB
	connInfo func() string
}

/* GetDB returns the database connection (for compatibility) */
func (q *Queries) GetDB() *sqlx.DB {
	return q.DB
}

func NewQueries(db *sqlx.DB) *Queries {
	return &Queries{
		DB: db,
		connInfo: func() string {
			return "unknown database connection"
		},
	}
}

/* SetConnInfoFunc sets a function to retrieve connection info for error messages */
func (q *Queries) SetConnInfoFunc(fn func() string) {
	q.connInfo = fn
}

/* getConnInfoString returns connection info string */
func (q *Queries) getConnInfoString() string {
	if q.connInfo != nil {
		return q.connInfo()
	}
	return "unknown database connection"
}

/* formatQueryError formats a detailed query error message */
func (q *Queries) formatQueryError(operation string, query string, paramCount int, table string, err error) error {
	queryContext := utils.FormatQueryContext(query, paramCount, operation, table)
	connInfo := q.getConnInfoString()
	return fmt.Errorf("query execution failed on %s: %s, error=%w", connInfo, queryContext, err)
}

/* Dataset methods */
func (q *Queries) CreateDataset(ctx context.Context, dataset *Dataset) error {
	params := []interface{}{dataset.Name, dataset.Metadata}
	err := q.DB.GetContext(ctx, dataset, createDatasetQuery, params...)
	if err != nil {
		return q.formatQueryError("INSERT", createDatasetQuery, len(params), "verdict.datasets", err)
	}
	return nil
}

func (q *Queries) GetDatasetByName(ctx context.Context, name string) (*Dataset, error) {
	var dataset Dataset
	err := q.DB.GetContext(ctx, &dataset, getDatasetByNameQuery, name)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("dataset not found on %s: query='%s', dataset_name='%s', table='verdict.datasets', error=%w",
			q.getConnInfoString(), getDatasetByNameQuery, name, err)
	}
	if err != nil {
		return nil, q.formatQueryError("SELECT", getDatasetByNameQuery, 1, "verdict.datasets", err)
	}
	return &dataset, nil
}

func (q *Queries) ListDatasets(ctx context.Context) ([]Dataset, error) {
	var datasets []Dataset
	err := q.DB.SelectContext(ctx, &datasets, listDatasetsQuery)
	if err != nil {
		return nil, q.formatQueryError("SELECT", listDatasetsQuery, 0, "verdict.datasets", err)
	}
	return datasets, nil
}

func (q *Queries) DeleteDataset(ctx context.Context, name string) error {
	result, err := q.DB.ExecContext(ctx, deleteDatasetQuery, name)
	if err != nil {
		return q.formatQueryError("DELETE", deleteDatasetQuery, 1, "verdict.datasets", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for DELETE on %s: query='%s', dataset_name='%s', table='verdict.datasets', error=%w",
			q.getConnInfoString(), deleteDatasetQuery, name, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("dataset not found on %s: query='%s', dataset_name='%s', table='verdict.datasets', rows_affected=0",
			q.getConnInfoString(), deleteDatasetQuery, name)
	}
	return nil
}

/* Model methods */
func (q *Queries) CreateModel(ctx context.Context, model *Model) error {
	params := []interface{}{model.Name, model.Metadata}
	err := q.DB.GetContext(ctx, model, createModelQuery, params...)
	if err != nil {
		return q.formatQueryError("INSERT", createModelQuery, len(params), "verdict.models", err)
	}
	return nil
}

func (q *Queries) GetModelByName(ctx context.Context, name string) (*Model, error) {
	var model Model
	err := q.DB.GetContext(ctx, &model, getModelByNameQuery, name)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("model not found on %s: query='%s', model_name='%s', table='verdict.models', error=%w",
			q.getConnInfoString(), getModelByNameQuery, name, err)
	}
	if err != nil {
		return nil, q.formatQueryError("SELECT", getModelByNameQuery, 1, "verdict.models", err)
	}
	return &model, nil
}

func (q *Queries) ListModels(ctx context.Context) ([]Model, error) {
	var models []Model
	err := q.DB.SelectContext(ctx, &models, listModelsQuery)
	if err != nil {
		return nil, q.formatQueryError("SELECT", listModelsQuery, 0, "verdict.models", err)
	}
	return models, nil
}

func (q *Queries) DeleteModel(ctx context.Context, name string) error {
	result, err := q.DB.ExecContext(ctx, deleteModelQuery, name)
	if err != nil {
		return q.formatQueryError("DELETE", deleteModelQuery, 1, "verdict.models", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for DELETE on %s: query='%s', model_name='%s', table='verdict.models', error=%w",
			q.getConnInfoString(), deleteModelQuery, name, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("model not found on %s: query='%s', model_name='%s', table='verdict.models', rows_affected=0",
			q.getConnInfoString(), deleteModelQuery, name)
	}
	return nil
}

/* Datum methods */
func (q *Queries) CreateDatum(ctx context.Context, datum *Datum) error {
	params := []interface{}{datum.DatasetID, datum.UID, datum.Metadata}
	err := q.DB.GetContext(ctx, datum, createDatumQuery, params...)
	if err != nil {
		return q.formatQueryError("INSERT", createDatumQuery, len(params), "verdict.datums", err)
	}
	return nil
}

func (q *Queries) GetDatum(ctx context.Context, datasetID uuid.UUID, uid string) (*Datum, error) {
	var datum Datum
	err := q.DB.GetContext(ctx, &datum, getDatumQuery, datasetID, uid)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("datum not found on %s: query='%s', datum_uid='%s', table='verdict.datums', error=%w",
			q.getConnInfoString(), getDatumQuery, uid, err)
	}
	if err != nil {
		return nil, q.formatQueryError("SELECT", getDatumQuery, 2, "verdict.datums", err)
	}
	return &datum, nil
}

func (q *Queries) ListDatums(ctx context.Context, datasetID uuid.UUID, limit, offset int) ([]Datum, error) {
	var datums []Datum
	err := q.DB.SelectContext(ctx, &datums, listDatumsQuery, datasetID, limit, offset)
	if err != nil {
		return nil, q.formatQueryError("SELECT", listDatumsQuery, 3, "verdict.datums", err)
	}
	return datums, nil
}

/* Annotation methods */
func (q *Queries) CreateAnnotation(ctx context.Context, annotation *Annotation) error {
	params := []interface{}{annotation.DatumID, annotation.ModelID, annotation.TaskType,
		annotation.Metadata, annotation.Box, annotation.Polygon, annotation.Raster}
	err := q.DB.GetContext(ctx, annotation, createAnnotationQuery, params...)
	if err != nil {
		return q.formatQueryError("INSERT", createAnnotationQuery, len(params), "verdict.annotations", err)
	}
	return nil
}

func (q *Queries) GetAnnotation(ctx context.Context, id uuid.UUID) (*Annotation, error) {
	var annotation Annotation
	err := q.DB.GetContext(ctx, &annotation, getAnnotationQuery, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("annotation not found on %s: query='%s', annotation_id='%s', table='verdict.annotations', error=%w",
			q.getConnInfoString(), getAnnotationQuery, id.String(), err)
	}
	if err != nil {
		return nil, q.formatQueryError("SELECT", getAnnotationQuery, 1, "verdict.annotations", err)
	}
	return &annotation, nil
}

func (q *Queries) ListAnnotationsByDatum(ctx context.Context, datumID uuid.UUID) ([]Annotation, error) {
	var annotations []Annotation
	err := q.DB.SelectContext(ctx, &annotations, listAnnotationsByDatumQuery, datumID)
	if err != nil {
		return nil, q.formatQueryError("SELECT", listAnnotationsByDatumQuery, 1, "verdict.annotations", err)
	}
	return annotations, nil
}

/* Label methods */
func (q *Queries) GetOrCreateLabel(ctx context.Context, label *Label) error {
	params := []interface{}{label.Key, label.Value}
	err := q.DB.GetContext(ctx, label, getOrCreateLabelQuery, params...)
	if err != nil {
		return q.formatQueryError("INSERT", getOrCreateLabelQuery, len(params), "verdict.labels", err)
	}
	return nil
}

func (q *Queries) GetLabel(ctx context.Context, key, value string) (*Label, error) {
	var label Label
	err := q.DB.GetContext(ctx, &label, getLabelQuery, key, value)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("label not found on %s: query='%s', label='%s=%s', table='verdict.labels', error=%w",
			q.getConnInfoString(), getLabelQuery, key, value, err)
	}
	if err != nil {
		return nil, q.formatQueryError("SELECT", getLabelQuery, 2, "verdict.labels", err)
	}
	return &label, nil
}

func (q *Queries) ListLabels(ctx context.Context) ([]Label, error) {
	var labels []Label
	err := q.DB.SelectContext(ctx, &labels, listLabelsQuery)
	if err != nil {
		return nil, q.formatQueryError("SELECT", listLabelsQuery, 0, "verdict.labels", err)
	}
	return labels, nil
}

/* Ground truth and prediction methods */
func (q *Queries) CreateGroundTruth(ctx context.Context, gt *GroundTruth) error {
	params := []interface{}{gt.AnnotationID, gt.LabelID}
	err := q.DB.GetContext(ctx, gt, createGroundTruthQuery, params...)
	if err != nil {
		return q.formatQueryError("INSERT", createGroundTruthQuery, len(params), "verdict.groundtruths", err)
	}
	return nil
}

func (q *Queries) CreatePrediction(ctx context.Context, prediction *Prediction) error {
	params := []interface{}{prediction.AnnotationID, prediction.LabelID, prediction.Score}
	err := q.DB.GetContext(ctx, prediction, createPredictionQuery, params...)
	if err != nil {
		return q.formatQueryError("INSERT", createPredictionQuery, len(params), "verdict.predictions", err)
	}
	return nil
}

/* Embedding methods */
func (q *Queries) CreateEmbedding(ctx context.Context, embedding *Embedding) error {
	params := []interface{}{embedding.AnnotationID, formatVector(embedding.Value)}
	err := q.DB.GetContext(ctx, embedding, createEmbeddingQuery, params...)
	if err != nil {
		return q.formatQueryError("INSERT", createEmbeddingQuery, len(params), "verdict.embeddings", err)
	}
	return nil
}

func (q *Queries) GetEmbeddingByAnnotation(ctx context.Context, annotationID uuid.UUID) (*Embedding, error) {
	var embedding Embedding
	err := q.DB.GetContext(ctx, &embedding, getEmbeddingByAnnotationQuery, annotationID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("embedding not found on %s: query='%s', annotation_id='%s', table='verdict.embeddings', error=%w",
			q.getConnInfoString(), getEmbeddingByAnnotationQuery, annotationID.String(), err)
	}
	if err != nil {
		return nil, q.formatQueryError("SELECT", getEmbeddingByAnnotationQuery, 1, "verdict.embeddings", err)
	}
	return &embedding, nil
}

/* formatVector renders a float slice in pgvector text format */
func formatVector(values []float32) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

/* SelectFiltered runs a planned filter query and scans each row */
func (q *Queries) SelectFiltered(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	err := q.DB.SelectContext(ctx, dest, query, args...)
	if err != nil {
		return q.formatQueryError("SELECT", query, len(args), "verdict.annotations", err)
	}
	return nil
}
