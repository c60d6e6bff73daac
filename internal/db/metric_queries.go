/*-------------------------------------------------------------------------
 *
 * metric_queries.go
 *    Database queries for metric computation
 *
 * Fetches ground-truth and prediction label pairings for classification
 * metrics, and pushes raster overlap counting into PostGIS for semantic
 * segmentation IOU. Each query is scoped to an explicit datum id set so
 * filter results compose with metric computation.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <admin@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/db/metric_queries.go
 *
 *-------------------------------------------------------------------------
 */

package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

/* GroundTruthLabel is one ground-truth label on a datum */
type GroundTruthLabel struct {
	DatumID uuid.UUID `db:"datum_id"`
	Key     string    `db:"key"`
	Value   string    `db:"value"`
}

/* PredictionLabel is one scored prediction label on a datum */
type PredictionLabel struct {
	DatumID uuid.UUID `db:"datum_id"`
	Key     string    `db:"key"`
	Value   string    `db:"value"`
	Score   float64   `db:"score"`
}

/* SegmentationCounts aggregates raster pixel counts per label */
type SegmentationCounts struct {
	Key              string `db:"key"`
	Value            string `db:"value"`
	Intersection     int64  `db:"intersection_count"`
	GroundTruthCount int64  `db:"groundtruth_count"`
	PredictionCount  int64  `db:"prediction_count"`
}

const (
	groundTruthLabelsQuery = `
		SELECT datums.id AS datum_id, labels.key, labels.value
		FROM verdict.datums AS datums
		JOIN verdict.annotations AS annotations
		  ON annotations.datum_id = datums.id AND annotations.model_id IS NULL
		JOIN verdict.groundtruths AS groundtruths
		  ON groundtruths.annotation_id = annotations.id
		JOIN verdict.labels AS labels ON labels.id = groundtruths.label_id
		WHERE datums.id = ANY($1::uuid[])`

	predictionLabelsQuery = `
		SELECT datums.id AS datum_id, labels.key, labels.value, predictions.score
		FROM verdict.datums AS datums
		JOIN verdict.annotations AS annotations
		  ON annotations.datum_id = datums.id
		JOIN verdict.models AS models
		  ON models.id = annotations.model_id AND models.name = $2
		JOIN verdict.predictions AS predictions
		  ON predictions.annotation_id = annotations.id
		JOIN verdict.labels AS labels ON labels.id = predictions.label_id
		WHERE datums.id = ANY($1::uuid[])`

	/* Pixel counting stays inside PostGIS so rasters never cross the
	 * wire. ST_Intersection of ground-truth and prediction masks gives
	 * the overlap; per-label sums feed the IOU division in Go. */
	segmentationCountsQuery = `
		SELECT labels.key, labels.value,
		       COALESCE(SUM(ST_Count(ST_Intersection(gt_ann.raster, pd_ann.raster))), 0)::bigint AS intersection_count,
		       COALESCE(SUM(ST_Count(gt_ann.raster)), 0)::bigint AS groundtruth_count,
		       COALESCE(SUM(ST_Count(pd_ann.raster)), 0)::bigint AS prediction_count
		FROM verdict.datums AS datums
		JOIN verdict.annotations AS gt_ann
		  ON gt_ann.datum_id = datums.id AND gt_ann.model_id IS NULL
		JOIN verdict.groundtruths AS groundtruths
		  ON groundtruths.annotation_id = gt_ann.id
		JOIN verdict.labels AS labels ON labels.id = groundtruths.label_id
		JOIN verdict.annotations AS pd_ann
		  ON pd_ann.datum_id = datums.id
		JOIN verdict.models AS models
		  ON models.id = pd_ann.model_id AND models.name = $2
		JOIN verdict.predictions AS predictions
		  ON predictions.annotation_id = pd_ann.id AND predictions.label_id = labels.id
		WHERE datums.id = ANY($1::uuid[])
		  AND gt_ann.raster IS NOT NULL AND pd_ann.raster IS NOT NULL
		GROUP BY labels.key, labels.value`
)

/* GetGroundTruthLabels fetches ground-truth labels over a datum id set */
func (q *Queries) GetGroundTruthLabels(ctx context.Context, datumIDs []uuid.UUID) ([]GroundTruthLabel, error) {
	var labels []GroundTruthLabel
	err := q.DB.SelectContext(ctx, &labels, groundTruthLabelsQuery, pq.Array(datumIDs))
	if err != nil {
		return nil, q.formatQueryError("SELECT", groundTruthLabelsQuery, 1, "verdict.groundtruths", err)
	}
	return labels, nil
}

/* GetPredictionLabels fetches a model's scored labels over a datum id set */
func (q *Queries) GetPredictionLabels(ctx context.Context, datumIDs []uuid.UUID, modelName string) ([]PredictionLabel, error) {
	var labels []PredictionLabel
	err := q.DB.SelectContext(ctx, &labels, predictionLabelsQuery, pq.Array(datumIDs), modelName)
	if err != nil {
		return nil, q.formatQueryError("SELECT", predictionLabelsQuery, 2, "verdict.predictions", err)
	}
	return labels, nil
}

/* GetSegmentationCounts aggregates raster overlap counts per label */
func (q *Queries) GetSegmentationCounts(ctx context.Context, datumIDs []uuid.UUID, modelName string) ([]SegmentationCounts, error) {
	var counts []SegmentationCounts
	err := q.DB.SelectContext(ctx, &counts, segmentationCountsQuery, pq.Array(datumIDs), modelName)
	if err != nil {
		return nil, q.formatQueryError("SELECT", segmentationCountsQuery, 2, "verdict.annotations", err)
	}
	return counts, nil
}
