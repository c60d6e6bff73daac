/*-------------------------------------------------------------------------
 *
 * computer.go
 *    Evaluation computer
 *
 * Drives one evaluation end to end: scope the datum set through the
 * filter compiler, fetch label pairings per model, and assemble the
 * metric document. The stored filter is always conjoined with a dataset
 * name predicate so an evaluation never reads outside its dataset.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <admin@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/evaluation/computer.go
 *
 *-------------------------------------------------------------------------
 */

package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/verdictml/verdict/internal/db"
	"github.com/verdictml/verdict/internal/filter"
	"github.com/verdictml/verdict/internal/metrics"
)

/* Computer computes metrics for claimed evaluations */
type Computer struct {
	queries *db.Queries
}

func NewComputer(queries *db.Queries) *Computer {
	return &Computer{queries: queries}
}

/* Compute runs an evaluation and returns its metric document */
func (c *Computer) Compute(ctx context.Context, eval *db.Evaluation) (db.JSONBMap, error) {
	ctx = metrics.WithDatasetLogContext(ctx, eval.DatasetName)
	ctx = metrics.WithEvaluationIDLogContext(ctx, eval.ID)
	start := time.Now()

	datumIDs, err := c.scopedDatums(ctx, eval)
	if err != nil {
		return nil, err
	}
	if len(datumIDs) == 0 {
		return nil, fmt.Errorf("no datums match the evaluation scope for dataset '%s'", eval.DatasetName)
	}

	modelResults := make(map[string]interface{}, len(eval.ModelNames))
	for _, modelName := range eval.ModelNames {
		result, err := c.computeModel(ctx, eval, modelName, datumIDs)
		if err != nil {
			return nil, fmt.Errorf("evaluation of model '%s' failed: %w", modelName, err)
		}
		modelResults[modelName] = map[string]interface{}(result)
	}

	metrics.RecordEvaluationDuration(eval.TaskType, time.Since(start))
	metrics.InfoWithContext(ctx, "Evaluation computed", map[string]interface{}{
		"task_type":   eval.TaskType,
		"datum_count": len(datumIDs),
		"model_count": len(eval.ModelNames),
		"duration":    time.Since(start).String(),
	})

	return db.JSONBMap{
		"datum_count": len(datumIDs),
		"models":      modelResults,
	}, nil
}

/* scopedDatums resolves the datum ids covered by the evaluation */
func (c *Computer) scopedDatums(ctx context.Context, eval *db.Evaluation) ([]uuid.UUID, error) {
	expr, err := c.scopeExpression(eval)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	skeleton, sets, err := filter.Linearize(expr)
	if err != nil {
		metrics.RecordFilterCompilation("error", 0, 0)
		return nil, fmt.Errorf("stored filter failed to compile: %w", err)
	}
	query, err := filter.Plan(skeleton, sets, filter.PivotDatum, filter.LinkGroundTruths,
		[]string{"DISTINCT datums.id"})
	if err != nil {
		metrics.RecordFilterCompilation("error", 0, 0)
		return nil, fmt.Errorf("stored filter failed to plan: %w", err)
	}
	metrics.RecordFilterCompilation("ok", len(sets), time.Since(start))

	var datumIDs []uuid.UUID
	queryStart := time.Now()
	if err := c.queries.SelectFiltered(ctx, &datumIDs, query.SQL, query.Args...); err != nil {
		return nil, err
	}
	metrics.RecordFilteredQuery(string(filter.PivotDatum), time.Since(queryStart))
	return datumIDs, nil
}

/* scopeExpression conjoins the stored filter with the dataset predicate */
func (c *Computer) scopeExpression(eval *db.Evaluation) (*filter.Expr, error) {
	datasetLeaf := &filter.Expr{
		Op:  filter.OpEq,
		Sym: &filter.Symbol{Name: "dataset.name", Dtype: filter.DtypeString},
		Val: &filter.Value{Type: filter.DtypeString, Value: eval.DatasetName},
	}
	if len(eval.Filters) == 0 {
		return datasetLeaf, nil
	}

	raw, err := json.Marshal(map[string]interface{}(eval.Filters))
	if err != nil {
		return nil, fmt.Errorf("failed to serialize stored filter: %w", err)
	}
	stored, err := filter.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("stored filter is malformed: %w", err)
	}
	return &filter.Expr{Op: filter.OpAnd, Args: []*filter.Expr{datasetLeaf, stored}}, nil
}

/* computeModel computes one model's metrics over the datum scope. Raw
 * labels pass through the evaluation's label map before any math so
 * equivalent labels score as one grouper. */
func (c *Computer) computeModel(ctx context.Context, eval *db.Evaluation, modelName string, datumIDs []uuid.UUID) (db.JSONBMap, error) {
	ctx = metrics.WithModelLogContext(ctx, modelName)

	labelMap, err := ParseLabelMap(eval.Parameters)
	if err != nil {
		return nil, fmt.Errorf("stored parameters are malformed: %w", err)
	}

	switch eval.TaskType {
	case TaskClassification:
		gts, err := c.queries.GetGroundTruthLabels(ctx, datumIDs)
		if err != nil {
			return nil, err
		}
		preds, err := c.queries.GetPredictionLabels(ctx, datumIDs, modelName)
		if err != nil {
			return nil, err
		}
		return ComputeClassification(labelMap.MapGroundTruths(gts), labelMap.MapPredictions(preds)), nil

	case TaskSegmentation:
		counts, err := c.queries.GetSegmentationCounts(ctx, datumIDs, modelName)
		if err != nil {
			return nil, err
		}
		return ComputeSegmentation(labelMap.MapSegmentationCounts(counts)), nil

	case TaskDetection:
		thresholds, err := ParseIOUThresholds(eval.Parameters)
		if err != nil {
			return nil, fmt.Errorf("stored parameters are malformed: %w", err)
		}
		gts, err := c.queries.GetGroundTruthLabels(ctx, datumIDs)
		if err != nil {
			return nil, err
		}
		preds, err := c.queries.GetPredictionLabels(ctx, datumIDs, modelName)
		if err != nil {
			return nil, err
		}
		return ComputeDetectionCounts(labelMap.MapGroundTruths(gts), labelMap.MapPredictions(preds), thresholds), nil

	default:
		return nil, fmt.Errorf("unsupported task type '%s'", eval.TaskType)
	}
}
