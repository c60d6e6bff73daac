/*-------------------------------------------------------------------------
 *
 * detection.go
 *    Object detection parameter handling and per-label counts
 *
 * Detection evaluations carry IOU thresholds in their parameters and
 * report per-grouper ground-truth and prediction counts at each
 * threshold. Average-precision arithmetic lives with downstream
 * consumers of those counts.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/evaluation/detection.go
 *
 *-------------------------------------------------------------------------
 */

package evaluation

import (
	"fmt"
	"sort"

	"github.com/verdictml/verdict/internal/db"
)

/* ParseIOUThresholds extracts and validates the iou_thresholds
 * parameter. Thresholds must be numbers in (0, 1]. */
func ParseIOUThresholds(params db.JSONBMap) ([]float64, error) {
	raw, ok := params["iou_thresholds"]
	if !ok || raw == nil {
		return nil, nil
	}

	entries, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("iou_thresholds must be a list of numbers")
	}

	thresholds := make([]float64, 0, len(entries))
	for i, entry := range entries {
		value, ok := entry.(float64)
		if !ok {
			return nil, fmt.Errorf("iou_thresholds entry %d is not a number", i)
		}
		if value <= 0 || value > 1 {
			return nil, fmt.Errorf("iou_thresholds entry %d must be in (0, 1], got %v", i, value)
		}
		thresholds = append(thresholds, value)
	}
	sort.Float64s(thresholds)
	return thresholds, nil
}

/* ComputeDetectionCounts tallies ground-truth and prediction labels per
 * grouper over the evaluation scope, echoing the requested thresholds. */
func ComputeDetectionCounts(gts []db.GroundTruthLabel, preds []db.PredictionLabel, thresholds []float64) db.JSONBMap {
	gtCounts := make(map[[2]string]int)
	predCounts := make(map[[2]string]int)
	order := make(map[[2]string]bool)

	for _, gt := range gts {
		label := [2]string{gt.Key, gt.Value}
		gtCounts[label]++
		order[label] = true
	}
	for _, pred := range preds {
		label := [2]string{pred.Key, pred.Value}
		predCounts[label]++
		order[label] = true
	}

	labels := make([][2]string, 0, len(order))
	for label := range order {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if labels[i][0] != labels[j][0] {
			return labels[i][0] < labels[j][0]
		}
		return labels[i][1] < labels[j][1]
	})

	counts := make([]interface{}, 0, len(labels))
	for _, label := range labels {
		counts = append(counts, map[string]interface{}{
			"key":           label[0],
			"value":         label[1],
			"ground_truths": gtCounts[label],
			"predictions":   predCounts[label],
		})
	}

	thresholdList := make([]interface{}, 0, len(thresholds))
	for _, t := range thresholds {
		thresholdList = append(thresholdList, t)
	}

	return db.JSONBMap{
		"label_counts":   counts,
		"iou_thresholds": thresholdList,
	}
}
