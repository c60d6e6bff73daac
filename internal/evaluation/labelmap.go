/*-------------------------------------------------------------------------
 *
 * labelmap.go
 *    Label equivalence mapping for evaluations
 *
 * Evaluation parameters may carry a "label_map" collapsing raw labels
 * into grouper labels before metric math, so synonymous labels (for
 * example several breed names mapped onto "class"/"cat") score as one.
 * The wire shape is a list of pairs:
 *
 *    [[["raw_key", "raw_value"], ["grouper_key", "grouper_value"]], ...]
 *
 * Labels absent from the map pass through unchanged.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/evaluation/labelmap.go
 *
 *-------------------------------------------------------------------------
 */

package evaluation

import (
	"fmt"

	"github.com/verdictml/verdict/internal/db"
)

/* LabelMap maps raw (key, value) labels onto grouper labels */
type LabelMap map[[2]string][2]string

/* ParseLabelMap extracts and validates the label_map parameter. A nil
 * map means identity. */
func ParseLabelMap(params db.JSONBMap) (LabelMap, error) {
	raw, ok := params["label_map"]
	if !ok || raw == nil {
		return nil, nil
	}

	entries, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("label_map must be a list of label pairs")
	}

	lm := make(LabelMap, len(entries))
	for i, entry := range entries {
		pair, ok := entry.([]interface{})
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("label_map entry %d must pair a raw label with a grouper label", i)
		}
		from, err := parseLabelPair(pair[0])
		if err != nil {
			return nil, fmt.Errorf("label_map entry %d: %w", i, err)
		}
		to, err := parseLabelPair(pair[1])
		if err != nil {
			return nil, fmt.Errorf("label_map entry %d: %w", i, err)
		}
		if existing, dup := lm[from]; dup && existing != to {
			return nil, fmt.Errorf("label_map maps (%s, %s) to two different groupers", from[0], from[1])
		}
		lm[from] = to
	}
	return lm, nil
}

func parseLabelPair(raw interface{}) ([2]string, error) {
	parts, ok := raw.([]interface{})
	if !ok || len(parts) != 2 {
		return [2]string{}, fmt.Errorf("label must be a [key, value] pair")
	}
	key, okKey := parts[0].(string)
	value, okValue := parts[1].(string)
	if !okKey || !okValue {
		return [2]string{}, fmt.Errorf("label key and value must be strings")
	}
	return [2]string{key, value}, nil
}

/* Grouper resolves a raw label to its grouper label */
func (lm LabelMap) Grouper(key, value string) (string, string) {
	if lm == nil {
		return key, value
	}
	if to, ok := lm[[2]string{key, value}]; ok {
		return to[0], to[1]
	}
	return key, value
}

/* MapGroundTruths rewrites ground-truth labels through the map */
func (lm LabelMap) MapGroundTruths(gts []db.GroundTruthLabel) []db.GroundTruthLabel {
	if lm == nil {
		return gts
	}
	mapped := make([]db.GroundTruthLabel, len(gts))
	for i, gt := range gts {
		gt.Key, gt.Value = lm.Grouper(gt.Key, gt.Value)
		mapped[i] = gt
	}
	return mapped
}

/* MapPredictions rewrites prediction labels through the map */
func (lm LabelMap) MapPredictions(preds []db.PredictionLabel) []db.PredictionLabel {
	if lm == nil {
		return preds
	}
	mapped := make([]db.PredictionLabel, len(preds))
	for i, pred := range preds {
		pred.Key, pred.Value = lm.Grouper(pred.Key, pred.Value)
		mapped[i] = pred
	}
	return mapped
}

/* MapSegmentationCounts collapses pixel counts onto grouper labels.
 * Counts of labels sharing a grouper are summed. */
func (lm LabelMap) MapSegmentationCounts(counts []db.SegmentationCounts) []db.SegmentationCounts {
	if lm == nil {
		return counts
	}
	merged := make(map[[2]string]db.SegmentationCounts, len(counts))
	order := make([][2]string, 0, len(counts))
	for _, c := range counts {
		key, value := lm.Grouper(c.Key, c.Value)
		grouper := [2]string{key, value}
		acc, seen := merged[grouper]
		if !seen {
			acc = db.SegmentationCounts{Key: key, Value: value}
			order = append(order, grouper)
		}
		acc.Intersection += c.Intersection
		acc.GroundTruthCount += c.GroundTruthCount
		acc.PredictionCount += c.PredictionCount
		merged[grouper] = acc
	}
	result := make([]db.SegmentationCounts, 0, len(order))
	for _, grouper := range order {
		result = append(result, merged[grouper])
	}
	return result
}
