/*-------------------------------------------------------------------------
 *
 * compute.go
 *    Metric computation for evaluations
 *
 * Pure metric math over fetched label pairings: classification accuracy,
 * per-label precision/recall/F1 with confusion matrices, and semantic
 * segmentation IOU from raster pixel counts. Kept free of storage so the
 * math is testable in isolation.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/evaluation/compute.go
 *
 *-------------------------------------------------------------------------
 */

package evaluation

import (
	"sort"

	"github.com/google/uuid"
	"github.com/verdictml/verdict/internal/db"
)

/* LabelMetrics holds per-label classification scores */
type LabelMetrics struct {
	Key       string  `json:"key"`
	Value     string  `json:"value"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

/* LabelIOU holds one label's segmentation IOU */
type LabelIOU struct {
	Key   string  `json:"key"`
	Value string  `json:"value"`
	IOU   float64 `json:"iou"`
}

type datumKey struct {
	datum uuid.UUID
	key   string
}

/* ComputeClassification scores a model's predictions against ground
 * truth. For each datum and label key the highest-scoring prediction is
 * compared to the ground-truth value. Undefined ratios score zero. */
func ComputeClassification(gts []db.GroundTruthLabel, preds []db.PredictionLabel) db.JSONBMap {
	truth := make(map[datumKey]string, len(gts))
	for _, gt := range gts {
		truth[datumKey{gt.DatumID, gt.Key}] = gt.Value
	}

	/* Argmax over prediction scores per datum and key */
	best := make(map[datumKey]db.PredictionLabel, len(preds))
	for _, pred := range preds {
		k := datumKey{pred.DatumID, pred.Key}
		if current, ok := best[k]; !ok || pred.Score > current.Score {
			best[k] = pred
		}
	}

	type confusionCell struct{ key, gt, pred string }
	confusion := make(map[confusionCell]int)
	totals := make(map[string]int)
	correct := make(map[string]int)
	labelSet := make(map[[2]string]bool)

	for k, gtValue := range truth {
		pred, ok := best[k]
		if !ok {
			continue
		}
		totals[k.key]++
		if pred.Value == gtValue {
			correct[k.key]++
		}
		confusion[confusionCell{k.key, gtValue, pred.Value}]++
		labelSet[[2]string{k.key, gtValue}] = true
		labelSet[[2]string{k.key, pred.Value}] = true
	}

	accuracy := make(map[string]interface{}, len(totals))
	for key, total := range totals {
		accuracy[key] = float64(correct[key]) / float64(total)
	}

	matrices := make(map[string]interface{})
	for cell, count := range confusion {
		byKey, ok := matrices[cell.key].(map[string]interface{})
		if !ok {
			byKey = make(map[string]interface{})
			matrices[cell.key] = byKey
		}
		byGT, ok := byKey[cell.gt].(map[string]interface{})
		if !ok {
			byGT = make(map[string]interface{})
			byKey[cell.gt] = byGT
		}
		byGT[cell.pred] = count
	}

	labels := make([][2]string, 0, len(labelSet))
	for label := range labelSet {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if labels[i][0] != labels[j][0] {
			return labels[i][0] < labels[j][0]
		}
		return labels[i][1] < labels[j][1]
	})

	labelMetrics := make([]interface{}, 0, len(labels))
	for _, label := range labels {
		key, value := label[0], label[1]
		tp := confusion[confusionCell{key, value, value}]
		fp, fn := 0, 0
		for cell, count := range confusion {
			if cell.key != key {
				continue
			}
			if cell.pred == value && cell.gt != value {
				fp += count
			}
			if cell.gt == value && cell.pred != value {
				fn += count
			}
		}
		precision := safeRatio(tp, tp+fp)
		recall := safeRatio(tp, tp+fn)
		f1 := 0.0
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		labelMetrics = append(labelMetrics, map[string]interface{}{
			"key":       key,
			"value":     value,
			"precision": precision,
			"recall":    recall,
			"f1":        f1,
		})
	}

	return db.JSONBMap{
		"accuracy":           accuracy,
		"confusion_matrices": matrices,
		"labels":             labelMetrics,
	}
}

/* ComputeSegmentation turns per-label pixel counts into IOU scores.
 * union = gt + pred - intersection; labels with an empty union score
 * zero rather than dividing by it. */
func ComputeSegmentation(counts []db.SegmentationCounts) db.JSONBMap {
	sorted := make([]db.SegmentationCounts, len(counts))
	copy(sorted, counts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Key != sorted[j].Key {
			return sorted[i].Key < sorted[j].Key
		}
		return sorted[i].Value < sorted[j].Value
	})

	ious := make([]interface{}, 0, len(sorted))
	var sum float64
	for _, c := range sorted {
		union := c.GroundTruthCount + c.PredictionCount - c.Intersection
		iou := 0.0
		if union > 0 {
			iou = float64(c.Intersection) / float64(union)
		}
		sum += iou
		ious = append(ious, map[string]interface{}{
			"key":   c.Key,
			"value": c.Value,
			"iou":   iou,
		})
	}

	meanIOU := 0.0
	if len(sorted) > 0 {
		meanIOU = sum / float64(len(sorted))
	}

	return db.JSONBMap{
		"iou":      ious,
		"mean_iou": meanIOU,
	}
}

func safeRatio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
