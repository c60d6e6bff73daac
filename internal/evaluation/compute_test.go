/*-------------------------------------------------------------------------
 *
 * compute_test.go
 *    Tests for classification and segmentation metric computation
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/evaluation/compute_test.go
 *
 *-------------------------------------------------------------------------
 */

package evaluation

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/verdictml/verdict/internal/db"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeClassification_AccuracyAndConfusion(t *testing.T) {
	d1, d2, d3 := uuid.New(), uuid.New(), uuid.New()

	gts := []db.GroundTruthLabel{
		{DatumID: d1, Key: "animal", Value: "cat"},
		{DatumID: d2, Key: "animal", Value: "cat"},
		{DatumID: d3, Key: "animal", Value: "dog"},
	}
	preds := []db.PredictionLabel{
		{DatumID: d1, Key: "animal", Value: "cat", Score: 0.9},
		{DatumID: d2, Key: "animal", Value: "dog", Score: 0.8},
		{DatumID: d3, Key: "animal", Value: "dog", Score: 0.7},
	}

	result := ComputeClassification(gts, preds)

	accuracy := result["accuracy"].(map[string]interface{})
	if !almostEqual(accuracy["animal"].(float64), 2.0/3.0) {
		t.Errorf("Expected accuracy 2/3, got %v", accuracy["animal"])
	}

	matrices := result["confusion_matrices"].(map[string]interface{})
	animal := matrices["animal"].(map[string]interface{})
	catRow := animal["cat"].(map[string]interface{})
	if catRow["cat"].(int) != 1 || catRow["dog"].(int) != 1 {
		t.Errorf("Unexpected cat row: %v", catRow)
	}
	dogRow := animal["dog"].(map[string]interface{})
	if dogRow["dog"].(int) != 1 {
		t.Errorf("Unexpected dog row: %v", dogRow)
	}
}

func TestComputeClassification_PrecisionRecallF1(t *testing.T) {
	d1, d2, d3 := uuid.New(), uuid.New(), uuid.New()

	gts := []db.GroundTruthLabel{
		{DatumID: d1, Key: "animal", Value: "cat"},
		{DatumID: d2, Key: "animal", Value: "cat"},
		{DatumID: d3, Key: "animal", Value: "dog"},
	}
	preds := []db.PredictionLabel{
		{DatumID: d1, Key: "animal", Value: "cat", Score: 0.9},
		{DatumID: d2, Key: "animal", Value: "dog", Score: 0.8},
		{DatumID: d3, Key: "animal", Value: "dog", Score: 0.7},
	}

	result := ComputeClassification(gts, preds)
	labels := result["labels"].([]interface{})
	byLabel := make(map[string]map[string]interface{})
	for _, entry := range labels {
		m := entry.(map[string]interface{})
		byLabel[m["value"].(string)] = m
	}

	/* cat: tp=1 fp=0 fn=1 */
	cat := byLabel["cat"]
	if !almostEqual(cat["precision"].(float64), 1.0) {
		t.Errorf("Expected cat precision 1, got %v", cat["precision"])
	}
	if !almostEqual(cat["recall"].(float64), 0.5) {
		t.Errorf("Expected cat recall 0.5, got %v", cat["recall"])
	}
	if !almostEqual(cat["f1"].(float64), 2.0/3.0) {
		t.Errorf("Expected cat f1 2/3, got %v", cat["f1"])
	}

	/* dog: tp=1 fp=1 fn=0 */
	dog := byLabel["dog"]
	if !almostEqual(dog["precision"].(float64), 0.5) {
		t.Errorf("Expected dog precision 0.5, got %v", dog["precision"])
	}
	if !almostEqual(dog["recall"].(float64), 1.0) {
		t.Errorf("Expected dog recall 1, got %v", dog["recall"])
	}
}

func TestComputeClassification_ArgmaxPerDatum(t *testing.T) {
	d1 := uuid.New()

	gts := []db.GroundTruthLabel{{DatumID: d1, Key: "animal", Value: "cat"}}
	preds := []db.PredictionLabel{
		{DatumID: d1, Key: "animal", Value: "dog", Score: 0.3},
		{DatumID: d1, Key: "animal", Value: "cat", Score: 0.6},
		{DatumID: d1, Key: "animal", Value: "bird", Score: 0.1},
	}

	result := ComputeClassification(gts, preds)
	accuracy := result["accuracy"].(map[string]interface{})
	if !almostEqual(accuracy["animal"].(float64), 1.0) {
		t.Errorf("Expected the highest-scoring label to win, got accuracy %v", accuracy["animal"])
	}
}

func TestComputeClassification_UnpredictedDatumIgnored(t *testing.T) {
	d1, d2 := uuid.New(), uuid.New()

	gts := []db.GroundTruthLabel{
		{DatumID: d1, Key: "animal", Value: "cat"},
		{DatumID: d2, Key: "animal", Value: "dog"},
	}
	preds := []db.PredictionLabel{
		{DatumID: d1, Key: "animal", Value: "cat", Score: 0.9},
	}

	result := ComputeClassification(gts, preds)
	accuracy := result["accuracy"].(map[string]interface{})
	if !almostEqual(accuracy["animal"].(float64), 1.0) {
		t.Errorf("Datums without predictions should not count, got %v", accuracy["animal"])
	}
}

func TestComputeSegmentation_IOU(t *testing.T) {
	counts := []db.SegmentationCounts{
		{Key: "class", Value: "road", Intersection: 50, GroundTruthCount: 80, PredictionCount: 70},
		{Key: "class", Value: "sky", Intersection: 0, GroundTruthCount: 0, PredictionCount: 0},
	}

	result := ComputeSegmentation(counts)
	ious := result["iou"].([]interface{})
	if len(ious) != 2 {
		t.Fatalf("Expected 2 IOU entries, got %d", len(ious))
	}

	road := ious[0].(map[string]interface{})
	expected := 50.0 / 100.0
	if !almostEqual(road["iou"].(float64), expected) {
		t.Errorf("Expected road IOU %v, got %v", expected, road["iou"])
	}

	sky := ious[1].(map[string]interface{})
	if !almostEqual(sky["iou"].(float64), 0) {
		t.Errorf("Empty union should score zero, got %v", sky["iou"])
	}

	if !almostEqual(result["mean_iou"].(float64), expected/2) {
		t.Errorf("Expected mean IOU %v, got %v", expected/2, result["mean_iou"])
	}
}

func TestComputeSegmentation_Empty(t *testing.T) {
	result := ComputeSegmentation(nil)
	if !almostEqual(result["mean_iou"].(float64), 0) {
		t.Errorf("Expected zero mean IOU for empty input, got %v", result["mean_iou"])
	}
	if len(result["iou"].([]interface{})) != 0 {
		t.Errorf("Expected no IOU entries, got %v", result["iou"])
	}
}
