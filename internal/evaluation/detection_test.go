/*-------------------------------------------------------------------------
 *
 * detection_test.go
 *    Tests for detection parameters and per-label counts
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/evaluation/detection_test.go
 *
 *-------------------------------------------------------------------------
 */

package evaluation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/verdictml/verdict/internal/db"
)

func TestParseIOUThresholds_Valid(t *testing.T) {
	params := db.JSONBMap{"iou_thresholds": []interface{}{0.75, 0.5}}
	thresholds, err := ParseIOUThresholds(params)
	if err != nil {
		t.Fatalf("ParseIOUThresholds failed: %v", err)
	}
	if len(thresholds) != 2 || thresholds[0] != 0.5 || thresholds[1] != 0.75 {
		t.Errorf("Expected sorted [0.5 0.75], got %v", thresholds)
	}
}

func TestParseIOUThresholds_Invalid(t *testing.T) {
	cases := map[string]db.JSONBMap{
		"not a list": {"iou_thresholds": 0.5},
		"non-number": {"iou_thresholds": []interface{}{"0.5"}},
		"zero":       {"iou_thresholds": []interface{}{0.0}},
		"above one":  {"iou_thresholds": []interface{}{1.5}},
	}
	for name, params := range cases {
		if _, err := ParseIOUThresholds(params); err == nil {
			t.Errorf("Expected error for %s", name)
		}
	}
}

func TestValidateRequest_ThresholdsOnlyForDetection(t *testing.T) {
	params := map[string]interface{}{"iou_thresholds": []interface{}{0.5}}

	bad := &Request{
		DatasetName: "coco", ModelNames: []string{"m"},
		TaskType: TaskClassification, Parameters: params,
	}
	if err := ValidateRequest(bad); err == nil {
		t.Errorf("Expected classification with thresholds to be rejected")
	}

	good := &Request{
		DatasetName: "coco", ModelNames: []string{"m"},
		TaskType: TaskDetection, Parameters: params,
	}
	if err := ValidateRequest(good); err != nil {
		t.Errorf("Expected detection with thresholds to pass, got %v", err)
	}
}

func TestComputeDetectionCounts(t *testing.T) {
	d1, d2 := uuid.New(), uuid.New()

	gts := []db.GroundTruthLabel{
		{DatumID: d1, Key: "class", Value: "car"},
		{DatumID: d1, Key: "class", Value: "car"},
		{DatumID: d2, Key: "class", Value: "person"},
	}
	preds := []db.PredictionLabel{
		{DatumID: d1, Key: "class", Value: "car", Score: 0.9},
		{DatumID: d2, Key: "class", Value: "bicycle", Score: 0.4},
	}

	result := ComputeDetectionCounts(gts, preds, []float64{0.5, 0.75})

	counts := result["label_counts"].([]interface{})
	if len(counts) != 3 {
		t.Fatalf("Expected 3 labels, got %d", len(counts))
	}

	first := counts[0].(map[string]interface{})
	if first["value"] != "bicycle" || first["ground_truths"].(int) != 0 || first["predictions"].(int) != 1 {
		t.Errorf("Unexpected bicycle counts: %v", first)
	}
	second := counts[1].(map[string]interface{})
	if second["value"] != "car" || second["ground_truths"].(int) != 2 || second["predictions"].(int) != 1 {
		t.Errorf("Unexpected car counts: %v", second)
	}
	third := counts[2].(map[string]interface{})
	if third["value"] != "person" || third["ground_truths"].(int) != 1 || third["predictions"].(int) != 0 {
		t.Errorf("Unexpected person counts: %v", third)
	}

	thresholds := result["iou_thresholds"].([]interface{})
	if len(thresholds) != 2 || thresholds[0].(float64) != 0.5 {
		t.Errorf("Unexpected thresholds: %v", thresholds)
	}
}
