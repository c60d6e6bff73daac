/*-------------------------------------------------------------------------
 *
 * labelmap_test.go
 *    Tests for label equivalence mapping
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/evaluation/labelmap_test.go
 *
 *-------------------------------------------------------------------------
 */

package evaluation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/verdictml/verdict/internal/db"
)

func labelMapParams(entries ...[]interface{}) db.JSONBMap {
	raw := make([]interface{}, len(entries))
	for i, entry := range entries {
		raw[i] = entry
	}
	return db.JSONBMap{"label_map": raw}
}

func pair(fromKey, fromValue, toKey, toValue string) []interface{} {
	return []interface{}{
		[]interface{}{fromKey, fromValue},
		[]interface{}{toKey, toValue},
	}
}

func TestParseLabelMap_Valid(t *testing.T) {
	params := labelMapParams(
		pair("class_name", "maine coon cat", "class", "cat"),
		pair("class", "siamese cat", "class", "cat"),
	)

	lm, err := ParseLabelMap(params)
	if err != nil {
		t.Fatalf("ParseLabelMap failed: %v", err)
	}

	key, value := lm.Grouper("class_name", "maine coon cat")
	if key != "class" || value != "cat" {
		t.Errorf("Expected (class, cat), got (%s, %s)", key, value)
	}
	key, value = lm.Grouper("class", "dog")
	if key != "class" || value != "dog" {
		t.Errorf("Unmapped label should pass through, got (%s, %s)", key, value)
	}
}

func TestParseLabelMap_Absent(t *testing.T) {
	lm, err := ParseLabelMap(db.JSONBMap{})
	if err != nil {
		t.Fatalf("ParseLabelMap failed: %v", err)
	}
	if lm != nil {
		t.Errorf("Expected nil map for absent parameter")
	}
	key, value := lm.Grouper("animal", "cat")
	if key != "animal" || value != "cat" {
		t.Errorf("Nil map should be identity, got (%s, %s)", key, value)
	}
}

func TestParseLabelMap_Malformed(t *testing.T) {
	cases := map[string]db.JSONBMap{
		"not a list":     {"label_map": "cat"},
		"entry not pair": {"label_map": []interface{}{[]interface{}{"only one"}}},
		"label not pair": {"label_map": []interface{}{[]interface{}{
			[]interface{}{"class"},
			[]interface{}{"class", "cat"},
		}}},
		"non-string label": {"label_map": []interface{}{[]interface{}{
			[]interface{}{"class", 7.0},
			[]interface{}{"class", "cat"},
		}}},
	}
	for name, params := range cases {
		if _, err := ParseLabelMap(params); err == nil {
			t.Errorf("Expected error for %s", name)
		}
	}
}

func TestParseLabelMap_ConflictingGroupers(t *testing.T) {
	params := labelMapParams(
		pair("class", "siamese cat", "class", "cat"),
		pair("class", "siamese cat", "class", "dog"),
	)
	if _, err := ParseLabelMap(params); err == nil {
		t.Fatalf("Expected error for conflicting grouper mapping")
	}
}

func TestLabelMap_MapLabels(t *testing.T) {
	lm, err := ParseLabelMap(labelMapParams(
		pair("breed", "maine coon", "animal", "cat"),
		pair("breed", "siamese", "animal", "cat"),
	))
	if err != nil {
		t.Fatalf("ParseLabelMap failed: %v", err)
	}

	d := uuid.New()
	gts := lm.MapGroundTruths([]db.GroundTruthLabel{
		{DatumID: d, Key: "breed", Value: "maine coon"},
		{DatumID: d, Key: "animal", Value: "dog"},
	})
	if gts[0].Key != "animal" || gts[0].Value != "cat" {
		t.Errorf("Ground truth not remapped: %+v", gts[0])
	}
	if gts[1].Key != "animal" || gts[1].Value != "dog" {
		t.Errorf("Unmapped ground truth changed: %+v", gts[1])
	}

	preds := lm.MapPredictions([]db.PredictionLabel{
		{DatumID: d, Key: "breed", Value: "siamese", Score: 0.9},
	})
	if preds[0].Key != "animal" || preds[0].Value != "cat" || preds[0].Score != 0.9 {
		t.Errorf("Prediction not remapped: %+v", preds[0])
	}
}

func TestLabelMap_MapSegmentationCounts(t *testing.T) {
	lm, err := ParseLabelMap(labelMapParams(
		pair("class", "sedan", "class", "car"),
		pair("class", "coupe", "class", "car"),
	))
	if err != nil {
		t.Fatalf("ParseLabelMap failed: %v", err)
	}

	merged := lm.MapSegmentationCounts([]db.SegmentationCounts{
		{Key: "class", Value: "sedan", Intersection: 10, GroundTruthCount: 20, PredictionCount: 30},
		{Key: "class", Value: "coupe", Intersection: 5, GroundTruthCount: 10, PredictionCount: 15},
		{Key: "class", Value: "road", Intersection: 1, GroundTruthCount: 2, PredictionCount: 3},
	})

	if len(merged) != 2 {
		t.Fatalf("Expected 2 grouper rows, got %d", len(merged))
	}
	car := merged[0]
	if car.Key != "class" || car.Value != "car" {
		t.Fatalf("Unexpected first grouper: %+v", car)
	}
	if car.Intersection != 15 || car.GroundTruthCount != 30 || car.PredictionCount != 45 {
		t.Errorf("Counts not summed: %+v", car)
	}
	if merged[1].Value != "road" || merged[1].Intersection != 1 {
		t.Errorf("Unmapped counts changed: %+v", merged[1])
	}
}
