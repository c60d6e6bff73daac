/*-------------------------------------------------------------------------
 *
 * fingerprint_test.go
 *    Tests for request fingerprinting
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/evaluation/fingerprint_test.go
 *
 *-------------------------------------------------------------------------
 */

package evaluation

import (
	"testing"

	"github.com/verdictml/verdict/internal/filter"
)

func TestFingerprint_Deterministic(t *testing.T) {
	req := &Request{
		DatasetName: "coco",
		ModelNames:  []string{"resnet50", "vit-b"},
		TaskType:    TaskClassification,
		Parameters:  map[string]interface{}{"threshold": 0.5, "top_k": 3},
	}

	first, err := Fingerprint(req)
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Fingerprint(req)
		if err != nil {
			t.Fatalf("Fingerprint() error = %v", err)
		}
		if again != first {
			t.Fatalf("Fingerprint unstable: %s vs %s", first, again)
		}
	}
	if len(first) != 64 {
		t.Errorf("Expected hex sha256, got %q", first)
	}
}

func TestFingerprint_ModelOrderIndependent(t *testing.T) {
	a := &Request{DatasetName: "coco", ModelNames: []string{"a", "b", "c"}, TaskType: TaskClassification}
	b := &Request{DatasetName: "coco", ModelNames: []string{"c", "a", "b"}, TaskType: TaskClassification}

	hashA, err := Fingerprint(a)
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	hashB, err := Fingerprint(b)
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	if hashA != hashB {
		t.Errorf("Model order changed the fingerprint: %s vs %s", hashA, hashB)
	}
	if a.ModelNames[0] != "a" || b.ModelNames[0] != "c" {
		t.Error("Fingerprint must not mutate the request's model order")
	}
}

func TestFingerprint_SemanticDifferencesFork(t *testing.T) {
	base := func() *Request {
		return &Request{DatasetName: "coco", ModelNames: []string{"m"}, TaskType: TaskClassification}
	}
	baseHash, err := Fingerprint(base())
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}

	variants := map[string]*Request{
		"dataset":   {DatasetName: "imagenet", ModelNames: []string{"m"}, TaskType: TaskClassification},
		"models":    {DatasetName: "coco", ModelNames: []string{"m", "n"}, TaskType: TaskClassification},
		"task type": {DatasetName: "coco", ModelNames: []string{"m"}, TaskType: TaskSegmentation},
		"parameters": {DatasetName: "coco", ModelNames: []string{"m"}, TaskType: TaskClassification,
			Parameters: map[string]interface{}{"threshold": 0.5}},
		"filter": {DatasetName: "coco", ModelNames: []string{"m"}, TaskType: TaskClassification,
			Filter: &filter.Expr{
				Op:  filter.OpEq,
				Sym: &filter.Symbol{Name: "label.key", Dtype: filter.DtypeString},
				Val: &filter.Value{Type: filter.DtypeString, Value: "animal"},
			}},
	}

	for name, req := range variants {
		hash, err := Fingerprint(req)
		if err != nil {
			t.Fatalf("Fingerprint(%s) error = %v", name, err)
		}
		if hash == baseHash {
			t.Errorf("Changing %s did not change the fingerprint", name)
		}
	}
}

func TestFingerprint_MetadataIgnored(t *testing.T) {
	plain := &Request{DatasetName: "coco", ModelNames: []string{"m"}, TaskType: TaskClassification}
	tagged := &Request{DatasetName: "coco", ModelNames: []string{"m"}, TaskType: TaskClassification,
		Metadata: map[string]interface{}{"requested_by": "nightly-run"}}

	hashA, err := Fingerprint(plain)
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	hashB, err := Fingerprint(tagged)
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	if hashA != hashB {
		t.Errorf("Metadata changed the fingerprint: %s vs %s", hashA, hashB)
	}
}
