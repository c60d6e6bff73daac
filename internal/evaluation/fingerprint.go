/*-------------------------------------------------------------------------
 *
 * fingerprint.go
 *    Evaluation request fingerprinting
 *
 * Computes the content hash that deduplicates evaluation requests. Two
 * requests that differ only in model name order or parameter map order
 * hash identically; any semantic difference changes the hash.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <admin@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/evaluation/fingerprint.go
 *
 *-------------------------------------------------------------------------
 */

package evaluation

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/verdictml/verdict/internal/filter"
)

/* Task types supported by the evaluation computer */
const (
	TaskClassification = "classification"
	TaskSegmentation   = "semantic-segmentation"
	TaskDetection      = "object-detection"
)

/* Request describes one evaluation submission. Metadata is a
 * descriptive bag and never participates in the fingerprint. */
type Request struct {
	DatasetName string                 `json:"dataset_name"`
	ModelNames  []string               `json:"model_names"`
	TaskType    string                 `json:"task_type"`
	Filter      *filter.Expr           `json:"filter,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

/* Fingerprint hashes the canonical form of a request. Model names are
 * sorted and the filter serializes through its canonical encoder;
 * json.Marshal emits map keys sorted, which canonicalizes Parameters. */
func Fingerprint(req *Request) (string, error) {
	models := make([]string, len(req.ModelNames))
	copy(models, req.ModelNames)
	sort.Strings(models)

	var filterJSON json.RawMessage
	if req.Filter != nil {
		canonical, err := filter.Canonical(req.Filter)
		if err != nil {
			return "", fmt.Errorf("failed to canonicalize filter: %w", err)
		}
		filterJSON = canonical
	}

	canonical := struct {
		DatasetName string                 `json:"dataset_name"`
		ModelNames  []string               `json:"model_names"`
		TaskType    string                 `json:"task_type"`
		Filter      json.RawMessage        `json:"filter,omitempty"`
		Parameters  map[string]interface{} `json:"parameters,omitempty"`
	}{
		DatasetName: req.DatasetName,
		ModelNames:  models,
		TaskType:    req.TaskType,
		Filter:      filterJSON,
		Parameters:  req.Parameters,
	}

	data, err := json.Marshal(canonical)
	if err != nil {
		return "", fmt.Errorf("failed to serialize request: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
