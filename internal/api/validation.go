/*-------------------------------------------------------------------------
 *
 * validation.go
 *    Request validation utilities for Verdict API
 *
 * Provides validation functions for API requests including annotation
 * and evaluation payload checks.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/api/validation.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"fmt"
	"net/http"

	"github.com/verdictml/verdict/internal/evaluation"
	"github.com/verdictml/verdict/internal/validation"
)

/* ValidateCreateAnnotationRequest validates CreateAnnotationRequest */
func ValidateCreateAnnotationRequest(req *CreateAnnotationRequest) error {
	if err := validation.ValidateRequired(req.TaskType, "task_type"); err != nil {
		return err
	}
	switch req.TaskType {
	case evaluation.TaskClassification, evaluation.TaskSegmentation, evaluation.TaskDetection:
	default:
		return fmt.Errorf("task_type must be %q, %q, or %q",
			evaluation.TaskClassification, evaluation.TaskDetection, evaluation.TaskSegmentation)
	}

	if len(req.Labels) == 0 {
		return fmt.Errorf("labels must contain at least one label")
	}
	for i, label := range req.Labels {
		if err := validation.ValidateRequired(label.Key, fmt.Sprintf("labels[%d].key", i)); err != nil {
			return err
		}
		if err := validation.ValidateRequired(label.Value, fmt.Sprintf("labels[%d].value", i)); err != nil {
			return err
		}
		if req.ModelName != nil && (label.Score < 0 || label.Score > 1) {
			return fmt.Errorf("labels[%d].score must be between 0 and 1", i)
		}
	}

	/* Segmentation annotations carry rasters, detection carries box or
	 * polygon geometry, classification carries labels only. */
	if req.TaskType == evaluation.TaskSegmentation && len(req.Raster) == 0 {
		return fmt.Errorf("raster is required for %s annotations", evaluation.TaskSegmentation)
	}
	if req.TaskType == evaluation.TaskDetection && len(req.Box) == 0 && len(req.Polygon) == 0 {
		return fmt.Errorf("box or polygon is required for %s annotations", evaluation.TaskDetection)
	}

	if len(req.Embedding) > 16000 {
		return fmt.Errorf("embedding must not exceed 16000 dimensions")
	}

	return nil
}

/* ValidateCreateEvaluationRequest validates CreateEvaluationRequest */
func ValidateCreateEvaluationRequest(req *CreateEvaluationRequest) error {
	if err := validation.ValidateResourceName(req.DatasetName, "dataset_name"); err != nil {
		return err
	}

	if len(req.ModelNames) == 0 {
		return fmt.Errorf("model_names must contain at least one model")
	}
	if len(req.ModelNames) > 100 {
		return fmt.Errorf("model_names must not exceed 100 models")
	}
	seen := make(map[string]bool, len(req.ModelNames))
	for i, name := range req.ModelNames {
		if err := validation.ValidateResourceName(name, fmt.Sprintf("model_names[%d]", i)); err != nil {
			return err
		}
		if seen[name] {
			return fmt.Errorf("model_names contains duplicate %q", name)
		}
		seen[name] = true
	}

	if err := validation.ValidateRequired(req.TaskType, "task_type"); err != nil {
		return err
	}

	return nil
}

/* ValidateAndRespond validates a request and responds with error if invalid */
func ValidateAndRespond(w http.ResponseWriter, validator func() error) bool {
	if err := validator(); err != nil {
		respondError(w, NewError(http.StatusBadRequest, "validation failed", err))
		return false
	}
	return true
}
