/*-------------------------------------------------------------------------
 *
 * manager.go
 *    Evaluation lifecycle manager
 *
 * Owns the evaluation state machine: create-or-get by fingerprint, then
 * pending -> running -> done/failed. All transitions delegate to guarded
 * store updates, so the manager stays correct under concurrent callers
 * and multiple server processes.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <admin@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/evaluation/manager.go
 *
 *-------------------------------------------------------------------------
 */

package evaluation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/verdictml/verdict/internal/db"
	"github.com/verdictml/verdict/internal/filter"
	"github.com/verdictml/verdict/internal/metrics"
)

/* Store is the persistence surface the manager requires. Implemented by
 * db.Queries; tests substitute an in-memory store. */
type Store interface {
	CreateOrGetEvaluation(ctx context.Context, eval *db.Evaluation) (bool, error)
	GetEvaluation(ctx context.Context, id uuid.UUID) (*db.Evaluation, error)
	StartEvaluation(ctx context.Context, eval *db.Evaluation) (bool, error)
	ClaimEvaluation(ctx context.Context) (*db.Evaluation, error)
	CompleteEvaluation(ctx context.Context, eval *db.Evaluation, metrics db.JSONBMap) (bool, error)
	FailEvaluation(ctx context.Context, eval *db.Evaluation, message string) (bool, error)
	ListEvaluations(ctx context.Context, datasetName, modelName, status *string, limit, offset int) ([]db.Evaluation, error)
}

/* Manager coordinates evaluation lifecycle transitions */
type Manager struct {
	store Store
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

/* ValidateRequest checks a request before it reaches storage. Filter
 * validation runs the full leaf compilation so every taxonomy error
 * surfaces at submission time, not at worker time. */
func ValidateRequest(req *Request) error {
	if req.DatasetName == "" {
		return fmt.Errorf("evaluation request missing dataset name")
	}
	if len(req.ModelNames) == 0 {
		return fmt.Errorf("evaluation request missing model names")
	}
	for _, name := range req.ModelNames {
		if name == "" {
			return fmt.Errorf("evaluation request contains empty model name")
		}
	}
	switch req.TaskType {
	case TaskClassification, TaskSegmentation, TaskDetection:
	default:
		return fmt.Errorf("unsupported task type '%s'", req.TaskType)
	}
	if err := validateParameters(req.TaskType, db.JSONBMap(req.Parameters)); err != nil {
		return err
	}
	if req.Filter != nil {
		if _, _, err := filter.Linearize(req.Filter); err != nil {
			return fmt.Errorf("invalid filter: %w", err)
		}
	}
	return nil
}

/* validateParameters checks the task-specific parameter surface. IOU
 * thresholds only mean something for detection; other tasks reject them
 * rather than silently ignoring them. */
func validateParameters(taskType string, params db.JSONBMap) error {
	if _, err := ParseLabelMap(params); err != nil {
		return err
	}

	thresholds, err := ParseIOUThresholds(params)
	if err != nil {
		return err
	}
	if len(thresholds) > 0 && taskType != TaskDetection {
		return fmt.Errorf("iou_thresholds are only valid for task type '%s'", TaskDetection)
	}
	return nil
}

/* CreateOrGet creates an evaluation for the request or returns the
 * existing one with the same fingerprint. The second return value
 * reports whether a new evaluation was created. */
func (m *Manager) CreateOrGet(ctx context.Context, req *Request) (*db.Evaluation, bool, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, false, err
	}

	fingerprint, err := Fingerprint(req)
	if err != nil {
		return nil, false, err
	}

	filters := db.JSONBMap{}
	if req.Filter != nil {
		canonical, err := filter.Canonical(req.Filter)
		if err != nil {
			return nil, false, err
		}
		if err := json.Unmarshal(canonical, (*map[string]interface{})(&filters)); err != nil {
			return nil, false, fmt.Errorf("failed to store filter: %w", err)
		}
	}

	eval := &db.Evaluation{
		Fingerprint: fingerprint,
		DatasetName: req.DatasetName,
		ModelNames:  req.ModelNames,
		TaskType:    req.TaskType,
		Filters:     filters,
		Parameters:  db.JSONBMap(req.Parameters),
		Metadata:    db.JSONBMap(req.Metadata),
	}

	created, err := m.store.CreateOrGetEvaluation(ctx, eval)
	if err != nil {
		return nil, false, err
	}
	if created {
		metrics.RecordEvaluationTransition(db.EvaluationPending)
		metrics.InfoWithContext(ctx, "Evaluation created", map[string]interface{}{
			"evaluation_id": eval.ID.String(),
			"dataset":       eval.DatasetName,
			"task_type":     eval.TaskType,
		})
	} else {
		metrics.RecordEvaluationDeduplicated()
		metrics.DefaultRuntimeStats.RecordDeduplication(eval.DatasetName)
		metrics.DebugWithContext(ctx, "Evaluation request deduplicated", map[string]interface{}{
			"evaluation_id": eval.ID.String(),
			"fingerprint":   fingerprint,
			"status":        eval.Status,
		})
	}
	return eval, created, nil
}

/* Get fetches an evaluation by id */
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*db.Evaluation, error) {
	return m.store.GetEvaluation(ctx, id)
}

/* List fetches evaluations matching the optional filters */
func (m *Manager) List(ctx context.Context, datasetName, modelName, status *string, limit, offset int) ([]db.Evaluation, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return m.store.ListEvaluations(ctx, datasetName, modelName, status, limit, offset)
}

/* Start moves an evaluation from pending to running. Returns false when
 * the evaluation was not pending; exactly one concurrent caller wins. */
func (m *Manager) Start(ctx context.Context, id uuid.UUID) (*db.Evaluation, bool, error) {
	eval, err := m.store.GetEvaluation(ctx, id)
	if err != nil {
		return nil, false, err
	}
	started, err := m.store.StartEvaluation(ctx, eval)
	if err != nil {
		return nil, false, err
	}
	if started {
		metrics.RecordEvaluationTransition(db.EvaluationRunning)
	}
	return eval, started, nil
}

/* Claim atomically claims the oldest pending evaluation for a worker.
 * Returns nil when the queue is empty. */
func (m *Manager) Claim(ctx context.Context) (*db.Evaluation, error) {
	eval, err := m.store.ClaimEvaluation(ctx)
	if err != nil {
		metrics.RecordWorkerClaim("error")
		return nil, err
	}
	if eval == nil {
		metrics.RecordWorkerClaim("empty")
		return nil, nil
	}
	metrics.RecordWorkerClaim("claimed")
	metrics.RecordEvaluationTransition(db.EvaluationRunning)
	return eval, nil
}

/* Complete moves an evaluation from running to done with its metrics.
 * Returns false when the evaluation was not running. */
func (m *Manager) Complete(ctx context.Context, id uuid.UUID, results db.JSONBMap) (bool, error) {
	eval, err := m.store.GetEvaluation(ctx, id)
	if err != nil {
		return false, err
	}
	completed, err := m.store.CompleteEvaluation(ctx, eval, results)
	if err != nil {
		return false, err
	}
	if completed {
		metrics.RecordEvaluationTransition(db.EvaluationDone)
	}
	return completed, nil
}

/* Fail moves an evaluation from running to failed with an error message.
 * Returns false when the evaluation was not running. */
func (m *Manager) Fail(ctx context.Context, id uuid.UUID, message string) (bool, error) {
	eval, err := m.store.GetEvaluation(ctx, id)
	if err != nil {
		return false, err
	}
	failed, err := m.store.FailEvaluation(ctx, eval, message)
	if err != nil {
		return false, err
	}
	if failed {
		metrics.RecordEvaluationTransition(db.EvaluationFailed)
	}
	return failed, nil
}
