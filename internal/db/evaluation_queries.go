/*-------------------------------------------------------------------------
 *
 * evaluation_queries.go
 *    Database queries for the evaluation lifecycle
 *
 * Provides creation with fingerprint deduplication plus the guarded
 * status transitions. All transitions are compare-and-set updates so
 * concurrent workers cannot move a row out of order; a transition whose
 * guard fails simply affects zero rows.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <admin@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/db/evaluation_queries.go
 *
 *-------------------------------------------------------------------------
 */

package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

/* Evaluation lifecycle states */
const (
	EvaluationPending = "pending"
	EvaluationRunning = "running"
	EvaluationDone    = "done"
	EvaluationFailed  = "failed"
)

const (
	insertEvaluationQuery = `
		INSERT INTO verdict.evaluations
		(fingerprint, dataset_name, model_names, task_type, filters, parameters, metadata, status)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb, $7::jsonb, 'pending')
		ON CONFLICT (fingerprint) DO NOTHING
		RETURNING id, status, created_at, updated_at`

	getEvaluationByFingerprintQuery = `SELECT * FROM verdict.evaluations WHERE fingerprint = $1`

	getEvaluationByIDQuery = `SELECT * FROM verdict.evaluations WHERE id = $1`

	startEvaluationQuery = `
		UPDATE verdict.evaluations
		SET status = 'running', started_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING id, status, started_at, updated_at`

	claimEvaluationQuery = `
		UPDATE verdict.evaluations
		SET status = 'running', started_at = NOW(), updated_at = NOW()
		WHERE id = (
			SELECT id FROM verdict.evaluations
			WHERE status = 'pending'
			ORDER BY created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, fingerprint, dataset_name, model_names, task_type,
		          filters, parameters, metadata, status, metrics, error_message,
		          created_at, updated_at, started_at, completed_at`

	completeEvaluationQuery = `
		UPDATE verdict.evaluations
		SET status = 'done', metrics = $2::jsonb, completed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'running'
		RETURNING id, status, completed_at, updated_at`

	failEvaluationQuery = `
		UPDATE verdict.evaluations
		SET status = 'failed', error_message = $2, completed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'running'
		RETURNING id, status, completed_at, updated_at`

	listEvaluationsQuery = `
		SELECT * FROM verdict.evaluations
		WHERE ($1::text IS NULL OR dataset_name = $1)
		AND ($2::text IS NULL OR $2 = ANY(model_names))
		AND ($3::text IS NULL OR status = $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5`
)

/* CreateOrGetEvaluation inserts an evaluation keyed by fingerprint, or
 * returns the existing row when one already carries that fingerprint.
 * The second return value reports whether a new row was created. The
 * conditional insert never overwrites: a done evaluation stays done. */
func (q *Queries) CreateOrGetEvaluation(ctx context.Context, eval *Evaluation) (bool, error) {
	params := []interface{}{eval.Fingerprint, eval.DatasetName, eval.ModelNames,
		eval.TaskType, eval.Filters, eval.Parameters, eval.Metadata}
	err := q.DB.GetContext(ctx, eval, insertEvaluationQuery, params...)
	if err == nil {
		return true, nil
	}
	if err != sql.ErrNoRows {
		return false, q.formatQueryError("INSERT", insertEvaluationQuery, len(params), "verdict.evaluations", err)
	}

	/* Conflict: another request already owns this fingerprint */
	existing, err := q.GetEvaluationByFingerprint(ctx, eval.Fingerprint)
	if err != nil {
		return false, err
	}
	*eval = *existing
	return false, nil
}

func (q *Queries) GetEvaluationByFingerprint(ctx context.Context, fingerprint string) (*Evaluation, error) {
	var eval Evaluation
	err := q.DB.GetContext(ctx, &eval, getEvaluationByFingerprintQuery, fingerprint)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("evaluation not found on %s: query='%s', fingerprint='%s', table='verdict.evaluations', error=%w",
			q.getConnInfoString(), getEvaluationByFingerprintQuery, fingerprint, err)
	}
	if err != nil {
		return nil, q.formatQueryError("SELECT", getEvaluationByFingerprintQuery, 1, "verdict.evaluations", err)
	}
	return &eval, nil
}

func (q *Queries) GetEvaluation(ctx context.Context, id uuid.UUID) (*Evaluation, error) {
	var eval Evaluation
	err := q.DB.GetContext(ctx, &eval, getEvaluationByIDQuery, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("evaluation not found on %s: query='%s', evaluation_id='%s', table='verdict.evaluations', error=%w",
			q.getConnInfoString(), getEvaluationByIDQuery, id.String(), err)
	}
	if err != nil {
		return nil, q.formatQueryError("SELECT", getEvaluationByIDQuery, 1, "verdict.evaluations", err)
	}
	return &eval, nil
}

/* StartEvaluation moves pending to running. Returns false without error
 * when the row was not pending, which callers treat as losing the race. */
func (q *Queries) StartEvaluation(ctx context.Context, eval *Evaluation) (bool, error) {
	err := q.DB.GetContext(ctx, eval, startEvaluationQuery, eval.ID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, q.formatQueryError("UPDATE", startEvaluationQuery, 1, "verdict.evaluations", err)
	}
	return true, nil
}

/* ClaimEvaluation atomically claims the oldest pending evaluation for a
 * worker. Returns nil with no error when the queue is empty. */
func (q *Queries) ClaimEvaluation(ctx context.Context) (*Evaluation, error) {
	var eval Evaluation
	err := q.DB.GetContext(ctx, &eval, claimEvaluationQuery)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, q.formatQueryError("UPDATE", claimEvaluationQuery, 0, "verdict.evaluations", err)
	}
	return &eval, nil
}

/* CompleteEvaluation moves running to done, recording the metrics.
 * Returns false when the row was not running. */
func (q *Queries) CompleteEvaluation(ctx context.Context, eval *Evaluation, metrics JSONBMap) (bool, error) {
	metricsValue, err := metrics.Value()
	if err != nil {
		return false, fmt.Errorf("failed to convert metrics: %w", err)
	}
	err = q.DB.GetContext(ctx, eval, completeEvaluationQuery, eval.ID, metricsValue)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, q.formatQueryError("UPDATE", completeEvaluationQuery, 2, "verdict.evaluations", err)
	}
	eval.Metrics = metrics
	return true, nil
}

/* FailEvaluation moves running to failed, recording the error message.
 * Returns false when the row was not running. */
func (q *Queries) FailEvaluation(ctx context.Context, eval *Evaluation, message string) (bool, error) {
	err := q.DB.GetContext(ctx, eval, failEvaluationQuery, eval.ID, message)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, q.formatQueryError("UPDATE", failEvaluationQuery, 2, "verdict.evaluations", err)
	}
	eval.ErrorMessage = &message
	return true, nil
}

func (q *Queries) ListEvaluations(ctx context.Context, datasetName, modelName, status *string, limit, offset int) ([]Evaluation, error) {
	var evals []Evaluation
	err := q.DB.SelectContext(ctx, &evals, listEvaluationsQuery, datasetName, modelName, status, limit, offset)
	if err != nil {
		return nil, q.formatQueryError("SELECT", listEvaluationsQuery, 5, "verdict.evaluations", err)
	}
	return evals, nil
}
