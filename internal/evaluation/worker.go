/*-------------------------------------------------------------------------
 *
 * worker.go
 *    Background evaluation worker
 *
 * Provides a worker pool that claims pending evaluations from the queue
 * with configurable concurrency and graceful shutdown support. Claiming
 * is a guarded update, so pool members and other server processes never
 * run the same evaluation twice.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/evaluation/worker.go
 *
 *-------------------------------------------------------------------------
 */

package evaluation

import (
	"context"
	"sync"
	"time"

	"github.com/verdictml/verdict/internal/db"
	"github.com/verdictml/verdict/internal/metrics"
)

type Worker struct {
	manager      *Manager
	computer     *Computer
	workers      int
	pollInterval time.Duration
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

func NewWorker(manager *Manager, computer *Computer, workers int, pollInterval time.Duration) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	if workers <= 0 {
		workers = 1
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Worker{
		manager:      manager,
		computer:     computer,
		workers:      workers,
		pollInterval: pollInterval,
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (w *Worker) Start() {
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.work()
	}
}

func (w *Worker) work() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			eval, err := w.manager.Claim(w.ctx)
			metrics.DefaultRuntimeStats.RecordClaimAttempt(err == nil && eval != nil)
			if err != nil || eval == nil {
				continue
			}
			w.process(eval)
		}
	}
}

func (w *Worker) process(eval *db.Evaluation) {
	ctx := metrics.WithEvaluationIDLogContext(w.ctx, eval.ID)
	ctx = metrics.WithDatasetLogContext(ctx, eval.DatasetName)

	start := time.Now()
	results, err := w.computer.Compute(ctx, eval)
	metrics.DefaultRuntimeStats.RecordEvaluationRun(eval.DatasetName, err == nil, time.Since(start))
	if err != nil {
		metrics.ErrorWithContext(ctx, "Evaluation failed", err, map[string]interface{}{
			"task_type": eval.TaskType,
		})
		if _, failErr := w.manager.Fail(ctx, eval.ID, err.Error()); failErr != nil {
			metrics.ErrorWithContext(ctx, "Failed to record evaluation failure", failErr, nil)
		}
		return
	}

	if _, err := w.manager.Complete(ctx, eval.ID, results); err != nil {
		metrics.ErrorWithContext(ctx, "Failed to record evaluation completion", err, nil)
	}
}

func (w *Worker) Stop() {
	w.cancel()
	w.wg.Wait()
}
