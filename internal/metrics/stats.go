/*-------------------------------------------------------------------------
 *
 * stats.go
 *    In-memory runtime statistics for evaluation processing
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <admin@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/metrics/stats.go
 *
 *-------------------------------------------------------------------------
 */

package metrics

import (
	"sync"
	"time"
)

const computeTimeWindow = 100

/* RuntimeStats collects per-dataset evaluation statistics and worker
 * activity counters. Unlike the Prometheus collectors it keeps a
 * bounded window of recent compute times so the stats endpoint can
 * report averages without a scrape. */
type RuntimeStats struct {
	datasetStats map[string]*DatasetStats
	workerStats  WorkerStats
	mu           sync.RWMutex
}

/* DatasetStats tracks evaluation outcomes for one dataset */
type DatasetStats struct {
	DatasetName    string
	Completed      int64
	Failed         int64
	Deduplicated   int64
	AvgComputeTime time.Duration
	LastActivityAt time.Time
	computeTimes   []time.Duration
}

/* WorkerStats tracks claim loop activity */
type WorkerStats struct {
	ClaimAttempts int64
	EmptyClaims   int64
	Processed     int64
	Failures      int64
}

/* DefaultRuntimeStats is the process-wide collector */
var DefaultRuntimeStats = NewRuntimeStats()

func NewRuntimeStats() *RuntimeStats {
	return &RuntimeStats{
		datasetStats: make(map[string]*DatasetStats),
	}
}

func (rs *RuntimeStats) dataset(name string) *DatasetStats {
	stats, exists := rs.datasetStats[name]
	if !exists {
		stats = &DatasetStats{
			DatasetName:  name,
			computeTimes: make([]time.Duration, 0, computeTimeWindow),
		}
		rs.datasetStats[name] = stats
	}
	return stats
}

/* RecordEvaluationRun records a finished evaluation for a dataset */
func (rs *RuntimeStats) RecordEvaluationRun(datasetName string, success bool, duration time.Duration) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	stats := rs.dataset(datasetName)
	if success {
		stats.Completed++
	} else {
		stats.Failed++
	}
	stats.LastActivityAt = time.Now()

	if len(stats.computeTimes) >= computeTimeWindow {
		stats.computeTimes = stats.computeTimes[1:]
	}
	stats.computeTimes = append(stats.computeTimes, duration)

	var total time.Duration
	for _, d := range stats.computeTimes {
		total += d
	}
	stats.AvgComputeTime = total / time.Duration(len(stats.computeTimes))

	rs.workerStats.Processed++
	if !success {
		rs.workerStats.Failures++
	}
}

/* RecordDeduplication records a request answered by an existing evaluation */
func (rs *RuntimeStats) RecordDeduplication(datasetName string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	stats := rs.dataset(datasetName)
	stats.Deduplicated++
	stats.LastActivityAt = time.Now()
}

/* RecordClaimAttempt records one pass of the worker claim loop */
func (rs *RuntimeStats) RecordClaimAttempt(claimed bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.workerStats.ClaimAttempts++
	if !claimed {
		rs.workerStats.EmptyClaims++
	}
}

/* DatasetSnapshot is a point-in-time copy of one dataset's stats */
type DatasetSnapshot struct {
	DatasetName      string    `json:"dataset_name"`
	Completed        int64     `json:"completed"`
	Failed           int64     `json:"failed"`
	Deduplicated     int64     `json:"deduplicated"`
	AvgComputeTimeMS float64   `json:"avg_compute_time_ms"`
	LastActivityAt   time.Time `json:"last_activity_at"`
}

/* StatsSnapshot is a point-in-time copy of all runtime stats */
type StatsSnapshot struct {
	Datasets      []DatasetSnapshot `json:"datasets"`
	ClaimAttempts int64             `json:"claim_attempts"`
	EmptyClaims   int64             `json:"empty_claims"`
	Processed     int64             `json:"processed"`
	Failures      int64             `json:"failures"`
}

/* Snapshot returns a copy of the current statistics */
func (rs *RuntimeStats) Snapshot() StatsSnapshot {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	snapshot := StatsSnapshot{
		Datasets:      make([]DatasetSnapshot, 0, len(rs.datasetStats)),
		ClaimAttempts: rs.workerStats.ClaimAttempts,
		EmptyClaims:   rs.workerStats.EmptyClaims,
		Processed:     rs.workerStats.Processed,
		Failures:      rs.workerStats.Failures,
	}

	for _, stats := range rs.datasetStats {
		snapshot.Datasets = append(snapshot.Datasets, DatasetSnapshot{
			DatasetName:      stats.DatasetName,
			Completed:        stats.Completed,
			Failed:           stats.Failed,
			Deduplicated:     stats.Deduplicated,
			AvgComputeTimeMS: float64(stats.AvgComputeTime.Microseconds()) / 1000.0,
			LastActivityAt:   stats.LastActivityAt,
		})
	}

	return snapshot
}
