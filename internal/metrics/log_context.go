/*-------------------------------------------------------------------------
 *
 * log_context.go
 *    Log context helpers for structured logging
 *
 * Provides helpers for consistent structured logging with request_id,
 * dataset, model, evaluation_id, trace_id fields across all components.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <admin@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/metrics/log_context.go
 *
 *-------------------------------------------------------------------------
 */

package metrics

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	requestIDKey    contextKey = "request_id"
	datasetKey      contextKey = "dataset"
	modelKey        contextKey = "model"
	evaluationIDKey contextKey = "evaluation_id"
	traceIDKey      contextKey = "trace_id"
)

/* WithLogContext adds logging fields to context */
func WithLogContext(ctx context.Context, requestID, dataset, model, evaluationID, traceID string) context.Context {
	if requestID != "" {
		ctx = context.WithValue(ctx, requestIDKey, requestID)
	}
	if dataset != "" {
		ctx = context.WithValue(ctx, datasetKey, dataset)
	}
	if model != "" {
		ctx = context.WithValue(ctx, modelKey, model)
	}
	if evaluationID != "" {
		ctx = context.WithValue(ctx, evaluationIDKey, evaluationID)
	}
	if traceID != "" {
		ctx = context.WithValue(ctx, traceIDKey, traceID)
	}
	return ctx
}

/* WithDatasetLogContext adds a dataset name to log context */
func WithDatasetLogContext(ctx context.Context, dataset string) context.Context {
	return context.WithValue(ctx, datasetKey, dataset)
}

/* WithModelLogContext adds a model name to log context */
func WithModelLogContext(ctx context.Context, model string) context.Context {
	return context.WithValue(ctx, modelKey, model)
}

/* WithEvaluationIDLogContext adds an evaluation ID to log context */
func WithEvaluationIDLogContext(ctx context.Context, evaluationID uuid.UUID) context.Context {
	return context.WithValue(ctx, evaluationIDKey, evaluationID.String())
}

/* WithTraceIDLogContext adds a trace ID to log context */
func WithTraceIDLogContext(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

/* GetRequestIDFromContext gets request ID from context */
func GetRequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

/* GetDatasetFromContext gets dataset name from context */
func GetDatasetFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(datasetKey).(string); ok {
		return name
	}
	return ""
}

/* GetModelFromContext gets model name from context */
func GetModelFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(modelKey).(string); ok {
		return name
	}
	return ""
}

/* GetEvaluationIDFromContext gets evaluation ID from context */
func GetEvaluationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(evaluationIDKey).(string); ok {
		return id
	}
	if id, ok := ctx.Value(evaluationIDKey).(uuid.UUID); ok {
		return id.String()
	}
	return ""
}

/* GetTraceIDFromContext gets trace ID from context */
func GetTraceIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey).(string); ok {
		return id
	}
	return ""
}

/* LoggerFromContext creates a zerolog logger with fields from context */
func LoggerFromContext(ctx context.Context) zerolog.Logger {
	logger := *zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	/* Add context fields */
	requestID := GetRequestIDFromContext(ctx)
	dataset := GetDatasetFromContext(ctx)
	model := GetModelFromContext(ctx)
	evaluationID := GetEvaluationIDFromContext(ctx)
	traceID := GetTraceIDFromContext(ctx)

	if requestID != "" {
		logger = logger.With().Str("request_id", requestID).Logger()
	}
	if dataset != "" {
		logger = logger.With().Str("dataset", dataset).Logger()
	}
	if model != "" {
		logger = logger.With().Str("model", model).Logger()
	}
	if evaluationID != "" {
		logger = logger.With().Str("evaluation_id", evaluationID).Logger()
	}
	if traceID != "" {
		logger = logger.With().Str("trace_id", traceID).Logger()
	}

	return logger
}

/* LogWithContext logs a message with context fields */
func LogWithContext(ctx context.Context, level zerolog.Level, message string, fields map[string]interface{}) {
	logger := LoggerFromContext(ctx)
	event := logger.WithLevel(level)

	for key, value := range fields {
		event = event.Interface(key, value)
	}

	event.Msg(message)
}

/* DebugWithContext logs a debug message with context */
func DebugWithContext(ctx context.Context, message string, fields map[string]interface{}) {
	LogWithContext(ctx, zerolog.DebugLevel, message, fields)
}

/* InfoWithContext logs an info message with context */
func InfoWithContext(ctx context.Context, message string, fields map[string]interface{}) {
	LogWithContext(ctx, zerolog.InfoLevel, message, fields)
}

/* WarnWithContext logs a warning message with context */
func WarnWithContext(ctx context.Context, message string, fields map[string]interface{}) {
	LogWithContext(ctx, zerolog.WarnLevel, message, fields)
}

/* ErrorWithContext logs an error message with context */
func ErrorWithContext(ctx context.Context, message string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	LogWithContext(ctx, zerolog.ErrorLevel, message, fields)
}
