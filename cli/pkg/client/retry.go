/*-------------------------------------------------------------------------
 *
 * retry.go
 *    Retry logic for Verdict API client calls
 *
 * Provides retry with exponential backoff for transient request
 * failures.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/cli/pkg/client/retry.go
 *
 *-------------------------------------------------------------------------
 */

package client

import (
	"context"
	"fmt"
	"strings"
	"time"
)

/* RetryConfig defines retry configuration */
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	IsRetryable  func(error) bool
}

/* DefaultRetryConfig returns default retry configuration */
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		IsRetryable:  IsRetryableError,
	}
}

/* IsRetryableError checks if an error is retryable */
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	/* Check for transient errors */
	retryablePatterns := []string{
		"timeout",
		"connection",
		"temporary",
		"network",
		"status 503",
		"status 502",
		"status 504",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

/* RetryWithResult executes a function with retry logic and returns result */
func RetryWithResult[T any](ctx context.Context, config RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	delay := config.InitialDelay

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		/* Check context cancellation */
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !config.IsRetryable(err) {
			return zero, err
		}

		/* Don't sleep after last attempt */
		if attempt < config.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
				/* Exponential backoff */
				delay = time.Duration(float64(delay) * config.Multiplier)
				if delay > config.MaxDelay {
					delay = config.MaxDelay
				}
			}
		}
	}

	return zero, fmt.Errorf("operation failed after %d attempts: %w", config.MaxAttempts, lastErr)
}
