/*-------------------------------------------------------------------------
 *
 * middleware.go
 *    HTTP middleware for Verdict API
 *
 * Provides request ID correlation, security headers, CORS, and logging
 * middleware for the Verdict HTTP API server.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/api/middleware.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/verdictml/verdict/internal/metrics"
)

type contextKey string

const requestIDKey contextKey = "request_id"

/* Caller-supplied correlation IDs longer than this are discarded and
 * replaced, keeping log fields bounded. */
const maxRequestIDLength = 128

/* RequestIDMiddleware threads a correlation ID through the request: the
 * caller's X-Request-ID when one is present, a fresh UUID otherwise. The
 * ID lands in the request context, the structured log context, and the
 * response header. */
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := resolveRequestID(r)

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		ctx = metrics.WithLogContext(ctx, requestID, "", "", "", "")

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func resolveRequestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" && len(id) <= maxRequestIDLength {
		return id
	}
	return uuid.New().String()
}

/* GetRequestID returns the correlation ID carried by the context, or an
 * empty string outside the middleware chain. */
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

/* SecurityHeadersMiddleware adds security headers to all HTTP responses */
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")
		// Enable XSS protection
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")
		// Enforce HTTPS in production (Strict-Transport-Security)
		// Note: Only set if request is already HTTPS to avoid issues
		if r.TLS != nil {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		// Content Security Policy - restrictive by default
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; font-src 'self'; connect-src 'self'")
		// Referrer Policy
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		// Permissions Policy (formerly Feature-Policy)
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

		next.ServeHTTP(w, r)
	})
}

/* CORSMiddleware adds CORS headers */
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

/* LoggingMiddleware logs requests with structured logging and metrics */
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		/* Wrap response writer to capture status code */
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)

		/* Record metrics */
		endpoint := r.URL.Path
		metrics.RecordHTTPRequest(r.Method, endpoint, wrapped.statusCode, duration)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
