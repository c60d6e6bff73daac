/*-------------------------------------------------------------------------
 *
 * handlers_test.go
 *    Tests for Verdict API handlers
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/api/handlers_test.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func postJSON(t *testing.T, handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestValidateFilter_ValidExpression(t *testing.T) {
	h := NewHandlers(nil, nil, nil)

	body := `{"expression":{"op":"eq","lhs":{"name":"label.key","dtype":"string"},"rhs":{"type":"string","value":"animal"}}}`
	rec := postJSON(t, h.ValidateFilter, "/api/v1/filters/validate", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp ValidateFilterResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Valid {
		t.Fatalf("valid = false, error: %s", resp.Error)
	}
	if resp.PredicateCount != 1 {
		t.Errorf("predicate_count = %d, want 1", resp.PredicateCount)
	}
}

func TestValidateFilter_NestedExpression(t *testing.T) {
	h := NewHandlers(nil, nil, nil)

	body := `{"expression":{"op":"and","args":[
		{"op":"eq","lhs":{"name":"label.key","dtype":"string"},"rhs":{"type":"string","value":"animal"}},
		{"op":"gt","lhs":{"name":"annotation.raster","dtype":"raster","attribute":"area"},"rhs":{"type":"integer","value":100}}
	]}}`
	rec := postJSON(t, h.ValidateFilter, "/api/v1/filters/validate", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp ValidateFilterResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Valid {
		t.Fatalf("valid = false, error: %s", resp.Error)
	}
	if resp.PredicateCount != 2 {
		t.Errorf("predicate_count = %d, want 2", resp.PredicateCount)
	}
}

func TestValidateFilter_UnsupportedOperator(t *testing.T) {
	h := NewHandlers(nil, nil, nil)

	body := `{"expression":{"op":"gt","lhs":{"name":"label.key","dtype":"string"},"rhs":{"type":"string","value":"animal"}}}`
	rec := postJSON(t, h.ValidateFilter, "/api/v1/filters/validate", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp ValidateFilterResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Valid {
		t.Fatal("expected invalid filter")
	}
	if resp.ErrorType != "unsupported_operator" {
		t.Errorf("error_type = %q, want %q", resp.ErrorType, "unsupported_operator")
	}
}

func TestValidateFilter_UnknownSymbol(t *testing.T) {
	h := NewHandlers(nil, nil, nil)

	body := `{"expression":{"op":"eq","lhs":{"name":"weather.humidity","dtype":"string"},"rhs":{"type":"string","value":"high"}}}`
	rec := postJSON(t, h.ValidateFilter, "/api/v1/filters/validate", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp ValidateFilterResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Valid {
		t.Fatal("expected invalid filter")
	}
	if resp.ErrorType != "symbol_error" {
		t.Errorf("error_type = %q, want %q", resp.ErrorType, "symbol_error")
	}
}

func TestValidateFilter_StructuralError(t *testing.T) {
	h := NewHandlers(nil, nil, nil)

	body := `{"expression":{"op":"between","lhs":{"name":"label.key","dtype":"string"}}}`
	rec := postJSON(t, h.ValidateFilter, "/api/v1/filters/validate", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp ValidateFilterResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Valid {
		t.Fatal("expected invalid filter")
	}
	if resp.ErrorType != "structural_error" {
		t.Errorf("error_type = %q, want %q", resp.ErrorType, "structural_error")
	}
}

func TestValidateFilter_MissingExpression(t *testing.T) {
	h := NewHandlers(nil, nil, nil)

	rec := postJSON(t, h.ValidateFilter, "/api/v1/filters/validate", `{}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreateDataset_RejectsInvalidName(t *testing.T) {
	h := NewHandlers(nil, nil, nil)

	cases := []string{
		`{"name":""}`,
		`{"name":"bad name"}`,
		`{"name":"-leading-dash"}`,
		`{"name":"` + strings.Repeat("x", 200) + `"}`,
	}
	for _, body := range cases {
		rec := postJSON(t, h.CreateDataset, "/api/v1/datasets", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want %d", body, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestCreateEvaluation_RejectsMalformedBody(t *testing.T) {
	h := NewHandlers(nil, nil, nil)

	rec := postJSON(t, h.CreateEvaluation, "/api/v1/evaluations", `{"dataset_name":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreateEvaluation_RejectsMissingModels(t *testing.T) {
	h := NewHandlers(nil, nil, nil)

	rec := postJSON(t, h.CreateEvaluation, "/api/v1/evaluations", `{"dataset_name":"animals","model_names":[],"task_type":"classification"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreateEvaluation_RejectsUnknownTaskType(t *testing.T) {
	h := NewHandlers(nil, nil, nil)

	rec := postJSON(t, h.CreateEvaluation, "/api/v1/evaluations", `{"dataset_name":"animals","model_names":["resnet50"],"task_type":"caption-generation"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreateEvaluation_RejectsBadFilter(t *testing.T) {
	h := NewHandlers(nil, nil, nil)

	body := `{"dataset_name":"animals","model_names":["resnet50"],"task_type":"classification",
		"filter":{"op":"gt","lhs":{"name":"label.key","dtype":"string"},"rhs":{"type":"string","value":"animal"}}}`
	rec := postJSON(t, h.CreateEvaluation, "/api/v1/evaluations", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ErrorType != "unsupported_operator" {
		t.Errorf("error_type = %q, want %q", resp.ErrorType, "unsupported_operator")
	}
}

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	})

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	RequestIDMiddleware(next).ServeHTTP(rec, req)

	if seen == "" {
		t.Fatal("request ID missing from context")
	}
	if got := rec.Header().Get("X-Request-ID"); got != seen {
		t.Errorf("response header = %q, want %q", got, seen)
	}
}

func TestRequestIDMiddleware_PreservesProvidedID(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "req-abc-123")
	rec := httptest.NewRecorder()
	RequestIDMiddleware(next).ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req-abc-123" {
		t.Errorf("response header = %q, want %q", got, "req-abc-123")
	}
}

func TestRequestIDMiddleware_ReplacesOversizedID(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	oversized := strings.Repeat("x", maxRequestIDLength+1)
	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", oversized)
	rec := httptest.NewRecorder()
	RequestIDMiddleware(next).ServeHTTP(rec, req)

	got := rec.Header().Get("X-Request-ID")
	if got == oversized {
		t.Errorf("oversized request ID was not replaced")
	}
	if got == "" {
		t.Errorf("expected a generated request ID")
	}
}
