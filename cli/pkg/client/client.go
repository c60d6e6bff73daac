/*-------------------------------------------------------------------------
 *
 * client.go
 *    HTTP client for Verdict API
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/cli/pkg/client/client.go
 *
 *-------------------------------------------------------------------------
 */

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      RetryConfig
}

type Dataset struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt string                 `json:"created_at,omitempty"`
}

type Model struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt string                 `json:"created_at,omitempty"`
}

type Evaluation struct {
	ID           string                 `json:"id"`
	Fingerprint  string                 `json:"fingerprint"`
	DatasetName  string                 `json:"dataset_name"`
	ModelNames   []string               `json:"model_names"`
	TaskType     string                 `json:"task_type"`
	Status       string                 `json:"status"`
	Metrics      map[string]interface{} `json:"metrics,omitempty"`
	ErrorMessage *string                `json:"error_message,omitempty"`
	CreatedAt    string                 `json:"created_at,omitempty"`
	CompletedAt  *string                `json:"completed_at,omitempty"`
}

type FilterValidation struct {
	Valid          bool   `json:"valid"`
	ErrorType      string `json:"error_type,omitempty"`
	Error          string `json:"error,omitempty"`
	PredicateCount int    `json:"predicate_count,omitempty"`
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		retry: DefaultRetryConfig(),
	}
}

func (c *Client) CreateDataset(name string, metadata map[string]interface{}) (*Dataset, error) {
	reqBody := map[string]interface{}{"name": name}
	if len(metadata) > 0 {
		reqBody["metadata"] = metadata
	}

	var dataset Dataset
	if err := c.doJSON("POST", "/api/v1/datasets", reqBody, &dataset); err != nil {
		return nil, err
	}
	return &dataset, nil
}

func (c *Client) GetDataset(name string) (*Dataset, error) {
	var dataset Dataset
	if err := c.doJSON("GET", "/api/v1/datasets/"+url.PathEscape(name), nil, &dataset); err != nil {
		return nil, err
	}
	return &dataset, nil
}

func (c *Client) ListDatasets() ([]Dataset, error) {
	var datasets []Dataset
	if err := c.doJSON("GET", "/api/v1/datasets", nil, &datasets); err != nil {
		return nil, err
	}
	return datasets, nil
}

func (c *Client) DeleteDataset(name string) error {
	return c.doJSON("DELETE", "/api/v1/datasets/"+url.PathEscape(name), nil, nil)
}

func (c *Client) CreateModel(name string, metadata map[string]interface{}) (*Model, error) {
	reqBody := map[string]interface{}{"name": name}
	if len(metadata) > 0 {
		reqBody["metadata"] = metadata
	}

	var model Model
	if err := c.doJSON("POST", "/api/v1/models", reqBody, &model); err != nil {
		return nil, err
	}
	return &model, nil
}

func (c *Client) ListModels() ([]Model, error) {
	var models []Model
	if err := c.doJSON("GET", "/api/v1/models", nil, &models); err != nil {
		return nil, err
	}
	return models, nil
}

func (c *Client) DeleteModel(name string) error {
	return c.doJSON("DELETE", "/api/v1/models/"+url.PathEscape(name), nil, nil)
}

func (c *Client) CreateEvaluation(datasetName string, modelNames []string, taskType string, filter json.RawMessage, parameters map[string]interface{}) (*Evaluation, error) {
	reqBody := map[string]interface{}{
		"dataset_name": datasetName,
		"model_names":  modelNames,
		"task_type":    taskType,
	}
	if len(filter) > 0 {
		reqBody["filter"] = filter
	}
	if len(parameters) > 0 {
		reqBody["parameters"] = parameters
	}

	var eval Evaluation
	if err := c.doJSON("POST", "/api/v1/evaluations", reqBody, &eval); err != nil {
		return nil, err
	}
	return &eval, nil
}

func (c *Client) GetEvaluation(id string) (*Evaluation, error) {
	var eval Evaluation
	if err := c.doJSON("GET", "/api/v1/evaluations/"+url.PathEscape(id), nil, &eval); err != nil {
		return nil, err
	}
	return &eval, nil
}

func (c *Client) ListEvaluations(datasetName, modelName, status string, limit, offset int) ([]Evaluation, error) {
	params := url.Values{}
	if datasetName != "" {
		params.Set("dataset", datasetName)
	}
	if modelName != "" {
		params.Set("model", modelName)
	}
	if status != "" {
		params.Set("status", status)
	}
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("offset", fmt.Sprintf("%d", offset))

	var evals []Evaluation
	if err := c.doJSON("GET", "/api/v1/evaluations?"+params.Encode(), nil, &evals); err != nil {
		return nil, err
	}
	return evals, nil
}

/* WaitForEvaluation polls an evaluation until it reaches a terminal
 * status or the context expires. */
func (c *Client) WaitForEvaluation(ctx context.Context, id string, pollInterval time.Duration) (*Evaluation, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		eval, err := c.GetEvaluation(id)
		if err != nil {
			return nil, err
		}
		if eval.Status == "done" || eval.Status == "failed" {
			return eval, nil
		}

		select {
		case <-ctx.Done():
			return eval, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) ValidateFilter(expression json.RawMessage) (*FilterValidation, error) {
	reqBody := map[string]interface{}{"expression": expression}

	var result FilterValidation
	if err := c.doJSON("POST", "/api/v1/filters/validate", reqBody, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) doJSON(method, path string, reqBody interface{}, out interface{}) error {
	var payload []byte
	if reqBody != nil {
		var err error
		payload, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	resp, err := RetryWithResult(context.Background(), c.retry, func() (*http.Response, error) {
		return c.makeRequest(method, path, payload)
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) makeRequest(method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	return resp, nil
}
