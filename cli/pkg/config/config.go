/*-------------------------------------------------------------------------
 *
 * config.go
 *    Configuration file handling for evaluation definitions
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/cli/pkg/config/config.go
 *
 *-------------------------------------------------------------------------
 */

package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

/* EvaluationConfig describes an evaluation request loaded from a YAML
 * file. Filter holds the expression as free-form YAML and is converted
 * to JSON before submission. */
type EvaluationConfig struct {
	Dataset    string                 `yaml:"dataset" json:"dataset"`
	Models     []string               `yaml:"models" json:"models"`
	TaskType   string                 `yaml:"task_type" json:"task_type"`
	Filter     interface{}            `yaml:"filter,omitempty" json:"filter,omitempty"`
	Parameters map[string]interface{} `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

func LoadEvaluationConfig(path string) (*EvaluationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config EvaluationConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ValidateEvaluationConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func ValidateEvaluationConfig(config *EvaluationConfig) error {
	if config.Dataset == "" {
		return fmt.Errorf("dataset is required")
	}
	if len(config.Models) == 0 {
		return fmt.Errorf("at least one model is required")
	}
	if config.TaskType == "" {
		return fmt.Errorf("task_type is required")
	}
	return nil
}

/* FilterJSON returns the filter expression as JSON, or nil when the
 * config has no filter. */
func (c *EvaluationConfig) FilterJSON() (json.RawMessage, error) {
	if c.Filter == nil {
		return nil, nil
	}
	data, err := json.Marshal(normalizeYAML(c.Filter))
	if err != nil {
		return nil, fmt.Errorf("failed to encode filter: %w", err)
	}
	return data, nil
}

/* normalizeYAML rewrites map[interface{}]interface{} values produced by
 * YAML decoding into map[string]interface{} so they marshal to JSON. */
func normalizeYAML(v interface{}) interface{} {
	switch val := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[fmt.Sprintf("%v", k)] = normalizeYAML(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = normalizeYAML(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalizeYAML(item)
		}
		return out
	default:
		return v
	}
}
