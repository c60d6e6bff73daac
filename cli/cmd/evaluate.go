/*-------------------------------------------------------------------------
 *
 * evaluate.go
 *    Evaluation submission command for verdict-cli
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/cli/cmd/evaluate.go
 *
 *-------------------------------------------------------------------------
 */

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/verdictml/verdict/cli/pkg/client"
	"github.com/verdictml/verdict/cli/pkg/config"
)

var (
	evaluateCmd = &cobra.Command{
		Use:   "evaluate",
		Short: "Submit an evaluation job",
		Long: `Submit an evaluation job to the Verdict server.

The request can be assembled from flags or loaded from a YAML config
file. A request identical to a previous one returns the existing
evaluation instead of creating a duplicate.`,
		RunE: runEvaluate,
	}

	evalConfigPath string
	evalDataset    string
	evalModels     []string
	evalTaskType   string
	evalFilter     string
	evalParams     []string
	evalWait       bool
	evalTimeout    time.Duration
)

func init() {
	evaluateCmd.Flags().StringVarP(&evalConfigPath, "config", "c", "", "Path to evaluation config file (YAML)")
	evaluateCmd.Flags().StringVar(&evalDataset, "dataset", "", "Dataset name")
	evaluateCmd.Flags().StringSliceVar(&evalModels, "model", nil, "Model name (repeatable)")
	evaluateCmd.Flags().StringVar(&evalTaskType, "task", "", "Task type (classification, object-detection, semantic-segmentation)")
	evaluateCmd.Flags().StringVar(&evalFilter, "filter", "", "Filter expression as JSON, or @path to a file")
	evaluateCmd.Flags().StringSliceVar(&evalParams, "param", nil, "Evaluation parameter as key=value (repeatable)")
	evaluateCmd.Flags().BoolVar(&evalWait, "wait", false, "Wait for the evaluation to finish")
	evaluateCmd.Flags().DurationVar(&evalTimeout, "timeout", 10*time.Minute, "Maximum time to wait with --wait")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	var (
		dataset    string
		models     []string
		taskType   string
		filter     json.RawMessage
		parameters map[string]interface{}
		err        error
	)

	if evalConfigPath != "" {
		cfg, err := config.LoadEvaluationConfig(evalConfigPath)
		if err != nil {
			return err
		}
		dataset = cfg.Dataset
		models = cfg.Models
		taskType = cfg.TaskType
		parameters = cfg.Parameters
		filter, err = cfg.FilterJSON()
		if err != nil {
			return err
		}
	} else {
		dataset = evalDataset
		models = evalModels
		taskType = evalTaskType

		if evalFilter != "" {
			filter, err = readFilterArg(evalFilter)
			if err != nil {
				return err
			}
		}
		if len(evalParams) > 0 {
			parameters = make(map[string]interface{}, len(evalParams))
			for _, p := range evalParams {
				key, value, found := strings.Cut(p, "=")
				if !found {
					return fmt.Errorf("invalid parameter %q, expected key=value", p)
				}
				parameters[key] = value
			}
		}
	}

	if dataset == "" || len(models) == 0 || taskType == "" {
		return fmt.Errorf("dataset, model, and task are required (flags or config file)")
	}

	apiClient := client.NewClient(apiURL)

	eval, err := apiClient.CreateEvaluation(dataset, models, taskType, filter, parameters)
	if err != nil {
		return fmt.Errorf("failed to create evaluation: %w", err)
	}

	if evalWait && eval.Status != "done" && eval.Status != "failed" {
		ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
		defer cancel()

		fmt.Printf("Evaluation %s submitted, waiting...\n", eval.ID)
		eval, err = apiClient.WaitForEvaluation(ctx, eval.ID, 2*time.Second)
		if err != nil {
			return fmt.Errorf("failed waiting for evaluation: %w", err)
		}
	}

	if outputFormat == "json" {
		return printJSON(eval)
	}

	printEvaluation(eval)
	return nil
}

func readFilterArg(arg string) (json.RawMessage, error) {
	data := []byte(arg)
	if strings.HasPrefix(arg, "@") {
		fileData, err := os.ReadFile(strings.TrimPrefix(arg, "@"))
		if err != nil {
			return nil, fmt.Errorf("failed to read filter file: %w", err)
		}
		data = fileData
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("filter is not valid JSON")
	}
	return json.RawMessage(data), nil
}

func printEvaluation(eval *client.Evaluation) {
	fmt.Printf("ID:          %s\n", eval.ID)
	fmt.Printf("Status:      %s\n", eval.Status)
	fmt.Printf("Dataset:     %s\n", eval.DatasetName)
	fmt.Printf("Models:      %s\n", strings.Join(eval.ModelNames, ", "))
	fmt.Printf("Task:        %s\n", eval.TaskType)
	fmt.Printf("Fingerprint: %s\n", eval.Fingerprint)
	if eval.ErrorMessage != nil {
		fmt.Printf("Error:       %s\n", *eval.ErrorMessage)
	}
	if len(eval.Metrics) > 0 {
		data, err := json.MarshalIndent(eval.Metrics, "", "  ")
		if err == nil {
			fmt.Printf("Metrics:\n%s\n", string(data))
		}
	}
}
