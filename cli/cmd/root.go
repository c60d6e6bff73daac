/*-------------------------------------------------------------------------
 *
 * root.go
 *    Root command and global flags for verdict-cli
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/cli/cmd/root.go
 *
 *-------------------------------------------------------------------------
 */

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiURL       string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "verdict-cli",
	Short: "Verdict CLI - Dataset and evaluation management",
	Long: `Verdict CLI provides commands for managing datasets, models, and
evaluation jobs against a Verdict server.

Features:
  - Dataset and model management
  - Evaluation submission with filter expressions
  - Evaluation status polling
  - Filter expression validation

Examples:
  # Create a dataset
  verdict-cli datasets create animals

  # Submit an evaluation
  verdict-cli evaluate --dataset animals --model resnet50 --task classification

  # Submit an evaluation from a config file
  verdict-cli evaluate --config eval.yaml

  # Check evaluation status
  verdict-cli status <evaluation-id>

  # Validate a filter expression
  verdict-cli validate --filter '{"op":"eq","lhs":{"name":"label.key","dtype":"string"},"rhs":{"type":"string","value":"animal"}}'
`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "url", getEnvOrDefault("VERDICT_URL", "http://localhost:8080"), "Verdict API URL")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "text", "Output format (text, json)")

	rootCmd.AddCommand(datasetsCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(evaluationsCmd)
	rootCmd.AddCommand(validateCmd)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
