/*-------------------------------------------------------------------------
 *
 * evaluations.go
 *    Evaluation status and listing commands for verdict-cli
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/cli/cmd/evaluations.go
 *
 *-------------------------------------------------------------------------
 */

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/verdictml/verdict/cli/pkg/client"
)

var (
	statusCmd = &cobra.Command{
		Use:   "status [evaluation-id]",
		Short: "Show evaluation status and metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  showEvaluation,
	}

	evaluationsCmd = &cobra.Command{
		Use:   "evaluations",
		Short: "List evaluations",
		RunE:  listEvaluations,
	}

	listDataset string
	listModel   string
	listStatus  string
	listLimit   int
	listOffset  int
)

func init() {
	evaluationsCmd.Flags().StringVar(&listDataset, "dataset", "", "Filter by dataset name")
	evaluationsCmd.Flags().StringVar(&listModel, "model", "", "Filter by model name")
	evaluationsCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status (pending, running, done, failed)")
	evaluationsCmd.Flags().IntVar(&listLimit, "limit", 50, "Maximum evaluations to list")
	evaluationsCmd.Flags().IntVar(&listOffset, "offset", 0, "Listing offset")
}

func showEvaluation(cmd *cobra.Command, args []string) error {
	apiClient := client.NewClient(apiURL)

	eval, err := apiClient.GetEvaluation(args[0])
	if err != nil {
		return fmt.Errorf("failed to get evaluation: %w", err)
	}

	if outputFormat == "json" {
		return printJSON(eval)
	}

	printEvaluation(eval)
	return nil
}

func listEvaluations(cmd *cobra.Command, args []string) error {
	apiClient := client.NewClient(apiURL)

	evals, err := apiClient.ListEvaluations(listDataset, listModel, listStatus, listLimit, listOffset)
	if err != nil {
		return fmt.Errorf("failed to list evaluations: %w", err)
	}

	if outputFormat == "json" {
		return printJSON(evals)
	}

	if len(evals) == 0 {
		fmt.Println("No evaluations found")
		return nil
	}

	fmt.Println("\nEvaluations:")
	fmt.Println("─────────────────────────────────────────────────────────")
	for _, eval := range evals {
		fmt.Printf("  %-36s %-8s %s [%s]\n", eval.ID, eval.Status, eval.DatasetName, strings.Join(eval.ModelNames, ", "))
	}

	return nil
}
