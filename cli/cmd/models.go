/*-------------------------------------------------------------------------
 *
 * models.go
 *    Model management commands for verdict-cli
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/cli/cmd/models.go
 *
 *-------------------------------------------------------------------------
 */

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/verdictml/verdict/cli/pkg/client"
)

var (
	modelsCmd = &cobra.Command{
		Use:   "models",
		Short: "Manage models",
	}

	modelsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List all models",
		RunE:  listModels,
	}

	modelsCreateCmd = &cobra.Command{
		Use:   "create [name]",
		Short: "Create a model",
		Args:  cobra.ExactArgs(1),
		RunE:  createModel,
	}

	modelsDeleteCmd = &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a model",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteModel,
	}
)

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsCreateCmd)
	modelsCmd.AddCommand(modelsDeleteCmd)
}

func listModels(cmd *cobra.Command, args []string) error {
	apiClient := client.NewClient(apiURL)

	models, err := apiClient.ListModels()
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	if outputFormat == "json" {
		return printJSON(models)
	}

	if len(models) == 0 {
		fmt.Println("No models found")
		return nil
	}

	fmt.Println("\nModels:")
	fmt.Println("─────────────────────────────────────────────────────────")
	for _, model := range models {
		fmt.Printf("  %-36s %s\n", model.ID, model.Name)
	}

	return nil
}

func createModel(cmd *cobra.Command, args []string) error {
	apiClient := client.NewClient(apiURL)

	model, err := apiClient.CreateModel(args[0], nil)
	if err != nil {
		return fmt.Errorf("failed to create model: %w", err)
	}

	if outputFormat == "json" {
		return printJSON(model)
	}

	fmt.Printf("Created model %s (%s)\n", model.Name, model.ID)
	return nil
}

func deleteModel(cmd *cobra.Command, args []string) error {
	apiClient := client.NewClient(apiURL)

	if err := apiClient.DeleteModel(args[0]); err != nil {
		return fmt.Errorf("failed to delete model: %w", err)
	}

	fmt.Printf("Deleted model %s\n", args[0])
	return nil
}
