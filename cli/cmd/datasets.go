/*-------------------------------------------------------------------------
 *
 * datasets.go
 *    Dataset management commands for verdict-cli
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/cli/cmd/datasets.go
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
	datasetsCmd = &cobra.Command{
		Use:   "datasets",
		Short: "Manage datasets",
	}

	datasetsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List all datasets",
		RunE:  listDatasets,
	}

	datasetsCreateCmd = &cobra.Command{
		Use:   "create [name]",
		Short: "Create a dataset",
		Args:  cobra.ExactArgs(1),
		RunE:  createDataset,
	}

	datasetsShowCmd = &cobra.Command{
		Use:   "show [name]",
		Short: "Show dataset details",
		Args:  cobra.ExactArgs(1),
		RunE:  showDataset,
	}

	datasetsDeleteCmd = &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a dataset",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteDataset,
	}
)

func init() {
	datasetsCmd.AddCommand(datasetsListCmd)
	datasetsCmd.AddCommand(datasetsCreateCmd)
	datasetsCmd.AddCommand(datasetsShowCmd)
	datasetsCmd.AddCommand(datasetsDeleteCmd)
}

func listDatasets(cmd *cobra.Command, args []string) error {
	apiClient := client.NewClient(apiURL)

	datasets, err := apiClient.ListDatasets()
	if err != nil {
		return fmt.Errorf("failed to list datasets: %w", err)
	}

	if outputFormat == "json" {
		return printJSON(datasets)
	}

	if len(datasets) == 0 {
		fmt.Println("No datasets found")
		return nil
	}

	fmt.Println("\nDatasets:")
	fmt.Println("─────────────────────────────────────────────────────────")
	for _, dataset := range datasets {
		fmt.Printf("  %-36s %s\n", dataset.ID, dataset.Name)
	}

	return nil
}

func createDataset(cmd *cobra.Command, args []string) error {
	apiClient := client.NewClient(apiURL)

	dataset, err := apiClient.CreateDataset(args[0], nil)
	if err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}

	if outputFormat == "json" {
		return printJSON(dataset)
	}

	fmt.Printf("Created dataset %s (%s)\n", dataset.Name, dataset.ID)
	return nil
}

func showDataset(cmd *cobra.Command, args []string) error {
	apiClient := client.NewClient(apiURL)

	dataset, err := apiClient.GetDataset(args[0])
	if err != nil {
		return fmt.Errorf("failed to get dataset: %w", err)
	}

	if outputFormat == "json" {
		return printJSON(dataset)
	}

	fmt.Printf("Name:       %s\n", dataset.Name)
	fmt.Printf("ID:         %s\n", dataset.ID)
	fmt.Printf("Created:    %s\n", dataset.CreatedAt)
	if len(dataset.Metadata) > 0 {
		fmt.Printf("Metadata:   %v\n", dataset.Metadata)
	}
	return nil
}

func deleteDataset(cmd *cobra.Command, args []string) error {
	apiClient := client.NewClient(apiURL)

	if err := apiClient.DeleteDataset(args[0]); err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}

	fmt.Printf("Deleted dataset %s\n", args[0])
	return nil
}
