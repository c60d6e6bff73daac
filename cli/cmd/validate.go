/*-------------------------------------------------------------------------
 *
 * validate.go
 *    Filter validation command for verdict-cli
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/cli/cmd/validate.go
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
	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Validate a filter expression",
		Long: `Validate a filter expression against the server's symbol and
operator tables without running it.`,
		RunE: runValidate,
	}

	validateFilter string
)

func init() {
	validateCmd.Flags().StringVar(&validateFilter, "filter", "", "Filter expression as JSON, or @path to a file")
	validateCmd.MarkFlagRequired("filter")
}

func runValidate(cmd *cobra.Command, args []string) error {
	expression, err := readFilterArg(validateFilter)
	if err != nil {
		return err
	}

	apiClient := client.NewClient(apiURL)

	result, err := apiClient.ValidateFilter(expression)
	if err != nil {
		return fmt.Errorf("failed to validate filter: %w", err)
	}

	if outputFormat == "json" {
		return printJSON(result)
	}

	if result.Valid {
		fmt.Printf("Filter is valid (%d predicates)\n", result.PredicateCount)
		return nil
	}

	fmt.Printf("Filter is invalid: %s\n", result.Error)
	if result.ErrorType != "" {
		fmt.Printf("Error type: %s\n", result.ErrorType)
	}
	return nil
}
