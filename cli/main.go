/*-------------------------------------------------------------------------
 *
 * main.go
 *    Main entry point for verdict-cli
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/cli/main.go
 *
 *-------------------------------------------------------------------------
 */

package main

import (
	"github.com/verdictml/verdict/cli/cmd"
)

func main() {
	cmd.Execute()
}
