/*-------------------------------------------------------------------------
 *
 * format.go
 *    Error context formatting helpers for Verdict
 *
 * Builds the structured context strings embedded in database and API
 * error messages.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <admin@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/utils/format.go
 *
 *-------------------------------------------------------------------------
 */

package utils

import (
	"fmt"
	"strings"
)

/* FormatConnectionInfo formats database connection details for error messages */
func FormatConnectionInfo(host string, port int, database, user string) string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s", host, port, database, user)
}

/* FormatQueryContext formats query details for error messages. The query
 * text is collapsed to one line and truncated so logs stay readable. */
func FormatQueryContext(query string, paramCount int, operation, table string) string {
	collapsed := strings.Join(strings.Fields(query), " ")
	if len(collapsed) > 200 {
		collapsed = collapsed[:200] + "..."
	}
	return fmt.Sprintf("operation=%s, table=%s, params=%d, query='%s'", operation, table, paramCount, collapsed)
}

/* TruncateString shortens a string to max runes with an ellipsis */
func TruncateString(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
