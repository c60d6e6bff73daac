/*-------------------------------------------------------------------------
 *
 * jsonb.go
 *    JSONB column support for Verdict
 *
 * JSONBMap marshals map values to and from PostgreSQL jsonb columns via
 * the database/sql valuer and scanner interfaces.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <admin@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/db/jsonb.go
 *
 *-------------------------------------------------------------------------
 */

package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

/* JSONBMap maps to a jsonb column */
type JSONBMap map[string]interface{}

/* Value serializes the map for a jsonb parameter. A nil map stores as
 * an empty object, not SQL NULL, so key lookups stay well defined. */
func (m JSONBMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal jsonb value: %w", err)
	}
	return data, nil
}

/* Scan deserializes a jsonb column into the map */
func (m *JSONBMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
	if len(data) == 0 {
		*m = nil
		return nil
	}
	return json.Unmarshal(data, m)
}
