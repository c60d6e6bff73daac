/*-------------------------------------------------------------------------
 *
 * validate.go
 *    Structural validators for filter literal values
 *
 * Each filterable dtype carries a validator for the native shape of its
 * literal value. Validation happens during compilation, before any query
 * is built; a shape violation is a StructuralError.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/filter/validate.go
 *
 *-------------------------------------------------------------------------
 */

package filter

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

/* Validate checks the value shape against its declared type */
func (v *Value) Validate() error {
	switch v.Type {
	case DtypeBool:
		if _, ok := v.Value.(bool); !ok {
			return structural(v, "expected a boolean")
		}
	case DtypeString, DtypeTaskType:
		if _, ok := v.Value.(string); !ok {
			return structural(v, "expected a string")
		}
	case DtypeInteger:
		f, ok := asFloat(v.Value)
		if !ok || f != math.Trunc(f) {
			return structural(v, "expected an integer")
		}
	case DtypeFloat:
		if _, ok := asFloat(v.Value); !ok {
			return structural(v, "expected a number")
		}
	case DtypeDatetime:
		s, ok := v.Value.(string)
		if !ok {
			return structural(v, "expected an RFC 3339 timestamp string")
		}
		if _, err := time.Parse(time.RFC3339, s); err != nil {
			return structural(v, fmt.Sprintf("invalid timestamp: %v", err))
		}
	case DtypeDate:
		s, ok := v.Value.(string)
		if !ok {
			return structural(v, "expected a YYYY-MM-DD date string")
		}
		if _, err := time.Parse("2006-01-02", s); err != nil {
			return structural(v, fmt.Sprintf("invalid date: %v", err))
		}
	case DtypeTime:
		s, ok := v.Value.(string)
		if !ok {
			return structural(v, "expected an HH:MM:SS time string")
		}
		if _, err := time.Parse("15:04:05", s); err != nil {
			return structural(v, fmt.Sprintf("invalid time: %v", err))
		}
	case DtypeDuration:
		if _, ok := asFloat(v.Value); !ok {
			return structural(v, "expected a duration in seconds")
		}
	case DtypePoint:
		if _, err := parsePosition(v.Value); err != nil {
			return structural(v, err.Error())
		}
	case DtypeMultiPoint:
		if _, err := parsePositions(v.Value, 1); err != nil {
			return structural(v, err.Error())
		}
	case DtypeLineString:
		if _, err := parsePositions(v.Value, 2); err != nil {
			return structural(v, err.Error())
		}
	case DtypeMultiLineString:
		lines, ok := v.Value.([]interface{})
		if !ok || len(lines) == 0 {
			return structural(v, "expected a list of linestrings")
		}
		for _, line := range lines {
			if _, err := parsePositions(line, 2); err != nil {
				return structural(v, err.Error())
			}
		}
	case DtypePolygon:
		if err := validateRings(v.Value, 0); err != nil {
			return structural(v, err.Error())
		}
	case DtypeBox:
		if err := validateRings(v.Value, 5); err != nil {
			return structural(v, err.Error())
		}
	case DtypeMultiPolygon:
		polys, ok := v.Value.([]interface{})
		if !ok || len(polys) == 0 {
			return structural(v, "expected a list of polygons")
		}
		for _, poly := range polys {
			if err := validateRings(poly, 0); err != nil {
				return structural(v, err.Error())
			}
		}
	case DtypeLabel:
		m, ok := v.Value.(map[string]interface{})
		if !ok {
			return structural(v, "expected an object with key and value")
		}
		if _, ok := m["key"].(string); !ok {
			return structural(v, "label key must be a string")
		}
		if _, ok := m["value"].(string); !ok {
			return structural(v, "label value must be a string")
		}
	case DtypeRaster, DtypeEmbedding:
		return structural(v, fmt.Sprintf("type '%s' has no literal value form", v.Type))
	default:
		return structural(v, fmt.Sprintf("unrecognized value type '%s'", v.Type))
	}
	return nil
}

func structural(v *Value, reason string) error {
	return &StructuralError{Reason: fmt.Sprintf("value of type '%s': %s", v.Type, reason)}
}

func asFloat(x interface{}) (float64, bool) {
	switch n := x.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func parsePosition(x interface{}) ([2]float64, error) {
	pair, ok := x.([]interface{})
	if !ok || len(pair) != 2 {
		return [2]float64{}, fmt.Errorf("expected an [x, y] coordinate pair")
	}
	var pos [2]float64
	for i, c := range pair {
		f, ok := asFloat(c)
		if !ok {
			return [2]float64{}, fmt.Errorf("coordinate component must be a number")
		}
		pos[i] = f
	}
	return pos, nil
}

func parsePositions(x interface{}, min int) ([][2]float64, error) {
	list, ok := x.([]interface{})
	if !ok || len(list) < min {
		return nil, fmt.Errorf("expected a list of at least %d coordinate pairs", min)
	}
	positions := make([][2]float64, 0, len(list))
	for _, item := range list {
		pos, err := parsePosition(item)
		if err != nil {
			return nil, err
		}
		positions = append(positions, pos)
	}
	return positions, nil
}

/* validateRings checks a polygon coordinate array: every ring is closed
 * and has at least four positions. exact > 0 additionally pins the outer
 * ring length (boxes are five-position single-ring polygons). */
func validateRings(x interface{}, exact int) error {
	rings, ok := x.([]interface{})
	if !ok || len(rings) == 0 {
		return fmt.Errorf("expected a list of rings")
	}
	if exact > 0 && len(rings) != 1 {
		return fmt.Errorf("expected a single ring")
	}
	for _, ring := range rings {
		positions, err := parsePositions(ring, 4)
		if err != nil {
			return err
		}
		if exact > 0 && len(positions) != exact {
			return fmt.Errorf("expected a ring of exactly %d positions", exact)
		}
		first, last := positions[0], positions[len(positions)-1]
		if first != last {
			return fmt.Errorf("ring is not closed")
		}
	}
	return nil
}

/* geojsonTypes maps spatial dtypes to their GeoJSON type names */
var geojsonTypes = map[Dtype]string{
	DtypePoint:           "Point",
	DtypeMultiPoint:      "MultiPoint",
	DtypeLineString:      "LineString",
	DtypeMultiLineString: "MultiLineString",
	DtypePolygon:         "Polygon",
	DtypeBox:             "Polygon",
	DtypeMultiPolygon:    "MultiPolygon",
}

/* geojsonLiteral renders a validated spatial value as a GeoJSON document
 * suitable for ST_GeomFromGeoJSON */
func geojsonLiteral(v *Value) (string, error) {
	typeName, ok := geojsonTypes[v.Type]
	if !ok {
		return "", structural(v, "not a geometry type")
	}
	doc, err := json.Marshal(map[string]interface{}{
		"type":        typeName,
		"coordinates": v.Value,
	})
	if err != nil {
		return "", structural(v, fmt.Sprintf("cannot serialize coordinates: %v", err))
	}
	return string(doc), nil
}
