/*-------------------------------------------------------------------------
 *
 * compile.go
 *    Leaf predicate compiler
 *
 * Converts one leaf comparison of a filter expression into a verified,
 * entity-bound predicate set: a parameterized sub-query enumerating the
 * owning-entity row identifiers that satisfy the comparison. Literal
 * values travel exclusively as bind parameters; column references come
 * from the constant registry, never from client input.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <admin@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/filter/compile.go
 *
 *-------------------------------------------------------------------------
 */

package filter

import (
	"fmt"
	"strings"
)

/* PredicateSet is the compiled output of one leaf comparison. SQL selects
 * the owning row identifier (aliased "id") with ? placeholders; Args holds
 * the bind parameters in order. Predicate sets are transient per-compile
 * values and are never persisted. */
type PredicateSet struct {
	Entity Entity
	SQL    string
	Args   []interface{}
}

/* comparisonTemplates maps direct operators to their SQL shape. Spatial
 * argument order is fixed: inside(a, b) means a is covered by b. */
var comparisonTemplates = map[Operator]string{
	OpEq:         "%s = %s",
	OpNe:         "%s <> %s",
	OpGt:         "%s > %s",
	OpGe:         "%s >= %s",
	OpLt:         "%s < %s",
	OpLe:         "%s <= %s",
	OpIntersects: "ST_Intersects(%s, %s)",
	OpInside:     "ST_Covers(%[2]s, %[1]s)",
	OpOutside:    "NOT ST_Covers(%[2]s, %[1]s)",
}

/* metadataCasts maps dtypes to the SQL cast applied after indexing a JSONB
 * metadata column by key. The %s placeholder is the column, the ? the key. */
var metadataCasts = map[Dtype]string{
	DtypeBool:            "(%s ->> ?)::boolean",
	DtypeInteger:         "(%s ->> ?)::integer",
	DtypeFloat:           "(%s ->> ?)::double precision",
	DtypeString:          "%s ->> ?",
	DtypeTaskType:        "%s ->> ?",
	DtypeDatetime:        "(%s ->> ?)::timestamptz",
	DtypeDate:            "(%s ->> ?)::timestamptz",
	DtypeTime:            "(%s ->> ?)::interval",
	DtypeDuration:        "(%s ->> ?)::interval",
	DtypePoint:           "ST_GeomFromGeoJSON(%s -> ?)",
	DtypeMultiPoint:      "ST_GeomFromGeoJSON(%s -> ?)",
	DtypeLineString:      "ST_GeomFromGeoJSON(%s -> ?)",
	DtypeMultiLineString: "ST_GeomFromGeoJSON(%s -> ?)",
	DtypePolygon:         "ST_GeomFromGeoJSON(%s -> ?)",
	DtypeBox:             "ST_GeomFromGeoJSON(%s -> ?)",
	DtypeMultiPolygon:    "ST_GeomFromGeoJSON(%s -> ?)",
}

/* CompileLeaf compiles a single comparison into a predicate set.
 * Preconditions: the operator must fall inside the symbol's effective
 * category set, and the value's type must agree with the symbol's dtype
 * (or with the attribute modifier's numeric output when one is applied).
 * All violations surface as typed compile-time errors. */
func CompileLeaf(op Operator, sym *Symbol, val *Value) (*PredicateSet, error) {
	if sym == nil {
		return nil, &StructuralError{Reason: "comparison without a symbol operand"}
	}
	own, ok := symbolOwners[sym.Name]
	if !ok {
		return nil, &SymbolError{Name: sym.Name}
	}
	if expected, fixed := symbolDtypes[sym.Name]; fixed && sym.Dtype != expected {
		return nil, &TypeMismatchError{Symbol: sym.Name, Dtype: sym.Dtype, Expected: expected}
	}

	cats, err := effectiveCategories(sym)
	if err != nil {
		return nil, err
	}
	opCat, ok := operatorCategory[op]
	if !ok || !cats[opCat] {
		return nil, &UnsupportedOperatorError{Op: op, Symbol: sym.Name, Dtype: sym.Dtype}
	}

	if op == OpIsNull || op == OpIsNotNull {
		if val != nil {
			return nil, &StructuralError{Reason: fmt.Sprintf("'%s' takes no value operand", op)}
		}
	} else {
		if val == nil {
			return nil, &StructuralError{Reason: fmt.Sprintf("'%s' requires a value operand", op)}
		}
		if err := checkOperandTypes(sym, val); err != nil {
			return nil, err
		}
		if err := val.Validate(); err != nil {
			return nil, err
		}
	}

	/* Composite label symbol compares against both key and value columns */
	if own.ValueColumn == "" {
		return compileLabelLeaf(op, sym, val, own)
	}

	var args []interface{}

	lhs := own.ValueColumn
	if sym.Key != "" {
		if !symbolSupportsKey[sym.Name] {
			return nil, &KeyAccessError{Name: sym.Name, Key: sym.Key}
		}
		cast, ok := metadataCasts[sym.Dtype]
		if !ok {
			return nil, &StructuralError{Reason: fmt.Sprintf("dtype '%s' cannot be read from metadata", sym.Dtype)}
		}
		lhs = fmt.Sprintf(cast, lhs)
		args = append(args, sym.Key)
	}
	if sym.Attribute != "" {
		lhs = fmt.Sprintf(attributeTransforms[sym.Attribute][sym.Name], lhs)
	}

	var predicate string
	switch op {
	case OpIsNull:
		predicate = lhs + " IS NULL"
	case OpIsNotNull:
		predicate = lhs + " IS NOT NULL"
	default:
		rhs, rhsArgs, err := castValue(val)
		if err != nil {
			return nil, err
		}
		/* The attribute modifier applies to both operands so units stay
		 * consistent; numeric literals are already in the output unit. */
		if sym.Attribute != "" && spatialDtypes[val.Type] {
			rhs = fmt.Sprintf("ST_Area(%s)", rhs)
		}
		args = append(args, rhsArgs...)
		predicate = fmt.Sprintf(comparisonTemplates[op], lhs, rhs)
	}

	return &PredicateSet{
		Entity: own.Entity,
		SQL:    fmt.Sprintf("SELECT %s AS id FROM %s AS %s WHERE %s", own.IDColumn, own.Table, tableAlias(own.Table), predicate),
		Args:   args,
	}, nil
}

/* compileLabelLeaf handles annotation.labels, which compares a whole
 * (key, value) pair rather than a single column */
func compileLabelLeaf(op Operator, sym *Symbol, val *Value, own owner) (*PredicateSet, error) {
	if op != OpEq && op != OpNe {
		return nil, &UnsupportedOperatorError{Op: op, Symbol: sym.Name, Dtype: sym.Dtype}
	}
	pair, ok := val.Value.(map[string]interface{})
	if !ok {
		return nil, &TypeMismatchError{Symbol: sym.Name, Dtype: sym.Dtype, ValueType: val.Type}
	}
	predicate := "labels.key = ? AND labels.value = ?"
	if op == OpNe {
		predicate = "NOT (" + predicate + ")"
	}
	return &PredicateSet{
		Entity: own.Entity,
		SQL:    fmt.Sprintf("SELECT %s AS id FROM %s AS %s WHERE %s", own.IDColumn, own.Table, tableAlias(own.Table), predicate),
		Args:   []interface{}{pair["key"], pair["value"]},
	}, nil
}

/* checkOperandTypes enforces strict dtype equality between symbol and
 * value, with one carve-out: under an attribute modifier the comparison
 * happens in the modifier's output unit, so numeric literals are accepted
 * alongside same-dtype geometry. */
func checkOperandTypes(sym *Symbol, val *Value) error {
	if sym.Attribute != "" {
		if val.Type == DtypeInteger || val.Type == DtypeFloat || val.Type == sym.Dtype {
			return nil
		}
		return &TypeMismatchError{Symbol: sym.Name, Dtype: sym.Dtype, ValueType: val.Type}
	}
	if val.Type != sym.Dtype {
		return &TypeMismatchError{Symbol: sym.Name, Dtype: sym.Dtype, ValueType: val.Type}
	}
	return nil
}

/* castValue renders a literal as a parameterized SQL fragment */
func castValue(val *Value) (string, []interface{}, error) {
	switch val.Type {
	case DtypeBool, DtypeString, DtypeTaskType:
		return "?", []interface{}{val.Value}, nil
	case DtypeInteger, DtypeFloat:
		f, _ := asFloat(val.Value)
		if val.Type == DtypeInteger {
			return "?", []interface{}{int64(f)}, nil
		}
		return "?", []interface{}{f}, nil
	case DtypeDatetime, DtypeDate:
		return "?::timestamptz", []interface{}{val.Value}, nil
	case DtypeTime:
		return "?::interval", []interface{}{val.Value}, nil
	case DtypeDuration:
		f, _ := asFloat(val.Value)
		return "?::interval", []interface{}{fmt.Sprintf("%g seconds", f)}, nil
	default:
		if spatialDtypes[val.Type] {
			doc, err := geojsonLiteral(val)
			if err != nil {
				return "", nil, err
			}
			return "ST_GeomFromGeoJSON(?)", []interface{}{doc}, nil
		}
		return "", nil, structural(val, "no SQL literal form")
	}
}

/* tableAlias strips the schema qualifier so registry column references
 * like datums.uid resolve against the aliased table */
func tableAlias(table string) string {
	if i := strings.LastIndex(table, "."); i >= 0 {
		return table[i+1:]
	}
	return table
}
