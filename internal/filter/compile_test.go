/*-------------------------------------------------------------------------
 *
 * compile_test.go
 *    Tests for predicate compilation
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/filter/compile_test.go
 *
 *-------------------------------------------------------------------------
 */

package filter

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestCompileLeaf_LabelKeyEquality(t *testing.T) {
	sym := &Symbol{Name: "label.key", Dtype: DtypeString}
	val := &Value{Type: DtypeString, Value: "animal"}

	set, err := CompileLeaf(OpEq, sym, val)
	if err != nil {
		t.Fatalf("CompileLeaf() error = %v", err)
	}
	if set.Entity != EntityLabel {
		t.Errorf("Expected label entity, got %s", set.Entity)
	}
	expected := "SELECT labels.id AS id FROM verdict.labels AS labels WHERE labels.key = ?"
	if set.SQL != expected {
		t.Errorf("Expected SQL %q, got %q", expected, set.SQL)
	}
	if len(set.Args) != 1 || set.Args[0] != "animal" {
		t.Errorf("Expected args [animal], got %v", set.Args)
	}
}

func TestCompileLeaf_Deterministic(t *testing.T) {
	sym := &Symbol{Name: "datum.metadata", Key: "width", Dtype: DtypeInteger}
	val := &Value{Type: DtypeInteger, Value: float64(640)}

	first, err := CompileLeaf(OpGe, sym, val)
	if err != nil {
		t.Fatalf("CompileLeaf() error = %v", err)
	}
	second, err := CompileLeaf(OpGe, sym, val)
	if err != nil {
		t.Fatalf("CompileLeaf() second run error = %v", err)
	}
	if first.SQL != second.SQL {
		t.Errorf("Non-deterministic SQL: %q vs %q", first.SQL, second.SQL)
	}
	if !reflect.DeepEqual(first.Args, second.Args) {
		t.Errorf("Non-deterministic args: %v vs %v", first.Args, second.Args)
	}
}

func TestCompileLeaf_MetadataKeyCast(t *testing.T) {
	sym := &Symbol{Name: "datum.metadata", Key: "width", Dtype: DtypeInteger}
	val := &Value{Type: DtypeInteger, Value: float64(640)}

	set, err := CompileLeaf(OpGt, sym, val)
	if err != nil {
		t.Fatalf("CompileLeaf() error = %v", err)
	}
	expected := "SELECT datums.id AS id FROM verdict.datums AS datums WHERE (datums.metadata ->> ?)::integer > ?"
	if set.SQL != expected {
		t.Errorf("Expected SQL %q, got %q", expected, set.SQL)
	}
	if len(set.Args) != 2 || set.Args[0] != "width" || set.Args[1] != int64(640) {
		t.Errorf("Expected args [width 640], got %v", set.Args)
	}
}

func TestCompileLeaf_RasterAreaAttribute(t *testing.T) {
	sym := &Symbol{Name: "annotation.raster", Attribute: "area", Dtype: DtypeRaster}
	val := &Value{Type: DtypeInteger, Value: float64(100)}

	set, err := CompileLeaf(OpGt, sym, val)
	if err != nil {
		t.Fatalf("CompileLeaf() error = %v", err)
	}
	expected := "SELECT annotations.id AS id FROM verdict.annotations AS annotations WHERE ST_Count(annotations.raster) > ?"
	if set.SQL != expected {
		t.Errorf("Expected SQL %q, got %q", expected, set.SQL)
	}
}

func TestCompileLeaf_PolygonAreaAppliesModifierToBothOperands(t *testing.T) {
	sym := &Symbol{Name: "annotation.polygon", Attribute: "area", Dtype: DtypePolygon}
	val := &Value{
		Type:  DtypePolygon,
		Value: []interface{}{ring(0, 0, 0, 1, 2, 0)},
	}

	set, err := CompileLeaf(OpEq, sym, val)
	if err != nil {
		t.Fatalf("CompileLeaf() error = %v", err)
	}
	expected := "SELECT annotations.id AS id FROM verdict.annotations AS annotations WHERE ST_Area(annotations.polygon) = ST_Area(ST_GeomFromGeoJSON(?))"
	if set.SQL != expected {
		t.Errorf("Expected SQL %q, got %q", expected, set.SQL)
	}
}

func TestCompileLeaf_IsNotNull(t *testing.T) {
	sym := &Symbol{Name: "annotation.raster", Dtype: DtypeRaster}

	set, err := CompileLeaf(OpIsNotNull, sym, nil)
	if err != nil {
		t.Fatalf("CompileLeaf() error = %v", err)
	}
	expected := "SELECT annotations.id AS id FROM verdict.annotations AS annotations WHERE annotations.raster IS NOT NULL"
	if set.SQL != expected {
		t.Errorf("Expected SQL %q, got %q", expected, set.SQL)
	}
	if len(set.Args) != 0 {
		t.Errorf("Expected no args, got %v", set.Args)
	}
}

func TestCompileLeaf_SpatialOperandOrder(t *testing.T) {
	sym := &Symbol{Name: "annotation.box", Dtype: DtypeBox}
	val := &Value{
		Type:  DtypeBox,
		Value: []interface{}{ring(0, 0, 0, 10, 10, 10, 10, 0)},
	}

	set, err := CompileLeaf(OpInside, sym, val)
	if err != nil {
		t.Fatalf("CompileLeaf() error = %v", err)
	}
	/* inside(a, b) means a is covered by b, so the literal leads */
	expected := "SELECT annotations.id AS id FROM verdict.annotations AS annotations WHERE ST_Covers(ST_GeomFromGeoJSON(?), annotations.box)"
	if set.SQL != expected {
		t.Errorf("Expected SQL %q, got %q", expected, set.SQL)
	}
}

func TestCompileLeaf_TypeMismatch(t *testing.T) {
	sym := &Symbol{Name: "datum.metadata", Key: "width", Dtype: DtypeInteger}
	val := &Value{Type: DtypeString, Value: "wide"}

	_, err := CompileLeaf(OpEq, sym, val)
	var mismatch *TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Expected TypeMismatchError, got %v", err)
	}
	if mismatch.Dtype != DtypeInteger || mismatch.ValueType != DtypeString {
		t.Errorf("Unexpected mismatch details: %+v", mismatch)
	}
}

func TestCompileLeaf_DeclaredDtypeMismatch(t *testing.T) {
	/* A declaration disagreeing with the attribute's own dtype must be
	 * rejected before any SQL is built, even when symbol and value agree
	 * with each other. */
	cases := []struct {
		name string
		sym  *Symbol
		val  *Value
	}{
		{
			"integer dataset.name",
			&Symbol{Name: "dataset.name", Dtype: DtypeInteger},
			&Value{Type: DtypeInteger, Value: float64(7)},
		},
		{
			"string annotation.labels",
			&Symbol{Name: "annotation.labels", Dtype: DtypeString},
			&Value{Type: DtypeString, Value: "animal"},
		},
		{
			"polygon annotation.raster",
			&Symbol{Name: "annotation.raster", Dtype: DtypePolygon},
			nil,
		},
	}
	for _, tc := range cases {
		op := OpEq
		if tc.val == nil {
			op = OpIsNotNull
		}
		_, err := CompileLeaf(op, tc.sym, tc.val)
		var mismatch *TypeMismatchError
		if !errors.As(err, &mismatch) {
			t.Errorf("%s: expected TypeMismatchError, got %v", tc.name, err)
			continue
		}
		if mismatch.Expected == "" {
			t.Errorf("%s: expected the pinned dtype in the error, got %+v", tc.name, mismatch)
		}
	}
}

func TestCompileLeaf_MetadataColumnNaming(t *testing.T) {
	/* The four metadata symbols must reference the metadata column the
	 * schema actually declares. */
	columns := map[string]string{
		"dataset.metadata":    "datasets.metadata ->> ?",
		"model.metadata":      "models.metadata ->> ?",
		"datum.metadata":      "datums.metadata ->> ?",
		"annotation.metadata": "annotations.metadata ->> ?",
	}
	for name, fragment := range columns {
		sym := &Symbol{Name: name, Key: "source", Dtype: DtypeString}
		val := &Value{Type: DtypeString, Value: "synthetic"}
		set, err := CompileLeaf(OpEq, sym, val)
		if err != nil {
			t.Fatalf("CompileLeaf(%s) error = %v", name, err)
		}
		if !strings.Contains(set.SQL, fragment) {
			t.Errorf("%s: expected SQL containing %q, got %q", name, fragment, set.SQL)
		}
	}
}

func TestCompileLeaf_UnknownSymbol(t *testing.T) {
	sym := &Symbol{Name: "datum.nonsense", Dtype: DtypeString}
	val := &Value{Type: DtypeString, Value: "x"}

	_, err := CompileLeaf(OpEq, sym, val)
	var symErr *SymbolError
	if !errors.As(err, &symErr) {
		t.Fatalf("Expected SymbolError, got %v", err)
	}
}

func TestCompileLeaf_UnsupportedOperator(t *testing.T) {
	cases := []struct {
		name string
		op   Operator
		sym  *Symbol
		val  *Value
	}{
		{
			name: "ordering on string",
			op:   OpGt,
			sym:  &Symbol{Name: "dataset.name", Dtype: DtypeString},
			val:  &Value{Type: DtypeString, Value: "a"},
		},
		{
			name: "isnull on non-nullable column",
			op:   OpIsNull,
			sym:  &Symbol{Name: "dataset.name", Dtype: DtypeString},
		},
		{
			name: "contains is never granted",
			op:   OpContains,
			sym:  &Symbol{Name: "annotation.polygon", Dtype: DtypePolygon},
			val:  &Value{Type: DtypePolygon, Value: []interface{}{ring(0, 0, 0, 1, 1, 0)}},
		},
		{
			name: "equality on embedding",
			op:   OpEq,
			sym:  &Symbol{Name: "annotation.embedding", Dtype: DtypeEmbedding},
			val:  &Value{Type: DtypeEmbedding, Value: "x"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CompileLeaf(tc.op, tc.sym, tc.val)
			var unsupported *UnsupportedOperatorError
			if !errors.As(err, &unsupported) {
				t.Fatalf("Expected UnsupportedOperatorError, got %v", err)
			}
		})
	}
}

func TestCompileLeaf_KeyAccessOnNonDictionary(t *testing.T) {
	sym := &Symbol{Name: "dataset.name", Key: "k", Dtype: DtypeString}
	val := &Value{Type: DtypeString, Value: "x"}

	_, err := CompileLeaf(OpEq, sym, val)
	var keyErr *KeyAccessError
	if !errors.As(err, &keyErr) {
		t.Fatalf("Expected KeyAccessError, got %v", err)
	}
}

func TestCompileLeaf_UnknownAttributeModifier(t *testing.T) {
	sym := &Symbol{Name: "dataset.name", Attribute: "area", Dtype: DtypeString}
	val := &Value{Type: DtypeInteger, Value: float64(1)}

	_, err := CompileLeaf(OpGt, sym, val)
	var symErr *SymbolError
	if !errors.As(err, &symErr) {
		t.Fatalf("Expected SymbolError, got %v", err)
	}
	if symErr.Attribute != "area" {
		t.Errorf("Expected attribute in error, got %+v", symErr)
	}
}

func TestCompileLeaf_NullCheckRejectsValue(t *testing.T) {
	sym := &Symbol{Name: "annotation.box", Dtype: DtypeBox}
	val := &Value{Type: DtypeBox, Value: []interface{}{ring(0, 0, 0, 1, 1, 1, 1, 0)}}

	_, err := CompileLeaf(OpIsNull, sym, val)
	var structErr *StructuralError
	if !errors.As(err, &structErr) {
		t.Fatalf("Expected StructuralError, got %v", err)
	}
}

func TestCompileLeaf_WholeLabelComparison(t *testing.T) {
	sym := &Symbol{Name: "annotation.labels", Dtype: DtypeLabel}
	val := &Value{Type: DtypeLabel, Value: map[string]interface{}{"key": "class", "value": "dog"}}

	set, err := CompileLeaf(OpEq, sym, val)
	if err != nil {
		t.Fatalf("CompileLeaf() error = %v", err)
	}
	expected := "SELECT labels.id AS id FROM verdict.labels AS labels WHERE labels.key = ? AND labels.value = ?"
	if set.SQL != expected {
		t.Errorf("Expected SQL %q, got %q", expected, set.SQL)
	}
	if len(set.Args) != 2 || set.Args[0] != "class" || set.Args[1] != "dog" {
		t.Errorf("Expected args [class dog], got %v", set.Args)
	}
}

func TestCompileLeaf_DurationLiteral(t *testing.T) {
	sym := &Symbol{Name: "datum.metadata", Key: "elapsed", Dtype: DtypeDuration}
	val := &Value{Type: DtypeDuration, Value: 3.5}

	set, err := CompileLeaf(OpLt, sym, val)
	if err != nil {
		t.Fatalf("CompileLeaf() error = %v", err)
	}
	expected := "SELECT datums.id AS id FROM verdict.datums AS datums WHERE (datums.metadata ->> ?)::interval < ?::interval"
	if set.SQL != expected {
		t.Errorf("Expected SQL %q, got %q", expected, set.SQL)
	}
	if set.Args[1] != "3.5 seconds" {
		t.Errorf("Expected interval literal '3.5 seconds', got %v", set.Args[1])
	}
}

/* ring builds a closed coordinate ring from flat x, y pairs */
func ring(coords ...float64) []interface{} {
	positions := make([]interface{}, 0, len(coords)/2+1)
	for i := 0; i+1 < len(coords); i += 2 {
		positions = append(positions, []interface{}{coords[i], coords[i+1]})
	}
	positions = append(positions, []interface{}{coords[0], coords[1]})
	return positions
}
