/*-------------------------------------------------------------------------
 *
 * ast_test.go
 *    Tests for filter expression decoding
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/filter/ast_test.go
 *
 *-------------------------------------------------------------------------
 */

package filter

import (
	"errors"
	"testing"
)

func TestParse_ComparisonRoundTrip(t *testing.T) {
	wire := `{"op":"eq","lhs":{"name":"label.key","dtype":"string"},"rhs":{"type":"string","value":"animal"}}`

	expr, err := Parse([]byte(wire))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if expr.Op != OpEq {
		t.Errorf("Expected op eq, got %s", expr.Op)
	}
	if expr.Sym == nil || expr.Sym.Name != "label.key" || expr.Sym.Dtype != DtypeString {
		t.Errorf("Unexpected lhs symbol: %+v", expr.Sym)
	}
	if expr.Val == nil || expr.Val.Type != DtypeString || expr.Val.Value != "animal" {
		t.Errorf("Unexpected rhs value: %+v", expr.Val)
	}

	out, err := Canonical(expr)
	if err != nil {
		t.Fatalf("Canonical() error = %v", err)
	}
	if string(out) != wire {
		t.Errorf("Canonical form diverged.\nwant %s\ngot  %s", wire, out)
	}
}

func TestParse_NestedTreeRoundTrip(t *testing.T) {
	wire := `{"op":"and","args":[` +
		`{"op":"isnotnull","arg":{"name":"annotation.raster","dtype":"raster"}},` +
		`{"op":"not","arg":{"op":"eq","lhs":{"name":"dataset.name","dtype":"string"},"rhs":{"type":"string","value":"coco"}}}` +
		`]}`

	expr, err := Parse([]byte(wire))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if expr.Op != OpAnd || len(expr.Args) != 2 {
		t.Fatalf("Expected 2-arm conjunction, got %+v", expr)
	}
	if expr.Args[0].Op != OpIsNotNull || expr.Args[0].Sym.Name != "annotation.raster" {
		t.Errorf("Unexpected first arm: %+v", expr.Args[0])
	}
	if expr.Args[1].Op != OpNot || expr.Args[1].Arg == nil || expr.Args[1].Arg.Op != OpEq {
		t.Errorf("Unexpected second arm: %+v", expr.Args[1])
	}

	out, err := Canonical(expr)
	if err != nil {
		t.Fatalf("Canonical() error = %v", err)
	}
	if string(out) != wire {
		t.Errorf("Canonical form diverged.\nwant %s\ngot  %s", wire, out)
	}
}

func TestParse_CanonicalIsDeterministic(t *testing.T) {
	wire := `{"op":"xor","args":[` +
		`{"op":"gt","lhs":{"name":"annotation.raster","attribute":"area","dtype":"raster"},"rhs":{"type":"integer","value":100}},` +
		`{"op":"isnull","arg":{"name":"annotation.box","dtype":"box"}}` +
		`]}`

	expr, err := Parse([]byte(wire))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	first, err := Canonical(expr)
	if err != nil {
		t.Fatalf("Canonical() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Canonical(expr)
		if err != nil {
			t.Fatalf("Canonical() error = %v", err)
		}
		if string(again) != string(first) {
			t.Fatalf("Canonical form is unstable: %s vs %s", first, again)
		}
	}
}

func TestParse_StructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		wire string
	}{
		{"missing operator", `{"lhs":{"name":"label.key","dtype":"string"}}`},
		{"unknown operator", `{"op":"between","lhs":{"name":"label.key","dtype":"string"},"rhs":{"type":"string","value":"x"}}`},
		{"comparison missing rhs", `{"op":"eq","lhs":{"name":"label.key","dtype":"string"}}`},
		{"comparison lhs not a symbol", `{"op":"eq","lhs":{"type":"string","value":"x"},"rhs":{"type":"string","value":"x"}}`},
		{"rhs missing declared type", `{"op":"eq","lhs":{"name":"label.key","dtype":"string"},"rhs":{"value":"x"}}`},
		{"not without argument", `{"op":"not"}`},
		{"not with argument list", `{"op":"not","arg":{"op":"isnull","arg":{"name":"annotation.box","dtype":"box"}},"args":[]}`},
		{"null check on non-symbol", `{"op":"isnull","arg":{"op":"and","args":[]}}`},
		{"empty conjunction", `{"op":"and","args":[]}`},
		{"nested empty disjunction", `{"op":"not","arg":{"op":"or","args":[]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.wire))
			var structErr *StructuralError
			if !errors.As(err, &structErr) {
				t.Fatalf("Expected StructuralError, got %v", err)
			}
		})
	}
}

func TestParse_SymbolKeyAndAttribute(t *testing.T) {
	wire := `{"op":"eq","lhs":{"name":"datum.metadata","key":"weather","dtype":"string"},"rhs":{"type":"string","value":"rain"}}`

	expr, err := Parse([]byte(wire))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if expr.Sym.Key != "weather" {
		t.Errorf("Expected key 'weather', got %q", expr.Sym.Key)
	}
	if expr.Sym.Attribute != "" {
		t.Errorf("Expected no attribute modifier, got %q", expr.Sym.Attribute)
	}
}
