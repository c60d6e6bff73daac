/*-------------------------------------------------------------------------
 *
 * linearize_test.go
 *    Tests for filter linearization
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/filter/linearize_test.go
 *
 *-------------------------------------------------------------------------
 */

package filter

import (
	"encoding/json"
	"errors"
	"testing"
)

func labelLeaf(value string) *Expr {
	return &Expr{
		Op:  OpEq,
		Sym: &Symbol{Name: "label.key", Dtype: DtypeString},
		Val: &Value{Type: DtypeString, Value: value},
	}
}

func TestLinearize_OnePredicatePerLeaf(t *testing.T) {
	expr := &Expr{
		Op: OpAnd,
		Args: []*Expr{
			labelLeaf("a"),
			{Op: OpNot, Arg: labelLeaf("b")},
			{
				Op: OpOr,
				Args: []*Expr{
					labelLeaf("c"),
					labelLeaf("a"), /* duplicate leaves compile twice */
				},
			},
		},
	}

	skeleton, sets, err := Linearize(expr)
	if err != nil {
		t.Fatalf("Linearize() error = %v", err)
	}
	if len(sets) != 4 {
		t.Errorf("Expected 4 predicate sets, got %d", len(sets))
	}
	if skeleton.Op != OpAnd || len(skeleton.Args) != 3 {
		t.Fatalf("Unexpected skeleton root: %+v", skeleton)
	}
	if !skeleton.Args[0].IsLeaf() || skeleton.Args[0].Leaf != 0 {
		t.Errorf("Expected first branch leaf 0, got %+v", skeleton.Args[0])
	}
	if skeleton.Args[1].Op != OpNot || skeleton.Args[1].Arg.Leaf != 1 {
		t.Errorf("Expected not(1), got %+v", skeleton.Args[1])
	}
	inner := skeleton.Args[2]
	if inner.Op != OpOr || inner.Args[0].Leaf != 2 || inner.Args[1].Leaf != 3 {
		t.Errorf("Expected or(2, 3), got %+v", inner)
	}
}

func TestLinearize_SkeletonSerialization(t *testing.T) {
	expr := &Expr{
		Op: OpAnd,
		Args: []*Expr{
			labelLeaf("a"),
			{Op: OpNot, Arg: labelLeaf("b")},
			labelLeaf("c"),
		},
	}

	skeleton, _, err := Linearize(expr)
	if err != nil {
		t.Fatalf("Linearize() error = %v", err)
	}
	data, err := json.Marshal(skeleton)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	expected := `{"and":[0,{"not":1},2]}`
	if string(data) != expected {
		t.Errorf("Expected skeleton %s, got %s", expected, data)
	}
}

func TestLinearize_EmptyNAryRejected(t *testing.T) {
	expr := &Expr{Op: OpOr, Args: []*Expr{}}

	_, _, err := Linearize(expr)
	var structErr *StructuralError
	if !errors.As(err, &structErr) {
		t.Fatalf("Expected StructuralError, got %v", err)
	}
}

func TestSkeleton_EvaluateRoundTrip(t *testing.T) {
	/* {"and": [0, {"not": 1}, 2]} against flags [true, false, true] */
	skeleton := &Skeleton{
		Op: OpAnd,
		Args: []*Skeleton{
			{Leaf: 0},
			{Op: OpNot, Arg: &Skeleton{Leaf: 1}},
			{Leaf: 2},
		},
	}

	result, err := skeleton.Evaluate([]bool{true, false, true})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !result {
		t.Errorf("Expected true AND (NOT false) AND true = true")
	}

	result, err = skeleton.Evaluate([]bool{true, true, true})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if result {
		t.Errorf("Expected true AND (NOT true) AND true = false")
	}
}

func TestSkeleton_EvaluateXorParity(t *testing.T) {
	skeleton := &Skeleton{
		Op: OpXor,
		Args: []*Skeleton{
			{Leaf: 0},
			{Leaf: 1},
			{Leaf: 2},
		},
	}

	cases := []struct {
		flags    []bool
		expected bool
	}{
		{[]bool{false, false, false}, false},
		{[]bool{true, false, false}, true},
		{[]bool{true, true, false}, false},
		{[]bool{true, true, true}, true},
	}
	for _, tc := range cases {
		result, err := skeleton.Evaluate(tc.flags)
		if err != nil {
			t.Fatalf("Evaluate(%v) error = %v", tc.flags, err)
		}
		if result != tc.expected {
			t.Errorf("Evaluate(%v) = %v, expected %v", tc.flags, result, tc.expected)
		}
	}
}

func TestSkeleton_EvaluateOutOfRangeLeaf(t *testing.T) {
	skeleton := &Skeleton{Leaf: 5}

	_, err := skeleton.Evaluate([]bool{true})
	var structErr *StructuralError
	if !errors.As(err, &structErr) {
		t.Fatalf("Expected StructuralError, got %v", err)
	}
}
