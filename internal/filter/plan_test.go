/*-------------------------------------------------------------------------
 *
 * plan_test.go
 *    Tests for filter query planning
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/filter/plan_test.go
 *
 *-------------------------------------------------------------------------
 */

package filter

import (
	"errors"
	"strings"
	"testing"
)

func TestPlan_LabelKeyFilter(t *testing.T) {
	expr := labelLeaf("animal")

	query, err := Compile(expr, PivotAnnotation, LinkGroundTruths, []string{"annotations.id"})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	expectedCTE := "WITH p0 AS (SELECT labels.id AS id FROM verdict.labels AS labels WHERE labels.key = $1)"
	if !strings.HasPrefix(query.SQL, expectedCTE) {
		t.Errorf("Expected query to start with %q, got %q", expectedCTE, query.SQL)
	}
	if !strings.Contains(query.SQL, "LEFT JOIN verdict.groundtruths AS link0 ON link0.annotation_id = annotations.id") {
		t.Errorf("Expected label predicate routed through the ground-truth link, got %q", query.SQL)
	}
	if !strings.Contains(query.SQL, "LEFT JOIN p0 ON p0.id = link0.label_id") {
		t.Errorf("Expected outer join on the label predicate, got %q", query.SQL)
	}
	if !strings.Contains(query.SQL, "BOOL_OR(p0.id IS NOT NULL) AS flag0") {
		t.Errorf("Expected explicit two-valued flag conversion, got %q", query.SQL)
	}
	if !strings.HasSuffix(query.SQL, "WHERE filtered.flag0 = TRUE") {
		t.Errorf("Expected final filter on flag0, got %q", query.SQL)
	}
	if len(query.Args) != 1 || query.Args[0] != "animal" {
		t.Errorf("Expected args [animal], got %v", query.Args)
	}
}

func TestPlan_RasterAreaConjunction(t *testing.T) {
	expr := &Expr{
		Op: OpAnd,
		Args: []*Expr{
			{
				Op:  OpIsNotNull,
				Sym: &Symbol{Name: "annotation.raster", Dtype: DtypeRaster},
			},
			{
				Op:  OpGt,
				Sym: &Symbol{Name: "annotation.raster", Attribute: "area", Dtype: DtypeRaster},
				Val: &Value{Type: DtypeInteger, Value: float64(100)},
			},
		},
	}

	query, err := Compile(expr, PivotAnnotation, LinkGroundTruths, []string{"annotations.id"})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !strings.Contains(query.SQL, "annotations.raster IS NOT NULL") {
		t.Errorf("Expected raster null check, got %q", query.SQL)
	}
	if !strings.Contains(query.SQL, "ST_Count(annotations.raster) > $1") {
		t.Errorf("Expected pixel-count comparison, got %q", query.SQL)
	}
	if !strings.HasSuffix(query.SQL, "WHERE (filtered.flag0 = TRUE AND filtered.flag1 = TRUE)") {
		t.Errorf("Expected conjunction of both flags, got %q", query.SQL)
	}
	if len(query.Args) != 1 || query.Args[0] != int64(100) {
		t.Errorf("Expected args [100], got %v", query.Args)
	}
}

func TestPlan_NotRendersLogicalNegation(t *testing.T) {
	expr := &Expr{Op: OpNot, Arg: labelLeaf("animal")}

	query, err := Compile(expr, PivotAnnotation, LinkGroundTruths, []string{"annotations.id"})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	/* Negation must be NOT(flag = TRUE), never flag = FALSE: the two
	 * diverge as soon as the flag source can produce NULL. */
	if !strings.HasSuffix(query.SQL, "WHERE NOT (filtered.flag0 = TRUE)") {
		t.Errorf("Expected logical negation of the flag, got %q", query.SQL)
	}
	if strings.Contains(query.SQL, "= FALSE") {
		t.Errorf("Negation rendered as equality against FALSE: %q", query.SQL)
	}
}

func TestPlan_NotOverSubtree(t *testing.T) {
	expr := &Expr{
		Op: OpNot,
		Arg: &Expr{
			Op:   OpOr,
			Args: []*Expr{labelLeaf("a"), labelLeaf("b")},
		},
	}

	query, err := Compile(expr, PivotAnnotation, LinkGroundTruths, []string{"annotations.id"})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !strings.HasSuffix(query.SQL, "WHERE NOT ((filtered.flag0 = TRUE OR filtered.flag1 = TRUE))") {
		t.Errorf("Expected negated disjunction, got %q", query.SQL)
	}
}

func TestPlan_XorRendersParityCheck(t *testing.T) {
	expr := &Expr{
		Op:   OpXor,
		Args: []*Expr{labelLeaf("a"), labelLeaf("b"), labelLeaf("c")},
	}

	query, err := Compile(expr, PivotAnnotation, LinkGroundTruths, []string{"annotations.id"})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	expected := "WHERE ((filtered.flag0 = TRUE)::int + (filtered.flag1 = TRUE)::int + (filtered.flag2 = TRUE)::int) % 2 = 1"
	if !strings.HasSuffix(query.SQL, expected) {
		t.Errorf("Expected parity check %q, got %q", expected, query.SQL)
	}
}

func TestPlan_DatumPivot(t *testing.T) {
	expr := &Expr{
		Op:  OpEq,
		Sym: &Symbol{Name: "datum.uid", Dtype: DtypeString},
		Val: &Value{Type: DtypeString, Value: "uid123"},
	}

	query, err := Compile(expr, PivotDatum, LinkPredictions, []string{"datums.id", "datums.uid"})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !strings.Contains(query.SQL, "datums.id AS pivot_id") {
		t.Errorf("Expected datum pivot id, got %q", query.SQL)
	}
	if !strings.Contains(query.SQL, "GROUP BY datums.id") {
		t.Errorf("Expected aggregation keyed by datum, got %q", query.SQL)
	}
	if !strings.Contains(query.SQL, "JOIN verdict.predictions AS predictions ON predictions.annotation_id = annotations.id") {
		t.Errorf("Expected prediction link in the final join, got %q", query.SQL)
	}
	if !strings.Contains(query.SQL, "JOIN filtered ON filtered.pivot_id = datums.id") {
		t.Errorf("Expected final join on datum pivot, got %q", query.SQL)
	}
}

func TestPlan_ModelPredicateJoinsModels(t *testing.T) {
	expr := &Expr{
		Op:  OpEq,
		Sym: &Symbol{Name: "model.name", Dtype: DtypeString},
		Val: &Value{Type: DtypeString, Value: "resnet50"},
	}

	query, err := Compile(expr, PivotAnnotation, LinkPredictions, []string{"annotations.id"})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !strings.Contains(query.SQL, "LEFT JOIN verdict.models AS models ON models.id = annotations.model_id") {
		t.Errorf("Expected model join in aggregation, got %q", query.SQL)
	}
	if !strings.Contains(query.SQL, "LEFT JOIN p0 ON p0.id = models.id") {
		t.Errorf("Expected predicate joined on models.id, got %q", query.SQL)
	}
}

func TestPlan_RejectsEmptyInput(t *testing.T) {
	_, err := Plan(nil, nil, PivotAnnotation, LinkGroundTruths, []string{"annotations.id"})
	var structErr *StructuralError
	if !errors.As(err, &structErr) {
		t.Fatalf("Expected StructuralError, got %v", err)
	}

	skeleton := &Skeleton{Leaf: 0}
	sets := []*PredicateSet{{Entity: EntityDatum, SQL: "SELECT datums.id AS id FROM verdict.datums AS datums"}}
	_, err = Plan(skeleton, sets, Pivot("dataset"), LinkGroundTruths, []string{"datasets.id"})
	if !errors.As(err, &structErr) {
		t.Fatalf("Expected StructuralError for bad pivot, got %v", err)
	}
	_, err = Plan(skeleton, sets, PivotDatum, LinkTable("nonsense"), []string{"datums.id"})
	if !errors.As(err, &structErr) {
		t.Fatalf("Expected StructuralError for bad link table, got %v", err)
	}
}

func TestPlan_LeafIndexOutOfRange(t *testing.T) {
	skeleton := &Skeleton{Leaf: 3}
	sets := []*PredicateSet{{Entity: EntityDatum, SQL: "SELECT datums.id AS id FROM verdict.datums AS datums"}}

	_, err := Plan(skeleton, sets, PivotDatum, LinkGroundTruths, []string{"datums.id"})
	var structErr *StructuralError
	if !errors.As(err, &structErr) {
		t.Fatalf("Expected StructuralError, got %v", err)
	}
}
