/*-------------------------------------------------------------------------
 *
 * plan.go
 *    Query planner for compiled filters
 *
 * Joins every predicate set onto a chosen pivot entity, producing one
 * boolean membership flag per predicate per pivot row, then renders the
 * formula skeleton into a final boolean expression over those flags.
 * Outer-join null handling is converted to two-valued flags inside the
 * aggregation, so the final WHERE clause never sees SQL NULL logic.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <admin@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/filter/plan.go
 *
 *-------------------------------------------------------------------------
 */

package filter

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

/* Pivot is the entity granularity at which filtered rows are returned */
type Pivot string

const (
	PivotAnnotation Pivot = "annotation"
	PivotDatum      Pivot = "datum"
)

/* LinkTable selects which annotation-to-label linking table routes
 * label-owned predicates */
type LinkTable string

const (
	LinkGroundTruths LinkTable = "groundtruths"
	LinkPredictions  LinkTable = "predictions"
)

/* FinalQuery is a complete, executable filtered query. SQL uses $N
 * placeholders; Args holds the bind parameters in order. */
type FinalQuery struct {
	SQL  string
	Args []interface{}
}

var pivotIDColumns = map[Pivot]string{
	PivotAnnotation: "annotations.id",
	PivotDatum:      "datums.id",
}

/* Plan assembles the final query: predicate-set CTEs, an aggregation CTE
 * keyed by pivot id with one flag per predicate, and a select of the
 * caller's columns joined through the dataset hierarchy and filtered by
 * the rendered formula. Columns are supplied by internal callers from
 * fixed sets, never from client input. */
func Plan(skeleton *Skeleton, sets []*PredicateSet, pivot Pivot, link LinkTable, columns []string) (*FinalQuery, error) {
	if skeleton == nil || len(sets) == 0 {
		return nil, &StructuralError{Reason: "nothing to plan: empty skeleton or predicate list"}
	}
	if len(columns) == 0 {
		return nil, &StructuralError{Reason: "no output columns requested"}
	}
	pivotID, ok := pivotIDColumns[pivot]
	if !ok {
		return nil, &StructuralError{Reason: fmt.Sprintf("unsupported pivot entity '%s'", pivot)}
	}
	if link != LinkGroundTruths && link != LinkPredictions {
		return nil, &StructuralError{Reason: fmt.Sprintf("unsupported link table '%s'", link)}
	}

	var b strings.Builder
	var args []interface{}

	b.WriteString("WITH ")
	for i, set := range sets {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "p%d AS (%s)", i, set.SQL)
		args = append(args, set.Args...)
	}

	/* Aggregation CTE: flags are grouped per pivot row so an annotation
	 * carrying several labels still yields exactly one row */
	b.WriteString(", filtered AS (SELECT ")
	fmt.Fprintf(&b, "%s AS pivot_id", pivotID)
	for i := range sets {
		fmt.Fprintf(&b, ", BOOL_OR(p%d.id IS NOT NULL) AS flag%d", i, i)
	}
	b.WriteString(" FROM verdict.annotations AS annotations")
	b.WriteString(" JOIN verdict.datums AS datums ON datums.id = annotations.datum_id")
	b.WriteString(" JOIN verdict.datasets AS datasets ON datasets.id = datums.dataset_id")
	if hasEntity(sets, EntityModel) {
		b.WriteString(" LEFT JOIN verdict.models AS models ON models.id = annotations.model_id")
	}
	if hasEntity(sets, EntityEmbedding) {
		b.WriteString(" LEFT JOIN verdict.embeddings AS embeddings ON embeddings.annotation_id = annotations.id")
	}
	for i, set := range sets {
		if set.Entity == EntityLabel {
			/* Label rows are reachable only through the linking table */
			fmt.Fprintf(&b, " LEFT JOIN verdict.%s AS link%d ON link%d.annotation_id = annotations.id", link, i, i)
			fmt.Fprintf(&b, " LEFT JOIN p%d ON p%d.id = link%d.label_id", i, i, i)
			continue
		}
		rowID, err := entityRowID(set.Entity)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&b, " LEFT JOIN p%d ON p%d.id = %s", i, i, rowID)
	}
	fmt.Fprintf(&b, " GROUP BY %s)", pivotID)

	formula, err := renderFormula(skeleton, len(sets))
	if err != nil {
		return nil, err
	}

	b.WriteString(" SELECT ")
	b.WriteString(strings.Join(columns, ", "))
	switch pivot {
	case PivotAnnotation:
		b.WriteString(" FROM verdict.annotations AS annotations")
		b.WriteString(" JOIN verdict.datums AS datums ON datums.id = annotations.datum_id")
	case PivotDatum:
		b.WriteString(" FROM verdict.datums AS datums")
		b.WriteString(" JOIN verdict.annotations AS annotations ON annotations.datum_id = datums.id")
	}
	b.WriteString(" JOIN verdict.datasets AS datasets ON datasets.id = datums.dataset_id")
	fmt.Fprintf(&b, " JOIN verdict.%s AS %s ON %s.annotation_id = annotations.id", link, link, link)
	fmt.Fprintf(&b, " JOIN verdict.labels AS labels ON labels.id = %s.label_id", link)
	fmt.Fprintf(&b, " JOIN filtered ON filtered.pivot_id = %s", pivotID)
	b.WriteString(" WHERE ")
	b.WriteString(formula)

	return &FinalQuery{
		SQL:  sqlx.Rebind(sqlx.DOLLAR, b.String()),
		Args: args,
	}, nil
}

/* renderFormula converts a skeleton into a boolean expression over the
 * aggregation flags. Flags are two-valued, so NOT is plain logical
 * negation; comparing against FALSE instead would diverge once a flag
 * source reintroduced NULLs. */
func renderFormula(s *Skeleton, n int) (string, error) {
	switch s.Op {
	case "":
		if s.Leaf < 0 || s.Leaf >= n {
			return "", &StructuralError{Reason: fmt.Sprintf("leaf index %d out of range", s.Leaf)}
		}
		return fmt.Sprintf("filtered.flag%d = TRUE", s.Leaf), nil
	case OpNot:
		sub, err := renderFormula(s.Arg, n)
		if err != nil {
			return "", err
		}
		return "NOT (" + sub + ")", nil
	case OpAnd, OpOr:
		conj := " AND "
		if s.Op == OpOr {
			conj = " OR "
		}
		parts := make([]string, 0, len(s.Args))
		for _, arg := range s.Args {
			sub, err := renderFormula(arg, n)
			if err != nil {
				return "", err
			}
			parts = append(parts, sub)
		}
		return "(" + strings.Join(parts, conj) + ")", nil
	case OpXor:
		/* Odd parity over the children's truth values */
		parts := make([]string, 0, len(s.Args))
		for _, arg := range s.Args {
			sub, err := renderFormula(arg, n)
			if err != nil {
				return "", err
			}
			parts = append(parts, "("+sub+")::int")
		}
		return "(" + strings.Join(parts, " + ") + ") % 2 = 1", nil
	default:
		return "", &StructuralError{Reason: fmt.Sprintf("skeleton node with operator '%s'", s.Op)}
	}
}

func hasEntity(sets []*PredicateSet, entity Entity) bool {
	for _, set := range sets {
		if set.Entity == entity {
			return true
		}
	}
	return false
}

func entityRowID(entity Entity) (string, error) {
	switch entity {
	case EntityDataset:
		return "datasets.id", nil
	case EntityModel:
		return "models.id", nil
	case EntityDatum:
		return "datums.id", nil
	case EntityAnnotation:
		return "annotations.id", nil
	case EntityEmbedding:
		return "embeddings.id", nil
	}
	return "", &StructuralError{Reason: fmt.Sprintf("predicate set with unplannable entity '%s'", entity)}
}

/* Compile is the end-to-end entry point: linearize the expression and
 * plan the final query against the requested pivot */
func Compile(expr *Expr, pivot Pivot, link LinkTable, columns []string) (*FinalQuery, error) {
	skeleton, sets, err := Linearize(expr)
	if err != nil {
		return nil, err
	}
	return Plan(skeleton, sets, pivot, link, columns)
}
