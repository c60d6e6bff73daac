/*-------------------------------------------------------------------------
 *
 * linearize.go
 *    Logic-tree linearizer
 *
 * Walks the expression AST depth-first, compiling every comparison leaf
 * into a predicate set appended to a flat ordered list, and producing a
 * skeleton isomorphic to the original tree with each leaf replaced by its
 * list index. The predicate list is threaded through return values; there
 * is no shared mutable accumulator.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <admin@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/filter/linearize.go
 *
 *-------------------------------------------------------------------------
 */

package filter

import (
	"encoding/json"
	"fmt"
)

/* Skeleton is the boolean-formula shape over predicate-set indices. A
 * leaf node (Op == "") carries the index; "not" carries Arg; "and", "or"
 * and "xor" carry Args. Serializes as a bare integer or a single-key
 * object, e.g. {"and": [0, {"not": 1}, 2]}. */
type Skeleton struct {
	Op   Operator
	Leaf int
	Arg  *Skeleton
	Args []*Skeleton
}

/* IsLeaf reports whether the node is a predicate-set index */
func (s *Skeleton) IsLeaf() bool {
	return s.Op == ""
}

func (s *Skeleton) MarshalJSON() ([]byte, error) {
	switch s.Op {
	case "":
		return json.Marshal(s.Leaf)
	case OpNot:
		return json.Marshal(map[string]*Skeleton{"not": s.Arg})
	case OpAnd, OpOr, OpXor:
		return json.Marshal(map[string][]*Skeleton{string(s.Op): s.Args})
	default:
		return nil, &StructuralError{Reason: fmt.Sprintf("skeleton node with operator '%s'", s.Op)}
	}
}

/* Linearize compiles every leaf of the expression and returns the formula
 * skeleton plus the flat predicate-set list. Repeated identical leaves
 * compile once each; the list is positional and deduplication is not
 * attempted. */
func Linearize(expr *Expr) (*Skeleton, []*PredicateSet, error) {
	if expr == nil {
		return nil, nil, &StructuralError{Reason: "empty filter expression"}
	}
	skeleton, sets, err := linearize(expr, nil)
	if err != nil {
		return nil, nil, err
	}
	return skeleton, sets, nil
}

func linearize(expr *Expr, sets []*PredicateSet) (*Skeleton, []*PredicateSet, error) {
	switch {
	case expr.Op == OpIsNull || expr.Op == OpIsNotNull:
		set, err := CompileLeaf(expr.Op, expr.Sym, nil)
		if err != nil {
			return nil, nil, err
		}
		sets = append(sets, set)
		return &Skeleton{Leaf: len(sets) - 1}, sets, nil

	case comparisonOps[expr.Op]:
		set, err := CompileLeaf(expr.Op, expr.Sym, expr.Val)
		if err != nil {
			return nil, nil, err
		}
		sets = append(sets, set)
		return &Skeleton{Leaf: len(sets) - 1}, sets, nil

	case expr.Op == OpNot:
		if expr.Arg == nil {
			return nil, nil, &StructuralError{Reason: "'not' without an argument"}
		}
		sub, sets, err := linearize(expr.Arg, sets)
		if err != nil {
			return nil, nil, err
		}
		return &Skeleton{Op: OpNot, Arg: sub}, sets, nil

	case naryOps[expr.Op]:
		if len(expr.Args) == 0 {
			return nil, nil, &StructuralError{Reason: fmt.Sprintf("'%s' with an empty argument list", expr.Op)}
		}
		branches := make([]*Skeleton, 0, len(expr.Args))
		var sub *Skeleton
		var err error
		for _, arg := range expr.Args {
			sub, sets, err = linearize(arg, sets)
			if err != nil {
				return nil, nil, err
			}
			branches = append(branches, sub)
		}
		return &Skeleton{Op: expr.Op, Args: branches}, sets, nil

	default:
		return nil, nil, &StructuralError{Reason: fmt.Sprintf("unrecognized operator '%s'", expr.Op)}
	}
}

/* Evaluate resolves the skeleton against an assignment of predicate truth
 * values. Negation is logical negation of the sub-result, never an
 * equality test against a stored flag. */
func (s *Skeleton) Evaluate(flags []bool) (bool, error) {
	switch s.Op {
	case "":
		if s.Leaf < 0 || s.Leaf >= len(flags) {
			return false, &StructuralError{Reason: fmt.Sprintf("leaf index %d out of range", s.Leaf)}
		}
		return flags[s.Leaf], nil
	case OpNot:
		sub, err := s.Arg.Evaluate(flags)
		if err != nil {
			return false, err
		}
		return !sub, nil
	case OpAnd:
		for _, arg := range s.Args {
			sub, err := arg.Evaluate(flags)
			if err != nil {
				return false, err
			}
			if !sub {
				return false, nil
			}
		}
		return true, nil
	case OpOr:
		for _, arg := range s.Args {
			sub, err := arg.Evaluate(flags)
			if err != nil {
				return false, err
			}
			if sub {
				return true, nil
			}
		}
		return false, nil
	case OpXor:
		parity := false
		for _, arg := range s.Args {
			sub, err := arg.Evaluate(flags)
			if err != nil {
				return false, err
			}
			if sub {
				parity = !parity
			}
		}
		return parity, nil
	default:
		return false, &StructuralError{Reason: fmt.Sprintf("skeleton node with operator '%s'", s.Op)}
	}
}
