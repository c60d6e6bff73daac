/*-------------------------------------------------------------------------
 *
 * ast.go
 *    Typed filter expression tree
 *
 * Defines the expression AST ingested from clients: symbols, literal
 * values, and unary/binary/n-ary operator nodes. The JSON wire shape is
 *
 *    Expr := {op: "not"|"isnull"|"isnotnull", arg: Symbol|Expr}
 *          | {op: <comparison>, lhs: Symbol, rhs: Value}
 *          | {op: "and"|"or"|"xor", args: [Expr, ...]}
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/filter/ast.go
 *
 *-------------------------------------------------------------------------
 */

package filter

import (
	"encoding/json"
	"fmt"
)

/* Symbol references an attribute path from the closed registry set */
type Symbol struct {
	Name      string `json:"name"`
	Key       string `json:"key,omitempty"`
	Attribute string `json:"attribute,omitempty"`
	Dtype     Dtype  `json:"dtype"`
}

/* Value is a literal of a declared filterable type */
type Value struct {
	Type  Dtype       `json:"type"`
	Value interface{} `json:"value"`
}

/* Expr is one node of the filter expression tree. Exactly one of the
 * operand groups is populated, selected by Op:
 *   - not:                  Arg
 *   - isnull/isnotnull:     Sym
 *   - comparisons:          Sym (lhs) and Val (rhs)
 *   - and/or/xor:           Args
 */
type Expr struct {
	Op   Operator
	Arg  *Expr
	Sym  *Symbol
	Val  *Value
	Args []*Expr
}

var comparisonOps = map[Operator]bool{
	OpEq: true, OpNe: true, OpGt: true, OpGe: true, OpLt: true, OpLe: true,
	OpIntersects: true, OpInside: true, OpOutside: true, OpContains: true,
}

var naryOps = map[Operator]bool{
	OpAnd: true, OpOr: true, OpXor: true,
}

type rawExpr struct {
	Op   string            `json:"op"`
	Arg  json.RawMessage   `json:"arg,omitempty"`
	Lhs  json.RawMessage   `json:"lhs,omitempty"`
	Rhs  json.RawMessage   `json:"rhs,omitempty"`
	Args []json.RawMessage `json:"args,omitempty"`
}

/* UnmarshalJSON decodes the wire shape, dispatching operand decoding on
 * the operator. Shape violations surface as StructuralError. */
func (e *Expr) UnmarshalJSON(data []byte) error {
	var raw rawExpr
	if err := json.Unmarshal(data, &raw); err != nil {
		return &StructuralError{Reason: fmt.Sprintf("invalid expression node: %v", err)}
	}
	if raw.Op == "" {
		return &StructuralError{Reason: "expression node missing operator"}
	}
	op := Operator(raw.Op)

	switch {
	case op == OpNot:
		if raw.Arg == nil {
			return &StructuralError{Reason: "'not' requires a nested expression argument"}
		}
		if raw.Args != nil {
			return &StructuralError{Reason: "'not' takes a single argument, not a list"}
		}
		var arg Expr
		if err := json.Unmarshal(raw.Arg, &arg); err != nil {
			return err
		}
		*e = Expr{Op: op, Arg: &arg}
		return nil

	case op == OpIsNull || op == OpIsNotNull:
		if raw.Arg == nil {
			return &StructuralError{Reason: fmt.Sprintf("'%s' requires a symbol argument", op)}
		}
		var sym Symbol
		if err := json.Unmarshal(raw.Arg, &sym); err != nil || sym.Name == "" {
			return &StructuralError{Reason: fmt.Sprintf("'%s' argument must be a symbol", op)}
		}
		*e = Expr{Op: op, Sym: &sym}
		return nil

	case comparisonOps[op]:
		if raw.Lhs == nil || raw.Rhs == nil {
			return &StructuralError{Reason: fmt.Sprintf("'%s' requires lhs and rhs operands", op)}
		}
		var sym Symbol
		if err := json.Unmarshal(raw.Lhs, &sym); err != nil || sym.Name == "" {
			return &StructuralError{Reason: fmt.Sprintf("'%s' lhs must be a symbol", op)}
		}
		var val Value
		if err := json.Unmarshal(raw.Rhs, &val); err != nil || val.Type == "" {
			return &StructuralError{Reason: fmt.Sprintf("'%s' rhs must be a typed value", op)}
		}
		*e = Expr{Op: op, Sym: &sym, Val: &val}
		return nil

	case naryOps[op]:
		if len(raw.Args) == 0 {
			return &StructuralError{Reason: fmt.Sprintf("'%s' requires a non-empty argument list", op)}
		}
		args := make([]*Expr, 0, len(raw.Args))
		for _, rawArg := range raw.Args {
			var arg Expr
			if err := json.Unmarshal(rawArg, &arg); err != nil {
				return err
			}
			args = append(args, &arg)
		}
		*e = Expr{Op: op, Args: args}
		return nil

	default:
		return &StructuralError{Reason: fmt.Sprintf("unrecognized operator '%s'", raw.Op)}
	}
}

/* MarshalJSON emits the canonical wire shape. Struct field order is fixed,
 * so the output is deterministic and usable for fingerprinting. */
func (e *Expr) MarshalJSON() ([]byte, error) {
	switch {
	case e.Op == OpNot:
		return json.Marshal(struct {
			Op  Operator `json:"op"`
			Arg *Expr    `json:"arg"`
		}{e.Op, e.Arg})
	case e.Op == OpIsNull || e.Op == OpIsNotNull:
		return json.Marshal(struct {
			Op  Operator `json:"op"`
			Arg *Symbol  `json:"arg"`
		}{e.Op, e.Sym})
	case comparisonOps[e.Op]:
		return json.Marshal(struct {
			Op  Operator `json:"op"`
			Lhs *Symbol  `json:"lhs"`
			Rhs *Value   `json:"rhs"`
		}{e.Op, e.Sym, e.Val})
	case naryOps[e.Op]:
		return json.Marshal(struct {
			Op   Operator `json:"op"`
			Args []*Expr  `json:"args"`
		}{e.Op, e.Args})
	default:
		return nil, &StructuralError{Reason: fmt.Sprintf("unrecognized operator '%s'", e.Op)}
	}
}

/* Parse decodes a filter expression from its JSON wire form */
func Parse(data []byte) (*Expr, error) {
	var expr Expr
	if err := json.Unmarshal(data, &expr); err != nil {
		return nil, err
	}
	return &expr, nil
}

/* Canonical returns the deterministic serialized form of an expression,
 * used as the filter component of an evaluation fingerprint */
func Canonical(e *Expr) ([]byte, error) {
	return json.Marshal(e)
}
