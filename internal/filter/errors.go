/*-------------------------------------------------------------------------
 *
 * errors.go
 *    Filter compilation error taxonomy for Verdict
 *
 * Defines the typed errors raised while compiling a filter expression.
 * All of these are detected before any query executes against storage;
 * infrastructure failures are never wrapped in these types.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <admin@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/filter/errors.go
 *
 *-------------------------------------------------------------------------
 */

package filter

import "fmt"

/* SymbolError reports a reference to an attribute the registry does not know */
type SymbolError struct {
	Name      string
	Attribute string
}

func (e *SymbolError) Error() string {
	if e.Attribute != "" {
		return fmt.Sprintf("unknown attribute modifier '%s' for symbol '%s'", e.Attribute, e.Name)
	}
	return fmt.Sprintf("unknown symbol '%s'", e.Name)
}

/* TypeMismatchError reports a symbol/value dtype disagreement */
type TypeMismatchError struct {
	Symbol    string
	Dtype     Dtype
	ValueType Dtype
	Expected  Dtype /* set when the declared dtype disagrees with the attribute itself */
}

func (e *TypeMismatchError) Error() string {
	if e.Expected != "" {
		return fmt.Sprintf("type mismatch on symbol '%s': declared dtype '%s' but the attribute is '%s'",
			e.Symbol, e.Dtype, e.Expected)
	}
	return fmt.Sprintf("type mismatch on symbol '%s': dtype '%s' compared against value of type '%s'",
		e.Symbol, e.Dtype, e.ValueType)
}

/* UnsupportedOperatorError reports an operator outside the resolved category set */
type UnsupportedOperatorError struct {
	Op     Operator
	Symbol string
	Dtype  Dtype
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("operator '%s' is not supported for symbol '%s' of dtype '%s'",
		e.Op, e.Symbol, e.Dtype)
}

/* StructuralError reports a malformed expression tree or value shape */
type StructuralError struct {
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("malformed filter expression: %s", e.Reason)
}

/* KeyAccessError reports key access on a non-dictionary attribute */
type KeyAccessError struct {
	Name string
	Key  string
}

func (e *KeyAccessError) Error() string {
	return fmt.Sprintf("symbol '%s' does not support key access (key='%s')", e.Name, e.Key)
}
