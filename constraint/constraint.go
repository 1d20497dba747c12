// Package constraint parses and evaluates compiler version constraints such as
// ">=0.8.5 <=0.8.7" or "^0.8.0", as written in pragma solidity declarations.
//
// An Expression is a non-empty list of clauses joined by logical AND.
// Caret and tilde clauses are shorthand: they are expanded into explicit
// lower and upper bound clauses before evaluation, so the evaluator only
// deals with the six relational operators.
//
// Syntax:
//
//	0.8.0            - exactly 0.8.0 (no operator means =)
//	>=0.8.5 <=0.8.7  - 0.8.5 ≤ x ≤ 0.8.7
//	>=0.6.0, <0.8.0  - commas separate clauses like whitespace does
//	!=0.8.4          - anything but 0.8.4
//	~0.8.3           - 0.8.3 ≤ x < 0.9.0
//	^0.8.3           - 0.8.3 ≤ x < 0.9.0 (major 0 freezes the minor)
//	^1.2.0           - 1.2.0 ≤ x < 2.0.0
package constraint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/willibrandon/gosolc/version"
)

// Operator is a clause comparison operator.
type Operator string

const (
	OpEqual        Operator = "="
	OpNotEqual     Operator = "!="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpTilde        Operator = "~" // same major.minor, patch at least the given one
	OpCaret        Operator = "^" // leftmost non-zero of major/minor frozen
)

// operators lists every operator in longest-match order.
var operators = []Operator{
	OpLessEqual, OpGreaterEqual, OpNotEqual,
	OpLess, OpGreater, OpEqual, OpTilde, OpCaret,
}

// ErrEmptyExpression is returned when an expression would have no clauses.
var ErrEmptyExpression = errors.New("expression has no clauses")

// InvalidConstraintError is returned when a constraint expression cannot be parsed.
type InvalidConstraintError struct {
	Expr  string // the whole expression
	Token string // the offending token, empty when the expression itself is invalid
	Err   error
}

func (e *InvalidConstraintError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("invalid constraint %q: %v", e.Expr, e.Err)
	}
	return fmt.Sprintf("invalid constraint %q at %q: %v", e.Expr, e.Token, e.Err)
}

func (e *InvalidConstraintError) Unwrap() error {
	return e.Err
}

// Clause is a single operator/version pair.
type Clause struct {
	Op      Operator
	Version version.Version
}

// String returns the clause as written, e.g. ">=0.8.5".
func (c Clause) String() string {
	return string(c.Op) + c.Version.String()
}

// Expand rewrites caret and tilde clauses into their explicit range bounds.
// Other clauses are returned unchanged.
func (c Clause) Expand() []Clause {
	v := c.Version
	switch c.Op {
	case OpTilde:
		return []Clause{
			{Op: OpGreaterEqual, Version: v},
			{Op: OpLess, Version: version.New(v.Major, v.Minor+1, 0)},
		}
	case OpCaret:
		upper := version.New(v.Major+1, 0, 0)
		if v.Major == 0 {
			upper = version.New(0, v.Minor+1, 0)
		}
		return []Clause{
			{Op: OpGreaterEqual, Version: v},
			{Op: OpLess, Version: upper},
		}
	default:
		return []Clause{c}
	}
}

// Expression is an immutable AND of one or more clauses.
// The zero value has no clauses and matches nothing.
type Expression struct {
	clauses []Clause
}

// New builds an expression from clauses. It fails when no clause is given.
func New(clauses ...Clause) (Expression, error) {
	if len(clauses) == 0 {
		return Expression{}, &InvalidConstraintError{Err: ErrEmptyExpression}
	}
	for _, c := range clauses {
		if !isOperator(c.Op) {
			return Expression{}, &InvalidConstraintError{
				Expr:  c.String(),
				Token: string(c.Op),
				Err:   fmt.Errorf("unrecognized operator %q", c.Op),
			}
		}
	}
	return Expression{clauses: append([]Clause(nil), clauses...)}, nil
}

// MustParse parses an expression and panics on error.
// Use this only when you know the expression is valid.
func MustParse(s string) Expression {
	e, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return e
}

// Clauses returns a copy of the expression's clauses in declaration order.
func (e Expression) Clauses() []Clause {
	return append([]Clause(nil), e.clauses...)
}

// Len returns the number of clauses.
func (e Expression) Len() int {
	return len(e.clauses)
}

// And returns a new expression holding the clauses of e followed by those of other.
func (e Expression) And(other Expression) Expression {
	out := make([]Clause, 0, len(e.clauses)+len(other.clauses))
	out = append(out, e.clauses...)
	out = append(out, other.clauses...)
	return Expression{clauses: out}
}

// Expanded returns the expression with caret and tilde clauses rewritten
// into explicit bounds.
func (e Expression) Expanded() Expression {
	var out []Clause
	for _, c := range e.clauses {
		out = append(out, c.Expand()...)
	}
	return Expression{clauses: out}
}

// String joins the clauses with single spaces.
func (e Expression) String() string {
	parts := make([]string, len(e.clauses))
	for i, c := range e.clauses {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func isOperator(op Operator) bool {
	for _, o := range operators {
		if o == op {
			return true
		}
	}
	return false
}
