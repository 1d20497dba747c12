package constraint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/willibrandon/gosolc/version"
)

// Parse parses a constraint expression.
//
// Clauses are separated by whitespace and/or commas. Each clause is an
// optional operator followed by a version; whitespace between the two is
// allowed (">= 0.8.0"). Unknown operators, dangling operators and malformed
// versions fail with *InvalidConstraintError.
func Parse(expr string) (Expression, error) {
	s := &scanner{src: expr}
	var clauses []Clause

	for {
		s.skip(isSeparator)
		if s.done() {
			break
		}

		start := s.pos
		op := s.operator()
		if op != "" {
			// An operator may be followed by spaces but not by a comma.
			s.skip(isSpace)
		}

		if s.done() || isSeparator(s.peek()) {
			return Expression{}, &InvalidConstraintError{
				Expr:  expr,
				Token: strings.TrimSpace(expr[start:s.pos]),
				Err:   errors.New("operator without version"),
			}
		}
		if isOperatorChar(s.peek()) {
			tok := s.word(start)
			return Expression{}, &InvalidConstraintError{
				Expr:  expr,
				Token: tok,
				Err:   fmt.Errorf("unrecognized operator in %q", tok),
			}
		}

		vstart := s.pos
		s.skipUntil(isSeparator)
		raw := expr[vstart:s.pos]

		if digits := strings.TrimPrefix(raw, "v"); digits == "" || digits[0] < '0' || digits[0] > '9' {
			return Expression{}, &InvalidConstraintError{
				Expr:  expr,
				Token: expr[start:s.pos],
				Err:   fmt.Errorf("expected version, got %q", raw),
			}
		}

		v, err := version.Parse(raw)
		if err != nil {
			return Expression{}, &InvalidConstraintError{
				Expr:  expr,
				Token: expr[start:s.pos],
				Err:   err,
			}
		}

		if op == "" {
			op = OpEqual
		}
		clauses = append(clauses, Clause{Op: op, Version: v})
	}

	if len(clauses) == 0 {
		return Expression{}, &InvalidConstraintError{Expr: expr, Err: ErrEmptyExpression}
	}
	return Expression{clauses: clauses}, nil
}

// scanner walks an expression byte by byte.
type scanner struct {
	src string
	pos int
}

func (s *scanner) done() bool { return s.pos >= len(s.src) }
func (s *scanner) peek() byte { return s.src[s.pos] }

func (s *scanner) skip(pred func(byte) bool) {
	for !s.done() && pred(s.peek()) {
		s.pos++
	}
}

func (s *scanner) skipUntil(pred func(byte) bool) {
	for !s.done() && !pred(s.peek()) {
		s.pos++
	}
}

// operator consumes the longest operator at the current position.
func (s *scanner) operator() Operator {
	rest := s.src[s.pos:]
	for _, op := range operators {
		if strings.HasPrefix(rest, string(op)) {
			s.pos += len(op)
			return op
		}
	}
	return ""
}

// word returns the text from start up to the next separator and advances past it.
func (s *scanner) word(start int) string {
	s.skipUntil(isSeparator)
	return s.src[start:s.pos]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isSeparator(b byte) bool {
	return isSpace(b) || b == ','
}

func isOperatorChar(b byte) bool {
	switch b {
	case '<', '>', '=', '!', '~', '^', '|', '&':
		return true
	}
	return false
}
