// Package pragma finds compiler version declarations in Solidity source.
//
// Only `pragma solidity <expr>;` statements are reported. Comments and string
// literals are skipped by the scanner, so a declaration that is commented
// out never counts. Other pragmas (abicoder, experimental) are ignored.
package pragma

import (
	"fmt"
	"os"
	"strings"
)

const (
	keywordPragma   = "pragma"
	keywordSolidity = "solidity"
)

// ExtractDeclarations returns the raw constraint expression of every
// `pragma solidity` statement in source order. Whitespace inside an
// expression is collapsed to single spaces. A statement without a
// terminating semicolon is not a declaration.
func ExtractDeclarations(source string) []string {
	var out []string
	lx := &lexer{src: source}

	for {
		tok := lx.next()
		if tok.kind == tokEOF {
			return out
		}
		if tok.kind != tokIdent || tok.text != keywordPragma {
			continue
		}

		name := lx.next()
		if name.kind != tokIdent || name.text != keywordSolidity {
			continue
		}

		expr, ok := lx.until(';')
		if !ok {
			return out
		}
		out = append(out, strings.Join(strings.Fields(expr), " "))
	}
}

// ExtractFile reads a source file and returns its declarations.
func ExtractFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return ExtractDeclarations(string(data)), nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokPunct
)

type token struct {
	kind tokenKind
	text string
}

// lexer is a minimal Solidity tokenizer: enough to tell identifiers apart
// from comments and string literals.
type lexer struct {
	src string
	pos int
}

func (l *lexer) next() token {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isSpace(c):
			l.pos++
		case l.hasPrefix("//"):
			l.skipLineComment()
		case l.hasPrefix("/*"):
			l.skipBlockComment()
		case c == '"' || c == '\'':
			start := l.pos
			l.skipString(c)
			return token{kind: tokString, text: l.src[start:l.pos]}
		case isIdentStart(c):
			start := l.pos
			for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
				l.pos++
			}
			return token{kind: tokIdent, text: l.src[start:l.pos]}
		default:
			l.pos++
			return token{kind: tokPunct, text: string(c)}
		}
	}
	return token{kind: tokEOF}
}

// until collects raw text up to (not including) stop, replacing comments
// with a space. It consumes stop and reports false if the input ends first.
func (l *lexer) until(stop byte) (string, bool) {
	var sb strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == stop:
			l.pos++
			return sb.String(), true
		case l.hasPrefix("//"):
			l.skipLineComment()
			sb.WriteByte(' ')
		case l.hasPrefix("/*"):
			l.skipBlockComment()
			sb.WriteByte(' ')
		default:
			sb.WriteByte(c)
			l.pos++
		}
	}
	return "", false
}

func (l *lexer) hasPrefix(p string) bool {
	return strings.HasPrefix(l.src[l.pos:], p)
}

func (l *lexer) skipLineComment() {
	if i := strings.IndexByte(l.src[l.pos:], '\n'); i >= 0 {
		l.pos += i + 1
		return
	}
	l.pos = len(l.src)
}

func (l *lexer) skipBlockComment() {
	if i := strings.Index(l.src[l.pos+2:], "*/"); i >= 0 {
		l.pos += 2 + i + 2
		return
	}
	l.pos = len(l.src)
}

func (l *lexer) skipString(quote byte) {
	l.pos++ // opening quote
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.pos += 2
		case quote, '\n':
			l.pos++
			return
		default:
			l.pos++
		}
	}
	if l.pos > len(l.src) {
		l.pos = len(l.src)
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
