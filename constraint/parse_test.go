package constraint

import (
	"errors"
	"testing"

	"github.com/willibrandon/gosolc/version"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string // canonical String() of the result
		wantErr bool
	}{
		{"single exact", "0.8.0", "=0.8.0", false},
		{"explicit equal", "=0.8.0", "=0.8.0", false},
		{"range", ">=0.8.5 <=0.8.7", ">=0.8.5 <=0.8.7", false},
		{"comma separated", ">=0.6.0, <0.8.0", ">=0.6.0 <0.8.0", false},
		{"comma without space", ">=0.6.0,<0.8.0", ">=0.6.0 <0.8.0", false},
		{"space after operator", ">= 0.8.0 < 0.9.0", ">=0.8.0 <0.9.0", false},
		{"caret", "^0.8.0", "^0.8.0", false},
		{"tilde", "~0.8.3", "~0.8.3", false},
		{"not equal", "!=0.8.4", "!=0.8.4", false},
		{"strict bounds", ">0.5.16 <0.8.16", ">0.5.16 <0.8.16", false},
		{"v prefix", ">=v0.8.0", ">=0.8.0", false},
		{"surrounding whitespace", "  ^0.8.0\t", "^0.8.0", false},
		{"empty", "", "", true},
		{"only separators", " , ", "", true},
		{"or operator", ">=0.4.0 || ^0.8.0", "", true},
		{"wildcard", "*", "", true},
		{"partial version", "^0.8", "", true},
		{"double equals", "==0.8.0", "", true},
		{"bang alone", "!0.8.0", "", true},
		{"tilde greater", "~>0.8.0", "", true},
		{"dangling operator", ">=0.8.0 <", "", true},
		{"operator before comma", ">=, 0.8.0", "", true},
		{"garbage prefix", ">=abc0.8.0", "", true},
		{"prerelease", "0.8.0-nightly", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				var cErr *InvalidConstraintError
				if !errors.As(err, &cErr) {
					t.Fatalf("Parse(%q) error type = %T, want *InvalidConstraintError", tt.input, err)
				}
				if cErr.Expr != tt.input {
					t.Errorf("InvalidConstraintError.Expr = %q, want %q", cErr.Expr, tt.input)
				}
				return
			}
			if got.String() != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, got.String(), tt.want)
			}
		})
	}
}

func TestParse_EmptyIsErrEmptyExpression(t *testing.T) {
	_, err := Parse("   ")
	if !errors.Is(err, ErrEmptyExpression) {
		t.Errorf("Parse() error = %v, want ErrEmptyExpression", err)
	}
}

func TestParse_WrapsMalformedVersion(t *testing.T) {
	_, err := Parse(">=0.8.x")

	var mErr *version.MalformedVersionError
	if !errors.As(err, &mErr) {
		t.Fatalf("Parse() error = %v, want wrapped *version.MalformedVersionError", err)
	}
}

func TestNew(t *testing.T) {
	if _, err := New(); !errors.Is(err, ErrEmptyExpression) {
		t.Errorf("New() error = %v, want ErrEmptyExpression", err)
	}

	if _, err := New(Clause{Op: "=>", Version: version.New(0, 8, 0)}); err == nil {
		t.Error("New() should reject an unknown operator")
	}

	e, err := New(Clause{Op: OpCaret, Version: version.New(0, 8, 0)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if e.Len() != 1 {
		t.Errorf("Len() = %d, want 1", e.Len())
	}
}

func TestExpression_And(t *testing.T) {
	a := MustParse(">=0.8.0")
	b := MustParse("<0.9.0 !=0.8.4")

	got := a.And(b)
	if got.String() != ">=0.8.0 <0.9.0 !=0.8.4" {
		t.Errorf("And() = %q", got.String())
	}
	// receivers are untouched
	if a.Len() != 1 || b.Len() != 2 {
		t.Errorf("And() mutated its operands: %q, %q", a, b)
	}
}

func TestClause_Expand(t *testing.T) {
	tests := []struct {
		clause string
		want   string
	}{
		{"^1.2.3", ">=1.2.3 <2.0.0"},
		{"^0.8.3", ">=0.8.3 <0.9.0"},
		{"^0.0.3", ">=0.0.3 <0.1.0"},
		{"~1.2.3", ">=1.2.3 <1.3.0"},
		{"~0.8.0", ">=0.8.0 <0.9.0"},
		{">=0.8.0", ">=0.8.0"},
		{"0.8.0", "=0.8.0"},
	}

	for _, tt := range tests {
		t.Run(tt.clause, func(t *testing.T) {
			got := MustParse(tt.clause).Expanded().String()
			if got != tt.want {
				t.Errorf("Expand(%s) = %q, want %q", tt.clause, got, tt.want)
			}
		})
	}
}
