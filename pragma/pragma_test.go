package pragma

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestExtractDeclarations(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name:   "single range",
			source: "pragma solidity >=0.8.5 <=0.8.7;\ncontract X{}",
			want:   []string{">=0.8.5 <=0.8.7"},
		},
		{
			name:   "caret after license header",
			source: "// SPDX-License-Identifier: MIT\npragma solidity ^0.8.0;\n",
			want:   []string{"^0.8.0"},
		},
		{
			name:   "multiple declarations in order",
			source: "pragma solidity >=0.6.0;\npragma abicoder v2;\npragma solidity <0.9.0;\n",
			want:   []string{">=0.6.0", "<0.9.0"},
		},
		{
			name:   "statement spanning lines",
			source: "pragma solidity\n    >=0.8.0\n    <0.9.0;",
			want:   []string{">=0.8.0 <0.9.0"},
		},
		{
			name:   "no space before semicolon needed",
			source: "pragma solidity 0.7.6;",
			want:   []string{"0.7.6"},
		},
		{
			name:   "line comment ignored",
			source: "// pragma solidity ^0.4.0;\npragma solidity ^0.8.0;",
			want:   []string{"^0.8.0"},
		},
		{
			name:   "block comment ignored",
			source: "/* old:\npragma solidity ^0.4.0;\n*/\npragma solidity ^0.8.0;",
			want:   []string{"^0.8.0"},
		},
		{
			name:   "string literal ignored",
			source: "string constant s = \"pragma solidity ^0.4.0;\";\npragma solidity ^0.8.0;",
			want:   []string{"^0.8.0"},
		},
		{
			name:   "comment inside expression",
			source: "pragma solidity >=0.8.0 /* lower */ <0.9.0;",
			want:   []string{">=0.8.0 <0.9.0"},
		},
		{
			name:   "other pragmas only",
			source: "pragma experimental ABIEncoderV2;\ncontract X{}",
			want:   nil,
		},
		{
			name:   "no pragma",
			source: "contract X { uint x; }",
			want:   nil,
		},
		{
			name:   "unterminated",
			source: "pragma solidity ^0.8.0\ncontract X{}",
			want:   nil,
		},
		{
			name:   "keyword is case sensitive",
			source: "Pragma Solidity ^0.8.0;",
			want:   nil,
		},
		{
			name:   "identifier containing keyword",
			source: "uint mypragma; pragmasolidity ^0.8.0;",
			want:   nil,
		},
		{
			name:   "empty source",
			source: "",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractDeclarations(tt.source)
			if !slices.Equal(got, tt.want) {
				t.Errorf("ExtractDeclarations() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Token.sol")
	if err := os.WriteFile(path, []byte("pragma solidity ^0.8.19;\ncontract Token {}\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := ExtractFile(path)
	if err != nil {
		t.Fatalf("ExtractFile() error = %v", err)
	}
	if !slices.Equal(got, []string{"^0.8.19"}) {
		t.Errorf("ExtractFile() = %q", got)
	}

	if _, err := ExtractFile(filepath.Join(dir, "missing.sol")); err == nil {
		t.Error("ExtractFile() should fail for a missing file")
	}
}
