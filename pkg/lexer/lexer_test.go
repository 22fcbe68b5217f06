package lexer

import (
	"reflect"
	"strings"
	"testing"
	"unicode"
)

func TestLex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:     "Empty",
			input:    "",
			expected: []Token{},
		},
		{
			name:  "Basic Declaration",
			input: "int x = 10;",
			expected: []Token{
				{Kind: KindKeyword, Text: "int", Line: 1, Column: 1},
				{Kind: KindIdentifier, Text: "x", Line: 1, Column: 5},
				{Kind: KindOperator, Text: "=", Line: 1, Column: 7},
				{Kind: KindLiteral, Text: "10", Line: 1, Column: 9},
				{Kind: KindPunctuation, Text: ";", Line: 1, Column: 11},
			},
		},
		{
			name:  "Greedy Multi-Char Operators",
			input: "a <<= b << c < d",
			expected: []Token{
				{Kind: KindIdentifier, Text: "a", Line: 1, Column: 1},
				{Kind: KindOperator, Text: "<<=", Line: 1, Column: 3},
				{Kind: KindIdentifier, Text: "b", Line: 1, Column: 7},
				{Kind: KindOperator, Text: "<<", Line: 1, Column: 9},
				{Kind: KindIdentifier, Text: "c", Line: 1, Column: 12},
				{Kind: KindOperator, Text: "<", Line: 1, Column: 14},
				{Kind: KindIdentifier, Text: "d", Line: 1, Column: 16},
			},
		},
		{
			name:  "Comments Discarded",
			input: "x = 1; // trailing note\ny = 2;",
			expected: []Token{
				{Kind: KindIdentifier, Text: "x", Line: 1, Column: 1},
				{Kind: KindOperator, Text: "=", Line: 1, Column: 3},
				{Kind: KindLiteral, Text: "1", Line: 1, Column: 5},
				{Kind: KindPunctuation, Text: ";", Line: 1, Column: 6},
				{Kind: KindIdentifier, Text: "y", Line: 2, Column: 1},
				{Kind: KindOperator, Text: "=", Line: 2, Column: 3},
				{Kind: KindLiteral, Text: "2", Line: 2, Column: 5},
				{Kind: KindPunctuation, Text: ";", Line: 2, Column: 6},
			},
		},
		{
			name:  "Block Comment Not Operators",
			input: "a /* b */ c",
			expected: []Token{
				{Kind: KindIdentifier, Text: "a", Line: 1, Column: 1},
				{Kind: KindIdentifier, Text: "c", Line: 1, Column: 11},
			},
		},
		{
			name:  "String And Char Literals",
			input: `printf("a \"b\" c", 'x');`,
			expected: []Token{
				{Kind: KindFunction, Text: "printf", Line: 1, Column: 1},
				{Kind: KindPunctuation, Text: "(", Line: 1, Column: 7},
				{Kind: KindLiteral, Text: `"a \"b\" c"`, Line: 1, Column: 8},
				{Kind: KindPunctuation, Text: ",", Line: 1, Column: 19},
				{Kind: KindLiteral, Text: "'x'", Line: 1, Column: 21},
				{Kind: KindPunctuation, Text: ")", Line: 1, Column: 24},
				{Kind: KindPunctuation, Text: ";", Line: 1, Column: 25},
			},
		},
		{
			name:  "Numeric Literals",
			input: "123 0x1A 3.14",
			expected: []Token{
				{Kind: KindLiteral, Text: "123", Line: 1, Column: 1},
				{Kind: KindLiteral, Text: "0x1A", Line: 1, Column: 5},
				{Kind: KindLiteral, Text: "3.14", Line: 1, Column: 10},
			},
		},
		{
			name:  "Include Directive",
			input: "#include <stdio.h>\nint main() {}",
			expected: []Token{
				{Kind: KindPreprocessor, Text: "#include", Line: 1, Column: 1},
				{Kind: KindLiteral, Text: "<stdio.h>", Line: 1, Column: 10},
				{Kind: KindKeyword, Text: "int", Line: 2, Column: 1},
				{Kind: KindIdentifier, Text: "main", Line: 2, Column: 5},
				{Kind: KindPunctuation, Text: "(", Line: 2, Column: 9},
				{Kind: KindPunctuation, Text: ")", Line: 2, Column: 10},
				{Kind: KindPunctuation, Text: "{", Line: 2, Column: 12},
				{Kind: KindPunctuation, Text: "}", Line: 2, Column: 13},
			},
		},
		{
			name:  "Define Directive",
			input: "#define MAX 100",
			expected: []Token{
				{Kind: KindPreprocessor, Text: "#define", Line: 1, Column: 1},
				{Kind: KindIdentifier, Text: "MAX", Line: 1, Column: 9},
				{Kind: KindLiteral, Text: "100", Line: 1, Column: 13},
			},
		},
		{
			name:  "Indented Directive",
			input: "  #define N 4",
			expected: []Token{
				{Kind: KindPreprocessor, Text: "#define", Line: 1, Column: 3},
				{Kind: KindIdentifier, Text: "N", Line: 1, Column: 11},
				{Kind: KindLiteral, Text: "4", Line: 1, Column: 13},
			},
		},
		{
			name:  "Std Function Vs Identifier",
			input: "malloc free myFunc",
			expected: []Token{
				{Kind: KindFunction, Text: "malloc", Line: 1, Column: 1},
				{Kind: KindFunction, Text: "free", Line: 1, Column: 8},
				{Kind: KindIdentifier, Text: "myFunc", Line: 1, Column: 13},
			},
		},
		{
			name:  "Directive Inside Block Comment",
			input: "/*\n#define X 1\n*/\nint x;",
			expected: []Token{
				{Kind: KindKeyword, Text: "int", Line: 4, Column: 1},
				{Kind: KindIdentifier, Text: "x", Line: 4, Column: 5},
				{Kind: KindPunctuation, Text: ";", Line: 4, Column: 6},
			},
		},
		{
			name:  "Comment Opener In String Keeps Directive",
			input: "char *s = \"/*\";\n#define N 1",
			expected: []Token{
				{Kind: KindKeyword, Text: "char", Line: 1, Column: 1},
				{Kind: KindOperator, Text: "*", Line: 1, Column: 6},
				{Kind: KindIdentifier, Text: "s", Line: 1, Column: 7},
				{Kind: KindOperator, Text: "=", Line: 1, Column: 9},
				{Kind: KindLiteral, Text: `"/*"`, Line: 1, Column: 11},
				{Kind: KindPunctuation, Text: ";", Line: 1, Column: 15},
				{Kind: KindPreprocessor, Text: "#define", Line: 2, Column: 1},
				{Kind: KindIdentifier, Text: "N", Line: 2, Column: 9},
				{Kind: KindLiteral, Text: "1", Line: 2, Column: 11},
			},
		},
		{
			name:  "Unrecognized Characters Dropped",
			input: "int @ x",
			expected: []Token{
				{Kind: KindKeyword, Text: "int", Line: 1, Column: 1},
				{Kind: KindIdentifier, Text: "x", Line: 1, Column: 7},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lex(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Lex() mismatch\n got: %v\nwant: %v", got, tt.expected)
			}
		})
	}
}

func TestLexWithDiagnosticsReportsDrops(t *testing.T) {
	type drop struct {
		line int
		text string
	}
	var drops []drop
	Lex("int @ x") // no reporter, must not panic
	LexWithDiagnostics("int @ x\ny = $$;", func(line int, text string) {
		drops = append(drops, drop{line, text})
	})
	expected := []drop{{1, "@"}, {2, "$$"}}
	if !reflect.DeepEqual(drops, expected) {
		t.Errorf("drops = %v, want %v", drops, expected)
	}
}

// Re-concatenating token texts reproduces every non-comment, non-whitespace
// character of the input in order.
func TestLexRoundTrip(t *testing.T) {
	inputs := []string{
		"int x = 10;",
		"#include <stdio.h>\nint main() { printf(\"hi\"); return 0; }",
		"#define MAX 100\nint a[MAX];",
		"for (i = 0; i < n; i++) { total += a[i]; }",
		"x <<= 2; y = x >> 1 & mask;",
	}
	for _, input := range inputs {
		var want strings.Builder
		for _, r := range input {
			if !unicode.IsSpace(r) {
				want.WriteRune(r)
			}
		}
		var got strings.Builder
		for _, tok := range Lex(input) {
			got.WriteString(tok.Text)
		}
		if got.String() != want.String() {
			t.Errorf("round trip of %q:\n got %q\nwant %q", input, got.String(), want.String())
		}
	}
}

func TestMaxLine(t *testing.T) {
	if got := MaxLine(nil); got != 1 {
		t.Errorf("MaxLine(nil) = %d, want 1", got)
	}
	tokens := Lex("int x;\n\nint y;")
	if got := MaxLine(tokens); got != 3 {
		t.Errorf("MaxLine = %d, want 3", got)
	}
}
