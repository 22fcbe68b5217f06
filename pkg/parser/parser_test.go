package parser

import (
	"errors"
	"reflect"
	"testing"

	"ctrace/pkg/ast"
	"ctrace/pkg/diag"
	"ctrace/pkg/lexer"
)

// TestParse verifies that Parse produces the correct tree for valid inputs.
func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []ast.Stmt
	}{
		{
			name:  "Variable Declaration",
			input: "int x = 10;",
			expected: []ast.Stmt{
				&ast.DeclStmt{Line: 1, Decls: []*ast.VariableDecl{
					{Line: 1, DeclaredType: "int", Name: "x",
						Init: &ast.IntLiteral{Line: 1, Value: 10, Text: "10"}},
				}},
			},
		},
		{
			name:  "Pointer Declaration",
			input: "int *p = &x;",
			expected: []ast.Stmt{
				&ast.DeclStmt{Line: 1, Decls: []*ast.VariableDecl{
					{Line: 1, DeclaredType: "int", IsPointer: true, Name: "p",
						Init: &ast.UnaryExpr{Line: 1, Op: "&",
							Operand: &ast.Identifier{Line: 1, Name: "x"}}},
				}},
			},
		},
		{
			name:  "Multiple Declarators",
			input: "int a, b = 2;",
			expected: []ast.Stmt{
				&ast.DeclStmt{Line: 1, Decls: []*ast.VariableDecl{
					{Line: 1, DeclaredType: "int", Name: "a", Init: &ast.EmptyExpr{Line: 1}},
					{Line: 1, DeclaredType: "int", Name: "b",
						Init: &ast.IntLiteral{Line: 1, Value: 2, Text: "2"}},
				}},
			},
		},
		{
			name:  "Array With Inferred Size",
			input: "int arr[] = {1, 2, 3};",
			expected: []ast.Stmt{
				&ast.DeclStmt{Line: 1, Decls: []*ast.VariableDecl{
					{Line: 1, DeclaredType: "int", Name: "arr", IsArray: true,
						ArraySize: &ast.IntLiteral{Line: 1, Value: 3, Text: "3"},
						Init: &ast.InitListExpr{Line: 1, Elems: []ast.Expr{
							&ast.IntLiteral{Line: 1, Value: 1, Text: "1"},
							&ast.IntLiteral{Line: 1, Value: 2, Text: "2"},
							&ast.IntLiteral{Line: 1, Value: 3, Text: "3"},
						}}},
				}},
			},
		},
		{
			name:  "Define Directive",
			input: "#define MAX 100",
			expected: []ast.Stmt{
				&ast.Directive{Line: 1, Command: "#define", Name: "MAX", Arg: "100"},
			},
		},
		{
			name:  "Struct Declaration",
			input: "struct Point { int x; int y; };",
			expected: []ast.Stmt{
				&ast.StructDecl{Line: 1, Name: "Point", Fields: []*ast.VariableDecl{
					{Line: 1, DeclaredType: "int", Name: "x", Init: &ast.EmptyExpr{Line: 1}},
					{Line: 1, DeclaredType: "int", Name: "y", Init: &ast.EmptyExpr{Line: 1}},
				}},
			},
		},
		{
			name:  "Assignment Statement",
			input: "int main() { x = 20; }",
			expected: []ast.Stmt{
				&ast.FunctionDecl{Line: 1, ReturnType: "int", Name: "main",
					Body: &ast.BlockStmt{Line: 1, Stmts: []ast.Stmt{
						&ast.ExprStmt{Line: 1, X: &ast.AssignExpr{Line: 1, Op: "=",
							Target: &ast.Identifier{Line: 1, Name: "x"},
							Value:  &ast.IntLiteral{Line: 1, Value: 20, Text: "20"}}},
					}}},
			},
		},
		{
			name:  "Chained Assignment Is Right Associative",
			input: "int main() { a = b = 1; }",
			expected: []ast.Stmt{
				&ast.FunctionDecl{Line: 1, ReturnType: "int", Name: "main",
					Body: &ast.BlockStmt{Line: 1, Stmts: []ast.Stmt{
						&ast.ExprStmt{Line: 1, X: &ast.AssignExpr{Line: 1, Op: "=",
							Target: &ast.Identifier{Line: 1, Name: "a"},
							Value: &ast.AssignExpr{Line: 1, Op: "=",
								Target: &ast.Identifier{Line: 1, Name: "b"},
								Value:  &ast.IntLiteral{Line: 1, Value: 1, Text: "1"}}}},
					}}},
			},
		},
		{
			name:  "If Without Else Keeps Fixed Arity",
			input: "int main() { if (x) y = 1; }",
			expected: []ast.Stmt{
				&ast.FunctionDecl{Line: 1, ReturnType: "int", Name: "main",
					Body: &ast.BlockStmt{Line: 1, Stmts: []ast.Stmt{
						&ast.IfStmt{Line: 1,
							Cond: &ast.Identifier{Line: 1, Name: "x"},
							Then: &ast.ExprStmt{Line: 1, X: &ast.AssignExpr{Line: 1, Op: "=",
								Target: &ast.Identifier{Line: 1, Name: "y"},
								Value:  &ast.IntLiteral{Line: 1, Value: 1, Text: "1"}}},
							Else: &ast.EmptyStmt{Line: 1}},
					}}},
			},
		},
		{
			name:  "Empty For Clauses Keep Fixed Arity",
			input: "int main() { for (;;) {} }",
			expected: []ast.Stmt{
				&ast.FunctionDecl{Line: 1, ReturnType: "int", Name: "main",
					Body: &ast.BlockStmt{Line: 1, Stmts: []ast.Stmt{
						&ast.ForStmt{Line: 1,
							Init: &ast.EmptyStmt{Line: 1},
							Cond: &ast.EmptyExpr{Line: 1},
							Post: &ast.EmptyStmt{Line: 1},
							Body: &ast.BlockStmt{Line: 1}},
					}}},
			},
		},
		{
			name:  "Function With Params",
			input: "int add(int a, int b) { return a + b; }",
			expected: []ast.Stmt{
				&ast.FunctionDecl{Line: 1, ReturnType: "int", Name: "add",
					Params: []ast.Param{
						{Type: "int", Name: "a"},
						{Type: "int", Name: "b"},
					},
					Body: &ast.BlockStmt{Line: 1, Stmts: []ast.Stmt{
						&ast.ReturnStmt{Line: 1, Value: &ast.BinaryExpr{Line: 1, Op: "+",
							Left:  &ast.Identifier{Line: 1, Name: "a"},
							Right: &ast.Identifier{Line: 1, Name: "b"}}},
					}}},
			},
		},
		{
			name:  "Void Param List",
			input: "int main(void) { return 0; }",
			expected: []ast.Stmt{
				&ast.FunctionDecl{Line: 1, ReturnType: "int", Name: "main",
					Body: &ast.BlockStmt{Line: 1, Stmts: []ast.Stmt{
						&ast.ReturnStmt{Line: 1,
							Value: &ast.IntLiteral{Line: 1, Value: 0, Text: "0"}},
					}}},
			},
		},
		{
			name:  "Switch With Default",
			input: "int main() { switch (x) { case 1: break; default: break; } }",
			expected: []ast.Stmt{
				&ast.FunctionDecl{Line: 1, ReturnType: "int", Name: "main",
					Body: &ast.BlockStmt{Line: 1, Stmts: []ast.Stmt{
						&ast.SwitchStmt{Line: 1,
							Target: &ast.Identifier{Line: 1, Name: "x"},
							Cases: []ast.CaseClause{
								{Line: 1, Value: &ast.IntLiteral{Line: 1, Value: 1, Text: "1"},
									Body: []ast.Stmt{&ast.BreakStmt{Line: 1}}},
							},
							Default: []ast.Stmt{&ast.BreakStmt{Line: 1}}},
					}}},
			},
		},
		{
			name:  "Additive Binds Tighter Than Relational",
			input: "int main() { x = 1 < 2 + 3; }",
			expected: []ast.Stmt{
				&ast.FunctionDecl{Line: 1, ReturnType: "int", Name: "main",
					Body: &ast.BlockStmt{Line: 1, Stmts: []ast.Stmt{
						&ast.ExprStmt{Line: 1, X: &ast.AssignExpr{Line: 1, Op: "=",
							Target: &ast.Identifier{Line: 1, Name: "x"},
							Value: &ast.BinaryExpr{Line: 1, Op: "<",
								Left: &ast.IntLiteral{Line: 1, Value: 1, Text: "1"},
								Right: &ast.BinaryExpr{Line: 1, Op: "+",
									Left:  &ast.IntLiteral{Line: 1, Value: 2, Text: "2"},
									Right: &ast.IntLiteral{Line: 1, Value: 3, Text: "3"}}}}},
					}}},
			},
		},
		{
			name:  "Bitwise Binds Tighter Than Equality",
			input: "int main() { x = a & b == c; }",
			expected: []ast.Stmt{
				&ast.FunctionDecl{Line: 1, ReturnType: "int", Name: "main",
					Body: &ast.BlockStmt{Line: 1, Stmts: []ast.Stmt{
						&ast.ExprStmt{Line: 1, X: &ast.AssignExpr{Line: 1, Op: "=",
							Target: &ast.Identifier{Line: 1, Name: "x"},
							Value: &ast.BinaryExpr{Line: 1, Op: "==",
								Left: &ast.BinaryExpr{Line: 1, Op: "&",
									Left:  &ast.Identifier{Line: 1, Name: "a"},
									Right: &ast.Identifier{Line: 1, Name: "b"}},
								Right: &ast.Identifier{Line: 1, Name: "c"}}}},
					}}},
			},
		},
		{
			name:  "Member And Arrow Access",
			input: "int main() { p->x = s.y; }",
			expected: []ast.Stmt{
				&ast.FunctionDecl{Line: 1, ReturnType: "int", Name: "main",
					Body: &ast.BlockStmt{Line: 1, Stmts: []ast.Stmt{
						&ast.ExprStmt{Line: 1, X: &ast.AssignExpr{Line: 1, Op: "=",
							Target: &ast.MemberExpr{Line: 1,
								Target: &ast.Identifier{Line: 1, Name: "p"},
								Member: "x", Arrow: true},
							Value: &ast.MemberExpr{Line: 1,
								Target: &ast.Identifier{Line: 1, Name: "s"},
								Member: "y"}}},
					}}},
			},
		},
		{
			name:  "Sizeof Captures Raw Operand",
			input: "int main() { n = sizeof(int); }",
			expected: []ast.Stmt{
				&ast.FunctionDecl{Line: 1, ReturnType: "int", Name: "main",
					Body: &ast.BlockStmt{Line: 1, Stmts: []ast.Stmt{
						&ast.ExprStmt{Line: 1, X: &ast.AssignExpr{Line: 1, Op: "=",
							Target: &ast.Identifier{Line: 1, Name: "n"},
							Value:  &ast.SizeofExpr{Line: 1, Operand: "int"}}},
					}}},
			},
		},
		{
			name:  "Call With Arguments",
			input: "int main() { printf(\"x\", a[0]); }",
			expected: []ast.Stmt{
				&ast.FunctionDecl{Line: 1, ReturnType: "int", Name: "main",
					Body: &ast.BlockStmt{Line: 1, Stmts: []ast.Stmt{
						&ast.ExprStmt{Line: 1, X: &ast.CallExpr{Line: 1, Callee: "printf",
							Args: []ast.Expr{
								&ast.StringLiteral{Line: 1, Value: "x"},
								&ast.IndexExpr{Line: 1,
									Target: &ast.Identifier{Line: 1, Name: "a"},
									Index:  &ast.IntLiteral{Line: 1, Value: 0, Text: "0"}},
							}}},
					}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := lexer.Lex(tt.input)
			prog, err := Parse(tokens, tt.input)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if !reflect.DeepEqual(prog.Decls, tt.expected) {
				t.Errorf("Parse mismatch:\nGot:      %v\nExpected: %v", prog.Decls, tt.expected)
			}
		})
	}
}

func TestParserErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Missing Semicolon", "int x = 10"},
		{"Top Level Expression", "foo;"},
		{"If Missing Parens", "int main() { if x == 1 { } }"},
		{"Unterminated Block", "int main() { x = 1;"},
		{"Missing Declarator Name", "int * = 10;"},
		{"Unterminated Array", "int main() { int arr[; }"},
		{"Switch Stray Statement", "int main() { switch (x) { foo; } }"},
		{"Call On Non Identifier", "int main() { 1(); }"},
		{"Struct Missing Semicolon", "struct P { int x; }"},
		{"Dangling Operator", "int main() { x = +; }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := lexer.Lex(tt.input)
			_, err := Parse(tokens, tt.input)
			if err == nil {
				t.Fatalf("expected parse error for %q, got none", tt.input)
			}
			var syntaxErr *diag.SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Errorf("error type = %T, want *diag.SyntaxError", err)
			}
		})
	}
}

// A malformed program aborts the whole parse; nothing partial comes back.
func TestParseReturnsNilProgramOnError(t *testing.T) {
	input := "int ok = 1;\nint broken = ;"
	prog, err := Parse(lexer.Lex(input), input)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if prog != nil {
		t.Errorf("program = %v, want nil on error", prog)
	}
	var syntaxErr *diag.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("error type = %T, want *diag.SyntaxError", err)
	}
	if syntaxErr.LineNo != 2 {
		t.Errorf("LineNo = %d, want 2", syntaxErr.LineNo)
	}
}
