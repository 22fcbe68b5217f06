package ast

import (
	"reflect"
	"testing"
)

func TestWalkPreOrder(t *testing.T) {
	prog := &Program{Decls: []Stmt{
		&FunctionDecl{Line: 1, ReturnType: "int", Name: "main",
			Body: &BlockStmt{Line: 1, Stmts: []Stmt{
				&IfStmt{Line: 2,
					Cond: &Identifier{Line: 2, Name: "x"},
					Then: &ExprStmt{Line: 3, X: &CallExpr{Line: 3, Callee: "printf",
						Args: []Expr{&StringLiteral{Line: 3, Value: "hi"}}}},
					Else: &EmptyStmt{Line: 2}},
			}}},
	}}

	var order []string
	Walk(prog, func(n Node) bool {
		order = append(order, reflect.TypeOf(n).Elem().Name())
		return true
	})
	expected := []string{
		"Program", "FunctionDecl", "BlockStmt", "IfStmt",
		"Identifier", "ExprStmt", "CallExpr", "StringLiteral", "EmptyStmt",
	}
	if !reflect.DeepEqual(order, expected) {
		t.Errorf("walk order = %v, want %v", order, expected)
	}
}

func TestWalkSkipsChildrenOnFalse(t *testing.T) {
	prog := &Program{Decls: []Stmt{
		&FunctionDecl{Line: 1, ReturnType: "int", Name: "f",
			Body: &BlockStmt{Line: 1, Stmts: []Stmt{
				&ExprStmt{Line: 2, X: &Identifier{Line: 2, Name: "inner"}},
			}}},
	}}
	var visited []string
	Walk(prog, func(n Node) bool {
		visited = append(visited, reflect.TypeOf(n).Elem().Name())
		_, isFn := n.(*FunctionDecl)
		return !isFn
	})
	expected := []string{"Program", "FunctionDecl"}
	if !reflect.DeepEqual(visited, expected) {
		t.Errorf("visited = %v, want %v", visited, expected)
	}
}

func TestFindFunction(t *testing.T) {
	main := &FunctionDecl{Line: 3, ReturnType: "int", Name: "main", Body: &BlockStmt{Line: 3}}
	prog := &Program{Decls: []Stmt{
		&Directive{Line: 1, Command: "#include", Arg: "<stdio.h>"},
		&FunctionDecl{Line: 2, ReturnType: "int", Name: "helper", Body: &BlockStmt{Line: 2}},
		main,
	}}
	if got := FindFunction(prog, "main"); got != main {
		t.Errorf("FindFunction(main) = %v", got)
	}
	if got := FindFunction(prog, "missing"); got != nil {
		t.Errorf("FindFunction(missing) = %v, want nil", got)
	}
}
