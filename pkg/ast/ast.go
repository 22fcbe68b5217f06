// Package ast defines the syntax tree produced by the parser. Each node
// variant carries only the fields its production needs; control nodes have
// fixed arity by construction, with explicit Empty nodes standing in for
// omitted clauses so consumers can rely on shape.
package ast

import (
	"fmt"
	"strings"
)

// Node is implemented by every tree node.
type Node interface {
	// Pos returns the 1-based source line of the node's introducing token.
	Pos() int
	String() string
}

// Expr is implemented by every node that produces a value.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by every node that does not produce a value.
type Stmt interface {
	Node
	stmtNode()
}

// Program is the tree root.
type Program struct {
	Decls []Stmt
}

func (p *Program) Pos() int { return 1 }
func (p *Program) String() string {
	return fmt.Sprintf("Program(decls=%d)", len(p.Decls))
}

//  Expression nodes

// IntLiteral is an integer constant, decimal or hex.
type IntLiteral struct {
	Line  int
	Value int
	Text  string // original source spelling, e.g. "0x1A"
}

func (*IntLiteral) exprNode()        {}
func (l *IntLiteral) Pos() int       { return l.Line }
func (l *IntLiteral) String() string { return l.Text }

// FloatLiteral is a decimal constant like 3.14.
type FloatLiteral struct {
	Line  int
	Value float64
	Text  string
}

func (*FloatLiteral) exprNode()        {}
func (l *FloatLiteral) Pos() int       { return l.Line }
func (l *FloatLiteral) String() string { return l.Text }

// StringLiteral holds the unquoted, unescaped value.
type StringLiteral struct {
	Line  int
	Value string
}

func (*StringLiteral) exprNode()        {}
func (l *StringLiteral) Pos() int       { return l.Line }
func (l *StringLiteral) String() string { return fmt.Sprintf("%q", l.Value) }

// CharLiteral is a character constant 'c'.
type CharLiteral struct {
	Line  int
	Value rune
	Text  string
}

func (*CharLiteral) exprNode()        {}
func (l *CharLiteral) Pos() int       { return l.Line }
func (l *CharLiteral) String() string { return l.Text }

// Identifier is a read of a named variable.
type Identifier struct {
	Line int
	Name string
}

func (*Identifier) exprNode()        {}
func (i *Identifier) Pos() int       { return i.Line }
func (i *Identifier) String() string { return i.Name }

// AssignExpr represents Target Op Value. Assignment is right-associative:
// a = b = c parses as a = (b = c).
type AssignExpr struct {
	Line   int
	Op     string // "=", "+=", "-=", "*=", "/=", "%="
	Target Expr
	Value  Expr
}

func (*AssignExpr) exprNode()  {}
func (a *AssignExpr) Pos() int { return a.Line }
func (a *AssignExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", a.Target, a.Op, a.Value)
}

// BinaryExpr represents Left Op Right for every left-associative binary
// operator, tagged with the concrete operator text.
type BinaryExpr struct {
	Line  int
	Op    string
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode()  {}
func (b *BinaryExpr) Pos() int { return b.Line }
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

// UnaryExpr represents a prefix operator: &x, *p, -n, !ok, ~bits, ++i.
type UnaryExpr struct {
	Line    int
	Op      string
	Operand Expr
}

func (*UnaryExpr) exprNode()        {}
func (u *UnaryExpr) Pos() int       { return u.Line }
func (u *UnaryExpr) String() string { return fmt.Sprintf("(%s%s)", u.Op, u.Operand) }

// PostfixExpr represents i++ or i--.
type PostfixExpr struct {
	Line    int
	Op      string
	Operand Expr
}

func (*PostfixExpr) exprNode()        {}
func (p *PostfixExpr) Pos() int       { return p.Line }
func (p *PostfixExpr) String() string { return fmt.Sprintf("(%s%s)", p.Operand, p.Op) }

// CallExpr represents Callee(Args...).
type CallExpr struct {
	Line   int
	Callee string
	Args   []Expr
}

func (*CallExpr) exprNode()  {}
func (c *CallExpr) Pos() int { return c.Line }
func (c *CallExpr) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Callee, strings.Join(parts, ", "))
}

// IndexExpr represents Target[Index].
type IndexExpr struct {
	Line   int
	Target Expr
	Index  Expr
}

func (*IndexExpr) exprNode()        {}
func (e *IndexExpr) Pos() int       { return e.Line }
func (e *IndexExpr) String() string { return fmt.Sprintf("%s[%s]", e.Target, e.Index) }

// MemberExpr represents Target.Member or Target->Member.
type MemberExpr struct {
	Line   int
	Target Expr
	Member string
	Arrow  bool
}

func (*MemberExpr) exprNode()  {}
func (e *MemberExpr) Pos() int { return e.Line }
func (e *MemberExpr) String() string {
	op := "."
	if e.Arrow {
		op = "->"
	}
	return fmt.Sprintf("%s%s%s", e.Target, op, e.Member)
}

// SizeofExpr represents sizeof(operand); the operand is kept as raw text
// since it may name a type rather than an expression.
type SizeofExpr struct {
	Line    int
	Operand string
}

func (*SizeofExpr) exprNode()        {}
func (e *SizeofExpr) Pos() int       { return e.Line }
func (e *SizeofExpr) String() string { return fmt.Sprintf("sizeof(%s)", e.Operand) }

// InitListExpr represents { expr, expr, ... }.
type InitListExpr struct {
	Line  int
	Elems []Expr
}

func (*InitListExpr) exprNode()  {}
func (e *InitListExpr) Pos() int { return e.Line }
func (e *InitListExpr) String() string {
	parts := make([]string, len(e.Elems))
	for i, el := range e.Elems {
		parts[i] = el.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// EmptyExpr stands in for an omitted expression so arity stays fixed.
type EmptyExpr struct {
	Line int
}

func (*EmptyExpr) exprNode()        {}
func (e *EmptyExpr) Pos() int       { return e.Line }
func (e *EmptyExpr) String() string { return "<empty>" }

//  Statement nodes

// Directive is a top-level preprocessor line, e.g. #include <stdio.h>.
type Directive struct {
	Line    int
	Command string // "#include", "#define", ...
	Name    string // macro name for #define, "" otherwise
	Arg     string // filename or replacement text
}

func (*Directive) stmtNode()  {}
func (d *Directive) Pos() int { return d.Line }
func (d *Directive) String() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s %s", d.Command, d.Name, d.Arg))
}

// Param is one entry in a function's ordered parameter list.
type Param struct {
	Type      string
	Name      string
	IsPointer bool
}

func (p Param) String() string {
	star := ""
	if p.IsPointer {
		star = "*"
	}
	return fmt.Sprintf("%s %s%s", p.Type, star, p.Name)
}

// FunctionDecl represents ReturnType Name(Params) { Body }.
type FunctionDecl struct {
	Line       int
	ReturnType string
	Name       string
	Params     []Param
	Body       *BlockStmt
}

func (*FunctionDecl) stmtNode()  {}
func (f *FunctionDecl) Pos() int { return f.Line }
func (f *FunctionDecl) String() string {
	return fmt.Sprintf("FunctionDecl(%s %s, params=%v)", f.ReturnType, f.Name, f.Params)
}

// VariableDecl is a single declarator: type [*] name [= init].
type VariableDecl struct {
	Line         int
	DeclaredType string
	IsPointer    bool
	Name         string
	Init         Expr // *EmptyExpr when no initializer
	IsArray      bool
	ArraySize    Expr // *EmptyExpr for int arr[] = {...}
}

func (*VariableDecl) stmtNode()  {}
func (d *VariableDecl) Pos() int { return d.Line }
func (d *VariableDecl) String() string {
	star := ""
	if d.IsPointer {
		star = "*"
	}
	if d.IsArray {
		return fmt.Sprintf("VariableDecl(%s %s%s[%s] = %s)", d.DeclaredType, star, d.Name, d.ArraySize, d.Init)
	}
	return fmt.Sprintf("VariableDecl(%s %s%s = %s)", d.DeclaredType, star, d.Name, d.Init)
}

// DeclStmt groups the declarators of one declaration statement:
// int a = 1, b;
type DeclStmt struct {
	Line  int
	Decls []*VariableDecl
}

func (*DeclStmt) stmtNode()  {}
func (d *DeclStmt) Pos() int { return d.Line }
func (d *DeclStmt) String() string {
	parts := make([]string, len(d.Decls))
	for i, v := range d.Decls {
		parts[i] = v.String()
	}
	return strings.Join(parts, "; ")
}

// StructDecl represents struct Name { fields };
type StructDecl struct {
	Line   int
	Name   string
	Fields []*VariableDecl
}

func (*StructDecl) stmtNode()  {}
func (s *StructDecl) Pos() int { return s.Line }
func (s *StructDecl) String() string {
	return fmt.Sprintf("StructDecl(%s, fields=%d)", s.Name, len(s.Fields))
}

// BlockStmt represents { statements... }.
type BlockStmt struct {
	Line  int
	Stmts []Stmt
}

func (*BlockStmt) stmtNode()        {}
func (b *BlockStmt) Pos() int       { return b.Line }
func (b *BlockStmt) String() string { return fmt.Sprintf("BlockStmt(len=%d)", len(b.Stmts)) }

// IfStmt always has all three children; Else is *EmptyStmt when absent.
type IfStmt struct {
	Line int
	Cond Expr
	Then Stmt
	Else Stmt
}

func (*IfStmt) stmtNode()  {}
func (i *IfStmt) Pos() int { return i.Line }
func (i *IfStmt) String() string {
	return fmt.Sprintf("IfStmt(if %s then %s else %s)", i.Cond, i.Then, i.Else)
}

// ForStmt always has exactly four children: omitted clauses become Empty
// nodes rather than nils.
type ForStmt struct {
	Line int
	Init Stmt
	Cond Expr
	Post Stmt
	Body Stmt
}

func (*ForStmt) stmtNode()  {}
func (f *ForStmt) Pos() int { return f.Line }
func (f *ForStmt) String() string {
	return fmt.Sprintf("ForStmt(init=%s, cond=%s, post=%s, body=%s)", f.Init, f.Cond, f.Post, f.Body)
}

// WhileStmt represents while (cond) body.
type WhileStmt struct {
	Line int
	Cond Expr
	Body Stmt
}

func (*WhileStmt) stmtNode()  {}
func (w *WhileStmt) Pos() int { return w.Line }
func (w *WhileStmt) String() string {
	return fmt.Sprintf("WhileStmt(while %s do %s)", w.Cond, w.Body)
}

// ReturnStmt represents return [expr]; Value is *EmptyExpr for a bare return.
type ReturnStmt struct {
	Line  int
	Value Expr
}

func (*ReturnStmt) stmtNode()        {}
func (r *ReturnStmt) Pos() int       { return r.Line }
func (r *ReturnStmt) String() string { return fmt.Sprintf("ReturnStmt(%s)", r.Value) }

// / CaseClause represents case Value: Body. Bodies may fall through.
type CaseClause struct {
	Line  int
	Value Expr
	Body  []Stmt
}

func (c CaseClause) String() string {
	return fmt.Sprintf("case %s: (%d stmts)", c.Value, len(c.Body))
}

// SwitchStmt represents switch (Target) { Cases... Default... }.
type SwitchStmt struct {
	Line    int
	Target  Expr
	Cases   []CaseClause
	Default []Stmt
}

func (*SwitchStmt) stmtNode()  {}
func (s *SwitchStmt) Pos() int { return s.Line }
func (s *SwitchStmt) String() string {
	return fmt.Sprintf("SwitchStmt(target=%s, cases=%d, default=%d)", s.Target, len(s.Cases), len(s.Default))
}

// BreakStmt represents break;
type BreakStmt struct {
	Line int
}

func (*BreakStmt) stmtNode()        {}
func (s *BreakStmt) Pos() int       { return s.Line }
func (s *BreakStmt) String() string { return "BreakStmt" }

// ContinueStmt represents continue;
type ContinueStmt struct {
	Line int
}

func (*ContinueStmt) stmtNode()        {}
func (s *ContinueStmt) Pos() int       { return s.Line }
func (s *ContinueStmt) String() string { return "ContinueStmt" }

// ExprStmt is an expression evaluated for its side effects.
type ExprStmt struct {
	Line int
	X    Expr
}

func (*ExprStmt) stmtNode()        {}
func (e *ExprStmt) Pos() int       { return e.Line }
func (e *ExprStmt) String() string { return fmt.Sprintf("ExprStmt(%s)", e.X) }

// EmptyStmt stands in for an omitted statement clause.
type EmptyStmt struct {
	Line int
}

func (*EmptyStmt) stmtNode()        {}
func (s *EmptyStmt) Pos() int       { return s.Line }
func (s *EmptyStmt) String() string { return "<empty>" }
