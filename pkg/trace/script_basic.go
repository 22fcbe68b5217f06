package trace

import (
	"fmt"
	"strings"

	"ctrace/pkg/ast"
)

// ctrl threads break/continue/return out of nested statement execution.
type ctrl int

const (
	ctrlNone ctrl = iota
	ctrlReturn
	ctrlBreak
	ctrlContinue
)

// Bounds keeping the statement walker finite on any input.
const (
	maxLoopIterations = 8
	maxCallDepth      = 3
)

// scriptBasic plays out simple declaration/assignment/print programs by
// walking main's statements and evaluating what it can. It doubles as the
// shared statement executor for the bitwise script.
func (g *Generator) scriptBasic() {
	fn := g.mainFunc()
	if fn == nil {
		g.scriptFallback()
		return
	}
	g.state.PushFrame("main")
	g.emit(StepCall, fn.Line, "main() is called; a stack frame is created", Delta{})

	done := g.execBlock(fn.Body, 0)
	if done != ctrlReturn {
		g.returnFrom(endLine(fn), "main returns; its stack frame is removed")
	}
}

func endLine(fn *ast.FunctionDecl) int {
	line := fn.Line
	ast.Walk(fn.Body, func(n ast.Node) bool {
		if n.Pos() > line {
			line = n.Pos()
		}
		return true
	})
	return line
}

func (g *Generator) execBlock(block *ast.BlockStmt, depth int) ctrl {
	if block == nil {
		return ctrlNone
	}
	for _, stmt := range block.Stmts {
		if c := g.execStmt(stmt, depth); c != ctrlNone {
			return c
		}
	}
	return ctrlNone
}

func (g *Generator) execStmt(stmt ast.Stmt, depth int) ctrl {
	switch s := stmt.(type) {
	case *ast.DeclStmt:
		for _, d := range s.Decls {
			g.execDecl(d)
		}
	case *ast.ExprStmt:
		g.execExpr(s.X, depth)
	case *ast.ReturnStmt:
		desc := "return; the stack frame is removed"
		if _, empty := s.Value.(*ast.EmptyExpr); !empty {
			if v, ok := g.evalValue(s.Value); ok {
				desc = fmt.Sprintf("return %v; the stack frame is removed", v)
			} else {
				desc = fmt.Sprintf("return %s; the stack frame is removed", render(s.Value))
			}
		}
		g.returnFrom(s.Line, desc)
		return ctrlReturn
	case *ast.IfStmt:
		return g.execIf(s, depth)
	case *ast.ForStmt:
		return g.execFor(s, depth)
	case *ast.WhileStmt:
		return g.execWhile(s, depth)
	case *ast.BlockStmt:
		return g.execBlock(s, depth)
	case *ast.BreakStmt:
		return ctrlBreak
	case *ast.ContinueStmt:
		return ctrlContinue
	case *ast.SwitchStmt:
		g.emit(StepInformation, s.Line, fmt.Sprintf("switch on %s", render(s.Target)), Delta{})
	case *ast.EmptyStmt, *ast.StructDecl:
		// Nothing observable happens.
	default:
		g.emit(StepInformation, stmt.Pos(), stmt.String(), Delta{})
	}
	return ctrlNone
}

func (g *Generator) execDecl(d *ast.VariableDecl) {
	typ := d.DeclaredType
	if d.IsPointer {
		typ += " *"
	}

	if _, empty := d.Init.(*ast.EmptyExpr); empty {
		g.declare(d.Line, d.Name, typ, "uninitialized",
			fmt.Sprintf("Declare %s %s (uninitialized)", typ, d.Name))
		return
	}

	value, ok := g.evalValue(d.Init)
	if !ok {
		value = render(d.Init)
	}
	desc := fmt.Sprintf("Declare %s %s = %v", typ, d.Name, value)
	if g.binaryDesc {
		if n, isInt := value.(int); isInt && n >= 0 {
			desc = fmt.Sprintf("Declare %s %s = %d (binary %b)", typ, d.Name, n, n)
		}
	}
	g.declare(d.Line, d.Name, typ, value, desc)
}

func (g *Generator) execExpr(e ast.Expr, depth int) {
	switch x := e.(type) {
	case *ast.AssignExpr:
		g.execAssign(x)
	case *ast.CallExpr:
		g.execCall(x, depth)
	case *ast.UnaryExpr:
		if x.Op == "++" || x.Op == "--" {
			g.execIncDec(x.Line, x.Operand, x.Op)
			return
		}
		g.emit(StepInformation, x.Line, render(x), Delta{})
	case *ast.PostfixExpr:
		g.execIncDec(x.Line, x.Operand, x.Op)
	default:
		g.emit(StepInformation, e.Pos(), render(e), Delta{})
	}
}

func (g *Generator) execAssign(a *ast.AssignExpr) {
	ident, ok := a.Target.(*ast.Identifier)
	if !ok {
		g.emit(StepInformation, a.Line, render(a), Delta{})
		return
	}

	value, evald := g.evalValue(a.Value)
	if !evald {
		value = render(a.Value)
	}
	if a.Op != "=" && evald {
		// Compound assignment folds the current value in: "+=" applies "+".
		baseOp := strings.TrimSuffix(a.Op, "=")
		if cur, found := g.state.Lookup(ident.Name); found {
			if n, ok := intBinary(baseOp, toInt(cur.Value), toInt(value)); ok {
				value = n
			}
		}
	}

	desc := fmt.Sprintf("%s %s %s sets %s to %v", ident.Name, a.Op, render(a.Value), ident.Name, value)
	if g.binaryDesc {
		if n, isInt := value.(int); isInt && n >= 0 {
			desc = fmt.Sprintf("%s %s %s sets %s to %d (binary %b)", ident.Name, a.Op, render(a.Value), ident.Name, n, n)
		}
	}
	g.assign(a.Line, ident.Name, value, desc)
}

func (g *Generator) execIncDec(line int, operand ast.Expr, op string) {
	ident, ok := operand.(*ast.Identifier)
	if !ok {
		g.emit(StepInformation, line, render(operand)+op, Delta{})
		return
	}
	cell, found := g.state.Lookup(ident.Name)
	if !found {
		g.emit(StepInformation, line, render(operand)+op, Delta{})
		return
	}
	n := toInt(cell.Value)
	if op == "++" {
		n++
	} else {
		n--
	}
	g.assign(line, ident.Name, n, fmt.Sprintf("%s%s sets %s to %d", ident.Name, op, ident.Name, n))
}

func (g *Generator) execCall(call *ast.CallExpr, depth int) {
	switch {
	case outputFunctions[call.Callee]:
		text := g.formatOutput(call)
		if call.Callee == "puts" {
			if s, ok := firstStringArg(call); ok {
				text = s + "\n"
			}
		}
		if text == "" {
			text = "(output)\n"
		}
		g.output(call.Line, text, fmt.Sprintf("%s writes %q to the console", call.Callee, text))

	case call.Callee == "scanf":
		g.emit(StepInformation, call.Line, "scanf waits for input (not simulated)", Delta{})

	default:
		fn := ast.FindFunction(g.prog, call.Callee)
		if fn == nil || depth >= maxCallDepth {
			g.emit(StepCall, call.Line, fmt.Sprintf("call %s", render(call)), Delta{})
			return
		}
		g.execUserCall(fn, call, depth)
	}
}

// execUserCall simulates a defined function: push a frame, bind arguments
// to parameters, run the body, and pop.
func (g *Generator) execUserCall(fn *ast.FunctionDecl, call *ast.CallExpr, depth int) {
	g.state.PushFrame(fn.Name)
	g.emit(StepCall, call.Line, fmt.Sprintf("%s is called; a stack frame is created", render(call)), Delta{})
	for i, param := range fn.Params {
		var value any = "uninitialized"
		if i < len(call.Args) {
			if v, ok := g.evalValue(call.Args[i]); ok {
				value = v
			} else {
				value = render(call.Args[i])
			}
		}
		g.declare(fn.Line, param.Name, param.Type, value,
			fmt.Sprintf("Parameter %s = %v", param.Name, value))
	}
	if g.execBlock(fn.Body, depth+1) != ctrlReturn {
		g.returnFrom(endLine(fn), fmt.Sprintf("%s returns; its stack frame is removed", fn.Name))
	}
}

func (g *Generator) execIf(s *ast.IfStmt, depth int) ctrl {
	v, ok := g.evalValue(s.Cond)
	taken := true
	if ok {
		taken = truthy(v)
	}
	g.emit(StepCondition, s.Line,
		fmt.Sprintf("condition %s is %t", render(s.Cond), taken), Delta{})
	if taken {
		return g.execStmt(s.Then, depth)
	}
	if _, empty := s.Else.(*ast.EmptyStmt); !empty {
		return g.execStmt(s.Else, depth)
	}
	return ctrlNone
}

// execFor consumes break itself; a return from the body propagates so no
// statement after the loop runs once the frame is popped.
func (g *Generator) execFor(s *ast.ForStmt, depth int) ctrl {
	if _, empty := s.Init.(*ast.EmptyStmt); !empty {
		g.execStmt(s.Init, depth)
	}
	g.emit(StepLoop, s.Line, fmt.Sprintf("for loop begins (condition %s)", render(s.Cond)), Delta{})

	for i := 0; i < maxLoopIterations; i++ {
		if _, emptyCond := s.Cond.(*ast.EmptyExpr); !emptyCond {
			v, ok := g.evalValue(s.Cond)
			if !ok || !truthy(v) {
				g.emit(StepCondition, s.Line,
					fmt.Sprintf("condition %s is false; the loop exits", render(s.Cond)), Delta{})
				return ctrlNone
			}
		}
		switch g.execStmt(s.Body, depth) {
		case ctrlBreak:
			return ctrlNone
		case ctrlReturn:
			return ctrlReturn
		}
		if _, emptyPost := s.Post.(*ast.EmptyStmt); !emptyPost {
			g.execStmt(s.Post, depth)
		}
	}
	g.emit(StepInformation, s.Line, "remaining loop iterations elided", Delta{})
	return ctrlNone
}

func (g *Generator) execWhile(s *ast.WhileStmt, depth int) ctrl {
	g.emit(StepLoop, s.Line, fmt.Sprintf("while loop begins (condition %s)", render(s.Cond)), Delta{})
	for i := 0; i < maxLoopIterations; i++ {
		v, ok := g.evalValue(s.Cond)
		if !ok {
			// Not evaluable: show one pass through the body and stop.
			if c := g.execStmt(s.Body, depth); c == ctrlReturn {
				return ctrlReturn
			}
			return ctrlNone
		}
		if !truthy(v) {
			g.emit(StepCondition, s.Line,
				fmt.Sprintf("condition %s is false; the loop exits", render(s.Cond)), Delta{})
			return ctrlNone
		}
		switch g.execStmt(s.Body, depth) {
		case ctrlBreak:
			return ctrlNone
		case ctrlReturn:
			return ctrlReturn
		}
	}
	g.emit(StepInformation, s.Line, "remaining loop iterations elided", Delta{})
	return ctrlNone
}

func toInt(v any) int {
	if n, ok := v.(int); ok {
		return n
	}
	return 0
}
