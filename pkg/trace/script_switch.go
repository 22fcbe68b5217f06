package trace

import (
	"fmt"

	"ctrace/pkg/ast"
)

// scriptSwitchCase traces the canonical switch idiom: declare the scrutinee,
// show each case comparison in order, play out the matching case's body, and
// note the break that leaves the switch.
func (g *Generator) scriptSwitchCase() {
	fn := g.mainFunc()
	if fn == nil {
		g.scriptFallback()
		return
	}
	g.state.PushFrame("main")
	g.emit(StepCall, fn.Line, "main() is called; a stack frame is created", Delta{})

	// Declarations before the switch happen normally.
	var sw *ast.SwitchStmt
	for _, stmt := range fn.Body.Stmts {
		if s, ok := stmt.(*ast.SwitchStmt); ok {
			sw = s
			break
		}
		if d, ok := stmt.(*ast.DeclStmt); ok {
			for _, v := range d.Decls {
				g.execDecl(v)
			}
		}
	}
	if sw == nil {
		// The fingerprint matched text the parse didn't keep as a switch.
		g.execBlock(fn.Body, 0)
		g.returnFrom(endLine(fn), "main returns; its stack frame is removed")
		return
	}

	target := render(sw.Target)
	targetVal, haveVal := g.evalInt(sw.Target)
	g.emit(StepCondition, sw.Line,
		fmt.Sprintf("switch (%s) evaluates its target", target), Delta{})

	matched := false
	done := ctrlNone
	for _, c := range sw.Cases {
		caseVal, ok := g.evalInt(c.Value)
		hit := haveVal && ok && caseVal == targetVal
		if !haveVal {
			// Without a concrete value, the first case plays as the match.
			hit = !matched
		}
		if hit {
			matched = true
			g.emit(StepCondition, c.Line,
				fmt.Sprintf("case %s matches %s", render(c.Value), target), Delta{})
			done = g.playCaseBody(c.Body)
		} else if !matched {
			g.emit(StepCondition, c.Line,
				fmt.Sprintf("case %s does not match %s", render(c.Value), target), Delta{})
		}
	}
	if !matched && len(sw.Default) > 0 {
		g.emit(StepCondition, sw.Line, "no case matched; default runs", Delta{})
		done = g.playCaseBody(sw.Default)
	}

	// A return inside the case already popped the frame.
	if done != ctrlReturn {
		g.returnFrom(endLine(fn), "main returns; its stack frame is removed")
	}
}

// playCaseBody runs a case's statements up to its break. A return inside the
// body pops the frame and is reported to the caller.
func (g *Generator) playCaseBody(body []ast.Stmt) ctrl {
	for _, stmt := range body {
		if b, ok := stmt.(*ast.BreakStmt); ok {
			g.emit(StepInformation, b.Line, "break leaves the switch", Delta{})
			return ctrlNone
		}
		switch g.execStmt(stmt, 0) {
		case ctrlReturn:
			return ctrlReturn
		case ctrlBreak, ctrlContinue:
			return ctrlNone
		}
	}
	return ctrlNone
}
