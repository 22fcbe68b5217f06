package trace

import (
	"fmt"

	"ctrace/pkg/ast"
)

// scriptFallback is the generic path for programs with no recognizable
// idiom: trace the output calls in main and nothing else. Without a main
// function there is nothing to simulate at all.
func (g *Generator) scriptFallback() {
	fn := g.mainFunc()
	if fn == nil {
		if g.log != nil {
			g.log.Errorf("no main() function found; cannot simulate")
		}
		g.emit(StepError, 1, "No main() function found; nothing to simulate", Delta{})
		return
	}

	g.state.PushFrame("main")
	g.emit(StepInformation, fn.Line,
		"Program shape not recognized; tracing console output only", Delta{})

	var calls []*ast.CallExpr
	ast.Walk(fn.Body, func(n ast.Node) bool {
		if call, ok := n.(*ast.CallExpr); ok && outputFunctions[call.Callee] {
			calls = append(calls, call)
		}
		return true
	})
	for _, call := range calls {
		text := g.formatOutput(call)
		if text == "" {
			text = "(output)\n"
		}
		g.output(call.Line, text, fmt.Sprintf("%s writes %q to the console", call.Callee, text))
	}

	g.returnFrom(endLine(fn), "main returns; its stack frame is removed")
}
