package trace

import (
	"fmt"

	"ctrace/pkg/ast"
)

// Depth cap for the recursion script. Deep enough to show the descent and
// unwind, small enough to keep the step list readable.
const maxRecursionDepth = 6

// scriptRecursion traces the canonical self-recursive function (factorial
// style): a frame per nested call on the way down, an information step at
// the base case, then the unwinding returns with the computed values.
func (g *Generator) scriptRecursion() {
	fn := recursiveFunction(g.prog)
	main := g.mainFunc()
	if fn == nil || main == nil {
		g.scriptFallback()
		return
	}

	g.state.PushFrame("main")
	g.emit(StepCall, main.Line, "main() is called; a stack frame is created", Delta{})

	// The argument main passes into the first recursive call.
	arg := 5
	if calls := findCalls(main.Body, fn.Name); len(calls) > 0 && len(calls[0].Args) > 0 {
		if n, ok := g.evalInt(calls[0].Args[0]); ok {
			arg = n
		}
	}
	if arg < 1 {
		arg = 1
	}
	if arg > maxRecursionDepth {
		g.emit(StepInformation, main.Line,
			fmt.Sprintf("Tracing %s(%d) with depth capped at %d", fn.Name, arg, maxRecursionDepth),
			Delta{})
		arg = maxRecursionDepth
	}

	paramName := "n"
	if len(fn.Params) > 0 {
		paramName = fn.Params[0].Name
	}

	// Descent: one frame and one parameter cell per nested call.
	for n := arg; n >= 1; n-- {
		g.state.PushFrame(fn.Name)
		g.emit(StepCall, fn.Line,
			fmt.Sprintf("%s(%d) is called; a new stack frame is created", fn.Name, n),
			Delta{})
		g.declare(fn.Line, paramName, "int", n,
			fmt.Sprintf("Parameter %s = %d in this frame", paramName, n))
	}
	g.emit(StepInformation, baseCaseLine(fn),
		fmt.Sprintf("Base case reached: %s = 1; the recursion stops descending", paramName),
		Delta{})

	// Unwind: each frame returns its partial product to its caller.
	result := 1
	for n := 1; n <= arg; n++ {
		result *= n
		g.returnFrom(returnLine(fn),
			fmt.Sprintf("%s(%d) returns %d; its frame is removed", fn.Name, n, result))
	}

	// Back in main, print the result the way the source does.
	if calls := findCalls(main.Body, "printf"); len(calls) > 0 {
		text := fmt.Sprintf("%d\n", result)
		if format, ok := firstStringArg(calls[0]); ok {
			text = substituteFirstInt(format, result)
		}
		g.output(calls[0].Line, text,
			fmt.Sprintf("printf prints the result %d", result))
	}

	g.returnFrom(endLine(main), "main returns; its stack frame is removed")
}

// baseCaseLine is the line of the first if statement in the recursive
// function, where the base-case test conventionally lives.
func baseCaseLine(fn *ast.FunctionDecl) int {
	line := fn.Line
	found := false
	ast.Walk(fn.Body, func(n ast.Node) bool {
		if s, ok := n.(*ast.IfStmt); ok && !found {
			found = true
			line = s.Line
		}
		return !found
	})
	return line
}

// returnLine is the line of the recursive function's last return statement.
func returnLine(fn *ast.FunctionDecl) int {
	line := fn.Line
	ast.Walk(fn.Body, func(n ast.Node) bool {
		if s, ok := n.(*ast.ReturnStmt); ok {
			line = s.Line
		}
		return true
	})
	return line
}

// substituteFirstInt replaces the first integer verb in a printf format with
// the value, dropping any remaining verbs.
func substituteFirstInt(format string, value int) string {
	out := make([]byte, 0, len(format)+8)
	used := false
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 >= len(format) {
			out = append(out, c)
			continue
		}
		verb := format[i+1]
		i++
		if verb == '%' {
			out = append(out, '%')
			continue
		}
		if !used {
			out = append(out, fmt.Sprintf("%d", value)...)
			used = true
		}
	}
	return string(out)
}
