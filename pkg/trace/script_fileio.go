package trace

import (
	"fmt"

	"ctrace/pkg/ast"
)

// scriptFileIO traces the canonical fopen/fprintf/fclose idiom. The file
// handle lives in a stack cell; no real I/O happens, the write calls only
// describe what the program would emit.
func (g *Generator) scriptFileIO() {
	fn := g.mainFunc()
	if fn == nil {
		g.scriptFallback()
		return
	}
	g.state.PushFrame("main")
	g.emit(StepCall, fn.Line, "main() is called; a stack frame is created", Delta{})

	// Mine the real handle name and file name where present.
	handle, line := "fp", bodyLine(fn)
	for _, d := range localDecls(fn) {
		if d.DeclaredType == "FILE" {
			handle, line = d.Name, d.Line
			break
		}
	}
	fileName := "output.txt"
	openLine := line
	if opens := findCalls(fn.Body, "fopen"); len(opens) > 0 {
		openLine = opens[0].Line
		if s, ok := firstStringArg(opens[0]); ok {
			fileName = s
		}
	}

	g.declare(line, handle, "FILE *", "uninitialized",
		fmt.Sprintf("Declare FILE *%s (uninitialized)", handle))
	g.assign(openLine, handle, "<file handle>",
		fmt.Sprintf("fopen(%q) opens the file and returns a handle", fileName))

	// The open may fail; real programs guard on NULL.
	guarded := false
	ast.Walk(fn.Body, func(n ast.Node) bool {
		if s, ok := n.(*ast.IfStmt); ok && !guarded {
			guarded = true
			g.emit(StepCondition, s.Line,
				fmt.Sprintf("if (%s == NULL) is false; the file opened", handle), Delta{})
		}
		return !guarded
	})

	for _, call := range findCalls(fn.Body, "fprintf") {
		text := "Hello, file!\n"
		if s, ok := firstStringArg(call); ok {
			text = s
		}
		g.state.Write(text)
		g.emit(StepCall, call.Line,
			fmt.Sprintf("fprintf writes %q to %s", text, fileName),
			Delta{Output: text})
	}

	closeLine := endLine(fn)
	if closes := findCalls(fn.Body, "fclose"); len(closes) > 0 {
		closeLine = closes[0].Line
	}
	g.assign(closeLine, handle, "closed",
		fmt.Sprintf("fclose(%s) flushes and closes %s", handle, fileName))

	g.returnFrom(endLine(fn), "main returns; its stack frame is removed")
}
