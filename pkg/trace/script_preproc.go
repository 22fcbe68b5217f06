package trace

import (
	"fmt"
	"sort"

	"ctrace/pkg/ast"
)

// scriptPreprocessor traces the canonical #define idiom: one information
// step per macro showing its expansion, then main's statements with macro
// names resolving to their defined values.
func (g *Generator) scriptPreprocessor() {
	// Macro definitions are processed before any code runs.
	var dirs []*ast.Directive
	if g.prog != nil {
		for _, d := range g.prog.Decls {
			if dir, ok := d.(*ast.Directive); ok && dir.Command == "#define" {
				dirs = append(dirs, dir)
			}
		}
	}
	sort.SliceStable(dirs, func(i, j int) bool { return dirs[i].Line < dirs[j].Line })
	for _, dir := range dirs {
		g.emit(StepInformation, dir.Line,
			fmt.Sprintf("#define %s %s: every use of %s is replaced before compilation",
				dir.Name, dir.Arg, dir.Name),
			Delta{})
	}

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
