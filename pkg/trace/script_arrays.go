package trace

import (
	"fmt"

	"ctrace/pkg/ast"
)

// scriptArrays traces the canonical fixed-size array idiom: declare the
// array with one cell per element, show each element's value, print them in
// a loop, and return.
func (g *Generator) scriptArrays() {
	fn := g.mainFunc()
	if fn == nil {
		g.scriptFallback()
		return
	}
	g.state.PushFrame("main")
	g.emit(StepCall, fn.Line, "main() is called; a stack frame is created", Delta{})

	// Find the declared array, its size, and its initializer values.
	name, line, size := "arr", bodyLine(fn), 5
	elemType := "int"
	var init *ast.InitListExpr
	for _, d := range localDecls(fn) {
		if !d.IsArray {
			continue
		}
		name, line, elemType = d.Name, d.Line, d.DeclaredType
		if n, ok := g.evalInt(d.ArraySize); ok && n > 0 && n <= 16 {
			size = n
		}
		if list, ok := d.Init.(*ast.InitListExpr); ok {
			init = list
			if len(list.Elems) > 0 && len(list.Elems) <= 16 {
				size = len(list.Elems)
			}
		}
		break
	}

	values := make([]int, size)
	for i := range values {
		values[i] = (i + 1) * 10
		if init != nil && i < len(init.Elems) {
			if v, ok := g.evalInt(init.Elems[i]); ok {
				values[i] = v
			}
		}
	}

	// One contiguous run of stack cells, one per element.
	cells := make(map[int]MemoryCell, size)
	var base *MemoryCell
	for i := 0; i < size; i++ {
		cell := g.state.Declare(fmt.Sprintf("%s[%d]", name, i), elemType, values[i])
		cells[cell.Address] = *cell
		if i == 0 {
			base = cell
		}
	}
	baseSnapshot := *base
	g.emit(StepDeclaration, line,
		fmt.Sprintf("Declare %s %s[%d] at 0x%X (%d contiguous cells)", elemType, name, size, base.Address, size),
		Delta{
			Memory: cells,
			Stack: map[string]StackChange{
				"main": {Change: StackAddedVariable, Variable: name, Cell: &baseSnapshot},
			},
		})

	// Walk the elements the way the canonical for loop does.
	loopLine := line
	ast.Walk(fn.Body, func(n ast.Node) bool {
		if f, ok := n.(*ast.ForStmt); ok && loopLine == line {
			loopLine = f.Line
		}
		return true
	})
	g.emit(StepLoop, loopLine, fmt.Sprintf("for loop visits each of the %d elements", size), Delta{})
	for i := 0; i < size; i++ {
		text := fmt.Sprintf("%d ", values[i])
		g.output(loopLine, text, fmt.Sprintf("printf prints %s[%d] = %d", name, i, values[i]))
	}

	g.returnFrom(endLine(fn), "main returns; its stack frame is removed")
}
