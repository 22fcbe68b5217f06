package trace

import (
	"fmt"
)

// scriptDynamicAllocation plays out the canonical malloc/free lifecycle:
// declare the pointer uninitialized, declare the count, allocate a heap
// block and point the pointer at it, initialize and print each element,
// free the block, warn about the now-dangling pointer, and return.
func (g *Generator) scriptDynamicAllocation() {
	fn := g.mainFunc()
	if fn == nil {
		g.scriptFallback()
		return
	}
	g.state.PushFrame("main")
	g.emit(StepCall, fn.Line, "main() is called; a stack frame is created", Delta{})

	decls := localDecls(fn)

	// The pointer that will receive the allocation.
	ptrName, ptrType, ptrLine := "ptr", "int *", bodyLine(fn)
	for _, d := range decls {
		if d.IsPointer {
			ptrName, ptrLine = d.Name, d.Line
			ptrType = d.DeclaredType + " *"
			break
		}
	}
	g.declare(ptrLine, ptrName, ptrType, "uninitialized",
		fmt.Sprintf("Declare %s %s (uninitialized pointer)", ptrType, ptrName))

	// An element count variable, when the program has one.
	count := 5
	for _, d := range decls {
		if d.IsPointer {
			continue
		}
		if v, ok := g.evalInt(d.Init); ok {
			g.declare(d.Line, d.Name, d.DeclaredType, v,
				fmt.Sprintf("Declare %s %s = %d", d.DeclaredType, d.Name, v))
			count = v
			break
		}
	}
	if count < 1 || count > 16 {
		count = 5
	}

	// The allocation itself.
	mallocLine := ptrLine
	elemSize := cellSize
	bytes := count * elemSize
	if calls := findCalls(fn.Body, "malloc"); len(calls) > 0 {
		call := calls[0]
		mallocLine = call.Line
		if len(call.Args) == 1 {
			if v, ok := g.evalInt(call.Args[0]); ok && v > 0 && v <= 16*cellSize {
				bytes = v
				count = bytes / elemSize
				if count < 1 {
					count = 1
				}
			}
		}
	}

	block := g.state.Allocate(bytes)
	ptrCell, _ := g.state.Set(ptrName, block.Address)
	snapshot := *ptrCell
	g.emit(StepAllocation, mallocLine,
		fmt.Sprintf("malloc(%d) reserves a heap block at 0x%X; %s points to it", bytes, block.Address, ptrName),
		Delta{
			Heap:   map[int]HeapChange{block.Address: {Size: block.Size, Freed: false}},
			Memory: map[int]MemoryCell{ptrCell.Address: snapshot},
			Stack: map[string]StackChange{
				"main": {Change: StackUpdatedVariable, Variable: ptrName, Cell: &snapshot},
			},
		})

	// Initialize each element.
	for i := 0; i < count; i++ {
		addr := block.Address + i*elemSize
		value := (i + 1) * 10
		cell := MemoryCell{
			Address: addr,
			Name:    fmt.Sprintf("%s[%d]", ptrName, i),
			Type:    "int",
			Value:   value,
		}
		g.state.Memory[addr] = &cell
		g.emit(StepAssignment, mallocLine,
			fmt.Sprintf("%s[%d] = %d stores into the heap block", ptrName, i, value),
			Delta{Memory: map[int]MemoryCell{addr: cell}})
	}

	// Print each element.
	printLine := mallocLine
	if calls := findCalls(fn.Body, "printf"); len(calls) > 0 {
		printLine = calls[0].Line
	}
	for i := 0; i < count; i++ {
		text := fmt.Sprintf("%d ", (i+1)*10)
		g.output(printLine, text,
			fmt.Sprintf("printf prints %s[%d]", ptrName, i))
	}

	// Release the block; it stays in the heap map, flagged freed.
	freeLine := mallocLine
	if calls := findCalls(fn.Body, "free"); len(calls) > 0 {
		freeLine = calls[0].Line
	}
	g.state.Free(block.Address)
	g.emit(StepDeallocation, freeLine,
		fmt.Sprintf("free(%s) releases the heap block at 0x%X", ptrName, block.Address),
		Delta{Heap: map[int]HeapChange{block.Address: {Size: block.Size, Freed: true}}})

	g.emit(StepWarning, freeLine,
		fmt.Sprintf("%s still holds 0x%X after free: a dangling pointer", ptrName, block.Address),
		Delta{})

	g.returnFrom(endLine(fn), "main returns; its stack frame is removed")
}
