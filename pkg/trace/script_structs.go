package trace

import (
	"fmt"
	"strings"

	"ctrace/pkg/ast"
)

// scriptStructures traces the canonical struct idiom: declare a struct
// variable with one stack cell per field, assign each field, then print
// them.
func (g *Generator) scriptStructures() {
	fn := g.mainFunc()
	if fn == nil {
		g.scriptFallback()
		return
	}

	structName, fields := g.firstStruct()

	g.state.PushFrame("main")
	g.emit(StepCall, fn.Line, "main() is called; a stack frame is created", Delta{})

	// The struct variable declared inside main, if any.
	varName, line := "s", bodyLine(fn)
	for _, d := range localDecls(fn) {
		if strings.HasPrefix(d.DeclaredType, "struct") || d.DeclaredType == structName {
			varName, line = d.Name, d.Line
			break
		}
	}

	cells := make(map[int]MemoryCell, len(fields))
	changes := make(map[string]StackChange, len(fields))
	for _, f := range fields {
		cell := g.state.Declare(varName+"."+f.name, f.typ, "uninitialized")
		cells[cell.Address] = *cell
		snapshot := *cell
		changes[varName+"."+f.name] = StackChange{
			Change:   StackAddedVariable,
			Variable: varName + "." + f.name,
			Cell:     &snapshot,
		}
	}
	g.emit(StepDeclaration, line,
		fmt.Sprintf("Declare struct %s %s; one cell per field (%d fields)", structName, varName, len(fields)),
		Delta{Memory: cells, Stack: changes})

	// Assign each field a representative value, then print it. Lines come
	// from the real member assignments and printf calls where the program
	// has them; synthesized positions stay clamped to the source.
	assigns := memberAssigns(fn)
	for i, f := range fields {
		value := g.fieldValue(f, i)
		assignLine := g.clampLine(line + 1 + i)
		if i < len(assigns) {
			assignLine = assigns[i].Line
		}
		g.assign(assignLine, varName+"."+f.name, value,
			fmt.Sprintf("%s.%s = %v", varName, f.name, value))
	}
	prints := findCalls(fn.Body, "printf")
	for i, f := range fields {
		printLine := g.clampLine(line + 1 + len(fields))
		if i < len(prints) {
			printLine = prints[i].Line
		}
		cell, _ := g.state.Lookup(varName + "." + f.name)
		text := fmt.Sprintf("%s: %v\n", f.name, cell.Value)
		g.output(printLine, text,
			fmt.Sprintf("printf prints %s.%s", varName, f.name))
	}

	g.returnFrom(endLine(fn), "main returns; its stack frame is removed")
}

type structField struct {
	name string
	typ  string
}

// memberAssigns collects fn's assignments whose target is a member access,
// in source order.
func memberAssigns(fn *ast.FunctionDecl) []*ast.AssignExpr {
	var out []*ast.AssignExpr
	ast.Walk(fn.Body, func(n ast.Node) bool {
		if a, ok := n.(*ast.AssignExpr); ok {
			if _, isMember := a.Target.(*ast.MemberExpr); isMember {
				out = append(out, a)
			}
		}
		return true
	})
	return out
}

// firstStruct returns the first struct declaration's name and fields, or a
// canonical two-field stand-in when the struct body was not parsed.
func (g *Generator) firstStruct() (string, []structField) {
	name := "Point"
	fields := []structField{{"x", "int"}, {"y", "int"}}
	if g.prog == nil {
		return name, fields
	}
	found := false
	ast.Walk(g.prog, func(n ast.Node) bool {
		s, ok := n.(*ast.StructDecl)
		if !ok || len(s.Fields) == 0 || found {
			return !found
		}
		found = true
		name = s.Name
		fields = fields[:0]
		for _, f := range s.Fields {
			typ := f.DeclaredType
			if f.IsPointer {
				typ += " *"
			}
			fields = append(fields, structField{f.Name, typ})
		}
		return false
	})
	return name, fields
}

// fieldValue picks a representative value matching the field's type.
func (g *Generator) fieldValue(f structField, i int) any {
	switch f.typ {
	case "float", "double":
		return float64(i+1) * 1.5
	case "char":
		return int('A' + i)
	default:
		return (i + 1) * 10
	}
}
