package trace

import (
	"fmt"
	"strings"

	"ctrace/pkg/ast"
	"ctrace/pkg/diag"
	"ctrace/pkg/lexer"
)

// outputFunctions are the callees the fallback path turns into generic call
// steps.
var outputFunctions = map[string]bool{
	"printf": true, "puts": true, "putchar": true, "fprintf": true,
}

// Generator synthesizes the step list for one run. All cursor state lives
// in its State value, so generators are independent and single-use.
type Generator struct {
	prog   *ast.Program
	tokens []lexer.Token
	src    string
	log    *diag.Log

	state *State
	steps []ExecutionStep

	// macros holds #define substitutions visible to evaluation.
	macros map[string]string
	// binaryDesc adds binary renderings to value descriptions (bitwise script).
	binaryDesc bool
}

// Generate produces the ordered step list for the program plus the final
// accumulated simulation state. It never returns an error: internal failures
// become a single terminal error step and a log entry. The token list
// supplies the finalization step's source line.
func Generate(prog *ast.Program, tokens []lexer.Token, src string, log *diag.Log) ([]ExecutionStep, *State) {
	g := &Generator{
		prog:   prog,
		tokens: tokens,
		src:    src,
		log:    log,
		state:  NewState(),
		macros: collectMacros(prog),
	}

	g.emit(StepInitialization, 1, "Program loaded; execution begins", Delta{})
	g.synthesize()
	g.emit(StepFinalization, lexer.MaxLine(tokens), "Program execution complete", Delta{})
	return g.steps, g.state
}

// synthesize dispatches to the winning category's script. A panic in any
// script is converted here rather than propagating outward.
func (g *Generator) synthesize() {
	defer func() {
		if r := recover(); r != nil {
			err := &diag.SimulationError{LineNo: 1, Msg: fmt.Sprintf("%v", r)}
			if g.log != nil {
				g.log.Errorf("trace generation failed: %v", err)
			}
			g.emit(StepError, 1, fmt.Sprintf("Simulation failed: %v", r), Delta{})
		}
	}()

	switch Classify(g.src, g.prog) {
	case CategoryDynamicAllocation:
		g.scriptDynamicAllocation()
	case CategoryStructures:
		g.scriptStructures()
	case CategoryFileIO:
		g.scriptFileIO()
	case CategorySwitchCase:
		g.scriptSwitchCase()
	case CategoryPreprocessor:
		g.scriptPreprocessor()
	case CategoryBitwise:
		g.scriptBitwise()
	case CategoryRecursion:
		g.scriptRecursion()
	case CategoryArrays:
		g.scriptArrays()
	case CategoryBasic:
		g.scriptBasic()
	default:
		g.scriptFallback()
	}
}

func (g *Generator) emit(kind StepKind, line int, desc string, delta Delta) {
	if line < 1 {
		line = 1
	}
	g.steps = append(g.steps, ExecutionStep{
		Kind:        kind,
		SourceLine:  line,
		Description: desc,
		Delta:       delta,
	})
}

//  Delta-producing helpers shared by the scripts.

// declare allocates a stack cell and emits the declaration step.
func (g *Generator) declare(line int, name, typ string, value any, desc string) *MemoryCell {
	cell := g.state.Declare(name, typ, value)
	frameName := "main"
	if f := g.state.CurrentFrame(); f != nil {
		frameName = f.FunctionName
	}
	snapshot := *cell
	g.emit(StepDeclaration, line, desc, Delta{
		Memory: map[int]MemoryCell{cell.Address: snapshot},
		Stack: map[string]StackChange{
			frameName: {Change: StackAddedVariable, Variable: name, Cell: &snapshot},
		},
	})
	return cell
}

// assign updates an existing variable and emits the assignment step.
func (g *Generator) assign(line int, name string, value any, desc string) *MemoryCell {
	cell, ok := g.state.Set(name, value)
	if !ok {
		cell = g.state.Declare(name, "int", value)
	}
	frameName := "main"
	if f := g.state.CurrentFrame(); f != nil {
		frameName = f.FunctionName
	}
	snapshot := *cell
	g.emit(StepAssignment, line, desc, Delta{
		Memory: map[int]MemoryCell{cell.Address: snapshot},
		Stack: map[string]StackChange{
			frameName: {Change: StackUpdatedVariable, Variable: name, Cell: &snapshot},
		},
	})
	return cell
}

// output appends console text and emits a call step carrying it.
func (g *Generator) output(line int, text, desc string) {
	g.state.Write(text)
	g.emit(StepCall, line, desc, Delta{Output: text})
}

// returnFrom pops the current frame and emits its return step.
func (g *Generator) returnFrom(line int, desc string) {
	frame := g.state.PopFrame()
	name := "main"
	if frame != nil {
		name = frame.FunctionName
	}
	g.emit(StepReturn, line, desc, Delta{
		Stack: map[string]StackChange{name: {Change: StackFrameRemoved}},
	})
}

//  Tree-mining helpers. Scripts pull real names and values out of the parsed
//  program where they can, falling back to the category's canonical defaults.

func (g *Generator) mainFunc() *ast.FunctionDecl {
	return ast.FindFunction(g.prog, "main")
}

// collectMacros gathers the #define directives so evaluation can resolve
// macro names used as constants.
func collectMacros(prog *ast.Program) map[string]string {
	macros := make(map[string]string)
	if prog == nil {
		return macros
	}
	for _, d := range prog.Decls {
		if dir, ok := d.(*ast.Directive); ok && dir.Command == "#define" && dir.Name != "" {
			macros[dir.Name] = dir.Arg
		}
	}
	return macros
}

// clampLine keeps a synthesized line number inside the source: every step's
// SourceLine must name a line that exists, or highlighting breaks.
func (g *Generator) clampLine(line int) int {
	if max := lexer.MaxLine(g.tokens); line > max {
		return max
	}
	if line < 1 {
		return 1
	}
	return line
}

// bodyLine returns a statement line inside fn, or the function's own line.
func bodyLine(fn *ast.FunctionDecl) int {
	if fn == nil {
		return 1
	}
	if fn.Body != nil && len(fn.Body.Stmts) > 0 {
		return fn.Body.Stmts[0].Pos()
	}
	return fn.Line
}

// findCalls collects every call to the named function under n.
func findCalls(n ast.Node, callee string) []*ast.CallExpr {
	var calls []*ast.CallExpr
	ast.Walk(n, func(node ast.Node) bool {
		if call, ok := node.(*ast.CallExpr); ok && call.Callee == callee {
			calls = append(calls, call)
		}
		return true
	})
	return calls
}

// localDecls returns fn's variable declarators in source order.
func localDecls(fn *ast.FunctionDecl) []*ast.VariableDecl {
	if fn == nil {
		return nil
	}
	var decls []*ast.VariableDecl
	ast.Walk(fn.Body, func(node ast.Node) bool {
		if d, ok := node.(*ast.VariableDecl); ok {
			decls = append(decls, d)
		}
		return true
	})
	return decls
}

// firstStringArg returns the first string-literal argument of a call.
func firstStringArg(call *ast.CallExpr) (string, bool) {
	if call == nil {
		return "", false
	}
	for _, a := range call.Args {
		if s, ok := a.(*ast.StringLiteral); ok {
			return s.Value, true
		}
	}
	return "", false
}

// formatOutput renders a printf-style format with the call's remaining
// arguments substituted best-effort for %d/%i/%f/%c/%s verbs.
func (g *Generator) formatOutput(call *ast.CallExpr) string {
	format, ok := firstStringArg(call)
	if !ok {
		return ""
	}
	args := call.Args[1:]
	var b strings.Builder
	argIdx := 0
	i := 0
	for i < len(format) {
		c := format[i]
		if c != '%' || i+1 >= len(format) {
			b.WriteByte(c)
			i++
			continue
		}
		verb := format[i+1]
		i += 2
		if verb == '%' {
			b.WriteByte('%')
			continue
		}
		var value any = "?"
		if argIdx < len(args) {
			if v, ok := g.evalValue(args[argIdx]); ok {
				value = v
			} else {
				value = render(args[argIdx])
			}
			argIdx++
		}
		switch verb {
		case 'd', 'i', 'u', 'x', 'c', 's', 'p':
			fmt.Fprintf(&b, "%v", value)
		case 'f', 'g':
			switch n := value.(type) {
			case float64:
				fmt.Fprintf(&b, "%.6f", n)
			case int:
				fmt.Fprintf(&b, "%.6f", float64(n))
			default:
				fmt.Fprintf(&b, "%v", value)
			}
		default:
			fmt.Fprintf(&b, "%%%c", verb)
			fmt.Fprintf(&b, "%v", value)
		}
	}
	return b.String()
}
