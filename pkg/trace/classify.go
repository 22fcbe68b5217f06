package trace

import (
	"strings"

	"ctrace/pkg/ast"
)

// Category names, in classification priority order.
const (
	CategoryDynamicAllocation = "dynamic_allocation"
	CategoryStructures        = "structures"
	CategoryFileIO            = "file_io"
	CategorySwitchCase        = "switch_case"
	CategoryPreprocessor      = "preprocessor"
	CategoryBitwise           = "bitwise"
	CategoryRecursion         = "recursion"
	CategoryArrays            = "arrays"
	CategoryBasic             = "basic"
)

// Rule pairs a category with its fingerprint predicate. Predicates receive
// the lowercased source and the parsed program.
type Rule struct {
	Name  string
	Match func(lowerSrc string, prog *ast.Program) bool
}

// Rules is the classification table, evaluated in order with first match
// winning. The order is the contract: a program containing both malloc(
// and struct must classify as dynamic_allocation.
var Rules = []Rule{
	{CategoryDynamicAllocation, func(src string, _ *ast.Program) bool {
		return strings.Contains(src, "malloc(") || strings.Contains(src, "free(")
	}},
	{CategoryStructures, func(src string, _ *ast.Program) bool {
		return strings.Contains(src, "struct ")
	}},
	{CategoryFileIO, func(src string, _ *ast.Program) bool {
		return strings.Contains(src, "fopen(") || strings.Contains(src, "fclose(")
	}},
	{CategorySwitchCase, func(src string, _ *ast.Program) bool {
		return strings.Contains(src, "switch(") || strings.Contains(src, "case ")
	}},
	{CategoryPreprocessor, func(src string, _ *ast.Program) bool {
		return strings.Contains(src, "#define ")
	}},
	{CategoryBitwise, func(_ string, prog *ast.Program) bool {
		return hasBitwiseOp(prog)
	}},
	{CategoryRecursion, func(_ string, prog *ast.Program) bool {
		return recursiveFunction(prog) != nil
	}},
	{CategoryArrays, func(src string, _ *ast.Program) bool {
		return strings.Contains(src, "[") && strings.Contains(src, "]")
	}},
	{CategoryBasic, func(string, *ast.Program) bool { return true }},
}

// Classify returns the name of the first matching rule.
func Classify(src string, prog *ast.Program) string {
	lower := strings.ToLower(src)
	for _, rule := range Rules {
		if rule.Match(lower, prog) {
			return rule.Name
		}
	}
	return CategoryBasic
}

var bitwiseOps = map[string]bool{
	"&": true, "|": true, "^": true, "<<": true, ">>": true,
}

func hasBitwiseOp(prog *ast.Program) bool {
	found := false
	ast.Walk(prog, func(n ast.Node) bool {
		switch v := n.(type) {
		case *ast.BinaryExpr:
			if bitwiseOps[v.Op] {
				found = true
			}
		case *ast.UnaryExpr:
			// Address-of is unary &; only ~ counts as a bitwise fingerprint.
			if v.Op == "~" {
				found = true
			}
		}
		return !found
	})
	return found
}

// recursiveFunction finds a function whose body, at any depth, calls itself
// by name: first collect the program's function names, then walk each body
// flagging a call whose target equals the enclosing function.
func recursiveFunction(prog *ast.Program) *ast.FunctionDecl {
	for _, d := range prog.Decls {
		fn, ok := d.(*ast.FunctionDecl)
		if !ok {
			continue
		}
		recursive := false
		ast.Walk(fn.Body, func(n ast.Node) bool {
			if call, ok := n.(*ast.CallExpr); ok && call.Callee == fn.Name {
				recursive = true
			}
			return !recursive
		})
		if recursive {
			return fn
		}
	}
	return nil
}
