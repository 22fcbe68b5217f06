package trace

import (
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/spf13/cast"

	"ctrace/pkg/ast"
)

// render is the display form of an expression, used in step descriptions.
func render(e ast.Expr) string {
	if e == nil {
		return ""
	}
	return e.String()
}

// sizeofBytes maps a sizeof operand to the simulator's cell model.
func sizeofBytes(operand string) int {
	switch {
	case strings.Contains(operand, "char"):
		return 1
	case strings.Contains(operand, "double"), strings.Contains(operand, "long"):
		return 8
	default:
		return cellSize
	}
}

// envMap snapshots every visible variable for expression evaluation.
func (g *Generator) envMap() map[string]any {
	env := make(map[string]any)
	for _, f := range g.state.Frames {
		for name, cell := range f.Vars {
			env[name] = cell.Value
		}
	}
	return env
}

// evalValue evaluates an expression best-effort against the current frame
// variables. The second result is false when the expression is beyond the
// simulator, in which case callers fall back to the rendered source text.
func (g *Generator) evalValue(e ast.Expr) (any, bool) {
	switch v := e.(type) {
	case *ast.IntLiteral:
		return v.Value, true
	case *ast.FloatLiteral:
		return v.Value, true
	case *ast.StringLiteral:
		return v.Value, true
	case *ast.CharLiteral:
		return int(v.Value), true
	case *ast.SizeofExpr:
		return sizeofBytes(v.Operand), true
	case *ast.Identifier:
		if cell, ok := g.state.Lookup(v.Name); ok {
			return cell.Value, true
		}
		if body, ok := g.macros[v.Name]; ok {
			if n, err := cast.ToIntE(body); err == nil {
				return n, true
			}
			return body, true
		}
		return nil, false
	case *ast.UnaryExpr:
		return g.evalUnary(v)
	case *ast.PostfixExpr:
		// The step granularity ignores the post-increment side effect.
		return g.evalValue(v.Operand)
	case *ast.BinaryExpr:
		return g.evalBinary(v)
	default:
		return nil, false
	}
}

func (g *Generator) evalInt(e ast.Expr) (int, bool) {
	v, ok := g.evalValue(e)
	if !ok {
		return 0, false
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (g *Generator) evalUnary(u *ast.UnaryExpr) (any, bool) {
	if u.Op == "&" {
		if ident, ok := u.Operand.(*ast.Identifier); ok {
			if cell, found := g.state.Lookup(ident.Name); found {
				return cell.Address, true
			}
		}
		return nil, false
	}
	if u.Op == "*" {
		// Dereference through a pointer variable's stored address.
		if addr, ok := g.evalInt(u.Operand); ok {
			if cell, found := g.state.Memory[addr]; found {
				return cell.Value, true
			}
		}
		return nil, false
	}

	v, ok := g.evalValue(u.Operand)
	if !ok {
		return nil, false
	}
	switch u.Op {
	case "-":
		if f, isFloat := v.(float64); isFloat {
			return -f, true
		}
		if n, err := cast.ToIntE(v); err == nil {
			return -n, true
		}
	case "+":
		return v, true
	case "!":
		if n, err := cast.ToIntE(v); err == nil {
			if n == 0 {
				return 1, true
			}
			return 0, true
		}
	case "~":
		if n, err := cast.ToIntE(v); err == nil {
			return ^n, true
		}
	case "++":
		if n, err := cast.ToIntE(v); err == nil {
			return n + 1, true
		}
	case "--":
		if n, err := cast.ToIntE(v); err == nil {
			return n - 1, true
		}
	}
	return nil, false
}

func (g *Generator) evalBinary(b *ast.BinaryExpr) (any, bool) {
	lv, lok := g.evalValue(b.Left)
	rv, rok := g.evalValue(b.Right)
	if lok && rok {
		ln, lerr := cast.ToIntE(lv)
		rn, rerr := cast.ToIntE(rv)
		if lerr == nil && rerr == nil {
			if v, ok := intBinary(b.Op, ln, rn); ok {
				return v, true
			}
		}
	}
	// Mixed or float arithmetic goes through the expression engine.
	if src, ok := exprSource(b); ok {
		if out, err := expr.Eval(src, g.envMap()); err == nil {
			return out, true
		}
	}
	return nil, false
}

// intBinary applies an integer operator; relational results follow C and
// come back as 0 or 1.
func intBinary(op string, l, r int) (int, bool) {
	boolInt := func(b bool) int {
		if b {
			return 1
		}
		return 0
	}
	switch op {
	case "+":
		return l + r, true
	case "-":
		return l - r, true
	case "*":
		return l * r, true
	case "/":
		if r == 0 {
			return 0, false
		}
		return l / r, true
	case "%":
		if r == 0 {
			return 0, false
		}
		return l % r, true
	case "&":
		return l & r, true
	case "|":
		return l | r, true
	case "^":
		return l ^ r, true
	case "<<":
		return l << uint(r), true
	case ">>":
		return l >> uint(r), true
	case "==":
		return boolInt(l == r), true
	case "!=":
		return boolInt(l != r), true
	case "<":
		return boolInt(l < r), true
	case ">":
		return boolInt(l > r), true
	case "<=":
		return boolInt(l <= r), true
	case ">=":
		return boolInt(l >= r), true
	case "&&":
		return boolInt(l != 0 && r != 0), true
	case "||":
		return boolInt(l != 0 || r != 0), true
	}
	return 0, false
}

// exprSource renders an expression in the evaluation engine's syntax,
// reporting false for constructs it cannot express.
func exprSource(e ast.Expr) (string, bool) {
	switch v := e.(type) {
	case *ast.IntLiteral:
		return strconv.Itoa(v.Value), true
	case *ast.FloatLiteral:
		return v.Text, true
	case *ast.Identifier:
		return v.Name, true
	case *ast.SizeofExpr:
		return strconv.Itoa(sizeofBytes(v.Operand)), true
	case *ast.UnaryExpr:
		if v.Op != "-" && v.Op != "+" && v.Op != "!" {
			return "", false
		}
		inner, ok := exprSource(v.Operand)
		if !ok {
			return "", false
		}
		return v.Op + inner, true
	case *ast.BinaryExpr:
		left, lok := exprSource(v.Left)
		right, rok := exprSource(v.Right)
		if !lok || !rok {
			return "", false
		}
		return "(" + left + " " + v.Op + " " + right + ")", true
	default:
		return "", false
	}
}

// truthy reports whether a condition value counts as true in C terms.
func truthy(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	if n, err := cast.ToIntE(v); err == nil {
		return n != 0
	}
	if s, ok := v.(string); ok {
		return s != ""
	}
	return v != nil
}
