package ast

// Walk visits n and its children in pre-order. If visit returns false the
// node's children are skipped.
func Walk(n Node, visit func(Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	switch v := n.(type) {
	case *Program:
		for _, d := range v.Decls {
			Walk(d, visit)
		}
	case *FunctionDecl:
		Walk(v.Body, visit)
	case *DeclStmt:
		for _, d := range v.Decls {
			Walk(d, visit)
		}
	case *VariableDecl:
		Walk(v.Init, visit)
		if v.IsArray {
			Walk(v.ArraySize, visit)
		}
	case *StructDecl:
		for _, f := range v.Fields {
			Walk(f, visit)
		}
	case *BlockStmt:
		for _, s := range v.Stmts {
			Walk(s, visit)
		}
	case *IfStmt:
		Walk(v.Cond, visit)
		Walk(v.Then, visit)
		Walk(v.Else, visit)
	case *ForStmt:
		Walk(v.Init, visit)
		Walk(v.Cond, visit)
		Walk(v.Post, visit)
		Walk(v.Body, visit)
	case *WhileStmt:
		Walk(v.Cond, visit)
		Walk(v.Body, visit)
	case *ReturnStmt:
		Walk(v.Value, visit)
	case *SwitchStmt:
		Walk(v.Target, visit)
		for _, c := range v.Cases {
			Walk(c.Value, visit)
			for _, s := range c.Body {
				Walk(s, visit)
			}
		}
		for _, s := range v.Default {
			Walk(s, visit)
		}
	case *ExprStmt:
		Walk(v.X, visit)
	case *AssignExpr:
		Walk(v.Target, visit)
		Walk(v.Value, visit)
	case *BinaryExpr:
		Walk(v.Left, visit)
		Walk(v.Right, visit)
	case *UnaryExpr:
		Walk(v.Operand, visit)
	case *PostfixExpr:
		Walk(v.Operand, visit)
	case *CallExpr:
		for _, a := range v.Args {
			Walk(a, visit)
		}
	case *IndexExpr:
		Walk(v.Target, visit)
		Walk(v.Index, visit)
	case *MemberExpr:
		Walk(v.Target, visit)
	case *InitListExpr:
		for _, e := range v.Elems {
			Walk(e, visit)
		}
	}
}

// FindFunction returns the function declaration with the given name, or nil.
func FindFunction(p *Program, name string) *FunctionDecl {
	for _, d := range p.Decls {
		if fn, ok := d.(*FunctionDecl); ok && fn.Name == name {
			return fn
		}
	}
	return nil
}
