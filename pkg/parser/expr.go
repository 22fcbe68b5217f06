package parser

import (
	"strconv"
	"strings"

	"ctrace/pkg/ast"
	"ctrace/pkg/lexer"
)

// parseExpression is the entry point for expression parsing. Assignment is
// the lowest-binding level and is right-associative; everything else is
// left-associative.
func (p *Parser) parseExpression() (ast.Expr, error) {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() (ast.Expr, error) {
	left, err := p.parseLogical()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Kind == lexer.KindOperator && assignOps[tok.Text] {
		op := p.advance()
		value, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &ast.AssignExpr{Line: op.Line, Op: op.Text, Target: left, Value: value}, nil
	}
	return left, nil
}

// parseLogical handles && and ||.
func (p *Parser) parseLogical() (ast.Expr, error) {
	expr, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.peek().Text == "&&" || p.peek().Text == "||" {
		op := p.advance()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryExpr{Line: op.Line, Op: op.Text, Left: expr, Right: right}
	}
	return expr, nil
}

// parseRelational handles ==, !=, <, >, <=, >=.
func (p *Parser) parseRelational() (ast.Expr, error) {
	expr, err := p.parseBitwise()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek().Text
		if t != "==" && t != "!=" && t != "<" && t != ">" && t != "<=" && t != ">=" {
			return expr, nil
		}
		op := p.advance()
		right, err := p.parseBitwise()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryExpr{Line: op.Line, Op: op.Text, Left: expr, Right: right}
	}
}

// parseBitwise handles &, |, ^, <<, >> in one level. Unary & (address-of)
// is consumed by parseUnary and never reaches here.
func (p *Parser) parseBitwise() (ast.Expr, error) {
	expr, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek().Text
		if t != "&" && t != "|" && t != "^" && t != "<<" && t != ">>" {
			return expr, nil
		}
		op := p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryExpr{Line: op.Line, Op: op.Text, Left: expr, Right: right}
	}
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	expr, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.peek().Text == "+" || p.peek().Text == "-" {
		op := p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryExpr{Line: op.Line, Op: op.Text, Left: expr, Right: right}
	}
	return expr, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	expr, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().Text == "*" || p.peek().Text == "/" || p.peek().Text == "%" {
		op := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryExpr{Line: op.Line, Op: op.Text, Left: expr, Right: right}
	}
	return expr, nil
}

// parseUnary handles the prefix operators +, -, !, ~, ++, --, * and &.
func (p *Parser) parseUnary() (ast.Expr, error) {
	switch p.peek().Text {
	case "+", "-", "!", "~", "++", "--", "*", "&":
		op := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Line: op.Line, Op: op.Text, Operand: operand}, nil
	}
	return p.parsePostfix()
}

// parsePostfix resolves calls, indexing, member access, and ++/-- by
// lookahead after the primary.
func (p *Parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Text {
		case "(":
			ident, ok := expr.(*ast.Identifier)
			if !ok {
				return nil, p.errExpected("function name before \"(\"", p.peek())
			}
			p.advance()
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			expr = &ast.CallExpr{Line: ident.Line, Callee: ident.Name, Args: args}
		case "[":
			bracket := p.advance()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectText("]"); err != nil {
				return nil, err
			}
			expr = &ast.IndexExpr{Line: bracket.Line, Target: expr, Index: index}
		case ".", "->":
			op := p.advance()
			memberTok, err := p.expectName()
			if err != nil {
				return nil, err
			}
			expr = &ast.MemberExpr{Line: op.Line, Target: expr, Member: memberTok.Text, Arrow: op.Text == "->"}
		case "++", "--":
			op := p.advance()
			expr = &ast.PostfixExpr{Line: op.Line, Op: op.Text, Operand: expr}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseCallArgs() ([]ast.Expr, error) {
	var args []ast.Expr
	if p.peek().Text != ")" {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().Text != "," {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expectText(")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.peek()
	switch {
	case tok.Kind == lexer.KindLiteral:
		p.advance()
		return literalExpr(tok)

	case tok.Text == "sizeof":
		return p.parseSizeof()

	case tok.Kind == lexer.KindIdentifier || tok.Kind == lexer.KindFunction:
		p.advance()
		return &ast.Identifier{Line: tok.Line, Name: tok.Text}, nil

	case tok.Text == "(":
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectText(")"); err != nil {
			return nil, err
		}
		return expr, nil

	default:
		return nil, p.errExpected("expression", tok)
	}
}

// parseSizeof captures the raw parenthesized text, which may name a type
// rather than an expression.
func (p *Parser) parseSizeof() (ast.Expr, error) {
	szTok := p.advance() // sizeof
	if _, err := p.expectText("("); err != nil {
		return nil, err
	}
	var parts []string
	depth := 1
	for depth > 0 {
		if p.atEnd() {
			return nil, p.errExpected(`")"`, p.peek())
		}
		tok := p.advance()
		switch tok.Text {
		case "(":
			depth++
		case ")":
			depth--
			if depth == 0 {
				continue
			}
		}
		if depth > 0 {
			parts = append(parts, tok.Text)
		}
	}
	return &ast.SizeofExpr{Line: szTok.Line, Operand: strings.Join(parts, " ")}, nil
}

// literalExpr converts a literal token into its typed node.
func literalExpr(tok lexer.Token) (ast.Expr, error) {
	text := tok.Text
	switch {
	case strings.HasPrefix(text, `"`):
		return &ast.StringLiteral{Line: tok.Line, Value: unquote(text)}, nil
	case strings.HasPrefix(text, "'"):
		value := unquote(text)
		r := rune(0)
		if len(value) > 0 {
			r = []rune(value)[0]
		}
		return &ast.CharLiteral{Line: tok.Line, Value: r, Text: text}, nil
	case strings.Contains(text, "."):
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			f = 0
		}
		return &ast.FloatLiteral{Line: tok.Line, Value: f, Text: text}, nil
	default:
		// Base 0 accepts both decimal and 0x hex spellings.
		n, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			n = 0
		}
		return &ast.IntLiteral{Line: tok.Line, Value: int(n), Text: text}, nil
	}
}

// unquote strips the surrounding quotes and decodes the common escapes.
func unquote(text string) string {
	if len(text) < 2 {
		return text
	}
	body := text[1 : len(text)-1]
	var b strings.Builder
	escaped := false
	for _, r := range body {
		if !escaped {
			if r == '\\' {
				escaped = true
				continue
			}
			b.WriteRune(r)
			continue
		}
		escaped = false
		switch r {
		case 'n':
			b.WriteRune('\n')
		case 't':
			b.WriteRune('\t')
		case 'r':
			b.WriteRune('\r')
		case '0':
			b.WriteRune(0)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
