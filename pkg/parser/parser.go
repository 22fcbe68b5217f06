// Package parser builds a syntax tree from the lexer's token stream by
// recursive descent with one token of lookahead. Any unmet expectation stops
// the parse immediately with a diag.SyntaxError; there is no backtracking
// and no error recovery, so the trace generator is never handed a partial
// tree.
//
// Grammar:
//
//	program        = (directive | structDecl | functionDecl | varDecl)*
//	functionDecl   = type IDENT "(" params? ")" block
//	varDecl        = type ("*"? IDENT ("[" expr? "]")? ("=" init)?) ("," ...)* ";"
//	statement      = block | if | for | while | return | switch
//	               | break | continue | structDecl | varDecl | exprStmt
//	expression     = assignment
//	assignment     = logical (("=" | "+=" | "-=" | "*=" | "/=" | "%=") assignment)?
//	logical        = relational (("&&" | "||") relational)*
//	relational     = bitwise (("==" | "!=" | "<" | ">" | "<=" | ">=") bitwise)*
//	bitwise        = additive (("&" | "|" | "^" | "<<" | ">>") additive)*
//	additive       = multiplicative (("+" | "-") multiplicative)*
//	multiplicative = unary (("*" | "/" | "%") unary)*
//	unary          = ("+" | "-" | "!" | "~" | "++" | "--" | "*" | "&") unary | postfix
//	postfix        = primary ("(" args ")" | "[" expr "]" | ("." | "->") IDENT | "++" | "--")*
//	primary        = literal | IDENT | sizeof | "(" expression ")" | initList
package parser

import (
	"strconv"
	"strings"

	"ctrace/pkg/ast"
	"ctrace/pkg/diag"
	"ctrace/pkg/lexer"
)

// typeWords are the keywords that can open a declaration.
var typeWords = map[string]bool{
	"int": true, "char": true, "float": true, "double": true,
	"void": true, "long": true, "short": true, "unsigned": true,
	"signed": true, "struct": true, "const": true, "static": true,
}

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
}

type Parser struct {
	tokens      []lexer.Token
	pos         int
	sourceLines []string
}

// Parse consumes the token list and returns the program root. The raw
// source is used only to attach line snippets to syntax errors.
func Parse(tokens []lexer.Token, src string) (*ast.Program, error) {
	p := &Parser{tokens: tokens, sourceLines: strings.Split(src, "\n")}
	return p.parseProgram()
}

func (p *Parser) atEnd() bool { return p.pos >= len(p.tokens) }

// peek returns the current token without consuming it. Past the end it
// returns a sentinel with empty text so no comparison can match.
func (p *Parser) peek() lexer.Token { return p.peekAt(0) }

func (p *Parser) peekAt(offset int) lexer.Token {
	if p.pos+offset >= len(p.tokens) {
		line := 1
		if n := len(p.tokens); n > 0 {
			line = p.tokens[n-1].Line
		}
		return lexer.Token{Kind: lexer.KindPunctuation, Text: "", Line: line}
	}
	return p.tokens[p.pos+offset]
}

func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// errExpected builds the SyntaxError for an unmet expectation, carrying the
// offending token and its trimmed source line.
func (p *Parser) errExpected(expected string, got lexer.Token) *diag.SyntaxError {
	snippet := ""
	if idx := got.Line - 1; idx >= 0 && idx < len(p.sourceLines) {
		snippet = strings.TrimSpace(p.sourceLines[idx])
	}
	gotKind := got.Kind.String()
	gotText := got.Text
	if gotText == "" {
		gotKind = "end of input"
	}
	return &diag.SyntaxError{
		LineNo:   got.Line,
		Expected: expected,
		Got:      gotKind,
		GotText:  gotText,
		Snippet:  snippet,
	}
}

// expectText consumes the current token if its text matches, else fails.
func (p *Parser) expectText(text string) (lexer.Token, error) {
	tok := p.advance()
	if tok.Text != text {
		return tok, p.errExpected(strconv.Quote(text), tok)
	}
	return tok, nil
}

// expectName consumes an identifier-like token (identifiers and known
// library function names are both valid names).
func (p *Parser) expectName() (lexer.Token, error) {
	tok := p.advance()
	if tok.Kind != lexer.KindIdentifier && tok.Kind != lexer.KindFunction {
		return tok, p.errExpected("identifier", tok)
	}
	return tok, nil
}

func (p *Parser) isTypeToken(tok lexer.Token) bool {
	// FILE lexes as an identifier but opens declarations like a keyword.
	if tok.Kind == lexer.KindIdentifier && tok.Text == "FILE" {
		return true
	}
	return tok.Kind == lexer.KindKeyword && typeWords[tok.Text]
}

//  Program level

func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for !p.atEnd() {
		tok := p.peek()
		switch {
		case tok.Kind == lexer.KindPreprocessor:
			prog.Decls = append(prog.Decls, p.parseDirective())
		case tok.Text == "struct" && p.peekAt(2).Text == "{":
			decl, err := p.parseStructDecl()
			if err != nil {
				return nil, err
			}
			prog.Decls = append(prog.Decls, decl)
		case p.isTypeToken(tok):
			if p.scanAheadIsFunction() {
				fn, err := p.parseFunctionDecl()
				if err != nil {
					return nil, err
				}
				prog.Decls = append(prog.Decls, fn)
			} else {
				decl, err := p.parseVarDecl()
				if err != nil {
					return nil, err
				}
				prog.Decls = append(prog.Decls, decl)
			}
		default:
			return nil, p.errExpected("declaration", tok)
		}
	}
	return prog, nil
}

// parseDirective collapses a directive's tokens into one node. All tokens
// sharing the command token's line were emitted by the lexer's directive
// pass, so they belong to this directive.
func (p *Parser) parseDirective() *ast.Directive {
	cmd := p.advance()
	d := &ast.Directive{Line: cmd.Line, Command: cmd.Text}
	for !p.atEnd() && p.peek().Line == cmd.Line {
		tok := p.advance()
		if cmd.Text == "#define" && d.Name == "" && tok.Kind == lexer.KindIdentifier {
			d.Name = tok.Text
			continue
		}
		if d.Arg == "" {
			d.Arg = tok.Text
		} else {
			d.Arg += " " + tok.Text
		}
	}
	return d
}

// scanAheadIsFunction disambiguates  int f(...) {...}  from  int x = ...;
// by scanning forward tracking parenthesis nesting: a "{" reached at nesting
// depth 0 before a ";" means a function definition.
func (p *Parser) scanAheadIsFunction() bool {
	depth := 0
	for i := p.pos; i < len(p.tokens); i++ {
		switch p.tokens[i].Text {
		case "(":
			depth++
		case ")":
			depth--
		case "{":
			if depth == 0 {
				return true
			}
		case ";":
			if depth == 0 {
				return false
			}
		}
	}
	return false
}

// parseTypeName collects the consecutive keywords forming a type, including
// "struct Name".
func (p *Parser) parseTypeName() (string, error) {
	var parts []string
	for p.isTypeToken(p.peek()) {
		word := p.advance().Text
		parts = append(parts, word)
		if word == "struct" {
			nameTok, err := p.expectName()
			if err != nil {
				return "", err
			}
			parts = append(parts, nameTok.Text)
			break
		}
	}
	if len(parts) == 0 {
		return "", p.errExpected("type name", p.peek())
	}
	return strings.Join(parts, " "), nil
}

func (p *Parser) parseFunctionDecl() (ast.Stmt, error) {
	retType, err := p.parseTypeName()
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expectName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectText("("); err != nil {
		return nil, err
	}

	var params []ast.Param
	if p.peek().Text != ")" {
		// A lone "void" parameter list declares no parameters.
		if p.peek().Text == "void" && p.peekAt(1).Text == ")" {
			p.advance()
		} else {
			for {
				typ, err := p.parseTypeName()
				if err != nil {
					return nil, err
				}
				isPtr := false
				if p.peek().Text == "*" {
					p.advance()
					isPtr = true
				}
				pnameTok, err := p.expectName()
				if err != nil {
					return nil, err
				}
				params = append(params, ast.Param{Type: typ, Name: pnameTok.Text, IsPointer: isPtr})
				if p.peek().Text != "," {
					break
				}
				p.advance()
			}
		}
	}
	if _, err := p.expectText(")"); err != nil {
		return nil, err
	}

	if _, err := p.expectText("{"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock(nameTok.Line)
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDecl{
		Line:       nameTok.Line,
		ReturnType: retType,
		Name:       nameTok.Text,
		Params:     params,
		Body:       body,
	}, nil
}

//  Statements

func (p *Parser) parseStatement() (ast.Stmt, error) {
	tok := p.peek()
	switch {
	case tok.Text == "{":
		p.advance()
		return p.parseBlock(tok.Line)
	case tok.Text == "if":
		return p.parseIf()
	case tok.Text == "for":
		return p.parseFor()
	case tok.Text == "while":
		return p.parseWhile()
	case tok.Text == "return":
		return p.parseReturn()
	case tok.Text == "switch":
		return p.parseSwitch()
	case tok.Text == "break":
		p.advance()
		if _, err := p.expectText(";"); err != nil {
			return nil, err
		}
		return &ast.BreakStmt{Line: tok.Line}, nil
	case tok.Text == "continue":
		p.advance()
		if _, err := p.expectText(";"); err != nil {
			return nil, err
		}
		return &ast.ContinueStmt{Line: tok.Line}, nil
	case tok.Text == "struct" && p.peekAt(2).Text == "{":
		return p.parseStructDecl()
	case p.isTypeToken(tok):
		return p.parseVarDecl()
	case tok.Text == ";":
		p.advance()
		return &ast.EmptyStmt{Line: tok.Line}, nil
	default:
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectText(";"); err != nil {
			return nil, err
		}
		return &ast.ExprStmt{Line: expr.Pos(), X: expr}, nil
	}
}

// parseBlock parses statements up to the closing brace. The opening brace
// has already been consumed.
func (p *Parser) parseBlock(line int) (*ast.BlockStmt, error) {
	block := &ast.BlockStmt{Line: line}
	for p.peek().Text != "}" {
		if p.atEnd() {
			return nil, p.errExpected(`"}"`, p.peek())
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	p.advance() // }
	return block, nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	ifTok := p.advance()
	if _, err := p.expectText("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectText(")"); err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	var elseStmt ast.Stmt = &ast.EmptyStmt{Line: ifTok.Line}
	if p.peek().Text == "else" {
		p.advance()
		elseStmt, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}
	return &ast.IfStmt{Line: ifTok.Line, Cond: cond, Then: then, Else: elseStmt}, nil
}

// parseFor keeps the node's arity fixed: an omitted clause becomes an Empty
// node, never a nil.
func (p *Parser) parseFor() (ast.Stmt, error) {
	forTok := p.advance()
	if _, err := p.expectText("("); err != nil {
		return nil, err
	}

	var init ast.Stmt = &ast.EmptyStmt{Line: forTok.Line}
	if p.peek().Text == ";" {
		p.advance()
	} else if p.isTypeToken(p.peek()) {
		decl, err := p.parseVarDecl()
		if err != nil {
			return nil, err
		}
		init = decl
	} else {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectText(";"); err != nil {
			return nil, err
		}
		init = &ast.ExprStmt{Line: expr.Pos(), X: expr}
	}

	var cond ast.Expr = &ast.EmptyExpr{Line: forTok.Line}
	if p.peek().Text != ";" {
		var err error
		cond, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expectText(";"); err != nil {
		return nil, err
	}

	var post ast.Stmt = &ast.EmptyStmt{Line: forTok.Line}
	if p.peek().Text != ")" {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		post = &ast.ExprStmt{Line: expr.Pos(), X: expr}
	}
	if _, err := p.expectText(")"); err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.ForStmt{Line: forTok.Line, Init: init, Cond: cond, Post: post, Body: body}, nil
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	whileTok := p.advance()
	if _, err := p.expectText("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectText(")"); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Line: whileTok.Line, Cond: cond, Body: body}, nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	retTok := p.advance()
	var value ast.Expr = &ast.EmptyExpr{Line: retTok.Line}
	if p.peek().Text != ";" {
		var err error
		value, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expectText(";"); err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Line: retTok.Line, Value: value}, nil
}

func (p *Parser) parseSwitch() (ast.Stmt, error) {
	switchTok := p.advance()
	if _, err := p.expectText("("); err != nil {
		return nil, err
	}
	target, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectText(")"); err != nil {
		return nil, err
	}
	if _, err := p.expectText("{"); err != nil {
		return nil, err
	}

	stmt := &ast.SwitchStmt{Line: switchTok.Line, Target: target}
	for p.peek().Text != "}" {
		if p.atEnd() {
			return nil, p.errExpected(`"}"`, p.peek())
		}
		switch p.peek().Text {
		case "case":
			caseTok := p.advance()
			value, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectText(":"); err != nil {
				return nil, err
			}
			clause := ast.CaseClause{Line: caseTok.Line, Value: value}
			body, err := p.parseCaseBody()
			if err != nil {
				return nil, err
			}
			clause.Body = body
			stmt.Cases = append(stmt.Cases, clause)
		case "default":
			p.advance()
			if _, err := p.expectText(":"); err != nil {
				return nil, err
			}
			body, err := p.parseCaseBody()
			if err != nil {
				return nil, err
			}
			stmt.Default = body
		default:
			return nil, p.errExpected(`"case" or "default"`, p.peek())
		}
	}
	p.advance() // }
	return stmt, nil
}

func (p *Parser) parseCaseBody() ([]ast.Stmt, error) {
	var body []ast.Stmt
	for {
		t := p.peek().Text
		if t == "case" || t == "default" || t == "}" || p.atEnd() {
			return body, nil
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
}

func (p *Parser) parseStructDecl() (ast.Stmt, error) {
	structTok := p.advance() // struct
	nameTok, err := p.expectName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectText("{"); err != nil {
		return nil, err
	}

	decl := &ast.StructDecl{Line: structTok.Line, Name: nameTok.Text}
	for p.peek().Text != "}" {
		if p.atEnd() {
			return nil, p.errExpected(`"}"`, p.peek())
		}
		field, err := p.parseDeclarator("")
		if err != nil {
			return nil, err
		}
		if _, err := p.expectText(";"); err != nil {
			return nil, err
		}
		decl.Fields = append(decl.Fields, field)
	}
	p.advance() // }
	if _, err := p.expectText(";"); err != nil {
		return nil, err
	}
	return decl, nil
}

// parseVarDecl parses one declaration statement with one or more declarators
// sharing the leading type.
func (p *Parser) parseVarDecl() (*ast.DeclStmt, error) {
	line := p.peek().Line
	typ, err := p.parseTypeName()
	if err != nil {
		return nil, err
	}

	stmt := &ast.DeclStmt{Line: line}
	for {
		decl, err := p.parseDeclarator(typ)
		if err != nil {
			return nil, err
		}
		stmt.Decls = append(stmt.Decls, decl)
		if p.peek().Text != "," {
			break
		}
		p.advance()
	}
	if _, err := p.expectText(";"); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseDeclarator parses  "*"? name ("[" expr? "]")? ("=" init)? .
// With typ == "" the type is parsed first (struct field position).
func (p *Parser) parseDeclarator(typ string) (*ast.VariableDecl, error) {
	if typ == "" {
		var err error
		typ, err = p.parseTypeName()
		if err != nil {
			return nil, err
		}
	}

	decl := &ast.VariableDecl{DeclaredType: typ}
	if p.peek().Text == "*" {
		p.advance()
		decl.IsPointer = true
	}
	nameTok, err := p.expectName()
	if err != nil {
		return nil, err
	}
	decl.Line = nameTok.Line
	decl.Name = nameTok.Text
	decl.Init = &ast.EmptyExpr{Line: nameTok.Line}

	if p.peek().Text == "[" {
		p.advance()
		decl.IsArray = true
		decl.ArraySize = ast.Expr(&ast.EmptyExpr{Line: nameTok.Line})
		if p.peek().Text != "]" {
			size, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			decl.ArraySize = size
		}
		if _, err := p.expectText("]"); err != nil {
			return nil, err
		}
	}

	if p.peek().Text == "=" {
		p.advance()
		if p.peek().Text == "{" {
			initList, err := p.parseInitList()
			if err != nil {
				return nil, err
			}
			decl.Init = initList
			// int arr[] = {1, 2, 3}; infers its size from the list.
			if decl.IsArray {
				if _, empty := decl.ArraySize.(*ast.EmptyExpr); empty {
					decl.ArraySize = &ast.IntLiteral{
						Line:  nameTok.Line,
						Value: len(initList.Elems),
						Text:  strconv.Itoa(len(initList.Elems)),
					}
				}
			}
		} else {
			init, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			decl.Init = init
		}
	}
	return decl, nil
}

func (p *Parser) parseInitList() (*ast.InitListExpr, error) {
	braceTok, err := p.expectText("{")
	if err != nil {
		return nil, err
	}
	list := &ast.InitListExpr{Line: braceTok.Line}
	if p.peek().Text != "}" {
		for {
			elem, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			list.Elems = append(list.Elems, elem)
			if p.peek().Text != "," {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expectText("}"); err != nil {
		return nil, err
	}
	return list, nil
}
