package parser

import (
	"fmt"
	"strconv"

	"mainprgm/internal/ast"
	"mainprgm/internal/lexer"
)

// ---------------------------------------------------------------------------
// Precedence levels for Pratt expression parsing
// ---------------------------------------------------------------------------

const (
	precNone       = iota
	precLogical    // AND OR
	precRelational // < > <= >= == !=
	precAdditive   // + -
	precMultiply   // * /
	precUnary      // ! -
)

// ---------------------------------------------------------------------------
// ParseError
// ---------------------------------------------------------------------------

// ParseError describes the first syntax error of a failed parse.
type ParseError struct {
	Message string
	Token   lexer.Token
	Line    int
	Column  int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, col %d: %s", e.Line, e.Column, e.Message)
}

// ---------------------------------------------------------------------------
// Parser
// ---------------------------------------------------------------------------

// Parser holds the state for a single parse pass over a token stream.
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// Parse is the main entry point. It takes a token slice (as produced by
// lexer.Lex) and returns the program, or a *ParseError for the first
// construct that does not match the grammar. There is no error recovery.
func Parse(tokens []lexer.Token) (*ast.Program, error) {
	p := &Parser{tokens: tokens}
	prog, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	return prog, nil
}

// ---------------------------------------------------------------------------
// Token helpers
// ---------------------------------------------------------------------------

// peek returns the current token without consuming it.
func (p *Parser) peek() lexer.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	if n := len(p.tokens); n > 0 {
		last := p.tokens[n-1]
		return lexer.Token{Type: lexer.EOF, Line: last.Line, Column: last.Column}
	}
	return lexer.Token{Type: lexer.EOF, Line: 1, Column: 1}
}

// advance consumes and returns the current token.
func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if tok.Type != lexer.EOF {
		p.pos++
	}
	return tok
}

// check returns true if the current token has the given type.
func (p *Parser) check(typ string) bool {
	return p.peek().Type == typ
}

// match consumes the current token if it matches any of the given types.
func (p *Parser) match(types ...string) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

// expect consumes the current token if it matches typ; otherwise it returns
// a ParseError located at the offending token.
func (p *Parser) expect(typ string, msg string) (lexer.Token, error) {
	if p.check(typ) {
		return p.advance(), nil
	}
	return lexer.Token{}, p.unexpected(msg)
}

// unexpected builds a ParseError for the current token.
func (p *Parser) unexpected(msg string) *ParseError {
	tok := p.peek()
	return p.errorAt(tok, fmt.Sprintf("%s (got %s)", msg, describe(tok)))
}

func (p *Parser) errorAt(tok lexer.Token, msg string) *ParseError {
	return &ParseError{
		Message: msg,
		Token:   tok,
		Line:    tok.Line,
		Column:  tok.Column,
	}
}

func describe(tok lexer.Token) string {
	if tok.Type == lexer.EOF {
		return "end of input"
	}
	return fmt.Sprintf("%s %q", tok.Type, tok.Value)
}

// position converts a token into an ast.Position.
func (p *Parser) position(tok lexer.Token) ast.Position {
	return ast.Position{Line: tok.Line, Column: tok.Column}
}

// =========================================================================
// Top-level parsing
// =========================================================================

func (p *Parser) parseProgram() (*ast.Program, error) {
	start, err := p.expect(lexer.MAINPRGM, "expected 'MainPrgm'")
	if err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.IDENT, "expected program name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON, "expected ';' after program name"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.VAR, "expected 'Var'"); err != nil {
		return nil, err
	}

	prog := &ast.Program{Name: name.Value, Pos: p.position(start)}

	// Zero or more declarations.
	for p.check(lexer.LET) || p.check(lexer.DEFINE) {
		var decl ast.Decl
		if p.check(lexer.LET) {
			decl, err = p.parseVarDecl()
		} else {
			decl, err = p.parseConstDecl()
		}
		if err != nil {
			return nil, err
		}
		prog.Decls = append(prog.Decls, decl)
	}

	if _, err := p.expect(lexer.BEGINPG, "expected declaration or 'BeginPg'"); err != nil {
		return nil, err
	}
	prog.Stmts, err = p.parseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ENDPG, "expected 'EndPg'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON, "expected ';' after 'EndPg'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.EOF, "unexpected token after 'EndPg;'"); err != nil {
		return nil, err
	}
	return prog, nil
}

// parseVarDecl parses: let <name> {, <name>} : <type> ;
func (p *Parser) parseVarDecl() (*ast.VarDecl, error) {
	tok := p.advance() // consume LET
	first, err := p.expect(lexer.IDENT, "expected variable name")
	if err != nil {
		return nil, err
	}
	names := []string{first.Value}
	for p.match(lexer.COMMA) {
		next, err := p.expect(lexer.IDENT, "expected variable name after ','")
		if err != nil {
			return nil, err
		}
		names = append(names, next.Value)
	}
	if _, err := p.expect(lexer.COLON, "expected ':' after variable names"); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON, "expected ';' after declaration"); err != nil {
		return nil, err
	}
	return &ast.VarDecl{Names: names, Type: typ, Pos: p.position(tok)}, nil
}

// parseConstDecl parses: @define Const <name> : <scalar> = <expr> ;
func (p *Parser) parseConstDecl() (*ast.ConstDecl, error) {
	tok := p.advance() // consume @define
	if _, err := p.expect(lexer.CONST, "expected 'Const' after '@define'"); err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.IDENT, "expected constant name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.COLON, "expected ':' after constant name"); err != nil {
		return nil, err
	}
	typ, err := p.parseScalarType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.EQUALS, "expected '=' in constant definition"); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON, "expected ';' after constant definition"); err != nil {
		return nil, err
	}
	return &ast.ConstDecl{Name: name.Value, Type: typ, Value: value, Pos: p.position(tok)}, nil
}

// parseType parses Int, Float, or an array type [<scalar>; <size>].
func (p *Parser) parseType() (*ast.TypeExpr, error) {
	if !p.check(lexer.LBRACKET) {
		return p.parseScalarType()
	}
	tok := p.advance() // consume '['
	elem, err := p.parseScalarType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON, "expected ';' in array type"); err != nil {
		return nil, err
	}
	sizeTok := p.peek()
	if sizeTok.Type != lexer.INT {
		return nil, p.unexpected("array size must be a positive integer literal")
	}
	p.advance()
	size, err := strconv.ParseInt(sizeTok.Value, 10, 32)
	if err != nil || size <= 0 {
		return nil, p.errorAt(sizeTok, fmt.Sprintf("array size must be a positive integer literal (got %s)", sizeTok.Value))
	}
	if _, err := p.expect(lexer.RBRACKET, "expected ']' after array size"); err != nil {
		return nil, err
	}
	return &ast.TypeExpr{Name: elem.Name, IsArray: true, Size: int(size), Pos: p.position(tok)}, nil
}

func (p *Parser) parseScalarType() (*ast.TypeExpr, error) {
	tok := p.peek()
	if tok.Type == lexer.INT_T || tok.Type == lexer.FLOAT_T {
		p.advance()
		return &ast.TypeExpr{Name: tok.Value, Pos: p.position(tok)}, nil
	}
	return nil, p.unexpected("expected type 'Int' or 'Float'")
}

// =========================================================================
// Block and statement parsing
// =========================================================================

// parseBlock parses { <stmt>* } and returns the statements in order.
func (p *Parser) parseBlock() ([]ast.Stmt, error) {
	if _, err := p.expect(lexer.LBRACE, "expected '{'"); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for !p.check(lexer.RBRACE) {
		if p.check(lexer.EOF) {
			return nil, p.unexpected("expected '}'")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	p.advance() // consume '}'
	return stmts, nil
}

func (p *Parser) parseStatement() (ast.Stmt, error) {
	switch p.peek().Type {
	case lexer.IDENT:
		return p.parseAssignStmt()
	case lexer.IF:
		return p.parseIfStmt()
	case lexer.DO:
		return p.parseDoWhileStmt()
	case lexer.FOR:
		return p.parseForStmt()
	case lexer.INPUT:
		return p.parseInputStmt()
	case lexer.OUTPUT:
		return p.parseOutputStmt()
	default:
		return nil, p.unexpected("expected statement")
	}
}

// ---- Assignment ----

func (p *Parser) parseAssignStmt() (*ast.AssignStmt, error) {
	target, err := p.parseVariable()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ASSIGN, "expected ':=' in assignment"); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON, "expected ';' after assignment"); err != nil {
		return nil, err
	}
	return &ast.AssignStmt{Target: target, Value: value, Pos: target.GetPos()}, nil
}

// ---- If ----

func (p *Parser) parseIfStmt() (*ast.IfStmt, error) {
	tok := p.advance() // consume IF
	cond, err := p.parseCondition("if")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.THEN, "expected 'then' after if condition"); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var elseStmts []ast.Stmt
	if p.match(lexer.ELSE) {
		elseStmts, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return &ast.IfStmt{Cond: cond, Then: then, Else: elseStmts, Pos: p.position(tok)}, nil
}

// ---- Do / While ----

func (p *Parser) parseDoWhileStmt() (*ast.DoWhileStmt, error) {
	tok := p.advance() // consume DO
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.WHILE, "expected 'while' after do body"); err != nil {
		return nil, err
	}
	cond, err := p.parseCondition("while")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON, "expected ';' after do-while"); err != nil {
		return nil, err
	}
	return &ast.DoWhileStmt{Body: body, Cond: cond, Pos: p.position(tok)}, nil
}

// parseCondition parses a parenthesised condition following keyword.
func (p *Parser) parseCondition(keyword string) (*ast.Condition, error) {
	if _, err := p.expect(lexer.LPAREN, fmt.Sprintf("expected '(' after '%s'", keyword)); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, fmt.Sprintf("expected ')' after %s condition", keyword)); err != nil {
		return nil, err
	}
	return &ast.Condition{Expr: expr}, nil
}

// ---- For ----

func (p *Parser) parseForStmt() (*ast.ForStmt, error) {
	tok := p.advance() // consume FOR
	v, err := p.expect(lexer.IDENT, "expected loop variable after 'for'")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.FROM, "expected 'from' after loop variable"); err != nil {
		return nil, err
	}
	start, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TO, "expected 'to' in for loop"); err != nil {
		return nil, err
	}
	end, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.STEP, "expected 'step' in for loop"); err != nil {
		return nil, err
	}
	step, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.ForStmt{
		Var:    v.Value,
		VarPos: p.position(v),
		Start:  start,
		End:    end,
		Step:   step,
		Body:   body,
		Pos:    p.position(tok),
	}, nil
}

// ---- Input / Output ----

func (p *Parser) parseInputStmt() (*ast.InputStmt, error) {
	tok := p.advance() // consume INPUT
	if _, err := p.expect(lexer.LPAREN, "expected '(' after 'input'"); err != nil {
		return nil, err
	}
	if !p.check(lexer.IDENT) {
		return nil, p.unexpected("expected variable in input")
	}
	target, err := p.parseVariable()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, "expected ')' after input variable"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON, "expected ';' after input"); err != nil {
		return nil, err
	}
	return &ast.InputStmt{Target: target, Pos: p.position(tok)}, nil
}

func (p *Parser) parseOutputStmt() (*ast.OutputStmt, error) {
	tok := p.advance() // consume OUTPUT
	if _, err := p.expect(lexer.LPAREN, "expected '(' after 'output'"); err != nil {
		return nil, err
	}
	var exprs []ast.Expr
	for {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if _, err := p.expect(lexer.RPAREN, "expected ')' after output arguments"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON, "expected ';' after output"); err != nil {
		return nil, err
	}
	return &ast.OutputStmt{Exprs: exprs, Pos: p.position(tok)}, nil
}

// parseVariable parses <name> or <name>[<index>].
func (p *Parser) parseVariable() (ast.Variable, error) {
	name, err := p.expect(lexer.IDENT, "expected variable name")
	if err != nil {
		return nil, err
	}
	if !p.match(lexer.LBRACKET) {
		return &ast.SimpleVar{Name: name.Value, Pos: p.position(name)}, nil
	}
	index, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RBRACKET, "expected ']' after index expression"); err != nil {
		return nil, err
	}
	return &ast.IndexVar{Name: name.Value, Index: index, Pos: p.position(name)}, nil
}

// =========================================================================
// Pratt expression parser
// =========================================================================

// parseExpression is the entry point for expression parsing.
func (p *Parser) parseExpression() (ast.Expr, error) {
	return p.parsePrecedence(precLogical)
}

// parsePrecedence parses an expression whose binary operators all bind at
// least as tightly as minPrec. Operators at the same level associate left.
func (p *Parser) parsePrecedence(minPrec int) (ast.Expr, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		op, prec := infixOperator(tok.Type)
		if prec == precNone || prec < minPrec {
			break
		}
		p.advance()
		right, err := p.parsePrecedence(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Left: left, Op: op, Right: right, Pos: p.position(tok)}
	}

	return left, nil
}

// ---- Prefix (atoms & unary operators) ----

func (p *Parser) parsePrefix() (ast.Expr, error) {
	tok := p.peek()

	switch tok.Type {
	case lexer.IDENT:
		v, err := p.parseVariable()
		if err != nil {
			return nil, err
		}
		return &ast.VarExpr{Var: v}, nil

	case lexer.INT, lexer.SIGNED_INT:
		p.advance()
		n, err := strconv.ParseInt(tok.Value, 10, 32)
		if err != nil {
			return nil, p.errorAt(tok, fmt.Sprintf("invalid integer literal %q", tok.Value))
		}
		return &ast.IntLit{Value: int32(n), Pos: p.position(tok)}, nil

	case lexer.FLOAT, lexer.SIGNED_FLOAT:
		p.advance()
		f, err := strconv.ParseFloat(tok.Value, 32)
		if err != nil {
			return nil, p.errorAt(tok, fmt.Sprintf("invalid float literal %q", tok.Value))
		}
		return &ast.FloatLit{Value: float32(f), Pos: p.position(tok)}, nil

	case lexer.STRING:
		p.advance()
		return &ast.StringLit{Value: tok.Value, Pos: p.position(tok)}, nil

	case lexer.LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN, "expected ')' after expression"); err != nil {
			return nil, err
		}
		return expr, nil

	case lexer.BANG:
		p.advance()
		operand, err := p.parsePrecedence(precUnary)
		if err != nil {
			return nil, err
		}
		return &ast.NotExpr{Operand: operand, Pos: p.position(tok)}, nil

	case lexer.MINUS:
		// Unary minus is sugar for 0 - operand.
		p.advance()
		operand, err := p.parsePrecedence(precUnary)
		if err != nil {
			return nil, err
		}
		pos := p.position(tok)
		return &ast.BinaryExpr{
			Left:  &ast.IntLit{Value: 0, Pos: pos},
			Op:    ast.Sub,
			Right: operand,
			Pos:   pos,
		}, nil

	default:
		return nil, p.unexpected("expected expression")
	}
}

// ---- Infix precedence table ----

func infixOperator(typ string) (ast.BinaryOp, int) {
	switch typ {
	case lexer.AND:
		return ast.And, precLogical
	case lexer.OR:
		return ast.Or, precLogical
	case lexer.LT:
		return ast.Lt, precRelational
	case lexer.GT:
		return ast.Gt, precRelational
	case lexer.LTE:
		return ast.Le, precRelational
	case lexer.GTE:
		return ast.Ge, precRelational
	case lexer.EQ:
		return ast.Eq, precRelational
	case lexer.NEQ:
		return ast.Ne, precRelational
	case lexer.PLUS:
		return ast.Add, precAdditive
	case lexer.MINUS:
		return ast.Sub, precAdditive
	case lexer.STAR:
		return ast.Mul, precMultiply
	case lexer.SLASH:
		return ast.Div, precMultiply
	default:
		return 0, precNone
	}
}
