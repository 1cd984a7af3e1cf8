// Package frontend is the "wrapper layer" of section 4.3: a recursive-
// descent parser that builds the AST and, node by node as it goes,
// drives the symbol table and the semantic analyzer — opening and
// closing scopes at function headers, inserting parameters and locals,
// and resolving every reference and call as it is parsed rather than in
// a separate pass.
//
// Grounded on the teacher's parser
// (smasonuk-sicpu/pkg/compiler/parser.go): a token slice plus cursor,
// peek/peekAt/advance/expect helpers, and one precedence-climbing
// method per operator tier. The teacher's language has no nested
// scopes to thread through, so the scope/analyzer calls interleaved
// below are this package's own addition.
package frontend

import (
	"strconv"
	"strings"

	"github.com/smasonuk/gracec/internal/ast"
	"github.com/smasonuk/gracec/internal/diag"
	"github.com/smasonuk/gracec/internal/semantic"
	"github.com/smasonuk/gracec/internal/token"
)

// Parser consumes a token stream and produces an annotated *ast.Program.
// When AstOnly is set, no symbol-table or semantic-analyzer calls are
// made at all; the parser only builds syntax, which is enough to dump
// an AST for debugging a grammar change without a well-formed program.
type Parser struct {
	file     string
	toks     []token.Token
	pos      int
	AstOnly  bool
	sem      *semantic.Analyzer
	funcPath []string // plain (unflattened) names, outermost first
}

func New(file string, toks []token.Token, sem *semantic.Analyzer, astOnly bool) *Parser {
	return &Parser{file: file, toks: toks, sem: sem, AstOnly: astOnly}
}

func (p *Parser) peek() token.Token { return p.peekAt(0) }

func (p *Parser) peekAt(offset int) token.Token {
	i := p.pos + offset
	if i >= len(p.toks) {
		return token.Token{Type: token.EOF}
	}
	return p.toks[i]
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return tok
}

func (p *Parser) pos_(tok token.Token) diag.Pos {
	return diag.Pos{File: p.file, Line: tok.Line, Column: tok.Column}
}

func (p *Parser) expect(tt token.Type) (token.Token, *diag.Error) {
	tok := p.advance()
	if tok.Type != tt {
		return tok, diag.Parse(p.pos_(tok), "expected %s, got %s %q", tt, tok.Type, tok.Lexeme)
	}
	return tok, nil
}

func (p *Parser) pushFunc(name string) string {
	p.funcPath = append(p.funcPath, name)
	return strings.Join(p.funcPath, ".")
}

func (p *Parser) popFunc() {
	p.funcPath = p.funcPath[:len(p.funcPath)-1]
}

// ---- program / function structure ----

// ParseProgram parses the single top-level function definition that is
// the whole compilation unit, per section 3.
func (p *Parser) ParseProgram() (*ast.Program, *diag.Error) {
	header, err := p.parseFunctionHeader()
	if err != nil {
		return nil, err
	}
	if !p.AstOnly {
		p.sem.EnterGlobal()
	}
	def, err := p.finishFuncDef(header, false)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.EOF); err != nil {
		return nil, err
	}
	if !p.AstOnly {
		if err := semantic.CheckMain(def); err != nil {
			return nil, err
		}
		if err := p.sem.Syms.FinalCheck(def.Pos); err != nil {
			return nil, err
		}
	}
	return &ast.Program{Main: def}, nil
}

// parseFunctionHeader parses  fun id ( parameter-list? ) : return-type.
func (p *Parser) parseFunctionHeader() (ast.FuncHeader, *diag.Error) {
	funTok, err := p.expect(token.FUN)
	if err != nil {
		return ast.FuncHeader{}, err
	}
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return ast.FuncHeader{}, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return ast.FuncHeader{}, err
	}
	var params []ast.Param
	if p.peek().Type != token.RPAREN {
		for {
			group, err := p.parseParamGroup()
			if err != nil {
				return ast.FuncHeader{}, err
			}
			params = append(params, group...)
			if p.peek().Type != token.SEMI {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return ast.FuncHeader{}, err
	}
	if _, err := p.expect(token.COLON); err != nil {
		return ast.FuncHeader{}, err
	}
	ret, err := p.parseReturnType()
	if err != nil {
		return ast.FuncHeader{}, err
	}
	return ast.FuncHeader{Name: nameTok.Lexeme, Params: params, ReturnType: ret, Pos: p.pos_(funTok)}, nil
}

// parseParamGroup parses one semicolon-delimited group:
// [ref] id (, id)* : type
func (p *Parser) parseParamGroup() ([]ast.Param, *diag.Error) {
	mode := ast.ByValue
	if p.peek().Type == token.REF {
		p.advance()
		mode = ast.ByRef
	}
	var names []token.Token
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	names = append(names, nameTok)
	for p.peek().Type == token.COMMA {
		p.advance()
		nameTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		names = append(names, nameTok)
	}
	if _, err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	typ, err := p.parseType(true)
	if err != nil {
		return nil, err
	}
	params := make([]ast.Param, len(names))
	for i, n := range names {
		params[i] = ast.Param{Name: n.Lexeme, Mode: mode, Type: typ, Pos: p.pos_(n)}
	}
	return params, nil
}

func (p *Parser) parseReturnType() (ast.ScalarKind, *diag.Error) {
	tok := p.advance()
	switch tok.Type {
	case token.INT:
		return ast.Int, nil
	case token.CHAR:
		return ast.Char, nil
	case token.NOTHING:
		return ast.Nothing, nil
	default:
		return 0, diag.Parse(p.pos_(tok), "expected a return type, got %s", tok.Type)
	}
}

// parseType parses a scalar type optionally followed by one or more
// bracketed dimensions. allowUnspecifiedLeading permits the very first
// dimension to be empty (a parameter's unspecified leading dimension).
func (p *Parser) parseType(allowUnspecifiedLeading bool) (ast.Type, *diag.Error) {
	tok := p.advance()
	var elem ast.ScalarKind
	switch tok.Type {
	case token.INT:
		elem = ast.Int
	case token.CHAR:
		elem = ast.Char
	default:
		return ast.Type{}, diag.Parse(p.pos_(tok), "expected a type, got %s", tok.Type)
	}
	var dims []ast.Dim
	for p.peek().Type == token.LBRACKET {
		p.advance()
		if p.peek().Type == token.RBRACKET {
			if !(allowUnspecifiedLeading && len(dims) == 0) {
				return ast.Type{}, diag.Parse(p.pos_(p.peek()), "unspecified array dimension only allowed as a parameter's leading dimension")
			}
			dims = append(dims, ast.Dim{Unspecified: true})
		} else {
			n, err := p.parseIntBound()
			if err != nil {
				return ast.Type{}, err
			}
			dims = append(dims, ast.Dim{Bound: n})
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return ast.Type{}, err
		}
	}
	t := ast.Type{Elem: elem}
	if len(dims) > 0 {
		t.Array = true
		t.Dims = dims
	}
	return t, nil
}

func (p *Parser) parseIntBound() (int, *diag.Error) {
	tok, err := p.expect(token.INTLIT)
	if err != nil {
		return 0, err
	}
	n, convErr := strconv.Atoi(tok.Lexeme)
	if convErr != nil {
		return 0, diag.Parse(p.pos_(tok), "malformed array bound %q", tok.Lexeme)
	}
	return n, nil
}

// finishFuncDef parses the body of a function whose header has already
// been parsed: declares the header, opens its scope, declares its
// parameters, parses its locals and block, then closes the scope.
func (p *Parser) finishFuncDef(header ast.FuncHeader, hasStaticLink bool) (*ast.FuncDef, *diag.Error) {
	def := &ast.FuncDef{Header: header, Pos: header.Pos}
	if !p.AstOnly {
		if err := p.sem.DeclareFuncDef(def); err != nil {
			return nil, err
		}
	}
	p.pushFunc(header.Name)
	defer p.popFunc()
	if !p.AstOnly {
		p.sem.EnterFunction(header.Name, hasStaticLink, header.ReturnType)
	}
	for i := range def.Header.Params {
		if !p.AstOnly {
			if err := p.sem.DeclareParam(&def.Header.Params[i]); err != nil {
				return nil, err
			}
		}
	}
	locals, err := p.parseLocalDefs()
	if err != nil {
		return nil, err
	}
	def.Locals = locals
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	def.Body = body
	if !p.AstOnly {
		if err := p.sem.ExitFunction(body.Pos); err != nil {
			return nil, err
		}
	}
	return def, nil
}

// parseLocalDefs parses zero or more local definitions: nested function
// declarations/definitions and variable groups, in textual order.
func (p *Parser) parseLocalDefs() ([]ast.Decl, *diag.Error) {
	var decls []ast.Decl
	for {
		switch p.peek().Type {
		case token.VAR:
			v, err := p.parseVarDecl()
			if err != nil {
				return nil, err
			}
			decls = append(decls, v)
		case token.FUN:
			d, err := p.parseLocalFunc()
			if err != nil {
				return nil, err
			}
			decls = append(decls, d)
		default:
			return decls, nil
		}
	}
}

func (p *Parser) parseLocalFunc() (ast.Decl, *diag.Error) {
	header, err := p.parseFunctionHeader()
	if err != nil {
		return nil, err
	}
	if p.peek().Type == token.SEMI {
		p.advance()
		decl := &ast.FuncDecl{Header: header, Pos: header.Pos}
		if !p.AstOnly {
			if err := p.sem.DeclareFuncDecl(decl); err != nil {
				return nil, err
			}
		}
		return decl, nil
	}
	return p.finishFuncDef(header, true)
}

func (p *Parser) parseVarDecl() (*ast.VarDecl, *diag.Error) {
	varTok, err := p.expect(token.VAR)
	if err != nil {
		return nil, err
	}
	var names []string
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	names = append(names, nameTok.Lexeme)
	for p.peek().Type == token.COMMA {
		p.advance()
		nameTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		names = append(names, nameTok.Lexeme)
	}
	if _, err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	typ, err := p.parseType(false)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	v := &ast.VarDecl{Names: names, Type: typ, Pos: p.pos_(varTok)}
	if !p.AstOnly {
		if err := p.sem.DeclareVars(v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// ---- statements ----

func (p *Parser) parseBlock() (*ast.Block, *diag.Error) {
	lbrace, err := p.expect(token.LBRACE)
	if err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for p.peek().Type != token.RBRACE && p.peek().Type != token.EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return &ast.Block{Stmts: stmts, Pos: p.pos_(lbrace)}, nil
}

func (p *Parser) parseStatement() (ast.Stmt, *diag.Error) {
	switch p.peek().Type {
	case token.SEMI:
		tok := p.advance()
		return &ast.EmptyStmt{Pos: p.pos_(tok)}, nil
	case token.LBRACE:
		return p.parseBlock()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.RETURN:
		return p.parseReturn()
	case token.IDENT:
		return p.parseAssignmentOrCall()
	default:
		tok := p.peek()
		return nil, diag.Parse(p.pos_(tok), "unexpected token %s %q in statement", tok.Type, tok.Lexeme)
	}
}

// parseIf parses  if ( cond ) then stmt [ else stmt ], with the
// dangling else resolved to the innermost open if by simply attaching
// it to whichever parseIf call is still on the call stack when ELSE is
// seen.
func (p *Parser) parseIf() (ast.Stmt, *diag.Error) {
	ifTok, err := p.expect(token.IF)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.THEN); err != nil {
		return nil, err
	}
	thenStmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	var elseStmt ast.Stmt
	if p.peek().Type == token.ELSE {
		p.advance()
		elseStmt, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}
	return &ast.IfStmt{Cond: cond, Then: thenStmt, Else: elseStmt, Pos: p.pos_(ifTok)}, nil
}

func (p *Parser) parseWhile() (ast.Stmt, *diag.Error) {
	whileTok, err := p.expect(token.WHILE)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DO); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Cond: cond, Body: body, Pos: p.pos_(whileTok)}, nil
}

func (p *Parser) parseReturn() (ast.Stmt, *diag.Error) {
	retTok, err := p.expect(token.RETURN)
	if err != nil {
		return nil, err
	}
	if p.peek().Type == token.SEMI {
		p.advance()
		r := &ast.ReturnStmt{Pos: p.pos_(retTok)}
		if !p.AstOnly {
			if err := p.sem.CheckReturn(r); err != nil {
				return nil, err
			}
		}
		return r, nil
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	r := &ast.ReturnStmt{Value: val, Pos: p.pos_(retTok)}
	if !p.AstOnly {
		if err := p.sem.CheckReturn(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// parseAssignmentOrCall disambiguates id(...)  from  id[...]? <- expr,
// both of which start with a bare identifier.
func (p *Parser) parseAssignmentOrCall() (ast.Stmt, *diag.Error) {
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	pos := p.pos_(nameTok)
	if p.peek().Type == token.LPAREN {
		args, err := p.parseCallArgs()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
		call := &ast.CallExpr{Name: nameTok.Lexeme, Args: args, Pos: pos}
		if !p.AstOnly {
			if _, err := p.sem.CheckCall(call); err != nil {
				return nil, err
			}
		}
		return &ast.CallStmt{Call: call, Pos: pos}, nil
	}

	var lv ast.LValue = &ast.Ident{Name: nameTok.Lexeme, Pos: pos}
	if p.peek().Type == token.LBRACKET {
		lv, err = p.parseIndexSuffix(lv)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	asg := &ast.Assignment{Target: lv, Value: val, Pos: pos}
	if !p.AstOnly {
		if err := p.sem.CheckAssignment(asg); err != nil {
			return nil, err
		}
	}
	return asg, nil
}

// parseIndexSuffix parses the single bracketed, comma-joined index list
// that may follow a simple l-value: base[i1, i2, ...].
func (p *Parser) parseIndexSuffix(base ast.LValue) (ast.LValue, *diag.Error) {
	lbracket, err := p.expect(token.LBRACKET)
	if err != nil {
		return nil, err
	}
	var indices []ast.Expr
	idx, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	indices = append(indices, idx)
	for p.peek().Type == token.COMMA {
		p.advance()
		idx, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		indices = append(indices, idx)
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	return &ast.IndexAccess{Base: base, Indices: indices, Pos: p.pos_(lbracket)}, nil
}

// ---- expressions ----

func (p *Parser) parseCallArgs() ([]ast.Expr, *diag.Error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var args []ast.Expr
	if p.peek().Type != token.RPAREN {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		for p.peek().Type == token.COMMA {
			p.advance()
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

// parseExpr is the entry point for arithmetic expressions: additive
// level down to primaries.
func (p *Parser) parseExpr() (ast.Expr, *diag.Error) {
	return p.parseAdditive()
}

func (p *Parser) parseAdditive() (ast.Expr, *diag.Error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == token.PLUS || p.peek().Type == token.MINUS {
		opTok := p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		op := ast.OpAdd
		if opTok.Type == token.MINUS {
			op = ast.OpSub
		}
		left = &ast.BinaryExpr{Op: op, X: left, Y: right, Pos: p.pos_(opTok)}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, *diag.Error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == token.STAR || p.peek().Type == token.DIV || p.peek().Type == token.MOD {
		opTok := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		var op ast.Oper
		switch opTok.Type {
		case token.STAR:
			op = ast.OpMul
		case token.DIV:
			op = ast.OpDiv
		default:
			op = ast.OpMod
		}
		left = &ast.BinaryExpr{Op: op, X: left, Y: right, Pos: p.pos_(opTok)}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, *diag.Error) {
	if p.peek().Type == token.MINUS {
		opTok := p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: ast.OpSub, X: x, Pos: p.pos_(opTok)}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expr, *diag.Error) {
	tok := p.peek()
	switch tok.Type {
	case token.INTLIT:
		p.advance()
		n, convErr := strconv.Atoi(tok.Lexeme)
		if convErr != nil {
			return nil, diag.Parse(p.pos_(tok), "malformed integer literal %q", tok.Lexeme)
		}
		return &ast.IntLit{Value: n, Pos: p.pos_(tok)}, nil

	case token.CHARLIT:
		p.advance()
		return &ast.CharLit{Value: []rune(tok.Lexeme)[0], Pos: p.pos_(tok)}, nil

	case token.STRINGLIT:
		p.advance()
		lv := &ast.StringLit{Value: tok.Lexeme, Pos: p.pos_(tok)}
		return &ast.LValueExpr{LValue: lv}, nil

	case token.LPAREN:
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return e, nil

	case token.IDENT:
		p.advance()
		pos := p.pos_(tok)
		if p.peek().Type == token.LPAREN {
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			call := &ast.CallExpr{Name: tok.Lexeme, Args: args, Pos: pos}
			if !p.AstOnly {
				if _, err := p.sem.CheckCall(call); err != nil {
					return nil, err
				}
			}
			return call, nil
		}
		var lv ast.LValue = &ast.Ident{Name: tok.Lexeme, Pos: pos}
		if p.peek().Type == token.LBRACKET {
			var err *diag.Error
			lv, err = p.parseIndexSuffix(lv)
			if err != nil {
				return nil, err
			}
		}
		if !p.AstOnly {
			if _, err := p.sem.ResolveLValue(lv); err != nil {
				return nil, err
			}
		}
		return &ast.LValueExpr{LValue: lv}, nil

	default:
		return nil, diag.Parse(p.pos_(tok), "unexpected token %s %q in expression", tok.Type, tok.Lexeme)
	}
}

// ---- conditions ----

func (p *Parser) parseCond() (ast.Cond, *diag.Error) {
	return p.parseCondOr()
}

func (p *Parser) parseCondOr() (ast.Cond, *diag.Error) {
	left, err := p.parseCondAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == token.OR {
		opTok := p.advance()
		right, err := p.parseCondAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicalBinary{Op: ast.LogicalOr, X: left, Y: right, Pos: p.pos_(opTok)}
	}
	return left, nil
}

func (p *Parser) parseCondAnd() (ast.Cond, *diag.Error) {
	left, err := p.parseCondUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == token.AND {
		opTok := p.advance()
		right, err := p.parseCondUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicalBinary{Op: ast.LogicalAnd, X: left, Y: right, Pos: p.pos_(opTok)}
	}
	return left, nil
}

func (p *Parser) parseCondUnary() (ast.Cond, *diag.Error) {
	if p.peek().Type == token.NOT {
		opTok := p.advance()
		x, err := p.parseCondUnary()
		if err != nil {
			return nil, err
		}
		return &ast.LogicalNot{X: x, Pos: p.pos_(opTok)}, nil
	}
	return p.parseCompare()
}

// parseCompare parses  expr relop expr ; a condition's leaves are
// always comparisons, never a bare parenthesized sub-condition, since
// if/while already parenthesize the whole condition at the statement
// level.
func (p *Parser) parseCompare() (ast.Cond, *diag.Error) {
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	opTok := p.advance()
	op, ok := relOp(opTok.Type)
	if !ok {
		return nil, diag.Parse(p.pos_(opTok), "expected a relational operator, got %s", opTok.Type)
	}
	y, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	cmp := &ast.Compare{Op: op, X: x, Y: y, Pos: p.pos_(opTok)}
	if !p.AstOnly {
		if err := p.sem.CheckCond(cmp); err != nil {
			return nil, err
		}
	}
	return cmp, nil
}

func relOp(tt token.Type) (ast.Oper, bool) {
	switch tt {
	case token.EQ:
		return ast.OpEq, true
	case token.NE:
		return ast.OpNe, true
	case token.LT:
		return ast.OpLt, true
	case token.LE:
		return ast.OpLe, true
	case token.GT:
		return ast.OpGt, true
	case token.GE:
		return ast.OpGe, true
	default:
		return 0, false
	}
}
