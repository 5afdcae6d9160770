// Package parser implements Copper's recursive-descent parser, producing
// internal/ast statement and expression trees from an internal/lexer token
// stream.
package parser

import (
	"github.com/copperlang/copper/internal/ast"
	"github.com/copperlang/copper/internal/diagnostics"
	"github.com/copperlang/copper/internal/lexer"
	"github.com/copperlang/copper/internal/token"
	"github.com/copperlang/copper/internal/value"
)

// Parser is a recursive-descent parser over one lexer's token stream.
type Parser struct {
	lex     *lexer.Lexer
	current token.Token
	prev    token.Token

	started bool
	Errors  []*diagnostics.CompileError
}

// New returns a Parser over source.
func New(source string) *Parser {
	return &Parser{lex: lexer.New(source)}
}

func (p *Parser) advance() token.Token {
	p.prev = p.current
	p.current = p.lex.Next()
	return p.prev
}

func (p *Parser) atEnd() bool {
	return p.current.Kind == token.EOF
}

func (p *Parser) check(kind token.Kind) bool {
	if p.atEnd() {
		return false
	}
	return p.current.Kind == kind
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) reportError(message string) {
	if p.atEnd() {
		p.Errors = append(p.Errors, &diagnostics.CompileError{Line: p.current.Line, AtEnd: true, Message: message})
	} else {
		p.Errors = append(p.Errors, &diagnostics.CompileError{Line: p.current.Line, Lexeme: p.current.Lexeme, Message: message})
	}
}

// consume advances past an expected token kind, recording an error and
// returning ok=false if the current token doesn't match.
func (p *Parser) consume(kind token.Kind, message string) (token.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	p.reportError(message)
	return token.Token{}, false
}

// Parse parses one top-level statement. ok is false once a parse error has
// occurred or input is exhausted; callers stop looping in either case,
// matching the "parser continues to report but emits no further
// statements" policy.
func (p *Parser) Parse() (ast.Stmt, bool) {
	if !p.started {
		p.started = true
		p.advance()
	}

	if p.atEnd() {
		return nil, false
	}

	return p.declarationStmt()
}

// ---- expressions ----

func (p *Parser) expression() (ast.Expr, bool) {
	return p.assignmentExpr()
}

func (p *Parser) assignmentExpr() (ast.Expr, bool) {
	tok := p.current
	expr, ok := p.assignByOpExpr()
	if !ok {
		return nil, false
	}

	if p.match(token.EQUAL) {
		value, ok := p.assignmentExpr()
		if !ok {
			return nil, false
		}
		if !isAssignable(expr) {
			p.reportError("invalid assignment target")
			return nil, false
		}
		return &ast.Assign{Token: tok, Target: expr, Value: value}, true
	}

	return expr, true
}

func isAssignable(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Variable, *ast.StructCall:
		return true
	}
	return false
}

var compoundAssignOps = []token.Kind{token.PLUS_EQUAL, token.MINUS_EQUAL, token.STAR_EQUAL, token.SLASH_EQUAL}

func (p *Parser) assignByOpExpr() (ast.Expr, bool) {
	tok := p.current
	expr, ok := p.ternaryExpr()
	if !ok {
		return nil, false
	}

	if p.match(compoundAssignOps...) {
		op := p.prev
		value, ok := p.assignmentExpr()
		if !ok {
			return nil, false
		}
		if !isAssignable(expr) {
			p.reportError("invalid assignment target")
			return nil, false
		}
		return &ast.AssignByOp{Token: tok, Target: expr, Op: op.Kind, Value: value}, true
	}

	return expr, true
}

func (p *Parser) ternaryExpr() (ast.Expr, bool) {
	tok := p.current
	cond, ok := p.orExpr()
	if !ok {
		return nil, false
	}

	if p.match(token.QUESTION) {
		trueExpr, ok := p.ternaryExpr()
		if !ok {
			return nil, false
		}
		if _, ok := p.consume(token.COLON, "expected ':' in ternary expression"); !ok {
			return nil, false
		}
		falseExpr, ok := p.ternaryExpr()
		if !ok {
			return nil, false
		}
		return &ast.Ternary{Token: tok, Cond: cond, TrueExpr: trueExpr, FalseExpr: falseExpr}, true
	}

	return cond, true
}

func (p *Parser) orExpr() (ast.Expr, bool) {
	tok := p.current
	expr, ok := p.andExpr()
	if !ok {
		return nil, false
	}
	for p.match(token.OR, token.OR_KW) {
		right, ok := p.andExpr()
		if !ok {
			return nil, false
		}
		expr = &ast.Binary{Token: tok, Left: expr, Op: token.OR, Right: right}
	}
	return expr, true
}

func (p *Parser) andExpr() (ast.Expr, bool) {
	tok := p.current
	expr, ok := p.equalityExpr()
	if !ok {
		return nil, false
	}
	for p.match(token.AND, token.AND_KW) {
		right, ok := p.equalityExpr()
		if !ok {
			return nil, false
		}
		expr = &ast.Binary{Token: tok, Left: expr, Op: token.AND, Right: right}
	}
	return expr, true
}

func (p *Parser) equalityExpr() (ast.Expr, bool) {
	tok := p.current
	expr, ok := p.relationalExpr()
	if !ok {
		return nil, false
	}
	for p.match(token.EQUAL_EQUAL, token.NOT_EQUAL) {
		op := p.prev.Kind
		right, ok := p.relationalExpr()
		if !ok {
			return nil, false
		}
		expr = &ast.Binary{Token: tok, Left: expr, Op: op, Right: right}
	}
	return expr, true
}

func (p *Parser) relationalExpr() (ast.Expr, bool) {
	tok := p.current
	expr, ok := p.additiveExpr()
	if !ok {
		return nil, false
	}
	for p.match(token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL) {
		op := p.prev.Kind
		right, ok := p.additiveExpr()
		if !ok {
			return nil, false
		}
		expr = &ast.Binary{Token: tok, Left: expr, Op: op, Right: right}
	}
	return expr, true
}

func (p *Parser) additiveExpr() (ast.Expr, bool) {
	tok := p.current
	expr, ok := p.multiplicativeExpr()
	if !ok {
		return nil, false
	}
	for p.match(token.PLUS, token.MINUS) {
		op := p.prev.Kind
		right, ok := p.multiplicativeExpr()
		if !ok {
			return nil, false
		}
		expr = &ast.Binary{Token: tok, Left: expr, Op: op, Right: right}
	}
	return expr, true
}

func (p *Parser) multiplicativeExpr() (ast.Expr, bool) {
	tok := p.current
	expr, ok := p.unaryExpr()
	if !ok {
		return nil, false
	}
	for p.match(token.STAR, token.SLASH) {
		op := p.prev.Kind
		right, ok := p.unaryExpr()
		if !ok {
			return nil, false
		}
		expr = &ast.Binary{Token: tok, Left: expr, Op: op, Right: right}
	}
	return expr, true
}

func (p *Parser) unaryExpr() (ast.Expr, bool) {
	if p.match(token.MINUS, token.NOT, token.NOT_KW) {
		op := p.prev
		right, ok := p.unaryExpr()
		if !ok {
			return nil, false
		}
		return &ast.Unary{Token: op, Op: op.Kind, Right: right}, true
	}
	return p.callPostfixExpr()
}

func (p *Parser) callPostfixExpr() (ast.Expr, bool) {
	expr, ok := p.primaryExpr()
	if !ok {
		return nil, false
	}

	for {
		switch {
		case p.match(token.LPAREN):
			expr, ok = p.finishCall(expr)
			if !ok {
				return nil, false
			}
		case p.match(token.DOT):
			tok := p.prev
			name, ok := p.consume(token.IDENT, "expected a field name after '.'")
			if !ok {
				return nil, false
			}
			expr = &ast.StructCall{Token: tok, Left: expr, Field: name.Lexeme}
		default:
			return expr, true
		}
	}
}

const maxArgs = 255

func (p *Parser) finishCall(callee ast.Expr) (ast.Expr, bool) {
	v, ok := callee.(*ast.Variable)
	if !ok {
		p.reportError("expected an identifier for calling a function")
		return nil, false
	}

	args, ok := p.argumentList()
	if !ok {
		return nil, false
	}
	return &ast.Call{Token: v.Token, Name: v.Name, Args: args}, true
}

// argumentList parses zero or more comma-separated expressions up to a
// closing ')', which it consumes.
func (p *Parser) argumentList() ([]ast.Expr, bool) {
	var args []ast.Expr

	if !p.check(token.RPAREN) {
		for {
			if len(args) >= maxArgs {
				p.reportError("can't have more than 255 arguments in a call")
				return nil, false
			}
			arg, ok := p.expression()
			if !ok {
				return nil, false
			}
			args = append(args, arg)
			if !p.match(token.COMMA) {
				break
			}
		}
	}

	if _, ok := p.consume(token.RPAREN, "expected ')' after call arguments"); !ok {
		return nil, false
	}
	return args, true
}

var typeTokenKinds = map[token.Kind]value.ClassType{
	token.TYPE_BOOL:    value.ClassBool,
	token.TYPE_ANY:     value.ClassAny,
	token.TYPE_DECIMAL: value.ClassDecimal,
	token.TYPE_UINT:    value.ClassUint,
	token.TYPE_INT:     value.ClassInt,
	token.TYPE_STRING:  value.ClassStr,
}

func isTypeToken(k token.Kind) bool {
	_, ok := typeTokenKinds[k]
	return ok
}

func (p *Parser) primaryExpr() (ast.Expr, bool) {
	tok := p.current

	switch {
	case p.match(token.TRUE):
		return &ast.Literal{Token: tok, Value: value.Bool(true)}, true
	case p.match(token.FALSE):
		return &ast.Literal{Token: tok, Value: value.Bool(false)}, true
	case p.match(token.INT):
		n, ok := parseInt(tok.Lexeme)
		if !ok {
			p.reportError("invalid integer literal")
			return nil, false
		}
		return &ast.Literal{Token: tok, Value: value.Int(n)}, true
	case p.match(token.DECIMAL):
		f, ok := parseFloat(tok.Lexeme)
		if !ok {
			p.reportError("invalid decimal literal")
			return nil, false
		}
		return &ast.Literal{Token: tok, Value: value.Decimal(f)}, true
	case p.match(token.STR):
		return &ast.Literal{Token: tok, Value: value.Str(tok.Lexeme)}, true
	case p.match(token.NEW):
		name, ok := p.consume(token.IDENT, "expected a struct name after 'new'")
		if !ok {
			return nil, false
		}
		if p.match(token.LPAREN) {
			args, ok := p.argumentList()
			if !ok {
				return nil, false
			}
			return &ast.NewCall{Token: tok, Name: name.Lexeme, Args: args}, true
		}
		return &ast.New{Token: tok, Name: name.Lexeme}, true
	case isTypeToken(p.current.Kind):
		kind := p.current.Kind
		p.advance()
		if _, ok := p.consume(token.LPAREN, "expected '(' after type name"); !ok {
			return nil, false
		}
		arg, ok := p.expression()
		if !ok {
			return nil, false
		}
		if _, ok := p.consume(token.RPAREN, "expected ')' after expression"); !ok {
			return nil, false
		}
		return &ast.TypeCall{Token: tok, Type: kind, Arg: arg}, true
	case p.match(token.IDENT):
		return &ast.Variable{Token: tok, Name: tok.Lexeme}, true
	case p.match(token.LBRACE):
		return p.blockExpr(tok)
	case p.match(token.LPAREN):
		inner, ok := p.expression()
		if !ok {
			return nil, false
		}
		if _, ok := p.consume(token.RPAREN, "expected ')' after expression"); !ok {
			return nil, false
		}
		return &ast.Group{Token: tok, Inner: inner}, true
	}

	p.reportError("expected an expression")
	p.advance()
	return nil, false
}

func isStmtKeyword(k token.Kind) bool {
	switch k {
	case token.FUNC, token.WHILE, token.FOR, token.IF, token.RETURN,
		token.STRUCT, token.IMPORT, token.QUIT, token.VAR, token.LBRACE:
		return true
	}
	return false
}

// blockExpr parses statements up to and consuming a closing '}'. tok is the
// already-consumed opening '{'. A final expression statement written
// without a trailing semicolon is recorded as the block's tail value (see
// ast.ExprStmt.Tail); every other statement requires its semicolon as usual.
func (p *Parser) blockExpr(tok token.Token) (*ast.Block, bool) {
	var stmts []ast.Stmt
	for !p.check(token.RBRACE) && !p.atEnd() {
		if isStmtKeyword(p.current.Kind) {
			s, ok := p.declarationStmt()
			if !ok {
				return nil, false
			}
			stmts = append(stmts, s)
			continue
		}

		exprTok := p.current
		expr, ok := p.expression()
		if !ok {
			return nil, false
		}
		if p.check(token.RBRACE) {
			stmts = append(stmts, &ast.ExprStmt{Token: exprTok, Expr: expr, Tail: true})
			break
		}
		if _, ok := p.consume(token.SEMICOLON, "expected ';' after expression"); !ok {
			return nil, false
		}
		stmts = append(stmts, &ast.ExprStmt{Token: exprTok, Expr: expr})
	}
	if _, ok := p.consume(token.RBRACE, "expected '}' after block"); !ok {
		return nil, false
	}
	return &ast.Block{Token: tok, Stmts: stmts}, true
}

// ---- statements ----

func (p *Parser) parseTypeAnnotation() (value.ClassType, bool) {
	ct, ok := typeTokenKinds[p.current.Kind]
	if !ok {
		p.reportError("expected a type identifier")
		return value.ClassType{}, false
	}
	p.advance()
	return ct, true
}

func (p *Parser) varDeclarationStmt() (ast.Stmt, bool) {
	tok := p.current
	name, ok := p.consume(token.IDENT, "expected variable name")
	if !ok {
		return nil, false
	}

	var expr ast.Expr = &ast.Literal{Token: tok, Value: value.None()}
	ctype := value.ClassAny
	gotType := false

	if p.match(token.COLON) {
		ctype, ok = p.parseTypeAnnotation()
		if !ok {
			return nil, false
		}
		gotType = true
	}

	if p.match(token.EQUAL) {
		expr, ok = p.expression()
		if !ok {
			return nil, false
		}
	}

	if _, ok := p.consume(token.SEMICOLON, "expected ';' after variable declaration"); !ok {
		return nil, false
	}

	if gotType {
		return &ast.Declaration{Token: tok, Name: name.Lexeme, Type: ctype, Expr: expr}, true
	}
	return &ast.InferDeclaration{Token: tok, Name: name.Lexeme, Expr: expr}, true
}

func (p *Parser) functionStmt(what string) (ast.Stmt, bool) {
	tok := p.current
	name, ok := p.consume(token.IDENT, "expected "+what+" name")
	if !ok {
		return nil, false
	}
	if _, ok := p.consume(token.LPAREN, "expected '(' after "+what+" name"); !ok {
		return nil, false
	}

	var names []string
	var types []value.ClassType

	if !p.check(token.RPAREN) {
		for {
			if len(names) >= maxArgs {
				p.reportError("cannot have more than 255 parameters")
				return nil, false
			}
			pname, ok := p.consume(token.IDENT, "expected an identifier for parameter")
			if !ok {
				return nil, false
			}
			if _, ok := p.consume(token.COLON, "expected ':' after parameter identifier"); !ok {
				return nil, false
			}
			ptype, ok := p.parseTypeAnnotation()
			if !ok {
				return nil, false
			}
			names = append(names, pname.Lexeme)
			types = append(types, ptype)
			if !p.match(token.COMMA) {
				break
			}
		}
	}

	if _, ok := p.consume(token.RPAREN, "expected ')' after parameters"); !ok {
		return nil, false
	}

	ret := value.ClassAny
	if p.match(token.COLON) {
		ret, ok = p.parseTypeAnnotation()
		if !ok {
			return nil, false
		}
	}

	if _, ok := p.consume(token.LBRACE, "expected '{' before "+what+" body"); !ok {
		return nil, false
	}
	blockTok := p.prev
	body, ok := p.blockExpr(blockTok)
	if !ok {
		return nil, false
	}

	return &ast.Function{Token: tok, Name: name.Lexeme, ReturnType: ret, ParamNames: names, ParamTypes: types, Body: body}, true
}

func (p *Parser) structStmt() (ast.Stmt, bool) {
	tok := p.current
	name, ok := p.consume(token.IDENT, "expected struct name")
	if !ok {
		return nil, false
	}
	if _, ok := p.consume(token.LBRACE, "expected '{' after struct name"); !ok {
		return nil, false
	}

	var fields []string
	for !p.check(token.RBRACE) && !p.atEnd() {
		field, ok := p.consume(token.IDENT, "expected a field name")
		if !ok {
			return nil, false
		}
		if _, ok := p.consume(token.SEMICOLON, "expected ';' after field name"); !ok {
			return nil, false
		}
		fields = append(fields, field.Lexeme)
	}

	if _, ok := p.consume(token.RBRACE, "expected '}' after struct body"); !ok {
		return nil, false
	}

	return &ast.Struct{Token: tok, Name: name.Lexeme, Fields: fields}, true
}

func (p *Parser) importStmt() (ast.Stmt, bool) {
	tok := p.current
	path, ok := p.consume(token.STR, "expected a string literal after 'import'")
	if !ok {
		return nil, false
	}
	if _, ok := p.consume(token.SEMICOLON, "expected ';' after import"); !ok {
		return nil, false
	}
	return &ast.Import{Token: tok, Path: path.Lexeme}, true
}

func (p *Parser) quitStmt() (ast.Stmt, bool) {
	tok := p.current
	if _, ok := p.consume(token.SEMICOLON, "expected ';' after quit"); !ok {
		return nil, false
	}
	return &ast.Quit{Token: tok}, true
}

func (p *Parser) whileStmt() (ast.Stmt, bool) {
	tok := p.current
	cond, ok := p.expression()
	if !ok {
		return nil, false
	}
	if _, ok := p.consume(token.LBRACE, "expected '{' before 'while' body"); !ok {
		return nil, false
	}
	blockTok := p.prev
	body, ok := p.blockExpr(blockTok)
	if !ok {
		return nil, false
	}
	return &ast.While{Token: tok, Cond: cond, Body: body}, true
}

func (p *Parser) forStmt() (ast.Stmt, bool) {
	tok := p.current
	if _, ok := p.consume(token.LPAREN, "expected '(' after 'for'"); !ok {
		return nil, false
	}

	var initializer ast.Stmt
	var ok bool
	switch {
	case p.match(token.VAR):
		initializer, ok = p.varDeclarationStmt()
		if !ok {
			return nil, false
		}
	case p.check(token.SEMICOLON):
		initTok := p.current
		p.advance()
		initializer = &ast.ExprStmt{Token: initTok, Expr: &ast.Nothing{Token: initTok}}
	default:
		initializer, ok = p.exprStmt()
		if !ok {
			return nil, false
		}
	}

	var cond ast.Expr
	if p.check(token.SEMICOLON) {
		cond = &ast.Nothing{Token: p.current}
	} else {
		cond, ok = p.expression()
		if !ok {
			return nil, false
		}
	}
	if _, ok := p.consume(token.SEMICOLON, "expected ';' after condition"); !ok {
		return nil, false
	}

	var incr ast.Expr
	if p.check(token.RPAREN) {
		incr = &ast.Nothing{Token: p.current}
	} else {
		incr, ok = p.expression()
		if !ok {
			return nil, false
		}
	}
	if _, ok := p.consume(token.RPAREN, "expected ')' after 'for' clauses"); !ok {
		return nil, false
	}

	if _, ok := p.consume(token.LBRACE, "expected '{' before 'for' body"); !ok {
		return nil, false
	}
	blockTok := p.prev
	body, ok := p.blockExpr(blockTok)
	if !ok {
		return nil, false
	}

	bodyStmts := append(append([]ast.Stmt{}, body.Stmts...), &ast.ExprStmt{Token: blockTok, Expr: incr})
	loopBody := &ast.Block{Token: blockTok, Stmts: bodyStmts}

	forBody := []ast.Stmt{
		initializer,
		&ast.While{Token: tok, Cond: cond, Body: loopBody},
	}

	return &ast.ExprStmt{Token: tok, Expr: &ast.Block{Token: tok, Stmts: forBody}}, true
}

func (p *Parser) ifStmt() (ast.Stmt, bool) {
	tok := p.current
	cond, ok := p.expression()
	if !ok {
		return nil, false
	}

	if _, ok := p.consume(token.LBRACE, "expected '{' after 'if' condition"); !ok {
		return nil, false
	}
	blockTok := p.prev
	thenBlock, ok := p.blockExpr(blockTok)
	if !ok {
		return nil, false
	}
	thenStmt := &ast.ExprStmt{Token: blockTok, Expr: thenBlock}

	var elseStmt ast.Stmt
	if p.match(token.ELSE) {
		if p.match(token.IF) {
			elseStmt, ok = p.ifStmt()
			if !ok {
				return nil, false
			}
			return &ast.If{Token: tok, Cond: cond, Then: thenStmt, Else: elseStmt}, true
		}
		if _, ok := p.consume(token.LBRACE, "expected '{' after 'else'"); !ok {
			return nil, false
		}
		elseBlockTok := p.prev
		elseBlock, ok := p.blockExpr(elseBlockTok)
		if !ok {
			return nil, false
		}
		elseStmt = &ast.ExprStmt{Token: elseBlockTok, Expr: elseBlock}
	}

	return &ast.If{Token: tok, Cond: cond, Then: thenStmt, Else: elseStmt}, true
}

func (p *Parser) returnStmt() (ast.Stmt, bool) {
	tok := p.current
	if p.match(token.SEMICOLON) {
		return &ast.Return{Token: tok}, true
	}

	expr, ok := p.expression()
	if !ok {
		return nil, false
	}
	if _, ok := p.consume(token.SEMICOLON, "expected ';' after return statement"); !ok {
		return nil, false
	}
	return &ast.Return{Token: tok, Value: expr}, true
}

func (p *Parser) exprStmt() (ast.Stmt, bool) {
	tok := p.current
	expr, ok := p.expression()
	if !ok {
		return nil, false
	}
	if _, ok := p.consume(token.SEMICOLON, "expected ';' after expression"); !ok {
		return nil, false
	}
	return &ast.ExprStmt{Token: tok, Expr: expr}, true
}

func (p *Parser) stmt() (ast.Stmt, bool) {
	switch {
	case p.match(token.FUNC):
		return p.functionStmt("function")
	case p.match(token.WHILE):
		return p.whileStmt()
	case p.match(token.FOR):
		return p.forStmt()
	case p.match(token.IF):
		return p.ifStmt()
	case p.match(token.RETURN):
		return p.returnStmt()
	case p.match(token.STRUCT):
		return p.structStmt()
	case p.match(token.IMPORT):
		return p.importStmt()
	case p.match(token.QUIT):
		return p.quitStmt()
	}
	return p.exprStmt()
}

func (p *Parser) declarationStmt() (ast.Stmt, bool) {
	if p.match(token.VAR) {
		return p.varDeclarationStmt()
	}
	if p.match(token.LBRACE) {
		tok := p.prev
		block, ok := p.blockExpr(tok)
		if !ok {
			return nil, false
		}
		return &ast.ExprStmt{Token: tok, Expr: block}, true
	}
	return p.stmt()
}
