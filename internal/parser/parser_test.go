package parser

import (
	"testing"

	"github.com/copperlang/copper/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseAll(t *testing.T, source string) []ast.Stmt {
	t.Helper()
	p := New(source)
	var stmts []ast.Stmt
	for {
		s, ok := p.Parse()
		if s != nil {
			stmts = append(stmts, s)
		}
		if !ok {
			break
		}
	}
	require.Empty(t, p.Errors, "unexpected parse errors: %v", p.Errors)
	return stmts
}

func TestParseVarDeclarationInferred(t *testing.T) {
	stmts := parseAll(t, `var x = 5;`)
	require.Len(t, stmts, 1)
	decl, ok := stmts[0].(*ast.InferDeclaration)
	require.True(t, ok)
	assert.Equal(t, "x", decl.Name)
}

func TestParseVarDeclarationTyped(t *testing.T) {
	stmts := parseAll(t, `var x: int = 5;`)
	require.Len(t, stmts, 1)
	decl, ok := stmts[0].(*ast.Declaration)
	require.True(t, ok)
	assert.Equal(t, "x", decl.Name)
}

func TestParseFunctionDeclaration(t *testing.T) {
	stmts := parseAll(t, `func add(a: int, b: int): int { return a + b; }`)
	require.Len(t, stmts, 1)
	fn, ok := stmts[0].(*ast.Function)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	assert.Equal(t, []string{"a", "b"}, fn.ParamNames)
}

func TestParseStructDeclaration(t *testing.T) {
	stmts := parseAll(t, `struct Point { x; y; }`)
	require.Len(t, stmts, 1)
	s, ok := stmts[0].(*ast.Struct)
	require.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, s.Fields)
}

func TestParseStructChainAssignment(t *testing.T) {
	stmts := parseAll(t, `p.x.y = 5;`)
	require.Len(t, stmts, 1)
	exprStmt, ok := stmts[0].(*ast.ExprStmt)
	require.True(t, ok)
	assign, ok := exprStmt.Expr.(*ast.Assign)
	require.True(t, ok)
	root, fields, ok := ast.FlattenStructCall(assign.Target)
	require.True(t, ok)
	assert.Equal(t, "p", root)
	assert.Equal(t, []string{"x", "y"}, fields)
}

func TestParseTernary(t *testing.T) {
	stmts := parseAll(t, `var x = a > 0 ? 1 : 2;`)
	require.Len(t, stmts, 1)
	decl := stmts[0].(*ast.InferDeclaration)
	_, ok := decl.Expr.(*ast.Ternary)
	assert.True(t, ok)
}

func TestParseNewCall(t *testing.T) {
	stmts := parseAll(t, `var p = new Point(1, 2);`)
	require.Len(t, stmts, 1)
	decl := stmts[0].(*ast.InferDeclaration)
	nc, ok := decl.Expr.(*ast.NewCall)
	require.True(t, ok)
	assert.Equal(t, "Point", nc.Name)
	assert.Len(t, nc.Args, 2)
}

func TestParseTypeCall(t *testing.T) {
	stmts := parseAll(t, `var x = int("5");`)
	require.Len(t, stmts, 1)
	decl := stmts[0].(*ast.InferDeclaration)
	_, ok := decl.Expr.(*ast.TypeCall)
	assert.True(t, ok)
}

func TestParseWhileLoop(t *testing.T) {
	stmts := parseAll(t, `while x < 10 { x = x + 1; }`)
	require.Len(t, stmts, 1)
	w, ok := stmts[0].(*ast.While)
	require.True(t, ok)
	body, ok := w.Body.(*ast.Block)
	require.True(t, ok)
	assert.Len(t, body.Stmts, 1)
}

func TestParseForLoopDesugarsToWhile(t *testing.T) {
	stmts := parseAll(t, `for (var i = 0; i < 3; i = i + 1) { println(i); }`)
	require.Len(t, stmts, 1)
	es, ok := stmts[0].(*ast.ExprStmt)
	require.True(t, ok)
	block, ok := es.Expr.(*ast.Block)
	require.True(t, ok)
	require.Len(t, block.Stmts, 2)
	_, ok = block.Stmts[0].(*ast.InferDeclaration)
	assert.True(t, ok)
	_, ok = block.Stmts[1].(*ast.While)
	assert.True(t, ok)
}

func TestParseIfElse(t *testing.T) {
	stmts := parseAll(t, `if x > 0 { println("pos"); } else { println("non-pos"); }`)
	require.Len(t, stmts, 1)
	ifStmt, ok := stmts[0].(*ast.If)
	require.True(t, ok)
	assert.NotNil(t, ifStmt.Then)
	assert.NotNil(t, ifStmt.Else)
}

func TestParseIfElseIf(t *testing.T) {
	stmts := parseAll(t, `if x > 0 { } else if x < 0 { } else { }`)
	require.Len(t, stmts, 1)
	ifStmt := stmts[0].(*ast.If)
	_, ok := ifStmt.Else.(*ast.If)
	assert.True(t, ok)
}

func TestParseImportAndQuit(t *testing.T) {
	stmts := parseAll(t, "import \"util.cop\";\nquit;")
	require.Len(t, stmts, 2)
	imp, ok := stmts[0].(*ast.Import)
	require.True(t, ok)
	assert.Equal(t, "util.cop", imp.Path)
	_, ok = stmts[1].(*ast.Quit)
	assert.True(t, ok)
}

func TestParsePrecedenceAdditiveBeforeRelational(t *testing.T) {
	stmts := parseAll(t, `var x = 1 + 2 < 4;`)
	decl := stmts[0].(*ast.InferDeclaration)
	bin, ok := decl.Expr.(*ast.Binary)
	require.True(t, ok)
	_, ok = bin.Left.(*ast.Binary)
	assert.True(t, ok)
}

func TestParseAssignByOp(t *testing.T) {
	stmts := parseAll(t, `x += 1;`)
	es := stmts[0].(*ast.ExprStmt)
	_, ok := es.Expr.(*ast.AssignByOp)
	assert.True(t, ok)
}

func TestParseBlockExpressionStatement(t *testing.T) {
	stmts := parseAll(t, `{ var y = 1; }`)
	require.Len(t, stmts, 1)
	es, ok := stmts[0].(*ast.ExprStmt)
	require.True(t, ok)
	_, ok = es.Expr.(*ast.Block)
	assert.True(t, ok)
}

func TestParseBlockTailExpression(t *testing.T) {
	stmts := parseAll(t, `var v = { var a = 10; var b = 20; a + b };`)
	require.Len(t, stmts, 1)
	decl := stmts[0].(*ast.InferDeclaration)
	block, ok := decl.Expr.(*ast.Block)
	require.True(t, ok)
	require.Len(t, block.Stmts, 3)
	tail, ok := block.Stmts[2].(*ast.ExprStmt)
	require.True(t, ok)
	assert.True(t, tail.Tail)
	_, ok = tail.Expr.(*ast.Binary)
	assert.True(t, ok)
}

func TestParseErrorMissingSemicolon(t *testing.T) {
	p := New(`var x = 5`)
	_, ok := p.Parse()
	assert.False(t, ok)
	assert.NotEmpty(t, p.Errors)
}

func TestParseCallExpression(t *testing.T) {
	stmts := parseAll(t, `println("hi " + who);`)
	es := stmts[0].(*ast.ExprStmt)
	call, ok := es.Expr.(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, "println", call.Name)
	assert.Len(t, call.Args, 1)
}
