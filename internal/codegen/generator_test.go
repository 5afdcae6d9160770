package codegen

import (
	"testing"

	"github.com/copperlang/copper/internal/ast"
	"github.com/copperlang/copper/internal/chunk"
	"github.com/copperlang/copper/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genFrom(t *testing.T, source string) *Generator {
	t.Helper()
	p := parser.New(source)
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
	require.Empty(t, p.Errors)

	g := New("main.cop")
	g.Generate(stmts)
	return g
}

func ops(g *Generator) []chunk.Op {
	var out []chunk.Op
	for _, instr := range g.Chunk.Code {
		out = append(out, instr.Op)
	}
	return out
}

func TestGenerateBinaryExpression(t *testing.T) {
	g := genFrom(t, `var x = 1 + 2;`)
	require.Empty(t, g.Errors)
	assert.Equal(t, []chunk.Op{chunk.OpPush, chunk.OpPush, chunk.OpAdd, chunk.OpInferStore}, ops(g))
}

func TestGenerateIfElse(t *testing.T) {
	g := genFrom(t, `if x > 0 { println(x); } else { println(x); }`)
	require.Empty(t, g.Errors)
	got := ops(g)
	assert.Contains(t, got, chunk.OpJmpIfFalse)
	assert.Contains(t, got, chunk.OpJmp)
	assert.Contains(t, got, chunk.OpStartScope)
	assert.Contains(t, got, chunk.OpEndScope)
}

func TestGenerateWhileLoopsBack(t *testing.T) {
	g := genFrom(t, `while x < 10 { x = x + 1; }`)
	require.Empty(t, g.Errors)
	last := g.Chunk.Code[len(g.Chunk.Code)-1]
	assert.Equal(t, chunk.OpJmp, last.Op)

	var jmpBack *chunk.Instruction
	for i := range g.Chunk.Code {
		if g.Chunk.Code[i].Op == chunk.OpJmp {
			jmpBack = &g.Chunk.Code[i]
		}
	}
	require.NotNil(t, jmpBack)
	assert.Equal(t, 0, jmpBack.Target)
}

func TestGenerateFunctionRegistersInChunk(t *testing.T) {
	g := genFrom(t, `func add(a: int, b: int): int { return a + b; }`)
	require.Empty(t, g.Errors)
	require.True(t, g.Chunk.Functions.HasFunction("add"))
	fn := g.Chunk.Functions.GetFunction("add")
	assert.Equal(t, 2, fn.ArgCount)
}

func TestGenerateBlockAsExpressionLiftsAndCalls(t *testing.T) {
	g := genFrom(t, `var v = { var a = 10; var b = 20; a + b };`)
	require.Empty(t, g.Errors)
	require.True(t, g.Chunk.Functions.HasFunction("@block_func:0"))
	got := ops(g)
	assert.Contains(t, got, chunk.OpCallFunc)

	// The lifted body must NOT push a default None after its tail
	// expression: Add should be immediately followed by Return.
	var sawAddThenReturn bool
	for i := 0; i < len(g.Chunk.Code)-1; i++ {
		if g.Chunk.Code[i].Op == chunk.OpAdd && g.Chunk.Code[i+1].Op == chunk.OpReturn {
			sawAddThenReturn = true
		}
	}
	assert.True(t, sawAddThenReturn)
}

func TestGenerateExprStatementElidesPureExpr(t *testing.T) {
	g := genFrom(t, `x;`)
	require.Empty(t, g.Errors)
	assert.Empty(t, ops(g))
}

func TestGenerateExprStatementPopsCall(t *testing.T) {
	g := genFrom(t, `println(x);`)
	require.Empty(t, g.Errors)
	got := ops(g)
	assert.Equal(t, chunk.OpPop, got[len(got)-1])
}

func TestGenerateExprStatementBinaryStillCallsEmbeddedCall(t *testing.T) {
	g := genFrom(t, `se() + 1;`)
	require.Empty(t, g.Errors)
	got := ops(g)
	assert.Contains(t, got, chunk.OpCallFunc)
	assert.Equal(t, chunk.OpPop, got[len(got)-1])
}

func TestGenerateExprStatementTernaryStillCallsEmbeddedCall(t *testing.T) {
	g := genFrom(t, `true ? a() : b();`)
	require.Empty(t, g.Errors)
	got := ops(g)
	count := 0
	for _, op := range got {
		if op == chunk.OpCallFunc {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestGenerateExprStatementGroupStillCallsEmbeddedCall(t *testing.T) {
	g := genFrom(t, `(f());`)
	require.Empty(t, g.Errors)
	assert.Contains(t, ops(g), chunk.OpCallFunc)
}

func TestGenerateExprStatementStructCallStillCallsEmbeddedCall(t *testing.T) {
	g := genFrom(t, `obj().field;`)
	require.Empty(t, g.Errors)
	assert.Contains(t, ops(g), chunk.OpCallFunc)
}

func TestGenerateAssignHasNoTrailingPop(t *testing.T) {
	g := genFrom(t, `x = 5;`)
	require.Empty(t, g.Errors)
	got := ops(g)
	assert.Equal(t, chunk.OpAssign, got[len(got)-1])
}

func TestGenerateNewCallReversesStructSetByIndex(t *testing.T) {
	g := genFrom(t, `struct Point { x; y; } var p = new Point(1, 2);`)
	require.Empty(t, g.Errors)
	got := ops(g)
	var idxs []int
	for i, instr := range g.Chunk.Code {
		if instr.Op == chunk.OpStructSetByIndex {
			idxs = append(idxs, instr.Index)
			_ = i
		}
	}
	assert.Equal(t, []int{1, 0}, idxs)
	assert.Contains(t, got, chunk.OpNewStruct)
}

func TestGenerateNewCallArityMismatchIsError(t *testing.T) {
	g := genFrom(t, `struct Point { x; y; } var p = new Point(1);`)
	require.NotEmpty(t, g.Errors)
}

func TestGenerateAssignToStructChain(t *testing.T) {
	g := genFrom(t, `p.x.y = 5;`)
	require.Empty(t, g.Errors)
	last := g.Chunk.Code[len(g.Chunk.Code)-1]
	assert.Equal(t, chunk.OpStructSet, last.Op)
	assert.Equal(t, "p", last.Name)
	assert.Equal(t, []string{"x", "y"}, last.Fields)
}

func TestGenerateImportIsCachedAndGeneratesOnce(t *testing.T) {
	p := parser.New(`import "util.cop"; import "util.cop";`)
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
	require.Empty(t, p.Errors)

	g := New("main.cop")
	reads := 0
	g.ReadFile = func(path string) (string, error) {
		reads++
		return `var imported = 1;`, nil
	}
	g.ExpandMacros = func(src string) (string, error) { return src, nil }

	g.Generate(stmts)
	require.Empty(t, g.Errors)
	assert.Equal(t, 1, reads)
}

func TestResolveImportPathRelativeToCurrentFile(t *testing.T) {
	assert.Equal(t, "lib/util.cop", resolveImportPath("lib/main.cop", "util.cop"))
	assert.Equal(t, "util.cop", resolveImportPath("main.cop", "util.cop"))
}
