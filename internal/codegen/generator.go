// Package codegen linearizes an internal/ast tree into an internal/chunk
// bytecode stream: forward-jump patching, block-as-expression lifting into
// anonymous internal functions, structure-literal construction, and
// depth-first textual-import expansion.
package codegen

import (
	"fmt"
	"path"
	"strings"

	"github.com/copperlang/copper/internal/ast"
	"github.com/copperlang/copper/internal/chunk"
	"github.com/copperlang/copper/internal/diagnostics"
	"github.com/copperlang/copper/internal/parser"
	"github.com/copperlang/copper/internal/token"
	"github.com/copperlang/copper/internal/value"
)

// MacroExpander pre-processes an imported file's source before it is lexed.
// internal/macro.Expand satisfies this.
type MacroExpander func(source string) (string, error)

// FileReader reads an imported file's contents by resolved path.
type FileReader func(path string) (string, error)

// Generator walks an AST and emits into a *chunk.Chunk, implementing
// ast.Visitor so each node double-dispatches to its matching Visit method.
type Generator struct {
	Chunk *chunk.Chunk

	Errors []*diagnostics.CompileError

	basePath     string
	visited      map[string]bool
	blockCounter int

	ReadFile     FileReader
	ExpandMacros MacroExpander
}

// New returns a Generator that will emit into a fresh chunk. basePath is the
// file path of the top-level source being compiled, used to resolve
// relative import literals.
func New(basePath string) *Generator {
	return &Generator{
		Chunk:   chunk.New(),
		basePath: basePath,
		visited:  map[string]bool{},
	}
}

// SetBasePath changes the file path used to resolve relative imports for
// statements generated from this point on. Used by internal/pipeline when
// concatenating multiple top-level files into one chunk.
func (g *Generator) SetBasePath(path string) {
	g.basePath = path
}

func (g *Generator) errorAt(tok token.Token, message string) {
	g.Errors = append(g.Errors, &diagnostics.CompileError{Line: tok.Line, Lexeme: tok.Lexeme, Message: message})
}

func (g *Generator) emit(line int, instr chunk.Instruction) int {
	return g.Chunk.Emit(line, instr)
}

func (g *Generator) emitPlaceholder(line int, op chunk.Op) int {
	return g.Chunk.Emit(line, chunk.Instruction{Op: op})
}

func (g *Generator) patch(idx int) {
	g.Chunk.PatchJmp(idx, g.Chunk.Len())
}

// Generate emits every statement in order. Callers compile a file's full
// statement list in one call so imports encountered mid-stream land in
// document order.
func (g *Generator) Generate(stmts []ast.Stmt) {
	for _, s := range stmts {
		s.Accept(g)
	}
}

func (g *Generator) generateStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		s.Accept(g)
	}
}

// generateValue emits code for e such that exactly one value is left on the
// stack. Blocks in value position are lifted into anonymous functions;
// everything else dispatches through Accept.
func (g *Generator) generateValue(e ast.Expr) {
	if blk, ok := e.(*ast.Block); ok {
		g.liftBlock(blk)
		return
	}
	e.Accept(g)
}

// generateCond emits a condition value, treating an omitted for-loop clause
// (ast.Nothing) as a literal true.
func (g *Generator) generateCond(e ast.Expr) {
	if n, ok := e.(*ast.Nothing); ok {
		g.emit(n.Token.Line, chunk.Instruction{Op: chunk.OpPush, Value: value.Bool(true)})
		return
	}
	g.generateValue(e)
}

// generateBlockInline emits a block's statements directly in place —
// StartScope, each statement, EndScope — with no anonymous-function lift and
// no residual stack value. Used for control-flow bodies and bare statement
// blocks, which are evaluated for effect, not value.
func (g *Generator) generateBlockInline(b *ast.Block) {
	line := b.Token.Line
	g.emit(line, chunk.Instruction{Op: chunk.OpStartScope})
	g.generateStmts(b.Stmts)
	g.emit(line, chunk.Instruction{Op: chunk.OpEndScope})
}

// liftBlock hoists a value-position block into an anonymous zero-argument
// function `@block_func:<n>` and emits an inline call to it, per the
// block-as-expression codegen rule. The block's tail expression (its final
// statement, written without a trailing semicolon) becomes the function's
// return value; a block with no tail expression returns None.
func (g *Generator) liftBlock(b *ast.Block) {
	line := b.Token.Line
	name := fmt.Sprintf("@block_func:%d", g.blockCounter)
	g.blockCounter++

	jOver := g.emitPlaceholder(line, chunk.OpJmp)
	offset := g.Chunk.Len()

	g.emit(line, chunk.Instruction{Op: chunk.OpStartScope})

	hasTail := false
	for i, s := range b.Stmts {
		if es, ok := s.(*ast.ExprStmt); ok && es.Tail && i == len(b.Stmts)-1 {
			g.generateValue(es.Expr)
			hasTail = true
			continue
		}
		s.Accept(g)
	}
	if !hasTail {
		g.emit(line, chunk.Instruction{Op: chunk.OpPush, Value: value.None()})
	}

	g.emit(line, chunk.Instruction{Op: chunk.OpReturn})
	g.emit(line, chunk.Instruction{Op: chunk.OpEndScope})

	g.Chunk.Functions.AddFunction(name, value.ClassAny, 0, offset)
	g.patch(jOver)

	g.emit(line, chunk.Instruction{Op: chunk.OpCallFunc, Name: name})
}

// ---- expression visitors ----

func (g *Generator) VisitLiteral(n *ast.Literal) {
	g.emit(n.Token.Line, chunk.Instruction{Op: chunk.OpPush, Value: n.Value})
}

func (g *Generator) VisitVariable(n *ast.Variable) {
	g.emit(n.Token.Line, chunk.Instruction{Op: chunk.OpLoad, Name: n.Name})
}

func (g *Generator) VisitUnary(n *ast.Unary) {
	g.generateValue(n.Right)
	switch n.Op {
	case token.MINUS:
		g.emit(n.Token.Line, chunk.Instruction{Op: chunk.OpNegate})
	case token.NOT, token.NOT_KW:
		g.emit(n.Token.Line, chunk.Instruction{Op: chunk.OpNot})
	}
}

var binaryOps = map[token.Kind]chunk.Op{
	token.PLUS: chunk.OpAdd, token.MINUS: chunk.OpSub, token.STAR: chunk.OpMul, token.SLASH: chunk.OpDiv,
	token.LESS: chunk.OpCmpLess, token.LESS_EQUAL: chunk.OpCmpLessEqual,
	token.GREATER: chunk.OpCmpGreater, token.GREATER_EQUAL: chunk.OpCmpGreaterEqual,
	token.EQUAL_EQUAL: chunk.OpCmpEqual, token.NOT_EQUAL: chunk.OpCmpNotEqual,
	token.AND: chunk.OpCmpAnd, token.OR: chunk.OpCmpOr,
}

func (g *Generator) VisitBinary(n *ast.Binary) {
	g.generateValue(n.Left)
	g.generateValue(n.Right)
	op, ok := binaryOps[n.Op]
	if !ok {
		g.errorAt(n.Token, "unknown binary operator")
		return
	}
	g.emit(n.Token.Line, chunk.Instruction{Op: op})
}

func (g *Generator) VisitTernary(n *ast.Ternary) {
	line := n.Token.Line
	g.generateValue(n.Cond)
	jElse := g.emitPlaceholder(line, chunk.OpJmpIfFalse)
	g.generateValue(n.TrueExpr)
	jEnd := g.emitPlaceholder(line, chunk.OpJmp)
	g.patch(jElse)
	g.generateValue(n.FalseExpr)
	g.patch(jEnd)
}

func (g *Generator) VisitGroup(n *ast.Group) {
	g.generateValue(n.Inner)
}

func (g *Generator) VisitCall(n *ast.Call) {
	// Values push left to right, then PopToCall drains them one at a time:
	// the first PopToCall lifts the last-pushed argument, so by the final
	// PopToCall the first argument sits on top of the call stack, matching
	// the order ArgumentStore expects in the callee's prolog.
	for _, arg := range n.Args {
		g.generateValue(arg)
	}
	for range n.Args {
		g.emit(n.Token.Line, chunk.Instruction{Op: chunk.OpPopToCall})
	}
	g.emit(n.Token.Line, chunk.Instruction{Op: chunk.OpCallFunc, Name: n.Name})
}

func (g *Generator) writeTarget(target ast.Expr, line int) {
	if v, ok := target.(*ast.Variable); ok {
		g.emit(line, chunk.Instruction{Op: chunk.OpAssign, Name: v.Name})
		return
	}
	root, fields, ok := ast.FlattenStructCall(target)
	if !ok {
		g.errorAt(target.GetToken(), "invalid assignment target")
		return
	}
	g.emit(line, chunk.Instruction{Op: chunk.OpStructSet, Name: root, Fields: fields})
}

func (g *Generator) VisitAssign(n *ast.Assign) {
	g.generateValue(n.Value)
	g.writeTarget(n.Target, n.Token.Line)
}

var compoundOps = map[token.Kind]chunk.Op{
	token.PLUS_EQUAL: chunk.OpAdd, token.MINUS_EQUAL: chunk.OpSub,
	token.STAR_EQUAL: chunk.OpMul, token.SLASH_EQUAL: chunk.OpDiv,
}

func (g *Generator) VisitAssignByOp(n *ast.AssignByOp) {
	g.generateValue(n.Target)
	g.generateValue(n.Value)
	op, ok := compoundOps[n.Op]
	if !ok {
		g.errorAt(n.Token, "unknown compound-assignment operator")
		return
	}
	g.emit(n.Token.Line, chunk.Instruction{Op: op})
	g.writeTarget(n.Target, n.Token.Line)
}

var typeKeywordClass = map[token.Kind]value.ClassType{
	token.TYPE_INT: value.ClassInt, token.TYPE_UINT: value.ClassUint, token.TYPE_DECIMAL: value.ClassDecimal,
	token.TYPE_STRING: value.ClassStr, token.TYPE_BOOL: value.ClassBool, token.TYPE_ANY: value.ClassAny,
}

func (g *Generator) VisitTypeCall(n *ast.TypeCall) {
	g.generateValue(n.Arg)
	ctype, ok := typeKeywordClass[n.Type]
	if !ok {
		g.errorAt(n.Token, "unknown type conversion target")
		return
	}
	g.emit(n.Token.Line, chunk.Instruction{Op: chunk.OpTransformToType, Type: ctype})
}

func (g *Generator) VisitNew(n *ast.New) {
	if !g.Chunk.Functions.HasStruct(n.Name) {
		g.errorAt(n.Token, fmt.Sprintf("unknown struct '%s'", n.Name))
		return
	}
	g.emit(n.Token.Line, chunk.Instruction{Op: chunk.OpNewStruct, StructName: n.Name})
}

func (g *Generator) VisitNewCall(n *ast.NewCall) {
	if !g.Chunk.Functions.HasStruct(n.Name) {
		g.errorAt(n.Token, fmt.Sprintf("unknown struct '%s'", n.Name))
		return
	}
	template := g.Chunk.Functions.GetStruct(n.Name)
	if len(n.Args) != len(template.FieldNames) {
		g.errorAt(n.Token, fmt.Sprintf("struct '%s' takes %d field(s), got %d argument(s)", n.Name, len(template.FieldNames), len(n.Args)))
		return
	}

	for _, arg := range n.Args {
		g.generateValue(arg)
	}
	g.emit(n.Token.Line, chunk.Instruction{Op: chunk.OpNewStruct, StructName: n.Name})
	for i := len(n.Args) - 1; i >= 0; i-- {
		g.emit(n.Token.Line, chunk.Instruction{Op: chunk.OpStructSetByIndex, Index: i})
	}
}

func (g *Generator) VisitStructCall(n *ast.StructCall) {
	g.generateValue(n.Left)
	g.emit(n.Token.Line, chunk.Instruction{Op: chunk.OpStructGet, Name: n.Field})
}

func (g *Generator) VisitBlock(n *ast.Block) {
	g.liftBlock(n)
}

func (g *Generator) VisitNothing(n *ast.Nothing) {
	g.emit(n.Token.Line, chunk.Instruction{Op: chunk.OpPush, Value: value.None()})
}

// ---- statement visitors ----

func (g *Generator) VisitExprStmt(n *ast.ExprStmt) {
	if blk, ok := n.Expr.(*ast.Block); ok {
		g.generateBlockInline(blk)
		return
	}
	g.generateStmtExpr(n.Expr)
}

// generateStmtExpr emits only the code needed to preserve the side effects
// of expr used as a bare statement. Literal/Variable/Nothing leaves are
// provably side-effect free and vanish entirely; Unary, Binary, Ternary,
// Group, and StructCall recurse into their operands instead of being dropped
// wholesale, so a Call embedded anywhere inside (e.g. `sideEffect() + 1;`,
// `-f();`, `cond ? a() : b();`, `(f());`, `obj().field;`) still runs.
// Anything that ends up leaving a value on the stack is popped immediately
// after.
func (g *Generator) generateStmtExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Literal, *ast.Variable, *ast.Nothing:
		return
	case *ast.Unary:
		g.generateStmtExpr(e.Right)
	case *ast.Binary:
		g.generateStmtExpr(e.Left)
		g.generateStmtExpr(e.Right)
	case *ast.Group:
		g.generateStmtExpr(e.Inner)
	case *ast.StructCall:
		g.generateStmtExpr(e.Left)
	case *ast.Ternary:
		line := e.Token.Line
		g.generateValue(e.Cond)
		jElse := g.emitPlaceholder(line, chunk.OpJmpIfFalse)
		g.generateStmtExpr(e.TrueExpr)
		jEnd := g.emitPlaceholder(line, chunk.OpJmp)
		g.patch(jElse)
		g.generateStmtExpr(e.FalseExpr)
		g.patch(jEnd)
	case *ast.Assign, *ast.AssignByOp:
		expr.Accept(g)
	default:
		expr.Accept(g)
		g.emit(expr.GetToken().Line, chunk.Instruction{Op: chunk.OpPop})
	}
}

func (g *Generator) VisitDeclaration(n *ast.Declaration) {
	g.generateValue(n.Expr)
	g.emit(n.Token.Line, chunk.Instruction{Op: chunk.OpStore, Name: n.Name, Type: n.Type})
}

func (g *Generator) VisitInferDeclaration(n *ast.InferDeclaration) {
	g.generateValue(n.Expr)
	g.emit(n.Token.Line, chunk.Instruction{Op: chunk.OpInferStore, Name: n.Name})
}

func (g *Generator) VisitIf(n *ast.If) {
	line := n.Token.Line
	g.generateCond(n.Cond)
	jElse := g.emitPlaceholder(line, chunk.OpJmpIfFalse)
	n.Then.Accept(g)
	jEnd := g.emitPlaceholder(line, chunk.OpJmp)
	g.patch(jElse)
	if n.Else != nil {
		n.Else.Accept(g)
	}
	g.patch(jEnd)
}

func (g *Generator) VisitWhile(n *ast.While) {
	line := n.Token.Line
	loopTop := g.Chunk.Len()
	g.generateCond(n.Cond)
	jExit := g.emitPlaceholder(line, chunk.OpJmpIfFalse)

	block, ok := n.Body.(*ast.Block)
	if !ok {
		g.errorAt(n.Token, "while body must be a block")
		return
	}
	g.generateBlockInline(block)
	g.emit(line, chunk.Instruction{Op: chunk.OpJmp, Target: loopTop})
	g.patch(jExit)
}

func (g *Generator) VisitFunction(n *ast.Function) {
	line := n.Token.Line
	jOver := g.emitPlaceholder(line, chunk.OpJmp)
	offset := g.Chunk.Len()

	g.emit(line, chunk.Instruction{Op: chunk.OpStartScope})
	for i, pname := range n.ParamNames {
		g.emit(line, chunk.Instruction{Op: chunk.OpArgumentStore, Name: pname, Type: n.ParamTypes[i]})
	}

	block, ok := n.Body.(*ast.Block)
	if !ok {
		g.errorAt(n.Token, "function body must be a block")
		return
	}
	g.generateStmts(block.Stmts)

	g.emit(line, chunk.Instruction{Op: chunk.OpPush, Value: value.None()})
	g.emit(line, chunk.Instruction{Op: chunk.OpReturn})
	g.emit(line, chunk.Instruction{Op: chunk.OpEndScope})

	g.Chunk.Functions.AddFunction(n.Name, n.ReturnType, len(n.ParamNames), offset)
	g.patch(jOver)
}

func (g *Generator) VisitStruct(n *ast.Struct) {
	template := value.NewStructInstance(n.Name, n.Fields)
	g.Chunk.Functions.AddStruct(template)
}

func (g *Generator) VisitReturn(n *ast.Return) {
	if n.Value == nil {
		g.emit(n.Token.Line, chunk.Instruction{Op: chunk.OpPush, Value: value.None()})
	} else {
		g.generateValue(n.Value)
	}
	g.emit(n.Token.Line, chunk.Instruction{Op: chunk.OpReturn})
}

func (g *Generator) VisitQuit(n *ast.Quit) {
	g.emit(n.Token.Line, chunk.Instruction{Op: chunk.OpEndScript})
}

// VisitImport resolves an import path relative to the currently-generating
// file, macro-expands and parses it, and generates its statements directly
// into the current chunk. Each resolved path generates at most once.
func (g *Generator) VisitImport(n *ast.Import) {
	resolved := resolveImportPath(g.basePath, n.Path)
	if g.visited[resolved] {
		return
	}
	g.visited[resolved] = true

	if g.ReadFile == nil || g.ExpandMacros == nil {
		g.errorAt(n.Token, "imports are not supported in this generation context")
		return
	}

	src, err := g.ReadFile(resolved)
	if err != nil {
		g.errorAt(n.Token, fmt.Sprintf("cannot import '%s': %v", n.Path, err))
		return
	}

	expanded, err := g.ExpandMacros(src)
	if err != nil {
		g.errorAt(n.Token, fmt.Sprintf("macro expansion failed for '%s': %v", n.Path, err))
		return
	}

	p := parser.New(expanded)
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
	g.Errors = append(g.Errors, p.Errors...)

	savedBase := g.basePath
	g.basePath = resolved
	g.generateStmts(stmts)
	g.basePath = savedBase
}

// resolveImportPath resolves literal relative to the directory of
// currentFile: split currentFile on '/', drop the trailing filename
// segment, skip any segment containing '..', and join the remainder with
// literal.
func resolveImportPath(currentFile, literal string) string {
	parts := strings.Split(currentFile, "/")
	var dir []string
	for i, p := range parts {
		if i == len(parts)-1 {
			break
		}
		if strings.Contains(p, "..") {
			continue
		}
		dir = append(dir, p)
	}
	return path.Join(strings.Join(dir, "/"), literal)
}
