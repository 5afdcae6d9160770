// Package ast defines Copper's statement and expression node types and the
// Visitor interface code generation dispatches through.
package ast

import (
	"github.com/copperlang/copper/internal/token"
	"github.com/copperlang/copper/internal/value"
)

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	Accept(v Visitor)
}

// Expr is a Node that represents an expression.
type Expr interface {
	Node
	expressionNode()
	GetToken() token.Token
}

// Stmt is a Node that represents a statement.
type Stmt interface {
	Node
	statementNode()
	GetToken() token.Token
}

// Visitor is implemented by internal/codegen.Generator; each AST node type
// double-dispatches to its matching Visit method.
type Visitor interface {
	VisitLiteral(n *Literal)
	VisitVariable(n *Variable)
	VisitUnary(n *Unary)
	VisitBinary(n *Binary)
	VisitTernary(n *Ternary)
	VisitGroup(n *Group)
	VisitCall(n *Call)
	VisitAssign(n *Assign)
	VisitAssignByOp(n *AssignByOp)
	VisitTypeCall(n *TypeCall)
	VisitNew(n *New)
	VisitNewCall(n *NewCall)
	VisitStructCall(n *StructCall)
	VisitBlock(n *Block)
	VisitNothing(n *Nothing)

	VisitExprStmt(n *ExprStmt)
	VisitDeclaration(n *Declaration)
	VisitInferDeclaration(n *InferDeclaration)
	VisitIf(n *If)
	VisitWhile(n *While)
	VisitFunction(n *Function)
	VisitStruct(n *Struct)
	VisitReturn(n *Return)
	VisitQuit(n *Quit)
	VisitImport(n *Import)
}

// ---- Expressions ----

type Literal struct {
	Token token.Token
	Value value.Value
}

func (n *Literal) Accept(v Visitor)      { v.VisitLiteral(n) }
func (n *Literal) expressionNode()       {}
func (n *Literal) TokenLiteral() string  { return n.Token.Lexeme }
func (n *Literal) GetToken() token.Token { return n.Token }

type Variable struct {
	Token token.Token
	Name  string
}

func (n *Variable) Accept(v Visitor)      { v.VisitVariable(n) }
func (n *Variable) expressionNode()       {}
func (n *Variable) TokenLiteral() string  { return n.Token.Lexeme }
func (n *Variable) GetToken() token.Token { return n.Token }

type Unary struct {
	Token token.Token
	Op    token.Kind
	Right Expr
}

func (n *Unary) Accept(v Visitor)      { v.VisitUnary(n) }
func (n *Unary) expressionNode()       {}
func (n *Unary) TokenLiteral() string  { return n.Token.Lexeme }
func (n *Unary) GetToken() token.Token { return n.Token }

type Binary struct {
	Token token.Token
	Left  Expr
	Op    token.Kind
	Right Expr
}

func (n *Binary) Accept(v Visitor)      { v.VisitBinary(n) }
func (n *Binary) expressionNode()       {}
func (n *Binary) TokenLiteral() string  { return n.Token.Lexeme }
func (n *Binary) GetToken() token.Token { return n.Token }

type Ternary struct {
	Token     token.Token
	Cond      Expr
	TrueExpr  Expr
	FalseExpr Expr
}

func (n *Ternary) Accept(v Visitor)      { v.VisitTernary(n) }
func (n *Ternary) expressionNode()       {}
func (n *Ternary) TokenLiteral() string  { return n.Token.Lexeme }
func (n *Ternary) GetToken() token.Token { return n.Token }

type Group struct {
	Token token.Token
	Inner Expr
}

func (n *Group) Accept(v Visitor)      { v.VisitGroup(n) }
func (n *Group) expressionNode()       {}
func (n *Group) TokenLiteral() string  { return n.Token.Lexeme }
func (n *Group) GetToken() token.Token { return n.Token }

type Call struct {
	Token token.Token
	Name  string
	Args  []Expr
}

func (n *Call) Accept(v Visitor)      { v.VisitCall(n) }
func (n *Call) expressionNode()       {}
func (n *Call) TokenLiteral() string  { return n.Token.Lexeme }
func (n *Call) GetToken() token.Token { return n.Token }

// Assign's Target is either a *Variable or a *StructCall chain; the
// generator flattens a StructCall chain into a root name plus a field path.
type Assign struct {
	Token  token.Token
	Target Expr
	Value  Expr
}

func (n *Assign) Accept(v Visitor)      { v.VisitAssign(n) }
func (n *Assign) expressionNode()       {}
func (n *Assign) TokenLiteral() string  { return n.Token.Lexeme }
func (n *Assign) GetToken() token.Token { return n.Token }

type AssignByOp struct {
	Token  token.Token
	Target Expr
	Op     token.Kind
	Value  Expr
}

func (n *AssignByOp) Accept(v Visitor)      { v.VisitAssignByOp(n) }
func (n *AssignByOp) expressionNode()       {}
func (n *AssignByOp) TokenLiteral() string  { return n.Token.Lexeme }
func (n *AssignByOp) GetToken() token.Token { return n.Token }

// TypeCall is a type name used as a callee, e.g. int(x).
type TypeCall struct {
	Token token.Token
	Type  token.Kind
	Arg   Expr
}

func (n *TypeCall) Accept(v Visitor)      { v.VisitTypeCall(n) }
func (n *TypeCall) expressionNode()       {}
func (n *TypeCall) TokenLiteral() string  { return n.Token.Lexeme }
func (n *TypeCall) GetToken() token.Token { return n.Token }

// New is a bare "new T" with no constructor arguments.
type New struct {
	Token token.Token
	Name  string
}

func (n *New) Accept(v Visitor)      { v.VisitNew(n) }
func (n *New) expressionNode()       {}
func (n *New) TokenLiteral() string  { return n.Token.Lexeme }
func (n *New) GetToken() token.Token { return n.Token }

// NewCall is "new T(args...)".
type NewCall struct {
	Token token.Token
	Name  string
	Args  []Expr
}

func (n *NewCall) Accept(v Visitor)      { v.VisitNewCall(n) }
func (n *NewCall) expressionNode()       {}
func (n *NewCall) TokenLiteral() string  { return n.Token.Lexeme }
func (n *NewCall) GetToken() token.Token { return n.Token }

// StructCall is a dot-access; chains are left-leaning (a.b.c is
// StructCall{StructCall{a,b}, c}).
type StructCall struct {
	Token token.Token
	Left  Expr
	Field string
}

func (n *StructCall) Accept(v Visitor)      { v.VisitStructCall(n) }
func (n *StructCall) expressionNode()       {}
func (n *StructCall) TokenLiteral() string  { return n.Token.Lexeme }
func (n *StructCall) GetToken() token.Token { return n.Token }

// FlattenStructCall walks a left-leaning StructCall chain and returns the
// root variable name and the ordered field path. ok is false if the chain's
// root isn't a plain Variable.
func FlattenStructCall(e Expr) (root string, fields []string, ok bool) {
	var walk func(Expr) bool
	walk = func(e Expr) bool {
		switch n := e.(type) {
		case *Variable:
			root = n.Name
			return true
		case *StructCall:
			if !walk(n.Left) {
				return false
			}
			fields = append(fields, n.Field)
			return true
		default:
			return false
		}
	}
	ok = walk(e)
	return
}

type Block struct {
	Token token.Token
	Stmts []Stmt
}

func (n *Block) Accept(v Visitor)      { v.VisitBlock(n) }
func (n *Block) expressionNode()       {}
func (n *Block) TokenLiteral() string  { return n.Token.Lexeme }
func (n *Block) GetToken() token.Token { return n.Token }

// Nothing is a placeholder expression for omitted for-loop clauses.
type Nothing struct {
	Token token.Token
}

func (n *Nothing) Accept(v Visitor)      { v.VisitNothing(n) }
func (n *Nothing) expressionNode()       {}
func (n *Nothing) TokenLiteral() string  { return n.Token.Lexeme }
func (n *Nothing) GetToken() token.Token { return n.Token }

// ---- Statements ----

// ExprStmt is a semicolon-terminated expression statement. Tail is set when
// this is the last statement of a block and was written without a trailing
// semicolon — its value becomes the block's result when the block is lifted
// into a value-position anonymous function.
type ExprStmt struct {
	Token token.Token
	Expr  Expr
	Tail  bool
}

func (n *ExprStmt) Accept(v Visitor)      { v.VisitExprStmt(n) }
func (n *ExprStmt) statementNode()        {}
func (n *ExprStmt) TokenLiteral() string  { return n.Token.Lexeme }
func (n *ExprStmt) GetToken() token.Token { return n.Token }

type Declaration struct {
	Token token.Token
	Name  string
	Type  value.ClassType
	Expr  Expr
}

func (n *Declaration) Accept(v Visitor)      { v.VisitDeclaration(n) }
func (n *Declaration) statementNode()        {}
func (n *Declaration) TokenLiteral() string  { return n.Token.Lexeme }
func (n *Declaration) GetToken() token.Token { return n.Token }

type InferDeclaration struct {
	Token token.Token
	Name  string
	Expr  Expr
}

func (n *InferDeclaration) Accept(v Visitor)      { v.VisitInferDeclaration(n) }
func (n *InferDeclaration) statementNode()        {}
func (n *InferDeclaration) TokenLiteral() string  { return n.Token.Lexeme }
func (n *InferDeclaration) GetToken() token.Token { return n.Token }

type If struct {
	Token token.Token
	Cond  Expr
	Then  Stmt
	Else  Stmt // nil if absent
}

func (n *If) Accept(v Visitor)      { v.VisitIf(n) }
func (n *If) statementNode()        {}
func (n *If) TokenLiteral() string  { return n.Token.Lexeme }
func (n *If) GetToken() token.Token { return n.Token }

type While struct {
	Token token.Token
	Cond  Expr
	Body  Expr // always a *Block
}

func (n *While) Accept(v Visitor)      { v.VisitWhile(n) }
func (n *While) statementNode()        {}
func (n *While) TokenLiteral() string  { return n.Token.Lexeme }
func (n *While) GetToken() token.Token { return n.Token }

type Function struct {
	Token      token.Token
	Name       string
	ReturnType value.ClassType
	ParamNames []string
	ParamTypes []value.ClassType
	Body       Expr // always a *Block
}

func (n *Function) Accept(v Visitor)      { v.VisitFunction(n) }
func (n *Function) statementNode()        {}
func (n *Function) TokenLiteral() string  { return n.Token.Lexeme }
func (n *Function) GetToken() token.Token { return n.Token }

type Struct struct {
	Token  token.Token
	Name   string
	Fields []string
}

func (n *Struct) Accept(v Visitor)      { v.VisitStruct(n) }
func (n *Struct) statementNode()        {}
func (n *Struct) TokenLiteral() string  { return n.Token.Lexeme }
func (n *Struct) GetToken() token.Token { return n.Token }

type Return struct {
	Token token.Token
	Value Expr // nil if bare "return;"
}

func (n *Return) Accept(v Visitor)      { v.VisitReturn(n) }
func (n *Return) statementNode()        {}
func (n *Return) TokenLiteral() string  { return n.Token.Lexeme }
func (n *Return) GetToken() token.Token { return n.Token }

type Quit struct {
	Token token.Token
}

func (n *Quit) Accept(v Visitor)      { v.VisitQuit(n) }
func (n *Quit) statementNode()        {}
func (n *Quit) TokenLiteral() string  { return n.Token.Lexeme }
func (n *Quit) GetToken() token.Token { return n.Token }

type Import struct {
	Token token.Token
	Path  string
}

func (n *Import) Accept(v Visitor)      { v.VisitImport(n) }
func (n *Import) statementNode()        {}
func (n *Import) TokenLiteral() string  { return n.Token.Lexeme }
func (n *Import) GetToken() token.Token { return n.Token }
