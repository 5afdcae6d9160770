// Package token defines the lexical tokens produced by internal/lexer and
// consumed by internal/parser.
package token

// Kind identifies a token's lexical class.
type Kind uint8

const (
	EOF Kind = iota
	ERROR

	// Literals
	IDENT
	INT
	UINT
	DECIMAL
	STR
	TRUE
	FALSE

	// Punctuation
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	COMMA
	DOT
	SEMICOLON
	COLON
	QUESTION

	// Operators
	EQUAL
	EQUAL_EQUAL
	NOT
	NOT_EQUAL
	LESS
	LESS_EQUAL
	GREATER
	GREATER_EQUAL
	PLUS
	PLUS_EQUAL
	MINUS
	MINUS_EQUAL
	STAR
	STAR_EQUAL
	SLASH
	SLASH_EQUAL
	COLON_EQUAL
	AND
	OR

	// Keywords
	IF
	ELSE
	FOR
	WHILE
	FUNC
	RETURN
	VAR
	AND_KW
	OR_KW
	NOT_KW
	NEW
	STRUCT
	IMPORT
	QUIT

	// Type keywords
	TYPE_INT
	TYPE_UINT
	TYPE_DECIMAL
	TYPE_STRING
	TYPE_BOOL
	TYPE_ANY
)

var names = map[Kind]string{
	EOF: "EOF", ERROR: "ERROR",
	IDENT: "identifier", INT: "int literal", UINT: "uint literal", DECIMAL: "decimal literal", STR: "string literal",
	TRUE: "true", FALSE: "false",
	LPAREN: "(", RPAREN: ")", LBRACE: "{", RBRACE: "}", LBRACKET: "[", RBRACKET: "]",
	COMMA: ",", DOT: ".", SEMICOLON: ";", COLON: ":", QUESTION: "?",
	EQUAL: "=", EQUAL_EQUAL: "==", NOT: "!", NOT_EQUAL: "!=",
	LESS: "<", LESS_EQUAL: "<=", GREATER: ">", GREATER_EQUAL: ">=",
	PLUS: "+", PLUS_EQUAL: "+=", MINUS: "-", MINUS_EQUAL: "-=",
	STAR: "*", STAR_EQUAL: "*=", SLASH: "/", SLASH_EQUAL: "/=",
	COLON_EQUAL: ":=", AND: "&&", OR: "||",
	IF: "if", ELSE: "else", FOR: "for", WHILE: "while", FUNC: "func", RETURN: "return", VAR: "var",
	AND_KW: "and", OR_KW: "or", NOT_KW: "not", NEW: "new", STRUCT: "struct", IMPORT: "import", QUIT: "quit",
	TYPE_INT: "int", TYPE_UINT: "uint", TYPE_DECIMAL: "decimal", TYPE_STRING: "string", TYPE_BOOL: "bool", TYPE_ANY: "any",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "unknown"
}

// Keywords maps reserved words to their token kind. Type-name keywords
// (int, uint, decimal, string, bool, any) double as ClassType annotations.
var Keywords = map[string]Kind{
	"if": IF, "else": ELSE, "for": FOR, "while": WHILE,
	"func": FUNC, "return": RETURN, "var": VAR,
	"and": AND_KW, "or": OR_KW, "not": NOT_KW,
	"true": TRUE, "false": FALSE,
	"new": NEW, "struct": STRUCT, "import": IMPORT, "quit": QUIT,
	"int": TYPE_INT, "uint": TYPE_UINT, "decimal": TYPE_DECIMAL,
	"string": TYPE_STRING, "bool": TYPE_BOOL, "any": TYPE_ANY,
}

// Token is one lexeme with its source position.
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
	Column int
}

func (t Token) String() string {
	return t.Lexeme
}
