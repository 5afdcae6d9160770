package lexer

import (
	"testing"

	"github.com/copperlang/copper/internal/token"
	"github.com/stretchr/testify/assert"
)

func kinds(src string) []token.Kind {
	l := New(src)
	var out []token.Kind
	for {
		tok := l.Next()
		out = append(out, tok.Kind)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

func TestLexerPunctuationAndOperators(t *testing.T) {
	got := kinds(`( ) { } [ ] , . ; : = == ! != < <= > >= + += - -= * *= / /= := && ||`)
	assert.Equal(t, []token.Kind{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE, token.LBRACKET, token.RBRACKET,
		token.COMMA, token.DOT, token.SEMICOLON, token.COLON,
		token.EQUAL, token.EQUAL_EQUAL, token.NOT, token.NOT_EQUAL,
		token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL,
		token.PLUS, token.PLUS_EQUAL, token.MINUS, token.MINUS_EQUAL,
		token.STAR, token.STAR_EQUAL, token.SLASH, token.SLASH_EQUAL,
		token.COLON_EQUAL, token.AND, token.OR,
		token.EOF,
	}, got)
}

func TestLexerNumbers(t *testing.T) {
	l := New("42 3.14 7")
	tok := l.Next()
	assert.Equal(t, token.INT, tok.Kind)
	assert.Equal(t, "42", tok.Lexeme)

	tok = l.Next()
	assert.Equal(t, token.DECIMAL, tok.Kind)
	assert.Equal(t, "3.14", tok.Lexeme)

	tok = l.Next()
	assert.Equal(t, token.INT, tok.Kind)
	assert.Equal(t, "7", tok.Lexeme)
}

func TestLexerStringEscapes(t *testing.T) {
	l := New(`"hi\nthere\t\"world\""`)
	tok := l.Next()
	assert.Equal(t, token.STR, tok.Kind)
	assert.Equal(t, "hi\nthere\t\"world\"", tok.Lexeme)
}

func TestLexerUnterminatedString(t *testing.T) {
	l := New(`"no end`)
	tok := l.Next()
	assert.Equal(t, token.ERROR, tok.Kind)
}

func TestLexerKeywordsAndIdentifiers(t *testing.T) {
	got := kinds("if else for while func return var and or not true false int uint decimal string bool any foo_bar")
	want := []token.Kind{
		token.IF, token.ELSE, token.FOR, token.WHILE, token.FUNC, token.RETURN, token.VAR,
		token.AND_KW, token.OR_KW, token.NOT_KW, token.TRUE, token.FALSE,
		token.TYPE_INT, token.TYPE_UINT, token.TYPE_DECIMAL, token.TYPE_STRING, token.TYPE_BOOL, token.TYPE_ANY,
		token.IDENT, token.EOF,
	}
	assert.Equal(t, want, got)
}

func TestLexerLineComments(t *testing.T) {
	l := New("var x = 1; // trailing comment\nvar y = 2;")
	var lines []int
	for {
		tok := l.Next()
		if tok.Kind == token.EOF {
			break
		}
		lines = append(lines, tok.Line)
	}
	assert.Contains(t, lines, 2)
}

func TestLexerLineTracking(t *testing.T) {
	l := New("1\n2\n3")
	tok := l.Next()
	assert.Equal(t, 1, tok.Line)
	tok = l.Next()
	assert.Equal(t, 2, tok.Line)
	tok = l.Next()
	assert.Equal(t, 3, tok.Line)
}
