// Package macro implements the textual, pre-lex macro expansion pass:
// defmacro definitions and NAME!(args) call sites are expanded into plain
// source text before the lexer ever sees it.
package macro

import "strings"

type tokenKind uint8

const (
	tText tokenKind = iota
	tLParen
	tRParen
	tLBrace
	tRBrace
	tComma
	tSemicolon
	tCallIdent // identifier immediately followed by '!', e.g. "greet!"
	tDefMacro
)

type miniToken struct {
	kind tokenKind
	text string
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch == '$' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentTail(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r'
}

// tokenize scans source into a flat stream of miniTokens. Whitespace,
// newlines, and comments are preserved as literal tText tokens so the
// final expansion reproduces the surrounding formatting verbatim.
func tokenize(source string) []miniToken {
	var toks []miniToken
	i, n := 0, len(source)

	for i < n {
		ch := source[i]

		switch {
		case isSpace(ch):
			start := i
			for i < n && isSpace(source[i]) {
				i++
			}
			toks = append(toks, miniToken{tText, source[start:i]})

		case ch == '\n':
			toks = append(toks, miniToken{tText, "\n"})
			i++

		case ch == '/' && i+1 < n && source[i+1] == '/':
			start := i
			for i < n && source[i] != '\n' {
				i++
			}
			toks = append(toks, miniToken{tText, source[start:i]})

		case ch == '"':
			start := i
			i++
			for i < n && source[i] != '"' {
				i++
			}
			if i < n {
				i++
			}
			toks = append(toks, miniToken{tText, source[start:i]})

		case ch == '(':
			toks = append(toks, miniToken{tLParen, "("})
			i++
		case ch == ')':
			toks = append(toks, miniToken{tRParen, ")"})
			i++
		case ch == '{':
			toks = append(toks, miniToken{tLBrace, "{"})
			i++
		case ch == '}':
			toks = append(toks, miniToken{tRBrace, "}"})
			i++
		case ch == ',':
			toks = append(toks, miniToken{tComma, ","})
			i++
		case ch == ';':
			toks = append(toks, miniToken{tSemicolon, ";"})
			i++

		case isIdentStart(ch):
			start := i
			isParam := ch == '$'
			i++
			for i < n && isIdentTail(source[i]) {
				i++
			}
			ident := source[start:i]

			switch {
			case ident == "defmacro":
				toks = append(toks, miniToken{tDefMacro, ident})
			case isParam:
				toks = append(toks, miniToken{tText, ident})
			case i < n && source[i] == '!':
				i++
				toks = append(toks, miniToken{tCallIdent, source[start:i]})
			default:
				toks = append(toks, miniToken{tText, ident})
			}

		case isDigit(ch):
			start := i
			for i < n && isDigit(source[i]) {
				i++
			}
			if i < n && source[i] == '.' && i+1 < n && isDigit(source[i+1]) {
				i++
				for i < n && isDigit(source[i]) {
					i++
				}
			}
			toks = append(toks, miniToken{tText, source[start:i]})

		default:
			toks = append(toks, miniToken{tText, string(ch)})
			i++
		}
	}

	return toks
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
