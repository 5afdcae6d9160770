package macro

import (
	"fmt"
	"strings"
)

type nodeKind uint8

const (
	nText nodeKind = iota
	nBlock
	nCall
)

// node is one element of a macro-level AST: a literal token, a brace-nested
// group, or a call site. Call arguments are kept as raw token runs (not
// further parsed) so a reference to an enclosing macro's own $param can be
// substituted before the callee's parameters are bound.
type node struct {
	kind     nodeKind
	text     string
	children []node
	callName string
	args     [][]miniToken
}

// macroDef is one `defmacro NAME($p0, $p1, …) { body }` binding.
type macroDef struct {
	name   string
	params []string
	body   []node
}

type parseError struct{ message string }

func (e *parseError) Error() string { return e.message }

type parser struct {
	toks []miniToken
	pos  int
	defs map[string]macroDef
}

func (p *parser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() miniToken {
	if p.atEnd() {
		return miniToken{kind: tText, text: ""}
	}
	return p.toks[p.pos]
}

func (p *parser) next() miniToken {
	t := p.peek()
	if !p.atEnd() {
		p.pos++
	}
	return t
}

func (p *parser) skipBlankText() {
	for !p.atEnd() && p.peek().kind == tText && isBlank(p.peek().text) {
		p.pos++
	}
}

// parseSequence parses a run of nodes. When inBlock is true it stops at
// (and consumes) a matching tRBrace; at the top level it runs to EOF.
func (p *parser) parseSequence(inBlock bool) ([]node, error) {
	var nodes []node
	for !p.atEnd() {
		tok := p.peek()

		if inBlock && tok.kind == tRBrace {
			p.next()
			return nodes, nil
		}

		switch tok.kind {
		case tDefMacro:
			p.next()
			if err := p.parseDefMacro(); err != nil {
				return nil, err
			}
		case tCallIdent:
			p.next()
			n, err := p.parseCall(tok.text)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		case tLBrace:
			p.next()
			children, err := p.parseSequence(true)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node{kind: nBlock, children: children})
		default:
			p.next()
			nodes = append(nodes, node{kind: nText, text: tok.text})
		}
	}

	if inBlock {
		return nil, &parseError{"unterminated macro block: expected '}'"}
	}
	return nodes, nil
}

func (p *parser) parseDefMacro() error {
	p.skipBlankText()
	if p.atEnd() || p.peek().kind != tText || isBlank(p.peek().text) {
		return &parseError{"expected a macro name after 'defmacro'"}
	}
	name := p.next().text

	p.skipBlankText()
	if p.atEnd() || p.peek().kind != tLParen {
		return &parseError{fmt.Sprintf("expected '(' after macro name '%s'", name)}
	}
	p.next()

	var params []string
	p.skipBlankText()
	if p.peek().kind != tRParen {
		for {
			p.skipBlankText()
			if p.atEnd() || p.peek().kind != tText || !strings.HasPrefix(p.peek().text, "$") {
				return &parseError{fmt.Sprintf("expected a '$'-prefixed parameter in macro '%s'", name)}
			}
			params = append(params, p.next().text)
			p.skipBlankText()
			if p.peek().kind != tComma {
				break
			}
			p.next()
		}
	}
	p.skipBlankText()
	if p.atEnd() || p.peek().kind != tRParen {
		return &parseError{fmt.Sprintf("expected ')' after parameters in macro '%s'", name)}
	}
	p.next()

	p.skipBlankText()
	if p.atEnd() || p.peek().kind != tLBrace {
		return &parseError{fmt.Sprintf("expected '{' to begin body of macro '%s'", name)}
	}
	p.next()

	body, err := p.parseSequence(true)
	if err != nil {
		return err
	}

	p.defs[name] = macroDef{name: name, params: params, body: body}
	return nil
}

// parseCall parses the argument list following a call identifier (already
// consumed). Per the macro tokenizer's invariants, an argument is a run of
// literal tokens: whitespace, newlines, and arbitrary text, but not commas —
// commas always split arguments.
func (p *parser) parseCall(callIdent string) (node, error) {
	p.skipBlankText()
	if p.atEnd() || p.peek().kind != tLParen {
		return node{}, &parseError{fmt.Sprintf("expected '(' after macro call '%s'", callIdent)}
	}
	p.next()

	var args [][]miniToken
	if p.peek().kind != tRParen {
		for {
			var arg []miniToken
			for !p.atEnd() && p.peek().kind == tText {
				arg = append(arg, p.next())
			}
			args = append(args, arg)
			if p.peek().kind != tComma {
				break
			}
			p.next()
			p.skipBlankText()
		}
	}

	if p.atEnd() || p.peek().kind != tRParen {
		return node{}, &parseError{fmt.Sprintf("expected ')' to close call '%s'", callIdent)}
	}
	p.next()

	if !p.atEnd() && p.peek().kind == tSemicolon {
		p.next()
	}

	return node{kind: nCall, callName: callIdent, args: args}, nil
}

// renderTokens substitutes any token whose text is a bound parameter name.
func renderTokens(toks []miniToken, bindings map[string]string) string {
	var sb strings.Builder
	for _, t := range toks {
		if v, ok := bindings[t.text]; ok {
			sb.WriteString(v)
		} else {
			sb.WriteString(t.text)
		}
	}
	return sb.String()
}

func renderNodes(nodes []node, bindings map[string]string, defs map[string]macroDef) string {
	var sb strings.Builder
	for _, n := range nodes {
		renderNode(&sb, n, bindings, defs)
	}
	return sb.String()
}

func renderNode(sb *strings.Builder, n node, bindings map[string]string, defs map[string]macroDef) {
	switch n.kind {
	case nText:
		if v, ok := bindings[n.text]; ok {
			sb.WriteString(v)
		} else {
			sb.WriteString(n.text)
		}

	case nBlock:
		sb.WriteString("{")
		sb.WriteString(renderNodes(n.children, bindings, defs))
		sb.WriteString("}")

	case nCall:
		name := strings.TrimSuffix(n.callName, "!")
		def, ok := defs[name]
		if !ok {
			// Unknown macro names expand to empty.
			return
		}

		newBindings := make(map[string]string, len(def.params))
		for i, param := range def.params {
			if i < len(n.args) {
				newBindings[param] = renderTokens(n.args[i], bindings)
			} else {
				newBindings[param] = ""
			}
		}

		sb.WriteString("{")
		sb.WriteString(renderNodes(def.body, newBindings, defs))
		sb.WriteString("}")
	}
}

// Expand runs the full macro pre-pass over source: tokenize, collect
// defmacro definitions and call sites, then substitute every call site with
// its expanded body. The result is plain Copper source text ready for the
// lexer.
func Expand(source string) (string, error) {
	toks := tokenize(source)
	p := &parser{toks: toks, defs: map[string]macroDef{}}

	top, err := p.parseSequence(false)
	if err != nil {
		return "", err
	}

	return renderNodes(top, map[string]string{}, p.defs), nil
}
