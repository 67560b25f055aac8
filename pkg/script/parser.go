// Package script parses the supported script subset into syntax trees.
//
// The grammar covers what the importer understands plus the surrounding
// syntax needed to write it:
//
//	def name(a, b) ... end
//	return expr
//	if cond then ... else ... end
//	integer, float and "string" literals, nil, identifiers
//	( ... ) groups, infix + - * /, unary minus
//	recv.method(args), method(args)
//
// Comments start with # and run to the end of the line. Statements may be
// separated by newlines, semicolons or nothing at all.
package script

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/matzehuels/wzrd/pkg/core/ast"
)

// Error is a syntax error with its source position.
type Error struct {
	Pos scanner.Position
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// Parse parses src. A single top-level statement is returned as is; several
// are wrapped in an ast.Begin. Empty input yields a nil node.
func Parse(src string) (ast.Node, error) {
	p := &parser{}
	p.s.Init(strings.NewReader(src))
	p.s.Filename = "script"
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats | scanner.ScanStrings
	p.s.Whitespace = 1<<'\t' | 1<<' ' | 1<<'\r'
	p.s.Error = func(s *scanner.Scanner, msg string) {
		p.fail(s.Position, msg)
	}
	p.next()

	body := p.statements()
	if p.err == nil && p.tok != scanner.EOF {
		p.fail(p.pos, fmt.Sprintf("unexpected %s", p.describe()))
	}
	if p.err != nil {
		return nil, p.err
	}
	return body, nil
}

type parser struct {
	s   scanner.Scanner
	tok rune
	lit string
	pos scanner.Position
	err *Error
}

func (p *parser) fail(pos scanner.Position, msg string) {
	if p.err == nil {
		p.err = &Error{Pos: pos, Msg: msg}
	}
}

// next advances to the next significant token, skipping comments.
func (p *parser) next() {
	for {
		p.tok = p.s.Scan()
		p.pos = p.s.Position
		p.lit = p.s.TokenText()
		if p.tok != '#' {
			return
		}
		for ch := p.s.Peek(); ch != '\n' && ch != scanner.EOF; ch = p.s.Peek() {
			p.s.Next()
		}
	}
}

func (p *parser) skipNewlines() {
	for p.tok == '\n' {
		p.next()
	}
}

func (p *parser) skipSeparators() {
	for p.tok == '\n' || p.tok == ';' {
		p.next()
	}
}

func (p *parser) isKeyword(kw string) bool {
	return p.tok == scanner.Ident && p.lit == kw
}

func (p *parser) expect(tok rune, what string) {
	if p.tok != tok {
		p.fail(p.pos, fmt.Sprintf("expected %s, found %s", what, p.describe()))
		return
	}
	p.next()
}

func (p *parser) expectKeyword(kw string) {
	if !p.isKeyword(kw) {
		p.fail(p.pos, fmt.Sprintf("expected %q, found %s", kw, p.describe()))
		return
	}
	p.next()
}

func (p *parser) describe() string {
	switch p.tok {
	case scanner.EOF:
		return "end of input"
	case '\n':
		return "newline"
	}
	return fmt.Sprintf("%q", p.lit)
}

// statements parses until EOF, ")" or a block keyword.
func (p *parser) statements() ast.Node {
	var body []ast.Node
	for p.err == nil {
		p.skipSeparators()
		if p.tok == scanner.EOF || p.tok == ')' ||
			p.isKeyword("end") || p.isKeyword("else") {
			break
		}
		body = append(body, p.statement())
	}
	switch len(body) {
	case 0:
		return nil
	case 1:
		return body[0]
	}
	return &ast.Begin{Body: body}
}

func (p *parser) statement() ast.Node {
	switch {
	case p.isKeyword("def"):
		return p.def()
	case p.isKeyword("return"):
		p.next()
		ret := &ast.Return{}
		if p.tok == '\n' || p.tok == ';' || p.tok == scanner.EOF || p.isKeyword("end") {
			return ret
		}
		ret.Args = append(ret.Args, p.expr())
		for p.tok == ',' && p.err == nil {
			p.next()
			ret.Args = append(ret.Args, p.expr())
		}
		return ret
	}
	return p.expr()
}

func (p *parser) def() ast.Node {
	p.next()
	if p.tok != scanner.Ident {
		p.fail(p.pos, fmt.Sprintf("expected function name, found %s", p.describe()))
		return nil
	}
	d := &ast.Def{Name: p.lit}
	p.next()
	if p.tok == '(' {
		p.next()
		for p.tok != ')' && p.err == nil {
			if p.tok != scanner.Ident {
				p.fail(p.pos, fmt.Sprintf("expected parameter name, found %s", p.describe()))
				return nil
			}
			d.Args = append(d.Args, ast.Arg{Name: p.lit})
			p.next()
			if p.tok == ',' {
				p.next()
			}
		}
		p.expect(')', `")"`)
	}
	d.Body = p.statements()
	p.expectKeyword("end")
	return d
}

func (p *parser) expr() ast.Node {
	if p.isKeyword("if") {
		return p.ifExpr()
	}
	return p.binary(0)
}

func (p *parser) ifExpr() ast.Node {
	p.next()
	n := &ast.If{Cond: p.expr()}
	if p.isKeyword("then") {
		p.next()
	}
	n.Then = p.statements()
	if p.isKeyword("else") {
		p.next()
		n.Else = p.statements()
	}
	p.expectKeyword("end")
	return n
}

var precedence = map[rune]int{'+': 1, '-': 1, '*': 2, '/': 2}

// binary parses infix operators by precedence climbing. Operators become
// sends on the left operand.
func (p *parser) binary(minPrec int) ast.Node {
	left := p.unary()
	for p.err == nil {
		prec, ok := precedence[p.tok]
		if !ok || prec <= minPrec {
			return left
		}
		op := string(p.tok)
		p.next()
		p.skipNewlines()
		right := p.binary(prec)
		left = &ast.Send{Receiver: left, Method: op, Args: []ast.Node{right}}
	}
	return left
}

func (p *parser) unary() ast.Node {
	if p.tok != '-' {
		return p.postfix()
	}
	p.next()
	switch p.tok {
	case scanner.Int:
		n := &ast.Int{Value: "-" + p.lit}
		p.next()
		return p.calls(n)
	case scanner.Float:
		n := &ast.Float{Value: "-" + p.lit}
		p.next()
		return p.calls(n)
	}
	return &ast.Send{Receiver: p.unary(), Method: "-@"}
}

func (p *parser) postfix() ast.Node {
	return p.calls(p.primary())
}

// calls parses a chain of .method(args) suffixes.
func (p *parser) calls(recv ast.Node) ast.Node {
	for p.tok == '.' && p.err == nil {
		p.next()
		if p.tok != scanner.Ident {
			p.fail(p.pos, fmt.Sprintf("expected method name, found %s", p.describe()))
			return recv
		}
		send := &ast.Send{Receiver: recv, Method: p.lit}
		p.next()
		if p.tok == '(' {
			send.Args = p.args()
		}
		recv = send
	}
	return recv
}

func (p *parser) args() []ast.Node {
	p.next()
	p.skipNewlines()
	var args []ast.Node
	for p.tok != ')' && p.err == nil {
		args = append(args, p.expr())
		p.skipNewlines()
		if p.tok != ',' {
			break
		}
		p.next()
		p.skipNewlines()
	}
	p.expect(')', `")"`)
	return args
}

func (p *parser) primary() ast.Node {
	switch p.tok {
	case scanner.Int:
		n := &ast.Int{Value: p.lit}
		p.next()
		return n
	case scanner.Float:
		n := &ast.Float{Value: p.lit}
		p.next()
		return n
	case scanner.String:
		n := &ast.Str{Value: unquote(p.lit)}
		p.next()
		return n
	case '(':
		p.next()
		body := p.statements()
		p.expect(')', `")"`)
		return &ast.Begin{Body: flatten(body)}
	case scanner.Ident:
		name := p.lit
		p.next()
		switch name {
		case "nil":
			return &ast.Nil{}
		case "end", "else", "then", "def", "return":
			p.fail(p.pos, fmt.Sprintf("unexpected keyword %q", name))
			return nil
		}
		if p.tok == '(' {
			return &ast.Send{Method: name, Args: p.args()}
		}
		return &ast.Lvar{Name: name}
	}
	p.fail(p.pos, fmt.Sprintf("unexpected %s", p.describe()))
	return nil
}

func flatten(n ast.Node) []ast.Node {
	switch n := n.(type) {
	case nil:
		return nil
	case *ast.Begin:
		return n.Body
	}
	return []ast.Node{n}
}

func unquote(lit string) string {
	if s, err := strconv.Unquote(lit); err == nil {
		return s
	}
	return strings.Trim(lit, `"`)
}
