// Package parser implements a recursive-descent parser over the lexer's
// token stream, producing the AST shapes consumed by internal/symtab and
// internal/codegen (§4.1). It is peripheral to the compiler's core per
// the specification, existing only so the core has a real front end to
// run against; its errors map to exit code 1 at the CLI boundary.
package parser

import (
	"io"

	"github.com/tpc-lang/tpcc/internal/ast"
	"github.com/tpc-lang/tpcc/internal/diag"
	"github.com/tpc-lang/tpcc/internal/lexer"
)

// Parser holds the token stream and one token of lookahead.
type Parser struct {
	lex  *lexer.Lexer
	tok  lexer.Token
	prev lexer.Token
}

// Parse reads r to completion and returns the program's root Node. A
// malformed token stream aborts via diag.Abort with diag.Failure.
func Parse(r io.Reader, name string) *ast.Node {
	p := &Parser{lex: lexer.New(r, name)}
	p.advance()
	return p.parseProgram()
}

func (p *Parser) advance() {
	p.prev = p.tok
	p.tok = p.lex.Next()
}

func (p *Parser) at(kind lexer.Kind, text string) bool {
	return p.tok.Kind == kind && (text == "" || p.tok.Text == text)
}

func (p *Parser) expect(kind lexer.Kind, text string) lexer.Token {
	if !p.at(kind, text) {
		diag.Abortf(diag.Failure, p.tok.Line, "expected %q, got %q", text, p.tok)
	}
	t := p.tok
	p.advance()
	return t
}

func (p *Parser) eof() bool { return p.tok.Kind == lexer.EOF }

// parseProgram parses a sequence of top-level declarations: each is either
// a global variable declarator group or a function declaration, and the
// two share enough of their grammar (a type keyword, then an identifier)
// that the choice is only decidable after that identifier is in hand --
// at which point this loop builds whichever node the next token calls
// for, rather than speculatively parsing one shape and backtracking out
// of it (the underlying token stream has no rewind).
func (p *Parser) parseProgram() *ast.Node {
	root := ast.New(ast.Program, 1)
	globals := ast.New(ast.DeclVarsGlobal, 1)
	root.Append(globals)

	for !p.eof() {
		typeLine := p.tok.Line
		var ret *ast.Node
		var typeName string
		if p.at(lexer.Keyword, "void") {
			ret = ast.New(ast.Void, typeLine)
			p.advance()
		} else {
			typeName = p.expectType()
			ret = ast.TypeNode(typeLine, typeName)
		}
		nameTok := p.expect(lexer.Ident, "")

		if p.at(lexer.Punct, "(") {
			fn := ast.New(ast.FuncDecl, typeLine, ret, p.parseParamList())
			fn.Text = nameTok.Text
			fn.Append(p.parseBody())
			root.Append(fn)
			continue
		}

		if ret.Label == ast.Void {
			diag.Abortf(diag.Failure, typeLine, "void is not a valid variable type")
		}
		group := ast.New(ast.DeclaratorGroup, typeLine, ast.TypeNode(typeLine, typeName))
		group.Append(p.parseDeclarator(nameTok))
		for p.at(lexer.Punct, ",") {
			p.advance()
			group.Append(p.parseDeclarator(p.expect(lexer.Ident, "")))
		}
		p.expect(lexer.Punct, ";")
		globals.Append(group)
	}
	return root
}

func (p *Parser) isTypeStart() bool {
	return p.at(lexer.Keyword, "void") || p.at(lexer.Keyword, "char") || p.at(lexer.Keyword, "int")
}

// parseDeclBlock parses a run of `type decl, decl, ...;` groups -- used
// only for a function body's local declarations, which (unlike top-level
// declarations) can never be followed by a parameter list.
func (p *Parser) parseDeclBlock(label ast.Label) *ast.Node {
	line := p.tok.Line
	block := ast.New(label, line)
	for p.isTypeStart() {
		typeName := p.expectType()
		typeLine := p.prev.Line
		group := ast.New(ast.DeclaratorGroup, typeLine, ast.TypeNode(typeLine, typeName))
		group.Append(p.parseDeclarator(p.expect(lexer.Ident, "")))
		for p.at(lexer.Punct, ",") {
			p.advance()
			group.Append(p.parseDeclarator(p.expect(lexer.Ident, "")))
		}
		p.expect(lexer.Punct, ";")
		block.Append(group)
	}
	return block
}

func (p *Parser) parseDeclarator(nameTok lexer.Token) *ast.Node {
	if p.at(lexer.Punct, "[") {
		p.advance()
		count := p.expect(lexer.Number, "")
		p.expect(lexer.Punct, "]")
		n := ast.IdentNode(nameTok.Line, nameTok.Text)
		n.Label = ast.Array
		n.Append(ast.NumNode(count.Line, count.IntVal))
		return n
	}
	return ast.IdentNode(nameTok.Line, nameTok.Text)
}

func (p *Parser) expectType() string {
	if p.at(lexer.Keyword, "char") || p.at(lexer.Keyword, "int") {
		t := p.tok.Text
		p.advance()
		return t
	}
	diag.Abortf(diag.Failure, p.tok.Line, "expected a type, got %q", p.tok)
	return ""
}

func (p *Parser) parseParamList() *ast.Node {
	line := p.tok.Line
	p.expect(lexer.Punct, "(")
	list := ast.New(ast.ParamList, line)
	if p.at(lexer.Keyword, "void") {
		p.advance()
		list.Append(ast.New(ast.Void, line))
		p.expect(lexer.Punct, ")")
		return list
	}
	for !p.at(lexer.Punct, ")") {
		typeName := p.expectType()
		typeLine := p.prev.Line
		nameTok := p.expect(lexer.Ident, "")
		group := ast.New(ast.DeclaratorGroup, typeLine, ast.TypeNode(typeLine, typeName))
		if p.at(lexer.Punct, "[") {
			p.advance()
			p.expect(lexer.Punct, "]")
			n := ast.IdentNode(nameTok.Line, nameTok.Text)
			n.Label = ast.Array
			group.Append(n)
		} else {
			group.Append(ast.IdentNode(nameTok.Line, nameTok.Text))
		}
		list.Append(group)
		if p.at(lexer.Punct, ",") {
			p.advance()
		}
	}
	p.advance()
	return list
}

func (p *Parser) parseBody() *ast.Node {
	line := p.tok.Line
	p.expect(lexer.Punct, "{")
	body := ast.New(ast.Body, line)
	if p.isTypeStart() {
		body.Append(p.parseDeclBlock(ast.DeclVarsLocal))
	}
	stmts := ast.New(ast.StmtList, line)
	for !p.at(lexer.Punct, "}") {
		stmts.Append(p.parseStmt())
	}
	p.expect(lexer.Punct, "}")
	body.Append(stmts)
	return body
}

func (p *Parser) parseStmt() *ast.Node {
	switch {
	case p.at(lexer.Punct, "{"):
		return p.parseBody()
	case p.at(lexer.Keyword, "if"):
		return p.parseIf()
	case p.at(lexer.Keyword, "while"):
		return p.parseWhile()
	case p.at(lexer.Keyword, "return"):
		return p.parseReturn()
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *Parser) parseBlockOrStmt() *ast.Node {
	if p.at(lexer.Punct, "{") {
		return p.parseBody()
	}
	return p.parseStmt()
}

func (p *Parser) parseIf() *ast.Node {
	line := p.tok.Line
	p.advance()
	p.expect(lexer.Punct, "(")
	cond := p.parseExpr()
	p.expect(lexer.Punct, ")")
	then := p.parseBlockOrStmt()
	if p.at(lexer.Keyword, "else") {
		elseLine := p.tok.Line
		p.advance()
		elseNode := ast.New(ast.Else, elseLine, p.parseBlockOrStmt())
		return ast.New(ast.If, line, cond, then, elseNode)
	}
	return ast.New(ast.If, line, cond, then)
}

func (p *Parser) parseWhile() *ast.Node {
	line := p.tok.Line
	p.advance()
	p.expect(lexer.Punct, "(")
	cond := p.parseExpr()
	p.expect(lexer.Punct, ")")
	body := p.parseBlockOrStmt()
	return ast.New(ast.While, line, cond, body)
}

func (p *Parser) parseReturn() *ast.Node {
	line := p.tok.Line
	p.advance()
	if p.at(lexer.Punct, ";") {
		p.advance()
		return ast.New(ast.Return, line)
	}
	expr := p.parseExpr()
	p.expect(lexer.Punct, ";")
	return ast.New(ast.Return, line, expr)
}

func (p *Parser) parseExprOrAssignStmt() *ast.Node {
	line := p.tok.Line
	lhs := p.parseExpr()
	if p.at(lexer.Punct, "=") {
		p.advance()
		rhs := p.parseExpr()
		p.expect(lexer.Punct, ";")
		return ast.OpNode(ast.Assign, line, "=", lhs, rhs)
	}
	p.expect(lexer.Punct, ";")
	return lhs
}

// Expression grammar, loosest to tightest:
//   expr    := or
//   or      := and ("||" and)*
//   and     := eq ("&&" eq)*
//   eq      := order (("==" | "!=") order)*
//   order   := add (("<"|"<="|">"|">=") add)*
//   add     := mul (("+"|"-") mul)*
//   mul     := unary (("*"|"/") unary)*
//   unary   := "!" unary | "-" unary | "&" unary | postfix
//   postfix := primary ("[" expr "]")?
//   primary := NUMBER | CHAR | IDENT ("(" args ")")? | "(" expr ")"

func (p *Parser) parseExpr() *ast.Node { return p.parseOr() }

func (p *Parser) parseOr() *ast.Node {
	n := p.parseAnd()
	for p.at(lexer.Punct, "||") {
		line := p.tok.Line
		p.advance()
		n = ast.OpNode(ast.Or, line, "||", n, p.parseAnd())
	}
	return n
}

func (p *Parser) parseAnd() *ast.Node {
	n := p.parseEq()
	for p.at(lexer.Punct, "&&") {
		line := p.tok.Line
		p.advance()
		n = ast.OpNode(ast.And, line, "&&", n, p.parseEq())
	}
	return n
}

func (p *Parser) parseEq() *ast.Node {
	n := p.parseOrder()
	for p.at(lexer.Punct, "==") || p.at(lexer.Punct, "!=") {
		op := p.tok.Text
		line := p.tok.Line
		p.advance()
		n = ast.OpNode(ast.Eq, line, op, n, p.parseOrder())
	}
	return n
}

func (p *Parser) parseOrder() *ast.Node {
	n := p.parseAdd()
	for p.at(lexer.Punct, "<") || p.at(lexer.Punct, "<=") || p.at(lexer.Punct, ">") || p.at(lexer.Punct, ">=") {
		op := p.tok.Text
		line := p.tok.Line
		p.advance()
		n = ast.OpNode(ast.Order, line, op, n, p.parseAdd())
	}
	return n
}

func (p *Parser) parseAdd() *ast.Node {
	n := p.parseMul()
	for p.at(lexer.Punct, "+") || p.at(lexer.Punct, "-") {
		op := p.tok.Text
		line := p.tok.Line
		p.advance()
		n = ast.OpNode(ast.Addsub, line, op, n, p.parseMul())
	}
	return n
}

func (p *Parser) parseMul() *ast.Node {
	n := p.parseUnary()
	for p.at(lexer.Punct, "*") || p.at(lexer.Punct, "/") {
		op := p.tok.Text
		line := p.tok.Line
		p.advance()
		n = ast.OpNode(ast.Divstar, line, op, n, p.parseUnary())
	}
	return n
}

func (p *Parser) parseUnary() *ast.Node {
	switch {
	case p.at(lexer.Punct, "!"):
		line := p.tok.Line
		p.advance()
		return ast.New(ast.Not, line, p.parseUnary())
	case p.at(lexer.Punct, "-"):
		line := p.tok.Line
		p.advance()
		return ast.New(ast.Addsub, line, p.parseUnary())
	case p.at(lexer.Punct, "&"):
		line := p.tok.Line
		p.advance()
		return ast.New(ast.Address, line, p.parseUnary())
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() *ast.Node {
	n := p.parsePrimary()
	if p.at(lexer.Punct, "[") && n.Label == ast.Ident {
		p.advance()
		idx := p.parseExpr()
		p.expect(lexer.Punct, "]")
		n.Label = ast.Array
		n.Append(idx)
	}
	return n
}

func (p *Parser) parsePrimary() *ast.Node {
	line := p.tok.Line
	switch {
	case p.at(lexer.Number, ""):
		v := p.tok.IntVal
		p.advance()
		return ast.NumNode(line, v)
	case p.at(lexer.CharLit, ""):
		v := p.tok.CharVal
		p.advance()
		return ast.CharNode(line, v)
	case p.at(lexer.Punct, "("):
		p.advance()
		n := p.parseExpr()
		p.expect(lexer.Punct, ")")
		return n
	case p.tok.Kind == lexer.Ident:
		name := p.tok.Text
		p.advance()
		if p.at(lexer.Punct, "(") {
			p.advance()
			var args []*ast.Node
			for !p.at(lexer.Punct, ")") {
				args = append(args, p.parseExpr())
				if p.at(lexer.Punct, ",") {
					p.advance()
				}
			}
			p.advance()
			return ast.CallNode(line, name, args...)
		}
		return ast.IdentNode(line, name)
	default:
		diag.Abortf(diag.Failure, line, "unexpected token %q", p.tok)
		return nil
	}
}
