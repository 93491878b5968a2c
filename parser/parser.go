// Package parser is a recursive-descent parser for the target language
// (Python) statement and expression grammar. It builds an ast.File whose
// nodes keep byte offsets into the source, which is all the rewriter needs
// to rename identifiers without reformatting the program.
//
// The grammar covers simple and compound statements, decorators,
// comprehensions, lambdas, slices, star and keyword arguments, the walrus
// operator, async/await, match statements and the replacement fields of
// f-strings. The soft keywords match and case only open a match statement
// in statement position; everywhere else they are plain names, like type.
package parser

import (
	"fmt"
	"slices"

	"modernc.org/token"

	"github.com/rubiojr/pys/ast"
	"github.com/rubiojr/pys/scanner"
)

// Error is a syntax error with its source position.
type Error struct {
	Pos token.Position
	Msg string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: syntax error: %s", e.Pos, e.Msg) }

// bailout unwinds the parser on the first syntax error.
type bailout struct{ err error }

// Parser holds the state of a single parse. The zero value is ready to use.
type Parser struct {
	src  string
	toks []scanner.Token
	file *token.File
	i    int
}

// Parse parses src into a File.
func Parse(name, src string) (*ast.File, error) {
	p := &Parser{}
	return p.Parse(name, []byte(src))
}

// Parse tokenizes and parses src. Tokenizer errors are returned as
// *scanner.Error, grammar errors as *Error.
func (p *Parser) Parse(name string, src []byte) (f *ast.File, err error) {
	text := string(src)
	toks, file, err := scanner.Tokenize(name, text)
	if err != nil {
		return nil, err
	}
	p.src, p.toks, p.file, p.i = text, toks, file, 0

	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			f, err = nil, b.err
		}
	}()

	f = &ast.File{Name: name, Source: text}
	for p.tok().Kind != scanner.EOF {
		if p.tok().Kind == scanner.NEWLINE {
			p.next()
			continue
		}
		f.Body = append(f.Body, p.statement()...)
	}
	return f, nil
}

// --- token helpers ---

func (p *Parser) tok() scanner.Token { return p.toks[p.i] }

func (p *Parser) peek(n int) scanner.Token {
	if p.i+n < len(p.toks) {
		return p.toks[p.i+n]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) next() scanner.Token {
	t := p.toks[p.i]
	if t.Kind != scanner.EOF {
		p.i++
	}
	return t
}

func (p *Parser) isOp(s string) bool {
	t := p.tok()
	return t.Kind == scanner.OP && t.Text == s
}

func (p *Parser) isKw(s string) bool {
	t := p.tok()
	return t.Kind == scanner.NAME && t.Text == s
}

func (p *Parser) peekKw(n int, s string) bool {
	t := p.peek(n)
	return t.Kind == scanner.NAME && t.Text == s
}

func (p *Parser) isName() bool {
	t := p.tok()
	return t.Kind == scanner.NAME && !scanner.IsKeyword(t.Text)
}

func (p *Parser) expectOp(s string) scanner.Token {
	if !p.isOp(s) {
		p.errorf(p.tok(), "unexpected %s, expected %q", describe(p.tok()), s)
	}
	return p.next()
}

func (p *Parser) expectKw(s string) scanner.Token {
	if !p.isKw(s) {
		p.errorf(p.tok(), "unexpected %s, expected %q", describe(p.tok()), s)
	}
	return p.next()
}

func (p *Parser) expectNewline() {
	if p.tok().Kind != scanner.NEWLINE {
		p.errorf(p.tok(), "unexpected %s, expected newline", describe(p.tok()))
	}
	p.next()
}

func (p *Parser) ident() *ast.Ident {
	if !p.isName() {
		p.errorf(p.tok(), "unexpected %s, expected name", describe(p.tok()))
	}
	t := p.next()
	return &ast.Ident{Name: t.Text, Offset: t.Offset, Pos: t.Pos}
}

func (p *Parser) errorf(t scanner.Token, format string, args ...any) {
	panic(bailout{&Error{Pos: p.file.Position(t.Pos), Msg: fmt.Sprintf(format, args...)}})
}

// try runs fn and rewinds to the starting token if it fails.
func (p *Parser) try(fn func()) (ok bool) {
	save := p.i
	defer func() {
		if r := recover(); r != nil {
			if _, isBail := r.(bailout); !isBail {
				panic(r)
			}
			p.i = save
			ok = false
		}
	}()
	fn()
	return true
}

func describe(t scanner.Token) string {
	switch t.Kind {
	case scanner.EOF:
		return "EOF"
	case scanner.NEWLINE:
		return "newline"
	case scanner.INDENT:
		return "indent"
	case scanner.DEDENT:
		return "dedent"
	case scanner.NAME:
		if scanner.IsKeyword(t.Text) {
			return fmt.Sprintf("keyword %q", t.Text)
		}
		return fmt.Sprintf("name %q", t.Text)
	case scanner.NUMBER:
		return "number " + t.Text
	case scanner.STRING:
		return "string literal"
	}
	return fmt.Sprintf("%q", t.Text)
}

func base(t scanner.Token) ast.BaseStmt { return ast.BaseStmt{StartPos: t.Pos} }

// --- statements ---

func (p *Parser) statement() []ast.Stmt {
	t := p.tok()
	switch t.Kind {
	case scanner.INDENT:
		p.errorf(t, "unexpected indent")
	case scanner.DEDENT:
		p.errorf(t, "unexpected dedent")
	case scanner.OP:
		if t.Text == "@" {
			return []ast.Stmt{p.decorated()}
		}
	case scanner.NAME:
		switch t.Text {
		case "if":
			return []ast.Stmt{p.ifStmt(false)}
		case "while":
			return []ast.Stmt{p.whileStmt()}
		case "for":
			return []ast.Stmt{p.forStmt(t, false)}
		case "try":
			return []ast.Stmt{p.tryStmt()}
		case "with":
			return []ast.Stmt{p.withStmt(t, false)}
		case "def":
			return []ast.Stmt{p.funcDef(t, false, nil)}
		case "class":
			return []ast.Stmt{p.classDef(t, nil)}
		case "match":
			if s := p.matchStmt(); s != nil {
				return []ast.Stmt{s}
			}
		case "async":
			p.next()
			switch {
			case p.isKw("def"):
				return []ast.Stmt{p.funcDef(t, true, nil)}
			case p.isKw("for"):
				return []ast.Stmt{p.forStmt(t, true)}
			case p.isKw("with"):
				return []ast.Stmt{p.withStmt(t, true)}
			}
			p.errorf(p.tok(), "unexpected %s after \"async\"", describe(p.tok()))
		}
	}
	return p.simpleStmts()
}

func (p *Parser) simpleStmts() []ast.Stmt {
	var out []ast.Stmt
	for {
		out = append(out, p.smallStmt())
		if !p.isOp(";") {
			break
		}
		p.next()
		if p.tok().Kind == scanner.NEWLINE {
			break
		}
	}
	p.expectNewline()
	return out
}

// block parses ":" followed by an indented suite or a same-line
// statement list.
func (p *Parser) block() []ast.Stmt {
	p.expectOp(":")
	if p.tok().Kind != scanner.NEWLINE {
		return p.simpleStmts()
	}
	p.next()
	if p.tok().Kind != scanner.INDENT {
		p.errorf(p.tok(), "expected an indented block")
	}
	p.next()
	var body []ast.Stmt
	for p.tok().Kind != scanner.DEDENT && p.tok().Kind != scanner.EOF {
		if p.tok().Kind == scanner.NEWLINE {
			p.next()
			continue
		}
		body = append(body, p.statement()...)
	}
	if p.tok().Kind == scanner.DEDENT {
		p.next()
	}
	return body
}

func (p *Parser) atStmtEnd() bool {
	return p.tok().Kind == scanner.NEWLINE || p.isOp(";")
}

func (p *Parser) smallStmt() ast.Stmt {
	t := p.tok()
	if t.Kind == scanner.NAME {
		switch t.Text {
		case "pass", "break", "continue":
			p.next()
			return &ast.KeywordStmt{BaseStmt: base(t), Keyword: t.Text}
		case "return":
			p.next()
			s := &ast.ReturnStmt{BaseStmt: base(t)}
			if !p.atStmtEnd() {
				s.Value = p.starExprs()
			}
			return s
		case "raise":
			p.next()
			s := &ast.RaiseStmt{BaseStmt: base(t)}
			if !p.atStmtEnd() {
				s.Exc = p.expr()
				if p.isKw("from") {
					p.next()
					s.Cause = p.expr()
				}
			}
			return s
		case "global", "nonlocal":
			p.next()
			s := &ast.GlobalStmt{BaseStmt: base(t), Nonlocal: t.Text == "nonlocal"}
			s.Names = append(s.Names, p.ident())
			for p.isOp(",") {
				p.next()
				s.Names = append(s.Names, p.ident())
			}
			return s
		case "del":
			p.next()
			target := p.targetList()
			s := &ast.DelStmt{BaseStmt: base(t)}
			if tup, ok := target.(*ast.Tuple); ok && !tup.Paren {
				s.Targets = tup.Elts
			} else {
				s.Targets = []ast.Expr{target}
			}
			return s
		case "assert":
			p.next()
			s := &ast.AssertStmt{BaseStmt: base(t), Test: p.expr()}
			if p.isOp(",") {
				p.next()
				s.Msg = p.expr()
			}
			return s
		case "import":
			return p.importStmt()
		case "from":
			return p.fromStmt()
		}
	}
	return p.exprStmt()
}

var augOps = []string{"+=", "-=", "*=", "/=", "//=", "%=", "@=", "&=", "|=", "^=", ">>=", "<<=", "**="}

func (p *Parser) exprStmt() ast.Stmt {
	start := p.tok()
	first := p.starExprsOrYield()

	switch {
	case p.isOp("="):
		s := &ast.AssignStmt{BaseStmt: base(start), Targets: []ast.Expr{first}}
		p.checkTarget(start, first)
		for p.isOp("=") {
			p.next()
			at := p.tok()
			e := p.starExprsOrYield()
			if p.isOp("=") {
				p.checkTarget(at, e)
				s.Targets = append(s.Targets, e)
				continue
			}
			s.Value = e
		}
		return s

	case p.tok().Kind == scanner.OP && slices.Contains(augOps, p.tok().Text):
		if !isSingleTarget(first) {
			p.errorf(start, "illegal expression for augmented assignment")
		}
		op := p.next().Text
		return &ast.AugAssignStmt{BaseStmt: base(start), Target: first, Op: op, Value: p.starExprsOrYield()}

	case p.isOp(":"):
		if !isSingleTarget(first) {
			p.errorf(start, "illegal target for annotation")
		}
		p.next()
		s := &ast.AnnAssignStmt{BaseStmt: base(start), Target: first, Annotation: p.expr()}
		if p.isOp("=") {
			p.next()
			s.Value = p.starExprsOrYield()
		}
		return s
	}
	return &ast.ExprStmt{BaseStmt: base(start), Value: first}
}

func isSingleTarget(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Name, *ast.Attribute, *ast.Subscript:
		return true
	}
	return false
}

// checkTarget rejects expressions that cannot be assigned to.
func (p *Parser) checkTarget(at scanner.Token, e ast.Expr) {
	switch x := e.(type) {
	case *ast.Name, *ast.Attribute, *ast.Subscript:
		return
	case *ast.Starred:
		p.checkTarget(at, x.Value)
		return
	case *ast.Tuple:
		for _, el := range x.Elts {
			p.checkTarget(at, el)
		}
		return
	case *ast.List:
		for _, el := range x.Elts {
			p.checkTarget(at, el)
		}
		return
	}
	p.errorf(at, "cannot assign to expression")
}

func (p *Parser) importStmt() ast.Stmt {
	t := p.next()
	s := &ast.ImportStmt{BaseStmt: base(t)}
	for {
		a := &ast.Alias{Name: p.dotted()}
		if p.isKw("as") {
			p.next()
			a.AsName = p.ident()
		}
		s.Names = append(s.Names, a)
		if !p.isOp(",") {
			return s
		}
		p.next()
	}
}

func (p *Parser) fromStmt() ast.Stmt {
	t := p.next()
	s := &ast.ImportFromStmt{BaseStmt: base(t)}
	for p.isOp(".") || p.isOp("...") {
		s.Level += len(p.next().Text)
	}
	if s.Level == 0 || !p.isKw("import") {
		s.Module = p.dotted()
	}
	p.expectKw("import")

	if p.isOp("*") {
		p.next()
		s.Names = []*ast.Alias{{Name: "*"}}
		return s
	}
	paren := p.isOp("(")
	if paren {
		p.next()
	}
	for {
		a := &ast.Alias{Name: p.ident().Name}
		if p.isKw("as") {
			p.next()
			a.AsName = p.ident()
		}
		s.Names = append(s.Names, a)
		if !p.isOp(",") {
			break
		}
		p.next()
		if paren && p.isOp(")") {
			break
		}
	}
	if paren {
		p.expectOp(")")
	}
	return s
}

func (p *Parser) dotted() string {
	name := p.ident().Name
	for p.isOp(".") {
		p.next()
		name += "." + p.ident().Name
	}
	return name
}

func (p *Parser) ifStmt(elif bool) ast.Stmt {
	t := p.next()
	s := &ast.IfStmt{BaseStmt: base(t), Elif: elif, Test: p.namedExpr()}
	s.Body = p.block()
	switch {
	case p.isKw("elif"):
		s.Else = []ast.Stmt{p.ifStmt(true)}
	case p.isKw("else"):
		p.next()
		s.Else = p.block()
	}
	return s
}

func (p *Parser) whileStmt() ast.Stmt {
	t := p.next()
	s := &ast.WhileStmt{BaseStmt: base(t), Test: p.namedExpr()}
	s.Body = p.block()
	if p.isKw("else") {
		p.next()
		s.Else = p.block()
	}
	return s
}

func (p *Parser) forStmt(start scanner.Token, async bool) ast.Stmt {
	p.expectKw("for")
	s := &ast.ForStmt{BaseStmt: base(start), Async: async}
	s.Target = p.targetList()
	p.expectKw("in")
	s.Iter = p.starExprs()
	s.Body = p.block()
	if p.isKw("else") {
		p.next()
		s.Else = p.block()
	}
	return s
}

func (p *Parser) tryStmt() ast.Stmt {
	t := p.next()
	s := &ast.TryStmt{BaseStmt: base(t), Body: p.block()}
	for p.isKw("except") {
		p.next()
		h := &ast.ExceptHandler{}
		if p.isOp("*") {
			p.next()
			h.Star = true
		}
		if !p.isOp(":") {
			h.Type = p.expr()
			if p.isKw("as") {
				p.next()
				h.Name = p.ident()
			}
		}
		h.Body = p.block()
		s.Handlers = append(s.Handlers, h)
	}
	if p.isKw("else") {
		if len(s.Handlers) == 0 {
			p.errorf(p.tok(), "else without except")
		}
		p.next()
		s.Else = p.block()
	}
	if p.isKw("finally") {
		p.next()
		s.Finally = p.block()
	}
	if len(s.Handlers) == 0 && s.Finally == nil {
		p.errorf(p.tok(), "expected 'except' or 'finally' block")
	}
	return s
}

func (p *Parser) withStmt(start scanner.Token, async bool) ast.Stmt {
	p.expectKw("with")
	s := &ast.WithStmt{BaseStmt: base(start), Async: async}

	// with (a as b, c as d):
	if p.isOp("(") && p.try(func() {
		p.next()
		var items []*ast.WithItem
		for !p.isOp(")") {
			items = append(items, p.withItem())
			if !p.isOp(",") {
				break
			}
			p.next()
		}
		p.expectOp(")")
		if !p.isOp(":") {
			p.errorf(p.tok(), "not a parenthesized item list")
		}
		s.Items = items
	}) {
		s.Body = p.block()
		return s
	}

	for {
		s.Items = append(s.Items, p.withItem())
		if !p.isOp(",") {
			break
		}
		p.next()
	}
	s.Body = p.block()
	return s
}

func (p *Parser) withItem() *ast.WithItem {
	it := &ast.WithItem{Context: p.expr()}
	if p.isKw("as") {
		p.next()
		at := p.tok()
		it.Vars = p.starOrBitOr()
		p.checkTarget(at, it.Vars)
	}
	return it
}

func (p *Parser) decorated() ast.Stmt {
	var decorators []ast.Expr
	for p.isOp("@") {
		p.next()
		decorators = append(decorators, p.namedExpr())
		p.expectNewline()
	}
	t := p.tok()
	switch {
	case p.isKw("def"):
		return p.funcDef(t, false, decorators)
	case p.isKw("class"):
		return p.classDef(t, decorators)
	case p.isKw("async") && p.peekKw(1, "def"):
		p.next()
		return p.funcDef(t, true, decorators)
	}
	p.errorf(t, "unexpected %s, expected function or class definition", describe(t))
	return nil
}

func (p *Parser) funcDef(start scanner.Token, async bool, decorators []ast.Expr) ast.Stmt {
	p.expectKw("def")
	s := &ast.FuncDef{BaseStmt: base(start), Async: async, Decorators: decorators, Name: p.ident()}
	p.expectOp("(")
	s.Params = p.params(")", true)
	p.expectOp(")")
	if p.isOp("->") {
		p.next()
		s.Returns = p.expr()
	}
	s.Body = p.block()
	return s
}

func (p *Parser) classDef(start scanner.Token, decorators []ast.Expr) ast.Stmt {
	p.expectKw("class")
	s := &ast.ClassDef{BaseStmt: base(start), Decorators: decorators, Name: p.ident()}
	if p.isOp("(") {
		s.Bases = p.callArgs()
	}
	s.Body = p.block()
	return s
}

// params parses a parameter list up to (not including) end.
func (p *Parser) params(end string, annotated bool) []*ast.Param {
	var ps []*ast.Param
	annotation := func(param *ast.Param) {
		if annotated && p.isOp(":") {
			p.next()
			param.Annotation = p.expr()
		}
	}
	for !p.isOp(end) {
		param := &ast.Param{}
		switch {
		case p.isOp("/"):
			p.next()
			param.Kind = ast.ParamSlash
		case p.isOp("**"):
			p.next()
			param.Kind = ast.ParamKwArgs
			param.Name = p.ident()
			annotation(param)
		case p.isOp("*"):
			p.next()
			if !p.isName() {
				param.Kind = ast.ParamStar
				break
			}
			param.Kind = ast.ParamVarArgs
			param.Name = p.ident()
			annotation(param)
		default:
			param.Name = p.ident()
			annotation(param)
			if p.isOp("=") {
				p.next()
				param.Default = p.expr()
			}
		}
		ps = append(ps, param)
		if !p.isOp(",") {
			break
		}
		p.next()
	}
	return ps
}
