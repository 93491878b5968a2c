package parser

import (
	"slices"

	"github.com/rubiojr/pys/ast"
	"github.com/rubiojr/pys/scanner"
)

// startsExpr reports whether the current token can begin an expression.
func (p *Parser) startsExpr() bool {
	t := p.tok()
	switch t.Kind {
	case scanner.NAME:
		if !scanner.IsKeyword(t.Text) {
			return true
		}
		switch t.Text {
		case "not", "lambda", "await", "True", "False", "None":
			return true
		}
	case scanner.NUMBER, scanner.STRING:
		return true
	case scanner.OP:
		switch t.Text {
		case "(", "[", "{", "-", "+", "~", "*", "...":
			return true
		}
	}
	return false
}

func (p *Parser) startsComp() bool {
	return p.isKw("for") || (p.isKw("async") && p.peekKw(1, "for"))
}

func (p *Parser) starExprsOrYield() ast.Expr {
	if p.isKw("yield") {
		return p.yieldExpr()
	}
	return p.starExprs()
}

// starExprs parses a comma-separated expression list; more than one
// element or a trailing comma makes a tuple.
func (p *Parser) starExprs() ast.Expr {
	first := p.starOrExpr()
	if !p.isOp(",") {
		return first
	}
	elts := []ast.Expr{first}
	for p.isOp(",") {
		p.next()
		if !p.startsExpr() {
			break
		}
		elts = append(elts, p.starOrExpr())
	}
	return &ast.Tuple{Elts: elts}
}

// targetList parses assignment targets of for loops, comprehensions and
// del, stopping before "in".
func (p *Parser) targetList() ast.Expr {
	at := p.tok()
	first := p.starOrBitOr()
	var out ast.Expr = first
	if p.isOp(",") {
		elts := []ast.Expr{first}
		for p.isOp(",") {
			p.next()
			if !p.startsExpr() {
				break
			}
			elts = append(elts, p.starOrBitOr())
		}
		out = &ast.Tuple{Elts: elts}
	}
	p.checkTarget(at, out)
	return out
}

func (p *Parser) starOrExpr() ast.Expr {
	if p.isOp("*") {
		p.next()
		return &ast.Starred{Value: p.bitOr()}
	}
	return p.expr()
}

func (p *Parser) starOrBitOr() ast.Expr {
	if p.isOp("*") {
		p.next()
		return &ast.Starred{Value: p.bitOr()}
	}
	return p.bitOr()
}

func (p *Parser) starOrNamed() ast.Expr {
	if p.isOp("*") {
		p.next()
		return &ast.Starred{Value: p.bitOr()}
	}
	return p.namedExpr()
}

func (p *Parser) yieldExpr() ast.Expr {
	p.expectKw("yield")
	if p.isKw("from") {
		p.next()
		return &ast.Yield{From: true, Value: p.expr()}
	}
	y := &ast.Yield{}
	if p.startsExpr() {
		y.Value = p.starExprs()
	}
	return y
}

// namedExpr parses NAME := expr or a plain expression.
func (p *Parser) namedExpr() ast.Expr {
	if p.isName() && p.peek(1).Kind == scanner.OP && p.peek(1).Text == ":=" {
		t := p.next()
		p.next()
		return &ast.NamedExpr{
			Target: &ast.Name{ID: t.Text, Offset: t.Offset, Pos: t.Pos},
			Value:  p.expr(),
		}
	}
	return p.expr()
}

// expr parses a full expression: lambda, conditional or disjunction.
func (p *Parser) expr() ast.Expr {
	if p.isKw("lambda") {
		p.next()
		l := &ast.Lambda{Params: p.params(":", false)}
		p.expectOp(":")
		l.Body = p.expr()
		return l
	}
	body := p.disjunction()
	if p.isKw("if") {
		p.next()
		test := p.disjunction()
		p.expectKw("else")
		return &ast.IfExp{Body: body, Test: test, Else: p.expr()}
	}
	return body
}

func (p *Parser) disjunction() ast.Expr {
	left := p.conjunction()
	for p.isKw("or") {
		p.next()
		left = &ast.BinOp{Left: left, Op: "or", Right: p.conjunction()}
	}
	return left
}

func (p *Parser) conjunction() ast.Expr {
	left := p.inversion()
	for p.isKw("and") {
		p.next()
		left = &ast.BinOp{Left: left, Op: "and", Right: p.inversion()}
	}
	return left
}

func (p *Parser) inversion() ast.Expr {
	if p.isKw("not") {
		p.next()
		return &ast.UnaryOp{Op: "not", Operand: p.inversion()}
	}
	return p.comparison()
}

var compareOps = []string{"==", "!=", "<", ">", "<=", ">="}

func (p *Parser) comparison() ast.Expr {
	left := p.bitOr()
	var c *ast.Compare
	for {
		var op string
		switch {
		case p.tok().Kind == scanner.OP && slices.Contains(compareOps, p.tok().Text):
			op = p.next().Text
		case p.isKw("in"):
			p.next()
			op = "in"
		case p.isKw("not") && p.peekKw(1, "in"):
			p.next()
			p.next()
			op = "not in"
		case p.isKw("is"):
			p.next()
			op = "is"
			if p.isKw("not") {
				p.next()
				op = "is not"
			}
		}
		if op == "" {
			break
		}
		if c == nil {
			c = &ast.Compare{Left: left}
		}
		c.Ops = append(c.Ops, op)
		c.Comparators = append(c.Comparators, p.bitOr())
	}
	if c == nil {
		return left
	}
	return c
}

// binary parses a left-associative chain of operators at one level.
func (p *Parser) binary(operand func() ast.Expr, ops ...string) ast.Expr {
	left := operand()
	for p.tok().Kind == scanner.OP && slices.Contains(ops, p.tok().Text) {
		op := p.next().Text
		left = &ast.BinOp{Left: left, Op: op, Right: operand()}
	}
	return left
}

func (p *Parser) bitOr() ast.Expr  { return p.binary(p.bitXor, "|") }
func (p *Parser) bitXor() ast.Expr { return p.binary(p.bitAnd, "^") }
func (p *Parser) bitAnd() ast.Expr { return p.binary(p.shift, "&") }
func (p *Parser) shift() ast.Expr  { return p.binary(p.sum, "<<", ">>") }
func (p *Parser) sum() ast.Expr    { return p.binary(p.term, "+", "-") }
func (p *Parser) term() ast.Expr   { return p.binary(p.factor, "*", "/", "//", "%", "@") }

func (p *Parser) factor() ast.Expr {
	if t := p.tok(); t.Kind == scanner.OP && (t.Text == "+" || t.Text == "-" || t.Text == "~") {
		p.next()
		return &ast.UnaryOp{Op: t.Text, Operand: p.factor()}
	}
	return p.power()
}

func (p *Parser) power() ast.Expr {
	var x ast.Expr
	if p.isKw("await") {
		p.next()
		x = &ast.Await{Value: p.primary()}
	} else {
		x = p.primary()
	}
	if p.isOp("**") {
		p.next()
		return &ast.BinOp{Left: x, Op: "**", Right: p.factor()}
	}
	return x
}

func (p *Parser) primary() ast.Expr {
	e := p.atom()
	for {
		switch {
		case p.isOp("."):
			p.next()
			e = &ast.Attribute{Value: e, Attr: p.ident()}
		case p.isOp("("):
			e = &ast.Call{Func: e, Args: p.callArgs()}
		case p.isOp("["):
			p.next()
			e = &ast.Subscript{Value: e, Index: p.subscript()}
			p.expectOp("]")
		default:
			return e
		}
	}
}

func (p *Parser) callArgs() []*ast.Arg {
	p.expectOp("(")
	var args []*ast.Arg
	for !p.isOp(")") {
		a := &ast.Arg{}
		switch {
		case p.isOp("*"):
			p.next()
			a.Star = 1
			a.Value = p.expr()
		case p.isOp("**"):
			p.next()
			a.Star = 2
			a.Value = p.expr()
		case p.isName() && p.peek(1).Kind == scanner.OP && p.peek(1).Text == "=":
			a.Keyword = p.ident()
			p.next()
			a.Value = p.expr()
		default:
			a.Value = p.namedExpr()
			if p.startsComp() {
				a.Value = &ast.Comp{Kind: ast.CompGenerator, Elt: a.Value, Generators: p.comprehensions()}
			}
		}
		args = append(args, a)
		if !p.isOp(",") {
			break
		}
		p.next()
	}
	p.expectOp(")")
	return args
}

func (p *Parser) subscript() ast.Expr {
	first := p.sliceItem()
	if !p.isOp(",") {
		return first
	}
	elts := []ast.Expr{first}
	for p.isOp(",") {
		p.next()
		if p.isOp("]") {
			break
		}
		elts = append(elts, p.sliceItem())
	}
	return &ast.Tuple{Elts: elts}
}

func (p *Parser) sliceItem() ast.Expr {
	if p.isOp("*") {
		p.next()
		return &ast.Starred{Value: p.bitOr()}
	}
	var lower ast.Expr
	if !p.isOp(":") {
		lower = p.namedExpr()
		if !p.isOp(":") {
			return lower
		}
	}
	p.next()
	s := &ast.Slice{Lower: lower}
	if !p.isOp(":") && !p.isOp("]") && !p.isOp(",") {
		s.Upper = p.expr()
	}
	if p.isOp(":") {
		p.next()
		if !p.isOp("]") && !p.isOp(",") {
			s.Step = p.expr()
		}
	}
	return s
}

func (p *Parser) comprehensions() []*ast.Comprehension {
	var gens []*ast.Comprehension
	for p.startsComp() {
		c := &ast.Comprehension{}
		if p.isKw("async") {
			p.next()
			c.Async = true
		}
		p.expectKw("for")
		c.Target = p.targetList()
		p.expectKw("in")
		c.Iter = p.disjunction()
		for p.isKw("if") {
			p.next()
			c.Ifs = append(c.Ifs, p.disjunction())
		}
		gens = append(gens, c)
	}
	return gens
}

func (p *Parser) atom() ast.Expr {
	t := p.tok()
	switch t.Kind {
	case scanner.NAME:
		switch t.Text {
		case "True":
			p.next()
			return &ast.Constant{Kind: ast.ConstTrue, Text: t.Text, Pos: t.Pos}
		case "False":
			p.next()
			return &ast.Constant{Kind: ast.ConstFalse, Text: t.Text, Pos: t.Pos}
		case "None":
			p.next()
			return &ast.Constant{Kind: ast.ConstNone, Text: t.Text, Pos: t.Pos}
		}
		if scanner.IsKeyword(t.Text) {
			break
		}
		p.next()
		return &ast.Name{ID: t.Text, Offset: t.Offset, Pos: t.Pos}
	case scanner.NUMBER:
		p.next()
		return &ast.Constant{Kind: ast.ConstNumber, Text: t.Text, Pos: t.Pos}
	case scanner.STRING:
		// adjacent literals concatenate
		var fields []ast.Expr
		last := t
		for p.tok().Kind == scanner.STRING {
			last = p.next()
			fields = append(fields, p.fstringFields(last)...)
		}
		return &ast.Constant{Kind: ast.ConstString, Text: p.span(t, last), Pos: t.Pos, Values: fields}
	case scanner.OP:
		switch t.Text {
		case "(":
			return p.parenAtom()
		case "[":
			return p.listAtom()
		case "{":
			return p.braceAtom()
		case "...":
			p.next()
			return &ast.Constant{Kind: ast.ConstEllipsis, Text: t.Text, Pos: t.Pos}
		}
	}
	p.errorf(t, "unexpected %s", describe(t))
	return nil
}

// span returns the source text from the start of first to the end of last.
func (p *Parser) span(first, last scanner.Token) string {
	return p.src[first.Offset:last.End()]
}

func (p *Parser) parenAtom() ast.Expr {
	p.expectOp("(")
	if p.isOp(")") {
		p.next()
		return &ast.Tuple{Paren: true}
	}
	if p.isKw("yield") {
		y := p.yieldExpr()
		p.expectOp(")")
		return y
	}
	first := p.starOrNamed()
	if p.startsComp() {
		c := &ast.Comp{Kind: ast.CompGenerator, Elt: first, Generators: p.comprehensions()}
		p.expectOp(")")
		return c
	}
	if !p.isOp(",") {
		p.expectOp(")")
		return first
	}
	elts := []ast.Expr{first}
	for p.isOp(",") {
		p.next()
		if p.isOp(")") {
			break
		}
		elts = append(elts, p.starOrNamed())
	}
	p.expectOp(")")
	return &ast.Tuple{Elts: elts, Paren: true}
}

func (p *Parser) listAtom() ast.Expr {
	p.expectOp("[")
	if p.isOp("]") {
		p.next()
		return &ast.List{}
	}
	first := p.starOrNamed()
	if p.startsComp() {
		c := &ast.Comp{Kind: ast.CompList, Elt: first, Generators: p.comprehensions()}
		p.expectOp("]")
		return c
	}
	l := &ast.List{Elts: []ast.Expr{first}}
	for p.isOp(",") {
		p.next()
		if p.isOp("]") {
			break
		}
		l.Elts = append(l.Elts, p.starOrNamed())
	}
	p.expectOp("]")
	return l
}

func (p *Parser) braceAtom() ast.Expr {
	p.expectOp("{")
	if p.isOp("}") {
		p.next()
		return &ast.Dict{}
	}

	var first ast.Expr
	if !p.isOp("**") {
		first = p.starOrNamed()
		if !p.isOp(":") {
			return p.setRest(first)
		}
	}

	d := &ast.Dict{}
	if first == nil {
		p.next()
		d.Keys = append(d.Keys, nil)
		d.Values = append(d.Values, p.bitOr())
	} else {
		p.next()
		value := p.expr()
		if p.startsComp() {
			dc := &ast.DictComp{Key: first, Value: value, Generators: p.comprehensions()}
			p.expectOp("}")
			return dc
		}
		d.Keys = append(d.Keys, first)
		d.Values = append(d.Values, value)
	}
	for p.isOp(",") {
		p.next()
		if p.isOp("}") {
			break
		}
		if p.isOp("**") {
			p.next()
			d.Keys = append(d.Keys, nil)
			d.Values = append(d.Values, p.bitOr())
			continue
		}
		k := p.expr()
		p.expectOp(":")
		d.Keys = append(d.Keys, k)
		d.Values = append(d.Values, p.expr())
	}
	p.expectOp("}")
	return d
}

func (p *Parser) setRest(first ast.Expr) ast.Expr {
	if p.startsComp() {
		c := &ast.Comp{Kind: ast.CompSet, Elt: first, Generators: p.comprehensions()}
		p.expectOp("}")
		return c
	}
	s := &ast.Set{Elts: []ast.Expr{first}}
	for p.isOp(",") {
		p.next()
		if p.isOp("}") {
			break
		}
		s.Elts = append(s.Elts, p.starOrNamed())
	}
	p.expectOp("}")
	return s
}
