package parser

import (
	"github.com/rubiojr/pys/ast"
	"github.com/rubiojr/pys/scanner"
)

// matchStmt parses a match statement. It returns nil, with no tokens
// consumed, when "match" starts an ordinary statement instead.
func (p *Parser) matchStmt() ast.Stmt {
	t := p.tok()
	var s *ast.MatchStmt
	header := p.try(func() {
		p.next()
		s = &ast.MatchStmt{BaseStmt: base(t), Subject: p.starExprs()}
		p.expectOp(":")
		p.expectNewline()
		if p.tok().Kind != scanner.INDENT {
			p.errorf(p.tok(), "expected an indented block")
		}
		p.next()
		if !p.isKw("case") {
			p.errorf(p.tok(), "unexpected %s, expected \"case\"", describe(p.tok()))
		}
	})
	if !header {
		return nil
	}

	for {
		for p.tok().Kind == scanner.NEWLINE {
			p.next()
		}
		if !p.isKw("case") {
			break
		}
		p.next()
		c := &ast.MatchCase{Pattern: p.casePattern()}
		if p.isKw("if") {
			p.next()
			c.Guard = p.namedExpr()
		}
		c.Body = p.block()
		s.Cases = append(s.Cases, c)
	}
	switch p.tok().Kind {
	case scanner.DEDENT:
		p.next()
	case scanner.EOF:
	default:
		p.errorf(p.tok(), "unexpected %s, expected \"case\"", describe(p.tok()))
	}
	return s
}

// casePattern parses the pattern of a case clause. A bare comma list is
// an open sequence pattern.
func (p *Parser) casePattern() ast.Pattern {
	first := p.starPattern()
	if !p.isOp(",") {
		if _, ok := first.(*ast.MatchStar); ok {
			p.errorf(p.tok(), "star pattern outside a sequence")
		}
		return first
	}
	seq := &ast.MatchSequence{Patterns: []ast.Pattern{first}}
	for p.isOp(",") {
		p.next()
		if p.isOp(":") || p.isKw("if") {
			break
		}
		seq.Patterns = append(seq.Patterns, p.starPattern())
	}
	return seq
}

func (p *Parser) starPattern() ast.Pattern {
	if !p.isOp("*") {
		return p.pattern()
	}
	p.next()
	id := p.ident()
	if id.Name == "_" {
		return &ast.MatchStar{}
	}
	return &ast.MatchStar{Name: id}
}

// pattern parses p | p ... [as name].
func (p *Parser) pattern() ast.Pattern {
	pat := p.closedPattern()
	if p.isOp("|") {
		or := &ast.MatchOr{Patterns: []ast.Pattern{pat}}
		for p.isOp("|") {
			p.next()
			or.Patterns = append(or.Patterns, p.closedPattern())
		}
		pat = or
	}
	if p.isKw("as") {
		p.next()
		return &ast.MatchAs{Pattern: pat, Name: p.ident()}
	}
	return pat
}

func (p *Parser) closedPattern() ast.Pattern {
	t := p.tok()
	switch t.Kind {
	case scanner.NUMBER, scanner.STRING:
		return &ast.MatchValue{Value: p.sum()}
	case scanner.OP:
		switch t.Text {
		case "-":
			return &ast.MatchValue{Value: p.sum()}
		case "(":
			p.next()
			pats, trailing := p.patternList(")")
			if len(pats) == 1 && !trailing {
				if _, ok := pats[0].(*ast.MatchStar); !ok {
					return pats[0]
				}
			}
			return &ast.MatchSequence{Patterns: pats}
		case "[":
			p.next()
			pats, _ := p.patternList("]")
			return &ast.MatchSequence{Patterns: pats}
		case "{":
			return p.mappingPattern()
		}
	case scanner.NAME:
		switch t.Text {
		case "None":
			p.next()
			return &ast.MatchValue{Value: &ast.Constant{Kind: ast.ConstNone, Text: t.Text, Pos: t.Pos}}
		case "True":
			p.next()
			return &ast.MatchValue{Value: &ast.Constant{Kind: ast.ConstTrue, Text: t.Text, Pos: t.Pos}}
		case "False":
			p.next()
			return &ast.MatchValue{Value: &ast.Constant{Kind: ast.ConstFalse, Text: t.Text, Pos: t.Pos}}
		}
		id := p.ident()
		if !p.isOp(".") && !p.isOp("(") {
			if id.Name == "_" {
				return &ast.MatchAs{}
			}
			return &ast.MatchAs{Name: id}
		}
		var v ast.Expr = &ast.Name{ID: id.Name, Offset: id.Offset, Pos: id.Pos}
		for p.isOp(".") {
			p.next()
			v = &ast.Attribute{Value: v, Attr: p.ident()}
		}
		if p.isOp("(") {
			return p.classPattern(v)
		}
		return &ast.MatchValue{Value: v}
	}
	p.errorf(t, "unexpected %s in pattern", describe(t))
	return nil
}

// patternList parses comma-separated patterns up to and including end. It
// reports whether the list ended with a comma.
func (p *Parser) patternList(end string) (pats []ast.Pattern, trailing bool) {
	for !p.isOp(end) {
		pats = append(pats, p.starPattern())
		trailing = false
		if !p.isOp(",") {
			break
		}
		p.next()
		trailing = true
	}
	p.expectOp(end)
	return pats, trailing
}

func (p *Parser) mappingPattern() ast.Pattern {
	p.expectOp("{")
	m := &ast.MatchMapping{}
	for !p.isOp("}") {
		if p.isOp("**") {
			p.next()
			m.Rest = p.ident()
		} else {
			at := p.tok()
			key, ok := p.closedPattern().(*ast.MatchValue)
			if !ok {
				p.errorf(at, "mapping pattern keys must be literals or dotted names")
			}
			p.expectOp(":")
			m.Keys = append(m.Keys, key.Value)
			m.Patterns = append(m.Patterns, p.pattern())
		}
		if !p.isOp(",") {
			break
		}
		p.next()
	}
	p.expectOp("}")
	return m
}

func (p *Parser) classPattern(cls ast.Expr) ast.Pattern {
	p.expectOp("(")
	c := &ast.MatchClass{Cls: cls}
	for !p.isOp(")") {
		if p.isName() && p.peek(1).Kind == scanner.OP && p.peek(1).Text == "=" {
			c.KwdNames = append(c.KwdNames, p.ident())
			p.next()
			c.KwdPatterns = append(c.KwdPatterns, p.pattern())
		} else {
			if len(c.KwdNames) > 0 {
				p.errorf(p.tok(), "positional patterns follow keyword patterns")
			}
			c.Patterns = append(c.Patterns, p.pattern())
		}
		if !p.isOp(",") {
			break
		}
		p.next()
	}
	p.expectOp(")")
	return c
}
