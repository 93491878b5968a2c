package parser

import (
	"strings"

	"github.com/rubiojr/pys/ast"
	"github.com/rubiojr/pys/scanner"
)

// fstring walks the body of one f-string token and collects the
// expressions of its replacement fields.
type fstring struct {
	p      *Parser
	tok    scanner.Token
	raw    bool
	end    int // offset of the closing quotes
	fields []ast.Expr
}

// fstringFields returns the replacement field expressions of t, or nil
// when t is not an f-string. Offsets in the returned nodes point into the
// whole source, so edits on them land inside the literal.
func (p *Parser) fstringFields(t scanner.Token) []ast.Expr {
	q := strings.IndexAny(t.Text, `"'`)
	if q < 0 {
		return nil
	}
	prefix := strings.ToLower(t.Text[:q])
	if !strings.Contains(prefix, "f") {
		return nil
	}
	quote := 1
	if body := t.Text[q:]; len(body) >= 6 && strings.HasPrefix(body, strings.Repeat(body[:1], 3)) {
		quote = 3
	}
	fs := &fstring{
		p:   p,
		tok: t,
		raw: strings.Contains(prefix, "r"),
		end: t.Offset + len(t.Text) - quote,
	}
	fs.literal(t.Offset+q+quote, false)
	return fs.fields
}

// literal scans literal text starting at i. Inside a format spec it stops
// at the '}' closing the enclosing field and returns its offset.
func (fs *fstring) literal(i int, spec bool) int {
	src := fs.p.src
	for i < fs.end {
		switch c := src[i]; {
		case c == '\\' && !fs.raw:
			if strings.HasPrefix(src[i:fs.end], `\N{`) {
				if j := strings.IndexByte(src[i:fs.end], '}'); j >= 0 {
					i += j + 1
					continue
				}
			}
			i += 2
		case c == '{':
			if !spec && i+1 < fs.end && src[i+1] == '{' {
				i += 2
				continue
			}
			i = fs.field(i + 1)
		case c == '}':
			if spec {
				return i
			}
			if i+1 < fs.end && src[i+1] == '}' {
				i += 2
				continue
			}
			fs.p.errorf(fs.tok, "f-string: single '}' is not allowed")
		default:
			i++
		}
	}
	if spec {
		fs.p.errorf(fs.tok, "f-string: expecting '}'")
	}
	return i
}

// field parses the replacement field whose expression starts at start and
// returns the offset just past its closing '}'.
func (fs *fstring) field(start int) int {
	src := fs.p.src
	depth := 0
	i := start
scan:
	for i < fs.end {
		c := src[i]
		switch {
		case c == '\'' || c == '"':
			i = fs.skipString(i)
			continue
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']':
			if depth == 0 {
				fs.p.errorf(fs.tok, "f-string: unmatched '%c'", c)
			}
			depth--
		case c == '}':
			if depth == 0 {
				break scan
			}
			depth--
		case depth > 0:
		case (c == '<' || c == '>' || c == '=' || c == '!') && i+1 < fs.end && src[i+1] == '=':
			i += 2
			continue
		case c == '!' || c == ':' || c == '=':
			break scan
		}
		i++
	}
	if i >= fs.end {
		fs.p.errorf(fs.tok, "f-string: expecting '}'")
	}
	if strings.TrimSpace(src[start:i]) == "" {
		fs.p.errorf(fs.tok, "f-string: empty expression not allowed")
	}
	fs.fields = append(fs.fields, fs.p.fieldExpr(fs.tok, start, i))

	if src[i] == '=' {
		i++
		for i < fs.end && (src[i] == ' ' || src[i] == '\t') {
			i++
		}
	}
	if i < fs.end && src[i] == '!' {
		i += 2
	}
	if i < fs.end && src[i] == ':' {
		i = fs.literal(i+1, true)
	}
	if i >= fs.end || src[i] != '}' {
		fs.p.errorf(fs.tok, "f-string: expecting '}'")
	}
	return i + 1
}

// skipString returns the offset past the string literal opening at i.
func (fs *fstring) skipString(i int) int {
	src := fs.p.src
	q := src[i : i+1]
	if strings.HasPrefix(src[i:fs.end], strings.Repeat(q, 3)) {
		q = strings.Repeat(q, 3)
	}
	for j := i + len(q); j < fs.end; j++ {
		switch {
		case src[j] == '\\':
			j++
		case strings.HasPrefix(src[j:fs.end], q):
			return j + len(q)
		}
	}
	fs.p.errorf(fs.tok, "f-string: unterminated string")
	return fs.end
}

// fieldExpr parses src[start:end] as a parenthesized expression whose
// tokens are shifted to their offsets in the whole source.
func (p *Parser) fieldExpr(t scanner.Token, start, end int) ast.Expr {
	toks, _, err := scanner.Tokenize(p.file.Name(), "("+p.src[start:end]+")")
	if err != nil {
		p.errorf(t, "f-string: invalid expression")
	}
	shift := start - 1
	sub := &Parser{src: p.src, file: p.file}
	for _, tk := range toks {
		switch tk.Kind {
		case scanner.NEWLINE, scanner.INDENT, scanner.DEDENT:
			continue
		}
		tk.Offset = min(tk.Offset+shift, p.file.Size())
		tk.Pos = p.file.Pos(tk.Offset)
		sub.toks = append(sub.toks, tk)
	}
	sub.expectOp("(")
	e := sub.starExprsOrYield()
	sub.expectOp(")")
	if sub.tok().Kind != scanner.EOF {
		p.errorf(t, "f-string: invalid expression")
	}
	return e
}
