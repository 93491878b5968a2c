package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/pys/ast"
	"github.com/rubiojr/pys/scanner"
)

func dump(t *testing.T, src string) string {
	t.Helper()
	f, err := Parse("test.py", src)
	require.NoError(t, err)
	return ast.Dump(f)
}

func TestParseStatements(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"call", `cetak("halo")`, `(expr (call cetak "halo"))`},
		{"assign kwargs", "x = f(a, b=1)", "(assign x (call f a b=1))"},
		{"chained assign", "a = b = 0", "(assign a b 0)"},
		{"unpack", "a, *b = c", "(assign (tuple a *b) c)"},
		{"augassign", "x += 1", "(augassign += x 1)"},
		{"annotation", "x: int = 0", "(annassign x int 0)"},
		{"semicolons", "a = 1; b = 2", "(assign a 1)\n(assign b 2)"},
		{"global", "global a, b", "(global a b)"},
		{"nonlocal", "nonlocal a", "(nonlocal a)"},
		{"del", "del a[0], b", "(del (index a 0) b)"},
		{"assert", `assert x, "m"`, `(assert x "m")`},
		{"raise from", "raise X from e", "(raise X e)"},
		{"bare return", "def f():\n    return\n", "(def f (params) (body (return)))"},
		{"import", "import os.path as osp, sys", "(import (alias os.path osp) (alias sys))"},
		{"from relative", "from . import x", "(from . (alias x))"},
		{"from parenthesized", "from ..pkg.mod import (a as b, c,)", "(from ..pkg.mod (alias a b) (alias c))"},
		{"from star", "from m import *", "(from m (alias *))"},
		{"same line block", "if x: pass", "(if x (body (pass)))"},
		{"attribute chain", "obj.method(1).attr", "(expr (attr (call (attr obj method) 1) attr))"},
		{"string concat", `x = "a" "b"`, `(assign x "a" "b")`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dump(t, tt.src))
		})
	}
}

func TestParseExpressions(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"a < b <= c", "(cmp a < b <= c)"},
		{"x not in y", "(cmp x not in y)"},
		{"x is not None", "(cmp x is not None)"},
		{"a and not b or c", "(or (and a (not b)) c)"},
		{"-x ** 2", "(- (** x 2))"},
		{"1 + 2 * 3", "(+ 1 (* 2 3))"},
		{"a if b else c", "(ifexp b a c)"},
		{"f(*a, **k)", "(call f *a **k)"},
		{"{'a': 1, **rest}", "(dict 'a':1 **rest)"},
		{"{1, 2}", "(set 1 2)"},
		{"{}", "(dict)"},
		{"()", "(tuple)"},
		{"(1,)", "(tuple 1)"},
		{"[x for x in y]", "(listcomp x (for x y))"},
		{"{x for x in y}", "(setcomp x (for x y))"},
		{"(x for x in y)", "(genexp x (for x y))"},
		{"sum(x for x in y)", "(call sum (genexp x (for x y)))"},
		{"{k: v for k, v in items}", "(dictcomp k v (for (tuple k v) items))"},
		{"lambda x, y=2: x[1:y, ::2]", "(lambda (params x y=2) (index x (tuple (slice 1 y _) (slice _ _ 2))))"},
		{"xs[-1]", "(index xs (- 1))"},
		{"...", "..."},
		{`f"a {x} b"`, `(fstring f"a {x} b" x)`},
		{`f"{a!r:>{w}} {{b}}"`, `(fstring f"{a!r:>{w}} {{b}}" a w)`},
		{`f"{x=}"`, `(fstring f"{x=}" x)`},
		{`f"{a == b}"`, `(fstring f"{a == b}" (cmp a == b))`},
		{`"a" f"{b}"`, `(fstring "a" f"{b}" b)`},
		{`f"{len(d['k'])}"`, `(fstring f"{len(d['k'])}" (call len (index d 'k')))`},
		{`F'{x}' '{y}'`, `(fstring F'{x}' '{y}' x)`},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, "(expr "+tt.want+")", dump(t, tt.src))
		})
	}
}

func TestParseCompound(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			"if elif else",
			"if x > 1:\n    y = 2\nelif x:\n    pass\nelse:\n    z()\n",
			"(if (cmp x > 1) (body (assign y 2)) (else (elif x (body (pass)) (else (expr (call z))))))",
		},
		{
			"walrus",
			"if (n := len(a)) > 10:\n    pass\n",
			"(if (cmp (:= n (call len a)) > 10) (body (pass)))",
		},
		{
			"while else",
			"while x:\n    break\nelse:\n    continue\n",
			"(while x (body (break)) (else (continue)))",
		},
		{
			"for comprehension",
			"for i, x in enumerate(xs):\n    ys = [v * 2 for v in x if v]\n",
			"(for (tuple i x) (call enumerate xs) (body (assign ys (listcomp (* v 2) (for v x (if v))))))",
		},
		{
			"def",
			"def f(a, b=1, *args, c, **kw) -> int:\n    return a + b\n",
			"(def f (params a b=1 *args c **kw) (returns int) (body (return (+ a b))))",
		},
		{
			"def markers",
			"def f(a, /, b, *, c):\n    pass\n",
			"(def f (params a / b * c) (body (pass)))",
		},
		{
			"decorated class",
			"@dataclass\nclass A(B, metaclass=M):\n    x: int = 0\n",
			"(class A (decorators dataclass) B metaclass=M (body (annassign x int 0)))",
		},
		{
			"decorated def",
			"@app.route(\"/\")\ndef index():\n    return \"hi\"\n",
			`(def index (decorators (call (attr app route) "/")) (params) (body (return "hi")))`,
		},
		{
			"try",
			"try:\n    a()\nexcept (E1, E2) as e:\n    raise X from e\nfinally:\n    b()\n",
			"(try (body (expr (call a))) (except (tuple E1 E2) e (body (raise X e))) (finally (expr (call b))))",
		},
		{
			"with",
			"with open(p) as f, lock:\n    pass\n",
			"(with (item (call open p) f) (item lock) (body (pass)))",
		},
		{
			"with parenthesized items",
			"with (open(a) as f, open(b) as g):\n    pass\n",
			"(with (item (call open a) f) (item (call open b) g) (body (pass)))",
		},
		{
			"with parenthesized expression",
			"with (a) as b:\n    pass\n",
			"(with (item a b) (body (pass)))",
		},
		{
			"async",
			"async def f():\n    await g()\n    async for x in y:\n        pass\n    async with z as w:\n        pass\n",
			"(async-def f (params) (body (expr (await (call g))) (async-for x y (body (pass))) (async-with (item z w) (body (pass)))))",
		},
		{
			"yield",
			"def g():\n    yield 1\n    x = yield\n    yield from h()\n",
			"(def g (params) (body (expr (yield 1)) (assign x (yield)) (expr (yield-from (call h)))))",
		},
		{
			"match",
			"match cmd:\n    case [\"go\", arah]:\n        pergi(arah)\n    case Point(x=0, y=yy) | None:\n        pass\n" +
				"    case {\"k\": v, **rest} if v:\n        pass\n    case (1 | -2) as n:\n        pass\n" +
				"    case warna.MERAH:\n        pass\n    case _:\n        pass\n",
			`(match cmd (case (seq "go" arah) (body (expr (call pergi arah))))` +
				` (case (| (cls Point x=0 y=yy) None) (body (pass)))` +
				` (case (mapping "k":v **rest) (if v) (body (pass)))` +
				` (case (as (| 1 (- 2)) n) (body (pass)))` +
				` (case (attr warna MERAH) (body (pass)))` +
				` (case _ (body (pass))))`,
		},
		{
			"match open sequence and star",
			"match a, b:\n    case x, *rest:\n        pass\n    case (y,):\n        pass\n",
			"(match (tuple a b) (case (seq x *rest) (body (pass))) (case (seq y) (body (pass))))",
		},
		{
			"match and case as names",
			"match = case = 1\nmatch(case)\n",
			"(assign match case 1)\n(expr (call match case))",
		},
		{
			"comments and blank lines",
			"# top\n\nif x:  # why\n\n    # inside\n    y()\n",
			"(if x (body (expr (call y))))",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dump(t, tt.src))
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"adjacent expressions", "jika x > 1:", `test.py:1:6: syntax error: unexpected name "x", expected newline`},
		{"unexpected indent", "    x = 1", "test.py:1:5: syntax error: unexpected indent"},
		{"missing block", "if x:\npass\n", "test.py:2:1: syntax error: expected an indented block"},
		{"assign to call", "f() = 1", "test.py:1:1: syntax error: cannot assign to expression"},
		{"dangling assign", "x = ", "test.py:1:5: syntax error: unexpected newline"},
		{"keyword as name", "def return(): pass", `test.py:1:5: syntax error: unexpected keyword "return", expected name`},
		{"try without handler", "try:\n    pass\n", "syntax error: expected 'except' or 'finally' block"},
		{"stray else", "else:\n    pass\n", `test.py:1:1: syntax error: unexpected keyword "else"`},
		{"f-string empty field", `x = f"{}"`, "test.py:1:5: syntax error: f-string: empty expression not allowed"},
		{"f-string single brace", `x = f"a } b"`, "test.py:1:5: syntax error: f-string: single '}' is not allowed"},
		{"f-string bad field", `x = f"{a b}"`, `test.py:1:10: syntax error: unexpected name "b"`},
		{"match without case", "match x:\n    pass\n", "test.py:1:7: syntax error"},
		{"case without body", "match x:\n    case 1:\n", "syntax error: expected an indented block"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("test.py", tt.src)
			require.Error(t, err)
			var perr *Error
			require.ErrorAs(t, err, &perr)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestTokenizerErrorsPassThrough(t *testing.T) {
	_, err := Parse("test.py", "print(")
	require.Error(t, err)
	var serr *scanner.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 1, serr.Pos.Line)
}

func TestNameOffsets(t *testing.T) {
	src := "if benar:\n    cetak(x.tambah(y), end=z)\n"
	f, err := Parse("test.py", src)
	require.NoError(t, err)
	assert.Equal(t, src, f.Source)

	var names []string
	ast.Inspect(f, func(n ast.Node) bool {
		if name, ok := n.(*ast.Name); ok {
			assert.Equal(t, name.ID, src[name.Offset:name.Offset+len(name.ID)])
			names = append(names, name.ID)
		}
		return true
	})
	// "tambah" is an attribute member and "end" a keyword name: not Names
	assert.Equal(t, []string{"benar", "cetak", "x", "y", "z"}, names)
}

func TestFieldAndPatternNames(t *testing.T) {
	src := "cetak(f'''{a}\n{b:{c}} {{d}}''')\nmatch x:\n    case warna.MERAH | [y, *z] if w:\n        pass\n"
	f, err := Parse("test.py", src)
	require.NoError(t, err)

	var names []string
	ast.Inspect(f, func(n ast.Node) bool {
		if name, ok := n.(*ast.Name); ok {
			assert.Equal(t, name.ID, src[name.Offset:name.Offset+len(name.ID)])
			names = append(names, name.ID)
		}
		return true
	})
	// d is literal text, y and z are captures
	assert.Equal(t, []string{"cetak", "a", "b", "c", "x", "warna", "w"}, names)
}

func TestParserReuse(t *testing.T) {
	p := &Parser{}
	_, err := p.Parse("a.py", []byte("x = (\n"))
	require.Error(t, err)
	f, err := p.Parse("b.py", []byte("y = 1\n"))
	require.NoError(t, err)
	assert.Equal(t, "(assign y 1)", ast.Dump(f))
}

func TestParseLargeProgram(t *testing.T) {
	var sb strings.Builder
	for i := range 200 {
		sb.WriteString("def f")
		sb.WriteString(strings.Repeat("x", i%7+1))
		sb.WriteString("(a):\n    if a:\n        return [b for b in a]\n    return None\n\n")
	}
	f, err := Parse("big.py", sb.String())
	require.NoError(t, err)
	assert.Len(t, f.Body, 200)
}
