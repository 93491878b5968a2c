package scanner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// kinds renders a token stream compactly: names, numbers, strings and
// operators by their text, structure tokens by kind.
func kinds(t *testing.T, src string) string {
	t.Helper()
	toks, _, err := Tokenize("test.py", src)
	require.NoError(t, err)
	var parts []string
	for _, tok := range toks {
		switch tok.Kind {
		case NAME, NUMBER, STRING, OP:
			parts = append(parts, tok.Text)
		default:
			parts = append(parts, tok.Kind.String())
		}
	}
	return strings.Join(parts, " ")
}

func TestSimpleLine(t *testing.T) {
	assert.Equal(t, `print ( "halo" ) NEWLINE EOF`, kinds(t, `print("halo")`))
}

func TestIndentDedent(t *testing.T) {
	src := "if x:\n    y = 1\n    if z:\n        w()\nprint(y)\n"
	assert.Equal(t,
		"if x : NEWLINE INDENT y = 1 NEWLINE if z : NEWLINE INDENT w ( ) NEWLINE DEDENT DEDENT print ( y ) NEWLINE EOF",
		kinds(t, src))
}

func TestDedentAtEOF(t *testing.T) {
	assert.Equal(t, "def f ( ) : NEWLINE INDENT pass NEWLINE DEDENT EOF", kinds(t, "def f():\n    pass"))
}

func TestBlankAndCommentLines(t *testing.T) {
	src := "# header\n\nx = 1  # trailing\n\n   \n    # indented comment\ny = 2\n"
	assert.Equal(t, "x = 1 NEWLINE y = 2 NEWLINE EOF", kinds(t, src))
}

func TestBracketContinuation(t *testing.T) {
	src := "x = [\n    1,\n  2,\n]\ny = 3\n"
	assert.Equal(t, "x = [ 1 , 2 , ] NEWLINE y = 3 NEWLINE EOF", kinds(t, src))
}

func TestBackslashContinuation(t *testing.T) {
	assert.Equal(t, "x = 1 + 2 NEWLINE EOF", kinds(t, "x = 1 + \\\n    2\n"))
}

func TestStrings(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`'a'`, `'a' NEWLINE EOF`},
		{`"it's"`, `"it's" NEWLINE EOF`},
		{`"a\"b"`, `"a\"b" NEWLINE EOF`},
		{`f"{x}"`, `f"{x}" NEWLINE EOF`},
		{`rb'\d'`, `rb'\d' NEWLINE EOF`},
		{`"""a` + "\n" + `b"""`, `"""a` + "\n" + `b""" NEWLINE EOF`},
		{`'' ''`, `'' '' NEWLINE EOF`},
		{`ra = 1`, `ra = 1 NEWLINE EOF`},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, kinds(t, tt.src))
		})
	}
}

func TestNumbers(t *testing.T) {
	assert.Equal(t, "x = 1_000 + 0xFF + 1.5e-3 + .5 + 2j NEWLINE EOF",
		kinds(t, "x = 1_000 + 0xFF + 1.5e-3 + .5 + 2j"))
}

func TestOperators(t *testing.T) {
	assert.Equal(t, "a **= b // c -> d := ... != e NEWLINE EOF",
		kinds(t, "a **= b // c -> d := ... != e"))
}

func TestUnicodeNames(t *testing.T) {
	toks, _, err := Tokenize("t.py", "café = naïve")
	require.NoError(t, err)
	require.Equal(t, NAME, toks[0].Kind)
	assert.Equal(t, "café", toks[0].Text)
	assert.Equal(t, "naïve", toks[2].Text)
}

func TestOffsetsAndPositions(t *testing.T) {
	src := "x = 1\nif y:\n    cetak(y)\n"
	toks, file, err := Tokenize("prog.py", src)
	require.NoError(t, err)

	var cetak Token
	for _, tok := range toks {
		if tok.Text == "cetak" {
			cetak = tok
		}
	}
	require.Equal(t, NAME, cetak.Kind)
	assert.Equal(t, "cetak", src[cetak.Offset:cetak.End()])
	pos := file.Position(cetak.Pos)
	assert.Equal(t, 3, pos.Line)
	assert.Equal(t, 5, pos.Column)
	assert.Equal(t, "prog.py:3:5", pos.String())
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"unclosed bracket", "print(", "t.py:1:7: unexpected EOF: unclosed bracket"},
		{"unmatched close", "x)", "t.py:1:2: unmatched ')'"},
		{"unterminated string", "x = 'abc\n", "t.py:1:5: unterminated string literal"},
		{"unterminated triple", `x = """abc`, "t.py:1:5: unterminated triple-quoted string literal"},
		{"bad dedent", "if x:\n        a\n    b\n", "t.py:3:5: unindent does not match any outer indentation level"},
		{"invalid char", "x = $", "t.py:1:5: invalid character '$'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Tokenize("t.py", tt.src)
			require.Error(t, err)
			var serr *Error
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestNextAfterEOF(t *testing.T) {
	s := New("t.py", "")
	tok, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, EOF, tok.Kind)
	tok, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, EOF, tok.Kind)
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	assert.True(t, IsKeyword("return"))
	assert.True(t, IsKeyword("None"))
	assert.False(t, IsKeyword("print"))

	assert.True(t, IsIdentifier("append"))
	assert.True(t, IsIdentifier("_x1"))
	assert.False(t, IsIdentifier("return"))
	assert.False(t, IsIdentifier("statistics.mean"))
	assert.False(t, IsIdentifier("1x"))
	assert.False(t, IsIdentifier(""))
}

func TestBrackets(t *testing.T) {
	for _, ch := range []byte("([{") {
		assert.True(t, IsOpenBracket(ch))
		assert.False(t, IsCloseBracket(ch))
	}
	for _, ch := range []byte(")]}") {
		assert.True(t, IsCloseBracket(ch))
		assert.False(t, IsOpenBracket(ch))
	}
}
