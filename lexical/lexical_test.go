package lexical_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/rubiojr/pys/lexical"
	"github.com/rubiojr/pys/mapping"
)

func TestSubstitute(t *testing.T) {
	s := lexical.New(mapping.Indonesian())
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"call", `cetak("halo")`, `print("halo")`},
		{"loop", "untuk i dalam rentang(10):", "for i in range(10):"},
		{"indent kept", "    kembalikan benar", "    return True"},
		{"qualified", "x = rata_rata(angka)", "x = statistics.mean(angka)"},
		{"longest match", "x = tidak_ada", "x = None"},
		{"negation", "jika tidak x:", "if not x:"},
		{"prefix of identifier", "cetakan = 1", "cetakan = 1"},
		{"suffix of identifier", "pracetak = 1", "pracetak = 1"},
		{"underscore joins", "cetak_x = 1", "cetak_x = 1"},
		{"unicode letter joins", "écetak = 1", "écetak = 1"},
		{"attribute", "daftar_saya.tambah(3)", "daftar_saya.append(3)"},
		{"digits join", "cetak2 = 1", "cetak2 = 1"},
		{"inside strings too", `cetak("cetak")`, `print("print")`},
		{"trailing comment translated", "cetak(x)  # cetak", "print(x)  # print"},
		{"unmapped", "nama = 'Budi'", "nama = 'Budi'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Substitute(tt.in))
		})
	}
}

func TestSubstituteSkipsBlankAndComments(t *testing.T) {
	s := lexical.New(mapping.Indonesian())
	for _, line := range []string{"", "   ", "\t", "# cetak ini", "    # untuk semua"} {
		assert.Equal(t, line, s.Substitute(line))
	}
}

func TestQualifiedReplacementIsNotRescanned(t *testing.T) {
	s := lexical.New(mapping.Indonesian())
	assert.Equal(t, "y = statistics.mean(x)", s.Substitute("y = mean(x)"))
	assert.Equal(t, "y = statistics.mean(x)", s.Substitute("y = statistics.mean(x)"))
	assert.Equal(t, "y = statistics.median(x)", s.Substitute("y = statistics.median(x)"))
}

func TestIdempotentOnTranslatedText(t *testing.T) {
	s := lexical.New(mapping.Indonesian())
	lines := []string{
		`print("halo")`,
		"for i in range(10):",
		"    return True",
		"x = statistics.mean(nums)",
		"conn = sqlite3.connect('data.db')",
		"if not x and y or z:",
	}
	for _, line := range lines {
		once := s.Substitute(line)
		assert.Equal(t, line, once)
		assert.Equal(t, once, s.Substitute(once))
	}
}

func TestLongestMatchPrecedence(t *testing.T) {
	tbl := mapping.NewBuilder(language.Und).
		Add("or", "atau").
		Add("if", "jika").
		Add("elif", "atau jika").
		Build()
	s := lexical.New(tbl)
	assert.Equal(t, "elif x:", s.Substitute("atau jika x:"))
	assert.Equal(t, "a or b", s.Substitute("a atau b"))
	assert.Equal(t, "if a or b:", s.Substitute("jika a atau b:"))
}

func TestIsWordRune(t *testing.T) {
	for _, r := range []rune{'a', 'Z', '_', '7', 'é', 'ß', '\u0301'} {
		assert.True(t, lexical.IsWordRune(r), "%q", r)
	}
	for _, r := range []rune{' ', '.', '(', '"', '#', '-'} {
		assert.False(t, lexical.IsWordRune(r), "%q", r)
	}
}
