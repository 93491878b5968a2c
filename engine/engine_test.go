package engine_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/pys/engine"
	"github.com/rubiojr/pys/mapping"
	"github.com/rubiojr/pys/parser"
)

func newEngine(opts ...engine.Option) *engine.Engine {
	return engine.New(mapping.Indonesian(), opts...)
}

func TestTranslateBlock(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    string
		imports []string
	}{
		{"short call", `cetak("halo")`, `print("halo")`, nil},
		{"qualified call", "rata_rata(angka)", "statistics.mean(angka)", []string{"import statistics"}},
		{"keywords", "jika benar:\n    lanjut\n", "if True:\n    continue\n", nil},
		{"database", "db = buka_database('app.db')", "db = sqlite3.connect('app.db')", []string{"import sqlite3"}},
		{"unparsable block", "x = (\n", "x = (\n", nil},
		{
			"f-string field",
			"angka = [1, 2]\ncetak(f\"Rata-rata: {rata_rata(angka)}\")\n",
			"angka = [1, 2]\nprint(f\"Rata-rata: {statistics.mean(angka)}\")\n",
			[]string{"import statistics"},
		},
		{
			"match statement",
			"x = rata_rata([1, 2])\nmatch x:\n    case 1:\n        cetak(x)\n",
			"x = statistics.mean([1, 2])\nmatch x:\n    case 1:\n        print(x)\n",
			[]string{"import statistics"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newEngine().TranslateBlock(tt.src)
			assert.Equal(t, tt.want, res.Text)
			if tt.imports == nil {
				assert.Empty(t, res.Imports)
			} else {
				assert.Equal(t, tt.imports, res.Imports)
			}
		})
	}
}

func TestTranslateBlockGolden(t *testing.T) {
	for _, name := range []string{"statistics", "collections"} {
		t.Run(name, func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join("testdata", name+".py"))
			require.NoError(t, err)

			res := newEngine().TranslateBlock(string(src))
			var out strings.Builder
			if len(res.Imports) > 0 {
				out.WriteString(strings.Join(res.Imports, "\n"))
				out.WriteString("\n\n")
			}
			out.WriteString(res.Text)

			g := goldie.New(t)
			g.Assert(t, name, []byte(out.String()))
		})
	}
}

func TestTranslateLineCacheHit(t *testing.T) {
	e := newEngine()
	line := "x = panjang(data_saya)"

	first := e.TranslateLine(line)
	second := e.TranslateLine(line)
	assert.Equal(t, "x = len(data_saya)", first)
	assert.Equal(t, first, second)

	want := engine.Stats{
		CacheHits:     1,
		CacheMisses:   1,
		Translations:  1,
		TreeRewrites:  1,
		HitRate:       50,
		CacheSize:     1,
		TreeCacheSize: 1,
	}
	if diff := cmp.Diff(want, e.Stats()); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestTranslateLineFString(t *testing.T) {
	e := newEngine()
	assert.Equal(t, `print(f"Total nilai: {sum(angka)}")`, e.TranslateLine(`cetak(f"Total nilai: {jumlah(angka)}")`))
	assert.Equal(t, `print(f"Rata: {statistics.mean(x)}")`, e.TranslateLine(`cetak(f"Rata: {rata_rata(x)}")`))
	assert.Equal(t, uint64(2), e.Stats().TreeRewrites)
}

func TestSkippableLines(t *testing.T) {
	e := newEngine()
	for _, line := range []string{"", "   ", "# cetak(halo)", "    # jika"} {
		assert.Equal(t, line, e.TranslateLine(line))
	}
	assert.Equal(t, engine.Stats{}, e.Stats())
}

func TestShortLinesUseLexicalPath(t *testing.T) {
	e := newEngine()
	assert.Equal(t, `print("halo")`, e.TranslateLine(`cetak("halo")`))
	assert.Equal(t, "x = True", e.TranslateLine("x = benar"))

	s := e.Stats()
	assert.Zero(t, s.TreeRewrites)
	assert.Zero(t, s.TreeFallbacks)
	assert.Equal(t, uint64(2), s.Translations)
}

func TestFallback(t *testing.T) {
	var got []engine.Fallback
	e := newEngine(engine.WithOnFallback(func(f engine.Fallback) {
		got = append(got, f)
	}))

	assert.Equal(t, "for i in range(10):", e.TranslateLine("untuk i dalam rentang(10):"))
	assert.Equal(t, `    print("indented line here")`, e.TranslateLine(`    cetak("indented line here")`))

	require.Len(t, got, 2)
	assert.Equal(t, "untuk i dalam rentang(10):", got[0].Text)
	var perr *parser.Error
	assert.ErrorAs(t, got[0].Err, &perr)

	s := e.Stats()
	assert.Equal(t, uint64(2), s.TreeFallbacks)
	assert.Zero(t, s.TreeRewrites)
}

func TestTreeCacheKeepsFailures(t *testing.T) {
	fallbacks := 0
	e := newEngine(engine.WithOnFallback(func(engine.Fallback) { fallbacks++ }))
	line := "untuk i dalam rentang(10):"

	e.TranslateLine(line)
	e.ClearLineCache()
	assert.Equal(t, "for i in range(10):", e.TranslateLine(line))

	assert.Equal(t, 2, fallbacks)
	assert.Equal(t, 1, e.Stats().TreeCacheSize)
}

func TestComplexThreshold(t *testing.T) {
	e := newEngine(engine.WithComplexThreshold(0))
	assert.Equal(t, "obj.hasil()", e.TranslateLine("obj.hasil()"))
	assert.Equal(t, uint64(1), e.Stats().TreeRewrites)

	// the lexical path renames the member as well
	lex := newEngine()
	assert.Equal(t, "obj.return()", lex.TranslateLine("obj.hasil()"))
	assert.Zero(t, lex.Stats().TreeRewrites)
}

func TestLineCacheBound(t *testing.T) {
	e := newEngine(engine.WithLineCacheSize(2))
	e.TranslateLine("a = benar")
	e.TranslateLine("b = salah")
	e.TranslateLine("c = kosong")
	assert.Equal(t, 2, e.Stats().CacheSize)

	// "a = benar" was evicted
	e.TranslateLine("a = benar")
	s := e.Stats()
	assert.Zero(t, s.CacheHits)
	assert.Equal(t, uint64(4), s.CacheMisses)
}

func TestClearCaches(t *testing.T) {
	e := newEngine()
	e.TranslateBlock("x = panjang(data_saya)\ncetak(x)\n")
	before := e.Stats()
	require.Equal(t, 2, before.CacheSize)
	require.Positive(t, before.TreeCacheSize)

	e.ClearCaches()
	after := e.Stats()
	assert.Zero(t, after.CacheSize)
	assert.Zero(t, after.TreeCacheSize)
	if diff := cmp.Diff(before, after, cmpopts.IgnoreFields(engine.Stats{}, "CacheSize", "TreeCacheSize")); diff != "" {
		t.Errorf("counters changed (-before +after):\n%s", diff)
	}

	e.TranslateLine("cetak(x)")
	assert.Equal(t, before.CacheMisses+1, e.Stats().CacheMisses)
}

func TestHitRate(t *testing.T) {
	e := newEngine()
	assert.Zero(t, e.Stats().HitRate)

	for range 3 {
		e.TranslateLine("x = benar")
	}
	e.TranslateLine("y = salah")
	assert.InDelta(t, 50.0, e.Stats().HitRate, 0.001)
}

func TestWithClock(t *testing.T) {
	calls := 0
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e := newEngine(engine.WithClock(func() time.Time {
		calls++
		return now
	}))
	e.TranslateLine("x = benar")
	assert.Positive(t, calls)
}

func TestIdempotent(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("testdata", "statistics.py"))
	require.NoError(t, err)

	once := newEngine().TranslateBlock(string(src))
	twice := newEngine().TranslateBlock(once.Text)
	assert.Equal(t, once.Text, twice.Text)
	assert.Equal(t, once.Imports, twice.Imports)
}
