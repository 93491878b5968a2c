package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/pys/config"
	"github.com/rubiojr/pys/engine"
	"github.com/rubiojr/pys/mapping"
)

// run executes the CLI with args and a private dictionaries directory, and
// returns its standard output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PYS_DICTS_DIR", t.TempDir())
	return execCLI(args...)
}

func execCLI(args ...string) (string, error) {
	var out, errOut bytes.Buffer
	c := newCommand("test")
	c.Writer = &out
	c.ErrWriter = &errOut
	err := c.Run(context.Background(), append([]string{"pys"}, args...))
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestEmit(t *testing.T) {
	path := writeFile(t, t.TempDir(), "hitung.py", "angka = [1, 2]\ncetak(rata_rata(angka))\n")
	out, err := run(t, "emit", path)
	require.NoError(t, err)
	assert.Equal(t, "import statistics\n\nangka = [1, 2]\nprint(statistics.mean(angka))\n", out)
}

func TestEmitWithExtraDictionary(t *testing.T) {
	dir := t.TempDir()
	dict := writeFile(t, dir, "extra.yaml", "groups:\n  - target: print\n    sources: [umumkan]\n")
	path := writeFile(t, dir, "a.py", "umumkan(1)\n")

	out, err := run(t, "--dict", dict, "emit", path)
	require.NoError(t, err)
	assert.Equal(t, "print(1)\n", out)
}

func TestEmitMissingFile(t *testing.T) {
	_, err := run(t, "emit", filepath.Join(t.TempDir(), "hilang.py"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "module not found")
}

func TestDocToken(t *testing.T) {
	out, err := run(t, "doc", "rata_rata")
	require.NoError(t, err)
	assert.Contains(t, out, "rata_rata → statistics.mean")

	_, err = run(t, "doc", "tidak_dikenal")
	assert.Error(t, err)
}

func TestDocFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "lib.py", "# Menjumlahkan.\ndef tambah_dua(a, b):\n    kembali a + b\n")
	out, err := run(t, "doc", path, "tambah_dua")
	require.NoError(t, err)
	assert.Equal(t, "def tambah_dua(a, b)\n    Menjumlahkan.\n", out)
}

func TestConfigCommand(t *testing.T) {
	out, err := run(t, "--python", "python3.12", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "line_cache_size: 10000")
	assert.Contains(t, out, "interpreter: python3.12")
}

func TestDictCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PYS_DICTS_DIR", dir)
	src := writeFile(t, t.TempDir(), "jawa.yaml", "locale: jv\ndescription: Javanese spellings\ngroups:\n  - target: print\n    sources: [tulisen]\n")

	_, err := execCLI("dict", "install", src)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "jawa.yaml"))

	paths, err := installedDictionaries()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "jawa.yaml")}, paths)

	out, err := execCLI("dict", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Javanese spellings")

	table, err := buildTable(nil, zerolog.Nop())
	require.NoError(t, err)
	got, ok := table.Lookup("tulisen")
	assert.True(t, ok)
	assert.Equal(t, "print", got)

	_, err = execCLI("dict", "remove", "jawa")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "jawa.yaml"))
}

func TestDictInstallRejectsInvalid(t *testing.T) {
	t.Setenv("PYS_DICTS_DIR", t.TempDir())
	src := writeFile(t, t.TempDir(), "rusak.yaml", "groups:\n  - target: print\n")
	_, err := execCLI("dict", "install", src)
	require.ErrorIs(t, err, mapping.ErrInvalidEntry)
}

func TestDictInstallRemoteFromCache(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PYS_DICTS_DIR", dir)
	cache := t.TempDir()
	t.Setenv("PYS_CACHE_DIR", cache)
	repo := filepath.Join(cache, "github.com", "user", "jawa", "v1.0.0")
	require.NoError(t, os.MkdirAll(repo, 0o755))
	writeFile(t, repo, "jawa.yaml",
		"locale: jv\ngroups:\n  - target: print\n    sources: [tulisen]\n")

	out, err := execCLI("dict", "install", "github.com/user/jawa@v1.0.0")
	require.NoError(t, err)
	assert.Contains(t, out, "installed jawa")
	assert.FileExists(t, filepath.Join(dir, "jawa.yaml"))
}

type lines []string

func (l *lines) ReadLine() (string, error) {
	if len(*l) == 0 {
		return "", io.EOF
	}
	line := (*l)[0]
	*l = (*l)[1:]
	return line, nil
}

func testApp() *app {
	table := mapping.Indonesian()
	return &app{cfg: config.Default(), log: zerolog.Nop(), table: table, engine: engine.New(table)}
}

func TestREPL(t *testing.T) {
	a := testApp()
	in := &lines{"x = benar", "jika x:", "    cetak(x)", "", "stats()", "clear_cache()", "keluar()", "cetak(1)"}
	var out bytes.Buffer
	var sent []string

	err := a.repl(in, &out, func(s string) error {
		sent = append(sent, s)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"x = True", "if x:", "    print(x)", ""}, sent)
	assert.Contains(t, out.String(), "cache_misses")
	assert.Contains(t, out.String(), "Cache cleared!")
	assert.Zero(t, a.engine.Stats().CacheSize)
}

func TestREPLEndsAtEOF(t *testing.T) {
	var sent []string
	err := testApp().repl(&lines{"cetak(1)"}, io.Discard, func(s string) error {
		sent = append(sent, s)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"print(1)"}, sent)
}

func TestPreludeImports(t *testing.T) {
	assert.Equal(t, []string{"import sqlite3", "import statistics"}, preludeImports(mapping.Indonesian()))
}

func TestPrintStats(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printStats(&out, engine.Stats{CacheHits: 1, CacheMisses: 1, HitRate: 50}))
	assert.Contains(t, out.String(), "hit_rate")
	assert.Contains(t, out.String(), "50.0%")
}

func TestWatchFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.py", "cetak(1)\n")
	abs, err := filepath.Abs(path)
	require.NoError(t, err)

	w, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Add(filepath.Dir(abs)))

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() { done <- watchFile(ctx, w, abs, changes, zerolog.Nop()) }()

	writeFile(t, dir, "other.py", "x")
	require.NoError(t, os.WriteFile(path, []byte("cetak(2)\n"), 0o644))

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestIsPysScript(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, isPysScript(writeFile(t, dir, "skrip", "#!/usr/bin/env pys\ncetak(1)\n")))
	assert.False(t, isPysScript(writeFile(t, dir, "sh", "#!/bin/sh\necho\n")))
	assert.False(t, isPysScript(dir))
}
