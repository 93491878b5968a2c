package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/rubiojr/pys/mapping"
	"github.com/rubiojr/pys/runner"
)

const prompt = ">>> "

// lineReader is satisfied by *term.Terminal.
type lineReader interface {
	ReadLine() (string, error)
}

// promptReader reads lines from a non-terminal, printing the prompt first.
type promptReader struct {
	sc  *bufio.Scanner
	out io.Writer
}

func (r *promptReader) ReadLine() (string, error) {
	fmt.Fprint(r.out, prompt)
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.sc.Text(), nil
}

func replAction(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	var in lineReader
	out := a.stdout
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return err
		}
		defer term.Restore(fd, state)
		t := term.NewTerminal(struct {
			io.Reader
			io.Writer
		}{os.Stdin, os.Stdout}, prompt)
		in, out = t, t
	} else {
		in = &promptReader{sc: bufio.NewScanner(os.Stdin), out: out}
	}

	sess, err := runner.StartSession(ctx, a.cfg.Interpreter, out, out)
	if err != nil {
		return err
	}

	// qualified targets such as statistics.mean need their module up front
	for _, imp := range preludeImports(a.table) {
		if err := sess.Send(imp); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "pys interactive mode")
	fmt.Fprintln(out, "Type 'keluar()' or Ctrl+D to exit, 'stats()' for translation stats")
	fmt.Fprintln(out, strings.Repeat("-", 50))

	loopErr := a.repl(in, out, sess.Send)
	if err := sess.Close(); err != nil && loopErr == nil {
		a.log.Debug().Err(err).Msg("interpreter exited")
	}
	return loopErr
}

// preludeImports returns the imports every qualified target of table
// needs, sorted.
func preludeImports(table *mapping.Table) []string {
	seen := make(map[string]bool)
	var imports []string
	for _, g := range table.Groups() {
		if imp, ok := mapping.ImportFor(g.Target); ok && !seen[imp] {
			seen[imp] = true
			imports = append(imports, imp)
		}
	}
	sort.Strings(imports)
	return imports
}

// repl reads localized lines, handles the session commands and sends the
// translation of everything else to the interpreter.
func (a *app) repl(in lineReader, out io.Writer, send func(string) error) error {
	for {
		line, err := in.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.TrimSpace(line) {
		case "keluar()", "exit()", "quit()":
			return nil
		case "stats()":
			if err := printStats(out, a.engine.Stats()); err != nil {
				return err
			}
			continue
		case "clear_cache()":
			a.engine.ClearCaches()
			fmt.Fprintln(out, "Cache cleared!")
			continue
		}

		translated := a.engine.TranslateLine(line)
		if a.cfg.Debug && translated != line {
			fmt.Fprintf(out, "# %s\n", translated)
		}
		if err := send(translated); err != nil {
			return err
		}
	}
}
