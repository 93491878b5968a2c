// Package runner hands translated units to an external Python interpreter.
package runner

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rubiojr/pys/loader"
)

// DefaultInterpreter is used when Python.Interpreter is empty.
const DefaultInterpreter = "python3"

// OriginEnv names the environment variable holding the path the running
// unit was read from.
const OriginEnv = "PYS_ORIGIN"

// Python runs units with a python3 process. It implements loader.Executor.
//
// The translated text is written to a scratch file named after the unit so
// tracebacks carry a recognizable file name, and the interpreter's standard
// streams are connected to Stdin, Stdout and Stderr.
type Python struct {
	Interpreter string
	Dir         string   // working directory, defaults to the current one
	Args        []string // passed to the program as sys.argv[1:]
	Env         []string // extra KEY=VALUE pairs
	Stdin       io.Reader
	Stdout      io.Writer
	Stderr      io.Writer
}

// Execute writes unit to a scratch file and runs it. A non-zero exit comes
// back as *exec.ExitError.
func (p *Python) Execute(ctx context.Context, unit *loader.Unit) error {
	dir, err := os.MkdirTemp("", "pys-run-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	script := filepath.Join(dir, unit.Name+".py")
	if err := os.WriteFile(script, []byte(unit.Source), 0o600); err != nil {
		return err
	}
	return p.RunFile(ctx, script, unit.Origin)
}

// RunFile runs an already translated script.
func (p *Python) RunFile(ctx context.Context, script, origin string) error {
	c := exec.CommandContext(ctx, p.interpreter(), append([]string{script}, p.Args...)...)
	c.Dir = p.Dir
	c.Env = append(os.Environ(), p.Env...)
	if origin != "" {
		c.Env = append(c.Env, OriginEnv+"="+origin)
	}
	c.Stdin = p.Stdin
	c.Stdout = p.Stdout
	c.Stderr = p.Stderr
	return c.Run()
}

func (p *Python) interpreter() string {
	if p.Interpreter == "" {
		return DefaultInterpreter
	}
	return p.Interpreter
}
