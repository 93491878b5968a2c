package runner

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

// quiet prompts so only the caller's own prompt is shown
const sessionInit = "import sys; sys.ps1 = sys.ps2 = ''\n"

// Session is a long-lived interactive interpreter fed one line at a time.
type Session struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
}

// StartSession starts an unbuffered interactive interpreter writing to
// stdout and stderr.
func StartSession(ctx context.Context, interpreter string, stdout, stderr io.Writer) (*Session, error) {
	if interpreter == "" {
		interpreter = DefaultInterpreter
	}
	c := exec.CommandContext(ctx, interpreter, "-i", "-q", "-u")
	c.Stdout = stdout
	c.Stderr = stderr
	in, err := c.StdinPipe()
	if err != nil {
		return nil, err
	}
	if err := c.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", interpreter, err)
	}
	s := &Session{cmd: c, stdin: in}
	if _, err := io.WriteString(in, sessionInit); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Send writes one line of translated source to the interpreter.
func (s *Session) Send(line string) error {
	_, err := io.WriteString(s.stdin, line+"\n")
	return err
}

// Close ends the input and waits for the interpreter to exit.
func (s *Session) Close() error {
	if err := s.stdin.Close(); err != nil {
		return err
	}
	return s.cmd.Wait()
}
