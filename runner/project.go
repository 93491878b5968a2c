package runner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"go.trai.ch/zerr"

	"github.com/rubiojr/pys/loader"
)

// ErrNoMainFile is returned when a project has no entry file.
var ErrNoMainFile = zerr.New("no main file found")

// MainFiles are the project entry files, in lookup order.
var MainFiles = []string{"main.py", "app.py", "run.py", "__main__.py"}

// FindMain returns the path of the entry file of the project in dir.
func FindMain(dir string) (string, error) {
	for _, name := range MainFiles {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", zerr.With(fmt.Errorf("%w in %s", ErrNoMainFile, dir), "dir", dir)
}

// Project is a directory of localized modules importing each other.
type Project struct {
	Dir        string
	Translator loader.Translator
	Log        zerolog.Logger
}

// Translate writes the translated form of every .py file under the project
// directory to the same relative path under out, so imports between project
// modules resolve to translated code. It returns the number of files.
func (p *Project) Translate(out string) (int, error) {
	ld := loader.New(loader.FileSource{Root: p.Dir}, p.Translator, loader.WithLogger(p.Log))
	n := 0
	err := filepath.WalkDir(p.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != p.Dir && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".py" {
			return nil
		}
		rel, err := filepath.Rel(p.Dir, path)
		if err != nil {
			return err
		}
		u, err := ld.Load(rel)
		if err != nil {
			return err
		}
		dst := filepath.Join(out, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(dst, []byte(u.Source), 0o644); err != nil {
			return err
		}
		p.Log.Debug().Str("module", rel).Str("dest", dst).Msg("module mirrored")
		n++
		return nil
	})
	return n, err
}

// Run translates the project to a scratch directory and runs its entry file
// with py. The working directory is the project directory so relative data
// paths keep working.
func (p *Project) Run(ctx context.Context, py *Python) error {
	main, err := FindMain(p.Dir)
	if err != nil {
		return err
	}
	out, err := os.MkdirTemp("", "pys-project-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(out)

	if _, err := p.Translate(out); err != nil {
		return err
	}

	rel, err := filepath.Rel(p.Dir, main)
	if err != nil {
		return err
	}
	run := *py
	run.Dir = p.Dir
	origin, _ := filepath.Abs(main)
	if err := run.RunFile(ctx, filepath.Join(out, rel), origin); err != nil {
		name := strings.TrimSuffix(filepath.Base(main), ".py")
		return zerr.With(fmt.Errorf("%w %s: %w", loader.ErrModuleLoad, name, err), "module", name)
	}
	return nil
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "__pycache__" || name == "venv"
}
