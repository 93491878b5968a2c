package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/rubiojr/pys/mapping"
	"github.com/rubiojr/pys/remote"
)

const dictExt = ".yaml"

// dictsDir returns the directory holding installed dictionaries, creating
// it if needed. Checks PYS_DICTS_DIR first, falls back to ~/.pys/dicts.
func dictsDir() (string, error) {
	dir := os.Getenv("PYS_DICTS_DIR")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".pys", "dicts")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating dictionaries directory: %w", err)
	}
	return dir, nil
}

// dictPath returns the install path of the dictionary called name.
func dictPath(name string) (string, error) {
	dir, err := dictsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, strings.TrimSuffix(name, dictExt)+dictExt), nil
}

// installedDictionaries returns the installed dictionary files sorted by
// name, which is also the order they are layered in.
func installedDictionaries() ([]string, error) {
	dir, err := dictsDir()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading dictionaries directory: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != dictExt {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// fetchLogger is the logger for remote fetches, which run without an app.
func fetchLogger(cmd *cli.Command) zerolog.Logger {
	level := zerolog.WarnLevel
	if l, err := zerolog.ParseLevel(cmd.String("log-level")); err == nil && cmd.IsSet("log-level") {
		level = l
	}
	if cmd.Bool("debug") {
		level = zerolog.DebugLevel
	}
	return newLogger(errWriter(cmd), level)
}

func dictInstallAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("usage: pys dict install <file.yaml|host/owner/repo[/path][@version]>")
	}
	src := cmd.Args().First()
	name := filepath.Base(src)

	if _, statErr := os.Stat(src); statErr != nil && remote.IsRemote(src) {
		p, err := remote.Parse(src)
		if err != nil {
			return err
		}
		// PYS_CACHE_DIR overrides the default ~/.pys/cache
		f := &remote.Fetcher{CacheDir: os.Getenv("PYS_CACHE_DIR"), Log: fetchLogger(cmd)}
		if src, err = f.Fetch(ctx, src); err != nil {
			return err
		}
		name = p.Name()
	}

	// validate before copying so a broken file never gets installed
	if _, err := mapping.LoadFile(src); err != nil {
		return err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	dst, err := dictPath(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("installing dictionary: %w", err)
	}
	fmt.Fprintf(outWriter(cmd), "installed %s → %s\n", strings.TrimSuffix(name, dictExt), dst)
	return nil
}

func dictListAction(ctx context.Context, cmd *cli.Command) error {
	out := outWriter(cmd)
	paths, err := installedDictionaries()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Fprintln(out, "No dictionaries installed. Run 'pys dict install <file.yaml>' to add one.")
		return nil
	}

	tw := tablewriter.NewWriter(out)
	tw.Header("Name", "Locale", "Groups", "Description")
	for _, p := range paths {
		name := strings.TrimSuffix(filepath.Base(p), dictExt)
		d, err := mapping.LoadFile(p)
		if err != nil {
			if err := tw.Append([]string{name, "", "", "invalid: " + err.Error()}); err != nil {
				return err
			}
			continue
		}
		if err := tw.Append([]string{name, d.Tag().String(), fmt.Sprint(len(d.Groups)), d.Description}); err != nil {
			return err
		}
	}
	return tw.Render()
}

func dictRemoveAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("usage: pys dict remove <name>")
	}

	name := cmd.Args().First()
	path, err := dictPath(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("dictionary not installed: %s", name)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("removing dictionary: %w", err)
	}

	fmt.Fprintf(outWriter(cmd), "removed %s\n", name)
	return nil
}
