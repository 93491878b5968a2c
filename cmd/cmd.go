package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/rubiojr/pys/config"
	"github.com/rubiojr/pys/doc"
	"github.com/rubiojr/pys/engine"
	"github.com/rubiojr/pys/loader"
	"github.com/rubiojr/pys/mapping"
	"github.com/rubiojr/pys/runner"
)

// Execute runs the pys CLI with the given version string.
func Execute(version string) {
	if err := newCommand(version).Run(context.Background(), os.Args); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// the program already reported its failure
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand(version string) *cli.Command {
	return &cli.Command{
		Name:                   "pys",
		Usage:                  "Run Python written with Indonesian keywords and builtins",
		Version:                version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
				Sources: cli.EnvVars("PYS_CONFIG"),
			},
			&cli.StringSliceFlag{
				Name:    "dict",
				Usage:   "Extra dictionary file (repeatable)",
				Sources: cli.EnvVars("PYS_DICT"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level: debug, info, warn, error",
				Sources: cli.EnvVars("PYS_LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Print original and translated source",
				Sources: cli.EnvVars("PYS_DEBUG"),
			},
			&cli.BoolFlag{
				Name:  "stats",
				Usage: "Print translation statistics when done",
			},
			&cli.StringFlag{
				Name:    "python",
				Usage:   "Python interpreter",
				Sources: cli.EnvVars("PYS_PYTHON"),
			},
		},
		// Allow `pys script.py` as shorthand for `pys run script.py`, and
		// run the demo program when no arguments are given.
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() == 0 {
				return demoAction(ctx, cmd)
			}
			arg := cmd.Args().First()
			if strings.HasSuffix(arg, ".py") || isPysScript(arg) {
				return runFile(ctx, cmd, arg, cmd.Args().Tail())
			}
			return cli.DefaultShowRootCommandHelp(cmd)
		},
		Commands: []*cli.Command{
			{
				Name:            "run",
				Usage:           "Translate and run a .py file",
				ArgsUsage:       "<file.py> [args...]",
				SkipFlagParsing: true,
				Action:          runAction,
			},
			{
				Name:      "emit",
				Usage:     "Output the translated Python source",
				ArgsUsage: "<file.py>",
				Action:    emitAction,
			},
			{
				Name:    "repl",
				Aliases: []string{"interactive"},
				Usage:   "Start an interactive session",
				Action:  replAction,
			},
			{
				Name:      "project",
				Usage:     "Run a multi-file project (main.py, app.py, run.py or __main__.py)",
				ArgsUsage: "<directory>",
				Action:    projectAction,
			},
			{
				Name:      "watch",
				Usage:     "Run a .py file and run it again whenever it changes",
				ArgsUsage: "<file.py> [args...]",
				Action:    watchAction,
			},
			{
				Name:      "doc",
				Usage:     "Show the dictionary, a token, or the documentation of a file",
				ArgsUsage: "[token | file.py | directory] [symbol]",
				Action:    docAction,
			},
			{
				Name:   "config",
				Usage:  "Print the effective configuration",
				Action: configAction,
			},
			{
				Name:  "dict",
				Usage: "Manage installed dictionaries",
				Commands: []*cli.Command{
					{
						Name:      "install",
						Usage:     "Validate and install a dictionary file or a dictionary from a git repository",
						ArgsUsage: "<file.yaml | host/owner/repo[/path][@version]>",
						Action:    dictInstallAction,
					},
					{
						Name:   "list",
						Usage:  "List installed dictionaries",
						Action: dictListAction,
					},
					{
						Name:      "remove",
						Usage:     "Remove an installed dictionary",
						ArgsUsage: "<name>",
						Action:    dictRemoveAction,
					},
				},
			},
		},
	}
}

// app holds what every command needs: settings, logger and the engine.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	table  *mapping.Table
	engine *engine.Engine
	stdout io.Writer
	stderr io.Writer
}

func newApp(cmd *cli.Command) (*app, error) {
	stderr := errWriter(cmd)
	log := newLogger(stderr, zerolog.WarnLevel)

	cfg, err := config.Load(cmd.String("config"), log)
	if err != nil {
		return nil, err
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	if cmd.IsSet("python") {
		cfg.Interpreter = cmd.String("python")
	}
	if cmd.Bool("debug") {
		cfg.Debug = true
	}
	cfg.Dictionaries = append(cfg.Dictionaries, cmd.StringSlice("dict")...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, _ := cfg.Level()
	log = log.Level(level)

	table, err := buildTable(cfg.Dictionaries, log)
	if err != nil {
		return nil, err
	}
	opts := append(cfg.EngineOptions(), engine.WithLogger(log))
	return &app{
		cfg:    cfg,
		log:    log,
		table:  table,
		engine: engine.New(table, opts...),
		stdout: outWriter(cmd),
		stderr: stderr,
	}, nil
}

// buildTable layers installed and configured dictionaries over the
// built-in one, in that order.
func buildTable(extra []string, log zerolog.Logger) (*mapping.Table, error) {
	b := mapping.NewIndonesianBuilder()
	installed, err := installedDictionaries()
	if err != nil {
		log.Debug().Err(err).Msg("installed dictionaries unavailable")
	}
	for _, path := range append(installed, extra...) {
		d, err := mapping.LoadFile(path)
		if err != nil {
			return nil, err
		}
		b.AddDictionary(d)
		log.Debug().Str("path", path).Int("groups", len(d.Groups)).Msg("dictionary loaded")
	}
	table := b.Build()
	for _, c := range table.Conflicts() {
		log.Debug().Str("source", c.Source).Str("kept", c.Kept).Str("dropped", c.Dropped).Msg("dictionary collision")
	}
	return table, nil
}

func (a *app) loader() *loader.Loader {
	return loader.New(loader.FileSource{}, a.engine,
		loader.WithModuleCacheSize(a.cfg.ModuleCacheSize),
		loader.WithLogger(a.log))
}

func (a *app) python(args []string) *runner.Python {
	return &runner.Python{
		Interpreter: a.cfg.Interpreter,
		Args:        args,
		Stdin:       os.Stdin,
		Stdout:      a.stdout,
		Stderr:      a.stderr,
	}
}

// debugUnit prints the source and its translation when --debug is on.
func (a *app) debugUnit(original string, u *loader.Unit) {
	if !a.cfg.Debug {
		return
	}
	rule := strings.Repeat("=", 50)
	fmt.Fprintf(a.stderr, "%s\nORIGINAL CODE:\n%s\n\nTRANSLATED CODE:\n%s\n%s\n", rule, original, u.Source, rule)
}

func (a *app) finish(cmd *cli.Command) {
	if cmd.Bool("stats") {
		_ = printStats(a.stderr, a.engine.Stats())
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("usage: pys run <file.py> [args...]")
	}
	return runFile(ctx, cmd, cmd.Args().First(), cmd.Args().Tail())
}

func runFile(ctx context.Context, cmd *cli.Command, path string, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.finish(cmd)

	ld := a.loader()
	u, err := ld.Load(path)
	if err != nil {
		return err
	}
	if a.cfg.Debug {
		original, _ := loader.FileSource{}.ReadSource(path)
		a.debugUnit(original, u)
	}
	return ld.Run(ctx, path, a.python(args))
}

func emitAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("usage: pys emit <file.py>")
	}
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.finish(cmd)

	u, err := a.loader().Load(cmd.Args().First())
	if err != nil {
		return err
	}
	fmt.Fprint(a.stdout, u.Source)
	return nil
}

func projectAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("usage: pys project <directory>")
	}
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.finish(cmd)

	p := &runner.Project{Dir: cmd.Args().First(), Translator: a.engine, Log: a.log}
	return p.Run(ctx, a.python(cmd.Args().Tail()))
}

func demoAction(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Running the pys demo...")

	ld := loader.New(demoSource{}, a.engine, loader.WithLogger(a.log))
	u, err := ld.Load(demoName)
	if err != nil {
		return err
	}
	a.debugUnit(demoProgram, u)
	if err := ld.Run(ctx, demoName, a.python(nil)); err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "\n%s\nPERFORMANCE STATS:\n", strings.Repeat("=", 50))
	return printStats(a.stdout, a.engine.Stats())
}

func docAction(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if cmd.NArg() == 0 {
		if err := doc.FormatDictionary(a.stdout, a.table); err != nil {
			return err
		}
		if c := doc.FormatConflicts(a.table); c != "" {
			fmt.Fprintf(a.stdout, "\nSpellings claimed by more than one target:\n%s", c)
		}
		return nil
	}

	arg := cmd.Args().First()
	if info, err := os.Stat(arg); err == nil {
		var fd *doc.FileDoc
		if info.IsDir() {
			main, _ := runner.FindMain(arg)
			fd, err = doc.ExtractDir(arg, main, a.table)
		} else {
			fd, err = doc.ExtractFile(arg, a.table)
		}
		if err != nil {
			return err
		}
		if sym := cmd.Args().Get(1); sym != "" {
			d, sig, ok := doc.LookupSymbol(fd, sym)
			if !ok {
				return fmt.Errorf("symbol not found: %s", sym)
			}
			fmt.Fprint(a.stdout, doc.FormatSymbol(d, sig))
			return nil
		}
		fmt.Fprint(a.stdout, doc.FormatFile(fd))
		return nil
	}

	out, ok := doc.FormatToken(a.table, arg)
	if !ok {
		return fmt.Errorf("unknown token: %s", arg)
	}
	fmt.Fprint(a.stdout, out)
	return nil
}

func configAction(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	data, err := a.cfg.YAML()
	if err != nil {
		return err
	}
	_, err = a.stdout.Write(data)
	return err
}

// printStats renders engine counters as a table.
func printStats(w io.Writer, s engine.Stats) error {
	tw := tablewriter.NewWriter(w)
	tw.Header("Stat", "Value")
	rows := [][]string{
		{"cache_hits", fmt.Sprint(s.CacheHits)},
		{"cache_misses", fmt.Sprint(s.CacheMisses)},
		{"translations", fmt.Sprint(s.Translations)},
		{"tree_rewrites", fmt.Sprint(s.TreeRewrites)},
		{"tree_fallbacks", fmt.Sprint(s.TreeFallbacks)},
		{"hit_rate", fmt.Sprintf("%.1f%%", s.HitRate)},
		{"cache_size", fmt.Sprint(s.CacheSize)},
		{"tree_cache_size", fmt.Sprint(s.TreeCacheSize)},
	}
	for _, r := range rows {
		if err := tw.Append(r); err != nil {
			return err
		}
	}
	return tw.Render()
}

// newLogger returns a console logger on w, colored when w is a terminal
// and NO_COLOR is unset.
func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	noColor := os.Getenv("NO_COLOR") != ""
	if f, ok := w.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		noColor = true
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: noColor, TimeFormat: "15:04:05"}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func outWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

// isPysScript checks if a file exists and starts with a pys shebang.
func isPysScript(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	buf := make([]byte, 64)
	n, _ := f.Read(buf)
	line, _, _ := strings.Cut(string(buf[:n]), "\n")
	return strings.HasPrefix(line, "#!") && strings.Contains(line, "pys")
}
