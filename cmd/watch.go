package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

// debounce coalesces the burst of events an editor save produces.
const debounce = 150 * time.Millisecond

func watchAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("usage: pys watch <file.py> [args...]")
	}
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	path := cmd.Args().First()
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	// watch the directory so saves that replace the file are seen
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	changes := make(chan struct{}, 1)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return watchFile(gctx, w, abs, changes, a.log)
	})
	g.Go(func() error {
		ld := a.loader()
		py := a.python(cmd.Args().Tail())
		for {
			if err := ld.Run(gctx, path, py); err != nil {
				fmt.Fprintf(a.stderr, "error: %v\n", err)
			}
			a.finish(cmd)
			fmt.Fprintf(a.stderr, "[pys] watching %s\n", path)
			select {
			case <-gctx.Done():
				return nil
			case <-changes:
				ld.Invalidate(path)
			}
		}
	})
	return g.Wait()
}

// watchFile sends on changes, at most once per debounce window, whenever
// target is written or recreated. It returns when ctx is done.
func watchFile(ctx context.Context, w *fsnotify.Watcher, target string, changes chan<- struct{}, log zerolog.Logger) error {
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			log.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("change detected")
			fire = time.After(debounce)
		case <-fire:
			fire = nil
			select {
			case changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watch error")
		}
	}
}
