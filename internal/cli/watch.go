package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/stepwise/internal/presentation/tui"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/fsnotify/fsnotify"
)

// settleDelay lets editors finish writing before the input is reloaded.
const settleDelay = 100 * time.Millisecond

// RunWatch re-runs the algorithm every time the input file changes, until
// ctx is done.
func RunWatch(ctx context.Context, opts RunOptions) error {
	opts = opts.withDefaults()
	if opts.InputPath == "" {
		return fmt.Errorf("%w: --watch needs --input", domain.ErrInvalidParams)
	}
	params, err := opts.params()
	if err != nil {
		return err
	}
	path, err := filepath.Abs(opts.InputPath)
	if err != nil {
		return err
	}
	opts.InputPath = path

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	// Watch the directory: editors often replace the file instead of writing it.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	term := terminalOf(opts.Out)
	tui.PrintBanner(opts.Out, term.Profile)
	printSystemMessage(opts.Out, "Watching '%s'.", path)

	changes := make(chan string, 1)
	go forwardChanges(ctx, watcher, path, changes, opts.Logger)

	// Reuse one presenter so only one reader consumes stdin.
	p := newPresenter(opts, term)
	for {
		iterCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- runOnce(iterCtx, opts, params, p) }()

		select {
		case <-ctx.Done():
			cancel()
			<-done
			return nil
		case name := <-changes:
			cancel()
			<-done
			printSystemMessage(opts.Out, "Change detected in '%s'.", filepath.Base(name))
			opts.Logger.Info("input changed, restarting", "path", name)
			continue
		case err := <-done:
			if err != nil {
				opts.Logger.Error("run failed", "err", err)
				printSystemMessage(opts.Out, "Error: %v", err)
			}
			printSystemMessage(opts.Out, "Waiting for changes...")
		}

		select {
		case <-ctx.Done():
			cancel()
			return nil
		case name := <-changes:
			cancel()
			printSystemMessage(opts.Out, "Change detected in '%s'.", filepath.Base(name))
		}
	}
}

// forwardChanges sends target on out whenever it is written or replaced.
func forwardChanges(ctx context.Context, w *fsnotify.Watcher, target string, out chan<- string, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			time.Sleep(settleDelay)
			select {
			case out <- target:
			default:
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error", "err", err)
		}
	}
}
