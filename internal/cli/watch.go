package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/listenupapp/chapter-timeline/internal/watcher"
)

// runMaybeWatching runs once, and with watch keeps re-running on every
// settled change to path until interrupted. Failures while watching are
// reported and do not stop the loop.
func runMaybeWatching(cmd *cobra.Command, path string, watch bool, run func() error) error {
	if !watch {
		return run()
	}
	if path == "-" {
		return fmt.Errorf("--watch needs a file, not stdin")
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchAndRun(ctx, cmd, path, run)
}

func watchAndRun(ctx context.Context, cmd *cobra.Command, path string, run func() error) error {
	log := newLogger(cmd.ErrOrStderr(), slog.LevelInfo)

	w, err := watcher.New(log.Logger, watcher.Options{})
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	if err := w.Watch(path); err != nil {
		return err
	}
	go func() { _ = w.Start(ctx) }()
	fileLog := log.WithField("path", path)

	report := func() {
		if err := run(); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
		}
	}
	report()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-w.Events():
			if ev.Type == watcher.EventRemoved {
				fileLog.Warn("watched file removed, waiting for it to come back")
				continue
			}
			fileLog.Debug("file changed, re-running", "size", ev.Size)
			report()
		case err := <-w.Errors():
			fileLog.WithError(err).Warn("watch error")
		}
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
