// Package cli implements the chapters command: the timeline engine run over
// local files.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/listenupapp/chapter-timeline/internal/logger"
	"github.com/listenupapp/chapter-timeline/internal/timeline"
)

// Main runs the chapters command and exits non-zero on failure.
func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := NewRootCommand()
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// options are the flags shared by every subcommand.
type options struct {
	tolerance float64
	logLevel  string
	format    string
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "chapters",
		Short:         "Build chapter timelines from descriptions and sponsor intervals",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if opts.tolerance <= 0 {
				return fmt.Errorf("tolerance must be positive, got %v", opts.tolerance)
			}
			if opts.format != formatJSON && opts.format != formatText {
				return fmt.Errorf("unknown format %q (want json or text)", opts.format)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.Float64Var(&opts.tolerance, "tolerance", envFloat("ENGINE_TOLERANCE", timeline.DefaultTolerance), "Boundary tolerance in seconds")
	flags.StringVar(&opts.logLevel, "log-level", envString("LOG_LEVEL", "warn"), "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.format, "format", formatJSON, "Output format (json, text)")

	root.AddCommand(
		newExtractCommand(opts),
		newMergeCommand(opts),
		newGenerateCommand(opts),
		newCompleteCommand(opts),
	)
	return root
}

// engine builds an engine that logs to the command's error stream.
func (o *options) engine(stderr io.Writer) *timeline.Engine {
	log := newLogger(stderr, logger.ParseLevel(o.logLevel))
	return timeline.New(
		timeline.WithTolerance(o.tolerance),
		timeline.WithLogger(log.Logger),
	)
}

func newLogger(w io.Writer, level slog.Level) *logger.Logger {
	return logger.New(logger.Config{
		Writer:  w,
		Level:   level,
		NoColor: os.Getenv("NO_COLOR") != "",
	})
}
