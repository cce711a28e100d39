package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/listenupapp/chapter-timeline/internal/sponsor"
	"github.com/listenupapp/chapter-timeline/internal/timeline"
)

func newExtractCommand(opts *options) *cobra.Command {
	var (
		duration float64
		watch    bool
	)

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the chapters found in a description file (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := opts.engine(cmd.ErrOrStderr())
			run := func() error {
				text, err := readInput(args[0], cmd.InOrStdin())
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.format, engine.ExtractChapters(string(text), knownDuration(duration)))
			}
			return runMaybeWatching(cmd, args[0], watch, run)
		},
	}

	cmd.Flags().Float64Var(&duration, "duration", 0, "Known duration in seconds; closes the last chapter")
	cmd.Flags().BoolVar(&watch, "watch", false, "Re-run whenever the file changes")
	return cmd
}

func newMergeCommand(opts *options) *cobra.Command {
	var (
		sponsorsPath string
		videoID      string
		duration     float64
		watch        bool
	)

	cmd := &cobra.Command{
		Use:   "merge <file>",
		Short: "Merge a description's chapters with sponsor intervals",
		Long: "Merge extracts the chapters of a description file and overlays the sponsor " +
			"intervals from a JSON file. With --duration the timeline is completed; a " +
			"description without chapters is then filled with generated segments.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := opts.engine(cmd.ErrOrStderr())
			intervals, err := loadSponsors(sponsorsPath, videoID)
			if err != nil {
				return err
			}

			run := func() error {
				text, err := readInput(args[0], cmd.InOrStdin())
				if err != nil {
					return err
				}
				segments, err := mergeDescription(engine, string(text), intervals, duration)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.format, segments)
			}
			return runMaybeWatching(cmd, args[0], watch, run)
		},
	}

	cmd.Flags().StringVar(&sponsorsPath, "sponsors", "", "JSON file with sponsor intervals")
	cmd.Flags().StringVar(&videoID, "video", "", "Video ID to pick from a file keyed by video")
	cmd.Flags().Float64Var(&duration, "duration", 0, "Total duration in seconds")
	cmd.Flags().BoolVar(&watch, "watch", false, "Re-run whenever the description file changes")
	_ = cmd.MarkFlagRequired("sponsors")
	return cmd
}

func newGenerateCommand(opts *options) *cobra.Command {
	var (
		sponsorsPath string
		videoID      string
		duration     float64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build a complete timeline from sponsor intervals alone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine := opts.engine(cmd.ErrOrStderr())
			intervals, err := loadSponsors(sponsorsPath, videoID)
			if err != nil {
				return err
			}
			segments, err := engine.Generate(intervals, duration)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.format, segments)
		},
	}

	cmd.Flags().StringVar(&sponsorsPath, "sponsors", "", "JSON file with sponsor intervals")
	cmd.Flags().StringVar(&videoID, "video", "", "Video ID to pick from a file keyed by video")
	cmd.Flags().Float64Var(&duration, "duration", 0, "Total duration in seconds")
	_ = cmd.MarkFlagRequired("sponsors")
	_ = cmd.MarkFlagRequired("duration")
	return cmd
}

func newCompleteCommand(opts *options) *cobra.Command {
	var duration float64

	cmd := &cobra.Command{
		Use:   "complete <file>",
		Short: "Trim a JSON timeline to a duration and close every open end",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if duration <= 0 {
				return fmt.Errorf("duration must be positive, got %v", duration)
			}
			raw, err := readInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			var segments []timeline.Segment
			if err := json.Unmarshal(raw, &segments); err != nil {
				return fmt.Errorf("parse timeline %s: %w", args[0], err)
			}

			completed, err := opts.engine(cmd.ErrOrStderr()).Complete(segments, duration)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.format, completed)
		},
	}

	cmd.Flags().Float64Var(&duration, "duration", 0, "Total duration in seconds")
	_ = cmd.MarkFlagRequired("duration")
	return cmd
}

// mergeDescription runs the pipeline a video goes through once its
// description and sponsor intervals are known.
func mergeDescription(engine *timeline.Engine, text string, intervals []timeline.Interval, duration float64) ([]timeline.Segment, error) {
	content := engine.ExtractChapters(text, timeline.Pending())
	if len(content) == 0 && duration > 0 {
		return engine.Generate(intervals, duration)
	}

	merged, err := engine.MergeSponsorSegments(content, timeline.SponsorReport{
		Intervals: intervals,
		Available: true,
	})
	if err != nil {
		return nil, err
	}
	if duration > 0 {
		return engine.Complete(merged, duration)
	}
	return merged, nil
}

// loadSponsors reads intervals from a sponsor JSON file. A video missing from
// a keyed file has no intervals.
func loadSponsors(path, videoID string) ([]timeline.Interval, error) {
	raw, err := readInput(path, nil)
	if err != nil {
		return nil, fmt.Errorf("read sponsors: %w", err)
	}
	intervals, err := sponsor.ParseIntervals(raw, videoID)
	if errors.Is(err, sponsor.ErrNoData) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse sponsors %s: %w", path, err)
	}
	return intervals, nil
}

func knownDuration(seconds float64) timeline.Bound {
	if seconds > 0 {
		return timeline.Known(seconds)
	}
	return timeline.Pending()
}
