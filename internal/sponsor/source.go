// Package sponsor provides sponsor interval sources for the timeline engine.
//
// A Source answers with the intervals it knows for a video, ErrNoData when it
// has nothing for that video, or any other error when it could not answer.
// Guarded adds the timeout, rate limiting and retries a remote source needs.
package sponsor

import (
	"context"
	"errors"

	"github.com/listenupapp/chapter-timeline/internal/timeline"
)

var (
	// ErrNoData means the source has no intervals for the video. It is an
	// answer, not a failure.
	ErrNoData = errors.New("no sponsor data")

	// ErrUnavailable means the source could not be asked or did not answer.
	ErrUnavailable = errors.New("sponsor source unavailable")
)

// Source looks up sponsor intervals for a video.
type Source interface {
	Segments(ctx context.Context, videoID string) ([]timeline.Interval, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, videoID string) ([]timeline.Interval, error)

// Segments calls f.
func (f SourceFunc) Segments(ctx context.Context, videoID string) ([]timeline.Interval, error) {
	return f(ctx, videoID)
}

// Report asks src for a video's intervals and folds the outcome into a
// SponsorReport. ErrNoData becomes an available, empty report. Any other
// failure yields an unavailable report together with the error, so callers
// can tell a cancelled lookup from a failed one.
func Report(ctx context.Context, src Source, videoID string) (timeline.SponsorReport, error) {
	report := timeline.SponsorReport{VideoID: videoID}

	intervals, err := src.Segments(ctx, videoID)
	switch {
	case err == nil:
		report.Intervals = intervals
		report.Available = true
		return report, nil
	case errors.Is(err, ErrNoData):
		report.Available = true
		return report, nil
	default:
		return report, err
	}
}
