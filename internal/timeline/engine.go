package timeline

import (
	"errors"
	"log/slog"

	"github.com/listenupapp/chapter-timeline/internal/logger"
	"github.com/listenupapp/chapter-timeline/internal/validation"
)

// DefaultTolerance is the boundary tolerance in seconds used when none is
// configured.
const DefaultTolerance = 2.0

// ErrSponsorsUnavailable means no sponsor answer exists for the video. It is
// not the same as an answer with zero intervals.
var ErrSponsorsUnavailable = errors.New("sponsor data unavailable")

// Engine holds the tuning shared by every timeline operation. Its methods are
// pure: they never retain or mutate caller slices except where documented as
// in-place, and an Engine is safe for concurrent use.
type Engine struct {
	tolerance float64
	logger    *slog.Logger
	validator *validation.Validator
}

// Option configures an Engine.
type Option func(*Engine)

// WithTolerance sets the boundary tolerance in seconds. Non-positive values
// are ignored.
func WithTolerance(seconds float64) Option {
	return func(e *Engine) {
		if seconds > 0 {
			e.tolerance = seconds
		}
	}
}

// WithLogger sets the logger used for dropped entries and merge decisions.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		tolerance: DefaultTolerance,
		logger:    logger.Discard(),
		validator: validation.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithGroup("timeline")
	return e
}

// Tolerance returns the configured boundary tolerance in seconds.
func (e *Engine) Tolerance() float64 {
	return e.tolerance
}

// ExtractChapters parses a description into content chapters. When
// knownDuration is known the chapters are trimmed to it and the last one is
// closed at the duration.
func (e *Engine) ExtractChapters(text string, knownDuration Bound) []Segment {
	segments := Build(Extract(ExtractText(text)))
	if len(segments) == 0 {
		return nil
	}

	if duration, ok := knownDuration.Value(); ok && duration > 0 {
		segments = e.Trim(segments, duration)
		e.FillOutOpenEndTimes(segments, duration)
	}

	e.logger.Debug("extracted chapters", "count", len(segments))
	return segments
}

// MergeSponsorSegments merges content chapters with a sponsor report. An
// unavailable report yields ErrSponsorsUnavailable and no timeline.
func (e *Engine) MergeSponsorSegments(content []Segment, report SponsorReport) ([]Segment, error) {
	if !report.Available {
		return nil, ErrSponsorsUnavailable
	}

	merged, err := e.Merge(content, report.Intervals)
	if err != nil {
		e.logger.Error("merge rejected", "video_id", report.VideoID, "error", err)
		return nil, err
	}
	return merged, nil
}
