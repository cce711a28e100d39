package timeline

import (
	domainerrors "github.com/listenupapp/chapter-timeline/internal/errors"
)

// Generate builds a timeline for a video without chapters: sponsor segments
// with untitled generated filler covering everything else in [0, duration).
// No sponsors means nothing to generate and an empty timeline.
func (e *Engine) Generate(sponsors []Interval, duration float64) ([]Segment, error) {
	if duration <= 0 {
		return nil, domainerrors.Validationf("duration must be positive, got %v", duration)
	}
	if len(sponsors) == 0 {
		return nil, nil
	}

	clipped := make([]Interval, 0, len(sponsors))
	for _, iv := range sponsors {
		if iv.Start >= duration {
			e.logger.Debug("sponsor starts after end of video", "start", iv.Start, "duration", duration)
			continue
		}
		if iv.End > duration {
			iv.End = duration
		}
		clipped = append(clipped, iv)
	}

	segments, err := e.Merge(nil, clipped)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, nil
	}

	segments = e.fillTail(segments, duration)
	if err := ValidateComplete(segments, duration, e.tolerance); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInvariant, "generated timeline rejected")
	}
	return segments, nil
}

// fillTail covers the stretch between the last known end and duration. A
// stretch shorter than tolerance extends the last segment; a longer one gets a
// generated segment, unless the last segment is a chapter, which simply runs
// to the end.
func (e *Engine) fillTail(segments []Segment, duration float64) []Segment {
	if len(segments) == 0 {
		return segments
	}
	last := &segments[len(segments)-1]
	end, ok := last.End.Value()
	if !ok || last.Category == CategoryContent || duration-end < e.tolerance {
		if duration > last.Start {
			last.End = Known(duration)
		}
		return segments
	}

	return append(segments, Segment{
		Start:    end,
		End:      Known(duration),
		Category: CategoryGenerated,
		Active:   true,
	})
}
