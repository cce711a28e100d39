package timeline

import (
	"math"

	domainerrors "github.com/listenupapp/chapter-timeline/internal/errors"
)

// Validate checks the invariants of a finished timeline: it starts at 0, is
// sorted and contiguous within tolerance, has no empty segments, and only the
// last segment may still have a pending end. An empty timeline is valid.
func Validate(segments []Segment, tolerance float64) error {
	if len(segments) == 0 {
		return nil
	}
	if first := segments[0].Start; math.Abs(first) > 1e-9 {
		return domainerrors.Invariantf("first segment starts at %.3f, not 0", first)
	}

	for i, s := range segments {
		if math.IsNaN(s.Start) || math.IsInf(s.Start, 0) || s.Start < 0 {
			return domainerrors.Invariantf("segment %d has invalid start %v", i, s.Start)
		}

		end, known := s.End.Value()
		if !known {
			if i != len(segments)-1 {
				return domainerrors.Invariantf("segment %d has a pending end but is not last", i)
			}
			continue
		}
		if end-s.Start <= 0 {
			return domainerrors.Invariantf("segment %d (%s) has non-positive duration", i, s)
		}

		if i+1 < len(segments) {
			next := segments[i+1]
			if next.Start < s.Start {
				return domainerrors.Invariantf("segment %d starts before segment %d", i+1, i)
			}
			if math.Abs(next.Start-end) > tolerance {
				return domainerrors.Invariantf("gap or overlap of %.3fs between segments %d and %d",
					next.Start-end, i, i+1)
			}
		}
	}
	return nil
}

// ValidateComplete is Validate plus the requirement that the last segment
// ends at duration within tolerance.
func ValidateComplete(segments []Segment, duration, tolerance float64) error {
	if err := Validate(segments, tolerance); err != nil {
		return err
	}
	if len(segments) == 0 {
		return nil
	}

	end, ok := segments[len(segments)-1].End.Value()
	if !ok {
		return domainerrors.Invariantf("last segment is still open")
	}
	if math.Abs(end-duration) > tolerance {
		return domainerrors.Invariantf("timeline ends at %.3f, duration is %.3f", end, duration)
	}
	return nil
}
