package timeline

// FillOutOpenEndTimes resolves pending ends in place. Every pending end but
// the last becomes the next segment's start. The last segment ends at
// duration, which may extend or shorten a known end; a duration at or before
// the last start (including an unknown duration, <= 0) leaves it alone.
// Running it twice with the same duration changes nothing.
func (e *Engine) FillOutOpenEndTimes(segments []Segment, duration float64) {
	n := len(segments)
	if n == 0 {
		return
	}
	for i := 0; i < n-1; i++ {
		if !segments[i].End.IsKnown() {
			segments[i].End = Known(segments[i+1].Start)
		}
	}
	e.UpdateDuration(segments, duration)
}

// UpdateDuration applies a late or corrected duration to the last segment
// only. Earlier segments are never touched.
func (e *Engine) UpdateDuration(segments []Segment, newDuration float64) {
	n := len(segments)
	if n == 0 || newDuration <= 0 {
		return
	}
	last := &segments[n-1]
	if newDuration <= last.Start {
		e.logger.Warn("duration ends before last segment starts",
			"duration", newDuration, "last_start", last.Start)
		return
	}
	last.End = Known(newDuration)
}

// Trim returns a copy of segments cut to duration. Segments that start within
// tolerance of the end, or after it, are dropped and known ends past duration
// are clamped. The first segment is always kept while it starts before
// duration.
func (e *Engine) Trim(segments []Segment, duration float64) []Segment {
	out := make([]Segment, 0, len(segments))
	for i, s := range segments {
		if s.Start >= duration || (i > 0 && s.Start >= duration-e.tolerance) {
			break
		}
		if end, ok := s.End.Value(); ok && end > duration {
			s.End = Known(duration)
		}
		out = append(out, s)
	}
	return out
}

// Complete returns a finished copy of a timeline for a known duration: it is
// trimmed, its open ends are filled, and a sponsor or generated tail that
// stops well short of duration is followed by a generated segment. A timeline
// that starts at or after duration completes to an empty one.
func (e *Engine) Complete(segments []Segment, duration float64) ([]Segment, error) {
	if len(segments) == 0 || duration <= 0 {
		return Clone(segments), nil
	}

	out := e.Trim(segments, duration)
	if len(out) == 0 {
		e.logger.Debug("timeline starts after end of video", "start", segments[0].Start, "duration", duration)
		return out, nil
	}
	n := len(out)
	for i := 0; i < n-1; i++ {
		if !out[i].End.IsKnown() {
			out[i].End = Known(out[i+1].Start)
		}
	}
	out = e.fillTail(out, duration)

	if err := ValidateComplete(out, duration, e.tolerance); err != nil {
		return nil, err
	}
	return out, nil
}
