package timeline

import "iter"

// Build turns ordered markers into content chapters. Each chapter ends where
// the next one starts; the last chapter's end is pending. Chapters are built
// active because authored content is played; only sponsor segments skip.
func Build(markers iter.Seq[Marker]) []Segment {
	var segments []Segment
	for m := range markers {
		if n := len(segments); n > 0 {
			segments[n-1].End = Known(m.Time)
		}
		segments = append(segments, Segment{
			Title:    m.Title,
			Start:    m.Time,
			End:      Pending(),
			Category: CategoryContent,
			Active:   true,
		})
	}
	return segments
}
