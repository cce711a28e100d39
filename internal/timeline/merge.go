package timeline

import (
	"cmp"
	"math"
	"slices"

	domainerrors "github.com/listenupapp/chapter-timeline/internal/errors"
)

// chapter is a content segment with its end resolved for the sweep. An open
// last chapter has end = +Inf.
type chapter struct {
	Segment
	end float64
}

// span is a normalized sponsor interval.
type span struct {
	start, end float64
	label      string
}

// origin identifies what covers a piece of the sweep.
type origin struct {
	category Category
	index    int
}

var gap = origin{category: CategoryGenerated, index: -1}

type piece struct {
	start float64
	end   Bound
	from  origin
}

func (p piece) length() float64 {
	return p.end.Or(math.Inf(1)) - p.start
}

// Merge combines content chapters with sponsor intervals into one sorted,
// contiguous timeline. Inputs are not modified.
//
// Sponsors split the chapters they overlap and take over the overlapped
// region. A sponsor whose whole span matches one chapter within tolerance is
// dropped and the chapter keeps its title. Chapter boundaries near a sponsor
// boundary snap to it, and pieces shorter than tolerance are folded into a
// neighbour. Malformed sponsor entries are dropped, never fatal.
func (e *Engine) Merge(content []Segment, sponsors []Interval) ([]Segment, error) {
	chapters := e.prepareChapters(content)
	spans := e.normalizeSponsors(sponsors)
	spans = e.dropNearDuplicates(chapters, spans)
	e.snapChapters(chapters, spans)

	pieces := sweep(chapters, spans)
	pieces = e.coalesce(join(pieces))

	out := make([]Segment, 0, len(pieces))
	for _, p := range pieces {
		out = append(out, toSegment(p, chapters, spans))
	}

	if err := Validate(out, e.tolerance); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInvariant, "merged timeline rejected")
	}

	e.logger.Debug("merged timeline",
		"chapters", len(chapters),
		"sponsors", len(spans),
		"segments", len(out),
	)
	return out, nil
}

// prepareChapters copies the content chapters, sorts them and resolves every
// pending end except the last from the following start.
func (e *Engine) prepareChapters(content []Segment) []chapter {
	sorted := make([]Segment, 0, len(content))
	for _, s := range content {
		if s.Category != CategoryContent && s.Category != "" {
			continue
		}
		if math.IsNaN(s.Start) || math.IsInf(s.Start, 0) || s.Start < 0 {
			e.logger.Warn("dropping chapter with invalid start", "title", s.Title, "start", s.Start)
			continue
		}
		s.Category = CategoryContent
		sorted = append(sorted, s)
	}
	slices.SortStableFunc(sorted, func(a, b Segment) int { return cmp.Compare(a.Start, b.Start) })

	chapters := make([]chapter, 0, len(sorted))
	for i, s := range sorted {
		end := s.End.Or(math.Inf(1))
		if i+1 < len(sorted) {
			// Chapters never overlap their successor.
			end = math.Min(end, sorted[i+1].Start)
		}
		if end <= s.Start {
			continue
		}
		chapters = append(chapters, chapter{Segment: s, end: end})
	}
	return chapters
}

// normalizeSponsors drops malformed intervals, sorts the rest by start and
// unions overlapping or touching ones.
func (e *Engine) normalizeSponsors(sponsors []Interval) []span {
	valid := make([]Interval, 0, len(sponsors))
	for _, iv := range sponsors {
		if !iv.finite() {
			e.logger.Warn("dropping sponsor interval", "start", iv.Start, "end", iv.End, "reason", "not finite")
			continue
		}
		if err := e.validator.Validate(iv); err != nil {
			e.logger.Warn("dropping sponsor interval", "start", iv.Start, "end", iv.End, "error", err)
			continue
		}
		valid = append(valid, iv)
	}
	slices.SortStableFunc(valid, func(a, b Interval) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		if c := cmp.Compare(a.End, b.End); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})

	var spans []span
	for _, iv := range valid {
		if n := len(spans); n > 0 && iv.Start <= spans[n-1].end {
			spans[n-1].end = math.Max(spans[n-1].end, iv.End)
			continue
		}
		spans = append(spans, span{start: iv.Start, end: iv.End, label: iv.Category})
	}
	return spans
}

// dropNearDuplicates removes sponsors that describe the same window as a
// chapter. Titled chapters win over sponsor metadata for identical windows.
func (e *Engine) dropNearDuplicates(chapters []chapter, spans []span) []span {
	return slices.DeleteFunc(spans, func(s span) bool {
		for _, c := range chapters {
			if e.near(s.start, c.Start) && e.near(s.end, c.end) {
				e.logger.Debug("sponsor matches chapter, keeping chapter",
					"title", c.Title, "start", s.start, "end", s.end)
				return true
			}
		}
		return false
	})
}

// snapChapters moves chapter boundaries onto the nearest sponsor boundary
// within tolerance. Zero never moves.
func (e *Engine) snapChapters(chapters []chapter, spans []span) {
	if len(spans) == 0 {
		return
	}
	marks := make([]float64, 0, 2*len(spans))
	for _, s := range spans {
		marks = append(marks, s.start, s.end)
	}

	snap := func(v float64) float64 {
		if v == 0 || math.IsInf(v, 1) {
			return v
		}
		best, bestDist := v, math.Inf(1)
		for _, m := range marks {
			if d := math.Abs(m - v); d <= e.tolerance && d < bestDist {
				best, bestDist = m, d
			}
		}
		return best
	}

	for i := range chapters {
		chapters[i].Start = snap(chapters[i].Start)
		chapters[i].end = snap(chapters[i].end)
	}
}

// sweep cuts [0, last boundary) at every boundary and classifies each cut by
// what covers its midpoint: a sponsor, else a chapter, else nothing (gap).
func sweep(chapters []chapter, spans []span) []piece {
	if len(chapters) == 0 && len(spans) == 0 {
		return nil
	}

	bounds := []float64{0}
	for _, c := range chapters {
		bounds = append(bounds, c.Start)
		if !math.IsInf(c.end, 1) {
			bounds = append(bounds, c.end)
		}
	}
	for _, s := range spans {
		bounds = append(bounds, s.start, s.end)
	}
	slices.Sort(bounds)
	bounds = slices.Compact(bounds)

	var pieces []piece
	for i := 0; i+1 < len(bounds); i++ {
		a, b := bounds[i], bounds[i+1]
		pieces = append(pieces, piece{start: a, end: Known(b), from: cover((a+b)/2, chapters, spans)})
	}

	// An open last chapter runs past every finite boundary.
	if n := len(chapters); n > 0 && math.IsInf(chapters[n-1].end, 1) {
		last := bounds[len(bounds)-1]
		pieces = append(pieces, piece{start: last, end: Pending(), from: cover(math.Inf(1), chapters, spans)})
	}
	return pieces
}

func cover(at float64, chapters []chapter, spans []span) origin {
	for i, s := range spans {
		if s.start <= at && at < s.end {
			return origin{category: CategorySponsor, index: i}
		}
	}
	for i := len(chapters) - 1; i >= 0; i-- {
		c := chapters[i]
		if c.Start <= at && (at < c.end || math.IsInf(c.end, 1)) {
			return origin{category: CategoryContent, index: i}
		}
	}
	return gap
}

// join merges neighbouring pieces that come from the same source.
func join(pieces []piece) []piece {
	var out []piece
	for _, p := range pieces {
		if n := len(out); n > 0 && out[n-1].from == p.from {
			out[n-1].end = p.end
			continue
		}
		out = append(out, p)
	}
	return out
}

// coalesce folds pieces shorter than tolerance into the previous piece, or
// into the next one when there is no previous piece.
func (e *Engine) coalesce(pieces []piece) []piece {
	var out []piece
	for i := 0; i < len(pieces); i++ {
		p := pieces[i]
		if p.length() >= e.tolerance || len(pieces) == 1 {
			out = append(out, p)
			continue
		}

		if n := len(out); n > 0 {
			out[n-1].end = p.end
			continue
		}
		if i+1 < len(pieces) {
			pieces[i+1].start = p.start
			continue
		}
		out = append(out, p)
	}
	return join(out)
}

func toSegment(p piece, chapters []chapter, spans []span) Segment {
	switch p.from.category {
	case CategorySponsor:
		return Segment{
			Start:    p.start,
			End:      p.end,
			Category: CategorySponsor,
			Active:   false,
			Label:    spans[p.from.index].label,
		}
	case CategoryContent:
		c := chapters[p.from.index]
		return Segment{
			Title:    c.Title,
			Start:    p.start,
			End:      p.end,
			Category: CategoryContent,
			Active:   c.Active,
		}
	default:
		return Segment{
			Start:    p.start,
			End:      p.end,
			Category: CategoryGenerated,
			Active:   true,
		}
	}
}

func (e *Engine) near(a, b float64) bool {
	return math.Abs(a-b) <= e.tolerance
}
