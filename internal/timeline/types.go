// Package timeline reconciles description chapters and sponsor intervals into
// one ordered, gapless timeline of labeled segments.
package timeline

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
)

// Bound is a point in time that may not be known yet.
// The zero value is Pending.
type Bound struct {
	value float64
	known bool
}

// Known returns a resolved bound.
func Known(v float64) Bound {
	return Bound{value: v, known: true}
}

// Pending returns an unresolved bound.
func Pending() Bound {
	return Bound{}
}

// Value returns the seconds and whether they are known.
func (b Bound) Value() (float64, bool) {
	return b.value, b.known
}

// IsKnown reports whether the bound has been resolved.
func (b Bound) IsKnown() bool {
	return b.known
}

// Or returns the value, or fallback when pending.
func (b Bound) Or(fallback float64) float64 {
	if b.known {
		return b.value
	}
	return fallback
}

func (b Bound) String() string {
	if !b.known {
		return "pending"
	}
	return fmt.Sprintf("%.3f", b.value)
}

// MarshalJSON encodes a pending bound as null.
func (b Bound) MarshalJSON() ([]byte, error) {
	if !b.known {
		return []byte("null"), nil
	}
	return json.Marshal(b.value)
}

// UnmarshalJSON accepts a number or null.
func (b *Bound) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = Pending()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("bound: %w", err)
	}
	*b = Known(v)
	return nil
}

// Category classifies where a segment came from.
type Category string

const (
	// CategoryContent is a human-authored chapter.
	CategoryContent Category = "content"
	// CategorySponsor is an externally reported sponsor or ad interval.
	CategorySponsor Category = "sponsor"
	// CategoryGenerated is synthetic filler covering a gap.
	CategoryGenerated Category = "generated"
)

// Segment is one labeled span of the timeline.
type Segment struct {
	Title    string   `json:"title,omitempty"`
	Start    float64  `json:"start"`
	End      Bound    `json:"end"`
	Category Category `json:"category"`
	// Active segments are played; inactive ones are auto-skipped.
	Active bool `json:"active"`
	// Label carries the sponsor service's own category (e.g. "selfpromo").
	Label string `json:"label,omitempty"`
}

// Duration is End - Start, pending while End is.
func (s Segment) Duration() Bound {
	end, ok := s.End.Value()
	if !ok {
		return Pending()
	}
	return Known(end - s.Start)
}

// MarshalJSON adds the derived duration.
func (s Segment) MarshalJSON() ([]byte, error) {
	type plain Segment
	return json.Marshal(struct {
		plain
		Duration Bound `json:"duration"`
	}{plain: plain(s), Duration: s.Duration()})
}

// UnmarshalJSON ignores the derived duration.
func (s *Segment) UnmarshalJSON(data []byte) error {
	type plain Segment
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Segment(p)
	return nil
}

func (s Segment) String() string {
	name := s.Title
	if name == "" {
		name = string(s.Category)
	}
	return fmt.Sprintf("%s@%.3f-%s", name, s.Start, s.End)
}

// Interval is a sponsor span as reported by the sponsor service.
type Interval struct {
	Start    float64 `json:"start" validate:"gte=0"`
	End      float64 `json:"end" validate:"gtfield=Start"`
	Category string  `json:"category,omitempty"`
}

func (iv Interval) finite() bool {
	return !math.IsNaN(iv.Start) && !math.IsInf(iv.Start, 0) &&
		!math.IsNaN(iv.End) && !math.IsInf(iv.End, 0)
}

// Marker is a chapter title and its start time recovered from text.
type Marker struct {
	Title string  `json:"title"`
	Time  float64 `json:"time"`
}

// SponsorReport is the outcome of a sponsor lookup for one video.
// Available is false when the service could not be asked or did not answer,
// which is different from answering with no intervals.
type SponsorReport struct {
	VideoID   string     `json:"video_id"`
	Intervals []Interval `json:"intervals"`
	Available bool       `json:"available"`
}

// Clone returns a deep copy of segments.
func Clone(segments []Segment) []Segment {
	if segments == nil {
		return nil
	}
	return slices.Clone(segments)
}
