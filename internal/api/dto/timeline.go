package dto

import (
	"time"

	"github.com/listenupapp/chapter-timeline/internal/timeline"
)

// SegmentInput is a timeline segment supplied by a client.
type SegmentInput struct {
	Title    string   `json:"title,omitempty" maxLength:"500" doc:"Chapter title"`
	Start    float64  `json:"start" minimum:"0" doc:"Start offset in seconds"`
	End      *float64 `json:"end,omitempty" doc:"End offset in seconds; omit or null while unknown"`
	Category string   `json:"category,omitempty" enum:"content,sponsor,generated" doc:"Segment category (default: content)"`
	Active   *bool    `json:"active,omitempty" doc:"Whether playback should stop in this segment (default: true)"`
	Label    string   `json:"label,omitempty" doc:"Sponsor category label"`
}

// IntervalInput is a sponsor interval supplied by a client. Malformed
// intervals are dropped by the engine rather than rejected here.
type IntervalInput struct {
	Start    float64 `json:"start" doc:"Start offset in seconds"`
	End      float64 `json:"end" doc:"End offset in seconds"`
	Category string  `json:"category,omitempty" doc:"Sponsor category, for example sponsor or selfpromo"`
}

// Segment is a timeline segment in API responses.
type Segment struct {
	Title    string   `json:"title,omitempty" doc:"Chapter title"`
	Start    float64  `json:"start" doc:"Start offset in seconds"`
	End      *float64 `json:"end" doc:"End offset in seconds; null while unknown"`
	Duration *float64 `json:"duration" doc:"Length in seconds; null while the end is unknown"`
	Category string   `json:"category" doc:"Segment category: content, sponsor, or generated"`
	Active   bool     `json:"active" doc:"Whether playback should stop in this segment"`
	Label    string   `json:"label,omitempty" doc:"Sponsor category label"`
}

// TimelineResponse is a computed timeline.
type TimelineResponse struct {
	Segments []Segment `json:"segments" doc:"Ordered, contiguous segments"`
	Count    int       `json:"count" doc:"Number of segments"`
}

// VideoTimelineResponse is the published timeline of a tracked video.
type VideoTimelineResponse struct {
	VideoID           string    `json:"video_id" doc:"Video identifier"`
	Revision          string    `json:"revision" doc:"Opaque revision of this snapshot"`
	State             string    `json:"state" doc:"Lifecycle state: unparsed, parsed, merged_with_sponsors, completed, or refined"`
	Duration          *float64  `json:"duration" doc:"Authoritative duration in seconds; null while unknown"`
	ChaptersAvailable bool      `json:"chapters_available" doc:"Whether the timeline has any segments"`
	SponsorsAvailable bool      `json:"sponsors_available" doc:"Whether sponsor data has been merged"`
	Segments          []Segment `json:"segments" doc:"Ordered, contiguous segments"`
	UpdatedAt         time.Time `json:"updated_at" doc:"When this snapshot was published"`
}

// ToSegments converts client segments to engine segments.
func ToSegments(in []SegmentInput) []timeline.Segment {
	out := make([]timeline.Segment, 0, len(in))
	for _, s := range in {
		seg := timeline.Segment{
			Title:    s.Title,
			Start:    s.Start,
			End:      timeline.Pending(),
			Category: timeline.Category(s.Category),
			Active:   true,
			Label:    s.Label,
		}
		if s.End != nil {
			seg.End = timeline.Known(*s.End)
		}
		if seg.Category == "" {
			seg.Category = timeline.CategoryContent
		}
		if s.Active != nil {
			seg.Active = *s.Active
		}
		out = append(out, seg)
	}
	return out
}

// ToIntervals converts client intervals to engine intervals.
func ToIntervals(in []IntervalInput) []timeline.Interval {
	out := make([]timeline.Interval, 0, len(in))
	for _, iv := range in {
		out = append(out, timeline.Interval{Start: iv.Start, End: iv.End, Category: iv.Category})
	}
	return out
}

// FromSegments converts engine segments for a response.
func FromSegments(in []timeline.Segment) []Segment {
	out := make([]Segment, 0, len(in))
	for _, s := range in {
		out = append(out, Segment{
			Title:    s.Title,
			Start:    s.Start,
			End:      boundPtr(s.End),
			Duration: boundPtr(s.Duration()),
			Category: string(s.Category),
			Active:   s.Active,
			Label:    s.Label,
		})
	}
	return out
}

// NewTimelineResponse wraps engine segments for a response.
func NewTimelineResponse(segments []timeline.Segment) TimelineResponse {
	return TimelineResponse{
		Segments: FromSegments(segments),
		Count:    len(segments),
	}
}

// boundPtr returns nil for a pending bound.
func boundPtr(b timeline.Bound) *float64 {
	v, ok := b.Value()
	if !ok {
		return nil
	}
	return &v
}
