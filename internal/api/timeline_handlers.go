package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/chapter-timeline/internal/api/dto"
	domainerrors "github.com/listenupapp/chapter-timeline/internal/errors"
	"github.com/listenupapp/chapter-timeline/internal/timeline"
)

func (s *Server) registerTimelineRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "extractChapters",
		Method:      http.MethodPost,
		Path:        "/api/v1/chapters/extract",
		Summary:     "Extract chapters",
		Description: "Parses chapter markers out of a plain-text or HTML description",
		Tags:        []string{"Timeline"},
	}, s.handleExtractChapters)

	huma.Register(s.api, huma.Operation{
		OperationID: "mergeTimeline",
		Method:      http.MethodPost,
		Path:        "/api/v1/timeline/merge",
		Summary:     "Merge sponsor segments",
		Description: "Overlays sponsor intervals onto content chapters",
		Tags:        []string{"Timeline"},
	}, s.handleMergeTimeline)

	huma.Register(s.api, huma.Operation{
		OperationID: "generateTimeline",
		Method:      http.MethodPost,
		Path:        "/api/v1/timeline/generate",
		Summary:     "Generate timeline",
		Description: "Builds a complete timeline from sponsor intervals alone",
		Tags:        []string{"Timeline"},
	}, s.handleGenerateTimeline)

	huma.Register(s.api, huma.Operation{
		OperationID: "completeTimeline",
		Method:      http.MethodPost,
		Path:        "/api/v1/timeline/complete",
		Summary:     "Complete timeline",
		Description: "Trims a timeline to the duration and closes every open end",
		Tags:        []string{"Timeline"},
	}, s.handleCompleteTimeline)

	huma.Register(s.api, huma.Operation{
		OperationID: "refineDuration",
		Method:      http.MethodPost,
		Path:        "/api/v1/timeline/duration",
		Summary:     "Refine duration",
		Description: "Adjusts the last segment of a timeline to a corrected duration",
		Tags:        []string{"Timeline"},
	}, s.handleRefineDuration)
}

// === DTOs ===

// ExtractChaptersRequest is the request body for extracting chapters.
type ExtractChaptersRequest struct {
	Text     string   `json:"text" maxLength:"200000" doc:"Video description, plain text or HTML"`
	Duration *float64 `json:"duration,omitempty" exclusiveMinimum:"0" doc:"Known duration in seconds"`
}

// ExtractChaptersInput wraps the extract request for Huma.
type ExtractChaptersInput struct {
	Body ExtractChaptersRequest
}

// MergeTimelineRequest is the request body for merging sponsor segments.
type MergeTimelineRequest struct {
	Segments  []dto.SegmentInput  `json:"segments" maxItems:"1000" doc:"Content chapters"`
	Sponsors  []dto.IntervalInput `json:"sponsors" maxItems:"1000" doc:"Sponsor intervals"`
	Available *bool               `json:"available,omitempty" doc:"Whether the sponsor service answered (default: true)"`
}

// MergeTimelineInput wraps the merge request for Huma.
type MergeTimelineInput struct {
	Body MergeTimelineRequest
}

// GenerateTimelineRequest is the request body for generating a timeline.
type GenerateTimelineRequest struct {
	Sponsors []dto.IntervalInput `json:"sponsors" maxItems:"1000" doc:"Sponsor intervals"`
	Duration float64             `json:"duration" doc:"Total duration in seconds"`
}

// GenerateTimelineInput wraps the generate request for Huma.
type GenerateTimelineInput struct {
	Body GenerateTimelineRequest
}

// DurationRequest carries a timeline and a duration.
type DurationRequest struct {
	Segments []dto.SegmentInput `json:"segments" maxItems:"1000" doc:"Timeline segments"`
	Duration float64            `json:"duration" doc:"Duration in seconds"`
}

// DurationInput wraps a duration request for Huma.
type DurationInput struct {
	Body DurationRequest
}

// TimelineOutput wraps a computed timeline for Huma.
type TimelineOutput struct {
	Body dto.TimelineResponse
}

// === Handlers ===

func (s *Server) handleExtractChapters(_ context.Context, input *ExtractChaptersInput) (*TimelineOutput, error) {
	duration := timeline.Pending()
	if input.Body.Duration != nil {
		duration = timeline.Known(*input.Body.Duration)
	}

	segments := s.engine.ExtractChapters(input.Body.Text, duration)
	return &TimelineOutput{Body: dto.NewTimelineResponse(segments)}, nil
}

func (s *Server) handleMergeTimeline(_ context.Context, input *MergeTimelineInput) (*TimelineOutput, error) {
	report := timeline.SponsorReport{
		Intervals: dto.ToIntervals(input.Body.Sponsors),
		Available: input.Body.Available == nil || *input.Body.Available,
	}

	merged, err := s.engine.MergeSponsorSegments(dto.ToSegments(input.Body.Segments), report)
	if errors.Is(err, timeline.ErrSponsorsUnavailable) {
		return nil, domainerrors.Wrap(err, domainerrors.CodeUnavailable, "sponsor data unavailable")
	}
	if err != nil {
		return nil, err
	}
	return &TimelineOutput{Body: dto.NewTimelineResponse(merged)}, nil
}

func (s *Server) handleGenerateTimeline(_ context.Context, input *GenerateTimelineInput) (*TimelineOutput, error) {
	segments, err := s.engine.Generate(dto.ToIntervals(input.Body.Sponsors), input.Body.Duration)
	if err != nil {
		return nil, err
	}
	return &TimelineOutput{Body: dto.NewTimelineResponse(segments)}, nil
}

func (s *Server) handleCompleteTimeline(_ context.Context, input *DurationInput) (*TimelineOutput, error) {
	segments, err := s.clientTimeline(input.Body)
	if err != nil {
		return nil, err
	}

	completed, err := s.engine.Complete(segments, input.Body.Duration)
	if err != nil {
		return nil, err
	}
	return &TimelineOutput{Body: dto.NewTimelineResponse(completed)}, nil
}

func (s *Server) handleRefineDuration(_ context.Context, input *DurationInput) (*TimelineOutput, error) {
	segments, err := s.clientTimeline(input.Body)
	if err != nil {
		return nil, err
	}

	s.engine.UpdateDuration(segments, input.Body.Duration)
	return &TimelineOutput{Body: dto.NewTimelineResponse(segments)}, nil
}

// clientTimeline converts and checks a timeline supplied by a client. Inner
// open ends are closed at the next start; anything else malformed is the
// client's mistake, not an engine invariant.
func (s *Server) clientTimeline(req DurationRequest) ([]timeline.Segment, error) {
	if req.Duration <= 0 {
		return nil, domainerrors.Validationf("duration must be positive, got %v", req.Duration)
	}

	segments := dto.ToSegments(req.Segments)
	for i := 0; i+1 < len(segments); i++ {
		if !segments[i].End.IsKnown() {
			segments[i].End = timeline.Known(segments[i+1].Start)
		}
	}
	if err := timeline.Validate(segments, s.engine.Tolerance()); err != nil {
		return nil, domainerrors.ValidationWithDetails("segments do not form a valid timeline", err.Error())
	}
	return segments, nil
}
