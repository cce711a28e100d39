package api

import (
	"context"
	"net/http"
	"slices"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/chapter-timeline/internal/api/dto"
	"github.com/listenupapp/chapter-timeline/internal/service"
	"github.com/listenupapp/chapter-timeline/internal/timeline"
)

func (s *Server) registerVideoRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listVideos",
		Method:      http.MethodGet,
		Path:        "/api/v1/videos",
		Summary:     "List videos",
		Description: "Returns the IDs of tracked videos, sorted",
		Tags:        []string{"Videos"},
	}, s.handleListVideos)

	huma.Register(s.api, huma.Operation{
		OperationID: "setVideoDescription",
		Method:      http.MethodPut,
		Path:        "/api/v1/videos/{id}/description",
		Summary:     "Set description",
		Description: "Parses the video description and recomputes its timeline",
		Tags:        []string{"Videos"},
	}, s.handleSetDescription)

	huma.Register(s.api, huma.Operation{
		OperationID: "setVideoSponsors",
		Method:      http.MethodPut,
		Path:        "/api/v1/videos/{id}/sponsors",
		Summary:     "Set sponsors",
		Description: "Applies sponsor intervals supplied by the client and recomputes the timeline",
		Tags:        []string{"Videos"},
	}, s.handleSetSponsors)

	huma.Register(s.api, huma.Operation{
		OperationID: "refreshVideoSponsors",
		Method:      http.MethodPost,
		Path:        "/api/v1/videos/{id}/sponsors/refresh",
		Summary:     "Refresh sponsors",
		Description: "Fetches sponsor intervals from the configured source. When the source is unavailable the previous timeline stays current.",
		Tags:        []string{"Videos"},
	}, s.handleRefreshSponsors)

	huma.Register(s.api, huma.Operation{
		OperationID: "setVideoDuration",
		Method:      http.MethodPut,
		Path:        "/api/v1/videos/{id}/duration",
		Summary:     "Set duration",
		Description: "Records the authoritative duration and completes or refines the timeline",
		Tags:        []string{"Videos"},
	}, s.handleSetDuration)

	huma.Register(s.api, huma.Operation{
		OperationID: "getVideoTimeline",
		Method:      http.MethodGet,
		Path:        "/api/v1/videos/{id}/timeline",
		Summary:     "Get timeline",
		Description: "Returns the latest published timeline of a video",
		Tags:        []string{"Videos"},
	}, s.handleGetTimeline)

	huma.Register(s.api, huma.Operation{
		OperationID: "forgetVideo",
		Method:      http.MethodDelete,
		Path:        "/api/v1/videos/{id}",
		Summary:     "Forget video",
		Description: "Drops everything known about a video",
		Tags:        []string{"Videos"},
	}, s.handleForgetVideo)
}

// === DTOs ===

// ListVideosInput contains parameters for listing videos.
type ListVideosInput struct {
	dto.PaginationParams
}

// ListVideosOutput wraps the video list for Huma.
type ListVideosOutput struct {
	Body dto.ListResponse[string]
}

// SetDescriptionRequest is the request body for setting a description.
type SetDescriptionRequest struct {
	Description string `json:"description" maxLength:"200000" doc:"Video description, plain text or HTML"`
}

// SetDescriptionInput wraps the description request for Huma.
type SetDescriptionInput struct {
	dto.VideoIDParam
	Body SetDescriptionRequest
}

// SetSponsorsRequest is the request body for setting sponsor intervals.
type SetSponsorsRequest struct {
	Sponsors  []dto.IntervalInput `json:"sponsors" maxItems:"1000" doc:"Sponsor intervals"`
	Available *bool               `json:"available,omitempty" doc:"Whether the sponsor service answered (default: true)"`
}

// SetSponsorsInput wraps the sponsors request for Huma.
type SetSponsorsInput struct {
	dto.VideoIDParam
	Body SetSponsorsRequest
}

// SetDurationRequest is the request body for setting a duration.
type SetDurationRequest struct {
	Duration float64 `json:"duration" doc:"Authoritative duration in seconds"`
}

// SetDurationInput wraps the duration request for Huma.
type SetDurationInput struct {
	dto.VideoIDParam
	Body SetDurationRequest
}

// VideoInput identifies a video.
type VideoInput struct {
	dto.VideoIDParam
}

// VideoTimelineOutput wraps a published timeline for Huma.
type VideoTimelineOutput struct {
	Body dto.VideoTimelineResponse
}

// === Handlers ===

func (s *Server) handleListVideos(_ context.Context, input *ListVideosInput) (*ListVideosOutput, error) {
	videos := s.timelines.Videos()
	slices.Sort(videos)
	return &ListVideosOutput{Body: dto.Paginate(videos, input.PaginationParams)}, nil
}

func (s *Server) handleSetDescription(ctx context.Context, input *SetDescriptionInput) (*VideoTimelineOutput, error) {
	snap, err := s.timelines.SetDescription(ctx, input.ID, input.Body.Description)
	if err != nil {
		return nil, err
	}
	return snapshotOutput(snap), nil
}

func (s *Server) handleSetSponsors(ctx context.Context, input *SetSponsorsInput) (*VideoTimelineOutput, error) {
	report := timeline.SponsorReport{
		Intervals: dto.ToIntervals(input.Body.Sponsors),
		Available: input.Body.Available == nil || *input.Body.Available,
	}

	snap, err := s.timelines.SetSponsors(ctx, input.ID, report)
	if err != nil {
		return nil, err
	}
	return snapshotOutput(snap), nil
}

func (s *Server) handleRefreshSponsors(ctx context.Context, input *VideoInput) (*VideoTimelineOutput, error) {
	snap, err := s.timelines.RefreshSponsors(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return snapshotOutput(snap), nil
}

func (s *Server) handleSetDuration(ctx context.Context, input *SetDurationInput) (*VideoTimelineOutput, error) {
	snap, err := s.timelines.SetDuration(ctx, input.ID, input.Body.Duration)
	if err != nil {
		return nil, err
	}
	return snapshotOutput(snap), nil
}

func (s *Server) handleGetTimeline(_ context.Context, input *VideoInput) (*VideoTimelineOutput, error) {
	snap, err := s.timelines.Current(input.ID)
	if err != nil {
		return nil, err
	}
	return snapshotOutput(snap), nil
}

func (s *Server) handleForgetVideo(_ context.Context, input *VideoInput) (*dto.MessageOutput, error) {
	if err := s.timelines.Forget(input.ID); err != nil {
		return nil, err
	}
	return &dto.MessageOutput{Body: dto.MessageResponse{Message: "video forgotten"}}, nil
}

func snapshotOutput(snap service.Snapshot) *VideoTimelineOutput {
	var duration *float64
	if d, ok := snap.Duration.Value(); ok {
		duration = &d
	}

	return &VideoTimelineOutput{
		Body: dto.VideoTimelineResponse{
			VideoID:           snap.VideoID,
			Revision:          snap.Revision,
			State:             string(snap.State),
			Duration:          duration,
			ChaptersAvailable: snap.ChaptersAvailable(),
			SponsorsAvailable: snap.SponsorsAvailable,
			Segments:          dto.FromSegments(snap.Segments),
			UpdatedAt:         snap.UpdatedAt,
		},
	}
}
