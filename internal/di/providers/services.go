package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/chapter-timeline/internal/logger"
	"github.com/listenupapp/chapter-timeline/internal/service"
	"github.com/listenupapp/chapter-timeline/internal/timeline"
)

// ProvideTimelineService provides the per-video timeline service. Snapshots
// are kept in memory only.
func ProvideTimelineService(i do.Injector) (*service.TimelineService, error) {
	engine := do.MustInvoke[*timeline.Engine](i)
	sponsors := do.MustInvoke[*SponsorSourceHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTimelineService(engine, sponsors.Source, nil, log.With("component", "timeline_service")), nil
}
