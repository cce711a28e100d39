package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/chapter-timeline/internal/config"
	"github.com/listenupapp/chapter-timeline/internal/logger"
	"github.com/listenupapp/chapter-timeline/internal/sponsor"
	"github.com/listenupapp/chapter-timeline/internal/timeline"
)

// ProvideEngine provides the timeline engine.
func ProvideEngine(i do.Injector) (*timeline.Engine, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return timeline.New(
		timeline.WithTolerance(cfg.Engine.Tolerance),
		timeline.WithLogger(log.Logger),
	), nil
}

// SponsorSourceHandle wraps the configured sponsor source with Shutdownable.
// Source is nil when no sponsor data is configured.
type SponsorSourceHandle struct {
	Source  sponsor.Source
	guarded *sponsor.Guarded
}

// Shutdown implements do.Shutdownable.
func (h *SponsorSourceHandle) Shutdown() error {
	if h.guarded != nil {
		h.guarded.Stop()
	}
	return nil
}

// ProvideSponsorSource provides the sponsor source: the JSON data file behind
// a timeout, per-video rate limit and retries.
func ProvideSponsorSource(i do.Injector) (*SponsorSourceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Sponsor.DataPath == "" {
		log.Warn("No sponsor data configured, sponsor refresh disabled")
		return &SponsorSourceHandle{}, nil
	}

	static, err := sponsor.LoadFile(cfg.Sponsor.DataPath)
	if err != nil {
		return nil, err
	}
	log.Info("Sponsor data loaded", "path", cfg.Sponsor.DataPath, "videos", static.Len())

	guarded := sponsor.NewGuarded(static, sponsor.GuardConfig{
		Timeout:    cfg.Sponsor.Timeout,
		MaxRetries: cfg.Sponsor.MaxRetries,
		RPS:        cfg.Sponsor.RPS,
		Burst:      cfg.Sponsor.Burst,
	}, log.With("component", "sponsor"))

	return &SponsorSourceHandle{Source: guarded, guarded: guarded}, nil
}
