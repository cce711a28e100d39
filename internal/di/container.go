// Package di provides dependency injection configuration for the chapter timeline server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/chapter-timeline/internal/config"
	"github.com/listenupapp/chapter-timeline/internal/di/providers"
	"github.com/listenupapp/chapter-timeline/internal/logger"
	"github.com/listenupapp/chapter-timeline/internal/service"
	"github.com/listenupapp/chapter-timeline/internal/timeline"
)

// NewContainer creates and configures the DI container with all providers.
// args are the command-line arguments handed to the config loader.
func NewContainer(args []string) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, providers.Args(args))
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Engine
	do.Provide(injector, providers.ProvideEngine)
	do.Provide(injector, providers.ProvideSponsorSource)

	// Business services
	do.Provide(injector, providers.ProvideTimelineService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services. Providers are lazy, so this is where
// configuration errors surface and the HTTP server starts.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*timeline.Engine](injector)

	if _, err := do.Invoke[*providers.SponsorSourceHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*service.TimelineService](injector)

	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}
	return nil
}
