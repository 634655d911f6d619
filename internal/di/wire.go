//go:build wireinject
// +build wireinject

package di

import (
	"FeatMerge/internal/domain/repository"
	"FeatMerge/pkg/config"
	"FeatMerge/pkg/metrics"
	"FeatMerge/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,
		wire.Bind(new(repository.Metrics), new(*metrics.Recorder)),

		// Repositories
		ProvideBarSource,
		ProvideTableSink,
		ProvideOutcomePublisher,

		// Services
		ProvideTimeframes,
		ProvideExtractor,
		ProvideMerger,

		// Use cases
		ProvideBatchRunner,

		// Application
		ProvideApp,
	)
	return nil, nil, nil
}
