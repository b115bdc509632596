//go:build wireinject
// +build wireinject

package di

import (
	"NQFlow/pkg/config"
	"NQFlow/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideRedisCache,
		ProvideCacheService,

		// Repositories
		ProvideBarStore,
		ProvideBarWriter,
		ProvideSignalStore,
		ProvideSummaryStore,
		ProvideSignalPublisher,
		ProvideFeedStream,

		// Ingest path
		ProvideIngestPipeline,
		ProvideBarCollector,
		ProvideKafkaConsumer,
		ProvideKafkaBarsHandler,

		// Use cases
		ProvidePipelineUseCase,
		ProvideSignalsUseCase,
		ProvideSummaryUseCase,
		ProvideContinuousUseCase,
		ProvideQueue,

		// HTTP surface
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
