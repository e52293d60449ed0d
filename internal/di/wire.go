//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	drepo "GhostSniper/internal/domain/repository"
	"GhostSniper/pkg/config"
	"GhostSniper/pkg/metrics"
	"GhostSniper/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		wire.Bind(new(drepo.Metrics), new(*metrics.Recorder)),

		// Infrastructure
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideJournal,
		ProvideEventPublisher,
		ProvideSnapshotCache,
		ProvideLimiter,
		ProvideHub,
		ProvideEventSink,

		// External clients
		ProvideInterpreter,
		ProvideDexScreener,
		ProvidePumpFun,
		ProvideCoinGecko,
		ProvideJupiter,
		ProvideZeroX,

		// Use cases
		ProvideAgentState,
		ProvideReporter,
		ProvideGateway,
		ProvideMarketIntel,
		ProvideNormalizer,
		ProvideScorer,
		ProvideRegistry,
		ProvideEngine,
		ProvideDispatcher,
		ProvideAgent,
		ProvideCommandHandler,

		// HTTP
		ProvideHealthChecks,
		ProvideHandlers,
		ProvideHTTPServer,

		ProvideApp,
	)
	return &server.App{}, nil
}
