//go:build wireinject
// +build wireinject

package di

import (
	"TAScan/pkg/config"
	"TAScan/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Infrastructure
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideMetrics,
		ProvideScannerClient,
		ProvideSearchCache,

		// Use cases
		ProvideAnalyzer,
		ProvideSymbolSearch,

		// Kafka batch requests
		ProvideResultPublisher,
		ProvideKafkaConsumer,
		ProvideKafkaRequestsHandler,

		// HTTP
		ProvideRateLimiter,
		ProvideAnalysisHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
