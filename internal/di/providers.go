package di

import (
	"context"
	"fmt"
	"io"
	"time"

	"TAScan/internal/domain/repository"
	"TAScan/internal/handler/api"
	internalrepo "TAScan/internal/repository"
	icache "TAScan/internal/service/cache"
	"TAScan/internal/service/ratelimit"
	svcmetrics "TAScan/internal/service/metrics"
	"TAScan/internal/service/scanner"
	"TAScan/internal/usecase"
	"TAScan/pkg/config"
	xhttp "TAScan/pkg/http"
	pkgkafka "TAScan/pkg/kafka"
	applogger "TAScan/pkg/logger"
	"TAScan/pkg/metrics"
	"TAScan/pkg/server"
)

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatch(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideLogger builds the app logger. Aggregated error logs go to the Kafka
// logs topic when collection is enabled and a producer exists.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: "tascan",
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.Log.Collect.Enabled && producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Log.Collect.Interval,
			CountThreshold: cfg.Log.Collect.CountThreshold,
			Topic:          cfg.Kafka.LogsTopic,
			Publisher:      producer,
		})
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder and registers handler metrics.
func ProvideMetrics() repository.Metrics {
	svcmetrics.Register()
	return metrics.New()
}

// ProvideScannerClient creates the upstream scanner and symbol search client.
func ProvideScannerClient(cfg *config.Config) *scanner.Client {
	return scanner.New(scanner.Config{
		BaseURL:   cfg.Scanner.BaseURL,
		SearchURL: cfg.Scanner.SearchURL,
		LogoURL:   cfg.Scanner.LogoURL,
		Timeout:   cfg.Scanner.Timeout,
		ProxyURL:  cfg.Scanner.ProxyURL,
		UserAgent: cfg.Scanner.UserAgent,
	})
}

// ProvideSearchCache selects the search response cache backend.
func ProvideSearchCache(cfg *config.Config, l *applogger.Logger) (icache.BytesCache, error) {
	switch cfg.SearchCache.Backend {
	case "redis":
		rc := icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.SearchCache.Redis.Addr,
			Password: cfg.SearchCache.Redis.Password,
			DB:       cfg.SearchCache.Redis.DB,
			Prefix:   "tascan:",
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rc.Ping(ctx); err != nil {
			// search still works without the cache
			l.Warn("redis search cache unreachable", applogger.String("addr", cfg.SearchCache.Redis.Addr), applogger.Error(err))
		}
		return rc, nil
	case "memory":
		return icache.NewTTLCache(4096), nil
	default:
		return icache.Noop{}, nil
	}
}

// ProvideAnalyzer creates the analysis orchestrator.
func ProvideAnalyzer(client *scanner.Client, m repository.Metrics, l *applogger.Logger) *usecase.Analyzer {
	return usecase.NewAnalyzer(client, m, l)
}

// ProvideSymbolSearch creates the cached symbol search use case.
func ProvideSymbolSearch(client *scanner.Client, c icache.BytesCache, cfg *config.Config, m repository.Metrics, l *applogger.Logger) *usecase.SymbolSearch {
	return usecase.NewSymbolSearch(client, c, cfg.SearchCache.TTL, m, l)
}

// ProvideAnalysisHandler creates the echo handler for the analysis API.
func ProvideAnalysisHandler(l *applogger.Logger, a *usecase.Analyzer, s *usecase.SymbolSearch) *api.AnalysisEchoHandler {
	return api.NewAnalysisEchoHandler(l, a, s)
}

// ProvideRateLimiter creates the per-client limiter, or nil when disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.Server.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.Server.RateLimit.Burst, cfg.Server.RateLimit.PerSecond)
}

// ProvideHTTPServer creates the echo server with every API handler registered.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, h *api.AnalysisEchoHandler, limiter *ratelimit.Limiter) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	}
	if limiter != nil {
		opts = append(opts, xhttp.WithRateLimit(limiter.Allow))
	}
	return xhttp.NewServer(l, []xhttp.Handler{h}, opts...)
}

// ProvideResultPublisher creates the Kafka result publisher, or nil without a producer.
func ProvideResultPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.ResultsTopic)
}

// ProvideKafkaConsumer creates the batch request consumer, or nil when Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NewHookChain(
		pkgkafka.TraceHook{},
		pkgkafka.LoggingHook{Logger: l, Slow: cfg.Scanner.Timeout},
	))
	return consumer, nil
}

// ProvideKafkaRequestsHandler creates the batch request handler, or nil without a publisher.
func ProvideKafkaRequestsHandler(cfg *config.Config, a *usecase.Analyzer, pub repository.Publisher, l *applogger.Logger) *usecase.KafkaRequestsHandler {
	if pub == nil {
		return nil
	}
	return usecase.NewKafkaRequestsHandler(cfg.Kafka.RequestsTopic, a, pub, l)
}

// ProvideApp assembles the application lifecycle.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaRequestsHandler,
	pub repository.Publisher,
	searchCache icache.BytesCache,
	limiter *ratelimit.Limiter,
) *server.App {
	app := server.New(cfg, l, srv)
	if limiter != nil {
		idle := cfg.Server.RateLimit.IdleTTL
		app.AddRunner(func(ctx context.Context) error {
			t := time.NewTicker(idle)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-t.C:
					limiter.Sweep(idle)
				}
			}
		})
	}
	if consumer != nil && kh != nil {
		consumer.RegisterHandler(kh)
		app.SetConsumer(consumer)
	}
	// the publisher owns the producer
	if pub != nil {
		app.AddCloser("kafka producer", pub)
	}
	if c, ok := searchCache.(io.Closer); ok {
		app.AddCloser("search cache", c)
	}
	return app
}
