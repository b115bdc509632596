package di

import (
	"context"
	"fmt"
	"time"

	"NQFlow/internal/domain/repository"
	"NQFlow/internal/handler/api"
	mid "NQFlow/internal/middleware"
	internalrepo "NQFlow/internal/repository"
	"NQFlow/internal/service/feed"
	"NQFlow/internal/usecase"
	"NQFlow/pkg/cache"
	pkgch "NQFlow/pkg/clickhouse"
	"NQFlow/pkg/config"
	xhttp "NQFlow/pkg/http"
	pkgkafka "NQFlow/pkg/kafka"
	applogger "NQFlow/pkg/logger"
	"NQFlow/pkg/metrics"
	"NQFlow/pkg/queue"
	"NQFlow/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "console"
	if cfg.Environment == "production" {
		format = "json"
	}
	return applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS nqflow",
		`CREATE TABLE IF NOT EXISTS nqflow.ohlcv_1m (
            ts DateTime64(3, 'UTC'),
            instrument_id UInt32,
            symbol LowCardinality(String),
            open Float64, high Float64, low Float64, close Float64,
            volume Int64
        ) ENGINE = MergeTree ORDER BY (instrument_id, ts)`,
		`CREATE TABLE IF NOT EXISTS nqflow.signals (
            ts DateTime64(3, 'UTC'),
            symbol LowCardinality(String),
            close Float64,
            direction LowCardinality(String),
            ma_crossover Nullable(String),
            breakout Nullable(String),
            mean_reversion Nullable(String),
            momentum Nullable(String),
            bullish_count UInt8,
            bearish_count UInt8,
            risk_ratio Float64,
            session LowCardinality(String)
        ) ENGINE = MergeTree ORDER BY (ts, symbol)`,
		`CREATE TABLE IF NOT EXISTS nqflow.daily_summary (
            trade_date Date,
            symbol LowCardinality(String),
            market_open_time DateTime64(3, 'UTC'),
            market_close_time DateTime64(3, 'UTC'),
            open Float64, high Float64, low Float64, close Float64,
            volume Int64,
            minutes_traded UInt32,
            price_volatility Float64,
            sma_10 Float64, sma_20 Float64, sma_50 Float64
        ) ENGINE = MergeTree ORDER BY (trade_date, symbol)`,
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer keyed by symbol.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
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

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideRedisCache creates the Redis client, or nil when Redis is disabled.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideCacheService layers an in-process cache over Redis.
func ProvideCacheService(rc *cache.RedisCache) cache.Service {
	if rc == nil {
		return nil
	}
	return cache.NewLayeredCache(rc)
}

// ProvideBarStore creates the ClickHouse bar store.
func ProvideBarStore(chClient *pkgch.Client, l *applogger.Logger) repository.BarStore {
	store := internalrepo.NewCHBarStore(chClient)
	store.SetLogger(l)
	return store
}

// ProvideBarWriter creates the ClickHouse bar writer used by ingest.
func ProvideBarWriter(chClient *pkgch.Client) repository.BarWriter {
	return internalrepo.NewClickHouseBarWriter(chClient.DB(), internalrepo.BarsTable)
}

// ProvideSignalStore creates the ClickHouse signal store.
func ProvideSignalStore(chClient *pkgch.Client) repository.SignalStore {
	return internalrepo.NewCHSignalStore(chClient.DB())
}

// ProvideSummaryStore creates the ClickHouse summary store.
func ProvideSummaryStore(chClient *pkgch.Client) repository.SummaryStore {
	return internalrepo.NewCHSummaryStore(chClient.DB())
}

// ProvideSignalPublisher creates the Kafka signal publisher.
func ProvideSignalPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.SignalPublisher {
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.SignalsTopic)
}

// ProvideFeedStream creates the live minute-bar WebSocket stream.
func ProvideFeedStream(cfg *config.Config) repository.BarStream {
	return feed.New(
		cfg.Feed.APIKey,
		cfg.Feed.WebSocketURL,
		cfg.Feed.Symbols,
		cfg.Feed.ReconnectDelay,
		cfg.Feed.PingInterval,
	)
}

// ProvideIngestPipeline builds the middleware between the feed and storage.
func ProvideIngestPipeline(writer repository.BarWriter, m repository.Metrics, cfg *config.Config) *mid.IngestPipeline {
	opts := []mid.PipelineOption{}
	if cfg.Ingest.MaxBarsPerSecond > 0 {
		opts = append(opts, mid.WithMaxBarsPerSecond(cfg.Ingest.MaxBarsPerSecond))
	}
	if cfg.Ingest.BufferSize > 0 {
		opts = append(opts, mid.WithBufferSize(cfg.Ingest.BufferSize))
	}
	return mid.NewIngestPipeline(writer, m, opts...)
}

// ProvideBarCollector creates the live bar collector use case.
func ProvideBarCollector(
	stream repository.BarStream,
	writer repository.BarWriter,
	m repository.Metrics,
	pipe *mid.IngestPipeline,
) *usecase.BarCollector {
	return usecase.NewBarCollector(stream, writer, m, pipe)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML, or nil
// when disabled.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Consumer.Enabled {
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
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaBarsHandler routes bars from the Kafka topic through ingest.
func ProvideKafkaBarsHandler(pipe *mid.IngestPipeline, m repository.Metrics, cfg *config.Config) *usecase.KafkaBarsHandler {
	return usecase.NewKafkaBarsHandler(cfg.Kafka.BarsTopic, pipe, m)
}

// ProvidePipelineUseCase creates the batch pipeline use case.
func ProvidePipelineUseCase(
	bars repository.BarStore,
	sigStore repository.SignalStore,
	sumStore repository.SummaryStore,
	publisher repository.SignalPublisher,
	m repository.Metrics,
	c cache.Service,
	l *applogger.Logger,
) *usecase.PipelineUseCase {
	uc := usecase.NewPipelineUseCase(bars, sigStore, sumStore, publisher, m)
	uc.SetLogger(l)
	if c != nil {
		uc.SetCache(c)
	}
	return uc
}

// ProvideSignalsUseCase creates the signals query use case.
func ProvideSignalsUseCase(store repository.SignalStore, c cache.Service, cfg *config.Config) *usecase.SignalsUseCase {
	uc := usecase.NewSignalsUseCase(store)
	if c != nil {
		uc.SetCache(c)
	}
	uc.SetCacheTTL(cfg.Pipeline.CacheTTL.Signals)
	return uc
}

// ProvideSummaryUseCase creates the daily summary query use case.
func ProvideSummaryUseCase(store repository.SummaryStore, c cache.Service, cfg *config.Config) *usecase.SummaryUseCase {
	uc := usecase.NewSummaryUseCase(store)
	if c != nil {
		uc.SetCache(c)
	}
	uc.SetCacheTTL(cfg.Pipeline.CacheTTL.Summary)
	return uc
}

// ProvideContinuousUseCase creates the continuous contract query use case.
func ProvideContinuousUseCase(bars repository.BarStore) *usecase.ContinuousUseCase {
	return usecase.NewContinuousUseCase(bars)
}

// ProvideQueue creates the Redis-backed job queue running pipeline jobs, or
// nil when Redis is disabled.
func ProvideQueue(cfg *config.Config, l *applogger.Logger, rc *cache.RedisCache, pipeline *usecase.PipelineUseCase) *queue.RedisQueue {
	if rc == nil {
		return nil
	}
	qcfg := &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		QueueSize:  cfg.Queue.QueueSize,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}
	return queue.NewRedisConsumer(l, qcfg, rc.Client(), []queue.Job{
		usecase.NewPipelineJob(pipeline),
	})
}

// ProvideHTTPHandler creates the Echo API handler.
func ProvideHTTPHandler(
	l *applogger.Logger,
	signals *usecase.SignalsUseCase,
	summaries *usecase.SummaryUseCase,
	continuous *usecase.ContinuousUseCase,
	q *queue.RedisQueue,
) xhttp.Handler {
	var publisher queue.QueueService
	if q != nil {
		publisher = q
	}
	return api.NewPipelineEchoHandler(l, signals, summaries, continuous, publisher)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.BarCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaBarsHandler,
	chClient *pkgch.Client,
	rc *cache.RedisCache,
	q *queue.RedisQueue,
	handler xhttp.Handler,
	publisher repository.SignalPublisher,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	return server.New(cfg, l, collector, consumer, kh, chClient, rc, q, handler, publisher)
}
