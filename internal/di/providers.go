package di

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"GhostSniper/internal/domain/models"
	drepo "GhostSniper/internal/domain/repository"
	domsvc "GhostSniper/internal/domain/service"
	"GhostSniper/internal/handler/api"
	mid "GhostSniper/internal/middleware"
	internalrepo "GhostSniper/internal/repository"
	"GhostSniper/internal/service/broadcast"
	"GhostSniper/internal/service/cache"
	"GhostSniper/internal/service/coingecko"
	"GhostSniper/internal/service/dexscreener"
	"GhostSniper/internal/service/gemini"
	"GhostSniper/internal/service/jupiter"
	"GhostSniper/internal/service/pumpfun"
	"GhostSniper/internal/service/pumpportal"
	"GhostSniper/internal/service/ratelimit"
	"GhostSniper/internal/service/zerox"
	"GhostSniper/internal/services/signals"
	"GhostSniper/internal/services/strategy"
	"GhostSniper/internal/usecase"
	pkgch "GhostSniper/pkg/clickhouse"
	"GhostSniper/pkg/config"
	xhttp "GhostSniper/pkg/http"
	pkgkafka "GhostSniper/pkg/kafka"
	applogger "GhostSniper/pkg/logger"
	"GhostSniper/pkg/metrics"
	"GhostSniper/pkg/server"
)

// ProvideLogger builds the root logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics registers the domain collectors on the default registry,
// which is what /metrics serves.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideKafkaProducer returns nil when kafka is disabled. When enabled, the
// producer also ships aggregated warn/error logs to the logs topic.
func ProvideKafkaProducer(cfg *config.Config, log *applogger.Logger) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.Linger),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	if cfg.Kafka.LogsTopic != "" {
		log.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.LogsTopic,
			Publisher:      producer,
		})
	}
	return producer, nil
}

// ProvideKafkaConsumer returns nil when kafka is disabled or no commands topic is set.
func ProvideKafkaConsumer(cfg *config.Config, log *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.CommandsTopic == "" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(log,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideJournal connects ClickHouse and creates the journal tables. Nil when disabled.
func ProvideJournal(cfg *config.Config, log *applogger.Logger) (drepo.Journal, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithAddress(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	journal := internalrepo.NewCHJournal(client, log)
	if err := journal.Init(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return journal, nil
}

// ProvideEventPublisher returns nil when there is no producer.
func ProvideEventPublisher(cfg *config.Config, producer *pkgkafka.Producer) drepo.EventPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.EventsTopic)
}

func ProvideEventSink(cfg *config.Config, pub drepo.EventPublisher, journal drepo.Journal, m drepo.Metrics, log *applogger.Logger) *usecase.EventSink {
	return usecase.NewEventSink(pub, journal, cfg.Hub.SubscriberBuffer, m, log)
}

func ProvideHub(log *applogger.Logger, m drepo.Metrics) *broadcast.Hub {
	return broadcast.NewHub(log, m)
}

// ProvideSnapshotCache picks Redis when configured, the in-process TTL cache otherwise.
func ProvideSnapshotCache(cfg *config.Config) (cache.BytesCache, error) {
	if !cfg.Cache.Redis.Enabled {
		return cache.NewTTLCache(), nil
	}
	rc := cache.NewRedisCache(cache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		_ = rc.Close()
		return nil, err
	}
	return rc, nil
}

func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.PromptCapacity, cfg.RateLimit.PromptRefillPerSec)
}

// ProvideInterpreter returns the Gemini interpreter, or the offline one when
// the provider is "offline" or no API key is configured.
func ProvideInterpreter(cfg *config.Config, log *applogger.Logger) (drepo.Interpreter, error) {
	if cfg.NLU.Provider == "offline" || cfg.NLU.APIKey == "" {
		log.Warn("natural language commands disabled", applogger.String("provider", cfg.NLU.Provider))
		return gemini.OfflineInterpreter{}, nil
	}
	client, err := gemini.NewClient(context.Background(), cfg.NLU.APIKey)
	if err != nil {
		return nil, err
	}
	return gemini.New(client,
		gemini.WithModel(cfg.NLU.Model),
		gemini.WithTemperature(cfg.NLU.Temperature),
		gemini.WithTimeout(cfg.NLU.Timeout),
	), nil
}

func ProvideAgentState(cfg *config.Config, interp drepo.Interpreter) *usecase.AgentState {
	params := models.AgentParams{
		BudgetUSD:         cfg.Agent.BudgetUSD,
		RiskTier:          cfg.Agent.RiskTier,
		LiveEnabled:       cfg.Agent.LiveTrading,
		ConfirmBeforeLive: cfg.Agent.ConfirmBeforeLive,
		MaxConcurrentBots: cfg.Agent.MaxConcurrentBots,
	}
	return usecase.NewAgentState(cfg.Agent.LiveTrading, params, cfg.Agent.LogCapacity, interp.Model())
}

func ProvideReporter(state *usecase.AgentState, hub *broadcast.Hub, log *applogger.Logger) *usecase.Reporter {
	return usecase.NewReporter(state, hub, log)
}

func ProvideDexScreener(cfg *config.Config) *dexscreener.Client {
	c := cfg.Feeds.DexScreener
	return dexscreener.New(c.BaseURL, c.Timeout, c.RPS, c.Limit)
}

func ProvidePumpFun(cfg *config.Config) *pumpfun.Client {
	return pumpfun.New(cfg.Feeds.PumpFun.BaseURL, cfg.Feeds.PumpFun.Timeout, cfg.Feeds.PumpFun.Limit)
}

func ProvideCoinGecko(cfg *config.Config) *coingecko.Client {
	c := cfg.Feeds.CoinGecko
	return coingecko.New(c.BaseURL, c.APIKey, c.Timeout)
}

func ProvideJupiter(cfg *config.Config) *jupiter.Client {
	c := cfg.Trading.Jupiter
	return jupiter.New(c.BaseURL, c.WalletPubKey, c.Timeout)
}

func ProvideZeroX(cfg *config.Config) *zerox.Client {
	c := cfg.Trading.ZeroX
	return zerox.New(c.BaseURL, c.APIKey, c.ChainID, c.Taker, c.Timeout)
}

// ProvideGateway routes sol intents to Jupiter and evm intents to 0x.
func ProvideGateway(jup *jupiter.Client, zx *zerox.Client, m drepo.Metrics, log *applogger.Logger) *usecase.TradeGateway {
	return usecase.NewTradeGateway(map[models.Chain]drepo.LiveAdapter{
		models.ChainSol: jup,
		models.ChainEVM: zx,
	}, m, log)
}

// ProvideMarketIntel registers the snapshot sources for each routing chain.
func ProvideMarketIntel(
	cfg *config.Config,
	dex *dexscreener.Client,
	pump *pumpfun.Client,
	cg *coingecko.Client,
	c cache.BytesCache,
	m drepo.Metrics,
	log *applogger.Logger,
) *usecase.MarketIntel {
	sources := map[string][]drepo.MarketSource{
		"sol": {
			usecase.BindChain(dex, "solana", false),
			usecase.BindChain(pump, "solana", false),
			cg,
		},
		"evm": {
			usecase.BindChain(dex, "ethereum", true),
			usecase.BindChain(dex, "base", true),
			cg,
		},
		"all": {
			usecase.BindChain(dex, "solana", true),
			usecase.BindChain(dex, "ethereum", true),
			usecase.BindChain(pump, "solana", false),
			cg,
		},
	}
	return usecase.NewMarketIntel(sources, c, cfg.Cache.SnapshotTTL, m, log)
}

func ProvideNormalizer() domsvc.Normalizer { return signals.NewNormalizer() }

func ProvideScorer() domsvc.SignalScorer { return signals.NewScorer() }

func ProvideRegistry(
	dex *dexscreener.Client,
	pump *pumpfun.Client,
	normalizer domsvc.Normalizer,
	scorer domsvc.SignalScorer,
	gateway *usecase.TradeGateway,
	state *usecase.AgentState,
	reporter *usecase.Reporter,
	m drepo.Metrics,
	log *applogger.Logger,
) *usecase.Registry {
	return usecase.NewRegistry(strategy.Factories(dex, pump), normalizer, scorer, gateway, state, reporter, m, log)
}

// ProvideEngine subscribes to PumpPortal. Watched wallets are re-read on every
// (re)subscribe, so watch_address takes effect after the next reconnect.
func ProvideEngine(
	cfg *config.Config,
	state *usecase.AgentState,
	normalizer domsvc.Normalizer,
	scorer domsvc.SignalScorer,
	reporter *usecase.Reporter,
	m drepo.Metrics,
	log *applogger.Logger,
) *usecase.SignalEngine {
	pp := cfg.Feeds.PumpPortal
	feed := pumpportal.New(pp.WebSocketURL, pp.WatchTrades,
		func() []string { return state.Params().WatchedAddresses },
		pp.PingInterval, log)
	return usecase.NewSignalEngine(feed, normalizer, scorer, reporter, m, log,
		usecase.WithMinScore(cfg.Engine.MinScore),
		usecase.WithReconnectBackoff(cfg.Engine.ReconnectDelay),
		usecase.WithPipelineOptions(mid.WithMaxRPS(cfg.Engine.MaxRPS)),
	)
}

func ProvideDispatcher(
	interp drepo.Interpreter,
	state *usecase.AgentState,
	reporter *usecase.Reporter,
	gateway *usecase.TradeGateway,
	intel *usecase.MarketIntel,
	log *applogger.Logger,
) *usecase.Dispatcher {
	return usecase.NewDispatcher(interp, state, reporter, gateway, intel, log)
}

func ProvideAgent(
	cfg *config.Config,
	state *usecase.AgentState,
	reporter *usecase.Reporter,
	intel *usecase.MarketIntel,
	registry *usecase.Registry,
	engine *usecase.SignalEngine,
	log *applogger.Logger,
) *usecase.Agent {
	return usecase.NewAgent(state, reporter, intel, registry, engine, cfg.Agent.IntelInterval, log)
}

func ProvideCommandHandler(cfg *config.Config, dispatcher *usecase.Dispatcher, m drepo.Metrics, log *applogger.Logger) *usecase.KafkaCommandHandler {
	return usecase.NewKafkaCommandHandler(cfg.Kafka.CommandsTopic, dispatcher, m, log)
}

// ProvideHealthChecks reports the engine session and, when enabled, ClickHouse and Redis.
func ProvideHealthChecks(cfg *config.Config, engine *usecase.SignalEngine, journal drepo.Journal, c cache.BytesCache) map[string]api.HealthCheck {
	checks := map[string]api.HealthCheck{}
	if cfg.Engine.Enabled {
		checks["engine"] = func(context.Context) error {
			if !engine.IsConnected() {
				return errors.New("feed disconnected")
			}
			return nil
		}
	}
	if journal != nil {
		checks["clickhouse"] = journal.Health
	}
	if rc, ok := c.(*cache.RedisCache); ok {
		checks["redis"] = rc.Ping
	}
	return checks
}

func ProvideHandlers(
	cfg *config.Config,
	log *applogger.Logger,
	agent *usecase.Agent,
	dispatcher *usecase.Dispatcher,
	state *usecase.AgentState,
	limiter *ratelimit.Limiter,
	registry *usecase.Registry,
	jup *jupiter.Client,
	hub *broadcast.Hub,
	checks map[string]api.HealthCheck,
) []xhttp.Handler {
	return []xhttp.Handler{
		api.NewHealthHandler(checks),
		api.NewAgentHandler(log, agent, dispatcher, state, limiter),
		api.NewBotsHandler(log, registry),
		api.NewTradesHandler(log, dispatcher, jup),
		api.NewStreamHandler(log, hub, cfg.Hub.SubscriberBuffer),
	}
}

func ProvideHTTPServer(cfg *config.Config, log *applogger.Logger, handlers []xhttp.Handler) *xhttp.Server {
	path := ""
	if cfg.Metrics.Enabled {
		path = cfg.Metrics.Path
	}
	return xhttp.NewServer(log, handlers,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(path),
	)
}

// ProvideApp collects the long-lived components. Only non-nil optional parts are attached.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	hub *broadcast.Hub,
	engine *usecase.SignalEngine,
	agent *usecase.Agent,
	registry *usecase.Registry,
	sink *usecase.EventSink,
	producer *pkgkafka.Producer,
	consumer *pkgkafka.Consumer,
	commands *usecase.KafkaCommandHandler,
	interp drepo.Interpreter,
	c cache.BytesCache,
	limiter *ratelimit.Limiter,
	httpServer *xhttp.Server,
) *server.App {
	comps := server.Components{
		Hub:      hub,
		Engine:   engine,
		Agent:    agent,
		Registry: registry,
		Sink:     sink,
		Producer: producer,
		HTTP:     httpServer,
		Closers:  []io.Closer{c},
	}
	if consumer != nil {
		comps.Consumer = consumer
		comps.Commands = commands
	}
	if cl, ok := interp.(io.Closer); ok {
		comps.Closers = append(comps.Closers, cl)
	}
	comps.Maintenance = append(comps.Maintenance, func() { limiter.Forget(10 * time.Minute) })
	if ttl, ok := c.(*cache.TTLCache); ok {
		comps.Maintenance = append(comps.Maintenance, func() { ttl.Sweep() })
	}
	return server.New(cfg, log, comps)
}
