package config

import "time"

// Default returns a config populated with the values used when a key is absent from YAML.
func Default() *Config {
	c := &Config{Environment: "development"}

	c.Log.Level = "info"
	c.Log.Format = "console"
	c.Log.Output = "stdout"

	c.Server.Port = 3000
	c.Server.ReadTimeout = 15 * time.Second
	c.Server.WriteTimeout = 60 * time.Second
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Metrics.Enabled = true
	c.Metrics.Path = "/metrics"

	c.Agent.IntelInterval = 20 * time.Second
	c.Agent.LogCapacity = 200
	c.Agent.BudgetUSD = 200
	c.Agent.RiskTier = "medium"
	c.Agent.MaxConcurrentBots = 3
	c.Agent.ConfirmBeforeLive = true

	c.NLU.Provider = "gemini"
	c.NLU.Model = "gemini-2.0-flash"
	c.NLU.Temperature = 0.2
	c.NLU.Timeout = 30 * time.Second

	c.Engine.Enabled = true
	c.Engine.ReconnectDelay = 3 * time.Second
	c.Engine.MaxRPS = 5

	c.Feeds.PumpPortal.WebSocketURL = "wss://pumpportal.fun/api/data"
	c.Feeds.PumpPortal.PingInterval = 20 * time.Second
	c.Feeds.DexScreener.BaseURL = "https://api.dexscreener.com"
	c.Feeds.DexScreener.Timeout = 10 * time.Second
	c.Feeds.DexScreener.RPS = 4
	c.Feeds.DexScreener.Limit = 20
	c.Feeds.PumpFun.BaseURL = "https://frontend-api-v3.pump.fun"
	c.Feeds.PumpFun.Timeout = 10 * time.Second
	c.Feeds.PumpFun.Limit = 30
	c.Feeds.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
	c.Feeds.CoinGecko.Timeout = 10 * time.Second

	c.Trading.Jupiter.BaseURL = "https://quote-api.jup.ag/v6"
	c.Trading.Jupiter.Timeout = 15 * time.Second
	c.Trading.ZeroX.BaseURL = "https://api.0x.org"
	c.Trading.ZeroX.ChainID = 1
	c.Trading.ZeroX.Timeout = 15 * time.Second

	c.Hub.SubscriberBuffer = 256
	c.RateLimit.PromptCapacity = 5
	c.RateLimit.PromptRefillPerSec = 0.5
	c.Cache.SnapshotTTL = 15 * time.Second

	c.Kafka.EventsTopic = "ghostsniper.events"
	c.Kafka.CommandsTopic = "ghostsniper.commands"
	c.Kafka.LogsTopic = "ghostsniper.logs"
	c.Kafka.RequiredAcks = 1
	c.Kafka.Compression = "snappy"
	c.Kafka.Producer.MaxAttempts = 3
	c.Kafka.Producer.BatchSize = 100
	c.Kafka.Producer.Linger = 200 * time.Millisecond
	c.Kafka.Producer.WriteTimeout = 10 * time.Second
	c.Kafka.Consumer.GroupID = "ghostsniper"
	c.Kafka.Consumer.Workers = 1
	c.Kafka.Consumer.BufferSize = 16

	c.ClickHouse.Port = 9000
	c.ClickHouse.Database = "ghostsniper"
	c.ClickHouse.DialTimeout = 5 * time.Second
	c.ClickHouse.ReadTimeout = 10 * time.Second
	return c
}
