package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"GhostSniper/internal/domain/models"
)

type Config struct {
	Environment string `yaml:"environment"`
	Log         struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Agent struct {
		LiveTrading       bool          `yaml:"live_trading"` // process-wide live ceiling
		IntelInterval     time.Duration `yaml:"intel_interval"`
		LogCapacity       int           `yaml:"log_capacity"`
		AutoStart         bool          `yaml:"auto_start"`
		BudgetUSD         float64       `yaml:"budget_usd"`
		RiskTier          string        `yaml:"risk"`
		MaxConcurrentBots int           `yaml:"max_concurrent_bots"`
		ConfirmBeforeLive bool          `yaml:"confirm_before_live"`
	} `yaml:"agent"`
	NLU struct {
		Provider    string        `yaml:"provider"` // gemini | offline
		APIKey      string        `yaml:"api_key"`
		Model       string        `yaml:"model"`
		Temperature float32       `yaml:"temperature"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"nlu"`
	Engine struct {
		Enabled        bool          `yaml:"enabled"`
		MinScore       int           `yaml:"min_score"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		MaxRPS         int           `yaml:"max_rps"`
	} `yaml:"engine"`
	Feeds struct {
		PumpPortal struct {
			WebSocketURL string        `yaml:"websocket_url"`
			WatchTrades  bool          `yaml:"watch_trades"`
			PingInterval time.Duration `yaml:"ping_interval"`
		} `yaml:"pumpportal"`
		DexScreener struct {
			BaseURL string        `yaml:"base_url"`
			Timeout time.Duration `yaml:"timeout"`
			RPS     float64       `yaml:"rps"`
			Limit   int           `yaml:"limit"`
		} `yaml:"dexscreener"`
		PumpFun struct {
			BaseURL string        `yaml:"base_url"`
			Timeout time.Duration `yaml:"timeout"`
			Limit   int           `yaml:"limit"`
		} `yaml:"pumpfun"`
		CoinGecko struct {
			BaseURL string        `yaml:"base_url"`
			APIKey  string        `yaml:"api_key"`
			Timeout time.Duration `yaml:"timeout"`
		} `yaml:"coingecko"`
	} `yaml:"feeds"`
	Bots    []BotConfig `yaml:"bots"`
	Trading struct {
		Jupiter struct {
			BaseURL      string        `yaml:"base_url"`
			WalletPubKey string        `yaml:"wallet_public_key"`
			Timeout      time.Duration `yaml:"timeout"`
		} `yaml:"jupiter"`
		ZeroX struct {
			BaseURL string        `yaml:"base_url"`
			APIKey  string        `yaml:"api_key"`
			ChainID int           `yaml:"chain_id"`
			Taker   string        `yaml:"taker"`
			Timeout time.Duration `yaml:"timeout"`
		} `yaml:"zerox"`
	} `yaml:"trading"`
	Hub struct {
		SubscriberBuffer int `yaml:"subscriber_buffer"`
	} `yaml:"hub"`
	RateLimit struct {
		PromptCapacity     float64 `yaml:"prompt_capacity"`
		PromptRefillPerSec float64 `yaml:"prompt_refill_per_sec"`
	} `yaml:"ratelimit"`
	Cache struct {
		SnapshotTTL time.Duration `yaml:"snapshot_ttl"`
		Redis       struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled       bool     `yaml:"enabled"`
		Brokers       []string `yaml:"brokers"`
		EventsTopic   string   `yaml:"events_topic"`
		CommandsTopic string   `yaml:"commands_topic"`
		LogsTopic     string   `yaml:"logs_topic"`
		RequiredAcks  int      `yaml:"required_acks"`
		Compression   string   `yaml:"compression"`
		Producer      struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			BatchSize    int           `yaml:"batch_size"`
			Linger       time.Duration `yaml:"linger"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string `yaml:"group_id"`
			Workers    int    `yaml:"workers"`
			BufferSize int    `yaml:"buffer_size"`
			MinBytes   int    `yaml:"min_bytes"`
			MaxBytes   int    `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled     bool          `yaml:"enabled"`
		Host        string        `yaml:"host"`
		Port        int           `yaml:"port"`
		Database    string        `yaml:"database"`
		User        string        `yaml:"user"`
		Password    string        `yaml:"password"`
		UseHTTP     bool          `yaml:"use_http"`
		AsyncInsert bool          `yaml:"async_insert"`
		DialTimeout time.Duration `yaml:"dial_timeout"`
		ReadTimeout time.Duration `yaml:"read_timeout"`
	} `yaml:"clickhouse"`
}

// BotConfig declares a bot that exists at startup.
type BotConfig struct {
	ID        string            `yaml:"id"`
	Kind      models.BotKind    `yaml:"kind"`
	AutoStart bool              `yaml:"autostart"`
	Options   models.BotOptions `yaml:"options"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads .env (if present), the YAML file, then applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv(os.Getenv)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("LIVE_TRADING"); v != "" {
		c.Agent.LiveTrading = strings.EqualFold(v, "true")
	}
	if v := getenv("AGENT_MODEL"); v != "" {
		c.NLU.Model = v
	}
	if v := getenv("GEMINI_API_KEY"); v != "" {
		c.NLU.APIKey = v
	}
	if v := getenv("JUPITER_BASE"); v != "" {
		c.Trading.Jupiter.BaseURL = v
	}
	if v := getenv("ZEROX_BASE"); v != "" {
		c.Trading.ZeroX.BaseURL = v
	}
	if v := getenv("ZEROX_API_KEY"); v != "" {
		c.Trading.ZeroX.APIKey = v
	}
	if v := getenv("WALLET_SOL"); v != "" {
		c.Trading.Jupiter.WalletPubKey = v
	}
	if v := getenv("WALLET_EVM"); v != "" {
		c.Trading.ZeroX.Taker = v
	}
	if v := getenv("COINGECKO_API_KEY"); v != "" {
		c.Feeds.CoinGecko.APIKey = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Agent.RiskTier {
	case "low", "medium", "high":
	default:
		return fmt.Errorf("agent.risk must be low, medium or high, got '%s'", c.Agent.RiskTier)
	}
	if c.Agent.LogCapacity <= 0 {
		return fmt.Errorf("agent.log_capacity must be positive")
	}
	if c.NLU.Provider != "gemini" && c.NLU.Provider != "offline" {
		return fmt.Errorf("nlu.provider must be 'gemini' or 'offline', got '%s'", c.NLU.Provider)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	seen := make(map[string]bool, len(c.Bots))
	for i, b := range c.Bots {
		if b.ID == "" {
			return fmt.Errorf("bots[%d].id is required", i)
		}
		if seen[b.ID] {
			return fmt.Errorf("bots[%d].id '%s' is duplicated", i, b.ID)
		}
		seen[b.ID] = true
		if b.Kind != models.BotKindDexScreener && b.Kind != models.BotKindPumpFun {
			return fmt.Errorf("bots[%d].kind '%s' is not supported", i, b.Kind)
		}
	}
	return nil
}
