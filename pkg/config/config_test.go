package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"GhostSniper/internal/domain/models"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if c.Agent.LiveTrading {
		t.Fatal("live trading must default to off")
	}
	if c.Engine.ReconnectDelay != 3*time.Second {
		t.Fatalf("unexpected reconnect delay %v", c.Engine.ReconnectDelay)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"bad risk", func(c *Config) { c.Agent.RiskTier = "yolo" }, "agent.risk"},
		{"bad provider", func(c *Config) { c.NLU.Provider = "openai" }, "nlu.provider"},
		{"kafka without brokers", func(c *Config) { c.Kafka.Enabled = true }, "kafka.brokers"},
		{"clickhouse without host", func(c *Config) { c.ClickHouse.Enabled = true }, "clickhouse.host"},
		{"bot without id", func(c *Config) {
			c.Bots = []BotConfig{{Kind: models.BotKindDexScreener}}
		}, "bots[0].id"},
		{"duplicate bot", func(c *Config) {
			c.Bots = []BotConfig{
				{ID: "a", Kind: models.BotKindDexScreener},
				{ID: "a", Kind: models.BotKindPumpFun},
			}
		}, "duplicated"},
		{"unknown kind", func(c *Config) {
			c.Bots = []BotConfig{{ID: "a", Kind: "arbitrage"}}
		}, "not supported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"LIVE_TRADING":      "TRUE",
		"GEMINI_API_KEY":    "g-key",
		"COINGECKO_API_KEY": "cg-key",
		"KAFKA_BROKERS":     "k1:9092,k2:9092",
		"PORT":              "8081",
		"WALLET_SOL":        "So1Wallet",
	}
	c := Default()
	c.applyEnv(func(k string) string { return env[k] })

	if !c.Agent.LiveTrading {
		t.Error("LIVE_TRADING not applied")
	}
	if c.NLU.APIKey != "g-key" || c.Feeds.CoinGecko.APIKey != "cg-key" {
		t.Error("api keys not applied")
	}
	if len(c.Kafka.Brokers) != 2 || c.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("brokers = %v", c.Kafka.Brokers)
	}
	if c.Server.Port != 8081 {
		t.Errorf("port = %d", c.Server.Port)
	}
	if c.Trading.Jupiter.WalletPubKey != "So1Wallet" {
		t.Error("WALLET_SOL not applied")
	}
}

func TestApplyEnvIgnoresBadPort(t *testing.T) {
	c := Default()
	c.applyEnv(func(k string) string {
		if k == "PORT" {
			return "eighty"
		}
		return ""
	})
	if c.Server.Port != 3000 {
		t.Fatalf("port changed to %d", c.Server.Port)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
environment: test
server:
  port: 4000
agent:
  risk: high
bots:
  - id: dex-sol
    kind: dexscreener
    autostart: true
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 4000 || c.Agent.RiskTier != "high" {
		t.Fatalf("yaml values not applied: %+v", c.Server)
	}
	if c.Agent.LogCapacity != 200 {
		t.Fatalf("default log capacity lost: %d", c.Agent.LogCapacity)
	}
	if len(c.Bots) != 1 || !c.Bots[0].AutoStart {
		t.Fatalf("bots = %+v", c.Bots)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
