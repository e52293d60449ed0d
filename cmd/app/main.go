package main

import (
	"flag"
	"log"
	"os"

	"GhostSniper/internal/di"
	"GhostSniper/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s live_trading=%t port=%d", cfg.Environment, cfg.Agent.LiveTrading, cfg.Server.Port)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if cfg.Kafka.Enabled {
		log.Printf("kafka: brokers=%v events=%s commands=%s", cfg.Kafka.Brokers, cfg.Kafka.EventsTopic, cfg.Kafka.CommandsTopic)
	}
	if cfg.ClickHouse.Enabled {
		log.Printf("clickhouse: connected and schema ready - db: %s", cfg.ClickHouse.Database)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
