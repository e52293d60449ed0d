package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"GhostSniper/internal/service/broadcast"
	"GhostSniper/internal/usecase"
	"GhostSniper/pkg/config"
	xhttp "GhostSniper/pkg/http"
	pkgkafka "GhostSniper/pkg/kafka"
	applogger "GhostSniper/pkg/logger"
)

// Components are the long-lived parts the App starts and stops. Consumer,
// Producer and Closers may be nil or empty when the matching backend is off.
type Components struct {
	Hub      *broadcast.Hub
	Engine   *usecase.SignalEngine
	Agent    *usecase.Agent
	Registry *usecase.Registry
	Sink     *usecase.EventSink
	Consumer *pkgkafka.Consumer
	Commands pkgkafka.MessageHandler
	Producer *pkgkafka.Producer
	HTTP     *xhttp.Server
	Closers  []io.Closer

	// Maintenance runs once a minute until shutdown.
	Maintenance []func()
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg  *config.Config
	log  *applogger.Logger
	c    Components
	sink broadcast.Handle
}

func New(cfg *config.Config, log *applogger.Logger, c Components) *App {
	return &App{cfg: cfg, log: log.Named("app"), c: c}
}

// Run starts every component and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.start(ctx); err != nil {
		a.shutdown()
		return err
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	a.shutdown()
	return nil
}

func (a *App) start(ctx context.Context) error {
	if a.c.Sink != nil && a.c.Sink.Enabled() {
		a.c.Sink.Start()
		a.sink = a.c.Hub.Subscribe(a.c.Sink)
		a.log.Info("event sink attached")
	}

	if a.cfg.Engine.Enabled && a.c.Engine != nil {
		if err := a.c.Engine.Start(ctx); err != nil {
			return err
		}
		a.log.Info("signal engine started")
	}

	if a.c.Consumer != nil && a.c.Commands != nil {
		a.c.Consumer.RegisterHandler(a.c.Commands)
		go func() {
			if err := a.c.Consumer.Start(); err != nil {
				a.log.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.log.Info("kafka consumer started", applogger.String("topic", a.c.Commands.Topic()))
	}

	for _, b := range a.cfg.Bots {
		if !b.AutoStart {
			continue
		}
		if _, err := a.c.Registry.Start(b.ID, b.Kind, b.Options); err != nil {
			a.log.Warn("bot autostart failed", applogger.String("bot", b.ID), applogger.Error(err))
		}
	}

	if a.cfg.Agent.AutoStart {
		a.c.Agent.Start()
	}

	if len(a.c.Maintenance) > 0 {
		go a.maintain(ctx)
	}

	return a.c.HTTP.Start()
}

func (a *App) maintain(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, fn := range a.c.Maintenance {
				fn()
			}
		}
	}
}

// shutdown stops components in reverse start order. Errors are logged, never fatal.
func (a *App) shutdown() {
	ctx := context.Background()

	if err := a.c.HTTP.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	a.c.Agent.Stop()
	a.c.Registry.Close()

	if a.c.Consumer != nil {
		if err := a.c.Consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.c.Engine != nil {
		if err := a.c.Engine.Stop(); err != nil {
			a.log.Warn("engine stop error", applogger.Error(err))
		}
	}

	if a.sink != "" {
		a.c.Hub.Unsubscribe(a.sink)
		a.c.Sink.Stop()
	}

	for _, c := range a.c.Closers {
		if err := c.Close(); err != nil {
			a.log.Warn("close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	a.log.RemoveCollector()

	if a.c.Producer != nil {
		if err := a.c.Producer.Close(); err != nil {
			a.log.Warn("kafka producer close error", applogger.Error(err))
		}
	}
}
