package usecase

import (
	"context"
	"sync"
	"time"

	"GhostSniper/internal/domain/models"
	"GhostSniper/pkg/logger"
)

// EngineStatusSource exposes the push-feed engine counters.
type EngineStatusSource interface {
	Status() models.EngineStatus
}

// Agent ties the agent state to the periodic intel loop and exposes status.
type Agent struct {
	state    *AgentState
	reporter *Reporter
	intel    *MarketIntel
	registry *Registry
	engine   EngineStatusSource
	interval time.Duration
	log      *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewAgent(state *AgentState, reporter *Reporter, intel *MarketIntel, registry *Registry, engine EngineStatusSource, interval time.Duration, log *logger.Logger) *Agent {
	if log == nil {
		log = logger.Nop()
	}
	if interval <= 0 {
		interval = 20 * time.Second
	}
	a := &Agent{
		state:    state,
		reporter: reporter,
		intel:    intel,
		registry: registry,
		engine:   engine,
		interval: interval,
		log:      log.Named("agent"),
	}
	reporter.Info("agent", "Agent ready (idle).")
	return a
}

// Start begins the intel loop. It returns false if already running.
func (a *Agent) Start() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.done = make(chan struct{})
	a.state.SetRunning(true)
	go a.loop(ctx, a.done)
	a.reporter.OK("agent", "Agent started.")
	return true
}

// Stop halts the intel loop and waits for it. It returns false if not running.
func (a *Agent) Stop() bool {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel = nil
	a.mu.Unlock()
	if cancel == nil {
		return false
	}
	cancel()
	<-done
	a.state.SetRunning(false)
	a.reporter.Info("agent", "Agent stopped.")
	return true
}

func (a *Agent) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		a.tick(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (a *Agent) tick(ctx context.Context) {
	if a.intel == nil {
		return
	}
	for _, chain := range a.intel.Chains() {
		snap, err := a.intel.Snapshot(ctx, chain)
		if err != nil {
			if ctx.Err() == nil {
				a.log.Warn("intel tick failed", logger.String("chain", chain), logger.Error(err))
			}
			continue
		}
		for name, items := range snap.Data {
			a.reporter.Publish(models.NewEvent(models.EventIntel, models.IntelPayload{Source: chain + "/" + name, Items: items}))
		}
	}
}

func (a *Agent) Status() models.AgentStatus {
	st := models.AgentStatus{
		Running: a.state.Running(),
		Params:  a.state.Params(),
		LiveEnv: a.state.LiveCeiling(),
		Model:   a.state.Model(),
		Memory:  a.state.Tail(20),
	}
	if a.engine != nil {
		es := a.engine.Status()
		st.Engine = &es
	}
	if a.registry != nil {
		st.Bots = a.registry.List()
	}
	return st
}
