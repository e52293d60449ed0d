package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"GhostSniper/internal/domain/models"
	drepo "GhostSniper/internal/domain/repository"
	domsvc "GhostSniper/internal/domain/service"
	"GhostSniper/pkg/logger"
)

// ErrUnrecoverable, when wrapped by a strategy error, stops the bot.
var ErrUnrecoverable = domsvc.ErrUnrecoverable

// ParamsReader is the read side of AgentState used by bots.
type ParamsReader interface {
	Params() models.AgentParams
	LiveCeiling() bool
}

// Executor runs trade intents.
type Executor interface {
	Execute(ctx context.Context, in models.TradeIntent) models.TradeResult
}

// botEnv is shared by every bot of a registry.
type botEnv struct {
	normalizer domsvc.Normalizer
	scorer     domsvc.SignalScorer
	gateway    Executor
	params     ParamsReader
	reporter   *Reporter
	metrics    drepo.Metrics
	log        *logger.Logger
}

// botRun is one start..stop cycle. The flag is checked before every poll and
// before every trade dispatch; cancel interrupts in-flight I/O.
type botRun struct {
	running atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
}

type Bot struct {
	id  string
	env *botEnv

	mu        sync.Mutex
	kind      models.BotKind
	state     models.BotState
	opts      models.BotOptions
	run       *botRun
	startedAt time.Time
	lastErr   string

	iterations atomic.Int64
	trades     atomic.Int64
}

func newBot(id string, kind models.BotKind, env *botEnv) *Bot {
	return &Bot{id: id, kind: kind, env: env, state: models.BotIdle}
}

func (b *Bot) ID() string { return b.id }

func (b *Bot) State() models.BotState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// start spawns a loop unless one is already running. A previous loop that is
// still stopping is waited for first, so two loops never overlap.
func (b *Bot) start(kind models.BotKind, opts models.BotOptions, strat domsvc.Strategy) bool {
	b.mu.Lock()
	for b.state == models.BotStopping {
		done := b.run.done
		b.mu.Unlock()
		<-done
		b.mu.Lock()
	}
	if b.state == models.BotRunning {
		b.mu.Unlock()
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	run := &botRun{cancel: cancel, done: make(chan struct{})}
	run.running.Store(true)

	b.run = run
	b.kind = kind
	b.opts = opts
	b.state = models.BotRunning
	b.startedAt = time.Now().UTC()
	b.lastErr = ""
	b.mu.Unlock()

	b.announce(models.BotRunning, "")
	go b.loop(ctx, run, opts, strat)
	return true
}

// stop flags the current run and cancels its context. It does not wait.
func (b *Bot) stop() bool {
	b.mu.Lock()
	if b.state != models.BotRunning {
		b.mu.Unlock()
		return false
	}
	b.state = models.BotStopping
	run := b.run
	b.mu.Unlock()

	run.running.Store(false)
	run.cancel()
	b.announce(models.BotStopping, "")
	return true
}

// wait blocks until the current run, if any, has exited.
func (b *Bot) wait() {
	b.mu.Lock()
	run := b.run
	b.mu.Unlock()
	if run != nil {
		<-run.done
	}
}

func (b *Bot) finish(run *botRun, cause error) {
	run.running.Store(false)
	run.cancel()

	b.mu.Lock()
	current := b.run == run
	if current {
		b.state = models.BotStopped
		if cause != nil {
			b.lastErr = cause.Error()
		}
	}
	close(run.done)
	b.mu.Unlock()

	if !current {
		return
	}
	msg := ""
	if cause != nil {
		msg = cause.Error()
		b.env.reporter.Report(models.LevelError, b.id, fmt.Sprintf("Bot %s stopped: %v", b.id, cause), nil)
	}
	b.announce(models.BotStopped, msg)
}

func (b *Bot) loop(ctx context.Context, run *botRun, opts models.BotOptions, strat domsvc.Strategy) {
	interval := opts.Interval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	acted := make(map[string]struct{})
	for {
		if !run.running.Load() {
			b.finish(run, nil)
			return
		}
		if err := b.iterate(ctx, run, opts, strat, acted); err != nil {
			b.finish(run, err)
			return
		}
		select {
		case <-ctx.Done():
			b.finish(run, nil)
			return
		case <-ticker.C:
		}
	}
}

// iterate runs one poll. Only unrecoverable errors are returned.
func (b *Bot) iterate(ctx context.Context, run *botRun, opts models.BotOptions, strat domsvc.Strategy, acted map[string]struct{}) error {
	b.iterations.Add(1)
	items, err := strat.PollOnce(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, ErrUnrecoverable) {
			return err
		}
		b.setErr(err)
		b.env.metrics.RecordError("bot_poll")
		b.env.reporter.Report(models.LevelWarn, b.id, "feed poll failed: "+err.Error(), nil)
		return nil
	}

	for _, item := range items {
		sig, err := b.env.normalizer.Normalize(item)
		if err != nil {
			b.env.metrics.RecordError("bot_parse")
			b.env.log.Debug("skip item", logger.String("bot", b.id), logger.Error(err))
			continue
		}
		sig.Score = b.env.scorer.Score(sig.Metrics)
		if !opts.Accepts(sig) {
			continue
		}
		if _, seen := acted[sig.TokenIdentity]; seen {
			continue
		}
		if !run.running.Load() {
			return nil
		}
		acted[sig.TokenIdentity] = struct{}{}
		b.env.metrics.RecordSignal(b.id, sig.Score)
		b.env.reporter.Publish(models.NewEvent(models.EventSignal, sig))
		b.trade(ctx, sig, opts, strat)
	}
	return nil
}

func (b *Bot) trade(ctx context.Context, sig models.Signal, opts models.BotOptions, strat domsvc.Strategy) {
	intent := strat.BuildTradeIntent(sig, opts)
	intent.Origin = b.id

	params := b.env.params.Params()
	intent.Paper = opts.Paper() || !params.LiveEnabled || params.ConfirmBeforeLive
	if !opts.Paper() && intent.Paper {
		b.env.reporter.Warn(b.id, "live trading not permitted; executing on paper")
	}

	res := b.env.gateway.Execute(ctx, intent)
	b.trades.Add(1)
	b.env.reporter.Publish(models.NewEvent(models.EventTrade, models.TradePayload{Action: "snipe", Intent: intent, Result: res}))

	if res.OK {
		b.env.reporter.Report(models.LevelOK, b.id, fmt.Sprintf("%s %s %g -> %s", intent.Side, sig.Symbol, intent.Amount, res.TxID),
			map[string]any{"token": intent.TokenIdentity, "score": sig.Score, "paper": res.Paper})
		return
	}
	b.setErr(errors.New(res.Error))
	b.env.reporter.Report(models.LevelError, b.id, "trade failed: "+res.Error, map[string]any{"token": intent.TokenIdentity})
}

func (b *Bot) setErr(err error) {
	b.mu.Lock()
	b.lastErr = err.Error()
	b.mu.Unlock()
}

func (b *Bot) announce(state models.BotState, errMsg string) {
	b.env.metrics.RecordBotState(b.id, state)
	b.mu.Lock()
	kind := b.kind
	b.mu.Unlock()
	b.env.reporter.Publish(models.NewEvent(models.EventBot, models.BotPayload{ID: b.id, Kind: kind, State: state, Error: errMsg}))
}

func (b *Bot) Summary() models.BotSummary {
	b.mu.Lock()
	defer b.mu.Unlock()
	return models.BotSummary{
		ID:         b.id,
		Kind:       b.kind,
		State:      b.state,
		Options:    b.opts,
		StartedAt:  b.startedAt,
		Iterations: b.iterations.Load(),
		Trades:     b.trades.Load(),
		LastError:  b.lastErr,
	}
}
